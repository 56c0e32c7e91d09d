package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"caloriehub/internal/storage"

	"github.com/google/uuid"
)

// MealsMemoryStorage keeps meals (with their items) in a mutex-guarded map.
type MealsMemoryStorage struct {
	mu    sync.RWMutex
	meals map[uuid.UUID]storage.Meal
}

func NewMealsMemoryStorage() *MealsMemoryStorage {
	return &MealsMemoryStorage{
		meals: make(map[uuid.UUID]storage.Meal),
	}
}

func (s *MealsMemoryStorage) UpsertMeal(ctx context.Context, meal *storage.Meal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *meal
	stored.Items = append([]storage.MealItem(nil), meal.Items...)
	s.meals[meal.ID] = stored

	return nil
}

func (s *MealsMemoryStorage) GetMeal(ctx context.Context, id uuid.UUID) (*storage.Meal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	meal, ok := s.meals[id]
	if !ok {
		return nil, ErrNotFound
	}

	meal.Items = append([]storage.MealItem(nil), meal.Items...)

	return &meal, nil
}

func (s *MealsMemoryStorage) ListMealsByOwner(ctx context.Context, ownerID uuid.UUID) ([]storage.Meal, error) {
	return s.listFiltered(ownerID, func(storage.Meal) bool { return true })
}

func (s *MealsMemoryStorage) ListMealsByOwnerAndDate(ctx context.Context, ownerID uuid.UUID, date time.Time) ([]storage.Meal, error) {
	day := storage.DateOnly(date)
	return s.listFiltered(ownerID, func(m storage.Meal) bool {
		return storage.DateOnly(m.Date).Equal(day)
	})
}

func (s *MealsMemoryStorage) ListMealsByOwnerAndDateRange(ctx context.Context, ownerID uuid.UUID, start, end time.Time) ([]storage.Meal, error) {
	from := storage.DateOnly(start)
	to := storage.DateOnly(end)
	return s.listFiltered(ownerID, func(m storage.Meal) bool {
		day := storage.DateOnly(m.Date)
		return !day.Before(from) && !day.After(to)
	})
}

func (s *MealsMemoryStorage) DeleteMeal(ctx context.Context, id, ownerID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	meal, ok := s.meals[id]
	if !ok || meal.CreatedBy != ownerID {
		return false, nil
	}

	delete(s.meals, id)

	return true, nil
}

func (s *MealsMemoryStorage) listFiltered(ownerID uuid.UUID, keep func(storage.Meal) bool) ([]storage.Meal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []storage.Meal{}
	for _, meal := range s.meals {
		if meal.CreatedBy != ownerID || !keep(meal) {
			continue
		}
		meal.Items = append([]storage.MealItem(nil), meal.Items...)
		result = append(result, meal)
	}

	// Stable order for callers: newest day first, matching the SQL variant.
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.After(result[j].Date)
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result, nil
}
