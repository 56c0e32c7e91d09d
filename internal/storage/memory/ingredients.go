package memory

import (
	"context"
	"sync"

	"caloriehub/internal/storage"

	"github.com/google/uuid"
)

// IngredientsMemoryStorage keeps the ingredient catalog in a mutex-guarded map.
type IngredientsMemoryStorage struct {
	mu          sync.RWMutex
	ingredients map[uuid.UUID]storage.Ingredient
}

func NewIngredientsMemoryStorage() *IngredientsMemoryStorage {
	return &IngredientsMemoryStorage{
		ingredients: make(map[uuid.UUID]storage.Ingredient),
	}
}

func (s *IngredientsMemoryStorage) UpsertIngredient(ctx context.Context, ing *storage.Ingredient) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ingredients[ing.ID] = *ing

	return nil
}

func (s *IngredientsMemoryStorage) GetIngredient(ctx context.Context, id uuid.UUID) (*storage.Ingredient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ing, ok := s.ingredients[id]
	if !ok {
		return nil, ErrNotFound
	}

	return &ing, nil
}

func (s *IngredientsMemoryStorage) ListIngredientsByOwner(ctx context.Context, ownerID uuid.UUID) ([]storage.Ingredient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []storage.Ingredient{}
	for _, ing := range s.ingredients {
		if ing.CreatedBy == ownerID {
			result = append(result, ing)
		}
	}

	return result, nil
}

func (s *IngredientsMemoryStorage) ListIngredients(ctx context.Context) ([]storage.Ingredient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]storage.Ingredient, 0, len(s.ingredients))
	for _, ing := range s.ingredients {
		result = append(result, ing)
	}

	return result, nil
}

func (s *IngredientsMemoryStorage) DeleteIngredient(ctx context.Context, id, ownerID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ing, ok := s.ingredients[id]
	if !ok || ing.CreatedBy != ownerID {
		return false, nil
	}

	delete(s.ingredients, id)

	return true, nil
}
