package meals

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"caloriehub/internal/apperr"
	"caloriehub/internal/storage"

	"github.com/google/uuid"
)

const (
	minNameLength = 2
	dateLayout    = "2006-01-02"
)

// Service manages meals and their calorie aggregates.
type Service struct {
	storage     storage.MealsStorage
	ingredients storage.IngredientsStorage
}

func NewService(mealsStorage storage.MealsStorage, ingredientsStorage storage.IngredientsStorage) *Service {
	return &Service{
		storage:     mealsStorage,
		ingredients: ingredientsStorage,
	}
}

// Create validates every item against the caller's catalog, accumulates
// the total and stores the meal. The total is fixed at write time.
func (s *Service) Create(ctx context.Context, owner uuid.UUID, req CreateMealRequest) (*MealDTO, error) {
	name := strings.TrimSpace(req.Name)
	if len(name) < minNameLength {
		return nil, apperr.BadRequest("Meal name must be at least 2 characters")
	}

	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}

	mealTime, err := parseMealTime(req.MealTime)
	if err != nil {
		return nil, err
	}

	items, breakdown, total, err := s.resolveItems(ctx, owner, req.Items)
	if err != nil {
		return nil, err
	}

	meal := &storage.Meal{
		ID:            uuid.New(),
		Name:          name,
		Date:          date,
		MealTime:      mealTime,
		Items:         items,
		CreatedBy:     owner,
		CreatedAt:     time.Now(),
		TotalCalories: total,
	}

	if err := s.storage.UpsertMeal(ctx, meal); err != nil {
		return nil, apperr.Internal("Failed to create meal")
	}

	dto := s.toDTO(meal, breakdown)
	return &dto, nil
}

// Update merges the partial request over the stored meal, re-validates
// the result as a create and recomputes the total.
func (s *Service) Update(ctx context.Context, owner, id uuid.UUID, req UpdateMealRequest) (*MealDTO, error) {
	meal, err := s.storage.GetMeal(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("Meal not found")
	}
	if meal.CreatedBy != owner {
		return nil, apperr.Forbidden("Access denied")
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if len(name) < minNameLength {
			return nil, apperr.BadRequest("Meal name must be at least 2 characters")
		}
		meal.Name = name
	}

	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			return nil, err
		}
		meal.Date = date
	}

	if req.MealTime != nil {
		mealTime, err := parseMealTime(*req.MealTime)
		if err != nil {
			return nil, err
		}
		meal.MealTime = mealTime
	}

	itemReqs := itemsToRequests(meal.Items)
	if req.Items != nil {
		itemReqs = *req.Items
	}

	items, breakdown, total, err := s.resolveItems(ctx, owner, itemReqs)
	if err != nil {
		return nil, err
	}
	meal.Items = items
	meal.TotalCalories = total

	if err := s.storage.UpsertMeal(ctx, meal); err != nil {
		return nil, apperr.Internal("Failed to update meal")
	}

	dto := s.toDTO(meal, breakdown)
	return &dto, nil
}

// Delete removes an owned meal. Missing and foreign ids are
// indistinguishable to the caller.
func (s *Service) Delete(ctx context.Context, owner, id uuid.UUID) error {
	deleted, err := s.storage.DeleteMeal(ctx, id, owner)
	if err != nil {
		return apperr.Internal("Failed to delete meal")
	}
	if !deleted {
		return apperr.NotFound("Meal not found")
	}
	return nil
}

// GetByID hides foreign meals behind the same answer as missing ones.
// The breakdown re-resolves current ingredient records; ingredients
// deleted since the meal was written drop out of the breakdown while
// the stored total stands.
func (s *Service) GetByID(ctx context.Context, owner, id uuid.UUID) (*MealDTO, error) {
	meal, err := s.storage.GetMeal(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("Meal not found")
	}
	if meal.CreatedBy != owner {
		return nil, apperr.NotFound("Meal not found")
	}

	dto := s.toDTO(meal, s.resolveBreakdown(ctx, meal))
	return &dto, nil
}

// ListForOwner returns the caller's meals, optionally limited to one
// calendar day.
func (s *Service) ListForOwner(ctx context.Context, owner uuid.UUID, date *time.Time) ([]MealDTO, error) {
	var (
		items []storage.Meal
		err   error
	)
	if date != nil {
		items, err = s.storage.ListMealsByOwnerAndDate(ctx, owner, *date)
	} else {
		items, err = s.storage.ListMealsByOwner(ctx, owner)
	}
	if err != nil {
		return nil, apperr.Internal("Failed to list meals")
	}

	dtos := make([]MealDTO, 0, len(items))
	for i := range items {
		meal := &items[i]
		dtos = append(dtos, s.toDTO(meal, s.resolveBreakdown(ctx, meal)))
	}
	return dtos, nil
}

// ListByDateRange groups the caller's meals into daily summaries over an
// inclusive range. Summaries come back ascending by date; within a day
// meals follow breakfast, lunch, dinner, snack.
func (s *Service) ListByDateRange(ctx context.Context, owner uuid.UUID, start, end time.Time) ([]DailySummary, error) {
	start = storage.DateOnly(start)
	end = storage.DateOnly(end)
	if start.After(end) {
		return nil, apperr.BadRequest("Start date must not be after end date")
	}

	items, err := s.storage.ListMealsByOwnerAndDateRange(ctx, owner, start, end)
	if err != nil {
		return nil, apperr.Internal("Failed to list meals")
	}

	byDay := make(map[string][]MealDTO)
	for i := range items {
		meal := &items[i]
		dto := s.toDTO(meal, s.resolveBreakdown(ctx, meal))
		byDay[dto.Date] = append(byDay[dto.Date], dto)
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)

	summaries := make([]DailySummary, 0, len(days))
	for _, day := range days {
		dayMeals := byDay[day]
		sort.SliceStable(dayMeals, func(i, j int) bool {
			return mealTimeRank[dayMeals[i].MealTime] < mealTimeRank[dayMeals[j].MealTime]
		})

		var total float64
		for _, m := range dayMeals {
			total += m.TotalCalories
		}

		summaries = append(summaries, DailySummary{
			Date:          day,
			TotalCalories: total,
			Meals:         dayMeals,
		})
	}

	return summaries, nil
}

// Summary aggregates the caller's meals, optionally for one day. With no
// meals every field is zero.
func (s *Service) Summary(ctx context.Context, owner uuid.UUID, date *time.Time) (*CaloriesSummary, error) {
	var (
		items []storage.Meal
		err   error
	)
	if date != nil {
		items, err = s.storage.ListMealsByOwnerAndDate(ctx, owner, *date)
	} else {
		items, err = s.storage.ListMealsByOwner(ctx, owner)
	}
	if err != nil {
		return nil, apperr.Internal("Failed to compute summary")
	}

	summary := &CaloriesSummary{
		MealsByTime: map[string]int{
			MealTimeBreakfast: 0,
			MealTimeLunch:     0,
			MealTimeDinner:    0,
			MealTimeSnack:     0,
		},
	}

	for i := range items {
		summary.TotalCalories += items[i].TotalCalories
		summary.MealsByTime[items[i].MealTime]++
	}
	summary.MealsCount = len(items)
	if summary.MealsCount > 0 {
		summary.AverageCaloriesPerMeal = int(math.Round(summary.TotalCalories / float64(summary.MealsCount)))
	}

	return summary, nil
}

// resolveItems validates each pair against the caller's catalog and
// prices it at the current calorie density.
func (s *Service) resolveItems(ctx context.Context, owner uuid.UUID, reqs []MealItemRequest) ([]storage.MealItem, []MealItemDTO, float64, error) {
	if len(reqs) == 0 {
		return nil, nil, 0, apperr.BadRequest("Meal must contain at least one ingredient")
	}

	items := make([]storage.MealItem, 0, len(reqs))
	breakdown := make([]MealItemDTO, 0, len(reqs))
	var total float64

	for _, req := range reqs {
		id, err := uuid.Parse(req.IngredientID)
		if err != nil {
			return nil, nil, 0, apperr.BadRequest("Invalid ingredient ID")
		}
		if req.Amount <= 0 {
			return nil, nil, 0, apperr.BadRequest("Ingredient amount must be greater than zero")
		}

		ingredient, err := s.ingredients.GetIngredient(ctx, id)
		if err != nil {
			return nil, nil, 0, apperr.NotFound("Ingredient not found")
		}
		if ingredient.CreatedBy != owner {
			return nil, nil, 0, apperr.Forbidden("Access denied")
		}

		calories := req.Amount * ingredient.CaloriesPer100g / 100
		total += calories

		items = append(items, storage.MealItem{IngredientID: id, Amount: req.Amount})
		breakdown = append(breakdown, MealItemDTO{
			IngredientID: id,
			Name:         ingredient.Name,
			Amount:       req.Amount,
			Calories:     calories,
		})
	}

	return items, breakdown, total, nil
}

// resolveBreakdown re-reads the current ingredient records for a stored
// meal, silently dropping lines whose ingredient no longer exists.
func (s *Service) resolveBreakdown(ctx context.Context, meal *storage.Meal) []MealItemDTO {
	breakdown := make([]MealItemDTO, 0, len(meal.Items))
	for _, item := range meal.Items {
		ingredient, err := s.ingredients.GetIngredient(ctx, item.IngredientID)
		if err != nil {
			continue
		}
		breakdown = append(breakdown, MealItemDTO{
			IngredientID: item.IngredientID,
			Name:         ingredient.Name,
			Amount:       item.Amount,
			Calories:     item.Amount * ingredient.CaloriesPer100g / 100,
		})
	}
	return breakdown
}

func (s *Service) toDTO(meal *storage.Meal, breakdown []MealItemDTO) MealDTO {
	if breakdown == nil {
		breakdown = []MealItemDTO{}
	}
	return MealDTO{
		ID:            meal.ID,
		Name:          meal.Name,
		Date:          meal.Date.Format(dateLayout),
		MealTime:      meal.MealTime,
		Items:         breakdown,
		TotalCalories: meal.TotalCalories,
		CreatedBy:     meal.CreatedBy,
		CreatedAt:     meal.CreatedAt,
	}
}

func itemsToRequests(items []storage.MealItem) []MealItemRequest {
	reqs := make([]MealItemRequest, 0, len(items))
	for _, item := range items {
		reqs = append(reqs, MealItemRequest{
			IngredientID: item.IngredientID.String(),
			Amount:       item.Amount,
		})
	}
	return reqs
}

func parseDate(raw string) (time.Time, error) {
	date, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, apperr.BadRequest("Date must be in YYYY-MM-DD format")
	}
	return date, nil
}

func parseMealTime(raw string) (string, error) {
	mealTime := strings.ToLower(strings.TrimSpace(raw))
	if _, ok := mealTimeRank[mealTime]; !ok {
		return "", apperr.BadRequest("Meal time must be breakfast, lunch, dinner or snack")
	}
	return mealTime, nil
}
