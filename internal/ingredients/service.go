package ingredients

import (
	"context"
	"sort"
	"strings"
	"time"

	"caloriehub/internal/apperr"
	"caloriehub/internal/config"
	"caloriehub/internal/storage"

	"github.com/google/uuid"
)

const minNameLength = 2

// Service manages the per-user ingredient catalog.
type Service struct {
	config  *config.Config
	storage storage.IngredientsStorage
}

func NewService(cfg *config.Config, ingredientsStorage storage.IngredientsStorage) *Service {
	return &Service{
		config:  cfg,
		storage: ingredientsStorage,
	}
}

// Create adds an ingredient to the caller's catalog.
func (s *Service) Create(ctx context.Context, owner uuid.UUID, req CreateIngredientRequest) (*IngredientDTO, error) {
	name := strings.TrimSpace(req.Name)
	if len(name) < minNameLength {
		return nil, apperr.BadRequest("Ingredient name must be at least 2 characters")
	}
	if req.CaloriesPer100g == nil {
		return nil, apperr.BadRequest("caloriesPer100g is required")
	}
	if *req.CaloriesPer100g < 0 {
		return nil, apperr.BadRequest("caloriesPer100g cannot be negative")
	}

	taken, err := s.nameTaken(ctx, owner, name, uuid.Nil)
	if err != nil {
		return nil, apperr.Internal("Failed to check ingredient name")
	}
	if taken {
		return nil, apperr.Conflict("Ingredient with this name already exists")
	}

	ingredient := &storage.Ingredient{
		ID:              uuid.New(),
		Name:            name,
		CaloriesPer100g: *req.CaloriesPer100g,
		CreatedBy:       owner,
		CreatedAt:       time.Now(),
	}

	if err := s.storage.UpsertIngredient(ctx, ingredient); err != nil {
		return nil, apperr.Internal("Failed to create ingredient")
	}

	dto := toDTO(ingredient)
	return &dto, nil
}

// Update replaces the stored record, keeping ID, owner and creation time.
func (s *Service) Update(ctx context.Context, owner, id uuid.UUID, req UpdateIngredientRequest) (*IngredientDTO, error) {
	ingredient, err := s.storage.GetIngredient(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("Ingredient not found")
	}
	if ingredient.CreatedBy != owner {
		return nil, apperr.Forbidden("Access denied")
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if len(name) < minNameLength {
			return nil, apperr.BadRequest("Ingredient name must be at least 2 characters")
		}

		taken, err := s.nameTaken(ctx, owner, name, id)
		if err != nil {
			return nil, apperr.Internal("Failed to check ingredient name")
		}
		if taken {
			return nil, apperr.Conflict("Ingredient with this name already exists")
		}
		ingredient.Name = name
	}

	if req.CaloriesPer100g != nil {
		if *req.CaloriesPer100g < 0 {
			return nil, apperr.BadRequest("caloriesPer100g cannot be negative")
		}
		ingredient.CaloriesPer100g = *req.CaloriesPer100g
	}

	if err := s.storage.UpsertIngredient(ctx, ingredient); err != nil {
		return nil, apperr.Internal("Failed to update ingredient")
	}

	dto := toDTO(ingredient)
	return &dto, nil
}

// Delete removes an owned ingredient. A missing or foreign id gets the
// same answer, so existence of other users' records never leaks.
func (s *Service) Delete(ctx context.Context, owner, id uuid.UUID) error {
	deleted, err := s.storage.DeleteIngredient(ctx, id, owner)
	if err != nil {
		return apperr.Internal("Failed to delete ingredient")
	}
	if !deleted {
		return apperr.NotFound("Ingredient not found")
	}
	return nil
}

func (s *Service) GetByID(ctx context.Context, owner, id uuid.UUID) (*IngredientDTO, error) {
	ingredient, err := s.storage.GetIngredient(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("Ingredient not found")
	}
	if ingredient.CreatedBy != owner {
		return nil, apperr.Forbidden("Access denied")
	}

	dto := toDTO(ingredient)
	return &dto, nil
}

// ListForOwner returns the caller's catalog, optionally filtered by a
// case-insensitive substring, sorted alphabetically.
func (s *Service) ListForOwner(ctx context.Context, owner uuid.UUID, search string) ([]IngredientDTO, error) {
	items, err := s.storage.ListIngredientsByOwner(ctx, owner)
	if err != nil {
		return nil, apperr.Internal("Failed to list ingredients")
	}

	search = strings.ToLower(strings.TrimSpace(search))
	dtos := make([]IngredientDTO, 0, len(items))
	for i := range items {
		if search != "" && !strings.Contains(strings.ToLower(items[i].Name), search) {
			continue
		}
		dtos = append(dtos, toDTO(&items[i]))
	}

	sort.Slice(dtos, func(i, j int) bool {
		return strings.ToLower(dtos[i].Name) < strings.ToLower(dtos[j].Name)
	})

	return dtos, nil
}

// Search scans the whole catalog across users. Queries shorter than two
// characters return an empty list. Prefix matches rank before other
// substring matches; within a group the order is alphabetical.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]IngredientDTO, error) {
	if limit <= 0 {
		limit = s.config.SearchDefaultLimit
	}
	if limit > s.config.SearchMaxLimit {
		limit = s.config.SearchMaxLimit
	}

	query = strings.ToLower(strings.TrimSpace(query))
	if len(query) < 2 {
		return []IngredientDTO{}, nil
	}

	items, err := s.storage.ListIngredients(ctx)
	if err != nil {
		return nil, apperr.Internal("Failed to search ingredients")
	}

	var prefix, rest []IngredientDTO
	for i := range items {
		name := strings.ToLower(items[i].Name)
		switch {
		case strings.HasPrefix(name, query):
			prefix = append(prefix, toDTO(&items[i]))
		case strings.Contains(name, query):
			rest = append(rest, toDTO(&items[i]))
		}
	}

	byName := func(dtos []IngredientDTO) func(i, j int) bool {
		return func(i, j int) bool {
			return strings.ToLower(dtos[i].Name) < strings.ToLower(dtos[j].Name)
		}
	}
	sort.Slice(prefix, byName(prefix))
	sort.Slice(rest, byName(rest))

	results := append(prefix, rest...)
	if len(results) > limit {
		results = results[:limit]
	}
	if results == nil {
		results = []IngredientDTO{}
	}
	return results, nil
}

// CalculateCalories resolves one ingredient+amount pair. The amount is
// grams; the result is amount * density / 100 with no rounding.
func (s *Service) CalculateCalories(ctx context.Context, owner, id uuid.UUID, amount float64) (*CalculationResult, error) {
	if amount <= 0 {
		return nil, apperr.BadRequest("Amount must be greater than zero")
	}

	ingredient, err := s.storage.GetIngredient(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("Ingredient not found")
	}
	if ingredient.CreatedBy != owner {
		return nil, apperr.Forbidden("Access denied")
	}

	return &CalculationResult{
		IngredientID: ingredient.ID,
		Name:         ingredient.Name,
		Amount:       amount,
		Calories:     amount * ingredient.CaloriesPer100g / 100,
	}, nil
}

// CalculateBulkCalories resolves many pairs at once. Malformed ids and
// per-item failures are skipped; the call itself never fails on them.
func (s *Service) CalculateBulkCalories(ctx context.Context, owner uuid.UUID, req BulkCalculateRequest) (*BulkCalculateResult, error) {
	result := &BulkCalculateResult{Items: []CalculationResult{}}

	for _, item := range req.Items {
		id, err := uuid.Parse(item.IngredientID)
		if err != nil {
			continue
		}

		calc, err := s.CalculateCalories(ctx, owner, id, item.Amount)
		if err != nil {
			continue
		}

		result.Items = append(result.Items, *calc)
		result.TotalCalories += calc.Calories
	}

	return result, nil
}

// nameTaken reports a case-insensitive name collision within one owner's
// catalog, excluding the record being updated.
func (s *Service) nameTaken(ctx context.Context, owner uuid.UUID, name string, exclude uuid.UUID) (bool, error) {
	items, err := s.storage.ListIngredientsByOwner(ctx, owner)
	if err != nil {
		return false, err
	}

	lower := strings.ToLower(name)
	for i := range items {
		if items[i].ID != exclude && strings.ToLower(items[i].Name) == lower {
			return true, nil
		}
	}
	return false, nil
}

func toDTO(ingredient *storage.Ingredient) IngredientDTO {
	return IngredientDTO{
		ID:              ingredient.ID,
		Name:            ingredient.Name,
		CaloriesPer100g: ingredient.CaloriesPer100g,
		CreatedBy:       ingredient.CreatedBy,
		CreatedAt:       ingredient.CreatedAt,
	}
}
