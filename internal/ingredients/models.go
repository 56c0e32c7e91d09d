package ingredients

import (
	"time"

	"github.com/google/uuid"
)

// IngredientDTO is the API view of an ingredient.
type IngredientDTO struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	CaloriesPer100g float64   `json:"caloriesPer100g"`
	CreatedBy       uuid.UUID `json:"createdBy"`
	CreatedAt       time.Time `json:"createdAt"`
}

// CreateIngredientRequest is the body of POST /api/ingredients.
type CreateIngredientRequest struct {
	Name            string   `json:"name"`
	CaloriesPer100g *float64 `json:"caloriesPer100g"`
}

// UpdateIngredientRequest is the body of PUT /api/ingredients/{id}.
// Omitted fields keep their current values.
type UpdateIngredientRequest struct {
	Name            *string  `json:"name"`
	CaloriesPer100g *float64 `json:"caloriesPer100g"`
}

// CalculateCaloriesRequest is the body of POST /api/ingredients/calculate-calories.
type CalculateCaloriesRequest struct {
	IngredientID string  `json:"ingredientId"`
	Amount       float64 `json:"amount"`
}

// CalculationResult is one resolved ingredient+amount pair.
type CalculationResult struct {
	IngredientID uuid.UUID `json:"ingredientId"`
	Name         string    `json:"name"`
	Amount       float64   `json:"amount"`
	Calories     float64   `json:"calories"`
}

// BulkCalculateRequest is the body of POST /api/ingredients/calculate-bulk-calories.
type BulkCalculateRequest struct {
	Items []CalculateCaloriesRequest `json:"items"`
}

// BulkCalculateResult carries per-item results plus the grand total.
// Items that failed to resolve are absent rather than failing the call.
type BulkCalculateResult struct {
	Items         []CalculationResult `json:"items"`
	TotalCalories float64             `json:"totalCalories"`
}
