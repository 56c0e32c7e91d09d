package meals

import (
	"time"

	"github.com/google/uuid"
)

// Meal times in display order.
const (
	MealTimeBreakfast = "breakfast"
	MealTimeLunch     = "lunch"
	MealTimeDinner    = "dinner"
	MealTimeSnack     = "snack"
)

// mealTimeRank orders meals within a day.
var mealTimeRank = map[string]int{
	MealTimeBreakfast: 0,
	MealTimeLunch:     1,
	MealTimeDinner:    2,
	MealTimeSnack:     3,
}

// MealItemRequest is one ingredient+amount pair in a meal write.
type MealItemRequest struct {
	IngredientID string  `json:"ingredientId"`
	Amount       float64 `json:"amount"`
}

// CreateMealRequest is the body of POST /api/meals.
type CreateMealRequest struct {
	Name     string            `json:"name"`
	Date     string            `json:"date"` // YYYY-MM-DD
	MealTime string            `json:"mealTime"`
	Items    []MealItemRequest `json:"items"`
}

// UpdateMealRequest is the body of PUT /api/meals/{id}.
// Omitted fields keep their current values.
type UpdateMealRequest struct {
	Name     *string            `json:"name"`
	Date     *string            `json:"date"`
	MealTime *string            `json:"mealTime"`
	Items    *[]MealItemRequest `json:"items"`
}

// MealItemDTO is one resolved line of a meal breakdown.
type MealItemDTO struct {
	IngredientID uuid.UUID `json:"ingredientId"`
	Name         string    `json:"name"`
	Amount       float64   `json:"amount"`
	Calories     float64   `json:"calories"`
}

// MealDTO is the API view of a meal.
type MealDTO struct {
	ID            uuid.UUID     `json:"id"`
	Name          string        `json:"name"`
	Date          string        `json:"date"` // YYYY-MM-DD
	MealTime      string        `json:"mealTime"`
	Items         []MealItemDTO `json:"items"`
	TotalCalories float64       `json:"totalCalories"`
	CreatedBy     uuid.UUID     `json:"createdBy"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// DailySummary groups one day's meals for the date-range view.
type DailySummary struct {
	Date          string    `json:"date"` // YYYY-MM-DD
	TotalCalories float64   `json:"totalCalories"`
	Meals         []MealDTO `json:"meals"`
}

// CaloriesSummary aggregates a set of meals.
type CaloriesSummary struct {
	TotalCalories          float64        `json:"totalCalories"`
	MealsCount             int            `json:"mealsCount"`
	AverageCaloriesPerMeal int            `json:"averageCaloriesPerMeal"`
	MealsByTime            map[string]int `json:"mealsByTime"`
}
