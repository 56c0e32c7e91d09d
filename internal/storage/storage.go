package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// User is a registered account.
type User struct {
	ID        uuid.UUID
	Username  string // normalized: lowercased, trimmed
	Password  string // bcrypt hash, never plaintext
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UsersStorage manages user accounts.
type UsersStorage interface {
	// UpsertUser stores the full record, replacing any previous version
	// with the same id. Updates are whole-record replacements.
	UpsertUser(ctx context.Context, user *User) error

	// GetUser returns a user by id.
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)

	// GetUserByUsername returns a user by normalized username.
	GetUserByUsername(ctx context.Context, username string) (*User, error)

	// DeleteUser removes a user account.
	DeleteUser(ctx context.Context, id uuid.UUID) error

	// Close closes the connection (Postgres only).
	Close() error
}

// Ingredient is a named food item with a calorie density per 100 g.
type Ingredient struct {
	ID              uuid.UUID
	Name            string
	CaloriesPer100g float64
	CreatedBy       uuid.UUID
	CreatedAt       time.Time
}

// IngredientsStorage manages the per-user ingredient catalog.
type IngredientsStorage interface {
	// UpsertIngredient stores the full record, replacing any previous
	// version with the same id.
	UpsertIngredient(ctx context.Context, ing *Ingredient) error

	// GetIngredient returns an ingredient by id.
	GetIngredient(ctx context.Context, id uuid.UUID) (*Ingredient, error)

	// ListIngredientsByOwner returns all ingredients created by one user.
	ListIngredientsByOwner(ctx context.Context, ownerID uuid.UUID) ([]Ingredient, error)

	// ListIngredients returns the whole catalog across users (search path).
	ListIngredients(ctx context.Context) ([]Ingredient, error)

	// DeleteIngredient deletes by (id, owner). Returns false when nothing
	// matched; missing and foreign records are indistinguishable here.
	DeleteIngredient(ctx context.Context, id, ownerID uuid.UUID) (bool, error)
}

// MealItem references an ingredient with an amount in grams.
type MealItem struct {
	IngredientID uuid.UUID
	Amount       float64
}

// Meal is one logged meal. TotalCalories is denormalized: it is computed
// from ingredient densities at write time and never recomputed on read.
type Meal struct {
	ID            uuid.UUID
	Name          string
	Date          time.Time // calendar day; time-of-day is not significant
	MealTime      string    // breakfast | lunch | dinner | snack
	Items         []MealItem
	CreatedBy     uuid.UUID
	CreatedAt     time.Time
	TotalCalories float64
}

// MealsStorage manages meals and their ingredient associations.
type MealsStorage interface {
	// UpsertMeal stores the meal row and replaces its ingredient rows.
	UpsertMeal(ctx context.Context, meal *Meal) error

	// GetMeal returns a meal with its items.
	GetMeal(ctx context.Context, id uuid.UUID) (*Meal, error)

	// ListMealsByOwner returns all meals created by one user.
	ListMealsByOwner(ctx context.Context, ownerID uuid.UUID) ([]Meal, error)

	// ListMealsByOwnerAndDate returns the owner's meals on one calendar day.
	ListMealsByOwnerAndDate(ctx context.Context, ownerID uuid.UUID, date time.Time) ([]Meal, error)

	// ListMealsByOwnerAndDateRange returns the owner's meals with
	// start <= date <= end (calendar days, inclusive).
	ListMealsByOwnerAndDateRange(ctx context.Context, ownerID uuid.UUID, start, end time.Time) ([]Meal, error)

	// DeleteMeal deletes by (id, owner). Returns false when nothing matched.
	DeleteMeal(ctx context.Context, id, ownerID uuid.UUID) (bool, error)
}

// DateOnly truncates t to its calendar day in UTC.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
