package postgres

import (
	"context"
	"errors"
	"time"

	"caloriehub/internal/storage"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresMealsStorage stores meals and their ingredient rows in Postgres.
type PostgresMealsStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresMealsStorage(pool *pgxpool.Pool) *PostgresMealsStorage {
	return &PostgresMealsStorage{pool: pool}
}

// UpsertMeal writes the meal row and replaces its meal_ingredients rows.
// The whole sequence runs on one reserved connection so the statements stay
// coherent under the pool, but there is no explicit transaction: a crash
// mid-sequence can leave a meal without its ingredient rows.
func (s *PostgresMealsStorage) UpsertMeal(ctx context.Context, meal *storage.Meal) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
		INSERT INTO meals (id, name, date, meal_time, created_by, created_at, total_calories)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    date = EXCLUDED.date,
		    meal_time = EXCLUDED.meal_time,
		    total_calories = EXCLUDED.total_calories
	`,
		meal.ID,
		meal.Name,
		storage.DateOnly(meal.Date),
		meal.MealTime,
		meal.CreatedBy,
		meal.CreatedAt,
		meal.TotalCalories,
	)
	if err != nil {
		return err
	}

	_, err = conn.Exec(ctx, `DELETE FROM meal_ingredients WHERE meal_id = $1`, meal.ID)
	if err != nil {
		return err
	}

	for _, item := range meal.Items {
		_, err = conn.Exec(ctx, `
			INSERT INTO meal_ingredients (meal_id, ingredient_id, amount)
			VALUES ($1, $2, $3)
		`, meal.ID, item.IngredientID, item.Amount)
		if err != nil {
			return err
		}
	}

	return nil
}

func (s *PostgresMealsStorage) GetMeal(ctx context.Context, id uuid.UUID) (*storage.Meal, error) {
	query := `
		SELECT id, name, date, meal_time, created_by, created_at, total_calories
		FROM meals
		WHERE id = $1
	`

	var meal storage.Meal
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&meal.ID,
		&meal.Name,
		&meal.Date,
		&meal.MealTime,
		&meal.CreatedBy,
		&meal.CreatedAt,
		&meal.TotalCalories,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, err
	}

	items, err := s.loadItems(ctx, []uuid.UUID{meal.ID})
	if err != nil {
		return nil, err
	}
	meal.Items = items[meal.ID]

	return &meal, nil
}

func (s *PostgresMealsStorage) ListMealsByOwner(ctx context.Context, ownerID uuid.UUID) ([]storage.Meal, error) {
	query := `
		SELECT id, name, date, meal_time, created_by, created_at, total_calories
		FROM meals
		WHERE created_by = $1
		ORDER BY date DESC, meal_time ASC
	`

	return s.list(ctx, query, ownerID)
}

func (s *PostgresMealsStorage) ListMealsByOwnerAndDate(ctx context.Context, ownerID uuid.UUID, date time.Time) ([]storage.Meal, error) {
	query := `
		SELECT id, name, date, meal_time, created_by, created_at, total_calories
		FROM meals
		WHERE created_by = $1 AND date = $2
		ORDER BY meal_time ASC
	`

	return s.list(ctx, query, ownerID, storage.DateOnly(date))
}

func (s *PostgresMealsStorage) ListMealsByOwnerAndDateRange(ctx context.Context, ownerID uuid.UUID, start, end time.Time) ([]storage.Meal, error) {
	query := `
		SELECT id, name, date, meal_time, created_by, created_at, total_calories
		FROM meals
		WHERE created_by = $1 AND date >= $2 AND date <= $3
		ORDER BY date ASC, meal_time ASC
	`

	return s.list(ctx, query, ownerID, storage.DateOnly(start), storage.DateOnly(end))
}

func (s *PostgresMealsStorage) DeleteMeal(ctx context.Context, id, ownerID uuid.UUID) (bool, error) {
	result, err := s.pool.Exec(ctx,
		`DELETE FROM meals WHERE id = $1 AND created_by = $2`,
		id, ownerID,
	)
	if err != nil {
		return false, err
	}

	return result.RowsAffected() > 0, nil
}

func (s *PostgresMealsStorage) list(ctx context.Context, query string, args ...any) ([]storage.Meal, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	meals := []storage.Meal{}
	ids := []uuid.UUID{}
	for rows.Next() {
		var meal storage.Meal
		err := rows.Scan(
			&meal.ID,
			&meal.Name,
			&meal.Date,
			&meal.MealTime,
			&meal.CreatedBy,
			&meal.CreatedAt,
			&meal.TotalCalories,
		)
		if err != nil {
			return nil, err
		}
		meals = append(meals, meal)
		ids = append(ids, meal.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(meals) == 0 {
		return meals, nil
	}

	items, err := s.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range meals {
		meals[i].Items = items[meals[i].ID]
	}

	return meals, nil
}

func (s *PostgresMealsStorage) loadItems(ctx context.Context, mealIDs []uuid.UUID) (map[uuid.UUID][]storage.MealItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT meal_id, ingredient_id, amount
		FROM meal_ingredients
		WHERE meal_id = ANY($1)
	`, mealIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make(map[uuid.UUID][]storage.MealItem, len(mealIDs))
	for rows.Next() {
		var mealID uuid.UUID
		var item storage.MealItem
		if err := rows.Scan(&mealID, &item.IngredientID, &item.Amount); err != nil {
			return nil, err
		}
		items[mealID] = append(items[mealID], item)
	}

	return items, rows.Err()
}
