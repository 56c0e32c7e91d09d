package postgres

import (
	"context"
	"errors"

	"caloriehub/internal/storage"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresIngredientsStorage stores the ingredient catalog in Postgres.
type PostgresIngredientsStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresIngredientsStorage(pool *pgxpool.Pool) *PostgresIngredientsStorage {
	return &PostgresIngredientsStorage{pool: pool}
}

func (s *PostgresIngredientsStorage) UpsertIngredient(ctx context.Context, ing *storage.Ingredient) error {
	query := `
		INSERT INTO ingredients (id, name, calories_per_100g, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    calories_per_100g = EXCLUDED.calories_per_100g
	`

	_, err := s.pool.Exec(ctx, query,
		ing.ID,
		ing.Name,
		ing.CaloriesPer100g,
		ing.CreatedBy,
		ing.CreatedAt,
	)

	return err
}

func (s *PostgresIngredientsStorage) GetIngredient(ctx context.Context, id uuid.UUID) (*storage.Ingredient, error) {
	query := `
		SELECT id, name, calories_per_100g, created_by, created_at
		FROM ingredients
		WHERE id = $1
	`

	var ing storage.Ingredient
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&ing.ID,
		&ing.Name,
		&ing.CaloriesPer100g,
		&ing.CreatedBy,
		&ing.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, err
	}

	return &ing, nil
}

func (s *PostgresIngredientsStorage) ListIngredientsByOwner(ctx context.Context, ownerID uuid.UUID) ([]storage.Ingredient, error) {
	query := `
		SELECT id, name, calories_per_100g, created_by, created_at
		FROM ingredients
		WHERE created_by = $1
		ORDER BY name ASC
	`

	return s.list(ctx, query, ownerID)
}

func (s *PostgresIngredientsStorage) ListIngredients(ctx context.Context) ([]storage.Ingredient, error) {
	query := `
		SELECT id, name, calories_per_100g, created_by, created_at
		FROM ingredients
		ORDER BY name ASC
	`

	return s.list(ctx, query)
}

func (s *PostgresIngredientsStorage) DeleteIngredient(ctx context.Context, id, ownerID uuid.UUID) (bool, error) {
	result, err := s.pool.Exec(ctx,
		`DELETE FROM ingredients WHERE id = $1 AND created_by = $2`,
		id, ownerID,
	)
	if err != nil {
		return false, err
	}

	return result.RowsAffected() > 0, nil
}

func (s *PostgresIngredientsStorage) list(ctx context.Context, query string, args ...any) ([]storage.Ingredient, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ingredients := []storage.Ingredient{}
	for rows.Next() {
		var ing storage.Ingredient
		err := rows.Scan(
			&ing.ID,
			&ing.Name,
			&ing.CaloriesPer100g,
			&ing.CreatedBy,
			&ing.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		ingredients = append(ingredients, ing)
	}

	return ingredients, rows.Err()
}
