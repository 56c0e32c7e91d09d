package postgres

import (
	"context"
	"errors"

	"caloriehub/internal/storage"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned by every lookup that misses.
var ErrNotFound = errors.New("record not found")

// PostgresStorage is the pgxpool-backed implementation of the storage
// interfaces.
type PostgresStorage struct {
	pool        *pgxpool.Pool
	ingredients *PostgresIngredientsStorage
	meals       *PostgresMealsStorage
}

// New connects to Postgres and verifies the connection.
func New(ctx context.Context, databaseURL string) (*PostgresStorage, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStorage{
		pool:        pool,
		ingredients: NewPostgresIngredientsStorage(pool),
		meals:       NewPostgresMealsStorage(pool),
	}, nil
}

// GetIngredientsStorage returns the ingredients storage.
func (p *PostgresStorage) GetIngredientsStorage() *PostgresIngredientsStorage {
	return p.ingredients
}

// GetMealsStorage returns the meals storage.
func (p *PostgresStorage) GetMealsStorage() *PostgresMealsStorage {
	return p.meals
}

// UsersStorage methods

func (p *PostgresStorage) UpsertUser(ctx context.Context, user *storage.User) error {
	query := `
		INSERT INTO users (id, username, password, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET username = EXCLUDED.username,
		    password = EXCLUDED.password,
		    updated_at = EXCLUDED.updated_at
	`

	_, err := p.pool.Exec(ctx, query,
		user.ID,
		user.Username,
		user.Password,
		user.CreatedAt,
		user.UpdatedAt,
	)

	return err
}

func (p *PostgresStorage) GetUser(ctx context.Context, id uuid.UUID) (*storage.User, error) {
	query := `
		SELECT id, username, password, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	return p.scanUser(p.pool.QueryRow(ctx, query, id))
}

func (p *PostgresStorage) GetUserByUsername(ctx context.Context, username string) (*storage.User, error) {
	query := `
		SELECT id, username, password, created_at, updated_at
		FROM users
		WHERE username = $1
	`

	return p.scanUser(p.pool.QueryRow(ctx, query, username))
}

func (p *PostgresStorage) DeleteUser(ctx context.Context, id uuid.UUID) error {
	result, err := p.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (p *PostgresStorage) scanUser(row pgx.Row) (*storage.User, error) {
	var u storage.User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Password,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, err
	}

	return &u, nil
}

func (p *PostgresStorage) Close() error {
	p.pool.Close()
	return nil
}
