package memory

import (
	"context"
	"errors"

	"caloriehub/internal/storage"

	"github.com/google/uuid"
)

// ErrNotFound is returned by every lookup that misses.
var ErrNotFound = errors.New("record not found")

// MemoryStorage is the in-memory implementation of the storage interfaces.
// It is the default when no DATABASE_URL is configured and the fixture for
// package tests. Writes are last-write-wins.
type MemoryStorage struct {
	users       *UsersMemoryStorage
	ingredients *IngredientsMemoryStorage
	meals       *MealsMemoryStorage
}

// New creates an empty MemoryStorage.
func New() *MemoryStorage {
	return &MemoryStorage{
		users:       NewUsersMemoryStorage(),
		ingredients: NewIngredientsMemoryStorage(),
		meals:       NewMealsMemoryStorage(),
	}
}

// UsersStorage methods - delegate to embedded users storage

func (m *MemoryStorage) UpsertUser(ctx context.Context, user *storage.User) error {
	return m.users.UpsertUser(ctx, user)
}

func (m *MemoryStorage) GetUser(ctx context.Context, id uuid.UUID) (*storage.User, error) {
	return m.users.GetUser(ctx, id)
}

func (m *MemoryStorage) GetUserByUsername(ctx context.Context, username string) (*storage.User, error) {
	return m.users.GetUserByUsername(ctx, username)
}

func (m *MemoryStorage) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return m.users.DeleteUser(ctx, id)
}

func (m *MemoryStorage) Close() error {
	// no-op for memory
	return nil
}

// GetIngredientsStorage returns the ingredients storage.
func (m *MemoryStorage) GetIngredientsStorage() *IngredientsMemoryStorage {
	return m.ingredients
}

// GetMealsStorage returns the meals storage.
func (m *MemoryStorage) GetMealsStorage() *MealsMemoryStorage {
	return m.meals
}
