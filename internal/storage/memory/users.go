package memory

import (
	"context"
	"sync"

	"caloriehub/internal/storage"

	"github.com/google/uuid"
)

// UsersMemoryStorage keeps user accounts in a mutex-guarded map.
type UsersMemoryStorage struct {
	mu    sync.RWMutex
	users map[uuid.UUID]storage.User
}

func NewUsersMemoryStorage() *UsersMemoryStorage {
	return &UsersMemoryStorage{
		users: make(map[uuid.UUID]storage.User),
	}
}

func (s *UsersMemoryStorage) UpsertUser(ctx context.Context, user *storage.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users[user.ID] = *user

	return nil
}

func (s *UsersMemoryStorage) GetUser(ctx context.Context, id uuid.UUID) (*storage.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}

	return &u, nil
}

func (s *UsersMemoryStorage) GetUserByUsername(ctx context.Context, username string) (*storage.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}

	return nil, ErrNotFound
}

func (s *UsersMemoryStorage) DeleteUser(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return ErrNotFound
	}

	delete(s.users, id)

	return nil
}

func (s *UsersMemoryStorage) Close() error {
	return nil
}
