package handlers

import (
	"context"
	"sync"
	"time"

	"usermgmt/internal/models"
	"usermgmt/internal/storage"
)

// memoryStore is an in-memory storage.UserStore used by handler tests. It
// mirrors the Postgres store's contract, including the unique-username
// conflict on create and update.
type memoryStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]models.User
}

var _ storage.UserStore = (*memoryStore)(nil)

func newMemoryStore() *memoryStore {
	return &memoryStore{users: make(map[int64]models.User)}
}

func (m *memoryStore) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Username == user.Username {
			return models.User{}, storage.ErrAlreadyExists
		}
	}
	m.nextID++
	user.ID = m.nextID
	user.CreatedAt = time.Now()
	m.users[user.ID] = user
	return user, nil
}

func (m *memoryStore) FindByID(ctx context.Context, id int64) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return user, nil
}

func (m *memoryStore) FindByUsername(ctx context.Context, username string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Username == username {
			return user, nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

func (m *memoryStore) UpdateUser(ctx context.Context, user models.User) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.users[user.ID]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	for id, other := range m.users {
		if id != user.ID && other.Username == user.Username {
			return models.User{}, storage.ErrAlreadyExists
		}
	}
	existing.Username = user.Username
	existing.PasswordHash = user.PasswordHash
	m.users[user.ID] = existing
	return existing, nil
}

func (m *memoryStore) DeleteUser(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *memoryStore) ListExcludingRole(ctx context.Context, excludedRole, username string) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.User
	for id := int64(1); id <= m.nextID; id++ {
		user, ok := m.users[id]
		if !ok || user.Role == excludedRole {
			continue
		}
		if username != "" && user.Username != username {
			continue
		}
		out = append(out, user)
	}
	return out, nil
}

func (m *memoryStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}
