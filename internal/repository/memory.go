package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go-todo-api/internal/model"
)

// MemoryUserStore is an in-memory drop-in for UserRepository, used by
// tests and local development without PostgreSQL.
type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]model.User
	roles map[string][]string
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		users: map[string]model.User{},
		roles: map[string][]string{},
	}
}

func (s *MemoryUserStore) FindByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.users {
		if strings.ToLower(u.Email) == needle {
			return u, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (s *MemoryUserStore) FindByID(_ context.Context, id string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func (s *MemoryUserStore) GetRoles(_ context.Context, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	roles := append([]string(nil), s.roles[userID]...)
	sort.Strings(roles)
	return roles, nil
}

func (s *MemoryUserStore) Create(_ context.Context, u model.User, roles []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return model.ErrUserAlreadyExists
		}
	}

	s.users[u.ID] = u
	s.roles[u.ID] = append([]string(nil), roles...)
	return nil
}

func (s *MemoryUserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := s.FindByEmail(ctx, email)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (s *MemoryUserStore) IncrementFailedAttempts(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return 0, model.ErrUserNotFound
	}
	u.FailedLoginAttempts++
	s.users[userID] = u
	return u.FailedLoginAttempts, nil
}

func (s *MemoryUserStore) LockAccount(_ context.Context, userID string, until time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return model.ErrUserNotFound
	}
	u.LockedUntil = &until
	u.FailedLoginAttempts = 0
	s.users[userID] = u
	return nil
}

func (s *MemoryUserStore) ResetFailedAttempts(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return model.ErrUserNotFound
	}
	u.FailedLoginAttempts = 0
	u.LockedUntil = nil
	s.users[userID] = u
	return nil
}

// MemoryTodoStore is the in-memory counterpart of TodoRepository.
type MemoryTodoStore struct {
	mu    sync.RWMutex
	todos map[string]model.Todo
}

func NewMemoryTodoStore() *MemoryTodoStore {
	return &MemoryTodoStore{todos: map[string]model.Todo{}}
}

func (s *MemoryTodoStore) ListByUser(_ context.Context, userID string) ([]model.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	todos := []model.Todo{}
	for _, t := range s.todos {
		if t.UserID == userID {
			todos = append(todos, t)
		}
	}

	sort.Slice(todos, func(i, j int) bool {
		return todos[i].CreatedAt.After(todos[j].CreatedAt)
	})
	return todos, nil
}

func (s *MemoryTodoStore) FindByID(_ context.Context, userID string, id string) (model.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.todos[id]
	if !ok || t.UserID != userID {
		return model.Todo{}, model.ErrTodoNotFound
	}
	return t, nil
}

func (s *MemoryTodoStore) Create(_ context.Context, t model.Todo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.todos[t.ID] = t
	return nil
}

func (s *MemoryTodoStore) Update(_ context.Context, t model.Todo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.todos[t.ID]
	if !ok || existing.UserID != t.UserID {
		return model.ErrTodoNotFound
	}
	s.todos[t.ID] = t
	return nil
}

func (s *MemoryTodoStore) Delete(_ context.Context, userID string, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.todos[id]
	if !ok || t.UserID != userID {
		return model.ErrTodoNotFound
	}
	delete(s.todos, id)
	return nil
}
