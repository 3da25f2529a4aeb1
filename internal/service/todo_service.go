package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"go-todo-api/internal/model"
	"go-todo-api/internal/util"
)

const (
	maxTitleRunes       = 200
	maxDescriptionRunes = 1000
)

type todoStore interface {
	ListByUser(ctx context.Context, userID string) ([]model.Todo, error)
	FindByID(ctx context.Context, userID string, id string) (model.Todo, error)
	Create(ctx context.Context, t model.Todo) error
	Update(ctx context.Context, t model.Todo) error
	Delete(ctx context.Context, userID string, id string) error
}

type TodoService struct {
	store        todoStore
	queryTimeout time.Duration
	now          func() time.Time
}

func NewTodoService(store todoStore, queryTimeout time.Duration) *TodoService {
	if queryTimeout <= 0 {
		queryTimeout = 5 * time.Second
	}

	return &TodoService{store: store, queryTimeout: queryTimeout, now: time.Now}
}

func (s *TodoService) List(ctx context.Context, userID string) ([]model.Todo, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	return s.store.ListByUser(ctx, userID)
}

func (s *TodoService) Get(ctx context.Context, userID string, id string) (model.Todo, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	return s.store.FindByID(ctx, userID, id)
}

func (s *TodoService) Create(ctx context.Context, userID string, req model.CreateTodoRequest) (model.Todo, error) {
	title := util.SanitizeText(req.Title)
	description := util.SanitizeText(req.Description)

	if title == "" {
		return model.Todo{}, model.ErrInvalidInput
	}
	if len([]rune(title)) > maxTitleRunes || len([]rune(description)) > maxDescriptionRunes {
		return model.Todo{}, model.ErrInvalidInput
	}

	now := s.now().UTC()
	todo := model.Todo{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       title,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	if err := s.store.Create(ctx, todo); err != nil {
		return model.Todo{}, err
	}

	return todo, nil
}

// Update applies only the fields present in the request. Marking a
// todo completed stamps completed_at once; clearing completion clears
// the stamp.
func (s *TodoService) Update(ctx context.Context, userID string, id string, req model.UpdateTodoRequest) (model.Todo, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	todo, err := s.store.FindByID(ctx, userID, id)
	if err != nil {
		return model.Todo{}, err
	}

	if req.Title != nil {
		title := util.SanitizeText(*req.Title)
		if title == "" || len([]rune(title)) > maxTitleRunes {
			return model.Todo{}, model.ErrInvalidInput
		}
		todo.Title = title
	}

	if req.Description != nil {
		description := util.SanitizeText(*req.Description)
		if len([]rune(description)) > maxDescriptionRunes {
			return model.Todo{}, model.ErrInvalidInput
		}
		todo.Description = description
	}

	if req.IsCompleted != nil {
		todo.IsCompleted = *req.IsCompleted
	}

	now := s.now().UTC()
	if todo.IsCompleted && todo.CompletedAt == nil {
		todo.CompletedAt = &now
	} else if !todo.IsCompleted {
		todo.CompletedAt = nil
	}
	todo.UpdatedAt = now

	if err := s.store.Update(ctx, todo); err != nil {
		return model.Todo{}, err
	}

	return todo, nil
}

func (s *TodoService) Delete(ctx context.Context, userID string, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	return s.store.Delete(ctx, userID, id)
}
