package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-todo-api/internal/model"
)

// TodoRepository scopes every query by owner id; a todo belonging to
// another user is indistinguishable from a missing one.
type TodoRepository struct {
	pool *pgxpool.Pool
}

func NewTodoRepository(pool *pgxpool.Pool) *TodoRepository {
	return &TodoRepository{pool: pool}
}

func (r *TodoRepository) ListByUser(ctx context.Context, userID string) ([]model.Todo, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, title, description, is_completed, completed_at, created_at, updated_at
		 FROM todos WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()

	todos := []model.Todo{}
	for rows.Next() {
		var t model.Todo
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.IsCompleted,
			&t.CompletedAt, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		todos = append(todos, t)
	}

	return todos, rows.Err()
}

func (r *TodoRepository) FindByID(ctx context.Context, userID string, id string) (model.Todo, error) {
	var t model.Todo
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, title, description, is_completed, completed_at, created_at, updated_at
		 FROM todos WHERE id = $1 AND user_id = $2`, id, userID).
		Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.IsCompleted,
			&t.CompletedAt, &t.CreatedAt, &t.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.Todo{}, model.ErrTodoNotFound
	}
	if err != nil {
		return model.Todo{}, fmt.Errorf("find todo: %w", err)
	}
	return t, nil
}

func (r *TodoRepository) Create(ctx context.Context, t model.Todo) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO todos (id, user_id, title, description, is_completed, completed_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		t.ID, t.UserID, t.Title, t.Description, t.IsCompleted, t.CompletedAt, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create todo: %w", err)
	}
	return nil
}

func (r *TodoRepository) Update(ctx context.Context, t model.Todo) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE todos SET title = $3, description = $4, is_completed = $5, completed_at = $6, updated_at = $7
		 WHERE id = $1 AND user_id = $2`,
		t.ID, t.UserID, t.Title, t.Description, t.IsCompleted, t.CompletedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update todo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrTodoNotFound
	}
	return nil
}

func (r *TodoRepository) Delete(ctx context.Context, userID string, id string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM todos WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrTodoNotFound
	}
	return nil
}
