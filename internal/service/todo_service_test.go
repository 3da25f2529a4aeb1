package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go-todo-api/internal/model"
	"go-todo-api/internal/repository"
)

func newTodoService(t *testing.T) (*TodoService, *repository.MemoryTodoStore) {
	t.Helper()

	store := repository.NewMemoryTodoStore()
	return NewTodoService(store, 5*time.Second), store
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestTodoCreate(t *testing.T) {
	t.Parallel()

	svc, _ := newTodoService(t)

	t.Run("creates with sanitized fields", func(t *testing.T) {
		todo, err := svc.Create(context.Background(), "user-1", model.CreateTodoRequest{
			Title:       "  Buy milk <b>today</b> ",
			Description: `Remember the <script>alert("xss")</script>receipt`,
		})
		require.NoError(t, err)
		require.Equal(t, "Buy milk today", todo.Title)
		require.Equal(t, "Remember the receipt", todo.Description)
		require.False(t, todo.IsCompleted)
		require.Nil(t, todo.CompletedAt)
		require.Equal(t, "user-1", todo.UserID)
	})

	t.Run("rejects empty title", func(t *testing.T) {
		_, err := svc.Create(context.Background(), "user-1", model.CreateTodoRequest{Title: "   "})
		require.ErrorIs(t, err, model.ErrInvalidInput)
	})

	t.Run("rejects title that is only markup", func(t *testing.T) {
		_, err := svc.Create(context.Background(), "user-1", model.CreateTodoRequest{Title: "<b></b>"})
		require.ErrorIs(t, err, model.ErrInvalidInput)
	})

	t.Run("rejects over-long title", func(t *testing.T) {
		_, err := svc.Create(context.Background(), "user-1", model.CreateTodoRequest{
			Title: strings.Repeat("a", 201),
		})
		require.ErrorIs(t, err, model.ErrInvalidInput)
	})

	t.Run("rejects over-long description", func(t *testing.T) {
		_, err := svc.Create(context.Background(), "user-1", model.CreateTodoRequest{
			Title:       "ok",
			Description: strings.Repeat("a", 1001),
		})
		require.ErrorIs(t, err, model.ErrInvalidInput)
	})
}

func TestTodoUpdate(t *testing.T) {
	t.Parallel()

	svc, _ := newTodoService(t)

	todo, err := svc.Create(context.Background(), "user-1", model.CreateTodoRequest{Title: "Buy milk"})
	require.NoError(t, err)

	t.Run("applies only provided fields", func(t *testing.T) {
		updated, err := svc.Update(context.Background(), "user-1", todo.ID, model.UpdateTodoRequest{
			Description: strPtr("semi-skimmed"),
		})
		require.NoError(t, err)
		require.Equal(t, "Buy milk", updated.Title)
		require.Equal(t, "semi-skimmed", updated.Description)
	})

	t.Run("stamps completion once", func(t *testing.T) {
		completed, err := svc.Update(context.Background(), "user-1", todo.ID, model.UpdateTodoRequest{
			IsCompleted: boolPtr(true),
		})
		require.NoError(t, err)
		require.True(t, completed.IsCompleted)
		require.NotNil(t, completed.CompletedAt)

		stamp := *completed.CompletedAt
		again, err := svc.Update(context.Background(), "user-1", todo.ID, model.UpdateTodoRequest{
			Title: strPtr("Buy oat milk"),
		})
		require.NoError(t, err)
		require.True(t, again.IsCompleted)
		require.Equal(t, stamp, *again.CompletedAt)
	})

	t.Run("clears completion stamp", func(t *testing.T) {
		reopened, err := svc.Update(context.Background(), "user-1", todo.ID, model.UpdateTodoRequest{
			IsCompleted: boolPtr(false),
		})
		require.NoError(t, err)
		require.False(t, reopened.IsCompleted)
		require.Nil(t, reopened.CompletedAt)
	})

	t.Run("rejects clearing the title", func(t *testing.T) {
		_, err := svc.Update(context.Background(), "user-1", todo.ID, model.UpdateTodoRequest{
			Title: strPtr(" "),
		})
		require.ErrorIs(t, err, model.ErrInvalidInput)
	})
}

func TestTodoScoping(t *testing.T) {
	t.Parallel()

	svc, _ := newTodoService(t)

	mine, err := svc.Create(context.Background(), "user-1", model.CreateTodoRequest{Title: "mine"})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), "user-2", model.CreateTodoRequest{Title: "theirs"})
	require.NoError(t, err)

	t.Run("list returns only own todos", func(t *testing.T) {
		todos, err := svc.List(context.Background(), "user-1")
		require.NoError(t, err)
		require.Len(t, todos, 1)
		require.Equal(t, "mine", todos[0].Title)
	})

	t.Run("another user's todo reads as missing", func(t *testing.T) {
		_, err := svc.Get(context.Background(), "user-2", mine.ID)
		require.ErrorIs(t, err, model.ErrTodoNotFound)

		_, err = svc.Update(context.Background(), "user-2", mine.ID, model.UpdateTodoRequest{Title: strPtr("hijacked")})
		require.ErrorIs(t, err, model.ErrTodoNotFound)

		err = svc.Delete(context.Background(), "user-2", mine.ID)
		require.ErrorIs(t, err, model.ErrTodoNotFound)
	})

	t.Run("owner can delete", func(t *testing.T) {
		require.NoError(t, svc.Delete(context.Background(), "user-1", mine.ID))

		todos, err := svc.List(context.Background(), "user-1")
		require.NoError(t, err)
		require.Empty(t, todos)
	})
}

func TestTodoListOrdering(t *testing.T) {
	t.Parallel()

	store := repository.NewMemoryTodoStore()
	svc := NewTodoService(store, 5*time.Second)

	base := time.Now().UTC()
	for i, title := range []string{"first", "second", "third"} {
		created := base.Add(time.Duration(i) * time.Second)
		svc.now = func() time.Time { return created }
		_, err := svc.Create(context.Background(), "user-1", model.CreateTodoRequest{Title: title})
		require.NoError(t, err)
	}

	todos, err := svc.List(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, todos, 3)
	require.Equal(t, "third", todos[0].Title)
	require.Equal(t, "first", todos[2].Title)
}
