package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-todo-api/internal/middleware"
	"go-todo-api/internal/model"
	"go-todo-api/internal/service"
	"go-todo-api/pkg/apierror"
)

type TodoHandler struct {
	service *service.TodoService
}

func NewTodoHandler(service *service.TodoService) *TodoHandler {
	return &TodoHandler{service: service}
}

func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthorized)
		return
	}

	todos, err := h.service.List(r.Context(), principal.SubjectID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, model.TodoList{Todos: todos}, &model.Meta{Count: len(todos)})
}

func (h *TodoHandler) Get(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthorized)
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, apierror.New("BAD_REQUEST", "todo id is required", "id", http.StatusBadRequest))
		return
	}

	todo, err := h.service.Get(r.Context(), principal.SubjectID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, todo, nil)
}

func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthorized)
		return
	}

	var payload model.CreateTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	todo, err := h.service.Create(r.Context(), principal.SubjectID, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, todo, nil)
}

func (h *TodoHandler) Update(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthorized)
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, apierror.New("BAD_REQUEST", "todo id is required", "id", http.StatusBadRequest))
		return
	}

	var payload model.UpdateTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	todo, err := h.service.Update(r.Context(), principal.SubjectID, id, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, todo, nil)
}

func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthorized)
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, apierror.New("BAD_REQUEST", "todo id is required", "id", http.StatusBadRequest))
		return
	}

	if err := h.service.Delete(r.Context(), principal.SubjectID, id); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"deleted": true}, nil)
}
