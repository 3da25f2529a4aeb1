package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"go-todo-api/internal/model"
	"go-todo-api/pkg/apierror"
)

func writeSuccess(w http.ResponseWriter, status int, data any, meta *model.Meta) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	body := &model.APIError{
		Code:    "INTERNAL_ERROR",
		Message: "Unexpected server error",
	}

	var apiErr *apierror.APIError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatus
		body.Code = apiErr.Code
		body.Message = apiErr.Message
		body.Details = apiErr.Details
	case errors.Is(err, model.ErrInvalidCredentials), errors.Is(err, model.ErrAccountLocked):
		// Locked accounts answer exactly like wrong passwords so the
		// response cannot be used to probe account state.
		status = http.StatusUnauthorized
		body.Code = "UNAUTHORIZED"
		body.Message = "Invalid credentials"
	case errors.Is(err, model.ErrBadSignature),
		errors.Is(err, model.ErrWrongAudience),
		errors.Is(err, model.ErrTokenExpired),
		errors.Is(err, model.ErrMalformedToken),
		errors.Is(err, model.ErrUnauthorized):
		status = http.StatusUnauthorized
		body.Code = "UNAUTHORIZED"
		body.Message = "Invalid or expired token"
	case errors.Is(err, model.ErrForbidden):
		status = http.StatusForbidden
		body.Code = "FORBIDDEN"
		body.Message = "Access denied"
	case errors.Is(err, model.ErrUserNotFound):
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "User not found"
	case errors.Is(err, model.ErrUserAlreadyExists):
		status = http.StatusConflict
		body.Code = "ALREADY_EXISTS"
		body.Message = "User already exists"
	case errors.Is(err, model.ErrWeakPassword):
		status = http.StatusBadRequest
		body.Code = "BAD_REQUEST"
		body.Message = "Password does not meet the password policy"
	case errors.Is(err, model.ErrTodoNotFound):
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "Todo not found"
	case errors.Is(err, model.ErrInvalidInput):
		status = http.StatusBadRequest
		body.Code = "BAD_REQUEST"
		body.Message = "Invalid input"
	default:
		// Log unclassified errors so they are visible in container logs.
		slog.Error("unhandled error in writeError", "error", err.Error())
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: false,
		Error:   body,
	})
}
