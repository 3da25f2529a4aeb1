package middleware

import (
	"encoding/json"
	"net/http"

	"go-todo-api/internal/model"
)

func jsonEncode(w http.ResponseWriter, value any) error {
	return json.NewEncoder(w).Encode(value)
}

// writeGateError emits the generic gate failure body. The status code
// is the only distinction the wire ever carries between gate checks.
func writeGateError(w http.ResponseWriter, status int, code string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = jsonEncode(w, model.APIResponse{
		Success: false,
		Error: &model.APIError{
			Code:    code,
			Message: message,
		},
	})
}
