package middleware

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// MessageResponse is the body of every non-2xx response:
// a single human-readable message.
type MessageResponse struct {
	Message string `json:"message"`
}

// RespondWithError sends a JSON error response with a {message} body
func RespondWithError(w http.ResponseWriter, statusCode int, message string) {
	RespondWithJSON(w, statusCode, MessageResponse{Message: message})
}

// RespondWithJSON sends a JSON response
func RespondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

// RespondWithValidationErrors sends a 400 response naming the violated rules
func RespondWithValidationErrors(w http.ResponseWriter, errors []ValidationError) {
	RespondWithError(w, http.StatusBadRequest, ValidationMessage(errors))
}

// ErrorHandlingMiddleware catches panics and converts them to 500 errors
func ErrorHandlingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("Panic recovered",
						zap.Any("error", err),
						zap.String("path", r.URL.Path),
						zap.String("method", r.Method),
					)

					RespondWithError(w, http.StatusInternalServerError, "internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
