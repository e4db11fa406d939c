package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"inventory-api/internal/domain"
	"inventory-api/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type contextKey string

const (
	PublicIDKey contextKey = "public_id"
	UsernameKey contextKey = "username"
)

// UserResolver looks up the account behind a verified token. The auth gate
// rejects tokens whose public identifier no longer resolves to a user.
type UserResolver interface {
	FindByPublicID(ctx context.Context, publicID uuid.UUID) (*domain.User, error)
}

// AuthMiddleware validates bearer tokens and injects the resolved identity
// into the request context. It is a pure gate: no mutation, and the body is
// never read.
func AuthMiddleware(jwtSecret string, users UserResolver, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Extract token from Authorization header
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Debug("Missing authorization header")
				RespondWithError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			// Check for Bearer token format
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				logger.Debug("Invalid authorization header format")
				RespondWithError(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			tokenString := parts[1]

			// Parse and validate token
			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
				// Validate signing method
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})

			if err != nil {
				logger.Debug("Token validation failed", zap.Error(err))
				if errors.Is(err, jwt.ErrTokenExpired) {
					RespondWithError(w, http.StatusUnauthorized, "token expired")
				} else {
					RespondWithError(w, http.StatusUnauthorized, "invalid token")
				}
				return
			}

			if !token.Valid {
				logger.Debug("Invalid token")
				RespondWithError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			// Extract claims
			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				logger.Error("Failed to extract claims from token")
				RespondWithError(w, http.StatusUnauthorized, "invalid token claims")
				return
			}

			publicIDStr, ok := claims["public_id"].(string)
			if !ok {
				logger.Error("Missing public_id in token claims")
				RespondWithError(w, http.StatusUnauthorized, "invalid token claims")
				return
			}

			publicID, err := uuid.Parse(publicIDStr)
			if err != nil {
				logger.Debug("Malformed public_id in token claims", zap.Error(err))
				RespondWithError(w, http.StatusUnauthorized, "invalid token claims")
				return
			}

			// Resolve the account. A token can outlive its user if the
			// record is removed out-of-band; treat that as unauthenticated.
			user, err := users.FindByPublicID(r.Context(), publicID)
			if err != nil {
				if errors.Is(err, repository.ErrUserNotFound) {
					logger.Debug("Token references unknown user", zap.String("public_id", publicIDStr))
					RespondWithError(w, http.StatusUnauthorized, "invalid token")
					return
				}
				logger.Error("Failed to resolve user from token", zap.Error(err))
				RespondWithError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			// Add user info to context
			ctx := context.WithValue(r.Context(), PublicIDKey, user.PublicID)
			ctx = context.WithValue(ctx, UsernameKey, user.Username)

			logger.Debug("User authenticated",
				zap.String("public_id", user.PublicID.String()),
				zap.String("username", user.Username),
			)

			// Call next handler with updated context
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetPublicID extracts the authenticated user's public identifier from the
// request context
func GetPublicID(ctx context.Context) (uuid.UUID, bool) {
	publicID, ok := ctx.Value(PublicIDKey).(uuid.UUID)
	return publicID, ok
}

// GetUsername extracts the authenticated username from the request context
func GetUsername(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(UsernameKey).(string)
	return username, ok
}
