package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"

	"github.com/sportsync/matchday/models"
)

type contextKey string

const callerContextKey contextKey = "caller"

// Имена JWT claims
const (
	jwtClaimUserID = "user_id"
	jwtClaimRole   = "role"
)

// Authenticate resolves the Bearer token into a models.Caller and stores it
// in the request context. A missing token yields an anonymous caller, which
// is enough for public reads and published-tournament subscriptions; an
// invalid or expired token is rejected outright.
func Authenticate(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r.WithContext(withCaller(r.Context(), models.Caller{})))
				return
			}

			tokenString := strings.TrimPrefix(header, "Bearer ")
			if tokenString == header {
				http.Error(w, "invalid authorization header", http.StatusUnauthorized)
				return
			}

			caller, err := parseToken(tokenString, secret)
			if err != nil {
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(withCaller(r.Context(), caller)))
		})
	}
}

// RequireUser rejects anonymous requests. Must run after Authenticate.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if CallerFromContext(r.Context()).Anonymous() {
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func parseToken(tokenString string, secret []byte) (models.Caller, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return models.Caller{}, jwt.ErrTokenUnverifiable
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.Caller{}, jwt.ErrTokenInvalidClaims
	}

	caller := models.Caller{Role: models.RoleViewer}
	if id, ok := claims[jwtClaimUserID].(float64); ok {
		caller.UserID = int(id)
	}
	if role, ok := claims[jwtClaimRole].(string); ok && role != "" {
		caller.Role = role
	}
	if caller.UserID <= 0 {
		return models.Caller{}, jwt.ErrTokenInvalidClaims
	}
	return caller, nil
}

func withCaller(ctx context.Context, caller models.Caller) context.Context {
	return context.WithValue(ctx, callerContextKey, caller)
}

// CallerFromContext returns the authenticated caller, or an anonymous one
// when the request carried no token.
func CallerFromContext(ctx context.Context) models.Caller {
	caller, ok := ctx.Value(callerContextKey).(models.Caller)
	if !ok {
		return models.Caller{}
	}
	return caller
}
