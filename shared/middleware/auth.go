package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lectern-dev/lectern/shared/domain"
	jwt_internal "github.com/lectern-dev/lectern/shared/jwt"
)

// Key to store the user claims in the request context
type key int

const UserClaimsKey key = 0

var (
	errNoToken       = errors.New("no access token")
	errInvalidClaims = errors.New("invalid token claims")
)

// Auth holds dependencies for authentication middleware
type Auth struct {
	jwtService jwt_internal.JwtService
}

func NewAuth(jwtService jwt_internal.JwtService) *Auth {
	return &Auth{jwtService: jwtService}
}

// NeedAuth returns middleware that requires a valid access token.
// School-level authorization is not decided here; that is the permission
// engine's job once a membership is resolved.
func (a *Auth) NeedAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := a.extractUser(r)
			if err != nil {
				http.Error(w, "Not authorized", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), UserClaimsKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractUser extracts and validates user from JWT token in request
func (a *Auth) extractUser(r *http.Request) (*domain.User, error) {
	// Try to get token from cookie first (for browser clients)
	var tokenString string
	accessCookie, err := r.Cookie("accessToken")
	if err == nil {
		tokenString = accessCookie.Value
	} else if token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); found {
		// If no cookie, try Authorization header (for API/mobile clients)
		tokenString = token
	}

	if tokenString == "" {
		return nil, errNoToken
	}

	token, err := a.jwtService.DecodeToken(tokenString)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errInvalidClaims
	}

	uid, ok := claims["uid"].(string)
	if !ok || uid == "" {
		return nil, errInvalidClaims
	}

	name, _ := claims["name"].(string)

	return &domain.User{Id: uid, Name: name}, nil
}

// GetUserFromContext returns the authenticated user, or nil outside NeedAuth.
func GetUserFromContext(r *http.Request) *domain.User {
	user, _ := r.Context().Value(UserClaimsKey).(*domain.User)
	return user
}
