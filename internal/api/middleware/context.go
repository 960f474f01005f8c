package middleware

import (
	"context"
	"net/http"
)

type contextKey string

const (
	userIDKey     contextKey = "user_id"
	authMethodKey contextKey = "auth_method"
)

const (
	AuthMethodJWT    = "jwt"
	AuthMethodAPIKey = "api_key"
)

func SetUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// GetUserID returns the authenticated caller. The empty string is never a valid id.
func GetUserID(r *http.Request) (string, bool) {
	id, ok := r.Context().Value(userIDKey).(string)
	return id, ok && id != ""
}

func setAuthMethod(ctx context.Context, method string) context.Context {
	return context.WithValue(ctx, authMethodKey, method)
}

func GetAuthMethod(r *http.Request) string {
	method, _ := r.Context().Value(authMethodKey).(string)
	return method
}
