package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/kiranshivaraju/meeteo/internal/api/response"
	"github.com/kiranshivaraju/meeteo/internal/config"
	"github.com/kiranshivaraju/meeteo/internal/store"
	"golang.org/x/crypto/bcrypt"
)

const KeyPrefixLen = 8

var errNoSubject = errors.New("token has no subject")

// Auth verifies bearer credentials. A token shaped like a JWT is checked
// against the configured HS256 secret; anything else is treated as an API key.
type Auth struct {
	store store.Store
	cfg   config.AuthConfig
}

// NewAuth creates a new Auth middleware.
func NewAuth(s store.Store, cfg config.AuthConfig) *Auth {
	return &Auth{store: s, cfg: cfg}
}

// Authenticate resolves the caller's user id and stores it in the request context.
func (a *Auth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			response.Error(w, http.StatusUnauthorized,
				"INVALID_TOKEN", "Missing or invalid Authorization header", nil)
			return
		}

		if looksLikeJWT(token) && a.cfg.JWTSecret != "" {
			userID, err := a.verifyJWT(token)
			if err != nil {
				slog.Debug("jwt rejected", "error", err)
				response.Error(w, http.StatusUnauthorized,
					"INVALID_TOKEN", "Invalid or expired token", nil)
				return
			}
			ctx := SetUserID(r.Context(), userID)
			ctx = setAuthMethod(ctx, AuthMethodJWT)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		if len(token) < KeyPrefixLen {
			response.Error(w, http.StatusUnauthorized,
				"INVALID_TOKEN", "Invalid API key format", nil)
			return
		}

		userID, ok, err := a.verifyAPIKey(r.Context(), token)
		if err != nil {
			response.Error(w, http.StatusInternalServerError,
				"INTERNAL_ERROR", "Failed to validate API key", nil)
			return
		}
		if !ok {
			response.Error(w, http.StatusUnauthorized,
				"INVALID_TOKEN", "Invalid API key", nil)
			return
		}

		ctx := SetUserID(r.Context(), userID)
		ctx = setAuthMethod(ctx, AuthMethodAPIKey)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *Auth) verifyJWT(raw string) (string, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if a.cfg.JWTIssuer != "" {
		opts = append(opts, jwt.WithIssuer(a.cfg.JWTIssuer))
	}
	if a.cfg.JWTAudience != "" {
		opts = append(opts, jwt.WithAudience(a.cfg.JWTAudience))
	}

	token, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(*jwt.Token) (any, error) {
		return []byte(a.cfg.JWTSecret), nil
	}, opts...)
	if err != nil {
		return "", err
	}
	sub, err := token.Claims.GetSubject()
	if err != nil {
		return "", err
	}
	if sub == "" {
		return "", errNoSubject
	}
	return sub, nil
}

func (a *Auth) verifyAPIKey(ctx context.Context, raw string) (string, bool, error) {
	keys, err := a.store.GetAPIKeyByPrefix(ctx, raw[:KeyPrefixLen])
	if err != nil {
		return "", false, err
	}

	// Find matching key by bcrypt comparison
	for _, key := range keys {
		if bcrypt.CompareHashAndPassword([]byte(key.KeyHash), []byte(raw)) == nil {
			// Update last_used_at async
			go func() {
				if err := a.store.UpdateAPIKeyLastUsed(context.Background(), key.ID); err != nil {
					slog.Warn("failed to update api key last_used_at", "key_id", key.ID, "error", err)
				}
			}()
			return key.UserID, true, nil
		}
	}
	return "", false, nil
}

func looksLikeJWT(token string) bool {
	return strings.Count(token, ".") == 2
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
