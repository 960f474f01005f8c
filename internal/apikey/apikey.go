// Package apikey issues long-lived API keys. The raw key is returned once;
// only its bcrypt hash and lookup prefix are stored.
package apikey

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	mw "github.com/kiranshivaraju/meeteo/internal/api/middleware"
	"github.com/kiranshivaraju/meeteo/pkg/models"
	"golang.org/x/crypto/bcrypt"
)

const (
	keyPrefix   = "mtk_"
	randomBytes = 24
)

var ErrInvalidInput = errors.New("user id and key name are required")

// Creator persists a new key.
type Creator interface {
	CreateAPIKey(ctx context.Context, key *models.APIKey) error
}

// Issued is a stored key together with its raw secret.
type Issued struct {
	Key    *models.APIKey
	RawKey string
}

// Generate returns a new random raw key.
func Generate() (string, error) {
	buf := make([]byte, randomBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return keyPrefix + hex.EncodeToString(buf), nil
}

// Issue creates and stores a key named name for userID.
func Issue(ctx context.Context, store Creator, userID, name string, cost int) (*Issued, error) {
	userID = strings.TrimSpace(userID)
	name = strings.TrimSpace(name)
	if userID == "" || name == "" {
		return nil, ErrInvalidInput
	}

	raw, err := Generate()
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), cost)
	if err != nil {
		return nil, fmt.Errorf("hash api key: %w", err)
	}

	now := time.Now().UTC()
	key := &models.APIKey{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		KeyHash:   string(hash),
		KeyPrefix: raw[:mw.KeyPrefixLen],
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := store.CreateAPIKey(ctx, key); err != nil {
		return nil, fmt.Errorf("store api key: %w", err)
	}
	return &Issued{Key: key, RawKey: raw}, nil
}
