package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/meeteo/internal/store"
	"github.com/kiranshivaraju/meeteo/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	keys    []*models.APIKey
	revoked []uuid.UUID
}

func (m *memStore) Ping(_ context.Context) error { return nil }
func (m *memStore) CreateSubmission(_ context.Context, _ *models.Submission) error {
	return nil
}
func (m *memStore) ListSubmissions(_ context.Context, _ string) ([]*models.Submission, error) {
	return nil, nil
}
func (m *memStore) GetAPIKeyByPrefix(_ context.Context, _ string) ([]*models.APIKey, error) {
	return nil, nil
}
func (m *memStore) UpdateAPIKeyLastUsed(_ context.Context, _ uuid.UUID) error { return nil }
func (m *memStore) CreateAPIKey(_ context.Context, key *models.APIKey) error {
	for _, k := range m.keys {
		if k.UserID == key.UserID && k.Name == key.Name {
			return store.ErrDuplicateKey
		}
	}
	m.keys = append(m.keys, key)
	return nil
}
func (m *memStore) ListAPIKeys(_ context.Context, userID string) ([]*models.APIKey, error) {
	var out []*models.APIKey
	for _, k := range m.keys {
		if k.UserID == userID {
			out = append(out, k)
		}
	}
	return out, nil
}
func (m *memStore) RevokeAPIKey(_ context.Context, id uuid.UUID, userID string) error {
	for _, k := range m.keys {
		if k.ID == id && k.UserID == userID {
			m.revoked = append(m.revoked, id)
			return nil
		}
	}
	return store.ErrNotFound
}

var _ store.Store = (*memStore)(nil)

func TestParseCommand(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"create", []string{"create", "-user", "u1", "-name", "laptop"}, ""},
		{"list", []string{"list", "-user", "u1"}, ""},
		{"revoke", []string{"revoke", "-user", "u1", "-id", id.String()}, ""},
		{"unknown command", []string{"rotate", "-user", "u1"}, "unknown command"},
		{"missing user", []string{"list"}, "-user is required"},
		{"create without name", []string{"create", "-user", "u1"}, "-name is required"},
		{"revoke bad id", []string{"revoke", "-user", "u1", "-id", "nope"}, "-id must be a UUID"},
		{"unknown flag", []string{"list", "-user", "u1", "-force"}, "flag provided but not defined"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := parseCommand(tt.args)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.args[0], cmd.name)
			assert.Equal(t, "u1", cmd.userID)
		})
	}
}

func TestRun_NoArgs(t *testing.T) {
	err := run(context.Background(), nil, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "usage")
}

func TestExec_CreateListRevoke(t *testing.T) {
	ms := &memStore{}
	ctx := context.Background()

	var out bytes.Buffer
	create, err := parseCommand([]string{"create", "-user", "auth0|alice", "-name", "laptop"})
	require.NoError(t, err)
	require.NoError(t, create.exec(ctx, ms, &out))
	assert.Contains(t, out.String(), "key: mtk_")
	require.Len(t, ms.keys, 1)

	out.Reset()
	err = create.exec(ctx, ms, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already has a key")

	used := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	ms.keys[0].LastUsedAt = &used

	out.Reset()
	list, err := parseCommand([]string{"list", "-user", "auth0|alice"})
	require.NoError(t, err)
	require.NoError(t, list.exec(ctx, ms, &out))
	assert.Contains(t, out.String(), "laptop")
	assert.Contains(t, out.String(), "2026-01-02T03:04:05Z")

	out.Reset()
	revoke, err := parseCommand([]string{"revoke", "-user", "auth0|alice", "-id", ms.keys[0].ID.String()})
	require.NoError(t, err)
	require.NoError(t, revoke.exec(ctx, ms, &out))
	assert.Equal(t, []uuid.UUID{ms.keys[0].ID}, ms.revoked)

	missing, err := parseCommand([]string{"revoke", "-user", "auth0|bob", "-id", ms.keys[0].ID.String()})
	require.NoError(t, err)
	err = missing.exec(ctx, ms, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no active key")
}
