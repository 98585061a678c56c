package transcript

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "transcript.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStoreSessionAndTurns(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	sessionID, err := store.BeginSession(ctx, "gpt-4o-realtime-preview-2024-10-01", "manual")
	require.NoError(t, err)
	assert.Positive(t, sessionID)

	require.NoError(t, store.AppendTurn(ctx, sessionID, RoleUser, KindText, "hello"))
	require.NoError(t, store.AppendTurn(ctx, sessionID, RoleAssistant, KindTranscript, "hi, how can I help?"))
	require.NoError(t, store.AppendTurn(ctx, sessionID, RoleTool, KindToolCall, `get_time {}`))

	turns, err := store.Turns(ctx, sessionID)
	require.NoError(t, err)
	require.Len(t, turns, 3)

	assert.Equal(t, RoleUser, turns[0].Role)
	assert.Equal(t, KindText, turns[0].Kind)
	assert.Equal(t, "hello", turns[0].Content)
	assert.Equal(t, RoleAssistant, turns[1].Role)
	assert.Equal(t, RoleTool, turns[2].Role)
	for _, turn := range turns {
		assert.Equal(t, sessionID, turn.SessionID)
		assert.False(t, turn.CreatedAt.IsZero())
	}
}

func TestStoreSessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	first, err := store.BeginSession(ctx, "model-a", "manual")
	require.NoError(t, err)
	second, err := store.BeginSession(ctx, "model-b", "server_vad")
	require.NoError(t, err)

	require.NoError(t, store.AppendTurn(ctx, first, RoleUser, KindText, "one"))
	require.NoError(t, store.AppendTurn(ctx, second, RoleUser, KindText, "two"))

	turns, err := store.Turns(ctx, first)
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, "one", turns[0].Content)
}

func TestStoreEmptySession(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	sessionID, err := store.BeginSession(ctx, "model", "manual")
	require.NoError(t, err)

	turns, err := store.Turns(ctx, sessionID)
	require.NoError(t, err)
	assert.Empty(t, turns)
}
