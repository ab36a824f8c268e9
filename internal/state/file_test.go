package state

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestFileStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state.json")
	store, err := NewFileStore(path, zap.NewNop())
	require.NoError(t, err)
	return store, path
}

func TestFileStoreLoadMissingCreatesDefault(t *testing.T) {
	t.Parallel()

	store, path := newTestFileStore(t)
	st := store.Load(context.Background())

	require.False(t, st.Notified)

	// The default must have been persisted immediately.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.JSONEq(t, `{"notified": false}`, string(data))
}

func TestFileStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store, _ := newTestFileStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, State{Notified: true}))
	st := store.Load(ctx)
	require.True(t, st.Notified)

	// save(load()) is a no-op on well-formed state.
	require.NoError(t, store.Save(ctx, st))
	require.True(t, store.Load(ctx).Notified)
}

func TestFileStoreLoadCorruptResetsToDefault(t *testing.T) {
	t.Parallel()

	store, path := newTestFileStore(t)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	st := store.Load(context.Background())
	require.False(t, st.Notified)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.JSONEq(t, `{"notified": false}`, string(data))
}

func TestFileStorePreservesUnknownFields(t *testing.T) {
	t.Parallel()

	store, path := newTestFileStore(t)
	ctx := context.Background()
	seed := `{"notified": false, "operator_note": "reset by hand", "version": 2}`
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o600))

	st := store.Load(ctx)
	require.False(t, st.Notified)

	st.Notified = true
	require.NoError(t, store.Save(ctx, st))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	require.JSONEq(t, `true`, string(raw["notified"]))
	require.JSONEq(t, `"reset by hand"`, string(raw["operator_note"]))
	require.JSONEq(t, `2`, string(raw["version"]))
}

func TestFileStoreSaveUnwritable(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "missing-dir", "state.json")
	store, err := NewFileStore(path, zap.NewNop())
	require.NoError(t, err)

	err = store.Save(context.Background(), State{Notified: true})
	require.ErrorIs(t, err, ErrUnwritable)
}

func TestNewFileStoreRequiresPath(t *testing.T) {
	t.Parallel()

	_, err := NewFileStore("", zap.NewNop())
	require.Error(t, err)
}
