package sessions_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sgdl/go-sgdl-client/sessions"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	folder := t.TempDir()

	store, err := sessions.NewFileStore(folder)
	require.NoError(t, err)
	require.NoError(t, store.Set(sessions.KeyAccessToken, "access-1"))
	require.NoError(t, store.Set(sessions.KeyRefreshToken, "refresh-1"))

	// Simulated process restart: a fresh store over the same folder.
	reopened, err := sessions.NewFileStore(folder)
	require.NoError(t, err)
	access, ok := reopened.Get(sessions.KeyAccessToken)
	require.True(t, ok)
	require.Equal(t, "access-1", access)
	refresh, ok := reopened.Get(sessions.KeyRefreshToken)
	require.True(t, ok)
	require.Equal(t, "refresh-1", refresh)
}

func TestFileStoreDelete(t *testing.T) {
	folder := t.TempDir()

	store, err := sessions.NewFileStore(folder)
	require.NoError(t, err)
	require.NoError(t, store.Set(sessions.KeyAccessToken, "access-1"))
	require.NoError(t, store.Delete(sessions.KeyAccessToken))

	reopened, err := sessions.NewFileStore(folder)
	require.NoError(t, err)
	_, ok := reopened.Get(sessions.KeyAccessToken)
	require.False(t, ok)
}

func TestFileStoreEncryptedRoundTrip(t *testing.T) {
	folder := t.TempDir()
	passphrase := sessions.WithEncryptionPassphrase("correct horse battery staple")

	store, err := sessions.NewFileStore(folder, passphrase)
	require.NoError(t, err)
	require.NoError(t, store.Set(sessions.KeyAccessToken, "secret-token"))

	// The token must not appear in the state file in the clear.
	raw, err := os.ReadFile(filepath.Join(folder, "session.json"))
	require.NoError(t, err)
	require.NotContains(t, string(raw), "secret-token")

	reopened, err := sessions.NewFileStore(folder, passphrase)
	require.NoError(t, err)
	access, ok := reopened.Get(sessions.KeyAccessToken)
	require.True(t, ok)
	require.Equal(t, "secret-token", access)
}

func TestFileStoreWrongPassphraseDiscardsState(t *testing.T) {
	folder := t.TempDir()

	store, err := sessions.NewFileStore(folder, sessions.WithEncryptionPassphrase("right"))
	require.NoError(t, err)
	require.NoError(t, store.Set(sessions.KeyAccessToken, "secret-token"))

	reopened, err := sessions.NewFileStore(folder, sessions.WithEncryptionPassphrase("wrong"))
	require.NoError(t, err)
	_, ok := reopened.Get(sessions.KeyAccessToken)
	require.False(t, ok)
}

func TestFileStoreCorruptFileDiscarded(t *testing.T) {
	folder := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(folder, "session.json"), []byte("{broken"), 0o600))

	store, err := sessions.NewFileStore(folder)
	require.NoError(t, err)
	_, ok := store.Get(sessions.KeyAccessToken)
	require.False(t, ok)
}

func TestOpenStoreFallsBackToMemory(t *testing.T) {
	// A regular file where the folder should be makes MkdirAll fail.
	blocked := filepath.Join(t.TempDir(), "blocked")
	require.NoError(t, os.WriteFile(blocked, []byte("x"), 0o600))

	store, durable := sessions.OpenStore(blocked)
	require.False(t, durable)
	require.NoError(t, store.Set(sessions.KeyAccessToken, "access-1"))
	access, ok := store.Get(sessions.KeyAccessToken)
	require.True(t, ok)
	require.Equal(t, "access-1", access)
}
