package edusdk

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credentials.json")
	store := NewFileStore(path)

	// nothing saved yet: zero creds, no error
	creds, err := store.Load()
	require.NoError(t, err)
	require.True(t, creds.IsZero())

	saved := Credentials{AccessToken: "a1", RefreshToken: "r1"}
	require.NoError(t, store.Save(saved))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	// a fresh store over the same path sees the tokens
	loaded, err := NewFileStore(path).Load()
	require.NoError(t, err)
	require.Equal(t, saved, loaded)

	require.NoError(t, store.Clear())
	creds, err = store.Load()
	require.NoError(t, err)
	require.True(t, creds.IsZero())

	// clearing twice is fine
	require.NoError(t, store.Clear())
}

func TestFileStoreOverwrite(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "credentials.json"))

	require.NoError(t, store.Save(Credentials{AccessToken: "old", RefreshToken: "old"}))
	require.NoError(t, store.Save(Credentials{AccessToken: "new", RefreshToken: "new"}))

	creds, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, "new", creds.AccessToken)
	require.Equal(t, "new", creds.RefreshToken)
}
