package security

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCredentialStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	store := NewCredentialStore(path, testLogger())

	require.NoError(t, store.Save("sk-test-key-12345", "correct horse battery"))

	got, err := store.Load("correct horse battery")
	require.NoError(t, err)
	assert.Equal(t, "sk-test-key-12345", got)
}

func TestCredentialStoreCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "credentials.json")
	store := NewCredentialStore(path, testLogger())

	require.NoError(t, store.Save("key", "pass"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestCredentialStoreWrongPassphrase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	store := NewCredentialStore(path, testLogger())

	require.NoError(t, store.Save("secret", "right"))

	_, err := store.Load("wrong")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadCredentials)
}

func TestCredentialStoreMissingFile(t *testing.T) {
	store := NewCredentialStore(filepath.Join(t.TempDir(), "absent.json"), testLogger())

	_, err := store.Load("anything")
	assert.ErrorIs(t, err, ErrNoCredentials)
}

func TestCredentialStoreTamperedCiphertext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	store := NewCredentialStore(path, testLogger())
	require.NoError(t, store.Save("secret", "pass"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(data, &payload))

	// Flip the ciphertext to something valid-looking but wrong.
	payload["ciphertext"] = "dGFtcGVyZWQtY2lwaGVydGV4dA=="
	tampered, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, tampered, 0o600))

	_, err = store.Load("pass")
	assert.ErrorIs(t, err, ErrBadCredentials)
}

func TestCredentialStoreRejectsGarbageFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

	store := NewCredentialStore(path, testLogger())
	_, err := store.Load("pass")
	assert.ErrorIs(t, err, ErrBadCredentials)
}

func TestCredentialStoreRejectsEmptyInputs(t *testing.T) {
	store := NewCredentialStore(filepath.Join(t.TempDir(), "credentials.json"), testLogger())

	assert.Error(t, store.Save("", "pass"))
	assert.Error(t, store.Save("key", ""))
}
