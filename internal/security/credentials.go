// Package security stores the insight API credential encrypted at rest.
//
// The credential file holds a single API key sealed with AES-256-GCM under a
// key derived from an operator passphrase via scrypt. An environment variable
// always takes precedence over the file, so the store is only consulted when
// no key is present in the environment.
package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/scrypt"
)

// Scrypt parameters. N=32768 keeps derivation around 100ms on current
// hardware, which is acceptable for a once-per-startup operation.
const (
	scryptN      = 32768
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 32

	saltSize = 32

	payloadVersion = 1
)

// Sentinel errors for callers that need to distinguish "not configured"
// from "configured but broken".
var (
	ErrNoCredentials  = fmt.Errorf("security: no credentials file")
	ErrBadCredentials = fmt.Errorf("security: credentials cannot be decrypted")
)

// encryptedPayload is the on-disk format. The GCM authentication tag is
// carried inside Ciphertext, as produced by cipher.AEAD.Seal.
type encryptedPayload struct {
	Version    int       `json:"version"`
	Salt       []byte    `json:"salt"`
	Nonce      []byte    `json:"nonce"`
	Ciphertext []byte    `json:"ciphertext"`
	CreatedAt  time.Time `json:"created_at"`
}

// CredentialStore reads and writes a single encrypted credential file.
type CredentialStore struct {
	path   string
	logger *slog.Logger
}

// NewCredentialStore returns a store bound to path. The file does not have
// to exist yet; Load reports ErrNoCredentials until Save creates it.
func NewCredentialStore(path string, logger *slog.Logger) *CredentialStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &CredentialStore{
		path:   path,
		logger: logger.With(slog.String("component", "credentials")),
	}
}

// Path returns the credential file location.
func (s *CredentialStore) Path() string {
	return s.path
}

// Save encrypts credential under passphrase and writes it to the store path,
// creating parent directories as needed. The file is written with mode 0600.
func (s *CredentialStore) Save(credential, passphrase string) error {
	if credential == "" {
		return fmt.Errorf("security: credential is empty")
	}
	if passphrase == "" {
		return fmt.Errorf("security: passphrase is empty")
	}

	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return fmt.Errorf("generate salt: %w", err)
	}

	key, err := deriveKey(passphrase, salt)
	if err != nil {
		return err
	}

	aead, err := newAEAD(key)
	if err != nil {
		return err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("generate nonce: %w", err)
	}

	payload := encryptedPayload{
		Version:    payloadVersion,
		Salt:       salt,
		Nonce:      nonce,
		Ciphertext: aead.Seal(nil, nonce, []byte(credential), nil),
		CreatedAt:  time.Now().UTC(),
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create credentials dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}

	s.logger.Info("credential saved", slog.String("path", s.path))
	return nil
}

// Load decrypts and returns the stored credential. A missing file yields
// ErrNoCredentials; a present file that fails to decrypt (wrong passphrase,
// tampering, truncation) yields an error wrapping ErrBadCredentials.
func (s *CredentialStore) Load(passphrase string) (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoCredentials
		}
		return "", fmt.Errorf("read credentials: %w", err)
	}

	var payload encryptedPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadCredentials, err)
	}
	if payload.Version != payloadVersion {
		return "", fmt.Errorf("%w: unsupported version %d", ErrBadCredentials, payload.Version)
	}

	key, err := deriveKey(passphrase, payload.Salt)
	if err != nil {
		return "", err
	}

	aead, err := newAEAD(key)
	if err != nil {
		return "", err
	}
	if len(payload.Nonce) != aead.NonceSize() {
		return "", fmt.Errorf("%w: bad nonce length", ErrBadCredentials)
	}

	plaintext, err := aead.Open(nil, payload.Nonce, payload.Ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadCredentials, err)
	}

	return string(plaintext), nil
}

func deriveKey(passphrase string, salt []byte) ([]byte, error) {
	key, err := scrypt.Key([]byte(passphrase), salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return key, nil
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("init gcm: %w", err)
	}
	return aead, nil
}
