// Package auth implements the client-side credential provider: a file-backed
// token store plus an expiry probe on the stored JWT, so the editor can send
// the user back to the login flow before wasting a request on a dead token.
package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/smolyakovd/inkpad/internal/client/api"
)

// FileTokenStore keeps the bearer token in a single file with user-only
// permissions. It is the desktop analogue of the browser's local storage
// slot the web client keeps its token in.
type FileTokenStore struct {
	path string
}

func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

// Save writes the token, creating parent directories as needed.
func (s *FileTokenStore) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating token dir: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("writing token: %w", err)
	}
	return nil
}

// Load returns the stored token. A missing file maps to api.ErrUnauthorized
// so callers treat "never logged in" and "rejected token" uniformly.
func (s *FileTokenStore) Load() (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", api.ErrUnauthorized
		}
		return "", fmt.Errorf("reading token: %w", err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", api.ErrUnauthorized
	}
	return token, nil
}

// Clear removes the stored token. Clearing an absent token is not an error.
func (s *FileTokenStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing token: %w", err)
	}
	return nil
}

// TokenSource implements api.TokenProvider on top of a FileTokenStore.
// Token() rejects expired tokens locally: the signature is the server's
// business, but the exp claim is readable without the secret.
type TokenSource struct {
	store *FileTokenStore
	now   func() time.Time
}

var _ api.TokenProvider = (*TokenSource)(nil)

func NewTokenSource(store *FileTokenStore) *TokenSource {
	return &TokenSource{store: store, now: time.Now}
}

func (t *TokenSource) Token() (string, error) {
	token, err := t.store.Load()
	if err != nil {
		return "", err
	}
	if expired(token, t.now()) {
		return "", fmt.Errorf("token expired: %w", api.ErrUnauthorized)
	}
	return token, nil
}

// expired parses the token without verifying the signature and checks the
// exp claim. Tokens that do not parse at all are left for the server to
// reject; only a definite, readable expiry fails locally.
func expired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(token, claims)
	if err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return now.After(exp.Time)
}
