package auth

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/smolyakovd/inkpad/internal/client/api"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func newStore(t *testing.T) *FileTokenStore {
	t.Helper()
	return NewFileTokenStore(filepath.Join(t.TempDir(), "creds", "token"))
}

func TestFileTokenStore_SaveLoadClear(t *testing.T) {
	store := newStore(t)

	_, err := store.Load()
	require.ErrorIs(t, err, api.ErrUnauthorized)

	require.NoError(t, store.Save("abc"))
	tok, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, "abc", tok)

	require.NoError(t, store.Clear())
	_, err = store.Load()
	require.ErrorIs(t, err, api.ErrUnauthorized)

	// clearing twice is fine
	require.NoError(t, store.Clear())
}

func TestTokenSource_ValidToken(t *testing.T) {
	store := newStore(t)
	want := signedToken(t, time.Now().Add(time.Hour))
	require.NoError(t, store.Save(want))

	got, err := NewTokenSource(store).Token()
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestTokenSource_ExpiredToken(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Save(signedToken(t, time.Now().Add(-time.Minute))))

	_, err := NewTokenSource(store).Token()
	require.ErrorIs(t, err, api.ErrUnauthorized)
}

func TestTokenSource_OpaqueTokenPassesThrough(t *testing.T) {
	// Tokens the client cannot parse are the server's problem.
	store := newStore(t)
	require.NoError(t, store.Save("not-a-jwt"))

	got, err := NewTokenSource(store).Token()
	require.NoError(t, err)
	require.Equal(t, "not-a-jwt", got)
}
