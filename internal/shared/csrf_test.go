package shared

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnsureTokenIsStable(t *testing.T) {
	m := NewCSRFManager("test-secret")
	sess := &Session{ID: "sess-1"}

	first, err := m.EnsureToken(context.Background(), sess)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := m.EnsureToken(context.Background(), sess)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestVerifyToken(t *testing.T) {
	m := NewCSRFManager("test-secret")
	sess := &Session{ID: "sess-1"}
	token, err := m.EnsureToken(context.Background(), sess)
	require.NoError(t, err)

	require.NoError(t, m.VerifyToken(context.Background(), sess, token))
	require.ErrorIs(t, m.VerifyToken(context.Background(), sess, "forged"), ErrCSRFTokenMismatch)
	require.ErrorIs(t, m.VerifyToken(context.Background(), sess, ""), ErrCSRFTokenMissing)
	require.ErrorIs(t, m.VerifyToken(context.Background(), nil, token), ErrCSRFTokenMissing)

	fresh := &Session{ID: "sess-2"}
	require.ErrorIs(t, m.VerifyToken(context.Background(), fresh, token), ErrCSRFTokenMissing)
}

func TestTokensDifferPerSession(t *testing.T) {
	m := NewCSRFManager("test-secret")

	a, err := m.EnsureToken(context.Background(), &Session{ID: "sess-a"})
	require.NoError(t, err)
	b, err := m.EnsureToken(context.Background(), &Session{ID: "sess-b"})
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}
