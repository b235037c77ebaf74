package auth

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTokenRoundtrip(t *testing.T) {
	m := NewManager("test-secret")
	token, err := m.GenerateToken("user-1", time.Hour)
	require.NoError(t, err)

	claims, err := m.ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UserID)
}

func TestExpiredTokenRejected(t *testing.T) {
	m := NewManager("test-secret")
	token, err := m.GenerateToken("user-1", -time.Minute)
	require.NoError(t, err)

	_, err = m.ParseToken(token)
	require.Error(t, err)
}

func TestWrongSecretRejected(t *testing.T) {
	m := NewManager("test-secret")
	token, err := m.GenerateToken("user-1", time.Hour)
	require.NoError(t, err)

	_, err = NewManager("other-secret").ParseToken(token)
	require.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	m := NewManager("x")
	hash, err := m.HashPassword("hunter2")
	require.NoError(t, err)
	require.NoError(t, m.ComparePassword(hash, "hunter2"))
	require.Error(t, m.ComparePassword(hash, "hunter3"))
}

func TestTokenFromRequest(t *testing.T) {
	r, _ := http.NewRequest(http.MethodGet, "/", nil)
	_, ok := TokenFromRequest(r)
	require.False(t, ok)

	r.Header.Set("Authorization", "Bearer abc")
	token, ok := TokenFromRequest(r)
	require.True(t, ok)
	require.Equal(t, "abc", token)
}

func TestIdentityContext(t *testing.T) {
	ctx := context.Background()
	_, ok := IdentityFromContext(ctx)
	require.False(t, ok)

	id := Identity{UserID: "u", CompanyID: "c", Role: "admin"}
	got, ok := IdentityFromContext(WithIdentity(ctx, id))
	require.True(t, ok)
	require.Equal(t, id, got)
}
