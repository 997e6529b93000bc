package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"petora-connect/internal/platform/apperr"
	"petora-connect/internal/ports/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVerifier struct {
	token string
}

func (s stubVerifier) Verify(_ context.Context, token string) (auth.Claims, error) {
	if token != s.token {
		return auth.Claims{}, auth.ErrInvalidToken
	}
	return auth.Claims{UserID: "u-1", Email: "u1@example.com"}, nil
}

type stubProfiles struct {
	err error
}

func (s stubProfiles) EnsureProfile(_ context.Context, c auth.Claims) (auth.Claims, error) {
	if s.err != nil {
		return auth.Claims{}, s.err
	}
	c.DisplayName = "Ana"
	return c, nil
}

func capture(t *testing.T, mw func(http.Handler) http.Handler, req *http.Request) (auth.Claims, bool) {
	t.Helper()
	var (
		got auth.Claims
		ok  bool
	)
	h := mw(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got, ok = GetClaims(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), req)
	return got, ok
}

func TestAuthContext_DevHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderDebugUserID, "dev-1")
	req.Header.Set(HeaderDebugName, "Dev")

	c, ok := capture(t, AuthContext(nil, nil, nil), req)
	require.True(t, ok)
	assert.Equal(t, "dev-1", c.UserID)
	assert.Equal(t, "Dev", c.DisplayName)
}

func TestAuthContext_NoIdentity(t *testing.T) {
	_, ok := capture(t, AuthContext(nil, nil, nil), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, ok)

	_, err := RequireClaims(context.Background())
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestAuthContext_Verifier(t *testing.T) {
	mw := AuthContext(stubVerifier{token: "good"}, stubProfiles{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	c, ok := capture(t, mw, req)
	require.True(t, ok)
	assert.Equal(t, "u-1", c.UserID)
	assert.Equal(t, "Ana", c.DisplayName)

	// token por query (websockets)
	c, ok = capture(t, mw, httptest.NewRequest(http.MethodGet, "/posts/stream?access_token=good", nil))
	require.True(t, ok)
	assert.Equal(t, "u-1", c.UserID)

	// token inválido: sigue sin claims
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer bad")
	_, ok = capture(t, mw, req)
	assert.False(t, ok)

	// con verifier, los headers de debug se ignoran
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderDebugUserID, "dev-1")
	_, ok = capture(t, mw, req)
	assert.False(t, ok)
}

func TestAuthContext_ProfileErrorKeepsClaims(t *testing.T) {
	mw := AuthContext(stubVerifier{token: "good"}, stubProfiles{err: errors.New("db down")}, nil)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")

	c, ok := capture(t, mw, req)
	require.True(t, ok)
	assert.Equal(t, "u-1", c.UserID)
	assert.Empty(t, c.DisplayName)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("bearer abc"))
	assert.Equal(t, "", bearerToken("Basic abc"))
	assert.Equal(t, "", bearerToken("Bearer"))
}
