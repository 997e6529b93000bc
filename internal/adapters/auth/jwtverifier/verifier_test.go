package jwtverifier

import (
	"context"
	"testing"
	"time"

	"petora-connect/internal/ports/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret-with-enough-length-123456"

func sign(t *testing.T, method jwt.SigningMethod, key any, claims jwt.Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func TestVerify_ValidToken(t *testing.T) {
	v, err := New(secret, WithIssuer("petora-idp"))
	require.NoError(t, err)

	tok := sign(t, jwt.SigningMethodHS256, []byte(secret), TokenClaims{
		Email: "ana@example.com",
		Name:  "Ana",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			Issuer:    "petora-idp",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	c, err := v.Verify(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, auth.Claims{UserID: "user-1", Email: "ana@example.com", DisplayName: "Ana"}, c)
}

func TestVerify_Rejects(t *testing.T) {
	v, err := New(secret)
	require.NoError(t, err)

	valid := jwt.RegisteredClaims{Subject: "user-1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}

	cases := map[string]string{
		"empty":      "",
		"garbage":    "not-a-token",
		"wrong key":  sign(t, jwt.SigningMethodHS256, []byte("other-secret"), valid),
		"wrong alg":  sign(t, jwt.SigningMethodHS512, []byte(secret), valid),
		"no subject": sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.RegisteredClaims{ExpiresAt: valid.ExpiresAt}),
		"no exp":     sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.RegisteredClaims{Subject: "user-1"}),
		"expired": sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		}),
	}

	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(context.Background(), tok)
			assert.ErrorIs(t, err, auth.ErrInvalidToken)
		})
	}
}

func TestNew_RequiresSecret(t *testing.T) {
	_, err := New("  ")
	assert.ErrorIs(t, err, ErrSecretRequired)
}
