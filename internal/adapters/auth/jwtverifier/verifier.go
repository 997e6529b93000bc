// Package jwtverifier valida tokens HS256 emitidos por el identity provider.
package jwtverifier

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"petora-connect/internal/ports/auth"

	"github.com/golang-jwt/jwt/v5"
)

var ErrSecretRequired = errors.New("jwt secret required")

// TokenClaims son los claims que esperamos en el token.
type TokenClaims struct {
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

type Verifier struct {
	secret   []byte
	issuer   string
	audience string
	leeway   time.Duration
}

type Option func(*Verifier)

// WithIssuer exige iss.
func WithIssuer(iss string) Option {
	return func(v *Verifier) { v.issuer = strings.TrimSpace(iss) }
}

// WithAudience exige aud.
func WithAudience(aud string) Option {
	return func(v *Verifier) { v.audience = strings.TrimSpace(aud) }
}

// WithLeeway tolera desfasaje de reloj.
func WithLeeway(d time.Duration) Option {
	return func(v *Verifier) { v.leeway = d }
}

func New(secret string, opts ...Option) (*Verifier, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrSecretRequired
	}
	v := &Verifier{secret: []byte(secret), leeway: 30 * time.Second}
	for _, o := range opts {
		o(v)
	}
	return v, nil
}

func (v *Verifier) Verify(_ context.Context, token string) (auth.Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, auth.ErrInvalidToken
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(v.leeway),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(v.audience))
	}

	var tc TokenClaims
	_, err := jwt.ParseWithClaims(token, &tc, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, parserOpts...)
	if err != nil {
		return auth.Claims{}, fmt.Errorf("%w: %v", auth.ErrInvalidToken, err)
	}

	uid := strings.TrimSpace(tc.Subject)
	if uid == "" {
		return auth.Claims{}, fmt.Errorf("%w: missing sub", auth.ErrInvalidToken)
	}

	return auth.Claims{
		UserID:      uid,
		Email:       strings.TrimSpace(tc.Email),
		DisplayName: strings.TrimSpace(tc.Name),
		AvatarURL:   strings.TrimSpace(tc.Picture),
	}, nil
}
