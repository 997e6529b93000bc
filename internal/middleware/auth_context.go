package middleware

import (
	"context"
	"net/http"
	"strings"

	"petora-connect/internal/platform/apperr"
	"petora-connect/internal/platform/logger"
	"petora-connect/internal/ports/auth"
)

type ctxKey string

const claimsKey ctxKey = "claims"

// Headers del modo dev (sin verifier).
const (
	HeaderDebugUserID = "X-Debug-User-ID"
	HeaderDebugName   = "X-Debug-User-Name"
	HeaderDebugEmail  = "X-Debug-User-Email"
)

// ProfileEnsurer crea el perfil local en el primer request autenticado y
// devuelve los claims completados con nombre/avatar del perfil.
type ProfileEnsurer interface {
	EnsureProfile(ctx context.Context, c auth.Claims) (auth.Claims, error)
}

// AuthContext:
// - Si verifier != nil y viene Bearer token => intenta Verify() y setea claims.
// - Si verifier == nil => modo dev: si viene header X-Debug-User-ID => setea claims.
// - Si no hay claims, el request sigue igual; los handlers decidirán si exigen auth.
// - profiles (opcional) asegura el perfil; si falla se loguea y se sigue con los claims crudos.
func AuthContext(verifier auth.AuthVerifier, profiles ProfileEnsurer, log logger.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = logger.Nop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := resolveClaims(r, verifier, log)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			if profiles != nil {
				enriched, err := profiles.EnsureProfile(r.Context(), claims)
				if err != nil {
					log.Warn("ensure profile failed", map[string]any{"user_id": claims.UserID, "err": err})
				} else {
					claims = enriched
				}
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func resolveClaims(r *http.Request, verifier auth.AuthVerifier, log logger.Logger) (auth.Claims, bool) {
	// Dev mode: permitir inyectar user sin verifier
	if verifier == nil {
		uid := strings.TrimSpace(r.Header.Get(HeaderDebugUserID))
		if uid == "" {
			return auth.Claims{}, false
		}
		return auth.Claims{
			UserID:      uid,
			DisplayName: strings.TrimSpace(r.Header.Get(HeaderDebugName)),
			Email:       strings.TrimSpace(r.Header.Get(HeaderDebugEmail)),
		}, true
	}

	token := bearerToken(r.Header.Get("Authorization"))
	if token == "" {
		// Los websockets del browser no pueden mandar headers.
		token = strings.TrimSpace(r.URL.Query().Get("access_token"))
	}
	if token == "" {
		return auth.Claims{}, false
	}

	claims, err := verifier.Verify(r.Context(), token)
	if err != nil {
		// No cortamos aquí. El handler decide 401.
		log.Debug("token rejected", map[string]any{"err": err})
		return auth.Claims{}, false
	}
	return claims, true
}

// WithClaims guarda claims en ctx (tests y streams).
func WithClaims(ctx context.Context, c auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

func GetClaims(ctx context.Context) (auth.Claims, bool) {
	v := ctx.Value(claimsKey)
	if v == nil {
		return auth.Claims{}, false
	}
	c, ok := v.(auth.Claims)
	return c, ok
}

// RequireClaims devuelve los claims o apperr.ErrUnauthenticated.
func RequireClaims(ctx context.Context) (auth.Claims, error) {
	c, ok := GetClaims(ctx)
	if !ok || strings.TrimSpace(c.UserID) == "" {
		return auth.Claims{}, apperr.ErrUnauthenticated
	}
	return c, nil
}

func bearerToken(authHeader string) string {
	if strings.TrimSpace(authHeader) == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
