package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/JaimeStill/beacon/pkg/handlers"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid bearer token")
)

// TokenVerifier validates a raw bearer token. *oidc.IDTokenVerifier satisfies it.
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (*oidc.IDToken, error)
}

// NewVerifier builds an OIDC verifier for cfg. With a JWKS URL the signing keys
// are fetched lazily from it; otherwise the issuer's discovery document is
// read now. ctx bounds background key refreshes and should outlive requests.
func NewVerifier(ctx context.Context, cfg *AuthConfig) (TokenVerifier, error) {
	oidcCfg := &oidc.Config{ClientID: cfg.ClientID}

	if cfg.JWKSURL != "" {
		keys := oidc.NewRemoteKeySet(ctx, cfg.JWKSURL)
		return oidc.NewVerifier(cfg.Issuer, keys, oidcCfg), nil
	}

	provider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc discovery for %s: %w", cfg.Issuer, err)
	}
	return provider.Verifier(oidcCfg), nil
}

type tokenKey struct{}

// Auth rejects requests that lack a bearer token accepted by verifier with 401.
// The verified token is available to handlers through Token.
func Auth(verifier TokenVerifier, logger *slog.Logger) Middleware {
	logger = logger.With("middleware", "auth")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearer(r.Header.Get("Authorization"))
			if !ok {
				unauthorized(w, logger, ErrMissingToken)
				return
			}

			token, err := verifier.Verify(r.Context(), raw)
			if err != nil {
				unauthorized(w, logger, fmt.Errorf("%w: %w", ErrInvalidToken, err))
				return
			}

			logger.DebugContext(r.Context(), "request authenticated",
				"subject", token.Subject,
				"uri", r.URL.RequestURI(),
			)
			ctx := context.WithValue(r.Context(), tokenKey{}, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Token returns the token verified by Auth, or nil when the request was not
// authenticated.
func Token(ctx context.Context) *oidc.IDToken {
	token, _ := ctx.Value(tokenKey{}).(*oidc.IDToken)
	return token
}

func bearer(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(w http.ResponseWriter, logger *slog.Logger, err error) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	handlers.RespondError(w, logger, http.StatusUnauthorized, err)
}
