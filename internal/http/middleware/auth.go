package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// OwnerIDLocalKey is the key used to store the authenticated owner id
	// in Fiber's context locals.
	OwnerIDLocalKey = "owner_id"
)

// Auth validates bearer tokens issued by the external identity provider and
// resolves the caller's owner id. The service performs no credential parsing
// beyond this middleware: handlers trust the resolved id.
type Auth struct {
	keyfunc  jwt.Keyfunc
	audience string
}

// NewAuth builds an Auth middleware that fetches and caches the identity
// provider's signing keys from its JWKS endpoint. The key set refreshes in
// the background for the lifetime of ctx.
func NewAuth(ctx context.Context, jwksURL, audience string) (*Auth, error) {
	if jwksURL == "" {
		return nil, fmt.Errorf("auth jwks url is required")
	}
	kf, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("create jwks keyfunc: %w", err)
	}
	return &Auth{keyfunc: kf.Keyfunc, audience: audience}, nil
}

// NewAuthFromJWKS builds an Auth middleware from a static JWK Set document.
// Used in tests and air-gapped deployments where the key set is delivered
// out of band.
func NewAuthFromJWKS(raw json.RawMessage, audience string) (*Auth, error) {
	kf, err := keyfunc.NewJWKSetJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("parse jwk set: %w", err)
	}
	return &Auth{keyfunc: kf.Keyfunc, audience: audience}, nil
}

// Handler returns the Fiber middleware. It rejects requests without a valid
// bearer token and stores the token's subject under OwnerIDLocalKey.
func (a *Auth) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := bearerToken(c.Get(fiber.HeaderAuthorization))
		if raw == "" {
			return unauthorized(c, "missing bearer token")
		}

		opts := []jwt.ParserOption{
			jwt.WithValidMethods([]string{"RS256", "ES256"}),
			jwt.WithExpirationRequired(),
		}
		if a.audience != "" {
			opts = append(opts, jwt.WithAudience(a.audience))
		}

		var claims jwt.RegisteredClaims
		token, err := jwt.ParseWithClaims(raw, &claims, a.keyfunc, opts...)
		if err != nil || !token.Valid {
			return unauthorized(c, "invalid or expired token")
		}
		if claims.Subject == "" {
			return unauthorized(c, "token has no subject")
		}

		c.Locals(OwnerIDLocalKey, claims.Subject)
		return c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return header[len(prefix):]
	}
	return ""
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "UNAUTHORIZED",
			"message": message,
		},
	})
}
