// Package auth verifies identity provider session tokens via JWKS.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

const defaultLeeway = 30 * time.Second

// Verifier validates session tokens against the issuer's JWKS endpoint.
type Verifier struct {
	issuer            string
	authorizedParties map[string]struct{}
	keyfunc           keyfunc.Keyfunc
	parser            *jwt.Parser
}

// NewVerifier builds a verifier. jwksURL defaults to {issuer}/.well-known/jwks.json.
// When authorizedParties is non-empty, tokens carrying an azp claim must name one of them.
func NewVerifier(ctx context.Context, issuer, jwksURL string, authorizedParties []string) (*Verifier, error) {
	issuer = strings.TrimRight(strings.TrimSpace(issuer), "/")
	if issuer == "" {
		return nil, errors.New("issuer must be set")
	}
	if jwksURL == "" {
		jwksURL = issuer + "/.well-known/jwks.json"
	}

	keyProvider, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("failed to init JWKS keyfunc: %w", err)
	}
	return newVerifier(issuer, keyProvider, authorizedParties), nil
}

func newVerifier(issuer string, kf keyfunc.Keyfunc, authorizedParties []string) *Verifier {
	parties := make(map[string]struct{}, len(authorizedParties))
	for _, p := range authorizedParties {
		if p = strings.TrimRight(strings.TrimSpace(p), "/"); p != "" {
			parties[p] = struct{}{}
		}
	}
	parser := jwt.NewParser(
		jwt.WithIssuer(issuer),
		jwt.WithLeeway(defaultLeeway),
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Name, jwt.SigningMethodRS384.Name, jwt.SigningMethodRS512.Name}),
	)
	return &Verifier{
		issuer:            issuer,
		authorizedParties: parties,
		keyfunc:           kf,
		parser:            parser,
	}
}

// Verify parses and validates a token, returning extracted claims.
func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	token, err := v.parser.Parse(tokenString, v.keyfunc.Keyfunc)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	claims := &Claims{
		Subject:         readString(mapClaims, "sub"),
		Email:           readString(mapClaims, "email"),
		SessionID:       readString(mapClaims, "sid"),
		AuthorizedParty: readString(mapClaims, "azp"),
		ExpiresAt:       readExpiry(mapClaims["exp"]),
		Raw:             mapClaims,
	}
	if claims.Subject == "" {
		return nil, errors.New("token missing sub")
	}
	if claims.AuthorizedParty != "" && len(v.authorizedParties) > 0 {
		if _, ok := v.authorizedParties[strings.TrimRight(claims.AuthorizedParty, "/")]; !ok {
			return nil, fmt.Errorf("unauthorized party %q", claims.AuthorizedParty)
		}
	}
	return claims, nil
}

func readString(claims jwt.MapClaims, key string) string {
	if s, ok := claims[key].(string); ok {
		return s
	}
	return ""
}

func readExpiry(raw any) time.Time {
	switch v := raw.(type) {
	case float64:
		return time.Unix(int64(v), 0)
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return time.Unix(i, 0)
		}
	case int64:
		return time.Unix(v, 0)
	}
	return time.Time{}
}

// ExtractBearerToken returns the token from an "Authorization: Bearer <token>" header value.
func ExtractBearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}
