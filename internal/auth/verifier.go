package auth

import (
	"context"
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/snipgo/snip/internal/shortener"
)

// ErrInvalidToken indicates a missing, malformed, or expired credential.
var ErrInvalidToken = errors.New("invalid token")

// MetadataKey marks a Huma operation as requiring a verified caller.
const MetadataKey = "authRequired"

// Verifier turns a bearer credential into an opaque owner identity.
// Token issuance is someone else's problem; the core only consumes identity.
type Verifier interface {
	Verify(token string) (shortener.OwnerID, error)
}

// JWTVerifier validates HS256-signed tokens and uses the subject claim as
// the owner identity.
type JWTVerifier struct {
	secret []byte
}

// NewJWTVerifier creates a verifier for the given HMAC secret.
func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

func (v *JWTVerifier) Verify(tokenString string) (shortener.OwnerID, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}

		return v.secret, nil
	})
	if err != nil || !token.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return shortener.OwnerID(claims.Subject), nil
}

// PassthroughVerifier treats the raw bearer token as the owner identity.
// Development convenience for running without a configured secret; never
// use it in front of real traffic.
type PassthroughVerifier struct{}

func (PassthroughVerifier) Verify(token string) (shortener.OwnerID, error) {
	if token == "" {
		return "", ErrInvalidToken
	}

	return shortener.OwnerID(token), nil
}

type ownerKey struct{}

// ContextWithOwner attaches a verified owner identity to the context.
func ContextWithOwner(ctx context.Context, owner shortener.OwnerID) context.Context {
	return context.WithValue(ctx, ownerKey{}, owner)
}

// OwnerFromContext extracts the verified owner identity, if any.
func OwnerFromContext(ctx context.Context) (shortener.OwnerID, bool) {
	owner, ok := ctx.Value(ownerKey{}).(shortener.OwnerID)

	return owner, ok
}
