package tokenizer

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/tmoj/authd/core"
	"github.com/tmoj/authd/ports"
)

// signingMethod is pinned to RS512. Tokens carrying any other algorithm
// tag are rejected outright to rule out downgrade substitution.
var signingMethod = jwt.SigningMethodRS512

// ErrSigningKeyUnavailable is returned by Issue when the tokenizer was
// built without private key material.
var ErrSigningKeyUnavailable = errors.New("signing key unavailable")

// RSATokenizer implements ports.Tokenizer with an RSA key pair. The
// private key may be nil for verification-only deployments, in which
// case Issue fails.
type RSATokenizer struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	now        func() time.Time
}

// NewRSATokenizer creates a tokenizer from the given key pair.
func NewRSATokenizer(privateKey *rsa.PrivateKey, publicKey *rsa.PublicKey) ports.Tokenizer {
	return &RSATokenizer{
		privateKey: privateKey,
		publicKey:  publicKey,
		now:        time.Now,
	}
}

// Issue signs a token for subject expiring at now+ttl. The jti is a
// fresh UUID, 36 characters of high-entropy encoding.
func (t *RSATokenizer) Issue(subject string, ttl time.Duration) (string, error) {
	if t.privateKey == nil {
		return "", ErrSigningKeyUnavailable
	}

	now := t.now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(signingMethod, claims)
	signed, err := token.SignedString(t.privateKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Verify checks signature, algorithm, and expiry. Every failure mode
// collapses into core.ErrUnauthorized so callers cannot tell which
// check rejected the token.
func (t *RSATokenizer) Verify(tokenStr string) (*core.TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if token.Method.Alg() != signingMethod.Alg() {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return t.publicKey, nil
		},
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, core.ErrUnauthorized
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || claims.Subject == "" || claims.ID == "" {
		return nil, core.ErrUnauthorized
	}

	return claimsToCore(claims), nil
}

// Decode parses claims without checking the signature. The revoke path
// uses it so that logout can blacklist any structurally valid token,
// expired or not.
func (t *RSATokenizer) Decode(tokenStr string) (*core.TokenClaims, error) {
	token, _, err := jwt.NewParser().ParseUnverified(tokenStr, &SessionClaims{})
	if err != nil {
		return nil, fmt.Errorf("decode token: %w", core.ErrTokenMalformed)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || claims.ID == "" {
		return nil, fmt.Errorf("decode token claims: %w", core.ErrTokenMalformed)
	}

	return claimsToCore(claims), nil
}

func claimsToCore(claims *SessionClaims) *core.TokenClaims {
	out := &core.TokenClaims{
		Subject: claims.Subject,
		ID:      claims.ID,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out
}
