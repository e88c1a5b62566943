package ports

import (
	"time"

	"github.com/tmoj/authd/core"
)

// Tokenizer signs and verifies bearer tokens. Verification needs only
// public key material; signing is the sole privileged operation.
type Tokenizer interface {
	// Issue signs a fresh token for subject with a unique identifier
	// and expiry now+ttl.
	Issue(subject string, ttl time.Duration) (string, error)

	// Verify checks signature, algorithm, and embedded expiry. Any
	// cryptographic or structural failure yields core.ErrUnauthorized;
	// the cause is not distinguished.
	Verify(token string) (*core.TokenClaims, error)

	// Decode parses claims without verifying the signature. Used by the
	// revoke path only, so that a structurally valid token can always
	// be blacklisted. Fails with core.ErrTokenMalformed.
	Decode(token string) (*core.TokenClaims, error)
}
