package tokenizer

import "github.com/golang-jwt/jwt/v5"

// SessionClaims are the claims carried by a session token: the subject
// is the username and the ID (jti) is the key revocation is filed
// under. No custom claims beyond the registered set.
type SessionClaims struct {
	jwt.RegisteredClaims
}
