package core

import "time"

// TokenClaims is the decoded content of a signed token.
type TokenClaims struct {
	Subject   string    // username the token asserts
	ID        string    // unique token identifier (jti), revocation key
	IssuedAt  time.Time // when the token was signed
	ExpiresAt time.Time // embedded expiry
}

// Expired reports whether the token's own expiry has passed.
func (c *TokenClaims) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// Revocation marks a token identifier as no longer acceptable. The
// storage service owns persistence and garbage collection; this service
// only appends and queries.
type Revocation struct {
	TokenID   string    `json:"tokenId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Active reports whether the revocation still rejects its token: it is
// honored for as long as now <= ExpiresAt, after which the token it
// marked has itself expired and the marker is dead weight.
func (r *Revocation) Active(now time.Time) bool {
	return !now.After(r.ExpiresAt)
}
