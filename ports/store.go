package ports

import (
	"context"

	"github.com/tmoj/authd/core"
)

// RevocationStore is the durable record of token identifiers that must
// no longer be accepted.
type RevocationStore interface {
	// Record marks a token identifier as revoked until expiresAt.
	// Recording the same identifier twice is not an error.
	Record(ctx context.Context, revocation *core.Revocation) error

	// Lookup returns the revocation for a token identifier, or nil when
	// none exists. Transport failures are returned as errors, distinct
	// from absence.
	Lookup(ctx context.Context, tokenID string) (*core.Revocation, error)
}

// UserStore resolves and mutates user records held by the storage
// service. Reads return nil without error when the user is absent.
type UserStore interface {
	GetUser(ctx context.Context, username string) (*core.User, error)
	CreateUser(ctx context.Context, user *core.User) (*core.User, error)
	UpdateUser(ctx context.Context, user *core.User) (*core.User, error)
}

// DetailStore holds per-method authentication details (hashed
// credentials) in the storage service.
type DetailStore interface {
	GetDetail(ctx context.Context, username string, method core.AuthenticationMethod) (*core.AuthenticationDetail, error)
	CreateDetail(ctx context.Context, username string, detail *core.AuthenticationDetail) error
	UpdateDetail(ctx context.Context, username string, detail *core.AuthenticationDetail) error
}
