package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tmoj/authd/core"
	"github.com/tmoj/authd/ports"
)

// DefaultTokenTTL is the default session lifetime, matching the
// 30-day session cookie handed to browsers.
const DefaultTokenTTL = 30 * 24 * time.Hour

// AuthService is the token lifecycle manager: the only component that
// declares a token valid or invalid for authorization purposes. It
// composes the tokenizer with the revocation store and resolves
// subjects against the user store. It keeps no mutable state of its
// own; every request runs independently.
type AuthService struct {
	tokenizer   ports.Tokenizer
	revocations ports.RevocationStore
	users       ports.UserStore
	details     ports.DetailStore
	events      ports.EventPublisher
	logger      *slog.Logger
	tokenTTL    time.Duration
	now         func() time.Time
}

// NewAuthService creates the service. The event publisher may be nil
// when no broker is configured; publishing is best effort either way.
func NewAuthService(
	tokenizer ports.Tokenizer,
	revocations ports.RevocationStore,
	users ports.UserStore,
	details ports.DetailStore,
	events ports.EventPublisher,
	logger *slog.Logger,
) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		tokenizer:   tokenizer,
		revocations: revocations,
		users:       users,
		details:     details,
		events:      events,
		logger:      logger,
		tokenTTL:    DefaultTokenTTL,
		now:         time.Now,
	}
}

// WithTokenTTL overrides the session lifetime used for every token the
// service issues. Non-positive values are ignored.
func (s *AuthService) WithTokenTTL(ttl time.Duration) *AuthService {
	if ttl > 0 {
		s.tokenTTL = ttl
	}
	return s
}

// IssueToken signs a fresh token for subject. No revocation bookkeeping
// happens at issuance.
func (s *AuthService) IssueToken(subject string, ttl time.Duration) (string, error) {
	return s.tokenizer.Issue(subject, ttl)
}

// Validate resolves a token string to the identity it asserts. The
// token must carry a valid signature, must not have expired, its
// identifier must not be under an active revocation, and its subject
// must still exist. Every one of those failures reads as
// core.ErrUnauthorized; only revocation-store or user-store transport
// failures surface differently.
func (s *AuthService) Validate(ctx context.Context, token string) (*core.User, error) {
	claims, err := s.tokenizer.Verify(token)
	if err != nil {
		return nil, core.ErrUnauthorized
	}

	revocation, err := s.revocations.Lookup(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("revocation lookup: %w", err)
	}
	// A revocation is honored for as long as its own expiry has not
	// passed. A lapsed marker belongs to a token that has itself
	// expired and is left for the store to collect.
	if revocation != nil && revocation.Active(s.now()) {
		return nil, core.ErrUnauthorized
	}

	user, err := s.users.GetUser(ctx, claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("resolve subject: %w", err)
	}
	if user == nil {
		return nil, core.ErrUnauthorized
	}

	return user, nil
}

// Revoke blacklists a token by its identifier. Only structural decoding
// is required: logout must succeed for any structurally valid token,
// even one that is expired or carries a bad signature. Revoking a token
// whose expiry has already passed is a no-op.
func (s *AuthService) Revoke(ctx context.Context, token string) error {
	claims, err := s.tokenizer.Decode(token)
	if err != nil {
		return err
	}
	return s.revokeClaims(ctx, claims)
}

func (s *AuthService) revokeClaims(ctx context.Context, claims *core.TokenClaims) error {
	if claims.Expired(s.now()) {
		return nil
	}
	revocation := &core.Revocation{TokenID: claims.ID, ExpiresAt: claims.ExpiresAt}
	if err := s.revocations.Record(ctx, revocation); err != nil {
		return fmt.Errorf("record revocation: %w", err)
	}
	return nil
}

// Refresh revokes the presented token and issues a replacement for the
// same subject. The two steps are not transactional: if the revocation
// lands but issuance fails the caller ends up logged out, which is the
// fail-safe direction.
func (s *AuthService) Refresh(ctx context.Context, token string) (*core.User, string, error) {
	user, err := s.Validate(ctx, token)
	if err != nil {
		return nil, "", err
	}

	if err := s.Revoke(ctx, token); err != nil {
		return nil, "", err
	}

	newToken, err := s.tokenizer.Issue(user.Username, s.tokenTTL)
	if err != nil {
		return nil, "", fmt.Errorf("issue replacement token: %w", err)
	}

	return user, newToken, nil
}

// RotateToken revokes the presented token and issues a replacement for
// a subject the caller has already authenticated. The gate validates
// tokens on the way in, so no re-validation happens here.
func (s *AuthService) RotateToken(ctx context.Context, subject, token string) (string, error) {
	if err := s.Revoke(ctx, token); err != nil {
		return "", err
	}
	newToken, err := s.tokenizer.Issue(subject, s.tokenTTL)
	if err != nil {
		return "", fmt.Errorf("issue replacement token: %w", err)
	}
	return newToken, nil
}

// Register creates the user and their credential in the storage
// service, then issues a first session token. The storage service
// hashes the credential at rest; it never returns here.
func (s *AuthService) Register(ctx context.Context, user *core.User, detail *core.AuthenticationDetail) (*core.User, string, error) {
	created, err := s.users.CreateUser(ctx, user)
	if err != nil {
		return nil, "", err
	}

	if err := s.details.CreateDetail(ctx, created.Username, detail); err != nil {
		return nil, "", err
	}

	token, err := s.tokenizer.Issue(created.Username, s.tokenTTL)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	s.publishLogin(ctx, created.Username, token)
	return created, token, nil
}

// Login verifies the submitted credential and issues a session token.
// An unknown username, a missing credential record, and a failed match
// all read identically as core.ErrUnauthorized.
func (s *AuthService) Login(ctx context.Context, username string, detail *core.AuthenticationDetail) (*core.User, string, error) {
	stored, err := s.details.GetDetail(ctx, username, detail.Method)
	if err != nil {
		return nil, "", err
	}
	if stored == nil {
		return nil, "", core.ErrUnauthorized
	}

	match, err := VerifyCredential(detail.Method, detail.Value, stored.Value)
	if err != nil {
		return nil, "", err
	}
	if !match {
		return nil, "", core.ErrUnauthorized
	}

	user, err := s.users.GetUser(ctx, username)
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		return nil, "", core.ErrUnauthorized
	}

	token, err := s.tokenizer.Issue(username, s.tokenTTL)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	s.publishLogin(ctx, username, token)
	return user, token, nil
}

// Logout revokes the presented token and announces the revocation.
// It succeeds for any structurally valid token.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.tokenizer.Decode(token)
	if err != nil {
		return err
	}

	if err := s.revokeClaims(ctx, claims); err != nil {
		return err
	}

	if s.events != nil {
		if err := s.events.PublishLogout(ctx, claims.Subject, claims.ID); err != nil {
			// The token is already dead in the store, which is the part
			// that matters; a lost event is logged and dropped.
			s.logger.WarnContext(ctx, "failed to publish logout event", "error", err)
		}
	}
	return nil
}

// UpdateUser patches the profile of the authenticated user. The
// username is pinned to the authenticated identity, never taken from
// the payload.
func (s *AuthService) UpdateUser(ctx context.Context, username string, user *core.User) (*core.User, error) {
	user.Username = username
	updated, err := s.users.UpdateUser(ctx, user)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, fmt.Errorf("user %q: %w", username, core.ErrNotFound)
	}
	return updated, nil
}

// UpdatePassword replaces the stored password after verifying the old
// one. A new password equal to the old one is rejected before any
// store call is made.
func (s *AuthService) UpdatePassword(ctx context.Context, username, oldPassword, newPassword string) error {
	if newPassword == "" {
		return fmt.Errorf("new password is required: %w", core.ErrInvalidInput)
	}
	if oldPassword == newPassword {
		return fmt.Errorf("new password equals old password: %w", core.ErrInvalidInput)
	}

	stored, err := s.details.GetDetail(ctx, username, core.MethodPassword)
	if err != nil {
		return err
	}
	if stored != nil {
		match, err := VerifyCredential(core.MethodPassword, oldPassword, stored.Value)
		if err != nil {
			return err
		}
		if !match {
			return core.ErrUnauthorized
		}
	}

	detail := &core.AuthenticationDetail{Method: core.MethodPassword, Value: newPassword}
	return s.details.UpdateDetail(ctx, username, detail)
}

// UsernameAvailable reports whether no user record exists for username.
func (s *AuthService) UsernameAvailable(ctx context.Context, username string) (bool, error) {
	user, err := s.users.GetUser(ctx, username)
	if err != nil {
		return false, err
	}
	return user == nil, nil
}

func (s *AuthService) publishLogin(ctx context.Context, username, token string) {
	if s.events == nil {
		return
	}
	claims, err := s.tokenizer.Decode(token)
	if err != nil {
		return
	}
	if err := s.events.PublishLogin(ctx, username, claims.ID); err != nil {
		s.logger.WarnContext(ctx, "failed to publish login event", "error", err)
	}
}
