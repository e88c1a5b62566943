package ports

import "context"

// EventPublisher notifies other services about session boundaries.
// Publishing is best effort; callers log failures and carry on.
type EventPublisher interface {
	PublishLogin(ctx context.Context, username, tokenID string) error
	PublishLogout(ctx context.Context, username, tokenID string) error
}
