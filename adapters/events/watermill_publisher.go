package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/tmoj/authd/ports"
)

const (
	// LoginTopic carries session-start notifications.
	LoginTopic = "auth.login"

	// LogoutTopic carries revocation notifications so other services
	// can drop cached session state.
	LogoutTopic = "auth.logout"
)

// SessionEvent is the payload published on session boundaries.
type SessionEvent struct {
	Username string `json:"username"`
	TokenID  string `json:"token_id"`
}

// WatermillPublisher implements ports.EventPublisher on top of a
// Watermill publisher (a Redis stream in production).
type WatermillPublisher struct {
	publisher message.Publisher
}

// NewWatermillPublisher wraps a Watermill publisher.
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{publisher: publisher}
}

// PublishLogin announces a freshly issued session.
func (p *WatermillPublisher) PublishLogin(ctx context.Context, username, tokenID string) error {
	return p.publish(LoginTopic, username, tokenID)
}

// PublishLogout announces a revoked session.
func (p *WatermillPublisher) PublishLogout(ctx context.Context, username, tokenID string) error {
	return p.publish(LogoutTopic, username, tokenID)
}

func (p *WatermillPublisher) publish(topic, username, tokenID string) error {
	payload, err := json.Marshal(SessionEvent{Username: username, TokenID: tokenID})
	if err != nil {
		return fmt.Errorf("marshal session event: %w", err)
	}

	msg := message.NewMessage(tokenID, payload)
	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}
