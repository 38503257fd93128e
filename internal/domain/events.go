package domain

import "time"

// Event bus topics
const (
	TopicOrderPlaced   = "order:placed"
	TopicOrderStatus   = "order:status"
	TopicPasswordReset = "account:password-reset"
)

// Publisher publishes events to subscribers, e.g. an EventBus.Bus.
type Publisher interface {
	Publish(topic string, args ...interface{})
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(string, ...interface{}) {}

// OrderEvent is published after an order is created or changes status.
type OrderEvent struct {
	Order    Order
	Customer Account
	Previous OrderStatus
	Actor    string
}

// PasswordResetEvent is published when a reset token is issued.
type PasswordResetEvent struct {
	Account   Account
	Token     string
	ExpiresAt time.Time
}
