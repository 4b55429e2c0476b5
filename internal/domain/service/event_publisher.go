package service

import (
	"context"
	"time"
)

// OrderPlacedEvent is emitted once per order, after the order transaction commits.
type OrderPlacedEvent struct {
	RequestID  string    `json:"request_id,omitempty"` // For distributed tracing
	OrderID    string    `json:"order_id"`
	UserID     string    `json:"user_id,omitempty"` // empty for guest checkouts
	SessionRef string    `json:"session_ref"`
	Total      string    `json:"total"`       // decimal, two places
	TotalMinor int64     `json:"total_minor"` // cents
	Currency   string    `json:"currency"`
	ItemCount  int       `json:"item_count"`
	PlacedAt   time.Time `json:"placed_at"`
}

// EventPublisher defines the interface for publishing events to a message queue
type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, event *OrderPlacedEvent) error

	// Close releases any resources held by the publisher
	Close() error
}
