// Package notification provides responder alert dispatch for the WildGuard
// engine. Delivery is best-effort: sends may fail independently per address
// and never block the assessment pipeline.
package notification

import (
	"time"

	"github.com/google/uuid"
)

// Tier represents the urgency classification governing how aggressively
// responders are notified.
type Tier string

const (
	// TierImmediate requires response right now, with voice follow-up
	TierImmediate Tier = "immediate"
	// TierUrgent requires prompt dispatch
	TierUrgent Tier = "urgent"
	// TierNormal is informational
	TierNormal Tier = "normal"
)

// Notification represents a single alert message to dispatch.
type Notification struct {
	// ID is the unique identifier for the notification
	ID string `json:"id"`
	// Tier indicates the urgency level
	Tier Tier `json:"tier"`
	// Title is a short summary of the notification
	Title string `json:"title"`
	// Message provides detailed information
	Message string `json:"message"`
	// Component identifies the source component
	Component string `json:"component,omitempty"`
	// Timestamp indicates when the notification was created
	Timestamp time.Time `json:"timestamp"`
	// Metadata contains additional context-specific data
	Metadata map[string]any `json:"metadata,omitempty"`
}

// New creates a new notification with a unique ID and timestamp.
func New(tier Tier, title, message string) *Notification {
	return &Notification{
		ID:        uuid.New().String(),
		Tier:      tier,
		Title:     title,
		Message:   message,
		Timestamp: time.Now(),
		Metadata:  make(map[string]any),
	}
}

// WithComponent sets the component field and returns the notification for chaining.
func (n *Notification) WithComponent(component string) *Notification {
	n.Component = component
	return n
}

// WithMetadata adds metadata and returns the notification for chaining.
func (n *Notification) WithMetadata(key string, value any) *Notification {
	if n.Metadata == nil {
		n.Metadata = make(map[string]any)
	}
	n.Metadata[key] = value
	return n
}
