package interfaces

import (
	"context"
)

// PromptEventType represents the type of prompt event.
type PromptEventType string

const (
	PromptEventTypeCreated      PromptEventType = "created"
	PromptEventTypeVersionAdded PromptEventType = "version_added"
)

// PromptEvent represents a change in a prompt's version history.
type PromptEvent struct {
	EventType PromptEventType `json:"eventType"`
	PromptID  int             `json:"promptId"`
	Version   string          `json:"version"`
	Content   string          `json:"content,omitempty"`
}

// PromptEventPublisher defines the interface for publishing prompt change events.
type PromptEventPublisher interface {
	PublishPromptEvent(ctx context.Context, event PromptEvent) error
}
