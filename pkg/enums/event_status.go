package enums

import "fmt"

// EventStatus describes the lifecycle state of a studio event.
type EventStatus string

const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusPublished EventStatus = "published"
	EventStatusCompleted EventStatus = "completed"
	EventStatusArchived  EventStatus = "archived"
)

var validEventStatuses = []EventStatus{
	EventStatusDraft,
	EventStatusPublished,
	EventStatusCompleted,
	EventStatusArchived,
}

// String returns the literal string for the status.
func (s EventStatus) String() string {
	return string(s)
}

// IsValid reports whether the status is known.
func (s EventStatus) IsValid() bool {
	for _, candidate := range validEventStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsClientVisible reports whether photos attached to an event in this state
// may be served to non-admin callers.
func (s EventStatus) IsClientVisible() bool {
	return s == EventStatusPublished || s == EventStatusCompleted
}

// ParseEventStatus converts raw input into an EventStatus.
func ParseEventStatus(value string) (EventStatus, error) {
	for _, candidate := range validEventStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event status %q", value)
}
