package alert

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// errUnknownCategory is returned for category names outside Categories.
	errUnknownCategory = errors.New("unknown category")
	// errUnknownSeverity is returned for unknown severity names.
	errUnknownSeverity = errors.New("unknown severity")
)

// Category groups alerts that share a cooldown.
type Category string

// Alert categories.
const (
	// CategoryFatigue is raised for mild and moderate fatigue.
	CategoryFatigue Category = "fatigue"
	// CategorySevere is raised for severe fatigue and suppresses the others.
	CategorySevere Category = "severe"
	// CategoryDistance is raised when the user sits too close for too long.
	CategoryDistance Category = "distance"
	// CategoryPosture is raised for sustained bad posture.
	CategoryPosture Category = "posture"
)

// Categories lists every category in priority order.
func Categories() []Category {
	return []Category{CategorySevere, CategoryFatigue, CategoryDistance, CategoryPosture}
}

// ParseCategory validates a category name.
func ParseCategory(name string) (Category, error) {
	for _, category := range Categories() {
		if string(category) == name {
			return category, nil
		}
	}

	return "", fmt.Errorf("parse category %q: %w", name, errUnknownCategory)
}

// Severity is the urgency of an alert.
type Severity string

// Alert severities.
const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// ParseSeverity validates a severity name.
func ParseSeverity(name string) (Severity, error) {
	switch severity := Severity(name); severity {
	case SeverityInfo, SeverityWarning, SeverityCritical:
		return severity, nil
	default:
		return "", fmt.Errorf("parse severity %q: %w", name, errUnknownSeverity)
	}
}

// Event is one fired alert.
type Event struct {
	// ID uniquely identifies the event.
	ID uuid.UUID
	// Category is the alert category.
	Category Category
	// Message is the human readable text.
	Message string
	// Severity is the urgency.
	Severity Severity
	// Timestamp is when the arbiter accepted the event.
	Timestamp time.Time
	// Source is who raised the event, nil when unknown.
	Source *Actor
}

// NewEvent creates an event with a fresh ID.
func NewEvent(category Category, message string, severity Severity, timestamp time.Time, source *Actor) *Event {
	return &Event{
		ID:        uuid.New(),
		Category:  category,
		Message:   message,
		Severity:  severity,
		Timestamp: timestamp,
		Source:    source.Clone(),
	}
}

// Clone returns a deep copy of the event.
func (e *Event) Clone() *Event {
	if e == nil {
		return nil
	}

	cloned := *e
	cloned.Source = e.Source.Clone()

	return &cloned
}
