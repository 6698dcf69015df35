// Package event defines the events dispatched to the runtime and the
// patterns tasks use to wait for them.
package event

import (
	"time"

	"github.com/viant/steward/internal/clock"
	"github.com/viant/steward/internal/idgen"
)

// Event represents a single incoming occurrence delivered to waiting tasks.
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Source    string                 `json:"source,omitempty"`
	CreatedAt time.Time              `json:"createdAt"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Data      interface{}            `json:"data,omitempty"`
}

// New creates an event of the given type carrying data.
func New(eventType string, data interface{}) *Event {
	return &Event{
		ID:        idgen.New(),
		Type:      eventType,
		CreatedAt: clock.Now(),
		Metadata:  make(map[string]interface{}),
		Data:      data,
	}
}

// WithSource sets the event source and returns the event.
func (e *Event) WithSource(source string) *Event {
	e.Source = source
	return e
}

// TypeOf returns the event type or "" for a nil event.
func TypeOf(e *Event) string {
	if e == nil {
		return ""
	}
	return e.Type
}

// DataOf returns event data converted to T. A nil event or mismatched type
// yields the zero value and false.
func DataOf[T any](e *Event) (T, bool) {
	var zero T
	if e == nil {
		return zero, false
	}
	ret, ok := e.Data.(T)
	return ret, ok
}
