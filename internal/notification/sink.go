package notification

import "github.com/classpulse/classpulse-backend/internal/model"

// Sink is the optional capability to surface a transient desktop-style
// alert. Delivery is best effort: the persisted notification log is the
// source of truth, not the alert.
type Sink interface {
	Show(userID, title, body string, priority model.Priority)
}

// NopSink is used when no alert capability is available. The engine
// functions identically with it.
type NopSink struct{}

func (NopSink) Show(string, string, string, model.Priority) {}
