package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/classpulse/classpulse-backend/internal/config"
	"github.com/classpulse/classpulse-backend/internal/kvstore"
	"github.com/classpulse/classpulse-backend/internal/model"
	"github.com/classpulse/classpulse-backend/internal/status"
	"github.com/rs/zerolog"
)

// ErrNotFound is returned when acting on a notification that does not exist.
var ErrNotFound = errors.New("notification not found")

// Engine turns resolved assignment statuses into prioritized,
// deduplicated notifications and owns the persisted notification log.
// It is an explicit instance with injected dependencies: store, sink
// and clock. No ambient state.
type Engine struct {
	kv   kvstore.Store
	sink Sink
	now  func() time.Time
	log  zerolog.Logger
}

// NewEngine creates an Engine. Pass NopSink{} when no alert capability
// exists and time.Now as the production clock.
func NewEngine(kv kvstore.Store, sink Sink, now func() time.Time, log zerolog.Logger) *Engine {
	if sink == nil {
		sink = NopSink{}
	}
	return &Engine{
		kv:   kv,
		sink: sink,
		now:  now,
		log:  log.With().Str("component", "notification_engine").Logger(),
	}
}

// CycleSummary aggregates one sync cycle's resolved statuses.
type CycleSummary struct {
	Pending int `json:"pending"`
	Overdue int `json:"overdue"`
	DueSoon int `json:"due_soon"`
}

// ─── Log access ─────────────────────────────────────────────────────

// List returns the user's notifications, newest first, excluding
// dismissed entries.
func (e *Engine) List(ctx context.Context, userID string) ([]model.Notification, error) {
	all, err := e.loadAll(ctx, userID)
	if err != nil {
		return nil, err
	}

	active := make([]model.Notification, 0, len(all))
	for _, n := range all {
		if !n.Dismissed {
			active = append(active, n)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		return active[i].CreatedAt.After(active[j].CreatedAt)
	})
	return active, nil
}

// Counts returns the unread and urgent-unread counts, excluding
// dismissed entries.
func (e *Engine) Counts(ctx context.Context, userID string) (unread, urgent int, err error) {
	all, err := e.loadAll(ctx, userID)
	if err != nil {
		return 0, 0, err
	}
	for _, n := range all {
		if n.Dismissed || n.Read {
			continue
		}
		unread++
		if n.Priority == model.PriorityUrgent {
			urgent++
		}
	}
	return unread, urgent, nil
}

// MarkRead flags a notification as acknowledged. Read and dismissed are
// independent flags.
func (e *Engine) MarkRead(ctx context.Context, userID, id string) error {
	return e.mutate(ctx, userID, id, func(n *model.Notification) { n.Read = true })
}

// Dismiss clears a notification from the active set.
func (e *Engine) Dismiss(ctx context.Context, userID, id string) error {
	return e.mutate(ctx, userID, id, func(n *model.Notification) { n.Dismissed = true })
}

// ─── Generators ─────────────────────────────────────────────────────

// EmitDeadline records a deadline notification when the assignment is
// due within the horizon and the status is not terminal. The semantic
// ID carries the escalation bucket, so an assignment produces at most
// one active notification per urgency level.
func (e *Engine) EmitDeadline(ctx context.Context, userID string, a model.Assignment, res status.Resolution, horizonHours int, quiet *QuietWindow) (bool, error) {
	if a.DueDate == nil || status.Terminal(res.Status) || res.Status == status.StatusDeleted {
		return false, nil
	}

	hoursLeft := a.DueDate.Time().Sub(e.now()).Hours()
	if hoursLeft <= 0 || hoursLeft > float64(horizonHours) {
		return false, nil
	}

	priority, bucket := deadlinePriority(hoursLeft)

	n := model.Notification{
		ID:           fmt.Sprintf("deadline:%s:%s", a.ID, bucket),
		Type:         model.NotificationDeadline,
		Priority:     priority,
		Title:        "Due soon: " + a.Title,
		Message:      deadlineMessage(a.Title, hoursLeft),
		AssignmentID: a.ID,
		CourseID:     a.CourseID,
	}
	return e.publish(ctx, userID, n, quiet)
}

// EmitOverdue records an urgent overdue notification for a MISSING
// assignment. The semantic ID carries the day bucket so each further
// day overdue produces a fresh notification.
func (e *Engine) EmitOverdue(ctx context.Context, userID string, a model.Assignment, res status.Resolution, quiet *QuietWindow) (bool, error) {
	if res.Status != status.StatusMissing || a.DueDate == nil {
		return false, nil
	}

	now := e.now()
	daysOverdue := int(now.Sub(a.DueDate.Time()).Hours() / 24)
	if daysOverdue <= 0 {
		return false, nil
	}

	msg := fmt.Sprintf("\"%s\" is %d day(s) overdue.", a.Title, daysOverdue)
	if !a.CreationTime.IsZero() {
		if posted := int(now.Sub(a.CreationTime).Hours() / 24); posted > 0 {
			msg += fmt.Sprintf(" It was posted %d day(s) ago.", posted)
		}
	}

	n := model.Notification{
		ID:           fmt.Sprintf("overdue:%s:d%d", a.ID, daysOverdue),
		Type:         model.NotificationOverdue,
		Priority:     model.PriorityUrgent,
		Title:        "Overdue: " + a.Title,
		Message:      msg,
		AssignmentID: a.ID,
		CourseID:     a.CourseID,
	}
	return e.publish(ctx, userID, n, quiet)
}

// EmitGrade records a notification for a newly observed grade. The
// grade value is part of the semantic ID: re-fetching the same grade
// dedups, a changed grade produces a new notification.
func (e *Engine) EmitGrade(ctx context.Context, userID string, a model.Assignment, grade float64, quiet *QuietWindow) (bool, error) {
	pct := 100.0
	if a.MaxPoints > 0 {
		pct = grade / a.MaxPoints * 100
	}

	n := model.Notification{
		ID:           fmt.Sprintf("grade:%s:%s", a.ID, strconv.FormatFloat(grade, 'f', -1, 64)),
		Type:         model.NotificationGrade,
		Priority:     gradePriority(pct),
		Title:        "Grade posted: " + a.Title,
		Message:      fmt.Sprintf("You scored %s/%s (%.0f%%) on \"%s\".", trimFloat(grade), trimFloat(a.MaxPoints), pct, a.Title),
		AssignmentID: a.ID,
		CourseID:     a.CourseID,
	}
	return e.publish(ctx, userID, n, quiet)
}

// EmitSummary records the per-cycle study status aggregate. Identical
// consecutive summaries dedup via the counts embedded in the ID.
func (e *Engine) EmitSummary(ctx context.Context, userID string, s CycleSummary, quiet *QuietWindow) (bool, error) {
	var priority model.Priority
	switch {
	case s.Overdue > 0:
		priority = model.PriorityUrgent
	case s.DueSoon > 0:
		priority = model.PriorityHigh
	case s.Pending > 0:
		priority = model.PriorityMedium
	default:
		priority = model.PriorityLow
	}

	n := model.Notification{
		ID:       fmt.Sprintf("study:%d-%d-%d", s.Pending, s.Overdue, s.DueSoon),
		Type:     model.NotificationStudy,
		Priority: priority,
		Title:    "Study status",
		Message: fmt.Sprintf("%d pending, %d overdue, %d due within 3 days.",
			s.Pending, s.Overdue, s.DueSoon),
	}
	return e.publish(ctx, userID, n, quiet)
}

// ─── Internals ──────────────────────────────────────────────────────

// publish persists a notification unless an active (undismissed) entry
// with the same semantic ID already exists, then attempts best-effort
// sink delivery outside quiet hours.
func (e *Engine) publish(ctx context.Context, userID string, n model.Notification, quiet *QuietWindow) (bool, error) {
	key := config.StoreKey.NotificationKey(userID, n.ID)

	if raw, err := e.kv.Get(ctx, key); err == nil {
		var existing model.Notification
		if jerr := json.Unmarshal([]byte(raw), &existing); jerr == nil && !existing.Dismissed {
			return false, nil
		}
	} else if !errors.Is(err, kvstore.ErrNotFound) {
		return false, fmt.Errorf("check notification: %w", err)
	}

	now := e.now()
	n.CreatedAt = now
	n.Read = false
	n.Dismissed = false

	raw, err := json.Marshal(n)
	if err != nil {
		return false, fmt.Errorf("marshal notification: %w", err)
	}
	if err := e.kv.Set(ctx, key, string(raw)); err != nil {
		return false, fmt.Errorf("store notification: %w", err)
	}

	if quiet != nil && quiet.Contains(now) {
		e.log.Debug().
			Str("user_id", userID).
			Str("notification_id", n.ID).
			Msg("Quiet hours, alert suppressed")
		return true, nil
	}

	e.sink.Show(userID, n.Title, n.Message, n.Priority)
	return true, nil
}

func (e *Engine) loadAll(ctx context.Context, userID string) ([]model.Notification, error) {
	entries, err := e.kv.List(ctx, config.StoreKey.NotificationPrefix(userID))
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	list := make([]model.Notification, 0, len(entries))
	for key, raw := range entries {
		var n model.Notification
		if err := json.Unmarshal([]byte(raw), &n); err != nil {
			e.log.Warn().Str("key", key).Err(err).Msg("Skipping corrupt notification record")
			continue
		}
		list = append(list, n)
	}
	return list, nil
}

func (e *Engine) mutate(ctx context.Context, userID, id string, apply func(*model.Notification)) error {
	key := config.StoreKey.NotificationKey(userID, id)

	raw, err := e.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("get notification: %w", err)
	}

	var n model.Notification
	if err := json.Unmarshal([]byte(raw), &n); err != nil {
		return fmt.Errorf("decode notification: %w", err)
	}

	apply(&n)

	updated, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	if err := e.kv.Set(ctx, key, string(updated)); err != nil {
		return fmt.Errorf("store notification: %w", err)
	}
	return nil
}

// deadlinePriority maps hours-until-due onto priority and its
// escalation bucket name.
func deadlinePriority(hoursLeft float64) (model.Priority, string) {
	switch {
	case hoursLeft <= 1:
		return model.PriorityUrgent, "1h"
	case hoursLeft <= 24:
		return model.PriorityHigh, "24h"
	case hoursLeft <= 72:
		return model.PriorityMedium, "72h"
	default:
		return model.PriorityLow, "168h"
	}
}

func gradePriority(pct float64) model.Priority {
	switch {
	case pct >= 90:
		return model.PriorityLow
	case pct >= 80:
		return model.PriorityMedium
	case pct >= 70:
		return model.PriorityHigh
	default:
		return model.PriorityUrgent
	}
}

func deadlineMessage(title string, hoursLeft float64) string {
	if hoursLeft <= 24 {
		return fmt.Sprintf("\"%s\" is due in %d hour(s).", title, int(hoursLeft))
	}
	return fmt.Sprintf("\"%s\" is due in %d day(s).", title, int(hoursLeft/24))
}

func trimFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
