package syncer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/classpulse/classpulse-backend/internal/credential"
	"github.com/classpulse/classpulse-backend/internal/model"
	"github.com/classpulse/classpulse-backend/internal/notification"
	"github.com/classpulse/classpulse-backend/internal/status"
	"github.com/rs/zerolog"
)

// ErrInProgress is returned when a sync cycle is already running for
// the user. The caller treats it as a no-op, not a failure.
var ErrInProgress = errors.New("sync already in progress for this user")

// CourseSource abstracts the platform fetchers so tests can fake them.
// *platform.Client satisfies it.
type CourseSource interface {
	ListCourses(ctx context.Context, userID string) ([]model.Course, error)
	ListCoursework(ctx context.Context, userID, courseID string) ([]model.Assignment, error)
	GetSubmission(ctx context.Context, userID, courseID, courseworkID string) (*model.Submission, error)
}

// SettingsFunc loads a user's notification settings.
type SettingsFunc func(ctx context.Context, userID string) (model.Settings, error)

// ResolvedItem pairs an assignment with its resolved status for one cycle.
type ResolvedItem struct {
	Assignment model.Assignment  `json:"assignment"`
	Resolution status.Resolution `json:"resolution"`
}

// CycleReport describes one completed sync cycle.
type CycleReport struct {
	StartedAt            time.Time                 `json:"started_at"`
	FinishedAt           time.Time                 `json:"finished_at"`
	Courses              int                       `json:"courses"`
	Assignments          int                       `json:"assignments"`
	FailedCourses        int                       `json:"failed_courses"`
	FailedSubmissions    int                       `json:"failed_submissions"`
	NotificationsCreated int                       `json:"notifications_created"`
	Summary              notification.CycleSummary `json:"summary"`
	Items                []ResolvedItem            `json:"items"`
}

// Syncer runs full synchronization cycles: fan-out fetching, status
// resolution, then notification generation. One cycle per user at a
// time; re-entrant calls no-op.
type Syncer struct {
	source      CourseSource
	engine      *notification.Engine
	creds       *credential.Store
	getSettings SettingsFunc
	provider    string
	now         func() time.Time
	log         zerolog.Logger

	mu      sync.Mutex
	running map[string]bool
	reports map[string]*CycleReport
}

// New creates a Syncer.
func New(source CourseSource, engine *notification.Engine, creds *credential.Store, getSettings SettingsFunc, provider string, now func() time.Time, log zerolog.Logger) *Syncer {
	return &Syncer{
		source:      source,
		engine:      engine,
		creds:       creds,
		getSettings: getSettings,
		provider:    provider,
		now:         now,
		log:         log.With().Str("component", "syncer").Logger(),
		running:     make(map[string]bool),
		reports:     make(map[string]*CycleReport),
	}
}

// InProgress reports whether a cycle is currently running for the user.
func (s *Syncer) InProgress(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running[userID]
}

// LastReport returns the most recent completed cycle for the user, or nil.
func (s *Syncer) LastReport(userID string) *CycleReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reports[userID]
}

// Disconnect invalidates the user's platform credential. It is
// idempotent; in-flight retries fail fast on their next attempt.
func (s *Syncer) Disconnect(ctx context.Context, userID string) error {
	s.log.Info().Str("user_id", userID).Msg("Disconnecting platform credential")
	return s.creds.Clear(ctx, userID, s.provider)
}

// Sync runs one full cycle for the user and returns its report.
func (s *Syncer) Sync(ctx context.Context, userID string) (*CycleReport, error) {
	if !s.begin(userID) {
		return nil, ErrInProgress
	}
	defer s.end(userID)

	report := &CycleReport{StartedAt: s.now()}
	log := s.log.With().Str("user_id", userID).Logger()

	courses, err := s.source.ListCourses(ctx, userID)
	if err != nil {
		return nil, err
	}
	report.Courses = len(courses)

	// Fan out coursework fetches per course. A failed course is logged
	// and skipped; the rest of the batch proceeds with partial data.
	var (
		wg          sync.WaitGroup
		mu          sync.Mutex
		assignments []model.Assignment
	)
	for _, course := range courses {
		wg.Add(1)
		go func(c model.Course) {
			defer wg.Done()
			work, err := s.source.ListCoursework(ctx, userID, c.ID)
			if err != nil {
				log.Warn().Err(err).Str("course_id", c.ID).Msg("Coursework fetch failed, skipping course")
				mu.Lock()
				report.FailedCourses++
				mu.Unlock()
				return
			}
			mu.Lock()
			assignments = append(assignments, work...)
			mu.Unlock()
		}(course)
	}
	wg.Wait()
	report.Assignments = len(assignments)

	// Fan out submission fetches per assignment. Each item resolves its
	// status as soon as its own fetch completes; a failed fetch degrades
	// that one item to "no submission data" without aborting the batch.
	items := make([]ResolvedItem, len(assignments))
	for i, a := range assignments {
		wg.Add(1)
		go func(i int, a model.Assignment) {
			defer wg.Done()
			sub, err := s.source.GetSubmission(ctx, userID, a.CourseID, a.ID)
			if err != nil {
				log.Warn().Err(err).Str("assignment_id", a.ID).Msg("Submission fetch failed, treating as absent")
				mu.Lock()
				report.FailedSubmissions++
				mu.Unlock()
				sub = nil
			}
			items[i] = ResolvedItem{Assignment: a, Resolution: status.Resolve(a, sub, s.now())}
		}(i, a)
	}
	wg.Wait()
	report.Items = items

	// Notification generation happens strictly after every status in
	// the cycle is resolved, so aggregate counts are consistent.
	settings, err := s.getSettings(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Msg("Settings load failed, using defaults")
		settings = model.DefaultSettings()
	}

	var quiet *notification.QuietWindow
	if settings.QuietHoursEnabled {
		if w, err := notification.ParseQuietWindow(settings.QuietStart, settings.QuietEnd); err == nil {
			quiet = &w
		} else {
			log.Warn().Err(err).Msg("Invalid quiet hours window, ignoring")
		}
	}

	report.NotificationsCreated = s.generate(ctx, userID, items, settings, quiet, report, log)
	report.FinishedAt = s.now()

	s.mu.Lock()
	s.reports[userID] = report
	s.mu.Unlock()

	log.Info().
		Int("courses", report.Courses).
		Int("assignments", report.Assignments).
		Int("failed_submissions", report.FailedSubmissions).
		Int("notifications", report.NotificationsCreated).
		Msg("Sync cycle complete")
	return report, nil
}

func (s *Syncer) generate(ctx context.Context, userID string, items []ResolvedItem, settings model.Settings, quiet *notification.QuietWindow, report *CycleReport, log zerolog.Logger) int {
	created := 0
	now := s.now()

	emit := func(ok bool, err error) {
		if err != nil {
			log.Error().Err(err).Msg("Notification emit failed")
			return
		}
		if ok {
			created++
		}
	}

	summary := notification.CycleSummary{}
	for _, item := range items {
		res := item.Resolution
		a := item.Assignment

		switch res.Status {
		case status.StatusNotStarted, status.StatusDraft:
			summary.Pending++
		case status.StatusMissing:
			summary.Overdue++
		}
		if a.DueDate != nil && !status.Terminal(res.Status) && res.Status != status.StatusDeleted {
			if left := a.DueDate.Time().Sub(now); left > 0 && left <= 72*time.Hour {
				summary.DueSoon++
			}
		}

		emit(s.engine.EmitDeadline(ctx, userID, a, res, settings.DeadlineHorizonHours, quiet))
		emit(s.engine.EmitOverdue(ctx, userID, a, res, quiet))
		if res.Status == status.StatusGraded && res.Grade != nil {
			emit(s.engine.EmitGrade(ctx, userID, a, *res.Grade, quiet))
		}
	}

	report.Summary = summary
	emit(s.engine.EmitSummary(ctx, userID, summary, quiet))
	return created
}

func (s *Syncer) begin(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running[userID] {
		return false
	}
	s.running[userID] = true
	return true
}

func (s *Syncer) end(userID string) {
	s.mu.Lock()
	delete(s.running, userID)
	s.mu.Unlock()
}
