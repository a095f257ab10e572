package syncer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/classpulse/classpulse-backend/internal/apperror"
	"github.com/classpulse/classpulse-backend/internal/credential"
	"github.com/classpulse/classpulse-backend/internal/kvstore"
	"github.com/classpulse/classpulse-backend/internal/model"
	"github.com/classpulse/classpulse-backend/internal/notification"
	"github.com/classpulse/classpulse-backend/internal/status"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource serves canned platform data. release, when set, blocks
// ListCourses until closed so tests can hold a cycle open.
type fakeSource struct {
	mu       sync.Mutex
	courses  []model.Course
	work     map[string][]model.Assignment
	subs     map[string]*model.Submission
	subErrs  map[string]error
	workErrs map[string]error
	release  chan struct{}
}

func (f *fakeSource) ListCourses(_ context.Context, _ string) ([]model.Course, error) {
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.courses, nil
}

func (f *fakeSource) ListCoursework(_ context.Context, _, courseID string) ([]model.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.workErrs[courseID]; err != nil {
		return nil, err
	}
	return f.work[courseID], nil
}

func (f *fakeSource) GetSubmission(_ context.Context, _, _, courseworkID string) (*model.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.subErrs[courseworkID]; err != nil {
		return nil, err
	}
	return f.subs[courseworkID], nil
}

func defaultSettings(_ context.Context, _ string) (model.Settings, error) {
	return model.DefaultSettings(), nil
}

func newTestSyncer(t *testing.T, source *fakeSource, now time.Time) (*Syncer, *notification.Engine, *credential.Store) {
	t.Helper()

	kv := kvstore.NewMemoryStore()
	creds := credential.NewStore(kv)
	require.NoError(t, creds.Set(context.Background(), "u1", "classroom", "tok"))

	clock := func() time.Time { return now }
	engine := notification.NewEngine(kv, notification.NopSink{}, clock, zerolog.Nop())
	s := New(source, engine, creds, defaultSettings, "classroom", clock, zerolog.Nop())
	return s, engine, creds
}

func TestSyncResolvesAndNotifies(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC)

	source := &fakeSource{
		courses: []model.Course{{ID: "c1", Name: "Algebra"}},
		work: map[string][]model.Assignment{
			"c1": {
				// Due in 48h, untouched: pending and due soon.
				{ID: "a1", CourseID: "c1", Title: "Essay", State: model.AssignmentStateActive,
					DueDate: &model.DueDate{Year: 2024, Month: 1, Day: 10}},
				// Graded.
				{ID: "a2", CourseID: "c1", Title: "Quiz", State: model.AssignmentStateActive, MaxPoints: 100},
			},
		},
		subs: map[string]*model.Submission{
			"a2": {ID: "s2", State: model.SubmissionStateReturned, AssignedGrade: fptr(95)},
		},
	}

	s, engine, _ := newTestSyncer(t, source, now)

	report, err := s.Sync(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Courses)
	assert.Equal(t, 2, report.Assignments)
	assert.Equal(t, 0, report.FailedCourses)
	assert.Equal(t, 0, report.FailedSubmissions)

	byID := map[string]status.Status{}
	for _, item := range report.Items {
		byID[item.Assignment.ID] = item.Resolution.Status
	}
	assert.Equal(t, status.StatusNotStarted, byID["a1"])
	assert.Equal(t, status.StatusGraded, byID["a2"])

	assert.Equal(t, notification.CycleSummary{Pending: 1, DueSoon: 1}, report.Summary)

	// Deadline for a1, grade for a2, plus the cycle summary.
	assert.Equal(t, 3, report.NotificationsCreated)
	list, err := engine.List(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, list, 3)

	assert.Same(t, report, s.LastReport("u1"))
}

func TestSyncIsIdempotentAcrossCycles(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC)

	source := &fakeSource{
		courses: []model.Course{{ID: "c1"}},
		work: map[string][]model.Assignment{
			"c1": {{ID: "a1", CourseID: "c1", Title: "Essay", State: model.AssignmentStateActive,
				DueDate: &model.DueDate{Year: 2024, Month: 1, Day: 10}}},
		},
	}
	s, _, _ := newTestSyncer(t, source, now)

	first, err := s.Sync(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, first.NotificationsCreated)

	// Same upstream state: every notification dedups.
	second, err := s.Sync(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, second.NotificationsCreated)
}

func TestSubmissionFailureDegradesOneItem(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC)

	source := &fakeSource{
		courses: []model.Course{{ID: "c1"}},
		work: map[string][]model.Assignment{
			"c1": {
				{ID: "a1", CourseID: "c1", State: model.AssignmentStateActive},
				{ID: "a2", CourseID: "c1", State: model.AssignmentStateActive},
			},
		},
		subs: map[string]*model.Submission{
			"a2": {ID: "s2", State: model.SubmissionStateTurnedIn},
		},
		subErrs: map[string]error{
			"a1": apperror.New(apperror.KindTransient, "platform.GetSubmission", errors.New("status 503")),
		},
	}
	s, _, _ := newTestSyncer(t, source, now)

	report, err := s.Sync(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, report.FailedSubmissions)
	require.Len(t, report.Items, 2)

	byID := map[string]status.Status{}
	for _, item := range report.Items {
		byID[item.Assignment.ID] = item.Resolution.Status
	}
	// The failed item falls back to "no submission data".
	assert.Equal(t, status.StatusNotStarted, byID["a1"])
	// The healthy item is unaffected.
	assert.Equal(t, status.StatusTurnedIn, byID["a2"])
}

func TestCourseFailureSkipsThatCourse(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC)

	source := &fakeSource{
		courses: []model.Course{{ID: "c1"}, {ID: "c2"}},
		work: map[string][]model.Assignment{
			"c2": {{ID: "a1", CourseID: "c2", State: model.AssignmentStateActive}},
		},
		workErrs: map[string]error{
			"c1": apperror.New(apperror.KindTransient, "platform.ListCoursework", errors.New("status 502")),
		},
	}
	s, _, _ := newTestSyncer(t, source, now)

	report, err := s.Sync(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, report.Courses)
	assert.Equal(t, 1, report.FailedCourses)
	assert.Equal(t, 1, report.Assignments)
}

func TestConcurrentSyncIsRejected(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC)

	source := &fakeSource{release: make(chan struct{})}
	s, _, _ := newTestSyncer(t, source, now)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = s.Sync(ctx, "u1")
	}()

	// Wait until the first cycle holds the guard.
	require.Eventually(t, func() bool { return s.InProgress("u1") }, time.Second, time.Millisecond)

	_, err := s.Sync(ctx, "u1")
	assert.ErrorIs(t, err, ErrInProgress)

	close(source.release)
	<-done
	assert.False(t, s.InProgress("u1"))
}

func TestDisconnectIsIdempotent(t *testing.T) {
	ctx := context.Background()
	source := &fakeSource{}
	s, _, creds := newTestSyncer(t, source, time.Now())

	require.NoError(t, s.Disconnect(ctx, "u1"))
	_, err := creds.Get(ctx, "u1", "classroom")
	assert.Equal(t, apperror.KindUnauthenticated, apperror.KindOf(err))

	// A second disconnect of the same user is a clean no-op.
	require.NoError(t, s.Disconnect(ctx, "u1"))
}

func fptr(f float64) *float64 { return &f }
