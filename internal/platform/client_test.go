package platform

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/classpulse/classpulse-backend/internal/apperror"
	"github.com/classpulse/classpulse-backend/internal/config"
	"github.com/classpulse/classpulse-backend/internal/credential"
	"github.com/classpulse/classpulse-backend/internal/kvstore"
	"github.com/classpulse/classpulse-backend/internal/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedDoer returns one canned response per call, in order. The last
// entry repeats once the script is exhausted.
type scriptedDoer struct {
	responses []scriptedResponse
	calls     int
}

type scriptedResponse struct {
	status int
	body   string
	err    error
}

func (d *scriptedDoer) Do(_ *http.Request) (*http.Response, error) {
	idx := d.calls
	if idx >= len(d.responses) {
		idx = len(d.responses) - 1
	}
	d.calls++

	r := d.responses[idx]
	if r.err != nil {
		return nil, r.err
	}
	return &http.Response{
		StatusCode: r.status,
		Body:       io.NopCloser(strings.NewReader(r.body)),
		Header:     http.Header{},
	}, nil
}

func newTestClient(t *testing.T, doer Doer) (*Client, *credential.Store, *[]time.Duration) {
	t.Helper()

	creds := credential.NewStore(kvstore.NewMemoryStore())
	require.NoError(t, creds.Set(context.Background(), "u1", "classroom", "token-1"))

	cfg := &config.Config{
		PlatformBaseURL: "https://platform.test/v1",
		DriveBaseURL:    "https://drive.test/drive/v3",
		Provider:        "classroom",
		MaxRetries:      3,
	}
	client := NewClient(doer, creds, cfg, zerolog.Nop())

	delays := &[]time.Duration{}
	client.sleep = func(_ context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
	return client, creds, delays
}

func TestTransientErrorsRetryWithBackoff(t *testing.T) {
	doer := &scriptedDoer{responses: []scriptedResponse{
		{status: http.StatusTooManyRequests},
	}}
	client, _, delays := newTestClient(t, doer)

	_, err := client.ListCourses(context.Background(), "u1")
	require.Error(t, err)
	assert.Equal(t, apperror.KindTransient, apperror.KindOf(err))

	// Three attempts, a growing wait after each failed one.
	assert.Equal(t, 3, doer.calls)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second}, *delays)
}

func TestTransientThenSuccess(t *testing.T) {
	doer := &scriptedDoer{responses: []scriptedResponse{
		{status: http.StatusBadGateway},
		{status: http.StatusOK, body: `{"courses":[{"id":"c1","name":"Algebra"}]}`},
	}}
	client, _, delays := newTestClient(t, doer)

	courses, err := client.ListCourses(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "c1", courses[0].ID)
	assert.Equal(t, "Algebra", courses[0].Name)
	assert.Equal(t, 2, doer.calls)
	assert.Equal(t, []time.Duration{2 * time.Second}, *delays)
}

func TestTransportErrorIsTransient(t *testing.T) {
	doer := &scriptedDoer{responses: []scriptedResponse{
		{err: errors.New("connection reset")},
	}}
	client, _, delays := newTestClient(t, doer)

	_, err := client.ListCourses(context.Background(), "u1")
	require.Error(t, err)
	assert.Equal(t, apperror.KindTransient, apperror.KindOf(err))
	assert.Equal(t, 3, doer.calls)
	assert.Len(t, *delays, 3)
}

func TestUnauthorizedClearsCredentialWithoutRetry(t *testing.T) {
	doer := &scriptedDoer{responses: []scriptedResponse{
		{status: http.StatusUnauthorized},
	}}
	client, creds, delays := newTestClient(t, doer)

	_, err := client.ListCourses(context.Background(), "u1")
	require.Error(t, err)
	assert.Equal(t, apperror.KindAuthExpired, apperror.KindOf(err))
	assert.Equal(t, 1, doer.calls)
	assert.Empty(t, *delays)

	// The stored token must be gone so later calls fail fast.
	_, err = creds.Get(context.Background(), "u1", "classroom")
	assert.Equal(t, apperror.KindUnauthenticated, apperror.KindOf(err))
}

func TestForbiddenIsNotRetried(t *testing.T) {
	doer := &scriptedDoer{responses: []scriptedResponse{
		{status: http.StatusForbidden},
	}}
	client, creds, _ := newTestClient(t, doer)

	_, err := client.ListCourses(context.Background(), "u1")
	require.Error(t, err)
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))
	assert.Equal(t, 1, doer.calls)

	// Forbidden is not an expired credential; the token survives.
	token, err := creds.Get(context.Background(), "u1", "classroom")
	require.NoError(t, err)
	assert.Equal(t, "token-1", token)
}

func TestDisconnectDuringBackoffFailsNextAttempt(t *testing.T) {
	doer := &scriptedDoer{responses: []scriptedResponse{
		{status: http.StatusTooManyRequests},
	}}
	client, creds, _ := newTestClient(t, doer)

	// The credential disappears while the client waits out the backoff;
	// the next attempt must fail fast instead of dispatching with the
	// stale token.
	client.sleep = func(ctx context.Context, _ time.Duration) error {
		return creds.Clear(ctx, "u1", "classroom")
	}

	_, err := client.ListCourses(context.Background(), "u1")
	require.Error(t, err)
	assert.Equal(t, apperror.KindUnauthenticated, apperror.KindOf(err))
	assert.Equal(t, 1, doer.calls)
}

func TestZeroMaxRetriesStillAttemptsOnce(t *testing.T) {
	doer := &scriptedDoer{responses: []scriptedResponse{
		{status: http.StatusOK, body: `{"courses":[{"id":"c1","name":"Algebra"}]}`},
	}}

	creds := credential.NewStore(kvstore.NewMemoryStore())
	require.NoError(t, creds.Set(context.Background(), "u1", "classroom", "token-1"))
	client := NewClient(doer, creds, &config.Config{
		PlatformBaseURL: "https://platform.test/v1",
		Provider:        "classroom",
		MaxRetries:      0,
	}, zerolog.Nop())

	courses, err := client.ListCourses(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, 1, doer.calls)
}

func TestMissingCredentialFailsBeforeDispatch(t *testing.T) {
	doer := &scriptedDoer{responses: []scriptedResponse{{status: http.StatusOK, body: "{}"}}}
	client, creds, _ := newTestClient(t, doer)
	require.NoError(t, creds.Clear(context.Background(), "u1", "classroom"))

	_, err := client.ListCourses(context.Background(), "u1")
	require.Error(t, err)
	assert.Equal(t, apperror.KindUnauthenticated, apperror.KindOf(err))
	assert.Equal(t, 0, doer.calls)
}

func TestNonObjectPayloadIsInvalidResponse(t *testing.T) {
	doer := &scriptedDoer{responses: []scriptedResponse{
		{status: http.StatusOK, body: `[1,2,3]`},
	}}
	client, _, _ := newTestClient(t, doer)

	_, err := client.ListCourses(context.Background(), "u1")
	require.Error(t, err)
	assert.Equal(t, apperror.KindInvalidResponse, apperror.KindOf(err))
}

func TestCourseMissingIDIsValidationError(t *testing.T) {
	doer := &scriptedDoer{responses: []scriptedResponse{
		{status: http.StatusOK, body: `{"courses":[{"name":"No ID"}]}`},
	}}
	client, _, _ := newTestClient(t, doer)

	_, err := client.ListCourses(context.Background(), "u1")
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestListCourseworkMapsFields(t *testing.T) {
	doer := &scriptedDoer{responses: []scriptedResponse{
		{status: http.StatusOK, body: `{"courseWork":[
			{"id":"a1","title":"Essay","state":"PUBLISHED","maxPoints":100,
			 "creationTime":"2024-01-02T10:00:00Z",
			 "dueDate":{"year":2024,"month":1,"day":10}},
			{"id":"a2","title":"Gone","state":"DELETED"}
		]}`},
	}}
	client, _, _ := newTestClient(t, doer)

	work, err := client.ListCoursework(context.Background(), "u1", "c1")
	require.NoError(t, err)
	require.Len(t, work, 2)

	assert.Equal(t, "c1", work[0].CourseID)
	assert.Equal(t, 100.0, work[0].MaxPoints)
	require.NotNil(t, work[0].DueDate)
	assert.Equal(t, 2024, work[0].DueDate.Year)
	assert.Equal(t, time.January, work[0].DueDate.Month)
	assert.Equal(t, 10, work[0].DueDate.Day)
	assert.Equal(t, time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC), work[0].CreationTime)

	assert.Equal(t, model.AssignmentStateDeleted, work[1].State)
	assert.Nil(t, work[1].DueDate)
}

func TestGetSubmissionAbsent(t *testing.T) {
	doer := &scriptedDoer{responses: []scriptedResponse{
		{status: http.StatusOK, body: `{"studentSubmissions":[]}`},
	}}
	client, _, _ := newTestClient(t, doer)

	sub, err := client.GetSubmission(context.Background(), "u1", "c1", "a1")
	require.NoError(t, err)
	assert.Nil(t, sub)
}

func TestGetSubmissionMapsStates(t *testing.T) {
	doer := &scriptedDoer{responses: []scriptedResponse{
		{status: http.StatusOK, body: `{"studentSubmissions":[
			{"id":"s1","courseWorkId":"a1","state":"RECLAIMED_BY_STUDENT","late":true,"assignedGrade":87.5}
		]}`},
	}}
	client, _, _ := newTestClient(t, doer)

	sub, err := client.GetSubmission(context.Background(), "u1", "c1", "a1")
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, model.SubmissionStateCreated, sub.State)
	assert.True(t, sub.Late)
	require.NotNil(t, sub.AssignedGrade)
	assert.Equal(t, 87.5, *sub.AssignedGrade)
}
