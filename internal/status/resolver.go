package status

import (
	"time"

	"github.com/classpulse/classpulse-backend/internal/model"
)

// Status is the canonical derived state of one assignment for one learner.
type Status string

const (
	StatusNotStarted   Status = "NOT_STARTED"
	StatusDraft        Status = "DRAFT"
	StatusTurnedIn     Status = "TURNED_IN"
	StatusTurnedInLate Status = "TURNED_IN_LATE"
	StatusGraded       Status = "GRADED"
	StatusMissing      Status = "MISSING"
	StatusNotAccepting Status = "NOT_ACCEPTING"
	StatusDeleted      Status = "DELETED"
	StatusUnknown      Status = "UNKNOWN"
)

// Resolution is the resolver's output. Grade is set only for GRADED.
type Resolution struct {
	Status Status   `json:"status"`
	Grade  *float64 `json:"grade,omitempty"`
}

// Resolve derives the canonical status of an assignment from the
// assignment record, the (possibly absent) submission and the current
// time. It is a pure function: no persisted state is read or written,
// and identical inputs always produce identical output.
//
// The rule order is deliberate. A grade is authoritative evidence of
// completion, so it is checked before any lateness logic: graded work
// that was technically late must resolve to GRADED, not TURNED_IN_LATE.
// Likewise TURNED_IN is checked before MISSING so turned-in work is
// never flagged missing. Due-date comparison is date-only.
func Resolve(a model.Assignment, sub *model.Submission, now time.Time) Resolution {
	if a.State == model.AssignmentStateDeleted {
		return Resolution{Status: StatusDeleted}
	}

	if sub == nil || sub.State == model.SubmissionStateNotCreated {
		return Resolution{Status: StatusNotStarted}
	}

	if grade, ok := sub.Grade(); ok {
		return Resolution{Status: StatusGraded, Grade: &grade}
	}

	duePassed := a.DueDate != nil && a.DueDate.PassedOn(now)

	if sub.State == model.SubmissionStateTurnedIn {
		if sub.Late || duePassed {
			return Resolution{Status: StatusTurnedInLate}
		}
		return Resolution{Status: StatusTurnedIn}
	}

	if sub.State == model.SubmissionStateCreated && (sub.Late || duePassed) {
		return Resolution{Status: StatusMissing}
	}

	// Only fires if the missing rule above ever narrows; a past-due
	// CREATED submission currently always resolves to MISSING.
	if duePassed && sub.State == model.SubmissionStateCreated {
		return Resolution{Status: StatusNotAccepting}
	}

	if sub.State == model.SubmissionStateCreated {
		return Resolution{Status: StatusDraft}
	}

	return Resolution{Status: StatusUnknown}
}

// Terminal reports whether a status describes finished work; terminal
// statuses never generate deadline notifications.
func Terminal(s Status) bool {
	switch s {
	case StatusGraded, StatusTurnedIn, StatusTurnedInLate:
		return true
	default:
		return false
	}
}
