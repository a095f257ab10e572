package model

// SubmissionState enumerates the states of a learner's submission.
type SubmissionState string

const (
	SubmissionStateNotCreated SubmissionState = "NOT_CREATED"
	SubmissionStateCreated    SubmissionState = "CREATED"
	SubmissionStateTurnedIn   SubmissionState = "TURNED_IN"
	SubmissionStateReturned   SubmissionState = "RETURNED"
)

// Submission is one learner's record of work against one assignment.
// There is at most one submission per (assignment, user) pair; absence
// of a record means the learner has not started.
type Submission struct {
	ID            string          `json:"id"`
	AssignmentID  string          `json:"assignment_id"`
	State         SubmissionState `json:"state"`
	Late          bool            `json:"late"`
	AssignedGrade *float64        `json:"assigned_grade,omitempty"`
	DraftGrade    *float64        `json:"draft_grade,omitempty"`
}

// Grade returns the authoritative grade value if any. An assigned grade
// wins over a draft grade.
func (s *Submission) Grade() (float64, bool) {
	if s == nil {
		return 0, false
	}
	if s.AssignedGrade != nil {
		return *s.AssignedGrade, true
	}
	if s.DraftGrade != nil {
		return *s.DraftGrade, true
	}
	return 0, false
}
