package platform

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/classpulse/classpulse-backend/internal/apperror"
	"github.com/classpulse/classpulse-backend/internal/model"
)

// rawCourse mirrors the platform's course schema.
type rawCourse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Section        string `json:"section"`
	EnrollmentCode string `json:"enrollmentCode"`
	Teachers       []struct {
		Name      string `json:"name"`
		AvatarURL string `json:"avatarUrl"`
	} `json:"teachers"`
}

// rawCoursework mirrors the platform's coursework schema.
type rawCoursework struct {
	ID           string  `json:"id"`
	CourseID     string  `json:"courseId"`
	Title        string  `json:"title"`
	State        string  `json:"state"`
	CreationTime string  `json:"creationTime"`
	MaxPoints    float64 `json:"maxPoints"`
	DueDate      *struct {
		Year  int `json:"year"`
		Month int `json:"month"`
		Day   int `json:"day"`
	} `json:"dueDate"`
}

// rawSubmission mirrors the platform's student submission schema.
type rawSubmission struct {
	ID            string   `json:"id"`
	CourseWorkID  string   `json:"courseWorkId"`
	State         string   `json:"state"`
	Late          bool     `json:"late"`
	AssignedGrade *float64 `json:"assignedGrade"`
	DraftGrade    *float64 `json:"draftGrade"`
}

// ListCourses fetches all courses the user is enrolled in.
func (c *Client) ListCourses(ctx context.Context, userID string) ([]model.Course, error) {
	const op = "platform.ListCourses"

	data, err := c.execute(ctx, userID, op, http.MethodGet, c.baseURL+"/courses", nil, "")
	if err != nil {
		return nil, err
	}

	var payload struct {
		Courses []rawCourse `json:"courses"`
	}
	if err := decodeObject(data, op, &payload); err != nil {
		return nil, err
	}

	courses := make([]model.Course, 0, len(payload.Courses))
	for _, rc := range payload.Courses {
		if rc.ID == "" {
			return nil, apperror.New(apperror.KindValidation, op, fmt.Errorf("course record missing id"))
		}
		course := model.Course{
			ID:             rc.ID,
			Name:           rc.Name,
			Section:        rc.Section,
			EnrollmentCode: rc.EnrollmentCode,
		}
		for _, t := range rc.Teachers {
			course.Teachers = append(course.Teachers, model.TeacherIdentity{
				Name:      t.Name,
				AvatarURL: t.AvatarURL,
			})
		}
		courses = append(courses, course)
	}
	return courses, nil
}

// ListCoursework fetches all assignments of one course.
func (c *Client) ListCoursework(ctx context.Context, userID, courseID string) ([]model.Assignment, error) {
	const op = "platform.ListCoursework"

	endpoint := fmt.Sprintf("%s/courses/%s/courseWork", c.baseURL, url.PathEscape(courseID))
	data, err := c.execute(ctx, userID, op, http.MethodGet, endpoint, nil, "")
	if err != nil {
		return nil, err
	}

	var payload struct {
		CourseWork []rawCoursework `json:"courseWork"`
	}
	if err := decodeObject(data, op, &payload); err != nil {
		return nil, err
	}

	assignments := make([]model.Assignment, 0, len(payload.CourseWork))
	for _, rw := range payload.CourseWork {
		if rw.ID == "" {
			return nil, apperror.New(apperror.KindValidation, op, fmt.Errorf("coursework record missing id"))
		}

		a := model.Assignment{
			ID:        rw.ID,
			CourseID:  rw.CourseID,
			Title:     rw.Title,
			MaxPoints: rw.MaxPoints,
			State:     assignmentState(rw.State),
		}
		if a.CourseID == "" {
			a.CourseID = courseID
		}
		if rw.CreationTime != "" {
			if t, err := time.Parse(time.RFC3339, rw.CreationTime); err == nil {
				a.CreationTime = t
			}
		}
		if rw.DueDate != nil {
			a.DueDate = &model.DueDate{
				Year:  rw.DueDate.Year,
				Month: time.Month(rw.DueDate.Month),
				Day:   rw.DueDate.Day,
			}
		}
		assignments = append(assignments, a)
	}
	return assignments, nil
}

// GetSubmission fetches the user's submission for one assignment.
// Returns (nil, nil) when no submission record exists; absence is
// meaningful and resolves to NOT_STARTED downstream.
func (c *Client) GetSubmission(ctx context.Context, userID, courseID, courseworkID string) (*model.Submission, error) {
	const op = "platform.GetSubmission"

	endpoint := fmt.Sprintf("%s/courses/%s/courseWork/%s/studentSubmissions?userId=%s",
		c.baseURL, url.PathEscape(courseID), url.PathEscape(courseworkID), url.QueryEscape(userID))
	data, err := c.execute(ctx, userID, op, http.MethodGet, endpoint, nil, "")
	if err != nil {
		return nil, err
	}

	var payload struct {
		StudentSubmissions []rawSubmission `json:"studentSubmissions"`
	}
	if err := decodeObject(data, op, &payload); err != nil {
		return nil, err
	}

	if len(payload.StudentSubmissions) == 0 {
		return nil, nil
	}

	rs := payload.StudentSubmissions[0]
	if rs.ID == "" {
		return nil, apperror.New(apperror.KindValidation, op, fmt.Errorf("submission record missing id"))
	}

	sub := &model.Submission{
		ID:            rs.ID,
		AssignmentID:  rs.CourseWorkID,
		State:         submissionState(rs.State),
		Late:          rs.Late,
		AssignedGrade: rs.AssignedGrade,
		DraftGrade:    rs.DraftGrade,
	}
	if sub.AssignmentID == "" {
		sub.AssignmentID = courseworkID
	}
	return sub, nil
}

func assignmentState(raw string) model.AssignmentState {
	if raw == "DELETED" {
		return model.AssignmentStateDeleted
	}
	return model.AssignmentStateActive
}

// submissionState maps the platform's submission states onto the
// canonical set. A reclaimed submission behaves like a draft.
func submissionState(raw string) model.SubmissionState {
	switch raw {
	case "NEW":
		return model.SubmissionStateNotCreated
	case "CREATED", "RECLAIMED_BY_STUDENT":
		return model.SubmissionStateCreated
	case "TURNED_IN":
		return model.SubmissionStateTurnedIn
	case "RETURNED":
		return model.SubmissionStateReturned
	default:
		return model.SubmissionState(raw)
	}
}
