package model

import "time"

// AssignmentState enumerates the lifecycle states of an assignment.
type AssignmentState string

const (
	AssignmentStateActive  AssignmentState = "ACTIVE"
	AssignmentStateDeleted AssignmentState = "DELETED"
)

// DueDate is a calendar date with no time-of-day component. The remote
// platform reports due dates this way, and all lateness comparisons are
// done at date granularity to avoid timezone-induced off-by-one errors.
type DueDate struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
	Day   int        `json:"day"`
}

// Time returns the due date at midnight UTC.
func (d DueDate) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// PassedOn reports whether the due date lies strictly before now's
// calendar date. An assignment is not "past due" on its due day.
func (d DueDate) PassedOn(now time.Time) bool {
	y, m, day := now.Date()
	if y != d.Year {
		return y > d.Year
	}
	if m != d.Month {
		return m > d.Month
	}
	return day > d.Day
}

// Assignment represents a unit of coursework posted to a course.
// Created and refreshed by the fetch layer; never mutated locally.
type Assignment struct {
	ID           string          `json:"id"`
	CourseID     string          `json:"course_id"`
	Title        string          `json:"title"`
	CreationTime time.Time       `json:"creation_time"`
	DueDate      *DueDate        `json:"due_date,omitempty"`
	MaxPoints    float64         `json:"max_points"`
	State        AssignmentState `json:"state"`
}
