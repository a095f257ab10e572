package model

import "time"

// NotificationType enumerates the notification categories.
type NotificationType string

const (
	NotificationDeadline NotificationType = "deadline"
	NotificationOverdue  NotificationType = "overdue"
	NotificationGrade    NotificationType = "grade"
	NotificationStudy    NotificationType = "study"
	NotificationReminder NotificationType = "reminder"
)

// Priority enumerates notification urgency levels.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Notification is one entry in the persisted notification log. The ID is
// a semantic identifier built from (category, linked assignment,
// distinguishing value) and doubles as the dedup key: two notifications
// with the same ID describe the same event.
type Notification struct {
	ID           string           `json:"id"`
	Type         NotificationType `json:"type"`
	Priority     Priority         `json:"priority"`
	Title        string           `json:"title"`
	Message      string           `json:"message"`
	AssignmentID string           `json:"assignment_id,omitempty"`
	CourseID     string           `json:"course_id,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	Read         bool             `json:"read"`
	Dismissed    bool             `json:"dismissed"`
}
