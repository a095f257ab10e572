package model

// TeacherIdentity is a course instructor as reported by the remote platform.
type TeacherIdentity struct {
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Course represents a course on the remote platform. Courses are refreshed
// wholesale on fetch and never mutated locally.
type Course struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Section        string            `json:"section,omitempty"`
	EnrollmentCode string            `json:"enrollment_code,omitempty"`
	Teachers       []TeacherIdentity `json:"teachers,omitempty"`
}
