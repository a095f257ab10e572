package handler

import (
	"net/http"

	"github.com/classpulse/classpulse-backend/internal/middleware"
	"github.com/classpulse/classpulse-backend/internal/response"
	"github.com/classpulse/classpulse-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// CourseHandler exposes cached course and assignment reads.
type CourseHandler struct {
	portal *service.PortalService
}

// NewCourseHandler creates a new CourseHandler.
func NewCourseHandler(portal *service.PortalService) *CourseHandler {
	return &CourseHandler{portal: portal}
}

// Courses lists the user's courses (TTL cached).
func (h *CourseHandler) Courses(c *gin.Context) {
	claims := middleware.GetClaims(c)

	courses, err := h.portal.Courses(c.Request.Context(), claims.UserID)
	if err != nil {
		response.FailError(c, err)
		return
	}
	response.Success(c, http.StatusOK, courses)
}

// Assignments lists one course's assignments (TTL cached).
func (h *CourseHandler) Assignments(c *gin.Context) {
	claims := middleware.GetClaims(c)
	courseID := c.Param("course_id")

	assignments, err := h.portal.Assignments(c.Request.Context(), claims.UserID, courseID)
	if err != nil {
		response.FailError(c, err)
		return
	}
	response.Success(c, http.StatusOK, assignments)
}
