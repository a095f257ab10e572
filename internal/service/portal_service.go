package service

import (
	"context"
	"time"

	"github.com/classpulse/classpulse-backend/internal/cache"
	"github.com/classpulse/classpulse-backend/internal/model"
	"github.com/classpulse/classpulse-backend/internal/platform"
	"github.com/rs/zerolog"
)

// Cache TTLs for slow-changing portal reads.
const (
	CourseListTTL     = 10 * time.Minute
	AssignmentListTTL = 5 * time.Minute
	FileListTTL       = 5 * time.Minute
)

// PortalService fronts the platform fetchers with TTL caches for
// non-assignment UI reads and passes file mutations straight through,
// invalidating the affected listings.
type PortalService struct {
	platform    *platform.Client
	courses     *cache.Cache[[]model.Course]
	assignments *cache.Cache[[]model.Assignment]
	files       *cache.Cache[[]model.DriveFile]
	log         zerolog.Logger
}

// NewPortalService creates a PortalService with the given clock.
func NewPortalService(client *platform.Client, now func() time.Time, log zerolog.Logger) *PortalService {
	return &PortalService{
		platform:    client,
		courses:     cache.New[[]model.Course](now),
		assignments: cache.New[[]model.Assignment](now),
		files:       cache.New[[]model.DriveFile](now),
		log:         log.With().Str("component", "portal_service").Logger(),
	}
}

// Courses returns the user's course list, cached.
func (s *PortalService) Courses(ctx context.Context, userID string) ([]model.Course, error) {
	return s.courses.GetOrFetch(ctx, "courses:"+userID, CourseListTTL, func(ctx context.Context) ([]model.Course, error) {
		return s.platform.ListCourses(ctx, userID)
	})
}

// Assignments returns one course's assignment list, cached.
func (s *PortalService) Assignments(ctx context.Context, userID, courseID string) ([]model.Assignment, error) {
	key := "coursework:" + userID + ":" + courseID
	return s.assignments.GetOrFetch(ctx, key, AssignmentListTTL, func(ctx context.Context) ([]model.Assignment, error) {
		return s.platform.ListCoursework(ctx, userID, courseID)
	})
}

// Files returns a folder listing, cached.
func (s *PortalService) Files(ctx context.Context, userID, folderID string) ([]model.DriveFile, error) {
	key := "files:" + userID + ":" + folderID
	return s.files.GetOrFetch(ctx, key, FileListTTL, func(ctx context.Context) ([]model.DriveFile, error) {
		return s.platform.ListFiles(ctx, userID, folderID)
	})
}

// SearchFiles queries file storage directly; search results are not cached.
func (s *PortalService) SearchFiles(ctx context.Context, userID, term string) ([]model.DriveFile, error) {
	return s.platform.SearchFiles(ctx, userID, term)
}

// CreateFolder creates a folder and invalidates the parent listing.
func (s *PortalService) CreateFolder(ctx context.Context, userID, name, parentID string) (*model.DriveFile, error) {
	f, err := s.platform.CreateFolder(ctx, userID, name, parentID)
	if err != nil {
		return nil, err
	}
	s.files.Invalidate("files:" + userID + ":" + parentID)
	return f, nil
}

// UploadFile uploads a file and invalidates the folder listing.
func (s *PortalService) UploadFile(ctx context.Context, userID, name, folderID, mimeType string, content []byte) (*model.DriveFile, error) {
	f, err := s.platform.UploadFile(ctx, userID, name, folderID, mimeType, content)
	if err != nil {
		return nil, err
	}
	s.files.Invalidate("files:" + userID + ":" + folderID)
	return f, nil
}

// MoveFile moves a file between folders and invalidates both listings.
func (s *PortalService) MoveFile(ctx context.Context, userID, fileID, fromFolderID, toFolderID string) (*model.DriveFile, error) {
	f, err := s.platform.MoveFile(ctx, userID, fileID, fromFolderID, toFolderID)
	if err != nil {
		return nil, err
	}
	s.files.Invalidate("files:" + userID + ":" + fromFolderID)
	s.files.Invalidate("files:" + userID + ":" + toFolderID)
	return f, nil
}

// RenameFile renames a file. Listings keep serving the stale name until
// their TTL lapses or a mutation invalidates them, which the UI tolerates.
func (s *PortalService) RenameFile(ctx context.Context, userID, fileID, newName string) (*model.DriveFile, error) {
	return s.platform.RenameFile(ctx, userID, fileID, newName)
}

// DeleteFile removes a file.
func (s *PortalService) DeleteFile(ctx context.Context, userID, fileID string) error {
	return s.platform.DeleteFile(ctx, userID, fileID)
}

// Foreground drops expired cache entries. Wired to the host
// application's visibility-regained hook.
func (s *PortalService) Foreground() {
	s.courses.RevalidateOnForeground()
	s.assignments.RevalidateOnForeground()
	s.files.RevalidateOnForeground()
}
