package handler

import (
	"io"
	"net/http"

	"github.com/classpulse/classpulse-backend/internal/middleware"
	"github.com/classpulse/classpulse-backend/internal/response"
	"github.com/classpulse/classpulse-backend/internal/service"
	"github.com/classpulse/classpulse-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

const maxUploadBytes = 25 << 20

// FileHandler exposes the platform file-storage operations.
type FileHandler struct {
	portal *service.PortalService
}

// NewFileHandler creates a new FileHandler.
func NewFileHandler(portal *service.PortalService) *FileHandler {
	return &FileHandler{portal: portal}
}

// List lists a folder (query param folder_id, storage root if empty).
func (h *FileHandler) List(c *gin.Context) {
	claims := middleware.GetClaims(c)

	files, err := h.portal.Files(c.Request.Context(), claims.UserID, c.Query("folder_id"))
	if err != nil {
		response.FailError(c, err)
		return
	}
	response.Success(c, http.StatusOK, files)
}

// Search finds files by name (query param q).
func (h *FileHandler) Search(c *gin.Context) {
	claims := middleware.GetClaims(c)

	term := c.Query("q")
	if term == "" {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	files, err := h.portal.SearchFiles(c.Request.Context(), claims.UserID, term)
	if err != nil {
		response.FailError(c, err)
		return
	}
	response.Success(c, http.StatusOK, files)
}

// CreateFolderRequest is the payload for POST /files/folder.
type CreateFolderRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=255"`
	ParentID string `json:"parent_id" binding:"omitempty"`
}

// CreateFolder creates a folder.
func (h *FileHandler) CreateFolder(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req CreateFolderRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	folder, err := h.portal.CreateFolder(c.Request.Context(), claims.UserID, req.Name, req.ParentID)
	if err != nil {
		response.FailError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, folder)
}

// Upload stores a multipart form file (field "file") in folder_id.
func (h *FileHandler) Upload(c *gin.Context) {
	claims := middleware.GetClaims(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}
	if fileHeader.Size > maxUploadBytes {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	uploaded, err := h.portal.UploadFile(
		c.Request.Context(),
		claims.UserID,
		fileHeader.Filename,
		c.PostForm("folder_id"),
		fileHeader.Header.Get("Content-Type"),
		content,
	)
	if err != nil {
		response.FailError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, uploaded)
}

// MoveRequest is the payload for POST /files/:id/move.
type MoveRequest struct {
	FromFolderID string `json:"from_folder_id" binding:"omitempty"`
	ToFolderID   string `json:"to_folder_id" binding:"required"`
}

// Move reparents a file.
func (h *FileHandler) Move(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req MoveRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	moved, err := h.portal.MoveFile(c.Request.Context(), claims.UserID, c.Param("id"), req.FromFolderID, req.ToFolderID)
	if err != nil {
		response.FailError(c, err)
		return
	}
	response.Success(c, http.StatusOK, moved)
}

// RenameRequest is the payload for POST /files/:id/rename.
type RenameRequest struct {
	Name string `json:"name" binding:"required,min=1,max=255"`
}

// Rename changes a file's name.
func (h *FileHandler) Rename(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req RenameRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	renamed, err := h.portal.RenameFile(c.Request.Context(), claims.UserID, c.Param("id"), req.Name)
	if err != nil {
		response.FailError(c, err)
		return
	}
	response.Success(c, http.StatusOK, renamed)
}

// Delete permanently removes a file.
func (h *FileHandler) Delete(c *gin.Context) {
	claims := middleware.GetClaims(c)

	if err := h.portal.DeleteFile(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		response.FailError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
