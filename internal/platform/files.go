package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/classpulse/classpulse-backend/internal/apperror"
	"github.com/classpulse/classpulse-backend/internal/model"
)

type rawFile struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	MimeType     string   `json:"mimeType"`
	ModifiedTime string   `json:"modifiedTime"`
	Parents      []string `json:"parents"`
}

func (rf rawFile) toModel() model.DriveFile {
	return model.DriveFile{
		ID:           rf.ID,
		Name:         rf.Name,
		MimeType:     rf.MimeType,
		ModifiedTime: rf.ModifiedTime,
		Parents:      rf.Parents,
	}
}

// ListFiles lists files inside a folder. An empty folderID lists the
// storage root.
func (c *Client) ListFiles(ctx context.Context, userID, folderID string) ([]model.DriveFile, error) {
	parent := folderID
	if parent == "" {
		parent = "root"
	}
	query := fmt.Sprintf("'%s' in parents and trashed = false", parent)
	return c.queryFiles(ctx, userID, "platform.ListFiles", query)
}

// SearchFiles finds files whose name contains the given term.
func (c *Client) SearchFiles(ctx context.Context, userID, term string) ([]model.DriveFile, error) {
	escaped := strings.ReplaceAll(term, "'", `\'`)
	query := fmt.Sprintf("name contains '%s' and trashed = false", escaped)
	return c.queryFiles(ctx, userID, "platform.SearchFiles", query)
}

func (c *Client) queryFiles(ctx context.Context, userID, op, query string) ([]model.DriveFile, error) {
	endpoint := fmt.Sprintf("%s/files?q=%s&fields=files(id,name,mimeType,modifiedTime,parents)",
		c.driveURL, url.QueryEscape(query))
	data, err := c.execute(ctx, userID, op, http.MethodGet, endpoint, nil, "")
	if err != nil {
		return nil, err
	}

	var payload struct {
		Files []rawFile `json:"files"`
	}
	if err := decodeObject(data, op, &payload); err != nil {
		return nil, err
	}

	files := make([]model.DriveFile, 0, len(payload.Files))
	for _, rf := range payload.Files {
		if rf.ID == "" {
			return nil, apperror.New(apperror.KindValidation, op, fmt.Errorf("file record missing id"))
		}
		files = append(files, rf.toModel())
	}
	return files, nil
}

// CreateFolder creates a folder under parentID (storage root if empty).
func (c *Client) CreateFolder(ctx context.Context, userID, name, parentID string) (*model.DriveFile, error) {
	const op = "platform.CreateFolder"

	meta := map[string]interface{}{
		"name":     name,
		"mimeType": model.FolderMimeType,
	}
	if parentID != "" {
		meta["parents"] = []string{parentID}
	}
	body, _ := json.Marshal(meta)

	data, err := c.execute(ctx, userID, op, http.MethodPost, c.driveURL+"/files", body, "application/json")
	if err != nil {
		return nil, err
	}
	return decodeFile(data, op)
}

// UploadFile uploads content as a new file inside folderID using a
// multipart related request (metadata part + media part).
func (c *Client) UploadFile(ctx context.Context, userID, name, folderID, mimeType string, content []byte) (*model.DriveFile, error) {
	const op = "platform.UploadFile"

	meta := map[string]interface{}{"name": name}
	if folderID != "" {
		meta["parents"] = []string{folderID}
	}
	metaJSON, _ := json.Marshal(meta)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	metaHeader := textproto.MIMEHeader{}
	metaHeader.Set("Content-Type", "application/json; charset=UTF-8")
	part, err := mw.CreatePart(metaHeader)
	if err != nil {
		return nil, apperror.New(apperror.KindValidation, op, err)
	}
	part.Write(metaJSON)

	mediaHeader := textproto.MIMEHeader{}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	mediaHeader.Set("Content-Type", mimeType)
	part, err = mw.CreatePart(mediaHeader)
	if err != nil {
		return nil, apperror.New(apperror.KindValidation, op, err)
	}
	part.Write(content)
	mw.Close()

	uploadURL := strings.Replace(c.driveURL, "/drive/v3", "/upload/drive/v3", 1) + "/files?uploadType=multipart"
	contentType := "multipart/related; boundary=" + mw.Boundary()

	data, err := c.execute(ctx, userID, op, http.MethodPost, uploadURL, buf.Bytes(), contentType)
	if err != nil {
		return nil, err
	}
	return decodeFile(data, op)
}

// MoveFile reparents a file.
func (c *Client) MoveFile(ctx context.Context, userID, fileID, fromFolderID, toFolderID string) (*model.DriveFile, error) {
	const op = "platform.MoveFile"

	endpoint := fmt.Sprintf("%s/files/%s?addParents=%s&removeParents=%s",
		c.driveURL, url.PathEscape(fileID), url.QueryEscape(toFolderID), url.QueryEscape(fromFolderID))
	data, err := c.execute(ctx, userID, op, http.MethodPatch, endpoint, []byte("{}"), "application/json")
	if err != nil {
		return nil, err
	}
	return decodeFile(data, op)
}

// RenameFile changes a file's display name.
func (c *Client) RenameFile(ctx context.Context, userID, fileID, newName string) (*model.DriveFile, error) {
	const op = "platform.RenameFile"

	body, _ := json.Marshal(map[string]string{"name": newName})
	endpoint := fmt.Sprintf("%s/files/%s", c.driveURL, url.PathEscape(fileID))
	data, err := c.execute(ctx, userID, op, http.MethodPatch, endpoint, body, "application/json")
	if err != nil {
		return nil, err
	}
	return decodeFile(data, op)
}

// DeleteFile permanently removes a file.
func (c *Client) DeleteFile(ctx context.Context, userID, fileID string) error {
	const op = "platform.DeleteFile"

	endpoint := fmt.Sprintf("%s/files/%s", c.driveURL, url.PathEscape(fileID))
	_, err := c.execute(ctx, userID, op, http.MethodDelete, endpoint, nil, "")
	return err
}

func decodeFile(data []byte, op string) (*model.DriveFile, error) {
	var rf rawFile
	if err := decodeObject(data, op, &rf); err != nil {
		return nil, err
	}
	if rf.ID == "" {
		return nil, apperror.New(apperror.KindValidation, op, fmt.Errorf("file record missing id"))
	}
	f := rf.toModel()
	return &f, nil
}
