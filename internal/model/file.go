package model

// DriveFile represents a file or folder in the platform's file storage.
type DriveFile struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	MimeType     string   `json:"mime_type"`
	ModifiedTime string   `json:"modified_time,omitempty"`
	Parents      []string `json:"parents,omitempty"`
}

// FolderMimeType is the storage provider's marker for folders.
const FolderMimeType = "application/vnd.google-apps.folder"
