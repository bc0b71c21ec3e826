package models

import "time"

// FileStatus describes where an uploaded source file is in its lifecycle.
type FileStatus string

const (
	FileStatusUploaded  FileStatus = "uploaded"
	FileStatusConverted FileStatus = "converted"
	FileStatusError     FileStatus = "error"
)

// FileInfo represents metadata about an uploaded COBOL source file.
type FileInfo struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Size       int64      `json:"size"`
	UploadedAt time.Time  `json:"uploadedAt"`
	Status     FileStatus `json:"status"`
}
