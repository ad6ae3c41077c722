package domain

import (
	"errors"
	"time"
)

// Task is one source → destination conversion unit. The destination is
// always the source's base name with the extension replaced by ".pdf".
type Task struct {
	SourcePath string
	DestPath   string
}

// Outcome is the result of running one Task through the invoker.
type Outcome struct {
	Task    Task
	Success bool
	Elapsed time.Duration
	Err     error
}

type UploadResult struct {
	Name    string `json:"name"`
	Success bool   `json:"success"`
	PDFName string `json:"pdf_name,omitempty"`
	Error   string `json:"error,omitempty"`
}

type UploadResponse struct {
	Results []UploadResult `json:"results"`
}

type FilesResponse struct {
	Files []string `json:"files"`
}

type DownloadAllRequest struct {
	Files []string `json:"files"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

var (
	ErrFileNotFound = errors.New("file not found")
	ErrEmptyRequest = errors.New("no files specified")
)
