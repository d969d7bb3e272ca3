package models

import (
	"time"
)

// Document statuses. "uploaded" is the initial state; the rest are driven by
// the status-update endpoint.
const (
	DocumentStatusUploaded  = "uploaded"
	DocumentStatusDraft     = "draft"
	DocumentStatusSubmitted = "submitted"
	DocumentStatusInReview  = "in_review"
	DocumentStatusCompleted = "completed"
)

// Task lifecycle. Tasks are created as "pending" alongside a document and
// owned by the analysis worker until they reach a terminal state.
const (
	TaskStatusPending    = "pending"
	TaskStatusProcessing = "processing"
	TaskStatusCompleted  = "completed"
	TaskStatusFailed     = "failed"
)

const TaskTypeDocumentAnalysis = "document_analysis"

type Document struct {
	ID            string    `json:"id" db:"id"`
	UserID        string    `json:"user_id" db:"user_id"`
	Name          string    `json:"name" db:"name"`
	Description   string    `json:"description,omitempty" db:"description"`
	FilePath      string    `json:"file_path" db:"file_path"`
	FileURL       string    `json:"file_url" db:"file_url"`
	FileSize      int64     `json:"file_size" db:"file_size"`
	FileType      string    `json:"file_type" db:"file_type"`
	Status        string    `json:"status" db:"status"`
	ExtractedText *string   `json:"extracted_text,omitempty" db:"extracted_text"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

type Task struct {
	ID         string    `json:"id" db:"id"`
	DocumentID string    `json:"document_id" db:"document_id"`
	UserID     string    `json:"user_id" db:"user_id"`
	TaskType   string    `json:"task_type" db:"task_type"`
	Status     string    `json:"status" db:"status"`
	Error      *string   `json:"error,omitempty" db:"error"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

type User struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

type UploadRequest struct {
	UserID      string
	File        []byte
	Filename    string
	ContentType string
	Title       string
	Description string
}

type UploadResponse struct {
	DocumentID string `json:"document_id"`
	TaskID     string `json:"task_id"`
}

type StatusUpdateRequest struct {
	Status string `json:"status"`
}

// ValidDocumentStatus reports whether s is an accepted status-update value.
func ValidDocumentStatus(s string) bool {
	switch s {
	case DocumentStatusDraft, DocumentStatusSubmitted, DocumentStatusInReview, DocumentStatusCompleted:
		return true
	}
	return false
}
