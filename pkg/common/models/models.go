package models

import (
	"time"
)

// DocumentPayload is one submitted image: base64-encoded bytes plus an
// optional display filename.
type DocumentPayload struct {
	Data     string `json:"data"`
	Filename string `json:"filename,omitempty"`
}

// ProcessRequest carries the three documents of one onboarding submission.
type ProcessRequest struct {
	Front          DocumentPayload `json:"front"`
	Back           DocumentPayload `json:"back"`
	ResidenceProof DocumentPayload `json:"proof"`
	ContactEmail   string          `json:"contact_email,omitempty"`
}

// DocumentDescriptor identifies one submitted document for logs and
// notifications.
type DocumentDescriptor struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// ProcessResult is the outcome returned to the caller. Success and failure
// share the shape; optional fields are only set on the success path.
type ProcessResult struct {
	Success        bool                   `json:"success"`
	Message        string                 `json:"message"`
	Error          string                 `json:"error,omitempty"`
	ProcessID      string                 `json:"process_id"`
	Data           map[string]interface{} `json:"data,omitempty"`
	ModelUsed      string                 `json:"model_used,omitempty"`
	ImagesAnalyzed int                    `json:"images_analyzed,omitempty"`
	EmailSent      *bool                  `json:"email_sent,omitempty"`
	Stored         *bool                  `json:"stored,omitempty"`
	Timestamp      time.Time              `json:"timestamp"`
}

// Event Bus models
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"` // document.processed, document.failed
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]string      `json:"metadata,omitempty"`
}
