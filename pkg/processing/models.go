package processing

import (
	"strings"
	"time"

	"github.com/onboardflow/platform/pkg/common/models"
	"gorm.io/datatypes"
)

const (
	DocumentTypeUnified = "UNIFIED_PROCESSING"

	StatusPending = "Pending"
)

// Log categories and levels for SystemLog entries.
const (
	LogCategorySuccess = "SUCCESS"
	LogCategoryError   = "ERROR"

	LogLevelInfo    = "INFO"
	LogLevelWarning = "WARNING"
	LogLevelError   = "ERROR"
	LogLevelDebug   = "DEBUG"
)

// ProcessedDocument is the persisted unification of one processing attempt:
// one row represents the three submitted physical documents. It is inserted
// exactly once and never updated afterward.
type ProcessedDocument struct {
	ProcessID          string            `json:"process_id" gorm:"primaryKey;column:process_id"`
	DocumentType       string            `json:"document_type" gorm:"column:document_type"`
	FullName           *string           `json:"full_name" gorm:"column:full_name"`
	NationalID         *string           `json:"national_id" gorm:"column:national_id"`
	TaxID              *string           `json:"tax_id" gorm:"column:tax_id"`
	IssueDate          *string           `json:"issue_date" gorm:"column:issue_date"`
	IssuingAuthority   *string           `json:"issuing_authority" gorm:"column:issuing_authority"`
	IssuingState       *string           `json:"issuing_state" gorm:"column:issuing_state"`
	MotherName         *string           `json:"mother_name" gorm:"column:mother_name"`
	FatherName         *string           `json:"father_name" gorm:"column:father_name"`
	BirthDate          *string           `json:"birth_date" gorm:"column:birth_date"`
	BirthPlace         *string           `json:"birth_place" gorm:"column:birth_place"`
	BirthState         *string           `json:"birth_state" gorm:"column:birth_state"`
	FullAddress        *string           `json:"full_address" gorm:"column:full_address"`
	Neighborhood       *string           `json:"neighborhood" gorm:"column:neighborhood"`
	City               *string           `json:"city" gorm:"column:city"`
	State              *string           `json:"state" gorm:"column:state"`
	PostalCode         *string           `json:"postal_code" gorm:"column:postal_code"`
	ResidenceProofType *string           `json:"residence_proof_type" gorm:"column:residence_proof_type"`
	Status             string            `json:"status" gorm:"column:status"`
	ProcessedAt        time.Time         `json:"processed_at" gorm:"column:processed_at"`
	Notes              *string           `json:"notes,omitempty" gorm:"column:notes"`
	ContactEmail       *string           `json:"contact_email,omitempty" gorm:"column:contact_email"`
	OriginalFilename   string            `json:"original_filename" gorm:"column:original_filename"`
	ExtractedFields    datatypes.JSONMap `json:"extracted_fields" gorm:"column:extracted_fields"`
	RawResponse        string            `json:"raw_response" gorm:"column:raw_response;type:text"`
	CreatedAt          time.Time         `json:"created_at" gorm:"column:created_at"`
	UpdatedAt          time.Time         `json:"updated_at" gorm:"column:updated_at"`
}

func (ProcessedDocument) TableName() string {
	return "processed_documents"
}

// UpdateStatus mutates the processing status in memory. The orchestrator
// never calls it after the initial insert; the persisted status stays
// Pending until a reviewer acts on the row.
func (d *ProcessedDocument) UpdateStatus(status string, notes *string) {
	d.Status = status
	d.Notes = notes
	d.UpdatedAt = time.Now().UTC()
}

// SystemLog is one append-only audit entry for a processing attempt.
type SystemLog struct {
	ID        uint              `json:"id" gorm:"primaryKey;autoIncrement;column:id"`
	ProcessID string            `json:"process_id" gorm:"column:process_id"`
	Category  string            `json:"category" gorm:"column:category"`
	Level     string            `json:"level" gorm:"column:level"`
	Message   string            `json:"message" gorm:"column:message"`
	Details   datatypes.JSONMap `json:"details" gorm:"column:details"`
	Timestamp time.Time         `json:"timestamp" gorm:"column:timestamp"`
}

func (SystemLog) TableName() string {
	return "system_logs"
}

func NewSystemLog(processID, category, level, message string, details map[string]interface{}) *SystemLog {
	if details == nil {
		details = map[string]interface{}{}
	}
	return &SystemLog{
		ProcessID: processID,
		Category:  category,
		Level:     strings.ToUpper(level),
		Message:   message,
		Details:   datatypes.JSONMap(details),
		Timestamp: time.Now().UTC(),
	}
}

// ProcessStatus is the lookup view over one attempt: what is persisted plus
// the cached final result when it is still available.
type ProcessStatus struct {
	ProcessID      string                `json:"process_id"`
	DocumentsFound int                   `json:"documents_found"`
	LogsFound      int                   `json:"logs_found"`
	Document       *ProcessedDocument    `json:"document,omitempty"`
	Logs           []SystemLog           `json:"logs,omitempty"`
	Result         *models.ProcessResult `json:"result,omitempty"`
}
