package processing

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// Store is the persistence gateway the orchestrator writes through. The
// document insert and the log insert are independent round trips; neither
// rolls back the other.
type Store interface {
	CreateDocument(ctx context.Context, doc *ProcessedDocument) error
	CreateLog(ctx context.Context, entry *SystemLog) error
	DocumentByProcess(ctx context.Context, processID string) (*ProcessedDocument, error)
	LogsByProcess(ctx context.Context, processID string) ([]SystemLog, error)
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&ProcessedDocument{}, &SystemLog{})
}

func (r *Repository) CreateDocument(ctx context.Context, doc *ProcessedDocument) error {
	doc.CreatedAt = time.Now().UTC()
	doc.UpdatedAt = doc.CreatedAt
	if err := r.db.WithContext(ctx).Create(doc).Error; err != nil {
		return PersistenceError{reason: err}
	}
	return nil
}

func (r *Repository) CreateLog(ctx context.Context, entry *SystemLog) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return PersistenceError{reason: err}
	}
	return nil
}

func (r *Repository) DocumentByProcess(ctx context.Context, processID string) (*ProcessedDocument, error) {
	var doc ProcessedDocument
	result := r.db.WithContext(ctx).First(&doc, "process_id = ?", processID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, result.Error
	}
	return &doc, nil
}

func (r *Repository) LogsByProcess(ctx context.Context, processID string) ([]SystemLog, error) {
	var logs []SystemLog
	err := r.db.WithContext(ctx).
		Where("process_id = ?", processID).
		Order("timestamp asc").
		Find(&logs).Error
	return logs, err
}
