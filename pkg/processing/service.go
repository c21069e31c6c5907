package processing

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/onboardflow/platform/pkg/common/logger"
	"github.com/onboardflow/platform/pkg/common/models"
	"github.com/onboardflow/platform/pkg/observability/metrics"
	"github.com/onboardflow/platform/pkg/staging"
	"github.com/onboardflow/platform/pkg/vision"
	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
)

const resultCachePrefix = "processing:result:"

// Analyzer is the vision extraction client the orchestrator calls once per
// attempt.
type Analyzer interface {
	Analyze(ctx context.Context, images vision.Images) vision.Outcome
}

// Notifier delivers best-effort success/failure notifications. It reports a
// boolean and never an error.
type Notifier interface {
	NotifySuccess(fields map[string]interface{}, docs []models.DocumentDescriptor, processID string) bool
	NotifyFailure(errorMessage string, docs []models.DocumentDescriptor) bool
}

// EventPublisher emits processing outcome events; nil disables publishing.
type EventPublisher interface {
	PublishEvent(ctx context.Context, eventType string, source string, data map[string]interface{}) error
}

// Service owns the end-to-end processing pipeline: staging, extraction,
// persistence, notification, and guaranteed cleanup.
type Service struct {
	store    Store
	analyzer Analyzer
	notifier Notifier
	events   EventPublisher
	cache    *redis.Client
	cacheTTL time.Duration
}

func NewService(store Store, analyzer Analyzer, notifier Notifier, events EventPublisher, cache *redis.Client, cacheTTL time.Duration) *Service {
	return &Service{
		store:    store,
		analyzer: analyzer,
		notifier: notifier,
		events:   events,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

// Process runs one synchronous processing attempt. The caller always gets a
// well-formed result with a boolean success flag; no stage failure escapes
// as a raw fault.
func (s *Service) Process(ctx context.Context, req models.ProcessRequest) (result models.ProcessResult) {
	processID := uuid.New().String()
	descriptors := descriptorsFor(req)

	defer func() {
		if r := recover(); r != nil {
			logger.Log.WithFields(map[string]interface{}{
				"process_id": processID,
				"panic":      r,
			}).Error("processing attempt panicked")
			result = s.failureResult(processID, fmt.Sprintf("internal processing error: %v", r))
		}
	}()

	logger.Log.WithField("process_id", processID).Info("starting document processing")

	ws, err := staging.Stage(processID, map[string]models.DocumentPayload{
		staging.RoleFront:          req.Front,
		staging.RoleBack:           req.Back,
		staging.RoleResidenceProof: req.ResidenceProof,
	})
	if err != nil {
		return s.handleError(ctx, processID, err, descriptors, req)
	}
	defer ws.Cleanup()

	outcome := s.analyzer.Analyze(ctx, vision.Images{
		Front: ws.Paths[staging.RoleFront],
		Back:  ws.Paths[staging.RoleBack],
		Proof: ws.Paths[staging.RoleResidenceProof],
	})
	if !outcome.Success {
		return s.handleError(ctx, processID, ExtractionError{reason: outcome.Err}, descriptors, req)
	}

	logger.Log.WithFields(map[string]interface{}{
		"process_id":      processID,
		"model":           outcome.Model,
		"images_analyzed": outcome.ImagesAnalyzed,
	}).Info("vision extraction completed")

	doc := buildDocument(processID, outcome, descriptors, req.ContactEmail)
	if err := s.store.CreateDocument(ctx, doc); err != nil {
		return s.handleError(ctx, processID, err, descriptors, req)
	}

	emailSent := s.notifier.NotifySuccess(outcome.Fields, descriptors, processID)
	if emailSent {
		metrics.MarkEmailSent()
	} else {
		logger.Log.WithField("process_id", processID).Warn("success notification was not sent")
	}

	// The success log depends on the document insert having gone through;
	// extraction success alone is not enough.
	s.writeSuccessLog(ctx, processID, outcome, descriptors, req.ContactEmail)

	s.publishEvent(ctx, "document.processed", map[string]interface{}{
		"process_id":      processID,
		"model":           outcome.Model,
		"images_analyzed": outcome.ImagesAnalyzed,
		"email_sent":      emailSent,
	})

	metrics.MarkProcessed()

	stored := true
	result = models.ProcessResult{
		Success:        true,
		Message:        "documents processed successfully",
		ProcessID:      processID,
		Data:           outcome.Fields,
		ModelUsed:      outcome.Model,
		ImagesAnalyzed: outcome.ImagesAnalyzed,
		EmailSent:      &emailSent,
		Stored:         &stored,
		Timestamp:      time.Now().UTC(),
	}
	s.cacheResult(ctx, result)

	logger.Log.WithField("process_id", processID).Info("document processing completed")
	return result
}

// handleError is the single escape hatch: it writes the failure log,
// attempts a failure notification, and emits the failure result. Its own
// failures are absorbed; a last-resort guard still returns a well-formed
// degraded result if error handling itself blows up.
func (s *Service) handleError(ctx context.Context, processID string, cause error, descriptors []models.DocumentDescriptor, req models.ProcessRequest) (result models.ProcessResult) {
	defer func() {
		if r := recover(); r != nil {
			logger.Log.WithFields(map[string]interface{}{
				"process_id": processID,
				"panic":      r,
			}).Error("error handling panicked")
			result = s.failureResult(processID, fmt.Sprintf("processing failed: %v", cause))
		}
	}()

	logger.Log.WithError(cause).WithField("process_id", processID).Error("document processing failed")

	entry := NewSystemLog(processID, LogCategoryError, LogLevelError, "failed to process documents", map[string]interface{}{
		"error":       cause.Error(),
		"received":    receivedSummary(req),
		"stack_trace": string(debug.Stack()),
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	})
	if err := s.store.CreateLog(ctx, entry); err != nil {
		logger.Log.WithError(err).WithField("process_id", processID).Warn("failed to write error log")
	}

	if !s.notifier.NotifyFailure(cause.Error(), descriptors) {
		logger.Log.WithField("process_id", processID).Warn("failure notification was not sent")
	}

	s.publishEvent(ctx, "document.failed", map[string]interface{}{
		"process_id": processID,
		"error":      cause.Error(),
	})

	metrics.MarkFailed()

	result = s.failureResult(processID, cause.Error())
	s.cacheResult(ctx, result)
	return result
}

func (s *Service) failureResult(processID, errorMessage string) models.ProcessResult {
	return models.ProcessResult{
		Success:   false,
		Error:     errorMessage,
		ProcessID: processID,
		Message:   "error while processing documents",
		Timestamp: time.Now().UTC(),
	}
}

func (s *Service) writeSuccessLog(ctx context.Context, processID string, outcome vision.Outcome, descriptors []models.DocumentDescriptor, contactEmail string) {
	files := make([]interface{}, 0, len(descriptors))
	for _, d := range descriptors {
		files = append(files, d.Name)
	}

	entry := NewSystemLog(processID, LogCategorySuccess, LogLevelInfo, "processing completed successfully", map[string]interface{}{
		"extracted_fields": outcome.Fields,
		"files":            files,
		"contact_email":    contactEmail,
		"model":            outcome.Model,
		"timestamp":        time.Now().UTC().Format(time.RFC3339),
	})
	if err := s.store.CreateLog(ctx, entry); err != nil {
		logger.Log.WithError(err).WithField("process_id", processID).Warn("failed to write success log")
	}
}

func (s *Service) publishEvent(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishEvent(ctx, eventType, "processing-service", data); err != nil {
		logger.Log.WithError(err).WithField("event_type", eventType).Warn("failed to publish processing event")
	}
}

func (s *Service) cacheResult(ctx context.Context, result models.ProcessResult) {
	if s.cache == nil || result.ProcessID == "" {
		return
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, resultCachePrefix+result.ProcessID, payload, s.cacheTTL).Err(); err != nil {
		logger.Log.WithError(err).WithField("process_id", result.ProcessID).Warn("failed to cache processing result")
	}
}

// Status reports what is known about one processing attempt: the persisted
// document and logs, plus the cached final result when it has not expired.
func (s *Service) Status(ctx context.Context, processID string) (*ProcessStatus, error) {
	status := &ProcessStatus{ProcessID: processID}

	if s.cache != nil {
		payload, err := s.cache.Get(ctx, resultCachePrefix+processID).Bytes()
		if err == nil {
			var cached models.ProcessResult
			if err := json.Unmarshal(payload, &cached); err == nil {
				status.Result = &cached
			}
		} else if err != redis.Nil {
			logger.Log.WithError(err).Debug("processing result cache unavailable")
		}
	}

	doc, err := s.store.DocumentByProcess(ctx, processID)
	if err == nil {
		status.Document = doc
		status.DocumentsFound = 1
	} else if err != ErrNotFound {
		return nil, err
	}

	logs, err := s.store.LogsByProcess(ctx, processID)
	if err != nil {
		return nil, err
	}
	status.Logs = logs
	status.LogsFound = len(logs)

	if status.DocumentsFound == 0 && status.LogsFound == 0 && status.Result == nil {
		return nil, ErrNotFound
	}

	return status, nil
}

func descriptorsFor(req models.ProcessRequest) []models.DocumentDescriptor {
	return []models.DocumentDescriptor{
		{Type: "ID Card - Front", Name: nameOrDefault(req.Front.Filename, "ID Front")},
		{Type: "ID Card - Back", Name: nameOrDefault(req.Back.Filename, "ID Back")},
		{Type: "Proof of Residence", Name: nameOrDefault(req.ResidenceProof.Filename, "Residence Proof")},
	}
}

func nameOrDefault(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}

func compositeFilename(descriptors []models.DocumentDescriptor) string {
	return fmt.Sprintf("ID Card: %s + %s | Proof of Residence: %s",
		descriptors[0].Name, descriptors[1].Name, descriptors[2].Name)
}

func receivedSummary(req models.ProcessRequest) map[string]interface{} {
	return map[string]interface{}{
		"front":         nameOrDefault(req.Front.Filename, "ID Front"),
		"back":          nameOrDefault(req.Back.Filename, "ID Back"),
		"proof":         nameOrDefault(req.ResidenceProof.Filename, "Residence Proof"),
		"contact_email": req.ContactEmail,
	}
}

func buildDocument(processID string, outcome vision.Outcome, descriptors []models.DocumentDescriptor, contactEmail string) *ProcessedDocument {
	fields := outcome.Fields

	issueDate := vision.StringField(fields, "issue_date")
	if issueDate != nil {
		normalized := vision.NormalizeDate(*issueDate)
		issueDate = &normalized
	}

	var contact *string
	if contactEmail != "" {
		contact = &contactEmail
	}

	return &ProcessedDocument{
		ProcessID:          processID,
		DocumentType:       DocumentTypeUnified,
		FullName:           vision.StringField(fields, "full_name"),
		NationalID:         vision.StringField(fields, "national_id"),
		TaxID:              vision.StringField(fields, "tax_id"),
		IssueDate:          issueDate,
		IssuingAuthority:   vision.StringField(fields, "issuing_authority"),
		IssuingState:       vision.StringField(fields, "issuing_state"),
		MotherName:         vision.StringField(fields, "mother_name"),
		FatherName:         vision.StringField(fields, "father_name"),
		BirthDate:          vision.StringField(fields, "birth_date"),
		BirthPlace:         vision.StringField(fields, "birth_place"),
		BirthState:         vision.StringField(fields, "birth_state"),
		FullAddress:        vision.StringField(fields, "full_address"),
		Neighborhood:       vision.StringField(fields, "neighborhood"),
		City:               vision.StringField(fields, "city"),
		State:              vision.StringField(fields, "state"),
		PostalCode:         vision.StringField(fields, "postal_code"),
		ResidenceProofType: vision.StringField(fields, "residence_proof_type"),
		Status:             StatusPending,
		ProcessedAt:        time.Now().UTC(),
		ContactEmail:       contact,
		OriginalFilename:   compositeFilename(descriptors),
		ExtractedFields:    datatypes.JSONMap(fields),
		RawResponse:        outcome.RawResponse,
	}
}
