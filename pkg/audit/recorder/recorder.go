package recorder

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"mercator-hq/saturn/pkg/audit"
	"mercator-hq/saturn/pkg/crl/ast"
	"mercator-hq/saturn/pkg/rules/engine"
)

const (
	defaultAsyncBuffer    = 1000
	defaultWriteTimeout   = 5 * time.Second
	defaultMaxFieldLength = 500
)

// Config contains configuration for the validation recorder.
type Config struct {
	// Enabled enables validation recording.
	Enabled bool

	// AsyncBuffer is the size of the async write channel buffer.
	// Default: 1000
	AsyncBuffer int

	// WriteTimeout bounds both the enqueue wait when the buffer is full
	// and each storage write.
	// Default: 5 seconds
	WriteTimeout time.Duration

	// HashContext enables hashing of the evaluation context fields.
	// Default: true
	HashContext bool

	// MaxFieldLength is the maximum length for issue text fields before
	// truncation.
	// Default: 500
	MaxFieldLength int
}

// DefaultConfig returns the default recorder configuration.
func DefaultConfig() *Config {
	return &Config{
		Enabled:        true,
		AsyncBuffer:    defaultAsyncBuffer,
		WriteTimeout:   defaultWriteTimeout,
		HashContext:    true,
		MaxFieldLength: defaultMaxFieldLength,
	}
}

// RunMetadata carries run attributes that the execution summary and
// evaluation context do not: which credit the presentation belongs to, who
// checked it, and which catalog version was active.
type RunMetadata struct {
	// LCReference is the letter of credit reference for the presentation.
	LCReference string

	// CheckedBy identifies the document checker or system principal that
	// requested the validation.
	CheckedBy string

	// CatalogVersion is the rule catalog version hash active during the run.
	CatalogVersion string

	// StartedAt is when catalog execution began. Zero means unknown; the
	// record then carries the recording time.
	StartedAt time.Time

	// Error is an infrastructure failure the caller wants recorded
	// against this run.
	Error string
}

// Recorder flattens execution summaries into validation records and writes
// them to storage asynchronously, so recording never blocks validation.
type Recorder struct {
	storage    audit.Storage
	config     *Config
	recordChan chan *audit.ValidationRecord
	wg         sync.WaitGroup
	done       chan struct{}
	logger     *slog.Logger
}

// NewRecorder creates a validation recorder writing to the provided storage
// backend.
func NewRecorder(storage audit.Storage, config *Config) *Recorder {
	if config == nil {
		config = DefaultConfig()
	}

	// Work on a copy so zero buffer and timeout values can be backfilled
	// without mutating the caller's configuration.
	conf := *config
	if conf.AsyncBuffer <= 0 {
		conf.AsyncBuffer = defaultAsyncBuffer
	}
	if conf.WriteTimeout <= 0 {
		conf.WriteTimeout = defaultWriteTimeout
	}
	if conf.MaxFieldLength <= 0 {
		conf.MaxFieldLength = defaultMaxFieldLength
	}

	r := &Recorder{
		storage:    storage,
		config:     &conf,
		recordChan: make(chan *audit.ValidationRecord, conf.AsyncBuffer),
		done:       make(chan struct{}),
		logger:     slog.Default().With("component", "audit.recorder"),
	}

	r.wg.Add(1)
	go r.worker()

	r.logger.Info("validation recorder initialized",
		"async_buffer", conf.AsyncBuffer,
		"write_timeout", conf.WriteTimeout,
		"hash_context", conf.HashContext,
	)

	return r
}

// Record flattens one execution summary into a validation record and
// enqueues it for async writing. meta and ectx may be nil; the record then
// carries only what the summary provides.
//
// Record returns without waiting for the storage write.
func (r *Recorder) Record(ctx context.Context, meta *RunMetadata, ectx *engine.EvaluationContext, summary *engine.ExecutionSummary) error {
	if !r.config.Enabled {
		return nil
	}
	if summary == nil {
		return audit.NewRecorderError("", errors.New("nil execution summary"))
	}

	record := r.buildRecord(meta, ectx, summary)

	select {
	case r.recordChan <- record:
		r.logger.Debug("validation record enqueued",
			"record_id", record.ID,
			"validation_id", record.ValidationID,
			"outcome", record.Outcome,
		)
	case <-time.After(r.config.WriteTimeout):
		r.logger.Error("record channel full, dropping validation record",
			"record_id", record.ID,
			"validation_id", record.ValidationID,
			"channel_capacity", r.config.AsyncBuffer,
		)
		return audit.NewRecorderError(record.ID, context.DeadlineExceeded)
	case <-r.done:
		r.logger.Warn("recorder shutting down, dropping record",
			"record_id", record.ID,
			"validation_id", record.ValidationID,
		)
		return audit.NewRecorderError(record.ID, context.Canceled)
	}

	return nil
}

// Close shuts the recorder down, draining the channel and waiting for
// pending writes to complete.
func (r *Recorder) Close() error {
	r.logger.Info("shutting down validation recorder")

	close(r.done)
	r.wg.Wait()

	r.logger.Info("validation recorder shut down")
	return nil
}

// worker drains the record channel and writes records to storage.
func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case record := <-r.recordChan:
			r.writeRecord(record)

		case <-r.done:
			r.logger.Info("draining record channel before shutdown",
				"pending_count", len(r.recordChan),
			)

			for {
				select {
				case record := <-r.recordChan:
					r.writeRecord(record)
				default:
					r.logger.Info("record channel drained")
					return
				}
			}
		}
	}
}

// writeRecord writes a single validation record to storage.
func (r *Recorder) writeRecord(record *audit.ValidationRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	start := time.Now()

	if err := r.storage.Store(ctx, record); err != nil {
		r.logger.Error("failed to store validation record",
			"record_id", record.ID,
			"validation_id", record.ValidationID,
			"error", err,
		)
		return
	}

	duration := time.Since(start)

	r.logger.Info("validation recorded",
		"record_id", record.ID,
		"validation_id", record.ValidationID,
		"outcome", record.Outcome,
		"issue_count", record.IssueCount,
		"duration_ms", duration.Milliseconds(),
	)

	if duration > r.config.WriteTimeout/2 {
		r.logger.Warn("slow validation record write",
			"record_id", record.ID,
			"duration_ms", duration.Milliseconds(),
			"threshold_ms", (r.config.WriteTimeout / 2).Milliseconds(),
		)
	}
}

// buildRecord flattens the run inputs into one validation record.
func (r *Recorder) buildRecord(meta *RunMetadata, ectx *engine.EvaluationContext, summary *engine.ExecutionSummary) *audit.ValidationRecord {
	now := time.Now()

	record := &audit.ValidationRecord{
		ID:            uuid.New().String(),
		StartedTime:   now,
		CompletedTime: now,
		RecordedTime:  now,

		TotalRules:      summary.TotalRules,
		Passed:          summary.Passed,
		Failed:          summary.Failed,
		Skipped:         summary.Skipped,
		ExecutionTimeMS: summary.ExecutionTimeMS,
	}

	if meta != nil {
		record.LCReference = meta.LCReference
		record.CheckedBy = meta.CheckedBy
		record.CatalogVersion = meta.CatalogVersion
		record.Error = meta.Error
		if !meta.StartedAt.IsZero() {
			record.StartedTime = meta.StartedAt
		}
	}

	if ectx != nil {
		record.ValidationID = ectx.ValidationID
		record.FieldCount = len(ectx.Fields)
		record.DocumentTypes, record.DocumentCount = extractDocuments(ectx)

		if r.config.HashContext {
			fields, _ := json.Marshal(ectx.Fields)
			record.ContextHash = HashContent(fields)
		}
	}

	r.flattenIssues(record, summary)

	// A run with triggered rules is discrepant even when none of them
	// declared an action, so the failed counter decides alongside issues.
	if summary.Failed > 0 || record.IssueCount > 0 {
		record.Outcome = audit.OutcomeDiscrepant
	} else {
		record.Outcome = audit.OutcomeCompliant
	}

	return record
}

// flattenIssues converts the summary's issues into issue records and
// tallies them by severity.
func (r *Recorder) flattenIssues(record *audit.ValidationRecord, summary *engine.ExecutionSummary) {
	record.Issues = make([]audit.IssueRecord, 0, len(summary.Issues))

	for _, issue := range summary.Issues {
		if issue == nil {
			continue
		}

		record.Issues = append(record.Issues, audit.IssueRecord{
			RuleID:        issue.RuleID,
			Title:         issue.Title,
			Severity:      issue.Severity.String(),
			Message:       TruncateString(issue.Message, r.config.MaxFieldLength),
			Expected:      TruncateString(issue.Expected, r.config.MaxFieldLength),
			Actual:        TruncateString(issue.Actual, r.config.MaxFieldLength),
			Suggestion:    TruncateString(issue.Suggestion, r.config.MaxFieldLength),
			Documents:     issue.Documents,
			UCPReference:  issue.UCPReference,
			ISBPReference: issue.ISBPReference,
		})

		switch issue.Severity {
		case ast.SeverityCritical:
			record.CriticalCount++
		case ast.SeverityMajor:
			record.MajorCount++
		case ast.SeverityMinor:
			record.MinorCount++
		}
	}

	record.IssueCount = len(record.Issues)
}

// extractDocuments lists the distinct document type tags in the context's
// documents collection and the number of document entries. Entries carry
// their type under "document_type" or "type"; untyped entries still count.
func extractDocuments(ectx *engine.EvaluationContext) ([]string, int) {
	items, ok := ectx.Resolve("documents").([]any)
	if !ok {
		return nil, 0
	}

	var types []string
	seen := make(map[string]bool)
	for _, item := range items {
		doc, ok := item.(map[string]any)
		if !ok {
			continue
		}
		docType, _ := doc["document_type"].(string)
		if docType == "" {
			docType, _ = doc["type"].(string)
		}
		if docType == "" || seen[docType] {
			continue
		}
		seen[docType] = true
		types = append(types, docType)
	}

	return types, len(items)
}
