package documents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/docstream-ai/docstream/pkg/common/logger"
	"github.com/docstream-ai/docstream/pkg/extractor"
	"github.com/docstream-ai/docstream/pkg/observability/metrics"
)

// MaxFileSize is the upload ceiling in bytes. The bound is inclusive: a file
// of exactly this size is accepted.
const MaxFileSize = 50 * 1024 * 1024

var (
	ErrStorageUnavailable = errors.New("storage service is currently unavailable")
	ErrStorageWriteFailed = errors.New("storage write failed")
)

type InvalidTypeError struct {
	ContentType string
}

func (e *InvalidTypeError) Error() string {
	return fmt.Sprintf("Invalid file type: %s. Allowed: PDF, DOCX, TXT, MD", e.ContentType)
}

type TooLargeError struct {
	Size int64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("File too large: %d bytes. Max: 50MB", e.Size)
}

// ObjectStore is the blob storage contract consumed by the service and the
// worker. IsAvailable swallows every fault into false.
type ObjectStore interface {
	IsAvailable(ctx context.Context) bool
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// EventPublisher is the event bus contract; kafka.Producer satisfies it. A nil
// publisher disables events.
type EventPublisher interface {
	PublishEvent(ctx context.Context, eventType string, data map[string]interface{}) error
}

// Service orchestrates the synchronous upload path: validation, blob write,
// record creation. The events publisher is optional; publishing never affects
// the upload outcome.
type Service struct {
	store  Store
	blobs  ObjectStore
	events EventPublisher
}

func NewService(store Store, blobs ObjectStore, events EventPublisher) *Service {
	return &Service{store: store, blobs: blobs, events: events}
}

// Upload validates and persists one document, returning its assigned
// identifier with status pending. Failures are classified: InvalidTypeError
// and TooLargeError persist nothing, ErrStorageUnavailable creates no record,
// and ErrStorageWriteFailed rolls the provisional record back so no orphaned
// pending row survives a failed blob write.
func (s *Service) Upload(ctx context.Context, file io.Reader, filename, contentType string) (*UploadResponse, error) {
	if !extractor.Supported(contentType) {
		metrics.IncUploadRejected()
		return nil, &InvalidTypeError{ContentType: contentType}
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("reading upload payload: %w", err)
	}
	if int64(len(data)) > MaxFileSize {
		metrics.IncUploadRejected()
		return nil, &TooLargeError{Size: int64(len(data))}
	}

	if !s.blobs.IsAvailable(ctx) {
		return nil, ErrStorageUnavailable
	}

	doc := &Document{
		Filename:         filename,
		ContentType:      contentType,
		FileSize:         int64(len(data)),
		ProcessingStatus: StatusPending,
	}

	err = s.store.Transaction(ctx, func(tx Store) error {
		// The insert must run first: the storage key embeds the assigned id.
		if err := tx.Insert(ctx, doc); err != nil {
			return fmt.Errorf("creating document record: %w", err)
		}

		key := ObjectKey(time.Now().UTC(), doc.ID, filename)
		if err := s.blobs.Put(ctx, key, data, contentType); err != nil {
			logger.Log.WithError(err).WithField("object_key", key).Error("blob write failed")
			return ErrStorageWriteFailed
		}

		doc.MinioObjectKey = key
		return tx.Save(ctx, doc)
	})
	if err != nil {
		return nil, err
	}

	metrics.IncUploadAccepted()
	logger.Log.WithFields(map[string]interface{}{
		"doc_id":     doc.ID,
		"filename":   doc.Filename,
		"size_bytes": doc.FileSize,
	}).Info("Document uploaded")

	s.publish(ctx, "document.ingested", doc)

	return &UploadResponse{
		DocID:          doc.ID,
		Filename:       doc.Filename,
		Status:         doc.ProcessingStatus,
		MinioObjectKey: doc.MinioObjectKey,
		Message:        "Processing started",
	}, nil
}

// Status loads the current record for polling.
func (s *Service) Status(ctx context.Context, id int64) (*Document, error) {
	return s.store.Get(ctx, id)
}

// ObjectKey builds the storage key for a document:
// documents/{year}/{month:02d}/{id}_{filename}.
func ObjectKey(now time.Time, id int64, filename string) string {
	return fmt.Sprintf("documents/%04d/%02d/%d_%s", now.Year(), int(now.Month()), id, filename)
}

func (s *Service) publish(ctx context.Context, eventType string, doc *Document) {
	if s.events == nil {
		return
	}
	data := map[string]interface{}{
		"doc_id":   doc.ID,
		"filename": doc.Filename,
		"status":   doc.ProcessingStatus,
	}
	if err := s.events.PublishEvent(ctx, eventType, data); err != nil {
		logger.Log.WithError(err).WithField("doc_id", doc.ID).Warn("failed to publish document event")
	}
}
