package documents

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/docstream-ai/docstream/pkg/common/logger"
	"github.com/docstream-ai/docstream/pkg/extractor"
	"github.com/docstream-ai/docstream/pkg/observability/metrics"
)

// Task carries the inputs of one extraction run. Everything else is
// re-fetched from the record store.
type Task struct {
	DocumentID  int64
	ObjectKey   string
	ContentType string
}

// Worker runs extraction tasks on a fixed goroutine pool, decoupled from the
// upload request cycle. Tasks are fire-and-forget: there is no return channel,
// only the eventual record mutation.
type Worker struct {
	store  Store
	blobs  ObjectStore
	events EventPublisher
	pool   *ants.Pool
}

func NewWorker(store Store, blobs ObjectStore, events EventPublisher, poolSize int) (*Worker, error) {
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}
	return &Worker{store: store, blobs: blobs, events: events, pool: pool}, nil
}

// Enqueue submits a task to the pool. A rejected submission (pool released)
// is logged; the document then stays pending.
func (w *Worker) Enqueue(task Task) {
	if err := w.pool.Submit(func() {
		w.Process(context.Background(), task)
	}); err != nil {
		logger.Log.WithError(err).WithField("doc_id", task.DocumentID).Error("failed to enqueue extraction task")
	}
}

// Release stops the pool. Running tasks finish; queued submissions are
// rejected afterwards.
func (w *Worker) Release() {
	w.pool.Release()
}

// Process runs one extraction end to end. It never returns an error and never
// panics out: every fault is absorbed into the document's terminal status, or
// logged when even that write is impossible.
func (w *Worker) Process(ctx context.Context, task Task) {
	defer func() {
		if r := recover(); r != nil {
			w.fail(ctx, task.DocumentID, fmt.Sprintf("extraction task panicked: %v", r))
		}
	}()

	logger.Log.WithField("doc_id", task.DocumentID).Info("Starting text extraction")

	doc, err := w.store.Get(ctx, task.DocumentID)
	if errors.Is(err, ErrNotFound) {
		// Removed out of band; nothing to process.
		logger.Log.WithField("doc_id", task.DocumentID).Warn("document not found, skipping extraction")
		return
	}
	if err != nil {
		w.fail(ctx, task.DocumentID, err.Error())
		return
	}

	// Persist the processing transition before any extraction work so a
	// concurrent status poll observes it.
	doc.ProcessingStatus = StatusProcessing
	if err := w.store.Save(ctx, doc); err != nil {
		w.fail(ctx, task.DocumentID, err.Error())
		return
	}

	data, err := w.blobs.Get(ctx, task.ObjectKey)
	if err != nil {
		w.fail(ctx, task.DocumentID, err.Error())
		return
	}

	result, extractErr := extractor.Extract(data, task.ContentType, doc.Filename)

	now := time.Now().UTC()
	doc.ProcessedAt = &now
	if extractErr != nil {
		logger.Log.WithField("doc_id", doc.ID).WithError(extractErr).Warn("extraction failed")
		doc.ProcessingStatus = StatusExtractionFailed
		msg := extractErr.Error()
		doc.ExtractionError = &msg
	} else {
		logger.Log.WithFields(map[string]interface{}{
			"doc_id":     doc.ID,
			"page_count": result.PageCount,
		}).Info("Document processed")
		doc.ProcessingStatus = StatusProcessed
		doc.ExtractedText = &result.Text
		doc.PageCount = &result.PageCount
	}

	if err := w.store.Save(ctx, doc); err != nil {
		w.fail(ctx, task.DocumentID, err.Error())
		return
	}

	// Count only the outcome that was actually persisted; a failed terminal
	// write falls through to fail(), which does its own accounting.
	if extractErr != nil {
		metrics.IncExtractionFailed()
	} else {
		metrics.IncExtractionProcessed()
	}

	w.publish(ctx, doc)
}

// fail records the unanticipated-fault terminal state. If that write fails
// too there is nothing left but to log: the task has no caller to report to.
func (w *Worker) fail(ctx context.Context, id int64, msg string) {
	logger.Log.WithFields(map[string]interface{}{
		"doc_id": id,
		"error":  msg,
	}).Error("Error processing document")
	metrics.IncExtractionFailed()

	doc, err := w.store.Get(ctx, id)
	if err != nil {
		logger.Log.WithError(err).WithField("doc_id", id).Error("could not load document to record failure")
		return
	}

	now := time.Now().UTC()
	doc.ProcessingStatus = StatusError
	doc.ExtractionError = &msg
	doc.ProcessedAt = &now
	if err := w.store.Save(ctx, doc); err != nil {
		logger.Log.WithError(err).WithField("doc_id", id).Error("could not persist failure status")
		return
	}

	w.publish(ctx, doc)
}

// publish emits one event per finished extraction regardless of outcome; the
// status field tells consumers how it ended.
func (w *Worker) publish(ctx context.Context, doc *Document) {
	if w.events == nil {
		return
	}
	data := map[string]interface{}{
		"doc_id":   doc.ID,
		"filename": doc.Filename,
		"status":   doc.ProcessingStatus,
	}
	if err := w.events.PublishEvent(ctx, "document.extraction_completed", data); err != nil {
		logger.Log.WithError(err).WithField("doc_id", doc.ID).Warn("failed to publish document event")
	}
}
