package documents

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/docstream-ai/docstream/pkg/extractor"
)

func TestUploadRejectsInvalidType(t *testing.T) {
	store := newFakeStore()
	blobs := newFakeBlobs()
	svc := NewService(store, blobs, nil)

	_, err := svc.Upload(context.Background(), strings.NewReader("data"), "archive.zip", "application/zip")
	var invalidType *InvalidTypeError
	if !errors.As(err, &invalidType) {
		t.Fatalf("expected InvalidTypeError, got %v", err)
	}
	if store.count() != 0 {
		t.Fatal("no record should be created for a rejected type")
	}
	if blobs.objectCount() != 0 {
		t.Fatal("no blob should be stored for a rejected type")
	}
}

func TestUploadRejectsOversizedPayload(t *testing.T) {
	store := newFakeStore()
	blobs := newFakeBlobs()
	svc := NewService(store, blobs, nil)

	payload := bytes.Repeat([]byte("x"), MaxFileSize+1)
	_, err := svc.Upload(context.Background(), bytes.NewReader(payload), "big.txt", extractor.ContentTypeText)
	var tooLarge *TooLargeError
	if !errors.As(err, &tooLarge) {
		t.Fatalf("expected TooLargeError, got %v", err)
	}
	if tooLarge.Size != MaxFileSize+1 {
		t.Fatalf("expected reported size %d, got %d", MaxFileSize+1, tooLarge.Size)
	}
	if store.count() != 0 || blobs.objectCount() != 0 {
		t.Fatal("nothing should be persisted for an oversized payload")
	}
}

func TestUploadAcceptsExactSizeLimit(t *testing.T) {
	store := newFakeStore()
	blobs := newFakeBlobs()
	svc := NewService(store, blobs, nil)

	payload := bytes.Repeat([]byte("x"), MaxFileSize)
	resp, err := svc.Upload(context.Background(), bytes.NewReader(payload), "exact.txt", extractor.ContentTypeText)
	if err != nil {
		t.Fatalf("a payload of exactly the limit must be accepted: %v", err)
	}
	if resp.DocID == 0 {
		t.Fatal("expected an assigned document id")
	}
}

func TestUploadStorageUnavailable(t *testing.T) {
	store := newFakeStore()
	blobs := newFakeBlobs()
	blobs.available = false
	svc := NewService(store, blobs, nil)

	_, err := svc.Upload(context.Background(), strings.NewReader("data"), "note.txt", extractor.ContentTypeText)
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
	if store.count() != 0 {
		t.Fatal("no record should be created when the storage probe fails")
	}
}

func TestUploadRollsBackOnBlobWriteFailure(t *testing.T) {
	store := newFakeStore()
	blobs := newFakeBlobs()
	blobs.putErr = errors.New("connection reset")
	svc := NewService(store, blobs, nil)

	_, err := svc.Upload(context.Background(), strings.NewReader("data"), "note.txt", extractor.ContentTypeText)
	if !errors.Is(err, ErrStorageWriteFailed) {
		t.Fatalf("expected ErrStorageWriteFailed, got %v", err)
	}
	if store.count() != 0 {
		t.Fatal("the provisional record must be rolled back after a failed blob write")
	}
	if _, getErr := store.Get(context.Background(), 1); !errors.Is(getErr, ErrNotFound) {
		t.Fatalf("rolled-back record must not be visible, got %v", getErr)
	}
}

func TestUploadSuccess(t *testing.T) {
	store := newFakeStore()
	blobs := newFakeBlobs()
	svc := NewService(store, blobs, nil)

	resp, err := svc.Upload(context.Background(), strings.NewReader("hello"), "note.txt", extractor.ContentTypeText)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.DocID != 1 {
		t.Fatalf("expected doc id 1, got %d", resp.DocID)
	}
	if resp.Status != StatusPending {
		t.Fatalf("expected status pending, got %s", resp.Status)
	}
	if resp.Message != "Processing started" {
		t.Fatalf("unexpected message: %s", resp.Message)
	}

	keyPattern := regexp.MustCompile(`^documents/\d{4}/\d{2}/1_note\.txt$`)
	if !keyPattern.MatchString(resp.MinioObjectKey) {
		t.Fatalf("unexpected object key format: %s", resp.MinioObjectKey)
	}

	data, err := blobs.Get(context.Background(), resp.MinioObjectKey)
	if err != nil {
		t.Fatalf("blob should be stored under the returned key: %v", err)
	}
	if string(data) != "hello" {
		t.Fatalf("stored blob differs from payload: %q", data)
	}

	doc, err := store.Get(context.Background(), resp.DocID)
	if err != nil {
		t.Fatalf("record should exist: %v", err)
	}
	if doc.MinioObjectKey != resp.MinioObjectKey {
		t.Fatal("record must carry the storage key after commit")
	}
	if doc.ProcessingStatus != StatusPending {
		t.Fatalf("record status should be pending, got %s", doc.ProcessingStatus)
	}
	if doc.FileSize != 5 {
		t.Fatalf("expected byte size 5, got %d", doc.FileSize)
	}
	if doc.UploadTimestamp.IsZero() {
		t.Fatal("upload timestamp should be set at creation")
	}
}

func TestObjectKeyFormat(t *testing.T) {
	at := time.Date(2024, time.January, 15, 10, 0, 0, 0, time.UTC)
	key := ObjectKey(at, 42, "test.pdf")
	if key != "documents/2024/01/42_test.pdf" {
		t.Fatalf("unexpected key: %s", key)
	}

	pattern := regexp.MustCompile(`^documents/\d{4}/\d{2}/42_test\.pdf$`)
	if !pattern.MatchString(key) {
		t.Fatalf("key does not match required pattern: %s", key)
	}
}
