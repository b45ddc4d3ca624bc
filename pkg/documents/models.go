package documents

import (
	"time"

	"gorm.io/datatypes"
)

const (
	StatusPending          = "pending"
	StatusProcessing       = "processing"
	StatusProcessed        = "processed"
	StatusExtractionFailed = "extraction_failed"
	StatusError            = "error"
)

// Document is the persistent record of one uploaded file. MinioObjectKey is
// set only once the blob write succeeded; after extraction completes exactly
// one of ExtractedText and ExtractionError is non-nil.
type Document struct {
	ID               int64             `json:"id" gorm:"primaryKey;column:id"`
	Filename         string            `json:"filename" gorm:"column:filename;size:255;not null"`
	ContentType      string            `json:"content_type" gorm:"column:content_type;size:100"`
	FileSize         int64             `json:"file_size" gorm:"column:file_size"`
	UploadTimestamp  time.Time         `json:"upload_timestamp" gorm:"column:upload_timestamp"`
	ProcessingStatus string            `json:"processing_status" gorm:"column:processing_status;size:50;default:pending"`
	Metadata         datatypes.JSONMap `json:"metadata,omitempty" gorm:"column:metadata"`
	MinioObjectKey   string            `json:"minio_object_key" gorm:"column:minio_object_key;size:500"`
	ExtractedText    *string           `json:"extracted_text,omitempty" gorm:"column:extracted_text;type:text"`
	PageCount        *int              `json:"page_count,omitempty" gorm:"column:page_count"`
	ExtractionError  *string           `json:"extraction_error,omitempty" gorm:"column:extraction_error;type:text"`
	ProcessedAt      *time.Time        `json:"processed_at,omitempty" gorm:"column:processed_at"`
}

func (Document) TableName() string {
	return "documents"
}

// TerminalStatus reports whether no further worker-driven transition can
// happen from status.
func TerminalStatus(status string) bool {
	switch status {
	case StatusProcessed, StatusExtractionFailed, StatusError:
		return true
	}
	return false
}

type UploadResponse struct {
	DocID          int64  `json:"doc_id"`
	Filename       string `json:"filename"`
	Status         string `json:"status"`
	MinioObjectKey string `json:"minio_object_key"`
	Message        string `json:"message"`
}

type StatusResponse struct {
	ID              int64      `json:"id"`
	Filename        string     `json:"filename"`
	Status          string     `json:"status"`
	PageCount       *int       `json:"page_count,omitempty"`
	TextPreview     *string    `json:"text_preview,omitempty"`
	Error           *string    `json:"error,omitempty"`
	ProcessedAt     *time.Time `json:"processed_at,omitempty"`
	UploadTimestamp *time.Time `json:"upload_timestamp,omitempty"`
}

const previewLength = 200

// NewStatusResponse projects a record onto the polling response, truncating
// the extracted text to the first 200 characters.
func NewStatusResponse(doc *Document) StatusResponse {
	resp := StatusResponse{
		ID:          doc.ID,
		Filename:    doc.Filename,
		Status:      doc.ProcessingStatus,
		PageCount:   doc.PageCount,
		Error:       doc.ExtractionError,
		ProcessedAt: doc.ProcessedAt,
	}
	if !doc.UploadTimestamp.IsZero() {
		ts := doc.UploadTimestamp
		resp.UploadTimestamp = &ts
	}
	if doc.ExtractedText != nil {
		preview := truncate(*doc.ExtractedText, previewLength)
		resp.TextPreview = &preview
	}
	return resp
}

func truncate(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}
