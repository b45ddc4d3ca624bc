package metrics

import (
	"fmt"
	"net/http"
	"sync/atomic"
)

var (
	uploadsAccepted      atomic.Int64
	uploadsRejected      atomic.Int64
	extractionsProcessed atomic.Int64
	extractionsFailed    atomic.Int64
)

func IncUploadAccepted()      { uploadsAccepted.Add(1) }
func IncUploadRejected()      { uploadsRejected.Add(1) }
func IncExtractionProcessed() { extractionsProcessed.Add(1) }
func IncExtractionFailed()    { extractionsFailed.Add(1) }

func UploadsAccepted() int64      { return uploadsAccepted.Load() }
func UploadsRejected() int64      { return uploadsRejected.Load() }
func ExtractionsProcessed() int64 { return extractionsProcessed.Load() }
func ExtractionsFailed() int64    { return extractionsFailed.Load() }

func WritePrometheus(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	fmt.Fprintf(w, "# HELP docstream_uploads_accepted_total Number of documents accepted for ingestion.\n")
	fmt.Fprintf(w, "# TYPE docstream_uploads_accepted_total counter\n")
	fmt.Fprintf(w, "docstream_uploads_accepted_total %d\n", uploadsAccepted.Load())

	fmt.Fprintf(w, "# HELP docstream_uploads_rejected_total Number of uploads rejected during validation.\n")
	fmt.Fprintf(w, "# TYPE docstream_uploads_rejected_total counter\n")
	fmt.Fprintf(w, "docstream_uploads_rejected_total %d\n", uploadsRejected.Load())

	fmt.Fprintf(w, "# HELP docstream_extractions_processed_total Number of documents extracted successfully.\n")
	fmt.Fprintf(w, "# TYPE docstream_extractions_processed_total counter\n")
	fmt.Fprintf(w, "docstream_extractions_processed_total %d\n", extractionsProcessed.Load())

	fmt.Fprintf(w, "# HELP docstream_extractions_failed_total Number of extractions that ended in a failure status.\n")
	fmt.Fprintf(w, "# TYPE docstream_extractions_failed_total counter\n")
	fmt.Fprintf(w, "docstream_extractions_failed_total %d\n", extractionsFailed.Load())
}
