package documents

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/docstream-ai/docstream/pkg/common/logger"
)

type HTTPHandler struct {
	service *Service
	worker  *Worker
	cache   *StatusCache
}

func NewHTTPHandler(service *Service, worker *Worker, cache *StatusCache) *HTTPHandler {
	return &HTTPHandler{service: service, worker: worker, cache: cache}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/upload", h.handleUpload).Methods(http.MethodPost)
	router.HandleFunc("/documents/{id}", h.handleStatus).Methods(http.MethodGet)
}

func (h *HTTPHandler) handleUpload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			writeError(w, http.StatusRequestEntityTooLarge, "File too large. Max: 50MB")
			return
		}
		writeError(w, http.StatusUnprocessableEntity, "file field is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	resp, err := h.service.Upload(r.Context(), file, header.Filename, contentType)
	if err != nil {
		var invalidType *InvalidTypeError
		var tooLarge *TooLargeError
		switch {
		case errors.As(err, &invalidType):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.As(err, &tooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, err.Error())
		case errors.Is(err, ErrStorageUnavailable), errors.Is(err, ErrStorageWriteFailed):
			writeError(w, http.StatusServiceUnavailable, "Storage service is currently unavailable")
		default:
			logger.Log.WithError(err).Error("failed to upload document")
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	h.worker.Enqueue(Task{
		DocumentID:  resp.DocID,
		ObjectKey:   resp.MinioObjectKey,
		ContentType: contentType,
	})

	writeJSON(w, http.StatusCreated, resp)
}

func (h *HTTPHandler) handleStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusUnprocessableEntity, "document id must be a positive integer")
		return
	}

	if cached, ok := h.cache.Get(r.Context(), id); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	doc, err := h.service.Status(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "Document not found")
		return
	}
	if err != nil {
		logger.Log.WithError(err).WithField("doc_id", id).Error("failed to fetch document status")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := NewStatusResponse(doc)
	h.cache.Set(r.Context(), &resp)
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
