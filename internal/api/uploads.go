package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/asapfoodtrailer/dealerd/internal/apperr"
	"github.com/asapfoodtrailer/dealerd/internal/images"
)

// UploadHandler accepts listing photos and runs them through the resize
// pipeline.
type UploadHandler struct {
	processor *images.Processor
	maxBytes  int64
}

// NewUploadHandler creates an upload handler.
func NewUploadHandler(processor *images.Processor, maxBytes int64) *UploadHandler {
	return &UploadHandler{processor: processor, maxBytes: maxBytes}
}

// Upload handles POST /api/uploads (multipart/form-data, field "images",
// repeatable). Each accepted image yields a map of variant URLs.
//
//	@Summary		Upload listing photos
//	@Tags			uploads
//	@Accept			mpfd
//	@Produce		json
//	@Success		201	{object}	UploadResponse
//	@Failure		400	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/uploads [post]
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	// One extra MiB of headroom for multipart framing; per-image size is
	// enforced by the processor.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes*10+1<<20)

	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		writeError(w, http.StatusBadRequest, "file too large or invalid multipart")
		return
	}

	files := r.MultipartForm.File["images"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "missing 'images' field in multipart form")
		return
	}

	var results []map[string]string
	for _, header := range files {
		f, err := header.Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, "unreadable upload part")
			return
		}
		res, err := h.processor.Process(header.Filename, f)
		f.Close()
		if err != nil {
			if errors.Is(err, apperr.ErrInvalid) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			slog.Error("image processing failed",
				slog.String("filename", header.Filename),
				slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		results = append(results, res)
	}

	writeJSON(w, http.StatusCreated, UploadResponse{Images: results})
}
