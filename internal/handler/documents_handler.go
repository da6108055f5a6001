package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/boddenberg/funds-bfa-go/internal/domain"
	"github.com/boddenberg/funds-bfa-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxUploadBytes = 10 << 20

// ============================================================
// Documents (/v1/documents)
// ============================================================

func listDocumentsHandler(documents *service.DocumentService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/documents")
		defer span.End()

		inbox, err := documents.List(ctx, IdentityFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, inbox)
	}
}

// shareDocumentHandler takes multipart fields subject, message,
// sharedWith (repeated or comma separated) and file.
func shareDocumentHandler(documents *service.DocumentService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/documents")
		defer span.End()

		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			writeError(w, http.StatusBadRequest, "invalid multipart form")
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			handleServiceError(w, &domain.ErrValidation{Field: "file", Message: "is required"}, logger)
			return
		}
		defer file.Close()

		var roles []domain.Role
		for _, v := range r.MultipartForm.Value["sharedWith"] {
			for _, part := range strings.Split(v, ",") {
				if part = strings.TrimSpace(part); part != "" {
					roles = append(roles, domain.Role(part))
				}
			}
		}

		doc, err := documents.Share(ctx, IdentityFromContext(ctx), domain.ShareDocumentInput{
			Subject:    r.FormValue("subject"),
			Message:    r.FormValue("message"),
			SharedWith: roles,
			File: &domain.Upload{
				FileName:    header.Filename,
				ContentType: header.Header.Get("Content-Type"),
				Size:        header.Size,
				Body:        file,
			},
		})
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, doc)
	}
}

// filesHandler serves objects from the in-memory file store at the public
// URLs it hands out.
func filesHandler(files ObjectReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, contentType, ok := files.Object(chi.URLParam(r, "bucket"), chi.URLParam(r, "*"))
		if !ok {
			writeError(w, http.StatusNotFound, "file not found")
			return
		}
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		w.WriteHeader(http.StatusOK)
		w.Write(data)
	}
}
