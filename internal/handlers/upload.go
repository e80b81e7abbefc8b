package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/AnshRaj112/nits-community-backend/internal/middleware"
	"github.com/AnshRaj112/nits-community-backend/internal/models"
	"github.com/AnshRaj112/nits-community-backend/internal/services"
)

const (
	uploadFormField = "files"
	// Hard cap on the whole body: a full batch, one more file and framing.
	maxUploadBody = (services.MaxUploadFiles+1)*services.MaxUploadFileSize + 1<<20
)

type UploadResponse struct {
	OK    bool           `json:"ok"`
	Files []models.Media `json:"files"`
	Error string         `json:"error,omitempty"`
}

// UploadFiles handles POST /api/uploads (multipart field "files"). Parts are
// read as they stream in, so the file count and each file's size are checked
// before anything beyond the limits is buffered. A request that is not
// multipart carries no files and succeeds with an empty list.
func (h *Handler) UploadFiles(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	reader, err := r.MultipartReader()
	if errors.Is(err, http.ErrNotMultipart) {
		writeJSON(w, http.StatusOK, UploadResponse{OK: true, Files: []models.Media{}})
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid upload")
		return
	}

	files, err := readUploadParts(reader)
	if err != nil {
		if errors.Is(err, services.ErrTooManyFiles) || errors.Is(err, services.ErrFileTooLarge) {
			writeUploadLimitError(w, err)
			return
		}
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		slog.Warn("failed to read upload", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid upload")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), uploadTimeout)
	defer cancel()

	uploaded, err := h.Uploads.Upload(ctx, middleware.IdentityFrom(r.Context()), files)
	if err != nil {
		if errors.Is(err, services.ErrTooManyFiles) || errors.Is(err, services.ErrFileTooLarge) {
			writeUploadLimitError(w, err)
			return
		}
		slog.Error("upload error", "error", err)
		writeJSON(w, http.StatusInternalServerError, UploadResponse{OK: false, Files: uploaded, Error: "Upload failed"})
		return
	}

	writeJSON(w, http.StatusOK, UploadResponse{OK: true, Files: uploaded})
}

// readUploadParts collects the "files" parts, skipping other fields. It stops
// at the first part past MaxUploadFiles or the first file over MaxUploadFileSize.
func readUploadParts(reader *multipart.Reader) ([]services.UploadFile, error) {
	var files []services.UploadFile
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			return files, nil
		}
		if err != nil {
			return nil, err
		}

		if part.FormName() != uploadFormField || part.FileName() == "" {
			part.Close()
			continue
		}
		if len(files) == services.MaxUploadFiles {
			part.Close()
			return nil, services.ErrTooManyFiles
		}

		data, err := io.ReadAll(io.LimitReader(part, services.MaxUploadFileSize+1))
		part.Close()
		if err != nil {
			return nil, err
		}
		if len(data) > services.MaxUploadFileSize {
			return nil, services.ErrFileTooLarge
		}
		files = append(files, services.UploadFile{Name: part.FileName(), Data: data})
	}
}

func writeUploadLimitError(w http.ResponseWriter, err error) {
	if errors.Is(err, services.ErrTooManyFiles) {
		writeError(w, http.StatusBadRequest, "Too many files")
		return
	}
	writeError(w, http.StatusRequestEntityTooLarge, "File too large")
}
