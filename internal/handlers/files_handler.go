package handlers

import (
	"fmt"
	"net/http"

	"github.com/ternarybob/arbor"
)

// ExportOpener resolves an export file name to a servable path
type ExportOpener interface {
	Open(name string) (string, error)
}

// FilesHandler serves rendered export files until they expire
type FilesHandler struct {
	exports ExportOpener
	logger  arbor.ILogger
}

func NewFilesHandler(exports ExportOpener, logger arbor.ILogger) *FilesHandler {
	return &FilesHandler{
		exports: exports,
		logger:  logger,
	}
}

// DownloadHandler handles GET /files/download/{name}
func (h *FilesHandler) DownloadHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	name := r.PathValue("name")
	path, err := h.exports.Open(name)
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to open export")
		return
	}

	h.logger.Debug().Str("file", name).Msg("Serving export download")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	http.ServeFile(w, r, path)
}
