package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/bjacksonJaxSun/ideasmatter/internal/common"
)

// ProviderNamer reports the active AI provider
type ProviderNamer interface {
	ProviderName() string
}

type APIHandler struct {
	appName string
	ai      ProviderNamer
	logger  arbor.ILogger
}

func NewAPIHandler(appName string, ai ProviderNamer, logger arbor.ILogger) *APIHandler {
	return &APIHandler{
		appName: appName,
		ai:      ai,
		logger:  logger,
	}
}

// VersionHandler returns version information
func (h *APIHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	WriteJSON(w, http.StatusOK, common.VersionInfo())
}

// HealthHandler returns health check status
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	provider := "none"
	if h.ai != nil {
		provider = h.ai.ProviderName()
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"status":      "healthy",
		"service":     h.appName,
		"version":     common.GetVersion(),
		"ai_provider": provider,
	})
}

// NotFoundHandler handles 404 errors with JSON response
func (h *APIHandler) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusNotFound, map[string]interface{}{
		"status":  "error",
		"error":   "Not Found",
		"path":    r.URL.Path,
		"message": "The requested endpoint does not exist",
	})
}
