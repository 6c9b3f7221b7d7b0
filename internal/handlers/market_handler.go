package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/bjacksonJaxSun/ideasmatter/internal/services/market"
)

type generateMarketRequest struct {
	SessionID string `json:"session_id" validate:"required"`
}

type sizingRequest struct {
	SessionID       string   `json:"session_id" validate:"required"`
	GeographicScope string   `json:"geographic_scope" validate:"omitempty,oneof=global regional national local"`
	TargetSegments  []string `json:"target_segments"`
}

type competitorRequest struct {
	CompetitorName string `json:"competitor_name"`
	ResearchDepth  string `json:"research_depth" validate:"omitempty,oneof=basic standard comprehensive"`
}

// MarketHandler serves market analysis generation and retrieval
type MarketHandler struct {
	market *market.Service
	logger arbor.ILogger
}

func NewMarketHandler(marketService *market.Service, logger arbor.ILogger) *MarketHandler {
	return &MarketHandler{
		market: marketService,
		logger: logger,
	}
}

// GenerateHandler handles POST /market-analysis/generate
func (h *MarketHandler) GenerateHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req generateMarketRequest
	if !DecodeRequest(w, r, &req) {
		return
	}

	bundle, err := h.market.GenerateComprehensive(r.Context(), req.SessionID)
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to generate market analysis")
		return
	}
	WriteJSON(w, http.StatusOK, bundle)
}

// GetHandler handles GET /market-analysis/{sid}
func (h *MarketHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	bundle, err := h.market.Get(r.Context(), r.PathValue("sid"))
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to get market analysis")
		return
	}
	WriteJSON(w, http.StatusOK, bundle)
}

// DeleteHandler handles DELETE /market-analysis/{sid}
func (h *MarketHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sid")
	if err := h.market.Delete(r.Context(), sessionID); err != nil {
		WriteServiceError(w, h.logger, err, "Failed to delete market analysis")
		return
	}
	WriteSuccess(w, "Market analysis deleted for session "+sessionID)
}

// SizingHandler handles POST /market-analysis/sizing
func (h *MarketHandler) SizingHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req sizingRequest
	if !DecodeRequest(w, r, &req) {
		return
	}

	sizing, err := h.market.Sizing(r.Context(), req.SessionID, market.SizingRequest{
		GeographicScope: req.GeographicScope,
		TargetSegments:  req.TargetSegments,
	})
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to compute market sizing")
		return
	}
	WriteJSON(w, http.StatusOK, sizing)
}

// LandscapeHandler handles GET /market-analysis/{sid}/competitive-landscape
func (h *MarketHandler) LandscapeHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	landscape, err := h.market.Landscape(r.Context(), r.PathValue("sid"))
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to build competitive landscape")
		return
	}
	WriteJSON(w, http.StatusOK, landscape)
}

// ResearchCompetitorHandler handles POST /market-analysis/competitors/{id}/research
func (h *MarketHandler) ResearchCompetitorHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req competitorRequest
	if r.ContentLength != 0 && !DecodeRequest(w, r, &req) {
		return
	}

	competitor, err := h.market.ResearchCompetitor(r.Context(), r.PathValue("id"), req.CompetitorName, req.ResearchDepth)
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to research competitor")
		return
	}
	WriteJSON(w, http.StatusOK, competitor)
}

// AddCompetitorHandler handles POST /market-analysis/competitors/add?session_id=
func (h *MarketHandler) AddCompetitorHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		WriteError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	var req competitorRequest
	if !DecodeRequest(w, r, &req) {
		return
	}

	competitor, err := h.market.AddCompetitor(r.Context(), sessionID, req.CompetitorName, req.ResearchDepth)
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to add competitor")
		return
	}
	WriteJSON(w, http.StatusCreated, competitor)
}

// ExportPDFHandler handles GET /market-analysis/{sid}/export/pdf
func (h *MarketHandler) ExportPDFHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	data, name, err := h.market.ExportPDF(r.Context(), r.PathValue("sid"))
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to export market analysis")
		return
	}
	WriteFile(w, pdfContentType, name, data)
}

// StatusHandler handles GET /market-analysis/{sid}/status
func (h *MarketHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	status, err := h.market.Status(r.Context(), r.PathValue("sid"))
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to get market analysis status")
		return
	}
	WriteJSON(w, http.StatusOK, status)
}
