package handlers

import (
	"net/http"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/bjacksonJaxSun/ideasmatter/internal/models"
	"github.com/bjacksonJaxSun/ideasmatter/internal/services/export"
	"github.com/bjacksonJaxSun/ideasmatter/internal/services/strategy"
)

type initiateStrategyRequest struct {
	SessionID        string                 `json:"session_id" validate:"required"`
	Approach         string                 `json:"research_approach" validate:"required,oneof=quick_validation market_deep_dive launch_strategy"`
	CustomParameters map[string]interface{} `json:"custom_parameters"`
}

type compareOptionsRequest struct {
	StrategyID         string   `json:"strategy_id" validate:"required"`
	ComparisonCriteria []string `json:"comparison_criteria"`
}

type exportRequest struct {
	SessionID      string `json:"session_id" validate:"required"`
	StrategyID     string `json:"strategy_id"`
	ExportFormat   string `json:"export_format" validate:"required,oneof=json csv yaml pdf docx"`
	IncludeRawData bool   `json:"include_raw_data"`
}

// StrategyHandler serves research strategy initiation, execution and results
type StrategyHandler struct {
	runner  *strategy.Runner
	exports *export.Service
	logger  arbor.ILogger
	now     func() time.Time
}

func NewStrategyHandler(runner *strategy.Runner, exports *export.Service, logger arbor.ILogger) *StrategyHandler {
	return &StrategyHandler{
		runner:  runner,
		exports: exports,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// ApproachesHandler handles GET|POST /research-strategy/approaches
func (h *StrategyHandler) ApproachesHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"approaches": strategy.Approaches(),
	})
}

// InitiateHandler handles POST /research-strategy/initiate
func (h *StrategyHandler) InitiateHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req initiateStrategyRequest
	if !DecodeRequest(w, r, &req) {
		return
	}

	initiation, err := h.runner.Initiate(r.Context(), req.SessionID, models.ResearchApproach(req.Approach), req.CustomParameters)
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to initiate research strategy")
		return
	}

	h.logger.Info().
		Str("strategy_id", initiation.Strategy.ID).
		Str("approach", req.Approach).
		Msg("Research strategy initiated")

	WriteJSON(w, http.StatusOK, initiation)
}

// ExecuteHandler handles POST /research-strategy/execute/{id}. The run
// continues in the background; clients poll progress or listen on /ws.
func (h *StrategyHandler) ExecuteHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	strategyID := r.PathValue("id")
	if err := h.runner.Start(r.Context(), strategyID); err != nil {
		WriteServiceError(w, h.logger, err, "Failed to start research strategy")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "started",
		"strategy_id": strategyID,
		"message":     "Research strategy execution started",
	})
}

// ProgressHandler handles GET /research-strategy/progress/{id}
func (h *StrategyHandler) ProgressHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	progress, err := h.runner.Progress(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to get research progress")
		return
	}
	WriteJSON(w, http.StatusOK, progress)
}

// ResultsHandler handles GET /research-strategy/results/{id}
func (h *StrategyHandler) ResultsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	result, err := h.runner.Result(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to get research results")
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

// ListStrategiesHandler handles GET /research-strategy/strategies/{id},
// where id is a session id
func (h *StrategyHandler) ListStrategiesHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	strategies, err := h.runner.ListBySession(r.Context(), sessionID)
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to list research strategies")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"strategies": strategies,
		"total":      len(strategies),
	})
}

// DeleteStrategyHandler handles DELETE /research-strategy/strategies/{id}
func (h *StrategyHandler) DeleteStrategyHandler(w http.ResponseWriter, r *http.Request) {
	strategyID := r.PathValue("id")
	if err := h.runner.Delete(r.Context(), strategyID); err != nil {
		WriteServiceError(w, h.logger, err, "Failed to delete research strategy")
		return
	}
	WriteSuccess(w, "Research strategy "+strategyID+" deleted")
}

// CompareOptionsHandler handles POST /research-strategy/compare-options
func (h *StrategyHandler) CompareOptionsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req compareOptionsRequest
	if !DecodeRequest(w, r, &req) {
		return
	}

	comparison, err := h.runner.Compare(r.Context(), req.StrategyID, req.ComparisonCriteria)
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to compare strategic options")
		return
	}
	WriteJSON(w, http.StatusOK, comparison)
}

// ExportHandler handles POST /research-strategy/export
func (h *StrategyHandler) ExportHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req exportRequest
	if !DecodeRequest(w, r, &req) {
		return
	}

	file, err := h.exports.Export(r.Context(), export.Request{
		SessionID:      req.SessionID,
		StrategyID:     req.StrategyID,
		Format:         export.Format(req.ExportFormat),
		IncludeRawData: req.IncludeRawData,
	})
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to export research")
		return
	}
	WriteJSON(w, http.StatusOK, file)
}

// DemoHandler handles GET /research-strategy/demo/{approach}
func (h *StrategyHandler) DemoHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	approach, err := strategy.ParseApproach(r.PathValue("approach"))
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to build demo analysis")
		return
	}
	WriteJSON(w, http.StatusOK, strategy.Demo(approach, h.now()))
}
