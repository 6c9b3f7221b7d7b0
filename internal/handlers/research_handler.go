package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/bjacksonJaxSun/ideasmatter/internal/models"
	"github.com/bjacksonJaxSun/ideasmatter/internal/services/research"
	"github.com/bjacksonJaxSun/ideasmatter/internal/services/swot"
)

const pdfContentType = "application/pdf"

type createSessionRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	UserID      string `json:"user_id"`
}

type submitIdeaRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	UserID      string `json:"user_id"`
	IdeaID      string `json:"idea_id"`
}

type brainstormRequest struct {
	Message string                 `json:"message" validate:"required"`
	Context map[string]interface{} `json:"context"`
}

type analyzeRequest struct {
	AnalysisType string                 `json:"analysis_type" validate:"required"`
	Parameters   map[string]interface{} `json:"parameters"`
}

type reportRequest struct {
	ReportType string `json:"report_type" validate:"required,oneof=executive_summary"`
}

type factCheckRequest struct {
	Claim string `json:"claim"`
}

// ResearchHandler serves research sessions, brainstorming, insights and options
type ResearchHandler struct {
	research *research.Service
	swot     *swot.Service
	logger   arbor.ILogger
}

func NewResearchHandler(researchService *research.Service, swotService *swot.Service, logger arbor.ILogger) *ResearchHandler {
	return &ResearchHandler{
		research: researchService,
		swot:     swotService,
		logger:   logger,
	}
}

// CreateSessionHandler handles POST /sessions. With ?analyze=true the
// competitive analysis runs before the session is returned.
func (h *ResearchHandler) CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req createSessionRequest
	if !DecodeRequest(w, r, &req) {
		return
	}

	session, err := h.research.CreateSession(r.Context(), req.UserID, req.Title, req.Description)
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to create session")
		return
	}

	if queryBool(r, "analyze") {
		if _, err := h.research.GenerateCompetitiveAnalysis(r.Context(), session.ID); err != nil {
			h.logger.Warn().Err(err).Str("session_id", session.ID).Msg("Competitive analysis on create failed")
		} else if refreshed, err := h.research.GetSession(r.Context(), session.ID); err == nil {
			session = refreshed
		}
	}

	WriteJSON(w, http.StatusCreated, session)
}

// ListSessionsHandler handles GET /sessions?skip=&limit=
func (h *ResearchHandler) ListSessionsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	skip, limit := GetPaginationParams(r)
	sessions, total, err := h.research.ListSessions(r.Context(), skip, limit)
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to list sessions")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": sessions,
		"total":    total,
		"skip":     skip,
		"limit":    limit,
	})
}

// GetSessionHandler handles GET /sessions/{id}
func (h *ResearchHandler) GetSessionHandler(w http.ResponseWriter, r *http.Request) {
	detail, err := h.research.GetSessionDetail(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to get session")
		return
	}
	WriteJSON(w, http.StatusOK, detail)
}

// UpdateSessionHandler handles PUT /sessions/{id}
func (h *ResearchHandler) UpdateSessionHandler(w http.ResponseWriter, r *http.Request) {
	var update research.SessionUpdate
	if !DecodeRequest(w, r, &update) {
		return
	}

	session, err := h.research.UpdateSession(r.Context(), r.PathValue("id"), update)
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to update session")
		return
	}
	WriteJSON(w, http.StatusOK, session)
}

// DeleteSessionHandler handles DELETE /sessions/{id}
func (h *ResearchHandler) DeleteSessionHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.research.DeleteSession(r.Context(), r.PathValue("id")); err != nil {
		WriteServiceError(w, h.logger, err, "Failed to delete session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ConversationsHandler handles GET /sessions/{id}/conversations
func (h *ResearchHandler) ConversationsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	conversations, err := h.research.GetConversations(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to get conversations")
		return
	}
	if conversations == nil {
		conversations = []*models.Conversation{}
	}
	WriteJSON(w, http.StatusOK, conversations)
}

// SubmitIdeaHandler handles POST /ideas/submit
func (h *ResearchHandler) SubmitIdeaHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req submitIdeaRequest
	if !DecodeRequest(w, r, &req) {
		return
	}

	submission, err := h.research.SubmitIdea(r.Context(), req.UserID, req.IdeaID, req.Title, req.Description)
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to submit idea")
		return
	}
	WriteJSON(w, http.StatusOK, submission)
}

// BrainstormHandler handles POST /sessions/{id}/brainstorm
func (h *ResearchHandler) BrainstormHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req brainstormRequest
	if !DecodeRequest(w, r, &req) {
		return
	}

	result, err := h.research.Brainstorm(r.Context(), r.PathValue("id"), req.Message, req.Context)
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to brainstorm")
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

// AnalyzeHandler handles POST /sessions/{id}/analyze
func (h *ResearchHandler) AnalyzeHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req analyzeRequest
	if !DecodeRequest(w, r, &req) {
		return
	}

	output, err := h.research.PerformAnalysis(r.Context(), r.PathValue("id"), req.AnalysisType, req.Parameters)
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to perform analysis")
		return
	}
	WriteJSON(w, http.StatusOK, output)
}

// CategorizedAnalysisHandler handles GET /sessions/{id}/analysis
func (h *ResearchHandler) CategorizedAnalysisHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	analysis, err := h.research.CategorizedAnalysis(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to build analysis")
		return
	}
	WriteJSON(w, http.StatusOK, analysis)
}

// NextStepsHandler handles GET /sessions/{id}/next-steps
func (h *ResearchHandler) NextStepsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	sessionID := r.PathValue("id")
	steps, err := h.research.NextSteps(r.Context(), sessionID)
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to get next steps")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"next_steps": steps,
	})
}

// ReportHandler handles POST /sessions/{id}/reports. Only the executive
// summary report is supported and is returned as a PDF.
func (h *ResearchHandler) ReportHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req reportRequest
	if !DecodeRequest(w, r, &req) {
		return
	}

	data, name, err := h.research.ExecutiveSummary(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to generate report")
		return
	}
	WriteFile(w, pdfContentType, name, data)
}

// FactCheckHandler handles POST /insights/{id}/fact-check
func (h *ResearchHandler) FactCheckHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req factCheckRequest
	if r.ContentLength != 0 && !DecodeRequest(w, r, &req) {
		return
	}

	fc, err := h.research.ValidateInsight(r.Context(), r.PathValue("id"), req.Claim)
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to fact-check insight")
		return
	}
	WriteJSON(w, http.StatusOK, fc)
}

// SwotHandler handles POST /options/{id}/swot?regenerate=
func (h *ResearchHandler) SwotHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	optionID := r.PathValue("id")
	result, err := h.swot.Generate(r.Context(), optionID, queryBool(r, "regenerate"))
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to generate SWOT analysis")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"option_id":     optionID,
		"strengths":     result.Strengths,
		"weaknesses":    result.Weaknesses,
		"opportunities": result.Opportunities,
		"threats":       result.Threats,
		"confidence":    result.Confidence,
		"generated_at":  result.GeneratedAt,
	})
}

// SwotPDFHandler handles GET /options/{id}/swot/pdf?include_metadata=
func (h *ResearchHandler) SwotPDFHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	includeMetadata := r.URL.Query().Get("include_metadata") == "" || queryBool(r, "include_metadata")
	data, name, err := h.swot.GeneratePDF(r.Context(), r.PathValue("id"), includeMetadata)
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to generate SWOT PDF")
		return
	}
	WriteFile(w, pdfContentType, name, data)
}
