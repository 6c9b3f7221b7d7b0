package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjacksonJaxSun/ideasmatter/internal/models"
	"github.com/bjacksonJaxSun/ideasmatter/internal/services/ai"
	"github.com/bjacksonJaxSun/ideasmatter/internal/services/research"
)

func createSession(t *testing.T, f *fixture, target string) *models.ResearchSession {
	t.Helper()
	rec := call(t, f.research.CreateSessionHandler, "POST", target, map[string]string{
		"title":       "Meal kits for students",
		"description": "Affordable weekly meal kits delivered to campus",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	session := decode[models.ResearchSession](t, rec)
	require.NotEmpty(t, session.ID)
	return &session
}

func TestResearchHandler_SessionLifecycle(t *testing.T) {
	f := newFixture(t, ai.NewMockProvider())
	session := createSession(t, f, "/api/v1/sessions")
	assert.Equal(t, models.SessionStatusActive, session.Status)

	rec := call(t, f.research.ListSessionsHandler, "GET", "/api/v1/sessions?limit=10", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[map[string]interface{}](t, rec)
	assert.EqualValues(t, 1, list["total"])
	assert.EqualValues(t, 10, list["limit"])

	rec = call(t, f.research.UpdateSessionHandler, "PUT", "/api/v1/sessions/"+session.ID,
		map[string]string{"title": "Meal kits for graduates"}, "id", session.ID)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Meal kits for graduates", decode[models.ResearchSession](t, rec).Title)

	rec = call(t, f.research.GetSessionHandler, "GET", "/api/v1/sessions/"+session.ID, nil, "id", session.ID)
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decode[research.SessionDetail](t, rec)
	assert.Equal(t, "Meal kits for graduates", detail.Title)
	assert.NotNil(t, detail.Insights)

	rec = call(t, f.research.DeleteSessionHandler, "DELETE", "/api/v1/sessions/"+session.ID, nil, "id", session.ID)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = call(t, f.research.GetSessionHandler, "GET", "/api/v1/sessions/"+session.ID, nil, "id", session.ID)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResearchHandler_CreateSessionRequiresTitle(t *testing.T) {
	f := newFixture(t, ai.NewMockProvider())

	rec := call(t, f.research.CreateSessionHandler, "POST", "/api/v1/sessions", map[string]string{"description": "no title"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "title is required", errorMessage(t, rec))

	rec = call(t, f.research.CreateSessionHandler, "GET", "/api/v1/sessions", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestResearchHandler_CreateWithAnalysis(t *testing.T) {
	f := newFixture(t, ai.NewMockProvider())
	session := createSession(t, f, "/api/v1/sessions?analyze=true")

	rec := call(t, f.research.GetSessionHandler, "GET", "/", nil, "id", session.ID)
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decode[research.SessionDetail](t, rec)
	assert.NotEmpty(t, detail.Insights)
	assert.NotEmpty(t, detail.Options)

	rec = call(t, f.research.CategorizedAnalysisHandler, "GET", "/", nil, "id", session.ID)
	require.Equal(t, http.StatusOK, rec.Code)
	analysis := decode[research.CategorizedAnalysis](t, rec)
	assert.Equal(t, session.ID, analysis.SessionID)
	assert.Equal(t, len(detail.Insights), analysis.Statistics.TotalInsights)
	assert.Equal(t, len(detail.Options), analysis.Statistics.TotalOptions)
}

func TestResearchHandler_SubmitIdea(t *testing.T) {
	f := newFixture(t, ai.NewMockProvider())

	rec := call(t, f.research.SubmitIdeaHandler, "POST", "/api/v1/ideas/submit", map[string]string{
		"title":       "Bike repair subscriptions",
		"description": "Monthly tune-ups for commuters",
		"idea_id":     "idea-42",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	submission := decode[research.IdeaSubmission](t, rec)
	assert.NotEmpty(t, submission.SessionID)
	assert.Equal(t, "idea-42", submission.IdeaID)
	assert.Equal(t, models.SessionStatusCompleted, submission.Status)
	assert.Greater(t, submission.InsightsCount, 0)
	assert.NotEmpty(t, submission.NextSteps)
}

func TestResearchHandler_BrainstormRecordsConversation(t *testing.T) {
	reply := `{"response":"Focus on campus partnerships.","insights":[{"category":"target_market","title":"Students","description":"Budget-conscious students","confidence_score":0.8}],"options":[],"follow_up_questions":["Which campuses first?"]}`
	f := newFixture(t, ai.NewMockProvider(reply))
	session := createSession(t, f, "/api/v1/sessions")

	rec := call(t, f.research.BrainstormHandler, "POST", "/", map[string]interface{}{"message": "Who should I target?"}, "id", session.ID)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := decode[research.BrainstormResult](t, rec)
	assert.Equal(t, "Focus on campus partnerships.", result.Message)
	require.Len(t, result.Insights, 1)
	assert.Equal(t, models.CategoryTargetMarket, result.Insights[0].Category)

	rec = call(t, f.research.ConversationsHandler, "GET", "/", nil, "id", session.ID)
	require.Equal(t, http.StatusOK, rec.Code)
	conversations := decode[[]models.Conversation](t, rec)
	require.Len(t, conversations, 2)
	assert.Equal(t, models.MessageTypeUser, conversations[0].MessageType)
	assert.Equal(t, models.MessageTypeAssistant, conversations[1].MessageType)

	rec = call(t, f.research.BrainstormHandler, "POST", "/", map[string]interface{}{"context": map[string]string{}}, "id", session.ID)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "message is required", errorMessage(t, rec))
}

func TestResearchHandler_AnalyzeWithoutAI(t *testing.T) {
	f := newFixture(t, ai.NewMockProvider())
	session := createSession(t, f, "/api/v1/sessions")

	rec := call(t, f.research.AnalyzeHandler, "POST", "/", map[string]interface{}{"analysis_type": "market_analysis"}, "id", session.ID)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = call(t, f.research.AnalyzeHandler, "POST", "/", map[string]interface{}{"analysis_type": "market_analysis"}, "id", "ses_missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResearchHandler_NextStepsFallback(t *testing.T) {
	f := newFixture(t, ai.NewMockProvider())
	session := createSession(t, f, "/api/v1/sessions")

	rec := call(t, f.research.NextStepsHandler, "GET", "/", nil, "id", session.ID)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]interface{}](t, rec)
	assert.Equal(t, session.ID, body["session_id"])
	assert.NotEmpty(t, body["next_steps"])
}

func TestResearchHandler_ReportAndFactCheck(t *testing.T) {
	f := newFixture(t, ai.NewMockProvider())
	session := createSession(t, f, "/api/v1/sessions?analyze=true")

	rec := call(t, f.research.ReportHandler, "POST", "/", map[string]string{"report_type": "pitch_deck"}, "id", session.ID)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(t, f.research.ReportHandler, "POST", "/", map[string]string{"report_type": "executive_summary"}, "id", session.ID)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, pdfContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.True(t, len(rec.Body.Bytes()) > 4 && string(rec.Body.Bytes()[:4]) == "%PDF")

	detail, err := f.storage.InsightStorage().GetInsightsBySession(t.Context(), session.ID)
	require.NoError(t, err)
	require.NotEmpty(t, detail)

	rec = call(t, f.research.FactCheckHandler, "POST", "/", nil, "id", detail[0].ID)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	fc := decode[models.ResearchFactCheck](t, rec)
	assert.Equal(t, models.VerificationUnverified, fc.VerificationStatus)
	assert.Equal(t, detail[0].Description, fc.Claim)

	rec = call(t, f.research.FactCheckHandler, "POST", "/", map[string]string{"claim": "x"}, "id", "ins_missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResearchHandler_Swot(t *testing.T) {
	f := newFixture(t, ai.NewMockProvider())
	session := createSession(t, f, "/api/v1/sessions?analyze=true")

	options, err := f.storage.OptionStorage().GetOptionsBySession(t.Context(), session.ID)
	require.NoError(t, err)
	require.NotEmpty(t, options)
	optionID := options[0].ID

	rec := call(t, f.research.SwotHandler, "POST", "/", nil, "id", optionID)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode[map[string]interface{}](t, rec)
	assert.Equal(t, optionID, body["option_id"])
	assert.NotEmpty(t, body["strengths"])
	assert.NotEmpty(t, body["threats"])

	rec = call(t, f.research.SwotPDFHandler, "GET", "/api/v1/options/"+optionID+"/swot/pdf?include_metadata=false", nil, "id", optionID)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, pdfContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "swot_analysis_")

	rec = call(t, f.research.SwotHandler, "POST", "/", nil, "id", "opt_missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
