package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"gopkg.in/yaml.v3"

	"github.com/bjacksonJaxSun/ideasmatter/internal/common"
	"github.com/bjacksonJaxSun/ideasmatter/internal/interfaces"
	"github.com/bjacksonJaxSun/ideasmatter/internal/models"
	"github.com/bjacksonJaxSun/ideasmatter/internal/services/pdf"
)

// Format is an export file format
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatYAML Format = "yaml"
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
)

// Request selects which completed research to export and how
type Request struct {
	SessionID      string `json:"session_id" validate:"required"`
	StrategyID     string `json:"strategy_id,omitempty"`
	Format         Format `json:"export_format" validate:"required"`
	IncludeRawData bool   `json:"include_raw_data"`
}

// Service renders completed research strategies to files and serves them
// until they expire
type Service struct {
	store     interfaces.ProgressStore
	pdf       *pdf.Service
	dir       string
	ttl       time.Duration
	urlPrefix string
	logger    arbor.ILogger
	now       func() time.Time
}

// NewService creates the export directory if needed. Download URLs are
// built as <apiPrefix>/files/download/<name>.
func NewService(store interfaces.ProgressStore, pdfService *pdf.Service, config *common.ExportConfig, apiPrefix string, logger arbor.ILogger) (*Service, error) {
	if err := os.MkdirAll(config.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create export directory %s: %w", config.Dir, err)
	}

	return &Service{
		store:     store,
		pdf:       pdfService,
		dir:       config.Dir,
		ttl:       common.ParseDuration(config.TTL, 24*time.Hour),
		urlPrefix: strings.TrimSuffix(apiPrefix, "/") + "/files/download/",
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

// Export writes the session's completed research in the requested format
func (s *Service) Export(ctx context.Context, req Request) (*models.ExportFile, error) {
	format := Format(strings.ToLower(string(req.Format)))
	switch format {
	case FormatJSON, FormatCSV, FormatYAML, FormatPDF:
	case FormatDOCX:
		return nil, fmt.Errorf("docx export is not supported: %w", interfaces.ErrInvalidInput)
	default:
		return nil, fmt.Errorf("unknown export format %q: %w", req.Format, interfaces.ErrInvalidInput)
	}

	record, err := s.findCompleted(ctx, req.SessionID, req.StrategyID)
	if err != nil {
		return nil, err
	}

	data, err := s.render(record, format, req.IncludeRawData)
	if err != nil {
		return nil, fmt.Errorf("failed to render %s export: %w", format, err)
	}

	now := s.now()
	name := fmt.Sprintf("research_analysis_%s_%s.%s", req.SessionID, now.Format("20060102_150405"), format)
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write export: %w", err)
	}

	s.logger.Info().
		Str("session_id", req.SessionID).
		Str("strategy_id", record.Strategy.ID).
		Str("format", string(format)).
		Int("bytes", len(data)).
		Msg("Research export written")

	return &models.ExportFile{
		FileName:      name,
		DownloadURL:   s.urlPrefix + name,
		FileSizeBytes: int64(len(data)),
		ExpiresAt:     now.Add(s.ttl),
	}, nil
}

// findCompleted returns the newest completed strategy of the session,
// or the named one when strategyID is set
func (s *Service) findCompleted(ctx context.Context, sessionID, strategyID string) (*models.StrategyRecord, error) {
	records, err := s.store.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	for _, record := range records {
		if strategyID != "" && record.Strategy.ID != strategyID {
			continue
		}
		if record.Result != nil {
			return record, nil
		}
	}
	return nil, fmt.Errorf("no completed research found for export: %w", interfaces.ErrNotFound)
}

func (s *Service) render(record *models.StrategyRecord, format Format, includeRaw bool) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(exportDocument(record, includeRaw), "", "  ")
	case FormatYAML:
		// Round trip through JSON so YAML keys follow the json tags
		raw, err := json.Marshal(exportDocument(record, includeRaw))
		if err != nil {
			return nil, err
		}
		var doc map[string]interface{}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
		return yaml.Marshal(doc)
	case FormatCSV:
		return optionsCSV(record.Result)
	case FormatPDF:
		return s.pdf.RenderStrategyResult(record, includeRaw)
	default:
		return nil, fmt.Errorf("unknown export format %q: %w", format, interfaces.ErrInvalidInput)
	}
}

func exportDocument(record *models.StrategyRecord, includeRaw bool) map[string]interface{} {
	doc := map[string]interface{}{
		"strategy":    record.Strategy,
		"idea_title":  record.IdeaTitle,
		"result":      record.Result,
		"exported_at": time.Now().UTC(),
	}
	if !includeRaw && record.Result != nil {
		summary := *record.Result
		summary.MarketContext = nil
		summary.CompetitiveIntelligence = nil
		summary.CustomerUnderstanding = nil
		summary.StrategicAssessment = nil
		doc["result"] = &summary
	}
	return doc
}

var csvHeader = []string{
	"approach",
	"title",
	"overall_score",
	"success_probability_percent",
	"estimated_investment_usd",
	"timeline_to_market_months",
	"timeline_to_profitability_months",
	"recommended",
}

func optionsCSV(result *models.AnalysisResult) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, option := range result.StrategicOptions {
		row := []string{
			string(option.Approach),
			option.Title,
			strconv.FormatFloat(option.OverallScore, 'f', 2, 64),
			strconv.FormatFloat(option.SuccessProbabilityPercent, 'f', 0, 64),
			strconv.FormatFloat(option.EstimatedInvestmentUSD, 'f', 0, 64),
			strconv.Itoa(option.TimelineToMarketMonths),
			strconv.Itoa(option.TimelineToProfitabilityMonths),
			strconv.FormatBool(option.Recommended),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Open returns the path of an unexpired export. Expired files are removed.
func (s *Service) Open(name string) (string, error) {
	if name == "" || filepath.Base(name) != name || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid file name %q: %w", name, interfaces.ErrInvalidInput)
	}

	path := filepath.Join(s.dir, name)
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("export %s: %w", name, interfaces.ErrNotFound)
		}
		return "", err
	}

	if s.expired(info) {
		if err := os.Remove(path); err != nil {
			s.logger.Warn().Err(err).Str("file", name).Msg("Failed to remove expired export")
		}
		return "", fmt.Errorf("export %s has expired: %w", name, interfaces.ErrNotFound)
	}
	return path, nil
}

// CleanupExpired removes every export older than the TTL
func (s *Service) CleanupExpired(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read export directory: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if ctx.Err() != nil {
			return removed, ctx.Err()
		}
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil || !s.expired(info) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			s.logger.Warn().Err(err).Str("file", entry.Name()).Msg("Failed to remove expired export")
			continue
		}
		removed++
	}
	return removed, nil
}

func (s *Service) expired(info os.FileInfo) bool {
	return s.now().After(info.ModTime().Add(s.ttl))
}
