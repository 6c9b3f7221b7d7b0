package market

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/bjacksonJaxSun/ideasmatter/internal/interfaces"
	"github.com/bjacksonJaxSun/ideasmatter/internal/models"
)

const (
	projectionYears   = 5
	defaultTAM        = 1_000_000_000
	defaultCAGR       = 5.0
	defaultSAMShare   = 0.3
	perSegmentShare   = 0.15
	maxSegmentShare   = 0.5
	defaultSizingConf = 0.6
)

// scopeMultipliers scale TAM by how much of the world the idea targets
var scopeMultipliers = map[string]float64{
	"global":   1.0,
	"regional": 0.3,
	"national": 0.1,
	"local":    0.01,
}

// maturityShares are the obtainable share of SAM by market maturity
var maturityShares = map[string]float64{
	"emerging":  0.10,
	"growth":    0.08,
	"mature":    0.03,
	"declining": 0.02,
}

// SizingRequest narrows the stored analysis before sizing
type SizingRequest struct {
	GeographicScope string   `json:"geographic_scope,omitempty"`
	TargetSegments  []string `json:"target_segments,omitempty"`
}

// Sizing computes TAM, SAM and SOM with five-year projections from the
// session's stored analysis. A session without an analysis gets the
// canned low-confidence sizing.
func (s *Service) Sizing(ctx context.Context, sessionID string, req SizingRequest) (*models.MarketSizing, error) {
	if _, err := s.storage.SessionStorage().GetSession(ctx, sessionID); err != nil {
		return nil, err
	}

	analysis, err := s.storage.MarketStorage().GetMarketAnalysisBySession(ctx, sessionID)
	if errors.Is(err, interfaces.ErrNotFound) {
		return s.fallbackSizing(), nil
	}
	if err != nil {
		return nil, err
	}

	return s.computeSizing(analysis, req), nil
}

func (s *Service) computeSizing(analysis *models.MarketAnalysis, req SizingRequest) *models.MarketSizing {
	scope := strings.ToLower(orDefault(req.GeographicScope, orDefault(analysis.GeographicScope, "global")))
	multiplier, ok := scopeMultipliers[scope]
	if !ok {
		multiplier = 1.0
	}

	baseTAM := analysis.TAMValue
	if baseTAM <= 0 {
		baseTAM = defaultTAM
	}
	tam := baseTAM * multiplier

	sam := analysis.SAMValue
	if sam <= 0 {
		share := defaultSAMShare
		if len(req.TargetSegments) > 0 {
			share = math.Min(float64(len(req.TargetSegments))*perSegmentShare, maxSegmentShare)
		}
		sam = tam * share
	}

	som := analysis.SOMValue
	if som <= 0 {
		share, ok := maturityShares[strings.ToLower(analysis.MarketMaturity)]
		if !ok {
			share = 0.05
		}
		som = sam * share
	}

	cagr := analysis.CAGR
	if cagr <= 0 {
		cagr = defaultCAGR
	}

	penetration := 0.0
	if sam > 0 {
		penetration = som / sam * 100
	}

	dataYear := "current"
	if analysis.MarketSizeYear > 0 {
		dataYear = fmt.Sprintf("%d", analysis.MarketSizeYear)
	}

	confidence := analysis.ConfidenceScore
	if confidence <= 0 {
		confidence = defaultSizingConf
	}

	return &models.MarketSizing{
		TAM: tam,
		SAM: sam,
		SOM: som,
		Breakdown: map[string]float64{
			"total_addressable_market":      tam,
			"serviceable_addressable_market": sam,
			"serviceable_obtainable_market":  som,
			"penetration_rate":               penetration,
		},
		Projections: s.projections(tam, cagr),
		Assumptions: []string{
			fmt.Sprintf("Geographic scope: %s", scope),
			fmt.Sprintf("Analysis based on %s market data", dataYear),
			"Assumes consistent market growth rates",
			"Excludes regulatory and economic disruptions",
		},
		ConfidenceScore: confidence,
	}
}

func (s *Service) fallbackSizing() *models.MarketSizing {
	return &models.MarketSizing{
		TAM: 10_000_000_000,
		SAM: 1_000_000_000,
		SOM: 50_000_000,
		Breakdown: map[string]float64{
			"total_addressable_market":      10_000_000_000,
			"serviceable_addressable_market": 1_000_000_000,
			"serviceable_obtainable_market":  50_000_000,
			"penetration_rate":               5,
		},
		Projections:     s.projections(10_000_000_000, 15),
		Assumptions:     []string{"Estimated market sizing", "15% CAGR assumed", "Global market scope"},
		ConfidenceScore: fallbackConfidence,
	}
}

// projections grows base by cagr percent per year, starting at the current year
func (s *Service) projections(base, cagr float64) []models.YearProjection {
	year := s.now().Year()
	out := make([]models.YearProjection, 0, projectionYears)
	for i := 0; i < projectionYears; i++ {
		out = append(out, models.YearProjection{
			Year:        year + i,
			MarketValue: base * math.Pow(1+cagr/100, float64(i)),
			GrowthRate:  cagr,
		})
	}
	return out
}

// Landscape groups the session's competitors by tier and scores the
// market's competitive intensity and concentration.
func (s *Service) Landscape(ctx context.Context, sessionID string) (*models.CompetitiveLandscape, error) {
	bundle, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return BuildLandscape(bundle.Competitors), nil
}

// BuildLandscape derives the landscape view from a set of competitors
func BuildLandscape(competitors []*models.CompetitorAnalysis) *models.CompetitiveLandscape {
	landscape := &models.CompetitiveLandscape{
		DirectCompetitors:     []*models.CompetitorAnalysis{},
		IndirectCompetitors:   []*models.CompetitorAnalysis{},
		SubstituteProducts:    []*models.CompetitorAnalysis{},
		TotalCompetitorsCount: len(competitors),
	}

	for _, c := range competitors {
		switch c.Tier {
		case models.CompetitorIndirect:
			landscape.IndirectCompetitors = append(landscape.IndirectCompetitors, c)
		case models.CompetitorSubstitute:
			landscape.SubstituteProducts = append(landscape.SubstituteProducts, c)
		default:
			landscape.DirectCompetitors = append(landscape.DirectCompetitors, c)
		}
	}

	direct := make([]*models.CompetitorAnalysis, len(landscape.DirectCompetitors))
	copy(direct, landscape.DirectCompetitors)
	sort.SliceStable(direct, func(i, j int) bool {
		return direct[i].MarketShare > direct[j].MarketShare
	})
	if len(direct) > 0 {
		landscape.MarketLeader = direct[0]
	}

	landscape.CompetitiveIntensity = competitiveIntensity(competitors)
	landscape.MarketConcentration = marketConcentration(direct)
	return landscape
}

func competitiveIntensity(competitors []*models.CompetitorAnalysis) float64 {
	if len(competitors) == 0 {
		return 0.3
	}

	total := 0.0
	for _, c := range competitors {
		total += c.ThreatLevel
	}
	avg := total / float64(len(competitors))

	factor := 0.6
	switch {
	case len(competitors) >= 10:
		factor = 1.0
	case len(competitors) >= 5:
		factor = 0.8
	}
	return math.Min(avg*factor, 1.0)
}

// marketConcentration expects competitors sorted by share, largest first
func marketConcentration(sorted []*models.CompetitorAnalysis) string {
	top := 0.0
	for i, c := range sorted {
		if i == 3 {
			break
		}
		top += c.MarketShare
	}

	switch {
	case top >= 70:
		return "highly_concentrated"
	case top >= 40:
		return "moderately_concentrated"
	default:
		return "fragmented"
	}
}
