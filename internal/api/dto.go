package api

import (
	"github.com/starford/bantay/internal/analytics"
	"github.com/starford/bantay/internal/dashboard"
)

// Response types, aliased from the domain layer for swag.
type (
	OverviewResponse      = dashboard.Overview
	BreakdownResponse     = analytics.Breakdown
	RankingResponse       = dashboard.Ranking
	MonthlyResponse       = dashboard.MonthlySeries
	SeriesResponse        = dashboard.SeriesReport
	ForecastResponse      = dashboard.ForecastReport
	YearComparisonPayload = analytics.YearComparison
)

// CompareResponse wraps year-over-year comparisons.
type CompareResponse struct {
	Dimension   analytics.Dimension     `json:"dimension" example:"zone" validate:"required"`
	Comparisons []YearComparisonPayload `json:"comparisons" validate:"required"`
}

// VocabularyResponse lists the fixed label sets clients use for filter
// dropdowns and chart axes.
type VocabularyResponse struct {
	Kinds      []string            `json:"kinds" validate:"required"`
	Dimensions []string            `json:"dimensions" validate:"required"`
	Zones      []string            `json:"zones" validate:"required"`
	Categories map[string][]string `json:"categories" validate:"required"`
	Statuses   map[string][]string `json:"statuses" validate:"required"`
	AgeCutoff  int                 `json:"age_cutoff" example:"24"`
}
