package dashboard

import (
	"time"

	"github.com/starford/bantay/internal/analytics"
	"github.com/starford/bantay/internal/models"
)

// Overview is the headline view of one record kind.
type Overview struct {
	Kind        models.Kind         `json:"kind"`
	GeneratedAt time.Time           `json:"generated_at"`
	Total       int                 `json:"total"`
	Windows     WindowCounts        `json:"windows"`
	Status      analytics.Breakdown `json:"status"`
	Category    analytics.Breakdown `json:"category"`
	Zone        analytics.Breakdown `json:"zone"`
	Gender      analytics.Breakdown `json:"gender"`
	Weekday     analytics.Breakdown `json:"weekday"`
	Priority    PriorityCounts      `json:"priority"`
}

// WindowCounts are the filtered totals inside each relative time window.
type WindowCounts struct {
	Today     int `json:"today"`
	ThisWeek  int `json:"this_week"`
	ThisMonth int `json:"this_month"`
	ThisYear  int `json:"this_year"`
}

// PriorityCounts tallies priority-sector subjects.
type PriorityCounts struct {
	PWD                int `json:"pwd"`
	FourPs             int `json:"four_ps"`
	SoloParent         int `json:"solo_parent"`
	AtOrAboveAgeCutoff int `json:"age_at_or_above_cutoff"`
}

// Ranking is a top-N list. WithinDays is the window actually applied;
// 0 means the whole filtered set was ranked.
type Ranking struct {
	Dimension  analytics.Dimension `json:"dimension"`
	WithinDays int                 `json:"within_days"`
	Total      int                 `json:"total"`
	Entries    []analytics.Ranked  `json:"entries"`
}

// MonthlySeries is the fixed twelve-months-per-year template.
type MonthlySeries struct {
	Years  []int             `json:"years"`
	Points []analytics.Point `json:"points"`
}

// SeriesReport pairs the sparse series with its summary.
type SeriesReport struct {
	Points  []analytics.Point `json:"points"`
	Summary analytics.Summary `json:"summary"`
}

// ForecastReport is what the forecast views render.
type ForecastReport struct {
	Points   []analytics.Point        `json:"points"`
	Forecast analytics.ForecastResult `json:"forecast"`
	Summary  analytics.Summary        `json:"summary"`
	Message  string                   `json:"message"`
}
