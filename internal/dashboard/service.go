// Package dashboard runs the analytics pipeline against the record index:
// fetch once, filter, then aggregate, bucket, forecast or summarise.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/starford/bantay/internal/analytics"
	"github.com/starford/bantay/internal/apperr"
	"github.com/starford/bantay/internal/index"
	"github.com/starford/bantay/internal/models"
)

// Operation names reported to the Observer.
const (
	OpOverview  = "overview"
	OpBreakdown = "breakdown"
	OpTop       = "top"
	OpCompare   = "compare"
	OpMonthly   = "monthly"
	OpSeries    = "series"
	OpForecast  = "forecast"
)

// DefaultTopN is used when neither the caller nor config picks a size.
const DefaultTopN = 5

// Observer receives per-call instrumentation. *metrics.Metrics satisfies it.
type Observer interface {
	ObserveAnalysis(op string, kind models.Kind, d time.Duration)
	ObserveForecast(kind models.Kind, res analytics.ForecastResult)
}

// Service is safe for concurrent use; it holds no per-call state.
type Service struct {
	src           index.RecordSource
	loc           *time.Location
	now           func() time.Time
	topN          int
	rankingWindow int
	obs           Observer
}

// Option configures a Service.
type Option func(*Service)

// WithLocation sets the office time zone used for calendar bucketing and
// time windows.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithClock replaces time.Now as the evaluation instant source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithTopN sets the default ranking size.
func WithTopN(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.topN = n
		}
	}
}

// WithRankingWindow limits rankings to the last days days unless a call
// overrides it. 0 ranks the whole filtered set.
func WithRankingWindow(days int) Option {
	return func(s *Service) {
		if days >= 0 {
			s.rankingWindow = days
		}
	}
}

// WithObserver attaches instrumentation.
func WithObserver(o Observer) Option {
	return func(s *Service) { s.obs = o }
}

// NewService creates a dashboard service reading from src.
func NewService(src index.RecordSource, opts ...Option) *Service {
	s := &Service{
		src:  src,
		loc:  time.Local,
		now:  time.Now,
		topN: DefaultTopN,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Location returns the configured office time zone.
func (s *Service) Location() *time.Location { return s.loc }

// Now returns the current evaluation instant in the office time zone.
func (s *Service) Now() time.Time { return s.now().In(s.loc) }

// load validates the request, fetches records of kind once, converts them to
// the office time zone and applies c.
func (s *Service) load(ctx context.Context, kind models.Kind, c analytics.Criteria) ([]models.Record, time.Time, error) {
	if !kind.Valid() {
		return nil, time.Time{}, fmt.Errorf("%w: %q", apperr.ErrUnknownKind, kind)
	}
	if err := c.Validate(); err != nil {
		return nil, time.Time{}, fmt.Errorf("%w: %v", apperr.ErrInvalidArgument, err)
	}
	if c.Status != "" {
		c.Status = models.NormalizeStatus(string(c.Status))
		if !models.ValidStatus(kind, c.Status) {
			return nil, time.Time{}, fmt.Errorf("%w: status %q is not a %s status", apperr.ErrInvalidArgument, c.Status, kind)
		}
	}
	records, err := s.src.Records(ctx, kind)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("dashboard: fetch %s records: %w", kind, err)
	}
	for i := range records {
		records[i].CreatedAt = records[i].CreatedAt.In(s.loc)
	}
	now := s.Now()
	return analytics.Filter(records, c, now), now, nil
}

// observe reports a successful call. Failed calls, including rejected
// kinds, are not reported.
func (s *Service) observe(op string, kind models.Kind, start time.Time, errp *error) {
	if s.obs == nil || *errp != nil || !kind.Valid() {
		return
	}
	s.obs.ObserveAnalysis(op, kind, time.Since(start))
}

// Overview returns the headline dashboard for kind.
func (s *Service) Overview(ctx context.Context, kind models.Kind, c analytics.Criteria) (_ *Overview, err error) {
	defer s.observe(OpOverview, kind, time.Now(), &err)
	subset, now, err := s.load(ctx, kind, c)
	if err != nil {
		return nil, err
	}

	out := &Overview{
		Kind:        kind,
		GeneratedAt: now,
		Total:       len(subset),
		Windows: WindowCounts{
			Today:     len(analytics.Filter(subset, analytics.Criteria{Window: analytics.WindowToday}, now)),
			ThisWeek:  len(analytics.Filter(subset, analytics.Criteria{Window: analytics.WindowThisWeek}, now)),
			ThisMonth: len(analytics.Filter(subset, analytics.Criteria{Window: analytics.WindowThisMonth}, now)),
			ThisYear:  len(analytics.Filter(subset, analytics.Criteria{Window: analytics.WindowThisYear}, now)),
		},
		Status:   analytics.Aggregate(subset, analytics.DimStatus, analytics.WithKind(kind)),
		Category: analytics.Aggregate(subset, analytics.DimCategory, analytics.WithKind(kind)),
		Zone:     analytics.Aggregate(subset, analytics.DimZone),
		Gender:   analytics.Aggregate(subset, analytics.DimGender),
		Weekday:  analytics.Aggregate(subset, analytics.DimWeekday),
		Priority: priorityCounts(subset),
	}
	return out, nil
}

// Breakdown aggregates the filtered set of kind by dim.
func (s *Service) Breakdown(ctx context.Context, kind models.Kind, dim analytics.Dimension, c analytics.Criteria) (_ *analytics.Breakdown, err error) {
	defer s.observe(OpBreakdown, kind, time.Now(), &err)
	if err := checkDimension(dim); err != nil {
		return nil, err
	}
	subset, _, err := s.load(ctx, kind, c)
	if err != nil {
		return nil, err
	}
	b := analytics.Aggregate(subset, dim, analytics.WithKind(kind))
	return &b, nil
}

// Top ranks the filtered set by dim. n <= 0 uses the configured default and
// withinDays < 0 uses the configured ranking window.
func (s *Service) Top(ctx context.Context, kind models.Kind, dim analytics.Dimension, n, withinDays int, c analytics.Criteria) (_ *Ranking, err error) {
	defer s.observe(OpTop, kind, time.Now(), &err)
	if err := checkDimension(dim); err != nil {
		return nil, err
	}
	subset, now, err := s.load(ctx, kind, c)
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		n = s.topN
	}
	if withinDays < 0 {
		withinDays = s.rankingWindow
	}
	if withinDays > 0 {
		subset = lastDays(subset, now, withinDays)
	}
	return &Ranking{
		Dimension:  dim,
		WithinDays: withinDays,
		Total:      len(subset),
		Entries:    analytics.TopN(subset, dim, n),
	}, nil
}

// YearOverYear compares the current and previous calendar year. An empty
// value compares every label of dim.
func (s *Service) YearOverYear(ctx context.Context, kind models.Kind, dim analytics.Dimension, value string, c analytics.Criteria) (_ []analytics.YearComparison, err error) {
	defer s.observe(OpCompare, kind, time.Now(), &err)
	if err := checkDimension(dim); err != nil {
		return nil, err
	}
	subset, now, err := s.load(ctx, kind, c)
	if err != nil {
		return nil, err
	}
	if value != "" {
		return []analytics.YearComparison{analytics.CompareYears(subset, dim, value, now)}, nil
	}
	return analytics.CompareYearsAll(subset, dim, now, analytics.WithKind(kind)), nil
}

// Monthly returns the fixed January-December template for each year
// (the current year when none is given).
func (s *Service) Monthly(ctx context.Context, kind models.Kind, years []int, c analytics.Criteria) (_ *MonthlySeries, err error) {
	defer s.observe(OpMonthly, kind, time.Now(), &err)
	subset, now, err := s.load(ctx, kind, c)
	if err != nil {
		return nil, err
	}
	if len(years) == 0 {
		years = []int{now.Year()}
	}
	points := analytics.BuildFixedRangeSeries(subset, years...)
	return &MonthlySeries{Years: yearsOf(points), Points: points}, nil
}

// Series returns the sparse monthly series of the filtered set and its
// descriptive summary.
func (s *Service) Series(ctx context.Context, kind models.Kind, c analytics.Criteria) (_ *SeriesReport, err error) {
	defer s.observe(OpSeries, kind, time.Now(), &err)
	subset, _, err := s.load(ctx, kind, c)
	if err != nil {
		return nil, err
	}
	series := analytics.BuildSeries(subset)
	return &SeriesReport{Points: series, Summary: analytics.Summarize(series)}, nil
}

// Forecast estimates next month's volume for the filtered set.
func (s *Service) Forecast(ctx context.Context, kind models.Kind, c analytics.Criteria) (_ *ForecastReport, err error) {
	defer s.observe(OpForecast, kind, time.Now(), &err)
	subset, _, err := s.load(ctx, kind, c)
	if err != nil {
		return nil, err
	}
	series := analytics.BuildSeries(subset)
	res := analytics.Forecast(series)
	if s.obs != nil {
		s.obs.ObserveForecast(kind, res)
	}
	return &ForecastReport{
		Points:   series,
		Forecast: res,
		Summary:  analytics.Summarize(series),
		Message:  forecastMessage(res),
	}, nil
}

func checkDimension(dim analytics.Dimension) error {
	if _, ok := analytics.ParseDimension(string(dim)); !ok {
		return fmt.Errorf("%w: %q", apperr.ErrUnknownDimension, dim)
	}
	return nil
}

// lastDays keeps records created in (now - days, now].
func lastDays(records []models.Record, now time.Time, days int) []models.Record {
	from := now.AddDate(0, 0, -days)
	out := make([]models.Record, 0, len(records))
	for _, r := range records {
		if r.CreatedAt.After(from) && !r.CreatedAt.After(now) {
			out = append(out, r)
		}
	}
	return out
}

func priorityCounts(records []models.Record) PriorityCounts {
	var p PriorityCounts
	for _, r := range records {
		if r.Subject.PWD {
			p.PWD++
		}
		if r.Subject.FourPs {
			p.FourPs++
		}
		if r.Subject.SoloParent {
			p.SoloParent++
		}
		if r.Subject.Age != nil && *r.Subject.Age >= models.AgeCutoff {
			p.AtOrAboveAgeCutoff++
		}
	}
	return p
}

func yearsOf(points []analytics.Point) []int {
	var out []int
	for _, p := range points {
		if len(out) == 0 || out[len(out)-1] != p.Period.Year {
			out = append(out, p.Period.Year)
		}
	}
	return out
}

func forecastMessage(res analytics.ForecastResult) string {
	switch {
	case !res.Ready:
		return fmt.Sprintf("not enough data yet: %d of %d months recorded", res.History, res.Required)
	case res.Divergent:
		return fmt.Sprintf("estimates disagree: regression %d, smoothing %d", res.Estimate, res.Smoothed)
	default:
		return fmt.Sprintf("expected %d next month, trend %s", res.Estimate, res.Trend)
	}
}
