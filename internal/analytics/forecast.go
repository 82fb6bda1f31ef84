package analytics

import "math"

// Forecast tuning. The gate and divergence threshold are domain choices
// carried over from the office dashboard and have not been re-derived.
const (
	// MinForecastHistory is the number of monthly points required before
	// a forecast is attempted.
	MinForecastHistory = 6
	// TrendGate is the minimum |slope| (records per month) for a
	// directional trend label.
	TrendGate = 0.5
	// SmoothingAlpha is the exponential smoothing factor.
	SmoothingAlpha = 0.5
	// DivergenceThreshold is the relative gap, against the larger
	// estimate, above which both estimates are surfaced.
	DivergenceThreshold = 0.10
)

// Method names an estimator.
type Method string

// Estimators.
const (
	MethodRegression Method = "linear_regression"
	MethodSmoothing  Method = "exponential_smoothing"
)

// ForecastResult is the next-period demand estimate. When Ready is false
// the history was too short and no estimate fields are meaningful.
type ForecastResult struct {
	Ready    bool `json:"ready"`
	History  int  `json:"history"`
	Required int  `json:"required"`

	NextPeriod *Period `json:"next_period,omitempty"`
	Estimate   int     `json:"estimate"`
	Trend      Trend   `json:"trend,omitempty"`
	Slope      float64 `json:"slope"`
	Intercept  float64 `json:"intercept"`

	// Smoothed is always computed; Secondary is only set when the two
	// estimators disagree by more than DivergenceThreshold.
	Smoothed  int      `json:"smoothed"`
	Secondary *int     `json:"secondary_estimate,omitempty"`
	Divergent bool     `json:"divergent"`
	Methods   []Method `json:"methods,omitempty"`
}

// Forecast estimates the count of the month after the last point of series.
// Regression runs over index positions 0..n-1, so gaps between months do not
// matter. It never panics; short series return a not-ready result.
func Forecast(series []Point) ForecastResult {
	n := len(series)
	if n < MinForecastHistory {
		return ForecastResult{History: n, Required: MinForecastHistory}
	}
	counts := Counts(series)

	slope, intercept := linearFit(counts)
	estimate := nonNegative(math.Round(intercept + slope*float64(n)))
	smoothed := nonNegative(math.Round(smooth(counts, SmoothingAlpha)))
	next := series[n-1].Period.Next()

	res := ForecastResult{
		Ready:      true,
		History:    n,
		Required:   MinForecastHistory,
		NextPeriod: &next,
		Estimate:   estimate,
		Trend:      trendOf(slope, TrendGate),
		Slope:      slope,
		Intercept:  intercept,
		Smoothed:   smoothed,
		Methods:    []Method{MethodRegression},
	}
	if diverges(estimate, smoothed) {
		res.Divergent = true
		res.Secondary = &smoothed
		res.Methods = append(res.Methods, MethodSmoothing)
	}
	return res
}

// linearFit returns the ordinary least squares slope and intercept of ys
// against x = 0..len(ys)-1. Requires len(ys) >= 2.
func linearFit(ys []int) (slope, intercept float64) {
	n := float64(len(ys))
	meanX := (n - 1) / 2
	var sumY float64
	for _, y := range ys {
		sumY += float64(y)
	}
	meanY := sumY / n

	var sxx, sxy float64
	for i, y := range ys {
		dx := float64(i) - meanX
		sxx += dx * dx
		sxy += dx * (float64(y) - meanY)
	}
	slope = sxy / sxx
	intercept = meanY - slope*meanX
	return slope, intercept
}

// smooth applies simple exponential smoothing seeded with the first value.
func smooth(ys []int, alpha float64) float64 {
	s := float64(ys[0])
	for _, y := range ys[1:] {
		s = alpha*float64(y) + (1-alpha)*s
	}
	return s
}

func diverges(a, b int) bool {
	larger := max(a, b)
	if larger <= 0 {
		return false
	}
	return math.Abs(float64(a-b)) > DivergenceThreshold*float64(larger)
}

// nonNegative converts a rounded estimate to int, clamping below at zero
// since a steep decline can extrapolate past it.
func nonNegative(v float64) int {
	if v < 0 {
		return 0
	}
	return int(v)
}
