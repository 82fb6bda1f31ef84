package analytics

// Trend is a direction label shared by forecasts, summaries and
// year-over-year comparisons.
type Trend string

// Trend labels.
const (
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
	TrendFlat Trend = "flat"
)

// trendOf labels v by sign, treating |v| <= gate as flat.
func trendOf(v, gate float64) Trend {
	switch {
	case v > gate:
		return TrendUp
	case v < -gate:
		return TrendDown
	default:
		return TrendFlat
	}
}
