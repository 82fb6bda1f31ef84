package analytics

import "math"

// Summary holds descriptive statistics of a series. Unlike Forecast it has
// no minimum length: a single point yields average and extrema.
type Summary struct {
	Periods int    `json:"periods"`
	Total   int    `json:"total"`
	Average int    `json:"average"`
	Highest *Point `json:"highest,omitempty"`
	Lowest  *Point `json:"lowest,omitempty"`
	// MoMChange is last minus second-to-last count; nil below two points.
	MoMChange *int  `json:"mom_change,omitempty"`
	MoMTrend  Trend `json:"mom_trend"`
}

// Summarize computes mean, extrema (first occurrence wins) and the
// month-over-month change of series.
func Summarize(series []Point) Summary {
	out := Summary{Periods: len(series), MoMTrend: TrendFlat}
	if len(series) == 0 {
		return out
	}

	hi, lo := 0, 0
	for i, pt := range series {
		out.Total += pt.Count
		if pt.Count > series[hi].Count {
			hi = i
		}
		if pt.Count < series[lo].Count {
			lo = i
		}
	}
	highest, lowest := series[hi], series[lo]
	out.Highest = &highest
	out.Lowest = &lowest
	out.Average = int(math.Round(float64(out.Total) / float64(len(series))))

	if n := len(series); n >= 2 {
		change := series[n-1].Count - series[n-2].Count
		out.MoMChange = &change
		out.MoMTrend = trendOf(float64(change), 0)
	}
	return out
}
