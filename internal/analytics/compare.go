package analytics

import (
	"time"

	"github.com/starford/bantay/internal/models"
)

// YearComparison holds this-year vs last-year counts for one label.
type YearComparison struct {
	Label        string `json:"label"`
	CurrentYear  int    `json:"current_year"`
	Current      int    `json:"current"`
	PreviousYear int    `json:"previous_year"`
	Previous     int    `json:"previous"`
	Delta        int    `json:"delta"`
	Trend        Trend  `json:"trend"`
}

// CompareYears counts records whose dim label equals value in the calendar
// year of now and in the year before it. value is normalised the same way
// bucket labels are.
func CompareYears(records []models.Record, dim Dimension, value string, now time.Time) YearComparison {
	want := normalizeLabel(dim, value)
	cur, prev := now.Year(), now.Year()-1
	out := YearComparison{Label: want, CurrentYear: cur, PreviousYear: prev}
	for i := range records {
		if labelOf(dim, &records[i]) != want {
			continue
		}
		switch records[i].CreatedAt.In(now.Location()).Year() {
		case cur:
			out.Current++
		case prev:
			out.Previous++
		}
	}
	return out.withDelta()
}

// CompareYearsAll returns one comparison per label of dim, in the same order
// Aggregate would emit them.
func CompareYearsAll(records []models.Record, dim Dimension, now time.Time, opts ...AggregateOption) []YearComparison {
	cur, prev := now.Year(), now.Year()-1
	labels := Aggregate(records, dim, opts...).Labels()
	index := make(map[string]int, len(labels))
	out := make([]YearComparison, len(labels))
	for i, l := range labels {
		index[l] = i
		out[i] = YearComparison{Label: l, CurrentYear: cur, PreviousYear: prev}
	}
	for i := range records {
		pos := index[labelOf(dim, &records[i])]
		switch records[i].CreatedAt.In(now.Location()).Year() {
		case cur:
			out[pos].Current++
		case prev:
			out[pos].Previous++
		}
	}
	for i := range out {
		out[i] = out[i].withDelta()
	}
	return out
}

func (c YearComparison) withDelta() YearComparison {
	c.Delta = c.Current - c.Previous
	c.Trend = trendOf(float64(c.Delta), 0)
	return c
}
