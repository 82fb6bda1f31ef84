package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/starford/bantay/internal/models"
)

// Period is a calendar month bucket.
type Period struct {
	Year  int
	Month time.Month
}

// PeriodOf returns the period containing t, in t's location.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// Before reports whether p sorts strictly before q.
func (p Period) Before(q Period) bool {
	if p.Year != q.Year {
		return p.Year < q.Year
	}
	return p.Month < q.Month
}

// Next returns the following calendar month.
func (p Period) Next() Period {
	if p.Month == time.December {
		return Period{Year: p.Year + 1, Month: time.January}
	}
	return Period{Year: p.Year, Month: p.Month + 1}
}

// Key formats p as YYYY-MM.
func (p Period) Key() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Label formats p for chart axes, e.g. "Mar 2025".
func (p Period) Label() string {
	return fmt.Sprintf("%s %d", p.Month.String()[:3], p.Year)
}

func (p Period) String() string { return p.Key() }

// MarshalText implements encoding.TextMarshaler.
func (p Period) MarshalText() ([]byte, error) {
	return []byte(p.Key()), nil
}

// UnmarshalText parses a YYYY-MM key.
func (p *Period) UnmarshalText(b []byte) error {
	t, err := time.Parse("2006-01", string(b))
	if err != nil {
		return fmt.Errorf("analytics: invalid period %q: %w", b, err)
	}
	*p = PeriodOf(t)
	return nil
}

// Point is one (period, count) pair of a time series.
type Point struct {
	Period Period `json:"period"`
	Label  string `json:"label"`
	Count  int    `json:"count"`
}

func newPoint(p Period, count int) Point {
	return Point{Period: p, Label: p.Label(), Count: count}
}

// BuildSeries buckets records by calendar month and returns one point per
// month that has at least one record, oldest first. Empty months are not
// filled in: the forecaster must not see zero-demand months from before the
// office had any activity.
func BuildSeries(records []models.Record) []Point {
	counts := make(map[Period]int)
	for i := range records {
		counts[PeriodOf(records[i].CreatedAt)]++
	}
	periods := make([]Period, 0, len(counts))
	for p := range counts {
		periods = append(periods, p)
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i].Before(periods[j]) })

	out := make([]Point, len(periods))
	for i, p := range periods {
		out[i] = newPoint(p, counts[p])
	}
	return out
}

// BuildFixedMonthlySeries returns exactly twelve points, January to December
// of year, with zero counts for months without records.
func BuildFixedMonthlySeries(records []models.Record, year int) []Point {
	return BuildFixedRangeSeries(records, year)
}

// BuildFixedRangeSeries returns twelve points per distinct year, years in
// ascending order.
func BuildFixedRangeSeries(records []models.Record, years ...int) []Point {
	uniq := make(map[int]struct{}, len(years))
	var ys []int
	for _, y := range years {
		if _, ok := uniq[y]; ok {
			continue
		}
		uniq[y] = struct{}{}
		ys = append(ys, y)
	}
	sort.Ints(ys)

	counts := make(map[Period]int)
	for i := range records {
		p := PeriodOf(records[i].CreatedAt)
		if _, ok := uniq[p.Year]; ok {
			counts[p]++
		}
	}

	out := make([]Point, 0, 12*len(ys))
	for _, y := range ys {
		for m := time.January; m <= time.December; m++ {
			p := Period{Year: y, Month: m}
			out = append(out, newPoint(p, counts[p]))
		}
	}
	return out
}

// Counts extracts the count column of series.
func Counts(series []Point) []int {
	out := make([]int, len(series))
	for i, pt := range series {
		out[i] = pt.Count
	}
	return out
}
