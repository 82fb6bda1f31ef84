package analytics

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/starford/bantay/internal/models"
)

// Dimension is a categorical axis records can be grouped by.
type Dimension string

// Supported dimensions.
const (
	DimStatus     Dimension = "status"
	DimCategory   Dimension = "category"
	DimZone       Dimension = "zone"
	DimGender     Dimension = "gender"
	DimEmployment Dimension = "employment"
	DimWeekday    Dimension = "weekday"
	DimMonth      Dimension = "month"
	DimYear       Dimension = "year"
	DimAge        Dimension = "age"
	DimSubject    Dimension = "subject"
)

// Dimensions lists every supported dimension.
var Dimensions = []Dimension{
	DimStatus, DimCategory, DimZone, DimGender, DimEmployment,
	DimWeekday, DimMonth, DimYear, DimAge, DimSubject,
}

// ParseDimension maps a user-supplied name to a Dimension.
func ParseDimension(s string) (Dimension, bool) {
	d := Dimension(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Dimensions {
		if d == known {
			return d, true
		}
	}
	return "", false
}

// Bucket is one label of a breakdown.
type Bucket struct {
	Label   string `json:"label"`
	Count   int    `json:"count"`
	Percent int    `json:"percent"`
}

// Breakdown is an ordered label -> count mapping for one dimension.
// The bucket counts always sum to Total.
type Breakdown struct {
	Dimension Dimension `json:"dimension"`
	Total     int       `json:"total"`
	Buckets   []Bucket  `json:"buckets"`
}

// Count returns the count for label, or 0 when absent.
func (b Breakdown) Count(label string) int {
	for _, bk := range b.Buckets {
		if bk.Label == label {
			return bk.Count
		}
	}
	return 0
}

// Labels returns the bucket labels in order.
func (b Breakdown) Labels() []string {
	out := make([]string, len(b.Buckets))
	for i, bk := range b.Buckets {
		out[i] = bk.Label
	}
	return out
}

// Ranked is one entry of a top-N ranking.
type Ranked struct {
	Label   string `json:"label"`
	Count   int    `json:"count"`
	Percent int    `json:"percent"`
}

type aggregateConfig struct {
	kinds []models.Kind
}

// AggregateOption tunes Aggregate.
type AggregateOption func(*aggregateConfig)

// WithKind pins the status and category vocabularies to kind, so the bucket
// list stays stable even when the filtered subset is empty.
func WithKind(kind models.Kind) AggregateOption {
	return func(c *aggregateConfig) {
		c.kinds = []models.Kind{kind}
	}
}

// Percent returns round(part / total * 100), or 0 when total is 0.
func Percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

// Aggregate counts records by dim. Fixed-vocabulary dimensions (status,
// category, zone, weekday, month) emit every known label even at zero.
// Missing or unrecognised values land in an "Unknown" bucket, appended last
// and only when non-zero. The zone breakdown therefore always starts with
// the seven fixed zones, with Unknown as an optional eighth entry.
func Aggregate(records []models.Record, dim Dimension, opts ...AggregateOption) Breakdown {
	cfg := aggregateConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.kinds == nil {
		cfg.kinds = kindsPresent(records)
	}

	counts, seen := tally(records, dim)

	labels := vocabulary(dim, cfg.kinds)
	inVocab := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		inVocab[l] = struct{}{}
	}
	var extra []string
	for _, l := range seen {
		if _, ok := inVocab[l]; ok || l == models.Unknown {
			continue
		}
		extra = append(extra, l)
	}
	switch dim {
	case DimAge, DimYear:
		sortNumeric(extra)
	}
	labels = append(labels, extra...)
	if counts[models.Unknown] > 0 {
		labels = append(labels, models.Unknown)
	}

	total := len(records)
	out := Breakdown{Dimension: dim, Total: total, Buckets: make([]Bucket, 0, len(labels))}
	for _, l := range labels {
		out.Buckets = append(out.Buckets, Bucket{
			Label:   l,
			Count:   counts[l],
			Percent: Percent(counts[l], total),
		})
	}
	return out
}

// TopN ranks labels of dim by descending count; ties keep the order in which
// the label was first encountered. n <= 0 returns every label.
func TopN(records []models.Record, dim Dimension, n int) []Ranked {
	counts, seen := tally(records, dim)
	sort.SliceStable(seen, func(i, j int) bool {
		return counts[seen[i]] > counts[seen[j]]
	})
	if n > 0 && len(seen) > n {
		seen = seen[:n]
	}
	out := make([]Ranked, len(seen))
	for i, l := range seen {
		out[i] = Ranked{Label: l, Count: counts[l], Percent: Percent(counts[l], len(records))}
	}
	return out
}

// tally returns per-label counts and labels in first-encountered order.
func tally(records []models.Record, dim Dimension) (map[string]int, []string) {
	counts := make(map[string]int)
	var seen []string
	for i := range records {
		l := labelOf(dim, &records[i])
		if _, ok := counts[l]; !ok {
			seen = append(seen, l)
		}
		counts[l]++
	}
	return counts, seen
}

// labelOf maps a record to its bucket label for dim.
func labelOf(dim Dimension, r *models.Record) string {
	switch dim {
	case DimStatus:
		if r.Status == "" || r.Status == models.StatusUnknown {
			return models.Unknown
		}
		return string(r.Status)
	case DimCategory:
		for _, c := range models.Categories(r.Kind) {
			if r.Category == c {
				return c
			}
		}
		return models.Unknown
	case DimZone:
		z := models.Capitalize(r.Subject.Zone)
		for _, known := range models.Zones {
			if z == known {
				return z
			}
		}
		return models.Unknown
	case DimGender:
		return orUnknown(models.Capitalize(r.Subject.Gender))
	case DimEmployment:
		return orUnknown(models.Capitalize(r.Subject.Employment))
	case DimWeekday:
		return r.CreatedAt.Weekday().String()
	case DimMonth:
		return r.CreatedAt.Month().String()
	case DimYear:
		return strconv.Itoa(r.CreatedAt.Year())
	case DimAge:
		if r.Subject.Age == nil {
			return models.Unknown
		}
		return strconv.Itoa(*r.Subject.Age)
	case DimSubject:
		return orUnknown(strings.Join(strings.Fields(r.Subject.FullName), " "))
	default:
		return models.Unknown
	}
}

// normalizeLabel maps a caller supplied value to the exact label labelOf
// emits, so it can be compared with bucket labels.
func normalizeLabel(dim Dimension, value string) string {
	v := strings.TrimSpace(value)
	if v == "" || strings.EqualFold(v, models.Unknown) {
		return models.Unknown
	}
	switch dim {
	case DimZone, DimGender, DimEmployment:
		return models.Capitalize(v)
	case DimStatus:
		return string(models.NormalizeStatus(v))
	case DimSubject:
		return strings.Join(strings.Fields(v), " ")
	case DimCategory, DimMonth, DimWeekday:
		for _, l := range vocabulary(dim, models.Kinds) {
			if strings.EqualFold(v, l) {
				return l
			}
		}
		return v
	default:
		return v
	}
}

func vocabulary(dim Dimension, kinds []models.Kind) []string {
	var out []string
	switch dim {
	case DimStatus:
		seen := make(map[models.Status]struct{})
		for _, k := range kinds {
			for _, s := range models.Statuses(k) {
				if _, ok := seen[s]; ok {
					continue
				}
				seen[s] = struct{}{}
				out = append(out, string(s))
			}
		}
	case DimCategory:
		for _, k := range kinds {
			out = append(out, models.Categories(k)...)
		}
	case DimZone:
		out = append(out, models.Zones...)
	case DimWeekday:
		for d := time.Sunday; d <= time.Saturday; d++ {
			out = append(out, d.String())
		}
	case DimMonth:
		for m := time.January; m <= time.December; m++ {
			out = append(out, m.String())
		}
	}
	return out
}

// kindsPresent returns the kinds found in records in canonical order, or all
// kinds for an empty slice.
func kindsPresent(records []models.Record) []models.Kind {
	present := make(map[models.Kind]bool)
	for i := range records {
		present[records[i].Kind] = true
	}
	if len(present) == 0 {
		return models.Kinds
	}
	var out []models.Kind
	for _, k := range models.Kinds {
		if present[k] {
			out = append(out, k)
		}
	}
	return out
}

func sortNumeric(labels []string) {
	sort.SliceStable(labels, func(i, j int) bool {
		a, _ := strconv.Atoi(labels[i])
		b, _ := strconv.Atoi(labels[j])
		return a < b
	})
}

func orUnknown(s string) string {
	if s == "" {
		return models.Unknown
	}
	return s
}
