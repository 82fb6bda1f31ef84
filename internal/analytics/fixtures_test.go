package analytics

import (
	"fmt"
	"time"

	"github.com/starford/bantay/internal/models"
)

var manila = time.FixedZone("PHT", 8*60*60)

func at(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, manila)
}

func age(n int) *int { return &n }

type recOpt func(*models.Record)

func withStatus(s models.Status) recOpt   { return func(r *models.Record) { r.Status = s } }
func withCategory(c string) recOpt        { return func(r *models.Record) { r.Category = c } }
func withKind(k models.Kind) recOpt       { return func(r *models.Record) { r.Kind = k } }
func withSubject(s models.Subject) recOpt { return func(r *models.Record) { r.Subject = s } }

var seq int

func rec(created time.Time, opts ...recOpt) models.Record {
	seq++
	r := models.Record{
		ID:        fmt.Sprintf("r-%04d", seq),
		Kind:      models.KindRequest,
		CreatedAt: created,
		Category:  "Barangay Clearance",
		Status:    models.StatusPending,
		Subject: models.Subject{
			FullName: "Juan Dela Cruz",
			Zone:     "Purok 1",
			Age:      age(30),
			Gender:   "Male",
		},
	}
	for _, o := range opts {
		o(&r)
	}
	return r
}

// seriesRecords creates counts[i] records in consecutive months starting at
// start.
func seriesRecords(start Period, counts ...int) []models.Record {
	var out []models.Record
	p := start
	for _, c := range counts {
		for i := 0; i < c; i++ {
			out = append(out, rec(at(p.Year, p.Month, 1+i, 9)))
		}
		p = p.Next()
	}
	return out
}

func pointsOf(start Period, counts ...int) []Point {
	out := make([]Point, len(counts))
	p := start
	for i, c := range counts {
		out[i] = newPoint(p, c)
		p = p.Next()
	}
	return out
}
