package internal

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/starford/bantay/internal/models"
	"github.com/starford/bantay/internal/parser"
	"github.com/starford/bantay/internal/storage"
)

// SeedOptions controls synthetic record generation.
type SeedOptions struct {
	// Months of history to generate, ending with the current month.
	Months int
	// PerMonth is the base monthly volume per kind; months vary around it.
	PerMonth int
	// Seed makes the output reproducible. Record ids are random regardless.
	Seed uint64
	// Now anchors the history; zero means time.Now.
	Now time.Time
}

var (
	kindDirs    = map[models.Kind]string{models.KindRequest: "requests", models.KindCase: "cases"}
	genders     = []string{"Male", "Female"}
	employments = []string{"Employed", "Unemployed", "Self-employed", "Student"}
	firstNames  = []string{"Ana", "Ben", "Carla", "Dante", "Elena", "Felix", "Gina", "Hector", "Isay", "Jun"}
	lastNames   = []string{"Cruz", "Ramos", "Santos", "Reyes", "Garcia", "Mendoza", "Bautista", "Villanueva"}
)

// GenerateRecords builds opts.Months of synthetic records of kind in loc.
// Volume drifts upward over the period so forecasts have a trend to find.
// Every tenth subject has no zone and every seventh no age, so the Unknown
// buckets are exercised.
func GenerateRecords(rng *rand.Rand, kind models.Kind, opts SeedOptions, loc *time.Location) []models.Record {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.In(loc)
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc).AddDate(0, -(opts.Months - 1), 0)

	categories := models.Categories(kind)
	statuses := models.Statuses(kind)

	var out []models.Record
	for m := 0; m < opts.Months; m++ {
		monthStart := first.AddDate(0, m, 0)
		days := monthStart.AddDate(0, 1, -1).Day()
		count := opts.PerMonth + m/2 + rng.IntN(opts.PerMonth/2+1)
		for i := 0; i < count; i++ {
			created := monthStart.Add(time.Duration(rng.IntN(days*24*60)) * time.Minute)
			if created.After(now) {
				continue
			}
			subject := models.Subject{
				FullName:   firstNames[rng.IntN(len(firstNames))] + " " + lastNames[rng.IntN(len(lastNames))],
				Zone:       models.Zones[rng.IntN(len(models.Zones))],
				Gender:     genders[rng.IntN(len(genders))],
				Employment: employments[rng.IntN(len(employments))],
				PWD:        rng.IntN(12) == 0,
				FourPs:     rng.IntN(6) == 0,
				SoloParent: rng.IntN(9) == 0,
			}
			if len(out)%10 == 9 {
				subject.Zone = ""
			}
			if len(out)%7 != 6 {
				age := 16 + rng.IntN(60)
				subject.Age = &age
			}
			out = append(out, models.Record{
				ID:        uuid.NewString(),
				Kind:      kind,
				CreatedAt: created,
				Category:  categories[rng.IntN(len(categories))],
				Status:    statuses[rng.IntN(len(statuses))],
				Subject:   subject,
			})
		}
	}
	return out
}

// Seed writes synthetic request and case files into the records directory.
// A running server picks them up through its watcher.
func Seed(ctx context.Context, so SeedOptions, opts ...Option) (int, error) {
	app, err := newApplication(opts)
	if err != nil {
		return 0, err
	}
	cfg := app.config
	logger := slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{Level: cfg.App.LogLevel}))

	if so.Months <= 0 || so.PerMonth <= 0 {
		return 0, fmt.Errorf("seed: months and per-month must be positive")
	}
	loc, err := cfg.App.Location()
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(cfg.Records.Dir, 0o755); err != nil {
		return 0, fmt.Errorf("create records dir: %w", err)
	}
	store, err := storage.NewFS(cfg.Records.Dir)
	if err != nil {
		return 0, fmt.Errorf("init storage: %w", err)
	}

	rng := rand.New(rand.NewPCG(so.Seed, so.Seed^0x9e3779b97f4a7c15))
	written := 0
	for _, kind := range models.Kinds {
		dir := kindDirs[kind]
		for _, r := range GenerateRecords(rng, kind, so, loc) {
			if err := ctx.Err(); err != nil {
				return written, err
			}
			data, err := parser.Encode(r)
			if err != nil {
				return written, err
			}
			path := fmt.Sprintf("%s/%s/%s.yaml", dir, r.CreatedAt.Format("2006-01"), r.ID)
			if err := store.Write(path, data); err != nil {
				return written, fmt.Errorf("seed: write %s: %w", path, err)
			}
			written++
		}
	}

	logger.Info("seed done", slog.Int("records", written), slog.String("records_dir", cfg.Records.Dir))
	return written, nil
}
