package internal

import (
	"context"
	"encoding/json"
	"io"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/starford/bantay/internal/analytics"
	"github.com/starford/bantay/internal/models"
	"github.com/starford/bantay/internal/parser"
	"github.com/starford/bantay/internal/storage"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	cfg := NewDefaultConfig()
	cfg.App.Timezone = "UTC"
	cfg.Records.Dir = filepath.Join(t.TempDir(), "records")
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "bantay.db")
	return cfg
}

func testRuntime(t *testing.T, cfg *Config) *runtime {
	t.Helper()
	app, err := newApplication([]Option{WithConfig(cfg), WithLogOutput(io.Discard)})
	if err != nil {
		t.Fatal(err)
	}
	rt, err := bootstrap(app)
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	t.Cleanup(func() { rt.db.Close() })
	return rt
}

func writeRecordFile(t *testing.T, dir, rel string, r models.Record) {
	t.Helper()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	data, err := parser.Encode(r)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Write(rel, data); err != nil {
		t.Fatal(err)
	}
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestNewApplication_RequiresConfig(t *testing.T) {
	if _, err := newApplication(nil); err == nil {
		t.Fatal("expected error without config")
	}
}

func TestBootstrap_IndexesExistingRecords(t *testing.T) {
	cfg := testConfig(t)
	writeRecordFile(t, cfg.Records.Dir, "requests/a.yaml", models.Record{
		Kind:      models.KindRequest,
		CreatedAt: time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC),
		Category:  "Barangay ID",
		Status:    models.StatusPending,
		Subject:   models.Subject{FullName: "Ana Cruz", Zone: "Purok 4"},
	})

	rt := testRuntime(t, cfg)
	h := rt.Router(nil)

	w := get(t, h, "/health/ready")
	if w.Code != http.StatusOK {
		t.Fatalf("ready = %d", w.Code)
	}

	w = get(t, h, "/api/requests/breakdown/zone")
	if w.Code != http.StatusOK {
		t.Fatalf("breakdown = %d: %s", w.Code, w.Body.String())
	}
	var b analytics.Breakdown
	if err := json.Unmarshal(w.Body.Bytes(), &b); err != nil {
		t.Fatal(err)
	}
	if b.Total != 1 || b.Count("Purok 4") != 1 {
		t.Errorf("breakdown = %+v", b)
	}

	w = get(t, h, "/metrics")
	if w.Code != http.StatusOK {
		t.Fatalf("metrics = %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, `bantay_index_records{kind="request"} 1`) {
		t.Errorf("indexed gauge missing:\n%s", body)
	}
	if !strings.Contains(body, `bantay_analytics_requests_total{kind="request",operation="breakdown"} 1`) {
		t.Errorf("analysis counter missing:\n%s", body)
	}
}

func TestWithRegistry_CollectorsRegistered(t *testing.T) {
	cfg := testConfig(t)
	reg := prometheus.NewRegistry()
	app, err := newApplication([]Option{WithConfig(cfg), WithRegistry(reg), WithLogOutput(io.Discard)})
	if err != nil {
		t.Fatal(err)
	}
	rt, err := bootstrap(app)
	if err != nil {
		t.Fatal(err)
	}
	defer rt.db.Close()

	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "bantay_index_records" {
			found = true
		}
	}
	if !found {
		t.Error("index gauge not registered on the supplied registry")
	}
}

func TestRouter_MetricsDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Metrics.Enabled = false
	rt := testRuntime(t, cfg)

	if w := get(t, rt.Router(nil), "/metrics"); w.Code != http.StatusNotFound {
		t.Errorf("metrics = %d, want 404", w.Code)
	}
}

func TestRouter_AuthAppliesToAPIOnly(t *testing.T) {
	cfg := testConfig(t)
	cfg.Auth = AuthConfig{Mode: AuthModeToken, Token: "s3cret"}
	rt := testRuntime(t, cfg)
	h := rt.Router(nil)

	if w := get(t, h, "/api/vocabulary"); w.Code != http.StatusUnauthorized {
		t.Errorf("api without token = %d, want 401", w.Code)
	}
	if w := get(t, h, "/health/live"); w.Code != http.StatusOK {
		t.Errorf("health = %d, want 200", w.Code)
	}
}

func TestGenerateRecords(t *testing.T) {
	now := time.Date(2025, time.July, 15, 12, 0, 0, 0, time.UTC)
	opts := SeedOptions{Months: 6, PerMonth: 10, Now: now}
	records := GenerateRecords(rand.New(rand.NewPCG(1, 2)), models.KindCase, opts, time.UTC)

	if len(records) == 0 {
		t.Fatal("no records generated")
	}
	first := time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)
	unknownZone := 0
	for _, r := range records {
		if r.Kind != models.KindCase {
			t.Fatalf("kind = %s", r.Kind)
		}
		if r.CreatedAt.Before(first) || r.CreatedAt.After(now) {
			t.Errorf("created_at %v outside history", r.CreatedAt)
		}
		if r.Subject.Zone == "" {
			unknownZone++
		}
	}
	if unknownZone == 0 {
		t.Error("expected some records without a zone")
	}
	if got := len(analytics.BuildSeries(records)); got != 6 {
		t.Errorf("months with records = %d, want 6", got)
	}
}

func TestSeed_WritesParseableFiles(t *testing.T) {
	cfg := testConfig(t)
	so := SeedOptions{Months: 7, PerMonth: 4, Seed: 42, Now: time.Date(2025, time.July, 31, 23, 0, 0, 0, time.UTC)}

	n, err := Seed(context.Background(), so, WithConfig(cfg), WithLogOutput(io.Discard))
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if n == 0 {
		t.Fatal("nothing written")
	}

	rt := testRuntime(t, cfg)
	total := 0
	for _, kind := range models.Kinds {
		c, err := rt.db.Count(context.Background(), kind)
		if err != nil {
			t.Fatal(err)
		}
		total += c
	}
	if total != n {
		t.Errorf("indexed %d records, seeded %d", total, n)
	}

	rep, err := rt.svc.Forecast(context.Background(), models.KindRequest, analytics.Criteria{})
	if err != nil {
		t.Fatal(err)
	}
	if !rep.Forecast.Ready {
		t.Errorf("seven months of history should be enough: %s", rep.Message)
	}
}

func TestSeed_RejectsEmptyHistory(t *testing.T) {
	cfg := testConfig(t)
	if _, err := Seed(context.Background(), SeedOptions{}, WithConfig(cfg), WithLogOutput(io.Discard)); err == nil {
		t.Fatal("expected error for zero months")
	}
}
