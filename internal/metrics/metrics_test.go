package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/bantay/internal/analytics"
	"github.com/starford/bantay/internal/models"
)

func newTestMetrics(t *testing.T) *Metrics {
	t.Helper()
	return New(prometheus.NewRegistry())
}

func TestObserveAnalysis(t *testing.T) {
	m := newTestMetrics(t)
	m.ObserveAnalysis("breakdown", models.KindRequest, 3*time.Millisecond)
	m.ObserveAnalysis("breakdown", models.KindRequest, 5*time.Millisecond)
	m.ObserveAnalysis("forecast", models.KindCase, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AnalysesTotal.WithLabelValues("breakdown", "request")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AnalysesTotal.WithLabelValues("forecast", "case")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.AnalysisDuration))
}

func TestObserveForecast(t *testing.T) {
	m := newTestMetrics(t)
	m.ObserveForecast(models.KindRequest, analytics.ForecastResult{})
	m.ObserveForecast(models.KindRequest, analytics.ForecastResult{Ready: true})
	m.ObserveForecast(models.KindRequest, analytics.ForecastResult{Ready: true, Divergent: true})

	count := func(outcome string) float64 {
		return testutil.ToFloat64(m.ForecastsTotal.WithLabelValues("request", outcome))
	}
	assert.Equal(t, 1.0, count(OutcomeInsufficient))
	assert.Equal(t, 2.0, count(OutcomeReady))
	assert.Equal(t, 1.0, count(OutcomeDivergent))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := newTestMetrics(t)
	m.SetIndexed(models.KindCase, 12)
	m.ObserveIndexEvent("created")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	assert.True(t, strings.Contains(string(body), `bantay_index_records{kind="case"} 12`), string(body))
	assert.True(t, strings.Contains(string(body), `bantay_index_events_total{op="created"} 1`))
}
