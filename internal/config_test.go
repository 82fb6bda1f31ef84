package internal

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	pkgconfig "github.com/starford/bantay/pkg/config"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	loc, err := cfg.App.Location()
	if err != nil {
		t.Fatalf("Location: %v", err)
	}
	if loc.String() != "Asia/Manila" {
		t.Errorf("location = %s", loc)
	}
}

func TestAppConfig_InvalidTimezone(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.App.Timezone = "Mars/Olympus_Mons"
	if err := cfg.Validate(); err == nil {
		t.Fatal("unknown timezone should fail validation")
	}
}

func TestAnalyticsConfig_Bounds(t *testing.T) {
	tests := []struct {
		name    string
		cfg     AnalyticsConfig
		wantErr bool
	}{
		{"defaults", AnalyticsConfig{TopN: 5}, false},
		{"ranking window", AnalyticsConfig{TopN: 5, RankingWindowDays: 30}, false},
		{"zero top n", AnalyticsConfig{TopN: 0}, true},
		{"negative window", AnalyticsConfig{TopN: 5, RankingWindowDays: -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEventsConfig_NegativeThrottle(t *testing.T) {
	cfg := EventsConfig{RefreshThrottle: -time.Second}
	if err := cfg.Validate(); err == nil {
		t.Fatal("negative throttle should fail")
	}
}

func TestLoadConfigFile(t *testing.T) {
	t.Setenv("BANTAY_TEST_TOKEN", "s3cret")
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `app:
  log_level: debug
  http:
    port: 9090
  timezone: UTC
records:
  dir: ./data/records
sqlite:
  path: ./data/bantay.db
auth:
  mode: token
  token: ${BANTAY_TEST_TOKEN}
analytics:
  ranking_window_days: 30
  top_n: 10
metrics:
  enabled: false
events:
  refresh_throttle: 5s
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.LogLevel != slog.LevelDebug {
		t.Errorf("log level = %v", cfg.App.LogLevel)
	}
	if cfg.App.HTTP.Address() != ":9090" {
		t.Errorf("address = %s", cfg.App.HTTP.Address())
	}
	if cfg.Auth.Token != "s3cret" || !cfg.Auth.AuthEnabled() {
		t.Errorf("auth = %+v", cfg.Auth)
	}
	if cfg.Analytics.RankingWindowDays != 30 || cfg.Analytics.TopN != 10 {
		t.Errorf("analytics = %+v", cfg.Analytics)
	}
	if cfg.Metrics.Enabled {
		t.Error("metrics should be disabled")
	}
	if cfg.Events.RefreshThrottle != 5*time.Second {
		t.Errorf("refresh throttle = %v", cfg.Events.RefreshThrottle)
	}
}
