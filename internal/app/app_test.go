package app

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/riskibarqy/matchday-ingest/internal/config"
	"github.com/riskibarqy/matchday-ingest/internal/platform/logging"
)

func dryRunConfig() config.Config {
	return config.Config{
		AppEnv:                    config.EnvDev,
		ServiceName:               "matchday-ingest",
		ServiceVersion:            "test",
		SourceBaseURL:             "http://127.0.0.1:1",
		SourceSport:               "football",
		SourceTimeout:             time.Second,
		SourceMaxBodyBytes:        1 << 20,
		SourceCircuitFailureCount: 3,
		SourceCircuitOpenTimeout:  time.Second,
		IngestMaxRetries:          1,
		IngestWorkers:             1,
	}
}

func TestNew_DryRunWiresServicesWithoutDatabase(t *testing.T) {
	logger := logging.New(logging.LevelError, logging.FormatJSON, io.Discard)

	a, err := New(context.Background(), dryRunConfig(), logger, Options{DryRun: true})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer func() {
		if err := a.Close(context.Background()); err != nil {
			t.Fatalf("close app: %v", err)
		}
	}()

	if a.Days == nil || a.Batch == nil || a.Rebuild == nil {
		t.Fatalf("expected every service to be wired")
	}
	if a.db != nil {
		t.Fatalf("dry run must not open a database")
	}

	rows, err := a.Rebuild.Rebuild(context.Background())
	if err != nil {
		t.Fatalf("rebuild on empty store: %v", err)
	}
	if rows != 0 {
		t.Fatalf("expected 0 projection rows, got=%d", rows)
	}
}

func TestClose_Idempotent(t *testing.T) {
	a, err := New(context.Background(), dryRunConfig(), nil, Options{DryRun: true})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	if err := a.Close(context.Background()); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := a.Close(context.Background()); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestSourceConfig(t *testing.T) {
	cfg := dryRunConfig()
	cfg.SourceCircuitEnabled = true
	cfg.SourceWarmupURL = "https://www.example.test/"

	got := sourceConfig(cfg)
	if got.MaxBodyBytes != 1<<20 || got.Sport != "football" || got.WarmupURL != cfg.SourceWarmupURL {
		t.Fatalf("unexpected source config: %+v", got)
	}
	if !got.CircuitBreaker.Enabled || got.CircuitBreaker.FailureThreshold != 3 {
		t.Fatalf("unexpected breaker config: %+v", got.CircuitBreaker)
	}
}
