package config

import (
	"strings"
	"testing"
	"time"

	"github.com/hashicorp/go-multierror"
)

func setEnv(t *testing.T, env map[string]string) {
	t.Helper()
	for _, key := range []string{
		"TELEGRAM_TOKEN", "DATABASE_URL", "LOG_LEVEL", "LOG_FORMAT", "PROMETHEUS_PORT", "PORT",
		"MIGRATIONS_PATH", "ALLOW_DECLINE_APPROVED", "NOTIFY_TIMEOUT", "TASK_INTERVAL",
	} {
		t.Setenv(key, env[key])
	}
}

func TestLoadDefaults(t *testing.T) {
	setEnv(t, map[string]string{
		"TELEGRAM_TOKEN": "token",
		"DATABASE_URL":   "postgres://lomaya@localhost/lomaya?sslmode=disable",
	})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" || cfg.PrometheusPort != "9090" || cfg.MigrationsPath != "migrations" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "text" {
		t.Fatalf("unexpected log defaults %+v", cfg)
	}
	if cfg.AllowDeclineApproved {
		t.Fatal("declining approved requests must be off by default")
	}
	if cfg.NotifyTimeout != 10*time.Second || cfg.TaskInterval != time.Minute {
		t.Fatalf("unexpected durations %v %v", cfg.NotifyTimeout, cfg.TaskInterval)
	}
}

func TestLoadOverrides(t *testing.T) {
	setEnv(t, map[string]string{
		"TELEGRAM_TOKEN":         "token",
		"DATABASE_URL":           "postgres://db",
		"LOG_FORMAT":             "json",
		"ALLOW_DECLINE_APPROVED": "true",
		"NOTIFY_TIMEOUT":         "3s",
		"TASK_INTERVAL":          "1h",
	})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogFormat != "json" || !cfg.AllowDeclineApproved {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.NotifyTimeout != 3*time.Second || cfg.TaskInterval != time.Hour {
		t.Fatalf("unexpected durations %v %v", cfg.NotifyTimeout, cfg.TaskInterval)
	}
}

func TestLoadCollectsAllErrors(t *testing.T) {
	setEnv(t, map[string]string{
		"ALLOW_DECLINE_APPROVED": "maybe",
		"NOTIFY_TIMEOUT":         "soon",
	})

	_, err := Load()
	if err == nil {
		t.Fatal("expected an error")
	}
	merr, ok := err.(*multierror.Error)
	if !ok {
		t.Fatalf("expected *multierror.Error, got %T", err)
	}
	if len(merr.Errors) != 4 {
		t.Fatalf("expected 4 errors, got %d: %v", len(merr.Errors), err)
	}
	for _, want := range []string{"TELEGRAM_TOKEN", "DATABASE_URL", "ALLOW_DECLINE_APPROVED", "NOTIFY_TIMEOUT"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q does not mention %s", err, want)
		}
	}
}
