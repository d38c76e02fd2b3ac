package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Poll != 100*time.Millisecond {
		t.Errorf("Poll: got %v, want 100ms", cfg.Poll)
	}
	if cfg.Hold != 2*time.Second {
		t.Errorf("Hold: got %v, want 2s", cfg.Hold)
	}
	if cfg.Interval != 24*time.Hour {
		t.Errorf("Interval: got %v, want 24h", cfg.Interval)
	}
	if cfg.RingSize != 12 {
		t.Errorf("RingSize: got %d, want 12", cfg.RingSize)
	}
	if cfg.NTPAttempts != 5 {
		t.Errorf("NTPAttempts: got %d, want 5", cfg.NTPAttempts)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PILL_INTERVAL", "8h")
	t.Setenv("PILL_RING_SIZE", "16")
	t.Setenv("PILL_HTTP_ADDR", ":8080")
	t.Setenv("PILL_BROKER", "tcp://broker:1883")

	cfg := Load()
	if cfg.Interval != 8*time.Hour {
		t.Errorf("Interval: got %v, want 8h", cfg.Interval)
	}
	if cfg.RingSize != 16 {
		t.Errorf("RingSize: got %d, want 16", cfg.RingSize)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr: got %q, want :8080", cfg.HTTPAddr)
	}
	if cfg.Broker != "tcp://broker:1883" {
		t.Errorf("Broker: got %q", cfg.Broker)
	}
}

func TestLoadMalformedFallsBack(t *testing.T) {
	t.Setenv("PILL_INTERVAL", "tomorrow")
	t.Setenv("PILL_RING_SIZE", "dozen")

	cfg := Load()
	if cfg.Interval != 24*time.Hour {
		t.Errorf("Interval: got %v, want default 24h", cfg.Interval)
	}
	if cfg.RingSize != 12 {
		t.Errorf("RingSize: got %d, want default 12", cfg.RingSize)
	}
}
