// Package config reads daemon configuration from the environment, with an
// optional .env file. Flags in the main command take their defaults from
// here, so deployments can pin settings without editing a unit file.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/sweeney/pill-ring/internal/clock"
	"github.com/sweeney/pill-ring/internal/dose"
	"github.com/sweeney/pill-ring/internal/input"
)

// Config holds all daemon configuration.
type Config struct {
	// Timing
	Poll        time.Duration
	Hold        time.Duration
	WakeWindow  time.Duration
	SleepWindow time.Duration
	Interval    time.Duration
	Heartbeat   time.Duration

	// Hardware
	RingSize   int
	Brightness int
	PinTilt    int
	PinButton  int
	SPIDev     string

	// Services
	Broker      string
	HTTPAddr    string
	DBPath      string
	NTPServer   string
	NTPAttempts int
}

// Load reads configuration from environment variables, consulting a .env
// file if present.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Poll:        envDur("PILL_POLL", 100*time.Millisecond),
		Hold:        envDur("PILL_HOLD", dose.DefaultHold),
		WakeWindow:  envDur("PILL_WAKE_WINDOW", dose.DefaultWakeWindow),
		SleepWindow: envDur("PILL_SLEEP_WINDOW", dose.DefaultSleepWindow),
		Interval:    envDur("PILL_INTERVAL", dose.DefaultInterval),
		Heartbeat:   envDur("PILL_HEARTBEAT", 15*time.Minute),
		RingSize:    envInt("PILL_RING_SIZE", dose.DefaultRingSize),
		Brightness:  envInt("PILL_BRIGHTNESS", 40),
		PinTilt:     envInt("PILL_PIN_TILT", input.DefaultPinTilt),
		PinButton:   envInt("PILL_PIN_BUTTON", input.DefaultPinButton),
		SPIDev:      getenv("PILL_SPI_DEV", ""),
		Broker:      getenv("PILL_BROKER", ""),
		HTTPAddr:    getenv("PILL_HTTP_ADDR", ":80"),
		DBPath:      getenv("PILL_DB_PATH", "/var/lib/pill-ring/pill-ring.db"),
		NTPServer:   getenv("PILL_NTP_SERVER", clock.DefaultServer),
		NTPAttempts: envInt("PILL_NTP_ATTEMPTS", 5),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("config: %s=%q is not an integer, using %d", key, v, def)
		return def
	}
	return n
}

func envDur(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("config: %s=%q is not a duration, using %v", key, v, def)
		return def
	}
	return d
}
