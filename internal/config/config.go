// Package config loads service settings from an optional config file and
// environment variables, with load-time validation so misconfiguration
// fails fast at startup.
package config

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/worldwidewaves/wave-engine/internal/wave"
)

// Config holds all service settings.
type Config struct {
	Wave     WaveConfig     `mapstructure:"wave"`
	Event    EventConfig    `mapstructure:"event"`
	Observer ObserverConfig `mapstructure:"observer"`
	Sample   SampleConfig   `mapstructure:"sample"`
	Area     AreaConfig     `mapstructure:"area"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Log      LogConfig      `mapstructure:"log"`
	Shutdown ShutdownConfig `mapstructure:"shutdown"`
}

// WaveConfig describes the wave's motion.
type WaveConfig struct {
	SpeedMPS        float64       `mapstructure:"speed_mps"`
	Direction       string        `mapstructure:"direction"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	Mode            string        `mapstructure:"mode"`
}

// EventConfig holds the event schedule. Start is RFC 3339; empty means the
// event start is undefined.
type EventConfig struct {
	Start string `mapstructure:"start"`
}

// StartTime parses the configured start. The zero time is returned when no
// start is configured.
func (e EventConfig) StartTime() (time.Time, error) {
	if e.Start == "" {
		return time.Time{}, nil
	}
	ts, err := time.Parse(time.RFC3339, e.Start)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse event.start: %w", err)
	}
	return ts, nil
}

// ObserverConfig pins a fixed observer position for hit reporting.
type ObserverConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	Lat     float64 `mapstructure:"lat"`
	Lon     float64 `mapstructure:"lon"`
}

// SampleConfig throttles snapshot production.
type SampleConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

// AreaConfig points at the GeoJSON file with the event's polygons.
type AreaConfig struct {
	File string `mapstructure:"file"`
}

// HTTPConfig configures the query API listener.
type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

// KafkaConfig configures the optional snapshot publisher.
type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// LogConfig selects the slog level and handler format.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ShutdownConfig bounds graceful shutdown.
type ShutdownConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// Load reads configuration from config.yaml (if present) and environment
// variables (WAVE_SPEED_MPS, KAFKA_BROKERS, ...), applying defaults where
// unset.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("wave.speed_mps", 10.0)
	v.SetDefault("wave.direction", "east")
	v.SetDefault("wave.refresh_interval", 250*time.Millisecond)
	v.SetDefault("wave.mode", "add")
	v.SetDefault("event.start", "")
	v.SetDefault("observer.enabled", false)
	v.SetDefault("observer.lat", 0.0)
	v.SetDefault("observer.lon", 0.0)
	v.SetDefault("sample.interval", time.Second)
	v.SetDefault("area.file", "")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", "localhost:9092")
	v.SetDefault("kafka.topic", "wave-snapshots")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("shutdown.timeout", 10*time.Second)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // optional

	// WAVE_SPEED_MPS -> wave.speed_mps, KAFKA_BROKERS -> kafka.brokers
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the configuration is usable before any component is
// constructed.
func (c *Config) Validate() error {
	var errs []string

	if c.Wave.SpeedMPS <= 0 || math.IsNaN(c.Wave.SpeedMPS) || math.IsInf(c.Wave.SpeedMPS, 0) {
		errs = append(errs, fmt.Sprintf("wave.speed_mps must be positive, got %v", c.Wave.SpeedMPS))
	}
	if _, err := wave.ParseDirection(c.Wave.Direction); err != nil {
		errs = append(errs, err.Error())
	}
	if _, err := wave.ParseMode(c.Wave.Mode); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Wave.RefreshInterval <= 0 {
		errs = append(errs, "wave.refresh_interval must be positive")
	}
	if c.Sample.Interval <= 0 {
		errs = append(errs, "sample.interval must be positive")
	}
	if c.Area.File == "" {
		errs = append(errs, "area.file is required")
	}
	if _, err := c.Event.StartTime(); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Observer.Enabled {
		if c.Observer.Lat < -90 || c.Observer.Lat > 90 {
			errs = append(errs, fmt.Sprintf("observer.lat out of range: %v", c.Observer.Lat))
		}
		if c.Observer.Lon < -180 || c.Observer.Lon > 180 {
			errs = append(errs, fmt.Sprintf("observer.lon out of range: %v", c.Observer.Lon))
		}
	}
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			errs = append(errs, "kafka.brokers is required when kafka.enabled is true")
		}
		if c.Kafka.Topic == "" {
			errs = append(errs, "kafka.topic is required when kafka.enabled is true")
		}
	}
	if c.Shutdown.Timeout <= 0 {
		errs = append(errs, "shutdown.timeout must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
