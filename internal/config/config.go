package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// SQLiteConfig holds SQLite storage backend settings.
type SQLiteConfig struct {
	DumpInterval string `json:"dumpInterval" mapstructure:"dumpInterval"`
	DumpPath     string `json:"dumpPath" mapstructure:"dumpPath"`
}

// MemoryConfig holds in-memory/JSON storage backend settings.
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// StorageConfig selects and configures the telemetry storage backend.
type StorageConfig struct {
	Type   string       `json:"type" mapstructure:"type"`
	Memory MemoryConfig `json:"memory" mapstructure:"memory"`
	SQLite SQLiteConfig `json:"sqlite" mapstructure:"sqlite"`
}

// Storage returns the storage configuration from viper.
func Storage() StorageConfig {
	var cfg StorageConfig
	if err := viper.UnmarshalKey("storage", &cfg); err != nil {
		return StorageConfig{Type: "memory"}
	}
	return cfg
}

// Load reads configuration from a JSON file and sets default values.
// configDir is the directory containing flightsim.cfg.json.
func Load(configDir string) error {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./flightlogs")
	viper.SetDefault("aircraft", "Trainer")

	// Simulation. The physics timestep is fixed; stepsPerTick controls
	// how many physics steps run per outer driver tick.
	viper.SetDefault("sim.stepsPerTick", 16)
	viper.SetDefault("sim.tickRate", 60)
	viper.SetDefault("sim.wind.x", 0.0)
	viper.SetDefault("sim.wind.y", 0.0)
	viper.SetDefault("sim.wind.z", 0.0)
	viper.SetDefault("sim.runway.halfWidth", 50.0)
	viper.SetDefault("sim.runway.halfLength", 2000.0)
	// sim.maxTicks of zero runs until interrupted.
	viper.SetDefault("sim.maxTicks", 0)
	viper.SetDefault("sim.showInstruments", true)

	// Telemetry recorder.
	viper.SetDefault("recorder.enabled", true)
	viper.SetDefault("recorder.sampleEvery", 100) // every 100 ticks = 10 Hz
	viper.SetDefault("recorder.flushInterval", "1s")

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.memory.outputDir", "./recordings")
	viper.SetDefault("storage.memory.compressOutput", true)
	viper.SetDefault("storage.sqlite.dumpInterval", "3m")
	viper.SetDefault("storage.sqlite.dumpPath", "./flightsim.db")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "flightsim")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "")
	viper.SetDefault("influx.org", "flightsim-metrics")

	viper.SetDefault("api.enabled", false)
	viper.SetDefault("api.serverUrl", "http://localhost:6080")
	viper.SetDefault("api.secret", "")
	viper.SetDefault("api.tag", "")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "flightsim")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)

	// Geographic origin of the local simulation frame, used only for
	// track export.
	viper.SetDefault("geo.originLon", 0.0)
	viper.SetDefault("geo.originLat", 0.0)

	viper.SetConfigName("flightsim.cfg.json")
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}
	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetFloat returns a float config value.
func GetFloat(key string) float64 {
	return viper.GetFloat64(key)
}

// GetDuration parses a duration config value, falling back to the given
// default when the value does not parse.
func GetDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(viper.GetString(key))
	if err != nil {
		return fallback
	}
	return d
}
