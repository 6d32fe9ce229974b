package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_WithValidConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	cfg := `{
		"logLevel": "debug",
		"aircraft": "Cub",
		"sim": { "stepsPerTick": 8, "wind": { "x": 5.0 } },
		"db": { "host": "10.0.0.1", "port": "5433" }
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "flightsim.cfg.json"), []byte(cfg), 0644))

	err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "debug", viper.GetString("logLevel"))
	assert.Equal(t, "Cub", viper.GetString("aircraft"))
	assert.Equal(t, 8, viper.GetInt("sim.stepsPerTick"))
	assert.Equal(t, 5.0, viper.GetFloat64("sim.wind.x"))
	assert.Equal(t, "10.0.0.1", viper.GetString("db.host"))
	assert.Equal(t, "5433", viper.GetString("db.port"))
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "flightsim.cfg.json"), []byte(`{}`), 0644))

	err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "info", viper.GetString("logLevel"))
	assert.Equal(t, "./flightlogs", viper.GetString("logsDir"))
	assert.Equal(t, "Trainer", viper.GetString("aircraft"))
	assert.Equal(t, 16, viper.GetInt("sim.stepsPerTick"))
	assert.Equal(t, 60, viper.GetInt("sim.tickRate"))
	assert.Equal(t, 50.0, viper.GetFloat64("sim.runway.halfWidth"))
	assert.Equal(t, 2000.0, viper.GetFloat64("sim.runway.halfLength"))
	assert.Equal(t, true, viper.GetBool("recorder.enabled"))
	assert.Equal(t, 100, viper.GetInt("recorder.sampleEvery"))
	assert.Equal(t, "memory", viper.GetString("storage.type"))
	assert.Equal(t, "./recordings", viper.GetString("storage.memory.outputDir"))
	assert.Equal(t, true, viper.GetBool("storage.memory.compressOutput"))
	assert.Equal(t, "3m", viper.GetString("storage.sqlite.dumpInterval"))
	assert.Equal(t, "localhost", viper.GetString("db.host"))
	assert.Equal(t, "flightsim", viper.GetString("db.database"))
	assert.Equal(t, false, viper.GetBool("influx.enabled"))
	assert.Equal(t, "flightsim-metrics", viper.GetString("influx.org"))
	assert.Equal(t, false, viper.GetBool("graylog.enabled"))
	assert.Equal(t, false, viper.GetBool("otel.enabled"))
	assert.Equal(t, "flightsim", viper.GetString("otel.serviceName"))
	assert.Equal(t, "5s", viper.GetString("otel.batchTimeout"))
}

func TestLoad_MissingFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load("/nonexistent/path")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestGetDuration(t *testing.T) {
	t.Cleanup(viper.Reset)

	viper.Set("recorder.flushInterval", "250ms")
	assert.Equal(t, 250*time.Millisecond, GetDuration("recorder.flushInterval", time.Second))

	viper.Set("recorder.flushInterval", "not-a-duration")
	assert.Equal(t, time.Second, GetDuration("recorder.flushInterval", time.Second))
}

func TestTypedAccessors(t *testing.T) {
	t.Cleanup(viper.Reset)

	viper.Set("strKey", "v")
	viper.Set("intKey", 7)
	viper.Set("boolKey", true)
	viper.Set("floatKey", 2.5)

	assert.Equal(t, "v", GetString("strKey"))
	assert.Equal(t, 7, GetInt("intKey"))
	assert.Equal(t, true, GetBool("boolKey"))
	assert.Equal(t, 2.5, GetFloat("floatKey"))
}
