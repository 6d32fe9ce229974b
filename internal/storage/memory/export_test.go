package memory

import (
	"compress/gzip"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openfdm/flightsim/internal/model"
	"github.com/openfdm/flightsim/pkg/core"
)

func recordedBackend(t *testing.T, cfg Config) *Backend {
	t.Helper()
	b := New(cfg)
	require.NoError(t, b.StartSession(&model.FlightSession{
		Aircraft:         "Sky Trainer",
		StartTime:        time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		Timestep:         0.001,
		RunwayHalfWidth:  50,
		RunwayHalfLength: 2000,
		RecorderVersion:  "1.0.0",
	}))
	require.NoError(t, b.RecordSample(&core.FlightSample{Tick: 100, Speed: 200}))
	require.NoError(t, b.RecordSample(&core.FlightSample{Tick: 200, Speed: 199}))
	require.NoError(t, b.RecordLanding(&core.Touchdown{
		Tick:   200,
		Report: core.LandingReport{Success: true, Evaluated: true},
	}))
	return b
}

func TestEndSession_ExportsJSON(t *testing.T) {
	dir := t.TempDir()
	b := recordedBackend(t, Config{OutputDir: dir, CompressOutput: false})

	require.NoError(t, b.EndSession())

	path := b.ExportedFilePath()
	require.NotEmpty(t, path)
	assert.Equal(t, "Sky_Trainer_20260314_093000.json", filepath.Base(path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var export FlightExport
	require.NoError(t, json.NewDecoder(f).Decode(&export))
	assert.Equal(t, "Sky Trainer", export.Aircraft)
	assert.Equal(t, uint64(200), export.EndTick)
	assert.Len(t, export.Samples, 2)
	assert.Len(t, export.Landings, 1)
	assert.NotNil(t, export.Performance)
}

func TestEndSession_ExportsGzippedJSON(t *testing.T) {
	dir := t.TempDir()
	b := recordedBackend(t, Config{OutputDir: dir, CompressOutput: true})

	require.NoError(t, b.EndSession())

	path := b.ExportedFilePath()
	assert.Equal(t, ".gz", filepath.Ext(path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	defer gz.Close()

	var export FlightExport
	require.NoError(t, json.NewDecoder(gz).Decode(&export))
	assert.Equal(t, "Sky Trainer", export.Aircraft)
	assert.Len(t, export.Samples, 2)
}
