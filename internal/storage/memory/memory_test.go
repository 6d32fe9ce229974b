package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openfdm/flightsim/internal/model"
	"github.com/openfdm/flightsim/pkg/core"
	"github.com/openfdm/flightsim/pkg/mathx"
)

func startedSession() *model.FlightSession {
	return &model.FlightSession{
		Aircraft:  "Trainer",
		StartTime: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		Timestep:  0.001,
	}
}

func TestStartSession_AssignsIDAndResets(t *testing.T) {
	b := New(Config{})

	s := startedSession()
	require.NoError(t, b.StartSession(s))
	assert.Equal(t, uint(1), s.ID)

	require.NoError(t, b.RecordSample(&core.FlightSample{Tick: 10}))
	require.Len(t, b.Samples(), 1)

	// Starting a new session drops the previous buffers.
	s2 := startedSession()
	require.NoError(t, b.StartSession(s2))
	assert.Equal(t, uint(2), s2.ID)
	assert.Empty(t, b.Samples())
}

func TestRecordLanding_Stores(t *testing.T) {
	b := New(Config{})
	require.NoError(t, b.StartSession(startedSession()))

	td := &core.Touchdown{
		Tick:     4200,
		Position: mathx.Vec3{X: 3, Z: 850},
		Report:   core.LandingReport{Success: true, Speed: 71.2, Evaluated: true},
	}
	require.NoError(t, b.RecordLanding(td))

	got := b.Touchdowns()
	require.Len(t, got, 1)
	assert.Equal(t, uint64(4200), got[0].Tick)
	assert.True(t, got[0].Report.Success)
}

func TestEndSession_WithoutStartIsNoop(t *testing.T) {
	b := New(Config{OutputDir: t.TempDir()})
	require.NoError(t, b.EndSession())
	assert.Empty(t, b.ExportedFilePath())
}
