package model

import (
	"encoding/json"

	"gorm.io/datatypes"

	"github.com/openfdm/flightsim/pkg/core"
)

// FromSample converts a telemetry sample to its database row. The
// session foreign key is stamped later by the DB writer.
func FromSample(s core.FlightSample) FlightSampleRow {
	controls, _ := json.Marshal(s.Controls)
	forces, _ := json.Marshal(s.Forces)

	return FlightSampleRow{
		Tick:     s.Tick,
		SimTime:  s.SimTime,
		PosX:     s.Position.X,
		PosY:     s.Position.Y,
		PosZ:     s.Position.Z,
		VelX:     s.Velocity.X,
		VelY:     s.Velocity.Y,
		VelZ:     s.Velocity.Z,
		Speed:    s.Speed,
		AoA:      s.AoA,
		RollDeg:  s.RollDeg,
		PitchDeg: s.PitchDeg,
		Heading:  s.Heading,
		Airborne: s.Airborne,
		Controls: datatypes.JSON(controls),
		Forces:   datatypes.JSON(forces),
	}
}

// FromTouchdown converts a graded touchdown to its database row.
func FromTouchdown(t core.Touchdown) LandingEvent {
	return LandingEvent{
		Tick:     t.Tick,
		Success:  t.Report.Success,
		Speed:    t.Report.Speed,
		SinkRate: t.Report.SinkRate,
		PitchDeg: t.Report.PitchDeg,
		RollDeg:  t.Report.RollDeg,
		OnRunway: t.Report.OnRunway,
		PosX:     t.Position.X,
		PosZ:     t.Position.Z,
		Message:  t.Report.Message,
	}
}

// FromPerf converts a driver-health sample to its database row.
func FromPerf(p core.PerfSample) SimPerformance {
	return SimPerformance{
		Time:            p.Time,
		TicksPerSecond:  p.TicksPerSecond,
		SampleQueueLen:  uint16(min(p.SampleQueueLen, 65535)),
		LandingQueueLen: uint16(min(p.LandingQueueLen, 65535)),
		LastWriteMs:     p.LastWriteMs,
	}
}
