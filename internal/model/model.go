// Package model defines the database schema for recorded flights.
package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DatabaseModels lists every struct representing a table, in migration
// order.
var DatabaseModels = []interface{}{
	&FlightSession{},
	&FlightSampleRow{},
	&LandingEvent{},
	&SimPerformance{},
}

// FlightSession is one recorded flight, from driver start to shutdown
// or reset.
type FlightSession struct {
	gorm.Model
	Aircraft         string    `json:"aircraft" gorm:"size:127"`
	StartTime        time.Time `json:"startTime" gorm:"index:idx_session_start"`
	EndTime          time.Time `json:"endTime"`
	Timestep         float64   `json:"timestep"`
	MaxSpeed         float64   `json:"maxSpeed"`
	RunwayHalfWidth  float64   `json:"runwayHalfWidth"`
	RunwayHalfLength float64   `json:"runwayHalfLength"`
	WindX            float64   `json:"windX"`
	WindY            float64   `json:"windY"`
	WindZ            float64   `json:"windZ"`
	RecorderVersion  string    `json:"recorderVersion" gorm:"size:64"`

	Samples      []FlightSampleRow `json:"-"`
	Landings     []LandingEvent    `json:"-"`
	Performances []SimPerformance  `json:"-"`
}

func (*FlightSession) TableName() string {
	return "flight_sessions"
}

// FlightSampleRow is one downsampled telemetry sample.
type FlightSampleRow struct {
	ID              uint          `gorm:"primarykey"`
	FlightSessionID uint          `json:"sessionId" gorm:"index:idx_sample_session"`
	FlightSession   FlightSession `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:FlightSessionID"`

	Tick     uint64  `json:"tick" gorm:"index:idx_sample_tick"`
	SimTime  float64 `json:"simTime"`
	PosX     float64 `json:"posX"`
	PosY     float64 `json:"posY"`
	PosZ     float64 `json:"posZ"`
	VelX     float64 `json:"velX"`
	VelY     float64 `json:"velY"`
	VelZ     float64 `json:"velZ"`
	Speed    float64 `json:"speed"`
	AoA      float64 `json:"aoa"`
	RollDeg  float64 `json:"rollDeg"`
	PitchDeg float64 `json:"pitchDeg"`
	Heading  float64 `json:"heading"`
	Airborne bool    `json:"airborne"`

	// Controls and the force breakdown vary in shape more often than
	// the kinematic columns; store them as JSON documents.
	Controls datatypes.JSON `json:"controls"`
	Forces   datatypes.JSON `json:"forces"`
}

func (*FlightSampleRow) TableName() string {
	return "flight_samples"
}

// LandingEvent is one graded touchdown.
type LandingEvent struct {
	ID              uint          `gorm:"primarykey"`
	FlightSessionID uint          `json:"sessionId" gorm:"index:idx_landing_session"`
	FlightSession   FlightSession `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:FlightSessionID"`

	Tick     uint64  `json:"tick"`
	Success  bool    `json:"success"`
	Speed    float64 `json:"speed"`
	SinkRate float64 `json:"sinkRate"`
	PitchDeg float64 `json:"pitchDeg"`
	RollDeg  float64 `json:"rollDeg"`
	OnRunway bool    `json:"onRunway"`
	PosX     float64 `json:"posX"`
	PosZ     float64 `json:"posZ"`
	Message  string  `json:"message" gorm:"size:512"`
}

func (*LandingEvent) TableName() string {
	return "landing_events"
}

// SimPerformance records driver-loop health: achieved tick rate and
// recorder backlog.
type SimPerformance struct {
	ID              uint      `gorm:"primarykey"`
	FlightSessionID uint      `json:"sessionId" gorm:"index:idx_perf_session"`
	Time            time.Time `json:"time" gorm:"index:idx_perf_time"`

	TicksPerSecond  float64 `json:"ticksPerSecond"`
	SampleQueueLen  uint16  `json:"sampleQueueLen"`
	LandingQueueLen uint16  `json:"landingQueueLen"`
	LastWriteMs     float64 `json:"lastWriteMs"`
}

func (*SimPerformance) TableName() string {
	return "sim_performances"
}
