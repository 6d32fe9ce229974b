// Package sim drives the flight model in real time: it samples pilot
// input, advances the physics at a fixed timestep, publishes render
// snapshots and feeds the telemetry recorder.
package sim

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/openfdm/flightsim/internal/dispatcher"
	"github.com/openfdm/flightsim/internal/flightmodel"
	"github.com/openfdm/flightsim/internal/input"
	"github.com/openfdm/flightsim/internal/session"
	"github.com/openfdm/flightsim/internal/worker"
	"github.com/openfdm/flightsim/pkg/core"
	"github.com/openfdm/flightsim/pkg/mathx"
)

// Config holds the driver settings.
type Config struct {
	// StepsPerTick physics steps run per outer tick. Zero means 16.
	StepsPerTick int
	// TickRate is the outer tick frequency in Hz. Zero means 60.
	TickRate int
	// DT is the physics timestep. Zero means the model default.
	DT float64

	Aircraft    string
	Environment core.Environment

	// Script is an optional control program replayed while stepping.
	Script Script
}

// Dependencies holds the driver's collaborators. Only Input is
// required.
type Dependencies struct {
	Log      *slog.Logger
	Input    *input.Collector
	Recorder *worker.Manager    // optional
	Session  *session.Context   // optional
	Model    *flightmodel.Model // optional, default model when nil
}

// Snapshot is the render- and display-facing view of the simulation,
// safe to read from any goroutine.
type Snapshot struct {
	Tick        uint64
	SimTime     float64
	Position    mathx.Vec3
	Velocity    mathx.Vec3
	Orientation mathx.Quat
	Forces      core.Forces
	Speed       float64
	AoA         float64
	RollDeg     float64
	PitchDeg    float64
	Heading     float64
	Controls    core.Controls
	Airborne    bool
	Landing     core.LandingReport
}

// Driver owns the single FlightState and advances it.
type Driver struct {
	cfg   Config
	deps  Dependencies
	model *flightmodel.Model
	state *flightmodel.FlightState

	env struct {
		sync.RWMutex
		value core.Environment
	}

	tick     atomic.Uint64
	snapshot struct {
		sync.RWMutex
		value Snapshot
	}

	script scriptCursor
}

// New creates a driver at the initial takeoff condition.
func New(cfg Config, deps Dependencies) *Driver {
	if cfg.StepsPerTick <= 0 {
		cfg.StepsPerTick = 16
	}
	if cfg.TickRate <= 0 {
		cfg.TickRate = 60
	}
	if cfg.DT <= 0 {
		cfg.DT = flightmodel.DefaultDT
	}
	if cfg.Environment.Gravity == 0 && cfg.Environment.AirDensity == 0 {
		cfg.Environment = core.DefaultEnvironment()
	}
	if deps.Log == nil {
		deps.Log = slog.Default()
	}
	if deps.Input == nil {
		deps.Input = input.NewCollector()
	}

	model := deps.Model
	if model == nil {
		model = flightmodel.New(flightmodel.DefaultConfig())
	}

	d := &Driver{
		cfg:    cfg,
		deps:   deps,
		model:  model,
		state:  flightmodel.NewState(),
		script: newScriptCursor(cfg.Script),
	}
	d.env.value = cfg.Environment

	// Seed the collector so held state matches the initial throttle.
	deps.Input.SetPower(d.state.Power)

	d.publish()
	return d
}

// Tick returns the number of physics steps taken so far.
func (d *Driver) Tick() uint64 {
	return d.tick.Load()
}

// Snapshot returns the latest published simulation view.
func (d *Driver) Snapshot() Snapshot {
	d.snapshot.RLock()
	defer d.snapshot.RUnlock()
	return d.snapshot.value
}

// SetWind replaces the wind vector for subsequent steps.
func (d *Driver) SetWind(wind mathx.Vec3) {
	d.env.Lock()
	d.env.value.Wind = wind
	d.env.Unlock()
}

// Reset reinitializes the flight to the takeoff condition. The tick
// counter keeps running; a reset is not a new session.
func (d *Driver) Reset() {
	d.state.Reset()
	d.deps.Input.Release()
	d.deps.Input.HoldPower(0)
	d.deps.Input.SetPower(d.state.Power)
	d.publish()
	d.deps.Log.Info("Flight state reset")
}

// Environment returns the current environment.
func (d *Driver) Environment() core.Environment {
	d.env.RLock()
	defer d.env.RUnlock()
	return d.env.value
}

// Step advances the simulation by one physics step.
func (d *Driver) Step(disp *dispatcher.Dispatcher) {
	tick := d.tick.Load()

	// Scripted control events fire before input sampling so that their
	// effect lands on this step.
	d.script.replay(tick, disp, d.deps.Log)

	controls := d.deps.Input.Sample()
	d.state.Roll = controls.Roll
	d.state.Pitch = controls.Pitch
	d.state.Power = controls.Power
	d.state.Flaps = controls.Flaps

	env := d.Environment()

	preAirborne := d.state.AirborneTicks
	d.model.Advance(d.state, env, d.cfg.DT)
	tick = d.tick.Add(1)

	if d.deps.Session != nil {
		d.deps.Session.SetTick(tick)
	}

	snap := d.publish()

	if d.deps.Recorder != nil {
		d.deps.Recorder.OfferSample(sampleFromSnapshot(snap))

		// A touchdown was graded on this step when the airborne counter
		// was past the grading gate and has just been reset.
		if preAirborne > flightmodel.LandingMinAirborneTicks && d.state.AirborneTicks == 0 && d.state.Landing.Evaluated {
			d.deps.Recorder.OfferLanding(core.Touchdown{
				Tick:     snap.Tick,
				SimTime:  snap.SimTime,
				Position: snap.Position,
				Report:   snap.Landing,
			})
		}
	}
}

// RunTicks drives the simulation for maxTicks outer ticks, pacing at
// the configured tick rate. A zero maxTicks runs until the context is
// cancelled.
func (d *Driver) RunTicks(ctx context.Context, disp *dispatcher.Dispatcher, maxTicks uint64) error {
	interval := time.Second / time.Duration(d.cfg.TickRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var outer uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			for i := 0; i < d.cfg.StepsPerTick; i++ {
				d.Step(disp)
			}
			outer++
			if maxTicks > 0 && outer >= maxTicks {
				return nil
			}
		}
	}
}

// Run drives the simulation until the context is cancelled.
func (d *Driver) Run(ctx context.Context, disp *dispatcher.Dispatcher) error {
	err := d.RunTicks(ctx, disp, 0)
	if err == context.Canceled {
		return nil
	}
	return err
}

// RegisterHandlers wires the simulation commands into the dispatcher.
func (d *Driver) RegisterHandlers(disp *dispatcher.Dispatcher) {
	disp.Register(dispatcher.CmdSimReset, func(e dispatcher.Event) (any, error) {
		d.Reset()
		return nil, nil
	}, dispatcher.Logged())

	disp.Register(dispatcher.CmdSimWind, func(e dispatcher.Event) (any, error) {
		wind, err := parseWindArgs(e.Args)
		if err != nil {
			return nil, err
		}
		d.SetWind(wind)
		return nil, nil
	}, dispatcher.Logged())

	disp.Register(dispatcher.CmdSimStatus, func(e dispatcher.Event) (any, error) {
		return Instruments(d.Snapshot()), nil
	})
}

// publish refreshes the shared snapshot from the flight state.
func (d *Driver) publish() Snapshot {
	roll, pitch, heading := d.state.Orientation.Euler()

	snap := Snapshot{
		Tick:        d.tick.Load(),
		SimTime:     float64(d.tick.Load()) * d.cfg.DT,
		Position:    d.state.Position,
		Velocity:    d.state.Velocity,
		Orientation: d.state.Orientation,
		Forces:      d.state.Forces,
		Speed:       d.state.Speed,
		AoA:         d.state.AoA,
		RollDeg:     roll,
		PitchDeg:    pitch,
		Heading:     heading,
		Controls:    d.state.Controls(),
		Airborne:    d.state.Airborne(),
		Landing:     d.state.Landing,
	}

	d.snapshot.Lock()
	d.snapshot.value = snap
	d.snapshot.Unlock()
	return snap
}

func parseWindArgs(args []string) (mathx.Vec3, error) {
	if len(args) < 3 {
		return mathx.Vec3{}, fmt.Errorf("wind needs 3 components, got %d", len(args))
	}
	var comps [3]float64
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(args[i], 64)
		if err != nil {
			return mathx.Vec3{}, fmt.Errorf("bad wind component %q: %w", args[i], err)
		}
		comps[i] = v
	}
	return mathx.Vec3{X: comps[0], Y: comps[1], Z: comps[2]}, nil
}

func sampleFromSnapshot(snap Snapshot) core.FlightSample {
	return core.FlightSample{
		Tick:     snap.Tick,
		SimTime:  snap.SimTime,
		Position: snap.Position,
		Velocity: snap.Velocity,
		Speed:    snap.Speed,
		AoA:      snap.AoA,
		RollDeg:  snap.RollDeg,
		PitchDeg: snap.PitchDeg,
		Heading:  snap.Heading,
		Controls: snap.Controls,
		Forces:   snap.Forces,
		Airborne: snap.Airborne,
	}
}
