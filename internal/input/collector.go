// Package input collects pilot control edges (press, release, toggle)
// and produces the Controls struct the flight model consumes each tick.
package input

import (
	"strconv"
	"sync"
	"time"

	"github.com/openfdm/flightsim/internal/dispatcher"
	"github.com/openfdm/flightsim/pkg/core"
)

const (
	// PowerStep is the throttle change applied per tick while a power
	// command is held.
	PowerStep = 0.1
	// PowerMax is the throttle ceiling.
	PowerMax = 10.0
)

// Collector turns momentary control inputs into per-tick Controls.
// Roll and pitch snap to full deflection while held and back to center
// on release; power accumulates while held.
type Collector struct {
	mu       sync.Mutex
	controls core.Controls

	powerHeld int // -1, 0 or +1, applied on each Sample call
}

// NewCollector returns a collector with centered stick, zero throttle
// and flaps retracted.
func NewCollector() *Collector {
	return &Collector{}
}

// SetRoll deflects the roll axis: -1, 0 or +1.
func (c *Collector) SetRoll(dir int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controls.Roll = clampAxis(dir)
}

// SetPitch deflects the pitch axis: -1, 0 or +1.
func (c *Collector) SetPitch(dir int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controls.Pitch = clampAxis(dir)
}

// HoldPower starts ramping the throttle in the given direction until
// HoldPower(0) is called.
func (c *Collector) HoldPower(dir int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if dir > 0 {
		c.powerHeld = 1
	} else if dir < 0 {
		c.powerHeld = -1
	} else {
		c.powerHeld = 0
	}
}

// SetPower sets the throttle directly, clamped to [0, PowerMax].
func (c *Collector) SetPower(power float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controls.Power = clampPower(power)
}

// ToggleFlaps switches flaps between retracted and extended.
func (c *Collector) ToggleFlaps() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.controls.Flaps == 0 {
		c.controls.Flaps = 1
	} else {
		c.controls.Flaps = 0
	}
}

// SetFlaps sets the flaps position: 0 or 1.
func (c *Collector) SetFlaps(extended bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if extended {
		c.controls.Flaps = 1
	} else {
		c.controls.Flaps = 0
	}
}

// Release centers the stick without touching power or flaps.
func (c *Collector) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controls.Roll = 0
	c.controls.Pitch = 0
}

// Sample returns the controls for the next tick, applying the held
// power ramp.
func (c *Collector) Sample() core.Controls {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.powerHeld != 0 {
		c.controls.Power = clampPower(c.controls.Power + float64(c.powerHeld)*PowerStep)
	}
	return c.controls
}

// RegisterHandlers wires the control commands into the dispatcher.
func (c *Collector) RegisterHandlers(d *dispatcher.Dispatcher) {
	d.Register(dispatcher.CmdCtrlRoll, func(e dispatcher.Event) (any, error) {
		c.SetRoll(parseAxisArg(e.Args))
		return nil, nil
	})
	d.Register(dispatcher.CmdCtrlPitch, func(e dispatcher.Event) (any, error) {
		c.SetPitch(parseAxisArg(e.Args))
		return nil, nil
	})
	d.Register(dispatcher.CmdCtrlPower, func(e dispatcher.Event) (any, error) {
		switch arg(e.Args) {
		case "inc":
			c.HoldPower(1)
		case "dec":
			c.HoldPower(-1)
		default:
			c.HoldPower(0)
		}
		return nil, nil
	})
	d.Register(dispatcher.CmdCtrlFlaps, func(e dispatcher.Event) (any, error) {
		switch arg(e.Args) {
		case "0":
			c.SetFlaps(false)
		case "1":
			c.SetFlaps(true)
		default:
			c.ToggleFlaps()
		}
		return nil, nil
	})
}

// Event builds a dispatcher event for a control command.
func Event(command string, args ...string) dispatcher.Event {
	return dispatcher.Event{Command: command, Args: args, Timestamp: time.Now()}
}

func arg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func parseAxisArg(args []string) int {
	n, err := strconv.Atoi(arg(args))
	if err != nil {
		return 0
	}
	return n
}

func clampAxis(dir int) float64 {
	switch {
	case dir > 0:
		return 1
	case dir < 0:
		return -1
	default:
		return 0
	}
}

func clampPower(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > PowerMax {
		return PowerMax
	}
	return p
}
