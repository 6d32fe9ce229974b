package sim

import (
	"log/slog"
	"sort"
	"time"

	"github.com/spf13/viper"

	"github.com/openfdm/flightsim/internal/dispatcher"
)

// ScriptEntry is one scripted control event, fired when the simulation
// reaches its tick.
type ScriptEntry struct {
	AtTick  uint64   `json:"atTick" mapstructure:"atTick"`
	Command string   `json:"command" mapstructure:"command"`
	Args    []string `json:"args" mapstructure:"args"`
}

// Script is a control program for headless runs.
type Script []ScriptEntry

// ScriptFromConfig loads the control program from the `sim.script`
// config key.
func ScriptFromConfig() (Script, error) {
	var s Script
	if err := viper.UnmarshalKey("sim.script", &s); err != nil {
		return nil, err
	}
	return s, nil
}

// scriptCursor replays a script in tick order.
type scriptCursor struct {
	entries Script
	next    int
}

func newScriptCursor(s Script) scriptCursor {
	entries := make(Script, len(s))
	copy(entries, s)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].AtTick < entries[j].AtTick
	})
	return scriptCursor{entries: entries}
}

// replay dispatches every entry due at or before tick.
func (c *scriptCursor) replay(tick uint64, disp *dispatcher.Dispatcher, log *slog.Logger) {
	for c.next < len(c.entries) && c.entries[c.next].AtTick <= tick {
		entry := c.entries[c.next]
		c.next++

		if disp == nil {
			continue
		}
		_, err := disp.Dispatch(dispatcher.Event{
			Command:   entry.Command,
			Args:      entry.Args,
			Timestamp: time.Now(),
		})
		if err != nil {
			log.Error("scripted event failed", "tick", tick, "command", entry.Command, "error", err)
		}
	}
}
