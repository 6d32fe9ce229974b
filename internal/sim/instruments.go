package sim

import (
	"fmt"
	"strings"
)

// Instruments renders the cockpit readout for a snapshot, one
// instrument per line.
func Instruments(snap Snapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Speed:     %4.3f m/s, %4.1f kph, %4.1f mph\n",
		snap.Speed, snap.Speed*3.6, snap.Speed*2.237)
	fmt.Fprintf(&b, "Power:     %4.1f\n", snap.Controls.Power)
	fmt.Fprintf(&b, "Altitude:  %4.2f m\n", snap.Position.Y)
	fmt.Fprintf(&b, "Sink rate: %4.2f m/s\n", snap.Velocity.Y)
	fmt.Fprintf(&b, "AOA:       %4.4f\n", snap.AoA)
	fmt.Fprintf(&b, "Roll:      %4.1f\n", snap.RollDeg)
	fmt.Fprintf(&b, "Pitch:     %4.1f\n", snap.PitchDeg)
	fmt.Fprintf(&b, "Heading:   %4.1f\n", snap.Heading)
	fmt.Fprintf(&b, "Flaps:     %1.0f\n", snap.Controls.Flaps)

	if snap.Landing.Evaluated {
		b.WriteString(snap.Landing.Message)
	}

	return b.String()
}
