package dispatcher

// Command names routed through the dispatcher. Control commands carry
// one argument; wind carries three.
const (
	CmdCtrlRoll  = ":CTRL:ROLL:"  // args: -1|0|1
	CmdCtrlPitch = ":CTRL:PITCH:" // args: -1|0|1
	CmdCtrlPower = ":CTRL:POWER:" // args: inc|dec
	CmdCtrlFlaps = ":CTRL:FLAPS:" // args: 0|1

	CmdSimReset  = ":SIM:RESET:"  // no args
	CmdSimWind   = ":SIM:WIND:"   // args: x y z (m/s)
	CmdSimStatus = ":SIM:STATUS:" // no args, returns instrument text
)
