package motion

// AccelerationTicker derives a logical "100 Hz" acceleration clock from
// step-event timing without consuming a separate hardware timer. Grounded
// on original stepper.c's acceleration_tick (lines 524-532).
type AccelerationTicker struct {
	counter              uint32
	cyclesPerAccelTick   uint32
}

// NewAccelerationTicker constructs a ticker for the given acceleration-tick
// period in CPU cycles (Config.CyclesPerAccelerationTick()).
func NewAccelerationTicker(cyclesPerAccelTick uint32) *AccelerationTicker {
	return &AccelerationTicker{cyclesPerAccelTick: cyclesPerAccelTick}
}

// ResetMidpoint seeds the counter at half its period, the midpoint rule
// (spec.md GLOSSARY) applied at the start of acceleration and again at the
// start of deceleration so the average tick phase is centered.
func (a *AccelerationTicker) ResetMidpoint() {
	a.counter = a.cyclesPerAccelTick / 2
}

// Tick accumulates cyclesPerStepEvent cycles and reports whether a new
// acceleration decision is due.
func (a *AccelerationTicker) Tick(cyclesPerStepEvent uint32) bool {
	a.counter += cyclesPerStepEvent
	if a.counter > a.cyclesPerAccelTick {
		a.counter -= a.cyclesPerAccelTick
		return true
	}
	return false
}

// Counter exposes the raw accumulator, for tests asserting the midpoint
// rule was applied.
func (a *AccelerationTicker) Counter() uint32 {
	return a.counter
}
