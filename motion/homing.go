package motion

// HomingController drives enabled axes toward their end-stops with
// overshoot debouncing, entirely outside the step timer interrupt.
// Grounded on original stepper.c's homing_cycle/stepper_homing_cycle
// (lines 601-695).
type HomingController struct {
	hal HomingHAL
	cfg Config
}

// NewHomingController constructs a controller driving hal under cfg.
func NewHomingController(hal HomingHAL, cfg Config) *HomingController {
	return &HomingController{hal: hal, cfg: cfg}
}

// HomingCycle runs the blocking dual-pass (approach, then retract) homing
// sequence for every enabled axis (spec.md §4.8, §6 exposed op
// homing_cycle()), then zeroes pos. Enable3Axes gates whether Z
// participates, matching the original's ENABLE_3AXES conditional.
func (h *HomingController) HomingCycle(pos *Position) {
	z := h.cfg.Enable3Axes
	h.cycle(true, true, z, false)
	h.cycle(true, true, z, true)
	*pos = Position{}
}

// cycle implements one pass of homing_cycle: approach (reverse=false) or
// retract (reverse=true) for whichever of x/y/z is still true.
func (h *HomingController) cycle(xAxis, yAxis, zAxis, reverse bool) {
	stepDelay := h.microsecondsPerPulse() - h.cfg.PulseMicroseconds
	outBits := DirBitX | DirBitY | DirBitZ // approach pass drives toward home
	if xAxis {
		outBits |= StepBitX
	}
	if yAxis {
		outBits |= StepBitY
	}
	if zAxis {
		outBits |= StepBitZ
	}
	if reverse {
		outBits ^= DirBitX | DirBitY | DirBitZ
	}
	outBits ^= h.cfg.InvertMask

	h.hal.SetDirectionBits(outBits & (DirBitX | DirBitY | DirBitZ))

	xOvershoot, yOvershoot, zOvershoot := overshootCount, overshootCount, overshootCount

	for {
		limits := h.hal.ReadLimitBits()
		if reverse {
			limits ^= LimitBitX1 | LimitBitX2 | LimitBitY1 | LimitBitY2 | LimitBitZ1 | LimitBitZ2
		}

		senseX1 := h.sense(limits, LimitBitX1)
		senseY1 := h.sense(limits, LimitBitY1)
		senseZ1 := h.sense(limits, LimitBitZ1)

		if xAxis && senseX1 {
			if xOvershoot == 0 {
				xAxis = false
				outBits &^= StepBitX
			} else {
				xOvershoot--
			}
		}
		if yAxis && senseY1 {
			if yOvershoot == 0 {
				yAxis = false
				outBits &^= StepBitY
			} else {
				yOvershoot--
			}
		}
		if zAxis && senseZ1 {
			if zOvershoot == 0 {
				zAxis = false
				outBits &^= StepBitZ
			} else {
				zOvershoot--
			}
		}

		if !xAxis && !yAxis && !zAxis {
			break
		}

		stepMask := outBits & (StepBitX | StepBitY | StepBitZ)
		h.hal.SetStepBits(stepMask)
		h.hal.DelayMicroseconds(h.cfg.PulseMicroseconds)
		h.hal.ResetStepBits(stepMask)
		h.hal.DelayMicroseconds(stepDelay)
	}
}

// sense applies the board's limit-pin polarity (spec.md §6 DRIVEBOARD_USB
// flag, here Config.LimitActiveHigh) to a raw limit bit.
func (h *HomingController) sense(limits, bit uint8) bool {
	asserted := limits&bit != 0
	if h.cfg.LimitActiveHigh {
		return asserted
	}
	return !asserted
}

func (h *HomingController) microsecondsPerPulse() uint32 {
	return 60_000_000 / h.cfg.HomingRateStepsPerMinute
}
