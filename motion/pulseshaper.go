package motion

// PulseShaper guarantees each step pulse has a bounded minimum high-time by
// arming a second one-shot timer after step pins are asserted; its handler
// (ShaperFired) restores the step pins to idle and the timer self-disables.
// Grounded on original stepper.c's ISR(TIMER2_OVF_vect) (lines 209-217) and
// the arming call right after the step pulse is latched (lines 307-313).
type PulseShaper struct {
	hal       PulseShaperHAL
	stepHAL   StepOutputHAL
	cyclesPerUS uint32
	idleBits  uint8 // InvertMask: the idle (invert-masked) state of the step+dir pins
}

// NewPulseShaper constructs a shaper driving hal/stepHAL, idling to the
// board's invert mask.
func NewPulseShaper(hal PulseShaperHAL, stepHAL StepOutputHAL, cfg Config) *PulseShaper {
	return &PulseShaper{
		hal:         hal,
		stepHAL:     stepHAL,
		cyclesPerUS: cfg.FCPU / 1_000_000,
		idleBits:    cfg.InvertMask,
	}
}

// Arm programs the one-shot reset timer to fire after pulseMicroseconds.
// Called immediately after step pins are asserted (spec.md §4.5, §5
// ordering: direction, step, then Pulse Shaper armed).
func (p *PulseShaper) Arm(pulseMicroseconds uint32) {
	p.hal.ArmPulseReset(pulseMicroseconds * p.cyclesPerUS)
}

// ShaperFired is the one-shot timer's ISR handler: it drives low every step
// pin whose idle level is low (those not set in InvertMask), ending the
// pulse. The hardware timer disables itself on fire; no software
// bookkeeping is needed here beyond the pin reset.
func (p *PulseShaper) ShaperFired() {
	p.stepHAL.ResetStepBits(^p.idleBits & (StepBitX | StepBitY | StepBitZ))
}
