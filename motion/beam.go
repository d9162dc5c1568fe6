package motion

// BeamModulator emits laser pulses synchronized to step events and applies
// speed-proportional dimming and raster-pixel intensity sampling. Grounded
// on original stepper.c's per-step pulsing (lines 275-305) and
// adjust_beam_dynamics (lines 582-595); the dimming math is reimplemented
// in Q16.16 fixed point per spec.md §9's Design Notes (the original uses
// float in the ISR hot path).
type BeamModulator struct {
	hal LaserHAL
	cfg Config

	intensity uint8 // last value handed to SetIntensity; what per-step pulsing reads back
	start     q16   // Config.BeamDynamicsStart in Q16.16, converted once here
}

// NewBeamModulator constructs a modulator driving hal under cfg.
func NewBeamModulator(hal LaserHAL, cfg Config) *BeamModulator {
	return &BeamModulator{hal: hal, cfg: cfg, start: q16FromFloat(cfg.BeamDynamicsStart)}
}

// Intensity returns the last commanded duty value, for tests.
func (m *BeamModulator) Intensity() uint8 {
	return m.intensity
}

// SetIntensity is the core's call-out to the "control_laser_intensity"
// collaborator (spec.md §6). It always updates the value per-step pulsing
// will use on its next firing. When Config.StaticPWMFreq is set — a
// free-running hardware PWM source is present (spec.md SPEC_FULL §4) — the
// per-step pulsing path is entirely bypassed (see PulseOnStepEvent), so
// here we forward straight to the hardware PWM register instead.
func (m *BeamModulator) SetIntensity(value uint8) {
	m.intensity = value
	if m.cfg.StaticPWMFreq {
		m.hal.SetLaserPWM(value)
	}
}

// PulseOnStepEvent implements the per-step laser pulsing concern
// (spec.md §4.6): a counter incremented on every step event, regardless of
// block type, that issues a laser pulse when it reaches
// CONFIG_BEAMDYNAMICS_EVERY and then restarts at 1 (so after the first
// pulse, one fires every CONFIG_BEAMDYNAMICS_EVERY-1 events), using
// whatever intensity was last commanded via SetIntensity. It is a no-op
// when Config.StaticPWMFreq is set.
func (m *BeamModulator) PulseOnStepEvent(st *MotionState) {
	if m.cfg.StaticPWMFreq {
		return
	}

	st.PWMCounter++
	if st.PWMCounter < m.cfg.BeamDynamicsEvery {
		return
	}
	st.PWMCounter = 1

	duty := m.intensity
	switch {
	case duty == 0:
		m.hal.SetLaserPWM(0)
	case duty >= fullOnDutyThreshold:
		m.hal.SetLaserPWM(255)
	default:
		m.hal.SetLaserPWM(255)
		cycles := m.pulseWidthCycles(duty, st.CyclesPerStepEvent)
		m.hal.ArmBeamPulse(cycles)
	}
}

// pulseWidthCycles computes the beam one-shot pulse width in CPU cycles:
// CONFIG_BEAMDYNAMICS_EVERY × duty × cycles_per_step_event / 256, per
// spec.md §4.6.
func (m *BeamModulator) pulseWidthCycles(duty uint8, cyclesPerStepEvent uint32) uint32 {
	return uint32((uint64(m.cfg.BeamDynamicsEvery) * uint64(duty) * uint64(cyclesPerStepEvent)) >> 8)
}

// BeamPulseFired is the beam one-shot timer's ISR handler: it drops the
// laser pin and the timer self-disables (mirrors the original's
// ISR(TIMER0_OVF_vect), lines 203-206).
func (m *BeamModulator) BeamPulseFired() {
	m.hal.SetLaserPWM(0)
}

// AdjustDimming implements speed-proportional dimming (spec.md §4.6):
// given the current commanded rate and the block's nominal intensity and
// rate, compute the speed-adjusted intensity and commit it via
// SetIntensity. Reimplemented in Q16.16 fixed point (spec.md §9) instead of
// the original's float arithmetic.
func (m *BeamModulator) AdjustDimming(stepsPerMinute uint32, block *Block) {
	i := block.NominalLaserIntensity
	r := block.NominalRate

	start := m.start
	iFrac := q16Ratio(uint32(i), 255)
	dimm := start + q16One.sub(start).mul(iFrac)

	ratio := q16Ratio(stepsPerMinute, r)
	factor := q16One.sub(dimm) + dimm.mul(ratio)

	m.SetIntensity(factor.mulUint8(i))
}

// SampleRasterPixel implements the raster-mode cruise-phase intensity
// sampling (spec.md §4.6): map a raster byte in [128,255] linearly to
// [0, nominalIntensity] and commit it. Plain integer arithmetic, matching
// the original's integer formula exactly (only adjust_beam_dynamics is
// named in spec.md §9 as needing fixed-point replacement).
func (m *BeamModulator) SampleRasterPixel(raster byte, nominalIntensity uint8) {
	value := (int(raster) - 128) * 2 * int(nominalIntensity) / 255
	if value < 0 {
		value = 0
	}
	if value > 255 {
		value = 255
	}
	m.SetIntensity(uint8(value))
}
