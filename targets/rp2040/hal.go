//go:build rp2040 || rp2350

// Package main's hal.go adapts the RP2040 timer/PWM/GPIO peripherals this
// target already talks to (clock.go, pwm.go) into a single motion.CoreHAL,
// replacing the Klipper-MCU-clock role those files played for gopper with
// the laser-motion core's step-event timer and one-shot pulse timers.
package main

import (
	"machine"
	"runtime/volatile"
	"sync/atomic"
	"unsafe"

	"lasermotion/motion"
)

// Timer ALARM/INTE/INTR offsets, alongside clock.go's RAWH/RAWL, within the
// same RP2040 TIMER peripheral block.
const (
	timerALARM0 = timerBase + 0x10
	timerALARM1 = timerBase + 0x14
	timerALARM2 = timerBase + 0x18
	timerINTR   = timerBase + 0x34
	timerINTE   = timerBase + 0x38
)

var (
	alarm0 = (*volatile.Register32)(unsafe.Pointer(uintptr(timerALARM0))) // step-event timer
	alarm1 = (*volatile.Register32)(unsafe.Pointer(uintptr(timerALARM1))) // pulse-reset one-shot
	alarm2 = (*volatile.Register32)(unsafe.Pointer(uintptr(timerALARM2))) // beam-pulse one-shot
	inte   = (*volatile.Register32)(unsafe.Pointer(uintptr(timerINTE)))
	intr   = (*volatile.Register32)(unsafe.Pointer(uintptr(timerINTR)))
)

const (
	alarmBitStep  = 1 << 0
	alarmBitPulse = 1 << 1
	alarmBitBeam  = 1 << 2
)

// PinMap is the board-specific pin assignment a caller supplies to NewHAL.
// Grounded on PanGo-style pin-number config fields rather than a hardwired
// layout, so the same binary serves more than one board.
type PinMap struct {
	StepX, DirX       machine.Pin
	StepY, DirY       machine.Pin
	StepZ, DirZ       machine.Pin
	LimitX1, LimitX2  machine.Pin
	LimitY1, LimitY2  machine.Pin
	LimitZ1, LimitZ2  machine.Pin
	Door, Chiller     machine.Pin
	LaserPWM          machine.Pin
}

// HAL implements motion.CoreHAL on bare RP2040/RP2350 hardware: direct GPIO
// for step/dir/limit/interlock pins (motion/hal.go's StepOutputHAL/LimitSenseHAL/
// InterlockSenseHAL), the RP2040 hardware timer's three alarms for the step
// timer and the two one-shots (StepTimerHAL/PulseShaperHAL/LaserHAL's
// ArmBeamPulse), and a hardware PWM slice for LaserHAL.SetLaserPWM.
type HAL struct {
	pins PinMap
	pwm  *RP2040PWMDriver

	// steps overrides StepOutputHAL/PulseShaperHAL with a PIOStepHAL when
	// set via UsePIOSteps, trading the plain-GPIO set/reset pair and the
	// ALARM1 one-shot for cycle-accurate PIO-generated pulses.
	steps *PIOStepHAL

	// Config.FCPU for this target should be 1_000_000 (the RP2040 timer's
	// fixed 1MHz tick rate), so TimerController's computed ceiling counts
	// microseconds at the fastest prescaler tier. Rates below about 916
	// steps/minute need more than 65535 cycles and land on a slower tier;
	// ProgramStepTimer multiplies the ceiling back up by that tier's divisor.
	stepPeriodUs atomic.Uint32

	core *motion.Core // set by Attach, for the three ISR trampolines below
}

// laserPWMCycleTicks is the slice period passed to ConfigureHardwarePWM,
// chosen for an audible-free ~20kHz laser PWM frequency at the RP2040's
// fixed 12MHz PWM input clock (matching pwm.go's own period arithmetic).
const laserPWMCycleTicks = 600

// NewHAL configures the pins in m as outputs/inputs, configures the laser
// PWM slice, and returns an unattached HAL. Call Attach once the owning
// motion.Core exists, since the alarm interrupt handlers need to call back
// into it.
func NewHAL(m PinMap) *HAL {
	h := &HAL{pins: m, pwm: NewRP2040PWMDriver()}

	for _, p := range []machine.Pin{m.StepX, m.DirX, m.StepY, m.DirY, m.StepZ, m.DirZ} {
		p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	}
	for _, p := range []machine.Pin{m.LimitX1, m.LimitX2, m.LimitY1, m.LimitY2, m.LimitZ1, m.LimitZ2, m.Door, m.Chiller} {
		p.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	}
	h.pwm.ConfigureHardwarePWM(m.LaserPWM, laserPWMCycleTicks)
	return h
}

// Attach wires this HAL's ISR trampolines to core. Whatever board bring-up
// code registers the three RP2040 alarm interrupt vectors must call
// handleStepAlarm/handlePulseAlarm/handleBeamAlarm below.
func (h *HAL) Attach(core *motion.Core) { h.core = core }

// UsePIOSteps switches step output and pulse shaping from plain GPIO +
// ALARM1 to a PIOStepHAL on the given PIO block, for boards that need the
// tighter pulse-width jitter PIO buys over a software one-shot timer.
func (h *HAL) UsePIOSteps(pioNum uint8, pulseMicroseconds, pioClockHz uint32) {
	h.steps = NewPIOStepHAL(pioNum, h.pins, pulseMicroseconds, pioClockHz)
}

func (h *HAL) handleStepAlarm() {
	intr.Set(alarmBitStep)
	if h.core != nil {
		h.core.StepISR()
	}
	if period := h.stepPeriodUs.Load(); period > 0 {
		alarm0.Set(GetHardwareTime() + period)
	}
}

func (h *HAL) handlePulseAlarm() {
	intr.Set(alarmBitPulse)
	if h.core != nil {
		h.core.PulseShaperFired()
	}
}

func (h *HAL) handleBeamAlarm() {
	intr.Set(alarmBitBeam)
	if h.core != nil {
		h.core.BeamPulseFired()
	}
}

// --- StepOutputHAL ---

func (h *HAL) SetDirectionBits(bits uint8) {
	if h.steps != nil {
		h.steps.SetDirectionBits(bits)
		return
	}
	h.pins.DirX.Set(bits&motion.DirBitX != 0)
	h.pins.DirY.Set(bits&motion.DirBitY != 0)
	h.pins.DirZ.Set(bits&motion.DirBitZ != 0)
}

func (h *HAL) SetStepBits(bits uint8) {
	if h.steps != nil {
		h.steps.SetStepBits(bits)
		return
	}
	if bits&motion.StepBitX != 0 {
		h.pins.StepX.High()
	}
	if bits&motion.StepBitY != 0 {
		h.pins.StepY.High()
	}
	if bits&motion.StepBitZ != 0 {
		h.pins.StepZ.High()
	}
}

func (h *HAL) ResetStepBits(bits uint8) {
	if h.steps != nil {
		h.steps.ResetStepBits(bits)
		return
	}
	if bits&motion.StepBitX != 0 {
		h.pins.StepX.Low()
	}
	if bits&motion.StepBitY != 0 {
		h.pins.StepY.Low()
	}
	if bits&motion.StepBitZ != 0 {
		h.pins.StepZ.Low()
	}
}

// --- StepTimerHAL ---

// ProgramStepTimer stores the period in microseconds (ceiling times the
// prescaler tier's divisor) and arms ALARM0 for the next tick.
func (h *HAL) ProgramStepTimer(prescaler uint8, ceiling uint16) {
	period := uint32(ceiling)
	if shifts := [...]uint8{0, 3, 6, 8, 10}; int(prescaler) < len(shifts) {
		period <<= shifts[prescaler]
	}
	h.stepPeriodUs.Store(period)
	alarm0.Set(GetHardwareTime() + period)
}

func (h *HAL) EnableStepTimer(enabled bool) {
	if enabled {
		inte.SetBits(alarmBitStep)
	} else {
		inte.ClearBits(alarmBitStep)
	}
}

// --- PulseShaperHAL ---

func (h *HAL) ArmPulseReset(cycles uint32) {
	if h.steps != nil {
		h.steps.ArmPulseReset(cycles)
		return
	}
	alarm1.Set(GetHardwareTime() + cycles)
	inte.SetBits(alarmBitPulse)
}

// --- LaserHAL ---

func (h *HAL) SetLaserPWM(value uint8) {
	h.pwm.SetDutyCycle(h.pins.LaserPWM, value)
}

func (h *HAL) ArmBeamPulse(cycles uint32) {
	alarm2.Set(GetHardwareTime() + cycles)
	inte.SetBits(alarmBitBeam)
}

// --- LimitSenseHAL ---

func (h *HAL) ReadLimitBits() uint8 {
	var bits uint8
	if h.pins.LimitX1.Get() {
		bits |= motion.LimitBitX1
	}
	if h.pins.LimitX2.Get() {
		bits |= motion.LimitBitX2
	}
	if h.pins.LimitY1.Get() {
		bits |= motion.LimitBitY1
	}
	if h.pins.LimitY2.Get() {
		bits |= motion.LimitBitY2
	}
	if h.pins.LimitZ1.Get() {
		bits |= motion.LimitBitZ1
	}
	if h.pins.LimitZ2.Get() {
		bits |= motion.LimitBitZ2
	}
	return bits
}

// --- InterlockSenseHAL ---

func (h *HAL) DoorOpen() bool   { return h.pins.Door.Get() }
func (h *HAL) ChillerOff() bool { return h.pins.Chiller.Get() }

// --- DelayHAL (HomingHAL) ---

func (h *HAL) DelayMicroseconds(us uint32) {
	target := GetHardwareTime() + us
	for GetHardwareTime() < target {
	}
}

var _ motion.CoreHAL = (*HAL)(nil)
