package motion

// HAL is the minimal hardware-abstraction surface the core needs, split
// into small per-concern ports so a platform only has to implement what it
// actually has (a board without Z, for instance, still implements all of
// these — Config.Enable3Axes gates Z homing and the Z limit checks, while
// the Bresenham distributor steps Z whenever a block has Z steps — but a test
// double only needs to record calls). Grounded on gopper's
// GPIODriver/PWMDriver/StepperBackend split (core/gpio_hal.go,
// core/pwm_hal.go, core/stepper_hal.go): one focused interface per
// hardware concern, injected rather than reached for through a package
// singleton, so the core stays constructible with a fresh double per test.
type HAL interface {
	StepOutputHAL
	StepTimerHAL
	PulseShaperHAL
	LaserHAL
	LimitSenseHAL
	InterlockSenseHAL
}

// StepOutputHAL drives the direction and step GPIO lines. Per spec.md §4.4,
// direction pins are written before step pins on every step event.
type StepOutputHAL interface {
	SetDirectionBits(bits uint8)
	SetStepBits(bits uint8)
	ResetStepBits(bits uint8)
}

// StepTimerHAL reprograms the hardware step-event timer. Component 1 (the
// Timer Controller) is the only caller; ProgramStepTimer takes the already
// chosen (prescaler, ceiling) pair.
type StepTimerHAL interface {
	ProgramStepTimer(prescaler uint8, ceiling uint16)
	EnableStepTimer(enabled bool)
}

// PulseShaperHAL arms the one-shot timer that restores step pins to idle
// after CONFIG_PULSE_MICROSECONDS (component 5).
type PulseShaperHAL interface {
	ArmPulseReset(cycles uint32)
}

// LaserHAL controls beam intensity and the one-shot beam-pulse timer
// (component 6).
type LaserHAL interface {
	SetLaserPWM(value uint8)
	ArmBeamPulse(cycles uint32)
}

// LimitSenseHAL reads the raw limit-switch input register, one bit per
// end-stop (X1,X2,Y1,Y2,Z1,Z2 — bit layout fixed by LimitBit*).
type LimitSenseHAL interface {
	ReadLimitBits() uint8
}

// Limit bit positions within the byte ReadLimitBits returns.
const (
	LimitBitX1 uint8 = 1 << iota
	LimitBitX2
	LimitBitY1
	LimitBitY2
	LimitBitZ1
	LimitBitZ2
)

// HomingHAL is the hardware surface the blocking Homing Controller needs:
// raw step/dir output, limit sensing and a calibrated delay. Deliberately
// disjoint from HAL's step-timer and laser ports, which homing never
// touches (spec.md §4.8 runs entirely outside the step timer interrupt).
type HomingHAL interface {
	StepOutputHAL
	LimitSenseHAL
	DelayHAL
}

// DelayHAL busy-waits for a calibrated duration. Only the Homing Controller
// uses it: spec.md §5 notes homing blocks the entire foreground on
// calibrated delays rather than running under the step timer interrupt.
type DelayHAL interface {
	DelayMicroseconds(us uint32)
}

// InterlockSenseHAL reads the safety sense signals consulted when
// Config.EnableLaserInterlocks is set.
type InterlockSenseHAL interface {
	DoorOpen() bool
	ChillerOff() bool
}
