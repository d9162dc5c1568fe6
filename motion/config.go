package motion

// Config holds the compile-time constants of the original firmware
// (spec.md §6 "Configuration constants") as runtime values. The core never
// parses configuration itself — config.md in spec.md §1 lists configuration
// parsing as an out-of-scope external collaborator — it only consumes an
// already-populated Config, the same way gopper's core package never reads
// a file and only ever receives already-decoded values from its caller.
type Config struct {
	FCPU uint32 // CPU clock, Hz

	AccelerationTicksPerSecond uint32 // nominal 100
	MinimumStepsPerMinute      uint32

	PulseMicroseconds uint32 // minimum step-pulse high time

	XStepsPerMM, YStepsPerMM, ZStepsPerMM float64
	XOriginOffset, YOriginOffset, ZOriginOffset float64 // mm

	BeamDynamicsEvery uint32  // step events per laser pulse
	BeamDynamicsStart float64 // [0,1], dimming floor at I=0

	HomingRateStepsPerMinute uint32

	InvertMask uint8 // XOR'd into OutBits before driving step/dir pins

	// Feature flags. spec.md §9 calls for these to be explicit parameters
	// rather than preprocessor conditionals.
	EnableLaserInterlocks bool
	Enable3Axes           bool
	StaticPWMFreq         bool // laser intensity driven by free-running HW PWM; skip per-step pulsing
	LimitActiveHigh       bool // DRIVEBOARD_USB: limit pins read active-high instead of active-low
}

// CyclesPerMinute is CYCLES_PER_MINUTE from the original firmware: the
// number of CPU cycles in one minute, used to convert a steps-per-minute
// rate into a step-event period in cycles.
func (c Config) CyclesPerMinute() uint64 {
	return 60 * uint64(c.FCPU)
}

// CyclesPerAccelerationTick is CYCLES_PER_ACCELERATION_TICK: the nominal
// period, in CPU cycles, between acceleration decisions.
func (c Config) CyclesPerAccelerationTick() uint32 {
	return c.FCPU / c.AccelerationTicksPerSecond
}

// fullOnDutyThreshold is the laser duty value at and above which the beam
// pulse is held fully on (no one-shot timer armed) rather than timed.
// spec.md §9 notes the exact threshold is unexplained in the original and
// left as-is rather than re-derived.
const fullOnDutyThreshold = 242

// overshootCount is the number of additional step pulses a homing axis
// emits after its end-stop first asserts (spec.md §4.8, §8 scenario 6).
const overshootCount = 6
