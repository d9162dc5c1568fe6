package motion

// timerTier is one (prescaler, shift) rung of the ladder the Timer
// Controller climbs looking for the smallest prescaler under which the
// requested cycle count still fits a 16-bit ceiling register. Grounded on
// original stepper.c's config_step_timer (lines 537-572): each tier's shift
// is chosen so it covers exactly the cycle range the tier below it cannot
// represent in 16 bits.
type timerTier struct {
	prescaler uint8  // hardware prescaler select value handed to StepTimerHAL.ProgramStepTimer
	divisor   uint32 // 1, 8, 64, 256, 1024
	shift     uint8  // log2(divisor)
}

var timerTiers = [5]timerTier{
	{prescaler: 0, divisor: 1, shift: 0},
	{prescaler: 1, divisor: 8, shift: 3},
	{prescaler: 2, divisor: 64, shift: 6},
	{prescaler: 3, divisor: 256, shift: 8},
	{prescaler: 4, divisor: 1024, shift: 10},
}

const maxCeiling = 0xFFFF

// TimerController owns prescaler/ceiling selection for the step-event
// hardware timer and programs it through StepTimerHAL.
type TimerController struct {
	hal StepTimerHAL
}

// NewTimerController constructs a controller that programs timer state
// through hal.
func NewTimerController(hal StepTimerHAL) *TimerController {
	return &TimerController{hal: hal}
}

// Configure selects the smallest prescaler under which cycles fits a
// 16-bit ceiling, programs the hardware timer, and returns the actually
// achieved period in cycles (spec.md §4.1). If even the slowest prescaler
// (1024) cannot represent cycles, the ceiling and prescaler are clamped to
// their maximum (slowest possible period) rather than erroring — spec.md
// §7 calls this "timer saturation", recovered locally, never an error.
func (tc *TimerController) Configure(cycles uint32) uint32 {
	for _, tier := range timerTiers {
		ceiling := cycles >> tier.shift
		if ceiling <= maxCeiling {
			tc.hal.ProgramStepTimer(tier.prescaler, uint16(ceiling))
			return ceiling * tier.divisor
		}
	}

	slowest := timerTiers[len(timerTiers)-1]
	tc.hal.ProgramStepTimer(slowest.prescaler, maxCeiling)
	return maxCeiling * slowest.divisor
}
