package motion

// SpeedProfileExecutor integrates a block's trapezoidal velocity profile
// across its step events, reprogramming the step timer and refreshing beam
// dimming on every rate change. Grounded on original stepper.c's
// adjust_speed and the phase logic inlined in the main ISR (lines 386-470).
type SpeedProfileExecutor struct {
	cfg   Config
	timer *TimerController
	tick  *AccelerationTicker
	beam  *BeamModulator
}

// NewSpeedProfileExecutor constructs an executor sharing the core's timer
// controller, acceleration ticker and beam modulator.
func NewSpeedProfileExecutor(cfg Config, timer *TimerController, tick *AccelerationTicker, beam *BeamModulator) *SpeedProfileExecutor {
	return &SpeedProfileExecutor{cfg: cfg, timer: timer, tick: tick, beam: beam}
}

// InitRate sets the block's initial_rate as the starting commanded rate,
// seeds the acceleration ticker at its midpoint, and programs the step
// timer. Called once when a new motion block is loaded (spec.md §4.7 step
// 7).
func (e *SpeedProfileExecutor) InitRate(block *Block, st *MotionState) {
	e.tick.ResetMidpoint()
	e.setRate(block.InitialRate, block, st)
}

// Apply advances the trapezoidal profile by one step event, after
// step_events_completed has already been incremented for this event
// (spec.md §4.3). The four phases are mutually exclusive and exhaustive
// because the planner guarantees accelerate_until <= decelerate_after.
func (e *SpeedProfileExecutor) Apply(block *Block, st *MotionState) {
	switch {
	case st.StepEventsCompleted < block.AccelerateUntil:
		e.phaseAccelerate(block, st)
	case st.StepEventsCompleted < block.DecelerateAfter:
		e.phaseCruise(block, st)
	case st.StepEventsCompleted == block.DecelerateAfter:
		e.tick.ResetMidpoint()
	default:
		e.phaseDecelerate(block, st)
	}
}

func (e *SpeedProfileExecutor) phaseAccelerate(block *Block, st *MotionState) {
	if !e.tick.Tick(st.CyclesPerStepEvent) {
		return
	}
	rate := st.AdjustedRate + block.RateDelta
	if rate > block.NominalRate {
		rate = block.NominalRate
	}
	e.setRate(rate, block, st)
}

func (e *SpeedProfileExecutor) phaseCruise(block *Block, st *MotionState) {
	if st.AdjustedRate != block.NominalRate {
		e.setRate(block.NominalRate, block, st)
	}
}

func (e *SpeedProfileExecutor) phaseDecelerate(block *Block, st *MotionState) {
	if !e.tick.Tick(st.CyclesPerStepEvent) {
		return
	}
	var rate uint32
	if st.AdjustedRate > block.RateDelta {
		rate = st.AdjustedRate - block.RateDelta
	}
	if rate < block.FinalRate {
		rate = block.FinalRate
	}
	e.setRate(rate, block, st)
}

// setRate commits a new commanded rate: clamps to the configured floor,
// reprograms the step timer, and refreshes beam dimming for non-raster
// blocks (raster intensity is driven by pixel sampling instead, spec.md
// §4.6).
func (e *SpeedProfileExecutor) setRate(rate uint32, block *Block, st *MotionState) {
	if rate < e.cfg.MinimumStepsPerMinute {
		rate = e.cfg.MinimumStepsPerMinute
	}
	st.AdjustedRate = rate
	st.CyclesPerStepEvent = e.timer.Configure(uint32(e.cfg.CyclesPerMinute() / uint64(rate)))
	if block.Type != BlockRasterLine {
		e.beam.AdjustDimming(rate, block)
	}
}
