package motion

import "testing"

func newTestExecutor() (*SpeedProfileExecutor, *fakeStepTimerHAL, *fakeLaserHAL) {
	timerHAL := &fakeStepTimerHAL{}
	laserHAL := &fakeLaserHAL{}
	cfg := Config{FCPU: 16_000_000, MinimumStepsPerMinute: 1000, AccelerationTicksPerSecond: 100}
	timer := NewTimerController(timerHAL)
	beam := NewBeamModulator(laserHAL, cfg)
	tick := NewAccelerationTicker(cfg.CyclesPerAccelerationTick())
	return NewSpeedProfileExecutor(cfg, timer, tick, beam), timerHAL, laserHAL
}

func TestSpeedProfileTrapezoid(t *testing.T) {
	e, _, _ := newTestExecutor()
	// 90 ticks of 600 separate 6000 and 60000; one 10ms tick passes about
	// every 5 events near 6000 spm, so each ramp needs ~490 of the events.
	block := &Block{
		StepsX:          1000,
		InitialRate:     6000,
		NominalRate:     60000,
		FinalRate:       6000,
		RateDelta:       600,
		AccelerateUntil: 500,
		DecelerateAfter: 500,
	}
	var st MotionState
	e.InitRate(block, &st)

	if st.AdjustedRate != block.InitialRate {
		t.Fatalf("expected initial rate %d, got %d", block.InitialRate, st.AdjustedRate)
	}

	prev := st.AdjustedRate
	sawNominal := false
	for i := uint32(1); i <= block.StepEventCount(); i++ {
		st.StepEventsCompleted = i
		e.Apply(block, &st)

		if st.AdjustedRate > block.NominalRate {
			t.Fatalf("rate exceeded nominal at event %d: %d", i, st.AdjustedRate)
		}
		if i <= block.AccelerateUntil && st.AdjustedRate < prev {
			t.Fatalf("rate decreased during acceleration phase at event %d", i)
		}
		if st.AdjustedRate == block.NominalRate {
			sawNominal = true
		}
		prev = st.AdjustedRate
	}

	if !sawNominal {
		t.Error("expected the rate to reach nominal_rate at some point")
	}
	if st.AdjustedRate != block.FinalRate {
		t.Errorf("expected final rate %d at block end, got %d", block.FinalRate, st.AdjustedRate)
	}
}

func TestSpeedProfileConstantRateBlock(t *testing.T) {
	e, timerHAL, _ := newTestExecutor()
	block := &Block{
		StepsX:          10,
		InitialRate:     60000,
		NominalRate:     60000,
		FinalRate:       60000,
		RateDelta:       0,
		AccelerateUntil: 0,
		DecelerateAfter: 10,
	}
	var st MotionState
	e.InitRate(block, &st)
	reconfigures := 1 // the InitRate call itself

	for i := uint32(1); i <= block.StepEventCount(); i++ {
		before := timerHAL.ceiling
		st.StepEventsCompleted = i
		e.Apply(block, &st)
		if timerHAL.ceiling != before {
			reconfigures++
		}
	}

	if reconfigures != 1 {
		t.Errorf("expected no reprogramming beyond the initial one for a constant-rate block, saw %d total configures", reconfigures)
	}
}

func TestSpeedProfileSkipsPhaseAWhenAccelerateUntilZero(t *testing.T) {
	e, _, _ := newTestExecutor()
	block := &Block{
		StepsX:          10,
		InitialRate:     60000,
		NominalRate:     60000,
		FinalRate:       6000,
		RateDelta:       1000,
		AccelerateUntil: 0,
		DecelerateAfter: 10,
	}
	var st MotionState
	e.InitRate(block, &st)

	st.StepEventsCompleted = 1
	e.Apply(block, &st) // should land straight in cruise, snapping to nominal (already there)

	if st.AdjustedRate != block.NominalRate {
		t.Errorf("expected rate to stay at nominal with accelerate_until=0, got %d", st.AdjustedRate)
	}
}
