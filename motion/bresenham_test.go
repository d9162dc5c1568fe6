package motion

import "testing"

type fakeStepOutputHAL struct {
	dirBits, stepBits uint8
	resetLog          []uint8
}

func (f *fakeStepOutputHAL) SetDirectionBits(bits uint8) { f.dirBits = bits }
func (f *fakeStepOutputHAL) SetStepBits(bits uint8)      { f.stepBits = bits }
func (f *fakeStepOutputHAL) ResetStepBits(bits uint8)    { f.resetLog = append(f.resetLog, bits) }

func TestSeedCountersMidpoint(t *testing.T) {
	var st MotionState
	SeedCounters(&st, 10)
	if st.CounterX != -5 || st.CounterY != -5 || st.CounterZ != -5 {
		t.Errorf("expected all counters at -5, got x=%d y=%d z=%d", st.CounterX, st.CounterY, st.CounterZ)
	}
}

func TestBresenhamPureXLine(t *testing.T) {
	hal := &fakeStepOutputHAL{}
	d := NewBresenhamDistributor(hal, Config{})

	b := &Block{StepsX: 10, StepsY: 0, StepsZ: 0}
	var st MotionState
	var pos Position
	SeedCounters(&st, b.StepEventCount())

	xPulses := 0
	for i := 0; i < int(b.StepEventCount()); i++ {
		out := d.Step(b, &st, &pos)
		if out&StepBitX != 0 {
			xPulses++
		}
		if out&(StepBitY|StepBitZ) != 0 {
			t.Fatalf("pure X line stepped Y or Z at event %d: out_bits=%#x", i, out)
		}
		if st.CounterX <= -int64(b.StepEventCount()) || st.CounterX > int64(b.StepEventCount()) {
			t.Fatalf("counter_x out of bounds at event %d: %d", i, st.CounterX)
		}
	}
	if xPulses != 10 {
		t.Errorf("expected 10 X pulses, got %d", xPulses)
	}
	if pos.X != 10 {
		t.Errorf("expected position_x advanced by 10, got %d", pos.X)
	}
}

func TestBresenhamDiagonal3x4(t *testing.T) {
	hal := &fakeStepOutputHAL{}
	d := NewBresenhamDistributor(hal, Config{})

	b := &Block{StepsX: 3, StepsY: 4, StepsZ: 0}
	var st MotionState
	var pos Position
	SeedCounters(&st, b.StepEventCount())

	xPulses, yPulses := 0, 0
	for i := 0; i < int(b.StepEventCount()); i++ {
		out := d.Step(b, &st, &pos)
		if out&StepBitX != 0 {
			xPulses++
		}
		if out&StepBitY != 0 {
			yPulses++
		}
	}
	if xPulses != 3 {
		t.Errorf("expected 3 X pulses, got %d", xPulses)
	}
	if yPulses != 4 {
		t.Errorf("expected 4 Y pulses, got %d", yPulses)
	}
	if pos.X != 3 || pos.Y != 4 {
		t.Errorf("expected position (3,4), got (%d,%d)", pos.X, pos.Y)
	}
}

func TestBresenhamAppliesInvertMask(t *testing.T) {
	hal := &fakeStepOutputHAL{}
	cfg := Config{InvertMask: StepBitX}
	d := NewBresenhamDistributor(hal, cfg)

	b := &Block{StepsX: 1, StepsY: 0, StepsZ: 0}
	var st MotionState
	var pos Position
	SeedCounters(&st, b.StepEventCount())

	out := d.Step(b, &st, &pos)
	if out&StepBitX != 0 {
		t.Errorf("expected the invert mask to clear X's step bit in out_bits, got %#x", out)
	}
	if hal.stepBits&StepBitX != 0 {
		t.Errorf("expected HAL to see X's step bit cleared by the invert mask, got %#x", hal.stepBits)
	}
}

func TestBresenhamDirectionSign(t *testing.T) {
	hal := &fakeStepOutputHAL{}
	d := NewBresenhamDistributor(hal, Config{})

	b := &Block{StepsX: 1, DirectionBits: DirBitX} // reverse direction on X
	var st MotionState
	var pos Position
	SeedCounters(&st, b.StepEventCount())

	d.Step(b, &st, &pos)
	if pos.X != -1 {
		t.Errorf("expected position_x to decrement on reverse direction, got %d", pos.X)
	}
}
