package motion

// BresenhamDistributor distributes step pulses across the three axes for
// one step event, drives direction/step outputs, and updates the absolute
// step-counted position. Grounded on original stepper.c's per-event
// bresenham block (lines 350-384).
type BresenhamDistributor struct {
	hal StepOutputHAL
	cfg Config
}

// NewBresenhamDistributor constructs a distributor driving pins through hal.
func NewBresenhamDistributor(hal StepOutputHAL, cfg Config) *BresenhamDistributor {
	return &BresenhamDistributor{hal: hal, cfg: cfg}
}

// SeedCounters initializes the Bresenham accumulators for a fresh block,
// per spec.md §3: each stays in (-stepEventCount, stepEventCount].
func SeedCounters(st *MotionState, stepEventCount uint32) {
	mid := -int64(stepEventCount / 2)
	st.CounterX = mid
	st.CounterY = mid
	st.CounterZ = mid
}

// Step forms out_bits from the block's direction bits, steps each axis
// whose accumulator crosses zero, updates pos, and drives the direction
// and step pins in that order (spec.md §4.4 and §5 ordering requirement).
// It returns the out_bits actually latched (after the invert mask), for
// the Pulse Shaper to later restore.
func (d *BresenhamDistributor) Step(b *Block, st *MotionState, pos *Position) uint8 {
	stepEventCount := int64(b.StepEventCount())
	outBits := b.DirectionBits

	st.CounterX += b.StepsX
	if st.CounterX > 0 {
		outBits |= StepBitX
		st.CounterX -= stepEventCount
		if outBits&DirBitX != 0 {
			pos.X--
		} else {
			pos.X++
		}
	}

	st.CounterY += b.StepsY
	if st.CounterY > 0 {
		outBits |= StepBitY
		st.CounterY -= stepEventCount
		if outBits&DirBitY != 0 {
			pos.Y--
		} else {
			pos.Y++
		}
	}

	st.CounterZ += b.StepsZ
	if st.CounterZ > 0 {
		outBits |= StepBitZ
		st.CounterZ -= stepEventCount
		if outBits&DirBitZ != 0 {
			pos.Z--
		} else {
			pos.Z++
		}
	}

	outBits ^= d.cfg.InvertMask
	st.OutBits = outBits

	d.hal.SetDirectionBits(outBits & (DirBitX | DirBitY | DirBitZ))
	d.hal.SetStepBits(outBits & (StepBitX | StepBitY | StepBitZ))

	return outBits
}
