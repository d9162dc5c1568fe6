// Package motion implements the real-time step-pulse generation and
// motion-execution core of a laser-cutter motion controller: a trapezoidal
// speed profile executor with Bresenham multi-axis step distribution, a
// dynamic step-timer reconfiguration scheme, and beam-intensity modulation
// coupled to instantaneous velocity and raster-pixel position.
package motion

import "fmt"

// BlockType identifies what a queued Block asks the core to do.
type BlockType uint8

const (
	BlockLine BlockType = iota
	BlockRasterLine
	BlockAirAssistEnable
	BlockAirAssistDisable
	BlockAux1Enable
	BlockAux1Disable
	BlockAux2Enable
	BlockAux2Disable
)

func (t BlockType) String() string {
	switch t {
	case BlockLine:
		return "LINE"
	case BlockRasterLine:
		return "RASTER_LINE"
	case BlockAirAssistEnable:
		return "AIR_ASSIST_ENABLE"
	case BlockAirAssistDisable:
		return "AIR_ASSIST_DISABLE"
	case BlockAux1Enable:
		return "AUX1_ENABLE"
	case BlockAux1Disable:
		return "AUX1_DISABLE"
	case BlockAux2Enable:
		return "AUX2_ENABLE"
	case BlockAux2Disable:
		return "AUX2_DISABLE"
	default:
		return fmt.Sprintf("BlockType(%d)", uint8(t))
	}
}

// IsMotion reports whether the block type drives the stepper/Bresenham path
// (LINE, RASTER_LINE) as opposed to a one-shot side-effect command.
func (t BlockType) IsMotion() bool {
	return t == BlockLine || t == BlockRasterLine
}

// Direction bit positions within Block.DirectionBits and MotionState.OutBits.
const (
	DirBitX uint8 = 1 << iota
	DirBitY
	DirBitZ
	StepBitX = 1 << (iota + 2)
	StepBitY
	StepBitZ
)

// Axis indexes into the three-element position/step arrays.
const (
	AxisX = 0
	AxisY = 1
	AxisZ = 2
	NumAxes = 3
)

// Block is a pre-planned motion or command record produced by the upstream
// planner. It is read-only to the core. See spec.md §3.
type Block struct {
	Type BlockType

	// Motion fields, valid when Type.IsMotion().
	StepsX, StepsY, StepsZ int64 // non-negative step counts per axis
	DirectionBits          uint8 // per-axis sign flags (DirBitX|DirBitY|DirBitZ)

	InitialRate      uint32 // steps/minute
	NominalRate      uint32 // steps/minute
	FinalRate        uint32 // steps/minute
	RateDelta        uint32 // steps/minute per acceleration tick
	AccelerateUntil  uint32 // step-event index
	DecelerateAfter  uint32 // step-event index

	NominalLaserIntensity uint8 // [0,255]

	// Raster-only field, valid when Type == BlockRasterLine.
	PixelSteps uint32 // step events per pixel column
}

// StepEventCount is max(StepsX, StepsY, StepsZ), the number of step events
// needed to complete this block's motion.
func (b *Block) StepEventCount() uint32 {
	m := b.StepsX
	if b.StepsY > m {
		m = b.StepsY
	}
	if b.StepsZ > m {
		m = b.StepsZ
	}
	return uint32(m)
}

// StopStatus is the stable stop-reason enumeration surfaced to the protocol
// layer. Zero value is OK (no stop requested / cleared).
type StopStatus uint8

const (
	StopOK StopStatus = iota
	StopLimitHitX1
	StopLimitHitX2
	StopLimitHitY1
	StopLimitHitY2
	StopLimitHitZ1
	StopLimitHitZ2
)

func (s StopStatus) String() string {
	switch s {
	case StopOK:
		return "OK"
	case StopLimitHitX1:
		return "LIMIT_HIT_X1"
	case StopLimitHitX2:
		return "LIMIT_HIT_X2"
	case StopLimitHitY1:
		return "LIMIT_HIT_Y1"
	case StopLimitHitY2:
		return "LIMIT_HIT_Y2"
	case StopLimitHitZ1:
		return "LIMIT_HIT_Z1"
	case StopLimitHitZ2:
		return "LIMIT_HIT_Z2"
	default:
		return fmt.Sprintf("StopStatus(%d)", uint8(s))
	}
}

// Position is the absolute, steps-counted position of the three axes,
// mutated only by the Bresenham Step Distributor.
type Position struct {
	X, Y, Z int64
}

// MotionState is the process-wide state owned by the Motion Core while it
// executes a block. See spec.md §3 for its invariants.
type MotionState struct {
	CounterX, CounterY, CounterZ int64 // Bresenham accumulators

	StepEventsCompleted uint32 // 0..StepEventCount, monotonically non-decreasing
	AdjustedRate        uint32 // steps/minute, MinStepsPerMinute..NominalRate
	CyclesPerStepEvent  uint32 // current step-event period, in clock cycles

	AccelerationTickCounter uint32 // cycles accumulated toward next accel decision
	OutBits                 uint8  // pending direction+step bits for next pulse

	PWMCounter uint32 // beam modulator per-step pulse counter
}
