// Package simhal provides deterministic, in-memory doubles for
// motion.CoreHAL, motion.Planner, motion.RasterSource, motion.SerialControl
// and motion.AssistControl, for use in tests and the benchtop demo binary.
// Grounded on gopper's host-side mock drivers pattern (core/gpio_test.go's
// fake GPIODriver).
package simhal

import "lasermotion/motion"

// Sim is a single in-memory stand-in for a real stepper/laser board. It
// records every HAL call it receives so tests can assert on exact
// sequences, and lets a test drive limit/interlock inputs directly.
type Sim struct {
	DirectionBits uint8
	StepBits      uint8

	StepTimerEnabled   bool
	StepTimerPrescaler uint8
	StepTimerCeiling   uint16

	PulseResetArmed  bool
	PulseResetCycles uint32

	LaserPWM        uint8
	BeamPulseArmed  bool
	BeamPulseCycles uint32

	LimitBits    uint8
	DoorIsOpen   bool
	ChillerIsOff bool

	StepCallLog []StepCall
}

// StepCall records one SetStepBits/ResetStepBits invocation, newest last.
type StepCall struct {
	Set  bool // true: SetStepBits, false: ResetStepBits
	Bits uint8
}

// New returns a freshly zeroed Sim.
func New() *Sim {
	return &Sim{}
}

func (s *Sim) SetDirectionBits(bits uint8) { s.DirectionBits = bits }

func (s *Sim) SetStepBits(bits uint8) {
	s.StepBits |= bits
	s.StepCallLog = append(s.StepCallLog, StepCall{Set: true, Bits: bits})
}

func (s *Sim) ResetStepBits(bits uint8) {
	s.StepBits &^= bits
	s.StepCallLog = append(s.StepCallLog, StepCall{Set: false, Bits: bits})
}

func (s *Sim) ProgramStepTimer(prescaler uint8, ceiling uint16) {
	s.StepTimerPrescaler = prescaler
	s.StepTimerCeiling = ceiling
}

func (s *Sim) EnableStepTimer(enabled bool) { s.StepTimerEnabled = enabled }

func (s *Sim) ArmPulseReset(cycles uint32) {
	s.PulseResetArmed = true
	s.PulseResetCycles = cycles
}

func (s *Sim) SetLaserPWM(value uint8) { s.LaserPWM = value }

func (s *Sim) ArmBeamPulse(cycles uint32) {
	s.BeamPulseArmed = true
	s.BeamPulseCycles = cycles
}

func (s *Sim) ReadLimitBits() uint8 { return s.LimitBits }

func (s *Sim) DoorOpen() bool   { return s.DoorIsOpen }
func (s *Sim) ChillerOff() bool { return s.ChillerIsOff }

// DelayMicroseconds is a no-op: simulated time doesn't need to actually
// pass for the Homing Controller's loop logic to be exercised.
func (s *Sim) DelayMicroseconds(us uint32) {}

var _ motion.CoreHAL = (*Sim)(nil)

// FixedPlanner is a motion.Planner double that serves a preloaded slice of
// blocks, one CurrentBlock()/DiscardCurrentBlock() pair at a time.
type FixedPlanner struct {
	Blocks     []*motion.Block
	idx        int
	ResetCount int
}

func (p *FixedPlanner) CurrentBlock() (*motion.Block, bool) {
	if p.idx >= len(p.Blocks) {
		return nil, false
	}
	return p.Blocks[p.idx], true
}

func (p *FixedPlanner) DiscardCurrentBlock() {
	if p.idx < len(p.Blocks) {
		p.idx++
	}
}

func (p *FixedPlanner) ResetBlockBuffer() {
	p.idx = len(p.Blocks)
	p.ResetCount++
}

var _ motion.Planner = (*FixedPlanner)(nil)

// RasterBytes is a motion.RasterSource double serving a fixed byte slice.
type RasterBytes struct {
	Bytes       []byte
	idx         int
	ConsumeHits int
}

func (r *RasterBytes) ReadByte() (byte, bool) {
	if r.idx >= len(r.Bytes) {
		return 0, false
	}
	b := r.Bytes[r.idx]
	r.idx++
	return b, true
}

func (r *RasterBytes) ConsumeRemaining() {
	r.idx = len(r.Bytes)
	r.ConsumeHits++
}

var _ motion.RasterSource = (*RasterBytes)(nil)

// SerialStop is a motion.SerialControl double recording whether Stop was
// called.
type SerialStop struct {
	Stopped bool
}

func (s *SerialStop) Stop() { s.Stopped = true }

var _ motion.SerialControl = (*SerialStop)(nil)

// Assist is a motion.AssistControl double recording the last commanded
// state of each output.
type Assist struct {
	Air, Aux1, Aux2 bool
}

func (a *Assist) SetAirAssist(on bool)  { a.Air = on }
func (a *Assist) SetAux1Assist(on bool) { a.Aux1 = on }
func (a *Assist) SetAux2Assist(on bool) { a.Aux2 = on }

var _ motion.AssistControl = (*Assist)(nil)
