package motion

import "sync/atomic"

// Planner is the upstream block-queue collaborator (spec.md §6,
// planner_get_current_block / planner_discard_current_block /
// planner_reset_block_buffer). The core only ever peeks and pops; it never
// owns block storage.
type Planner interface {
	CurrentBlock() (*Block, bool)
	DiscardCurrentBlock()
	ResetBlockBuffer()
}

// RasterSource is the serial transport's raster byte stream collaborator
// (spec.md §6, serial_raster_read / serial_consume_data). ReadByte is only
// ever called from inside a raster block's cruise phase, under a critical
// section, matching spec.md §5's torn-read protection.
type RasterSource interface {
	ReadByte() (byte, bool)
	ConsumeRemaining()
}

// SerialControl lets the core instruct the serial transport to stop
// accepting further data (spec.md §6, serial_stop), called when a stop is
// requested.
type SerialControl interface {
	Stop()
}

// AssistControl drives the digital assist outputs for the toggle-command
// block types. Grounded the same way HAL's StepOutputHAL is: a thin port
// around GPIO the core never owns, but named separately from HAL because
// spec.md §6 lists control_air_assist/aux1/aux2 as external collaborators
// distinct from the hardware the core drives directly every step event.
type AssistControl interface {
	SetAirAssist(on bool)
	SetAux1Assist(on bool)
	SetAux2Assist(on bool)
}

// CoreHAL is everything a concrete platform must implement to back a Core:
// the step-ISR hardware surface (HAL) plus the homing-only surface
// (HomingHAL). A single hardware target satisfies both, since homing and
// the step ISR ultimately drive the same step/dir/limit pins; they are
// kept as separate interfaces because they're never invoked from the same
// execution context (spec.md §5).
type CoreHAL interface {
	HAL
	HomingHAL
}

// Core is the single-owner motion-core value: the step ISR plus the
// component wiring spec.md §2 lists as components 1-6, invoked from a
// hardware-timer ISR trampoline. All mutation of its fields happens either
// from StepISR (single-threaded with itself via busy) or, for Supervisor
// fields, from atomics safe to touch from the foreground concurrently.
// Grounded on gopper's core/stepper.go single-owner Stepper value invoked
// from ISR trampolines (core/interrupt_*.go).
type Core struct {
	cfg Config
	hal CoreHAL

	planner Planner
	raster  RasterSource
	serial  SerialControl
	assist  AssistControl

	timer   *TimerController
	ticker  *AccelerationTicker
	bres    *BresenhamDistributor
	shaper  *PulseShaper
	beam    *BeamModulator
	profile *SpeedProfileExecutor
	homing  *HomingController
	sup     *Supervisor
	Debug   *DebugLog

	busy       atomic.Bool
	processing atomic.Bool

	block *Block
	st    MotionState
	pos   Position
}

// NewCore wires components 1-6 around hal/cfg and the supplied
// collaborators. The caller is responsible for connecting the returned
// Core's StepISR, PulseShaperFired and BeamPulseFired methods to the
// platform's actual hardware interrupt vectors.
func NewCore(hal CoreHAL, cfg Config, planner Planner, raster RasterSource, serial SerialControl, assist AssistControl) *Core {
	beam := NewBeamModulator(hal, cfg)
	timer := NewTimerController(hal)
	c := &Core{
		cfg:     cfg,
		hal:     hal,
		planner: planner,
		raster:  raster,
		serial:  serial,
		assist:  assist,
		timer:   timer,
		ticker:  NewAccelerationTicker(cfg.CyclesPerAccelerationTick()),
		bres:    NewBresenhamDistributor(hal, cfg),
		shaper:  NewPulseShaper(hal, hal, cfg),
		beam:    beam,
		homing:  NewHomingController(hal, cfg),
		sup:     NewSupervisor(),
		Debug:   NewDebugLog(),
	}
	c.profile = NewSpeedProfileExecutor(cfg, timer, c.ticker, beam)
	return c
}

// Init configures timers, zeroes position to the configured origin
// offsets, and leaves the core idle (spec.md §6 exposed op init()).
func (c *Core) Init() {
	c.pos = Position{
		X: int64(c.cfg.XOriginOffset * c.cfg.XStepsPerMM),
		Y: int64(c.cfg.YOriginOffset * c.cfg.YStepsPerMM),
		Z: int64(c.cfg.ZOriginOffset * c.cfg.ZStepsPerMM),
	}
	c.st = MotionState{}
	c.block = nil
	c.sup.Resume()
	c.processing.Store(false)
	c.hal.EnableStepTimer(false)
}

// StartProcessing arms the step-event interrupt.
func (c *Core) StartProcessing() {
	c.processing.Store(true)
	c.hal.EnableStepTimer(true)
}

// StopProcessing disarms the step-event interrupt.
func (c *Core) StopProcessing() {
	c.hal.EnableStepTimer(false)
	c.processing.Store(false)
}

// Processing reports whether the step-event interrupt is currently armed.
func (c *Core) Processing() bool {
	return c.processing.Load()
}

// RequestStop latches status (idempotently, via Supervisor) and performs
// the side effects spec.md §4.9 attaches to a stop request: instructing the
// serial transport to stop receiving. It deliberately does not disarm the
// step timer itself: the timer stays armed so the next Step ISR entry
// observes stop_requested at step 3 and disarms/flushes there, matching
// original stepper_request_stop (stepper.c:159-165).
func (c *Core) RequestStop(status StopStatus) {
	c.sup.RequestStop(status)
	if c.serial != nil {
		c.serial.Stop()
	}
	c.Debug.RecordTiming(EvtStopRequested, c.st.CyclesPerStepEvent, uint32(status), 0)
}

// StopStatus, StopRequested and StopResume expose the Supervisor (spec.md
// §6).
func (c *Core) StopStatus() StopStatus { return c.sup.StopStatus() }
func (c *Core) StopRequested() bool    { return c.sup.StopRequested() }
func (c *Core) StopResume()            { c.sup.Resume() }

// GetPositionX/Y/Z convert the absolute step-counted position to
// millimetres (spec.md §6).
func (c *Core) GetPositionX() float64 { return float64(c.pos.X) / c.cfg.XStepsPerMM }
func (c *Core) GetPositionY() float64 { return float64(c.pos.Y) / c.cfg.YStepsPerMM }
func (c *Core) GetPositionZ() float64 { return float64(c.pos.Z) / c.cfg.ZStepsPerMM }

// SetPosition overwrites the absolute position from millimetre coordinates
// (spec.md §6). Only safe to call while Processing() is false.
func (c *Core) SetPosition(x, y, z float64) {
	c.pos = Position{
		X: int64(x * c.cfg.XStepsPerMM),
		Y: int64(y * c.cfg.YStepsPerMM),
		Z: int64(z * c.cfg.ZStepsPerMM),
	}
}

// StepISR is the step-event timer's ISR trampoline target: a
// single-entry, reentrancy-guarded routine implementing spec.md §4.7's
// ten-step sequence.
func (c *Core) StepISR() {
	if !c.busy.CompareAndSwap(false, true) { // steps 1-2
		return
	}
	defer c.busy.Store(false) // step 10

	if c.sup.StopRequested() { // step 3
		c.StopProcessing()
		c.planner.ResetBlockBuffer()
		return
	}

	if c.checkInterlocks() { // step 4
		return
	}

	c.beam.PulseOnStepEvent(&c.st) // step 5

	if c.block == nil { // step 6
		block, ok := c.planner.CurrentBlock()
		if !ok {
			c.StopProcessing()
			return
		}
		c.block = block
		c.loadBlock(block) // step 7
		c.Debug.RecordTiming(EvtBlockLoaded, c.st.CyclesPerStepEvent, uint32(block.Type), 0)
	}

	c.dispatch(c.block) // step 8, step 9 interleaved within dispatch

	if c.cfg.EnableLaserInterlocks && (c.hal.DoorOpen() || c.hal.ChillerOff()) {
		c.beam.SetIntensity(0) // keep step 4's cut: a block load or rate change in step 8 may have raised it again
	}

	c.Debug.RecordTiming(EvtStepISR, c.st.CyclesPerStepEvent, c.st.StepEventsCompleted, 0)
}

// checkInterlocks implements spec.md §4.7 step 4. Door/chiller interlocks
// cut laser intensity without requesting a stop (spec.md §9 open question:
// left as documented, not re-derived); limit-switch assertion requests an
// immediate stop.
func (c *Core) checkInterlocks() bool {
	if !c.cfg.EnableLaserInterlocks {
		return false
	}
	if c.hal.DoorOpen() || c.hal.ChillerOff() {
		c.beam.SetIntensity(0)
		c.Debug.RecordTiming(EvtInterlockTrip, c.st.CyclesPerStepEvent, 0, 0)
	}

	limits := c.hal.ReadLimitBits()
	switch {
	case limits&LimitBitX1 != 0:
		c.RequestStop(StopLimitHitX1)
	case limits&LimitBitX2 != 0:
		c.RequestStop(StopLimitHitX2)
	case limits&LimitBitY1 != 0:
		c.RequestStop(StopLimitHitY1)
	case limits&LimitBitY2 != 0:
		c.RequestStop(StopLimitHitY2)
	case c.cfg.Enable3Axes && limits&LimitBitZ1 != 0:
		c.RequestStop(StopLimitHitZ1)
	case c.cfg.Enable3Axes && limits&LimitBitZ2 != 0:
		c.RequestStop(StopLimitHitZ2)
	default:
		return false
	}
	return true
}

// loadBlock implements spec.md §4.7 step 7: initialize state for a freshly
// popped motion block. Non-motion (assist-toggle) blocks need none of
// this, only the dispatch in step 8.
func (c *Core) loadBlock(block *Block) {
	if !block.Type.IsMotion() {
		return
	}
	c.st.StepEventsCompleted = 0
	SeedCounters(&c.st, block.StepEventCount())
	c.profile.InitRate(block, &c.st)
	if block.Type == BlockRasterLine {
		c.beam.SetIntensity(0)
	}
}

// dispatch implements spec.md §4.7 step 8: run the Bresenham distributor
// and speed profile for motion blocks, or the one-shot GPIO setter for
// assist-toggle blocks, then discard on completion.
func (c *Core) dispatch(block *Block) {
	if !block.Type.IsMotion() {
		c.dispatchAssist(block.Type)
		c.planner.DiscardCurrentBlock()
		c.block = nil
		return
	}

	c.bres.Step(block, &c.st, &c.pos)
	c.shaper.Arm(c.cfg.PulseMicroseconds) // step 9: nested interrupts may now preempt for the pulse reset

	c.st.StepEventsCompleted++

	if block.Type == BlockRasterLine {
		c.applyRasterIntensity(block)
	}

	c.profile.Apply(block, &c.st)

	if c.st.StepEventsCompleted == block.StepEventCount() {
		if block.Type == BlockRasterLine && c.raster != nil {
			c.raster.ConsumeRemaining()
		}
		c.planner.DiscardCurrentBlock()
		c.block = nil
	}
}

// applyRasterIntensity implements spec.md §4.6's raster-mode cruise
// sampling: every pixel_steps step events, consume one byte from the
// raster stream under a critical section and set intensity from it.
// Outside cruise (accel/decel), intensity is held at 0. Uses
// the same cruise-phase boundary as the Speed Profile Executor's Phase B
// (spec.md §4.3): step_events_completed already reflects this event.
func (c *Core) applyRasterIntensity(block *Block) {
	if block.PixelSteps == 0 {
		return
	}
	if c.st.StepEventsCompleted < block.AccelerateUntil || c.st.StepEventsCompleted >= block.DecelerateAfter {
		c.beam.SetIntensity(0)
		return
	}
	if c.st.StepEventsCompleted%block.PixelSteps != 0 {
		return
	}

	state := disableInterrupts()
	raster, ok := c.raster.ReadByte()
	restoreInterrupts(state)
	if !ok {
		return
	}
	c.beam.SampleRasterPixel(raster, block.NominalLaserIntensity)
}

func (c *Core) dispatchAssist(t BlockType) {
	switch t {
	case BlockAirAssistEnable:
		c.assist.SetAirAssist(true)
	case BlockAirAssistDisable:
		c.assist.SetAirAssist(false)
	case BlockAux1Enable:
		c.assist.SetAux1Assist(true)
	case BlockAux1Disable:
		c.assist.SetAux1Assist(false)
	case BlockAux2Enable:
		c.assist.SetAux2Assist(true)
	case BlockAux2Disable:
		c.assist.SetAux2Assist(false)
	}
}

// HomingCycle runs the blocking dual-pass homing routine (spec.md §6
// exposed op homing_cycle()). Only safe to call while Processing() is
// false: it drives step/dir pins directly on the foreground, outside the
// step timer interrupt (spec.md §5).
func (c *Core) HomingCycle() {
	c.homing.HomingCycle(&c.pos)
}

// PulseShaperFired is the pulse-reset one-shot's ISR trampoline target.
func (c *Core) PulseShaperFired() { c.shaper.ShaperFired() }

// BeamPulseFired is the beam one-shot's ISR trampoline target.
func (c *Core) BeamPulseFired() { c.beam.BeamPulseFired() }
