//go:build rp2040 || rp2350

// pio_step_hal.go generalizes gopper's targets/pio/stepper_pio.go PIO
// assembly program to the laser-motion core's step protocol: instead of
// queuing a whole move (pulse count + inter-pulse delay cycles) into one
// state machine per axis, the Bresenham distributor in motion.Core decides
// on every step event which axes pulse, so PIOStepHAL's program takes a
// single pulse-width argument per push and emits exactly one step pulse of
// that width, then idles for the next push.
package main

import (
	"machine"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"

	"lasermotion/motion"
)

// buildSinglePulseProgram assembles: pull the pulse width, hold the step
// pin high for that many cycles, then drop it low and wrap for the next
// push. Direction is not part of this program; PIOStepHAL drives direction
// pins with plain GPIO the same way HAL does, since only the step edge
// needs PIO's cycle-accurate timing.
func buildSinglePulseProgram() []uint16 {
	asm := rp2pio.AssemblerV0{SidesetBits: 0}
	return []uint16{
		// .wrap_target
		asm.Pull(false, true).Encode(),        // 0: pull block
		asm.Out(rp2pio.OutDestX, 32).Encode(), // 1: out x, 32 (pulse width, cycles)
		asm.Set(rp2pio.SetDestPins, 1).Encode(), // 2: set pins, 1
		// hold_loop:
		asm.Jmp(3, rp2pio.JmpXNZeroDec).Encode(), // 3: jmp x--, 3
		asm.Set(rp2pio.SetDestPins, 0).Encode(),  // 4: set pins, 0
		// .wrap
	}
}

const singlePulseOrigin = 0

// pioAxis is one state machine driving one axis's step pin.
type pioAxis struct {
	sm      rp2pio.StateMachine
	stepPin machine.Pin
}

// PIOStepHAL implements motion.StepOutputHAL and motion.PulseShaperHAL with
// one PIO state machine per axis generating the step pulse itself, instead
// of the plain-GPIO HAL.SetStepBits/ResetStepBits pair plus a one-shot
// hardware timer (ArmPulseReset). Direction pins and everything else
// (timer, limits, interlocks, laser PWM) stay on the surrounding HAL;
// PIOStepHAL composes into that HAL's StepOutputHAL/PulseShaperHAL slots.
type PIOStepHAL struct {
	pio        *rp2pio.PIO
	axes       [3]pioAxis // X, Y, Z
	dir        [3]machine.Pin
	pulseWidth uint32 // cycles, derived from Config.PulseMicroseconds
}

const (
	axisX = iota
	axisY
	axisZ
)

// NewPIOStepHAL claims one state machine per axis on pioNum (0 or 1),
// loads the single-pulse program into each, and configures step/dir pins.
// pulseMicroseconds is the HAL-supplied pulse width (spec.md
// CONFIG_PULSE_MICROSECONDS); pioClockHz is the PIO block's input clock
// (125_000_000 on stock RP2040) used to convert it to a cycle count.
func NewPIOStepHAL(pioNum uint8, m PinMap, pulseMicroseconds uint32, pioClockHz uint32) *PIOStepHAL {
	var pioHW *rp2pio.PIO
	if pioNum == 0 {
		pioHW = rp2pio.PIO0
	} else {
		pioHW = rp2pio.PIO1
	}

	h := &PIOStepHAL{
		pio:        pioHW,
		dir:        [3]machine.Pin{m.DirX, m.DirY, m.DirZ},
		pulseWidth: pulseMicroseconds * (pioClockHz / 1_000_000),
	}

	steps := [3]machine.Pin{m.StepX, m.StepY, m.StepZ}
	program := buildSinglePulseProgram()

	for i, stepPin := range steps {
		sm := pioHW.StateMachine(uint8(i))
		sm.TryClaim()

		offset, err := pioHW.AddProgram(program, singlePulseOrigin)
		if err != nil {
			continue
		}

		stepPin.Configure(machine.PinConfig{Mode: pioHW.PinMode()})

		cfg := rp2pio.DefaultStateMachineConfig()
		cfg.SetSetPins(stepPin, 1)
		cfg.SetOutShift(true, false, 32)
		cfg.SetWrap(offset+uint8(len(program))-1, offset)
		cfg.SetClkDivIntFrac(1, 0)

		sm.Init(offset, cfg)
		sm.SetPindirsConsecutive(stepPin, 1, true)
		sm.SetPinsConsecutive(stepPin, 1, false)
		sm.SetEnabled(true)

		h.axes[i] = pioAxis{sm: sm, stepPin: stepPin}
		h.dir[i].Configure(machine.PinConfig{Mode: machine.PinOutput})
	}

	return h
}

// SetDirectionBits drives the direction pins directly; only the step edge
// itself needs PIO timing.
func (h *PIOStepHAL) SetDirectionBits(bits uint8) {
	h.dir[axisX].Set(bits&motion.DirBitX != 0)
	h.dir[axisY].Set(bits&motion.DirBitY != 0)
	h.dir[axisZ].Set(bits&motion.DirBitZ != 0)
}

// SetStepBits pushes one pulse-width command per axis bit set, letting
// each state machine generate that axis's step pulse in hardware. Unlike
// HAL.SetStepBits/ResetStepBits, the falling edge is produced by the PIO
// program itself, not by a later call.
func (h *PIOStepHAL) SetStepBits(bits uint8) {
	if bits&motion.StepBitX != 0 {
		h.push(axisX)
	}
	if bits&motion.StepBitY != 0 {
		h.push(axisY)
	}
	if bits&motion.StepBitZ != 0 {
		h.push(axisZ)
	}
}

// ResetStepBits is a no-op: the PIO program already dropped the step pin
// low once its pulse-width count elapsed.
func (h *PIOStepHAL) ResetStepBits(bits uint8) {}

func (h *PIOStepHAL) push(axis int) {
	sm := h.axes[axis].sm
	for sm.IsTxFIFOFull() {
	}
	sm.TxPut(h.pulseWidth)
}

// ArmPulseReset is a no-op: PIOStepHAL folds the pulse width into the
// program push itself, so there is no separate reset timer to arm.
func (h *PIOStepHAL) ArmPulseReset(cycles uint32) {}

var (
	_ motion.StepOutputHAL  = (*PIOStepHAL)(nil)
	_ motion.PulseShaperHAL = (*PIOStepHAL)(nil)
)
