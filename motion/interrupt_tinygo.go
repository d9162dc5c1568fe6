//go:build tinygo

package motion

import "runtime/interrupt"

// interruptState mirrors gopper's core/interrupt_tinygo.go: a scoped
// acquire/release pair around reads of state shared with an ISR.
type interruptState = interrupt.State

func disableInterrupts() interruptState {
	return interrupt.Disable()
}

func restoreInterrupts(state interruptState) {
	interrupt.Restore(state)
}
