//go:build !tinygo

package motion

// interruptState is a placeholder for interrupt state under the host build,
// mirroring gopper's core/interrupt_go.go no-op pair. Host-side tests model
// the shared-buffer critical section with the raster mutex instead (see
// boundary/serialraster's Adapter); this pair only exists so motion builds and behaves
// identically in shape under both tags.
type interruptState uintptr

func disableInterrupts() interruptState {
	return 0
}

func restoreInterrupts(state interruptState) {
}
