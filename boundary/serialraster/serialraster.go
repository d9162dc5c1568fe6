// Package serialraster adapts a physical serial transport to the core's
// RasterSource and SerialControl collaborators. spec.md keeps the serial
// transport and its command/raster framing out of the core's scope; this
// package supplies the transport side, buffering raw bytes as they arrive
// (it does no command framing), grounded on gopper's host/serial
// (tarm/serial) port and protocol.FifoBuffer.
package serialraster

import (
	"sync"

	"lasermotion/host/serial"
	"lasermotion/protocol"
)

// bufferCapacity is the FIFO's backing size, generous enough to absorb a
// burst of raster bytes between two step-timer ticks.
const bufferCapacity = 4096

// Adapter reads raster bytes off a serial.Port on a background goroutine
// and serves them to the Motion Core one at a time, matching spec.md §5's
// "torn-read protection": ReadByte is cheap and never blocks.
type Adapter struct {
	port serial.Port

	mu      sync.Mutex
	fifo    *protocol.FifoBuffer
	stopped bool
	closed  chan struct{}
}

// NewAdapter wraps an already-open serial.Port and starts the background
// reader. The caller owns port's lifetime: the adapter never closes port,
// and the reader stops when a Read on port returns an error.
func NewAdapter(port serial.Port) *Adapter {
	a := &Adapter{
		port:   port,
		fifo:   protocol.NewFifoBuffer(bufferCapacity),
		closed: make(chan struct{}),
	}
	go a.readLoop()
	return a
}

func (a *Adapter) readLoop() {
	buf := make([]byte, 256)
	for {
		n, err := a.port.Read(buf)
		if n > 0 {
			a.mu.Lock()
			if !a.stopped {
				a.fifo.Write(buf[:n])
			}
			a.mu.Unlock()
		}
		if err != nil {
			close(a.closed)
			return
		}
	}
}

// ReadByte implements motion.RasterSource: pop one buffered byte, or report
// none available yet. Never blocks.
func (a *Adapter) ReadByte() (byte, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var b [1]byte
	if a.fifo.Read(b[:]) == 0 {
		return 0, false
	}
	return b[0], true
}

// ConsumeRemaining implements motion.RasterSource: discard whatever is left
// of the current raster block's byte stream (spec.md §6 serial_consume_data,
// called on raster block completion so a short final column doesn't leak
// into the next block's first pixel).
func (a *Adapter) ConsumeRemaining() {
	a.mu.Lock()
	defer a.mu.Unlock()
	var scratch [256]byte
	for a.fifo.Available() > 0 {
		a.fifo.Read(scratch[:])
	}
}

// Stop implements motion.SerialControl: stop accepting further incoming
// data (spec.md §6 serial_stop, called from Core.RequestStop). The
// background reader keeps draining the port so it doesn't block the OS
// buffer, but stops appending to the FIFO.
func (a *Adapter) Stop() {
	a.mu.Lock()
	a.stopped = true
	a.mu.Unlock()
}

// Resume re-arms incoming data acceptance after a stop/resume cycle.
func (a *Adapter) Resume() {
	a.mu.Lock()
	a.stopped = false
	a.mu.Unlock()
}
