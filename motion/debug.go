package motion

// DebugWriter is a platform-supplied sink for debug text (UART, USB CDC, a
// host-side logger). Grounded on gopper's core/debug.go.
type DebugWriter func(string)

// TimingEvent captures one timing-critical occurrence for post-mortem
// analysis after a stop. Field names are generic (not bound to any one
// event type) to keep the ring buffer a fixed uniform size, as in gopper's
// core/debug.go.
type TimingEvent struct {
	EventType uint8
	Clock     uint32
	Value1    uint32
	Value2    uint32
}

// Event type codes recorded by the motion core.
const (
	EvtStepISR       = 1 // one StepISR invocation completed
	EvtBlockLoaded   = 2 // a new block was popped from the planner
	EvtTimerReconfig = 3 // the step timer was reprogrammed
	EvtAccelTick     = 4 // an acceleration decision was applied
	EvtStopRequested = 5 // RequestStop was called (recorded on every call)
	EvtInterlockTrip = 6 // a door/chiller interlock cut the laser
	EvtHomingHit     = 7 // a homing axis saw its limit switch assert
)

const timingRingSize = 32

// DebugLog is the motion core's diagnostic sink: an async, drop-on-full
// message channel plus a non-blocking timing ring buffer, in the shape of
// gopper's core/debug.go globals but owned per-instance so tests never
// share state across cores.
type DebugLog struct {
	writer  DebugWriter
	enabled bool

	ch chan string

	ring     [timingRingSize]TimingEvent
	ringHead uint8
}

// NewDebugLog constructs a disabled-by-default log. Call SetWriter and
// Enable to activate it; StartAsync to enable non-blocking Async calls.
func NewDebugLog() *DebugLog {
	return &DebugLog{}
}

// SetWriter installs the platform-specific output function.
func (d *DebugLog) SetWriter(w DebugWriter) {
	d.writer = w
}

// Enable turns synchronous debug output on or off. Disabled by default:
// formatting and writing text has no place in the deterministic ISR path
// unless a developer has explicitly asked for it.
func (d *DebugLog) Enable(enabled bool) {
	d.enabled = enabled
}

// StartAsync starts the background worker draining queued Async messages.
// Call once, after SetWriter.
func (d *DebugLog) StartAsync() {
	d.ch = make(chan string, 16)
	go func(ch chan string) {
		for msg := range ch {
			if d.writer != nil {
				d.writer(msg)
			}
		}
	}(d.ch)
}

// Println writes synchronously when enabled. Never call from StepISR.
func (d *DebugLog) Println(msg string) {
	if d.enabled && d.writer != nil {
		d.writer(msg)
	}
}

// Async queues msg for the background worker, dropping it if the channel
// is full. Safe to call from a step event (it never blocks).
func (d *DebugLog) Async(msg string) {
	if d.ch == nil {
		return
	}
	select {
	case d.ch <- msg:
	default:
	}
}

// RecordTiming appends a timing event to the ring buffer. Fixed-size,
// non-blocking, safe to call from StepISR.
func (d *DebugLog) RecordTiming(eventType uint8, clock, value1, value2 uint32) {
	d.ring[d.ringHead] = TimingEvent{EventType: eventType, Clock: clock, Value1: value1, Value2: value2}
	d.ringHead = (d.ringHead + 1) % timingRingSize
}

// DumpTiming renders the ring buffer oldest-first via Println. Call after
// StopProcessing, never while the core is still stepping.
func (d *DebugLog) DumpTiming() {
	if d.writer == nil {
		return
	}
	d.Println("=== timing ring ===")
	for i := uint8(0); i < timingRingSize; i++ {
		evt := &d.ring[(d.ringHead+i)%timingRingSize]
		if evt.EventType == 0 {
			continue
		}
		d.Println(eventName(evt.EventType) + " clock=" + utoa(evt.Clock) +
			" v1=" + utoa(evt.Value1) + " v2=" + utoa(evt.Value2))
	}
	d.Println("=== end ===")
}

// ClearTiming resets the ring buffer, e.g. after a dump.
func (d *DebugLog) ClearTiming() {
	for i := range d.ring {
		d.ring[i] = TimingEvent{}
	}
	d.ringHead = 0
}

func eventName(t uint8) string {
	switch t {
	case EvtStepISR:
		return "STEP_ISR"
	case EvtBlockLoaded:
		return "BLOCK_LOADED"
	case EvtTimerReconfig:
		return "TIMER_RECONFIG"
	case EvtAccelTick:
		return "ACCEL_TICK"
	case EvtStopRequested:
		return "STOP_REQUESTED"
	case EvtInterlockTrip:
		return "INTERLOCK_TRIP"
	case EvtHomingHit:
		return "HOMING_HIT"
	default:
		return "UNKNOWN"
	}
}

// utoa converts an unsigned integer to a string without pulling in fmt,
// matching gopper's core/strutil.go — debug formatting still has to stay
// cheap enough to call from async contexts on a microcontroller build.
func utoa(n uint32) string {
	if n == 0 {
		return "0"
	}
	var buf [10]byte
	pos := len(buf)
	for n > 0 {
		pos--
		buf[pos] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[pos:])
}
