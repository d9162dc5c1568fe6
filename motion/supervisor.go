package motion

import "sync/atomic"

// Supervisor observes limit and safety inputs and requests immediate idle
// transitions. request_stop is idempotent: once a reason is latched, later
// calls are no-ops until Resume. Grounded on spec.md §4.9 and §8's
// round-trip property ("request_stop(k) called twice records the first k
// only").
type Supervisor struct {
	requested atomic.Bool
	status    atomic.Uint32 // StopStatus, stored as uint32 for atomic access
}

// NewSupervisor constructs a supervisor in the idle-ready (not stopped)
// state.
func NewSupervisor() *Supervisor {
	return &Supervisor{}
}

// RequestStop latches status if no stop is currently outstanding. Safe to
// call from the Step ISR or the foreground.
func (s *Supervisor) RequestStop(status StopStatus) {
	if s.requested.CompareAndSwap(false, true) {
		s.status.Store(uint32(status))
	}
}

// StopStatus returns the latched reason, or StopOK if none.
func (s *Supervisor) StopStatus() StopStatus {
	return StopStatus(s.status.Load())
}

// StopRequested reports whether a stop is currently latched.
func (s *Supervisor) StopRequested() bool {
	return s.requested.Load()
}

// Resume clears the latched stop and its status, returning the system to
// idle-ready (spec.md §8: "stepper_stop_resume after a request_stop(OK)
// returns the system to idle-ready without affecting position").
func (s *Supervisor) Resume() {
	s.status.Store(uint32(StopOK))
	s.requested.Store(false)
}
