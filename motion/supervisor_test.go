package motion

import "testing"

func TestSupervisorRequestStopLatchesFirstReason(t *testing.T) {
	s := NewSupervisor()

	s.RequestStop(StopLimitHitX1)
	s.RequestStop(StopLimitHitY2) // should be ignored

	if !s.StopRequested() {
		t.Fatal("expected stop to be latched")
	}
	if s.StopStatus() != StopLimitHitX1 {
		t.Errorf("expected first status StopLimitHitX1 to stick, got %v", s.StopStatus())
	}
}

func TestSupervisorResumeClears(t *testing.T) {
	s := NewSupervisor()
	s.RequestStop(StopLimitHitZ1)
	s.Resume()

	if s.StopRequested() {
		t.Error("expected StopRequested false after Resume")
	}
	if s.StopStatus() != StopOK {
		t.Errorf("expected status OK after Resume, got %v", s.StopStatus())
	}
}

func TestSupervisorResumeThenRequestAgain(t *testing.T) {
	s := NewSupervisor()
	s.RequestStop(StopLimitHitX1)
	s.Resume()
	s.RequestStop(StopLimitHitY1)

	if s.StopStatus() != StopLimitHitY1 {
		t.Errorf("expected a fresh request after Resume to latch, got %v", s.StopStatus())
	}
}
