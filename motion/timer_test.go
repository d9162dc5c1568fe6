package motion

import "testing"

type fakeStepTimerHAL struct {
	prescaler uint8
	ceiling   uint16
	enabled   bool
}

func (f *fakeStepTimerHAL) ProgramStepTimer(prescaler uint8, ceiling uint16) {
	f.prescaler = prescaler
	f.ceiling = ceiling
}

func (f *fakeStepTimerHAL) EnableStepTimer(enabled bool) { f.enabled = enabled }

func TestTimerControllerPrescaler1(t *testing.T) {
	hal := &fakeStepTimerHAL{}
	tc := NewTimerController(hal)

	actual := tc.Configure(1000)

	if hal.prescaler != 0 || hal.ceiling != 1000 {
		t.Errorf("expected prescaler 0, ceiling 1000; got prescaler %d, ceiling %d", hal.prescaler, hal.ceiling)
	}
	if actual != 1000 {
		t.Errorf("expected actual cycles 1000, got %d", actual)
	}
}

func TestTimerControllerClimbsTiers(t *testing.T) {
	hal := &fakeStepTimerHAL{}
	tc := NewTimerController(hal)

	// 0x10000 overflows prescaler 1 (shift 0), needs shift >= 3.
	cycles := uint32(0x10000)
	actual := tc.Configure(cycles)

	if hal.prescaler != 1 {
		t.Errorf("expected tier index 1 (divisor 8), got prescaler %d", hal.prescaler)
	}
	wantCeiling := uint16(cycles >> 3)
	if hal.ceiling != wantCeiling {
		t.Errorf("expected ceiling %d, got %d", wantCeiling, hal.ceiling)
	}
	if actual != uint32(wantCeiling)*8 {
		t.Errorf("expected actual %d, got %d", uint32(wantCeiling)*8, actual)
	}
}

func TestTimerControllerClampsToSlowest(t *testing.T) {
	hal := &fakeStepTimerHAL{}
	tc := NewTimerController(hal)

	// Far beyond what even prescaler 1024 can represent in 16 bits.
	actual := tc.Configure(0xFFFFFFFF)

	if hal.prescaler != 4 || hal.ceiling != maxCeiling {
		t.Errorf("expected clamp to slowest tier (prescaler 4, ceiling %d); got prescaler %d, ceiling %d",
			maxCeiling, hal.prescaler, hal.ceiling)
	}
	want := uint32(maxCeiling) * 1024
	if actual != want {
		t.Errorf("expected actual %d, got %d", want, actual)
	}
}
