package motion

import "testing"

type fakeLaserHAL struct {
	pwmLog      []uint8
	armedCycles uint32
	armed       bool
}

func (f *fakeLaserHAL) SetLaserPWM(value uint8) { f.pwmLog = append(f.pwmLog, value) }

func (f *fakeLaserHAL) ArmBeamPulse(cycles uint32) {
	f.armedCycles = cycles
	f.armed = true
}

func (f *fakeLaserHAL) last() uint8 {
	if len(f.pwmLog) == 0 {
		return 0
	}
	return f.pwmLog[len(f.pwmLog)-1]
}

func TestBeamModulatorOffAtZeroDuty(t *testing.T) {
	hal := &fakeLaserHAL{}
	cfg := Config{BeamDynamicsEvery: 4}
	m := NewBeamModulator(hal, cfg)
	m.SetIntensity(0)

	var st MotionState
	for i := 0; i < 4; i++ {
		m.PulseOnStepEvent(&st)
	}
	if hal.last() != 0 {
		t.Errorf("expected laser held off at duty 0, last pwm=%d", hal.last())
	}
	if hal.armed {
		t.Error("expected no beam pulse timer armed at duty 0")
	}
}

func TestBeamModulatorFullyOnAboveThreshold(t *testing.T) {
	hal := &fakeLaserHAL{}
	cfg := Config{BeamDynamicsEvery: 4}
	m := NewBeamModulator(hal, cfg)
	m.SetIntensity(250) // >= fullOnDutyThreshold (242)

	var st MotionState
	for i := 0; i < 4; i++ {
		m.PulseOnStepEvent(&st)
	}
	if hal.last() != 255 {
		t.Errorf("expected pin held fully on, last pwm=%d", hal.last())
	}
	if hal.armed {
		t.Error("expected no one-shot timer armed when duty is fully on")
	}
}

func TestBeamModulatorPulsesMidDuty(t *testing.T) {
	hal := &fakeLaserHAL{}
	cfg := Config{BeamDynamicsEvery: 4}
	m := NewBeamModulator(hal, cfg)
	m.SetIntensity(128)

	st := MotionState{CyclesPerStepEvent: 1000}
	for i := 0; i < 4; i++ {
		m.PulseOnStepEvent(&st)
	}

	if !hal.armed {
		t.Fatal("expected a one-shot beam pulse to be armed at mid duty")
	}
	want := uint32((uint64(cfg.BeamDynamicsEvery) * 128 * 1000) >> 8)
	if hal.armedCycles != want {
		t.Errorf("expected pulse width %d cycles, got %d", want, hal.armedCycles)
	}
	if hal.last() != 255 {
		t.Errorf("expected pin driven on before the one-shot timer fires, last pwm=%d", hal.last())
	}
}

func TestBeamModulatorCounterResetsAfterPulse(t *testing.T) {
	hal := &fakeLaserHAL{}
	cfg := Config{BeamDynamicsEvery: 4}
	m := NewBeamModulator(hal, cfg)
	m.SetIntensity(100)

	st := MotionState{CyclesPerStepEvent: 1000}
	for i := 0; i < 4; i++ {
		m.PulseOnStepEvent(&st)
	}
	if st.PWMCounter != 1 {
		t.Errorf("expected counter to reset to 1 after firing, got %d", st.PWMCounter)
	}
}

func TestBeamModulatorStaticPWMFreqBypassesPulsing(t *testing.T) {
	hal := &fakeLaserHAL{}
	cfg := Config{BeamDynamicsEvery: 4, StaticPWMFreq: true}
	m := NewBeamModulator(hal, cfg)

	var st MotionState
	for i := 0; i < 10; i++ {
		m.PulseOnStepEvent(&st)
	}
	if hal.armed || len(hal.pwmLog) != 0 {
		t.Errorf("expected per-step pulsing to be fully bypassed under StaticPWMFreq")
	}

	m.SetIntensity(77)
	if hal.last() != 77 {
		t.Errorf("expected SetIntensity to forward directly to hardware PWM under StaticPWMFreq, got %d", hal.last())
	}
}

func TestBeamPulseFiredDropsPin(t *testing.T) {
	hal := &fakeLaserHAL{}
	m := NewBeamModulator(hal, Config{})
	m.BeamPulseFired()
	if hal.last() != 0 {
		t.Errorf("expected the beam one-shot handler to drop the pin, got %d", hal.last())
	}
}

func TestAdjustDimmingAtFullSpeed(t *testing.T) {
	hal := &fakeLaserHAL{}
	cfg := Config{BeamDynamicsStart: 0.25}
	m := NewBeamModulator(hal, cfg)

	block := &Block{NominalLaserIntensity: 200, NominalRate: 60000}
	m.AdjustDimming(60000, block) // steps_per_minute == nominal_rate: factor collapses to 1

	if m.Intensity() != 200 {
		t.Errorf("expected dimming at nominal speed to reproduce I unchanged, got %d", m.Intensity())
	}
}

func TestAdjustDimmingAtLowSpeed(t *testing.T) {
	hal := &fakeLaserHAL{}
	cfg := Config{BeamDynamicsStart: 0.5}
	m := NewBeamModulator(hal, cfg)

	block := &Block{NominalLaserIntensity: 200, NominalRate: 60000}
	m.AdjustDimming(0, block)

	// dimm = 0.5 + 0.5*200/255; adjusted = I*(1-dimm) at steps_per_minute=0.
	dimm := 0.5 + 0.5*200.0/255.0
	want := uint8(200.0 * (1 - dimm))
	if diff := int(m.Intensity()) - int(want); diff < -1 || diff > 1 {
		t.Errorf("expected dimmed intensity near %d at zero speed, got %d", want, m.Intensity())
	}
}

func TestSampleRasterPixel(t *testing.T) {
	hal := &fakeLaserHAL{}
	m := NewBeamModulator(hal, Config{})

	cases := []struct {
		raster byte
		want   int
	}{
		{128, 0},
		{255, (255 - 128) * 2 * 200 / 255},
		{192, (192 - 128) * 2 * 200 / 255},
	}
	for _, c := range cases {
		m.SampleRasterPixel(c.raster, 200)
		if int(m.Intensity()) != c.want {
			t.Errorf("raster byte %d: expected intensity %d, got %d", c.raster, c.want, m.Intensity())
		}
	}
}
