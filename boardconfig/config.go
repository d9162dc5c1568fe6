// Package boardconfig loads a board's physical and timing parameters from
// YAML and converts them into a motion.Config. Grounded on
// cjeanneret-PanGo's internal/config: a plain struct-tag YAML document with
// defaulting and validation in Load, converted to the consuming package's
// runtime type by a dedicated method.
package boardconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"lasermotion/motion"
)

// AxisConfig holds one axis's steps-per-millimetre and origin offset.
type AxisConfig struct {
	StepsPerMM   float64 `yaml:"steps_per_mm"`
	OriginOffset float64 `yaml:"origin_offset_mm"`
}

// TimingConfig holds the clock and acceleration-tick parameters.
type TimingConfig struct {
	FCPU                       uint32 `yaml:"fcpu_hz"`
	AccelerationTicksPerSecond uint32 `yaml:"acceleration_ticks_per_second"`
	MinimumStepsPerMinute      uint32 `yaml:"minimum_steps_per_minute"`
	PulseMicroseconds          uint32 `yaml:"pulse_microseconds"`
}

// BeamConfig holds the beam dynamics/dimming parameters.
type BeamConfig struct {
	DynamicsEvery uint32  `yaml:"dynamics_every_steps"`
	DynamicsStart float64 `yaml:"dynamics_start"`
	StaticPWMFreq bool    `yaml:"static_pwm_freq"`
}

// HomingConfig holds the homing-cycle parameters.
type HomingConfig struct {
	RateStepsPerMinute uint32 `yaml:"rate_steps_per_minute"`
}

// FeaturesConfig holds the board feature flags (spec.md §9: explicit
// parameters, not preprocessor conditionals).
type FeaturesConfig struct {
	EnableLaserInterlocks bool `yaml:"enable_laser_interlocks"`
	Enable3Axes           bool `yaml:"enable_3_axes"`
	LimitActiveHigh       bool `yaml:"limit_active_high"`
}

// BoardConfig aggregates one board profile's YAML document.
type BoardConfig struct {
	X          AxisConfig     `yaml:"x"`
	Y          AxisConfig     `yaml:"y"`
	Z          AxisConfig     `yaml:"z"`
	Timing     TimingConfig   `yaml:"timing"`
	Beam       BeamConfig     `yaml:"beam"`
	Homing     HomingConfig   `yaml:"homing"`
	Features   FeaturesConfig `yaml:"features"`
	InvertMask uint8          `yaml:"invert_mask"`
}

// Load reads a board profile YAML file, applies defaults, and validates it.
func Load(path string) (*BoardConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read board config: %w", err)
	}

	var cfg BoardConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal board config: %w", err)
	}

	if cfg.X.StepsPerMM <= 0 || cfg.Y.StepsPerMM <= 0 {
		return nil, fmt.Errorf("x.steps_per_mm and y.steps_per_mm must be > 0")
	}
	if cfg.Features.Enable3Axes && cfg.Z.StepsPerMM <= 0 {
		return nil, fmt.Errorf("z.steps_per_mm must be > 0 when features.enable_3_axes is set")
	}
	if cfg.Timing.FCPU == 0 {
		return nil, fmt.Errorf("timing.fcpu_hz is required")
	}
	if cfg.Timing.AccelerationTicksPerSecond == 0 {
		cfg.Timing.AccelerationTicksPerSecond = 100 // matches original firmware's nominal rate
	}
	if cfg.Timing.PulseMicroseconds == 0 {
		cfg.Timing.PulseMicroseconds = 5
	}
	if cfg.Beam.DynamicsEvery == 0 {
		cfg.Beam.DynamicsEvery = 8
	}
	if cfg.Beam.DynamicsStart < 0 || cfg.Beam.DynamicsStart > 1 {
		return nil, fmt.Errorf("beam.dynamics_start must be in [0,1], got %.3f", cfg.Beam.DynamicsStart)
	}
	if cfg.Homing.RateStepsPerMinute == 0 {
		return nil, fmt.Errorf("homing.rate_steps_per_minute is required")
	}

	return &cfg, nil
}

// ToMotionConfig converts the loaded board profile into the runtime
// motion.Config the core consumes. The core never parses YAML itself;
// config parsing is an out-of-scope external collaborator (spec.md §1).
func (c *BoardConfig) ToMotionConfig() motion.Config {
	return motion.Config{
		FCPU:                       c.Timing.FCPU,
		AccelerationTicksPerSecond: c.Timing.AccelerationTicksPerSecond,
		MinimumStepsPerMinute:      c.Timing.MinimumStepsPerMinute,
		PulseMicroseconds:          c.Timing.PulseMicroseconds,
		XStepsPerMM:                c.X.StepsPerMM,
		YStepsPerMM:                c.Y.StepsPerMM,
		ZStepsPerMM:                c.Z.StepsPerMM,
		XOriginOffset:              c.X.OriginOffset,
		YOriginOffset:              c.Y.OriginOffset,
		ZOriginOffset:              c.Z.OriginOffset,
		BeamDynamicsEvery:          c.Beam.DynamicsEvery,
		BeamDynamicsStart:          c.Beam.DynamicsStart,
		StaticPWMFreq:              c.Beam.StaticPWMFreq,
		HomingRateStepsPerMinute:   c.Homing.RateStepsPerMinute,
		InvertMask:                 c.InvertMask,
		EnableLaserInterlocks:      c.Features.EnableLaserInterlocks,
		Enable3Axes:                c.Features.Enable3Axes,
		LimitActiveHigh:            c.Features.LimitActiveHigh,
	}
}
