// Command benchtop drives a motion.Core against the in-memory simulation
// HAL, optionally serving raster bytes (and the serial stop/resume
// collaborator) from a serial-attached device (-device), stepping through a small
// built-in demo block list and reporting the resulting position. Grounded
// on gopper's host/cmd/gopper-host: a flag-driven CLI wrapping a connect/
// drive/report loop.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"lasermotion/boardconfig"
	"lasermotion/boundary/serialraster"
	"lasermotion/host/serial"
	"lasermotion/motion"
	"lasermotion/motion/simhal"
)

var (
	boardPath = flag.String("board", "", "path to a board config YAML file (defaults to a built-in bench profile)")
	device    = flag.String("device", "", "serial device for raster/stop I/O (defaults to the in-memory simulator)")
	baud      = flag.Int("baud", 250000, "baud rate for -device")
	verbose   = flag.Bool("verbose", false, "print every step event")
)

func main() {
	flag.Parse()

	cfg := defaultBenchConfig()
	if *boardPath != "" {
		bc, err := boardconfig.Load(*boardPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: failed to load board config: %v\n", err)
			os.Exit(1)
		}
		cfg = bc.ToMotionConfig()
	}

	hal := simhal.New()
	planner := &simhal.FixedPlanner{Blocks: demoBlocks()}
	assist := &simhal.Assist{}

	var raster motion.RasterSource
	var serialCtl motion.SerialControl
	if *device != "" {
		portCfg := serial.DefaultConfig(*device)
		portCfg.Baud = *baud
		port, err := serial.Open(portCfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: failed to open %s: %v\n", *device, err)
			os.Exit(1)
		}
		adapter := serialraster.NewAdapter(port)
		raster = adapter
		serialCtl = adapter
	} else {
		raster = &simhal.RasterBytes{}
		serialCtl = &simhal.SerialStop{}
	}

	core := motion.NewCore(hal, cfg, planner, raster, serialCtl, assist)
	core.Init()
	core.StartProcessing()

	fmt.Println("benchtop - lasermotion core demo driver")
	fmt.Printf("driving %d demo block(s) against %s\n", len(planner.Blocks), backendName(*device))

	tickInterval := time.Duration(0)
	if cfg.FCPU > 0 {
		tickInterval = time.Microsecond // host-rate simulation tick, not the real ISR period
	}

	events := 0
	for core.Processing() && events < 1_000_000 {
		core.StepISR()
		events++
		if *verbose && events%100 == 0 {
			fmt.Printf("event %d: x=%.3fmm y=%.3fmm z=%.3fmm\n", events, core.GetPositionX(), core.GetPositionY(), core.GetPositionZ())
		}
		if tickInterval > 0 {
			time.Sleep(tickInterval)
		}
	}

	fmt.Printf("done after %d step events\n", events)
	fmt.Printf("final position: x=%.3fmm y=%.3fmm z=%.3fmm\n", core.GetPositionX(), core.GetPositionY(), core.GetPositionZ())
	if status := core.StopStatus(); status != motion.StopOK {
		fmt.Printf("stopped: %s\n", status)
	}
}

func backendName(device string) string {
	if device == "" {
		return "the in-memory simulator"
	}
	return device
}

// defaultBenchConfig is a reasonable bench profile when -board isn't given:
// a small desktop-scale laser cutter with 3-axis homing disabled.
func defaultBenchConfig() motion.Config {
	return motion.Config{
		FCPU:                       16_000_000,
		AccelerationTicksPerSecond: 100,
		MinimumStepsPerMinute:      1000,
		PulseMicroseconds:          5,
		XStepsPerMM:                100,
		YStepsPerMM:                100,
		ZStepsPerMM:                100,
		BeamDynamicsEvery:          8,
		BeamDynamicsStart:          0.25,
		HomingRateStepsPerMinute:   60000,
		LimitActiveHigh:            true,
	}
}

// demoBlocks is a small hand-built trapezoidal move plus an assist toggle,
// enough to exercise the whole Core.StepISR pipeline end to end.
func demoBlocks() []*motion.Block {
	return []*motion.Block{
		{Type: motion.BlockAirAssistEnable},
		{
			Type:                  motion.BlockLine,
			StepsX:                4000,
			StepsY:                3000,
			InitialRate:           6000,
			NominalRate:           60000,
			FinalRate:             6000,
			RateDelta:             600,
			AccelerateUntil:       900,
			DecelerateAfter:       3100,
			NominalLaserIntensity: 180,
		},
		{Type: motion.BlockAirAssistDisable},
	}
}
