package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/impel-engine/impel/internal/config"
	"github.com/impel-engine/impel/internal/mathf"
	"github.com/impel-engine/impel/internal/phys"
	"github.com/impel-engine/impel/internal/record"
	"github.com/impel-engine/impel/internal/scene"
	"github.com/impel-engine/impel/internal/solver"
	"github.com/impel-engine/impel/internal/tui"
)

var (
	configFile string
	dataDir    string
	duration   float64
	gravity    float64
	height     float64
	mass       float64
	restitut   float64
	speed      float64
	radius     float64
	walkSpeed  float64
	jumpSpeed  float64
	throttle   float64
	steering   float64
	brakeAt    float64
	preset     string
	frameRate  int
	workers    int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "impel",
		Short: "rigid body playground",
		Run: func(cmd *cobra.Command, args []string) {
			tui.RunInteractive()
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".impel", "data directory")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0, "worker pool size (0 = one per cpu)")

	dropCmd := &cobra.Command{
		Use:   "drop",
		Short: "drop a box onto the ground",
		RunE:  runDrop,
	}
	dropCmd.Flags().Float64Var(&height, "height", 5.0, "drop height")
	dropCmd.Flags().Float64Var(&mass, "mass", 10.0, "box mass")
	dropCmd.Flags().Float64Var(&restitut, "restitution", 0.3, "bounciness")
	dropCmd.Flags().Float64Var(&gravity, "gravity", -9.81, "vertical gravity")
	dropCmd.Flags().Float64Var(&duration, "time", 5.0, "duration")

	triggerCmd := &cobra.Command{
		Use:   "trigger",
		Short: "fly a body through a sensor zone",
		RunE:  runTrigger,
	}
	triggerCmd.Flags().Float64Var(&speed, "speed", 2.0, "body speed")
	triggerCmd.Flags().Float64Var(&radius, "radius", 1.5, "sensor radius")
	triggerCmd.Flags().Float64Var(&duration, "time", 8.0, "duration")

	characterCmd := &cobra.Command{
		Use:   "character",
		Short: "walk a capsule across the ground",
		RunE:  runCharacter,
	}
	characterCmd.Flags().Float64Var(&walkSpeed, "walk", 4.0, "walk speed")
	characterCmd.Flags().Float64Var(&jumpSpeed, "jump", 5.0, "jump speed")
	characterCmd.Flags().Float64Var(&duration, "time", 10.0, "duration")
	characterCmd.Flags().StringVar(&preset, "preset", "", "character preset")

	vehicleCmd := &cobra.Command{
		Use:   "vehicle",
		Short: "drive a four wheeler on a flat road",
		RunE:  runVehicle,
	}
	vehicleCmd.Flags().Float64Var(&throttle, "throttle", 1.0, "throttle 0..1")
	vehicleCmd.Flags().Float64Var(&steering, "steer", 0.0, "steering -1..1")
	vehicleCmd.Flags().Float64Var(&brakeAt, "brake-at", 0.0, "brake after this many seconds (0 = never)")
	vehicleCmd.Flags().Float64Var(&duration, "time", 10.0, "duration")
	vehicleCmd.Flags().StringVar(&preset, "preset", "", "vehicle preset")

	fluidCmd := &cobra.Command{
		Use:   "fluid",
		Short: "submerge a box and watch it float or sink",
		RunE:  runFluid,
	}
	fluidCmd.Flags().Float64Var(&mass, "mass", 100.0, "box mass (1 m^3 volume)")
	fluidCmd.Flags().Float64Var(&duration, "time", 8.0, "duration")
	fluidCmd.Flags().StringVar(&preset, "preset", "", "fluid preset")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "step-rate benchmark across body counts",
		RunE:  runBench,
	}
	benchCmd.Flags().Float64Var(&duration, "time", 2.0, "simulated seconds per case")

	liveCmd := &cobra.Command{
		Use:   "live [scenario]",
		Short: "headless run with live ascii view",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")
	liveCmd.Flags().Float64Var(&duration, "time", 10.0, "duration")
	liveCmd.Flags().Float64Var(&height, "height", 5.0, "drop height")
	liveCmd.Flags().Float64Var(&mass, "mass", 100.0, "body mass")
	liveCmd.Flags().Float64Var(&walkSpeed, "walk", 4.0, "walk speed")
	liveCmd.Flags().Float64Var(&throttle, "throttle", 1.0, "throttle")

	presetsCmd := &cobra.Command{
		Use:   "presets [kind]",
		Short: "list available presets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names := config.ListPresets(args[0])
			if len(names) == 0 {
				fmt.Printf("no presets for kind: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range names {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "manage configuration",
	}
	configCmd.AddCommand(&cobra.Command{
		Use:   "init [path]",
		Short: "write the default config",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Save(args[0], config.DefaultConfig()); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", args[0])
			return nil
		},
	})
	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "print the effective config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "gravity\t%v\n", cfg.Gravity)
			fmt.Fprintf(w, "workers\t%d\n", cfg.Workers)
			fmt.Fprintf(w, "max_jobs\t%d\n", cfg.MaxJobs)
			fmt.Fprintf(w, "character.height\t%.2f\n", cfg.Character.Height)
			fmt.Fprintf(w, "character.max_speed\t%.2f\n", cfg.Character.MaxSpeed)
			fmt.Fprintf(w, "vehicle.mass\t%.0f\n", cfg.Vehicle.Mass)
			fmt.Fprintf(w, "vehicle.engine_torque\t%.0f\n", cfg.Vehicle.EngineTorque)
			fmt.Fprintf(w, "fluid.density\t%.0f\n", cfg.Fluid.Density)
			return w.Flush()
		},
	})

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "interactive terminal mode",
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.RunInteractive()
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a saved run as json",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return record.New(dataDir).ExportJSON(args[0], os.Stdout)
		},
	}

	rootCmd.AddCommand(dropCmd, triggerCmd, characterCmd, vehicleCmd, fluidCmd, benchCmd, liveCmd, presetsCmd, configCmd, tuiCmd, listCmd, plotCmd, exportCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if configFile == "" {
		return config.DefaultConfig(), nil
	}
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func newWorld(cfg *config.Config) *phys.World {
	opts := cfg.WorldOptions()
	opts.Workers = workers
	return phys.NewWorld(opts)
}

func addGround(w *phys.World) error {
	ground, err := w.Bodies().CreateBoxBody(mathf.V3(200, 0.5, 200), mathf.V3(0, -0.5, 0), mathf.QuatIdentity(), solver.MotionStatic, phys.BodyCreation{Friction: 0.9})
	if err != nil {
		return err
	}
	w.Bodies().AddBody(ground, false)
	return nil
}

func plot(data []float64, caption string) {
	fmt.Println(asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	))
	fmt.Println()
}

func saveRun(scenario string, samples []record.Sample, stats map[string]float64) {
	st := record.New(dataDir)
	if err := st.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		return
	}
	id, err := st.Save(scenario, phys.FixedStep, duration, samples, stats)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: save run: %v\n", err)
		return
	}
	fmt.Printf("\nrun id: %s\n", id)
}

func sampleOf(t float64, pos mathf.Vec3, speed float32) record.Sample {
	return record.Sample{
		Time:  t,
		X:     float64(pos.X),
		Y:     float64(pos.Y),
		Z:     float64(pos.Z),
		Speed: float64(speed),
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := record.New(dataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tDURATION")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\n",
			run.ID, run.Scenario, run.Timestamp.Format("2006-01-02 15:04:05"), run.Duration)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := record.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\nscenario: %s\nsamples: %d\n\n", meta.ID, meta.Scenario, len(samples))

	ys := make([]float64, len(samples))
	speeds := make([]float64, len(samples))
	for i, p := range samples {
		ys[i] = p.Y
		speeds[i] = p.Speed
	}
	plot(ys, "height vs time")
	plot(speeds, "speed vs time")

	if len(meta.Stats) > 0 {
		fmt.Println("stats:")
		for name, val := range meta.Stats {
			fmt.Printf("  %s: %.4f\n", name, val)
		}
	}
	return nil
}

func runDrop(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.Gravity = []float32{0, float32(gravity), 0}
	w := newWorld(cfg)
	defer w.Close()
	g := scene.NewGraph()

	if err := addGround(w); err != nil {
		return err
	}
	ref := g.Spawn("crate", mathf.V3(0, float32(height), 0), mathf.QuatIdentity())
	box, err := w.Bodies().CreateBoxBody(mathf.V3(0.5, 0.5, 0.5), mathf.V3(0, float32(height), 0), mathf.QuatIdentity(), solver.MotionDynamic,
		phys.BodyCreation{Mass: float32(mass), Restitution: float32(restitut), Friction: 0.5})
	if err != nil {
		return err
	}
	w.Bodies().AddBody(box, true)
	w.BindBody(box, ref)

	steps := int(duration / phys.FixedStep)
	heights := make([]float64, 0, steps)
	samples := make([]record.Sample, 0, steps)
	start := time.Now()
	for i := 0; i < steps; i++ {
		if err := w.Process(g, phys.FixedStep); err != nil {
			return err
		}
		pos := w.Bodies().Position(box)
		heights = append(heights, float64(pos.Y))
		samples = append(samples, sampleOf(float64(i)*phys.FixedStep, pos, w.Bodies().Velocity(box).Length()))
	}
	elapsed := time.Since(start)

	fmt.Printf("drop: %.1fm, %.0fkg, restitution %.2f\n\n", height, mass, restitut)
	plot(heights, "height vs time")

	final := w.Bodies().Position(box)
	vel := w.Bodies().Velocity(box)
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STEPS\tSIM TIME\tWALL TIME\tREST Y\tREST |V|")
	fmt.Fprintf(tw, "%d\t%.2fs\t%v\t%.3f\t%.3f\n", steps, duration, elapsed.Round(time.Millisecond), final.Y, vel.Length())
	if err := tw.Flush(); err != nil {
		return err
	}
	saveRun("drop", samples, map[string]float64{"rest_y": float64(final.Y), "rest_speed": float64(vel.Length())})
	return nil
}

func runTrigger(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	w := newWorld(cfg)
	defer w.Close()
	g := scene.NewGraph()

	zone := g.Spawn("zone", mathf.V3(0, 1, 0), mathf.QuatIdentity())
	trig, err := w.Bodies().CreateSphereTrigger(float32(radius), mathf.V3(0, 1, 0), mathf.QuatIdentity())
	if err != nil {
		return err
	}
	w.Bodies().AddTrigger(trig, false)
	w.BindTrigger(trig, zone)

	startX := -float32(speed*duration) / 2
	ref := g.Spawn("probe", mathf.V3(startX, 1, 0), mathf.QuatIdentity())
	body, err := w.Bodies().CreateBoxBody(mathf.V3(0.4, 0.4, 0.4), mathf.V3(startX, 1, 0), mathf.QuatIdentity(), solver.MotionDynamic, phys.BodyCreation{Mass: 1})
	if err != nil {
		return err
	}
	w.Bodies().AddBody(body, true)
	w.Bodies().SetGravityFactor(body, 0)
	w.Bodies().SetVelocity(body, mathf.V3(float32(speed), 0, 0))
	w.BindBody(body, ref)

	type event struct {
		kind string
		at   float64
	}
	var events []event
	simTime := 0.0
	w.Observe(zone, phys.ContactFuncs{
		TriggerEnter: func(other scene.NodeRef) { events = append(events, event{"enter", simTime}) },
		TriggerExit:  func(other scene.NodeRef) { events = append(events, event{"exit", simTime}) },
	})

	steps := int(duration / phys.FixedStep)
	xs := make([]float64, 0, steps)
	samples := make([]record.Sample, 0, steps)
	for i := 0; i < steps; i++ {
		if err := w.Process(g, phys.FixedStep); err != nil {
			return err
		}
		simTime += phys.FixedStep
		pos := w.Bodies().Position(body)
		xs = append(xs, float64(pos.X))
		samples = append(samples, sampleOf(simTime, pos, w.Bodies().Velocity(body).Length()))
	}

	fmt.Printf("trigger: radius %.1fm, probe at %.1f m/s\n\n", radius, speed)
	plot(xs, "probe x vs time")

	if len(events) == 0 {
		fmt.Println("no trigger events")
	} else {
		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "EVENT\tTIME")
		for _, e := range events {
			fmt.Fprintf(tw, "%s\t%.3fs\n", e.kind, e.at)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	saveRun("trigger", samples, map[string]float64{"events": float64(len(events))})
	return nil
}

func runCharacter(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if preset != "" {
		p := config.GetPreset("character", preset)
		if p == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets("character"))
		}
		cfg.Character = p.Character
	}
	w := newWorld(cfg)
	defer w.Close()
	g := scene.NewGraph()

	if err := addGround(w); err != nil {
		return err
	}
	ref := g.Spawn("player", mathf.V3(0, 1.2, 0), mathf.QuatIdentity())
	c, err := w.AttachCharacterController(g, ref, cfg.Character.Settings())
	if err != nil {
		return err
	}

	steps := int(duration / phys.FixedStep)
	heights := make([]float64, 0, steps)
	samples := make([]record.Sample, 0, steps)
	stateTime := map[phys.CharacterState]float64{}
	jumps := 0
	for i := 0; i < steps; i++ {
		c.Move(mathf.V3(float32(walkSpeed), 0, 0))
		// hop every two seconds once under way
		if i > 0 && i%120 == 0 && c.Jump(float32(jumpSpeed)) {
			jumps++
		}
		if err := w.Process(g, phys.FixedStep); err != nil {
			return err
		}
		heights = append(heights, float64(c.Position().Y))
		samples = append(samples, sampleOf(float64(i)*phys.FixedStep, c.Position(), c.Velocity().Length()))
		stateTime[c.State()] += phys.FixedStep
	}

	fmt.Printf("character: walk %.1f m/s, jump %.1f m/s\n\n", walkSpeed, jumpSpeed)
	plot(heights, "height vs time")

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DISTANCE\tJUMPS\tGROUNDED\tAIRBORNE\tSLIDING")
	fmt.Fprintf(tw, "%.1fm\t%d\t%.1fs\t%.1fs\t%.1fs\n",
		c.Position().X, jumps,
		stateTime[phys.CharacterGrounded],
		stateTime[phys.CharacterAirborne],
		stateTime[phys.CharacterSliding])
	if err := tw.Flush(); err != nil {
		return err
	}
	saveRun("character", samples, map[string]float64{
		"distance": float64(c.Position().X),
		"jumps":    float64(jumps),
	})
	return nil
}

func runVehicle(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if preset != "" {
		p := config.GetPreset("vehicle", preset)
		if p == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets("vehicle"))
		}
		cfg.Vehicle = p.Vehicle
	}
	w := newWorld(cfg)
	defer w.Close()
	g := scene.NewGraph()

	if err := addGround(w); err != nil {
		return err
	}
	ref := g.Spawn("car", mathf.V3(0, 0.9, 0), mathf.QuatIdentity())
	v, err := w.AttachVehicleController(ref, cfg.Vehicle.Settings(), mathf.V3(0, 0.9, 0), mathf.QuatIdentity())
	if err != nil {
		return err
	}

	v.SetThrottle(float32(throttle))
	v.SetSteering(float32(steering))

	steps := int(duration / phys.FixedStep)
	speeds := make([]float64, 0, steps)
	samples := make([]record.Sample, 0, steps)
	topSpeed := 0.0
	braking := false
	for i := 0; i < steps; i++ {
		t := float64(i) * phys.FixedStep
		if brakeAt > 0 && t >= brakeAt && !braking {
			v.SetThrottle(0)
			v.SetBrake(1)
			braking = true
		}
		if err := w.Process(g, phys.FixedStep); err != nil {
			return err
		}
		s := float64(v.SpeedKMH())
		speeds = append(speeds, s)
		samples = append(samples, sampleOf(t, v.Position(), v.Speed()))
		if s > topSpeed {
			topSpeed = s
		}
	}

	fmt.Printf("vehicle: throttle %.1f, steer %.1f\n\n", throttle, steering)
	plot(speeds, "speed (km/h) vs time")

	contacts := 0
	for i := 0; i < v.WheelCount(); i++ {
		if v.Wheel(i).HasContact {
			contacts++
		}
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TOP SPEED\tFINAL SPEED\tDISTANCE\tWHEELS DOWN")
	fmt.Fprintf(tw, "%.1f km/h\t%.1f km/h\t%.1fm\t%d/%d\n",
		topSpeed, v.SpeedKMH(), v.Position().Z, contacts, v.WheelCount())
	if err := tw.Flush(); err != nil {
		return err
	}
	saveRun("vehicle", samples, map[string]float64{
		"top_speed_kmh": topSpeed,
		"distance":      float64(v.Position().Z),
	})
	return nil
}

func runFluid(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if preset != "" {
		p := config.GetPreset("fluid", preset)
		if p == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets("fluid"))
		}
		cfg.Fluid = p.Fluid
	}
	w := newWorld(cfg)
	defer w.Close()
	g := scene.NewGraph()

	fluid := w.AddFluidVolume(cfg.Fluid.Settings(50))

	ref := g.Spawn("buoy", mathf.V3(0, -2, 0), mathf.QuatIdentity())
	box, err := w.Bodies().CreateBoxBody(mathf.V3(0.5, 0.5, 0.5), mathf.V3(0, -2, 0), mathf.QuatIdentity(), solver.MotionDynamic, phys.BodyCreation{Mass: float32(mass)})
	if err != nil {
		return err
	}
	w.Bodies().AddBody(box, true)
	w.BindBody(box, ref)

	steps := int(duration / phys.FixedStep)
	depths := make([]float64, 0, steps)
	samples := make([]record.Sample, 0, steps)
	for i := 0; i < steps; i++ {
		if err := w.Process(g, phys.FixedStep); err != nil {
			return err
		}
		pos := w.Bodies().Position(box)
		depths = append(depths, float64(pos.Y))
		samples = append(samples, sampleOf(float64(i)*phys.FixedStep, pos, w.Bodies().Velocity(box).Length()))
	}

	fmt.Printf("fluid: density %.0f kg/m^3, box %.0fkg\n\n", cfg.Fluid.Density, mass)
	plot(depths, "depth vs time (surface at 0)")

	pos := w.Bodies().Position(box)
	aabb := mathf.AABBFromCenter(pos, mathf.V3(0.5, 0.5, 0.5))
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FINAL Y\tSUBMERGED\tVERDICT")
	verdict := "floats"
	if pos.Y < -1.5 {
		verdict = "sinks"
	}
	fmt.Fprintf(tw, "%.2f\t%.0f%%\t%s\n", pos.Y, fluid.SubmergedRatio(aabb)*100, verdict)
	if err := tw.Flush(); err != nil {
		return err
	}
	saveRun("fluid", samples, map[string]float64{
		"final_y":   float64(pos.Y),
		"submerged": float64(fluid.SubmergedRatio(aabb)),
	})
	return nil
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	counts := []int{16, 64, 256, 1024}
	steps := int(duration / phys.FixedStep)

	fmt.Printf("benchmark: %d steps per case\n\n", steps)
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "BODIES\tSTEPS\tTIME\tSTEPS/SEC")

	for _, n := range counts {
		w := newWorld(cfg)
		g := scene.NewGraph()
		if err := addGround(w); err != nil {
			w.Close()
			return err
		}
		for i := 0; i < n; i++ {
			x := float32(i%32)*2 - 32
			z := float32(i/32)*2 - 16
			box, err := w.Bodies().CreateBoxBody(mathf.V3(0.5, 0.5, 0.5), mathf.V3(x, 5+float32(i%7), z), mathf.QuatIdentity(), solver.MotionDynamic, phys.BodyCreation{Mass: 1})
			if err != nil {
				w.Close()
				return err
			}
			w.Bodies().AddBody(box, true)
		}

		start := time.Now()
		for i := 0; i < steps; i++ {
			if err := w.Process(g, phys.FixedStep); err != nil {
				w.Close()
				return err
			}
		}
		elapsed := time.Since(start)
		w.Close()

		fmt.Fprintf(tw, "%d\t%d\t%v\t%.0f\n", n, steps, elapsed.Round(time.Millisecond), float64(steps)/elapsed.Seconds())
	}
	return tw.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	scenario := args[0]

	w := newWorld(cfg)
	defer w.Close()
	g := scene.NewGraph()

	var focusPos func() (mathf.Vec3, mathf.Vec3)
	var perStep func()

	switch scenario {
	case "drop":
		if err := addGround(w); err != nil {
			return err
		}
		box, err := w.Bodies().CreateBoxBody(mathf.V3(0.5, 0.5, 0.5), mathf.V3(0, float32(height), 0), mathf.QuatIdentity(), solver.MotionDynamic,
			phys.BodyCreation{Mass: 10, Restitution: 0.4})
		if err != nil {
			return err
		}
		w.Bodies().AddBody(box, true)
		focusPos = func() (mathf.Vec3, mathf.Vec3) {
			return w.Bodies().Position(box), w.Bodies().Velocity(box)
		}

	case "character":
		if err := addGround(w); err != nil {
			return err
		}
		ref := g.Spawn("player", mathf.V3(-15, 1.2, 0), mathf.QuatIdentity())
		c, err := w.AttachCharacterController(g, ref, cfg.Character.Settings())
		if err != nil {
			return err
		}
		focusPos = func() (mathf.Vec3, mathf.Vec3) { return c.Position(), c.Velocity() }
		perStep = func() { c.Move(mathf.V3(float32(walkSpeed), 0, 0)) }

	case "vehicle":
		if err := addGround(w); err != nil {
			return err
		}
		ref := g.Spawn("car", mathf.V3(-15, 0.9, 0), mathf.QuatIdentity())
		v, err := w.AttachVehicleController(ref, cfg.Vehicle.Settings(), mathf.V3(-15, 0.9, 0), mathf.QuatIdentity())
		if err != nil {
			return err
		}
		v.SetThrottle(float32(throttle))
		focusPos = func() (mathf.Vec3, mathf.Vec3) { return v.Position(), v.LinearVelocity() }

	case "fluid":
		w.AddFluidVolume(cfg.Fluid.Settings(50))
		box, err := w.Bodies().CreateBoxBody(mathf.V3(0.5, 0.5, 0.5), mathf.V3(0, -3, 0), mathf.QuatIdentity(), solver.MotionDynamic, phys.BodyCreation{Mass: float32(mass)})
		if err != nil {
			return err
		}
		w.Bodies().AddBody(box, true)
		focusPos = func() (mathf.Vec3, mathf.Vec3) {
			return w.Bodies().Position(box), w.Bodies().Velocity(box)
		}

	default:
		return fmt.Errorf("unknown scenario: %s (drop, character, vehicle, fluid)", scenario)
	}

	r := tui.NewLiveRenderer(scenario, frameRate)
	r.Start()
	defer r.Stop()

	steps := int(duration / phys.FixedStep)
	stepInterval := float64(time.Second) * phys.FixedStep
	ticker := time.NewTicker(time.Duration(stepInterval))
	defer ticker.Stop()
	for i := 0; i < steps; i++ {
		if perStep != nil {
			perStep()
		}
		if err := w.Process(g, phys.FixedStep); err != nil {
			return err
		}
		pos, vel := focusPos()
		r.OnFrame(pos, vel, float64(i)*phys.FixedStep)
		<-ticker.C
	}
	return nil
}
