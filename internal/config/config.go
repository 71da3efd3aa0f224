package config

import (
	"os"

	"github.com/chewxy/math32"
	"gopkg.in/yaml.v3"

	"github.com/impel-engine/impel/internal/mathf"
	"github.com/impel-engine/impel/internal/phys"
)

const (
	DefaultGravityY = -9.81
	DefaultDuration = 10.0
	DefaultMaxJobs  = 256
)

type Config struct {
	Gravity   []float32       `yaml:"gravity"`
	Workers   int             `yaml:"workers"`
	MaxJobs   int             `yaml:"max_jobs"`
	Duration  float64         `yaml:"duration"`
	Character CharacterConfig `yaml:"character"`
	Vehicle   VehicleConfig   `yaml:"vehicle"`
	Fluid     FluidConfig     `yaml:"fluid"`
}

type CharacterConfig struct {
	Height       float32 `yaml:"height"`
	Radius       float32 `yaml:"radius"`
	Mass         float32 `yaml:"mass"`
	MaxSlopeDeg  float32 `yaml:"max_slope_deg"`
	MaxSpeed     float32 `yaml:"max_speed"`
	PushStrength float32 `yaml:"push_strength"`
	JumpSpeed    float32 `yaml:"jump_speed"`
	WalkSpeed    float32 `yaml:"walk_speed"`
}

type VehicleConfig struct {
	Mass         float32 `yaml:"mass"`
	EngineTorque float32 `yaml:"engine_torque"`
	BrakeTorque  float32 `yaml:"brake_torque"`
	SteeringDeg  float32 `yaml:"steering_deg"`
	WheelRadius  float32 `yaml:"wheel_radius"`
}

type FluidConfig struct {
	Density     float32   `yaml:"density"`
	LinearDrag  float32   `yaml:"linear_drag"`
	AngularDrag float32   `yaml:"angular_drag"`
	Flow        []float32 `yaml:"flow"`
	Depth       float32   `yaml:"depth"`
}

func DefaultConfig() *Config {
	char := phys.DefaultCharacterSettings()
	return &Config{
		Gravity:  []float32{0, DefaultGravityY, 0},
		MaxJobs:  DefaultMaxJobs,
		Duration: DefaultDuration,
		Character: CharacterConfig{
			Height:       char.Height,
			Radius:       char.Radius,
			Mass:         char.Mass,
			MaxSlopeDeg:  50,
			MaxSpeed:     char.MaxSpeed,
			PushStrength: char.MaxPushStrength,
			JumpSpeed:    5,
			WalkSpeed:    4,
		},
		Vehicle: VehicleConfig{
			Mass:         1500,
			EngineTorque: 500,
			BrakeTorque:  1500,
			SteeringDeg:  30,
			WheelRadius:  0.3,
		},
		Fluid: FluidConfig{
			Density:     1000,
			LinearDrag:  0.5,
			AngularDrag: 0.2,
			Depth:       10,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func vec3(v []float32) mathf.Vec3 {
	var out mathf.Vec3
	if len(v) > 0 {
		out.X = v[0]
	}
	if len(v) > 1 {
		out.Y = v[1]
	}
	if len(v) > 2 {
		out.Z = v[2]
	}
	return out
}

// WorldOptions translates the top-level fields into world construction
// options. Zero values fall back to the built-in defaults.
func (c *Config) WorldOptions() phys.Options {
	opts := phys.DefaultOptions()
	if len(c.Gravity) > 0 {
		opts.Gravity = vec3(c.Gravity)
	}
	if c.MaxJobs > 0 {
		opts.MaxJobs = c.MaxJobs
	}
	opts.Workers = c.Workers
	return opts
}

func (c CharacterConfig) Settings() phys.CharacterControllerSettings {
	s := phys.DefaultCharacterSettings()
	if c.Height > 0 {
		s.Height = c.Height
	}
	if c.Radius > 0 {
		s.Radius = c.Radius
	}
	if c.Mass > 0 {
		s.Mass = c.Mass
	}
	if c.MaxSlopeDeg > 0 {
		s.MaxSlopeAngle = c.MaxSlopeDeg * math32.Pi / 180
	}
	if c.MaxSpeed > 0 {
		s.MaxSpeed = c.MaxSpeed
	}
	if c.PushStrength > 0 {
		s.MaxPushStrength = c.PushStrength
	}
	return s
}

func (c VehicleConfig) Settings() phys.VehicleSettings {
	s := phys.DefaultVehicleSettings()
	if c.Mass > 0 {
		s.Mass = c.Mass
	}
	if c.EngineTorque > 0 {
		s.MaxEngineTorque = c.EngineTorque
	}
	if c.BrakeTorque > 0 {
		s.MaxBrakeTorque = c.BrakeTorque
	}
	if c.SteeringDeg > 0 {
		s.MaxSteeringAngle = c.SteeringDeg * math32.Pi / 180
	}
	if c.WheelRadius > 0 {
		for i := range s.Wheels {
			s.Wheels[i].Radius = c.WheelRadius
		}
	}
	return s
}

// Settings places the fluid volume so its surface sits at y=0.
func (c FluidConfig) Settings(halfWidth float32) phys.FluidVolumeSettings {
	depth := c.Depth
	if depth <= 0 {
		depth = 10
	}
	s := phys.WaterVolumeSettings(mathf.V3(0, -depth/2, 0), mathf.V3(halfWidth, depth/2, halfWidth))
	if c.Density > 0 {
		s.Density = c.Density
	}
	if c.LinearDrag > 0 {
		s.LinearDrag = c.LinearDrag
	}
	if c.AngularDrag > 0 {
		s.AngularDrag = c.AngularDrag
	}
	s.FlowVelocity = vec3(c.Flow)
	return s
}
