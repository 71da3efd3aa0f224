package config

// Presets are ready-made tuning sets keyed by kind and name.
var Presets = map[string]map[string]*Config{
	"character": {
		"default": {
			Character: CharacterConfig{Height: 1.8, Radius: 0.3, Mass: 80, MaxSlopeDeg: 50, MaxSpeed: 8, JumpSpeed: 5, WalkSpeed: 4},
		},
		"heavy": {
			Character: CharacterConfig{Height: 2.1, Radius: 0.45, Mass: 160, MaxSlopeDeg: 40, MaxSpeed: 5, PushStrength: 400, JumpSpeed: 4, WalkSpeed: 2.5},
		},
		"scout": {
			Character: CharacterConfig{Height: 1.6, Radius: 0.25, Mass: 60, MaxSlopeDeg: 55, MaxSpeed: 12, JumpSpeed: 7, WalkSpeed: 7},
		},
	},
	"vehicle": {
		"sedan": {
			Vehicle: VehicleConfig{Mass: 1500, EngineTorque: 500, BrakeTorque: 1500, SteeringDeg: 30, WheelRadius: 0.3},
		},
		"kart": {
			Vehicle: VehicleConfig{Mass: 300, EngineTorque: 200, BrakeTorque: 400, SteeringDeg: 40, WheelRadius: 0.15},
		},
		"truck": {
			Vehicle: VehicleConfig{Mass: 8000, EngineTorque: 2500, BrakeTorque: 6000, SteeringDeg: 22, WheelRadius: 0.5},
		},
	},
	"fluid": {
		"water": {
			Fluid: FluidConfig{Density: 1000, LinearDrag: 0.5, AngularDrag: 0.2, Depth: 10},
		},
		"oil": {
			Fluid: FluidConfig{Density: 900, LinearDrag: 4.0, AngularDrag: 1.5, Depth: 5},
		},
		"river": {
			Fluid: FluidConfig{Density: 1000, LinearDrag: 0.8, AngularDrag: 0.3, Flow: []float32{3, 0, 0}, Depth: 4},
		},
	},
}

func GetPreset(kind, preset string) *Config {
	kindPresets, ok := Presets[kind]
	if !ok {
		return nil
	}
	cfg, ok := kindPresets[preset]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets(kind string) []string {
	kindPresets, ok := Presets[kind]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(kindPresets))
	for name := range kindPresets {
		names = append(names, name)
	}
	return names
}
