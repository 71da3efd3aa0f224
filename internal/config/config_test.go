package config

import (
	"path/filepath"
	"testing"

	"github.com/impel-engine/impel/internal/mathf"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Gravity[1] >= 0 {
		t.Error("default gravity should point down")
	}
	if cfg.MaxJobs <= 0 {
		t.Error("max jobs should be positive")
	}
	if cfg.Character.Height <= 0 {
		t.Error("character height should be positive")
	}
}

func TestLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "impel.yaml")
	cfg := DefaultConfig()
	cfg.Workers = 3
	cfg.Vehicle.Mass = 777

	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Workers != 3 {
		t.Errorf("expected workers 3, got %d", loaded.Workers)
	}
	if loaded.Vehicle.Mass != 777 {
		t.Errorf("expected vehicle mass 777, got %f", loaded.Vehicle.Mass)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("vehicle", "kart")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Vehicle.Mass != 300 {
		t.Errorf("expected kart mass 300, got %f", cfg.Vehicle.Mass)
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if GetPreset("vehicle", "nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if GetPreset("nonexistent", "kart") != nil {
		t.Error("expected nil for nonexistent kind")
	}
}

func TestListPresets(t *testing.T) {
	if len(ListPresets("character")) == 0 {
		t.Error("expected presets for character")
	}
	if ListPresets("nonexistent") != nil {
		t.Error("expected nil for nonexistent kind")
	}
}

func TestWorldOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Gravity = []float32{0, -3.7, 0}
	opts := cfg.WorldOptions()
	if !opts.Gravity.ApproxEqual(mathf.V3(0, -3.7, 0)) {
		t.Errorf("gravity not applied, got %v", opts.Gravity)
	}
}

func TestCharacterSettingsFallbacks(t *testing.T) {
	s := CharacterConfig{}.Settings()
	if s.Height <= 0 || s.Radius <= 0 {
		t.Error("zero config should keep the built-in defaults")
	}
	custom := CharacterConfig{MaxSlopeDeg: 45}.Settings()
	if custom.MaxSlopeAngle <= 0.7 || custom.MaxSlopeAngle >= 0.8 {
		t.Errorf("45 degrees should convert to radians, got %f", custom.MaxSlopeAngle)
	}
}

func TestFluidSettingsSurfaceAtZero(t *testing.T) {
	s := FluidConfig{Depth: 6}.Settings(20)
	top := s.Position.Y + s.HalfExtents.Y
	if top != 0 {
		t.Errorf("fluid surface should be at y=0, got %f", top)
	}
}
