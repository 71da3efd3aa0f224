package record

import (
	"testing"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	s := New(t.TempDir())
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}

	samples := []Sample{
		{Time: 0, X: 0, Y: 5, Z: 0, Speed: 0},
		{Time: 1.0 / 60, X: 0, Y: 4.99, Z: 0, Speed: 0.16},
	}
	id, err := s.Save("drop", 1.0/60, 5, samples, map[string]float64{"rest_y": 1.0})
	if err != nil {
		t.Fatal(err)
	}

	meta, err := s.Load(id)
	if err != nil {
		t.Fatal(err)
	}
	if meta.Scenario != "drop" {
		t.Errorf("expected scenario drop, got %s", meta.Scenario)
	}
	if meta.Stats["rest_y"] != 1.0 {
		t.Errorf("stats not preserved: %v", meta.Stats)
	}

	loaded, err := s.LoadSamples(id)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != len(samples) {
		t.Fatalf("expected %d samples, got %d", len(samples), len(loaded))
	}
	if loaded[1].Y != 4.99 {
		t.Errorf("sample values not preserved: %+v", loaded[1])
	}
}

func TestListEmptyDir(t *testing.T) {
	s := New(t.TempDir() + "/nonexistent")
	runs, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestListSkipsForeignDirs(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Save("vehicle", 1.0/60, 2, nil, nil); err != nil {
		t.Fatal(err)
	}

	runs, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	if runs[0].Scenario != "vehicle" {
		t.Errorf("unexpected scenario %s", runs[0].Scenario)
	}
}

func TestLoadMissingRun(t *testing.T) {
	s := New(t.TempDir())
	if _, err := s.Load("absent_123"); err == nil {
		t.Error("expected error for missing run")
	}
}
