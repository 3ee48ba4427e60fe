package storage

import (
	"testing"
	"time"

	"github.com/hailam/stackplay/internal/engine"
)

func openTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to open storage: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPreferences(t *testing.T) {
	s := openTestStorage(t)

	t.Run("Defaults", func(t *testing.T) {
		prefs, err := s.LoadPreferences()
		if err != nil {
			t.Fatalf("LoadPreferences failed: %v", err)
		}
		if prefs.DefaultDepth != 3 {
			t.Errorf("Expected default depth 3, got %d", prefs.DefaultDepth)
		}
		if prefs.MultiPV != 1 {
			t.Errorf("Expected single PV by default, got %d", prefs.MultiPV)
		}
	})

	t.Run("Roundtrip", func(t *testing.T) {
		prefs := DefaultPreferences()
		prefs.DefaultDepth = 5
		prefs.PresetName = "aggressive"
		if err := s.SavePreferences(prefs); err != nil {
			t.Fatalf("SavePreferences failed: %v", err)
		}

		loaded, err := s.LoadPreferences()
		if err != nil {
			t.Fatalf("LoadPreferences failed: %v", err)
		}
		if loaded.DefaultDepth != 5 || loaded.PresetName != "aggressive" {
			t.Errorf("Loaded preferences do not match: %+v", loaded)
		}
		if loaded.LastUsed.IsZero() {
			t.Error("LastUsed should be stamped on save")
		}
	})
}

func TestPresets(t *testing.T) {
	s := openTestStorage(t)

	params := engine.DefaultScoreParams()
	params.HoleWeight = 99
	if err := s.SavePreset("downstack", params); err != nil {
		t.Fatalf("SavePreset failed: %v", err)
	}

	loaded, found, err := s.LoadPreset("downstack")
	if err != nil {
		t.Fatalf("LoadPreset failed: %v", err)
	}
	if !found {
		t.Fatal("Preset should exist")
	}
	if loaded.HoleWeight != 99 {
		t.Errorf("Loaded hole weight %d, want 99", loaded.HoleWeight)
	}

	fallback, found, err := s.LoadPreset("missing")
	if err != nil {
		t.Fatalf("LoadPreset failed: %v", err)
	}
	if found {
		t.Error("Missing preset reported as found")
	}
	if fallback != engine.DefaultScoreParams() {
		t.Errorf("Missing preset should fall back to defaults, got %+v", fallback)
	}

	names, err := s.ListPresets()
	if err != nil {
		t.Fatalf("ListPresets failed: %v", err)
	}
	if len(names) != 1 || names[0] != "downstack" {
		t.Errorf("ListPresets = %v", names)
	}
}

func TestRecordRun(t *testing.T) {
	s := openTestStorage(t)

	runs := []RunResult{
		{Nodes: 100, Depth: 2, FoundGoal: true, Duration: time.Second},
		{Nodes: 50, Depth: 4, FoundGoal: false, Duration: time.Second},
	}
	for _, r := range runs {
		if err := s.RecordRun(r); err != nil {
			t.Fatalf("RecordRun failed: %v", err)
		}
	}

	stats, err := s.LoadStats()
	if err != nil {
		t.Fatalf("LoadStats failed: %v", err)
	}
	if stats.PositionsAnalyzed != 2 {
		t.Errorf("PositionsAnalyzed = %d, want 2", stats.PositionsAnalyzed)
	}
	if stats.NodesExpanded != 150 {
		t.Errorf("NodesExpanded = %d, want 150", stats.NodesExpanded)
	}
	if stats.GoalsFound != 1 {
		t.Errorf("GoalsFound = %d, want 1", stats.GoalsFound)
	}
	if stats.DeepestLine != 4 {
		t.Errorf("DeepestLine = %d, want 4", stats.DeepestLine)
	}
	if nps := stats.NodesPerSecond(); nps != 75 {
		t.Errorf("NodesPerSecond = %.1f, want 75", nps)
	}
}
