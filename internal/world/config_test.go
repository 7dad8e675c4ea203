package world

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRulesNormalizedFillsDefaults(t *testing.T) {
	rules := (Rules{}).Normalized()

	if rules.Seed != DefaultSeed {
		t.Fatalf("expected seed %q, got %q", DefaultSeed, rules.Seed)
	}
	if rules.CellSizeDegrees != DefaultCellSizeDegrees {
		t.Fatalf("expected cell size %v, got %v", DefaultCellSizeDegrees, rules.CellSizeDegrees)
	}
	if rules.InteractionRadius != 0 {
		t.Fatalf("expected explicit zero radius to survive, got %d", rules.InteractionRadius)
	}
	if rules.WinTarget != DefaultWinTarget {
		t.Fatalf("expected win target %d, got %d", DefaultWinTarget, rules.WinTarget)
	}
}

func TestRulesNormalizedClampsProbability(t *testing.T) {
	over := (Rules{SpawnProbability: 1.7}).Normalized()
	if over.SpawnProbability != 1 {
		t.Fatalf("expected probability clamped to 1, got %v", over.SpawnProbability)
	}
	under := (Rules{SpawnProbability: -0.2}).Normalized()
	if under.SpawnProbability != 0 {
		t.Fatalf("expected probability clamped to 0, got %v", under.SpawnProbability)
	}
}

func TestRulesNormalizedTrimsSeed(t *testing.T) {
	rules := (Rules{Seed: "  coastline  "}).Normalized()
	if rules.Seed != "coastline" {
		t.Fatalf("expected trimmed seed, got %q", rules.Seed)
	}
	blank := (Rules{Seed: "   "}).Normalized()
	if blank.Seed != DefaultSeed {
		t.Fatalf("expected blank seed to fall back to default, got %q", blank.Seed)
	}
}

func TestRulesNormalizedRestoresNegativeRadius(t *testing.T) {
	rules := (Rules{InteractionRadius: -4}).Normalized()
	if rules.InteractionRadius != DefaultInteractionRadius {
		t.Fatalf("expected default radius, got %d", rules.InteractionRadius)
	}
}

func TestLoadRulesFileOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	doc := "seed: harbor\nspawnProbability: 0.5\nwinTarget: 16\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write rules file: %v", err)
	}

	rules, err := LoadRulesFile(path)
	if err != nil {
		t.Fatalf("LoadRulesFile returned error: %v", err)
	}
	if rules.Seed != "harbor" {
		t.Fatalf("expected seed harbor, got %q", rules.Seed)
	}
	if rules.SpawnProbability != 0.5 {
		t.Fatalf("expected probability 0.5, got %v", rules.SpawnProbability)
	}
	if rules.WinTarget != 16 {
		t.Fatalf("expected win target 16, got %d", rules.WinTarget)
	}
	if rules.InteractionRadius != DefaultInteractionRadius {
		t.Fatalf("expected absent radius to keep default, got %d", rules.InteractionRadius)
	}
	if rules.CellSizeDegrees != DefaultCellSizeDegrees {
		t.Fatalf("expected absent cell size to keep default, got %v", rules.CellSizeDegrees)
	}
}

func TestLoadRulesFileRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	if err := os.WriteFile(path, []byte("seed: [unclosed"), 0o644); err != nil {
		t.Fatalf("write rules file: %v", err)
	}
	if _, err := LoadRulesFile(path); err == nil {
		t.Fatalf("expected parse error for malformed yaml")
	}
	if _, err := LoadRulesFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
