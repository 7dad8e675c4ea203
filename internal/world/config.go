package world

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"merge-and-wander/server/internal/grid"
)

const (
	DefaultSeed              = "wander"
	DefaultCellSizeDegrees   = 1e-4
	DefaultSpawnProbability  = 0.3
	DefaultInteractionRadius = 3
	DefaultWinTarget         = 32
)

// Rules captures every tunable the world derives from: the lattice geometry,
// the procedural spawn odds, and the gameplay thresholds. A Rules value is
// immutable once handed to a World.
type Rules struct {
	Seed              string  `json:"seed" yaml:"seed"`
	OriginLat         float64 `json:"originLat" yaml:"originLat"`
	OriginLng         float64 `json:"originLng" yaml:"originLng"`
	CellSizeDegrees   float64 `json:"cellSizeDegrees" yaml:"cellSizeDegrees"`
	SpawnProbability  float64 `json:"spawnProbability" yaml:"spawnProbability"`
	InteractionRadius int     `json:"interactionRadius" yaml:"interactionRadius"`
	WinTarget         int     `json:"winTarget" yaml:"winTarget"`
}

func (r Rules) normalized() Rules {
	normalized := r
	normalized.Seed = strings.TrimSpace(normalized.Seed)
	if normalized.Seed == "" {
		normalized.Seed = DefaultSeed
	}
	if normalized.CellSizeDegrees <= 0 {
		normalized.CellSizeDegrees = DefaultCellSizeDegrees
	}
	if normalized.SpawnProbability < 0 {
		normalized.SpawnProbability = 0
	}
	if normalized.SpawnProbability > 1 {
		normalized.SpawnProbability = 1
	}
	if normalized.InteractionRadius < 0 {
		normalized.InteractionRadius = DefaultInteractionRadius
	}
	if normalized.WinTarget < 2 {
		normalized.WinTarget = DefaultWinTarget
	}
	return normalized
}

// Normalized fills defaults and clamps out-of-range fields.
func (r Rules) Normalized() Rules {
	return r.normalized()
}

// Mapper builds the coordinate mapper implied by the rules.
func (r Rules) Mapper() grid.Mapper {
	return grid.NewMapper(grid.LatLng{Lat: r.OriginLat, Lng: r.OriginLng}, r.CellSizeDegrees)
}

// DefaultRules returns the stock configuration.
func DefaultRules() Rules {
	return Rules{
		Seed:              DefaultSeed,
		OriginLat:         0,
		OriginLng:         0,
		CellSizeDegrees:   DefaultCellSizeDegrees,
		SpawnProbability:  DefaultSpawnProbability,
		InteractionRadius: DefaultInteractionRadius,
		WinTarget:         DefaultWinTarget,
	}
}

// LoadRulesFile reads a YAML rules document. Fields absent from the file
// keep their defaults; the result is normalized.
func LoadRulesFile(path string) (Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("read rules file: %w", err)
	}
	rules := DefaultRules()
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return Rules{}, fmt.Errorf("parse rules file %s: %w", path, err)
	}
	return rules.normalized(), nil
}
