package world

import "merge-and-wander/server/internal/grid"

// Token is the value of a craftable token. Zero means no token; crafting
// doubles, so live values are 1, 2, 4 and so on.
type Token int

// TokenNone is the absence of a token.
const TokenNone Token = 0

// BaseTokenValue is what the procedural layer spawns.
const BaseTokenValue Token = 1

// BaseValue computes the pristine, never-mutated content of a cell. The
// roll is a pure function of the world seed and the cell coordinates, so
// every process and every restart agrees on it. One cell, one draw.
func BaseValue(rules Rules, c grid.Cell) Token {
	rng := NewDeterministicRNG(rules.Seed, "cell:"+c.Key())
	if rng.Float64() < rules.SpawnProbability {
		return BaseTokenValue
	}
	return TokenNone
}
