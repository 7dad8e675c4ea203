package world

import (
	"hash/fnv"
	"math/rand"
)

// DeterministicSeedValue hashes a root seed and a discriminator label into
// a non-zero RNG seed. The NUL separator keeps ("ab","c") and ("a","bc")
// from colliding.
func DeterministicSeedValue(rootSeed, label string) int64 {
	hasher := fnv.New64a()
	hasher.Write([]byte(rootSeed))
	hasher.Write([]byte{0})
	hasher.Write([]byte(label))
	sum := hasher.Sum64()
	if sum == 0 {
		sum = 1
	}
	return int64(sum)
}

// NewDeterministicRNG builds a rand.Rand whose stream depends only on the
// root seed and the label.
func NewDeterministicRNG(rootSeed, label string) *rand.Rand {
	seedValue := DeterministicSeedValue(rootSeed, label)
	return rand.New(rand.NewSource(seedValue))
}
