package app

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// NewRandom returns a PCG-backed generator. A zero seed draws one from
// crypto/rand; any other seed makes every draw reproducible.
// The generator is not safe for concurrent use; the orchestrator serialises runs.
func NewRandom(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = CryptoSeed()
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// CryptoSeed returns a random non-zero seed.
func CryptoSeed() uint64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 1
	}
	if s := binary.LittleEndian.Uint64(b[:]); s != 0 {
		return s
	}
	return 1
}
