package game

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand"
)

// Roller produces dice rolls.
type Roller interface {
	Roll() int
}

type randomRoller struct {
	rng *rand.Rand
}

// NewRoller returns a two-dice roller seeded from the OS entropy pool.
func NewRoller() Roller {
	var seed int64
	var buf [8]byte
	if _, err := crand.Read(buf[:]); err == nil {
		seed = int64(binary.LittleEndian.Uint64(buf[:]))
	}
	return &randomRoller{rng: rand.New(rand.NewSource(seed))}
}

// NewSeededRoller returns a deterministic roller for replayable games.
func NewSeededRoller(seed int64) Roller {
	return &randomRoller{rng: rand.New(rand.NewSource(seed))}
}

func (r *randomRoller) Roll() int {
	return r.rng.Intn(6) + 1 + r.rng.Intn(6) + 1
}

// FixedRoller replays a scripted roll sequence, cycling when exhausted.
type FixedRoller struct {
	Rolls []int
	i     int
}

func (r *FixedRoller) Roll() int {
	if len(r.Rolls) == 0 {
		return 7
	}
	v := r.Rolls[r.i%len(r.Rolls)]
	r.i++
	return v
}
