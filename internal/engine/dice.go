package engine

import (
	"math/rand"
	"time"
)

// Die is a numbered die whose faces run from Low to High inclusive.
type Die struct {
	Low  int
	High int
}

// D10 is the ten-sided die used for battle resolution, faces 0..9.
var D10 = Die{Low: 0, High: 9}

// Sides returns the number of faces.
func (d Die) Sides() int { return d.High - d.Low + 1 }

// Faces lists every face in ascending order.
func (d Die) Faces() []int {
	out := make([]int, 0, d.Sides())
	for f := d.Low; f <= d.High; f++ {
		out = append(out, f)
	}
	return out
}

// Roll returns one face chosen uniformly with r.
func (d Die) Roll(r *rand.Rand) int { return d.Low + r.Intn(d.Sides()) }

// Critical reports whether face is the die's highest face.
func (d Die) Critical(face int) bool { return face == d.High }

// Pairs enumerates the ordered face pairs of two rolls, first die outermost.
func (d Die) Pairs() [][2]int {
	faces := d.Faces()
	out := make([][2]int, 0, len(faces)*len(faces))
	for _, a := range faces {
		for _, b := range faces {
			out = append(out, [2]int{a, b})
		}
	}
	return out
}

// NewRNG returns a generator seeded from seed, or from the clock when seed is 0.
func NewRNG(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}
