// Package resource provides the five tradable resource kinds, counted
// bundles, build costs, and the atomic two-party transfer used for trades.
package resource

import (
	"fmt"
	"sort"
	"strings"
)

// Kind is one of the five tradable resource types.
type Kind string

const (
	Wood  Kind = "WOOD"
	Brick Kind = "BRICK"
	Sheep Kind = "SHEEP"
	Wheat Kind = "WHEAT"
	Ore   Kind = "ORE"
)

// Kinds returns all resource kinds in a fixed order.
func Kinds() []Kind {
	return []Kind{Wood, Brick, Sheep, Wheat, Ore}
}

// Valid reports whether k names a real resource kind.
func (k Kind) Valid() bool {
	switch k {
	case Wood, Brick, Sheep, Wheat, Ore:
		return true
	}
	return false
}

// Bundle is a counted set of resources. A nil Bundle reads as empty.
type Bundle map[Kind]int

// NewBundle returns an empty bundle with all kinds present at zero,
// the shape the snapshot serializer expects.
func NewBundle() Bundle {
	b := make(Bundle, 5)
	for _, k := range Kinds() {
		b[k] = 0
	}
	return b
}

// Clone returns an independent copy of b.
func (b Bundle) Clone() Bundle {
	out := make(Bundle, len(b))
	for k, n := range b {
		out[k] = n
	}
	return out
}

// Total returns the number of cards in the bundle.
func (b Bundle) Total() int {
	sum := 0
	for _, n := range b {
		sum += n
	}
	return sum
}

// Contains reports whether b holds at least every count in want.
func (b Bundle) Contains(want Bundle) bool {
	for k, n := range want {
		if n > 0 && b[k] < n {
			return false
		}
	}
	return true
}

// Missing returns the counts by which b falls short of want.
func (b Bundle) Missing(want Bundle) Bundle {
	out := Bundle{}
	for k, n := range want {
		if short := n - b[k]; short > 0 {
			out[k] = short
		}
	}
	return out
}

// Add increases b by every count in other.
func (b Bundle) Add(other Bundle) {
	for k, n := range other {
		b[k] += n
	}
}

// Subtract removes other from b, failing without mutation if any count
// would go negative.
func (b Bundle) Subtract(other Bundle) error {
	if !b.Contains(other) {
		return fmt.Errorf("bundle short by %s", b.Missing(other))
	}
	for k, n := range other {
		b[k] -= n
	}
	return nil
}

// Normalize drops zero and negative entries and rejects unknown kinds.
// Agent-supplied bundles pass through here before any arithmetic.
func (b Bundle) Normalize() (Bundle, error) {
	out := Bundle{}
	for k, n := range b {
		if !k.Valid() {
			return nil, fmt.Errorf("unknown resource kind %q", k)
		}
		if n < 0 {
			return nil, fmt.Errorf("negative count %d for %s", n, k)
		}
		if n > 0 {
			out[k] = n
		}
	}
	return out, nil
}

func (b Bundle) String() string {
	if b.Total() == 0 {
		return "nothing"
	}
	keys := make([]string, 0, len(b))
	for k, n := range b {
		if n > 0 {
			keys = append(keys, fmt.Sprintf("%d %s", n, k))
		}
	}
	sort.Strings(keys)
	return strings.Join(keys, ", ")
}

// Build costs, fixed by the rules.
var (
	RoadCost       = Bundle{Wood: 1, Brick: 1}
	SettlementCost = Bundle{Wood: 1, Brick: 1, Sheep: 1, Wheat: 1}
	CityCost       = Bundle{Wheat: 2, Ore: 3}
	DevCardCost    = Bundle{Ore: 1, Sheep: 1, Wheat: 1}
)

// Transfer moves give from a to b and take from b to a as a single unit.
// Either both ledgers reflect the full exchange or neither is touched.
func Transfer(a, b Bundle, give, take Bundle) error {
	if !a.Contains(give) {
		return fmt.Errorf("giver short by %s", a.Missing(give))
	}
	if !b.Contains(take) {
		return fmt.Errorf("taker short by %s", b.Missing(take))
	}
	if err := a.Subtract(give); err != nil {
		return err
	}
	b.Add(give)
	if err := b.Subtract(take); err != nil {
		// Cannot happen after the Contains check; restore to be safe.
		b.Subtract(give)
		a.Add(give)
		return err
	}
	a.Add(take)
	return nil
}
