package board

import (
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/catan-table/internal/resource"
)

// Mode selects how tile resources are laid out.
type Mode string

const (
	ModeClassic    Mode = "classic"    // standard shuffled tile and token bag
	ModeProcedural Mode = "procedural" // simplex-noise terrain over the same grid
)

// boardRadius 2 yields the standard 19-hex layout.
const boardRadius = 2

// classicBag is the standard tile distribution: 4 wood, 3 brick, 4 sheep,
// 4 wheat, 3 ore, 1 desert (empty kind).
var classicBag = []resource.Kind{
	resource.Wood, resource.Wood, resource.Wood, resource.Wood,
	resource.Brick, resource.Brick, resource.Brick,
	resource.Sheep, resource.Sheep, resource.Sheep, resource.Sheep,
	resource.Wheat, resource.Wheat, resource.Wheat, resource.Wheat,
	resource.Ore, resource.Ore, resource.Ore,
	"",
}

// tokenBag is the standard number-token distribution for 18 producing tiles.
var tokenBag = []int{2, 3, 3, 4, 4, 5, 5, 6, 6, 8, 8, 9, 9, 10, 10, 11, 11, 12}

// Generate builds a board in the given mode using rng for layout shuffles.
func Generate(mode Mode, rng *rand.Rand) *Board {
	coords := hexSpiral(boardRadius)

	var kinds []resource.Kind
	switch mode {
	case ModeProcedural:
		kinds = proceduralKinds(coords, rng)
	default:
		kinds = append([]resource.Kind(nil), classicBag...)
		rng.Shuffle(len(kinds), func(i, j int) { kinds[i], kinds[j] = kinds[j], kinds[i] })
	}

	tokens := append([]int(nil), tokenBag...)
	rng.Shuffle(len(tokens), func(i, j int) { tokens[i], tokens[j] = tokens[j], tokens[i] })

	tiles := make([]*Tile, len(coords))
	ti := 0
	for i, c := range coords {
		t := &Tile{ID: HexID(i), Coord: c, Resource: kinds[i]}
		if !t.Desert() {
			t.Token = tokens[ti]
			ti++
		}
		tiles[i] = t
	}

	b := build(tiles)
	b.placePorts(rng)
	b.devDeck = shuffledDevDeck(rng)
	return b
}

// hexSpiral returns all axial coords within the given radius, center first,
// in a deterministic ring order.
func hexSpiral(radius int) []HexCoord {
	coords := []HexCoord{{0, 0}}
	for ring := 1; ring <= radius; ring++ {
		// Start at the "southwest" corner of the ring and walk around.
		c := HexCoord{Q: -ring, R: ring}
		for side := 0; side < 6; side++ {
			d := neighborDirections[side]
			for step := 0; step < ring; step++ {
				coords = append(coords, c)
				c = HexCoord{Q: c.Q + d.Q, R: c.R + d.R}
			}
		}
	}
	return coords
}

// proceduralKinds assigns terrain by sampling 2-D simplex noise at each
// hex. Exactly one desert lands on the lowest-noise tile; the rest map
// noise bands to resources, keeping every kind represented.
func proceduralKinds(coords []HexCoord, rng *rand.Rand) []resource.Kind {
	noise := opensimplex.New(rng.Int63())

	samples := make([]float64, len(coords))
	minIdx := 0
	for i, c := range coords {
		samples[i] = noise.Eval2(float64(c.Q)*0.35, float64(c.R)*0.35)
		if samples[i] < samples[minIdx] {
			minIdx = i
		}
	}

	bands := []resource.Kind{resource.Wood, resource.Sheep, resource.Wheat, resource.Brick, resource.Ore}
	kinds := make([]resource.Kind, len(coords))
	for i, s := range samples {
		if i == minIdx {
			kinds[i] = "" // desert
			continue
		}
		// Noise is roughly in [-1, 1]; fold into band index.
		idx := int((s + 1) / 2 * float64(len(bands)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(bands) {
			idx = len(bands) - 1
		}
		kinds[i] = bands[idx]
	}

	// Guarantee every resource appears at least once.
	for _, k := range resource.Kinds() {
		if !containsKind(kinds, k) {
			for {
				i := rng.Intn(len(kinds))
				if kinds[i] != "" && countKind(kinds, kinds[i]) > 1 {
					kinds[i] = k
					break
				}
			}
		}
	}
	return kinds
}

func containsKind(kinds []resource.Kind, k resource.Kind) bool {
	return countKind(kinds, k) > 0
}

func countKind(kinds []resource.Kind, k resource.Kind) int {
	n := 0
	for _, x := range kinds {
		if x == k {
			n++
		}
	}
	return n
}

// portBag is the standard nine-port set.
var portBag = []resource.Port{
	{Ratio: 3}, {Ratio: 3}, {Ratio: 3}, {Ratio: 3},
	{Ratio: 2, Kind: resource.Wood},
	{Ratio: 2, Kind: resource.Brick},
	{Ratio: 2, Kind: resource.Sheep},
	{Ratio: 2, Kind: resource.Wheat},
	{Ratio: 2, Kind: resource.Ore},
}

// placePorts assigns the port bag to pairs of adjacent coastal vertices,
// spaced evenly around the boundary.
func (b *Board) placePorts(rng *rand.Rand) {
	coastal := b.coastalRing()
	if len(coastal) == 0 {
		return
	}

	ports := append([]resource.Port(nil), portBag...)
	rng.Shuffle(len(ports), func(i, j int) { ports[i], ports[j] = ports[j], ports[i] })

	// Each port occupies two consecutive ring vertices; skip one between
	// ports so they spread around the coast.
	step := len(coastal) / len(ports)
	if step < 2 {
		step = 2
	}
	pos := 0
	for _, p := range ports {
		if pos+1 >= len(coastal) {
			break
		}
		port := p
		b.vertices[coastal[pos]].port = &port
		b.vertices[coastal[pos+1]].port = &port
		pos += step
	}
}

// coastalRing returns boundary vertices (fewer than three adjacent tiles)
// ordered by walking neighbor-to-neighbor around the coast.
func (b *Board) coastalRing() []VertexID {
	onCoast := make(map[VertexID]bool)
	var start VertexID = -1
	for _, v := range b.vertices {
		if len(v.hexes) < 3 {
			onCoast[v.id] = true
			if start < 0 || v.id < start {
				start = v.id
			}
		}
	}
	if start < 0 {
		return nil
	}

	ring := []VertexID{start}
	visited := map[VertexID]bool{start: true}
	curr := start
	for {
		next := VertexID(-1)
		for _, n := range b.vertices[curr].neighbors {
			if onCoast[n] && !visited[n] {
				next = n
				break
			}
		}
		if next < 0 {
			break
		}
		ring = append(ring, next)
		visited[next] = true
		curr = next
	}
	return ring
}
