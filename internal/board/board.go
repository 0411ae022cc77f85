// Package board provides the hex board: tiles, vertices, edges, ports, the
// robber, and the legality queries the turn controller consumes.
// The grid uses axial coordinates (q, r); the third cube coordinate is
// derived as s = -q - r.
package board

import (
	"fmt"
	"sort"

	"github.com/talgya/catan-table/internal/resource"
)

// SeatID identifies a player slot. NoSeat marks unowned pieces.
type SeatID int

const NoSeat SeatID = -1

// HexID indexes a tile.
type HexID int

// VertexID indexes a board intersection.
type VertexID int

// Edge is a canonical vertex pair (A < B) identifying a road slot.
type Edge struct {
	A VertexID `json:"a"`
	B VertexID `json:"b"`
}

// NewEdge returns the canonical form of the edge between two vertices.
func NewEdge(v1, v2 VertexID) Edge {
	if v1 > v2 {
		v1, v2 = v2, v1
	}
	return Edge{A: v1, B: v2}
}

// Touches reports whether v is an endpoint of e.
func (e Edge) Touches(v VertexID) bool {
	return e.A == v || e.B == v
}

// HexCoord is an axial grid position.
type HexCoord struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// S returns the implicit third cube coordinate.
func (h HexCoord) S() int { return -h.Q - h.R }

// neighborDirections are the six axial offsets, in corner-winding order:
// direction i and direction i+1 flank corner i.
var neighborDirections = [6]HexCoord{
	{Q: 1, R: 0},
	{Q: 1, R: -1},
	{Q: 0, R: -1},
	{Q: -1, R: 0},
	{Q: -1, R: 1},
	{Q: 0, R: 1},
}

// Tile is one hex on the board. Desert tiles carry no resource and token 0.
type Tile struct {
	ID       HexID         `json:"id"`
	Coord    HexCoord      `json:"coord"`
	Resource resource.Kind `json:"resource,omitempty"` // empty for desert
	Token    int           `json:"token"`              // 2..12, 0 for desert
}

// Desert reports whether the tile produces nothing.
func (t *Tile) Desert() bool { return t.Resource == "" }

// vertex is an intersection of up to three tiles.
type vertex struct {
	id        VertexID
	hexes     []HexID    // adjacent on-board tiles, 1..3
	neighbors []VertexID // adjacent vertices, 2..3
	port      *resource.Port
	owner     SeatID
	city      bool
}

// vertexKey identifies an intersection by the sorted coords of the three
// hexes (on-board or not) that meet there.
type vertexKey [3]HexCoord

func makeVertexKey(a, b, c HexCoord) vertexKey {
	k := vertexKey{a, b, c}
	sort.Slice(k[:], func(i, j int) bool {
		if k[i].Q != k[j].Q {
			return k[i].Q < k[j].Q
		}
		return k[i].R < k[j].R
	})
	return k
}

// Board holds full table state: geometry, occupancy, robber, dev deck.
type Board struct {
	tiles       []*Tile
	tileByCoord map[HexCoord]HexID
	vertices    []*vertex
	vertexIDs   map[vertexKey]VertexID
	edges       map[Edge]SeatID // present key = edge exists; NoSeat = unowned
	robber      HexID
	devDeck     []DevCard
}

// build wires geometry for the given tile set: vertices, edges, adjacency.
func build(tiles []*Tile) *Board {
	b := &Board{
		tiles:       tiles,
		tileByCoord: make(map[HexCoord]HexID, len(tiles)),
		vertexIDs:   make(map[vertexKey]VertexID),
		edges:       make(map[Edge]SeatID),
		robber:      -1,
	}
	for _, t := range tiles {
		b.tileByCoord[t.Coord] = t.ID
		if t.Desert() {
			b.robber = t.ID
		}
	}

	// Corner i of hex h meets h, h+dir[i] and h+dir[i+1].
	cornerAt := func(h HexCoord, i int) vertexKey {
		d1 := neighborDirections[i]
		d2 := neighborDirections[(i+1)%6]
		return makeVertexKey(h, HexCoord{h.Q + d1.Q, h.R + d1.R}, HexCoord{h.Q + d2.Q, h.R + d2.R})
	}

	vertexOf := func(key vertexKey) VertexID {
		if id, ok := b.vertexIDs[key]; ok {
			return id
		}
		id := VertexID(len(b.vertices))
		b.vertexIDs[key] = id
		b.vertices = append(b.vertices, &vertex{id: id, owner: NoSeat})
		return id
	}

	for _, t := range tiles {
		corners := make([]VertexID, 6)
		for i := 0; i < 6; i++ {
			v := vertexOf(cornerAt(t.Coord, i))
			corners[i] = v
			b.vertices[v].hexes = appendUniqueHex(b.vertices[v].hexes, t.ID)
		}
		for i := 0; i < 6; i++ {
			v1, v2 := corners[i], corners[(i+1)%6]
			e := NewEdge(v1, v2)
			if _, ok := b.edges[e]; !ok {
				b.edges[e] = NoSeat
				b.vertices[v1].neighbors = appendUniqueVertex(b.vertices[v1].neighbors, v2)
				b.vertices[v2].neighbors = appendUniqueVertex(b.vertices[v2].neighbors, v1)
			}
		}
	}

	// Robber starts on the desert; a procedural board may lack one.
	if b.robber < 0 && len(tiles) > 0 {
		b.robber = tiles[0].ID
	}
	return b
}

func appendUniqueHex(s []HexID, h HexID) []HexID {
	for _, x := range s {
		if x == h {
			return s
		}
	}
	return append(s, h)
}

func appendUniqueVertex(s []VertexID, v VertexID) []VertexID {
	for _, x := range s {
		if x == v {
			return s
		}
	}
	return append(s, v)
}

// Tiles returns the board's tiles in ID order.
func (b *Board) Tiles() []*Tile { return b.tiles }

// Tile returns the tile with the given id, or nil.
func (b *Board) Tile(id HexID) *Tile {
	if id < 0 || int(id) >= len(b.tiles) {
		return nil
	}
	return b.tiles[id]
}

// VertexCount returns the number of intersections.
func (b *Board) VertexCount() int { return len(b.vertices) }

// EdgeCount returns the number of road slots.
func (b *Board) EdgeCount() int { return len(b.edges) }

// ValidVertex reports whether v exists on this board.
func (b *Board) ValidVertex(v VertexID) bool {
	return v >= 0 && int(v) < len(b.vertices)
}

// Robber returns the hex currently holding the robber.
func (b *Board) Robber() HexID { return b.robber }

// PortAt returns the port on vertex v, if any.
func (b *Board) PortAt(v VertexID) *resource.Port {
	if !b.ValidVertex(v) {
		return nil
	}
	return b.vertices[v].port
}

// AdjacentHexes returns the on-board tiles meeting at v.
func (b *Board) AdjacentHexes(v VertexID) []HexID {
	if !b.ValidVertex(v) {
		return nil
	}
	return b.vertices[v].hexes
}

// HexVertices returns the corner vertices of hex h.
func (b *Board) HexVertices(h HexID) []VertexID {
	var out []VertexID
	for _, v := range b.vertices {
		for _, adj := range v.hexes {
			if adj == h {
				out = append(out, v.id)
			}
		}
	}
	return out
}

// AdjacentResources returns one resource kind per non-desert tile at v,
// the initial grant for a second setup settlement.
func (b *Board) AdjacentResources(v VertexID) []resource.Kind {
	var out []resource.Kind
	for _, h := range b.AdjacentHexes(v) {
		if t := b.tiles[h]; !t.Desert() {
			out = append(out, t.Resource)
		}
	}
	return out
}

// OwnerAt returns the seat occupying vertex v and whether it is a city.
func (b *Board) OwnerAt(v VertexID) (SeatID, bool) {
	if !b.ValidVertex(v) {
		return NoSeat, false
	}
	return b.vertices[v].owner, b.vertices[v].city
}

// RoadOwner returns the owner of edge e, or NoSeat.
func (b *Board) RoadOwner(e Edge) SeatID {
	owner, ok := b.edges[e]
	if !ok {
		return NoSeat
	}
	return owner
}

func (b *Board) checkVertex(v VertexID) error {
	if !b.ValidVertex(v) {
		return fmt.Errorf("vertex %d does not exist on the board", v)
	}
	return nil
}
