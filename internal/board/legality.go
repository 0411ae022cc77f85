package board

import "sort"

// Legality queries. All are pure with respect to the current board state
// and return sorted results so snapshots serialize deterministically.

// SetupSettlementSpots returns every empty vertex respecting the distance
// rule. Setup placement ignores road connectivity.
func (b *Board) SetupSettlementSpots() []VertexID {
	var out []VertexID
	for _, v := range b.vertices {
		if v.owner == NoSeat && b.distanceRuleOK(v.id) {
			out = append(out, v.id)
		}
	}
	return out
}

// SetupRoadSpots returns the unowned edges incident to the anchor vertex,
// the settlement the seat just placed.
func (b *Board) SetupRoadSpots(anchor VertexID) []Edge {
	if !b.ValidVertex(anchor) {
		return nil
	}
	var out []Edge
	for _, n := range b.vertices[anchor].neighbors {
		e := NewEdge(anchor, n)
		if b.edges[e] == NoSeat {
			out = append(out, e)
		}
	}
	sortEdges(out)
	return out
}

// PotentialSettlements returns empty vertices respecting the distance rule
// that touch one of the seat's roads.
func (b *Board) PotentialSettlements(s SeatID) []VertexID {
	var out []VertexID
	for _, v := range b.vertices {
		if v.owner != NoSeat || !b.distanceRuleOK(v.id) {
			continue
		}
		if b.touchesRoadOf(v.id, s) {
			out = append(out, v.id)
		}
	}
	return out
}

// PotentialRoads returns unowned edges extending the seat's network: an
// endpoint carries one of the seat's buildings, or connects through one of
// its roads without passing under an opponent's building.
func (b *Board) PotentialRoads(s SeatID) []Edge {
	var out []Edge
	for e, owner := range b.edges {
		if owner != NoSeat {
			continue
		}
		if b.roadReachable(e.A, s) || b.roadReachable(e.B, s) {
			out = append(out, e)
		}
	}
	sortEdges(out)
	return out
}

// PotentialCities returns the seat's settlement vertices (city upgrades).
func (b *Board) PotentialCities(s SeatID) []VertexID {
	var out []VertexID
	for _, v := range b.vertices {
		if v.owner == s && !v.city {
			out = append(out, v.id)
		}
	}
	return out
}

// RobberHexes returns every hex the robber may move to (all but current).
func (b *Board) RobberHexes() []HexID {
	out := make([]HexID, 0, len(b.tiles)-1)
	for _, t := range b.tiles {
		if t.ID != b.robber {
			out = append(out, t.ID)
		}
	}
	return out
}

// Occupants returns the seats, excluding one, holding a building on a
// corner of the given hex.
func (b *Board) Occupants(h HexID, excluding SeatID) []SeatID {
	seen := make(map[SeatID]bool)
	var out []SeatID
	for _, v := range b.vertices {
		if v.owner == NoSeat || v.owner == excluding {
			continue
		}
		for _, adj := range v.hexes {
			if adj == h && !seen[v.owner] {
				seen[v.owner] = true
				out = append(out, v.owner)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// distanceRuleOK reports whether no neighboring vertex is built on.
func (b *Board) distanceRuleOK(v VertexID) bool {
	for _, n := range b.vertices[v].neighbors {
		if b.vertices[n].owner != NoSeat {
			return false
		}
	}
	return true
}

// touchesRoadOf reports whether any edge at v belongs to seat s.
func (b *Board) touchesRoadOf(v VertexID, s SeatID) bool {
	for _, n := range b.vertices[v].neighbors {
		if b.edges[NewEdge(v, n)] == s {
			return true
		}
	}
	return false
}

// roadReachable reports whether seat s may extend a road through vertex v:
// either s has a building there, or s has a road at v and no opponent
// building blocks the junction.
func (b *Board) roadReachable(v VertexID, s SeatID) bool {
	owner := b.vertices[v].owner
	if owner == s {
		return true
	}
	if owner != NoSeat {
		return false
	}
	return b.touchesRoadOf(v, s)
}

// LongestRoadLength returns the longest simple road path the seat owns.
// Opponent buildings break the chain at their vertex.
func (b *Board) LongestRoadLength(s SeatID) int {
	// Collect the seat's edges per vertex.
	adj := make(map[VertexID][]Edge)
	for e, owner := range b.edges {
		if owner != s {
			continue
		}
		adj[e.A] = append(adj[e.A], e)
		adj[e.B] = append(adj[e.B], e)
	}

	blocked := func(v VertexID) bool {
		o := b.vertices[v].owner
		return o != NoSeat && o != s
	}

	var dfs func(at VertexID, used map[Edge]bool) int
	dfs = func(at VertexID, used map[Edge]bool) int {
		best := 0
		for _, e := range adj[at] {
			if used[e] {
				continue
			}
			next := e.A
			if next == at {
				next = e.B
			}
			used[e] = true
			length := 1
			if !blocked(next) {
				length += dfs(next, used)
			}
			if length > best {
				best = length
			}
			used[e] = false
		}
		return best
	}

	best := 0
	for v := range adj {
		if blocked(v) {
			continue
		}
		if l := dfs(v, make(map[Edge]bool)); l > best {
			best = l
		}
	}
	return best
}

func sortEdges(edges []Edge) {
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].A != edges[j].A {
			return edges[i].A < edges[j].A
		}
		return edges[i].B < edges[j].B
	})
}
