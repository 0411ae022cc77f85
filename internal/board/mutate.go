package board

import (
	"fmt"

	"github.com/talgya/catan-table/internal/resource"
)

// PlaceSettlement puts a settlement for seat s on vertex v. During setup
// the connectivity requirement is waived; the distance rule always holds.
func (b *Board) PlaceSettlement(s SeatID, v VertexID, setup bool) error {
	if err := b.checkVertex(v); err != nil {
		return err
	}
	vx := b.vertices[v]
	if vx.owner != NoSeat {
		return fmt.Errorf("vertex %d is already occupied", v)
	}
	if !b.distanceRuleOK(v) {
		return fmt.Errorf("vertex %d violates the distance rule", v)
	}
	if !setup && !b.touchesRoadOf(v, s) {
		return fmt.Errorf("vertex %d does not touch one of your roads", v)
	}
	vx.owner = s
	return nil
}

// PlaceRoad puts a road for seat s on edge e. When anchor is a valid
// vertex (setup placement), the road must touch it; otherwise the road
// must extend the seat's network.
func (b *Board) PlaceRoad(s SeatID, e Edge, anchor VertexID) error {
	owner, ok := b.edges[e]
	if !ok {
		return fmt.Errorf("edge %d-%d does not exist on the board", e.A, e.B)
	}
	if owner != NoSeat {
		return fmt.Errorf("edge %d-%d is already occupied", e.A, e.B)
	}
	if b.ValidVertex(anchor) {
		if !e.Touches(anchor) {
			return fmt.Errorf("edge %d-%d does not touch your new settlement", e.A, e.B)
		}
	} else if !b.roadReachable(e.A, s) && !b.roadReachable(e.B, s) {
		return fmt.Errorf("edge %d-%d does not connect to your network", e.A, e.B)
	}
	b.edges[e] = s
	return nil
}

// PlaceCity upgrades the seat's settlement at v to a city.
func (b *Board) PlaceCity(s SeatID, v VertexID) error {
	if err := b.checkVertex(v); err != nil {
		return err
	}
	vx := b.vertices[v]
	if vx.owner != s {
		return fmt.Errorf("vertex %d does not hold one of your settlements", v)
	}
	if vx.city {
		return fmt.Errorf("vertex %d is already a city", v)
	}
	vx.city = true
	return nil
}

// MoveRobber places the robber on hex h. It must leave its current tile.
func (b *Board) MoveRobber(h HexID) error {
	if b.Tile(h) == nil {
		return fmt.Errorf("hex %d does not exist on the board", h)
	}
	if h == b.robber {
		return fmt.Errorf("robber must move to a different hex")
	}
	b.robber = h
	return nil
}

// DistributeForRoll returns per-seat production for a dice roll: one card
// per settlement, two per city, on matching tiles not held by the robber.
func (b *Board) DistributeForRoll(roll int) map[SeatID]resource.Bundle {
	out := make(map[SeatID]resource.Bundle)
	for _, t := range b.tiles {
		if t.Desert() || t.Token != roll || t.ID == b.robber {
			continue
		}
		for _, v := range b.vertices {
			if v.owner == NoSeat {
				continue
			}
			for _, h := range v.hexes {
				if h != t.ID {
					continue
				}
				n := 1
				if v.city {
					n = 2
				}
				if out[v.owner] == nil {
					out[v.owner] = resource.NewBundle()
				}
				out[v.owner][t.Resource] += n
			}
		}
	}
	return out
}
