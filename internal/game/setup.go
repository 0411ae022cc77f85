package game

import (
	"context"
	"fmt"

	"github.com/talgya/catan-table/internal/action"
	"github.com/talgya/catan-table/internal/board"
	"github.com/talgya/catan-table/internal/resource"
	"github.com/talgya/catan-table/internal/seat"
	"github.com/talgya/catan-table/internal/snapshot"
)

// runSetup plays the two placement rounds: forward order, then reverse.
// The second settlement grants one card per adjacent producing tile.
func (c *Controller) runSetup(ctx context.Context) error {
	for _, s := range c.seats {
		if err := c.setupPlacement(ctx, s, false); err != nil {
			return err
		}
	}
	for i := len(c.seats) - 1; i >= 0; i-- {
		if err := c.setupPlacement(ctx, c.seats[i], true); err != nil {
			return err
		}
	}
	return nil
}

// setupPlacement walks one seat through settlement-then-road, retrying
// bad answers with feedback and falling back to the ranked spot list.
func (c *Controller) setupPlacement(ctx context.Context, s *seat.Seat, grantResources bool) error {
	vertex, err := c.setupSettlement(ctx, s)
	if err != nil {
		return err
	}

	if grantResources {
		grant := resource.NewBundle()
		for _, k := range c.board.AdjacentResources(vertex) {
			grant[k]++
		}
		s.Resources.Add(grant)
		c.emit(Event{Turn: c.turn, Seat: s.Name, Kind: EventProduction,
			Detail: fmt.Sprintf("setup grant %s", grant)})
	}

	return c.setupRoad(ctx, s, vertex)
}

func (c *Controller) setupSettlement(ctx context.Context, s *seat.Seat) (board.VertexID, error) {
	for attempt := 0; attempt < c.policy.SetupRetries; attempt++ {
		st := c.state(s, snapshot.PhaseSetupSettlement)
		d, err := c.decide(ctx, s, st)
		if err != nil {
			if ctx.Err() != nil {
				return 0, ctx.Err()
			}
			s.SetFeedback(fmt.Sprintf("error_agent_failure: %v", err))
			continue
		}

		build, ok := d.Action.(*action.BuildSettlement)
		if !ok {
			s.SetFeedback(fmt.Sprintf("error_invalid_action_type: expected build_settlement, got %s", d.Action.ActionType()))
			continue
		}
		v := board.VertexID(build.Vertex)
		if err := c.board.PlaceSettlement(s.ID, v, true); err != nil {
			s.SetFeedback(fmt.Sprintf("error_invalid_placement: %v", err))
			continue
		}
		c.recordSettlement(s, v)
		s.SetFeedback(fmt.Sprintf("success: placed settlement at %d", v))
		c.emit(Event{Turn: c.turn, Seat: s.Name, Kind: EventSetup, Detail: fmt.Sprintf("settlement at %d", v)})
		return v, nil
	}

	// Fallback: take the best open spot so the game can proceed.
	spots := c.board.SetupSettlementSpots()
	if len(spots) == 0 {
		return 0, fmt.Errorf("no setup settlement spots remain for %s", s.Name)
	}
	v := spots[0]
	if best := bestOpenSpot(c.board, spots); best >= 0 {
		v = best
	}
	if err := c.board.PlaceSettlement(s.ID, v, true); err != nil {
		return 0, fmt.Errorf("fallback setup settlement for %s: %w", s.Name, err)
	}
	c.recordSettlement(s, v)
	c.log.Warn("setup settlement fallback", "seat", s.Name, "vertex", v)
	c.emit(Event{Turn: c.turn, Seat: s.Name, Kind: EventSetup, Detail: fmt.Sprintf("fallback settlement at %d", v)})
	return v, nil
}

func (c *Controller) setupRoad(ctx context.Context, s *seat.Seat, anchor board.VertexID) error {
	for attempt := 0; attempt < c.policy.SetupRetries; attempt++ {
		st := c.state(s, snapshot.PhaseSetupRoad, func(r *snapshot.Request) {
			r.SetupRoadPending = true
			r.LastSettlement = anchor
		})
		d, err := c.decide(ctx, s, st)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.SetFeedback(fmt.Sprintf("error_agent_failure: %v", err))
			continue
		}

		build, ok := d.Action.(*action.BuildRoad)
		if !ok {
			s.SetFeedback(fmt.Sprintf("error_invalid_action_type: expected build_road, got %s", d.Action.ActionType()))
			continue
		}
		e := board.NewEdge(board.VertexID(build.V1), board.VertexID(build.V2))
		if !e.Touches(anchor) {
			s.SetFeedback(fmt.Sprintf("error_invalid_placement: road %d-%d must connect to the new settlement at %d", e.A, e.B, anchor))
			continue
		}
		if err := c.board.PlaceRoad(s.ID, e, anchor); err != nil {
			s.SetFeedback(fmt.Sprintf("error_invalid_placement: %v", err))
			continue
		}
		s.AddRoad(e)
		s.RoadLength = c.board.LongestRoadLength(s.ID)
		s.SetFeedback(fmt.Sprintf("success: built road %d-%d", e.A, e.B))
		c.emit(Event{Turn: c.turn, Seat: s.Name, Kind: EventSetup, Detail: fmt.Sprintf("road %d-%d", e.A, e.B)})
		return nil
	}

	// Fallback: first open edge at the settlement.
	roads := c.board.SetupRoadSpots(anchor)
	if len(roads) == 0 {
		return fmt.Errorf("no setup road spots at vertex %d for %s", anchor, s.Name)
	}
	e := roads[0]
	if err := c.board.PlaceRoad(s.ID, e, anchor); err != nil {
		return fmt.Errorf("fallback setup road for %s: %w", s.Name, err)
	}
	s.AddRoad(e)
	s.RoadLength = c.board.LongestRoadLength(s.ID)
	c.log.Warn("setup road fallback", "seat", s.Name, "edge", fmt.Sprintf("%d-%d", e.A, e.B))
	c.emit(Event{Turn: c.turn, Seat: s.Name, Kind: EventSetup, Detail: fmt.Sprintf("fallback road %d-%d", e.A, e.B)})
	return nil
}

// recordSettlement updates the seat's books for a placed settlement,
// including any port on the vertex.
func (c *Controller) recordSettlement(s *seat.Seat, v board.VertexID) {
	if p := c.board.PortAt(v); p != nil {
		s.AddSettlement(v, *p)
	} else {
		s.AddSettlement(v)
	}
}

// bestOpenSpot scores open vertices by production dots plus diversity.
func bestOpenSpot(b Gateway, spots []board.VertexID) board.VertexID {
	best, bestScore := board.VertexID(-1), -1
	for _, v := range spots {
		score := 0
		kinds := make(map[resource.Kind]bool)
		for _, h := range b.AdjacentHexes(v) {
			t := b.Tile(h)
			if t.Desert() {
				continue
			}
			score += snapshot.Dots(t.Token)
			kinds[t.Resource] = true
		}
		score += len(kinds) * 2
		if score > bestScore {
			best, bestScore = v, score
		}
	}
	return best
}
