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

// runCommunicationPhase gives every seat one chance to speak before the
// round's first dice roll.
func (c *Controller) runCommunicationPhase(ctx context.Context) {
	for _, s := range c.seats {
		st := c.state(s, snapshot.PhaseCommunication)
		d, err := c.decide(ctx, s, st)
		if err != nil {
			c.log.Debug("communication skipped", "seat", s.Name, "error", err)
			continue
		}
		msg, ok := d.Action.(*action.GlobalMessage)
		if !ok || msg.Message == "" {
			continue
		}
		c.chatLog.Global(s.Name, msg.Message)
		c.emit(Event{Turn: c.turn, Seat: s.Name, Kind: EventChat, Detail: msg.Message})
	}
}

// distribute pays out production for a non-seven roll.
func (c *Controller) distribute(roll int) {
	payouts := c.board.DistributeForRoll(roll)
	for id, bundle := range payouts {
		s := c.seatByID(id)
		if s == nil || bundle.Total() == 0 {
			continue
		}
		s.Resources.Add(bundle)
		c.emit(Event{Turn: c.turn, Seat: s.Name, Kind: EventProduction,
			Detail: fmt.Sprintf("roll %d pays %s", roll, bundle)})
	}
}

// runDiscardPhase makes every seat over seven cards surrender half,
// rounded down. Invalid answers get one retry with feedback, then the
// fallback discards from the largest stacks.
func (c *Controller) runDiscardPhase(ctx context.Context) {
	for _, s := range c.seats {
		total := s.TotalCards()
		if total <= 7 {
			continue
		}
		owed := total / 2
		s.PendingDiscard = owed

		done := false
		for attempt := 0; attempt <= c.policy.MandatoryRetries && !done; attempt++ {
			st := c.state(s, snapshot.PhaseDiscard, func(r *snapshot.Request) {
				r.DiscardMandatory = true
				r.NumToDiscard = owed
			})
			d, err := c.decide(ctx, s, st)
			if err != nil {
				s.SetFeedback(fmt.Sprintf("error_agent_failure: %v", err))
				continue
			}
			discard, ok := d.Action.(*action.DiscardCards)
			if !ok {
				s.SetFeedback(fmt.Sprintf("error_invalid_action_type: expected discard_cards, got %s", d.Action.ActionType()))
				continue
			}
			bundle, err := discard.Resources.Normalize()
			if err != nil {
				s.SetFeedback(fmt.Sprintf("error_invalid_input: %v", err))
				continue
			}
			if bundle.Total() != owed {
				s.SetFeedback(fmt.Sprintf("error_wrong_discard_count: proposed %d cards, must discard exactly %d", bundle.Total(), owed))
				continue
			}
			if err := s.Resources.Subtract(bundle); err != nil {
				s.SetFeedback(fmt.Sprintf("error_insufficient_resources: %v", err))
				continue
			}
			done = true
			c.emit(Event{Turn: c.turn, Seat: s.Name, Kind: EventDiscard, Detail: bundle.String()})
		}

		if !done {
			bundle := c.fallbackDiscard(s, owed)
			c.log.Warn("discard fallback", "seat", s.Name, "cards", bundle.String())
			c.emit(Event{Turn: c.turn, Seat: s.Name, Kind: EventDiscard, Detail: "fallback " + bundle.String()})
		}
		s.PendingDiscard = 0
	}
}

// fallbackDiscard removes owed random cards from the seat's hand.
func (c *Controller) fallbackDiscard(s *seat.Seat, owed int) resource.Bundle {
	var flat []resource.Kind
	for _, k := range resource.Kinds() {
		for i := 0; i < s.Resources[k]; i++ {
			flat = append(flat, k)
		}
	}
	c.rng.Shuffle(len(flat), func(i, j int) { flat[i], flat[j] = flat[j], flat[i] })

	out := resource.NewBundle()
	for i := 0; i < owed && i < len(flat); i++ {
		out[flat[i]]++
	}
	if err := s.Resources.Subtract(out); err != nil {
		// Cannot happen: out was drawn from the hand.
		c.log.Error("fallback discard subtract failed", "seat", s.Name, "error", err)
	}
	return out
}

// runRobberPhase makes the roller move the robber and optionally steal.
// Retries get feedback; the fallback picks a random legal hex and a
// uniform victim among its occupants.
func (c *Controller) runRobberPhase(ctx context.Context, s *seat.Seat) {
	for attempt := 0; attempt <= c.policy.MandatoryRetries; attempt++ {
		st := c.state(s, snapshot.PhaseRobber, func(r *snapshot.Request) {
			r.RobberMandatory = true
		})
		d, err := c.decide(ctx, s, st)
		if err != nil {
			s.SetFeedback(fmt.Sprintf("error_agent_failure: %v", err))
			continue
		}
		mv, ok := d.Action.(*action.MoveRobber)
		if !ok {
			s.SetFeedback(fmt.Sprintf("error_invalid_action_type: expected move_robber, got %s", d.Action.ActionType()))
			continue
		}
		if err := c.executeRobber(s, board.HexID(mv.Hex), mv.Victim); err != nil {
			s.SetFeedback(fmt.Sprintf("error_invalid_placement: %v", err))
			continue
		}
		return
	}

	// Fallback: random legal hex, uniform victim.
	hexes := c.board.RobberHexes()
	h := hexes[c.rng.Intn(len(hexes))]
	victim := ""
	if occupants := c.board.Occupants(h, s.ID); len(occupants) > 0 {
		if v := c.seatByID(occupants[c.rng.Intn(len(occupants))]); v != nil {
			victim = v.Name
		}
	}
	if err := c.executeRobber(s, h, victim); err != nil {
		c.log.Error("fallback robber move failed", "seat", s.Name, "hex", h, "error", err)
	}
}

// executeRobber moves the robber and resolves the steal. The reputation
// penalty lands only when a card actually changes hands.
func (c *Controller) executeRobber(s *seat.Seat, h board.HexID, victimName string) error {
	var victim *seat.Seat
	if victimName != "" {
		victim = c.seatByName(victimName)
		if victim == nil {
			return fmt.Errorf("player %q not found", victimName)
		}
		if victim.ID == s.ID {
			return fmt.Errorf("cannot rob yourself")
		}
		adjacent := false
		for _, occ := range c.board.Occupants(h, s.ID) {
			if occ == victim.ID {
				adjacent = true
			}
		}
		if !adjacent {
			return fmt.Errorf("%s has no building on hex %d", victimName, h)
		}
	}

	if err := c.board.MoveRobber(h); err != nil {
		return err
	}

	detail := fmt.Sprintf("robber to hex %d", h)
	if victim != nil {
		if stolen, ok := c.stealCard(s, victim); ok {
			c.reputation.PenalizeRobbery(s.Name, victim.Name)
			detail = fmt.Sprintf("robber to hex %d, stole %s from %s", h, stolen, victim.Name)
			s.SetFeedback(fmt.Sprintf("success: moved robber and stole 1 %s from %s", stolen, victim.Name))
			victim.SetFeedback(fmt.Sprintf("info_robbed: %s stole 1 %s from you", s.Name, stolen))
		} else {
			detail = fmt.Sprintf("robber to hex %d, %s had nothing to steal", h, victim.Name)
			s.SetFeedback(fmt.Sprintf("info: moved robber, %s had no cards", victim.Name))
		}
	} else {
		s.SetFeedback(fmt.Sprintf("success: moved robber to hex %d", h))
	}
	c.emit(Event{Turn: c.turn, Seat: s.Name, Kind: EventRobber, Detail: detail})
	return nil
}

// stealCard moves one uniformly random card from victim to thief.
func (c *Controller) stealCard(thief, victim *seat.Seat) (resource.Kind, bool) {
	total := victim.TotalCards()
	if total == 0 {
		return "", false
	}
	pick := c.rng.Intn(total)
	for _, k := range resource.Kinds() {
		if pick < victim.Resources[k] {
			victim.Resources[k]--
			thief.Resources[k]++
			return k, true
		}
		pick -= victim.Resources[k]
	}
	return "", false
}

func (c *Controller) seatByID(id board.SeatID) *seat.Seat {
	for _, s := range c.seats {
		if s.ID == id {
			return s
		}
	}
	return nil
}
