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

// runMainPhase lets the seat act until it ends its turn or the action
// cap trips. Every outcome, success or failure, becomes feedback and a
// memory line; the win check runs after each action.
func (c *Controller) runMainPhase(ctx context.Context, s *seat.Seat) {
	for taken := 0; taken < c.policy.MainActionCap; taken++ {
		st := c.state(s, snapshot.PhaseMain)
		d, err := c.decide(ctx, s, st)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.SetFeedback(fmt.Sprintf("error_agent_failure: %v", err))
			s.Remember(fmt.Sprintf("Turn %d: decision failed (%v)", c.turn, err))
			continue
		}

		if _, done := d.Action.(*action.EndTurn); done {
			s.SetFeedback("success_end_turn")
			return
		}

		outcome := c.execute(ctx, s, st, d.Action)
		s.SetFeedback(outcome)
		s.Remember(fmt.Sprintf("Turn %d: %s -> %s", c.turn, d.Action.ActionType(), outcome))

		if c.checkWin(s) {
			return
		}
	}
	s.SetFeedback("info_turn_ended: action cap reached")
}

// execute validates and applies one main-turn action, returning the
// feedback line for the seat's next snapshot.
func (c *Controller) execute(ctx context.Context, s *seat.Seat, st *snapshot.State, act action.Action) string {
	switch a := act.(type) {
	case *action.BuildRoad:
		return c.buildRoad(s, st, a)
	case *action.BuildSettlement:
		return c.buildSettlement(s, st, a)
	case *action.BuildCity:
		return c.buildCity(s, st, a)
	case *action.BuyDevelopmentCard:
		return c.buyDevCard(s)
	case *action.TradeWithBank:
		return c.bankTrade(s, a)
	case *action.ProposeTrade:
		return c.proposeTrade(ctx, s, a)
	case *action.PlayKnightCard:
		return c.playKnight(s, a)
	case *action.GlobalMessage:
		if a.Message == "" {
			return "error_missing_input: send_global_message had no message content"
		}
		c.chatLog.Global(s.Name, a.Message)
		c.emit(Event{Turn: c.turn, Seat: s.Name, Kind: EventChat, Detail: a.Message})
		return "success: global message sent"
	case *action.InitiatePrivate:
		return c.runPrivateChat(ctx, s, a)
	case *action.NonBindingDeal:
		if a.Target == "" || a.Deal == "" {
			return "error_missing_input: offer_non_binding_deal needs target_player_name and deal_description"
		}
		line := fmt.Sprintf("Offers non-binding deal to %s: %q", a.Target, a.Deal)
		c.chatLog.Diplomatic(s.Name, "diplomatic_offer", line)
		c.emit(Event{Turn: c.turn, Seat: s.Name, Kind: EventDiplomacy, Detail: line})
		return "success_diplomatic_action_logged: deal offer logged"
	case *action.RequestEmbargo:
		if a.Target == "" || a.Reasoning == "" {
			return "error_missing_input: request_embargo needs target_player_name and reasoning"
		}
		line := fmt.Sprintf("Proposes an embargo against %s. Reason: %q", a.Target, a.Reasoning)
		c.chatLog.Diplomatic(s.Name, "diplomatic_embargo_request", line)
		c.emit(Event{Turn: c.turn, Seat: s.Name, Kind: EventDiplomacy, Detail: line})
		return "success_diplomatic_action_logged: embargo request logged"
	case *action.ShareInformation:
		if a.Information == "" {
			return "error_missing_input: share_information needs information"
		}
		line := fmt.Sprintf("Shares information: %q", a.Information)
		c.chatLog.Diplomatic(s.Name, "diplomatic_info_share", line)
		c.emit(Event{Turn: c.turn, Seat: s.Name, Kind: EventDiplomacy, Detail: line})
		return "success_diplomatic_action_logged: information shared"
	default:
		return fmt.Sprintf("error_unknown_action: %s is not valid during the main phase", act.ActionType())
	}
}

func (c *Controller) buildRoad(s *seat.Seat, st *snapshot.State, a *action.BuildRoad) string {
	if s.RoadsLeft() == 0 {
		return "error_no_pieces: all road pieces are on the board"
	}
	if !s.Resources.Contains(resource.RoadCost) {
		return fmt.Sprintf("error_insufficient_resources: road costs %s, you have %s", resource.RoadCost, s.Resources)
	}
	e := board.NewEdge(board.VertexID(a.V1), board.VertexID(a.V2))
	if !edgeListed(st.AvailableActions.BuildRoad, e) {
		return fmt.Sprintf("error_invalid_placement: road %d-%d is not in available_actions.build_road", e.A, e.B)
	}
	if err := c.board.PlaceRoad(s.ID, e, -1); err != nil {
		return fmt.Sprintf("error_invalid_placement: %v", err)
	}
	if err := s.Resources.Subtract(resource.RoadCost); err != nil {
		return fmt.Sprintf("error_insufficient_resources: %v", err)
	}
	s.AddRoad(e)
	s.RoadLength = c.board.LongestRoadLength(s.ID)
	c.checkLongestRoad(s)
	c.emit(Event{Turn: c.turn, Seat: s.Name, Kind: EventBuild, Detail: fmt.Sprintf("road %d-%d", e.A, e.B)})
	return fmt.Sprintf("success: built road from %d to %d", e.A, e.B)
}

func (c *Controller) buildSettlement(s *seat.Seat, st *snapshot.State, a *action.BuildSettlement) string {
	if s.SettlementsLeft() == 0 {
		return "error_no_pieces: all settlement pieces are on the board"
	}
	if !s.Resources.Contains(resource.SettlementCost) {
		return fmt.Sprintf("error_insufficient_resources: settlement costs %s, you have %s", resource.SettlementCost, s.Resources)
	}
	v := board.VertexID(a.Vertex)
	if !vertexListed(st.AvailableActions.BuildSettlement, v) {
		return fmt.Sprintf("error_invalid_placement: vertex %d is not in available_actions.build_settlement", v)
	}
	if err := c.board.PlaceSettlement(s.ID, v, false); err != nil {
		return fmt.Sprintf("error_invalid_placement: %v", err)
	}
	if err := s.Resources.Subtract(resource.SettlementCost); err != nil {
		return fmt.Sprintf("error_insufficient_resources: %v", err)
	}
	c.recordSettlement(s, v)
	// A new settlement can sever an opponent's longest road.
	c.recountRoads()
	c.emit(Event{Turn: c.turn, Seat: s.Name, Kind: EventBuild, Detail: fmt.Sprintf("settlement at %d", v)})
	return fmt.Sprintf("success: built settlement at %d", v)
}

func (c *Controller) buildCity(s *seat.Seat, st *snapshot.State, a *action.BuildCity) string {
	if s.CitiesLeft() == 0 {
		return "error_no_pieces: all city pieces are on the board"
	}
	if !s.Resources.Contains(resource.CityCost) {
		return fmt.Sprintf("error_insufficient_resources: city costs %s, you have %s", resource.CityCost, s.Resources)
	}
	v := board.VertexID(a.Vertex)
	if !vertexListed(st.AvailableActions.BuildCity, v) {
		return fmt.Sprintf("error_invalid_placement: vertex %d is not in available_actions.build_city", v)
	}
	if err := c.board.PlaceCity(s.ID, v); err != nil {
		return fmt.Sprintf("error_invalid_placement: %v", err)
	}
	if err := s.Resources.Subtract(resource.CityCost); err != nil {
		return fmt.Sprintf("error_insufficient_resources: %v", err)
	}
	if err := s.UpgradeToCity(v); err != nil {
		return fmt.Sprintf("error_rule_violation: %v", err)
	}
	c.emit(Event{Turn: c.turn, Seat: s.Name, Kind: EventBuild, Detail: fmt.Sprintf("city at %d", v)})
	return fmt.Sprintf("success: built city at %d", v)
}

func (c *Controller) buyDevCard(s *seat.Seat) string {
	if c.board.DevCardsLeft() == 0 {
		return "error_no_dev_cards_left: the deck is empty"
	}
	if !s.Resources.Contains(resource.DevCardCost) {
		return fmt.Sprintf("error_insufficient_resources: a development card costs %s, you have %s", resource.DevCardCost, s.Resources)
	}
	card, ok := c.board.DrawDevCard()
	if !ok {
		return "error_no_dev_cards_left: the deck is empty"
	}
	if err := s.Resources.Subtract(resource.DevCardCost); err != nil {
		return fmt.Sprintf("error_insufficient_resources: %v", err)
	}
	s.GainDevCard(card)
	c.emit(Event{Turn: c.turn, Seat: s.Name, Kind: EventDevCard, Detail: "bought a development card"})
	return fmt.Sprintf("success: bought a development card (%s)", card)
}

func (c *Controller) bankTrade(s *seat.Seat, a *action.TradeWithBank) string {
	if !a.Give.Valid() || !a.Receive.Valid() {
		return fmt.Sprintf("error_invalid_input: bad resource kinds give=%q receive=%q", a.Give, a.Receive)
	}
	if a.Give == a.Receive {
		return "error_invalid_input: cannot trade a resource for itself"
	}
	ratio := s.BankRatio(a.Give)
	if s.Resources[a.Give] < ratio {
		return fmt.Sprintf("error_insufficient_resources: need %d %s for 1 %s, you have %d", ratio, a.Give, a.Receive, s.Resources[a.Give])
	}
	s.Resources[a.Give] -= ratio
	s.Resources[a.Receive]++
	c.emit(Event{Turn: c.turn, Seat: s.Name, Kind: EventBankTrade,
		Detail: fmt.Sprintf("%d %s for 1 %s", ratio, a.Give, a.Receive)})
	return fmt.Sprintf("success: traded %d %s for 1 %s with the bank", ratio, a.Give, a.Receive)
}

func (c *Controller) playKnight(s *seat.Seat, a *action.PlayKnightCard) string {
	if s.DevCards[board.Knight] == 0 {
		return "error_no_knight_card: you do not have a knight card"
	}
	if err := c.executeRobber(s, board.HexID(a.Hex), a.Victim); err != nil {
		return fmt.Sprintf("error_invalid_placement: %v", err)
	}
	if err := s.PlayDevCard(board.Knight); err != nil {
		return fmt.Sprintf("error_no_knight_card: %v", err)
	}
	s.KnightsPlayed++
	c.checkLargestArmy(s)
	c.emit(Event{Turn: c.turn, Seat: s.Name, Kind: EventDevCard,
		Detail: fmt.Sprintf("played knight, robber to hex %d", a.Hex)})
	return fmt.Sprintf("success: played knight, robber moved to hex %d", a.Hex)
}

// checkLongestRoad awards or transfers the longest road bonus. Five
// segments qualify; ties keep the current holder.
func (c *Controller) checkLongestRoad(candidate *seat.Seat) {
	if candidate.RoadLength < 5 || candidate.LongestRoad {
		return
	}
	longestOther := 4
	var holder *seat.Seat
	for _, s := range c.seats {
		if s.LongestRoad {
			holder = s
		}
		if s.ID != candidate.ID && s.RoadLength > longestOther {
			longestOther = s.RoadLength
		}
	}
	if candidate.RoadLength <= longestOther {
		return
	}
	if holder != nil && holder.ID != candidate.ID {
		holder.LongestRoad = false
		holder.VictoryPoints -= 2
	}
	candidate.LongestRoad = true
	candidate.VictoryPoints += 2
	c.emit(Event{Turn: c.turn, Seat: candidate.Name, Kind: EventAward,
		Detail: fmt.Sprintf("longest road (%d segments)", candidate.RoadLength)})
}

// checkLargestArmy awards or transfers the largest army bonus. Three
// knights qualify; ties keep the current holder.
func (c *Controller) checkLargestArmy(candidate *seat.Seat) {
	if candidate.KnightsPlayed < 3 || candidate.LargestArmy {
		return
	}
	mostOther := 2
	var holder *seat.Seat
	for _, s := range c.seats {
		if s.LargestArmy {
			holder = s
		}
		if s.ID != candidate.ID && s.KnightsPlayed > mostOther {
			mostOther = s.KnightsPlayed
		}
	}
	if candidate.KnightsPlayed <= mostOther {
		return
	}
	if holder != nil && holder.ID != candidate.ID {
		holder.LargestArmy = false
		holder.VictoryPoints -= 2
	}
	candidate.LargestArmy = true
	candidate.VictoryPoints += 2
	c.emit(Event{Turn: c.turn, Seat: candidate.Name, Kind: EventAward,
		Detail: fmt.Sprintf("largest army (%d knights)", candidate.KnightsPlayed)})
}

// recountRoads refreshes every seat's longest chain after a board change
// that can cut paths.
func (c *Controller) recountRoads() {
	for _, s := range c.seats {
		s.RoadLength = c.board.LongestRoadLength(s.ID)
	}
}

func vertexListed(list []board.VertexID, v board.VertexID) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func edgeListed(list []board.Edge, e board.Edge) bool {
	for _, x := range list {
		if x == e {
			return true
		}
	}
	return false
}
