package agent

import (
	"context"
	"math/rand"

	"github.com/talgya/catan-table/internal/action"
	"github.com/talgya/catan-table/internal/board"
	"github.com/talgya/catan-table/internal/resource"
	"github.com/talgya/catan-table/internal/snapshot"
)

// surplusThreshold is the hand size of one kind past which the heuristic
// dumps cards at the bank.
const surplusThreshold = 6

// Heuristic is a rule-based seat: build when affordable, trade surplus to
// the bank, buy the occasional development card, decline all player
// trades.
type Heuristic struct {
	name string
	rng  *rand.Rand
}

// NewHeuristic returns a heuristic agent with its own random stream.
func NewHeuristic(name string, seed int64) *Heuristic {
	return &Heuristic{name: name, rng: rand.New(rand.NewSource(seed))}
}

func (a *Heuristic) Name() string { return a.name }

// Decide picks an action without consulting a model. It never fails.
func (a *Heuristic) Decide(_ context.Context, state *snapshot.State) (*action.Decision, error) {
	switch state.Phase {
	case snapshot.PhaseSetupSettlement:
		return decision("claiming the highest-value open spot", a.setupSettlement(state)), nil
	case snapshot.PhaseSetupRoad:
		return decision("connecting the new settlement", a.anyRoad(state)), nil
	case snapshot.PhaseDiscard:
		return decision("discarding from the largest stacks", a.discard(state)), nil
	case snapshot.PhaseRobber:
		return decision("blocking the strongest opponent", a.moveRobber(state)), nil
	case snapshot.PhaseNegotiation:
		// Heuristic players do not haggle.
		return decision("not interested in player trades",
			&action.RejectTrade{Reason: "not interested in player trades"}), nil
	case snapshot.PhaseCommunication, snapshot.PhasePrivateChat:
		return decision("nothing to say", a.declineChat(state)), nil
	default:
		return decision("playing the best affordable build", a.mainMove(state)), nil
	}
}

func decision(thoughts string, act action.Action) *action.Decision {
	return &action.Decision{Thoughts: thoughts, Action: act}
}

// setupSettlement prefers the ranked spot list, falling back to any
// legal vertex.
func (a *Heuristic) setupSettlement(state *snapshot.State) action.Action {
	available := make(map[int]bool, len(state.AvailableActions.BuildSettlement))
	for _, v := range state.AvailableActions.BuildSettlement {
		available[int(v)] = true
	}
	for _, spot := range state.Board.BestSpots {
		if available[int(spot.Vertex)] {
			return &action.BuildSettlement{Vertex: int(spot.Vertex)}
		}
	}
	if len(state.AvailableActions.BuildSettlement) > 0 {
		v := state.AvailableActions.BuildSettlement[a.rng.Intn(len(state.AvailableActions.BuildSettlement))]
		return &action.BuildSettlement{Vertex: int(v)}
	}
	return &action.EndTurn{}
}

func (a *Heuristic) anyRoad(state *snapshot.State) action.Action {
	roads := state.AvailableActions.BuildRoad
	if len(roads) == 0 {
		return &action.EndTurn{}
	}
	e := roads[a.rng.Intn(len(roads))]
	return &action.BuildRoad{V1: int(e.A), V2: int(e.B)}
}

// discard surrenders cards from the largest stacks first until the owed
// count is met.
func (a *Heuristic) discard(state *snapshot.State) action.Action {
	hand := state.You.Resources.Clone()
	out := resource.NewBundle()
	for n := 0; n < state.NumCardsToDiscard; n++ {
		best, bestKind := 0, resource.Kind("")
		for _, k := range resource.Kinds() {
			if hand[k] > best {
				best, bestKind = hand[k], k
			}
		}
		if bestKind == "" {
			break
		}
		hand[bestKind]--
		out[bestKind]++
	}
	return &action.DiscardCards{Resources: out}
}

// moveRobber targets the hex whose occupants hold the highest combined
// threat, robbing the most threatening of them.
func (a *Heuristic) moveRobber(state *snapshot.State) action.Action {
	if len(state.AvailableActions.MoveRobber) == 0 {
		return &action.EndTurn{}
	}

	bestHex, bestScore := -1, 0.0
	var victim string
	for _, h := range state.AvailableActions.MoveRobber {
		score := 0.0
		var topName string
		topThreat := -1.0
		for _, p := range state.Players {
			if p.Name == state.You.Name || !playerTouchesHex(state, p, h) {
				continue
			}
			score += p.ThreatLevel + 1
			if p.ResourceCount > 0 && p.ThreatLevel > topThreat {
				topThreat = p.ThreatLevel
				topName = p.Name
			}
		}
		if score > bestScore {
			bestHex, bestScore, victim = int(h), score, topName
		}
	}
	if bestHex < 0 {
		bestHex = int(state.AvailableActions.MoveRobber[a.rng.Intn(len(state.AvailableActions.MoveRobber))])
	}
	return &action.MoveRobber{Hex: bestHex, Victim: victim}
}

func (a *Heuristic) declineChat(state *snapshot.State) action.Action {
	if state.Phase == snapshot.PhasePrivateChat {
		return &action.EndPrivateChat{}
	}
	return &action.EndTurn{}
}

// mainMove builds in value order, dumps surplus at the bank, and buys a
// development card one turn in three.
func (a *Heuristic) mainMove(state *snapshot.State) action.Action {
	hand := state.You.Resources

	if len(state.AvailableActions.BuildCity) > 0 && hand.Contains(state.ActionCosts["build_city"]) {
		return &action.BuildCity{Vertex: int(state.AvailableActions.BuildCity[0])}
	}
	if len(state.AvailableActions.BuildSettlement) > 0 && hand.Contains(state.ActionCosts["build_settlement"]) {
		return a.setupSettlement(state)
	}
	if len(state.AvailableActions.BuildRoad) > 0 && hand.Contains(state.ActionCosts["build_road"]) {
		return a.anyRoad(state)
	}

	// Dump surplus at the bank: give from the biggest pile, take what the
	// hand lacks most.
	for _, give := range resource.Kinds() {
		if hand[give] < surplusThreshold {
			continue
		}
		receive := scarcestKind(hand, give)
		return &action.TradeWithBank{Give: give, Receive: receive}
	}

	if state.DevCardsLeft > 0 && hand.Contains(state.ActionCosts["buy_development_card"]) && a.rng.Intn(3) == 0 {
		return &action.BuyDevelopmentCard{}
	}
	return &action.EndTurn{}
}

func scarcestKind(hand resource.Bundle, exclude resource.Kind) resource.Kind {
	best := resource.Wheat
	bestCount := -1
	for _, k := range resource.Kinds() {
		if k == exclude {
			continue
		}
		if bestCount < 0 || hand[k] < bestCount {
			best, bestCount = k, hand[k]
		}
	}
	return best
}

// playerTouchesHex reports whether one of p's buildings sits on a corner
// of hex h.
func playerTouchesHex(state *snapshot.State, p snapshot.PlayerPublic, h board.HexID) bool {
	for _, hex := range state.Board.Hexes {
		if hex.Index != h {
			continue
		}
		for _, corner := range hex.Corners {
			for _, v := range p.Settlements {
				if v == corner {
					return true
				}
			}
			for _, v := range p.Cities {
				if v == corner {
					return true
				}
			}
		}
	}
	return false
}
