package game

import (
	"context"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/talgya/catan-table/internal/action"
	"github.com/talgya/catan-table/internal/agent"
	"github.com/talgya/catan-table/internal/board"
	"github.com/talgya/catan-table/internal/resource"
	"github.com/talgya/catan-table/internal/seat"
	"github.com/talgya/catan-table/internal/snapshot"
)

// scripted serves queued actions for one phase and delegates everything
// else to a heuristic player, so setup and mandatory phases stay legal.
type scripted struct {
	*agent.Heuristic
	phase snapshot.Phase
	queue []action.Action
	// otherwise returned once the queue is drained
	otherwise action.Action
}

func (a *scripted) Decide(ctx context.Context, st *snapshot.State) (*action.Decision, error) {
	if st.Phase != a.phase {
		return a.Heuristic.Decide(ctx, st)
	}
	if len(a.queue) == 0 {
		if a.otherwise != nil {
			return &action.Decision{Action: a.otherwise}, nil
		}
		return &action.Decision{Action: &action.EndTurn{}}, nil
	}
	next := a.queue[0]
	a.queue = a.queue[1:]
	return &action.Decision{Action: next}, nil
}

func testTable(t *testing.T) (*Controller, []*seat.Seat) {
	t.Helper()
	b := board.Generate(board.ModeClassic, rand.New(rand.NewSource(7)))
	seats := []*seat.Seat{
		seat.New(0, "Alice", "red"),
		seat.New(1, "Bob", "blue"),
		seat.New(2, "Carol", "white"),
	}
	agents := map[board.SeatID]agent.Agent{
		0: agent.NewHeuristic("Alice", 1),
		1: agent.NewHeuristic("Bob", 2),
		2: agent.NewHeuristic("Carol", 3),
	}
	c, err := New(Config{
		Board:  b,
		Seats:  seats,
		Agents: agents,
		Policy: DefaultPolicy(),
		Roller: NewSeededRoller(11),
		Seed:   11,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, seats
}

func TestNewRejectsBadTables(t *testing.T) {
	b := board.Generate(board.ModeClassic, rand.New(rand.NewSource(1)))
	_, err := New(Config{Board: b, Seats: []*seat.Seat{seat.New(0, "Solo", "red"), seat.New(1, "Duo", "blue")}})
	if err == nil {
		t.Fatal("expected error for two seats")
	}
	seats := []*seat.Seat{seat.New(0, "A", "red"), seat.New(1, "B", "blue"), seat.New(2, "C", "white")}
	_, err = New(Config{Board: b, Seats: seats, Agents: map[board.SeatID]agent.Agent{0: agent.NewHeuristic("A", 1)}})
	if err == nil {
		t.Fatal("expected error for seat without agent")
	}
}

func TestHeuristicGameRuns(t *testing.T) {
	c, seats := testTable(t)
	c.policy.MaxRounds = 25
	c.policy.DecisionTimeout = time.Second

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := c.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	for _, s := range seats {
		if len(s.Settlements)+len(s.Cities) < 2 {
			t.Errorf("%s ended setup with %d buildings", s.Name, len(s.Settlements)+len(s.Cities))
		}
		if s.VictoryPoints < 2 {
			t.Errorf("%s has %d points, want at least the setup settlements", s.Name, s.VictoryPoints)
		}
	}
	if c.Turn() == 0 {
		t.Error("no turns were played")
	}
	total := 0
	for _, n := range c.DiceStats() {
		total += n
	}
	if total != c.Turn() {
		t.Errorf("dice stats count %d rolls over %d turns", total, c.Turn())
	}
}

func TestDiscardOwesHalfRoundedDown(t *testing.T) {
	c, seats := testTable(t)
	s := seats[0]
	s.Resources = resource.Bundle{resource.Wood: 4, resource.Brick: 3, resource.Sheep: 2}

	// Wrong total first, then a correct hand.
	c.agents[s.ID] = &scripted{
		Heuristic: agent.NewHeuristic(s.Name, 1),
		phase:     snapshot.PhaseDiscard,
		queue: []action.Action{
			&action.DiscardCards{Resources: resource.Bundle{resource.Wood: 1}},
			&action.DiscardCards{Resources: resource.Bundle{resource.Wood: 2, resource.Brick: 2}},
		},
	}

	c.runDiscardPhase(context.Background())
	if got := s.TotalCards(); got != 5 {
		t.Fatalf("after discarding half of 9, hand is %d cards, want 5", got)
	}
	if fb := s.TakeFeedback(); fb == "" {
		t.Error("expected feedback from the rejected discard")
	}
}

func TestDiscardFallbackWhenAgentMisbehaves(t *testing.T) {
	c, seats := testTable(t)
	s := seats[1]
	s.Resources = resource.Bundle{resource.Ore: 8}

	c.agents[s.ID] = &scripted{
		Heuristic: agent.NewHeuristic(s.Name, 1),
		phase:     snapshot.PhaseDiscard,
		otherwise: &action.EndTurn{},
	}

	c.runDiscardPhase(context.Background())
	if got := s.TotalCards(); got != 4 {
		t.Fatalf("fallback discard left %d cards, want 4", got)
	}
}

func TestRobberyPenaltyOnlyOnSuccessfulSteal(t *testing.T) {
	c, seats := testTable(t)
	robber, victim := seats[0], seats[1]

	// Put a victim settlement on an inland corner so a second robber
	// move stays adjacent to it.
	target, v := pickRobberTargetWithCorner(t, c)
	if err := c.board.PlaceSettlement(victim.ID, v, true); err != nil {
		t.Fatalf("place settlement: %v", err)
	}
	victim.AddSettlement(v)

	victim.Resources = resource.Bundle{resource.Wheat: 2}
	if err := c.executeRobber(robber, target, victim.Name); err != nil {
		t.Fatalf("executeRobber: %v", err)
	}
	if got := c.reputation.Score(victim.Name, robber.Name); got != -3 {
		t.Errorf("victim regard for robber = %d, want -3", got)
	}
	if robber.TotalCards() != 1 || victim.TotalCards() != 1 {
		t.Errorf("steal moved %d/%d cards", robber.TotalCards(), victim.TotalCards())
	}

	// Second robbery against an empty hand moves no card and no score.
	victim.Resources = resource.NewBundle()
	next := pickAnotherRobberTarget(t, c, v)
	if err := c.executeRobber(robber, next, victim.Name); err != nil {
		t.Fatalf("executeRobber empty hand: %v", err)
	}
	if got := c.reputation.Score(victim.Name, robber.Name); got != -3 {
		t.Errorf("empty-hand robbery changed score to %d", got)
	}
}

func TestRobberRejectsNonAdjacentVictim(t *testing.T) {
	c, seats := testTable(t)
	target := pickRobberTarget(t, c)
	if err := c.executeRobber(seats[0], target, seats[2].Name); err == nil {
		t.Fatal("expected error robbing a player with no building on the hex")
	}
	if err := c.executeRobber(seats[0], target, seats[0].Name); err == nil {
		t.Fatal("expected error robbing yourself")
	}
}

func TestNegotiationAcceptMovesResourcesAndReputation(t *testing.T) {
	c, seats := testTable(t)
	proposer, partner := seats[0], seats[1]
	proposer.Resources = resource.Bundle{resource.Wood: 1, resource.Sheep: 1}
	partner.Resources = resource.Bundle{resource.Brick: 2}

	c.agents[partner.ID] = &scripted{
		Heuristic: agent.NewHeuristic(partner.Name, 1),
		phase:     snapshot.PhaseNegotiation,
		queue:     []action.Action{&action.AcceptTrade{}},
	}

	out := c.proposeTrade(context.Background(), proposer, &action.ProposeTrade{
		Partner:   partner.Name,
		Offered:   resource.Bundle{resource.Wood: 1, resource.Sheep: 1},
		Requested: resource.Bundle{resource.Brick: 1},
	})
	if out != "success_trade_executed: trade with Bob completed" {
		t.Fatalf("proposeTrade = %q", out)
	}
	if proposer.Resources[resource.Brick] != 1 || proposer.Resources[resource.Wood] != 0 {
		t.Errorf("proposer hand after trade: %s", proposer.Resources)
	}
	if partner.Resources[resource.Wood] != 1 || partner.Resources[resource.Sheep] != 1 || partner.Resources[resource.Brick] != 1 {
		t.Errorf("partner hand after trade: %s", partner.Resources)
	}
	if c.reputation.Score(proposer.Name, partner.Name) != 2 || c.reputation.Score(partner.Name, proposer.Name) != 2 {
		t.Error("completed trade should raise regard both ways")
	}
	if c.session != nil {
		t.Error("session should be cleared after the negotiation")
	}
}

func TestNegotiationAcceptFailsWhenAcceptorCannotPay(t *testing.T) {
	c, seats := testTable(t)
	proposer, partner := seats[0], seats[1]
	proposer.Resources = resource.Bundle{resource.Wood: 1}
	partner.Resources = resource.NewBundle()

	c.agents[partner.ID] = &scripted{
		Heuristic: agent.NewHeuristic(partner.Name, 1),
		phase:     snapshot.PhaseNegotiation,
		queue:     []action.Action{&action.AcceptTrade{}},
	}

	out := c.proposeTrade(context.Background(), proposer, &action.ProposeTrade{
		Partner:   partner.Name,
		Offered:   resource.Bundle{resource.Wood: 1},
		Requested: resource.Bundle{resource.Brick: 1},
	})
	if out != "info_trade_rejected: Bob rejected the trade" {
		t.Fatalf("proposeTrade = %q", out)
	}
	if proposer.Resources[resource.Wood] != 1 {
		t.Error("no resources should move on a failed acceptance")
	}
	if c.reputation.Score(proposer.Name, partner.Name) != 0 {
		t.Error("failed trade should not raise regard")
	}
}

func TestNegotiationCounterThenWalkAway(t *testing.T) {
	c, seats := testTable(t)
	proposer, partner := seats[0], seats[1]
	proposer.Resources = resource.Bundle{resource.Wood: 2}
	partner.Resources = resource.Bundle{resource.Brick: 2}

	c.agents[partner.ID] = &scripted{
		Heuristic: agent.NewHeuristic(partner.Name, 1),
		phase:     snapshot.PhaseNegotiation,
		queue: []action.Action{&action.CounterOffer{
			Offered:   resource.Bundle{resource.Brick: 1},
			Requested: resource.Bundle{resource.Wood: 2},
		}},
	}
	c.agents[proposer.ID] = &scripted{
		Heuristic: agent.NewHeuristic(proposer.Name, 1),
		phase:     snapshot.PhaseNegotiation,
		queue:     []action.Action{&action.EndNegotiation{}},
	}

	out := c.proposeTrade(context.Background(), proposer, &action.ProposeTrade{
		Partner:   partner.Name,
		Offered:   resource.Bundle{resource.Wood: 1},
		Requested: resource.Bundle{resource.Brick: 1},
	})
	if out != "info_negotiation_ended: a player walked away from the negotiation" {
		t.Fatalf("proposeTrade = %q", out)
	}
	if proposer.Resources[resource.Wood] != 2 || partner.Resources[resource.Brick] != 2 {
		t.Error("hands must be untouched after a walk-away")
	}
}

func TestNegotiationRejectKeepsHands(t *testing.T) {
	c, seats := testTable(t)
	proposer, partner := seats[0], seats[1]
	proposer.Resources = resource.Bundle{resource.Wood: 2}
	partner.Resources = resource.Bundle{resource.Brick: 2}

	c.agents[partner.ID] = &scripted{
		Heuristic: agent.NewHeuristic(partner.Name, 1),
		phase:     snapshot.PhaseNegotiation,
		queue:     []action.Action{&action.RejectTrade{Reason: "saving brick for a city"}},
	}

	out := c.proposeTrade(context.Background(), proposer, &action.ProposeTrade{
		Partner:   partner.Name,
		Offered:   resource.Bundle{resource.Wood: 1},
		Requested: resource.Bundle{resource.Brick: 1},
	})
	if !strings.HasPrefix(out, "info_trade_rejected") {
		t.Fatalf("proposeTrade = %q", out)
	}
	if proposer.Resources[resource.Wood] != 2 || partner.Resources[resource.Brick] != 2 {
		t.Error("hands must be untouched after a rejection")
	}
	if fb := proposer.TakeFeedback(); !strings.HasPrefix(fb, "info_trade_rejected") {
		t.Errorf("proposer feedback = %q", fb)
	}
}

func TestNegotiationProposerCannotCoverOffer(t *testing.T) {
	c, seats := testTable(t)
	out := c.proposeTrade(context.Background(), seats[0], &action.ProposeTrade{
		Partner: seats[1].Name,
		Offered: resource.Bundle{resource.Ore: 3},
	})
	if !strings.HasPrefix(out, "error") {
		t.Fatalf("expected error feedback, got %q", out)
	}
}

func TestBankTradeUsesRatio(t *testing.T) {
	c, seats := testTable(t)
	s := seats[0]
	s.Resources = resource.Bundle{resource.Wood: 4}
	out := c.bankTrade(s, &action.TradeWithBank{Give: resource.Wood, Receive: resource.Ore})
	if !strings.HasPrefix(out, "success") {
		t.Fatalf("bankTrade = %q", out)
	}
	if s.Resources[resource.Wood] != 0 || s.Resources[resource.Ore] != 1 {
		t.Errorf("hand after bank trade: %s", s.Resources)
	}

	out = c.bankTrade(s, &action.TradeWithBank{Give: resource.Ore, Receive: resource.Ore})
	if !strings.HasPrefix(out, "error") {
		t.Fatalf("same-kind trade accepted: %q", out)
	}
}

func TestLongestRoadTransfers(t *testing.T) {
	c, seats := testTable(t)
	a, b := seats[0], seats[1]

	a.RoadLength = 5
	c.checkLongestRoad(a)
	if !a.LongestRoad || a.VictoryPoints != 2 {
		t.Fatalf("five segments should award the bonus, got %v/%d", a.LongestRoad, a.VictoryPoints)
	}

	// A tie never moves the award.
	b.RoadLength = 5
	c.checkLongestRoad(b)
	if b.LongestRoad || !a.LongestRoad {
		t.Fatal("tie must not transfer the award")
	}

	b.RoadLength = 6
	c.checkLongestRoad(b)
	if !b.LongestRoad || b.VictoryPoints != 2 {
		t.Fatal("longer road should take the award")
	}
	if a.LongestRoad || a.VictoryPoints != 0 {
		t.Fatalf("prior holder keeps %d points, want the bonus removed", a.VictoryPoints)
	}
}

func TestLargestArmyTransfers(t *testing.T) {
	c, seats := testTable(t)
	a, b := seats[0], seats[1]

	a.KnightsPlayed = 2
	c.checkLargestArmy(a)
	if a.LargestArmy {
		t.Fatal("two knights must not qualify")
	}

	a.KnightsPlayed = 3
	c.checkLargestArmy(a)
	if !a.LargestArmy || a.VictoryPoints != 2 {
		t.Fatal("three knights should award the bonus")
	}

	b.KnightsPlayed = 4
	c.checkLargestArmy(b)
	if !b.LargestArmy || a.LargestArmy || a.VictoryPoints != 0 {
		t.Fatal("larger army should take the bonus and its points")
	}
}

func TestMainPhaseActionCap(t *testing.T) {
	c, seats := testTable(t)
	s := seats[0]
	c.policy.MainActionCap = 3

	talker := &scripted{
		Heuristic: agent.NewHeuristic(s.Name, 1),
		phase:     snapshot.PhaseMain,
		otherwise: &action.GlobalMessage{Message: "still talking"},
	}
	c.agents[s.ID] = talker

	c.runMainPhase(context.Background(), s)
	if got := len(c.chatLog.GlobalTail(10)); got != 3 {
		t.Fatalf("cap of 3 allowed %d messages", got)
	}
}

func TestWinStopsTheGame(t *testing.T) {
	c, seats := testTable(t)
	s := seats[2]
	s.VictoryPoints = c.maxPoints
	if !c.checkWin(s) {
		t.Fatal("target points should end the game")
	}
	if c.Winner() != s {
		t.Fatal("winner not recorded")
	}
	// Once decided, the winner never changes.
	seats[0].VictoryPoints = c.maxPoints + 5
	c.checkWin(seats[0])
	if c.Winner() != s {
		t.Fatal("winner changed after the game ended")
	}
}

func TestWinningActionEndsTheTurnImmediately(t *testing.T) {
	c, seats := testTable(t)
	s := seats[0]
	if err := c.board.PlaceSettlement(s.ID, 0, true); err != nil {
		t.Fatalf("PlaceSettlement: %v", err)
	}
	s.AddSettlement(0)
	s.Resources = resource.CityCost.Clone()
	s.VictoryPoints = c.maxPoints - 1

	sc := &scripted{
		Heuristic: agent.NewHeuristic(s.Name, 1),
		phase:     snapshot.PhaseMain,
		queue: []action.Action{
			&action.BuildCity{Vertex: 0},
			&action.GlobalMessage{Message: "never solicited"},
		},
	}
	c.agents[s.ID] = sc

	c.runMainPhase(context.Background(), s)
	if c.Winner() != s {
		t.Fatalf("winner = %v, want %s", c.Winner(), s.Name)
	}
	if len(sc.queue) != 1 {
		t.Errorf("queue has %d actions left, want the unused follow-up", len(sc.queue))
	}
}

func TestNegotiationCounterThenAcceptMovesLedgers(t *testing.T) {
	c, seats := testTable(t)
	proposer, partner := seats[0], seats[1]
	proposer.Resources = resource.Bundle{resource.Wood: 1, resource.Sheep: 1}
	partner.Resources = resource.Bundle{resource.Brick: 1}

	c.agents[partner.ID] = &scripted{
		Heuristic: agent.NewHeuristic(partner.Name, 1),
		phase:     snapshot.PhaseNegotiation,
		queue: []action.Action{&action.CounterOffer{
			Offered:   resource.Bundle{resource.Brick: 1},
			Requested: resource.Bundle{resource.Wood: 1, resource.Sheep: 1},
		}},
	}
	c.agents[proposer.ID] = &scripted{
		Heuristic: agent.NewHeuristic(proposer.Name, 1),
		phase:     snapshot.PhaseNegotiation,
		queue:     []action.Action{&action.AcceptTrade{}},
	}

	out := c.proposeTrade(context.Background(), proposer, &action.ProposeTrade{
		Partner:   partner.Name,
		Offered:   resource.Bundle{resource.Wood: 1},
		Requested: resource.Bundle{resource.Brick: 1},
	})
	if !strings.HasPrefix(out, "success_trade_executed") {
		t.Fatalf("proposeTrade = %q", out)
	}
	if proposer.Resources[resource.Brick] != 1 || proposer.Resources.Total() != 1 {
		t.Errorf("proposer hand = %s, want exactly 1 BRICK", proposer.Resources)
	}
	if partner.Resources[resource.Wood] != 1 || partner.Resources[resource.Sheep] != 1 || partner.Resources.Total() != 2 {
		t.Errorf("partner hand = %s, want 1 WOOD and 1 SHEEP", partner.Resources)
	}
	if c.reputation.Score(proposer.Name, partner.Name) <= 0 {
		t.Error("trade did not improve reputation")
	}
}

func TestDiplomaticActionsLogToChat(t *testing.T) {
	c, seats := testTable(t)
	s := seats[0]

	out := c.execute(context.Background(), s, c.state(s, snapshot.PhaseMain), &action.RequestEmbargo{
		Target:    seats[1].Name,
		Reasoning: "hoarding brick",
	})
	if !strings.HasPrefix(out, "success") {
		t.Fatalf("embargo request rejected: %q", out)
	}
	msgs := c.chatLog.GlobalTail(5)
	if len(msgs) != 1 || msgs[0].Kind != "diplomatic_embargo_request" {
		t.Fatalf("embargo not in global chat: %+v", msgs)
	}

	out = c.execute(context.Background(), s, c.state(s, snapshot.PhaseMain), &action.ShareInformation{})
	if !strings.HasPrefix(out, "error") {
		t.Fatalf("empty information accepted: %q", out)
	}
}

// pickRobberTarget returns a legal robber destination.
func pickRobberTarget(t *testing.T, c *Controller) board.HexID {
	t.Helper()
	hexes := c.board.RobberHexes()
	if len(hexes) == 0 {
		t.Fatal("no legal robber hexes")
	}
	return hexes[0]
}

// pickRobberTargetWithCorner returns a legal destination plus one of its
// corners that touches at least two movable hexes.
func pickRobberTargetWithCorner(t *testing.T, c *Controller) (board.HexID, board.VertexID) {
	t.Helper()
	for _, h := range c.board.RobberHexes() {
		for _, v := range c.board.HexVertices(h) {
			if len(c.board.AdjacentHexes(v)) >= 2 {
				return h, v
			}
		}
	}
	t.Fatal("no robber hex with a shared corner")
	return 0, 0
}

// pickAnotherRobberTarget returns a legal destination adjacent to v,
// distinct from the robber's current hex.
func pickAnotherRobberTarget(t *testing.T, c *Controller, v board.VertexID) board.HexID {
	t.Helper()
	for _, h := range c.board.AdjacentHexes(v) {
		if h != c.board.Robber() {
			return h
		}
	}
	t.Fatal("no alternative robber hex adjacent to vertex")
	return 0
}
