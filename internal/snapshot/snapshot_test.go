package snapshot

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/talgya/catan-table/internal/board"
	"github.com/talgya/catan-table/internal/chat"
	"github.com/talgya/catan-table/internal/negotiation"
	"github.com/talgya/catan-table/internal/reputation"
	"github.com/talgya/catan-table/internal/resource"
	"github.com/talgya/catan-table/internal/seat"
)

func testRequest(t *testing.T) Request {
	t.Helper()
	b := board.Generate(board.ModeClassic, rand.New(rand.NewSource(11)))
	red := seat.New(0, "Red", "red")
	blue := seat.New(1, "Blue", "blue")
	return Request{
		Phase:      PhaseMain,
		Turn:       3,
		Viewer:     red,
		Seats:      []*seat.Seat{red, blue},
		Board:      b,
		Chat:       chat.NewLog(),
		Reputation: reputation.NewMatrix(),
		MaxPoints:  10,
	}
}

func TestFeedbackAppearsOnce(t *testing.T) {
	req := testRequest(t)
	req.Viewer.SetFeedback("build_settlement failed: vertex occupied")

	st := Build(req)
	if st.LastActionStatus != "build_settlement failed: vertex occupied" {
		t.Fatalf("feedback = %q", st.LastActionStatus)
	}

	again := Build(req)
	if again.LastActionStatus != "" {
		t.Fatalf("second snapshot still carries feedback %q", again.LastActionStatus)
	}
}

func TestSetupPhaseActions(t *testing.T) {
	req := testRequest(t)
	req.Phase = PhaseSetupSettlement
	st := Build(req)
	if len(st.AvailableActions.BuildSettlement) != 54 {
		t.Fatalf("setup spots = %d, want 54", len(st.AvailableActions.BuildSettlement))
	}
	if len(st.AvailableActions.BuildRoad) != 0 {
		t.Error("setup settlement phase offers roads")
	}

	v := st.AvailableActions.BuildSettlement[0]
	if err := req.Board.(*board.Board).PlaceSettlement(0, v, true); err != nil {
		t.Fatalf("PlaceSettlement: %v", err)
	}
	req.Phase = PhaseSetupRoad
	req.SetupRoadPending = true
	req.LastSettlement = v
	st = Build(req)
	if !st.SetupRoadPending || st.LastSettlementVertex != v {
		t.Errorf("pending = %v vertex = %d", st.SetupRoadPending, st.LastSettlementVertex)
	}
	for _, e := range st.AvailableActions.BuildRoad {
		if !e.Touches(v) {
			t.Errorf("setup road %v does not touch the new settlement", e)
		}
	}
}

func TestDiscardFlags(t *testing.T) {
	req := testRequest(t)
	req.Phase = PhaseDiscard
	req.DiscardMandatory = true
	req.NumToDiscard = 4
	req.Viewer.Resources.Add(resource.Bundle{resource.Wood: 9})

	st := Build(req)
	if !st.DiscardMandatory || st.NumCardsToDiscard != 4 {
		t.Fatalf("discard flags = %v/%d", st.DiscardMandatory, st.NumCardsToDiscard)
	}
	if st.TotalResourceCards != 9 {
		t.Errorf("total cards = %d, want 9", st.TotalResourceCards)
	}
}

func TestRobberActions(t *testing.T) {
	req := testRequest(t)
	req.Phase = PhaseRobber
	req.RobberMandatory = true
	st := Build(req)
	if len(st.AvailableActions.MoveRobber) != 18 {
		t.Fatalf("robber targets = %d, want 18", len(st.AvailableActions.MoveRobber))
	}
	for _, h := range st.AvailableActions.MoveRobber {
		if h == st.Board.RobberHex {
			t.Error("current robber hex listed as a target")
		}
	}
}

func TestOpponentHandsAreCounts(t *testing.T) {
	req := testRequest(t)
	req.Seats[1].Resources.Add(resource.Bundle{resource.Ore: 3, resource.Wheat: 2})

	st := Build(req)
	var blue *PlayerPublic
	for i := range st.Players {
		if st.Players[i].Name == "Blue" {
			blue = &st.Players[i]
		}
	}
	if blue == nil {
		t.Fatal("Blue missing from players")
	}
	if blue.ResourceCount != 5 {
		t.Errorf("opponent card count = %d, want 5", blue.ResourceCount)
	}
}

func TestOverlays(t *testing.T) {
	req := testRequest(t)
	b := req.Board.(*board.Board)

	// Give Blue a settlement on a producing tile so affinity resolves.
	var tile *board.Tile
	for _, t2 := range b.Tiles() {
		if !t2.Desert() {
			tile = t2
			break
		}
	}
	var corner board.VertexID = -1
	for v := board.VertexID(0); int(v) < b.VertexCount(); v++ {
		for _, h := range b.AdjacentHexes(v) {
			if h == tile.ID {
				corner = v
			}
		}
		if corner >= 0 {
			break
		}
	}
	if err := b.PlaceSettlement(1, corner, true); err != nil {
		t.Fatalf("PlaceSettlement: %v", err)
	}
	req.Seats[1].AddSettlement(corner)

	st := Build(req)
	for _, p := range st.Players {
		switch p.Name {
		case "Blue":
			if p.ResourceAffinity == "NONE" {
				t.Error("Blue affinity = NONE with a producing settlement")
			}
			if p.IncomePotential.Total() == 0 {
				t.Error("Blue income potential empty")
			}
			if p.ThreatLevel <= 0 {
				t.Errorf("Blue threat = %v", p.ThreatLevel)
			}
			if p.StrategicPosture != "EARLY_DEVELOPMENT" {
				t.Errorf("Blue posture = %q", p.StrategicPosture)
			}
		case "Red":
			if p.ResourceAffinity != "NONE" {
				t.Errorf("Red affinity = %q with no buildings", p.ResourceAffinity)
			}
		}
	}
}

func TestBestSpotsExcludeOccupied(t *testing.T) {
	req := testRequest(t)
	st := Build(req)
	if len(st.Board.BestSpots) == 0 {
		t.Fatal("no best spots on an empty board")
	}
	if len(st.Board.BestSpots) > 10 {
		t.Fatalf("best spots = %d, want at most 10", len(st.Board.BestSpots))
	}
	top := st.Board.BestSpots[0]

	if err := req.Board.(*board.Board).PlaceSettlement(1, top.Vertex, true); err != nil {
		t.Fatalf("PlaceSettlement: %v", err)
	}
	st = Build(req)
	for _, s := range st.Board.BestSpots {
		if s.Vertex == top.Vertex {
			t.Error("occupied vertex still ranked")
		}
	}
}

func TestNegotiationContextEmbedded(t *testing.T) {
	req := testRequest(t)
	req.Phase = PhaseNegotiation
	sess := negotiation.NewSession(3)
	if err := sess.Start("Blue", "Red", resource.Bundle{resource.Wood: 1}, resource.Bundle{resource.Ore: 1}, 3); err != nil {
		t.Fatalf("Start: %v", err)
	}
	req.Session = sess

	st := Build(req)
	if !st.Negotiation.Active || !st.Negotiation.YourTurn {
		t.Fatalf("negotiation context = %+v", st.Negotiation)
	}
}

func TestSnapshotSerializes(t *testing.T) {
	st := Build(testRequest(t))
	data, err := json.Marshal(st)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("empty snapshot")
	}
}
