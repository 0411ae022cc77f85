package negotiation

import (
	"testing"

	"github.com/talgya/catan-table/internal/resource"
)

func offer(kind resource.Kind, n int) resource.Bundle {
	return resource.Bundle{kind: n}
}

func startSession(t *testing.T) *Session {
	t.Helper()
	s := NewSession(1)
	if err := s.Start("Alice", "Bob", offer(resource.Wood, 2), offer(resource.Brick, 1), 1); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return s
}

func TestTargetRespondsFirst(t *testing.T) {
	s := startSession(t)
	if s.State() != StateProposed {
		t.Fatalf("state = %s, want PROPOSED", s.State())
	}
	if s.ActiveNegotiator() != "Bob" {
		t.Fatalf("active = %s, want Bob", s.ActiveNegotiator())
	}
	if _, err := s.Accept("Alice", 2); err == nil {
		t.Fatal("initiator accepted own offer")
	}
}

func TestCounterAlternates(t *testing.T) {
	s := startSession(t)
	if err := s.Counter("Bob", offer(resource.Brick, 1), offer(resource.Wood, 1), 2); err != nil {
		t.Fatalf("Counter: %v", err)
	}
	if s.State() != StateCountered || s.ActiveNegotiator() != "Alice" {
		t.Fatalf("state = %s active = %s", s.State(), s.ActiveNegotiator())
	}
	if err := s.Counter("Bob", offer(resource.Brick, 2), offer(resource.Wood, 1), 3); err == nil {
		t.Fatal("Bob countered twice in a row")
	}
}

func TestAcceptReturnsStandingOffer(t *testing.T) {
	s := startSession(t)
	if err := s.Counter("Bob", offer(resource.Brick, 1), offer(resource.Sheep, 1), 2); err != nil {
		t.Fatalf("Counter: %v", err)
	}
	entry, err := s.Accept("Alice", 3)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if entry.From != "Bob" || entry.Offered[resource.Brick] != 1 {
		t.Errorf("accepted offer = %+v, want Bob's counter", entry)
	}
	if s.Active() {
		t.Error("session still active after acceptance")
	}
	if s.ActiveNegotiator() != "" {
		t.Errorf("active after acceptance = %q", s.ActiveNegotiator())
	}
}

func TestTerminalStatesRefuseFurtherMoves(t *testing.T) {
	s := startSession(t)
	if err := s.Reject("Bob", "bad deal", 2); err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if s.State() != StateRejected {
		t.Fatalf("state = %s", s.State())
	}
	if err := s.Counter("Alice", offer(resource.Wood, 3), offer(resource.Brick, 1), 3); err == nil {
		t.Error("counter accepted after rejection")
	}
	if _, err := s.Accept("Alice", 3); err == nil {
		t.Error("accept succeeded after rejection")
	}
	if err := s.Reject("Alice", "me too", 3); err == nil {
		t.Error("reject succeeded after rejection")
	}
}

func TestRejectRefusedOnceAccepted(t *testing.T) {
	s := startSession(t)
	if _, err := s.Accept("Bob", 2); err != nil {
		t.Fatalf("Accept: %v", err)
	}
	before := len(s.History())
	if err := s.Reject("Carol", "spite", 3); err == nil {
		t.Fatal("reject succeeded on an accepted session")
	}
	if s.State() != StateAccepted {
		t.Fatalf("state = %s, want ACCEPTED", s.State())
	}
	if len(s.History()) != before {
		t.Error("rejection entry appended to a closed session")
	}
}

func TestEndBySystem(t *testing.T) {
	s := startSession(t)
	s.EndBySystem("exchange cap reached", 4)
	if s.State() != StateEndedBySystem {
		t.Fatalf("state = %s", s.State())
	}
	hist := s.History()
	if hist[len(hist)-1].Kind != EntrySystemEnd {
		t.Errorf("last entry = %s", hist[len(hist)-1].Kind)
	}
	// A second system end is a no-op.
	s.EndBySystem("again", 5)
	if len(s.History()) != len(hist) {
		t.Error("duplicate system end appended")
	}
}

func TestContextForNonParticipant(t *testing.T) {
	s := startSession(t)
	ctx := s.ContextFor("Carol")
	if ctx.Active {
		t.Fatal("non-participant sees an active negotiation")
	}
	if len(ctx.History) != 0 {
		t.Error("non-participant sees the offer history")
	}
	if ctx.State != "" {
		t.Errorf("non-participant sees state %q", ctx.State)
	}
}

func TestContextForParticipant(t *testing.T) {
	s := startSession(t)
	ctx := s.ContextFor("Bob")
	if !ctx.Active || !ctx.YourTurn || ctx.PartnerName != "Alice" {
		t.Fatalf("context = %+v", ctx)
	}
	if ctx.LastOffer == nil || ctx.LastOffer.Offered[resource.Wood] != 2 {
		t.Errorf("last offer = %+v", ctx.LastOffer)
	}

	ctxInit := s.ContextFor("Alice")
	if ctxInit.YourTurn {
		t.Error("initiator marked active before target responded")
	}
}
