// Package negotiation tracks one player-to-player trade conversation:
// who may speak, the offer history, and how the session ended.
package negotiation

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/talgya/catan-table/internal/resource"
)

// State is the session lifecycle.
type State string

const (
	StateIdle          State = "IDLE"
	StateProposed      State = "PROPOSED"
	StateCountered     State = "COUNTERED"
	StateAccepted      State = "ACCEPTED"
	StateRejected      State = "REJECTED"
	StateEndedByPlayer State = "ENDED_BY_PLAYER"
	StateEndedBySystem State = "ENDED_SYSTEM"
)

// Entry kinds in the session history.
const (
	EntryInitialOffer = "initial_offer"
	EntryCounterOffer = "counter_offer"
	EntryAcceptance   = "acceptance"
	EntryRejection    = "rejection"
	EntryPlayerEnd    = "ended_by_player"
	EntrySystemEnd    = "ended_by_system"
)

// Entry is one historical step: an offer or a terminal act.
type Entry struct {
	Kind      string          `json:"type"`
	From      string          `json:"from_player,omitempty"`
	To        string          `json:"to_player,omitempty"`
	Offered   resource.Bundle `json:"resources_offered,omitempty"`
	Requested resource.Bundle `json:"resources_requested,omitempty"`
	Reason    string          `json:"reason,omitempty"`
	Turn      int             `json:"turn"`
}

// Offer reports whether the entry carries tradable terms.
func (e Entry) Offer() bool {
	return e.Kind == EntryInitialOffer || e.Kind == EntryCounterOffer
}

// Session is one negotiation between an initiator and a target. Players
// are identified by seat name.
type Session struct {
	ID        string
	Initiator string
	Target    string

	state       State
	history     []Entry
	turnStarted int
	lastUpdated int
	// activeName is the player whose response is awaited; empty once
	// the session reaches a terminal state.
	activeName string
}

// NewSession returns an idle session created at the given game turn.
func NewSession(turn int) *Session {
	return &Session{
		ID:          uuid.NewString(),
		state:       StateIdle,
		turnStarted: turn,
		lastUpdated: turn,
	}
}

// State returns the session lifecycle state.
func (s *Session) State() State { return s.state }

// Active reports whether the session still awaits a response.
func (s *Session) Active() bool {
	return s.state == StateProposed || s.state == StateCountered
}

// ActiveNegotiator returns the player whose turn it is to respond.
func (s *Session) ActiveNegotiator() string { return s.activeName }

// Participant reports whether name is a party to this session.
func (s *Session) Participant(name string) bool {
	return name == s.Initiator || name == s.Target
}

// Start opens the session with the initial offer. The target responds
// first.
func (s *Session) Start(initiator, target string, offered, requested resource.Bundle, turn int) error {
	if s.state != StateIdle {
		return fmt.Errorf("negotiation already %s", s.state)
	}
	s.Initiator = initiator
	s.Target = target
	s.history = append(s.history, Entry{
		Kind: EntryInitialOffer, From: initiator, To: target,
		Offered: offered.Clone(), Requested: requested.Clone(), Turn: turn,
	})
	s.state = StateProposed
	s.activeName = target
	s.lastUpdated = turn
	return nil
}

// Counter replaces the standing offer. Only the active negotiator may
// counter; afterwards the other party becomes active.
func (s *Session) Counter(from string, offered, requested resource.Bundle, turn int) error {
	if !s.Active() {
		return fmt.Errorf("cannot counter in state %s", s.state)
	}
	if from != s.activeName {
		return fmt.Errorf("it is %s's turn to respond, not %s's", s.activeName, from)
	}
	to := s.Initiator
	if from == s.Initiator {
		to = s.Target
	}
	s.history = append(s.history, Entry{
		Kind: EntryCounterOffer, From: from, To: to,
		Offered: offered.Clone(), Requested: requested.Clone(), Turn: turn,
	})
	s.state = StateCountered
	s.activeName = to
	s.lastUpdated = turn
	return nil
}

// Accept closes the session on the standing offer and returns it.
func (s *Session) Accept(from string, turn int) (Entry, error) {
	if !s.Active() {
		return Entry{}, fmt.Errorf("cannot accept in state %s", s.state)
	}
	if from != s.activeName {
		return Entry{}, fmt.Errorf("it is %s's turn to respond, not %s's", s.activeName, from)
	}
	offer, ok := s.LastOffer()
	if !ok {
		return Entry{}, fmt.Errorf("no standing offer to accept")
	}
	s.history = append(s.history, Entry{Kind: EntryAcceptance, From: from, Turn: turn})
	s.state = StateAccepted
	s.activeName = ""
	s.lastUpdated = turn
	return offer, nil
}

// Reject closes the session, declining the standing offer.
func (s *Session) Reject(from, reason string, turn int) error {
	if !s.Active() {
		return fmt.Errorf("cannot reject in state %s", s.state)
	}
	if from != s.activeName {
		return fmt.Errorf("it is %s's turn to respond, not %s's", s.activeName, from)
	}
	s.history = append(s.history, Entry{Kind: EntryRejection, From: from, Reason: reason, Turn: turn})
	s.state = StateRejected
	s.activeName = ""
	s.lastUpdated = turn
	return nil
}

// EndByPlayer closes the session at a participant's request.
func (s *Session) EndByPlayer(from, reason string, turn int) error {
	if !s.Active() {
		return fmt.Errorf("negotiation already %s", s.state)
	}
	s.history = append(s.history, Entry{Kind: EntryPlayerEnd, From: from, Reason: reason, Turn: turn})
	s.state = StateEndedByPlayer
	s.activeName = ""
	s.lastUpdated = turn
	return nil
}

// EndBySystem closes the session from the outside, e.g. on the exchange
// cap or an agent failure.
func (s *Session) EndBySystem(reason string, turn int) {
	if !s.Active() {
		return
	}
	s.history = append(s.history, Entry{Kind: EntrySystemEnd, Reason: reason, Turn: turn})
	s.state = StateEndedBySystem
	s.activeName = ""
	s.lastUpdated = turn
}

// LastOffer returns the most recent entry carrying trade terms.
func (s *Session) LastOffer() (Entry, bool) {
	for i := len(s.history) - 1; i >= 0; i-- {
		if s.history[i].Offer() {
			return s.history[i], true
		}
	}
	return Entry{}, false
}

// History returns a copy of the full session history.
func (s *Session) History() []Entry {
	return append([]Entry(nil), s.history...)
}

// Context is the negotiation view embedded in a player's snapshot.
type Context struct {
	Active        bool    `json:"negotiation_active"`
	State         State   `json:"negotiation_state,omitempty"`
	InitiatorName string  `json:"negotiation_initiator_name,omitempty"`
	TargetName    string  `json:"negotiation_target_name,omitempty"`
	PartnerName   string  `json:"negotiation_partner_name,omitempty"`
	YourTurn      bool    `json:"your_turn_to_negotiate,omitempty"`
	History       []Entry `json:"negotiation_history,omitempty"`
	LastOffer     *Entry  `json:"last_offer,omitempty"`
}

// ContextFor returns the session as seen by the named player. Players
// who are not a party see nothing, and only a live session exposes the
// offer history.
func (s *Session) ContextFor(name string) Context {
	if !s.Participant(name) {
		return Context{}
	}
	if !s.Active() {
		return Context{Active: false, State: s.state}
	}
	partner := s.Target
	if name == s.Target {
		partner = s.Initiator
	}
	ctx := Context{
		Active:        true,
		State:         s.state,
		InitiatorName: s.Initiator,
		TargetName:    s.Target,
		PartnerName:   partner,
		YourTurn:      name == s.activeName,
		History:       s.History(),
	}
	if offer, ok := s.LastOffer(); ok {
		ctx.LastOffer = &offer
	}
	return ctx
}
