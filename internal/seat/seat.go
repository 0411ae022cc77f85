// Package seat holds per-player table state: hand, buildings, score,
// the one-shot feedback slot, and a bounded decision memory.
package seat

import (
	"fmt"

	"github.com/talgya/catan-table/internal/board"
	"github.com/talgya/catan-table/internal/resource"
)

// Piece stock per seat, standard counts.
const (
	MaxRoads       = 15
	MaxSettlements = 5
	MaxCities      = 4
)

// memoryLimit bounds the per-seat decision memory; oldest entries fall off.
const memoryLimit = 20

// Seat is one player's complete table state.
type Seat struct {
	ID    board.SeatID
	Name  string
	Color string

	Resources resource.Bundle
	DevCards  map[board.DevCard]int

	Settlements []board.VertexID
	Cities      []board.VertexID
	Roads       []board.Edge
	Ports       []resource.Port

	VictoryPoints int
	KnightsPlayed int
	LargestArmy   bool
	LongestRoad   bool
	RoadLength    int

	// PendingDiscard is set after a seven; zero when nothing is owed.
	PendingDiscard int

	feedback string
	memory   []string
}

// New returns an empty seat.
func New(id board.SeatID, name, color string) *Seat {
	return &Seat{
		ID:        id,
		Name:      name,
		Color:     color,
		Resources: resource.NewBundle(),
		DevCards:  make(map[board.DevCard]int),
	}
}

// RoadsLeft returns how many road pieces remain in the seat's stock.
func (s *Seat) RoadsLeft() int { return MaxRoads - len(s.Roads) }

// SettlementsLeft returns remaining settlement pieces. Upgrading to a city
// returns the settlement piece to stock.
func (s *Seat) SettlementsLeft() int { return MaxSettlements - len(s.Settlements) }

// CitiesLeft returns remaining city pieces.
func (s *Seat) CitiesLeft() int { return MaxCities - len(s.Cities) }

// TotalCards returns the seat's hand size, the seven-roll discard basis.
func (s *Seat) TotalCards() int { return s.Resources.Total() }

// TotalDevCards returns how many development cards the seat holds.
func (s *Seat) TotalDevCards() int {
	n := 0
	for _, c := range s.DevCards {
		n += c
	}
	return n
}

// VisibleScore is the score opponents can see: everything except unplayed
// victory point cards.
func (s *Seat) VisibleScore() int {
	return s.VictoryPoints - s.DevCards[board.VictoryPoint]
}

// AddSettlement records a new settlement and its point.
func (s *Seat) AddSettlement(v board.VertexID, ports ...resource.Port) {
	s.Settlements = append(s.Settlements, v)
	s.Ports = append(s.Ports, ports...)
	s.VictoryPoints++
}

// UpgradeToCity swaps a settlement for a city at v.
func (s *Seat) UpgradeToCity(v board.VertexID) error {
	for i, sv := range s.Settlements {
		if sv == v {
			s.Settlements = append(s.Settlements[:i], s.Settlements[i+1:]...)
			s.Cities = append(s.Cities, v)
			s.VictoryPoints++
			return nil
		}
	}
	return fmt.Errorf("no settlement at vertex %d", v)
}

// AddRoad records a new road.
func (s *Seat) AddRoad(e board.Edge) {
	s.Roads = append(s.Roads, e)
}

// GainDevCard adds a drawn card; victory point cards score immediately.
func (s *Seat) GainDevCard(c board.DevCard) {
	s.DevCards[c]++
	if c == board.VictoryPoint {
		s.VictoryPoints++
	}
}

// PlayDevCard consumes one card of the given kind.
func (s *Seat) PlayDevCard(c board.DevCard) error {
	if s.DevCards[c] == 0 {
		return fmt.Errorf("no %s card in hand", c)
	}
	s.DevCards[c]--
	return nil
}

// BankRatio returns the seat's best exchange ratio for a kind.
func (s *Seat) BankRatio(k resource.Kind) int {
	return resource.BankRatio(s.Ports, k)
}

// SetFeedback stores the outcome of the seat's last action. It replaces
// any unread feedback.
func (s *Seat) SetFeedback(msg string) { s.feedback = msg }

// TakeFeedback returns and clears the pending feedback. Consumed on read
// so stale outcomes never leak into a later decision.
func (s *Seat) TakeFeedback() string {
	msg := s.feedback
	s.feedback = ""
	return msg
}

// Remember appends a line to the seat's decision memory, evicting the
// oldest entry past the limit.
func (s *Seat) Remember(line string) {
	s.memory = append(s.memory, line)
	if len(s.memory) > memoryLimit {
		s.memory = s.memory[len(s.memory)-memoryLimit:]
	}
}

// MemoryTail returns up to n of the most recent memory lines.
func (s *Seat) MemoryTail(n int) []string {
	if n > len(s.memory) {
		n = len(s.memory)
	}
	return append([]string(nil), s.memory[len(s.memory)-n:]...)
}
