// Package reputation keeps an asymmetric score matrix between players:
// how each player regards every other, adjusted by robberies and trades.
package reputation

import "sync"

// Score deltas applied by game events.
const (
	RobberyPenalty = -3 // victim's regard for the robber, successful steal only
	TradeReward    = 2  // both parties, on a completed trade
)

// Matrix holds directed scores: m[observer][subject]. Scores start at
// zero and are unbounded.
type Matrix struct {
	mu     sync.Mutex
	scores map[string]map[string]int
}

// NewMatrix returns an empty matrix.
func NewMatrix() *Matrix {
	return &Matrix{scores: make(map[string]map[string]int)}
}

// Adjust shifts observer's regard for subject by delta.
func (m *Matrix) Adjust(observer, subject string, delta int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row := m.scores[observer]
	if row == nil {
		row = make(map[string]int)
		m.scores[observer] = row
	}
	row[subject] += delta
}

// Score returns observer's regard for subject.
func (m *Matrix) Score(observer, subject string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scores[observer][subject]
}

// RowFor returns a copy of observer's scores for the given subjects,
// zero-filled for subjects never adjusted.
func (m *Matrix) RowFor(observer string, subjects []string) map[string]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int, len(subjects))
	for _, s := range subjects {
		if s == observer {
			continue
		}
		out[s] = m.scores[observer][s]
	}
	return out
}

// PenalizeRobbery records a successful steal: the victim thinks less of
// the robber. A robber who stole nothing pays no penalty.
func (m *Matrix) PenalizeRobbery(robber, victim string) {
	m.Adjust(victim, robber, RobberyPenalty)
}

// RewardTrade records a completed player trade: both parties gain regard
// for each other.
func (m *Matrix) RewardTrade(a, b string) {
	m.Adjust(a, b, TradeReward)
	m.Adjust(b, a, TradeReward)
}
