package game

import "time"

// Policy bounds agent interaction: retry counts, per-turn action caps,
// and decision timeouts.
type Policy struct {
	// SetupRetries is the attempt budget for each setup placement.
	SetupRetries int
	// MandatoryRetries is how many extra prompts a mandatory action
	// (discard, robber) gets before the fallback executes it.
	MandatoryRetries int
	// MainActionCap bounds actions per main turn.
	MainActionCap int
	// NegotiationCap bounds total offers, counters, and responses in one
	// negotiation session.
	NegotiationCap int
	// PrivateChatCap bounds messages after the opener in a private chat.
	PrivateChatCap int
	// DecisionTimeout bounds one agent call; zero means no timeout.
	DecisionTimeout time.Duration
	// MaxRounds stops a game nobody is winning; zero means unbounded.
	MaxRounds int
}

// DefaultPolicy mirrors the standard table limits.
func DefaultPolicy() Policy {
	return Policy{
		SetupRetries:     3,
		MandatoryRetries: 1,
		MainActionCap:    10,
		NegotiationCap:   6,
		PrivateChatCap:   7,
		DecisionTimeout:  90 * time.Second,
		MaxRounds:        200,
	}
}
