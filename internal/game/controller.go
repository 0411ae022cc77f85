package game

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/talgya/catan-table/internal/action"
	"github.com/talgya/catan-table/internal/agent"
	"github.com/talgya/catan-table/internal/board"
	"github.com/talgya/catan-table/internal/chat"
	"github.com/talgya/catan-table/internal/negotiation"
	"github.com/talgya/catan-table/internal/reputation"
	"github.com/talgya/catan-table/internal/resource"
	"github.com/talgya/catan-table/internal/seat"
	"github.com/talgya/catan-table/internal/snapshot"
)

// Gateway is the board the controller plays on: the snapshot read side
// plus legality-gated mutations. The concrete board satisfies it.
type Gateway interface {
	snapshot.Board

	AdjacentResources(v board.VertexID) []resource.Kind
	Occupants(h board.HexID, excluding board.SeatID) []board.SeatID
	LongestRoadLength(s board.SeatID) int
	DrawDevCard() (board.DevCard, bool)

	PlaceSettlement(s board.SeatID, v board.VertexID, setup bool) error
	PlaceRoad(s board.SeatID, e board.Edge, anchor board.VertexID) error
	PlaceCity(s board.SeatID, v board.VertexID) error
	MoveRobber(h board.HexID) error
	DistributeForRoll(roll int) map[board.SeatID]resource.Bundle
}

// Controller drives one game to completion.
type Controller struct {
	board  Gateway
	seats  []*seat.Seat
	agents map[board.SeatID]agent.Agent

	chatLog    *chat.Log
	reputation *reputation.Matrix
	session    *negotiation.Session

	policy    Policy
	roller    Roller
	rng       *rand.Rand
	log       *slog.Logger
	recorder  Recorder
	observers []Observer

	maxPoints int
	turn      int
	diceStats map[int]int
	winner    *seat.Seat
}

// Config assembles a controller.
type Config struct {
	Board     Gateway
	Seats     []*seat.Seat
	Agents    map[board.SeatID]agent.Agent
	MaxPoints int
	Policy    Policy
	Roller    Roller
	Seed      int64
	Logger    *slog.Logger
	Recorder  Recorder
	Observers []Observer
}

// New validates the config and returns a controller.
func New(cfg Config) (*Controller, error) {
	if cfg.Board == nil {
		return nil, fmt.Errorf("board is required")
	}
	if len(cfg.Seats) < 3 || len(cfg.Seats) > 4 {
		return nil, fmt.Errorf("need 3 or 4 seats, got %d", len(cfg.Seats))
	}
	for _, s := range cfg.Seats {
		if cfg.Agents[s.ID] == nil {
			return nil, fmt.Errorf("seat %s has no agent", s.Name)
		}
	}
	if cfg.MaxPoints <= 0 {
		cfg.MaxPoints = 10
	}
	if cfg.Roller == nil {
		cfg.Roller = NewRoller()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Controller{
		board:      cfg.Board,
		seats:      cfg.Seats,
		agents:     cfg.Agents,
		chatLog:    chat.NewLog(),
		reputation: reputation.NewMatrix(),
		policy:     cfg.Policy,
		roller:     cfg.Roller,
		rng:        rand.New(rand.NewSource(cfg.Seed)),
		log:        cfg.Logger,
		recorder:   cfg.Recorder,
		observers:  cfg.Observers,
		maxPoints:  cfg.MaxPoints,
		diceStats:  make(map[int]int),
	}, nil
}

// Winner returns the winning seat, nil while the game is running or if
// the round cap expired first.
func (c *Controller) Winner() *seat.Seat { return c.winner }

// Seats returns the table's seats in turn order.
func (c *Controller) Seats() []*seat.Seat { return c.seats }

// DiceStats returns roll counts so far.
func (c *Controller) DiceStats() map[int]int {
	out := make(map[int]int, len(c.diceStats))
	for k, v := range c.diceStats {
		out[k] = v
	}
	return out
}

// Turn returns the number of player turns taken.
func (c *Controller) Turn() int { return c.turn }

// Run plays the game: setup, then rounds until someone wins, the round
// cap expires, or ctx is canceled.
func (c *Controller) Run(ctx context.Context) error {
	if err := c.runSetup(ctx); err != nil {
		return fmt.Errorf("setup: %w", err)
	}

	rounds := 0
	for c.winner == nil {
		if err := ctx.Err(); err != nil {
			return err
		}
		rounds++
		if c.policy.MaxRounds > 0 && rounds > c.policy.MaxRounds {
			c.log.Warn("round cap reached, ending game without a winner", "rounds", c.policy.MaxRounds)
			break
		}

		c.runCommunicationPhase(ctx)

		for _, s := range c.seats {
			if err := ctx.Err(); err != nil {
				return err
			}
			c.turn++
			c.log.Info("turn start", "turn", c.turn, "seat", s.Name, "points", s.VictoryPoints)

			roll := c.roller.Roll()
			c.diceStats[roll]++
			c.emit(Event{Turn: c.turn, Seat: s.Name, Kind: EventDiceRoll, Detail: fmt.Sprintf("rolled %d", roll)})

			if roll == 7 {
				c.runDiscardPhase(ctx)
				c.runRobberPhase(ctx, s)
			} else {
				c.distribute(roll)
			}

			c.runMainPhase(ctx, s)

			c.emit(Event{Turn: c.turn, Seat: s.Name, Kind: EventTurnEnd,
				Detail: fmt.Sprintf("points=%d cards=%d", s.VictoryPoints, s.TotalCards())})
			if c.checkWin(s) {
				break
			}
		}
	}

	if c.winner != nil {
		c.emit(Event{Turn: c.turn, Seat: c.winner.Name, Kind: EventGameOver,
			Detail: fmt.Sprintf("%s wins with %d points", c.winner.Name, c.winner.VictoryPoints)})
	}
	return nil
}

// checkWin flags the game over the moment any seat reaches the target.
func (c *Controller) checkWin(s *seat.Seat) bool {
	if c.winner != nil {
		return true
	}
	if s.VictoryPoints >= c.maxPoints {
		c.winner = s
		c.log.Info("game over", "winner", s.Name, "points", s.VictoryPoints, "turns", c.turn)
		return true
	}
	return false
}

// decide runs one agent call under the policy timeout.
func (c *Controller) decide(ctx context.Context, s *seat.Seat, st *snapshot.State) (*action.Decision, error) {
	if c.policy.DecisionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.policy.DecisionTimeout)
		defer cancel()
	}
	d, err := c.agents[s.ID].Decide(ctx, st)
	if err != nil {
		return nil, err
	}
	if d == nil || d.Action == nil {
		return nil, fmt.Errorf("agent returned no action")
	}
	return d, nil
}

// state assembles a snapshot for s at the given phase, with opts applied.
func (c *Controller) state(s *seat.Seat, phase snapshot.Phase, opts ...func(*snapshot.Request)) *snapshot.State {
	req := snapshot.Request{
		Phase:      phase,
		Turn:       c.turn,
		Viewer:     s,
		Seats:      c.seats,
		Board:      c.board,
		Chat:       c.chatLog,
		Session:    c.session,
		Reputation: c.reputation,
		MaxPoints:  c.maxPoints,
		DiceStats:  c.diceStats,
	}
	for _, opt := range opts {
		opt(&req)
	}
	return snapshot.Build(req)
}

func (c *Controller) emit(ev Event) {
	ev.At = time.Now()
	if c.recorder != nil {
		rctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := c.recorder.Record(rctx, ev); err != nil {
			c.log.Warn("record event failed", "kind", ev.Kind, "error", err)
		}
		cancel()
	}
	for _, o := range c.observers {
		o.Observe(ev)
	}
}

func (c *Controller) seatByName(name string) *seat.Seat {
	for _, s := range c.seats {
		if s.Name == name {
			return s
		}
	}
	return nil
}
