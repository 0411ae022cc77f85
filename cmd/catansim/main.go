// Command catansim runs an agent-driven resource trading game to
// completion and records the transcript.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/catan-table/internal/agent"
	"github.com/talgya/catan-table/internal/board"
	"github.com/talgya/catan-table/internal/config"
	"github.com/talgya/catan-table/internal/game"
	"github.com/talgya/catan-table/internal/persistence"
	"github.com/talgya/catan-table/internal/seat"
	"github.com/talgya/catan-table/internal/view"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to the table YAML (defaults apply when empty)")
		seedFlag   = flag.Int64("seed", 0, "deterministic seed, 0 picks one from the clock")
		boardMode  = flag.String("board", "", "override board mode: classic or procedural")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			slog.Error("failed to load config", "path", *configPath, "error", err)
			os.Exit(1)
		}
	} else {
		cfg = promptTable(cfg)
	}
	if *boardMode != "" {
		cfg.BoardMode = *boardMode
	}
	seed := cfg.Seed
	if *seedFlag != 0 {
		seed = *seedFlag
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	gameID := uuid.NewString()
	slog.Info("starting game", "id", gameID, "seed", seed, "board", cfg.BoardMode, "seats", len(cfg.Seats))

	// ── Board ─────────────────────────────────────────────────────────
	rng := rand.New(rand.NewSource(seed))
	b := board.Generate(board.Mode(cfg.BoardMode), rng)

	// ── Seats and agents ──────────────────────────────────────────────
	seats := make([]*seat.Seat, 0, len(cfg.Seats))
	agents := make(map[board.SeatID]agent.Agent, len(cfg.Seats))
	var llmClient *agent.Client

	for i, sc := range cfg.Seats {
		id := board.SeatID(i)
		seats = append(seats, seat.New(id, sc.Name, sc.Color))

		switch sc.Agent {
		case config.AgentLLM:
			if llmClient == nil {
				key := cfg.APIKey()
				if key == "" {
					slog.Error("llm seat configured but API key env is empty", "env", cfg.APIKeyEnv, "seat", sc.Name)
					os.Exit(1)
				}
				llmClient = agent.NewClient(key, cfg.Model)
			}
			agents[id] = agent.NewLLM(sc.Name, sc.Persona, llmClient)
		default:
			agents[id] = agent.NewHeuristic(sc.Name, seed+int64(i)+1)
		}
	}

	// ── Persistence ───────────────────────────────────────────────────
	store, err := persistence.Open(cfg.DBPath, gameID)
	if err != nil {
		slog.Error("failed to open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("database opened", "path", cfg.DBPath)

	// ── Spectators ────────────────────────────────────────────────────
	observers := []game.Observer{view.NewLogView(logger)}

	var ctrl *game.Controller
	if cfg.SpectatorPort > 0 {
		hub := view.NewHub(logger, func() any {
			return tableStatus(ctrl, seats)
		})
		hub.Start(cfg.SpectatorPort)
		observers = append(observers, hub)
	}

	// ── Controller ────────────────────────────────────────────────────
	policy := game.Policy{
		SetupRetries:     cfg.Rules.SetupRetries,
		MandatoryRetries: cfg.Rules.MandatoryRetries,
		MainActionCap:    cfg.Rules.MainActionCap,
		NegotiationCap:   cfg.Rules.NegotiationCap,
		PrivateChatCap:   cfg.Rules.PrivateChatCap,
		DecisionTimeout:  cfg.Rules.DecisionTimeout(),
		MaxRounds:        cfg.Rules.MaxRounds,
	}
	ctrl, err = game.New(game.Config{
		Board:     b,
		Seats:     seats,
		Agents:    agents,
		MaxPoints: cfg.MaxPoints,
		Policy:    policy,
		Roller:    game.NewSeededRoller(seed),
		Seed:      seed,
		Logger:    logger,
		Recorder:  store,
		Observers: observers,
	})
	if err != nil {
		slog.Error("failed to seat the table", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		cancel()
	}()

	fmt.Printf("\nThe table is set: %d players, first to %d points.\n", len(seats), cfg.MaxPoints)
	if cfg.SpectatorPort > 0 {
		fmt.Printf("Spectate: http://localhost:%d/api/v1/status\n", cfg.SpectatorPort)
	}

	if err := ctrl.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("game aborted", "error", err)
	}

	printStandings(ctrl, seats)

	winner := ""
	if w := ctrl.Winner(); w != nil {
		winner = w.Name
	}
	if err := store.SaveAll(seats, winner, ctrl.Turn(), ctrl.DiceStats()); err != nil {
		slog.Error("failed to save results", "error", err)
	}
	if cfg.ArchivePath != "" {
		if err := store.ArchiveTranscript(cfg.ArchivePath); err != nil {
			slog.Error("failed to archive transcript", "path", cfg.ArchivePath, "error", err)
		} else {
			slog.Info("transcript archived", "path", cfg.ArchivePath)
		}
	}
}

// promptTable asks for the seat count and per-seat agent type on stdin.
// Empty answers keep the defaults, so piping /dev/null yields the stock
// three-seat heuristic table.
func promptTable(cfg config.Config) config.Config {
	sc := bufio.NewScanner(os.Stdin)
	ask := func(q string) string {
		fmt.Print(q)
		if !sc.Scan() {
			return ""
		}
		return strings.TrimSpace(sc.Text())
	}

	count := len(cfg.Seats)
	if ans := ask("Number of players (3 or 4) [3]: "); ans != "" {
		if n, err := strconv.Atoi(ans); err == nil && (n == 3 || n == 4) {
			count = n
		} else {
			fmt.Println("Keeping 3 players.")
		}
	}

	defaults := []config.SeatConfig{
		{Name: "Alice", Color: "red"},
		{Name: "Bob", Color: "blue"},
		{Name: "Carol", Color: "white"},
		{Name: "Dave", Color: "orange"},
	}
	seats := make([]config.SeatConfig, 0, count)
	for i := 0; i < count; i++ {
		sd := defaults[i]
		if name := ask(fmt.Sprintf("Player %d name [%s]: ", i+1, sd.Name)); name != "" {
			sd.Name = name
		}
		sd.Agent = config.AgentHeuristic
		if kind := ask(fmt.Sprintf("  agent for %s (heuristic/llm) [heuristic]: ", sd.Name)); kind == config.AgentLLM {
			sd.Agent = config.AgentLLM
			sd.Persona = ask(fmt.Sprintf("  persona for %s (optional): ", sd.Name))
		}
		seats = append(seats, sd)
	}
	cfg.Seats = seats

	if err := cfg.Validate(); err != nil {
		fmt.Printf("Table invalid (%v), using defaults.\n", err)
		return config.Default()
	}
	return cfg
}

func printStandings(ctrl *game.Controller, seats []*seat.Seat) {
	ranked := make([]*seat.Seat, len(seats))
	copy(ranked, seats)
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].VictoryPoints > ranked[j].VictoryPoints })

	fmt.Printf("\nFinal standings after %d turns:\n", ctrl.Turn())
	for i, s := range ranked {
		marks := ""
		if s.LongestRoad {
			marks += " [longest road]"
		}
		if s.LargestArmy {
			marks += " [largest army]"
		}
		fmt.Printf("  %d. %-12s %2d points, %d settlements, %d cities, %d roads, %d knights%s\n",
			i+1, s.Name, s.VictoryPoints, len(s.Settlements), len(s.Cities), len(s.Roads), s.KnightsPlayed, marks)
	}

	if w := ctrl.Winner(); w != nil {
		fmt.Printf("\n%s wins.\n", w.Name)
	} else {
		fmt.Println("\nNo winner: the round cap expired.")
	}

	stats := ctrl.DiceStats()
	rolls := make([]int, 0, len(stats))
	for r := range stats {
		rolls = append(rolls, r)
	}
	sort.Ints(rolls)
	fmt.Print("Dice: ")
	for _, r := range rolls {
		fmt.Printf("%d:%d ", r, stats[r])
	}
	fmt.Println()
}

func tableStatus(ctrl *game.Controller, seats []*seat.Seat) map[string]any {
	players := make([]map[string]any, 0, len(seats))
	for _, s := range seats {
		players = append(players, map[string]any{
			"name":    s.Name,
			"color":   s.Color,
			"points":  s.VictoryPoints,
			"cards":   s.TotalCards(),
			"roads":   len(s.Roads),
			"knights": s.KnightsPlayed,
		})
	}
	status := map[string]any{"players": players}
	if ctrl != nil {
		status["turn"] = ctrl.Turn()
		if w := ctrl.Winner(); w != nil {
			status["winner"] = w.Name
		}
	}
	return status
}
