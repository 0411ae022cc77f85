// Package persistence provides SQLite-based game records: the event
// transcript, dice statistics, and final standings.
package persistence

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/catan-table/internal/game"
	"github.com/talgya/catan-table/internal/seat"
)

// Store wraps a SQLite connection scoped to one recorded game.
type Store struct {
	conn   *sqlx.DB
	gameID string
}

// Open opens or creates a SQLite database at the given path and
// registers a new game row under gameID.
func Open(path, gameID string) (*Store, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	st := &Store{conn: conn, gameID: gameID}
	if err := st.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if _, err := conn.Exec(
		"INSERT OR IGNORE INTO games (id, started_at) VALUES (?, ?)",
		gameID, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		conn.Close()
		return nil, fmt.Errorf("register game: %w", err)
	}

	return st, nil
}

// Close closes the database connection.
func (st *Store) Close() error {
	return st.conn.Close()
}

func (st *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS games (
		id TEXT PRIMARY KEY,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		winner TEXT,
		turns INTEGER
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		game_id TEXT NOT NULL,
		turn INTEGER NOT NULL,
		seat TEXT NOT NULL,
		kind TEXT NOT NULL,
		detail TEXT NOT NULL,
		at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS standings (
		game_id TEXT NOT NULL,
		seat TEXT NOT NULL,
		points INTEGER NOT NULL,
		settlements INTEGER NOT NULL,
		cities INTEGER NOT NULL,
		roads INTEGER NOT NULL,
		knights INTEGER NOT NULL,
		longest_road INTEGER NOT NULL,
		largest_army INTEGER NOT NULL,
		PRIMARY KEY (game_id, seat)
	);

	CREATE TABLE IF NOT EXISTS dice_stats (
		game_id TEXT NOT NULL,
		roll INTEGER NOT NULL,
		count INTEGER NOT NULL,
		PRIMARY KEY (game_id, roll)
	);

	CREATE INDEX IF NOT EXISTS idx_events_game_turn ON events(game_id, turn);
	`
	_, err := st.conn.Exec(schema)
	return err
}

// Record appends one game event. It implements game.Recorder.
func (st *Store) Record(ctx context.Context, ev game.Event) error {
	_, err := st.conn.ExecContext(ctx,
		"INSERT INTO events (game_id, turn, seat, kind, detail, at) VALUES (?, ?, ?, ?, ?, ?)",
		st.gameID, ev.Turn, ev.Seat, ev.Kind, ev.Detail, ev.At.UTC().Format(time.RFC3339Nano),
	)
	return err
}

// SaveStandings writes the final per-seat results and closes out the
// game row.
func (st *Store) SaveStandings(seats []*seat.Seat, winner string, turns int) error {
	tx, err := st.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, s := range seats {
		longest, largest := 0, 0
		if s.LongestRoad {
			longest = 1
		}
		if s.LargestArmy {
			largest = 1
		}
		_, err := tx.Exec(`INSERT OR REPLACE INTO standings
			(game_id, seat, points, settlements, cities, roads, knights, longest_road, largest_army)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			st.gameID, s.Name, s.VictoryPoints,
			len(s.Settlements), len(s.Cities), len(s.Roads),
			s.KnightsPlayed, longest, largest,
		)
		if err != nil {
			return fmt.Errorf("insert standing for %s: %w", s.Name, err)
		}
	}

	if _, err := tx.Exec(
		"UPDATE games SET finished_at = ?, winner = ?, turns = ? WHERE id = ?",
		time.Now().UTC().Format(time.RFC3339), winner, turns, st.gameID,
	); err != nil {
		return err
	}

	return tx.Commit()
}

// SaveDiceStats writes the roll histogram.
func (st *Store) SaveDiceStats(stats map[int]int) error {
	tx, err := st.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for roll, count := range stats {
		_, err := tx.Exec(
			"INSERT OR REPLACE INTO dice_stats (game_id, roll, count) VALUES (?, ?, ?)",
			st.gameID, roll, count,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// EventRow is a persisted event.
type EventRow struct {
	Turn   int    `db:"turn" json:"turn"`
	Seat   string `db:"seat" json:"seat"`
	Kind   string `db:"kind" json:"kind"`
	Detail string `db:"detail" json:"detail"`
	At     string `db:"at" json:"at"`
}

// LoadEvents returns the game's full transcript in insertion order.
func (st *Store) LoadEvents() ([]EventRow, error) {
	var rows []EventRow
	err := st.conn.Select(&rows,
		"SELECT turn, seat, kind, detail, at FROM events WHERE game_id = ? ORDER BY id",
		st.gameID,
	)
	return rows, err
}

// RecentEvents returns the most recent N events for this game.
func (st *Store) RecentEvents(limit int) ([]EventRow, error) {
	var rows []EventRow
	err := st.conn.Select(&rows,
		"SELECT turn, seat, kind, detail, at FROM events WHERE game_id = ? ORDER BY id DESC LIMIT ?",
		st.gameID, limit,
	)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	return rows, nil
}

// SaveAll persists everything that outlives the process.
func (st *Store) SaveAll(seats []*seat.Seat, winner string, turns int, dice map[int]int) error {
	slog.Info("saving game results", "game", st.gameID, "winner", winner, "turns", turns)

	if err := st.SaveStandings(seats, winner, turns); err != nil {
		return fmt.Errorf("save standings: %w", err)
	}
	if err := st.SaveDiceStats(dice); err != nil {
		return fmt.Errorf("save dice stats: %w", err)
	}
	return nil
}
