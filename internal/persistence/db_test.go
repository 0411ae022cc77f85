package persistence

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/catan-table/internal/game"
	"github.com/talgya/catan-table/internal/seat"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "games.db"), uuid.NewString())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestRecordAndLoadEvents(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	events := []game.Event{
		{Turn: 1, Seat: "Alice", Kind: game.EventDiceRoll, Detail: "rolled 8", At: time.Now()},
		{Turn: 1, Seat: "Alice", Kind: game.EventBuild, Detail: "road 3-4", At: time.Now()},
		{Turn: 2, Seat: "Bob", Kind: game.EventRobber, Detail: "robber to hex 9", At: time.Now()},
	}
	for _, ev := range events {
		if err := st.Record(ctx, ev); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	rows, err := st.LoadEvents()
	if err != nil {
		t.Fatalf("LoadEvents: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d events, want 3", len(rows))
	}
	if rows[0].Detail != "rolled 8" || rows[2].Seat != "Bob" {
		t.Errorf("events out of order: %+v", rows)
	}

	recent, err := st.RecentEvents(2)
	if err != nil {
		t.Fatalf("RecentEvents: %v", err)
	}
	if len(recent) != 2 || recent[1].Seat != "Bob" {
		t.Errorf("recent tail wrong: %+v", recent)
	}
}

func TestEventsAreScopedPerGame(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "games.db")

	first, err := Open(path, "game-one")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer first.Close()
	if err := first.Record(context.Background(), game.Event{Turn: 1, Seat: "Alice", Kind: game.EventChat, Detail: "hi", At: time.Now()}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	second, err := Open(path, "game-two")
	if err != nil {
		t.Fatalf("Open second game: %v", err)
	}
	defer second.Close()

	rows, err := second.LoadEvents()
	if err != nil {
		t.Fatalf("LoadEvents: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("second game sees %d foreign events", len(rows))
	}
}

func TestSaveAllAndStandings(t *testing.T) {
	st := openTestStore(t)

	seats := []*seat.Seat{
		seat.New(0, "Alice", "red"),
		seat.New(1, "Bob", "blue"),
		seat.New(2, "Carol", "white"),
	}
	seats[0].VictoryPoints = 10
	seats[0].LongestRoad = true

	if err := st.SaveAll(seats, "Alice", 42, map[int]int{6: 9, 8: 7}); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}

	var winner string
	if err := st.conn.Get(&winner, "SELECT winner FROM games WHERE id = ?", st.gameID); err != nil {
		t.Fatalf("read game row: %v", err)
	}
	if winner != "Alice" {
		t.Errorf("winner = %q", winner)
	}

	var points int
	if err := st.conn.Get(&points, "SELECT points FROM standings WHERE game_id = ? AND seat = ?", st.gameID, "Alice"); err != nil {
		t.Fatalf("read standing: %v", err)
	}
	if points != 10 {
		t.Errorf("points = %d", points)
	}

	var count int
	if err := st.conn.Get(&count, "SELECT count FROM dice_stats WHERE game_id = ? AND roll = 6", st.gameID); err != nil {
		t.Fatalf("read dice stats: %v", err)
	}
	if count != 9 {
		t.Errorf("roll 6 count = %d", count)
	}
}

func TestArchiveRoundTrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		if err := st.Record(ctx, game.Event{Turn: i, Seat: "Alice", Kind: game.EventTurnEnd, Detail: "done", At: time.Now()}); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	path := filepath.Join(t.TempDir(), "transcript.jsonl.zst")
	if err := st.ArchiveTranscript(path); err != nil {
		t.Fatalf("ArchiveTranscript: %v", err)
	}

	rows, err := ReadTranscript(path)
	if err != nil {
		t.Fatalf("ReadTranscript: %v", err)
	}
	if len(rows) != 5 || rows[4].Turn != 5 {
		t.Fatalf("transcript round trip lost data: %+v", rows)
	}
}
