// Package view exposes a running game to spectators: a structured log
// feed and a websocket hub with a small read-only HTTP API.
package view

import (
	"log/slog"

	"github.com/talgya/catan-table/internal/game"
)

// LogView writes every game event to a structured logger. It implements
// game.Observer.
type LogView struct {
	log *slog.Logger
}

// NewLogView returns a log observer.
func NewLogView(logger *slog.Logger) *LogView {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogView{log: logger}
}

func (v *LogView) Observe(ev game.Event) {
	v.log.Info("game event",
		"turn", ev.Turn,
		"seat", ev.Seat,
		"kind", ev.Kind,
		"detail", ev.Detail,
	)
}
