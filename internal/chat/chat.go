// Package chat records table talk: the global channel every seat sees
// and private two-party conversations.
package chat

import (
	"fmt"
	"strings"
)

// Message is one chat line.
type Message struct {
	Player  string `json:"player"`
	Message string `json:"message"`
	Kind    string `json:"type,omitempty"` // set for diplomatic entries
}

// Log holds the table's conversation history.
type Log struct {
	global  []Message
	private map[string][]Message
}

// NewLog returns an empty chat log.
func NewLog() *Log {
	return &Log{private: make(map[string][]Message)}
}

// Global appends a line to the table-wide channel.
func (l *Log) Global(player, message string) {
	l.global = append(l.global, Message{Player: player, Message: message})
}

// Diplomatic appends a tagged line to the global channel, for deals,
// embargo calls, and shared information.
func (l *Log) Diplomatic(player, kind, message string) {
	l.global = append(l.global, Message{Player: player, Message: message, Kind: kind})
}

// Private appends a line to the conversation between two players.
func (l *Log) Private(from, to, message string) {
	k := pairKey(from, to)
	l.private[k] = append(l.private[k], Message{Player: from, Message: message})
}

// GlobalTail returns up to n of the most recent global messages.
func (l *Log) GlobalTail(n int) []Message {
	return tail(l.global, n)
}

// PrivateTail returns up to n recent messages between two players.
func (l *Log) PrivateTail(a, b string, n int) []Message {
	return tail(l.private[pairKey(a, b)], n)
}

// PrivateTailsFor returns the recent private history per conversation
// partner of the given player.
func (l *Log) PrivateTailsFor(player string, n int) map[string][]Message {
	out := make(map[string][]Message)
	for k, msgs := range l.private {
		other, ok := otherParty(k, player)
		if !ok {
			continue
		}
		out[other] = tail(msgs, n)
	}
	return out
}

func tail(msgs []Message, n int) []Message {
	if n > len(msgs) {
		n = len(msgs)
	}
	return append([]Message(nil), msgs[len(msgs)-n:]...)
}

// pairKey gives a direction-independent conversation key.
func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%s|%s", a, b)
}

func otherParty(key, player string) (string, bool) {
	parts := strings.SplitN(key, "|", 2)
	if len(parts) != 2 {
		return "", false
	}
	switch player {
	case parts[0]:
		return parts[1], true
	case parts[1]:
		return parts[0], true
	}
	return "", false
}
