package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/talgya/catan-table/internal/action"
	"github.com/talgya/catan-table/internal/snapshot"
)

// LLM is a seat driven by a language model. Every decision is one
// completion: the snapshot as JSON plus phase instructions, answered with
// the {thoughts, action} envelope.
type LLM struct {
	name    string
	persona string
	client  *Client
}

// NewLLM returns an LLM agent. The persona colors the system prompt and
// is visible to no one else at the table.
func NewLLM(name, persona string, client *Client) *LLM {
	return &LLM{name: name, persona: persona, client: client}
}

func (a *LLM) Name() string { return a.name }

// Decide renders the snapshot, queries the model, and decodes the reply.
func (a *LLM) Decide(ctx context.Context, state *snapshot.State) (*action.Decision, error) {
	stateJSON, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}

	prompt := fmt.Sprintf("Current game state:\n%s\n\n%s", stateJSON, phaseInstructions(state))
	reply, err := a.client.Complete(ctx, a.systemPrompt(), prompt, 1024)
	if err != nil {
		return nil, fmt.Errorf("model call: %w", err)
	}

	decision, err := action.Decode(reply)
	if err != nil {
		return nil, fmt.Errorf("bad model reply: %w", err)
	}
	return decision, nil
}

func (a *LLM) systemPrompt() string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, a player in a game of Settlers of Catan against other AI players. ", a.name)
	b.WriteString("You want to win: reach the victory point target before anyone else. ")
	b.WriteString("You may trade, negotiate, bluff, and form non-binding agreements with other players.\n\n")
	if a.persona != "" {
		fmt.Fprintf(&b, "Your persona: %s\n\n", a.persona)
	}
	b.WriteString("Always respond with a single JSON object of the form ")
	b.WriteString(`{"thoughts": "<your reasoning>", "action": {"type": "<action_type>", ...}}`)
	b.WriteString(" and nothing else. No prose outside the JSON.")
	return b.String()
}

// phaseInstructions tells the model which action types are legal right
// now and what fields they take.
func phaseInstructions(state *snapshot.State) string {
	switch state.Phase {
	case snapshot.PhaseSetupSettlement:
		return `Place a setup settlement. Respond with:
{"thoughts": "...", "action": {"type": "build_settlement", "vertex_index": <one of available_actions.build_settlement>}}`

	case snapshot.PhaseSetupRoad:
		return fmt.Sprintf(`You just placed a settlement at vertex %d and must build an adjacent road. Respond with:
{"thoughts": "...", "action": {"type": "build_road", "v1_index": <v1>, "v2_index": <v2>}}
using one of the edges in available_actions.build_road.`, state.LastSettlementVertex)

	case snapshot.PhaseDiscard:
		return fmt.Sprintf(`You rolled over seven cards and must discard exactly %d cards you own. Respond with:
{"thoughts": "...", "action": {"type": "discard_cards", "resources": {"WOOD": <n>, "BRICK": <n>, "SHEEP": <n>, "WHEAT": <n>, "ORE": <n>}}}
The counts must sum to exactly %d and not exceed what you hold.`, state.NumCardsToDiscard, state.NumCardsToDiscard)

	case snapshot.PhaseRobber:
		return `You must move the robber. Respond with:
{"thoughts": "...", "action": {"type": "move_robber", "hex_index": <one of available_actions.move_robber>, "player_to_rob_name": "<adjacent player or omit>"}}`

	case snapshot.PhaseNegotiation:
		return `A trade negotiation is active and it is your turn to respond. Choose one:
{"action": {"type": "accept_trade"}} to take the standing offer,
{"action": {"type": "reject_trade", "reason": "..."}} to decline it,
{"action": {"type": "propose_counter_offer", "resources_offered": {...}, "resources_requested": {...}}} to counter,
{"action": {"type": "end_negotiation"}} to walk away.`

	case snapshot.PhaseCommunication:
		return `Table talk before the dice. You may send one message:
{"action": {"type": "send_global_message", "message": "..."}} or pass with {"action": {"type": "end_turn"}}.`

	case snapshot.PhasePrivateChat:
		return `You are in a private conversation. Reply with:
{"action": {"type": "send_private_message", "message": "..."}} or close it with {"action": {"type": "end_private_chat"}}.`

	default:
		return `It is your main turn. Choose one action: build_road, build_settlement, build_city,
buy_development_card, trade_with_bank, propose_trade, play_knight_card, send_global_message,
initiate_private_chat, offer_non_binding_deal, request_embargo, share_information, or end_turn.
Build targets must come from available_actions; check action_costs against your resources first.`
	}
}
