package action

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Decision is the envelope agents emit: free-form reasoning plus one action.
type Decision struct {
	Thoughts string `json:"thoughts"`
	Action   Action `json:"-"`
}

// envelopeSchema checks the envelope shape before type dispatch so that a
// malformed reply fails with a message the agent can act on next attempt.
var envelopeSchema = jsonschema.MustCompileString("decision.json", `{
	"type": "object",
	"required": ["action"],
	"properties": {
		"thoughts": {"type": "string"},
		"action": {
			"type": "object",
			"required": ["type"],
			"properties": {
				"type": {"type": "string"}
			}
		}
	}
}`)

type rawEnvelope struct {
	Thoughts string          `json:"thoughts"`
	Action   json.RawMessage `json:"action"`
}

type rawAction struct {
	Type Type `json:"type"`
}

// Decode parses an agent reply into a Decision. Markdown code fences
// around the JSON are tolerated and stripped.
func Decode(reply string) (*Decision, error) {
	text := StripFences(reply)

	var loose any
	if err := json.Unmarshal([]byte(text), &loose); err != nil {
		return nil, fmt.Errorf("reply is not valid JSON: %w", err)
	}
	if err := envelopeSchema.Validate(loose); err != nil {
		return nil, fmt.Errorf("reply does not match the expected envelope: %w", err)
	}

	var env rawEnvelope
	if err := json.Unmarshal([]byte(text), &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}

	var head rawAction
	if err := json.Unmarshal(env.Action, &head); err != nil {
		return nil, fmt.Errorf("decode action header: %w", err)
	}

	act, err := decodeAction(head.Type, env.Action)
	if err != nil {
		return nil, err
	}
	return &Decision{Thoughts: env.Thoughts, Action: act}, nil
}

func decodeAction(t Type, raw json.RawMessage) (Action, error) {
	var (
		act Action
		err error
	)
	unmarshal := func(v Action) Action {
		err = json.Unmarshal(raw, v)
		return v
	}

	switch t {
	case TypeBuildRoad:
		act = unmarshal(&BuildRoad{})
	case TypeBuildSettlement:
		act = unmarshal(&BuildSettlement{})
	case TypeBuildCity:
		act = unmarshal(&BuildCity{})
	case TypeBuyDevelopmentCard:
		act = &BuyDevelopmentCard{}
	case TypeTradeWithBank:
		act = unmarshal(&TradeWithBank{})
	case TypeProposeTrade:
		act = unmarshal(&ProposeTrade{})
	case TypeAcceptTrade:
		act = &AcceptTrade{}
	case TypeRejectTrade:
		act = unmarshal(&RejectTrade{})
	case TypeCounterOffer:
		act = unmarshal(&CounterOffer{})
	case TypeEndNegotiation:
		act = &EndNegotiation{}
	case TypeMoveRobber:
		act = unmarshal(&MoveRobber{})
	case TypeDiscardCards:
		act = unmarshal(&DiscardCards{})
	case TypePlayKnightCard:
		act = unmarshal(&PlayKnightCard{})
	case TypeGlobalMessage:
		act = unmarshal(&GlobalMessage{})
	case TypeInitiatePrivate:
		act = unmarshal(&InitiatePrivate{})
	case TypePrivateMessage:
		act = unmarshal(&PrivateMessage{})
	case TypeEndPrivateChat:
		act = &EndPrivateChat{}
	case TypeNonBindingDeal:
		act = unmarshal(&NonBindingDeal{})
	case TypeRequestEmbargo:
		act = unmarshal(&RequestEmbargo{})
	case TypeShareInformation:
		act = unmarshal(&ShareInformation{})
	case TypeEndTurn:
		act = &EndTurn{}
	default:
		return nil, fmt.Errorf("unknown action type %q", t)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s action: %w", t, err)
	}
	return act, nil
}

// StripFences removes a surrounding markdown code fence, if present.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
