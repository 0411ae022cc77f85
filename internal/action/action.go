// Package action defines the decision vocabulary agents emit and the
// JSON envelope they wrap it in. Each action type carries the fields
// the controller needs to validate and execute it.
package action

import "github.com/talgya/catan-table/internal/resource"

// Type names one agent action on the wire.
type Type string

const (
	TypeBuildRoad          Type = "build_road"
	TypeBuildSettlement    Type = "build_settlement"
	TypeBuildCity          Type = "build_city"
	TypeBuyDevelopmentCard Type = "buy_development_card"
	TypeTradeWithBank      Type = "trade_with_bank"
	TypeProposeTrade       Type = "propose_trade"
	TypeAcceptTrade        Type = "accept_trade"
	TypeRejectTrade        Type = "reject_trade"
	TypeCounterOffer       Type = "propose_counter_offer"
	TypeEndNegotiation     Type = "end_negotiation"
	TypeMoveRobber         Type = "move_robber"
	TypeDiscardCards       Type = "discard_cards"
	TypePlayKnightCard     Type = "play_knight_card"
	TypeGlobalMessage      Type = "send_global_message"
	TypeInitiatePrivate    Type = "initiate_private_chat"
	TypePrivateMessage     Type = "send_private_message"
	TypeEndPrivateChat     Type = "end_private_chat"
	TypeNonBindingDeal     Type = "offer_non_binding_deal"
	TypeRequestEmbargo     Type = "request_embargo"
	TypeShareInformation   Type = "share_information"
	TypeEndTurn            Type = "end_turn"
)

// Action is one decoded agent decision.
type Action interface {
	ActionType() Type
}

// BuildRoad places a road between two vertices.
type BuildRoad struct {
	V1 int `json:"v1_index"`
	V2 int `json:"v2_index"`
}

// BuildSettlement places a settlement on a vertex.
type BuildSettlement struct {
	Vertex int `json:"vertex_index"`
}

// BuildCity upgrades a settlement to a city.
type BuildCity struct {
	Vertex int `json:"vertex_index"`
}

// BuyDevelopmentCard draws from the development deck.
type BuyDevelopmentCard struct{}

// TradeWithBank exchanges at the seat's best bank ratio.
type TradeWithBank struct {
	Give    resource.Kind `json:"resource_to_give"`
	Receive resource.Kind `json:"resource_to_receive"`
}

// ProposeTrade opens a negotiation with another player.
type ProposeTrade struct {
	Partner   string          `json:"partner_player_name"`
	Offered   resource.Bundle `json:"resources_offered"`
	Requested resource.Bundle `json:"resources_requested"`
}

// AcceptTrade accepts the standing offer in the active negotiation.
type AcceptTrade struct{}

// RejectTrade declines the standing offer and closes the negotiation.
type RejectTrade struct {
	Reason string `json:"reason,omitempty"`
}

// CounterOffer replaces the standing offer with a new one.
type CounterOffer struct {
	Offered   resource.Bundle `json:"resources_offered"`
	Requested resource.Bundle `json:"resources_requested"`
}

// EndNegotiation walks away from the active negotiation.
type EndNegotiation struct{}

// MoveRobber relocates the robber and optionally names a victim.
type MoveRobber struct {
	Hex    int    `json:"hex_index"`
	Victim string `json:"player_to_rob_name,omitempty"`
}

// DiscardCards surrenders cards after a seven is rolled.
type DiscardCards struct {
	Resources resource.Bundle `json:"resources"`
}

// PlayKnightCard plays a knight: move the robber, optionally rob.
type PlayKnightCard struct {
	Hex    int    `json:"hex_index"`
	Victim string `json:"player_to_rob_name,omitempty"`
}

// GlobalMessage posts to the table-wide chat.
type GlobalMessage struct {
	Message string `json:"message"`
}

// InitiatePrivate opens a private chat with another player.
type InitiatePrivate struct {
	Recipient string `json:"recipient_name"`
	Opening   string `json:"opening_message"`
}

// PrivateMessage replies within an open private chat.
type PrivateMessage struct {
	Message string `json:"message"`
}

// EndPrivateChat closes the open private chat.
type EndPrivateChat struct{}

// NonBindingDeal proposes an unenforced arrangement in global chat.
type NonBindingDeal struct {
	Target string `json:"target_player_name"`
	Deal   string `json:"deal_description"`
}

// RequestEmbargo publicly calls for others to stop trading with a player.
type RequestEmbargo struct {
	Target    string `json:"target_player_name"`
	Reasoning string `json:"reasoning"`
}

// ShareInformation broadcasts a claim about the game state.
type ShareInformation struct {
	Information string `json:"information"`
}

// EndTurn yields the turn (or declines to act in a sub-phase).
type EndTurn struct{}

func (BuildRoad) ActionType() Type          { return TypeBuildRoad }
func (BuildSettlement) ActionType() Type    { return TypeBuildSettlement }
func (BuildCity) ActionType() Type          { return TypeBuildCity }
func (BuyDevelopmentCard) ActionType() Type { return TypeBuyDevelopmentCard }
func (TradeWithBank) ActionType() Type      { return TypeTradeWithBank }
func (ProposeTrade) ActionType() Type       { return TypeProposeTrade }
func (AcceptTrade) ActionType() Type        { return TypeAcceptTrade }
func (RejectTrade) ActionType() Type        { return TypeRejectTrade }
func (CounterOffer) ActionType() Type       { return TypeCounterOffer }
func (EndNegotiation) ActionType() Type     { return TypeEndNegotiation }
func (MoveRobber) ActionType() Type         { return TypeMoveRobber }
func (DiscardCards) ActionType() Type       { return TypeDiscardCards }
func (PlayKnightCard) ActionType() Type     { return TypePlayKnightCard }
func (GlobalMessage) ActionType() Type      { return TypeGlobalMessage }
func (InitiatePrivate) ActionType() Type    { return TypeInitiatePrivate }
func (PrivateMessage) ActionType() Type     { return TypePrivateMessage }
func (EndPrivateChat) ActionType() Type     { return TypeEndPrivateChat }
func (NonBindingDeal) ActionType() Type     { return TypeNonBindingDeal }
func (RequestEmbargo) ActionType() Type     { return TypeRequestEmbargo }
func (ShareInformation) ActionType() Type   { return TypeShareInformation }
func (EndTurn) ActionType() Type            { return TypeEndTurn }
