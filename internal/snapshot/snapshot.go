// Package snapshot assembles the game state one agent sees when asked to
// decide: its private hand, public opponent summaries with strategic
// overlays, board analysis, legal actions, and pending feedback.
package snapshot

import (
	"sort"

	"github.com/talgya/catan-table/internal/board"
	"github.com/talgya/catan-table/internal/chat"
	"github.com/talgya/catan-table/internal/negotiation"
	"github.com/talgya/catan-table/internal/reputation"
	"github.com/talgya/catan-table/internal/resource"
	"github.com/talgya/catan-table/internal/seat"
)

// Phase names the decision an agent is being asked to make.
type Phase string

const (
	PhaseSetupSettlement Phase = "setup_settlement"
	PhaseSetupRoad       Phase = "setup_road"
	PhaseCommunication   Phase = "communication"
	PhaseDiscard         Phase = "discard"
	PhaseRobber          Phase = "robber"
	PhaseMain            Phase = "main"
	PhaseNegotiation     Phase = "negotiation"
	PhasePrivateChat     Phase = "private_chat"
)

// chatTail bounds how much conversation history a snapshot carries.
const chatTail = 10

// dots maps a number token to its production weight, the pip count
// printed on the physical piece. Sevens and the desert score zero.
var dots = map[int]int{
	2: 1, 3: 2, 4: 3, 5: 4, 6: 5,
	8: 5, 9: 4, 10: 3, 11: 2, 12: 1,
}

// Dots returns the production weight of a number token.
func Dots(token int) int { return dots[token] }

// Board is the read side of the board the builder consumes. The
// concrete board satisfies it; tests may substitute a fake.
type Board interface {
	Tiles() []*board.Tile
	Tile(id board.HexID) *board.Tile
	Robber() board.HexID
	VertexCount() int
	PortAt(v board.VertexID) *resource.Port
	AdjacentHexes(v board.VertexID) []board.HexID
	HexVertices(h board.HexID) []board.VertexID
	OwnerAt(v board.VertexID) (board.SeatID, bool)
	SetupSettlementSpots() []board.VertexID
	SetupRoadSpots(anchor board.VertexID) []board.Edge
	PotentialSettlements(s board.SeatID) []board.VertexID
	PotentialRoads(s board.SeatID) []board.Edge
	PotentialCities(s board.SeatID) []board.VertexID
	RobberHexes() []board.HexID
	DevCardsLeft() int
}

// Request carries everything the builder needs to assemble one snapshot.
type Request struct {
	Phase  Phase
	Turn   int
	Viewer *seat.Seat
	Seats  []*seat.Seat
	Board  Board

	Chat       *chat.Log
	Session    *negotiation.Session
	Reputation *reputation.Matrix

	MaxPoints int

	RobberMandatory  bool
	DiscardMandatory bool
	NumToDiscard     int

	SetupRoadPending bool
	LastSettlement   board.VertexID

	ChatPartner string

	DiceStats map[int]int
}

// State is the assembled view handed to an agent.
type State struct {
	Phase Phase `json:"phase"`
	Turn  int   `json:"turn"`

	You     You            `json:"you"`
	Players []PlayerPublic `json:"players"`
	Board   BoardSummary   `json:"board"`

	AvailableActions AvailableActions           `json:"available_actions"`
	ActionCosts      map[string]resource.Bundle `json:"action_costs"`
	BankTradeRatios  BankRatios                 `json:"bank_trade_ratios"`
	DevCardsLeft     int                        `json:"dev_cards_remaining"`

	RobberMoveMandatory bool `json:"robber_movement_is_mandatory,omitempty"`
	DiscardMandatory    bool `json:"discard_is_mandatory,omitempty"`
	NumCardsToDiscard   int  `json:"num_cards_to_discard,omitempty"`
	TotalResourceCards  int  `json:"your_total_resource_cards,omitempty"`

	SetupRoadPending     bool           `json:"setup_road_placement_pending,omitempty"`
	LastSettlementVertex board.VertexID `json:"last_settlement_vertex_index,omitempty"`

	Negotiation  negotiation.Context       `json:"negotiation"`
	GlobalChat   []chat.Message            `json:"global_chat_history"`
	PrivateChats map[string][]chat.Message `json:"private_chat_histories,omitempty"`
	ChatPartner  string                    `json:"active_private_chat_partner,omitempty"`
	Reputation   map[string]int            `json:"my_reputation_with_others"`

	LastActionStatus string   `json:"last_action_status,omitempty"`
	Memory           []string `json:"recent_decisions,omitempty"`

	DiceStats map[int]int `json:"dice_roll_counts,omitempty"`
}

// You is the viewer's private hand.
type You struct {
	Name      string                `json:"name"`
	Color     string                `json:"color"`
	Resources resource.Bundle       `json:"resources"`
	DevCards  map[board.DevCard]int `json:"dev_cards"`
	Points    int                   `json:"victory_points"`
	Ports     []string              `json:"ports"`
}

// PlayerPublic is what everyone can see of one seat, plus the strategic
// overlays derived for the viewer.
type PlayerPublic struct {
	Name            string           `json:"name"`
	Color           string           `json:"color"`
	ResourceCount   int              `json:"resource_card_count"`
	DevCardCount    int              `json:"dev_card_count"`
	Settlements     []board.VertexID `json:"settlements_vertex_indices"`
	Cities          []board.VertexID `json:"cities_vertex_indices"`
	Roads           []board.Edge     `json:"roads"`
	VisiblePoints   int              `json:"visible_victory_points"`
	KnightsPlayed   int              `json:"knights_played"`
	HasLargestArmy  bool             `json:"has_largest_army"`
	HasLongestRoad  bool             `json:"has_longest_road"`
	IsCurrentPlayer bool             `json:"is_current_player"`

	IncomePotential  resource.Bundle `json:"resource_income_potential"`
	ResourceAffinity string          `json:"resource_affinity"`
	StrategicPosture string          `json:"strategic_posture"`
	ThreatLevel      float64         `json:"threat_level"`
}

// HexInfo summarizes one tile.
type HexInfo struct {
	Index     board.HexID      `json:"hex_index"`
	Resource  resource.Kind    `json:"resource_type,omitempty"`
	Token     int              `json:"roll_number"`
	Dots      int              `json:"probability_dots"`
	HasRobber bool             `json:"has_robber,omitempty"`
	Corners   []board.VertexID `json:"corner_vertex_indices,omitempty"`
}

// PortInfo summarizes one port vertex.
type PortInfo struct {
	Vertex board.VertexID `json:"vertex_index"`
	Ratio  int            `json:"ratio"`
	Kind   resource.Kind  `json:"resource_type,omitempty"`
}

// ChokePoint is a three-hex intersection touching at least two
// high-probability tiles.
type ChokePoint struct {
	Vertex board.VertexID `json:"vertex_index"`
	Hexes  []HexInfo      `json:"connected_hexes"`
}

// SpotScore ranks an unoccupied vertex by production and diversity.
type SpotScore struct {
	Vertex board.VertexID  `json:"vertex_index"`
	Score  int             `json:"heuristic_score"`
	Kinds  []resource.Kind `json:"resource_types_available"`
}

// BoardSummary is the agent-facing board analysis.
type BoardSummary struct {
	Hexes       []HexInfo    `json:"hexes"`
	Ports       []PortInfo   `json:"ports"`
	RobberHex   board.HexID  `json:"robber_location_hex_index"`
	ChokePoints []ChokePoint `json:"choke_points"`
	BestSpots   []SpotScore  `json:"best_unoccupied_settlement_spots"`
}

// AvailableActions lists the legal build targets for the current phase.
type AvailableActions struct {
	BuildSettlement []board.VertexID `json:"build_settlement"`
	BuildCity       []board.VertexID `json:"build_city"`
	BuildRoad       []board.Edge     `json:"build_road"`
	MoveRobber      []board.HexID    `json:"move_robber,omitempty"`
}

// BankRatios describes the viewer's exchange rates with the bank.
type BankRatios struct {
	StandardRate   int                    `json:"standard_rate"`
	HasGeneralPort bool                   `json:"has_general_3_to_1_port"`
	SpecificPorts  map[resource.Kind]bool `json:"specific_2_to_1_ports"`
}

// Build assembles the snapshot for req.Viewer. The viewer's pending
// action feedback is consumed here; it appears in exactly one snapshot.
func Build(req Request) *State {
	viewer := req.Viewer
	st := &State{
		Phase: req.Phase,
		Turn:  req.Turn,
		You: You{
			Name:      viewer.Name,
			Color:     viewer.Color,
			Resources: viewer.Resources.Clone(),
			DevCards:  cloneDevCards(viewer.DevCards),
			Points:    viewer.VictoryPoints,
			Ports:     portNames(viewer.Ports),
		},
		Players:          buildPlayers(req),
		Board:            buildBoardSummary(req.Board),
		ActionCosts:      actionCosts(),
		BankTradeRatios:  bankRatios(viewer),
		DevCardsLeft:     req.Board.DevCardsLeft(),
		GlobalChat:       req.Chat.GlobalTail(chatTail),
		PrivateChats:     req.Chat.PrivateTailsFor(viewer.Name, chatTail),
		ChatPartner:      req.ChatPartner,
		Reputation:       req.Reputation.RowFor(viewer.Name, seatNames(req.Seats)),
		LastActionStatus: viewer.TakeFeedback(),
		Memory:           viewer.MemoryTail(5),
		DiceStats:        req.DiceStats,
	}

	if req.Session != nil {
		st.Negotiation = req.Session.ContextFor(viewer.Name)
	}

	st.RobberMoveMandatory = req.RobberMandatory
	st.DiscardMandatory = req.DiscardMandatory
	if req.DiscardMandatory {
		st.NumCardsToDiscard = req.NumToDiscard
		st.TotalResourceCards = viewer.TotalCards()
	}
	if req.SetupRoadPending {
		st.SetupRoadPending = true
		st.LastSettlementVertex = req.LastSettlement
	}

	st.AvailableActions = buildActions(req)
	return st
}

func buildActions(req Request) AvailableActions {
	b, viewer := req.Board, req.Viewer
	var acts AvailableActions
	switch req.Phase {
	case PhaseSetupSettlement:
		acts.BuildSettlement = b.SetupSettlementSpots()
	case PhaseSetupRoad:
		acts.BuildRoad = b.SetupRoadSpots(req.LastSettlement)
	case PhaseRobber:
		acts.MoveRobber = b.RobberHexes()
	case PhaseMain:
		acts.BuildSettlement = b.PotentialSettlements(viewer.ID)
		acts.BuildCity = b.PotentialCities(viewer.ID)
		acts.BuildRoad = b.PotentialRoads(viewer.ID)
	}
	sortVertices(acts.BuildSettlement)
	sortVertices(acts.BuildCity)
	return acts
}

func actionCosts() map[string]resource.Bundle {
	return map[string]resource.Bundle{
		"build_road":           resource.RoadCost.Clone(),
		"build_settlement":     resource.SettlementCost.Clone(),
		"build_city":           resource.CityCost.Clone(),
		"buy_development_card": resource.DevCardCost.Clone(),
	}
}

func bankRatios(viewer *seat.Seat) BankRatios {
	r := BankRatios{
		StandardRate:  4,
		SpecificPorts: make(map[resource.Kind]bool, 5),
	}
	for _, k := range resource.Kinds() {
		r.SpecificPorts[k] = false
	}
	for _, p := range viewer.Ports {
		if p.Kind == "" && p.Ratio == 3 {
			r.HasGeneralPort = true
		} else if p.Ratio == 2 {
			r.SpecificPorts[p.Kind] = true
		}
	}
	return r
}

func cloneDevCards(in map[board.DevCard]int) map[board.DevCard]int {
	out := make(map[board.DevCard]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func portNames(ports []resource.Port) []string {
	out := make([]string, len(ports))
	for i, p := range ports {
		out[i] = p.String()
	}
	sort.Strings(out)
	return out
}

func seatNames(seats []*seat.Seat) []string {
	out := make([]string, len(seats))
	for i, s := range seats {
		out[i] = s.Name
	}
	return out
}

func sortVertices(vs []board.VertexID) {
	sort.Slice(vs, func(i, j int) bool { return vs[i] < vs[j] })
}
