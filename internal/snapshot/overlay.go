package snapshot

import (
	"sort"
	"strings"

	"github.com/talgya/catan-table/internal/board"
	"github.com/talgya/catan-table/internal/resource"
	"github.com/talgya/catan-table/internal/seat"
)

// highProbTokens mark tiles worth contesting when ranking choke points.
var highProbTokens = map[int]bool{5: true, 6: true, 8: true, 9: true}

func buildPlayers(req Request) []PlayerPublic {
	out := make([]PlayerPublic, 0, len(req.Seats))
	for _, s := range req.Seats {
		p := PlayerPublic{
			Name:            s.Name,
			Color:           s.Color,
			ResourceCount:   s.TotalCards(),
			DevCardCount:    s.TotalDevCards(),
			Settlements:     append([]board.VertexID(nil), s.Settlements...),
			Cities:          append([]board.VertexID(nil), s.Cities...),
			Roads:           append([]board.Edge(nil), s.Roads...),
			VisiblePoints:   s.VisibleScore(),
			KnightsPlayed:   s.KnightsPlayed,
			HasLargestArmy:  s.LargestArmy,
			HasLongestRoad:  s.LongestRoad,
			IsCurrentPlayer: s.Name == req.Viewer.Name,
		}
		p.IncomePotential = incomePotential(req.Board, s)
		p.ResourceAffinity = affinity(p.IncomePotential)
		p.StrategicPosture = posture(s)
		p.ThreatLevel = threatLevel(s, req.MaxPoints)
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// incomePotential sums probability dots over a seat's buildings, cities
// counting double.
func incomePotential(b Board, s *seat.Seat) resource.Bundle {
	income := resource.NewBundle()
	add := func(v board.VertexID, mult int) {
		for _, h := range b.AdjacentHexes(v) {
			t := b.Tile(h)
			if t.Desert() {
				continue
			}
			income[t.Resource] += Dots(t.Token) * mult
		}
	}
	for _, v := range s.Settlements {
		add(v, 1)
	}
	for _, v := range s.Cities {
		add(v, 2)
	}
	return income
}

// affinity names the kind with the highest income potential, NONE when
// the seat produces nothing.
func affinity(income resource.Bundle) string {
	best, bestKind := 0, resource.Kind("")
	for _, k := range resource.Kinds() {
		if income[k] > best {
			best, bestKind = income[k], k
		}
	}
	if best == 0 {
		return "NONE"
	}
	return string(bestKind)
}

// posture infers a seat's visible strategy from its board presence.
func posture(s *seat.Seat) string {
	settlements, cities := len(s.Settlements), len(s.Cities)
	roads := len(s.Roads)
	devMetric := s.KnightsPlayed + s.TotalDevCards()

	var labels []string
	if cities > 0 && float64(cities) > float64(settlements)/2 {
		labels = append(labels, "CITY_BUILDER")
	}
	if roads >= 5 {
		labels = append(labels, "LONGEST_ROAD_SEEKER")
	}
	if devMetric >= 2 {
		labels = append(labels, "DEVELOPMENT_CARD_USER")
	}
	if settlements > cities && settlements >= 3 {
		labels = append(labels, "EXPANSIONIST")
	}
	if len(labels) == 0 {
		if settlements+cities < 3 {
			return "EARLY_DEVELOPMENT"
		}
		return "BALANCED"
	}
	return strings.Join(labels, ", ")
}

// threatLevel scores how dangerous a seat looks: points dominate, with
// army, road presence, and hand size as minor terms, plus a bonus for
// proximity to the winning score.
func threatLevel(s *seat.Seat, maxPoints int) float64 {
	vp := s.VictoryPoints
	threat := float64(vp)*3 +
		float64(s.KnightsPlayed)*1.5 +
		float64(len(s.Roads))*0.2 +
		float64(s.TotalCards()+s.TotalDevCards())*0.5
	switch {
	case vp >= maxPoints-2:
		threat += 5
	case vp >= maxPoints-3:
		threat += 2
	}
	return threat
}

func buildBoardSummary(b Board) BoardSummary {
	sum := BoardSummary{RobberHex: b.Robber()}

	for _, t := range b.Tiles() {
		sum.Hexes = append(sum.Hexes, HexInfo{
			Index:     t.ID,
			Resource:  t.Resource,
			Token:     t.Token,
			Dots:      Dots(t.Token),
			HasRobber: t.ID == b.Robber(),
			Corners:   b.HexVertices(t.ID),
		})
	}

	for v := board.VertexID(0); int(v) < b.VertexCount(); v++ {
		if p := b.PortAt(v); p != nil {
			sum.Ports = append(sum.Ports, PortInfo{Vertex: v, Ratio: p.Ratio, Kind: p.Kind})
		}
	}

	sum.ChokePoints = chokePoints(b)
	sum.BestSpots = bestSpots(b, 10)
	return sum
}

// chokePoints lists three-hex intersections touching two or more
// high-probability tiles.
func chokePoints(b Board) []ChokePoint {
	var out []ChokePoint
	for v := board.VertexID(0); int(v) < b.VertexCount(); v++ {
		hexes := b.AdjacentHexes(v)
		if len(hexes) != 3 {
			continue
		}
		var infos []HexInfo
		high := 0
		for _, h := range hexes {
			t := b.Tile(h)
			if t.Desert() {
				continue
			}
			infos = append(infos, HexInfo{Index: t.ID, Resource: t.Resource, Token: t.Token, Dots: Dots(t.Token)})
			if highProbTokens[t.Token] {
				high++
			}
		}
		if high >= 2 {
			out = append(out, ChokePoint{Vertex: v, Hexes: infos})
		}
	}
	return out
}

// bestSpots ranks unoccupied vertices by production dots plus a diversity
// bonus of two per distinct resource kind.
func bestSpots(b Board, limit int) []SpotScore {
	var out []SpotScore
	for v := board.VertexID(0); int(v) < b.VertexCount(); v++ {
		if owner, _ := b.OwnerAt(v); owner != board.NoSeat {
			continue
		}
		score := 0
		kinds := make(map[resource.Kind]bool)
		for _, h := range b.AdjacentHexes(v) {
			t := b.Tile(h)
			if t.Desert() {
				continue
			}
			score += Dots(t.Token)
			kinds[t.Resource] = true
		}
		score += len(kinds) * 2
		if score == 0 {
			continue
		}
		sorted := make([]resource.Kind, 0, len(kinds))
		for k := range kinds {
			sorted = append(sorted, k)
		}
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
		out = append(out, SpotScore{Vertex: v, Score: score, Kinds: sorted})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Vertex < out[j].Vertex
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
