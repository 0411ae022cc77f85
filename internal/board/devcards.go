package board

import "math/rand"

// DevCard is a development card kind.
type DevCard string

const (
	Knight       DevCard = "knight"
	VictoryPoint DevCard = "victory_point"
	RoadBuilding DevCard = "road_building"
	Monopoly     DevCard = "monopoly"
	YearOfPlenty DevCard = "year_of_plenty"
)

// shuffledDevDeck builds the standard 25-card deck: 14 knights, 5 victory
// points, 2 each of the rest.
func shuffledDevDeck(rng *rand.Rand) []DevCard {
	deck := make([]DevCard, 0, 25)
	for i := 0; i < 14; i++ {
		deck = append(deck, Knight)
	}
	for i := 0; i < 5; i++ {
		deck = append(deck, VictoryPoint)
	}
	for i := 0; i < 2; i++ {
		deck = append(deck, RoadBuilding, Monopoly, YearOfPlenty)
	}
	rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
	return deck
}

// DrawDevCard removes and returns the top card, or false when empty.
func (b *Board) DrawDevCard() (DevCard, bool) {
	if len(b.devDeck) == 0 {
		return "", false
	}
	card := b.devDeck[len(b.devDeck)-1]
	b.devDeck = b.devDeck[:len(b.devDeck)-1]
	return card, true
}

// DevCardsLeft returns the number of undrawn development cards.
func (b *Board) DevCardsLeft() int { return len(b.devDeck) }
