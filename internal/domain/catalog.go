package domain

import "fmt"

// DeckSize is the full tarot deck: 22 majors plus 4 suits of 14.
const DeckSize = 78

// majorNames indexed by rank 0..21.
var majorNames = [...]string{
	"The Fool", "The Magician", "The High Priestess", "The Empress",
	"The Emperor", "The Hierophant", "The Lovers", "The Chariot",
	"Strength", "The Hermit", "Wheel of Fortune", "Justice",
	"The Hanged Man", "Death", "Temperance", "The Devil",
	"The Tower", "The Star", "The Moon", "The Sun",
	"Judgement", "The World",
}

// minorRankNames indexed by rank 1..14. Ranks 11-14 are the court.
var minorRankNames = [...]string{
	"", "Ace", "Two", "Three", "Four", "Five", "Six", "Seven",
	"Eight", "Nine", "Ten", "Page", "Knight", "Queen", "King",
}

var suits = [...]Suit{SuitWands, SuitCups, SuitSwords, SuitPentacles}

var suitTitles = map[Suit]string{
	SuitWands:     "Wands",
	SuitCups:      "Cups",
	SuitSwords:    "Swords",
	SuitPentacles: "Pentacles",
}

// Catalog builds the 78-card deck description. Pure: the same cards in the
// same order on every call. Art style never changes the catalog; it is only a
// key the asset resolver uses when rendering URLs.
func Catalog() []Card {
	cards := make([]Card, 0, DeckSize)
	for rank, name := range majorNames {
		key := fmt.Sprintf("major_%02d", rank)
		cards = append(cards, Card{
			ID:          key,
			DisplayName: name,
			Rank:        rank,
			Category:    CategoryMajor,
			AssetKey:    key,
		})
	}
	for _, suit := range suits {
		for rank := 1; rank <= 14; rank++ {
			key := fmt.Sprintf("%s_%02d", suit, rank)
			cards = append(cards, Card{
				ID:          key,
				DisplayName: minorRankNames[rank] + " of " + suitTitles[suit],
				Rank:        rank,
				Category:    CategoryMinor,
				Suit:        suit,
				AssetKey:    key,
			})
		}
	}
	return cards
}
