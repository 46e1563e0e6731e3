package domain

// Shuffle permutes cards in place with a Fisher-Yates walk.
func Shuffle(cards []Card, rng RNG) {
	for i := len(cards) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}
}

// Partition splits cards into the draw pile (passing the filter) and the
// reserve (held out), preserving relative order within each half.
func Partition(cards []Card, f Filter) (pile, reserve []Card) {
	pile = make([]Card, 0, len(cards))
	reserve = make([]Card, 0)
	for _, c := range cards {
		if f.Allows(c) {
			pile = append(pile, c)
		} else {
			reserve = append(reserve, c)
		}
	}
	return pile, reserve
}
