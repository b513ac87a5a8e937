package engine

import "math/rand/v2"

// Deck is an ordered stack of cards; index 0 is the top.
type Deck[T Card] struct {
	cards []T
}

// NewDeck copies cards into a deck without shuffling.
func NewDeck[T Card](cards []T) *Deck[T] {
	d := &Deck[T]{cards: make([]T, len(cards))}
	copy(d.cards, cards)
	return d
}

func (d *Deck[T]) Shuffle(rng *rand.Rand) {
	rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// Draw removes and returns the top n cards. Returns fewer if deck is short.
func (d *Deck[T]) Draw(n int) []T {
	if n > len(d.cards) {
		n = len(d.cards)
	}
	drawn := make([]T, n)
	copy(drawn, d.cards[:n])
	d.cards = d.cards[n:]
	return drawn
}

// Return puts cards back at the bottom of the deck.
func (d *Deck[T]) Return(cards ...T) {
	d.cards = append(d.cards, cards...)
}

// Len returns the number of cards remaining.
func (d *Deck[T]) Len() int {
	return len(d.cards)
}

// Peek returns top n cards without removing them.
func (d *Deck[T]) Peek(n int) []T {
	if n > len(d.cards) {
		n = len(d.cards)
	}
	out := make([]T, n)
	copy(out, d.cards[:n])
	return out
}

// Take removes the card with the given ID, wherever it sits.
func (d *Deck[T]) Take(id string) (T, bool) {
	for i, c := range d.cards {
		if c.CardID() == id {
			d.cards = append(d.cards[:i], d.cards[i+1:]...)
			return c, true
		}
	}
	var zero T
	return zero, false
}

// Find returns the card with the given ID without removing it.
func (d *Deck[T]) Find(id string) (T, bool) {
	for _, c := range d.cards {
		if c.CardID() == id {
			return c, true
		}
	}
	var zero T
	return zero, false
}

// Cards returns a copy of the deck contents, top first.
func (d *Deck[T]) Cards() []T {
	return d.Peek(len(d.cards))
}

// Clear empties the deck and returns what it held.
func (d *Deck[T]) Clear() []T {
	return d.Draw(len(d.cards))
}
