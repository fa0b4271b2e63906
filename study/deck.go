package study

import (
	"context"
	"fmt"

	"github.com/fwojciec/coursechat"
)

// Deck steps through generated flashcards. It is not safe for concurrent
// use.
type Deck struct {
	gen coursechat.Generator

	cards   []coursechat.Flashcard
	current int
	flipped bool
}

// NewDeck returns an empty Deck in setup.
func NewDeck(gen coursechat.Generator) *Deck {
	return &Deck{gen: gen}
}

// Start generates cards for req and shows the front of the first one. On
// failure the deck stays in setup.
func (d *Deck) Start(ctx context.Context, req coursechat.FlashcardRequest) error {
	if d.Studying() {
		return fmt.Errorf("start deck while studying: %w", ErrPhase)
	}
	if err := req.Validate(); err != nil {
		return err
	}
	cards, err := d.gen.GenerateFlashcards(ctx, req)
	if err != nil {
		return fmt.Errorf("start deck: %w", err)
	}
	if len(cards) == 0 {
		return fmt.Errorf("start deck: no cards: %w", coursechat.ErrGeneration)
	}
	d.cards = cards
	d.current = 0
	d.flipped = false
	return nil
}

// Studying reports whether cards are loaded.
func (d *Deck) Studying() bool { return len(d.cards) > 0 }

// Card returns the current card and whether its back is showing.
func (d *Deck) Card() (card coursechat.Flashcard, flipped bool, ok bool) {
	if !d.Studying() {
		return coursechat.Flashcard{}, false, false
	}
	return d.cards[d.current], d.flipped, true
}

// Position returns the zero-based index of the current card and the deck
// size.
func (d *Deck) Position() (int, int) { return d.current, len(d.cards) }

// Flip turns the current card over.
func (d *Deck) Flip() {
	if d.Studying() {
		d.flipped = !d.flipped
	}
}

// Next moves to the following card, front side up. It returns false at the
// last card.
func (d *Deck) Next() bool {
	if d.current >= len(d.cards)-1 {
		return false
	}
	d.current++
	d.flipped = false
	return true
}

// Prev moves to the preceding card, front side up. It returns false at the
// first card.
func (d *Deck) Prev() bool {
	if d.current == 0 {
		return false
	}
	d.current--
	d.flipped = false
	return true
}

// Restart discards the cards and returns to setup.
func (d *Deck) Restart() {
	*d = Deck{gen: d.gen}
}
