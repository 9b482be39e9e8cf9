package montecarlo

import (
	"errors"
	"fmt"

	"lukechampine.com/frand"

	"github.com/domino14/bjstrat/cards"
)

var ErrEmptyShoe = errors.New("no cards of that rank left in the shoe")

// shoe is a finite multi-deck shoe. Unlike the solver's model, cards drawn
// from it are not replaced.
type shoe struct {
	decks  int
	counts [cards.NumRanks + 1]int
	n      int
	rng    *frand.RNG
}

func newShoe(decks int, rng *frand.RNG) *shoe {
	s := &shoe{decks: decks, rng: rng}
	s.reset()
	return s
}

// reset puts every card back: four of each of A-9 per deck and sixteen
// ten-valued cards.
func (s *shoe) reset() {
	s.n = 0
	for _, r := range cards.Ranks() {
		c := 4 * s.decks
		if r == cards.Ten {
			c = 16 * s.decks
		}
		s.counts[r] = c
		s.n += c
	}
}

func (s *shoe) count(r cards.Rank) int {
	return s.counts[r]
}

func (s *shoe) draw() cards.Rank {
	x := s.rng.Intn(s.n)
	for _, r := range cards.Ranks() {
		if x < s.counts[r] {
			s.counts[r]--
			s.n--
			return r
		}
		x -= s.counts[r]
	}
	panic(fmt.Sprintf("shoe out of cards: n=%d", s.n))
}

func (s *shoe) remove(r cards.Rank) error {
	if s.counts[r] == 0 {
		return fmt.Errorf("%w: %v", ErrEmptyShoe, r)
	}
	s.counts[r]--
	s.n--
	return nil
}

func (s *shoe) putBack(r cards.Rank) {
	s.counts[r]++
	s.n++
}
