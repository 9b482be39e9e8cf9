// Package hand enumerates the canonical blackjack hand states. A hand is
// identified only by its point total, whether an ace is being counted as 11,
// and whether it is a splittable starting pair; how the cards arrived does
// not matter.
package hand

import (
	"errors"
	"fmt"

	"github.com/domino14/bjstrat/cards"
)

const (
	// BustTotal stands in for every total above 21.
	BustTotal = 22
	MaxTotal  = 21

	minHard = 4
	minSoft = 12
	aceBump = 10
)

// ErrNoCanonicalHand means a computed hand state is not in the space. It is
// always an enumeration bug, never a user error.
var ErrNoCanonicalHand = errors.New("hand matches no canonical hand")

// Hand is an immutable hand state.
type Hand struct {
	Total      int
	Soft       bool
	Splittable bool
	// Suppressed hands are left out of printed charts because their play is
	// obvious. The solver ignores this flag.
	Suppressed bool
}

// Same reports whether two hands are the same canonical hand. Suppressed is
// not part of a hand's identity.
func (h Hand) Same(o Hand) bool {
	return h.Total == o.Total && h.Soft == o.Soft && h.Splittable == o.Splittable
}

// Busted reports whether h is the bust state.
func (h Hand) Busted() bool {
	return h.Total >= BustTotal
}

// Name is the symbolic name used in charts: 14, A,7, 8,8, A,A.
func (h Hand) Name() string {
	switch {
	case h.Splittable && h.Soft:
		return "A,A"
	case h.Splittable:
		return fmt.Sprintf("%d,%d", h.Total/2, h.Total/2)
	case h.Soft:
		return fmt.Sprintf("A,%d", h.Total-aceBump-1)
	case h.Busted():
		return "Bust"
	}
	return fmt.Sprintf("%d", h.Total)
}

func (h Hand) String() string {
	return h.Name()
}

// ID indexes a hand within a Space.
type ID int

// Space is the closed set of hand states. The first SimpleLen IDs are the
// hands that take part in play (hard 4-21, soft 12-21 and Bust); the
// remaining IDs are the starting pairs 3,3 through 10,10, which only exist to
// decide whether to split. Hard 4 and soft 12 double as the 2,2 and A,A pairs.
type Space struct {
	hands  []Hand
	simple int
}

// NewSpace enumerates every canonical hand.
func NewSpace() *Space {
	s := &Space{}
	for t := minHard; t <= MaxTotal; t++ {
		s.hands = append(s.hands, Hand{
			Total:      t,
			Splittable: t == minHard,
			Suppressed: (t > minHard && t <= 7) || t >= 18,
		})
	}
	for t := minSoft; t <= MaxTotal; t++ {
		s.hands = append(s.hands, Hand{
			Total:      t,
			Soft:       true,
			Splittable: t == minSoft,
			Suppressed: t >= 20,
		})
	}
	s.hands = append(s.hands, Hand{Total: BustTotal, Suppressed: true})
	s.simple = len(s.hands)
	for r := cards.Rank(3); r <= cards.Ten; r++ {
		s.hands = append(s.hands, Hand{Total: 2 * int(r), Splittable: true})
	}
	return s
}

// Len is the number of hands in the space, pairs included.
func (s *Space) Len() int {
	return len(s.hands)
}

// SimpleLen is the number of hands that take part in play. IDs below it
// index transition matrices.
func (s *Space) SimpleLen() int {
	return s.simple
}

// Simple reports whether id takes part in play, as opposed to being one of
// the split-only pair states.
func (s *Space) Simple(id ID) bool {
	return int(id) < s.simple
}

// Hand returns the hand for id.
func (s *Space) Hand(id ID) Hand {
	return s.hands[id]
}

// IDs lists every hand ID in enumeration order.
func (s *Space) IDs() []ID {
	ids := make([]ID, len(s.hands))
	for i := range ids {
		ids[i] = ID(i)
	}
	return ids
}

// Canonicalize finds the hand with the given identity.
func (s *Space) Canonicalize(total int, soft, splittable bool) (ID, error) {
	want := Hand{Total: total, Soft: soft, Splittable: splittable}
	for i, h := range s.hands {
		if h.Same(want) {
			return ID(i), nil
		}
	}
	return -1, fmt.Errorf("%w: total=%d soft=%v splittable=%v",
		ErrNoCanonicalHand, total, soft, splittable)
}

// Bust is the ID of the terminal bust state.
func (s *Space) Bust() ID {
	return ID(s.simple - 1)
}

// Recount adds a card to a hand given as (total, soft) and returns the new
// total and soft flag. A drawn ace first counts as 11. Over 21, one ace
// counting 11 drops to 1, and the hand stays soft only when a soft hand drew
// an ace. Anything still over 21 is BustTotal.
func Recount(total int, soft bool, r cards.Rank) (int, bool) {
	if total >= BustTotal {
		return BustTotal, false
	}
	newSoft := soft
	total += int(r)
	if r == cards.Ace {
		total += aceBump
		newSoft = true
	}
	if newSoft && total > MaxTotal {
		total -= aceBump
		newSoft = soft && r == cards.Ace
	}
	if total > MaxTotal {
		return BustTotal, false
	}
	return total, newSoft
}

// Advance is the hand reached from id by drawing r. The result is never a
// splittable pair.
func (s *Space) Advance(id ID, r cards.Rank) (ID, error) {
	h := s.hands[id]
	total, soft := Recount(h.Total, h.Soft, r)
	next, err := s.Canonicalize(total, soft, false)
	if err != nil {
		return -1, fmt.Errorf("advance %v by %v: %w", h, r, err)
	}
	return next, nil
}

// ByCards is the hand formed by two cards. Equal ranks make a splittable
// pair, except that for the dealer only 2,2 and A,A keep their pair states,
// since those are the canonical hard 4 and soft 12.
func (s *Space) ByCards(a, b cards.Rank, dealer bool) (ID, error) {
	either := a == cards.Ace || b == cards.Ace
	total := int(a) + int(b)
	if either {
		total += aceBump
	}
	splittable := a == b && (!dealer || a <= 2)
	id, err := s.Canonicalize(total, either, splittable)
	if err != nil {
		return -1, fmt.Errorf("by cards %v,%v: %w", a, b, err)
	}
	return id, nil
}

// Unpaired converts a pair state 3,3 through 10,10 to the generic hard total
// of the same value, which is how the hand plays once it is no longer the
// original two cards. Every other hand is returned unchanged.
func (s *Space) Unpaired(id ID) (ID, error) {
	if s.Simple(id) {
		return id, nil
	}
	h := s.hands[id]
	plain, err := s.Canonicalize(h.Total, false, false)
	if err != nil {
		return -1, fmt.Errorf("unpaired %v: %w", h, err)
	}
	return plain, nil
}

// PairRank is the rank that was paired to make a splittable hand.
func (s *Space) PairRank(id ID) (cards.Rank, bool) {
	h := s.hands[id]
	if !h.Splittable {
		return 0, false
	}
	if h.Soft {
		return cards.Ace, true
	}
	return cards.Rank(h.Total / 2), true
}

// Pairs lists every splittable hand, A,A and 2,2 included.
func (s *Space) Pairs() []ID {
	var ids []ID
	for i, h := range s.hands {
		if h.Splittable {
			ids = append(ids, ID(i))
		}
	}
	return ids
}

// SuppressPairs returns a copy of the space in which every pair is hidden
// from charts. It is used when splitting and doubling are not computed.
func (s *Space) SuppressPairs() *Space {
	cp := &Space{hands: make([]Hand, len(s.hands)), simple: s.simple}
	copy(cp.hands, s.hands)
	for i := range cp.hands {
		if cp.hands[i].Splittable {
			cp.hands[i].Suppressed = true
		}
	}
	return cp
}
