// Package cards models the ten distinguishable card ranks of a blackjack
// shoe and the probability of drawing each one. The shoe is treated as
// infinite: every draw is made with replacement.
package cards

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Rank is a card's point value, with the ace stored as 1 and every
// ten-valued card (10, J, Q, K) stored as 10.
type Rank int

const (
	Ace Rank = 1
	Ten Rank = 10

	NumRanks = 10
)

// Ranks returns every rank from Ace to Ten.
func Ranks() []Rank {
	rs := make([]Rank, 0, NumRanks)
	for r := Ace; r <= Ten; r++ {
		rs = append(rs, r)
	}
	return rs
}

// Valid reports whether r is one of the ten ranks.
func (r Rank) Valid() bool {
	return r >= Ace && r <= Ten
}

func (r Rank) String() string {
	if r == Ace {
		return "A"
	}
	return strconv.Itoa(int(r))
}

// ParseRank accepts "A", "a", "1" through "10", and the face letters.
func ParseRank(s string) (Rank, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "A", "ACE", "1":
		return Ace, nil
	case "T", "J", "Q", "K":
		return Ten, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || !Rank(n).Valid() {
		return 0, fmt.Errorf("not a card rank: %q", s)
	}
	return Rank(n), nil
}

var (
	ErrBadWeights = errors.New("card weights must be ten non-negative numbers with a positive sum")
	// ErrDominantRank is returned when a single rank is drawn at least half
	// the time; the re-split series then has no finite sum.
	ErrDominantRank = errors.New("no rank may be drawn with probability 0.5 or more")
)

// Distribution holds the per-rank draw probabilities. It is immutable once
// built.
type Distribution struct {
	probs [NumRanks + 1]float64
}

// StandardWeights are the relative frequencies of each rank in a regular
// deck: one of each of A-9 per suit, and four ten-valued cards.
var StandardWeights = [NumRanks]float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 4}

// Standard is the usual distribution: 1/13 for Ace through 9, 4/13 for tens.
func Standard() *Distribution {
	d, err := NewDistribution(StandardWeights[:])
	if err != nil {
		panic(err)
	}
	return d
}

// NewDistribution normalizes the given weights, listed Ace first.
func NewDistribution(weights []float64) (*Distribution, error) {
	if len(weights) != NumRanks {
		return nil, ErrBadWeights
	}
	for _, w := range weights {
		if w < 0 {
			return nil, ErrBadWeights
		}
	}
	sum := floats.Sum(weights)
	if sum <= 0 {
		return nil, ErrBadWeights
	}
	d := &Distribution{}
	for i, w := range weights {
		p := w / sum
		if p >= 0.5 {
			return nil, fmt.Errorf("%w: %v has probability %.3f", ErrDominantRank, Rank(i+1), p)
		}
		d.probs[i+1] = p
	}
	return d, nil
}

// P is the unconditional probability of drawing r.
func (d *Distribution) P(r Rank) float64 {
	if !r.Valid() {
		return 0
	}
	return d.probs[r]
}

// Probabilities returns a copy of the per-rank probabilities, Ace first.
func (d *Distribution) Probabilities() []float64 {
	out := make([]float64, NumRanks)
	copy(out, d.probs[1:])
	return out
}

// DealerBlackjack is the probability that the dealer's first two cards are
// an ace and a ten-valued card, in either order.
func (d *Distribution) DealerBlackjack() float64 {
	return 2 * d.P(Ace) * d.P(Ten)
}

// DownCard is the probability of the dealer's hole card given the up card
// and given that the dealer does not have blackjack. With an ace showing the
// hole card cannot be a ten; with a ten showing it cannot be an ace.
func (d *Distribution) DownCard(up, down Rank) float64 {
	switch up {
	case Ace:
		if down == Ten {
			return 0
		}
		return d.P(down) / (1 - d.P(Ten))
	case Ten:
		if down == Ace {
			return 0
		}
		return d.P(down) / (1 - d.P(Ace))
	}
	return d.P(down)
}

// UpCardGivenNoBlackjack applies Bayes' rule: P(up & no blackjack) / P(no
// blackjack).
func (d *Distribution) UpCardGivenNoBlackjack(up Rank) float64 {
	both := d.P(up)
	switch up {
	case Ace:
		both *= 1 - d.P(Ten)
	case Ten:
		both *= 1 - d.P(Ace)
	}
	return both / (1 - d.DealerBlackjack())
}
