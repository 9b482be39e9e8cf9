// Package dealer computes, for each up card, the distribution of the
// dealer's final total.
package dealer

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/domino14/bjstrat/cards"
	"github.com/domino14/bjstrat/hand"
	"github.com/domino14/bjstrat/markov"
)

const (
	// MaxAdditionalDraws bounds how many more cards any dealer hand can take.
	// Every hit raises the total or busts, so the dealer transition matrix
	// raised to this power has absorbed all of its mass.
	MaxAdditionalDraws = 20

	// NumTotals covers totals 0 through 21 plus hand.BustTotal.
	NumTotals = hand.BustTotal + 1
)

// Outcomes is the dealer's final-total distribution for every up card,
// conditioned on the dealer not having blackjack.
type Outcomes struct {
	byUp  [cards.NumRanks + 1][NumTotals]float64
	start [cards.NumRanks + 1][]float64
}

// New propagates every up card's starting distribution through the dealer
// transition matrix. The matrix power is computed once and shared.
func New(model *markov.Model, dist *cards.Distribution) (*Outcomes, error) {
	space := model.Space()
	var final mat.Dense
	final.Pow(model.Dealer, MaxAdditionalDraws)

	o := &Outcomes{}
	for _, up := range cards.Ranks() {
		pi, err := startDistribution(space, dist, up)
		if err != nil {
			return nil, fmt.Errorf("dealer outcomes for %v: %w", up, err)
		}
		o.start[up] = pi

		var v mat.VecDense
		v.MulVec(final.T(), mat.NewVecDense(len(pi), pi))
		for j := 0; j < space.SimpleLen(); j++ {
			o.byUp[up][space.Hand(hand.ID(j)).Total] += v.AtVec(j)
		}
	}
	return o, nil
}

// startDistribution is the distribution of the dealer's two-card hand given
// the up card and no blackjack.
func startDistribution(space *hand.Space, dist *cards.Distribution, up cards.Rank) ([]float64, error) {
	pi := make([]float64, space.SimpleLen())
	for _, down := range cards.Ranks() {
		p := dist.DownCard(up, down)
		if p == 0 {
			continue
		}
		id, err := space.ByCards(up, down, true)
		if err != nil {
			return nil, err
		}
		pi[id] += p
	}
	return pi, nil
}

// StartDistribution returns a copy of the dealer's two-card hand
// distribution for an up card, indexed by hand ID.
func (o *Outcomes) StartDistribution(up cards.Rank) []float64 {
	out := make([]float64, len(o.start[up]))
	copy(out, o.start[up])
	return out
}

// Distribution returns a copy of the final-total distribution for an up
// card, indexed by total; index hand.BustTotal holds the bust probability.
func (o *Outcomes) Distribution(up cards.Rank) []float64 {
	out := make([]float64, NumTotals)
	copy(out, o.byUp[up][:])
	return out
}

// Win is the probability that a player who stands on total beats the
// dealer, ignoring pushes.
func (o *Outcomes) Win(total int, up cards.Rank) float64 {
	if total > hand.MaxTotal {
		return 0
	}
	d := &o.byUp[up]
	p := d[hand.BustTotal]
	for t := markov.DealerStandsHard; t < total; t++ {
		p += d[t]
	}
	return p
}

// Loss is the probability that a player who stands on total loses.
func (o *Outcomes) Loss(total int, up cards.Rank) float64 {
	if total > hand.MaxTotal {
		return 1
	}
	d := &o.byUp[up]
	p := 0.0
	for t := max(total+1, markov.DealerStandsHard); t <= hand.MaxTotal; t++ {
		p += d[t]
	}
	return p
}

// Push is the probability that the dealer finishes on exactly total.
func (o *Outcomes) Push(total int, up cards.Rank) float64 {
	if total > hand.MaxTotal || total < markov.DealerStandsHard {
		return 0
	}
	return o.byUp[up][total]
}
