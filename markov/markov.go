// Package markov builds the one-card transition matrices over the playable
// part of a hand.Space: one for a player who always hits, and one for the
// dealer, who draws until the house rule says to stand.
package markov

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/domino14/bjstrat/cards"
	"github.com/domino14/bjstrat/hand"
)

const (
	// DealerStandsAll is the total at or above which the dealer always stands.
	DealerStandsAll = 18
	// DealerStandsHard is the lowest total the dealer stands on, if it is hard.
	// The dealer hits soft 17.
	DealerStandsHard = 17
)

// DealerStands is the house rule: hit 16 or less, hit soft 17, stand on
// hard 17 and on 18 or more.
func DealerStands(h hand.Hand) bool {
	switch {
	case h.Total >= DealerStandsAll:
		return true
	case h.Total < DealerStandsHard:
		return false
	}
	return !h.Soft
}

// Model holds both transition matrices. Row i, column j is the probability
// of moving from hand i to hand j on one draw. Absorbing hands have a single
// 1 on the diagonal. Both are read-only after New.
type Model struct {
	Hit    *mat.Dense
	Dealer *mat.Dense

	space *hand.Space
}

// New builds both matrices from the space and the card distribution.
func New(space *hand.Space, dist *cards.Distribution) (*Model, error) {
	hit, err := build(space, dist, func(id hand.ID) bool {
		return id == space.Bust()
	})
	if err != nil {
		return nil, fmt.Errorf("hit transition: %w", err)
	}
	dlr, err := build(space, dist, func(id hand.ID) bool {
		return DealerStands(space.Hand(id))
	})
	if err != nil {
		return nil, fmt.Errorf("dealer transition: %w", err)
	}
	return &Model{Hit: hit, Dealer: dlr, space: space}, nil
}

func build(space *hand.Space, dist *cards.Distribution, absorbing func(hand.ID) bool) (*mat.Dense, error) {
	n := space.SimpleLen()
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		id := hand.ID(i)
		if absorbing(id) {
			m.Set(i, i, 1)
			continue
		}
		for _, r := range cards.Ranks() {
			next, err := space.Advance(id, r)
			if err != nil {
				return nil, err
			}
			m.Set(i, int(next), m.At(i, int(next))+dist.P(r))
		}
	}
	return m, nil
}

// Space is the hand space the matrices are indexed by.
func (m *Model) Space() *hand.Space {
	return m.space
}

// HitRow is the distribution of hands one hit away from id. Pair states use
// the row of their generic hard total.
func (m *Model) HitRow(id hand.ID) ([]float64, error) {
	plain, err := m.space.Unpaired(id)
	if err != nil {
		return nil, err
	}
	return mat.Row(nil, int(plain), m.Hit), nil
}

// RowSums returns the sum of each row of a.
func RowSums(a mat.Matrix) []float64 {
	r, _ := a.Dims()
	sums := make([]float64, r)
	for i := range sums {
		sums[i] = floats.Sum(mat.Row(nil, i, a))
	}
	return sums
}
