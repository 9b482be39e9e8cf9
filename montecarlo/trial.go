package montecarlo

import (
	"errors"
	"fmt"

	"github.com/domino14/bjstrat/cards"
	"github.com/domino14/bjstrat/hand"
	"github.com/domino14/bjstrat/markov"
	"github.com/domino14/bjstrat/strategy"
)

var errNoStartingCards = errors.New("no two cards make this hand")

type outcome int

const (
	push outcome = iota
	win
	loss
)

// trial plays one hand from a fixed starting hand against a fixed up card.
type trial struct {
	space *hand.Space
	// chart is followed while a hand still has its first two cards;
	// base is followed after that.
	chart *strategy.Chart
	base  *strategy.Chart
	shoe  *shoe
}

func (t *trial) play(id hand.ID, up cards.Rank) (outcome, error) {
	t.shoe.reset()
	if err := t.dealStarting(id); err != nil {
		return push, err
	}
	if err := t.shoe.remove(up); err != nil {
		return push, err
	}
	down := t.shoe.draw()
	for isBlackjack(up, down) {
		t.shoe.putBack(down)
		down = t.shoe.draw()
	}

	player, err := t.playerPlays(id, up)
	if err != nil {
		return push, err
	}
	if t.space.Hand(player).Busted() {
		return loss, nil
	}
	dealer, err := t.dealerPlays(up, down)
	if err != nil {
		return push, err
	}
	pt, dt := t.space.Hand(player).Total, t.space.Hand(dealer).Total
	switch {
	case t.space.Hand(dealer).Busted() || pt > dt:
		return win, nil
	case pt < dt:
		return loss, nil
	}
	return push, nil
}

func isBlackjack(a, b cards.Rank) bool {
	return (a == cards.Ace && b == cards.Ten) || (a == cards.Ten && b == cards.Ace)
}

// dealStarting takes two cards that make the starting hand out of the shoe.
// A plain hard total picks its two unequal cards with probability
// proportional to how many ways the shoe can deal them.
func (t *trial) dealStarting(id hand.ID) error {
	h := t.space.Hand(id)
	if r, ok := t.space.PairRank(id); ok {
		return t.removeAll(r, r)
	}
	if h.Soft {
		return t.removeAll(cards.Ace, cards.Rank(h.Total-11))
	}

	type combo struct{ a, b cards.Rank }
	var combos []combo
	var weights []int
	totalWeight := 0
	for i := max(2, h.Total-int(cards.Ten)); i < h.Total-i; i++ {
		a, b := cards.Rank(i), cards.Rank(h.Total-i)
		w := 2 * t.shoe.count(a) * t.shoe.count(b)
		combos = append(combos, combo{a, b})
		weights = append(weights, w)
		totalWeight += w
	}
	if totalWeight == 0 {
		return fmt.Errorf("%w: %v", errNoStartingCards, h)
	}
	x := t.shoe.rng.Intn(totalWeight)
	for i, w := range weights {
		if x < w {
			return t.removeAll(combos[i].a, combos[i].b)
		}
		x -= w
	}
	return fmt.Errorf("%w: %v", errNoStartingCards, h)
}

func (t *trial) removeAll(rs ...cards.Rank) error {
	for _, r := range rs {
		if err := t.shoe.remove(r); err != nil {
			return err
		}
	}
	return nil
}

// playerPlays follows the charts and returns the final hand. A split plays
// on with just one of the two hands; a re-splitting card is put back and
// another drawn.
func (t *trial) playerPlays(id hand.ID, up cards.Rank) (hand.ID, error) {
	initial := true
	for {
		d := t.base.At(id, up)
		if initial {
			d = t.chart.At(id, up)
		}
		var err error
		switch d.Action {
		case strategy.Stand:
			return id, nil
		case strategy.Hit:
			id, err = t.space.Advance(id, t.shoe.draw())
			if err != nil {
				return id, err
			}
			initial = false
			if t.space.Hand(id).Busted() {
				return id, nil
			}
		case strategy.DoubleDown:
			return t.space.Advance(id, t.shoe.draw())
		case strategy.Split:
			rank, ok := t.space.PairRank(id)
			if !ok {
				return id, fmt.Errorf("split on %v, which is not a pair", t.space.Hand(id))
			}
			c := t.shoe.draw()
			for c == rank {
				t.shoe.putBack(c)
				c = t.shoe.draw()
			}
			id, err = t.space.ByCards(rank, c, false)
			if err != nil {
				return id, err
			}
			initial = true
		default:
			return id, fmt.Errorf("%w: %v vs %v", ErrIncompleteChart, t.space.Hand(id), up)
		}
	}
}

func (t *trial) dealerPlays(up, down cards.Rank) (hand.ID, error) {
	id, err := t.space.ByCards(up, down, true)
	if err != nil {
		return id, err
	}
	for !markov.DealerStands(t.space.Hand(id)) {
		id, err = t.space.Advance(id, t.shoe.draw())
		if err != nil {
			return id, err
		}
	}
	return id, nil
}
