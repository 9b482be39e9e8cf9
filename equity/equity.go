// Package equity turns a refined chart into the player's expected value per
// hand played.
package equity

import (
	"errors"
	"fmt"

	"github.com/samber/lo"

	"github.com/domino14/bjstrat/cards"
	"github.com/domino14/bjstrat/hand"
	"github.com/domino14/bjstrat/strategy"
)

var ErrIncompleteChart = errors.New("cannot aggregate a chart with unresolved cells")

// HandEquity is one starting hand's contribution to the overall figure.
type HandEquity struct {
	ID   hand.ID
	Prob float64
	// EV accounts for the dealer possibly having blackjack.
	EV float64
}

type Summary struct {
	// EV is the expected gain per unit staked, usually slightly negative.
	EV              float64
	DealerBlackjack float64
	PlayerBlackjack float64
	Hands           []HandEquity
}

// StartingHandProbabilities is the distribution of the player's first two
// cards over all ordered draws, indexed by hand ID.
func StartingHandProbabilities(space *hand.Space, dist *cards.Distribution) ([]float64, error) {
	probs := make([]float64, space.Len())
	for _, a := range cards.Ranks() {
		for _, b := range cards.Ranks() {
			id, err := space.ByCards(a, b, false)
			if err != nil {
				return nil, fmt.Errorf("starting hands: %w", err)
			}
			probs[id] += dist.P(a) * dist.P(b)
		}
	}
	return probs, nil
}

// Blackjack is the ID of a two-card 21.
func Blackjack(space *hand.Space) (hand.ID, error) {
	return space.Canonicalize(hand.MaxTotal, true, false)
}

// HandEV is the expected value of a starting hand given that the dealer
// does not have blackjack. A player blackjack is paid at payout.
func HandEV(chart *strategy.Chart, dist *cards.Distribution, id hand.ID, payout float64) (float64, error) {
	bj, err := Blackjack(chart.Space())
	if err != nil {
		return 0, err
	}
	if id == bj {
		return payout, nil
	}
	ev := 0.0
	for _, up := range cards.Ranks() {
		ev += dist.UpCardGivenNoBlackjack(up) * chart.At(id, up).EV()
	}
	return ev, nil
}

// Overall weighs every starting hand's value by its probability. When the
// dealer has blackjack the hand is lost, unless the player has one too.
func Overall(chart *strategy.Chart, dist *cards.Distribution, payout float64) (*Summary, error) {
	if !chart.Complete() {
		return nil, ErrIncompleteChart
	}
	space := chart.Space()
	probs, err := StartingHandProbabilities(space, dist)
	if err != nil {
		return nil, err
	}
	bj, err := Blackjack(space)
	if err != nil {
		return nil, err
	}
	pDealerBJ := dist.DealerBlackjack()

	s := &Summary{DealerBlackjack: pDealerBJ, PlayerBlackjack: probs[bj]}
	for _, id := range space.IDs() {
		if probs[id] == 0 {
			continue
		}
		ev, err := HandEV(chart, dist, id, payout)
		if err != nil {
			return nil, err
		}
		dealerBJ := -1.0
		if id == bj {
			dealerBJ = 0
		}
		s.Hands = append(s.Hands, HandEquity{
			ID:   id,
			Prob: probs[id],
			EV:   pDealerBJ*dealerBJ + (1-pDealerBJ)*ev,
		})
	}
	s.EV = lo.SumBy(s.Hands, func(h HandEquity) float64 { return h.Prob * h.EV })
	return s, nil
}
