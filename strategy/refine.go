package strategy

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"

	"github.com/domino14/bjstrat/cards"
	"github.com/domino14/bjstrat/dealer"
	"github.com/domino14/bjstrat/hand"
	"github.com/domino14/bjstrat/markov"
)

var (
	ErrIncompleteBaseline = errors.New("cannot refine a chart with unresolved cells")
	// ErrDivergentResplit means the same rank is drawn at least half the time,
	// so the expected value of endlessly re-splitting has no finite sum.
	ErrDivergentResplit = errors.New("re-split series does not converge")
)

// Refiner upgrades baseline decisions to double-down or split when that
// raises the expected value.
type Refiner struct {
	model    *markov.Model
	outcomes *dealer.Outcomes
	dist     *cards.Distribution
}

func NewRefiner(model *markov.Model, outcomes *dealer.Outcomes, dist *cards.Distribution) *Refiner {
	return &Refiner{model: model, outcomes: outcomes, dist: dist}
}

// Refine returns a refined copy of a complete baseline chart. Double-down
// is considered for every cell first, so that each split is valued with
// doubling allowed on the hands it creates.
func (r *Refiner) Refine(ctx context.Context, base *Chart) (*Chart, error) {
	if !base.Complete() {
		return nil, ErrIncompleteBaseline
	}
	chart := base.Clone()
	doubles, err := r.doubleDowns(chart)
	if err != nil {
		return nil, err
	}
	splits, err := r.splits(chart)
	if err != nil {
		return nil, err
	}
	zerolog.Ctx(ctx).Debug().Int("double-downs", doubles).Int("splits", splits).Msg("chart-refined")
	return chart, nil
}

// doubleDowns draws exactly one card and stands. The stake is doubled, so
// the doubled expectancy is compared against the current one.
func (r *Refiner) doubleDowns(chart *Chart) (int, error) {
	space := chart.space
	wins := make([]float64, dealer.NumTotals)
	losses := make([]float64, dealer.NumTotals)
	n := 0
	for _, id := range space.IDs() {
		if id == space.Bust() {
			continue
		}
		totals, err := r.oneCardTotals(id)
		if err != nil {
			return 0, err
		}
		for _, up := range cards.Ranks() {
			for t := range wins {
				wins[t] = r.outcomes.Win(t, up)
				losses[t] = r.outcomes.Loss(t, up)
			}
			w, l := floats.Dot(totals, wins), floats.Dot(totals, losses)
			if 2*(w-l) > chart.At(id, up).EV() {
				chart.set(id, up, cell{action: DoubleDown, win: Solved(w), loss: Solved(l)})
				n++
			}
		}
	}
	return n, nil
}

// oneCardTotals is the distribution of the final total after one hit,
// indexed by total.
func (r *Refiner) oneCardTotals(id hand.ID) ([]float64, error) {
	row, err := r.model.HitRow(id)
	if err != nil {
		return nil, fmt.Errorf("double-down %v: %w", r.model.Space().Hand(id), err)
	}
	totals := make([]float64, dealer.NumTotals)
	for j, p := range row {
		totals[r.model.Space().Hand(hand.ID(j)).Total] += p
	}
	return totals, nil
}

// splits values each pair as two hands that each start with one card of the
// pair's rank. Drawing that rank again re-splits; summing the resulting
// geometric series gives, per hand,
//
//	E = sum over other successors j of p_j * EV_j / (1 - 2*p_same)
//
// and the split is worth 2E.
func (r *Refiner) splits(chart *Chart) (int, error) {
	space := chart.space
	n := 0
	for _, id := range space.Pairs() {
		rank, _ := space.PairRank(id)
		succ, same, err := r.splitSuccessors(space, rank)
		if err != nil {
			return 0, err
		}
		pSame := succ[same]
		denom := 1 - 2*pSame
		if denom <= 0 {
			return 0, fmt.Errorf("%w: splitting %v", ErrDivergentResplit, space.Hand(id))
		}
		for _, up := range cards.Ranks() {
			var ev, win, loss float64
			for j, p := range succ {
				if p == 0 || hand.ID(j) == same {
					continue
				}
				d := chart.At(hand.ID(j), up)
				ev += p * d.EV()
				win += p * d.Win
				loss += p * d.Loss
			}
			splitEV := 2 * ev / denom
			if splitEV > chart.At(id, up).EV() {
				chart.set(id, up, cell{
					action:  Split,
					win:     Solved(win / (1 - pSame)),
					loss:    Solved(loss / (1 - pSame)),
					splitEV: splitEV,
				})
				n++
			}
		}
	}
	return n, nil
}

// splitSuccessors is the distribution, indexed by hand ID, of the two-card
// hand formed by one card of rank plus a fresh card, and the ID of the hand
// that re-splits.
func (r *Refiner) splitSuccessors(space *hand.Space, rank cards.Rank) ([]float64, hand.ID, error) {
	succ := make([]float64, space.Len())
	for _, c := range cards.Ranks() {
		id, err := space.ByCards(rank, c, false)
		if err != nil {
			return nil, 0, err
		}
		succ[id] += r.dist.P(c)
	}
	same, err := space.ByCards(rank, rank, false)
	if err != nil {
		return nil, 0, err
	}
	return succ, same, nil
}
