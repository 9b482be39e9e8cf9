package strategy

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/domino14/bjstrat/cards"
	"github.com/domino14/bjstrat/dealer"
	"github.com/domino14/bjstrat/hand"
	"github.com/domino14/bjstrat/markov"
)

var (
	// ErrNotConverged is returned with a partial chart when a full sweep
	// resolves nothing new. It is the only error the solver recovers from.
	ErrNotConverged = errors.New("solver stopped with unresolved cells")
	// ErrUnresolvedSuccessor means a weighted sum reached a cell that has not
	// been solved. The sweep order makes this unreachable.
	ErrUnresolvedSuccessor = errors.New("weighted sum over an unresolved successor")
)

// Solver computes the baseline chart: hit or stand for every hand that
// takes part in play, against every up card.
type Solver struct {
	model    *markov.Model
	outcomes *dealer.Outcomes

	// MaxSweeps caps the number of sweeps. Zero sweeps until one resolves
	// nothing.
	MaxSweeps int
}

func NewSolver(model *markov.Model, outcomes *dealer.Outcomes) *Solver {
	return &Solver{model: model, outcomes: outcomes}
}

// Solve runs ordered sweeps over the (hand, up card) grid until every cell
// is resolved. A cell is resolved once every hand one hit away from it is.
// Pair states then take the decision of their plain hard total.
//
// If a sweep makes no progress, Solve returns the partial chart together
// with an error wrapping ErrNotConverged.
func (s *Solver) Solve(ctx context.Context) (*Chart, error) {
	logger := zerolog.Ctx(ctx)
	space := s.model.Space()
	chart := newChart(space)
	for _, up := range cards.Ranks() {
		chart.set(space.Bust(), up, cell{action: Stand, win: Solved(0), loss: Solved(1)})
	}

	order := sweepOrder(space)
	ups := cards.Ranks()
	slices.Reverse(ups)

	remaining := len(order) * len(ups)
	sweeps := 0
	for remaining > 0 {
		if s.MaxSweeps > 0 && sweeps >= s.MaxSweeps {
			break
		}
		sweeps++
		resolved := 0
		for _, id := range order {
			row := mat.Row(nil, int(id), s.model.Hit)
			for _, up := range ups {
				if chart.Resolved(id, up) || !ready(chart, row, up) {
					continue
				}
				c, err := s.resolve(chart, id, row, up)
				if err != nil {
					return nil, err
				}
				chart.set(id, up, c)
				resolved++
			}
		}
		remaining -= resolved
		logger.Debug().Int("sweep", sweeps).Int("resolved", resolved).
			Int("remaining", remaining).Msg("solver-sweep")
		if resolved == 0 {
			break
		}
	}

	if err := copyPairs(chart); err != nil {
		return nil, err
	}
	if remaining > 0 {
		logger.Warn().Int("unresolved", remaining).Int("sweeps", sweeps).Msg("solver-not-converged")
		return chart, fmt.Errorf("%w: %d cells after %d sweeps", ErrNotConverged, remaining, sweeps)
	}
	logger.Debug().Int("sweeps", sweeps).Msg("baseline-solved")
	return chart, nil
}

// sweepOrder lists the playable hands other than Bust from the highest
// total down. Hits only raise the total, except for the ace collapses, so
// most successors are solved before the hands that reach them.
func sweepOrder(space *hand.Space) []hand.ID {
	order := make([]hand.ID, 0, space.SimpleLen()-1)
	for i := 0; i < space.SimpleLen(); i++ {
		if id := hand.ID(i); id != space.Bust() {
			order = append(order, id)
		}
	}
	slices.SortStableFunc(order, func(a, b hand.ID) int {
		return space.Hand(b).Total - space.Hand(a).Total
	})
	return order
}

func ready(chart *Chart, row []float64, up cards.Rank) bool {
	for j, w := range row {
		if w != 0 && !chart.Resolved(hand.ID(j), up) {
			return false
		}
	}
	return true
}

func (s *Solver) resolve(chart *Chart, id hand.ID, row []float64, up cards.Rank) (cell, error) {
	hitWin, err := weightedSum(chart, row, up, func(c cell) Prob { return c.win })
	if err != nil {
		return cell{}, err
	}
	hitLoss, err := weightedSum(chart, row, up, func(c cell) Prob { return c.loss })
	if err != nil {
		return cell{}, err
	}
	total := chart.space.Hand(id).Total
	return choose(hitWin, hitLoss, s.outcomes.Win(total, up), s.outcomes.Loss(total, up)), nil
}

// choose picks the action with the higher expectancy. On a tie it hits only
// if hitting wins less often, which keeps more of the push mass.
func choose(hitWin, hitLoss, standWin, standLoss float64) cell {
	hitEV, standEV := hitWin-hitLoss, standWin-standLoss
	if hitEV > standEV || (hitEV == standEV && hitWin < standWin) {
		return cell{action: Hit, win: Solved(hitWin), loss: Solved(hitLoss)}
	}
	return cell{action: Stand, win: Solved(standWin), loss: Solved(standLoss)}
}

// weightedSum is the dot product of a transition row with one probability
// of every successor cell.
func weightedSum(chart *Chart, row []float64, up cards.Rank, pick func(cell) Prob) (float64, error) {
	vals := make([]float64, len(row))
	for j, w := range row {
		if w == 0 {
			continue
		}
		v, ok := pick(chart.get(hand.ID(j), up)).Value()
		if !ok {
			return 0, fmt.Errorf("%w: %v vs %v", ErrUnresolvedSuccessor, chart.space.Hand(hand.ID(j)), up)
		}
		vals[j] = v
	}
	return floats.Dot(row, vals), nil
}

func copyPairs(chart *Chart) error {
	space := chart.space
	for _, id := range space.IDs() {
		if space.Simple(id) {
			continue
		}
		plain, err := space.Unpaired(id)
		if err != nil {
			return err
		}
		for _, up := range cards.Ranks() {
			chart.set(id, up, chart.get(plain, up))
		}
	}
	return nil
}
