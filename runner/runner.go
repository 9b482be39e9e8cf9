// Package runner wires the solver pipeline together: hand space and card
// distribution, transition matrices, dealer outcomes, baseline solve,
// refinement and expected value.
package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/domino14/bjstrat/cards"
	"github.com/domino14/bjstrat/dealer"
	"github.com/domino14/bjstrat/equity"
	"github.com/domino14/bjstrat/hand"
	"github.com/domino14/bjstrat/markov"
	"github.com/domino14/bjstrat/strategy"
)

// Result is everything a solve produced. It is not modified after Run
// returns.
type Result struct {
	Options  Options
	Space    *hand.Space
	Dist     *cards.Distribution
	Model    *markov.Model
	Outcomes *dealer.Outcomes

	// Baseline is the hit-or-stand chart. Chart is the chart to play by:
	// the refined chart, or Baseline in simple-chart mode or when the solve
	// did not converge.
	Baseline *strategy.Chart
	Chart    *strategy.Chart

	Converged bool
	// Summary is nil when the solve did not converge.
	Summary *equity.Summary
}

// Run solves the game under opts. A solve that does not converge is not an
// error: the partial result comes back with Converged false and no
// refinement or expected value.
func Run(ctx context.Context, opts Options) (*Result, error) {
	logger := zerolog.Ctx(ctx)
	dist, err := opts.Distribution()
	if err != nil {
		return nil, err
	}
	space := hand.NewSpace()
	if opts.SimpleChart {
		space = space.SuppressPairs()
	}
	model, err := markov.New(space, dist)
	if err != nil {
		return nil, err
	}
	outcomes, err := dealer.New(model, dist)
	if err != nil {
		return nil, err
	}
	res := &Result{
		Options:  opts,
		Space:    space,
		Dist:     dist,
		Model:    model,
		Outcomes: outcomes,
	}

	solver := strategy.NewSolver(model, outcomes)
	solver.MaxSweeps = opts.MaxSweeps
	base, err := solver.Solve(ctx)
	switch {
	case errors.Is(err, strategy.ErrNotConverged):
		logger.Warn().Err(err).Msg("skipping-refinement-and-ev")
		res.Baseline, res.Chart = base, base
		return res, nil
	case err != nil:
		return nil, fmt.Errorf("baseline solve: %w", err)
	}
	res.Baseline, res.Chart, res.Converged = base, base, true

	if !opts.SimpleChart {
		refined, err := strategy.NewRefiner(model, outcomes, dist).Refine(ctx, base)
		if err != nil {
			return nil, fmt.Errorf("refine: %w", err)
		}
		res.Chart = refined
	}

	res.Summary, err = equity.Overall(res.Chart, dist, opts.BlackjackPays)
	if err != nil {
		return nil, fmt.Errorf("expected value: %w", err)
	}
	logger.Info().Float64("ev", res.Summary.EV).Bool("simple", opts.SimpleChart).
		Str("fingerprint", fmt.Sprintf("%016x", res.Chart.Fingerprint())).Msg("solved")
	return res, nil
}
