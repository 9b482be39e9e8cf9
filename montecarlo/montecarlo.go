// Package montecarlo checks a solved chart by playing hands out of a finite
// multi-deck shoe and comparing how often each cell wins and loses with the
// probabilities the chart was solved for.
package montecarlo

import (
	"context"
	"crypto/sha256"
	"errors"
	"math"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"lukechampine.com/frand"

	"github.com/domino14/bjstrat/cards"
	"github.com/domino14/bjstrat/hand"
	"github.com/domino14/bjstrat/stats"
	"github.com/domino14/bjstrat/strategy"
)

var ErrIncompleteChart = errors.New("cannot simulate a chart with unresolved cells")

// Cell is one simulated (hand, up card) pair.
type Cell struct {
	ID       hand.ID
	Up       cards.Rank
	Expected strategy.Decision

	Win  stats.Statistic
	Loss stats.Statistic
}

// WinErr is the absolute difference between the observed and solved win
// rates.
func (c *Cell) WinErr() float64 {
	return math.Abs(c.Win.Mean() - c.Expected.Win)
}

func (c *Cell) LossErr() float64 {
	return math.Abs(c.Loss.Mean() - c.Expected.Loss)
}

// Z is the larger of the win and loss z-scores.
func (c *Cell) Z() float64 {
	n := c.Win.Iterations()
	zw := stats.ProportionZ(c.Win.Mean(), c.Expected.Win, n)
	zl := stats.ProportionZ(c.Loss.Mean(), c.Expected.Loss, n)
	return math.Max(math.Abs(zw), math.Abs(zl))
}

type Options struct {
	Decks   int
	Threads int
	// Seed makes runs reproducible. Empty means seed from system entropy.
	Seed string
}

// Verifier accumulates simulated results over any number of Run calls.
type Verifier struct {
	space *hand.Space
	chart *strategy.Chart
	base  *strategy.Chart
	opts  Options
	rng   *frand.RNG
	cells []*Cell

	trials atomic.Uint64
}

// NewVerifier prepares one cell for every displayed hand against every up
// card. chart is the chart to check and base the hit-or-stand chart that
// hands follow once past their first two cards.
func NewVerifier(chart, base *strategy.Chart, opts Options) (*Verifier, error) {
	if !chart.Complete() || !base.Complete() {
		return nil, ErrIncompleteChart
	}
	if opts.Decks < 1 {
		opts.Decks = 1
	}
	if opts.Threads < 1 {
		opts.Threads = 1
	}
	v := &Verifier{space: chart.Space(), chart: chart, base: base, opts: opts}
	if opts.Seed != "" {
		seed := sha256.Sum256([]byte(opts.Seed))
		v.rng = frand.NewCustom(seed[:], 0, 0)
	} else {
		v.rng = frand.New()
	}
	for _, id := range v.space.IDs() {
		if v.space.Hand(id).Suppressed {
			continue
		}
		for _, up := range cards.Ranks() {
			v.cells = append(v.cells, &Cell{ID: id, Up: up, Expected: chart.At(id, up)})
		}
	}
	return v, nil
}

// Run plays n more hands for every cell. Each cell gets its own shoe and
// random stream, seeded in cell order before any work starts, so a seeded
// verifier gives the same results for any thread count.
func (v *Verifier) Run(ctx context.Context, n int) error {
	logger := zerolog.Ctx(ctx)
	tstart := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(v.opts.Threads)
	for _, c := range v.cells {
		seed := v.rng.Entropy256()
		g.Go(func() error {
			return v.simCell(ctx, c, n, seed)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info().Int("cells", len(v.cells)).Int("hands-per-cell", n).
		Uint64("total-trials", v.trials.Load()).Dur("elapsed", time.Since(tstart)).Msg("sims-done")
	return nil
}

func (v *Verifier) simCell(ctx context.Context, c *Cell, n int, seed [32]byte) error {
	t := &trial{
		space: v.space,
		chart: v.chart,
		base:  v.base,
		shoe:  newShoe(v.opts.Decks, frand.NewCustom(seed[:], 0, 0)),
	}
	var wins, losses stats.Statistic
	for i := 0; i < n; i++ {
		if i%1024 == 0 && ctx.Err() != nil {
			return ctx.Err()
		}
		o, err := t.play(c.ID, c.Up)
		if err != nil {
			return err
		}
		wins.PushBool(o == win)
		losses.PushBool(o == loss)
	}
	c.Win.Merge(&wins)
	c.Loss.Merge(&losses)
	v.trials.Add(uint64(n))
	return nil
}

// Cells returns the simulated cells in chart order.
func (v *Verifier) Cells() []*Cell {
	return v.cells
}

func (v *Verifier) Space() *hand.Space {
	return v.space
}

// HandsPerCell is how many hands each cell has been simulated for.
func (v *Verifier) HandsPerCell() int {
	if len(v.cells) == 0 {
		return 0
	}
	return v.cells[0].Win.Iterations()
}

// Report summarizes how far the simulation strays from the chart.
type Report struct {
	HandsPerCell int
	// MaxWinErr and MaxLossErr are in percentage points.
	MaxWinErr  float64
	MaxLossErr float64
	Confidence float64
	// Outliers are the cells outside the confidence band.
	Outliers []*Cell
}

// Report compares every cell with the chart. confidence is a percentage
// such as 99.
func (v *Verifier) Report(confidence float64) *Report {
	r := &Report{HandsPerCell: v.HandsPerCell(), Confidence: confidence}
	z := stats.ZVal(confidence)
	for _, c := range v.cells {
		r.MaxWinErr = math.Max(r.MaxWinErr, 100*c.WinErr())
		r.MaxLossErr = math.Max(r.MaxLossErr, 100*c.LossErr())
		if c.Win.Iterations() > 0 && c.Z() > z {
			r.Outliers = append(r.Outliers, c)
		}
	}
	return r
}
