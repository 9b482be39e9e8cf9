package strategy

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/matryer/is"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/domino14/bjstrat/cards"
	"github.com/domino14/bjstrat/dealer"
	"github.com/domino14/bjstrat/hand"
	"github.com/domino14/bjstrat/markov"
)

type fixture struct {
	space    *hand.Space
	model    *markov.Model
	outcomes *dealer.Outcomes
	dist     *cards.Distribution
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	space := hand.NewSpace()
	dist := cards.Standard()
	model, err := markov.New(space, dist)
	require.NoError(t, err)
	outcomes, err := dealer.New(model, dist)
	require.NoError(t, err)
	return fixture{space: space, model: model, outcomes: outcomes, dist: dist}
}

func (f fixture) solve(t *testing.T) (*Chart, *Chart) {
	t.Helper()
	base, err := NewSolver(f.model, f.outcomes).Solve(context.Background())
	require.NoError(t, err)
	refined, err := NewRefiner(f.model, f.outcomes, f.dist).Refine(context.Background(), base)
	require.NoError(t, err)
	return base, refined
}

func (f fixture) id(t *testing.T, name string) hand.ID {
	t.Helper()
	for _, id := range f.space.IDs() {
		if f.space.Hand(id).Name() == name {
			return id
		}
	}
	t.Fatalf("no hand named %q", name)
	return -1
}

func TestBaselineScenarios(t *testing.T) {
	is := is.New(t)
	f := newFixture(t)
	base, _ := f.solve(t)
	is.True(base.Complete())

	is.Equal(base.At(f.id(t, "16"), cards.Ten).Action, Hit)
	is.Equal(base.At(f.id(t, "12"), 4).Action, Stand)
	is.Equal(base.At(f.id(t, "12"), 2).Action, Hit)
	is.Equal(base.At(f.id(t, "17"), cards.Ace).Action, Stand)
	is.Equal(base.At(f.id(t, "A,7"), 9).Action, Hit)

	for _, up := range cards.Ranks() {
		d := base.At(f.space.Bust(), up)
		is.Equal(d.Action, Stand)
		is.Equal(d.Win, 0.0)
		is.Equal(d.Loss, 1.0)
	}
}

func TestBaselinePairsPlayAsHardTotals(t *testing.T) {
	is := is.New(t)
	f := newFixture(t)
	base, _ := f.solve(t)
	for _, id := range f.space.Pairs() {
		plain, err := f.space.Unpaired(id)
		is.NoErr(err)
		for _, up := range cards.Ranks() {
			is.Equal(base.At(id, up), base.At(plain, up))
		}
	}
}

func TestRefinedScenarios(t *testing.T) {
	f := newFixture(t)
	_, refined := f.solve(t)

	type tc struct {
		hand   string
		up     cards.Rank
		action Action
	}
	for _, c := range []tc{
		{"8,8", cards.Ten, Split},
		{"8,8", cards.Ace, Split},
		{"A,A", 6, Split},
		{"11", 6, DoubleDown},
		{"11", cards.Ace, DoubleDown},
		{"10", cards.Ten, Hit},
		{"9", 2, Hit},
		{"9", 3, DoubleDown},
		{"A,7", 2, DoubleDown},
		{"A,7", 7, Stand},
		{"A,8", 6, DoubleDown},
		{"10,10", 6, Stand},
		{"9,9", 7, Stand},
		{"5,5", 6, DoubleDown},
		{"4,4", 5, Split},
		{"16", cards.Ten, Hit},
		{"Bust", 6, Stand},
	} {
		assert.Equal(t, c.action, refined.At(f.id(t, c.hand), c.up).Action, "%s vs %v", c.hand, c.up)
	}
}

func TestRefinementOnlyRaisesEV(t *testing.T) {
	f := newFixture(t)
	base, refined := f.solve(t)
	for _, id := range f.space.IDs() {
		for _, up := range cards.Ranks() {
			b, r := base.At(id, up), refined.At(id, up)
			assert.GreaterOrEqual(t, r.EV(), b.EV(), "%v vs %v", f.space.Hand(id), up)
			if r.Action == b.Action {
				assert.Equal(t, b, r)
			}
			if r.Action == DoubleDown {
				assert.InDelta(t, 2*(r.Win-r.Loss), r.EV(), 1e-15)
			}
		}
	}
}

func TestSplitWinLossIsPerHand(t *testing.T) {
	is := is.New(t)
	f := newFixture(t)
	_, refined := f.solve(t)
	d := refined.At(f.id(t, "8,8"), cards.Ten)
	is.Equal(d.Action, Split)
	is.True(d.Win > 0 && d.Win < 1)
	is.True(d.Loss > 0 && d.Loss < 1)
	is.True(d.Win+d.Loss <= 1)
	// splitting 8s against a ten still loses money, just less than 16 does
	is.True(d.EV() < 0)
}

func TestSplitClosedForm(t *testing.T) {
	f := newFixture(t)
	_, refined := f.solve(t)
	r := NewRefiner(f.model, f.outcomes, f.dist)
	cases := []struct {
		name string
		up   cards.Rank
	}{
		{"8,8", cards.Ten},
		{"A,A", 6},
	}
	for _, tc := range cases {
		id := f.id(t, tc.name)
		rank, ok := f.space.PairRank(id)
		require.True(t, ok)
		succ, same, err := r.splitSuccessors(f.space, rank)
		require.NoError(t, err)
		require.Equal(t, id, same)
		pSame := succ[same]
		assert.InDelta(t, 1.0/13, pSame, 1e-12)

		var ev, win, loss float64
		for j, p := range succ {
			if hand.ID(j) == same {
				continue
			}
			d := refined.At(hand.ID(j), tc.up)
			ev += p * d.EV()
			win += p * d.Win
			loss += p * d.Loss
		}
		d := refined.At(id, tc.up)
		require.Equal(t, Split, d.Action, tc.name)
		assert.InDelta(t, 2*ev/(1-2*pSame), d.SplitEV, 1e-12, tc.name)
		assert.InDelta(t, d.SplitEV, d.EV(), 0, tc.name)
		assert.InDelta(t, win/(1-pSame), d.Win, 1e-12, tc.name)
		assert.InDelta(t, loss/(1-pSame), d.Loss, 1e-12, tc.name)
		// each re-split adds two hands, not one
		assert.Greater(t, math.Abs(d.SplitEV-2*ev/(1-pSame)), 1e-4, tc.name)
		assert.Greater(t, math.Abs(d.SplitEV-ev/(1-2*pSame)), 1e-4, tc.name)
	}
}

func TestDeterministic(t *testing.T) {
	is := is.New(t)
	f := newFixture(t)
	base1, refined1 := f.solve(t)
	base2, refined2 := newFixture(t).solve(t)
	is.Equal(base1.Fingerprint(), base2.Fingerprint())
	is.Equal(refined1.Fingerprint(), refined2.Fingerprint())
	is.True(base1.Fingerprint() != refined1.Fingerprint())
}

func TestCloneIsIndependent(t *testing.T) {
	is := is.New(t)
	f := newFixture(t)
	base, _ := f.solve(t)
	cp := base.Clone()
	sixteen := f.id(t, "16")
	cp.set(sixteen, cards.Ten, cell{action: Stand, win: Solved(0.5), loss: Solved(0.5)})
	is.Equal(base.At(sixteen, cards.Ten).Action, Hit)
	is.True(base.Fingerprint() != cp.Fingerprint())
}

func TestNotConverged(t *testing.T) {
	is := is.New(t)
	f := newFixture(t)
	s := NewSolver(f.model, f.outcomes)
	s.MaxSweeps = 1
	partial, err := s.Solve(context.Background())
	is.True(errors.Is(err, ErrNotConverged))
	is.True(partial != nil)
	is.True(!partial.Complete())
	is.True(partial.Unresolved() > 0)

	// soft 21 plus a two is hard 13, which a single high-to-low sweep reaches later
	soft21 := f.id(t, "A,10")
	is.Equal(partial.At(soft21, 6).Action, Unresolved)
	is.Equal(partial.At(soft21, 6).Win, 0.0)
	is.Equal(partial.At(soft21, 6).Loss, 0.0)
	is.Equal(partial.At(soft21, 6).Action.Symbol(), "??")

	_, err = NewRefiner(f.model, f.outcomes, f.dist).Refine(context.Background(), partial)
	is.True(errors.Is(err, ErrIncompleteBaseline))
}

func TestWeightedSumRejectsUnsolved(t *testing.T) {
	is := is.New(t)
	f := newFixture(t)
	chart := newChart(f.space)
	row, err := f.model.HitRow(f.id(t, "16"))
	is.NoErr(err)
	_, err = weightedSum(chart, row, cards.Ten, func(c cell) Prob { return c.win })
	is.True(errors.Is(err, ErrUnresolvedSuccessor))
}

func TestChooseTieBreak(t *testing.T) {
	is := is.New(t)
	// equal expectancy: keep whichever wins less often
	is.Equal(choose(0.4, 0.4, 0.3, 0.3).action, Stand)
	is.Equal(choose(0.2, 0.2, 0.3, 0.3).action, Hit)
	is.Equal(choose(0.5, 0.3, 0.4, 0.4).action, Hit)
	is.Equal(choose(0.3, 0.5, 0.4, 0.4).action, Stand)
}

func TestProb(t *testing.T) {
	is := is.New(t)
	var p Prob
	_, ok := p.Value()
	is.True(!ok)
	is.True(!p.IsSolved())
	v, ok := Solved(0).Value()
	is.True(ok)
	is.Equal(v, 0.0)
}
