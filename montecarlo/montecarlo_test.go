package montecarlo

import (
	"context"
	"errors"
	"testing"

	"github.com/matryer/is"
	"github.com/stretchr/testify/require"
	"lukechampine.com/frand"

	"github.com/domino14/bjstrat/cards"
	"github.com/domino14/bjstrat/hand"
	"github.com/domino14/bjstrat/runner"
	"github.com/domino14/bjstrat/stats"
	"github.com/domino14/bjstrat/strategy"
)

func solved(t *testing.T) *runner.Result {
	t.Helper()
	res, err := runner.Run(context.Background(), runner.Options{BlackjackPays: 1.5})
	require.NoError(t, err)
	return res
}

func seededRNG(s string) *frand.RNG {
	var seed [32]byte
	copy(seed[:], s)
	return frand.NewCustom(seed[:], 0, 0)
}

func TestShoe(t *testing.T) {
	is := is.New(t)
	s := newShoe(6, seededRNG("shoe"))
	is.Equal(s.n, 312)
	is.Equal(s.count(cards.Ace), 24)
	is.Equal(s.count(cards.Ten), 96)

	var drawn [cards.NumRanks + 1]int
	for i := 0; i < 312; i++ {
		drawn[s.draw()]++
	}
	is.Equal(s.n, 0)
	is.Equal(drawn[5], 24)
	is.Equal(drawn[cards.Ten], 96)
	is.True(errors.Is(s.remove(cards.Ace), ErrEmptyShoe))

	s.putBack(cards.Ace)
	is.Equal(s.draw(), cards.Ace)
	s.reset()
	is.Equal(s.n, 312)
}

func TestDealStarting(t *testing.T) {
	is := is.New(t)
	space := hand.NewSpace()
	tr := &trial{space: space, shoe: newShoe(1, seededRNG("deal"))}

	sixteen, err := space.Canonicalize(16, false, false)
	is.NoErr(err)
	for i := 0; i < 200; i++ {
		tr.shoe.reset()
		is.NoErr(tr.dealStarting(sixteen))
		is.Equal(tr.shoe.n, 50)
		// never two 8s, which is the 8,8 pair
		is.Equal(tr.shoe.count(8), 4)
		removed := 0
		for _, r := range cards.Ranks() {
			full := 4
			if r == cards.Ten {
				full = 16
			}
			removed += (full - tr.shoe.count(r)) * int(r)
		}
		is.Equal(removed, 16)
	}

	softEighteen, err := space.Canonicalize(18, true, false)
	is.NoErr(err)
	tr.shoe.reset()
	is.NoErr(tr.dealStarting(softEighteen))
	is.Equal(tr.shoe.count(cards.Ace), 3)
	is.Equal(tr.shoe.count(7), 3)

	aces, err := space.ByCards(cards.Ace, cards.Ace, false)
	is.NoErr(err)
	tr.shoe.reset()
	is.NoErr(tr.dealStarting(aces))
	is.Equal(tr.shoe.count(cards.Ace), 2)
}

func TestSeededRunsAgreeAcrossThreads(t *testing.T) {
	is := is.New(t)
	res := solved(t)
	a, err := NewVerifier(res.Chart, res.Baseline, Options{Decks: 6, Threads: 1, Seed: "abc"})
	is.NoErr(err)
	b, err := NewVerifier(res.Chart, res.Baseline, Options{Decks: 6, Threads: 4, Seed: "abc"})
	is.NoErr(err)
	is.NoErr(a.Run(context.Background(), 100))
	is.NoErr(b.Run(context.Background(), 100))
	is.Equal(len(a.Cells()), len(b.Cells()))
	for i := range a.Cells() {
		is.Equal(a.Cells()[i].Win.Mean(), b.Cells()[i].Win.Mean())
		is.Equal(a.Cells()[i].Loss.Mean(), b.Cells()[i].Loss.Mean())
	}
}

func TestSimulationMatchesChart(t *testing.T) {
	if testing.Short() {
		t.Skip("long simulation")
	}
	is := is.New(t)
	res := solved(t)
	v, err := NewVerifier(res.Chart, res.Baseline, Options{Decks: 6, Threads: 4, Seed: "verify"})
	is.NoErr(err)
	is.NoErr(v.Run(context.Background(), 2000))
	is.NoErr(v.Run(context.Background(), 2000))
	is.Equal(v.HandsPerCell(), 4000)

	r := v.Report(99)
	is.True(r.MaxWinErr < 5)
	is.True(r.MaxLossErr < 5)
	is.True(len(r.Outliers) < len(v.Cells())/4)
	for _, c := range v.Cells() {
		is.True(!res.Space.Hand(c.ID).Suppressed)
	}
}

func TestVerifierRejectsPartialChart(t *testing.T) {
	is := is.New(t)
	res := solved(t)
	s := strategy.NewSolver(res.Model, res.Outcomes)
	s.MaxSweeps = 1
	partial, err := s.Solve(context.Background())
	is.True(errors.Is(err, strategy.ErrNotConverged))
	_, err = NewVerifier(partial, partial, Options{})
	is.True(errors.Is(err, ErrIncompleteChart))
}

func TestRunCanceled(t *testing.T) {
	is := is.New(t)
	res := solved(t)
	v, err := NewVerifier(res.Chart, res.Baseline, Options{Threads: 2})
	is.NoErr(err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = v.Run(ctx, 10)
	is.True(errors.Is(err, context.Canceled))
}

func TestRunUntil(t *testing.T) {
	is := is.New(t)
	res := solved(t)
	v, err := NewVerifier(res.Chart, res.Baseline, Options{Decks: 6, Threads: 4, Seed: "until"})
	is.NoErr(err)
	// 1.96 * 0.5 / sqrt(400) is just under 0.05, and 200 hands is not enough
	// for a cell near even odds
	is.NoErr(v.RunUntil(context.Background(), 200, Stop95, 0.05))
	is.Equal(v.HandsPerCell(), 400)
	is.True(v.maxHalfWidth(stats.ZVal(95)) <= 0.05)

	is.True(v.RunUntil(context.Background(), 0, Stop95, 0.05) != nil)
}
