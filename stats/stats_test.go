package stats

import (
	"math"
	"testing"

	"github.com/matryer/is"
)

func TestRunningStat(t *testing.T) {
	is := is.New(t)
	type tc struct {
		scores []int
		mean   float64
		stdev  float64
	}
	cases := []tc{
		{[]int{10, 12, 23, 23, 16, 23, 21, 16}, 18, 5.2372293656638},
		{[]int{14, 35, 71, 124, 10, 24, 55, 33, 87, 19}, 47.2, 36.937785531891},
		{[]int{1}, 1, 0},
		{[]int{}, 0, 0},
		{[]int{1, 1}, 1, 0},
	}
	for _, c := range cases {
		s := &Statistic{}
		for _, score := range c.scores {
			s.Push(float64(score))
		}
		is.True(FuzzyEqual(s.Mean(), c.mean))
		is.True(FuzzyEqual(s.Stdev(), c.stdev))
	}
}

func TestMerge(t *testing.T) {
	is := is.New(t)
	scores := []float64{14, 35, 71, 124, 10, 24, 55, 33, 87, 19}
	for split := 0; split <= len(scores); split++ {
		a, b := &Statistic{}, &Statistic{}
		for _, v := range scores[:split] {
			a.Push(v)
		}
		for _, v := range scores[split:] {
			b.Push(v)
		}
		a.Merge(b)
		is.Equal(a.Iterations(), len(scores))
		is.True(FuzzyEqual(a.Mean(), 47.2))
		is.True(FuzzyEqual(a.Stdev(), 36.937785531891))
	}
}

func TestPushBool(t *testing.T) {
	is := is.New(t)
	s := &Statistic{}
	for i := 0; i < 4; i++ {
		s.PushBool(i == 0)
	}
	is.True(FuzzyEqual(s.Mean(), 0.25))
	is.Equal(s.Last(), 0.0)
}

func TestZ(t *testing.T) {
	is := is.New(t)
	is.True(math.Abs(ZVal(95)-1.959964) < 1e-5)
	is.True(math.Abs(ZVal(99)-2.575829) < 1e-5)

	is.True(FuzzyEqual(ProportionZ(0.6, 0.5, 100), 2))
	is.Equal(ProportionZ(0, 0, 50), 0.0)
	is.True(math.IsInf(ProportionZ(0.1, 0, 50), 1))
	is.Equal(ProportionZ(0.3, 0.5, 0), 0.0)
}
