package cards

import (
	"testing"

	"github.com/matryer/is"
	"github.com/stretchr/testify/assert"
)

func TestStandardDistribution(t *testing.T) {
	is := is.New(t)
	d := Standard()
	sum := 0.0
	for _, r := range Ranks() {
		sum += d.P(r)
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
	assert.InDelta(t, 1.0/13, d.P(Ace), 1e-12)
	assert.InDelta(t, 1.0/13, d.P(9), 1e-12)
	assert.InDelta(t, 4.0/13, d.P(Ten), 1e-12)
	is.Equal(d.P(0), 0.0)
	is.Equal(d.P(11), 0.0)
}

func TestDownCardConditioning(t *testing.T) {
	d := Standard()
	for _, down := range Ranks() {
		if down == Ten {
			assert.Equal(t, 0.0, d.DownCard(Ace, down))
		} else {
			assert.InDelta(t, 1.0/9, d.DownCard(Ace, down), 1e-12, "ace up, down %v", down)
		}
		switch down {
		case Ace:
			assert.Equal(t, 0.0, d.DownCard(Ten, down))
		case Ten:
			assert.InDelta(t, 4.0/12, d.DownCard(Ten, down), 1e-12)
		default:
			assert.InDelta(t, 1.0/12, d.DownCard(Ten, down), 1e-12, "ten up, down %v", down)
		}
		assert.InDelta(t, d.P(down), d.DownCard(7, down), 1e-12)
	}
}

func TestUpCardGivenNoBlackjackSumsToOne(t *testing.T) {
	d := Standard()
	sum := 0.0
	for _, up := range Ranks() {
		sum += d.UpCardGivenNoBlackjack(up)
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
	assert.InDelta(t, 2.0*4/169, d.DealerBlackjack(), 1e-12)
}

func TestNewDistributionRejectsBadWeights(t *testing.T) {
	is := is.New(t)
	_, err := NewDistribution([]float64{1, 1, 1})
	is.Equal(err, ErrBadWeights)
	_, err = NewDistribution([]float64{1, 1, 1, 1, 1, 1, 1, 1, 1, -4})
	is.Equal(err, ErrBadWeights)
	_, err = NewDistribution(make([]float64, NumRanks))
	is.Equal(err, ErrBadWeights)
	_, err = NewDistribution([]float64{0, 0, 0, 0, 0, 0, 0, 0, 1, 1})
	is.True(err != nil)
}

func TestParseRank(t *testing.T) {
	is := is.New(t)
	cases := map[string]Rank{"A": Ace, "a": Ace, "1": Ace, "2": 2, "9": 9, "10": Ten, "K": Ten, "t": Ten}
	for s, want := range cases {
		r, err := ParseRank(s)
		is.NoErr(err)
		is.Equal(r, want)
	}
	_, err := ParseRank("11")
	is.True(err != nil)
	is.Equal(Ace.String(), "A")
	is.Equal(Ten.String(), "10")
}
