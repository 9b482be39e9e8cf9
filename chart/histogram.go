package chart

import (
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"

	"github.com/aybabtme/uniplot/histogram"

	"github.com/domino14/bjstrat/cards"
	"github.com/domino14/bjstrat/dealer"
	"github.com/domino14/bjstrat/hand"
	"github.com/domino14/bjstrat/markov"
)

// histogramResolution turns probabilities into the integer counts the
// histogram works with.
const histogramResolution = 100000

// DealerHistogram buckets the dealer's final total for an up card: one
// bucket for each standing total and one for bust.
func DealerHistogram(o *dealer.Outcomes, up cards.Rank) histogram.Histogram {
	d := o.Distribution(up)
	// Min stays zero so that bar lengths are proportional to probability.
	var h histogram.Histogram
	for t := markov.DealerStandsHard; t <= hand.BustTotal; t++ {
		n := int(math.Round(d[t] * histogramResolution))
		h.Buckets = append(h.Buckets, histogram.Bucket{Count: n, Min: float64(t), Max: float64(t)})
		h.Count += n
		h.Max = max(h.Max, n)
	}
	return h
}

// WriteDealerHistogram draws the histogram with bars at most width wide.
func WriteDealerHistogram(w io.Writer, o *dealer.Outcomes, up cards.Rank, width int) error {
	h := DealerHistogram(o, up)
	scale := histogram.Linear(width)
	tw := tabwriter.NewWriter(w, 2, 2, 2, ' ', 0)
	fmt.Fprintf(tw, "dealer shows %v\n", up)
	for i, b := range h.Buckets {
		label := fmt.Sprintf("%d", int(b.Min))
		if int(b.Min) == hand.BustTotal {
			label = "bust"
		}
		bar := strings.Repeat("█", int(math.Round(h.Scale(scale, i))))
		fmt.Fprintf(tw, "%s\t%5.2f%%\t%s\n", label, 100*float64(b.Count)/histogramResolution, bar)
	}
	return tw.Flush()
}
