// Package chart renders solved charts and simulation results for people:
// plain text, LaTeX, YAML and JSON.
package chart

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/samber/lo"

	"github.com/domino14/bjstrat/cards"
	"github.com/domino14/bjstrat/hand"
	"github.com/domino14/bjstrat/strategy"
)

// Rows lists the displayed hands in chart order: hard 5 through 21, soft
// 13 through 21, bust, then the pairs A,A, 2,2, 3,3 through 10,10.
// Suppressed hands are left out.
func Rows(space *hand.Space) []hand.ID {
	var hard, soft, pairs []hand.ID
	var aces, twos hand.ID = -1, -1
	for _, id := range space.IDs() {
		h := space.Hand(id)
		switch {
		case h.Splittable && h.Soft:
			aces = id
		case h.Splittable && h.Total == 4:
			twos = id
		case h.Splittable:
			pairs = append(pairs, id)
		case h.Soft:
			soft = append(soft, id)
		default:
			hard = append(hard, id)
		}
	}
	// hard already ends with bust
	rows := append(hard[:len(hard)-1:len(hard)-1], soft...)
	rows = append(rows, hard[len(hard)-1])
	if aces >= 0 {
		rows = append(rows, aces)
	}
	if twos >= 0 {
		rows = append(rows, twos)
	}
	rows = append(rows, pairs...)
	return lo.Filter(rows, func(id hand.ID, _ int) bool {
		return !space.Hand(id).Suppressed
	})
}

// Columns lists the up cards in chart order, with the ace last.
func Columns() []cards.Rank {
	return append(cards.Ranks()[1:], cards.Ace)
}

func pct(p float64) string {
	return fmt.Sprintf("%.0f", 100*p)
}

func cellText(d strategy.Decision, showWinPct bool) string {
	if !showWinPct || d.Action == strategy.Unresolved {
		return d.Action.Symbol()
	}
	return d.Action.Symbol() + " " + pct(d.Win) + "/" + pct(d.Loss)
}

// WriteText writes the chart as an aligned plain-text table.
func WriteText(w io.Writer, c *strategy.Chart, showWinPct bool) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	header := lo.Map(Columns(), func(r cards.Rank, _ int) string { return r.String() })
	fmt.Fprintf(tw, "\t%s\n", strings.Join(header, "\t"))
	for _, id := range Rows(c.Space()) {
		cells := lo.Map(Columns(), func(up cards.Rank, _ int) string {
			return cellText(c.At(id, up), showWinPct)
		})
		fmt.Fprintf(tw, "%s\t%s\n", c.Space().Hand(id).Name(), strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := io.WriteString(w, key(showWinPct))
	return err
}

func key(showWinPct bool) string {
	k := "H: hit  S: stand  DD: double down  SPL: split"
	if showWinPct {
		k += "\nX/Y: X% chance of winning, Y% chance of losing. Pushes make up the rest.\n" +
			"For a split, this is each of the two hands."
	}
	return k + "\n"
}
