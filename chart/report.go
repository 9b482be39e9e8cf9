package chart

import (
	"fmt"
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/domino14/bjstrat/equity"
	"github.com/domino14/bjstrat/montecarlo"
	"github.com/domino14/bjstrat/strategy"
)

var printer = message.NewPrinter(language.English)

func fingerprint(c *strategy.Chart) string {
	return fmt.Sprintf("%016x", c.Fingerprint())
}

// EVSentence describes the expected value in dollars on a $100 bet.
func EVSentence(ev float64) string {
	verb := "lose"
	if ev > 0 {
		verb = "win"
	}
	dollars := 100 * ev
	if dollars < 0 {
		dollars = -dollars
	}
	return printer.Sprintf("The player's expected value is %.3f%%. That is, a player betting "+
		"$100 per hand will %s an average of $%.2f per hand.", 100*ev, verb, dollars)
}

// WriteHandEVs lists each starting hand's probability and expected value.
func WriteHandEVs(w io.Writer, c *strategy.Chart, s *equity.Summary) error {
	for _, h := range s.Hands {
		if _, err := printer.Fprintf(w, "%-6s %7.4f%% %+8.4f\n",
			c.Space().Hand(h.ID).Name(), 100*h.Prob, h.EV); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, EVSentence(s.EV))
	return err
}

// SimsSummary is the line printed after each batch of simulations.
func SimsSummary(r *montecarlo.Report) string {
	return printer.Sprintf("Completed %d simulations for each hand. Maximum error: %.0f%%. "+
		"%d of the cells fall outside the %g%% band.",
		r.HandsPerCell, max(r.MaxWinErr, r.MaxLossErr), len(r.Outliers), r.Confidence)
}
