package chart

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/domino14/bjstrat/cards"
	"github.com/domino14/bjstrat/hand"
	"github.com/domino14/bjstrat/montecarlo"
	"github.com/domino14/bjstrat/strategy"
)

// RedThreshold is how far a simulated rate may stray from the solved one
// before the sims chart prints it in red as a signed difference.
const RedThreshold = 0.01

const latexGeometry = `\pagenumbering{gobble}

\addtolength{\oddsidemargin}{-.5in}
\addtolength{\evensidemargin}{-.5in}
\addtolength{\textwidth}{1in}
\addtolength{\topmargin}{-1.5in}
\addtolength{\textheight}{2.3in}

\begin{document}

\begin{center}
\begin{large}
Blackjack Strategy
\end{large}
\end{center}

\begin{small}
\begin{center}
\emph{Dealer's up card}
\end{center}

`

func latexHeader(b *strings.Builder, packages string) {
	b.WriteString("\\documentclass{article}\n\n")
	fmt.Fprintf(b, "\\usepackage{%s}\n", packages)
	b.WriteString(latexGeometry)
	b.WriteString("\\begin{tabular}{")
	for range cards.NumRanks + 1 {
		b.WriteString("c|")
	}
	b.WriteString("}\n")
	for _, up := range Columns() {
		fmt.Fprintf(b, "& %v ", up)
	}
	b.WriteString("\\\\\n")
}

func latexActions(b *strings.Builder, c *strategy.Chart, id hand.ID) {
	b.WriteString("\\hline\n")
	b.WriteString(c.Space().Hand(id).Name() + " ")
	for _, up := range Columns() {
		fmt.Fprintf(b, " & %s ", c.At(id, up).Action.Symbol())
	}
	b.WriteString(" \\\\\n")
}

// WriteLatex writes the chart as a standalone LaTeX document.
func WriteLatex(w io.Writer, c *strategy.Chart, showWinPct bool) error {
	var b strings.Builder
	latexHeader(&b, "amsmath, amssymb")
	for _, id := range Rows(c.Space()) {
		latexActions(&b, c, id)
		if !showWinPct {
			continue
		}
		for _, up := range Columns() {
			d := c.At(id, up)
			fmt.Fprintf(&b, " & %s/%s ", pct(d.Win), pct(d.Loss))
		}
		b.WriteString(" \\\\\n")
	}
	b.WriteString("\\hline\n\\end{tabular}\n\n\\end{small}\n\n")
	b.WriteString("\\vspace{.1in}\n")
	b.WriteString("\\noindent KEY:\\\\\nH: Hit\\quad S: Stand\\quad DD: Double down\\quad SPL: Split\\\\\n")
	b.WriteString("X/Y: X\\% chance of winning, Y\\% chance of losing. " +
		"(May not add up to 100 due to pushes. For splits, this is the " +
		"probability of winning each of the two split hands.)\n\n")
	b.WriteString("\\end{document}\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteSimsLatex writes the simulated win/loss rates under each action.
// Rates further than RedThreshold from the chart are printed in red as the
// signed difference.
func WriteSimsLatex(w io.Writer, c *strategy.Chart, v *montecarlo.Verifier) error {
	byCell := make(map[hand.ID]map[cards.Rank]*montecarlo.Cell)
	for _, cell := range v.Cells() {
		if byCell[cell.ID] == nil {
			byCell[cell.ID] = make(map[cards.Rank]*montecarlo.Cell)
		}
		byCell[cell.ID][cell.Up] = cell
	}

	var b strings.Builder
	latexHeader(&b, "amsmath, amssymb, color")
	for _, id := range Rows(c.Space()) {
		latexActions(&b, c, id)
		for _, up := range Columns() {
			cell := byCell[id][up]
			if cell == nil {
				b.WriteString(" & ")
				continue
			}
			d := c.At(id, up)
			fmt.Fprintf(&b, " & %s/%s", simRate(cell.Win.Mean(), d.Win), simRate(cell.Loss.Mean(), d.Loss))
		}
		b.WriteString(" \\\\\n")
	}
	b.WriteString("\\hline\n\\end{tabular}\n\n\\end{small}\n\n\\end{document}\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func simRate(observed, expected float64) string {
	diff := observed - expected
	if math.Abs(diff) <= RedThreshold {
		return pct(observed)
	}
	sign := "+"
	if diff < 0 {
		sign = "-"
	}
	return fmt.Sprintf("\\textcolor{red}{%s%s}", sign, pct(math.Abs(diff)))
}
