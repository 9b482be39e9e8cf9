package strategy

// Action is what the player does with a hand.
type Action int

const (
	// Unresolved marks a cell the solver could not reach.
	Unresolved Action = iota
	Stand
	Hit
	Split
	DoubleDown
)

// Symbol is the abbreviation used in charts.
func (a Action) Symbol() string {
	switch a {
	case Stand:
		return "S"
	case Hit:
		return "H"
	case Split:
		return "SPL"
	case DoubleDown:
		return "DD"
	}
	return "??"
}

func (a Action) String() string {
	switch a {
	case Stand:
		return "stand"
	case Hit:
		return "hit"
	case Split:
		return "split"
	case DoubleDown:
		return "double-down"
	}
	return "unresolved"
}

// Prob is a probability that may not have been computed yet.
type Prob struct {
	p  float64
	ok bool
}

// Solved wraps a computed probability.
func Solved(p float64) Prob {
	return Prob{p: p, ok: true}
}

// Value returns the probability and whether it has been computed.
func (p Prob) Value() (float64, bool) {
	return p.p, p.ok
}

// IsSolved reports whether the probability has been computed.
func (p Prob) IsSolved() bool {
	return p.ok
}

// cell is the solver's mutable view of one (hand, up card) entry.
type cell struct {
	action  Action
	win     Prob
	loss    Prob
	splitEV float64
}

// Decision is the exported, read-only view of a chart cell. Win and Loss
// are conditioned on neither side having blackjack and exclude pushes. For
// a split they describe one of the two resulting hands; SplitEV is the
// expected value of both together, per unit of the original stake.
type Decision struct {
	Action  Action
	Win     float64
	Loss    float64
	SplitEV float64
}

// EV is the expected gain per unit of the original stake.
func (d Decision) EV() float64 {
	switch d.Action {
	case DoubleDown:
		return 2 * (d.Win - d.Loss)
	case Split:
		return d.SplitEV
	case Unresolved:
		return 0
	}
	return d.Win - d.Loss
}

func (c cell) decision() Decision {
	w, _ := c.win.Value()
	l, _ := c.loss.Value()
	return Decision{Action: c.action, Win: w, Loss: l, SplitEV: c.splitEV}
}
