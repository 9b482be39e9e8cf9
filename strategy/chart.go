// Package strategy solves for the expected-value-maximizing action in every
// (hand, dealer up card) cell. Solver computes the baseline hit-or-stand
// chart and Refiner upgrades cells to double-down or split.
package strategy

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash"

	"github.com/domino14/bjstrat/cards"
	"github.com/domino14/bjstrat/hand"
)

// Chart maps every (hand, up card) pair to a decision. It can only be
// changed from within this package; callers get an immutable snapshot.
type Chart struct {
	space *hand.Space
	cells [][cards.NumRanks + 1]cell
}

func newChart(space *hand.Space) *Chart {
	return &Chart{
		space: space,
		cells: make([][cards.NumRanks + 1]cell, space.Len()),
	}
}

// Space is the hand space the chart is keyed by.
func (c *Chart) Space() *hand.Space {
	return c.space
}

// At returns the decision for a hand against an up card.
func (c *Chart) At(id hand.ID, up cards.Rank) Decision {
	return c.cells[id][up].decision()
}

// Resolved reports whether the cell has a decision.
func (c *Chart) Resolved(id hand.ID, up cards.Rank) bool {
	return c.cells[id][up].action != Unresolved
}

// Unresolved counts the cells without a decision.
func (c *Chart) Unresolved() int {
	n := 0
	for i := range c.cells {
		for _, up := range cards.Ranks() {
			if c.cells[i][up].action == Unresolved {
				n++
			}
		}
	}
	return n
}

// Complete reports whether every cell has a decision.
func (c *Chart) Complete() bool {
	return c.Unresolved() == 0
}

// Clone returns a deep copy.
func (c *Chart) Clone() *Chart {
	cp := &Chart{space: c.space, cells: make([][cards.NumRanks + 1]cell, len(c.cells))}
	copy(cp.cells, c.cells)
	return cp
}

// Fingerprint hashes every cell's action and the exact bits of its
// probabilities. Two charts with the same fingerprint are bit-identical.
func (c *Chart) Fingerprint() uint64 {
	h := xxhash.New()
	var buf [8]byte
	put := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		h.Write(buf[:])
	}
	for i := range c.cells {
		for _, up := range cards.Ranks() {
			d := c.cells[i][up].decision()
			put(uint64(d.Action))
			put(math.Float64bits(d.Win))
			put(math.Float64bits(d.Loss))
			put(math.Float64bits(d.SplitEV))
		}
	}
	return h.Sum64()
}

func (c *Chart) set(id hand.ID, up cards.Rank, v cell) {
	c.cells[id][up] = v
}

func (c *Chart) get(id hand.ID, up cards.Rank) cell {
	return c.cells[id][up]
}
