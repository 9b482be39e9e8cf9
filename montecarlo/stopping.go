package montecarlo

import (
	"context"
	"errors"
	"math"

	"github.com/rs/zerolog"

	"github.com/domino14/bjstrat/stats"
)

// IterationsCutoff caps the hands per cell RunUntil will play.
const IterationsCutoff = 1_000_000

type StoppingCondition int

const (
	Stop95 StoppingCondition = iota
	Stop98
	Stop99
)

func (sc StoppingCondition) confidence() float64 {
	switch sc {
	case Stop95:
		return 95
	case Stop98:
		return 98
	}
	return 99
}

// RunUntil plays batches of batch hands per cell until the confidence
// interval of every cell's win and loss rate is no wider than tolerance on
// either side, or IterationsCutoff hands per cell have been played.
func (v *Verifier) RunUntil(ctx context.Context, batch int, sc StoppingCondition, tolerance float64) error {
	if batch < 1 || tolerance <= 0 {
		return errors.New("batch and tolerance must be positive")
	}
	z := stats.ZVal(sc.confidence())
	for !v.shouldStop(z, tolerance) {
		if err := v.Run(ctx, batch); err != nil {
			return err
		}
	}
	zerolog.Ctx(ctx).Info().Int("hands-per-cell", v.HandsPerCell()).
		Float64("tolerance", tolerance).Msg("sims-stopped")
	return nil
}

func (v *Verifier) shouldStop(z, tolerance float64) bool {
	n := v.HandsPerCell()
	if n >= IterationsCutoff || len(v.cells) == 0 {
		return true
	}
	// a single hand gives no variance estimate
	if n < 2 {
		return false
	}
	return v.maxHalfWidth(z) <= tolerance
}

func (v *Verifier) maxHalfWidth(z float64) float64 {
	var widest float64
	for _, c := range v.cells {
		widest = math.Max(widest, z*c.Win.StandardError())
		widest = math.Max(widest, z*c.Loss.StandardError())
	}
	return widest
}
