package runner

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/domino14/bjstrat/cards"
	"github.com/domino14/bjstrat/config"
)

// Options are the rule settings a solve depends on.
type Options struct {
	BlackjackPays float64
	SimpleChart   bool
	// Weights are relative draw weights, Ace first. Nil means a regular deck.
	Weights []float64
	// MaxSweeps caps the baseline solver's sweeps; zero means no cap.
	MaxSweeps int

	// set by SetPayout and SetSimpleChart, so SetDefaults keeps an explicit
	// zero payout or false.
	payoutSet bool
	simpleSet bool
}

func (opts *Options) SetDefaults(cfg *config.Config) {
	if opts.BlackjackPays == 0 && !opts.payoutSet {
		opts.BlackjackPays = cfg.GetFloat64(config.ConfigBlackjackPays)
		log.Debug().Float64("blackjack-pays", opts.BlackjackPays).Msg("using-configured-payout")
	}
	if !opts.SimpleChart && !opts.simpleSet {
		opts.SimpleChart = cfg.GetBool(config.ConfigSimpleChart)
	}
	if opts.Weights == nil {
		w, err := cfg.Weights()
		if err != nil {
			log.Warn().Err(err).Msg("ignoring-configured-weights")
			return
		}
		opts.Weights = w
	}
}

// Distribution builds the card distribution the options describe.
func (opts *Options) Distribution() (*cards.Distribution, error) {
	if opts.Weights == nil {
		return cards.Standard(), nil
	}
	return cards.NewDistribution(opts.Weights)
}

// SetPayout accepts a ratio such as 1.5 or 3:2.
func (opts *Options) SetPayout(s string) error {
	num, den, found := strings.Cut(s, ":")
	if !found {
		den = "1"
	}
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return fmt.Errorf("bad payout %q: %w", s, err)
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d <= 0 {
		return fmt.Errorf("bad payout %q", s)
	}
	if n < 0 {
		return errors.New("payout must not be negative")
	}
	opts.BlackjackPays = n / d
	opts.payoutSet = true
	return nil
}

// SetWeights accepts ten weights as one comma-separated field or ten
// separate fields.
func (opts *Options) SetWeights(fields []string) error {
	w, err := config.ParseWeights(strings.Join(fields, ","))
	if err != nil {
		return err
	}
	if _, err := cards.NewDistribution(w); err != nil {
		return err
	}
	opts.Weights = w
	return nil
}

func (opts *Options) SetSimpleChart(s string) error {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return fmt.Errorf("simple-chart takes true or false, not %q", s)
	}
	opts.SimpleChart = b
	opts.simpleSet = true
	return nil
}

func (opts Options) String() string {
	return fmt.Sprintf("blackjack pays %g, simple chart %v, weights %v",
		opts.BlackjackPays, opts.SimpleChart, opts.Weights)
}
