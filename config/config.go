package config

import (
	"errors"
	"fmt"
	"runtime"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/domino14/bjstrat/cards"
)

const (
	ConfigBlackjackPays = "blackjack-pays"
	ConfigSimpleChart   = "simple-chart"
	ConfigCardWeights   = "card-weights"
	ConfigNumDecks      = "num-decks"
	ConfigSims          = "sims"
	ConfigThreads       = "threads"
	ConfigSeed          = "seed"
	ConfigOutput        = "output"
	ConfigFormat        = "format"
	ConfigShowWinPct    = "show-win-pct"
	ConfigDebug         = "debug"
	ConfigConfigFile    = "config"
)

const (
	FormatText  = "text"
	FormatLatex = "latex"
	FormatYAML  = "yaml"
	FormatJSON  = "json"
)

var Formats = []string{FormatText, FormatLatex, FormatYAML, FormatJSON}

var ErrInvalidSetting = errors.New("invalid setting")

type Config struct {
	*viper.Viper
	args []string
}

// Load reads settings from, lowest priority first: defaults, an optional
// YAML file named by --config, BJSTRAT_* environment variables, and flags.
func (c *Config) Load(args []string) error {
	c.Viper = viper.New()

	fs := pflag.NewFlagSet("bjstrat", pflag.ContinueOnError)
	fs.Float64(ConfigBlackjackPays, 1.5, "payout ratio for a player blackjack")
	fs.Bool(ConfigSimpleChart, false, "only compute hit and stand; no doubling or splitting")
	fs.String(ConfigCardWeights, "1,1,1,1,1,1,1,1,1,4", "relative draw weights for A,2,...,9,10")
	fs.Int(ConfigNumDecks, 6, "decks in the simulated shoe")
	fs.Int(ConfigSims, 1000, "simulated hands per chart cell")
	fs.Int(ConfigThreads, runtime.NumCPU(), "simulation worker goroutines")
	fs.String(ConfigSeed, "", "seed for reproducible simulations; random if empty")
	fs.String(ConfigOutput, "", "write the chart to this file instead of stdout")
	fs.String(ConfigFormat, FormatText, "chart format: "+strings.Join(Formats, ", "))
	fs.Bool(ConfigShowWinPct, true, "show win/loss percentages in chart cells")
	fs.Bool(ConfigDebug, false, "debug logging on")
	fs.String(ConfigConfigFile, "", "optional YAML settings file")

	if err := fs.Parse(args); err != nil {
		return err
	}
	c.args = fs.Args()

	c.SetEnvPrefix("BJSTRAT")
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()
	if err := c.BindPFlags(fs); err != nil {
		return err
	}
	if path := c.GetString(ConfigConfigFile); path != "" {
		c.SetConfigFile(path)
		if err := c.ReadInConfig(); err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
	}
	return c.Validate()
}

// Args are the positional arguments left after flag parsing.
func (c *Config) Args() []string {
	return c.args
}

// Validate checks every setting that can be set to a bad value.
func (c *Config) Validate() error {
	if _, err := c.Distribution(); err != nil {
		return err
	}
	if c.GetFloat64(ConfigBlackjackPays) < 0 {
		return fmt.Errorf("%w: %s must not be negative", ErrInvalidSetting, ConfigBlackjackPays)
	}
	if c.GetInt(ConfigNumDecks) < 1 {
		return fmt.Errorf("%w: %s must be at least 1", ErrInvalidSetting, ConfigNumDecks)
	}
	if c.GetInt(ConfigSims) < 0 {
		return fmt.Errorf("%w: %s must not be negative", ErrInvalidSetting, ConfigSims)
	}
	if c.GetInt(ConfigThreads) < 1 {
		return fmt.Errorf("%w: %s must be at least 1", ErrInvalidSetting, ConfigThreads)
	}
	if !slices.Contains(Formats, c.GetString(ConfigFormat)) {
		return fmt.Errorf("%w: %s must be one of %s", ErrInvalidSetting, ConfigFormat, strings.Join(Formats, ", "))
	}
	return nil
}

// Weights parses the card-weights setting.
func (c *Config) Weights() ([]float64, error) {
	return ParseWeights(c.GetString(ConfigCardWeights))
}

// Distribution builds the card distribution from the card-weights setting.
func (c *Config) Distribution() (*cards.Distribution, error) {
	w, err := c.Weights()
	if err != nil {
		return nil, err
	}
	d, err := cards.NewDistribution(w)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidSetting, ConfigCardWeights, err)
	}
	return d, nil
}

// ParseWeights reads ten comma- or space-separated numbers.
func ParseWeights(s string) ([]float64, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	if len(fields) != cards.NumRanks {
		return nil, fmt.Errorf("%w: %s needs %d values, got %d",
			ErrInvalidSetting, ConfigCardWeights, cards.NumRanks, len(fields))
	}
	w := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %q is not a number", ErrInvalidSetting, ConfigCardWeights, f)
		}
		w[i] = v
	}
	return w, nil
}

// SanitizedSettings is every setting, for logging.
func (c *Config) SanitizedSettings() map[string]any {
	return c.AllSettings()
}
