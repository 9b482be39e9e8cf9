package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/chzyer/readline"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/domino14/bjstrat/chart"
	"github.com/domino14/bjstrat/config"
	"github.com/domino14/bjstrat/montecarlo"
	"github.com/domino14/bjstrat/runner"
	"github.com/domino14/bjstrat/shell"
)

var (
	GitVersion string
)

const defaultSimsFile = "Simulations chart.tex"

func setupLogging(debug bool) zerolog.Logger {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	output.FormatLevel = func(i interface{}) string {
		return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
	}
	output.FormatMessage = func(i interface{}) string {
		return fmt.Sprintf("%s", i)
	}
	output.FormatFieldName = func(i interface{}) string {
		return fmt.Sprintf("%s:", i)
	}

	var logger zerolog.Logger
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		logger = zerolog.New(output).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		logger = zerolog.New(output).Level(zerolog.InfoLevel).With().Timestamp().Logger()
	}
	zerolog.DefaultContextLogger = &logger
	log.Logger = logger
	return logger
}

func main() {
	cfg := &config.Config{}
	err := cfg.Load(os.Args[1:])
	logger := setupLogging(cfg.GetBool(config.ConfigDebug))
	if err != nil {
		log.Fatal().Err(err).Msg("bad-config")
	}
	logger.Debug().Msg("Debug logging is on")
	log.Debug().Msgf("Loaded config: %v", cfg.SanitizedSettings())
	if GitVersion != "" {
		log.Info().Str("version", GitVersion).Msg("bjstrat")
	}

	ctx, stop := signal.NotifyContext(logger.WithContext(context.Background()),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd := "solve"
	if len(cfg.Args()) > 0 {
		cmd = cfg.Args()[0]
	}
	switch cmd {
	case "solve":
		err = solve(ctx, cfg)
	case "sims":
		err = sims(ctx, cfg)
	case "shell":
		err = runShell(ctx, cfg)
	default:
		err = fmt.Errorf("unknown command %q; use solve, sims or shell", cmd)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("")
	}
}

func solveWithConfig(ctx context.Context, cfg *config.Config) (*runner.Result, error) {
	opts := runner.Options{}
	opts.SetDefaults(cfg)
	return runner.Run(ctx, opts)
}

// writeOutput sends b to the configured output file, or stdout when none is
// set.
func writeOutput(path string, b []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(b)
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return err
	}
	log.Info().Str("path", path).Msg("wrote-chart")
	return nil
}

func solve(ctx context.Context, cfg *config.Config) error {
	res, err := solveWithConfig(ctx, cfg)
	if err != nil {
		return err
	}
	var ev *float64
	if res.Summary != nil {
		ev = &res.Summary.EV
	}

	var buf bytes.Buffer
	showWinPct := cfg.GetBool(config.ConfigShowWinPct)
	switch cfg.GetString(config.ConfigFormat) {
	case config.FormatLatex:
		err = chart.WriteLatex(&buf, res.Chart, showWinPct)
	case config.FormatYAML:
		err = chart.WriteYAML(&buf, chart.NewExport(res.Chart, ev))
	case config.FormatJSON:
		err = chart.WriteJSON(&buf, chart.NewExport(res.Chart, ev))
	default:
		err = chart.WriteText(&buf, res.Chart, showWinPct)
	}
	if err != nil {
		return err
	}
	if err := writeOutput(cfg.GetString(config.ConfigOutput), buf.Bytes()); err != nil {
		return err
	}
	if ev != nil {
		fmt.Fprintln(os.Stderr, chart.EVSentence(*ev))
	}
	return nil
}

func sims(ctx context.Context, cfg *config.Config) error {
	res, err := solveWithConfig(ctx, cfg)
	if err != nil {
		return err
	}
	if !res.Converged {
		return fmt.Errorf("cannot simulate a partial chart: %d cells unresolved", res.Baseline.Unresolved())
	}
	v, err := montecarlo.NewVerifier(res.Chart, res.Baseline, montecarlo.Options{
		Decks:   cfg.GetInt(config.ConfigNumDecks),
		Threads: cfg.GetInt(config.ConfigThreads),
		Seed:    cfg.GetString(config.ConfigSeed),
	})
	if err != nil {
		return err
	}
	path := cfg.GetString(config.ConfigOutput)
	if path == "" {
		path = defaultSimsFile
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "N = ",
		InterruptPrompt: "^C",
		EOFPrompt:       "0",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	n := cfg.GetInt(config.ConfigSims)
	for n > 0 {
		if err := v.Run(ctx, n); err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := chart.WriteSimsLatex(&buf, res.Chart, v); err != nil {
			return err
		}
		if err := writeOutput(path, buf.Bytes()); err != nil {
			return err
		}
		io.WriteString(rl.Stderr(), chart.SimsSummary(v.Report(99))+
			"\nHow many more simulations would you like to run? (Enter N=0 to finish.)\n")
		n, err = askMore(rl)
		if err != nil {
			return err
		}
	}
	return nil
}

func askMore(rl *readline.Instance) (int, error) {
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
			return 0, nil
		}
		if err != nil {
			return 0, err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			return 0, nil
		}
		m, err := strconv.Atoi(line)
		if err == nil && m >= 0 {
			return m, nil
		}
		io.WriteString(rl.Stderr(), "Enter a whole number of simulations.\n")
	}
}

func runShell(ctx context.Context, cfg *config.Config) error {
	sc, err := shell.NewShellController(cfg)
	if err != nil {
		return err
	}
	sig := make(chan os.Signal, 1)
	done := make(chan struct{})
	go func() {
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Info().Msg("got quit signal...")
		close(done)
	}()
	go sc.Loop(ctx, sig)
	<-done
	return nil
}
