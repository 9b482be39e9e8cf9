package shell

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/domino14/bjstrat/cards"
	"github.com/domino14/bjstrat/chart"
	"github.com/domino14/bjstrat/config"
	"github.com/domino14/bjstrat/montecarlo"
	"github.com/domino14/bjstrat/runner"
)

const histogramWidth = 50

//go:embed helptext/*.txt
var helptext embed.FS

var (
	errNotSolved   = errors.New("no chart yet; run `solve` first")
	errNoEV        = errors.New("the last solve did not converge, so there is no expected value")
	errNoSimAmount = errors.New("usage: sim <hands per cell>")
)

type Response struct {
	message string
}

type CmdOptions map[string][]string

func (c CmdOptions) String(key string) string {
	v := c[key]
	if len(v) > 0 {
		return v[0]
	}
	return ""
}

func (c CmdOptions) IntDefault(key string, defaultI int) (int, error) {
	v := c[key]
	if len(v) == 0 {
		return defaultI, nil
	}
	return strconv.Atoi(v[0])
}

func (c CmdOptions) Bool(key string) bool {
	v := c[key]
	if len(v) == 0 {
		return false
	}
	return strings.ToLower(v[0]) == "true"
}

func msg(message string) *Response {
	return &Response{message: message}
}

func (sc *ShellController) help(cmd *shellcmd) (*Response, error) {
	topic := "usage"
	if len(cmd.args) > 0 {
		topic = cmd.args[0]
	}
	dat, err := helptext.ReadFile("helptext/" + topic + ".txt")
	if err != nil {
		return msg("There is no help text for the topic " + topic), nil
	}
	return msg(strings.TrimRight(string(dat), "\n")), nil
}

func (sc *ShellController) solve(ctx context.Context, cmd *shellcmd) (*Response, error) {
	res, err := runner.Run(ctx, sc.options)
	if err != nil {
		return nil, err
	}
	sc.result = res
	sc.verifier = nil
	if !res.Converged {
		return msg(fmt.Sprintf("The solve did not converge: %d cells are unresolved.",
			res.Baseline.Unresolved())), nil
	}
	if res.Summary == nil {
		return msg("Solved the hit-or-stand chart."), nil
	}
	return msg(chart.EVSentence(res.Summary.EV)), nil
}

func (sc *ShellController) chart(cmd *shellcmd) (*Response, error) {
	if sc.result == nil {
		return nil, errNotSolved
	}
	format := config.FormatText
	if len(cmd.args) > 0 {
		format = cmd.args[0]
	}
	showWinPct := sc.config.GetBool(config.ConfigShowWinPct)
	if v := cmd.options.String("winpct"); v != "" {
		showWinPct = cmd.options.Bool("winpct")
	}
	var buf bytes.Buffer
	if err := sc.writeChart(&buf, format, showWinPct); err != nil {
		return nil, err
	}
	return msg(strings.TrimRight(buf.String(), "\n")), nil
}

func (sc *ShellController) writeChart(buf *bytes.Buffer, format string, showWinPct bool) error {
	switch format {
	case config.FormatText:
		return chart.WriteText(buf, sc.result.Chart, showWinPct)
	case config.FormatLatex:
		return chart.WriteLatex(buf, sc.result.Chart, showWinPct)
	case config.FormatYAML:
		return chart.WriteYAML(buf, sc.exportData())
	case config.FormatJSON:
		return chart.WriteJSON(buf, sc.exportData())
	}
	return fmt.Errorf("unknown format %q; pick one of %s", format, strings.Join(config.Formats, ", "))
}

func (sc *ShellController) exportData() *chart.Export {
	if sc.result.Summary == nil {
		return chart.NewExport(sc.result.Chart, nil)
	}
	ev := sc.result.Summary.EV
	return chart.NewExport(sc.result.Chart, &ev)
}

func (sc *ShellController) ev(cmd *shellcmd) (*Response, error) {
	if sc.result == nil {
		return nil, errNotSolved
	}
	if sc.result.Summary == nil {
		return nil, errNoEV
	}
	var buf bytes.Buffer
	if err := chart.WriteHandEVs(&buf, sc.result.Chart, sc.result.Summary); err != nil {
		return nil, err
	}
	return msg(strings.TrimRight(buf.String(), "\n")), nil
}

func (sc *ShellController) dealer(cmd *shellcmd) (*Response, error) {
	if sc.result == nil {
		return nil, errNotSolved
	}
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: dealer <up card>")
	}
	up, err := cards.ParseRank(cmd.args[0])
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := chart.WriteDealerHistogram(&buf, sc.result.Outcomes, up, histogramWidth); err != nil {
		return nil, err
	}
	return msg(strings.TrimRight(buf.String(), "\n")), nil
}

func (sc *ShellController) sim(ctx context.Context, cmd *shellcmd) (*Response, error) {
	if sc.result == nil {
		return nil, errNotSolved
	}
	if len(cmd.args) == 1 && cmd.args[0] == "reset" {
		sc.verifier = nil
		return msg("simulation results cleared"), nil
	}
	if len(cmd.args) != 1 {
		return nil, errNoSimAmount
	}
	n, err := strconv.Atoi(cmd.args[0])
	if err != nil || n < 1 {
		return nil, errNoSimAmount
	}
	if sc.verifier == nil {
		threads, err := cmd.options.IntDefault("threads", sc.config.GetInt(config.ConfigThreads))
		if err != nil {
			return nil, err
		}
		decks, err := cmd.options.IntDefault("decks", sc.config.GetInt(config.ConfigNumDecks))
		if err != nil {
			return nil, err
		}
		seed := sc.config.GetString(config.ConfigSeed)
		if s := cmd.options.String("seed"); s != "" {
			seed = s
		}
		sc.verifier, err = montecarlo.NewVerifier(sc.result.Chart, sc.result.Baseline,
			montecarlo.Options{Decks: decks, Threads: threads, Seed: seed})
		if err != nil {
			return nil, err
		}
	}
	if tol := cmd.options.String("tolerance"); tol != "" {
		tolerance, err := strconv.ParseFloat(tol, 64)
		if err != nil {
			return nil, err
		}
		if err := sc.verifier.RunUntil(ctx, n, montecarlo.Stop99, tolerance); err != nil {
			return nil, err
		}
	} else if err := sc.verifier.Run(ctx, n); err != nil {
		return nil, err
	}
	return msg(chart.SimsSummary(sc.verifier.Report(99))), nil
}

func formatFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return config.FormatYAML
	case ".json":
		return config.FormatJSON
	case ".tex":
		return config.FormatLatex
	}
	return config.FormatText
}

func (sc *ShellController) export(cmd *shellcmd) (*Response, error) {
	if sc.result == nil {
		return nil, errNotSolved
	}
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: export <file> [-format text|latex|yaml|json]")
	}
	path := cmd.args[0]
	format := cmd.options.String("format")
	if format == "" {
		format = formatFor(path)
	}
	var buf bytes.Buffer
	if format == "sims" {
		if sc.verifier == nil {
			return nil, errors.New("no simulations yet; run `sim <n>` first")
		}
		if err := chart.WriteSimsLatex(&buf, sc.result.Chart, sc.verifier); err != nil {
			return nil, err
		}
	} else if err := sc.writeChart(&buf, format, sc.config.GetBool(config.ConfigShowWinPct)); err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return nil, err
	}
	return msg("wrote " + format + " chart to " + path), nil
}

func (sc *ShellController) set(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return msg(sc.options.String()), nil
	}
	if len(cmd.args) < 2 {
		return nil, errors.New("usage: set <payout|weights|simple-chart> <value>")
	}
	opt, values := cmd.args[0], cmd.args[1:]
	var err error
	switch opt {
	case "payout":
		err = sc.options.SetPayout(values[0])
	case "weights":
		err = sc.options.SetWeights(values)
	case "simple-chart":
		err = sc.options.SetSimpleChart(values[0])
	default:
		err = fmt.Errorf("option %q not found", opt)
	}
	if err != nil {
		return nil, err
	}
	sc.result = nil
	sc.verifier = nil
	return msg("set " + opt + " to " + strings.Join(values, " ") + "; run `solve` again"), nil
}
