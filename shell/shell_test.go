package shell

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/domino14/bjstrat/chart"
	"github.com/domino14/bjstrat/config"
)

func TestExtractFields(t *testing.T) {
	is := is.New(t)
	type testdata struct {
		line   string
		expCmd *shellcmd
		expErr error
	}
	cases := []testdata{
		{"", nil, errNoData},
		{"export -format yaml /path/to/chart.txt",
			&shellcmd{"export", []string{"/path/to/chart.txt"}, CmdOptions{"format": {"yaml"}}},
			nil},
		{"sim reset",
			&shellcmd{"sim", []string{"reset"}, CmdOptions{}},
			nil},
		{"sim 1000 -threads 4 -seed 'two words' ",
			&shellcmd{"sim",
				[]string{"1000"},
				CmdOptions{"threads": {"4"}, "seed": {"two words"}}},
			nil,
		},
		{"set weights 1 1 1 1 1 1 1 1 1 4",
			&shellcmd{"set",
				[]string{"weights", "1", "1", "1", "1", "1", "1", "1", "1", "1", "4"},
				CmdOptions{}},
			nil,
		},
		{"sim 1000 -threads",
			nil, errWrongOptionSyntax},
	}
	for _, t := range cases {
		cmd, err := extractFields(t.line)
		is.Equal(cmd, t.expCmd)
		is.Equal(err, t.expErr)
	}
}

func testController(t *testing.T) *ShellController {
	t.Helper()
	cfg := &config.Config{}
	require.NoError(t, cfg.Load([]string{"--threads", "2", "--seed", "shell"}))
	return newController(cfg)
}

func run(t *testing.T, sc *ShellController, line string) string {
	t.Helper()
	resp, err := sc.Execute(context.Background(), line)
	require.NoError(t, err, line)
	return resp.message
}

func TestNeedsSolve(t *testing.T) {
	is := is.New(t)
	sc := testController(t)
	for _, line := range []string{"chart", "ev", "dealer 6", "sim 10", "export x.txt"} {
		_, err := sc.Execute(context.Background(), line)
		is.True(errors.Is(err, errNotSolved))
	}
}

func TestSession(t *testing.T) {
	is := is.New(t)
	sc := testController(t)

	out := run(t, sc, "solve")
	is.True(strings.HasPrefix(out, "The player's expected value is -0.4"))

	out = run(t, sc, "chart")
	is.True(strings.Contains(out, "SPL "))
	is.True(strings.Contains(out, "DD "))

	out = run(t, sc, "chart latex -winpct false")
	is.True(strings.HasPrefix(out, "\\documentclass{article}"))

	out = run(t, sc, "ev")
	is.True(strings.Contains(out, "A,10"))
	is.True(strings.Contains(out, "will lose an average of"))

	out = run(t, sc, "dealer 6")
	is.True(strings.Contains(out, "bust"))

	out = run(t, sc, "sim 10")
	is.True(strings.HasPrefix(out, "Completed 10 simulations"))
	out = run(t, sc, "sim 10")
	is.True(strings.HasPrefix(out, "Completed 20 simulations"))
	out = run(t, sc, "sim 20 -tolerance 0.25")
	is.True(strings.HasPrefix(out, "Completed 40 simulations"))

	dir := t.TempDir()
	path := filepath.Join(dir, "chart.yaml")
	out = run(t, sc, "export "+path)
	is.Equal(out, "wrote yaml chart to "+path)
	dat, err := os.ReadFile(path)
	is.NoErr(err)
	var e chart.Export
	is.NoErr(yaml.Unmarshal(dat, &e))
	is.Equal(len(e.Rows), 27)
	is.True(e.EV != nil)

	simsPath := filepath.Join(dir, "sims.tex")
	run(t, sc, "export "+simsPath+" -format sims")
	dat, err = os.ReadFile(simsPath)
	is.NoErr(err)
	is.True(strings.Contains(string(dat), "color"))
}

func TestSetDropsSolve(t *testing.T) {
	is := is.New(t)
	sc := testController(t)
	run(t, sc, "solve")

	out := run(t, sc, "set payout 6:5")
	is.True(strings.HasPrefix(out, "set payout to 6:5"))
	is.Equal(sc.options.BlackjackPays, 1.2)
	is.True(sc.result == nil)

	run(t, sc, "set simple-chart true")
	out = run(t, sc, "set")
	is.True(strings.Contains(out, "simple chart true"))

	run(t, sc, "solve")
	out = run(t, sc, "chart")
	is.True(!strings.Contains(out, "8,8"))
	is.True(!strings.Contains(out, "DD "))

	_, err := sc.Execute(context.Background(), "set weights 1 2 3")
	is.True(errors.Is(err, config.ErrInvalidSetting))
	_, err = sc.Execute(context.Background(), "set nothing 1")
	is.True(err != nil)
}

func TestHelpAndUnknown(t *testing.T) {
	is := is.New(t)
	sc := testController(t)
	is.True(strings.HasPrefix(run(t, sc, "help"), "Commands:"))
	is.True(strings.HasPrefix(run(t, sc, "help sim"), "sim <n>"))
	is.Equal(run(t, sc, "help nope"), "There is no help text for the topic nope")

	_, err := sc.Execute(context.Background(), "deal")
	is.True(err != nil)
	_, err = sc.Execute(context.Background(), "exit")
	is.True(errors.Is(err, errQuit))
}

func TestFormatFor(t *testing.T) {
	is := is.New(t)
	is.Equal(formatFor("a.YML"), config.FormatYAML)
	is.Equal(formatFor("a.json"), config.FormatJSON)
	is.Equal(formatFor("a.tex"), config.FormatLatex)
	is.Equal(formatFor("a"), config.FormatText)
}
