package chart

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/domino14/bjstrat/strategy"
)

// Export is the machine-readable form of a chart.
type Export struct {
	Fingerprint string      `json:"fingerprint" yaml:"fingerprint"`
	EV          *float64    `json:"ev,omitempty" yaml:"ev,omitempty"`
	Rows        []ExportRow `json:"rows" yaml:"rows"`
}

type ExportRow struct {
	Hand  string       `json:"hand" yaml:"hand"`
	Cells []ExportCell `json:"cells" yaml:"cells,flow"`
}

type ExportCell struct {
	Up      string  `json:"up" yaml:"up"`
	Action  string  `json:"action" yaml:"action"`
	Win     float64 `json:"win" yaml:"win"`
	Loss    float64 `json:"loss" yaml:"loss"`
	SplitEV float64 `json:"split_ev,omitempty" yaml:"split_ev,omitempty"`
	EV      float64 `json:"ev" yaml:"ev"`
}

// NewExport flattens the displayed rows of a chart. ev may be nil when no
// expected value was computed.
func NewExport(c *strategy.Chart, ev *float64) *Export {
	e := &Export{Fingerprint: fingerprint(c), EV: ev}
	for _, id := range Rows(c.Space()) {
		row := ExportRow{Hand: c.Space().Hand(id).Name()}
		for _, up := range Columns() {
			d := c.At(id, up)
			row.Cells = append(row.Cells, ExportCell{
				Up:      up.String(),
				Action:  d.Action.Symbol(),
				Win:     d.Win,
				Loss:    d.Loss,
				SplitEV: d.SplitEV,
				EV:      d.EV(),
			})
		}
		e.Rows = append(e.Rows, row)
	}
	return e
}

func WriteYAML(w io.Writer, e *Export) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(e); err != nil {
		return err
	}
	return enc.Close()
}

func WriteJSON(w io.Writer, e *Export) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}
