package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/stormfront/pkg/domain/model"
)

var (
	frozenColor = color.New(color.FgRed, color.Bold)
	answerColor = color.New(color.FgGreen)
	statsColor  = color.New(color.FgHiBlack)
)

// runOutput is the --json rendering of a run
type runOutput struct {
	Meta        model.RunMeta `json:"meta"`
	FinalOutput string        `json:"final_output"`
	Committed   *bool         `json:"committed,omitempty"`
}

// renderRun writes a run result either as colored text or as JSON. committed
// is nil when the run did not go through memory.
func renderRun(w io.Writer, result *model.RunResult, committed *bool, asJSON bool) error {
	if asJSON {
		out := runOutput{
			Meta:        result.Meta(),
			FinalOutput: result.Text,
			Committed:   committed,
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return goerr.Wrap(err, "failed to marshal run output")
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	if result.Frozen {
		if _, err := frozenColor.Fprintln(w, result.Text); err != nil {
			return err
		}
	} else if _, err := answerColor.Fprintln(w, result.Text); err != nil {
		return err
	}

	_, err := statsColor.Fprintln(w, statsLine(result, committed))
	return err
}

func statsLine(result *model.RunResult, committed *bool) string {
	meta := result.Meta()
	parts := []string{
		fmt.Sprintf("run=%s", meta.RunID),
		fmt.Sprintf("paths=%d/%d", meta.NGenerated-meta.NFailed, meta.NRequested),
		fmt.Sprintf("dcx_min=%.4f", meta.DCXMin),
		fmt.Sprintf("confidence=%.4f", meta.Confidence),
	}
	if meta.SelectedIndex != nil {
		parts = append(parts, fmt.Sprintf("selected=%d", *meta.SelectedIndex))
	}
	if meta.Provider != "" {
		parts = append(parts, fmt.Sprintf("embedding=%s", meta.Provider))
	}
	if committed != nil {
		parts = append(parts, fmt.Sprintf("committed=%t", *committed))
	}
	parts = append(parts, fmt.Sprintf("elapsed=%s", result.Elapsed.Round(time.Millisecond)))
	return strings.Join(parts, " ")
}
