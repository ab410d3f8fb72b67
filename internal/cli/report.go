package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/alnah/go-speechcut/internal/format"
	"github.com/alnah/go-speechcut/internal/pipeline"
)

// renderReport renders the run summary as a two-column table. styled selects
// rounded borders and a bold header for terminals; plain ASCII otherwise.
func renderReport(rep pipeline.Report, styled bool) string {
	tw := table.NewWriter()
	if styled {
		tw.SetStyle(table.StyleRounded)
		tw.Style().Title.Format = text.FormatUpper
		tw.Style().Color.Header = text.Colors{text.Bold}
	} else {
		tw.SetStyle(table.StyleDefault)
	}
	tw.SetTitle("speech segments")
	tw.AppendHeader(table.Row{"Field", "Value"})

	res := rep.Extraction
	attempted := len(res.Segments) + len(res.Failed)

	tw.AppendRows([]table.Row{
		{"Input", fmt.Sprintf("%s (%s)", rep.Input, format.Size(rep.InputBytes))},
		{"Language", orDash(rep.Language)},
		{"Words", rep.Words},
		{"Segments", fmt.Sprintf("%d of %d written", len(res.Segments), attempted)},
		{"Failed", indexList(res.FailedIndices())},
		{"Skipped", indexList(res.Skipped)},
		{"Speech", speechSummary(rep)},
		{"Archive", fmt.Sprintf("%s (%d files, %s)", orDash(rep.Archive.Path), rep.Archive.Files, format.Size(rep.Archive.Bytes))},
		{"Elapsed", rep.Elapsed.Round(time.Millisecond).String()},
		{"Job", rep.JobID},
	})

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft},
		{Number: 2, Align: text.AlignLeft, WidthMax: 80},
	})

	return tw.Render()
}

// speechSummary returns "speech / source (ratio)", or just the speech time
// when the source duration is unknown.
func speechSummary(rep pipeline.Report) string {
	if rep.SourceDuration <= 0 {
		return format.Clock(rep.SpeechTime)
	}
	return fmt.Sprintf("%s / %s (%s)",
		format.Clock(rep.SpeechTime), format.Clock(rep.SourceDuration), format.Ratio(rep.SpeechTime, rep.SourceDuration))
}

func indexList(indices []int) string {
	if len(indices) == 0 {
		return "none"
	}
	parts := make([]string, len(indices))
	for i, n := range indices {
		parts[i] = fmt.Sprintf("%d", n)
	}
	return strings.Join(parts, ", ")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
