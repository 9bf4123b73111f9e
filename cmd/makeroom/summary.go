package main

import (
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"makeroom/internal/walker"
)

var numberPrinter = message.NewPrinter(language.English)

// formatBytes renders n with thousands separators and a human size.
func formatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return numberPrinter.Sprintf("%d (%s)", n, humanize.Bytes(uint64(n)))
}

func formatCount(n int) string {
	return numberPrinter.Sprintf("%d", n)
}

func renderSummary(result walker.Result, colorize bool) string {
	title := "Run summary"
	if result.Options.DryRun {
		title = "Dry run summary"
	}

	rows := [][]string{
		{"Visited", formatCount(result.Visited)},
		{"Converted", formatCount(result.Converted)},
		{"Would convert", formatCount(result.Reported)},
		{"Skipped", formatCount(result.Skipped)},
		{"Failed", formatCount(result.Failed)},
		{"Bytes processed", formatBytes(result.BytesProcessed)},
		{"Output bytes", formatBytes(result.OutputBytes)},
		{"Reclaimable", formatBytes(result.Reclaimed())},
	}
	if result.Options.Budget > 0 {
		rows = append(rows, []string{"Budget", formatBytes(result.Options.Budget)})
	}

	var b strings.Builder
	for _, line := range renderSectionHeader(title, colorize) {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteString(renderTable(tableSpec{
		headers: []string{"Metric", "Value"},
		rows:    rows,
		aligns:  []columnAlignment{alignLeft, alignRight},
	}))
	b.WriteByte('\n')

	if failures := failedOutcomes(result); len(failures) > 0 {
		b.WriteString(renderTable(tableSpec{
			title:   "Failed conversions",
			headers: []string{"File", "Error"},
			rows:    failures,
		}))
		b.WriteByte('\n')
	}

	b.WriteString(renderStatusLine("Stopped", stopKind(result), stopMessage(result), colorize))
	b.WriteByte('\n')
	return b.String()
}

func failedOutcomes(result walker.Result) [][]string {
	var rows [][]string
	for _, outcome := range result.Outcomes {
		if outcome.Action != walker.ActionFailed {
			continue
		}
		detail := ""
		if outcome.Err != nil {
			detail = outcome.Err.Error()
		}
		rows = append(rows, []string{outcome.Path, detail})
	}
	return rows
}

func stopKind(result walker.Result) statusKind {
	switch {
	case result.Interrupted:
		return statusWarn
	case result.Failed > 0:
		return statusWarn
	default:
		return statusOK
	}
}

func stopMessage(result walker.Result) string {
	switch {
	case result.Interrupted:
		return "interrupted"
	case result.BudgetReached:
		return "budget reached"
	default:
		return "tree exhausted"
	}
}
