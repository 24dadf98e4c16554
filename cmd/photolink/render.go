package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"photolink/internal/catalog"
	"photolink/internal/matcher"
	"photolink/internal/reconcile"
)

const (
	ansiBlue  = "\033[34m"
	ansiReset = "\033[0m"
)

func renderSectionHeader(title string, colorize bool) []string {
	line := title
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func renderReport(result *reconcile.Result, colorize bool) string {
	r := result.Report
	var b strings.Builder

	for _, line := range renderSectionHeader("Run Summary", colorize) {
		b.WriteString(line + "\n")
	}
	fmt.Fprintf(&b, "Run ID:      %s\n", r.RunID)
	fmt.Fprintf(&b, "Mode:        %s\n", r.Mode)
	fmt.Fprintf(&b, "Catalog:     %s\n", r.Catalog)
	fmt.Fprintf(&b, "Assets:      %s (%d files)\n", r.AssetSource, r.AssetCount)
	fmt.Fprintf(&b, "Committed:   %s\n", yesNo(r.Committed))
	if result.BackupPath != "" {
		fmt.Fprintf(&b, "Backup:      %s\n", result.BackupPath)
	}
	if result.ReportPath != "" {
		fmt.Fprintf(&b, "Report:      %s\n", result.ReportPath)
	}
	fmt.Fprintf(&b, "Duration:    %s\n\n", r.Duration().Round(time.Millisecond))

	rows := make([][]string, 0, 16)
	for _, s := range catalog.States {
		rows = append(rows, []string{"state", string(s), strconv.Itoa(r.States[string(s)])})
	}
	for _, m := range matcher.Methods {
		rows = append(rows, []string{"method", string(m), strconv.Itoa(r.Methods[string(m)])})
	}
	for _, reason := range matcher.Reasons {
		rows = append(rows, []string{"reason", string(reason), strconv.Itoa(r.Reasons[string(reason)])})
	}
	rows = append(rows, []string{"total", "changed", strconv.Itoa(r.Changed)})
	b.WriteString(tableSpec{
		Title:   "Outcomes",
		Headers: []string{"Group", "Name", "Count"},
		Rows:    rows,
		Aligns:  []columnAlignment{alignLeft, alignLeft, alignRight},
		Footer:  []string{"", fmt.Sprintf("%d records, %s resolved", r.Total, formatRate(r.ResolutionRate)), ""},
	}.render())
	b.WriteString("\n")

	if len(r.Samples) > 0 {
		b.WriteString("\n")
		for _, line := range renderSectionHeader("Unresolved Sample", colorize) {
			b.WriteString(line + "\n")
		}
		sample := make([][]string, 0, len(r.Samples))
		for _, s := range r.Samples {
			sample = append(sample, []string{strconv.Itoa(s.Index), s.ID, truncate(s.Name, 32), truncate(s.Ref, 60), s.Reason})
		}
		b.WriteString(tableSpec{
			Headers: []string{"#", "ID", "Name", "Reference", "Reason"},
			Rows:    sample,
			Aligns:  []columnAlignment{alignRight},
		}.render())
		b.WriteString("\n")
	}
	return b.String()
}

func formatRate(rate float64) string {
	return strconv.FormatFloat(rate*100, 'f', 2, 64) + "%"
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if limit <= 3 || len(runes) <= limit {
		return value
	}
	return string(runes[:limit-3]) + "..."
}
