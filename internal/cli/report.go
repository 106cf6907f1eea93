// Package cli — report.go renders effect reports.
//
// The report keeps the git-primitive outcome and the effect outcomes
// visually separate: a worktree can be created successfully while some of
// its side effects failed, and the output has to make that unambiguous.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/mmr-tortoise/twig/internal/effect"
	"github.com/mmr-tortoise/twig/internal/model"
)

// printReport writes the effect report to out, honoring --json.
func printReport(out io.Writer, report *effect.Report) {
	if IsJSONOutput() {
		printReportJSON(out, report)
		return
	}
	printReportText(out, report)
}

// printReportJSON emits the whole report as a single JSON document.
func printReportJSON(out io.Writer, report *effect.Report) {
	doc := struct {
		Success  bool                  `json:"success"`
		GitError string                `json:"gitError,omitempty"`
		Phases   []*effect.PhaseReport `json:"phases"`
		Counts   effect.Counts         `json:"counts"`
	}{
		Success: report.OverallSuccess(),
		Phases:  report.Phases,
		Counts:  report.Counts(),
	}
	if report.GitErr != nil {
		doc.GitError = report.GitErr.Error()
	}

	data, _ := json.MarshalIndent(doc, "", "  ")
	fmt.Fprintln(out, string(data))
}

// printReportText emits the report in human-readable form: one line per
// effect grouped by phase, then the git outcome and a summary.
func printReportText(out io.Writer, report *effect.Report) {
	for _, phase := range report.Phases {
		if len(phase.Results) == 0 {
			continue
		}
		fmt.Fprintf(out, "%s:\n", phase.Phase)
		for _, res := range phase.Results {
			fmt.Fprintf(out, "  %s %s\n", resultSymbol(res.Kind), resultLine(res))
		}
		if phase.Aborted() {
			fmt.Fprintf(out, "  %s phase aborted", color.RedString("✗"))
			if phase.RolledBack > 0 {
				fmt.Fprintf(out, " (%d effect(s) rolled back)", phase.RolledBack)
			}
			fmt.Fprintln(out)
		}
	}

	if report.GitErr != nil {
		fmt.Fprintf(out, "%s git operation failed: %v\n", color.RedString("✗"), report.GitErr)
	}

	counts := report.Counts()
	if counts.Total() > 0 {
		fmt.Fprintln(out, summaryLine(report, counts))
	}
}

// resultLine formats one effect result: type, message and duration.
func resultLine(res model.EffectResult) string {
	line := res.EffectType
	if res.Message != "" {
		line += ": " + res.Message
	}
	if res.Duration >= 10*time.Millisecond {
		line += color.New(color.Faint).Sprintf(" (%s)", res.Duration.Round(time.Millisecond))
	}
	return line
}

// resultSymbol maps a result kind to a colored one-character marker.
func resultSymbol(kind model.ResultKind) string {
	switch kind {
	case model.KindSuccess:
		return color.GreenString("✓")
	case model.KindSkipped:
		return color.New(color.Faint).Sprint("-")
	case model.KindWarning:
		return color.YellowString("!")
	case model.KindTimeout:
		return color.RedString("⏱")
	default:
		return color.RedString("✗")
	}
}

// summaryLine builds the one-line totals footer.
func summaryLine(report *effect.Report, counts effect.Counts) string {
	status := color.GreenString("ok")
	if !report.OverallSuccess() {
		status = color.RedString("failed")
	} else if counts.Warnings > 0 || counts.Failures > 0 {
		status = color.YellowString("ok with warnings")
	}

	return fmt.Sprintf("%s: %d succeeded, %d skipped, %d warnings, %d failed",
		status, counts.Successes, counts.Skips, counts.Warnings, counts.Failures)
}
