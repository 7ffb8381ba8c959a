package cmd

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"supergithub/pkg/github"
)

var (
	green  = color.New(color.FgGreen, color.Bold)
	red    = color.New(color.FgRed, color.Bold)
	yellow = color.New(color.FgYellow)
	cyan   = color.New(color.FgCyan)
	gray   = color.New(color.FgHiBlack)
)

func printSuccess(w io.Writer, format string, a ...interface{}) {
	fmt.Fprintf(w, "%s %s\n", green.Sprint("✓"), fmt.Sprintf(format, a...))
}

func printFailure(w io.Writer, format string, a ...interface{}) {
	fmt.Fprintf(w, "%s %s\n", red.Sprint("✗"), fmt.Sprintf(format, a...))
}

func printWarning(w io.Writer, format string, a ...interface{}) {
	fmt.Fprintf(w, "%s %s\n", yellow.Sprint("⚠"), fmt.Sprintf(format, a...))
}

func printInfo(w io.Writer, format string, a ...interface{}) {
	fmt.Fprintf(w, "%s %s\n", cyan.Sprint("•"), fmt.Sprintf(format, a...))
}

// printBatchResult reports every item of a batch and returns an error when
// any of them failed
func printBatchResult(w io.Writer, verb string, result *github.BatchResult) error {
	for _, repo := range result.Succeeded {
		printSuccess(w, "%s %s", verb, repo)
	}
	for _, failure := range result.Failed {
		printFailure(w, "%s: %s", failure.Repo, failure.Error)
	}

	fmt.Fprintf(w, "\n%d succeeded, %d failed\n", len(result.Succeeded), len(result.Failed))

	if result.HasFailures() {
		return fmt.Errorf("%d of %d operations failed", len(result.Failed), result.Total())
	}
	return nil
}

func visibility(private bool) string {
	if private {
		return "private"
	}
	return "public"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
