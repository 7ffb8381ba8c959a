package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"supergithub/pkg/organizer"
)

var organizeFlags struct {
	execute   bool
	noArchive bool
	delete    bool
	noUpdate  bool
	noTopics  bool
	force     bool
}

var organizeCmd = githubCommand(&cobra.Command{
	Use:   "organize",
	Short: "Archive stale repositories, clean up temporary ones and fill in metadata",
	Long: `Classify every repository you own and run the cleanup passes:

  archive   repositories idle for more than a year with no stars or forks
  delete    temp-, test-, demo- and experiment- repositories idle for 90 days (opt-in)
  update    add a generated description where none exists
  topics    tag repositories with their primary language

Nothing changes unless --execute is given. Deleting also requires typing
DELETE ALL, or --force.

Examples:
  supergithub organize
  supergithub organize --execute --no-topics
  supergithub organize --execute --delete`,
	Args: cobra.NoArgs,
	RunE: runOrganize,
})

func init() {
	f := organizeCmd.Flags()
	f.BoolVar(&organizeFlags.execute, "execute", false, "Apply the changes instead of only showing them")
	f.BoolVar(&organizeFlags.noArchive, "no-archive", false, "Skip the archive pass")
	f.BoolVar(&organizeFlags.delete, "delete", false, "Run the delete pass")
	f.BoolVar(&organizeFlags.noUpdate, "no-update", false, "Skip the description pass")
	f.BoolVar(&organizeFlags.noTopics, "no-topics", false, "Skip the topic pass")
	f.BoolVar(&organizeFlags.force, "force", false, "Delete without the typed confirmation")
	rootCmd.AddCommand(organizeCmd)
}

// organizerRules maps the organizer config onto the rules. The config starts
// from the defaults, so a configured 0 is honoured.
func organizerRules() organizer.Rules {
	rules := organizer.DefaultRules()
	o := cfg.Organizer
	if len(o.DeletePrefixes) > 0 {
		rules.DeletePrefixes = o.DeletePrefixes
	}
	rules.DeleteAfterDays = o.DeleteAfterDays
	rules.ArchiveAfterDays = o.ArchiveAfterDays
	rules.DescriptionPrefix = o.DescriptionPrefix
	return rules
}

func runOrganize(cmd *cobra.Command, _ []string) error {
	client, err := clientFor(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	org := organizer.New(client,
		organizer.WithRules(organizerRules()),
		organizer.WithConcurrency(cfg.GitHub.Concurrency),
		organizer.WithListLimit(cfg.GitHub.MaxPages*100),
	)

	opts := organizer.DefaultRunOptions()
	opts.DryRun = !organizeFlags.execute
	opts.Archive = !organizeFlags.noArchive
	opts.Delete = organizeFlags.delete
	opts.Update = !organizeFlags.noUpdate
	opts.Tag = !organizeFlags.noTopics
	opts.Force = organizeFlags.force
	opts.Confirm = func(phrase string) bool {
		ok, err := confirmPhrase(cmd, "The delete pass permanently removes the repositories listed above", phrase)
		if err != nil {
			printWarning(out, "%v", err)
			return false
		}
		return ok
	}

	if opts.DryRun {
		printInfo(out, "Dry run: nothing will be changed (use --execute to apply)")
	}
	rules := org.Rules()
	printInfo(out, "Archiving after %d idle days, deleting %s after %d idle days",
		rules.ArchiveAfterDays, strings.Join(rules.DeletePrefixes, " "), rules.DeleteAfterDays)

	report, err := org.Run(cmd.Context(), opts)
	if report != nil {
		printReport(out, report)
	}
	if err != nil {
		return err
	}

	if len(report.Failures) > 0 {
		return fmt.Errorf("%d of %d changes failed", len(report.Failures), len(report.Actions))
	}
	return nil
}

func printReport(w io.Writer, report *organizer.Report) {
	fmt.Fprintf(w, "\nAnalyzed %s repositories\n", humanize.Comma(int64(report.Total)))
	for _, category := range organizer.AllCategories {
		fmt.Fprintf(w, "  %-12s %d\n", category, report.Counts[category])
	}

	if len(report.Actions) > 0 {
		fmt.Fprintln(w)
	}
	for _, action := range report.Actions {
		line := fmt.Sprintf("%-8s %s", action.Kind, action.Repo)
		if action.Detail != "" {
			line += gray.Sprintf(" (%s)", action.Detail)
		}

		switch {
		case report.DryRun:
			printInfo(w, "%s", line)
		case report.DeleteCancelled && action.Kind == organizer.ActionDelete:
			printWarning(w, "%s %s", line, gray.Sprint("skipped"))
		case action.Executed:
			printSuccess(w, "%s", line)
		default:
			printFailure(w, "%s", line)
		}
	}

	for _, failure := range report.Failures {
		printFailure(w, "%s: %s", failure.Repo, failure.Error)
	}

	if report.DeleteCancelled {
		printWarning(w, "Delete pass cancelled: confirmation not given")
	}

	if report.DryRun {
		fmt.Fprintf(w, "\n%d changes planned\n", len(report.Actions))
		return
	}
	fmt.Fprintf(w, "\nArchived %d, deleted %d, updated %d, tagged %d\n",
		report.Archived, report.Deleted, report.Updated, report.Tagged)
}
