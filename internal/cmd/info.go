package cmd

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var infoCmd = githubCommand(&cobra.Command{
	Use:   "info <owner> <repo>",
	Short: "Show repository details",
	Args:  cobra.ExactArgs(2),
	RunE:  runInfo,
})

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	owner, name := args[0], args[1]

	client, err := clientFor(cmd)
	if err != nil {
		return err
	}

	repo, err := client.GetRepository(cmd.Context(), owner, name)
	if err != nil {
		return err
	}

	topics, err := client.GetTopics(cmd.Context(), owner, name)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	title := color.New(color.FgCyan, color.Bold)

	title.Fprintf(out, "%s\n", repo.FullName)
	if repo.Description != "" {
		fmt.Fprintf(out, "  %s\n", repo.Description)
	}
	fmt.Fprintln(out)

	field := func(label, value string) {
		fmt.Fprintf(out, "  %-16s %s\n", label+":", value)
	}
	field("URL", orDash(repo.HTMLURL))
	field("Homepage", orDash(repo.Homepage))
	field("Visibility", visibility(repo.Private))
	field("Archived", yesNo(repo.Archived))
	field("Fork", yesNo(repo.Fork))
	field("Language", orDash(repo.Language))
	field("Default branch", orDash(repo.DefaultBranch))
	field("Stars", humanize.Comma(int64(repo.Stars)))
	field("Forks", humanize.Comma(int64(repo.Forks)))
	field("Watchers", humanize.Comma(int64(repo.Watchers)))
	field("Size", humanize.Bytes(uint64(repo.SizeKB)*1024))
	field("Issues", yesNo(repo.Features.Issues))
	field("Projects", yesNo(repo.Features.Projects))
	field("Wiki", yesNo(repo.Features.Wiki))
	field("Topics", orDash(strings.Join(topics, ", ")))
	if !repo.CreatedAt.IsZero() {
		field("Created", fmt.Sprintf("%s (%s)", repo.CreatedAt.Format("2006-01-02"), humanize.Time(repo.CreatedAt)))
	}
	if !repo.UpdatedAt.IsZero() {
		field("Updated", fmt.Sprintf("%s (%s)", repo.UpdatedAt.Format("2006-01-02"), humanize.Time(repo.UpdatedAt)))
	}
	if !repo.PushedAt.IsZero() {
		field("Pushed", humanize.Time(repo.PushedAt))
	}

	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
