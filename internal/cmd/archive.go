package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"supergithub/pkg/github"
)

var (
	archiveBatch   []string
	unarchiveBatch []string
	archivePick    bool
	unarchivePick  bool
)

var archiveCmd = githubCommand(&cobra.Command{
	Use:   "archive <owner> [repo]",
	Short: "Archive one or more repositories",
	Long: `Archive a repository, making it read-only.

Examples:
  supergithub archive octocat old-project
  supergithub archive octocat --batch old-api,old-web,old-docs
  supergithub archive octocat --batch old-api,acme/legacy-site
  supergithub archive octocat --pick`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runArchiveState(cmd, args, archiveBatch, archivePick, true)
	},
})

var unarchiveCmd = githubCommand(&cobra.Command{
	Use:   "unarchive <owner> [repo]",
	Short: "Unarchive one or more repositories",
	Long: `Unarchive a repository, making it writable again.

Examples:
  supergithub unarchive octocat old-project
  supergithub unarchive octocat --batch old-api,old-web
  supergithub unarchive octocat --pick`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runArchiveState(cmd, args, unarchiveBatch, unarchivePick, false)
	},
})

func init() {
	archiveCmd.Flags().StringSliceVarP(&archiveBatch, "batch", "b", nil, "Comma-separated repository names to archive")
	unarchiveCmd.Flags().StringSliceVarP(&unarchiveBatch, "batch", "b", nil, "Comma-separated repository names to unarchive")
	archiveCmd.Flags().BoolVarP(&archivePick, "pick", "p", false, "Choose active repositories interactively")
	unarchiveCmd.Flags().BoolVarP(&unarchivePick, "pick", "p", false, "Choose archived repositories interactively")
	rootCmd.AddCommand(archiveCmd)
	rootCmd.AddCommand(unarchiveCmd)
}

// targetRefs resolves the repositories named by <owner> [repo] and --batch.
// A batch entry written as owner/name keeps its own owner.
func targetRefs(args, batch []string) ([]github.RepoRef, error) {
	owner := args[0]

	names := batch
	if len(args) == 2 {
		names = append([]string{args[1]}, batch...)
	}

	refs := make([]github.RepoRef, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		switch {
		case name == "":
			continue
		case strings.Contains(name, "/"):
			ref, err := github.ParseRepoRef(name)
			if err != nil {
				return nil, err
			}
			refs = append(refs, ref)
		default:
			refs = append(refs, github.RepoRef{Owner: owner, Name: name})
		}
	}
	if len(refs) == 0 {
		return nil, fmt.Errorf("no repository given: pass <owner> <repo> or --batch name1,name2")
	}
	return refs, nil
}

func runArchiveState(cmd *cobra.Command, args, batch []string, pick, archived bool) error {
	client, err := clientFor(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	verb := "Unarchived"
	prompt := "Unarchive>"
	if archived {
		verb = "Archived"
		prompt = "Archive>"
	}

	// Only repositories whose state would change are offered
	refs, err := resolveTargets(cmd, client, args, batch, pick, prompt, func(repo github.Repository) bool {
		return repo.Archived != archived
	})
	if err != nil {
		return err
	}

	if len(refs) == 1 {
		ref := refs[0]
		op := client.UnarchiveRepository
		if archived {
			op = client.ArchiveRepository
		}
		if _, err := op(cmd.Context(), ref.Owner, ref.Name); err != nil {
			return err
		}
		printSuccess(out, "%s %s", verb, ref)
		return nil
	}

	operator := github.NewBatchOperator(client, cfg.GitHub.Concurrency)
	run := operator.UnarchiveMany
	if archived {
		run = operator.ArchiveMany
	}

	return printBatchResult(out, verb, run(cmd.Context(), refs))
}
