package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"supergithub/pkg/github"
)

// deleteConfirmationPhrase must be typed to delete without --yes
const deleteConfirmationPhrase = "DELETE"

var (
	deleteBatch []string
	deleteYes   bool
	deleteForce bool
	deletePick  bool
)

var deleteCmd = githubCommand(&cobra.Command{
	Use:     "delete <owner> [repo]",
	Aliases: []string{"rm"},
	Short:   "Permanently delete one or more repositories",
	Long: `Permanently delete repositories. This cannot be undone.

Unless --yes or --force is given you must type DELETE on an interactive
terminal. The token needs the delete_repo scope.

Examples:
  supergithub delete octocat temp-experiment
  supergithub delete octocat --batch temp-a,temp-b --yes
  supergithub delete octocat --pick`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runDelete,
})

func init() {
	deleteCmd.Flags().StringSliceVarP(&deleteBatch, "batch", "b", nil, "Comma-separated repository names to delete")
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Skip the typed confirmation")
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Alias for --yes")
	deleteCmd.Flags().BoolVarP(&deletePick, "pick", "p", false, "Choose repositories interactively")
	rootCmd.AddCommand(deleteCmd)
}

// tokenInspector is implemented by clients that know their token scopes
type tokenInspector interface {
	TokenInfo() *github.TokenInfo
}

func runDelete(cmd *cobra.Command, args []string) error {
	client, err := clientFor(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	refs, err := resolveTargets(cmd, client, args, deleteBatch, deletePick, "Delete>", func(github.Repository) bool {
		return true
	})
	if err != nil {
		return err
	}

	if inspector, ok := client.(tokenInspector); ok {
		if missing := inspector.TokenInfo().MissingScopes(github.ScopeDeleteRepo); len(missing) > 0 {
			printWarning(out, "Token lacks the %s scope; GitHub will likely refuse the deletion", strings.Join(missing, ", "))
		}
	}

	confirmed := deleteYes || deleteForce
	if !confirmed {
		names := make([]string, len(refs))
		for i, ref := range refs {
			names[i] = ref.String()
		}
		prompt := fmt.Sprintf("This will permanently delete: %s", strings.Join(names, ", "))

		confirmed, err = confirmPhrase(cmd, prompt, deleteConfirmationPhrase)
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Fprintln(out, "Deletion cancelled.")
			return nil
		}
	}

	if len(refs) == 1 {
		ref := refs[0]
		if err := client.DeleteRepository(cmd.Context(), ref.Owner, ref.Name, confirmed); err != nil {
			return err
		}
		printSuccess(out, "Deleted %s", ref)
		return nil
	}

	result, err := github.NewBatchOperator(client, cfg.GitHub.Concurrency).DeleteMany(cmd.Context(), refs, confirmed)
	if err != nil {
		return err
	}
	return printBatchResult(out, "Deleted", result)
}
