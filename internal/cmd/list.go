package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/caarlos0/tablewriter"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"supergithub/pkg/github"
)

var (
	listUser         string
	listType         string
	listSort         string
	listLimit        int
	listDetails      bool
	listArchivedOnly bool
	listActiveOnly   bool
	listPrivateOnly  bool
	listPublicOnly   bool
	listOutput       string
)

var listCmd = githubCommand(&cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List repositories",
	Long: `List repositories of the authenticated user, or of another user with --user.

For your own repositories --type accepts all, public and private (visibility)
as well as owner and member. For another user it accepts all, owner and member.

Examples:
  supergithub list
  supergithub list --type private --sort created --limit 100
  supergithub list --user octocat --details
  supergithub list --archived-only --output yaml`,
	Args: cobra.NoArgs,
	RunE: runList,
})

func init() {
	listCmd.Flags().StringVarP(&listUser, "user", "u", "", "List repositories of this user instead of your own")
	listCmd.Flags().StringVarP(&listType, "type", "t", "all", "Repository type or visibility: all, public, private, owner, member")
	listCmd.Flags().StringVarP(&listSort, "sort", "s", "updated", "Sort by: created, updated, pushed, full_name")
	listCmd.Flags().IntVarP(&listLimit, "limit", "l", github.DefaultListLimit, "Maximum number of repositories to fetch")
	listCmd.Flags().BoolVarP(&listDetails, "details", "d", false, "Show description, size and topics")
	listCmd.Flags().BoolVar(&listArchivedOnly, "archived-only", false, "Show only archived repositories")
	listCmd.Flags().BoolVar(&listActiveOnly, "active-only", false, "Show only repositories that are not archived")
	listCmd.Flags().BoolVar(&listPrivateOnly, "private-only", false, "Show only private repositories")
	listCmd.Flags().BoolVar(&listPublicOnly, "public-only", false, "Show only public repositories")
	listCmd.Flags().StringVarP(&listOutput, "output", "o", "table", "Output format: table or yaml")
	listCmd.MarkFlagsMutuallyExclusive("archived-only", "active-only")
	listCmd.MarkFlagsMutuallyExclusive("private-only", "public-only")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	if listOutput != "table" && listOutput != "yaml" {
		return fmt.Errorf("unsupported output format %q: use table or yaml", listOutput)
	}

	client, err := clientFor(cmd)
	if err != nil {
		return err
	}

	repos, err := client.ListRepositories(cmd.Context(), github.ListOptions{
		Owner:  listUser,
		Filter: listType,
		Sort:   listSort,
		Limit:  listLimit,
	})
	if err != nil {
		return fmt.Errorf("failed to list repositories: %w", err)
	}

	repos = filterRepositories(repos)
	out := cmd.OutOrStdout()

	if listOutput == "yaml" {
		return yaml.NewEncoder(out).Encode(repos)
	}

	if len(repos) == 0 {
		fmt.Fprintln(out, "No repositories found")
		return nil
	}

	headers := []string{"Name", "Visibility", "Language", "Stars", "Updated", "Status"}
	if listDetails {
		headers = append(headers, "Size", "Topics", "Description")
	}

	if err := tablewriter.Render(out, repos, headers, repositoryRow); err != nil {
		return err
	}

	fmt.Fprintf(out, "\n%d repositories\n", len(repos))
	return nil
}

func filterRepositories(repos []github.Repository) []github.Repository {
	filtered := make([]github.Repository, 0, len(repos))
	for _, repo := range repos {
		switch {
		case listArchivedOnly && !repo.Archived,
			listActiveOnly && repo.Archived,
			listPrivateOnly && !repo.Private,
			listPublicOnly && repo.Private:
			continue
		}
		filtered = append(filtered, repo)
	}
	return filtered
}

func repositoryRow(repo github.Repository) ([]string, error) {
	status := "active"
	if repo.Archived {
		status = "archived"
	}
	if repo.Fork {
		status += ", fork"
	}

	row := []string{
		repo.FullName,
		visibility(repo.Private),
		orDash(repo.Language),
		strconv.Itoa(repo.Stars),
		humanize.Time(repo.UpdatedAt),
		status,
	}

	if listDetails {
		row = append(row,
			humanize.Bytes(uint64(repo.SizeKB)*1024),
			orDash(strings.Join(repo.Topics, ",")),
			orDash(repo.Description),
		)
	}
	return row, nil
}
