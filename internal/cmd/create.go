package cmd

import (
	"github.com/spf13/cobra"

	"supergithub/pkg/github"
)

var createFlags struct {
	description   string
	homepage      string
	private       bool
	noIssues      bool
	noProjects    bool
	noWiki        bool
	autoInit      bool
	defaultBranch string
	topics        []string
}

var createCmd = githubCommand(&cobra.Command{
	Use:   "create <name>",
	Short: "Create a repository for the authenticated user",
	Long: `Create a repository owned by the authenticated user.

When --default-branch differs from the branch GitHub assigns, the repository
is renamed to it afterwards; a failure there is only reported as a warning.

Examples:
  supergithub create my-tool --description "Small tool" --private --auto-init
  supergithub create site --homepage https://example.com --topics web,static`,
	Args: cobra.ExactArgs(1),
	RunE: runCreate,
})

func init() {
	f := createCmd.Flags()
	f.StringVar(&createFlags.description, "description", "", "Repository description")
	f.StringVar(&createFlags.homepage, "homepage", "", "Homepage URL")
	f.BoolVar(&createFlags.private, "private", false, "Create a private repository")
	f.BoolVar(&createFlags.noIssues, "no-issues", false, "Disable issues")
	f.BoolVar(&createFlags.noProjects, "no-projects", false, "Disable projects")
	f.BoolVar(&createFlags.noWiki, "no-wiki", false, "Disable the wiki")
	f.BoolVar(&createFlags.autoInit, "auto-init", false, "Create an initial commit with a README")
	f.StringVar(&createFlags.defaultBranch, "default-branch", "main", "Default branch name")
	f.StringSliceVar(&createFlags.topics, "topics", nil, "Comma-separated topics to set after creation")
	rootCmd.AddCommand(createCmd)
}

func runCreate(cmd *cobra.Command, args []string) error {
	client, err := clientFor(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	repoConfig := github.DefaultRepositoryConfig(args[0])
	repoConfig.Description = createFlags.description
	repoConfig.Homepage = createFlags.homepage
	repoConfig.Private = createFlags.private
	repoConfig.Features.Issues = !createFlags.noIssues
	repoConfig.Features.Projects = !createFlags.noProjects
	repoConfig.Features.Wiki = !createFlags.noWiki
	repoConfig.AutoInit = createFlags.autoInit
	repoConfig.DefaultBranch = createFlags.defaultBranch

	if len(createFlags.topics) > 0 {
		if err := github.ValidateTopics(github.NormalizeTopics(createFlags.topics)); err != nil {
			return err
		}
	}

	repo, err := client.CreateRepository(cmd.Context(), repoConfig)
	if err != nil {
		return err
	}
	printSuccess(out, "Created %s (%s)", repo.FullName, visibility(repo.Private))
	if repo.HTMLURL != "" {
		printInfo(out, "%s", repo.HTMLURL)
	}
	if repoConfig.DefaultBranch != "" && repo.DefaultBranch != repoConfig.DefaultBranch {
		printWarning(out, "Default branch is %s, not %s", repo.DefaultBranch, repoConfig.DefaultBranch)
	}

	if len(createFlags.topics) > 0 {
		topics, err := client.SetTopics(cmd.Context(), repo.Owner, repo.Name, createFlags.topics)
		if err != nil {
			return err
		}
		printTopics(cmd, repo.FullName, topics)
	}

	return nil
}
