package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"supergithub/pkg/github"
)

var updateFlags struct {
	name          string
	description   string
	homepage      string
	private       string
	archived      string
	hasIssues     string
	hasProjects   string
	hasWiki       string
	defaultBranch string
}

var updateCmd = githubCommand(&cobra.Command{
	Use:   "update <owner> <repo>",
	Short: "Update repository settings",
	Long: `Update repository settings. Only the flags you pass are sent to GitHub.

Boolean flags accept true/false, yes/no, y/n, sim/não, on/off and 1/0.

Examples:
  supergithub update octocat hello --description "Greeting service"
  supergithub update octocat hello --private yes --has-wiki no
  supergithub update octocat hello --name hello-world --default-branch main`,
	Args: cobra.ExactArgs(2),
	RunE: runUpdate,
})

func init() {
	f := updateCmd.Flags()
	f.StringVar(&updateFlags.name, "name", "", "Rename the repository")
	f.StringVar(&updateFlags.description, "description", "", "Repository description")
	f.StringVar(&updateFlags.homepage, "homepage", "", "Homepage URL")
	f.StringVar(&updateFlags.private, "private", "", "Make the repository private (true/false)")
	f.StringVar(&updateFlags.archived, "archived", "", "Archive or unarchive (true/false)")
	f.StringVar(&updateFlags.hasIssues, "has-issues", "", "Enable issues (true/false)")
	f.StringVar(&updateFlags.hasProjects, "has-projects", "", "Enable projects (true/false)")
	f.StringVar(&updateFlags.hasWiki, "has-wiki", "", "Enable the wiki (true/false)")
	f.StringVar(&updateFlags.defaultBranch, "default-branch", "", "Default branch")
	rootCmd.AddCommand(updateCmd)
}

// parseBool accepts English and Portuguese spellings of yes and no
func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "yes", "y", "sim", "s", "on", "1":
		return true, nil
	case "false", "f", "no", "n", "não", "nao", "off", "0":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q: use true or false", s)
}

// buildUpdate turns the flags the user changed into a sparse patch
func buildUpdate(cmd *cobra.Command) (github.RepositoryUpdate, error) {
	var update github.RepositoryUpdate
	flags := cmd.Flags()

	strs := []struct {
		flag  string
		value string
		dst   **string
	}{
		{"name", updateFlags.name, &update.Name},
		{"description", updateFlags.description, &update.Description},
		{"homepage", updateFlags.homepage, &update.Homepage},
		{"default-branch", updateFlags.defaultBranch, &update.DefaultBranch},
	}
	for _, s := range strs {
		if flags.Changed(s.flag) {
			v := s.value
			*s.dst = &v
		}
	}

	bools := []struct {
		flag  string
		value string
		dst   **bool
	}{
		{"private", updateFlags.private, &update.Private},
		{"archived", updateFlags.archived, &update.Archived},
		{"has-issues", updateFlags.hasIssues, &update.HasIssues},
		{"has-projects", updateFlags.hasProjects, &update.HasProjects},
		{"has-wiki", updateFlags.hasWiki, &update.HasWiki},
	}
	for _, b := range bools {
		if !flags.Changed(b.flag) {
			continue
		}
		v, err := parseBool(b.value)
		if err != nil {
			return update, fmt.Errorf("--%s: %w", b.flag, err)
		}
		*b.dst = &v
	}

	return update, nil
}

func runUpdate(cmd *cobra.Command, args []string) error {
	owner, name := args[0], args[1]

	update, err := buildUpdate(cmd)
	if err != nil {
		return err
	}
	if update.IsEmpty() {
		return fmt.Errorf("nothing to update: pass at least one setting flag")
	}
	if err := update.Validate(); err != nil {
		return err
	}

	client, err := clientFor(cmd)
	if err != nil {
		return err
	}

	repo, err := client.UpdateRepository(cmd.Context(), owner, name, update)
	if err != nil {
		return err
	}

	printSuccess(cmd.OutOrStdout(), "Updated %s", repo.FullName)
	return nil
}
