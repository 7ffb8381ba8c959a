package cmd

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"supergithub/pkg/fuzzy"
	"supergithub/pkg/github"
)

// pickRepositories asks the user to mark repositories and returns their names
var pickRepositories = func(cmd *cobra.Command, prompt string, repos []github.Repository) ([]string, error) {
	options := make([]fuzzy.Option, 0, len(repos))
	for _, repo := range repos {
		options = append(options, fuzzy.Option{Value: repo.Name, Description: pickDescription(repo)})
	}

	finder := fuzzy.NewFzf(prompt, cmd.InOrStdin(), cmd.OutOrStdout())
	if err := finder.SetOptions(options); err != nil {
		return nil, err
	}
	return finder.SelectMany()
}

func pickDescription(repo github.Repository) string {
	parts := []string{visibility(repo.Private)}
	if repo.Language != "" {
		parts = append(parts, repo.Language)
	}
	if !repo.UpdatedAt.IsZero() {
		parts = append(parts, "updated "+humanize.Time(repo.UpdatedAt))
	}
	if repo.Description != "" {
		parts = append(parts, repo.Description)
	}
	return strings.Join(parts, ", ")
}

// pickTargets lists owner's repositories that pass keep and lets the user mark
// some of them
func pickTargets(cmd *cobra.Command, client github.APIClient, owner, prompt string, keep func(github.Repository) bool) ([]string, error) {
	if !isInteractive() {
		return nil, errNotInteractive
	}

	opts := github.ListOptions{Owner: owner, Limit: cfg.GitHub.MaxPages * 100}
	if owner == client.User() {
		// Listing as the authenticated user includes private repositories
		opts = github.ListOptions{Filter: "owner", Limit: cfg.GitHub.MaxPages * 100}
	}

	repos, err := client.ListRepositories(cmd.Context(), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list repositories: %w", err)
	}

	candidates := make([]github.Repository, 0, len(repos))
	for _, repo := range repos {
		if keep(repo) {
			candidates = append(candidates, repo)
		}
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no repositories of %s to choose from", owner)
	}

	return pickRepositories(cmd, prompt, candidates)
}

// resolveTargets combines <owner> [repo], --batch and, with --pick, the
// interactively chosen repositories
func resolveTargets(cmd *cobra.Command, client github.APIClient, args, batch []string, pick bool, prompt string, keep func(github.Repository) bool) ([]github.RepoRef, error) {
	if pick {
		picked, err := pickTargets(cmd, client, args[0], prompt, keep)
		if err != nil {
			return nil, err
		}
		batch = append(append([]string(nil), batch...), picked...)
	}
	return targetRefs(args, batch)
}
