package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"supergithub/pkg/config"
	"supergithub/pkg/github"
)

// annotationGitHub marks commands that talk to the GitHub API and need a token
const annotationGitHub = "supergithub/github"

var (
	verbose bool

	// cfg is loaded before any command that needs it runs
	cfg *config.Config

	// newClient builds the API client used by GitHub commands
	newClient = defaultClient
)

var rootCmd = &cobra.Command{
	Use:   "supergithub",
	Short: "Manage GitHub repositories and generate Brazilian official documents",
	Long: `Supergithub is a command-line tool to manage GitHub repositories in bulk and to
produce Brazilian official documents.

It lists, inspects, archives, deletes, updates, tags and creates repositories,
organizes an account by archiving stale and removing temporary repositories, and
renders ofícios and memorandos from LaTeX templates following the federal
writing manual.

Authentication uses a personal access token from GH_TOKEN or from
~/.supergithub/config.yaml.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: preRun,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		printFailure(rootCmd.ErrOrStderr(), "%v", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(initCmd)
}

// githubCommand marks cmd as requiring GitHub authentication
func githubCommand(cmd *cobra.Command) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[annotationGitHub] = "true"
	return cmd
}

func needsGitHub(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[annotationGitHub] == "true" {
			return true
		}
	}
	return false
}

func preRun(cmd *cobra.Command, _ []string) error {
	if verbose || os.Getenv("DEBUG") == "true" {
		logger.SetLevel(logger.DebugLevel)
	}

	// init must work even when the existing file is broken
	if cmd == initCmd {
		return nil
	}

	loaded, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load supergithub config: %w", err)
	}
	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	cfg = loaded

	if needsGitHub(cmd) {
		if err := cfg.RequireToken(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s\n\n", github.GetAuthInstructions())
			return err
		}
	}

	return nil
}

func defaultClient(ctx context.Context, c *config.Config) (github.APIClient, error) {
	opts := []github.Option{
		github.WithTimeout(c.GitHub.Timeout),
		github.WithMaxPages(c.GitHub.MaxPages),
		github.WithLogger(logger.WithField("component", "github")),
	}
	if c.GitHub.BaseURL != "" {
		opts = append(opts, github.WithBaseURL(c.GitHub.BaseURL))
	}
	if c.GitHub.ReadRetries > 0 {
		retry := github.DefaultRetryConfig()
		retry.MaxRetries = c.GitHub.ReadRetries
		opts = append(opts, github.WithRetryConfig(retry))
	}

	client, err := github.NewClient(ctx, c.GitHub.Token, opts...)
	if err != nil {
		if github.IsAuthError(err) {
			return nil, fmt.Errorf("authentication failed: %w", err)
		}
		return nil, err
	}

	logger.WithField("user", client.User()).Debug("GitHub client ready")
	return client, nil
}

// clientFor builds the API client for a GitHub command
func clientFor(cmd *cobra.Command) (github.APIClient, error) {
	return newClient(cmd.Context(), cfg)
}
