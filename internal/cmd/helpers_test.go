package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"supergithub/pkg/config"
	"supergithub/pkg/github"
	"supergithub/pkg/github/githubtest"
)

// resetFlags restores every flag of cmd and its children to its default so
// package-level commands can be executed repeatedly
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)

	for _, child := range cmd.Commands() {
		resetFlags(child)
	}
}

type execOptions struct {
	stdin       string
	interactive bool
	env         map[string]string
}

// executeCommand runs the root command against fake with an isolated home
// directory and a token in the environment
func executeCommand(t *testing.T, fake *githubtest.Client, opts execOptions, args ...string) (string, error) {
	t.Helper()

	t.Setenv("HOME", t.TempDir())
	t.Setenv("GH_TOKEN", "test-token")
	for k, v := range opts.env {
		t.Setenv(k, v)
	}

	origClient, origInteractive := newClient, isInteractive
	newClient = func(context.Context, *config.Config) (github.APIClient, error) {
		return fake, nil
	}
	isInteractive = func() bool { return opts.interactive }
	t.Cleanup(func() {
		newClient, isInteractive = origClient, origInteractive
		resetFlags(rootCmd)
	})
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(opts.stdin))
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func daysAgo(days int) time.Time {
	return time.Now().Add(-time.Duration(days) * 24 * time.Hour)
}

func newFake() *githubtest.Client {
	return githubtest.New("octocat").Add(
		github.Repository{Name: "hello", Language: "Go", Stars: 12, UpdatedAt: daysAgo(3), Topics: []string{"go"}},
		github.Repository{Name: "secret", Private: true, UpdatedAt: daysAgo(10)},
		github.Repository{Name: "old-site", Archived: true, Language: "HTML", UpdatedAt: daysAgo(800)},
	)
}
