package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"supergithub/pkg/github"
)

var topicsValues []string

var topicsCmd = githubCommand(&cobra.Command{
	Use:   "topics",
	Short: "Manage repository topics",
	Long: fmt.Sprintf(`List, replace or extend repository topics.

Topics are lowercased and at most %d are kept.`, github.MaxTopics),
})

var topicsListCmd = &cobra.Command{
	Use:   "list <owner> <repo>",
	Short: "List repository topics",
	Args:  cobra.ExactArgs(2),
	RunE:  runTopicsList,
}

var topicsSetCmd = &cobra.Command{
	Use:   "set <owner> <repo> --topics a,b",
	Short: "Replace all repository topics",
	Args:  cobra.ExactArgs(2),
	RunE:  runTopicsSet,
}

var topicsAddCmd = &cobra.Command{
	Use:   "add <owner> <repo> --topics a,b",
	Short: "Add topics, keeping the existing ones",
	Args:  cobra.ExactArgs(2),
	RunE:  runTopicsAdd,
}

func init() {
	for _, c := range []*cobra.Command{topicsSetCmd, topicsAddCmd} {
		c.Flags().StringSliceVar(&topicsValues, "topics", nil, "Comma-separated topics")
		_ = c.MarkFlagRequired("topics")
	}
	topicsCmd.AddCommand(topicsListCmd, topicsSetCmd, topicsAddCmd)
	rootCmd.AddCommand(topicsCmd)
}

func runTopicsList(cmd *cobra.Command, args []string) error {
	client, err := clientFor(cmd)
	if err != nil {
		return err
	}

	topics, err := client.GetTopics(cmd.Context(), args[0], args[1])
	if err != nil {
		return err
	}

	printTopics(cmd, args[0]+"/"+args[1], topics)
	return nil
}

func runTopicsSet(cmd *cobra.Command, args []string) error {
	client, err := clientFor(cmd)
	if err != nil {
		return err
	}

	if len(topicsValues) > github.MaxTopics {
		printWarning(cmd.OutOrStdout(), "Only the first %d topics are kept", github.MaxTopics)
	}
	if err := github.ValidateTopics(github.NormalizeTopics(topicsValues)); err != nil {
		return err
	}

	topics, err := client.SetTopics(cmd.Context(), args[0], args[1], topicsValues)
	if err != nil {
		return err
	}

	printSuccess(cmd.OutOrStdout(), "Topics replaced")
	printTopics(cmd, args[0]+"/"+args[1], topics)
	return nil
}

func runTopicsAdd(cmd *cobra.Command, args []string) error {
	client, err := clientFor(cmd)
	if err != nil {
		return err
	}

	if err := github.ValidateTopics(github.MergeTopics(nil, topicsValues)); err != nil {
		return err
	}

	topics, err := client.AddTopics(cmd.Context(), args[0], args[1], topicsValues)
	if err != nil {
		return err
	}

	printSuccess(cmd.OutOrStdout(), "Topics added")
	printTopics(cmd, args[0]+"/"+args[1], topics)
	return nil
}

func printTopics(cmd *cobra.Command, repo string, topics []string) {
	out := cmd.OutOrStdout()
	if len(topics) == 0 {
		fmt.Fprintf(out, "%s has no topics\n", repo)
		return
	}
	fmt.Fprintf(out, "%s: %s\n", repo, strings.Join(topics, ", "))
}
