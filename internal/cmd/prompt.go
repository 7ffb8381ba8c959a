package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// isInteractive reports whether confirmations can be typed
var isInteractive = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

var errNotInteractive = errors.New("confirmation required but stdin is not a terminal; pass --yes to confirm")

// confirmPhrase asks the user to type phrase exactly
func confirmPhrase(cmd *cobra.Command, prompt, phrase string) (bool, error) {
	if !isInteractive() {
		return false, errNotInteractive
	}

	out := cmd.OutOrStdout()
	printWarning(out, "%s", prompt)
	fmt.Fprintf(out, "Type %q to confirm: ", phrase)

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}

	return strings.TrimSpace(line) == phrase, nil
}
