package fuzzy

import (
	"fmt"
	"io"
	"strings"

	fzf "github.com/junegunn/fzf/src"
	logger "github.com/sirupsen/logrus"
)

const columnSeparator = "  │  "

// FzfRunner defines the interface for running fzf
type FzfRunner interface {
	Run(opts *fzf.Options) (int, error)
}

// DefaultFzfRunner implements the FzfRunner interface using the real fzf library
type DefaultFzfRunner struct{}

// Run executes fzf with the given options
func (r *DefaultFzfRunner) Run(opts *fzf.Options) (int, error) {
	return fzf.Run(opts)
}

// FzfFinder picks several options with fzf and falls back to a numbered list
// when fzf cannot start
type FzfFinder struct {
	options []Option
	prompt  string
	runner  FzfRunner
	in      io.Reader
	out     io.Writer
}

// NewFzf creates a new fzf-style fuzzy finder; in and out serve the fallback
func NewFzf(prompt string, in io.Reader, out io.Writer) *FzfFinder {
	return NewFzfWithRunner(prompt, &DefaultFzfRunner{}, in, out)
}

// NewFzfWithRunner creates a new fzf-style fuzzy finder with a custom runner (for testing)
func NewFzfWithRunner(prompt string, runner FzfRunner, in io.Reader, out io.Writer) *FzfFinder {
	return &FzfFinder{
		prompt:  prompt,
		options: make([]Option, 0),
		runner:  runner,
		in:      in,
		out:     out,
	}
}

// SetOptions sets the available options for selection
func (f *FzfFinder) SetOptions(options []Option) error {
	if options == nil {
		return fmt.Errorf("options cannot be nil")
	}

	f.options = make([]Option, len(options))
	copy(f.options, options)
	return nil
}

func displayText(option Option) string {
	if option.Description == "" {
		return option.Value
	}
	return option.Value + columnSeparator + option.Description
}

// SelectMany runs fzf in multi-select mode and returns the marked values in
// the order fzf reports them
func (f *FzfFinder) SelectMany() ([]string, error) {
	if len(f.options) == 0 {
		return nil, fmt.Errorf("no options available")
	}

	opts, err := fzf.ParseOptions(true, []string{
		"--prompt=" + f.prompt + " ",
		"--multi",
		"--height=40%",
		"--layout=reverse",
		"--cycle",
		"--header=TAB marks a repository, ENTER confirms",
		"--tiebreak=length",
		"--no-mouse",
		"--border=none",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse fzf options: %w", err)
	}

	// Both channels are buffered for every option so fzf never blocks on them
	input := make(chan string, len(f.options))
	for _, option := range f.options {
		input <- displayText(option)
	}
	close(input)
	output := make(chan string, len(f.options))

	opts.Input = input
	opts.Output = output

	exitCode, err := f.runner.Run(opts)
	close(output)
	if err != nil {
		logger.WithError(err).Debug("fzf unavailable, using numbered list")
		return f.fallbackSelect()
	}
	if exitCode != fzf.ExitOk {
		return nil, ErrNoSelection
	}

	var values []string
	for line := range output {
		value, _, _ := strings.Cut(line, columnSeparator)
		if value = strings.TrimSpace(value); value != "" {
			values = append(values, value)
		}
	}
	if len(values) == 0 {
		return nil, ErrNoSelection
	}
	return values, nil
}

// fallbackSelect provides a simple selection for when fzf fails
func (f *FzfFinder) fallbackSelect() ([]string, error) {
	finder := New(f.prompt, f.in, f.out)
	for _, option := range f.options {
		finder.AddOption(option.Value, option.Description)
	}
	return finder.SelectMany()
}
