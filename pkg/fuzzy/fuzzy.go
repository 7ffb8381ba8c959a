// Package fuzzy lets the user pick items from a list on the terminal, through
// fzf when it can run and a numbered list otherwise.
package fuzzy

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrNoSelection is returned when the user picks nothing or aborts
var ErrNoSelection = errors.New("no selection made")

// Option represents a selectable option in the fuzzy finder
type Option struct {
	Value       string
	Description string
}

// Finder is a numbered-list picker reading its answer from in
type Finder struct {
	prompt  string
	options []Option
	in      io.Reader
	out     io.Writer
}

// New creates a numbered-list finder with the given prompt
func New(prompt string, in io.Reader, out io.Writer) *Finder {
	return &Finder{
		prompt:  prompt,
		options: make([]Option, 0),
		in:      in,
		out:     out,
	}
}

// AddOption adds an option to the fuzzy finder
func (f *Finder) AddOption(value, description string) {
	f.options = append(f.options, Option{Value: value, Description: description})
}

// GetOptions returns all available options
func (f *Finder) GetOptions() []Option {
	return f.options
}

// SelectMany lists the options and reads a selection such as "1 3-5", "2,4"
// or "all". Values are returned in listing order.
func (f *Finder) SelectMany() ([]string, error) {
	if len(f.options) == 0 {
		return nil, fmt.Errorf("no options available")
	}

	fmt.Fprintln(f.out, f.prompt)
	fmt.Fprintln(f.out, strings.Repeat("-", len(f.prompt)))
	for i, option := range f.options {
		fmt.Fprintf(f.out, "%3d. %s", i+1, option.Value)
		if option.Description != "" {
			fmt.Fprintf(f.out, " - %s", option.Description)
		}
		fmt.Fprintln(f.out)
	}
	fmt.Fprintf(f.out, "\nSelect options (e.g. 1 3-%d, or all): ", len(f.options))

	input, err := bufio.NewReader(f.in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	picked, err := parseSelection(input, len(f.options))
	if err != nil {
		return nil, err
	}

	values := make([]string, 0, len(picked))
	for _, i := range picked {
		values = append(values, f.options[i].Value)
	}
	return values, nil
}

// parseSelection turns the typed selection into sorted zero-based indexes
func parseSelection(input string, n int) ([]int, error) {
	input = strings.TrimSpace(strings.ToLower(input))
	if input == "" {
		return nil, ErrNoSelection
	}
	if input == "all" || input == "*" {
		all := make([]int, n)
		for i := range all {
			all[i] = i
		}
		return all, nil
	}

	chosen := make([]bool, n)
	fields := strings.FieldsFunc(input, func(r rune) bool { return r == ',' || r == ' ' })
	for _, field := range fields {
		lo, hi, isRange := strings.Cut(field, "-")
		from, err := strconv.Atoi(lo)
		if err != nil {
			return nil, fmt.Errorf("invalid selection: %s", field)
		}
		to := from
		if isRange {
			if to, err = strconv.Atoi(hi); err != nil {
				return nil, fmt.Errorf("invalid selection: %s", field)
			}
		}
		if from < 1 || to > n || from > to {
			return nil, fmt.Errorf("selection out of range (1-%d): %s", n, field)
		}
		for i := from; i <= to; i++ {
			chosen[i-1] = true
		}
	}

	var picked []int
	for i, ok := range chosen {
		if ok {
			picked = append(picked, i)
		}
	}
	return picked, nil
}
