// Package prompt implements the line-based questions asked while adding
// and removing shows.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"bingers/internal/util"
)

var ErrAborted = errors.New("aborted by user")

const maxAttempts = 3

type Prompter struct {
	reader *bufio.Reader
	out    io.Writer
}

func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{reader: bufio.NewReader(in), out: out}
}

func (p *Prompter) readLine() (string, error) {
	input, err := p.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && strings.TrimSpace(input) != "" {
			return strings.TrimSpace(input), nil
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(p.out)
			return "", ErrAborted
		}
		return "", fmt.Errorf("error reading input: %w", err)
	}
	return strings.TrimSpace(input), nil
}

// String asks an open question. The answer may be empty.
func (p *Prompter) String(question string) (string, error) {
	fmt.Fprint(p.out, question+" ")
	return p.readLine()
}

// Confirm asks a yes/no question. An empty answer picks defaultYes.
func (p *Prompter) Confirm(question string, defaultYes bool) (bool, error) {
	hint := util.Iif(defaultYes, "[Y/n]", "[y/N]")
	for attempt := 0; attempt < maxAttempts; attempt++ {
		fmt.Fprintf(p.out, "%s %s ", question, hint)
		answer, err := p.readLine()
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "":
			return defaultYes, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintf(p.out, "%s Please answer 'y' or 'n'.\n", util.Yellow("?"))
	}
	return false, fmt.Errorf("no valid answer after %d attempts", maxAttempts)
}

// Choose prints a numbered list and returns the zero-based index of the
// selected option. An empty answer or "q" aborts.
func (p *Prompter) Choose(title string, options []string) (int, error) {
	if len(options) == 0 {
		return 0, errors.New("nothing to choose from")
	}

	fmt.Fprintln(p.out, title)
	for i, opt := range options {
		fmt.Fprintf(p.out, "  [%s] %s\n", util.Cyan(strconv.Itoa(i+1)), opt)
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		fmt.Fprintf(p.out, "Select 1-%d (empty or 'q' to abort): ", len(options))
		answer, err := p.readLine()
		if err != nil {
			return 0, err
		}
		if answer == "" || strings.EqualFold(answer, "q") {
			return 0, ErrAborted
		}
		n, err := strconv.Atoi(answer)
		if err == nil && n >= 1 && n <= len(options) {
			return n - 1, nil
		}
		fmt.Fprintf(p.out, "%s '%s' is not a valid selection.\n", util.Yellow("?"), answer)
	}
	return 0, fmt.Errorf("no valid selection after %d attempts", maxAttempts)
}
