// Package prompt provides interactive prompts for the Moor CLI.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/moor-dev/moor/internal/config"
	"github.com/moor-dev/moor/internal/output"
	"golang.org/x/term"
)

// errCanceled is returned when the user aborts a prompt (EOF on stdin).
var errCanceled = errors.New("prompt canceled")

// IsCanceled reports whether err came from a user-canceled prompt.
func IsCanceled(err error) bool {
	return errors.Is(err, errCanceled)
}

func readErr(err error) error {
	if errors.Is(err, io.EOF) {
		return errCanceled
	}

	return fmt.Errorf("failed to read input: %w", err)
}

// Prompter handles interactive prompts.
type Prompter struct {
	out    *output.Writer
	reader *bufio.Reader
}

// New creates a new Prompter.
func New(out *output.Writer) *Prompter {
	return &Prompter{
		out:    out,
		reader: bufio.NewReader(os.Stdin),
	}
}

// CanPrompt returns true if interactive prompts are available.
func (p *Prompter) CanPrompt() bool {
	// Check if stdout is a terminal
	return term.IsTerminal(int(os.Stdout.Fd())) && !p.out.NoInput
}

// Confirm prompts for a yes/no confirmation.
func (p *Prompter) Confirm(message string, defaultValue bool) (bool, error) {
	defaultStr := "y/N"
	if defaultValue {
		defaultStr = "Y/n"
	}

	p.out.Print("%s [%s]: ", message, defaultStr)

	input, err := p.reader.ReadString('\n')
	if err != nil {
		return defaultValue, readErr(err)
	}

	input = strings.TrimSpace(strings.ToLower(input))
	if input == "" {
		return defaultValue, nil
	}

	return input == "y" || input == "yes", nil
}

// Token prompts for an agent token (hidden input).
func (p *Prompter) Token(prompt string) (string, error) {
	p.out.Print("%s: ", prompt)

	// Read token without echo
	token, err := term.ReadPassword(int(os.Stdin.Fd()))
	p.out.Println() // Print newline after hidden input

	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}

	return strings.TrimSpace(string(token)), nil
}

// Select prompts the user to select from a list of options.
func (p *Prompter) Select(message string, options []string) (int, error) {
	p.out.Println(message)
	for i, opt := range options {
		p.out.Print("  [%d] %s\n", i+1, opt)
	}
	p.out.Println()

	for {
		p.out.Print("Select [1-%d]: ", len(options))

		input, err := p.reader.ReadString('\n')
		if err != nil {
			return -1, readErr(err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		num, err := strconv.Atoi(input)
		if err != nil || num < 1 || num > len(options) {
			p.out.Warning("Invalid selection. Please enter a number between 1 and %d", len(options))
			continue
		}

		return num - 1, nil
	}
}

// SelectHost prompts the user to select a host from the inventory, showing
// last-known reachability next to each entry when available.
func SelectHost(hosts []config.Host, statuses map[string]string, out *output.Writer) (*config.Host, error) {
	out.Println()
	out.Print("Configured hosts:\n\n")

	for i, h := range hosts {
		status := ""
		switch statuses[h.Name] {
		case "online":
			status = "[online]"
		case "offline":
			status = "[offline]"
		case "checking":
			status = "[checking]"
		}
		out.Print("  [%d] %-20s %s %s\n", i+1, h.Name, h.BaseURL(), status)
	}

	out.Println()

	reader := bufio.NewReader(os.Stdin)
	for {
		if len(hosts) == 1 {
			out.Print("Select host [1]: ")
		} else {
			out.Print("Select host [1-%d]: ", len(hosts))
		}

		input, err := reader.ReadString('\n')
		if err != nil {
			return nil, readErr(err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		num, err := strconv.Atoi(input)
		if err != nil || num < 1 || num > len(hosts) {
			out.Warning("Invalid selection. Please enter a number between 1 and %d", len(hosts))
			continue
		}

		return &hosts[num-1], nil
	}
}

// SelectSession prompts the user to pick a session name from a list.
func SelectSession(sessions []string, out *output.Writer) (string, error) {
	out.Println()
	out.Print("Sessions:\n\n")

	for i, name := range sessions {
		out.Print("  [%d] %s\n", i+1, name)
	}

	out.Println()

	reader := bufio.NewReader(os.Stdin)
	for {
		out.Print("Select session [1-%d]: ", len(sessions))

		input, err := reader.ReadString('\n')
		if err != nil {
			return "", readErr(err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		num, err := strconv.Atoi(input)
		if err != nil || num < 1 || num > len(sessions) {
			out.Warning("Invalid selection. Please enter a number between 1 and %d", len(sessions))
			continue
		}

		return sessions[num-1], nil
	}
}
