// Package browse is the interactive front end of kbrowse: a line-driven
// session that keeps one listing query and re-renders it after every command.
package browse

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/manifoldco/promptui"

	"kbrowse/internal/common"
	"kbrowse/internal/listing"
	"kbrowse/internal/logging"
)

// Command represents a session command
type Command struct {
	Name        string
	Usage       string
	Description string
	Handler     func(arg string) (string, error)
}

// Session browses the knowledge base of a runtime context
type Session struct {
	commands    map[string]Command
	runtime     *common.RuntimeContext
	logger      *logging.Logger
	prompt      *promptui.Prompt
	stdin       io.ReadCloser
	stdout      io.WriteCloser
	out         io.Writer
	listing     listing.Listing
	query       listing.Query
	interactive bool
}

// NewSession creates a session showing the home listing
func NewSession(runtime *common.RuntimeContext) *Session {
	s := &Session{
		commands: make(map[string]Command),
		runtime:  runtime,
		logger:   runtime.Logger(),
		listing:  listing.Home(),
	}
	s.registerCommands()
	return s
}

// Listing returns the listing currently shown
func (s *Session) Listing() listing.Listing {
	return s.listing
}

// Query returns the current query
func (s *Session) Query() listing.Query {
	return s.query
}

// nopCloser wraps a io.Reader to provide a no-op Close method (for promptui)
type nopCloser struct {
	io.Reader
}

func (nopCloser) Close() error { return nil }

// nopWriteCloser wraps a io.Writer to provide a no-op Close method (for promptui)
type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// Start runs the session on the standard streams
func (s *Session) Start() error {
	return s.StartWithIO(os.Stdin, os.Stdout)
}

// StartWithIO runs the session until exit or end of input. Input other than
// os.Stdin is read line by line without prompts, which is how scripts and
// tests drive the session.
func (s *Session) StartWithIO(in io.Reader, out io.Writer) error {
	s.out = out
	s.stdin = nopCloser{in}
	s.stdout = nopWriteCloser{out}
	s.interactive = in == os.Stdin
	s.prompt = &promptui.Prompt{
		Label:       "kbrowse",
		AllowEdit:   true,
		HideEntered: false,
		Stdin:       s.stdin,
		Stdout:      s.stdout,
	}

	s.logger.Info("Browse session starting", "interactive", s.interactive)
	fmt.Fprintln(out, "Knowledge browser")
	fmt.Fprintln(out, "Type help for available commands")
	fmt.Fprintln(out)
	fmt.Fprint(out, s.render())

	if !s.interactive {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			line := scanner.Text()
			fmt.Fprintf(out, "> %s\n", line)
			if !s.processInput(line) {
				return nil
			}
		}
		if err := scanner.Err(); err != nil {
			return err
		}
		return s.runtime.Flush()
	}

	for {
		result, err := s.prompt.Run()
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			fmt.Fprintln(out, "Goodbye!")
			return s.runtime.Flush()
		}
		if err != nil {
			s.logger.Error("Prompt failed", "error", err)
			fmt.Fprintf(out, "Prompt failed: %v\n", err)
			return err
		}

		if !s.processInput(result) {
			return nil
		}
	}
}

// processInput runs one command line.
// Returns true if processing should continue, false if the session should end.
func (s *Session) processInput(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return true
	}

	name, arg, _ := strings.Cut(trimmed, " ")
	name = strings.ToLower(name)
	arg = strings.TrimSpace(arg)

	if name == "exit" || name == "quit" {
		if err := s.runtime.Flush(); err != nil {
			fmt.Fprintf(s.out, "Error: %v\n", err)
		}
		fmt.Fprintln(s.out, "Goodbye!")
		return false
	}

	command, exists := s.commands[name]
	if !exists {
		fmt.Fprintf(s.out, "Unknown command %q, type help for available commands\n", name)
		return true
	}

	s.logger.Info("Command executed", "command", name, "arg", arg)
	response, err := command.Handler(arg)
	if err != nil {
		s.logger.Warn("Command failed", "command", name, "error", err)
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return true
	}
	if response != "" {
		fmt.Fprint(s.out, response)
	}
	return true
}

// choose asks the user to pick one of items. Scripted sessions cannot pick.
func (s *Session) choose(label string, items []string, usage string) (string, error) {
	if !s.interactive {
		return "", fmt.Errorf("usage: %s", usage)
	}
	sel := promptui.Select{
		Label:  label,
		Items:  items,
		Stdin:  s.stdin,
		Stdout: s.stdout,
	}
	_, value, err := sel.Run()
	if err != nil {
		return "", fmt.Errorf("selection cancelled: %w", err)
	}
	return value, nil
}
