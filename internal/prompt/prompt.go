// Package prompt reads master keys from the controlling terminal with
// echo disabled.
package prompt

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/term"
)

// Terminal prompts on stderr and reads from stdin. It satisfies the
// resolver's prompter contract only when stdin is a real terminal.
type Terminal struct {
	in  *os.File
	out *os.File
}

// NewTerminal creates a prompter bound to the process's stdin/stderr.
func NewTerminal() *Terminal {
	return &Terminal{in: os.Stdin, out: os.Stderr}
}

// Available reports whether stdin can prompt. Hosts running headless pass
// a nil prompter to the resolver instead.
func (t *Terminal) Available() bool {
	return term.IsTerminal(int(t.in.Fd()))
}

// PromptKey reads a master key without echoing it. The prompt names the
// vault and the placeholder account so the user knows which key is wanted.
func (t *Terminal) PromptKey(ctx context.Context, vaultName, username string) ([]byte, error) {
	if !t.Available() {
		return nil, fmt.Errorf("stdin is not a terminal")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fmt.Fprintf(t.out, "Enter %s for vault %s: ", username, vaultName)
	key, err := term.ReadPassword(int(t.in.Fd()))
	fmt.Fprintln(t.out)
	if err != nil {
		return nil, fmt.Errorf("could not read key: %w", err)
	}
	return key, nil
}
