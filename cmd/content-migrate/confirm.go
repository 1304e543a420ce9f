package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/David-Botos/content-migrate/pkg/cleanup"
)

// promptConfirmer accepts only an explicit "oui"
type promptConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

func newPromptConfirmer(in io.Reader, out io.Writer) *promptConfirmer {
	return &promptConfirmer{in: bufio.NewReader(in), out: out}
}

func (p *promptConfirmer) Confirm(_ context.Context, prompt string) (bool, error) {
	fmt.Fprintf(p.out, "%s ", prompt)
	answer, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("reading confirmation: %w", err)
	}
	return strings.EqualFold(strings.TrimSpace(answer), "oui"), nil
}

type autoConfirmer struct{}

func (autoConfirmer) Confirm(context.Context, string) (bool, error) { return true, nil }

// confirmerFor picks how fix asks for approval. Without a terminal the
// operator has to pass --yes.
func (a *app) confirmerFor(yes bool) (cleanup.Confirmer, error) {
	if yes {
		return autoConfirmer{}, nil
	}
	if !a.isTerminal() {
		return nil, withCode(exitUsage, errors.New("stdin is not a terminal: pass --yes to apply fixes non-interactively"))
	}
	return newPromptConfirmer(a.in, a.out), nil
}
