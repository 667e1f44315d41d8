package safety

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Options controls confirmation of state-changing actions.
type Options struct {
	// Prompt asks before each action. Without it every action proceeds.
	Prompt bool
	// Yes answers every prompt with yes.
	Yes bool
	// DryRun requests are validated by EC2 without side effects, so they are
	// never prompted for.
	DryRun bool
}

// Prompter asks yes/no questions on out and reads answers from in.
type Prompter struct {
	opts Options
	in   *bufio.Reader
	out  io.Writer
}

func NewPrompter(opts Options, in io.Reader, out io.Writer) *Prompter {
	return &Prompter{opts: opts, in: bufio.NewReader(in), out: out}
}

// Confirm prompts the user to confirm a potentially destructive action.
// - If prompting is off, opts.Yes or opts.DryRun is set, it returns true
// without prompting.
// - Otherwise only "y" or "yes" (any case) confirms; EOF declines.
func (p *Prompter) Confirm(question string) (bool, error) {
	if !p.opts.Prompt || p.opts.Yes || p.opts.DryRun {
		return true, nil
	}
	if p.out != nil {
		fmt.Fprintf(p.out, "%s [y/N]: ", strings.TrimSpace(question))
	}
	line, err := p.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	ans := strings.TrimSpace(strings.ToLower(line))
	return ans == "y" || ans == "yes", nil
}

// Confirm is a one-shot Prompter.Confirm.
func Confirm(opts Options, in io.Reader, out io.Writer, question string) (bool, error) {
	return NewPrompter(opts, in, out).Confirm(question)
}
