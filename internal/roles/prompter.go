package roles

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"setsplit/domain/dataset"
	"setsplit/internal/errors"
)

// StdinPrompter asks for one role per column, re-asking until exactly one valid
// code is entered. Suggested roles are shown as hints only.
type StdinPrompter struct {
	in          *bufio.Reader
	out         io.Writer
	suggestions map[string]dataset.Role
}

// NewStdinPrompter reads answers from in and writes prompts to out
func NewStdinPrompter(in io.Reader, out io.Writer, suggestions map[string]dataset.Role) *StdinPrompter {
	return &StdinPrompter{in: bufio.NewReader(in), out: out, suggestions: suggestions}
}

// PromptRole implements ports.RolePrompter
func (p *StdinPrompter) PromptRole(ctx context.Context, column string, preview []string) (dataset.Role, error) {
	suggested, hasSuggestion := p.suggestions[column]
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		fmt.Fprintf(p.out, "Column '%s' (e.g. %s)\n", column, strings.Join(preview, ", "))
		fmt.Fprintf(p.out, "  l=label c=categorical n=continuous a=absolute d=disregard")
		if hasSuggestion {
			fmt.Fprintf(p.out, " (suggested: %s)", suggested.Code())
		}
		fmt.Fprint(p.out, ": ")

		line, err := p.in.ReadString('\n')
		answer := strings.TrimSpace(line)
		if err != nil && answer == "" {
			if err == io.EOF {
				return "", errors.ConfigInvalidf("input ended before a role was given for column %q", column)
			}
			return "", errors.ConfigInvalidf("cannot read role for column %q: %v", column, err)
		}
		if len(answer) == 1 {
			if role, err := dataset.ParseRole(answer); err == nil {
				return role, nil
			}
		}
		fmt.Fprintf(p.out, "  please enter exactly one of %s\n", strings.Join(dataset.RoleCodes, "/"))
	}
}
