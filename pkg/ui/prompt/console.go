// Package prompt provides the interactive conflict resolver used when a
// dotfile's merge strategy is ask.
package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/punktf/pkg/executor"
	"github.com/arthur-debert/punktf/pkg/types"
	"github.com/arthur-debert/punktf/pkg/ui/styles"
)

// Console asks about conflicts on a line-oriented terminal.
type Console struct {
	in  *bufio.Reader
	out io.Writer
}

var _ executor.ConflictResolver = (*Console)(nil)

// NewConsole reads answers from in and writes questions to out.
func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{in: bufio.NewReader(in), out: out}
}

// ResolveConflict asks whether to replace the existing target. An empty
// answer keeps the target. Unrecognized answers repeat the question.
func (c *Console) ResolveConflict(ctx context.Context, conflict executor.Conflict) (types.MergeAction, error) {
	fmt.Fprintf(c.out, "%s %s\n", styles.Render("Warning", "Target exists:"), styles.Render("FilePath", conflict.Target))
	fmt.Fprintf(c.out, "  %s %s\n", styles.Render("Muted", "from"), conflict.Source)

	for {
		if err := ctx.Err(); err != nil {
			return types.ActionAbortAll, err
		}

		fmt.Fprint(c.out, "[r]eplace, [k]eep, [a]bort all? [k]: ")
		line, err := c.in.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return types.ActionAbortAll, fmt.Errorf("failed to read user input: %w", err)
		}

		if action, ok := parseAnswer(line); ok {
			return action, nil
		}
		fmt.Fprintf(c.out, "%s\n", styles.Render("Error", fmt.Sprintf("unrecognized answer %q", strings.TrimSpace(line))))
	}
}

func parseAnswer(answer string) (types.MergeAction, bool) {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "r", "replace", "y", "yes":
		return types.ActionReplace, true
	case "", "k", "keep", "n", "no":
		return types.ActionKeep, true
	case "a", "abort", "abort-all", "q", "quit":
		return types.ActionAbortAll, true
	default:
		return types.ActionKeep, false
	}
}
