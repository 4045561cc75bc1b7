package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/mattn/go-isatty"

	"github.com/petrijr/proctree/internal/editor"
	"github.com/petrijr/proctree/pkg/tree"
)

// interactive is swapped out in tests.
var interactive = isInteractive

// isInteractive reports whether both stdin and stdout are terminals.
func isInteractive() bool {
	return (isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())) &&
		(isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()))
}

// newConfirmer approves deletes when yes is set, prompts on a terminal and
// refuses otherwise.
func newConfirmer(yes bool, out io.Writer) editor.Confirmer {
	return editor.ConfirmFunc(func(ctx context.Context, nodes []*tree.Node) (bool, error) {
		if yes {
			return true, nil
		}
		if !interactive() {
			return false, errNotConfirmed
		}

		names := make([]string, 0, len(nodes))
		for _, n := range nodes {
			names = append(names, n.Path())
		}
		fmt.Fprintf(out, "The following components will be deleted:\n  %s\n", strings.Join(names, "\n  "))

		var ok bool
		prompt := &survey.Confirm{
			Message: fmt.Sprintf("Delete %d component(s)?", len(nodes)),
			Default: false,
		}
		if err := survey.AskOne(prompt, &ok); err != nil {
			return false, fmt.Errorf("canceled: %w", err)
		}
		return ok, nil
	})
}
