package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/petrijr/proctree/internal/coordinator"
	"github.com/petrijr/proctree/internal/engine"
	"github.com/petrijr/proctree/pkg/tree"
	"github.com/petrijr/proctree/pkg/worker"
)

func newRunCmd(opts *globalOptions) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "run <path>",
		Short: "Run the highest parent task of a component",
		Long: `Run the highest parent task of a component.

The task runs in this process. Interrupting the command or reaching
--timeout requests termination; the task stops at its next safe point.
Calculator outputs are saved with the group whatever the outcome.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGroup(cmd, opts, true, func(ctx context.Context, s *session) error {
				n, err := s.resolve(args[0])
				if err != nil {
					return err
				}

				exec := engine.NewExecutor(engine.Config{Registry: s.registry, Observer: s.observer, Logger: s.logger})
				coord := coordinator.New(exec, s.logger)
				if _, err := coord.Run(n); err != nil {
					return err
				}
				task := coord.Resolve(n)

				ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
				defer stop()
				if timeout > 0 {
					var cancel context.CancelFunc
					ctx, cancel = context.WithTimeout(ctx, timeout)
					defer cancel()
				}

				_, runErr := worker.New(exec).ProcessOne(ctx)
				printStates(s.out, task)

				if err := s.save(context.WithoutCancel(ctx)); err != nil {
					return err
				}
				return runErr
			})
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Terminate the run after this long (0 = no limit).")

	return cmd
}

func printStates(w io.Writer, task *tree.Node) {
	var visit func(n *tree.Node, depth int)
	visit = func(n *tree.Node, depth int) {
		line := fmt.Sprintf("%s%s: %s", strings.Repeat("  ", depth), n.Name(), n.State())
		if n.IsCalculator() {
			if out, ok := n.Property(engine.PropOutput); ok {
				line += fmt.Sprintf(" (output=%v)", out)
			}
		}
		fmt.Fprintln(w, line)
		for _, c := range n.Children() {
			visit(c, depth+1)
		}
	}
	visit(task, 0)
}
