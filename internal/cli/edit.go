package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/petrijr/proctree/pkg/tree"
)

func newCopyCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "copy <path>",
		Short: "Copy a component to the clipboard",
		Long: `Copy a component to the clipboard.

Connections inside the copied component travel with it. Connections that
cross its boundary are reported and stay on the original.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGroup(cmd, opts, false, func(ctx context.Context, s *session) error {
				n, err := s.resolve(args[0])
				if err != nil {
					return err
				}
				res, err := s.editor.Copy(ctx, n)
				if err != nil {
					return err
				}
				s.report(res)
				fmt.Fprintf(s.out, "copied %s\n", n.Path())
				return nil
			})
		},
	}
}

func newCutCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cut <path>",
		Short: "Move a component to the clipboard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGroup(cmd, opts, true, func(ctx context.Context, s *session) error {
				n, err := s.resolve(args[0])
				if err != nil {
					return err
				}
				path := n.Path()
				res, err := s.editor.Cut(ctx, n)
				if err != nil {
					return err
				}
				s.report(res)
				fmt.Fprintf(s.out, "cut %s\n", path)
				return nil
			})
		},
	}
}

func newPasteCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "paste <target>",
		Short: "Paste the clipboard into a task or the group (\"/\")",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGroup(cmd, opts, true, func(ctx context.Context, s *session) error {
				target, err := s.resolve(args[0])
				if err != nil {
					return err
				}
				res, err := s.editor.Paste(ctx, target)
				if err != nil {
					return err
				}
				s.report(res)
				fmt.Fprintf(s.out, "pasted %s\n", res.Node.Path())
				return nil
			})
		},
	}
}

func newCloneCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clone <path>",
		Short: "Duplicate a component next to itself",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGroup(cmd, opts, true, func(ctx context.Context, s *session) error {
				n, err := s.resolve(args[0])
				if err != nil {
					return err
				}
				res, err := s.editor.Clone(ctx, n)
				if err != nil {
					return err
				}
				s.report(res)
				fmt.Fprintf(s.out, "cloned %s as %s\n", n.Path(), res.Node.Path())
				return nil
			})
		},
	}
}

func newDeleteCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <path>...",
		Short: "Delete components",
		Long: `Delete components.

Asks for confirmation on a terminal; pass --yes otherwise. Connections
touching the deleted components are removed and relative links pointing
into them are cleared.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGroup(cmd, opts, true, func(ctx context.Context, s *session) error {
				nodes, err := s.resolveAll(args)
				if err != nil {
					return err
				}
				res, err := s.editor.Delete(ctx, nodes...)
				if err != nil {
					return err
				}
				s.report(res)
				fmt.Fprintf(s.out, "deleted %d component(s)\n", len(nodes))
				return nil
			})
		},
	}
}

func newMoveCmd(opts *globalOptions) *cobra.Command {
	var (
		to  string
		row int
	)

	cmd := &cobra.Command{
		Use:   "move <path>... --to <target>",
		Short: "Move sibling components to another parent or position",
		Long: `Move sibling components to another parent or position.

With a task or the group as target the components are inserted at --row
(appended when negative). With a calculator as target they are inserted in
front of it.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGroup(cmd, opts, true, func(ctx context.Context, s *session) error {
				nodes, err := s.resolveAll(args)
				if err != nil {
					return err
				}
				target, err := s.resolve(to)
				if err != nil {
					return err
				}
				res, err := s.editor.Move(ctx, nodes, target, row)
				if err != nil {
					return err
				}
				s.report(res)
				for _, n := range nodes {
					fmt.Fprintf(s.out, "moved to %s\n", n.Path())
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Target component.")
	cmd.Flags().IntVar(&row, "row", -1, "Insert position within the target.")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func (s *session) resolveAll(paths []string) ([]*tree.Node, error) {
	nodes := make([]*tree.Node, 0, len(paths))
	for _, p := range paths {
		n, err := s.resolve(p)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}
