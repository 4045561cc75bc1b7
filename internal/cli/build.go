package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/petrijr/proctree/internal/connections"
	"github.com/petrijr/proctree/pkg/tree"
)

func newAddCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add tasks and calculators",
	}
	cmd.AddCommand(newAddTaskCmd(opts), newAddCalcCmd(opts))
	return cmd
}

func newAddTaskCmd(opts *globalOptions) *cobra.Command {
	var class string

	cmd := &cobra.Command{
		Use:   "task <parent> <name>",
		Short: "Add a task to the group (\"/\") or to a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGroup(cmd, opts, true, func(ctx context.Context, s *session) error {
				parent, err := s.resolve(args[0])
				if err != nil {
					return err
				}
				res, err := s.editor.AddTask(ctx, parent, class, args[1])
				if err != nil {
					return err
				}
				fmt.Fprintf(s.out, "added %s\n", res.Node.Path())
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&class, "class", "", "Task class (default task class when empty).")

	return cmd
}

func newAddCalcCmd(opts *globalOptions) *cobra.Command {
	var sets []string

	cmd := &cobra.Command{
		Use:   "calc <parent> <class> <name>",
		Short: "Add a calculator to a task",
		Long: `Add a calculator to a task.

Built-in classes are Constant, Sum, Sleep, Fail and Warn. Initial
properties are given with repeated --set ident=value flags.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			props, err := parseAssignments(sets)
			if err != nil {
				return err
			}
			return withGroup(cmd, opts, true, func(ctx context.Context, s *session) error {
				parent, err := s.resolve(args[0])
				if err != nil {
					return err
				}
				res, err := s.editor.AddCalculator(ctx, parent, args[1], args[2], props)
				if err != nil {
					return err
				}
				fmt.Fprintf(s.out, "added %s\n", res.Node.Path())
				return nil
			})
		},
	}

	cmd.Flags().StringArrayVar(&sets, "set", nil, "Initial property as ident=value (repeatable).")

	return cmd
}

func newSetCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set <path> <ident=value>...",
		Short: "Set component properties",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			props, err := parseAssignments(args[1:])
			if err != nil {
				return err
			}
			return withGroup(cmd, opts, true, func(ctx context.Context, s *session) error {
				n, err := s.resolve(args[0])
				if err != nil {
					return err
				}
				for _, p := range props {
					if err := s.editor.SetProperty(ctx, n, p.Ident, p.Value); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func newRenameCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <path> <name>",
		Short: "Rename a component",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGroup(cmd, opts, true, func(ctx context.Context, s *session) error {
				n, err := s.resolve(args[0])
				if err != nil {
					return err
				}
				return s.editor.Rename(ctx, n, args[1])
			})
		},
	}
}

func newConnectCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "connect <source.prop> <target.prop>",
		Short: "Connect two calculator properties",
		Long: `Connect two calculator properties.

When the target runs, the value of the source property is copied onto the
target property first. Both components must share the same highest parent
task.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGroup(cmd, opts, true, func(ctx context.Context, s *session) error {
				src, srcProp, err := s.endpoint(args[0])
				if err != nil {
					return err
				}
				tgt, tgtProp, err := s.endpoint(args[1])
				if err != nil {
					return err
				}
				c, err := s.editor.Connect(ctx, src, srcProp, tgt, tgtProp)
				if err != nil {
					return err
				}
				fmt.Fprintf(s.out, "connected %s\n", formatConnection(c.Owner(), c))
				return nil
			})
		},
	}
}

func newDisconnectCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "disconnect <source.prop> <target.prop>",
		Short: "Remove a property connection",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGroup(cmd, opts, true, func(ctx context.Context, s *session) error {
				src, srcProp, err := s.endpoint(args[0])
				if err != nil {
					return err
				}
				tgt, tgtProp, err := s.endpoint(args[1])
				if err != nil {
					return err
				}
				want := tree.NewConnection(src.UUID(), srcProp, tgt.UUID(), tgtProp)
				if root := connections.HighestParentTask(src); root != nil {
					for _, c := range root.Connections() {
						if c.SameEndpoints(want) {
							return s.editor.Disconnect(ctx, c)
						}
					}
				}
				return fmt.Errorf("%w: %s %s", errNoSuchConnect, args[0], args[1])
			})
		},
	}
}

func newLinkCmd(opts *globalOptions) *cobra.Command {
	var unset bool

	cmd := &cobra.Command{
		Use:   "link <path> <ident> [target]",
		Short: "Store a relative link to another component",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !unset && len(args) != 3 {
				return fmt.Errorf("link needs a target unless --clear is given")
			}
			return withGroup(cmd, opts, true, func(ctx context.Context, s *session) error {
				holder, err := s.resolve(args[0])
				if err != nil {
					return err
				}
				var target *tree.Node
				if !unset {
					if target, err = s.resolve(args[2]); err != nil {
						return err
					}
				}
				return s.editor.SetLink(ctx, holder, args[1], target)
			})
		},
	}

	cmd.Flags().BoolVar(&unset, "clear", false, "Clear the link instead of setting it.")

	return cmd
}

func newSkipCmd(opts *globalOptions) *cobra.Command {
	var off bool

	cmd := &cobra.Command{
		Use:   "skip <path>",
		Short: "Mark a component as skipped so runs leave it out",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGroup(cmd, opts, true, func(ctx context.Context, s *session) error {
				n, err := s.resolve(args[0])
				if err != nil {
					return err
				}
				return s.editor.Skip(ctx, n, !off)
			})
		},
	}

	cmd.Flags().BoolVar(&off, "off", false, "Clear the skipped flag.")

	return cmd
}

// endpoint splits PATH.PROPERTY at the last dot and resolves PATH.
func (s *session) endpoint(arg string) (*tree.Node, string, error) {
	i := strings.LastIndex(arg, ".")
	if i <= 0 || i == len(arg)-1 {
		return nil, "", fmt.Errorf("%w: %q", errBadEndpoint, arg)
	}
	n, err := s.resolve(arg[:i])
	if err != nil {
		return nil, "", err
	}
	return n, arg[i+1:], nil
}

func parseAssignments(args []string) ([]tree.Property, error) {
	props := make([]tree.Property, 0, len(args))
	for _, a := range args {
		ident, raw, ok := strings.Cut(a, "=")
		if !ok || ident == "" {
			return nil, fmt.Errorf("expected ident=value, got %q", a)
		}
		props = append(props, tree.Property{Ident: ident, Value: parseValue(raw)})
	}
	return props, nil
}

// parseValue turns a command line value into an int, float64, bool or
// string, in that order of preference.
func parseValue(raw string) any {
	if i, err := strconv.Atoi(raw); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}
