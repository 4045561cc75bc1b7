package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/petrijr/proctree/pkg/tree"
)

func newShowCmd(opts *globalOptions) *cobra.Command {
	var props bool

	cmd := &cobra.Command{
		Use:   "show [path]",
		Short: "Print the component tree",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGroup(cmd, opts, false, func(ctx context.Context, s *session) error {
				n := s.group
				if len(args) > 0 {
					var err error
					if n, err = s.resolve(args[0]); err != nil {
						return err
					}
				}
				printTree(s.out, n, props)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&props, "properties", "p", false, "Also print properties and connections.")

	return cmd
}

func printTree(w io.Writer, root *tree.Node, props bool) {
	var visit func(n *tree.Node, depth int)
	visit = func(n *tree.Node, depth int) {
		indent := strings.Repeat("  ", depth)
		fmt.Fprintf(w, "%s%s\n", indent, describe(n))
		if props {
			for _, p := range n.Properties() {
				fmt.Fprintf(w, "%s  . %s = %s\n", indent, p.Ident, formatValue(root, p.Value))
			}
			for _, c := range n.Connections() {
				fmt.Fprintf(w, "%s  ~ %s\n", indent, formatConnection(n, c))
			}
		}
		for _, c := range n.Children() {
			visit(c, depth+1)
		}
	}
	visit(root, 0)
}

func describe(n *tree.Node) string {
	var flags []string
	if n.IsPlaceholder() {
		flags = append(flags, "placeholder")
	}
	if n.Skipped() {
		flags = append(flags, "skipped")
	}
	s := fmt.Sprintf("%s [%s %s]", n.Name(), n.Kind(), n.Class())
	if len(flags) > 0 {
		sort.Strings(flags)
		s += " (" + strings.Join(flags, ", ") + ")"
	}
	return s
}

func formatValue(scope *tree.Node, v any) string {
	if link, ok := v.(tree.RelativeLink); ok {
		if target := scope.Top().FindByUUID(string(link)); target != nil {
			return "-> " + target.Path()
		}
		return "-> ? " + string(link)
	}
	return fmt.Sprintf("%v", v)
}

func formatConnection(owner *tree.Node, c *tree.Connection) string {
	top := owner.Top()
	return fmt.Sprintf("%s.%s -> %s.%s",
		endpointName(top, c.SourceUUID()), c.SourceProperty(),
		endpointName(top, c.TargetUUID()), c.TargetProperty())
}

func endpointName(top *tree.Node, id string) string {
	if n := top.FindByUUID(id); n != nil {
		return n.Path()
	}
	return id
}
