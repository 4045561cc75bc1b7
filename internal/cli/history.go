package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/petrijr/proctree/internal/persistence"
	"github.com/petrijr/proctree/pkg/api"
)

func newHistoryCmd(opts *globalOptions) *cobra.Command {
	var (
		typ   string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "history [path]",
		Short: "Show recorded execution and edit events",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGroup(cmd, opts, false, func(ctx context.Context, s *session) error {
				filter := persistence.EventFilter{Type: api.EventType(typ), Limit: limit}
				if len(args) > 0 {
					n, err := s.resolve(args[0])
					if err != nil {
						return err
					}
					filter.ComponentUUID = n.UUID()
				}

				events, err := s.store.Events.ListEvents(ctx, filter)
				if err != nil {
					return err
				}
				for _, ev := range events {
					line := fmt.Sprintf("%s  %-28s %s", ev.At.Format(time.DateTime), ev.Type, ev.Component)
					if ev.State != "" {
						line += " " + ev.State
					}
					if ev.Detail != "" {
						line += ": " + ev.Detail
					}
					fmt.Fprintln(s.out, line)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&typ, "type", "", "Only show events of this type, e.g. task.finished.")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Only show the newest N events.")

	return cmd
}
