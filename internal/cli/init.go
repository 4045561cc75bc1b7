package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/petrijr/proctree/internal/config"
	"github.com/petrijr/proctree/internal/persistence"
	"github.com/petrijr/proctree/pkg/tree"
)

func newInitCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the project configuration and an empty process group",
		Long: `Create the project configuration and an empty process group.

The configuration is written to .proctree/config.toml unless it exists
already. The group named by --group is created when it is not stored yet.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			root, err := filepath.Abs(opts.project)
			if err != nil {
				return err
			}
			if _, statErr := os.Stat(config.Path(root)); errors.Is(statErr, os.ErrNotExist) {
				if err := config.Save(root, config.Default(root)); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", config.Path(root))
			}

			s, err := openSession(cmd, opts, true)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := s.close(); err == nil {
					err = cerr
				}
			}()

			ctx := cmd.Context()
			err = s.loadGroup(ctx)
			switch {
			case err == nil:
				fmt.Fprintf(s.out, "group %q already exists\n", opts.group)
				return nil
			case !errors.Is(err, errGroupMissing):
				return err
			}

			s.group = tree.NewGroup(opts.group)
			if err := persistence.SaveGroup(ctx, s.store.Projects, persistence.GobSerializer{}, s.group); err != nil {
				return err
			}
			fmt.Fprintf(s.out, "created group %q\n", opts.group)
			return nil
		},
	}
}
