// Package cli implements the proctree command line interface.
//
// Every command loads the process group named by --group from the project's
// store, applies one operation and saves the group again. Mutating commands
// hold the project lock for their whole run.
package cli

import (
	"github.com/spf13/cobra"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	project string
	group   string
	yes     bool
}

// NewRootCmd creates the root cobra command
func NewRootCmd(version string) *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "proctree",
		Short: "Edit and run trees of process tasks",
		Long: `proctree edits and runs trees of process tasks.

A project holds process groups. Groups hold tasks, tasks hold calculators and
nested tasks, and calculators exchange data through property connections.
Components are addressed by slash separated paths below the group, for
example "Compute/sum". The group itself is "/".`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.project, "project", "C", ".", "Project directory.")
	rootCmd.PersistentFlags().StringVarP(&opts.group, "group", "g", "main", "Process group to operate on.")
	rootCmd.PersistentFlags().BoolVarP(&opts.yes, "yes", "y", false, "Do not ask for confirmation.")

	rootCmd.AddCommand(
		newInitCmd(opts),
		newShowCmd(opts),
		newAddCmd(opts),
		newSetCmd(opts),
		newRenameCmd(opts),
		newConnectCmd(opts),
		newDisconnectCmd(opts),
		newLinkCmd(opts),
		newSkipCmd(opts),
		newCopyCmd(opts),
		newCutCmd(opts),
		newPasteCmd(opts),
		newCloneCmd(opts),
		newDeleteCmd(opts),
		newMoveCmd(opts),
		newRunCmd(opts),
		newHistoryCmd(opts),
	)

	return rootCmd
}
