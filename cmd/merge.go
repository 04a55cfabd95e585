package cmd

import (
	"github.com/spf13/cobra"
)

// mergeCmd represents the merge command.
var mergeCmd = newMergeCmd()

func newMergeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge [snapshots...]",
		Short: "Merge binary coverage snapshots",
		Long: `Merge binary coverage snapshots given as arguments or with --input_coverage
and export the result. Unreadable or invalid snapshots are reported as
warnings and left out.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			mergeArgs := outputArgs()
			mergeArgs.Inputs = append(mergeArgs.Inputs, parsePaths(args)...)

			if len(mergeArgs.Inputs) == 0 {
				return cmd.Help()
			}

			return exitStatus(workflow.Run(cmd.Context(), mergeArgs))
		},
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(mergeCmd)
}
