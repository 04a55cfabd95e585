package cmd

import (
	"github.com/spf13/cobra"
	m "linecov.dev/pkg/linecov/internal/model"
)

// listCmd represents the list command.
var listCmd = newListCmd()

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list executable",
		Short: "List the source lines a run would instrument",
		Long:  listLongDescription,
		Args:  cobra.ExactArgs(1),
		PreRun: func(cmd *cobra.Command, _ []string) {
			bindSelectionFlags(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			listArgs, err := coverageArgs()
			if err != nil {
				return err
			}

			listArgs.Start = m.StartInfo{Path: m.Path(args[0])}

			return workflow.List(cmd.Context(), listArgs)
		},
	}

	configureSelectionFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(listCmd)
}
