package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"linecov.dev/pkg/linecov/internal/domain"
	m "linecov.dev/pkg/linecov/internal/model"
)

// viewCmd represents the view command.
var viewCmd = newViewCmd()

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view snapshot",
		Short: "View a binary coverage snapshot",
		Long:  "Display the per-file coverage recorded in a binary coverage snapshot.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return workflow.View(cmd.Context(), domain.ViewArgs{
				Path:            m.Path(args[0]),
				AggregateByFile: viper.GetBool(aggregateByFileKey),
			})
		},
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(viewCmd)
}
