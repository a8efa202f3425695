package cli

import (
	"github.com/spf13/cobra"

	"github.com/creachadair/flatjson/internal/logging"
)

func newVersionCommand(info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			logger := logging.NewWriter(cmd.OutOrStdout(), "info")
			logger.SetReportTimestamp(false)
			logger.Info("whosalive",
				logging.FieldVersion, info.Version,
				logging.FieldCommit, info.Commit,
				logging.FieldBuilt, info.Date,
			)
		},
	}
}
