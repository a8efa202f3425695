// Program whosalive reports when watched Twitch channels start streaming.
package main

import (
	"os"

	"github.com/creachadair/flatjson/internal/cli"
	"github.com/creachadair/flatjson/internal/logging"
)

// Build-time variables set via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := cli.NewRootCommand(cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	})
	if err := rootCmd.Execute(); err != nil {
		logging.Default().Error("command failed", logging.FieldError, err)
		os.Exit(1)
	}
}
