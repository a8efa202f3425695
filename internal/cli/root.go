// Package cli provides the Cobra command structure for whosalive.
package cli

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/creachadair/flatjson/internal/config"
	"github.com/creachadair/flatjson/internal/logging"
	"github.com/creachadair/flatjson/poll"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// globalOptions are the flags shared by all subcommands.
type globalOptions struct {
	configPath string
	debug      bool
}

// NewRootCommand creates the root whosalive command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	opts := new(globalOptions)

	rootCmd := &cobra.Command{
		Use:   "whosalive",
		Short: "Report when watched Twitch channels start streaming",
		Long: `whosalive polls the Twitch streams endpoint for a list of channels and
prints a notification whenever one of them goes live.

Settings are read from the file given by --config, or from config.yaml,
config.yml, config.jwcc or config.json in the whosalive directory under the
user configuration directory. Environment variables prefixed WHOSALIVE_
override settings from the file.`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if opts.debug {
				logging.SetLevel("debug")
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config file")

	rootCmd.AddCommand(newRunCommand(opts))
	rootCmd.AddCommand(newCheckCommand(opts))
	rootCmd.AddCommand(newTokensCommand())
	rootCmd.AddCommand(newVersionCommand(info))

	return rootCmd
}

// loadConfig resolves the configuration and applies its log level, unless
// debug logging was requested on the command line.
func (o *globalOptions) loadConfig() (*config.Config, error) {
	path := o.configPath
	if path == "" {
		path = config.Find()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if !o.debug {
		logging.SetLevel(cfg.LogLevel)
	}
	logging.Default().Debug("loaded config", logging.FieldPath, path)
	return cfg, nil
}

func newPoller(cfg *config.Config) *poll.Poller {
	header := http.Header{"Accept": {"application/vnd.twitchtv.v5+json"}}
	if cfg.ClientID != "" {
		header.Set("Client-ID", cfg.ClientID)
	}
	return &poll.Poller{
		Client:   poll.NewClient(cfg.Timeout),
		URL:      cfg.StreamsURL(),
		Header:   header,
		Interval: cfg.Interval,
	}
}
