package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/creachadair/flatjson/internal/logging"
	"github.com/creachadair/flatjson/logocache"
	"github.com/creachadair/flatjson/notify"
	"github.com/creachadair/flatjson/poll"
	"github.com/creachadair/flatjson/twitch"
)

func newRunCommand(opts *globalOptions) *cobra.Command {
	var noLogos bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Poll for live streams until interrupted",
		Long: `Poll the streams endpoint at the configured interval, and print a
notification each time a watched channel goes from offline to online.
Channel logos are saved in the cache directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			log := logging.Default()
			ctx = logging.WithLogger(ctx, log)

			w := &watcher{
				roster:   twitch.NewRoster(cfg.Channels),
				notifier: notify.Multi{notify.NewTerminal(cmd.OutOrStdout()), notify.Log{}},
			}
			if !noLogos && cfg.CacheDir != "" {
				w.logos, err = logocache.New(cfg.CacheDir, poll.NewClient(cfg.Timeout))
				if err != nil {
					log.Warn("logo cache disabled", logging.FieldError, err)
				}
			}

			p := newPoller(cfg)
			p.Handle = w.handle
			log.Info("watching", logging.FieldStreams, w.roster.Channels(), logging.FieldURL, p.URL)

			if err := p.Run(ctx); !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noLogos, "no-logos", false, "do not fetch channel logos")
	return cmd
}

func newCheckCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Poll once and print the status of each channel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			ctx := logging.WithLogger(cmd.Context(), logging.Default())

			roster := twitch.NewRoster(cfg.Channels)
			p := newPoller(cfg)
			p.Handle = func(_ context.Context, body []byte) error {
				streams, err := twitch.Decode(body)
				if err != nil {
					return err
				}
				roster.Update(streams)
				return nil
			}
			if err := p.Once(ctx); err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CHANNEL\tSTATUS\tGAME")
			for _, c := range roster.Status() {
				status := "offline"
				if c.Online {
					status = "online"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", c.Name, status, c.Stream.Game)
			}
			return tw.Flush()
		},
	}
}

// watcher applies each poll to a roster and delivers notifications.
type watcher struct {
	roster   *twitch.Roster
	notifier notify.Notifier
	logos    *logocache.Cache // nil if disabled
}

func (w *watcher) handle(ctx context.Context, body []byte) error {
	log := logging.FromContext(ctx)

	// A partial response would report channels offline that are not, so
	// only complete responses update the roster.
	streams, err := twitch.Decode(body)
	if err != nil {
		return fmt.Errorf("discarding response: %w", err)
	}
	events := w.roster.Update(streams)
	log.Debug("poll complete", logging.FieldStreams, len(streams), "online", w.roster.Online())

	if w.logos != nil && len(events) != 0 {
		urls := make([]string, len(events))
		for i, e := range events {
			urls[i] = e.Logo
		}
		if err := w.logos.Prefetch(ctx, urls); err != nil {
			log.Warn("fetching logos", logging.FieldError, err)
		}
		for i, e := range events {
			if e.Logo != "" && w.logos.Has(e.Logo) {
				events[i].Icon = w.logos.Path(e.Logo)
			}
		}
	}
	for _, e := range events {
		if err := w.notifier.Notify(ctx, e); err != nil {
			log.Warn("notify failed", logging.FieldChannel, e.Name, logging.FieldError, err)
		}
	}
	return nil
}
