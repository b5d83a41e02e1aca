package main

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"promptist/api"
	"promptist/config"
	"promptist/launcher"
	"promptist/logger"
	"promptist/pasteboard"
	"promptist/prompt"
	"promptist/tracker"
)

const shutdownTimeout = 5 * time.Second

func launcherConfig(c *config.Config) launcher.Config {
	return launcher.Config{AutoPaste: c.Launcher.AutoPaste, Formats: c.Launcher.Formats}
}

func trackerOptions(c *config.Config) tracker.Options {
	return tracker.Options{
		Interval:        c.Tracker.PollInterval,
		IgnoreBundleIDs: c.Tracker.IgnoreBundleIDs,
		FocusAttempts:   c.Tracker.FocusAttempts,
		FocusDelay:      c.Tracker.FocusDelay,
	}
}

func (c *cli) serveCmd() *cobra.Command {
	var (
		host    string
		port    int
		noWatch bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the launcher server",
		Long: `Start the local launcher: the HTTP API and web page, the frontmost-app
tracker and the template file watcher. Stops on Ctrl+C or SIGTERM.

Examples:
  promptist serve                 # 127.0.0.1:7777
  promptist serve --port 8080
  promptist serve --no-watch      # ignore external edits to templates.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.cfg.Get()
			if !cmd.Flags().Changed("host") {
				host = cfg.Server.Host
			}
			if !cmd.Flags().Changed("port") {
				port = cfg.Server.Port
			}

			store, err := c.openStore()
			if err != nil {
				return err
			}
			tr := tracker.New(trackerOptions(cfg))
			l := launcher.New(store, tr, pasteboard.Default(), launcherConfig(cfg))

			c.cfg.OnChange(func(next *config.Config) {
				l.SetConfig(launcherConfig(next))
			})
			c.cfg.WatchConfig()

			return serve(cmd.Context(), serveDeps{
				addr:     net.JoinHostPort(host, strconv.Itoa(port)),
				store:    store,
				tracker:  tr,
				launcher: l,
				watch:    cfg.Store.Watch && !noWatch,
				debounce: cfg.Store.Debounce,
				hotkey:   cfg.Launcher.Hotkey,
			})
		},
	}
	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "host to bind to")
	cmd.Flags().IntVar(&port, "port", 7777, "port to listen on")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "do not reload templates.json on external edits")
	return cmd
}

type serveDeps struct {
	addr     string
	store    *prompt.Manager
	tracker  *tracker.Tracker
	launcher *launcher.Launcher
	watch    bool
	debounce time.Duration
	hotkey   string
}

// serve runs the HTTP server, tracker and watcher until ctx is cancelled or
// one of them fails.
func serve(ctx context.Context, d serveDeps) error {
	ln, err := net.Listen("tcp", d.addr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", d.addr)
	}
	srv := &http.Server{
		Handler:           api.RegisterRoutes(d.store, d.launcher, d.tracker, staticFiles),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return d.tracker.Run(gctx) })

	if d.watch {
		w, err := prompt.NewWatcher(d.store, d.debounce)
		if err != nil {
			ln.Close()
			return err
		}
		w.OnReload(func() {
			logger.Logger.Infow("Templates reloaded", "count", len(d.store.List()))
		})
		g.Go(func() error { return w.Run(gctx) })
	}

	g.Go(func() error {
		logger.Logger.Infow("Promptist listening", "addr", ln.Addr().String(), "templates", d.store.Path(), "hotkey", d.hotkey)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "http server")
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Logger.Infow("Shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
