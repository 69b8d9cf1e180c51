// Command sona-devhost opens the Sona editor in an ordinary browser. The page
// reaches the plugin bridge through a websocket instead of an embedded web view.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/justyntemme/sona/pkg/config"
	"github.com/justyntemme/sona/pkg/framework/debug"
	"github.com/justyntemme/sona/pkg/plugin"
	"github.com/justyntemme/sona/pkg/sona"
	"github.com/justyntemme/sona/pkg/vst3"
	"github.com/justyntemme/sona/pkg/webui/devhost"
)

// Version is set at build time via ldflags
var Version = "dev"

type options struct {
	envFiles []string
	addr     string
	uiDir    string
	dev      bool
	debug    bool
	noWatch  bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "sona-devhost",
		Short:         "Serve the Sona editor to a browser for UI development",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load(opts.envFiles...)
			flags := cmd.Flags()
			if flags.Changed("addr") {
				cfg.DevHostAddr = opts.addr
			}
			if flags.Changed("ui-dir") {
				cfg.UIDir = opts.uiDir
			}
			if flags.Changed("dev") {
				cfg.DevMode = opts.dev
			}
			if opts.debug {
				cfg.LogLevel = "debug"
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg, !opts.noWatch)
		},
	}

	f := cmd.Flags()
	f.StringSliceVar(&opts.envFiles, "env", nil, "env files to load (default .env)")
	f.StringVar(&opts.addr, "addr", "", "listen address (overrides SONA_DEVHOST_ADDR)")
	f.StringVar(&opts.uiDir, "ui-dir", "", "built UI directory (overrides SONA_UI_DIR)")
	f.BoolVar(&opts.dev, "dev", false, "load the UI from the dev server (overrides SONA_DEV_MODE)")
	f.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	f.BoolVar(&opts.noWatch, "no-watch", false, "do not reload the page when the UI directory changes")

	return cmd
}

func run(ctx context.Context, cfg *config.Config, watch bool) error {
	log := debug.Default()
	if cfg.LogFile == "" {
		log.SetFlags(debug.DefaultFlags | debug.FlagConsole)
	}
	closer, err := cfg.ConfigureLogger(log)
	if err != nil {
		return err
	}
	defer closer.Close()

	var srvOpts []devhost.Option
	if cfg.DevServerURL != "" {
		srvOpts = append(srvOpts, devhost.WithAllowedOrigins(cfg.DevServerURL))
	}
	srv := devhost.New(srvOpts...)

	// Open the editor the way a host would.
	p := sona.New(cfg)
	plugin.Register(p)
	plugin.SetRendererFactory(srv.RendererFactory())

	h, err := plugin.CreateInstance(p.GetInfo().UID())
	if err != nil {
		return fmt.Errorf("creating instance: %w", err)
	}
	defer plugin.ReleaseInstance(h)

	if res := plugin.ComponentInitialize(h); res != vst3.ResultOK {
		return fmt.Errorf("initializing instance: result %d", res)
	}
	if _, res := plugin.EditControllerCreateView(h, vst3.ViewTypeEditor); res != vst3.ResultOK {
		return fmt.Errorf("opening editor: result %d", res)
	}

	if watch && !cfg.DevMode {
		if err := srv.Watch(ctx, cfg.UIDir, devhost.DefaultDebounce); err != nil {
			log.Warn("live reload disabled: %v", err)
		}
	}

	httpSrv := &http.Server{
		Addr:              cfg.DevHostAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("dev host listening on http://%s (start page %s)", cfg.DevHostAddr, cfg.StartURL())
		if cfg.DevMode {
			log.Info("add <script src=\"http://%s/__sona/bridge.js\"></script> to the dev server page", cfg.DevHostAddr)
		}
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	log.Info("dev host stopped")
	return nil
}
