package cmd

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
	"golang.org/x/sync/errgroup"

	"github.com/picogrid/tank-arena/pkg/api"
	"github.com/picogrid/tank-arena/pkg/arena"
	"github.com/picogrid/tank-arena/pkg/brain"
	"github.com/picogrid/tank-arena/pkg/events"
	"github.com/picogrid/tank-arena/pkg/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the arena server",
	Long: `Run the tick loop together with the HTTP control API and the
WebSocket state stream on /ws.`,
	RunE: runServe,
}

var matchFlagKeys = map[string]string{
	"max-rounds":    "max_rounds",
	"round-time":    "round_time",
	"think-timeout": "think_timeout",
	"tick-rate":     "tick_rate",
}

func init() {
	addMatchFlags(serveCmd)
	serveCmd.Flags().String("addr", "", "listen address (default :5000)")
	serveCmd.Flags().String("nats-url", "", "mirror match events to this NATS server")
	serveCmd.Flags().StringArray("tank", nil, "tank to deploy at startup as name=strategy (repeatable)")
}

func addMatchFlags(cmd *cobra.Command) {
	cmd.Flags().Int("max-rounds", 0, "rounds per match")
	cmd.Flags().Duration("round-time", 0, "round time limit")
	cmd.Flags().Duration("think-timeout", 0, "per tick brain deadline")
	cmd.Flags().Int("tick-rate", 0, "ticks per second")
}

func runServe(cmd *cobra.Command, _ []string) error {
	keys := map[string]string{"addr": "addr", "nats-url": "nats_url"}
	for k, v := range matchFlagKeys {
		keys[k] = v
	}
	cfg, err := loadConfig(changedOverrides(cmd, keys))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	compiler := &brain.Compiler{Registry: brain.DefaultRegistry, LoadTimeout: cfg.Match.ScriptLoadTimeout}
	match := arena.NewMatch(cfg.Arena,
		arena.WithSettings(cfg.Match.Settings()),
		arena.WithCompiler(compiler.Compile),
		arena.WithObstacles(cfg.Obstacles),
	)

	specs, _ := cmd.Flags().GetStringArray("tank")
	if err := deployRoster(match, specs); err != nil {
		return err
	}

	runner := arena.NewRunner(match, cfg.Match.TickRate)
	if cfg.Events.NatsURL != "" {
		bridge, closeBridge, err := events.Connect(cfg.Events.NatsURL, cfg.Events.Subject, cfg.Events.StateEvery)
		if err != nil {
			return err
		}
		defer closeBridge()
		runner.OnTick(bridge.OnTick)
		logger.Infof("Mirroring match events to %s under %s.*", cfg.Events.NatsURL, cfg.Events.Subject)
	}
	hub := api.NewHub(match)
	server := api.NewServer(match, hub, compiler.Registry)
	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return runner.Run(gctx)
	})

	g.Go(func() error {
		hub.Run(gctx, cfg.Server.BroadcastInterval)
		return nil
	})

	g.Go(func() error {
		logger.Infof("%s Arena listening on %s", logger.IconRocket, cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Success("Server stopped")
	return nil
}
