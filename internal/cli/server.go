package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LeJamon/goOracleHub/internal/config"
	"github.com/LeJamon/goOracleHub/internal/hub"
	"github.com/LeJamon/goOracleHub/internal/logger"
	"github.com/LeJamon/goOracleHub/internal/proxy"
	"github.com/LeJamon/goOracleHub/internal/server/jsonrpc"
	"github.com/LeJamon/goOracleHub/internal/storage/keyValueDb"
	"github.com/LeJamon/goOracleHub/internal/storage/keyValueDb/bbolt"
	"github.com/LeJamon/goOracleHub/internal/storage/keyValueDb/leveldb"
	"github.com/LeJamon/goOracleHub/internal/storage/keyValueDb/memory"
	"github.com/LeJamon/goOracleHub/internal/storage/keyValueDb/pebble"
	"github.com/spf13/cobra"
)

// serverCmd represents the server command (default action)
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the oracle hub daemon",
	Long: `Start the oraclehubd server which provides:
- JSON-RPC API for registry administration and price queries
- Health check endpoint

This is the default command when no subcommand is specified.`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)

	// Set server as the default command
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return serverCmd.RunE(cmd, args)
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return err
	}

	log := logger.GetLogger()
	if err := log.Configure(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output); err != nil {
		return err
	}

	db, closeDB, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	quoter := buildQuoter(cfg)

	h, err := hub.New(db, quoter, log)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if err := ensureInitialized(ctx, h, cfg, log); err != nil {
		return err
	}

	srv := jsonrpc.NewServer(jsonrpc.NewHandler(h), cfg.Server.CORSOrigins, log)
	addr := fmt.Sprintf("%s:%d", cfg.Server.IP, cfg.Server.Port)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.WithFields(logger.Fields{"signal": sig.String()}).Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openStore opens the configured key-value backend and returns the hub's
// database handle plus a close function
func openStore(cfg *config.Config) (keyValueDb.DB, func(), error) {
	if standalone || cfg.Database.Backend == "memory" {
		return memory.NewDB(), func() {}, nil
	}

	var manager keyValueDb.Manager
	switch cfg.Database.Backend {
	case "pebble":
		manager = pebble.NewManager(cfg.Database.Path)
	case "bbolt":
		manager = bbolt.NewManager(cfg.Database.Path)
	case "leveldb":
		manager = leveldb.NewManager(cfg.Database.Path)
	default:
		return nil, nil, fmt.Errorf("unknown database backend %q", cfg.Database.Backend)
	}

	db, err := manager.OpenDB("hub")
	if err != nil {
		return nil, nil, err
	}
	return db, func() { manager.Close() }, nil
}

// buildQuoter wires the proxy call-out capability from the configured
// endpoints; standalone mode gets scripted (always failing) proxies
func buildQuoter(cfg *config.Config) hub.Quoter {
	if standalone {
		return proxy.NewStaticQuoter()
	}
	return proxy.NewHTTPQuoter(cfg.Proxies)
}

// ensureInitialized seeds the registry config on first start
func ensureInitialized(ctx context.Context, h *hub.Hub, cfg *config.Config, log *logger.Log) error {
	initialized, err := h.Initialized(ctx)
	if err != nil {
		return err
	}
	if initialized {
		return nil
	}

	if cfg.Hub.Owner == "" {
		return fmt.Errorf("hub is not initialized and hub.owner is not configured")
	}
	if err := h.Initialize(ctx, cfg.Hub.Owner, cfg.Hub.BaseDenom, cfg.Hub.MaxProxiesPerSymbol); err != nil {
		return err
	}
	log.WithComponent("cli").Info("registry initialized from config")
	return nil
}
