package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/afoley587/coding-challenges-2025/user-directory/internal/config"
	"github.com/afoley587/coding-challenges-2025/user-directory/internal/server"
	"github.com/afoley587/coding-challenges-2025/user-directory/internal/service"
	"github.com/afoley587/coding-challenges-2025/user-directory/internal/store"
)

var (
	envFile    string
	enableMTLS bool
)

// serverFlags maps viper keys onto the flags of `server run`.
var serverFlags = map[string]string{
	config.KeyListenAddr:       "addr",
	config.KeyStorage:          "storage",
	config.KeyDatabaseURL:      "database-url",
	config.KeyDBMaxOpenConns:   "db-max-open-conns",
	config.KeyDBRetryInterval:  "db-retry-interval",
	config.KeyDBAcquireTimeout: "db-acquire-timeout",
	config.KeyRedisAddr:        "redis-address",
	config.KeyRedisPassword:    "redis-password",
	config.KeyLogLevel:         "log-level",
	config.KeyTLSCert:          "cert",
	config.KeyTLSKey:           "key",
	config.KeyTLSCA:            "ca",
}

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the gRPC server",
	Long:  "Commands related to running the gRPC server.",
}

var runServerCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the gRPC server",
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := config.New(envFile)
		if err != nil {
			return err
		}
		if err := bindFlags(v, cmd); err != nil {
			return err
		}
		cfg, err := config.Load(v)
		if err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		if enableMTLS && (cfg.TLSCert == "" || cfg.TLSKey == "" || cfg.TLSCA == "") {
			return errors.New("mtls mode requires --cert, --key, and --ca")
		}

		logger := newLogger(cfg.LogLevel)
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		repo, closeRepo, err := openRepository(ctx, cfg, logger)
		if err != nil {
			return fmt.Errorf("storage setup failed: %w", err)
		}
		defer func() {
			if err := closeRepo(); err != nil {
				logger.Warn("closing storage", "error", err)
			}
		}()
		svc := service.New(repo, logger)

		tlsCfg := server.TLSConfig{CertFile: cfg.TLSCert, KeyFile: cfg.TLSKey, CAFile: cfg.TLSCA}
		if tlsCfg.Enabled() {
			logger.Info("starting grpc server with tls", "addr", cfg.ListenAddr, "storage", cfg.Storage, "mtls", cfg.TLSCA != "")
			return server.RunTLS(ctx, cfg.ListenAddr, tlsCfg, svc, logger)
		}
		logger.Info("starting insecure grpc server", "addr", cfg.ListenAddr, "storage", cfg.Storage)
		return server.Run(ctx, cfg.ListenAddr, svc, logger)
	},
}

func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for key, flag := range serverFlags {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return fmt.Errorf("bind --%s: %w", flag, err)
		}
	}
	return nil
}

// openRepository builds the storage engine named by cfg.Storage.  For the
// relational engines it blocks until the database is reachable and
// migrated, or ctx is cancelled.
func openRepository(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.Repository, func() error, error) {
	switch cfg.Storage {
	case config.StorageMemory:
		logger.Warn("using in-memory storage; data is lost on exit")
		return store.NewMemoryStore(), func() error { return nil }, nil
	case config.StorageRedis:
		s, err := store.NewRedisStore(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		s, err := store.NewSQLStore(ctx, cfg.SQL, logger)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	}
}

func init() {
	f := runServerCmd.Flags()

	f.StringVar(&envFile, "env-file", ".env", "Optional dotenv file with USERDIR_* settings")

	f.StringP("addr", "a", "0.0.0.0:50051", "Address to listen on")

	f.String("storage", config.StoragePostgres, "Storage engine: postgres, sqlite, memory or redis")

	f.String("database-url", "", "Database connection string (postgres or sqlite)")

	f.Int("db-max-open-conns", store.DefaultMaxOpenConns, "Maximum open database connections")

	f.Duration("db-retry-interval", store.DefaultRetryInterval, "Pause between database connection attempts")

	f.Duration("db-acquire-timeout", store.DefaultAcquireTimeout, "How long a request waits for a database connection")

	f.StringP("redis-address", "r", "127.0.0.1:6379", "Redis address")

	f.StringP("redis-password", "p", "", "Redis password")

	f.String("log-level", "info", "Log level: debug, info, warn or error")

	f.BoolVar(&enableMTLS, "mtls", false, "Enable mutual TLS (requires --cert, --key, --ca)")

	f.String("cert", "", "Path to server certificate (PEM)")

	f.String("key", "", "Path to server private key (PEM)")

	f.String("ca", "", "Path to CA certificate for verifying client certificates (PEM)")

	serverCmd.AddCommand(runServerCmd)
	rootCmd.AddCommand(serverCmd)
}
