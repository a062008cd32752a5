package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tripping-alien/shortlink-sub000/internal/cache"
	"github.com/tripping-alien/shortlink-sub000/internal/cache/memory"
	redisCache "github.com/tripping-alien/shortlink-sub000/internal/cache/redis"
	"github.com/tripping-alien/shortlink-sub000/internal/config"
	"github.com/tripping-alien/shortlink-sub000/internal/domain"
	"github.com/tripping-alien/shortlink-sub000/internal/enrich"
	"github.com/tripping-alien/shortlink-sub000/internal/repository/sqlite"
	"github.com/tripping-alien/shortlink-sub000/internal/service"
	"github.com/tripping-alien/shortlink-sub000/internal/shortener"
	"github.com/tripping-alien/shortlink-sub000/internal/sweeper"
	"github.com/tripping-alien/shortlink-sub000/internal/transport/client"
	httpTransport "github.com/tripping-alien/shortlink-sub000/internal/transport/http"
)

var rootCmd = &cobra.Command{
	Use:   "shortlink",
	Short: "A short-link identity service",
	Long:  "A short-link service with unique code generation, expiring links, secret-gated deletion, and a SQLite backend with configurable caching (memory or Redis)",
}

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the short-link server",
	RunE:  runServer,
}

var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Client commands for interacting with the server",
}

var createCmd = &cobra.Command{
	Use:   "create [URL]",
	Short: "Create a short link",
	Args:  cobra.ExactArgs(1),
	RunE:  runCreateLink,
}

var getCmd = &cobra.Command{
	Use:   "get [CODE]",
	Short: "Get information about a short link",
	Args:  cobra.ExactArgs(1),
	RunE:  runGetLink,
}

var deleteCmd = &cobra.Command{
	Use:   "delete [CODE]",
	Short: "Delete a short link using its deletion secret",
	Args:  cobra.ExactArgs(1),
	RunE:  runDeleteLink,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all live short links",
	RunE:  runListLinks,
}

// envDefault returns the environment value for key, or fallback
func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func init() {
	// .env is optional; flags and real environment variables win
	_ = godotenv.Load()

	serverCmd.Flags().StringP("port", "p", envDefault("PORT", "8080"), "Server port")
	serverCmd.Flags().String("server-url", envDefault("SERVER_URL", "http://localhost:8080"), "Public base URL for short links")
	serverCmd.Flags().String("db-path", envDefault("DB_PATH", "links.db"), "Database file path")

	serverCmd.Flags().String("cache-backend", envDefault("CACHE_BACKEND", config.CacheBackendMemory), "Resolve cache backend (memory or redis)")
	serverCmd.Flags().String("redis-addr", envDefault("REDIS_ADDR", "localhost:6379"), "Redis address for the redis cache backend")
	serverCmd.Flags().Duration("flush-interval", 5*time.Second, "Click-count flush interval")

	serverCmd.Flags().Duration("sweep-interval", time.Minute, "Expired link cleanup interval")
	serverCmd.Flags().Duration("sweep-grace", 5*time.Second, "Shutdown grace for an in-flight cleanup cycle")

	serverCmd.Flags().String("generator", shortener.TypeRandom, "Code generator strategy (random or sequence)")
	serverCmd.Flags().Int("code-length", 0, "Generated code length (0 uses the default)")
	serverCmd.Flags().Int64("counter-step", 100, "Counter jump-ahead step for the sequence generator")
	serverCmd.Flags().Int("max-retries", 5, "Insert attempts before code generation gives up")
	serverCmd.Flags().Bool("enrich-metadata", true, "Fetch page metadata for new links in the background")

	serverCmd.Flags().BoolP("verbose", "v", false, "Enable debug logging")

	clientCmd.PersistentFlags().StringP("server-url", "u", envDefault("SERVER_URL", "http://localhost:8080"), "Server URL")

	createCmd.Flags().String("ttl", "", "Link lifetime: 1s, 1h, 1d, 1w or never (default 1d)")
	createCmd.Flags().String("code", "", "Custom short code")
	createCmd.Flags().String("owner", "", "Owner identifier")

	deleteCmd.Flags().StringP("secret", "s", "", "Deletion secret issued at creation")
	_ = deleteCmd.MarkFlagRequired("secret")

	listCmd.Flags().String("owner", "", "Filter by owner identifier")

	clientCmd.AddCommand(createCmd, getCmd, deleteCmd, listCmd)
	rootCmd.AddCommand(serverCmd, clientCmd)
}

func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	port, _ := cmd.Flags().GetString("port")
	serverURL, _ := cmd.Flags().GetString("server-url")
	dbPath, _ := cmd.Flags().GetString("db-path")

	cacheBackend, _ := cmd.Flags().GetString("cache-backend")
	redisAddr, _ := cmd.Flags().GetString("redis-addr")
	flushInterval, _ := cmd.Flags().GetDuration("flush-interval")

	sweepInterval, _ := cmd.Flags().GetDuration("sweep-interval")
	sweepGrace, _ := cmd.Flags().GetDuration("sweep-grace")

	strategy, _ := cmd.Flags().GetString("generator")
	codeLength, _ := cmd.Flags().GetInt("code-length")
	counterStep, _ := cmd.Flags().GetInt64("counter-step")
	maxRetries, _ := cmd.Flags().GetInt("max-retries")
	enrichMetadata, _ := cmd.Flags().GetBool("enrich-metadata")

	verbose, _ := cmd.Flags().GetBool("verbose")

	return config.New(
		config.ServerConfig{Port: port, ServerURL: serverURL},
		config.DatabaseConfig{Path: dbPath},
		config.CacheConfig{Backend: cacheBackend, RedisAddr: redisAddr, FlushInterval: flushInterval},
		config.SweeperConfig{Interval: sweepInterval, ShutdownGrace: sweepGrace},
		config.LoggingConfig{Verbose: verbose},
		config.ShortenerConfig{
			Config: shortener.Config{
				Strategy:    strategy,
				CodeLength:  codeLength,
				CounterStep: counterStep,
			},
			MaxRetries:     maxRetries,
			EnrichMetadata: enrichMetadata,
		},
	)
}

func newCache(ctx context.Context, cfg config.CacheConfig) (cache.SyncableCache, error) {
	switch cfg.Backend {
	case config.CacheBackendRedis:
		return redisCache.New(ctx, cfg.RedisAddr)
	default:
		return memory.New(), nil
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to create configuration: %w", err)
	}

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if cfg.Logging.Verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	logrus.WithFields(logrus.Fields{
		"port":    cfg.Server.Port,
		"cache":   cfg.Cache.Backend,
		"db_path": cfg.Database.Path,
	}).Info("starting short-link server")

	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	generator, err := shortener.NewGenerator(cfg.Shortener.Config, repo)
	if err != nil {
		return fmt.Errorf("failed to create code generator: %w", err)
	}
	logrus.WithField("strategy", generator.Type()).Info("code generator ready")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	resolveCache, err := newCache(ctx, cfg.Cache)
	if err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}

	var fetcher service.MetadataFetcher
	if cfg.Shortener.EnrichMetadata {
		fetcher = enrich.NewFetcher(0)
	}

	links := service.NewLinkService(repo, resolveCache, generator, fetcher, service.Options{
		ServerURL:  cfg.Server.ServerURL,
		MaxRetries: cfg.Shortener.MaxRetries,
	})
	defer func() {
		if err := links.Close(); err != nil {
			logrus.WithError(err).Error("error closing link service")
		}
	}()

	if err := links.StartClickFlush(ctx, cfg.Cache.FlushInterval); err != nil {
		return fmt.Errorf("failed to start click flush: %w", err)
	}
	defer func() {
		if err := links.StopClickFlush(); err != nil {
			logrus.WithError(err).Error("error stopping click flush")
		}
	}()

	sweep := sweeper.New(repo, cfg.Sweeper.Interval)
	sweep.Start(ctx)
	defer sweep.Stop(cfg.Sweeper.ShutdownGrace)

	server := httpTransport.NewServer(links, cfg.Server.Port)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start()
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-sigChan:
		logrus.WithField("signal", sig).Info("shutting down gracefully")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logrus.WithError(err).Error("error during server shutdown")
		}
	}

	logrus.Info("server stopped")
	return nil
}

func clientCommands(cmd *cobra.Command) *client.Commands {
	serverURL, _ := cmd.Flags().GetString("server-url")
	return client.NewCommands(client.NewClient(serverURL))
}

func runCreateLink(cmd *cobra.Command, args []string) error {
	ttl, _ := cmd.Flags().GetString("ttl")
	code, _ := cmd.Flags().GetString("code")
	owner, _ := cmd.Flags().GetString("owner")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return clientCommands(cmd).Create(ctx, domain.CreateLinkRequest{
		URL:        args[0],
		TTL:        ttl,
		CustomCode: code,
		OwnerID:    owner,
	})
}

func runGetLink(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return clientCommands(cmd).Get(ctx, args[0])
}

func runDeleteLink(cmd *cobra.Command, args []string) error {
	secret, _ := cmd.Flags().GetString("secret")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return clientCommands(cmd).Delete(ctx, args[0], secret)
}

func runListLinks(cmd *cobra.Command, args []string) error {
	owner, _ := cmd.Flags().GetString("owner")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return clientCommands(cmd).List(ctx, owner)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Fatal(err)
	}
}
