package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/zinrai/netenum-go/internal/config"
	"github.com/zinrai/netenum-go/internal/domain"
	"github.com/zinrai/netenum-go/internal/infrastructure/cache"
	"github.com/zinrai/netenum-go/internal/infrastructure/db"
	"github.com/zinrai/netenum-go/internal/infrastructure/output"
	"github.com/zinrai/netenum-go/internal/infrastructure/persistence"
	"github.com/zinrai/netenum-go/internal/infrastructure/source"
	"github.com/zinrai/netenum-go/internal/interface/api"
	"github.com/zinrai/netenum-go/internal/logger"
	"github.com/zinrai/netenum-go/internal/metrics"
	"github.com/zinrai/netenum-go/internal/usecase"
)

type options struct {
	Random     bool    `short:"r" long:"random" description:"output addresses in random order (buffers every address)"`
	Seed       uint64  `long:"seed" description:"seed for --random, 0 picks one"`
	Limit      int     `short:"l" long:"limit" description:"stop after this many addresses"`
	Config     string  `short:"c" long:"config" description:"YAML config file"`
	Source     string  `short:"s" long:"source" description:"where ranges are read from" choice:"stdin" choice:"args" choice:"postgres" choice:"redis"`
	DSN        string  `long:"dsn" env:"NETENUM_DSN" description:"PostgreSQL DSN for --source=postgres"`
	NetworkIDs []int64 `long:"network-id" description:"only enumerate these network ids (postgres source)"`
	RedisURL   string  `long:"redis-url" env:"NETENUM_REDIS_URL" description:"Redis URL for --source=redis"`
	RedisKey   string  `long:"redis-key" description:"Redis list holding the ranges"`
	Serve      string  `long:"serve" description:"serve the HTTP API on this address"`
	Debug      bool    `short:"d" long:"debug" description:"debug logging"`
	LogLevel   string  `long:"log-level" description:"log level (debug, info, warn, error)"`

	Args struct {
		Ranges []string `positional-arg-name:"RANGE"`
	} `positional-args:"yes"`
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var opts options
	parser := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = "netenum"
	parser.Usage = "[OPTIONS] [RANGE...]"
	parser.ShortDescription = "Enumerate IP addresses from CIDR ranges"

	if _, err := parser.ParseArgs(args); err != nil {
		if flags.WroteHelp(err) {
			fmt.Fprintln(stdout, err)
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	logger.SetLevelByName(cfg.LogLevel)
	log := logger.New(stderr)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	if cfg.Serve != "" {
		if err := serve(ctx, cfg, log, reg, m); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	src, closeSource, err := openSource(ctx, cfg, stdin)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer closeSource()

	uc := usecase.NewEnumerateUseCase(src, output.NewLineWriter(stdout), usecase.Options{
		Random:        cfg.Random,
		Seed:          cfg.Seed,
		Limit:         cfg.Limit,
		FlushEachLine: isTerminal(stdout),
	}, log, m)

	if _, err := uc.Run(ctx); err != nil {
		if errors.Is(err, usecase.ErrNoRanges) {
			fmt.Fprintln(stderr, "Error: No CIDR ranges provided. Pipe CIDR ranges to stdin, one per line.")
			return 1
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// loadConfig reads the config file, if any, and applies the flags over it.
func loadConfig(opts options) (config.Config, error) {
	cfg := config.Default()
	if opts.Config != "" {
		var err error
		if cfg, err = config.Load(opts.Config); err != nil {
			return cfg, err
		}
	}

	if len(opts.Args.Ranges) > 0 {
		cfg.Source = config.SourceArgs
		cfg.Ranges = opts.Args.Ranges
	}
	if opts.Source != "" {
		cfg.Source = opts.Source
	}
	if opts.Random {
		cfg.Random = true
	}
	if opts.Seed != 0 {
		cfg.Seed = opts.Seed
	}
	if opts.Limit != 0 {
		cfg.Limit = opts.Limit
	}
	if opts.DSN != "" {
		cfg.Postgres.DSN = opts.DSN
	}
	if len(opts.NetworkIDs) > 0 {
		cfg.Postgres.NetworkIDs = opts.NetworkIDs
	}
	if opts.RedisURL != "" {
		cfg.Redis.URL = opts.RedisURL
	}
	if opts.RedisKey != "" {
		cfg.Redis.Key = opts.RedisKey
	}
	if opts.Serve != "" {
		cfg.Serve = opts.Serve
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}
	if opts.Debug {
		cfg.LogLevel = "debug"
	}

	return cfg, cfg.Validate()
}

func openSource(ctx context.Context, cfg config.Config, stdin io.Reader) (domain.RangeSource, func(), error) {
	noop := func() {}

	switch cfg.Source {
	case config.SourceArgs:
		return source.Static(cfg.Ranges), noop, nil
	case config.SourcePostgres:
		conn, err := db.Open(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, noop, err
		}
		return persistence.NewRangeRepository(conn, cfg.Postgres.NetworkIDs...), func() { conn.Close() }, nil
	case config.SourceRedis:
		rs, err := cache.NewRedisSource(cfg.Redis.URL, cfg.Redis.Key)
		if err != nil {
			return nil, noop, err
		}
		return rs, func() { rs.Close() }, nil
	default:
		return source.NewLineReader(stdin), noop, nil
	}
}

func serve(ctx context.Context, cfg config.Config, log *slog.Logger, reg *prometheus.Registry, m *metrics.Metrics) error {
	uc := usecase.NewEnumerateUseCase(nil, nil, usecase.Options{}, log, m)
	srv := &http.Server{
		Addr:              cfg.Serve,
		Handler:           api.NewMux(api.NewEnumerateHandler(uc, log), reg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", cfg.Serve)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
