package view

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexflint/go-arg"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/graphql-sample/userview/graphql"
	"github.com/graphql-sample/userview/internal/config"
	"github.com/graphql-sample/userview/internal/logger"
	"github.com/graphql-sample/userview/internal/server"
)

type cliArgs struct {
	Config      string `arg:"-c,--config" help:"path to a userview.yaml"`
	Endpoint    string `arg:"--endpoint" help:"GraphQL endpoint to query"`
	ID          string `arg:"--id" help:"id of the user to show"`
	FetchPolicy string `arg:"--fetch-policy" help:"cache-first, network-only, cache-only or no-cache"`
	Follow      bool   `arg:"-f,--follow" help:"keep rendering as the cached result changes"`
	Listen      string `arg:"--listen" help:"serve the page over HTTP on this address instead of printing it"`
}

func (cliArgs) Description() string {
	return "userview shows one user fetched with the GetUser GraphQL query."
}

// NewClient builds the client described by cfg: its endpoint, an
// InMemoryCache of cfg.CacheSize entries and cfg's default fetch policy.
func NewClient(cfg *config.Config, log *zap.Logger, metrics *graphql.Metrics) (*graphql.Client, error) {
	cache, err := graphql.NewInMemoryCache(cfg.CacheSize)
	if err != nil {
		return nil, err
	}
	return graphql.NewClient(cfg.Endpoint,
		&http.Client{Timeout: cfg.Timeout},
		graphql.WithCache(cache),
		graphql.WithFetchPolicy(cfg.Policy()),
		graphql.WithRequestTimeout(cfg.Timeout),
		graphql.WithLogger(log.Named("graphql")),
		graphql.WithMetrics(metrics),
	), nil
}

func run(ctx context.Context, args cliArgs) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	log := logger.New(cfg.Log, "userview")
	defer func() { _ = log.Sync() }()

	metrics := graphql.NewMetrics()
	registry := prometheus.NewRegistry()
	if err := graphql.RegisterMetrics(registry, metrics); err != nil {
		return err
	}

	client, err := NewClient(cfg, log, metrics)
	if err != nil {
		return err
	}
	app := NewApp(cfg.UserID)

	if cfg.Listen != "" {
		handler := NewHandler(app, client, registry, cfg.Timeout, log)
		return server.Run(ctx, cfg.Listen, handler, cfg.Server.ShutdownTimeout, log)
	}
	return app.Run(ctx, client, os.Stdout, args.Follow)
}

// loadConfig reads the config file and environment, then applies flags.
func loadConfig(args cliArgs) (*config.Config, error) {
	cfg, err := config.ReadAndValidateConfig(args.Config)
	if err != nil {
		return nil, err
	}
	overridden := false
	for _, o := range []struct {
		flag string
		dst  *string
	}{
		{args.Endpoint, &cfg.Endpoint},
		{args.ID, &cfg.UserID},
		{args.FetchPolicy, &cfg.FetchPolicy},
		{args.Listen, &cfg.Listen},
	} {
		if o.flag != "" {
			*o.dst = o.flag
			overridden = true
		}
	}
	if overridden {
		if err := cfg.ValidateAndFillDefaults(); err != nil {
			return nil, fmt.Errorf("invalid flags: %w", err)
		}
	}
	return cfg, nil
}

// Main is the entrypoint of the userview command.
func Main() {
	var err error
	defer func() {
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	}()

	var args cliArgs
	arg.MustParse(&args)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	err = run(ctx, args)
}
