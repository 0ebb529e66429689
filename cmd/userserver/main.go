// userserver is the demo GraphQL server that userview queries.  It serves
// POST /graphql with the schema in view/schema.graphql.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexflint/go-arg"

	"github.com/graphql-sample/userview/internal/config"
	"github.com/graphql-sample/userview/internal/logger"
	"github.com/graphql-sample/userview/internal/server"
)

type args struct {
	Config string `arg:"-c,--config" help:"path to a userview.yaml; only its server and log sections are used"`
	Addr   string `arg:"--addr" help:"address to listen on"`
}

func main() {
	var err error
	defer func() {
		if err != nil {
			fmt.Println(fmt.Errorf("userserver failed: %w", err))
			os.Exit(1)
		}
	}()

	var a args
	arg.MustParse(&a)

	cfg, err := config.ReadAndValidateConfig(a.Config)
	if err != nil {
		return
	}
	if a.Addr != "" {
		cfg.Server.Addr = a.Addr
	}

	log := logger.New(cfg.Log, "userserver")
	defer func() { _ = log.Sync() }()

	schema, err := server.NewSchema(server.NewMemoryStore(server.SampleUsers()...))
	if err != nil {
		return
	}
	handler := server.NewHandler(schema, cfg.Server.AllowedOrigins, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	err = server.Run(ctx, cfg.Server.Addr, handler, cfg.Server.ShutdownTimeout, log)
}
