// Comando migrate: aplica las migraciones pendientes y termina.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/socis-ca/website/internal/config"
	"github.com/socis-ca/website/internal/observability/logger"
	"github.com/socis-ca/website/internal/store/pg"
	migrations "github.com/socis-ca/website/migrations/postgres"
)

func main() {
	_ = godotenv.Load()

	cfgPath := flag.String("config", "config.yaml", "path al YAML de configuración")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Logs.Level, ServiceName: "migrate"})
	defer func() { _ = logger.Sync() }()
	log := logger.Named("migrate")

	if cfg.Storage.DSN == "" {
		log.Fatal("storage.dsn vacío: no hay contra qué migrar")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	st, err := pg.New(ctx, cfg.Storage.DSN, pg.Tuning{MaxConns: 2})
	if err != nil {
		log.Fatal("opening postgres pool", logger.Err(err))
	}
	defer st.Close()

	if err := st.Migrate(ctx, migrations.FS); err != nil {
		log.Fatal("running migrations", logger.Err(err))
	}
	log.Info("migrations up to date")
}
