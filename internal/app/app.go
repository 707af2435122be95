package app

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"campuspulse/internal/catalog"
	"campuspulse/internal/cli"
	"campuspulse/internal/config"
	"campuspulse/internal/forecast"
	"campuspulse/internal/history"
	"campuspulse/internal/httpx"
	"campuspulse/internal/integrations/llm"
	"campuspulse/internal/storage"
	"campuspulse/internal/storage/clickhouse"
	"campuspulse/internal/storage/postgres"
	"campuspulse/internal/storage/sqlite"
)

func Main() {
	cfg := config.LoadConfig()
	appliedHTTPTimeout := httpx.ConfigureExternalHTTPClient(cfg.ExternalHTTPTimeoutSeconds)
	log.Printf(
		"Config loaded. Campus=%s LLMProvider=%s OracleTimeout=%s DBPath=%s Postgres=%t ClickHouse=%t MenuPath=%s Timezone=%s ExternalHTTPTimeout=%s",
		cfg.CampusName,
		cfg.LLMProvider,
		cfg.OracleTimeout(),
		cfg.DBPath,
		cfg.PostgresDSN != "",
		cfg.ClickHouseConfigured(),
		cfg.MenuPath,
		cfg.Timezone,
		appliedHTTPTimeout,
	)

	application, cleanup := Wire(context.Background(), cfg)
	defer cleanup()
	application.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	if err := cli.NewRootCmd(application).Execute(); err != nil {
		cleanup()
		os.Exit(1)
	}
}

// Wire builds the command dependencies from cfg. Storage backends that
// fail to open are logged and skipped; predictions never depend on them.
func Wire(ctx context.Context, cfg config.Config) (*cli.App, func()) {
	var closers []func() error
	recorders := storage.NewMulti()
	var reader storage.Reader

	if cfg.DBPath != "" {
		store, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			log.Printf("history sqlite disabled path=%s (non-fatal): %v", cfg.DBPath, err)
		} else {
			log.Printf("Database initialized at %s", cfg.DBPath)
			recorders.Add("sqlite", store)
			reader = store
			closers = append(closers, store.Close)
		}
	}

	if cfg.PostgresDSN != "" {
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Printf("history postgres disabled (non-fatal): %v", err)
		} else {
			recorders.Add("postgres", store)
			if reader == nil {
				reader = store
			}
			closers = append(closers, store.Close)
		}
	}

	if cfg.ClickHouseConfigured() {
		store, err := clickhouse.NewStore(ctx, clickhouse.Config{
			Host:     cfg.ClickHouseHost,
			Port:     cfg.ClickHousePort,
			Database: cfg.ClickHouseDatabase,
			Username: cfg.ClickHouseUsername,
			Password: cfg.ClickHousePassword,
		})
		if err != nil {
			log.Printf("usage analytics clickhouse disabled host=%s (non-fatal): %v", cfg.ClickHouseHost, err)
		} else {
			recorders.Add("clickhouse", store)
			closers = append(closers, store.Close)
		}
	}

	var sink *history.Sink
	if recorders.Len() > 0 {
		log.Printf("History recording to %s", strings.Join(recorders.Names(), ", "))
		sink = history.NewSink(recorders, cfg.RecordTimeout())
	} else {
		log.Println("No history store configured, predictions will not be recorded")
	}

	var oracle forecast.Oracle
	if client, ok := llm.NewClient(cfg); ok {
		log.Printf("Oracle enabled provider=%s model=%s", client.Provider(), client.Model())
		oracle = client
	}
	engine := forecast.NewEngine(oracle,
		forecast.WithCampus(cfg.CampusName),
		forecast.WithOracleTimeout(cfg.OracleTimeout()),
	)

	menu := catalog.NewMenu(catalog.DefaultMenu())
	if cfg.MenuPath != "" {
		items, err := catalog.LoadMenu(cfg.MenuPath)
		if err != nil {
			log.Printf("menu load failed path=%s, using built-in menu (non-fatal): %v", cfg.MenuPath, err)
		} else {
			menu = catalog.NewMenu(items)
		}
	}

	cleanup := func() {
		sink.Wait()
		for _, c := range closers {
			if err := c(); err != nil {
				log.Printf("close error (non-fatal): %v", err)
			}
		}
		closers = nil
	}

	return &cli.App{
		Config: cfg,
		Engine: engine,
		Sink:   sink,
		Reader: reader,
		Menu:   menu,
	}, cleanup
}
