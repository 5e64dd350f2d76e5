package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"akili/internal/analytics"
	"akili/internal/articles"
	"akili/internal/categories"
	"akili/internal/events"
	"akili/internal/ingest"
	"akili/internal/media"
	"akili/internal/placeholder"
	"akili/internal/server"
	"akili/pkg/database"
	"akili/pkg/utils"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (default $AKILI_CONFIG)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "reader-server: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := utils.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := utils.NewLogger(cfg.Logging.Level)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	dbCfg := database.DefaultConfig()
	if cfg.Database.Path != "" {
		dbCfg.Path = cfg.Database.Path
	}
	db, err := database.OpenAndMigrate(dbCfg)
	if err != nil {
		return err
	}
	defer db.Close()

	gin.SetMode(gin.ReleaseMode)
	router := server.NewRouter(logger.Named("http"), cfg.Server.TrustedProxies)
	server.Probes(router, db, nil)

	articleRepo := articles.NewRepo(db)
	api := router.Group("/api")

	reader := articles.NewReaderHandler(articleRepo, logger.Named("articles"))
	reader.RegisterRoutes(api.Group("/articles"))
	reader.RegisterSearch(api)

	categories.NewHandler(categories.NewRepo(db), nil, logger.Named("categories")).
		RegisterReaderRoutes(api.Group("/categories"))

	analytics.NewHandler(analytics.NewRepo(db), articleRepo, logger.Named("analytics")).
		RegisterReaderRoutes(api)

	// ingestion runs here so the reader app can trigger it; no admin hub is
	// reachable from this process
	svc, err := ingest.FromConfig(context.Background(), cfg, articleRepo, events.Discard{}, logger)
	if err != nil {
		return err
	}
	ingest.NewHandler(svc, cfg.Ingest.SyncToken).RegisterRoutes(api)

	placeholder.RegisterRoutes(api)
	media.RegisterStatic(router, media.NewDiskStore(cfg.Media.Dir, cfg.Media.BaseURL))

	logger.Info("reader server configured",
		zap.String("db", dbCfg.Path),
		zap.Bool("classifier", svc.Classifier != nil),
		zap.Bool("sync_token", cfg.Ingest.SyncToken != ""),
	)
	return server.Run(logger, cfg.Server.ReaderAddr, router, nil)
}
