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
	"akili/internal/auth"
	"akili/internal/categories"
	"akili/internal/events"
	"akili/internal/ingest"
	"akili/internal/media"
	"akili/internal/server"
	"akili/pkg/database"
	"akili/pkg/utils"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (default $AKILI_CONFIG)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "admin-server: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := utils.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.ValidateAdmin(); err != nil {
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

	hub := events.NewHub(logger.Named("events"))

	gin.SetMode(gin.ReleaseMode)
	router := server.NewRouter(logger.Named("http"), cfg.Server.TrustedProxies)
	server.Probes(router, db, func() gin.H {
		return gin.H{"ws_clients": hub.Stats().WSClients}
	})

	tokens := auth.TokenService{
		Secret:   []byte(cfg.Auth.JWTSecret),
		Issuer:   cfg.Auth.JWTIssuer,
		Duration: cfg.Auth.JWTDuration(),
	}
	authRepo := auth.NewRepo(db)
	authHandler := auth.NewHandler(authRepo, tokens, logger.Named("auth"))
	authHandler.RegisterRoutes(router.Group("/auth"))

	admin := router.Group("/admin")
	admin.Use(auth.AuthMiddleware(tokens, authRepo))

	admin.GET("/ws", events.WSHandler(hub))
	server.Debug(admin, func() gin.H {
		return gin.H{
			"db":         dbCfg.Path,
			"ws_clients": hub.Stats().WSClients,
		}
	})
	authHandler.RegisterUserRoutes(admin)

	articleRepo := articles.NewRepo(db)
	articles.NewHandler(articleRepo, hub, logger.Named("articles")).
		RegisterRoutes(admin.Group("/articles"))

	categories.NewHandler(categories.NewRepo(db), hub, logger.Named("categories")).
		RegisterRoutes(admin.Group("/categories"))

	store := media.NewDiskStore(cfg.Media.Dir, cfg.Media.BaseURL)
	media.NewHandler(media.NewRepo(db), store, cfg.Media.MaxUploadBytes, hub, logger.Named("media")).
		RegisterRoutes(admin.Group("/media"))
	media.RegisterStatic(router, store)

	analytics.NewHandler(analytics.NewRepo(db), articleRepo, logger.Named("analytics")).
		RegisterRoutes(admin)

	svc, err := ingest.FromConfig(context.Background(), cfg, articleRepo, hub, logger)
	if err != nil {
		return err
	}
	ingest.NewHandler(svc, "").RegisterAdminRoutes(admin)

	if n, err := authRepo.Count(context.Background()); err == nil && n == 0 {
		logger.Warn("no admin users yet; create one with: akilictl admin create")
	}

	logger.Info("admin server configured", zap.String("db", dbCfg.Path))
	return server.Run(logger, cfg.Server.AdminAddr, router, hub.Close)
}
