// Package server holds the HTTP plumbing shared by the reader and admin
// binaries: router setup, health probes and graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"akili/internal/auth"
	"akili/pkg/models"
	"akili/pkg/utils"
)

const shutdownTimeout = 10 * time.Second

// NewRouter returns a gin engine with zap request logging and recovery.
func NewRouter(logger *zap.Logger, trustedProxies []string) *gin.Engine {
	router := gin.New()
	router.Use(utils.GinRecovery(logger), utils.GinLogger(logger))
	// avoid the "trusted all proxies" warning
	_ = router.SetTrustedProxies(trustedProxies)
	return router
}

// Probes mounts /health and /ready. extra, when set, adds fields to both.
func Probes(router *gin.Engine, db *sql.DB, extra func() gin.H) {
	with := func(h gin.H) gin.H {
		if extra != nil {
			for k, v := range extra() {
				h[k] = v
			}
		}
		return h
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, with(gin.H{"status": "ok"}))
	})

	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, with(gin.H{
				"status":   "not_ready",
				"db_error": err.Error(),
			}))
			return
		}
		c.JSON(http.StatusOK, with(gin.H{"status": "ready", "db": "ok"}))
	})
}

// Debug mounts GET /debug on rg, which must sit behind auth.AuthMiddleware.
// It reports deployment details, so only manage_users sessions may read it.
func Debug(rg *gin.RouterGroup, info func() gin.H) {
	rg.GET("/debug", auth.RequirePermission(models.PermManageUsers), func(c *gin.Context) {
		c.JSON(http.StatusOK, info())
	})
}

// Run serves handler on addr until SIGINT/SIGTERM or a listen error, then
// shuts down within shutdownTimeout. onStop runs after the server stops.
func Run(logger *zap.Logger, addr string, handler http.Handler, onStop func()) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var runErr error
	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err, ok := <-errCh:
		if ok {
			logger.Error("server error", zap.Error(err))
			runErr = err
		}
	}

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("http shutdown error", zap.Error(err))
	}
	if onStop != nil {
		onStop()
	}
	logger.Info("server stopped")
	return runErr
}
