package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"

	"github.com/ajkula/GoBatchPrint/adapter/inbound/rest"
	"github.com/ajkula/GoBatchPrint/adapter/inbound/websocket"
	"github.com/ajkula/GoBatchPrint/adapter/outbound/filewatcher"
	"github.com/ajkula/GoBatchPrint/domain/port/inbound"
	"github.com/ajkula/GoBatchPrint/domain/service"
)

const notificationsPath = "/api/ws/notifications"

// serve runs the HTTP API and the optional hot folder until ctx is cancelled.
// The event loop runs on the calling goroutine.
func serve(ctx context.Context, a *app, stderr io.Writer) int {
	cfg := a.cfg
	logger := a.logger

	wsHandler := websocket.NewHandler(logger)
	defer wsHandler.Cleanup()

	var watch inbound.FolderWatchService
	if cfg.Watch.Enabled {
		watcher, err := filewatcher.NewFSWatcher(cfg.Watch.Debounce)
		if err != nil {
			fmt.Fprintf(stderr, "Error creating file watcher: %v\n", err)
			return exitSessionError
		}
		watch = service.NewFolderWatchService(watcher, a.sessions, wsHandler.SessionHandlers(), logger, cfg.Watch.FlushInterval)
		if err := watch.WatchFolder(ctx, cfg.Watch.Directory); err != nil {
			fmt.Fprintf(stderr, "Error: %s\n", describeError(err))
			_ = watcher.Stop()
			return exitSessionError
		}
		if err := watch.Start(ctx); err != nil {
			fmt.Fprintf(stderr, "Error starting folder watch: %v\n", err)
			return exitSessionError
		}
		defer watch.Stop()
	}

	var server *http.Server
	var serverFailed atomic.Bool
	if cfg.HTTP.Enabled {
		router := newRouter(a, wsHandler, watch)
		server = &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Address, cfg.HTTP.Port),
			Handler:      router,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		}

		go func() {
			logger.Info("HTTP server listening", "address", server.Addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("HTTP server error", "error", err)
				fmt.Fprintf(stderr, "HTTP server error: %v\n", err)
				serverFailed.Store(true)
				a.loop.Stop()
			}
		}()
	}

	if server == nil && watch == nil {
		fmt.Fprintln(stderr, "Nothing to serve: both http.enabled and watch.enabled are off")
		return exitSessionError
	}

	logger.Info("GoBatchPrint started successfully")
	a.loop.Run(ctx)
	logger.Info("Shutting down gracefully")

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown failed", "error", err)
		}
	}
	if serverFailed.Load() {
		return exitSessionError
	}
	return exitOK
}

func newRouter(a *app, wsHandler *websocket.Handler, watch inbound.FolderWatchService) *mux.Router {
	cfg := a.cfg
	router := mux.NewRouter()

	authService := service.NewAuthService(a.logger, cfg.Security.JWT.Secret, cfg.Security.JWT.ExpirationMinutes)
	authMiddleware := rest.NewAuthMiddleware(authService, a.logger, cfg.Security.EnableAuthentication, cfg.Monitoring.Path)
	authMiddleware.AllowQueryToken(notificationsPath)
	router.Use(requestLogger(a))
	router.Use(rest.NewOriginMiddleware(a.logger).Middleware)
	router.Use(authMiddleware.Middleware)

	handler := rest.NewHandler(
		a.sessions,
		a.enumerator,
		a.printers,
		a.journal,
		watch,
		wsHandler.SessionHandlers(),
		a.logger,
	)
	handler.SetStatsService(service.NewStatsService(a.journal, a.logger))
	handler.SetupRoutes(router)
	rest.NewSettingsHandler(a.logger, cfg.General.LogLevel, a.logger).SetupRoutes(router)

	router.HandleFunc(notificationsPath, wsHandler.HandleConnection)

	if a.metricsH != nil {
		router.Handle(cfg.Monitoring.Path, a.metricsH).Methods("GET")
	}

	return router
}

func requestLogger(a *app) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			a.logger.Debug("Request", "method", r.Method, "path", r.URL.Path)
			next.ServeHTTP(w, r)
		})
	}
}
