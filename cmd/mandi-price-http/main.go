// Command mandi-price-http starts the mandi price tool server.
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mandi-price/internal/config"
	"mandi-price/internal/datagov"
	"mandi-price/internal/lookup"
	"mandi-price/internal/server"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Fatalf("env: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := cfg.Logger()
	slog.SetDefault(logger)

	httpClient := &http.Client{Timeout: cfg.UpstreamTimeout}
	client := datagov.New(cfg.BaseURL, cfg.ResourceID, cfg.APIKey, httpClient)
	srv := server.New(lookup.NewService(client), logger)

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("starting mandi price server", "port", cfg.Port, "tls", cfg.TLS(), "resource", client.ResourceID)
		var err error
		if cfg.TLS() {
			err = httpSrv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			err = httpSrv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", "err", err)
	}
}
