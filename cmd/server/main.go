package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/docstruct/docstruct/internal/api"
	"github.com/docstruct/docstruct/internal/arango"
	"github.com/docstruct/docstruct/internal/config"
	"github.com/docstruct/docstruct/internal/llm"
	"github.com/docstruct/docstruct/internal/pipeline"
	"github.com/docstruct/docstruct/internal/store"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st := store.New(cfg.DBPath, store.WithLogger(log))
	if err := st.Init(ctx); err != nil {
		log.Error("store init failed", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}

	var claude *llm.Client
	if cfg.AnthropicAPIKey != "" {
		claude = llm.NewClient(cfg.AnthropicAPIKey, cfg.AnthropicModel)
	}

	var sink *arango.Client
	if cfg.ArangoEndpoint != "" {
		sink = arango.NewClient(cfg.ArangoEndpoint, cfg.ArangoDatabase, cfg.ArangoCollection, cfg.ArangoToken)
		pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
		if err := sink.Ping(pingCtx); err != nil {
			log.Warn("arango unreachable, pushes will be retried per job", "endpoint", cfg.ArangoEndpoint, "error", err)
		} else {
			log.Info("arango sink connected", "endpoint", cfg.ArangoEndpoint, "collection", sink.Collection())
		}
		pingCancel()
	}

	orch := pipeline.NewOrchestrator(cfg, claude, st, sink, log)
	orch.Start(ctx)

	srv := api.NewServer(orch, claude, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		if claude != nil {
			claude.Close()
		}
		if err := st.Close(); err != nil {
			log.Error("store close failed", "error", err)
		}
	}()

	log.Info("starting docstruct", "port", cfg.Port, "merge_strategy", cfg.MergeStrategy)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
