package main

import (
	"context"
	"flag"
	"log/slog"
	"time"

	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/config"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/database"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/logger"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/messaging"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/repository"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/search"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/service"
)

func main() {
	timeout := flag.Duration("timeout", 10*time.Minute, "Maximum duration of the reindex")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Starting product reindex", "index", cfg.Elasticsearch.Index, "url", cfg.Elasticsearch.URL)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	defer db.Close()

	// the index is created with its mapping when missing
	index, err := search.NewProductIndex(cfg.Elasticsearch)
	if err != nil {
		logger.Fatal("Failed to connect to Elasticsearch", "error", err)
	}

	repos := repository.NewRepositories(db)
	store := service.NewStoreService(db, repos.Products, repos.Orders, repos.Clients, index, messaging.NopPublisher{})

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	start := time.Now()
	n, err := store.Reindex(ctx)
	if err != nil {
		logger.Fatal("Reindex failed", "error", err)
	}

	slog.Info("Product reindex completed", "indexed", n, "duration", time.Since(start).String())
}
