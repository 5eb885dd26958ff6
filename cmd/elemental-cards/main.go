package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ericogr/elemental-cards/internal/api"
	"github.com/ericogr/elemental-cards/internal/engine"
	"github.com/ericogr/elemental-cards/internal/logging"
	"github.com/ericogr/elemental-cards/internal/match"
	"github.com/ericogr/elemental-cards/internal/service"
	"github.com/ericogr/elemental-cards/internal/version"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (default: $ELEMENTAL_CONFIG or ./elemental.yaml)")
	flag.Parse()
	defer logging.Sync()

	cfg := loadConfigOrExit(*configPath)
	logging.Info("Starting elemental-cards", logging.Fields{"version": version.Get().String()})

	cat := loadCatalogOrExit(cfg.CatalogPath)
	repo := createRepositoryOrExit(cfg.DatabasePath)

	recorder := service.NewResultRecorder(repo, repo)
	mg := match.NewManager(engine.New(cat), match.Config{
		QueueSize:        cfg.QueueSize,
		TurnTimeout:      cfg.TurnTimeout,
		MaxAIActionsTurn: cfg.MaxAIActions,
	}, match.TelemetryObserver{}, recorder)
	defer mg.Shutdown()

	handler := api.NewGameHandler(cat, mg, repo, service.DefaultBranchHooks(time.Now), recorder, api.Options{
		ThinkScale:    cfg.AIThinkScale,
		FailurePolicy: cfg.FailurePolicy,
		Seed:          cfg.Seed,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	startJanitor(ctx, mg, cfg.MatchRetain)

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           api.NewRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := serve(ctx, srv); err != nil {
		logging.Fatal("Server stopped", err, nil)
	}
	logging.Info("Server stopped", nil)
}
