package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/mamadbah2/bogarovo/internal/config"
	"github.com/mamadbah2/bogarovo/internal/metrics"
	"github.com/mamadbah2/bogarovo/internal/repository/mongodb"
	"github.com/mamadbah2/bogarovo/internal/repository/sheets"
	"github.com/mamadbah2/bogarovo/internal/repository/sqlite"
	"github.com/mamadbah2/bogarovo/internal/scheduler"
	"github.com/mamadbah2/bogarovo/internal/server/handlers"
	"github.com/mamadbah2/bogarovo/internal/server/router"
	broadcastsvc "github.com/mamadbah2/bogarovo/internal/service/broadcast"
	inventorysvc "github.com/mamadbah2/bogarovo/internal/service/inventory"
	reportingsvc "github.com/mamadbah2/bogarovo/internal/service/reporting"
	"github.com/mamadbah2/bogarovo/internal/worker"
	"github.com/mamadbah2/bogarovo/pkg/clients/anthropic"
	smsclient "github.com/mamadbah2/bogarovo/pkg/clients/sms"
	whatsappclient "github.com/mamadbah2/bogarovo/pkg/clients/whatsapp"
	"github.com/mamadbah2/bogarovo/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	ctx := context.Background()

	db, err := sqlite.OpenDB(cfg.Store.Path)
	if err != nil {
		baseLogger.Fatal("failed to open store", zap.String("path", cfg.Store.Path), zap.Error(err))
	}
	defer db.Close()

	stockRepo, err := sqlite.NewStockRepository(ctx, db, baseLogger.Named("repo.stock"))
	if err != nil {
		baseLogger.Fatal("failed to init stock repository", zap.Error(err))
	}
	taskRepo, err := sqlite.NewTaskRepository(ctx, db, baseLogger.Named("repo.tasks"))
	if err != nil {
		baseLogger.Fatal("failed to init task repository", zap.Error(err))
	}

	var (
		movementLog inventorysvc.MovementLog
		reportStore reportingsvc.ReportStore
	)
	if cfg.MongoDB.Enabled() {
		mongoRepo, err := mongodb.NewMongoDBRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		movementLog, reportStore = mongoRepo, mongoRepo
		baseLogger.Info("mongodb movement log enabled")
	} else {
		baseLogger.Warn("MONGODB_URI missing, movement log and report history disabled")
	}

	var sheetsRepo sheets.Repository
	if cfg.Sheets.Enabled() {
		repo, err := sheets.NewGoogleSheetRepository(ctx, cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		sheetsRepo = repo
		baseLogger.Info("google sheets export enabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics, err := metrics.New(registry)
	if err != nil {
		baseLogger.Fatal("failed to register metrics", zap.Error(err))
	}

	queue := worker.NewQueue(64, baseLogger.Named("worker"), appMetrics)

	var gateway broadcastsvc.Sender
	switch cfg.SMS.Provider {
	case config.ProviderWhatsApp:
		gateway = whatsappclient.NewClient(cfg.WhatsApp)
	default:
		gateway = smsclient.NewClient(cfg.SMS)
	}
	baseLogger.Info("sms gateway selected", zap.String("provider", cfg.SMS.Provider))

	ocr := anthropic.NewClient(cfg.OCR)
	if cfg.OCR.AnthropicKey == "" {
		baseLogger.Warn("anthropic api key missing, delivery slip scanning disabled")
	}

	inventory := inventorysvc.NewService(stockRepo, taskRepo, movementLog, appMetrics, baseLogger.Named("svc.inventory"))
	gate := broadcastsvc.NewGate(cfg.Broadcast.CameraGranted, cfg.Broadcast.SMSGranted)
	broadcast := broadcastsvc.NewService(ocr, gateway, gate, cfg.Broadcast.Template, appMetrics, baseLogger.Named("svc.broadcast"))
	reporting := reportingsvc.NewService(stockRepo, sheetsRepo, reportStore, baseLogger.Named("svc.reporting"))

	engine := router.New(
		handlers.NewInventoryHandler(inventory, queue, baseLogger.Named("handlers.inventory")),
		handlers.NewBroadcastHandler(broadcast, baseLogger.Named("handlers.broadcast")),
		registry,
		baseLogger.Named("router"),
	)

	sched, err := scheduler.NewScheduler(cfg.Reporting, reporting, gateway, baseLogger.Named("scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	// Stream endpoints hold responses open: no WriteTimeout, and requests
	// derive from streamCtx so shutdown can end them.
	streamCtx, endStreams := context.WithCancel(context.Background())
	defer endStreams()

	srv := &http.Server{
		Addr:        ":" + cfg.Server.Port,
		Handler:     engine,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
		BaseContext: func(net.Listener) context.Context { return streamCtx },
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-sigCtx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	endStreams()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
	if err := queue.Close(shutdownCtx); err != nil {
		baseLogger.Error("pending writes not drained", zap.Error(err))
	}
}
