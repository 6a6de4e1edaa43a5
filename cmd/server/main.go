package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pos-terminal/config"
	"pos-terminal/internal/api"
	"pos-terminal/internal/apiclient"
	"pos-terminal/internal/broker"
	"pos-terminal/internal/redisclient"
	"pos-terminal/internal/service"
	"pos-terminal/internal/store"
	"pos-terminal/internal/util"
	"pos-terminal/internal/vietqr"
	"pos-terminal/internal/worker"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting POS terminal")

	tp, err := util.InitTracer(util.ServiceName, cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	checks := map[string]api.ReadinessCheck{}

	var tokens service.TokenStore = service.NewMemoryTokenStore()
	if cfg.Redis.Addr != "" {
		redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, util.ServiceName)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		tokens = redisClient
		checks["redis"] = func(ctx context.Context) error {
			return redisClient.GetClient().Ping(ctx).Err()
		}
		logger.Info("Redis connected", zap.String("addr", cfg.Redis.Addr))
	} else {
		logger.Warn("REDIS_ADDR not set, session token will not survive restarts")
	}

	var mirror service.ReceiptMirror
	if cfg.Database.URL != "" {
		db, err := store.NewStore(cfg.Database.URL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		if err := db.Migrate(context.Background()); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}
		mirror = db
		checks["database"] = func(ctx context.Context) error {
			return db.GetDB().PingContext(ctx)
		}
		logger.Info("Receipt mirror database connected")
	}

	register := service.NewRegister(service.WithRemoveDebounce(cfg.Register.RemoveDebounce))

	var publisher service.InvoicePublisher
	if len(cfg.Kafka.Brokers) > 0 {
		producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicInvoice)
		defer producer.Close()
		publisher = broker.NewEventPublisher(producer)
		logger.Info("Kafka producer initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
	}

	backend := apiclient.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout)
	qr := vietqr.NewClient(vietqr.Config{
		Endpoint:    cfg.VietQR.Endpoint,
		APIKey:      cfg.VietQR.APIKey,
		ClientID:    cfg.VietQR.ClientID,
		AccountNo:   cfg.VietQR.AccountNo,
		AccountName: cfg.VietQR.AccountName,
		AcqID:       cfg.VietQR.AcqID,
		BankName:    cfg.VietQR.BankName,
		StoreLabel:  cfg.VietQR.StoreLabel,
		Timeout:     cfg.VietQR.Timeout,
	})

	authService := service.NewAuthService(backend, tokens)
	productService := service.NewProductService(backend, authService)
	receiptService := service.NewReceiptService(backend, authService, mirror, publisher, register.ComponentID())
	auditService := service.NewAuditService(backend, authService)
	checkoutService := service.NewCheckoutService(register, receiptService, authService, qr)

	ctx := context.Background()
	if err := receiptService.LoadMirror(ctx); err != nil {
		logger.Warn("Failed to load receipt mirror", zap.Error(err))
	}
	if _, err := authService.CheckAuth(ctx); err != nil {
		logger.Warn("Failed to restore session", zap.Error(err))
	}
	if _, err := productService.Fetch(ctx); err != nil {
		logger.Warn("Failed to load products", zap.Error(err))
	}
	if authService.IsAuthenticated() {
		if _, err := receiptService.Fetch(ctx); err != nil {
			logger.Warn("Failed to load receipts", zap.Error(err))
		}
	}

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	var syncWorker *worker.ReceiptSyncWorker
	if len(cfg.Kafka.Brokers) > 0 {
		consumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicInvoice, cfg.Kafka.ConsumerGroup+"-"+register.ComponentID())
		syncWorker = worker.NewReceiptSyncWorker(consumer, receiptService)
		go func() {
			if err := syncWorker.Start(workerCtx); err != nil && workerCtx.Err() == nil {
				logger.Error("Receipt sync worker error", zap.Error(err))
			}
		}()
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(api.Services{
		Auth:     authService,
		Products: productService,
		Receipts: receiptService,
		Audit:    auditService,
		Register: register,
		Checkout: checkoutService,
	}, checks)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	workerCancel()
	if syncWorker != nil {
		if err := syncWorker.Stop(); err != nil {
			logger.Warn("Error stopping receipt sync worker", zap.Error(err))
		}
	}

	logger.Info("Server exited")
}
