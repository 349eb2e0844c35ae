package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/BartekStachowicz/fishspot-backend/internal/api"
	"github.com/BartekStachowicz/fishspot-backend/internal/api/handler"
	custommiddleware "github.com/BartekStachowicz/fishspot-backend/internal/api/middleware"
	"github.com/BartekStachowicz/fishspot-backend/internal/application"
	"github.com/BartekStachowicz/fishspot-backend/internal/config"
	"github.com/BartekStachowicz/fishspot-backend/internal/infrastructure/crypto"
	"github.com/BartekStachowicz/fishspot-backend/internal/infrastructure/mail"
	"github.com/BartekStachowicz/fishspot-backend/internal/infrastructure/postgres"
	redisinfra "github.com/BartekStachowicz/fishspot-backend/internal/infrastructure/redis"
	"github.com/BartekStachowicz/fishspot-backend/internal/pkg/logger"
	"github.com/BartekStachowicz/fishspot-backend/internal/pkg/metrics"
	"github.com/BartekStachowicz/fishspot-backend/internal/worker"
)

func main() {
	cfg := config.Load()

	// ロガー初期化
	log := logger.NewLogger(os.Getenv("APP_ENV"))
	logger.Set(log)
	defer func() { _ = logger.Sync() }()

	// メトリクス初期化
	m := metrics.Init()

	// PostgreSQL接続
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		log.Fatal("データベース接続に失敗", zap.Error(err))
	}
	defer db.Close()

	// マイグレーション実行
	if err := postgres.RunMigrations(db.DB, "migrations"); err != nil {
		log.Fatal("マイグレーションに失敗", zap.Error(err))
	}

	// Redis接続（釣り場単位の直列化ロック）
	redisClient := redisinfra.NewClient(&cfg.Redis)
	defer redisClient.Close()
	lockManager := redisinfra.NewLakeLockManager(redisClient)

	// 個人情報暗号化
	cipher, err := crypto.NewAESCipher(cfg.Crypto.Secret)
	if err != nil {
		log.Fatal("暗号化の初期化に失敗", zap.Error(err))
	}
	codec := application.NewPIICodec(cipher)

	// リポジトリとサービス
	lakeRepo := postgres.NewLakeRepository(db)
	reservationService := application.NewReservationService(lakeRepo, codec, lockManager)
	spotService := application.NewSpotService(lakeRepo, lockManager)
	mailer := mail.New(&cfg.Mail)

	// Echoセットアップ
	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	custommiddleware.SetupMiddleware(e)
	e.Use(custommiddleware.PrometheusMiddleware(m))

	// ルーティング
	healthHandler := handler.NewHealthHandler()
	reservationHandler := handler.NewReservationHandler(reservationService, mailer)
	spotHandler := handler.NewSpotHandler(spotService)

	e.GET("/health", healthHandler.Check)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), custommiddleware.MetricsBasicAuth())
	reservationHandler.RegisterRoutes(e.Group("/reservations"))
	spotHandler.RegisterRoutes(e.Group("/spots"))

	// 定期スナップショットワーカー
	snapshotWorker := worker.NewSnapshotWorker(lakeRepo, cfg.Snapshot.Interval)
	workerCtx, cancelWorker := context.WithCancel(context.Background())
	go snapshotWorker.Start(workerCtx)

	// サーバー起動
	go func() {
		if err := e.Start(":" + cfg.Server.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal("サーバー起動エラー", zap.Error(err))
		}
	}()

	// シグナル待機
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("サーバーをシャットダウンしています...")

	cancelWorker()
	snapshotWorker.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatal("サーバーシャットダウンエラー", zap.Error(err))
	}

	logger.Info("サーバーが正常にシャットダウンしました")
}
