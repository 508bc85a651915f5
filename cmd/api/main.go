package main

import (
	"context"

	"finepharma/internal/config"
	"finepharma/internal/domain/model"
	"finepharma/internal/handler"
	"finepharma/internal/infra/cache"
	"finepharma/internal/infra/db"
	infraRepo "finepharma/internal/infra/repository"
	"finepharma/internal/logger"
	"finepharma/internal/server"
	"finepharma/internal/usecase"
	"finepharma/internal/watch"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// .envは無くてもよい（コンテナでは環境変数直指定）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger.Init(cfg.GoEnv)
	defer logger.Sync()

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		logger.L().Fatal("db connect failed", zap.Error(err))
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.Order{},
		&model.OrderItem{},
		&model.Invoice{},
		&model.InvoiceItem{},
		&model.StockAdjustment{},
		&model.AuditLog{},
	); err != nil {
		logger.L().Fatal("migrate failed", zap.Error(err))
	}

	//統計キャッシュ。Redisが無ければnoop。
	var statsCache cache.StatsCache = cache.NoopStatsCache{}
	if cfg.RedisAddr != "" {
		rc := cache.NewRedisStatsCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := rc.Ping(context.Background()); err != nil {
			logger.L().Warn("redis unreachable, stats cache disabled", zap.Error(err))
		} else {
			statsCache = rc
			defer rc.Close()
		}
	}

	//Repository（GORM実装）生成
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	inventoryRepo := infraRepo.NewInventoryGormRepository(gormDB)
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//変更通知ハブ
	hub := watch.NewHub()

	//Usecase生成
	authUC := usecase.NewAuthUsecase(userRepo, hub, cfg.JWTSecret)
	productUC := usecase.NewProductUsecase(productRepo, inventoryRepo, auditRepo, hub)
	orderUC := usecase.NewOrderUsecase(txManager, hub, statsCache)
	invoiceUC := usecase.NewInvoiceUsecase(txManager, hub, statsCache)
	userUC := usecase.NewUserUsecase(userRepo, auditRepo, hub)

	//Handler生成
	handlers := server.Handlers{
		Auth:         handler.NewAuthHandler(authUC),
		Product:      handler.NewProductHandler(productUC),
		AdminProduct: handler.NewAdminProductHandler(productUC, authUC),
		Order:        handler.NewOrderHandler(orderUC, authUC),
		AdminOrder:   handler.NewAdminOrderHandler(orderUC, authUC),
		Invoice:      handler.NewInvoiceHandler(invoiceUC, authUC),
		AdminUser:    handler.NewAdminUserHandler(userUC, authUC),
	}

	//Server起動
	e := server.New(cfg, handlers)
	logger.L().Info("starting api", zap.String("port", cfg.Port), zap.String("env", cfg.GoEnv))
	if err := server.Start(e, cfg.Port); err != nil {
		logger.L().Fatal("server stopped", zap.Error(err))
	}
}
