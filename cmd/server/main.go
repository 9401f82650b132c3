package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/phj1120/vibe-pay-sub000/internal/config"
	"github.com/phj1120/vibe-pay-sub000/internal/logger"
	"github.com/phj1120/vibe-pay-sub000/internal/logic"
	"github.com/phj1120/vibe-pay-sub000/internal/model"
	"github.com/phj1120/vibe-pay-sub000/internal/rail"
	"github.com/phj1120/vibe-pay-sub000/internal/repository"
	"github.com/phj1120/vibe-pay-sub000/internal/router"
	"github.com/phj1120/vibe-pay-sub000/internal/task"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化日志
	initLogger(cfg)

	// 初始化数据库
	db, err := repository.Init(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// 持久化网关
	settlementStore := repository.NewSettlementStore(db)
	pointStore := repository.NewPointLotStore(db)
	chainStore := repository.NewChainStore(db)
	paylogStore := repository.NewPayLogStore(db)

	// 支付渠道
	httpClient := &http.Client{Timeout: time.Duration(cfg.Payment.Timeout) * time.Second}
	inicis := rail.NewInicisGateway(cfg.Payment.Inicis, httpClient)
	nicepay := rail.NewNicePayGateway(cfg.Payment.NicePay, httpClient)

	selector, err := rail.NewWeightSelector([]rail.Provider{
		{PgTypeCode: model.PgTypeInicis, Weight: cfg.Payment.Inicis.Weight},
		{PgTypeCode: model.PgTypeNicePay, Weight: cfg.Payment.NicePay.Weight},
	}, nil)
	if err != nil {
		log.Fatalf("Failed to initialize PG selector: %v", err)
	}

	// 业务逻辑
	pointLogic := logic.NewPointLogic(pointStore)
	paylogLogic, err := logic.NewPayLogLogic(paylogStore)
	if err != nil {
		log.Fatalf("Failed to initialize pay log pool: %v", err)
	}
	defer paylogLogic.Close()

	registry := rail.NewRegistry(
		rail.NewCardAdapter(selector, inicis, nicepay),
		rail.NewPointAdapter(pointLogic),
	)

	orderLogic := logic.NewOrderLogic(settlementStore, chainStore, registry, paylogLogic)
	claimLogic := logic.NewClaimLogic(settlementStore, chainStore, registry, paylogLogic)

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化路由
	r := router.Setup(orderLogic, claimLogic, pointLogic, paylogLogic)

	// 启动定时任务
	manager := task.Start(db, cfg)
	defer manager.Stop()

	// 启动服务器
	logger.Info("Server starting on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// initLogger 按配置初始化全局日志
func initLogger(cfg *config.Config) {
	level := logger.ParseLogLevel(cfg.Log.Level)

	var l *logger.Logger
	var err error
	if cfg.Log.Output == "file" {
		l, err = logger.NewWithFileRotation(level, cfg.Log.File)
	} else {
		l, err = logger.New(level)
	}
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	logger.SetDefaultLogger(l)
}
