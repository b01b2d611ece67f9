package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/datmedevil17/magic-market/internal/bridge"
	"github.com/datmedevil17/magic-market/internal/config"
	cronrunner "github.com/datmedevil17/magic-market/internal/cron"
	"github.com/datmedevil17/magic-market/internal/db"
	"github.com/datmedevil17/magic-market/internal/events"
	"github.com/datmedevil17/magic-market/internal/handler"
	"github.com/datmedevil17/magic-market/internal/logger"
	"github.com/datmedevil17/magic-market/internal/oracle"
	gormrepository "github.com/datmedevil17/magic-market/internal/repository/gorm"
	"github.com/datmedevil17/magic-market/internal/service"
	"github.com/datmedevil17/magic-market/internal/vault"

	_ "github.com/datmedevil17/magic-market/docs"
)

func main() {
	cfgPath := os.Getenv("MM_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("MM_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		logger.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	store := gormrepository.New(dbConn.Gorm)
	collateral := vault.New(store)
	hub := events.NewHub(logger)

	settingsSvc := &service.SystemSettingsService{Repo: store}
	if err := settingsSvc.EnsureDefaultSwitches(context.Background()); err != nil {
		logger.Warn("init default system switches failed", zap.Error(err))
	}

	oracleHTTP := &http.Client{Timeout: cfg.Oracle.Timeout}
	oracleREST := oracle.NewRESTClient(oracleHTTP, cfg.Oracle.BaseURL)
	oracleCache := &oracle.CachedSource{Repo: store, Client: oracleREST, Logger: logger}

	bridgeClient := initBridgeClient(cfg.Bridge, logger)

	marketSvc := &service.MarketService{
		Repo:   store,
		Oracle: oracleCache,
		Flags:  settingsSvc,
		Events: hub,
		Logger: logger,
	}
	tradingSvc := &service.TradingService{
		Repo:        store,
		Vault:       collateral,
		Flags:       settingsSvc,
		Events:      hub,
		Logger:      logger,
		MaxTradeBps: cfg.Engine.MaxTradeBps,
	}
	liquiditySvc := &service.LiquidityService{
		Repo:   store,
		Vault:  collateral,
		Events: hub,
		Logger: logger,
	}
	claimSvc := &service.ClaimService{
		Repo:   store,
		Vault:  collateral,
		Events: hub,
		Logger: logger,
	}
	resolutionSvc := &service.ResolutionService{
		Repo:      store,
		Oracle:    oracleCache,
		Flags:     settingsSvc,
		Events:    hub,
		Logger:    logger,
		Resolvers: cfg.Engine.Resolvers,
	}
	accountSvc := &service.AccountService{Repo: store, Vault: collateral, Logger: logger}
	settlementSvc := &service.SettlementService{
		Repo:   store,
		Vault:  collateral,
		Bridge: bridgeClient,
		Flags:  settingsSvc,
		Logger: logger,
	}
	statsSvc := &service.StatsService{Repo: store, Flags: settingsSvc, Logger: logger}
	oracleFeedSvc := &service.OracleFeedService{
		Repo:      store,
		Cache:     oracleCache,
		Rest:      oracleREST,
		Flags:     settingsSvc,
		Logger:    logger,
		StreamURL: cfg.Oracle.WSURL,
		MaxFeeds:  cfg.Oracle.MaxFeeds,
	}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())
	engine.Use(bridge.RequireBearerMiddleware(cfg.Server.APIToken))
	engine.Use(bridge.InjectClientMiddleware(bridgeClient))
	engine.Use(bridge.WriteAuditMiddleware(bridgeClient, logger))

	healthHandler := &handler.HealthHandler{DB: dbConn.Gorm}
	healthHandler.Register(engine)
	bridge.RegisterDocs(engine)

	accountHandler := &handler.AccountHandler{Accounts: accountSvc, Logger: logger}
	accountHandler.Register(engine)
	marketHandler := &handler.MarketHandler{
		Markets:    marketSvc,
		Resolution: resolutionSvc,
		Repo:       store,
		Logger:     logger,
	}
	marketHandler.Register(engine)
	tradeHandler := &handler.TradeHandler{Trading: tradingSvc, Repo: store, Logger: logger}
	tradeHandler.Register(engine)
	liquidityHandler := &handler.LiquidityHandler{Liquidity: liquiditySvc, Repo: store, Logger: logger}
	liquidityHandler.Register(engine)
	positionHandler := &handler.PositionHandler{Claims: claimSvc, Repo: store, Logger: logger}
	positionHandler.Register(engine)
	settlementHandler := &handler.SettlementHandler{Settlement: settlementSvc, Repo: store, Logger: logger}
	settlementHandler.Register(engine)
	oracleHandler := &handler.OracleHandler{Repo: store}
	oracleHandler.Register(engine)
	settingsHandler := &handler.SettingsHandler{Repo: store, Settings: settingsSvc}
	settingsHandler.Register(engine)

	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	baseCtx := ctx
	if bridgeClient != nil {
		baseCtx = bridge.WithClient(ctx, bridgeClient)
	}

	if cfg.Cron.Enabled {
		cronRunner := cronrunner.New(logger, baseCtx)
		_, err = cronRunner.Add("resolution_sweep", cfg.Cron.ResolutionSweep, func(ctx context.Context) {
			resolved, err := resolutionSvc.SweepOnce(ctx)
			if err != nil {
				logger.Warn("resolution sweep failed", zap.Error(err))
				return
			}
			if resolved > 0 {
				logger.Info("resolution sweep ok", zap.Int("resolved", resolved))
			}
		})
		if err != nil {
			logger.Warn("cron register resolution sweep failed", zap.Error(err))
		}
		_, err = cronRunner.Add("settlement_commit", cfg.Cron.SettlementCommit, func(ctx context.Context) {
			if _, err := settlementSvc.CommitDirtyOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("settlement auto-commit failed", zap.Error(err))
			}
		})
		if err != nil {
			logger.Warn("cron register settlement commit failed", zap.Error(err))
		}
		_, err = cronRunner.Add("stats_snapshot", cfg.Cron.StatsSnapshot, func(ctx context.Context) {
			if _, err := statsSvc.SnapshotOnce(ctx); err != nil {
				logger.Warn("stats snapshot failed", zap.Error(err))
			}
		})
		if err != nil {
			logger.Warn("cron register stats snapshot failed", zap.Error(err))
		}
		_, err = cronRunner.Add("price_refresh", cfg.Cron.PriceRefresh, func(ctx context.Context) {
			if _, err := oracleFeedSvc.RefreshOnce(ctx); err != nil {
				logger.Warn("oracle price refresh failed", zap.Error(err))
			}
		})
		if err != nil {
			logger.Warn("cron register price refresh failed", zap.Error(err))
		}
		cronRunner.Start()
		defer cronRunner.Stop()
	}

	go func() {
		if err := hub.Run(baseCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("event hub stopped", zap.Error(err))
		}
	}()

	if settingsSvc.IsEnabled(baseCtx, service.FeatureOracleStream, true) {
		go func() {
			err := oracleFeedSvc.Run(baseCtx)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("oracle stream stopped", zap.Error(err))
			}
		}()
	}

	if bridgeClient.Enabled() {
		go func() {
			err := settlementSvc.Watch(baseCtx, hub)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("settlement watcher stopped", zap.Error(err))
			}
		}()
	}

	errCh := make(chan error, 2)

	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}

// initBridgeClient builds the settlement bridge client from config plus the
// MM_BRIDGE_API_KEY env override. Login is best-effort: a dead bridge at boot
// only disables auditing until the first authenticated call retries.
func initBridgeClient(cfg config.BridgeConfig, logger *zap.Logger) *bridge.Client {
	base := strings.TrimSpace(cfg.BaseURL)
	apiKey := strings.TrimSpace(os.Getenv("MM_BRIDGE_API_KEY"))
	if apiKey == "" {
		apiKey = strings.TrimSpace(cfg.APIKey)
	}

	b := &bridge.Client{
		BaseURL: base,
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: cfg.Timeout},
	}
	if !b.Enabled() {
		return b
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := b.Login(ctx); err != nil {
		if logger != nil {
			logger.Warn("bridge login failed (will retry on first call)", zap.Error(err))
		}
		return b
	}
	if logger != nil {
		logger.Info("bridge login ok")
	}
	return b
}
