package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/wyfcoding/fixedincome/internal/analytics/application"
	"github.com/wyfcoding/fixedincome/internal/analytics/domain"
	"github.com/wyfcoding/fixedincome/internal/analytics/infrastructure/loader"
	"github.com/wyfcoding/fixedincome/internal/analytics/infrastructure/messaging"
	"github.com/wyfcoding/fixedincome/internal/analytics/infrastructure/persistence/mysql"
	redisrepo "github.com/wyfcoding/fixedincome/internal/analytics/infrastructure/persistence/redis"
	"github.com/wyfcoding/fixedincome/internal/analytics/interfaces/consumer"
	httpiface "github.com/wyfcoding/fixedincome/internal/analytics/interfaces/http"
	"github.com/wyfcoding/fixedincome/pkg/config"
	"github.com/wyfcoding/fixedincome/pkg/db"
	"github.com/wyfcoding/fixedincome/pkg/logger"
	"github.com/wyfcoding/fixedincome/pkg/metrics"
	"github.com/wyfcoding/fixedincome/pkg/middleware"
	"github.com/wyfcoding/fixedincome/pkg/mq"
)

func main() {
	var (
		configPath string
		bondsFile  string
		curvesFile string
	)
	flag.StringVar(&configPath, "config", "configs/analytics/config.toml", "path to config file")
	flag.StringVar(&bondsFile, "bonds", "", "optional bond terms file to load at startup (csv or json)")
	flag.StringVar(&curvesFile, "curves", "", "optional rate curve csv to load at startup")
	flag.Parse()

	// 1. Config
	cfg, err := config.Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("load config failed: %v", err))
	}

	// 2. Logger
	if err := logger.Init(logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		FilePath:   cfg.Logger.FilePath,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
		Compress:   cfg.Logger.Compress,
		WithCaller: cfg.Logger.WithCaller,
	}); err != nil {
		panic(fmt.Sprintf("init logger failed: %v", err))
	}
	ctx := context.Background()
	logger.Info(ctx, "starting service", "service", cfg.ServiceName, "environment", cfg.Environment)

	// 3. Metrics
	m := metrics.New(cfg.ServiceName)

	// 4. Database（DSN 未配置时服务以纯计算模式运行，不落库）
	var (
		bondRepo     domain.BondRepository
		curveRepo    domain.CurveRepository
		analysisRepo domain.AnalysisRepository
		stressRepo   domain.StressRepository
		varRepo      domain.VaRRepository
		publisher    domain.EventPublisher
		database     *db.DB
	)
	if cfg.Database.DSN != "" {
		database, err = db.Init(db.Config{
			Driver:             cfg.Database.Driver,
			DSN:                cfg.Database.DSN,
			MaxOpenConns:       cfg.Database.MaxOpenConns,
			MaxIdleConns:       cfg.Database.MaxIdleConns,
			ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
			LogEnabled:         cfg.Database.LogEnabled,
			SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
		})
		if err != nil {
			logger.Fatal(ctx, "connect database failed", "error", err)
		}
		defer database.Close()

		if err := database.AutoMigrate(
			&mysql.BondModel{}, &mysql.CurveModel{},
			&domain.AnalysisResult{}, &domain.StressRecord{}, &domain.VaRRecord{},
			&messaging.OutboxMessage{},
		); err != nil {
			logger.Fatal(ctx, "migrate database failed", "error", err)
		}

		bondRepo = mysql.NewBondRepository(database.DB)
		curveRepo = mysql.NewCurveRepository(database.DB)
		analysisRepo = mysql.NewAnalysisRepository(database.DB)
		stressRepo = mysql.NewStressRepository(database.DB)
		varRepo = mysql.NewVaRRepository(database.DB)
		publisher = messaging.NewOutboxEventPublisher(database.DB)
	} else {
		logger.Warn(ctx, "database dsn not configured, running without persistence")
	}

	// 5. Redis 读缓存
	var cache domain.AnalysisReadRepository
	if cfg.Redis.Enabled {
		client := goredis.NewClient(&goredis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Fatal(ctx, "connect redis failed", "error", err)
		}
		defer client.Close()
		cache = redisrepo.NewAnalysisReadRepository(client)
	}

	// 6. Application
	svc := application.NewAnalyticsService(application.Options{
		SolverTolerance:     cfg.Engine.SolverTolerance,
		SolverMaxIterations: cfg.Engine.SolverMaxIterations,
		VaRSimulations:      cfg.Engine.VaRSimulations,
		VaRSeed:             cfg.Engine.VaRSeed,
		PortfolioWorkers:    cfg.Engine.PortfolioWorkers,
	}, bondRepo, curveRepo, analysisRepo, stressRepo, varRepo, cache, publisher, m)

	// 7. 启动期文件加载
	fileLoader := loader.NewFileLoader(svc)
	if curvesFile != "" {
		if _, err := fileLoader.LoadCurveCSV(ctx, curvesFile, cfg.Engine.CompoundingFrequency); err != nil {
			logger.Fatal(ctx, "load curves failed", "path", curvesFile, "error", err)
		}
	}
	if bondsFile != "" {
		var loadErr error
		if isJSONFile(bondsFile) {
			_, loadErr = fileLoader.LoadBondsJSON(ctx, bondsFile)
		} else {
			_, loadErr = fileLoader.LoadBondsCSV(ctx, bondsFile)
		}
		if loadErr != nil {
			logger.Fatal(ctx, "load bonds failed", "path", bondsFile, "error", loadErr)
		}
	}

	// 8. HTTP
	if cfg.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.Logging(), middleware.Recovery(), middleware.Metrics(m))

	httpiface.NewAnalyticsHandler(svc).RegisterRoutes(&router.RouterGroup)

	sys := router.Group("/sys")
	{
		sys.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "UP"}) })
		sys.GET("/ready", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "READY"}) })
	}
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	pp := router.Group("/debug/pprof")
	{
		pp.GET("/", gin.WrapF(pprof.Index))
		pp.GET("/cmdline", gin.WrapF(pprof.Cmdline))
		pp.GET("/profile", gin.WrapF(pprof.Profile))
		pp.GET("/symbol", gin.WrapF(pprof.Symbol))
		pp.GET("/trace", gin.WrapF(pprof.Trace))
	}

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}

	// 9. Start
	rootCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(rootCtx)

	g.Go(func() error {
		logger.Info(gctx, "http server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	kafkaCfg := mq.Config{
		Brokers:        cfg.Kafka.Brokers,
		GroupID:        cfg.Kafka.GroupID,
		SessionTimeout: cfg.Kafka.SessionTimeout,
		MaxRetries:     cfg.Kafka.MaxRetries,
		RetryBackoff:   cfg.Kafka.RetryBackoff,
	}
	if cfg.Kafka.Enabled {
		mdConsumer, err := mq.NewConsumer(kafkaCfg, cfg.Kafka.MarketDataTopic)
		if err != nil {
			logger.Fatal(ctx, "create kafka consumer failed", "error", err)
		}
		handler := consumer.NewMarketDataHandler(svc, logger.Get())
		g.Go(func() error {
			defer mdConsumer.Close()
			err := mdConsumer.Run(gctx, handler.Handle)
			if gctx.Err() != nil {
				return nil
			}
			return err
		})
	}
	if cfg.Kafka.Enabled && database != nil {
		producer, err := mq.NewProducer(kafkaCfg)
		if err != nil {
			logger.Fatal(ctx, "create kafka producer failed", "error", err)
		}
		relay := messaging.NewOutboxRelay(database.DB, producer, cfg.Kafka.ResultTopic)
		g.Go(func() error {
			defer producer.Close()
			if err := relay.Run(gctx); err != nil && gctx.Err() == nil {
				return err
			}
			return nil
		})
	}

	// 10. Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		logger.Info(ctx, "shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal(ctx, "service exited with error", "error", err)
	}
	logger.Info(ctx, "service stopped")
}

func isJSONFile(path string) bool {
	n := len(path)
	return n > 5 && path[n-5:] == ".json"
}
