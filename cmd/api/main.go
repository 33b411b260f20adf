package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"car-rental-api/internal/core/auth"
	"car-rental-api/internal/core/cache"
	"car-rental-api/internal/core/config"
	"car-rental-api/internal/core/database"
	"car-rental-api/internal/core/logger"
	"car-rental-api/internal/core/server"
	"car-rental-api/internal/events"
	"car-rental-api/internal/notify"
	"car-rental-api/internal/repo"
	"car-rental-api/internal/service"
	"car-rental-api/internal/storage"
	"car-rental-api/internal/transport/http/handler"
	"car-rental-api/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.MustLoad(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.FromConfig(cfg.Log)
	defer cleanup()
	defer logger.RedirectStdLog(log)()

	if !cfg.App.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 数据库（失败会直接 Fatal）
	db := mustOpenDB(cfg, log)
	log.Info("database connected",
		zap.String("driver", cfg.DB.Driver),
		zap.String("dsn", database.MaskDSN(cfg.DB.DSN)),
	)
	if cfg.DB.AutoMigrate {
		if err := repo.Migrate(db); err != nil {
			log.Fatal("automigrate failed", zap.Error(err))
		}
		log.Info("automigrate done")
	}
	store := repo.NewStore(db)

	// Redis 可选：未配置地址时吊销查询直接走库
	rc, err := cache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	if rc != nil {
		defer rc.Close()
		log.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
	}

	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
	}
	blocklist := &auth.Blocklist{
		Store: store.Tokens,
		Cache: rc,
		TTL:   time.Duration(cfg.Redis.BlocklistTTLSec) * time.Second,
	}

	mailer, err := notify.New(cfg.Mail, log)
	if err != nil {
		log.Fatal("notifier", zap.Error(err))
	}

	deps := service.Deps{
		Store:       store,
		Notifier:    mailer,
		JWT:         jwter,
		Blocklist:   blocklist,
		Log:         log,
		AdminPolicy: cfg.Notify.AdminPolicy,
	}
	if cfg.Events.AMQPURL != "" {
		pub := events.NewAMQPPublisher(cfg.Events.AMQPURL, cfg.Events.Queue)
		defer pub.Close()
		deps.Events = pub
	}
	images, err := storage.NewMinio(ctx, cfg.Storage)
	if err != nil {
		log.Fatal("object storage", zap.Error(err))
	}
	if images != nil {
		deps.Images = images
	}
	svc := service.New(deps)

	r := router.NewAPIEngine(router.Deps{
		Log:       log,
		App:       cfg.App,
		DB:        db,
		JWT:       jwter,
		Blocklist: blocklist,
		Modules: []router.APIModule{
			handler.Auth{Svc: svc.Auth},
			handler.Users{Svc: svc.Users},
			handler.Cars{Svc: svc.Fleet},
			handler.Bookings{Svc: svc.Bookings},
			handler.Reviews{Svc: svc.Reviews},
		},
	})

	go purgeTokens(ctx, store.Tokens, log)

	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("car rental api starting",
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("metrics", baseURL+"/metrics"),
	)

	if err := server.Run(ctx, srv, log, 10*time.Second); err != nil {
		log.Fatal("car rental api FAILED", zap.Error(err))
	}
	log.Info("car rental api stopped gracefully")
}

// purgeTokens 定期清理已过期的吊销记录
func purgeTokens(ctx context.Context, tokens *repo.TokenRepo, l *zap.Logger) {
	t := time.NewTicker(time.Hour)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := tokens.PurgeExpired(ctx, now.UTC())
			if err != nil {
				l.Warn("purge revoked tokens", zap.Error(err))
				continue
			}
			if n > 0 {
				l.Info("purged revoked tokens", zap.Int64("rows", n))
			}
		}
	}
}

func mustOpenDB(cfg *config.Config, l *zap.Logger) *gorm.DB {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		PrepareStmt:        cfg.DB.PrepareStmt,
		LogLevel:           cfg.DB.LogLevel,
		Writer:             logger.ToStdLogger(l.Named("gorm"), zapcore.WarnLevel),
	})
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	return db
}
