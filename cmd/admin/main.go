// admin 初始化管理员账号：按邮箱查找，已存在则提升为管理员，否则新建。
//
//	go run ./cmd/admin -username admin -email admin@example.com -password secret
//
// 未给出的参数取 seed.* 配置。
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"car-rental-api/internal/core/config"
	"car-rental-api/internal/core/database"
	"car-rental-api/internal/core/logger"
	"car-rental-api/internal/notify"
	"car-rental-api/internal/repo"
	"car-rental-api/internal/service"
)

func main() {
	_ = godotenv.Load()
	cfg := config.MustLoad(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.FromConfig(cfg.Log)
	defer cleanup()

	username := flag.String("username", cfg.Seed.AdminUsername, "admin username")
	email := flag.String("email", cfg.Seed.AdminEmail, "admin email")
	password := flag.String("password", cfg.Seed.AdminPassword, "admin password")
	flag.Parse()

	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		Writer:             logger.ToStdLogger(log.Named("gorm"), zapcore.WarnLevel),
	})
	if err != nil {
		log.Fatal("db open", zap.Error(err))
	}
	if err := repo.Migrate(db); err != nil {
		log.Fatal("automigrate failed", zap.Error(err))
	}

	// 种子脚本不发邮件
	svc := service.New(service.Deps{
		Store:    repo.NewStore(db),
		Notifier: &notify.LogNotifier{Log: log},
		Log:      log,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	u, created, err := svc.Users.EnsureAdmin(ctx, *username, *email, *password)
	if err != nil {
		log.Fatal("ensure admin", zap.Error(err))
	}
	log.Info("admin ready",
		zap.String("id", u.ID),
		zap.String("email", u.Email),
		zap.Bool("created", created),
	)
}
