package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host              string
	Port              int
	ReadTimeoutSec    int
	WriteTimeoutSec   int
	IdleTimeoutSec    int
	RequestTimeoutSec int
	RateLimitRPS      float64
	RateLimitBurst    int
	MaxConcurrent     int64
}

type App struct {
	Name string
	Env  string
	HTTP HTTP
}

// Debug 非 prod 环境在错误响应里附带 detail
func (a App) Debug() bool { return a.Env != "prod" }

type LogFile struct {
	Enable     bool
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Log struct {
	Level string
	JSON  bool
	File  LogFile
}

type JWT struct {
	Secret            string
	Issuer            string
	AccessTokenTTLMin int
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	// 吊销状态缓存秒数
	BlocklistTTLSec int `mapstructure:"blocklistTTLSec"`
}

type DB struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	PrepareStmt        bool
	LogLevel           string
}

// Mail Driver: "smtp" 走 SMTP；"log" 只写日志（本地开发）
type Mail struct {
	Driver   string
	Host     string
	Port     int
	Username string
	Password string
	From     string
	TLS      bool
}

// Notify AdminPolicy: all | first | none
type Notify struct {
	AdminPolicy string
}

// Events AMQPURL 为空时不发布领域事件
type Events struct {
	AMQPURL string `mapstructure:"amqpURL"`
	Queue   string
}

// Storage Endpoint 为空时禁用图片上传
type Storage struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	UseSSL        bool
	PublicBaseURL string
}

type Seed struct {
	AdminUsername string
	AdminEmail    string
	AdminPassword string
}

type Config struct {
	App     App
	Log     Log
	JWT     JWT
	DB      DB
	Redis   Redis `mapstructure:"redis"`
	Mail    Mail
	Notify  Notify
	Events  Events
	Storage Storage
	Seed    Seed
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "car-rental-api")
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 5000)
	v.SetDefault("app.http.readTimeoutSec", 5)
	v.SetDefault("app.http.writeTimeoutSec", 15)
	v.SetDefault("app.http.idleTimeoutSec", 60)
	v.SetDefault("app.http.requestTimeoutSec", 10)
	v.SetDefault("app.http.rateLimitRPS", 200)
	v.SetDefault("app.http.rateLimitBurst", 400)
	v.SetDefault("app.http.maxConcurrent", 300)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file.filename", "logs/app.log")
	v.SetDefault("log.file.maxSizeMB", 100)
	v.SetDefault("log.file.maxBackups", 7)
	v.SetDefault("log.file.maxAgeDays", 30)

	v.SetDefault("jwt.issuer", "car-rental-api")
	v.SetDefault("jwt.accessTokenTTLMin", 120)

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "car_rental.db")
	v.SetDefault("db.maxOpenConns", 20)
	v.SetDefault("db.maxIdleConns", 5)
	v.SetDefault("db.connMaxLifetimeMin", 30)
	v.SetDefault("db.prepareStmt", true)
	v.SetDefault("db.logLevel", "warn")

	v.SetDefault("redis.blocklistTTLSec", 30)

	v.SetDefault("mail.driver", "log")
	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.tls", true)
	v.SetDefault("mail.from", "no-reply@car-rental.local")

	v.SetDefault("notify.adminPolicy", "all")
	v.SetDefault("events.queue", "booking.events")
	v.SetDefault("storage.bucket", "car-images")
}

// Load 读取 YAML 配置，APP_ 前缀环境变量覆盖（app.http.port -> APP_APP_HTTP_PORT）
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt.secret is required")
	}
	return &c, nil
}

func MustLoad(path string) *Config {
	c, err := Load(path)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return c
}
