package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ==================== 配置结构 ====================

// Config 应用配置
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Notify    NotifyConfig    `mapstructure:"notify"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Review    ReviewConfig    `mapstructure:"review"`
	Tasks     TasksConfig     `mapstructure:"tasks"`
}

// ServerConfig HTTP 服务
type ServerConfig struct {
	Port        string   `mapstructure:"port"`
	Mode        string   `mapstructure:"mode"` // debug | release | test
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// DatabaseConfig 数据库连接与初始化
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpen         int           `mapstructure:"max_open"`
	MaxIdle         int           `mapstructure:"max_idle"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	LogLevel        string        `mapstructure:"log_level"` // silent | error | warn | info
	InitMode        string        `mapstructure:"init_mode"` // auto | migrate | none
}

// JWTConfig 令牌签发
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	AccessTTL  time.Duration `mapstructure:"access_ttl"`
	RefreshTTL time.Duration `mapstructure:"refresh_ttl"`
	Issuer     string        `mapstructure:"issuer"`
}

// StorageConfig 对象存储
type StorageConfig struct {
	Provider      string        `mapstructure:"provider"` // s3 | local
	Bucket        string        `mapstructure:"bucket"`
	Region        string        `mapstructure:"region"`
	AccessKey     string        `mapstructure:"access_key"`
	SecretKey     string        `mapstructure:"secret_key"`
	Endpoint      string        `mapstructure:"endpoint"`
	CDNDomain     string        `mapstructure:"cdn_domain"`
	BasePath      string        `mapstructure:"base_path"`
	PresignTTL    time.Duration `mapstructure:"presign_ttl"`
	MaxUploadSize int64         `mapstructure:"max_upload_size"`
	MaxFiles      int           `mapstructure:"max_files"`
}

// NotifyConfig 邮件订阅 (SNS)
type NotifyConfig struct {
	SNSTopicARN string `mapstructure:"sns_topic_arn"`
	Region      string `mapstructure:"region"`
}

// RateLimitConfig 登录/注册限流
type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

// ReviewConfig 评价规则
type ReviewConfig struct {
	RequirePurchase bool `mapstructure:"require_purchase"`
}

// TasksConfig 定时任务
type TasksConfig struct {
	Enabled                   bool `mapstructure:"enabled"`
	NotificationRetentionDays int  `mapstructure:"notification_retention_days"`
}

// ==================== 加载 ====================

// Load 加载配置
// 优先级: 环境变量 (MARKETPLACE_ 前缀) > config.yaml > 默认值
func Load() (*Config, error) {
	// .env 可选，不存在时忽略
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./")
	v.AddConfigPath("./config/")
	v.AddConfigPath("/etc/marketplace/")

	v.SetEnvPrefix("MARKETPLACE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 校验必填项
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return errors.New("database.dsn 未配置 (MARKETPLACE_DATABASE_DSN)")
	}
	if c.JWT.Secret == "" {
		return errors.New("jwt.secret 未配置 (MARKETPLACE_JWT_SECRET)")
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("server.mode 无效: %s", c.Server.Mode)
	}
	switch c.Database.InitMode {
	case "auto", "migrate", "none":
	default:
		return fmt.Errorf("database.init_mode 无效: %s", c.Database.InitMode)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	// 无默认值的键也需注册，否则 Unmarshal 读不到对应环境变量
	for _, key := range []string{
		"database.dsn", "jwt.secret",
		"storage.bucket", "storage.region", "storage.access_key", "storage.secret_key",
		"storage.endpoint", "storage.cdn_domain", "storage.base_path",
		"notify.sns_topic_arn", "notify.region",
	} {
		v.SetDefault(key, "")
	}

	v.SetDefault("server.port", "3000")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("database.max_open", 20)
	v.SetDefault("database.max_idle", 10)
	v.SetDefault("database.conn_max_idle_time", 30*time.Second)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("database.init_mode", "auto")

	v.SetDefault("jwt.access_ttl", 24*time.Hour)
	v.SetDefault("jwt.refresh_ttl", 7*24*time.Hour)
	v.SetDefault("jwt.issuer", "marketplace-api")

	v.SetDefault("storage.provider", "s3")
	v.SetDefault("storage.presign_ttl", time.Hour)
	v.SetDefault("storage.max_upload_size", 5<<20)
	v.SetDefault("storage.max_files", 10)

	v.SetDefault("rate_limit.rps", 5)
	v.SetDefault("rate_limit.burst", 10)

	v.SetDefault("review.require_purchase", false)

	v.SetDefault("tasks.enabled", true)
	v.SetDefault("tasks.notification_retention_days", 30)
}
