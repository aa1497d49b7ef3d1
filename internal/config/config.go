package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	App       AppConfig
	Server    ServerConfig
	Log       LogConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Storage   StorageConfig
	AI        AIConfig
	Platform  PlatformConfig
	Security  SecurityConfig
	Scheduler SchedulerConfig
}

// AppConfig 应用配置
type AppConfig struct {
	Name        string `validate:"required"`
	Environment string
	Version     string
	Debug       bool
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host         string
	Port         int    `validate:"min=1,max=65535"`
	Mode         string `validate:"oneof=debug release test"`
	ReadTimeout  int
	WriteTimeout int
	CORSOrigins  []string
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `validate:"oneof=debug info warn error"`
	Format string `validate:"oneof=json text"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host         string `validate:"required"`
	Port         int
	User         string
	Password     string
	DBName       string `validate:"required"`
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  int
}

// RedisConfig Redis配置，Host 为空时不启用
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// StorageConfig 媒体存储配置
type StorageConfig struct {
	Type  string `validate:"oneof=local minio s3"`
	Local LocalStorageConfig
	MinIO MinIOStorageConfig
	S3    S3StorageConfig
}

// LocalStorageConfig 本地存储
type LocalStorageConfig struct {
	BasePath  string
	URLPrefix string
}

// MinIOStorageConfig MinIO 存储
type MinIOStorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	URLPrefix string
}

// S3StorageConfig S3 兼容存储 (Cloudflare R2)
type S3StorageConfig struct {
	AccountID     string
	Endpoint      string
	Region        string
	AccessKey     string
	SecretKey     string
	Bucket        string
	PresignExpiry int
}

// AIConfig AI配置
type AIConfig struct {
	Provider   string `validate:"oneof=openai gemini"`
	DailyLimit int    `validate:"min=1"`
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
}

// OpenAIConfig OpenAI 兼容接口配置
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout int
}

// GeminiConfig Gemini 配置
type GeminiConfig struct {
	APIKey string
	Model  string
}

// PlatformConfig 第三方 OnlyFans API 配置
type PlatformConfig struct {
	BaseURL       string `validate:"required,url"`
	APIKey        string
	Timeout       int
	WebhookSecret string
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	JWTSecret     string
	CredentialKey string
}

// SchedulerConfig 定时任务配置
type SchedulerConfig struct {
	TierRecalcCron string `validate:"required"`
}

// Load 加载配置
// 文件不存在时只使用默认值和环境变量
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat config: %w", err)
		}
	}

	// 环境变量
	v.SetEnvPrefix("NEXT_FANS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// GetDSN 获取数据库连接字符串
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// GetAddr 获取服务器地址
func (c *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// GetAddr 获取 Redis 地址
func (c *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Enabled Redis 是否已配置
func (c *RedisConfig) Enabled() bool {
	return c.Host != ""
}

func setDefaults(v *viper.Viper) {
	// App
	v.SetDefault("app.name", "next-fans")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.debug", false)

	// Server
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 90)
	v.SetDefault("server.corsOrigins", []string{"*"})

	// Log
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Database
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "next_fans")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.maxLifetime", 300)

	// Redis
	v.SetDefault("redis.host", "")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// Storage
	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local.basePath", "./data/media")
	v.SetDefault("storage.local.urlPrefix", "/media")
	v.SetDefault("storage.minio.endpoint", "")
	v.SetDefault("storage.minio.accessKey", "")
	v.SetDefault("storage.minio.secretKey", "")
	v.SetDefault("storage.minio.bucket", "")
	v.SetDefault("storage.minio.useSSL", false)
	v.SetDefault("storage.minio.urlPrefix", "")
	v.SetDefault("storage.s3.accountId", "")
	v.SetDefault("storage.s3.endpoint", "")
	v.SetDefault("storage.s3.region", "auto")
	v.SetDefault("storage.s3.accessKey", "")
	v.SetDefault("storage.s3.secretKey", "")
	v.SetDefault("storage.s3.bucket", "")
	v.SetDefault("storage.s3.presignExpiry", 3600)

	// AI
	v.SetDefault("ai.provider", "openai")
	v.SetDefault("ai.dailyLimit", 200)
	v.SetDefault("ai.openai.apiKey", "")
	v.SetDefault("ai.openai.baseUrl", "https://api.openai.com/v1")
	v.SetDefault("ai.openai.model", "gpt-4o-mini")
	v.SetDefault("ai.openai.timeout", 60)
	v.SetDefault("ai.gemini.apiKey", "")
	v.SetDefault("ai.gemini.model", "gemini-2.0-flash")

	// Platform
	v.SetDefault("platform.baseUrl", "https://app.onlyfansapi.com/api")
	v.SetDefault("platform.apiKey", "")
	v.SetDefault("platform.timeout", 30)
	v.SetDefault("platform.webhookSecret", "")

	// Security
	v.SetDefault("security.jwtSecret", "")
	v.SetDefault("security.credentialKey", "")

	// Scheduler
	v.SetDefault("scheduler.tierRecalcCron", "0 4 * * *")
}
