package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 全局配置结构体（完全匹配config.yaml）
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`   // 服务器配置
	Database DatabaseConfig `mapstructure:"database"` // 数据库配置
	Aliases  AliasConfig    `mapstructure:"aliases"`  // 名字别名配置
	Stats    StatsConfig    `mapstructure:"stats"`    // 统计接口配置
	Log      LogConfig      `mapstructure:"log"`      // 日志配置
	Sentry   SentryConfig   `mapstructure:"sentry"`   // 错误上报（可选）
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port  int        `mapstructure:"port"`  // 服务端口
	Mode  string     `mapstructure:"mode"`  // Gin运行模式：debug/release/test
	Pprof bool       `mapstructure:"pprof"` // 是否注册 /debug/pprof
	Cors  CorsConfig `mapstructure:"cors"`
}

// CorsConfig 跨域配置
type CorsConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig 数据库配置，driver 为 sqlite 或 postgres
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`            // sqlite/postgres
	DSN             string        `mapstructure:"dsn"`               // sqlite 为文件路径，postgres 为 URL
	MaxOpenConns    int           `mapstructure:"max_open_conns"`    // 最大打开连接数
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`    // 最大空闲连接数
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"` // 连接最大存活时间
}

// AliasConfig 名字别名文件
type AliasConfig struct {
	File string `mapstructure:"file"`
}

// StatsConfig 统计接口的默认条数
type StatsConfig struct {
	RecentBathroomLimit int `mapstructure:"recent_bathroom_limit"`
	RecentDentalLimit   int `mapstructure:"recent_dental_limit"`
	TopNamesLimit       int `mapstructure:"top_names_limit"`
	LeaderboardLimit    int `mapstructure:"leaderboard_limit"` // 0 表示不限制
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug/info/warn/error
	Format string `mapstructure:"format"` // text/json
}

// SentryConfig DSN 为空时不上报
type SentryConfig struct {
	DSN         string `mapstructure:"dsn"`
	Environment string `mapstructure:"environment"`
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.pprof", false)
	v.SetDefault("server.cors.allowed_origins", []string{"*"})

	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.dsn", "data/life_stats.db")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", time.Hour)

	v.SetDefault("aliases.file", "name_mappings.json")

	v.SetDefault("stats.recent_bathroom_limit", 10)
	v.SetDefault("stats.recent_dental_limit", 10)
	v.SetDefault("stats.top_names_limit", 3)
	v.SetDefault("stats.leaderboard_limit", 10)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("sentry.environment", "production")
}

// LoadConfig 加载配置文件。file 为空时在 ./config 与 . 下查找 config.yaml，
// 找不到文件时使用默认值；.env 与环境变量优先级最高
func LoadConfig(file string) (*Config, error) {
	// 1. 加载 .env（若存在），env 中的值会覆盖 config.yaml 中同名字段
	_ = godotenv.Load() // 忽略错误（.env 可不存在）

	v := viper.New()
	setDefaults(v)

	// 2. 读取 config.yaml
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 3. 环境变量覆盖（优先级 env > yaml）
	overrideFromEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// overrideFromEnv 用环境变量覆盖部署相关配置
func overrideFromEnv(cfg *Config) {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.DSN = v
		if strings.HasPrefix(v, "postgres") {
			cfg.Database.Driver = DriverPostgres
		}
	}
	if v := os.Getenv("LIFESTATS_DB_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("LIFESTATS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("LIFESTATS_ALIAS_FILE"); v != "" {
		cfg.Aliases.File = v
	}
	if v := os.Getenv("SENTRY_DSN"); v != "" {
		cfg.Sentry.DSN = v
	}
}

// Validate 校验配置取值
func (c *Config) Validate() error {
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("不支持的数据库类型: %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn 不能为空")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port 超出范围: %d", c.Server.Port)
	}
	return nil
}
