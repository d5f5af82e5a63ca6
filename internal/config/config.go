package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 全局配置结构体（匹配config.yaml，敏感项由环境变量覆盖）
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`   // 服务器配置
	Postgres PostgresConfig `mapstructure:"postgres"` // PostgreSQL配置
	Airtable AirtableConfig `mapstructure:"airtable"` // Airtable数据源配置
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port int    `mapstructure:"port"` // 服务端口
	Mode string `mapstructure:"mode"` // Gin运行模式：debug/release/test
}

// PostgresConfig PostgreSQL数据库配置
type PostgresConfig struct {
	DSN             string        `mapstructure:"dsn"`               // 连接DSN
	MaxOpenConns    int           `mapstructure:"max_open_conns"`    // 最大打开连接数
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`    // 最大空闲连接数
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"` // 连接最大存活时间
}

// AirtableTables 三张外部表的表名
type AirtableTables struct {
	Events         string `mapstructure:"events"`
	Exposants      string `mapstructure:"exposants"`
	Participations string `mapstructure:"participations"`
}

// AirtableConfig Airtable客户端配置
type AirtableConfig struct {
	APIKey     string         `mapstructure:"api_key"`     // Bearer token（AIRTABLE_API_KEY覆盖）
	BaseID     string         `mapstructure:"base_id"`     // Base标识（AIRTABLE_BASE_ID覆盖）
	BaseURL    string         `mapstructure:"base_url"`    // API基础地址
	Timeout    int            `mapstructure:"timeout"`     // 请求超时（秒）
	Proxy      string         `mapstructure:"proxy"`       // 代理地址
	ThrottleMs int            `mapstructure:"throttle_ms"` // 每次调用前的固定限速延迟（毫秒）
	BatchSize  int            `mapstructure:"batch_size"`  // 批量写每批条数（Airtable上限10）
	Tables     AirtableTables `mapstructure:"tables"`      // 表名
}

// LoadConfig 加载配置文件（config/config.yaml），敏感项从 .env / 环境变量覆盖
func LoadConfig() (*Config, error) {
	// 1. 加载 .env（若存在）
	_ = godotenv.Load() // 忽略错误（.env 可不存在）

	// 2. 读取 config.yaml（允许缺失，纯环境变量部署时只用默认值+env）
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	viper.SetTypeByDefaultValue(true)
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 3. 敏感字段：用 env 覆盖（优先级 env > yaml）
	overrideFromEnv(&cfg)
	applyDefaults(&cfg)
	return &cfg, nil
}

// overrideFromEnv 用环境变量覆盖敏感配置
func overrideFromEnv(cfg *Config) {
	if v := os.Getenv("AIRTABLE_API_KEY"); v != "" {
		cfg.Airtable.APIKey = v
	}
	if v := os.Getenv("AIRTABLE_BASE_ID"); v != "" {
		cfg.Airtable.BaseID = v
	}
	if v := os.Getenv("AIRTABLE_PROXY"); v != "" {
		cfg.Airtable.Proxy = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Postgres.DSN = v
	}
}

// applyDefaults 缺省值兜底
func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = "debug"
	}
	if cfg.Airtable.BaseURL == "" {
		cfg.Airtable.BaseURL = "https://api.airtable.com/v0"
	}
	if cfg.Airtable.Timeout == 0 {
		cfg.Airtable.Timeout = 30
	}
	if cfg.Airtable.ThrottleMs == 0 {
		cfg.Airtable.ThrottleMs = 200 // 约5 req/s
	}
	if cfg.Airtable.BatchSize == 0 {
		cfg.Airtable.BatchSize = 10
	}
	if cfg.Airtable.Tables.Events == "" {
		cfg.Airtable.Tables.Events = "Events"
	}
	if cfg.Airtable.Tables.Exposants == "" {
		cfg.Airtable.Tables.Exposants = "Exposants"
	}
	if cfg.Airtable.Tables.Participations == "" {
		cfg.Airtable.Tables.Participations = "Participations"
	}
}

// MissingCredentials 返回缺失的必填凭证对应的环境变量名（一次性全部列出，不截断）
func (a *AirtableConfig) MissingCredentials() []string {
	var missing []string
	if a.APIKey == "" {
		missing = append(missing, "AIRTABLE_API_KEY")
	}
	if a.BaseID == "" {
		missing = append(missing, "AIRTABLE_BASE_ID")
	}
	return missing
}
