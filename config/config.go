package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"shelter-caller/pkg/businessday"
)

// Config 应用全局配置结构体
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"db"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Log       LogConfig       `mapstructure:"log"`
	Telephony TelephonyConfig `mapstructure:"telephony"`
	Prefs     PrefsConfig     `mapstructure:"prefs"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port int        `mapstructure:"port"`
	CORS CORSConfig `mapstructure:"cors"`

	// RateLimit 每个 IP 每分钟允许的 webhook / 登录请求数，0 表示不限流
	RateLimit int `mapstructure:"rate_limit"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig PostgreSQL 数据库配置
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // 分钟
}

// DSN 生成 PostgreSQL 连接字符串
//
// 会话时区固定为 UTC；业务日换算由偏好中的时区决定，与数据库时区无关。
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig JWT 认证配置
type AuthConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`

	// 首次启动时若用户表为空，创建该管理员
	BootstrapAdmin    string `mapstructure:"bootstrap_admin"`
	BootstrapPassword string `mapstructure:"bootstrap_password"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TelephonyConfig 外呼流程（Studio Flow Execution）配置
type TelephonyConfig struct {
	FlowBaseURL string        `mapstructure:"flow_base_url"`
	FlowID      string        `mapstructure:"flow_id"`
	AccountSID  string        `mapstructure:"account_sid"`
	AuthToken   string        `mapstructure:"auth_token"`
	FromNumber  string        `mapstructure:"from_number"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Concurrency int           `mapstructure:"concurrency"`
}

// Enabled 未配置流程 ID 时外呼只记审计日志不实际拨号
func (c *TelephonyConfig) Enabled() bool {
	return c.FlowID != ""
}

// PrefsConfig 偏好行首次创建时使用的默认值
type PrefsConfig struct {
	AppID        string `mapstructure:"app_id"`
	Timezone     string `mapstructure:"timezone"`
	EnforceHours bool   `mapstructure:"enforce_hours"`
	OpenTime     string `mapstructure:"open_time"`
	CloseTime    string `mapstructure:"close_time"`
	StartDay     string `mapstructure:"start_day"`
}

// Load 从 .env、配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	// .env 仅补充尚未设置的环境变量，文件不存在时忽略
	_ = godotenv.Load()

	v := viper.New()

	// ── 默认值 ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.rate_limit", 60)

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "shelter_caller")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.access_token_ttl", "12h")
	v.SetDefault("auth.bootstrap_admin", "")
	v.SetDefault("auth.bootstrap_password", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("telephony.flow_base_url", "https://studio.twilio.com/v1/Flows/")
	v.SetDefault("telephony.flow_id", "")
	v.SetDefault("telephony.from_number", "+19073121978")
	v.SetDefault("telephony.timeout", "10s")
	v.SetDefault("telephony.concurrency", 4)

	v.SetDefault("prefs.app_id", "shelter-caller")
	v.SetDefault("prefs.timezone", "America/Anchorage")
	v.SetDefault("prefs.enforce_hours", true)
	v.SetDefault("prefs.open_time", "20:00")
	v.SetDefault("prefs.close_time", "03:00")
	v.SetDefault("prefs.start_day", "22:00")

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("SHELTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
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

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 不能为空")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 长度不能少于 16 字符")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	if c.Telephony.Timeout <= 0 {
		return fmt.Errorf("配置校验失败: telephony.timeout 必须大于 0")
	}
	if c.Telephony.Concurrency <= 0 {
		return fmt.Errorf("配置校验失败: telephony.concurrency 必须大于 0")
	}
	return c.Prefs.Validate()
}

// Validate 偏好默认值必须可解析，否则首次建行即写入坏数据
func (p *PrefsConfig) Validate() error {
	if p.AppID == "" {
		return fmt.Errorf("配置校验失败: prefs.app_id 不能为空")
	}
	if _, err := time.LoadLocation(p.Timezone); err != nil {
		return fmt.Errorf("配置校验失败: prefs.timezone %q 无效: %w", p.Timezone, err)
	}
	for key, val := range map[string]string{
		"prefs.open_time":  p.OpenTime,
		"prefs.close_time": p.CloseTime,
		"prefs.start_day":  p.StartDay,
	} {
		if _, err := businessday.ParseTimeOfDay(val); err != nil {
			return fmt.Errorf("配置校验失败: %s: %w", key, err)
		}
	}
	return nil
}
