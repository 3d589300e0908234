package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"db"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Auth          AuthConfig          `mapstructure:"auth"`
	Log           LogConfig           `mapstructure:"log"`
	Engine        EngineConfig        `mapstructure:"engine"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port    int        `mapstructure:"port"`
	BaseURL string     `mapstructure:"base_url"`
	CORS    CORSConfig `mapstructure:"cors"`
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
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // 连接最大生命周期（分钟）
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // 空闲连接最大存活时间（分钟）
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis 缓存配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig JWT 认证配置
type AuthConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
	BcryptCost     int           `mapstructure:"bcrypt_cost"`
	// AllowAdminSignup 允许通过注册接口创建管理员，仅用于初始化部署
	AllowAdminSignup bool `mapstructure:"allow_admin_signup"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// EngineConfig 业务引擎的不可变参数
type EngineConfig struct {
	SpiritScoreMin             int           `mapstructure:"spirit_score_min"`
	SpiritScoreMax             int           `mapstructure:"spirit_score_max"`
	MinSessionMinutes          int           `mapstructure:"min_session_minutes"`
	LSASScoreMin               int           `mapstructure:"lsas_score_min"`
	LSASScoreMax               int           `mapstructure:"lsas_score_max"`
	LeaderboardCacheTTL        time.Duration `mapstructure:"leaderboard_cache_ttl"`
	LeaderboardRefreshInterval time.Duration `mapstructure:"leaderboard_refresh_interval"` // 0 表示不启用定时预热
}

// DefaultEngineConfig 默认引擎参数（测试与未配置时使用）
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		SpiritScoreMin:             0,
		SpiritScoreMax:             4,
		MinSessionMinutes:          15,
		LSASScoreMin:               0,
		LSASScoreMax:               144,
		LeaderboardCacheTTL:        10 * time.Minute,
		LeaderboardRefreshInterval: 5 * time.Minute,
	}
}

// ObservabilityConfig 错误上报配置
type ObservabilityConfig struct {
	SentryDSN   string `mapstructure:"sentry_dsn"`
	Environment string `mapstructure:"environment"`
	Release     string `mapstructure:"release"`
}

// Load 从配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	v := viper.New()

	// ── 默认值 ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "yultimate")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)  // 60分钟
	v.SetDefault("db.conn_max_idle_time", 30) // 30分钟

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.access_token_ttl", "2h")
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("auth.allow_admin_signup", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	engine := DefaultEngineConfig()
	v.SetDefault("engine.spirit_score_min", engine.SpiritScoreMin)
	v.SetDefault("engine.spirit_score_max", engine.SpiritScoreMax)
	v.SetDefault("engine.min_session_minutes", engine.MinSessionMinutes)
	v.SetDefault("engine.lsas_score_min", engine.LSASScoreMin)
	v.SetDefault("engine.lsas_score_max", engine.LSASScoreMax)
	v.SetDefault("engine.leaderboard_cache_ttl", engine.LeaderboardCacheTTL.String())
	v.SetDefault("engine.leaderboard_refresh_interval", engine.LeaderboardRefreshInterval.String())

	v.SetDefault("observability.environment", "development")

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
	v.SetEnvPrefix("YULTIMATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		// 配置文件不存在时仅依赖默认值和环境变量
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	// ── 关键配置校验 ──
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
	return c.Engine.Validate()
}

// Validate 校验引擎参数
func (e *EngineConfig) Validate() error {
	if e.SpiritScoreMin > e.SpiritScoreMax {
		return fmt.Errorf("配置校验失败: engine.spirit_score_min 不能大于 spirit_score_max")
	}
	if e.LSASScoreMin > e.LSASScoreMax {
		return fmt.Errorf("配置校验失败: engine.lsas_score_min 不能大于 lsas_score_max")
	}
	if e.MinSessionMinutes <= 0 {
		return fmt.Errorf("配置校验失败: engine.min_session_minutes 必须为正数")
	}
	return nil
}
