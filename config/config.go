package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"db"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Log         LogConfig         `mapstructure:"log"`
	Calendar    CalendarConfig    `mapstructure:"calendar"`
	Certificate CertificateConfig `mapstructure:"certificate"`
	Enrollment  EnrollmentConfig  `mapstructure:"enrollment"`
	Jobs        JobsConfig        `mapstructure:"jobs"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port         int        `mapstructure:"port"`
	BaseURL      string     `mapstructure:"base_url"`
	MaxBodyBytes int64      `mapstructure:"max_body_bytes"`
	CORS         CORSConfig `mapstructure:"cors"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig 数据库配置
// driver=postgres/mysql 用于部署；driver=sqlite 为单机模式
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"` // postgres | mysql | sqlite
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	SQLitePath      string `mapstructure:"sqlite_path"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // 分钟
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// MySQLDSN 生成 MySQL 连接字符串
func (c *DatabaseConfig) MySQLDSN() string {
	return fmt.Sprintf(
		"%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		c.User, c.Password, c.Host, c.Port, c.Name,
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
	JWTSecret       string        `mapstructure:"jwt_secret"`
	AccessTokenTTL  time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl"`
	BootstrapAdmin  AdminConfig   `mapstructure:"bootstrap_admin"`
	LoginRateLimit  int           `mapstructure:"login_rate_limit"`
	LoginRateWindow time.Duration `mapstructure:"login_rate_window"`
}

// AdminConfig 首次启动时创建的管理员账号（用户表为空时生效）
type AdminConfig struct {
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CalendarConfig 日历与场次生成配置
type CalendarConfig struct {
	// SkipHolidaysInPerson 为 true 时线下课程生成场次跳过节假日与周末；
	// 为 false 时只跳过周末
	SkipHolidaysInPerson bool `mapstructure:"skip_holidays_in_person"`
	// Timezone 场次时间（HH:MM）所在时区，用于 ICS 导出
	Timezone string `mapstructure:"timezone"`
	// MaxCourseDays 课程开始到结束日期的最大天数（含首尾），限制一次生成的场次与座位数量
	MaxCourseDays int `mapstructure:"max_course_days"`
}

// CertificateConfig 证书生成配置
type CertificateConfig struct {
	DefaultTemplate  string        `mapstructure:"default_template"`
	OrganizationName string        `mapstructure:"organization_name"`
	SignatureName    string        `mapstructure:"signature_name"`
	SignatureRole    string        `mapstructure:"signature_role"`
	BatchRateLimit   int           `mapstructure:"batch_rate_limit"`
	BatchRateWindow  time.Duration `mapstructure:"batch_rate_window"`
}

// EnrollmentConfig 报名配置
type EnrollmentConfig struct {
	// EnforceCapacity 为 false 时座位满后仍允许报名（不占座）
	EnforceCapacity bool `mapstructure:"enforce_capacity"`
}

// JobsConfig 定时任务配置
type JobsConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	DigestCron string `mapstructure:"digest_cron"`
	Timezone   string `mapstructure:"timezone"`
}

// Load 从配置文件与环境变量加载配置
// 优先级：环境变量（含 .env）> 配置文件 > 默认值
func Load(path string) (*Config, error) {
	// .env 只补充未设置的环境变量，文件不存在时忽略
	_ = godotenv.Load()

	v := viper.New()

	// ── 默认值 ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.max_body_bytes", 1<<20)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "sustenta")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "America/Santiago")
	v.SetDefault("db.sqlite_path", "sustenta.db")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.access_token_ttl", "15m")
	v.SetDefault("auth.refresh_token_ttl", "24h")
	v.SetDefault("auth.bootstrap_admin.email", "")
	v.SetDefault("auth.bootstrap_admin.password", "")
	v.SetDefault("auth.bootstrap_admin.name", "Administrador")
	v.SetDefault("auth.login_rate_limit", 10)
	v.SetDefault("auth.login_rate_window", "1m")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("calendar.skip_holidays_in_person", true)
	v.SetDefault("calendar.timezone", "America/Santiago")
	v.SetDefault("calendar.max_course_days", 366)

	v.SetDefault("certificate.default_template", "classic")
	v.SetDefault("certificate.organization_name", "Sustenta Capacitación")
	v.SetDefault("certificate.signature_name", "")
	v.SetDefault("certificate.signature_role", "Director Académico")
	v.SetDefault("certificate.batch_rate_limit", 10)
	v.SetDefault("certificate.batch_rate_window", "1m")

	v.SetDefault("enrollment.enforce_capacity", true)

	v.SetDefault("jobs.enabled", true)
	v.SetDefault("jobs.digest_cron", "0 18 * * *")
	v.SetDefault("jobs.timezone", "America/Santiago")

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
	v.SetEnvPrefix("SUSTENTA")
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

var knownTemplates = map[string]bool{"classic": true, "modern": true, "elegant": true}

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
	switch c.Database.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("配置校验失败: db.driver 仅支持 postgres、mysql 或 sqlite，当前为 %q", c.Database.Driver)
	}
	if c.Calendar.MaxCourseDays < 0 {
		return fmt.Errorf("配置校验失败: calendar.max_course_days 不能为负数")
	}
	if !knownTemplates[c.Certificate.DefaultTemplate] {
		return fmt.Errorf("配置校验失败: certificate.default_template 未知模板 %q", c.Certificate.DefaultTemplate)
	}
	return nil
}
