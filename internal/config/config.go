package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr       string         `yaml:"listen_addr"`
	Port             string         `yaml:"port"`
	DatabaseDriver   string         `yaml:"database_driver"`
	DatabasePath     string         `yaml:"database_path"`
	DatabaseDSN      string         `yaml:"database_dsn"`
	SessionSecret    string         `yaml:"session_secret"`
	GinMode          string         `yaml:"gin_mode"`
	UploadDir        string         `yaml:"upload_dir"`
	UploadURLPath    string         `yaml:"upload_url_path"`
	StaticURLPrefix  string         `yaml:"static_url_prefix"`
	MediaURLPrefix   string         `yaml:"media_url_prefix"`
	AdminPrefix      string         `yaml:"admin_prefix"`
	TrackVisitPath   string         `yaml:"track_visit_path"`
	LogFile          string         `yaml:"log_file"`
	Debug            bool           `yaml:"debug"`
	ContactRecipient string         `yaml:"contact_recipient"`
	SMTP             SMTPConfig     `yaml:"smtp"`
	Tracking         TrackingConfig `yaml:"tracking"`
}

// SMTPConfig 描述联系表单发信所需的 SMTP 参数，Host 为空时不发信。
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// TrackingConfig groups the analytics and listing knobs.
type TrackingConfig struct {
	ThrottleSeconds int `yaml:"throttle_seconds"`
	RecencyCap      int `yaml:"recency_cap"`
	SearchPageSize  int `yaml:"search_page_size"`
	IndexPageSize   int `yaml:"index_page_size"`
}

const (
	DefaultThrottleSeconds = 0
	DefaultRecencyCap      = 10
	DefaultSearchPageSize  = 8
	DefaultIndexPageSize   = 6
)

// Throttle returns the minimum interval between two counted visits of one visitor.
func (t TrackingConfig) Throttle() time.Duration {
	if t.ThrottleSeconds <= 0 {
		return 0
	}
	return time.Duration(t.ThrottleSeconds) * time.Second
}

// DefaultTracking returns the tracking knobs with their documented defaults.
func DefaultTracking() TrackingConfig {
	return TrackingConfig{
		ThrottleSeconds: DefaultThrottleSeconds,
		RecencyCap:      DefaultRecencyCap,
		SearchPageSize:  DefaultSearchPageSize,
		IndexPageSize:   DefaultIndexPageSize,
	}
}

// Load 从 .env、可选的 YAML 文件和环境变量读取配置，并为缺失项提供安全的默认值。
// 优先级：环境变量 > CONFIG_FILE > 默认值。
func Load() (AppConfig, error) {
	_ = godotenv.Load()

	var cfg AppConfig
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		fileCfg, err := loadFile(path)
		if err != nil {
			return AppConfig{}, err
		}
		cfg = fileCfg
	}

	applyEnv(&cfg)
	ApplyDefaults(&cfg)
	return cfg, nil
}

// DatabaseSource 返回当前驱动使用的连接串：postgres 用 DSN，sqlite 用文件路径
func (c AppConfig) DatabaseSource() string {
	switch strings.ToLower(c.DatabaseDriver) {
	case "postgres", "postgresql":
		return c.DatabaseDSN
	}
	if c.DatabaseDSN != "" && strings.HasPrefix(c.DatabaseDSN, "file:") {
		return c.DatabaseDSN
	}
	return c.DatabasePath
}

func loadFile(path string) (AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return AppConfig{}, fmt.Errorf("read config: %w", err)
	}

	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *AppConfig) {
	setString(&cfg.Port, "PORT")
	setString(&cfg.ListenAddr, "LISTEN_ADDR")
	setString(&cfg.DatabaseDriver, "DATABASE_DRIVER")
	setString(&cfg.DatabasePath, "DATABASE_PATH")
	setString(&cfg.DatabaseDSN, "DATABASE_DSN")
	setString(&cfg.SessionSecret, "SESSION_SECRET")
	setString(&cfg.GinMode, "GIN_MODE")
	setString(&cfg.UploadDir, "UPLOAD_DIR")
	setString(&cfg.UploadURLPath, "UPLOAD_URL_PATH")
	setString(&cfg.StaticURLPrefix, "STATIC_URL")
	setString(&cfg.MediaURLPrefix, "MEDIA_URL")
	setString(&cfg.AdminPrefix, "ADMIN_PREFIX")
	setString(&cfg.TrackVisitPath, "TRACK_VISIT_PATH")
	setString(&cfg.LogFile, "LOG_FILE")
	setString(&cfg.ContactRecipient, "CONTACT_RECIPIENT")
	setString(&cfg.SMTP.Host, "SMTP_HOST")
	setString(&cfg.SMTP.Username, "SMTP_USERNAME")
	setString(&cfg.SMTP.Password, "SMTP_PASSWORD")
	setString(&cfg.SMTP.From, "SMTP_FROM")
	setInt(&cfg.SMTP.Port, "SMTP_PORT")
	setInt(&cfg.Tracking.ThrottleSeconds, "VISIT_THROTTLE_SECONDS")
	setInt(&cfg.Tracking.RecencyCap, "RECENCY_CAP")
	setInt(&cfg.Tracking.SearchPageSize, "SEARCH_PAGE_SIZE")
	setInt(&cfg.Tracking.IndexPageSize, "INDEX_PAGE_SIZE")

	if raw := strings.TrimSpace(os.Getenv("DEBUG")); raw != "" {
		if parsed, err := strconv.ParseBool(raw); err == nil {
			cfg.Debug = parsed
		}
	}
}

// ApplyDefaults fills zero values with the defaults used in development.
func ApplyDefaults(cfg *AppConfig) {
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = fmt.Sprintf(":%s", cfg.Port)
	}
	if cfg.DatabaseDriver == "" {
		cfg.DatabaseDriver = "sqlite"
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = "ecopress.db"
	}
	if cfg.SessionSecret == "" {
		cfg.SessionSecret = "ecopress-dev-secret"
	}
	if cfg.GinMode == "" {
		cfg.GinMode = "release"
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = "web/media/uploads"
	}
	if cfg.UploadURLPath == "" {
		cfg.UploadURLPath = "/media/uploads"
	}
	if cfg.StaticURLPrefix == "" {
		cfg.StaticURLPrefix = "/static/"
	}
	if cfg.MediaURLPrefix == "" {
		cfg.MediaURLPrefix = "/media/"
	}
	if cfg.AdminPrefix == "" {
		cfg.AdminPrefix = "/admin/"
	}
	if cfg.TrackVisitPath == "" {
		cfg.TrackVisitPath = "/track-visit/"
	}
	if cfg.SMTP.Port == 0 {
		cfg.SMTP.Port = 587
	}
	if cfg.Tracking.ThrottleSeconds < 0 {
		cfg.Tracking.ThrottleSeconds = DefaultThrottleSeconds
	}
	if cfg.Tracking.RecencyCap <= 0 {
		cfg.Tracking.RecencyCap = DefaultRecencyCap
	}
	if cfg.Tracking.SearchPageSize <= 0 {
		cfg.Tracking.SearchPageSize = DefaultSearchPageSize
	}
	if cfg.Tracking.IndexPageSize <= 0 {
		cfg.Tracking.IndexPageSize = DefaultIndexPageSize
	}
}

func setString(dst *string, key string) {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		*dst = value
	}
}

func setInt(dst *int, key string) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return
	}
	if parsed, err := strconv.Atoi(raw); err == nil {
		*dst = parsed
	}
}
