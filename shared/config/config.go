package config

import (
	"errors"
	"io/fs"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	Env            string        `yaml:"env"`
	LogLevel       string        `yaml:"log_level"`
	LogJSON        bool          `yaml:"log_json"`
	JwtTTL         time.Duration `yaml:"jwt_ttl" validate:"required"`
	SecureCookies  bool          `yaml:"secure_cookies"`
	PublicURL      string        `yaml:"public_url" validate:"required,url"` // base url used in emailed links
	ProxyURL       string        `yaml:"proxy_url" validate:"required,url"`  // admin proxy, as seen by the frontend
	AllowedOrigins []string      `yaml:"allowed_origins"`
	AdminEmails    []string      `yaml:"admin_emails"`

	ListUsersCap             int           `yaml:"list_users_cap"`
	BlacklistRefreshInterval time.Duration `yaml:"blacklist_refresh_interval"`
	BanCheckFailClosed       bool          `yaml:"ban_check_fail_closed"`
	ConsoleIdleTimeout       time.Duration `yaml:"console_idle_timeout"`
	SystemLogLimit           int           `yaml:"system_log_limit"`
	SystemLogRetention       time.Duration `yaml:"system_log_retention"`
	SystemLogCleanupInterval time.Duration `yaml:"system_log_cleanup_interval"`
	DefaultStoreSlug         string        `yaml:"default_store_slug"`
	DefaultThemeColor        string        `yaml:"default_theme_color"`
}

type Pg struct {
	Host     string `yaml:"host" validate:"required"`
	Port     int    `yaml:"port" validate:"required"`
	User     string `yaml:"user" validate:"required"`
	Password string `yaml:"password"`
	Dbname   string `yaml:"dbname" validate:"required"`
}

type Email struct {
	SMTPServer string `yaml:"smtp_server"`
	SMTPPort   int    `yaml:"smtp_port"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	SenderName string `yaml:"sender_name"`
	Timeout    int    `yaml:"timeout"` // seconds
}

type OAuth struct {
	GoogleClientID     string `yaml:"google_client_id"`
	GoogleClientSecret string `yaml:"google_client_secret"`
	CallbackURL        string `yaml:"callback_url"`
}

type Private struct {
	Pg          Pg     `yaml:"pg"`
	JwtKey      string `yaml:"jwt_key" validate:"required"`
	AdminSecret string `yaml:"admin_secret" validate:"required"`
	Email       Email  `yaml:"email"`
	OAuth       OAuth  `yaml:"oauth"`
}

func (s *Config) JwtKey() string {
	return s.Private.JwtKey
}

func (s *Config) JwtTTL() time.Duration {
	return s.Public.JwtTTL
}

// IsAdminEmail reports whether email is on the super-admin allowlist.
func (s *Config) IsAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, admin := range s.Public.AdminEmails {
		if strings.ToLower(admin) == email {
			return true
		}
	}
	return false
}

func (s *Config) IsDevelopment() bool {
	return s.Public.Env == "" || s.Public.Env == "development"
}

func mustLoadPath(configPath string, output interface{}) {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)

	if err != nil {
		panic("can't read config file")
	}

	err = yaml.Unmarshal(configFile, output)
	if err != nil {
		panic("can't unmarshal config file: " + err.Error())
	}
}

// MustLoad reads public.yaml and private.yaml from configFolder. An optional .env file in the
// same folder is loaded first; secrets found in the environment override the yaml values.
func MustLoad(configFolder string) *Config {
	if err := godotenv.Load(path.Join(configFolder, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic("can't load .env file: " + err.Error())
	}

	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	cfg := &Config{public, private}
	applyEnv(cfg)
	applyDefaults(cfg)

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		panic("invalid config: " + err.Error())
	}
	return cfg
}

func applyEnv(cfg *Config) {
	override := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	override(&cfg.Private.JwtKey, "JWT_KEY")
	override(&cfg.Private.AdminSecret, "ADMIN_SECRET")
	override(&cfg.Private.Pg.Host, "PG_HOST")
	override(&cfg.Private.Pg.Password, "PG_PASSWORD")
	override(&cfg.Private.Email.Password, "SMTP_PASSWORD")
	override(&cfg.Private.OAuth.GoogleClientSecret, "GOOGLE_CLIENT_SECRET")
	override(&cfg.Public.Env, "ENV")
	if v := os.Getenv("PG_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Private.Pg.Port = port
		}
	}
}

func applyDefaults(cfg *Config) {
	p := &cfg.Public
	if p.LogLevel == "" {
		p.LogLevel = "info"
	}
	if p.ListUsersCap <= 0 {
		p.ListUsersCap = 1000
	}
	if p.BlacklistRefreshInterval <= 0 {
		p.BlacklistRefreshInterval = time.Minute
	}
	if p.ConsoleIdleTimeout <= 0 {
		p.ConsoleIdleTimeout = 30 * time.Minute
	}
	if p.SystemLogLimit <= 0 {
		p.SystemLogLimit = 50
	}
	if p.SystemLogRetention <= 0 {
		p.SystemLogRetention = 90 * 24 * time.Hour
	}
	if p.SystemLogCleanupInterval <= 0 {
		p.SystemLogCleanupInterval = 6 * time.Hour
	}
	if p.DefaultStoreSlug == "" {
		p.DefaultStoreSlug = "a2z-demo"
	}
	if p.DefaultThemeColor == "" {
		p.DefaultThemeColor = "#4f46e5"
	}
}
