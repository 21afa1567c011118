package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	EnvDev  = "dev"
	EnvProd = "prod"
)

// Configはアプリ全体の設定
type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	GoEnv string `envconfig:"GO_ENV" default:"dev"` // dev/prod

	// DATABASE_URLがあれば優先。無ければPOSTGRES_*から組み立てる
	DatabaseURL      string        `envconfig:"DATABASE_URL"`
	PostgresHost     string        `envconfig:"POSTGRES_HOST" default:"localhost"`
	PostgresPort     int           `envconfig:"POSTGRES_PORT" default:"5432"`
	PostgresUser     string        `envconfig:"POSTGRES_USER" default:"postgres"`
	PostgresPassword string        `envconfig:"POSTGRES_PASSWORD" default:"postgres"`
	PostgresDB       string        `envconfig:"POSTGRES_DB" default:"ecommerce"`
	PostgresSSLMode  string        `envconfig:"POSTGRES_SSLMODE" default:"disable"`
	DBMaxOpenConns   int           `envconfig:"DB_MAX_OPEN_CONNS" default:"20"`
	DBMaxIdleConns   int           `envconfig:"DB_MAX_IDLE_CONNS" default:"10"`
	DBConnMaxLife    time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"1h"`
	DBAutoMigrate    bool          `envconfig:"DB_AUTO_MIGRATE" default:"true"`

	JWTSecret    string        `envconfig:"JWT_SECRET" required:"true"`
	JWTAccessTTL time.Duration `envconfig:"JWT_ACCESS_TTL" default:"15m"`

	// 起動時に作成/昇格する管理者
	AdminEmail    string `envconfig:"ADMIN_EMAIL"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD"`

	// 空ならチェックアウトのロックを使わない
	RedisURL        string        `envconfig:"REDIS_URL"`
	CheckoutLockTTL time.Duration `envconfig:"CHECKOUT_LOCK_TTL" default:"10s"`

	UploadDir      string `envconfig:"UPLOAD_DIR" default:"uploads"`
	UploadMaxBytes int64  `envconfig:"UPLOAD_MAX_BYTES" default:"5242880"`
	CloudinaryURL  string `envconfig:"CLOUDINARY_URL"`

	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"` // json/console
}

// Loadは.env（あれば）と環境変数を読む
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.GoEnv != EnvDev && c.GoEnv != EnvProd {
		return fmt.Errorf("GO_ENV must be %q or %q", EnvDev, EnvProd)
	}
	if c.JWTAccessTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TTL must be positive")
	}
	if c.UploadMaxBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_BYTES must be positive")
	}
	if (c.AdminEmail == "") != (c.AdminPassword == "") {
		return fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}
	return nil
}

func (c Config) IsProd() bool {
	return c.GoEnv == EnvProd
}

func (c Config) Addr() string {
	return ":" + c.Port
}

// DSN はpostgresの接続文字列を返す
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.PostgresUser, c.PostgresPassword),
		Host:   fmt.Sprintf("%s:%d", c.PostgresHost, c.PostgresPort),
		Path:   "/" + c.PostgresDB,
	}
	q := u.Query()
	q.Set("sslmode", c.PostgresSSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
