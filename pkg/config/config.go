package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "VELORA"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "VELORA_DB_DSN"
	EnvDBHost = "VELORA_DB_HOST"
	EnvDBUser = "VELORA_DB_USER"
	EnvDBName = "VELORA_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	Cart         CartConfig
	Checkout     CheckoutConfig
	Square       SquareConfig
	Email        EmailConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"VELORA_APP_ENV" required:"true"`
	Port         string `envconfig:"VELORA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"VELORA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"VELORA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"VELORA_DB_DSN"`
	Driver string `envconfig:"VELORA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"VELORA_DB_HOST"`
	LegacyPort     int    `envconfig:"VELORA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"VELORA_DB_USER"`
	LegacyPassword string `envconfig:"VELORA_DB_PASSWORD"`
	LegacyName     string `envconfig:"VELORA_DB_NAME"`
	LegacySSLMode  string `envconfig:"VELORA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"VELORA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"VELORA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"VELORA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"VELORA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"VELORA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"VELORA_REDIS_ADDR"`
	Password     string        `envconfig:"VELORA_REDIS_PASSWORD"`
	DB           int           `envconfig:"VELORA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"VELORA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"VELORA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"VELORA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"VELORA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"VELORA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"VELORA_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"VELORA_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"VELORA_JWT_EXPIRATION_MINUTES" default:"60"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"VELORA_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"VELORA_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"VELORA_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"VELORA_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"VELORA_ARGON_KEY_LEN" default:"32"`
}

type CartConfig struct {
	TTL time.Duration `envconfig:"VELORA_CART_TTL" default:"720h"`
}

type CheckoutConfig struct {
	DeliveryFeeLagosCents   int `envconfig:"VELORA_DELIVERY_FEE_LAGOS_CENTS" default:"450000"`
	DeliveryFeeOutsideCents int `envconfig:"VELORA_DELIVERY_FEE_OUTSIDE_CENTS" default:"500000"`
}

type SquareConfig struct {
	AccessToken string `envconfig:"VELORA_SQUARE_ACCESS_TOKEN"`
	Env         string `envconfig:"VELORA_SQUARE_ENV" default:"sandbox"`
}

// Environment returns the normalized Square environment (sandbox/production).
func (s SquareConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "sandbox"
	}
	return env
}

type EmailConfig struct {
	BaseURL    string `envconfig:"VELORA_EMAIL_BASE_URL" default:"https://api.emailjs.com/api/v1.0"`
	ServiceID  string `envconfig:"VELORA_EMAIL_SERVICE_ID"`
	TemplateID string `envconfig:"VELORA_EMAIL_TEMPLATE_ID"`
	UserID     string `envconfig:"VELORA_EMAIL_USER_ID"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"VELORA_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"VELORA_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
