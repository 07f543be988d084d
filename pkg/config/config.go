package config

import (
	"fmt"
	"net/netip"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	RateLimit    RateLimitConfig
	Report       ReportConfig
	Basket       BasketConfig
	CORS         CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if _, err := cfg.RateLimit.TrustedProxyPrefixes(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"BASKET_APP_ENV" required:"true"`
	Port         string `envconfig:"BASKET_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"BASKET_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BASKET_LOG_WARN_STACK" default:"false"`
	LogFormat    string `envconfig:"BASKET_LOG_FORMAT" default:"json"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"BASKET_DB_DSN"`
	Driver string `envconfig:"BASKET_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"BASKET_DB_HOST"`
	LegacyPort     int    `envconfig:"BASKET_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"BASKET_DB_USER"`
	LegacyPassword string `envconfig:"BASKET_DB_PASSWORD"`
	LegacyName     string `envconfig:"BASKET_DB_NAME"`
	LegacySSLMode  string `envconfig:"BASKET_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BASKET_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BASKET_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BASKET_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BASKET_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the configured driver is the embedded SQLite driver.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"BASKET_REDIS_URL"`
	Address      string        `envconfig:"BASKET_REDIS_ADDR"`
	Password     string        `envconfig:"BASKET_REDIS_PASSWORD"`
	DB           int           `envconfig:"BASKET_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BASKET_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BASKET_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BASKET_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BASKET_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BASKET_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"BASKET_AUTO_MIGRATE" default:"false"`
}

type RateLimitConfig struct {
	ExportWindow time.Duration `envconfig:"BASKET_RATE_LIMIT_EXPORT_WINDOW" default:"1m"`
	ExportLimit  int           `envconfig:"BASKET_RATE_LIMIT_EXPORT_LIMIT" default:"5"`
	// TrustedProxies lists the peers (IPs or CIDRs) whose forwarding headers are honoured.
	TrustedProxies []string `envconfig:"BASKET_RATE_LIMIT_TRUSTED_PROXIES"`
}

// TrustedProxyPrefixes parses TrustedProxies. Bare addresses become single-host prefixes.
func (r RateLimitConfig) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(r.TrustedProxies))
	for _, raw := range r.TrustedProxies {
		entry := strings.TrimSpace(raw)
		if entry == "" {
			continue
		}
		if strings.Contains(entry, "/") {
			prefix, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, fmt.Errorf("%s: invalid entry %q: %w", EnvTrustedProxies, entry, err)
			}
			prefixes = append(prefixes, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid entry %q: %w", EnvTrustedProxies, entry, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

type ReportConfig struct {
	BatchSize         int `envconfig:"BASKET_REPORT_BATCH_SIZE" default:"100"`
	DefaultWindowDays int `envconfig:"BASKET_REPORT_DEFAULT_WINDOW_DAYS" default:"7"`
}

// BasketConfig tunes the optimistic concurrency retry loop around basket saves.
type BasketConfig struct {
	MaxAttempts int           `envconfig:"BASKET_CAS_MAX_ATTEMPTS" default:"10"`
	Backoff     time.Duration `envconfig:"BASKET_CAS_BACKOFF" default:"5ms"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"BASKET_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:8000"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		return fmt.Errorf("%s is required when %s=%s", EnvDBDSN, EnvDBDriver, DBDriverSQLite)
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
