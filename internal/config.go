package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Config struct {
	Environment   string              `mapstructure:"environment"`
	Server        ServerConfig        `mapstructure:"http_server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Security      SecurityConfig      `mapstructure:"security"`
	Ledger        LedgerConfig        `mapstructure:"ledger"`
	Scheduler     SchedulerConfig     `mapstructure:"scheduler"`
	Cache         CacheConfig         `mapstructure:"cache"`
	Messaging     MessagingConfig     `mapstructure:"messaging"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	BaseURL           string        `mapstructure:"base_url"`
	AllowedOrigins    string        `mapstructure:"allowed_origins"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Source          string        `mapstructure:"source"`
}

type SecurityConfig struct {
	AccessTokenSecret    string        `mapstructure:"access_token_secret"`
	RefreshTokenSecret   string        `mapstructure:"refresh_token_secret"`
	AccessTokenDuration  time.Duration `mapstructure:"access_token_duration"`
	RefreshTokenDuration time.Duration `mapstructure:"refresh_token_duration"`
	BCryptCost           int           `mapstructure:"bcrypt_cost"`
}

// LedgerConfig holds the defaults applied to new accounts and the timezone
// used to decide which calendar day "today" is.
type LedgerConfig struct {
	DefaultMaximumBudget string `mapstructure:"default_maximum_budget"`
	DefaultCurrency      string `mapstructure:"default_currency"`
	Timezone             string `mapstructure:"timezone"`
}

type SchedulerConfig struct {
	MaxWorkers   int           `mapstructure:"max_workers"`
	UserTimeout  time.Duration `mapstructure:"user_timeout"`
	PageSize     int           `mapstructure:"page_size"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

type CacheConfig struct {
	NumCounters int64         `mapstructure:"num_counters"`
	MaxCost     int64         `mapstructure:"max_cost"`
	TTL         time.Duration `mapstructure:"ttl"`
}

type MessagingConfig struct {
	AMQPURL    string `mapstructure:"amqp_url"`
	Exchange   string `mapstructure:"exchange"`
	RoutingKey string `mapstructure:"routing_key"`
}

type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ----------------- ENV LOADING -----------------

// LoadConfigFromEnv builds the configuration from plain environment
// variables. Used for container deployments where no config file is mounted.
func LoadConfigFromEnv() *Config {
	return &Config{
		Environment: getEnv("APP_ENV", "production"),
		Server: ServerConfig{
			Port:              getEnvAsInt("HTTP_PORT", 8080),
			BaseURL:           getEnv("HTTP_BASE_URL", ""),
			AllowedOrigins:    getEnv("HTTP_ALLOWED_ORIGINS", "*"),
			ReadHeaderTimeout: getEnvAsDuration("HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
			ReadTimeout:       getEnvAsDuration("HTTP_READ_TIMEOUT", 15*time.Second),
			IdleTimeout:       getEnvAsDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
			WriteTimeout:      getEnvAsDuration("HTTP_WRITE_TIMEOUT", 15*time.Second),
		},
		Database: DatabaseConfig{
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
			Source:          getEnv("DB_SOURCE", ""),
		},
		Security: SecurityConfig{
			AccessTokenSecret:    getEnv("JWT_ACCESS_SECRET", ""),
			RefreshTokenSecret:   getEnv("JWT_REFRESH_SECRET", ""),
			AccessTokenDuration:  getEnvAsDuration("JWT_ACCESS_TTL", 15*time.Minute),
			RefreshTokenDuration: getEnvAsDuration("JWT_REFRESH_TTL", 7*24*time.Hour),
			BCryptCost:           getEnvAsInt("BCRYPT_COST", 12),
		},
		Ledger: LedgerConfig{
			DefaultMaximumBudget: getEnv("LEDGER_DEFAULT_MAXIMUM_BUDGET", "1000"),
			DefaultCurrency:      getEnv("LEDGER_DEFAULT_CURRENCY", "USD"),
			Timezone:             getEnv("LEDGER_TIMEZONE", "UTC"),
		},
		Scheduler: SchedulerConfig{
			MaxWorkers:   getEnvAsInt("SCHEDULER_MAX_WORKERS", 8),
			UserTimeout:  getEnvAsDuration("SCHEDULER_USER_TIMEOUT", 10*time.Second),
			PageSize:     getEnvAsInt("SCHEDULER_PAGE_SIZE", 500),
			PollInterval: getEnvAsDuration("SCHEDULER_POLL_INTERVAL", time.Minute),
		},
		Cache: CacheConfig{
			NumCounters: int64(getEnvAsInt("CACHE_NUM_COUNTERS", 10000)),
			MaxCost:     int64(getEnvAsInt("CACHE_MAX_COST", 1000)),
			TTL:         getEnvAsDuration("CACHE_TTL", 10*time.Minute),
		},
		Messaging: MessagingConfig{
			AMQPURL:    getEnv("AMQP_URL", ""),
			Exchange:   getEnv("AMQP_EXCHANGE", "budget"),
			RoutingKey: getEnv("AMQP_ROUTING_KEY", "budget.events"),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "json"),
			},
		},
	}
}

// ----------------- HELPERS -----------------

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultVal
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Security.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("security config: %v", err))
	}

	if err := c.Ledger.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("ledger config: %v", err))
	}

	if err := c.Scheduler.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("scheduler config: %v", err))
	}

	if err := c.Messaging.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("messaging config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d: must be between 1 and 65535", c.Port)
	}
	if c.AllowedOrigins != "" {
		origins := strings.Split(c.AllowedOrigins, ",")
		for _, origin := range origins {
			origin = strings.TrimSpace(origin)
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *DatabaseConfig) Validate() error {
	if c.Source == "" {
		return errors.New("source is required")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

func (c *SecurityConfig) Validate() error {
	if len(c.AccessTokenSecret) < 32 {
		return errors.New("access_token_secret must be at least 32 characters")
	}
	if len(c.RefreshTokenSecret) < 32 {
		return errors.New("refresh_token_secret must be at least 32 characters")
	}
	if c.AccessTokenSecret == c.RefreshTokenSecret {
		return errors.New("access and refresh token secrets must differ")
	}
	if c.BCryptCost < 4 || c.BCryptCost > 31 {
		return fmt.Errorf("bcrypt_cost %d out of range", c.BCryptCost)
	}
	return nil
}

func (c *LedgerConfig) Validate() error {
	if _, err := c.MaximumBudget(); err != nil {
		return err
	}
	if len(c.DefaultCurrency) != 3 {
		return fmt.Errorf("default_currency %q must have a length of 3", c.DefaultCurrency)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// MaximumBudget parses the default monthly allowance for new accounts.
func (c *LedgerConfig) MaximumBudget() (decimal.Decimal, error) {
	if c.DefaultMaximumBudget == "" {
		return decimal.NewFromInt(1000), nil
	}
	d, err := decimal.NewFromString(c.DefaultMaximumBudget)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid default_maximum_budget %q: %w", c.DefaultMaximumBudget, err)
	}
	if !d.IsPositive() {
		return decimal.Zero, errors.New("default_maximum_budget must be greater than 0")
	}
	return d, nil
}

// Location resolves the configured timezone, defaulting to UTC.
func (c *LedgerConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c *SchedulerConfig) Validate() error {
	if c.MaxWorkers < 1 {
		return errors.New("max_workers must be at least 1")
	}
	if c.UserTimeout <= 0 {
		return errors.New("user_timeout must be positive")
	}
	if c.PageSize < 1 {
		return errors.New("page_size must be at least 1")
	}
	return nil
}

func (c *MessagingConfig) Enabled() bool {
	return c.AMQPURL != ""
}

func (c *MessagingConfig) Validate() error {
	if !c.Enabled() {
		return nil
	}
	parsed, err := url.Parse(c.AMQPURL)
	if err != nil {
		return fmt.Errorf("invalid AMQP URL: %w", err)
	}
	if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
		return fmt.Errorf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsed.Scheme)
	}
	if c.Exchange == "" {
		return errors.New("exchange is required when amqp_url is set")
	}
	return nil
}
