package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

// Config is read from the environment (after godotenv has loaded .env).
type Config struct {
	Port     string         `mapstructure:"port"`
	Database DatabaseConfig `mapstructure:"db"`
	Report   ReportConfig   `mapstructure:"report"`
	Log      LogConfig      `mapstructure:"log"`
	Owner    OwnerConfig    `mapstructure:"owner"`
}

type DatabaseConfig struct {
	URL      string `mapstructure:"url"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
}

// DSN returns DATABASE_URL when set, otherwise a key/value DSN built from DB_*.
func (c *DatabaseConfig) DSN(timezone string) string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, timezone,
	)
}

type ReportConfig struct {
	Timezone     string        `mapstructure:"timezone"`
	NameCacheTTL time.Duration `mapstructure:"name_cache_ttl"`
}

// OwnerConfig is the account seeded on first start.
type OwnerConfig struct {
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load binds PORT, DATABASE_URL, DB_HOST, ..., REPORT_TIMEZONE,
// REPORT_NAME_CACHE_TTL, LOG_LEVEL, LOG_FORMAT, OWNER_EMAIL and OWNER_PASSWORD.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("port", "3000")
	v.SetDefault("db.url", "")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "timeclock")
	v.SetDefault("report.timezone", "Asia/Tokyo")
	v.SetDefault("report.name_cache_ttl", "5m")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("owner.email", "owner@example.com")
	v.SetDefault("owner.password", "owner123")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("db.url", "DATABASE_URL"); err != nil {
		return nil, fmt.Errorf("failed to bind DATABASE_URL: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("invalid config: PORT is empty")
	}
	if c.Report.Timezone == "" {
		return fmt.Errorf("invalid config: REPORT_TIMEZONE is empty")
	}
	if _, err := time.LoadLocation(c.Report.Timezone); err != nil {
		return fmt.Errorf("invalid config: REPORT_TIMEZONE %q: %w", c.Report.Timezone, err)
	}
	if c.Report.NameCacheTTL < 0 {
		return fmt.Errorf("invalid config: REPORT_NAME_CACHE_TTL must not be negative")
	}
	return nil
}

// Location returns the reporting timezone. Load rejects unknown zones, so the
// fixed JST fallback only applies to a Config built without Validate.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Report.Timezone)
	if err != nil {
		return time.FixedZone("JST", 9*60*60)
	}
	return loc
}
