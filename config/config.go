package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Log      LogConfig
	CORS     CORSConfig
}

type ServerConfig struct {
	Port            string
	GinMode         string
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

type JWTConfig struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

type CORSConfig struct {
	// AllowedOrigins empty means any origin is reflected back.
	AllowedOrigins []string
}

// DSN returns the lib/pq connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8000")
	v.SetDefault("gin_mode", "release")
	v.SetDefault("shutdown_timeout", 30*time.Second)

	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", 5432)
	v.SetDefault("db_user", "postgres")
	v.SetDefault("db_password", "")
	v.SetDefault("db_name", "medicare_db")
	v.SetDefault("db_sslmode", "disable")
	v.SetDefault("db_max_open_conns", 25)
	v.SetDefault("db_max_idle_conns", 5)
	v.SetDefault("db_conn_max_lifetime", 5*time.Minute)
	v.SetDefault("db_auto_migrate", false)

	v.SetDefault("jwt_secret", "")
	v.SetDefault("jwt_access_ttl", 24*time.Hour)
	v.SetDefault("jwt_refresh_ttl", 7*24*time.Hour)

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")

	v.SetDefault("cors_allowed_origins", "")
}

// Load resolves the configuration once: defaults, then the optional YAML
// file, then .env, then the process environment.
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            v.GetString("port"),
			GinMode:         v.GetString("gin_mode"),
			ShutdownTimeout: v.GetDuration("shutdown_timeout"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("db_host"),
			Port:            v.GetInt("db_port"),
			User:            v.GetString("db_user"),
			Password:        v.GetString("db_password"),
			Name:            v.GetString("db_name"),
			SSLMode:         v.GetString("db_sslmode"),
			MaxOpenConns:    v.GetInt("db_max_open_conns"),
			MaxIdleConns:    v.GetInt("db_max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("db_conn_max_lifetime"),
			AutoMigrate:     v.GetBool("db_auto_migrate"),
		},
		JWT: JWTConfig{
			Secret:     v.GetString("jwt_secret"),
			AccessTTL:  v.GetDuration("jwt_access_ttl"),
			RefreshTTL: v.GetDuration("jwt_refresh_ttl"),
		},
		Log: LogConfig{
			Level:  v.GetString("log_level"),
			Format: v.GetString("log_format"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("cors_allowed_origins")),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET not set")
	}
	if c.JWT.AccessTTL <= 0 || c.JWT.RefreshTTL <= 0 {
		return errors.New("JWT token lifetimes must be positive")
	}
	if c.JWT.RefreshTTL < c.JWT.AccessTTL {
		return errors.New("JWT_REFRESH_TTL must not be shorter than JWT_ACCESS_TTL")
	}
	if c.Server.Port == "" {
		return errors.New("PORT must not be empty")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
