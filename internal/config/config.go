package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"arogyam-go/internal/timing"

	"github.com/benbjohnson/clock"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// reloadDebounce coalesces the bursts of write events editors produce.
const reloadDebounce = 250 * time.Millisecond

var (
	mu   sync.RWMutex
	conf *Config
)

// Config struct is the top-level configuration structure.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Performance PerformanceConfig `mapstructure:"performance"`
	Booking     BookingConfig     `mapstructure:"booking"`
	Storage     StorageConfig     `mapstructure:"storage"`
}

// ServerConfig holds server-related settings.
type ServerConfig struct {
	Port           string        `mapstructure:"port"`
	SessionSecret  string        `mapstructure:"session_secret"`
	SecureCookies  bool          `mapstructure:"secure_cookies"`
	AdminTokenTTL  time.Duration `mapstructure:"admin_token_ttl"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// LoggingConfig holds settings for the logger.
type LoggingConfig struct {
	Directory  string `mapstructure:"directory"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// CacheConfig describes the offline asset cache.
type CacheConfig struct {
	Path      string   `mapstructure:"path"`
	Version   string   `mapstructure:"version"`
	Origin    string   `mapstructure:"origin"`
	Manifest  []string `mapstructure:"manifest"`
	FontHosts []string `mapstructure:"font_hosts"`
}

// PerformanceConfig tunes the frame-rate sampler used by the profile command.
type PerformanceConfig struct {
	FrameInterval time.Duration `mapstructure:"frame_interval"`
}

// BookingConfig holds the public booking form settings.
type BookingConfig struct {
	CatalogPath     string `mapstructure:"catalog_path"`
	RequestsPerHour int    `mapstructure:"requests_per_hour"`
}

// StorageConfig locates the key-value file behind preferences and CLI sessions.
type StorageConfig struct {
	Path string `mapstructure:"path"`
}

// setDefaults sets the default values for the configuration.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "5050")
	v.SetDefault("server.session_secret", "change-me-in-production-please-32b")
	v.SetDefault("server.secure_cookies", false)
	v.SetDefault("server.admin_token_ttl", 12*time.Hour)
	v.SetDefault("server.allowed_origins", []string{})

	// Database defaults
	v.SetDefault("database.host", "db")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "user")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.dbname", "arogyam-db")
	v.SetDefault("database.sslmode", "disable")

	// Logging defaults
	v.SetDefault("logging.directory", "logs")
	v.SetDefault("logging.max_size", 10)   // 10 MB
	v.SetDefault("logging.max_backups", 3) // Keep 3 backups
	v.SetDefault("logging.max_age", 7)     // 7 days
	v.SetDefault("logging.compress", true) // Compress old logs

	// Offline cache defaults
	v.SetDefault("cache.path", "data/offline.db")
	v.SetDefault("cache.version", "v1")
	v.SetDefault("cache.origin", "http://localhost:5050")
	v.SetDefault("cache.manifest", []string{"/", "/assets/css/style.css", "/assets/js/app.js"})
	v.SetDefault("cache.font_hosts", []string{"fonts.googleapis.com", "fonts.gstatic.com"})

	v.SetDefault("performance.frame_interval", 16*time.Millisecond)

	v.SetDefault("booking.catalog_path", "config/consultation_types.yaml")
	v.SetDefault("booking.requests_per_hour", 10)

	v.SetDefault("storage.path", "data/local.db")
}

// Get returns the current configuration. It is safe to call while a
// reload is in progress.
func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	return conf
}

func set(c *Config) {
	mu.Lock()
	conf = c
	mu.Unlock()
}

// Init initializes the configuration with Viper.
func Init(projectRoot string, log *zap.Logger) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	// --- File Configuration ---
	v.AddConfigPath(filepath.Join(projectRoot, "config"))
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// --- Environment Variable Binding ---
	v.SetEnvPrefix("AROGYAM") // e.g., AROGYAM_SERVER_PORT
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// It's okay if the file doesn't exist; defaults and env vars will be used.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	c, err := decode(v)
	if err != nil {
		return nil, err
	}
	set(c)

	// Hot reload, coalescing bursts of events into one decode.
	reload, _ := timing.Debounce(clock.New(), func(e fsnotify.Event) {
		log.Info("Configuration file changed, reloading.", zap.String("file", e.Name))
		next, err := decode(v)
		if err != nil {
			log.Error("Error reloading configuration", zap.Error(err))
			return
		}
		set(next)
	}, reloadDebounce, false)
	v.OnConfigChange(reload)
	v.WatchConfig()

	log.Info("Configuration loaded successfully")
	return c, nil
}

func decode(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if len(c.Server.SessionSecret) < 32 {
		return nil, fmt.Errorf("server.session_secret must be at least 32 bytes, got %d", len(c.Server.SessionSecret))
	}
	return &c, nil
}
