package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/netip"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"barbershop/pkg/logger"

	"github.com/joho/godotenv"
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type Config struct {
	Port string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	CORSAllowedOrigins []string

	// Peers allowed to set X-Forwarded-For. Empty means the header is ignored.
	TrustedProxies        []netip.Prefix
	invalidTrustedProxies []string

	BusinessTimezone string
	Location         *time.Location
	ShopName         string

	EmailUser string
	EmailPass string
	ShopEmail string
	SMTPHost  string
	SMTPPort  string

	NotifyWorkers       int
	NotifyQueueSize     int
	NotifyMaxRetries    int
	NotifyRatePerSecond float64

	KafkaBrokers       []string
	KafkaBookingsTopic string

	Log *logger.Logger
}

// Load reads a .env file from the working directory when there is one, then
// builds the configuration from the environment.
func Load(serviceName string) *Config {
	envFileErr := godotenv.Load()

	cfg := &Config{
		Port: getEnvStr(EnvPort, DefaultPort),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		CORSAllowedOrigins: getEnvList(EnvCORSAllowedOrigins, DefaultCORSAllowedOrigins),

		BusinessTimezone: getEnvStr(EnvBusinessTimezone, DefaultBusinessTimezone),
		ShopName:         getEnvStr(EnvShopName, DefaultShopName),

		EmailUser: getEnvStr(EnvEmailUser, ""),
		EmailPass: getEnvStr(EnvEmailPass, ""),
		ShopEmail: getEnvStr(EnvShopEmail, ""),
		SMTPHost:  getEnvStr(EnvSMTPHost, DefaultSMTPHost),
		SMTPPort:  getEnvStr(EnvSMTPPort, DefaultSMTPPort),

		NotifyWorkers:       getEnvNum(EnvNotifyWorkers, DefaultNotifyWorkers),
		NotifyQueueSize:     getEnvNum(EnvNotifyQueueSize, DefaultNotifyQueueSize),
		NotifyMaxRetries:    getEnvNum(EnvNotifyMaxRetries, DefaultNotifyMaxRetries),
		NotifyRatePerSecond: getEnvFloat(EnvNotifyRatePerSecond, DefaultNotifyRatePerSecond),

		KafkaBrokers:       getEnvList(EnvKafkaBrokers, ""),
		KafkaBookingsTopic: getEnvStr(EnvKafkaBookingsTopic, DefaultKafkaBookingsTopic),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
	}

	if envFileErr != nil && !errors.Is(envFileErr, fs.ErrNotExist) {
		cfg.Log.Warn("Failed to read .env file", "error", envFileErr)
	}

	cfg.TrustedProxies, cfg.invalidTrustedProxies = parsePrefixes(getEnvList(EnvTrustedProxies, ""))

	if loc, err := time.LoadLocation(cfg.BusinessTimezone); err == nil {
		cfg.Location = loc
	}

	return cfg
}

// EmailEnabled reports whether SMTP credentials were supplied.
func (cfg *Config) EmailEnabled() bool {
	return cfg.EmailUser != "" && cfg.EmailPass != ""
}

// KafkaEnabled reports whether booking events should be published.
func (cfg *Config) KafkaEnabled() bool {
	return len(cfg.KafkaBrokers) > 0
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.Location == nil {
		errors = append(errors, fmt.Sprintf("BusinessTimezone must be a valid IANA time zone, got: %s", cfg.BusinessTimezone))
	}

	for _, entry := range cfg.invalidTrustedProxies {
		errors = append(errors, fmt.Sprintf("TrustedProxies entries must be IPs or CIDR ranges, got: %s", entry))
	}

	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.RateLimitWindow <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitWindow must be positive, got: %s", cfg.RateLimitWindow))
	}
	if cfg.RequestTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}
	if cfg.ReadTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}

	if cfg.EmailUser != "" && !emailRegex.MatchString(cfg.EmailUser) {
		errors = append(errors, fmt.Sprintf("EmailUser must be an email address, got: %s", cfg.EmailUser))
	}
	if cfg.EmailEnabled() && cfg.ShopEmail == "" {
		errors = append(errors, "ShopEmail is required when email notifications are enabled")
	}
	if cfg.ShopEmail != "" && !emailRegex.MatchString(cfg.ShopEmail) {
		errors = append(errors, fmt.Sprintf("ShopEmail must be an email address, got: %s", cfg.ShopEmail))
	}

	if cfg.NotifyWorkers <= 0 {
		errors = append(errors, fmt.Sprintf("NotifyWorkers must be positive, got: %d", cfg.NotifyWorkers))
	}
	if cfg.NotifyQueueSize <= 0 {
		errors = append(errors, fmt.Sprintf("NotifyQueueSize must be positive, got: %d", cfg.NotifyQueueSize))
	}
	if cfg.NotifyMaxRetries < 0 {
		errors = append(errors, fmt.Sprintf("NotifyMaxRetries cannot be negative, got: %d", cfg.NotifyMaxRetries))
	}
	if cfg.NotifyRatePerSecond <= 0 {
		errors = append(errors, fmt.Sprintf("NotifyRatePerSecond must be positive, got: %g", cfg.NotifyRatePerSecond))
	}

	if cfg.KafkaEnabled() && cfg.KafkaBookingsTopic == "" {
		errors = append(errors, "KafkaBookingsTopic cannot be empty when KafkaBrokers is set")
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"port", cfg.Port,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"cors_allowed_origins", cfg.CORSAllowedOrigins,
		"trusted_proxies", cfg.TrustedProxies,
		"business_timezone", cfg.BusinessTimezone,
		"shop_name", cfg.ShopName,
		"email_user", cfg.EmailUser,
		"email_pass_set", cfg.EmailPass != "",
		"shop_email", cfg.ShopEmail,
		"smtp_addr", cfg.SMTPHost+":"+cfg.SMTPPort,
		"notify_workers", cfg.NotifyWorkers,
		"notify_queue_size", cfg.NotifyQueueSize,
		"notify_max_retries", cfg.NotifyMaxRetries,
		"notify_rate_per_second", cfg.NotifyRatePerSecond,
		"kafka_brokers", cfg.KafkaBrokers,
		"kafka_bookings_topic", cfg.KafkaBookingsTopic,
	)
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// parsePrefixes reads IPs and CIDR ranges. A bare IP becomes a single-host
// prefix. Entries that do not parse are returned separately.
func parsePrefixes(entries []string) ([]netip.Prefix, []string) {
	var prefixes []netip.Prefix
	var invalid []string
	for _, entry := range entries {
		if strings.Contains(entry, "/") {
			p, err := netip.ParsePrefix(entry)
			if err != nil {
				invalid = append(invalid, entry)
				continue
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			invalid = append(invalid, entry)
			continue
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, invalid
}

func getEnvList(key, fallback string) []string {
	raw := getEnvStr(key, fallback)
	var items []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
