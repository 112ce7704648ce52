package config

import "time"

const (
	DefaultPort     = "3000"
	DefaultLogLevel = "info"

	// 100 requests per client address every 15 minutes.
	DefaultRateLimitRequests = 100
	DefaultRateLimitWindow   = 15 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxRequestSize = 64 * 1024 // 64KB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultCORSAllowedOrigins = "*"

	DefaultBusinessTimezone = "Local"
	DefaultShopName         = "Legend Barber Shop"

	DefaultSMTPHost = "smtp.gmail.com"
	DefaultSMTPPort = "587"

	DefaultNotifyWorkers       = 2
	DefaultNotifyQueueSize     = 256
	DefaultNotifyMaxRetries    = 5
	DefaultNotifyRatePerSecond = 5.0

	DefaultKafkaBookingsTopic = "bookings.confirmed"
)
