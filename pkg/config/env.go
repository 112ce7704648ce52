package config

const (
	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvCORSAllowedOrigins = "CORS_ALLOWED_ORIGINS"
	EnvTrustedProxies     = "TRUSTED_PROXIES"

	EnvBusinessTimezone = "BUSINESS_TIMEZONE"
	EnvShopName         = "SHOP_NAME"

	EnvEmailUser = "EMAIL_USER"
	EnvEmailPass = "EMAIL_PASS"
	EnvShopEmail = "SHOP_EMAIL"
	EnvSMTPHost  = "SMTP_HOST"
	EnvSMTPPort  = "SMTP_PORT"

	EnvNotifyWorkers       = "NOTIFY_WORKERS"
	EnvNotifyQueueSize     = "NOTIFY_QUEUE_SIZE"
	EnvNotifyMaxRetries    = "NOTIFY_MAX_RETRIES"
	EnvNotifyRatePerSecond = "NOTIFY_RATE_PER_SECOND"

	EnvKafkaBrokers       = "KAFKA_BROKERS"
	EnvKafkaBookingsTopic = "KAFKA_BOOKINGS_TOPIC"
)
