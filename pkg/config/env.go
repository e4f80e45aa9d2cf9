package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvRedisAddr     = "REDIS_ADDR"
	EnvRedisPassword = "REDIS_PASSWORD"
	EnvRedisDB       = "REDIS_DB"

	EnvStorageBackend = "STORAGE_BACKEND"
	EnvLockBackend    = "LOCK_BACKEND"
	EnvLockTTL        = "LOCK_TTL"

	EnvDirectoryDSN = "DIRECTORY_DSN"

	EnvEventsEnabled      = "EVENTS_ENABLED"
	EnvBookingEventsTopic = "BOOKING_EVENTS_TOPIC"

	EnvWorkingHoursStart = "WORKING_HOURS_START"
	EnvWorkingHoursEnd   = "WORKING_HOURS_END"
	EnvSlotGranularity   = "SLOT_GRANULARITY"
	EnvBranchRooms       = "BRANCH_ROOMS"
	EnvSessionTTL        = "SESSION_TTL"

	EnvPort      = "PORT"
	EnvLogLevel  = "LOG_LEVEL"
	EnvLogFormat = "LOG_FORMAT"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"
	EnvRateLimitBurst    = "RATE_LIMIT_BURST"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
)
