package config

import "time"

const (
	BackendMongo  = "mongo"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "roomdesk"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultRedisAddr = "localhost:6379"
	DefaultRedisDB   = 0

	DefaultStorageBackend = BackendMongo
	DefaultLockBackend    = BackendMongo
	DefaultLockTTL        = 10 * time.Second

	DefaultDirectoryDSN = "file:roomdesk_directory.db"

	DefaultEventsEnabled      = false
	DefaultBookingEventsTopic = "bookings.events"

	DefaultWorkingHoursStart = "08:30"
	DefaultWorkingHoursEnd   = "18:00"
	DefaultSlotGranularity   = 15 * time.Minute
	DefaultBranchRooms       = "Ho Chi Minh:Room 01|Room 02|Room 03;Ha Noi:Room 01|Room 02"
	DefaultSessionTTL        = 30 * time.Minute

	DefaultPort = "8080"

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute
	DefaultRateLimitBurst    = 20

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultContactSearchLimit = 10
	MaxContactSearchLimit     = 50
)
