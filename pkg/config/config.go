package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"roomdesk/internal/scheduling/grid"
	"roomdesk/pkg/client"
	"roomdesk/pkg/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	StorageBackend string
	LockBackend    string
	LockTTL        time.Duration

	DirectoryDSN string

	EventsEnabled      bool
	BookingEventsTopic string

	WorkingHoursStart string
	WorkingHoursEnd   string
	SlotGranularity   time.Duration
	BranchRooms       string
	SessionTTL        time.Duration

	Port string

	RateLimitRequests int
	RateLimitWindow   time.Duration
	RateLimitBurst    int

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	Log    *logger.Logger
	Client *client.Client
}

// Load reads the configuration from the environment (and a .env file when
// present), validates it and exits on failure.
func Load(serviceName string) *Config {
	_ = godotenv.Load()

	cfg := FromEnv(serviceName)
	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

// FromEnv builds a Config from the environment without validating it.
func FromEnv(serviceName string) *Config {
	return &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		RedisAddr:     getEnvStr(EnvRedisAddr, DefaultRedisAddr),
		RedisPassword: getEnvStr(EnvRedisPassword, ""),
		RedisDB:       getEnvNum(EnvRedisDB, DefaultRedisDB),

		StorageBackend: getEnvStr(EnvStorageBackend, DefaultStorageBackend),
		LockBackend:    getEnvStr(EnvLockBackend, DefaultLockBackend),
		LockTTL:        getEnvDuration(EnvLockTTL, DefaultLockTTL),

		DirectoryDSN: getEnvStr(EnvDirectoryDSN, DefaultDirectoryDSN),

		EventsEnabled:      getEnvBool(EnvEventsEnabled, DefaultEventsEnabled),
		BookingEventsTopic: getEnvStr(EnvBookingEventsTopic, DefaultBookingEventsTopic),

		WorkingHoursStart: getEnvStr(EnvWorkingHoursStart, DefaultWorkingHoursStart),
		WorkingHoursEnd:   getEnvStr(EnvWorkingHoursEnd, DefaultWorkingHoursEnd),
		SlotGranularity:   getEnvDuration(EnvSlotGranularity, DefaultSlotGranularity),
		BranchRooms:       getEnvStr(EnvBranchRooms, DefaultBranchRooms),
		SessionTTL:        getEnvDuration(EnvSessionTTL, DefaultSessionTTL),

		Port: getEnvStr(EnvPort, DefaultPort),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),
		RateLimitBurst:    getEnvNum(EnvRateLimitBurst, DefaultRateLimitBurst),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, logger.INFO),
			Format:    getEnvStr(EnvLogFormat, logger.JSON),
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) SetRedis() {
	cfg.Client.SetRedis(cfg.Log, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.MongoConnTimeout)
}

func (cfg *Config) SetDirectory() {
	cfg.Client.SetDirectory(cfg.Log, cfg.DirectoryDSN)
}

// WorkingHours parses the configured window. Validate guarantees it parses.
func (cfg *Config) WorkingHours() grid.WorkingHours {
	start, _ := grid.ParseTimeOfDay(cfg.WorkingHoursStart)
	end, _ := grid.ParseTimeOfDay(cfg.WorkingHoursEnd)
	return grid.WorkingHours{Start: start, End: end}
}

// Grid is the slot grid every booking dialog uses.
func (cfg *Config) Grid() grid.Grid {
	return grid.Generate(cfg.WorkingHours(), cfg.SlotGranularity)
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	start, startErr := grid.ParseTimeOfDay(cfg.WorkingHoursStart)
	if startErr != nil {
		errors = append(errors, fmt.Sprintf("WorkingHoursStart must be in HH:MM format (00:00-23:59), got: %s", cfg.WorkingHoursStart))
	}
	end, endErr := grid.ParseTimeOfDay(cfg.WorkingHoursEnd)
	if endErr != nil {
		errors = append(errors, fmt.Sprintf("WorkingHoursEnd must be in HH:MM format (00:00-23:59), got: %s", cfg.WorkingHoursEnd))
	}
	if startErr == nil && endErr == nil && start >= end {
		errors = append(errors, fmt.Sprintf("WorkingHoursStart (%s) must be before WorkingHoursEnd (%s)", cfg.WorkingHoursStart, cfg.WorkingHoursEnd))
	}
	if cfg.SlotGranularity < time.Minute || cfg.SlotGranularity%time.Minute != 0 {
		errors = append(errors, fmt.Sprintf("SlotGranularity must be a positive whole number of minutes, got: %s", cfg.SlotGranularity))
	}
	if cfg.BranchRooms == "" {
		errors = append(errors, "BranchRooms cannot be empty")
	}

	switch cfg.StorageBackend {
	case BackendMongo, BackendMemory:
	default:
		errors = append(errors, fmt.Sprintf("StorageBackend must be one of [mongo, memory], got: %s", cfg.StorageBackend))
	}
	switch cfg.LockBackend {
	case BackendMongo, BackendRedis, BackendMemory:
	default:
		errors = append(errors, fmt.Sprintf("LockBackend must be one of [mongo, redis, memory], got: %s", cfg.LockBackend))
	}
	if cfg.LockBackend == BackendMemory && cfg.StorageBackend == BackendMongo {
		errors = append(errors, "LockBackend memory cannot guard a shared mongo store; use mongo or redis")
	}
	if cfg.LockTTL <= 0 {
		errors = append(errors, fmt.Sprintf("LockTTL must be positive, got: %s", cfg.LockTTL))
	}

	if cfg.StorageBackend == BackendMongo || cfg.LockBackend == BackendMongo {
		if cfg.MongoURI == "" {
			errors = append(errors, "MongoURI cannot be empty")
		} else if len(cfg.MongoURI) < 10 || !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
			errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactURI(cfg.MongoURI)))
		}
		if cfg.MongoDatabaseName == "" {
			errors = append(errors, "MongoDatabaseName cannot be empty")
		}
	}
	if cfg.LockBackend == BackendRedis && cfg.RedisAddr == "" {
		errors = append(errors, "RedisAddr cannot be empty when LockBackend is redis")
	}
	if cfg.RedisDB < 0 {
		errors = append(errors, fmt.Sprintf("RedisDB cannot be negative, got: %d", cfg.RedisDB))
	}

	if cfg.EventsEnabled && cfg.BookingEventsTopic == "" {
		errors = append(errors, "BookingEventsTopic cannot be empty when events are enabled")
	}

	if cfg.MongoConnTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
	}
	if cfg.SessionTTL <= 0 {
		errors = append(errors, fmt.Sprintf("SessionTTL must be positive, got: %s", cfg.SessionTTL))
	}
	if cfg.RateLimitWindow <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitWindow must be positive, got: %s", cfg.RateLimitWindow))
	}
	if cfg.RequestTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.IdempotencyTTL <= 0 {
		errors = append(errors, fmt.Sprintf("IdempotencyTTL must be positive, got: %s", cfg.IdempotencyTTL))
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

	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.RateLimitBurst <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitBurst must be positive, got: %d", cfg.RateLimitBurst))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
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
		"storage_backend", cfg.StorageBackend,
		"lock_backend", cfg.LockBackend,
		"lock_ttl", cfg.LockTTL,
		"mongo_uri", redactURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"redis_addr", cfg.RedisAddr,
		"redis_db", cfg.RedisDB,
		"directory_dsn", redactURI(cfg.DirectoryDSN),
		"events_enabled", cfg.EventsEnabled,
		"booking_events_topic", cfg.BookingEventsTopic,
		"working_hours_start", cfg.WorkingHoursStart,
		"working_hours_end", cfg.WorkingHoursEnd,
		"slot_granularity", cfg.SlotGranularity,
		"branch_rooms", cfg.BranchRooms,
		"session_ttl", cfg.SessionTTL,
		"port", cfg.Port,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"rate_limit_burst", cfg.RateLimitBurst,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
	)
}

var credentialRegex = regexp.MustCompile(`([a-z+]+://)[^:/@]+:[^@]+@`)

func redactURI(uri string) string {
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
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

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
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

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log)
}

func NormalizeContactLimit(limit int) int {
	if limit <= 0 {
		return DefaultContactSearchLimit
	}
	if limit > MaxContactSearchLimit {
		return MaxContactSearchLimit
	}
	return limit
}
