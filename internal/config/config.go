package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	NewRelic   NewRelicConfig
	Validation ValidationConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	AppName    string
	LicenseKey string
	Enabled    bool
}

// ValidationConfig holds every numeric threshold used by the integrity
// engine. Values are per-deployment, never compiled into the rules.
type ValidationConfig struct {
	// Distance (km).
	MaxDistanceKm         int64 // error above this for regular trips
	MaxLongHaulDistanceKm int64 // error above this for declared long-haul
	MinDistanceWarnKm     int64 // warning below this unless edge case

	// Duration (hours).
	MaxDurationHours         float64 // error above this for regular trips
	MaxLongHaulDurationHours float64 // error above this for long-haul
	WarnDurationHours        float64 // warning above this

	// Speed (km/h). The speed check only runs above SpeedCheckMinDistanceKm.
	MaxAverageSpeedKmh      float64
	SpeedCheckMinDistanceKm int64

	// Fuel efficiency (km/L).
	MinKmpl          float64 // error below
	MaxKmpl          float64 // error above
	WarnLowKmpl      float64 // warning below, regular trips
	WarnLowKmplEdge  float64 // warning below, edge-case trips
	WarnHighKmpl     float64 // warning above
	KmplEpsilon      float64 // recalculation no-op detection
	MaxFuelQuantityL float64 // error above
	WarnFuelQuantityL float64

	// Expense ceilings (currency units).
	MaxFuelExpense       float64
	WarnFuelExpense      float64
	MaxDriverExpense     float64
	WarnDriverExpense    float64
	MaxTollExpense       float64
	WarnTollExpense      float64
	MaxMiscExpense       float64
	WarnMiscExpense      float64
	MaxBreakdownExpense  float64
	WarnBreakdownExpense float64

	// Continuity gap bands (km).
	SmallGapKm    int64 // gap <= this: acceptable (info)
	ModerateGapKm int64 // gap <= this: moderate (warning); above: large

	// Cascade traversal cap.
	CascadeMaxTrips int

	// Per-vehicle write lock lease.
	VehicleLockTTL time.Duration
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "fleet_ledger"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		NewRelic: NewRelicConfig{
			AppName:    getEnv("NEW_RELIC_APP_NAME", "fleet-ledger-service"),
			LicenseKey: getEnv("NEW_RELIC_LICENSE_KEY", ""),
			Enabled:    getBoolEnv("NEW_RELIC_ENABLED", false),
		},
		Validation: LoadValidation(),
	}
}

// LoadValidation loads the engine thresholds with their documented defaults.
// Split out so tests and tools can build a threshold set without the rest of
// the application config.
func LoadValidation() ValidationConfig {
	return ValidationConfig{
		MaxDistanceKm:         getInt64Env("MAX_DISTANCE_KM", 2000),
		MaxLongHaulDistanceKm: getInt64Env("MAX_LONG_HAUL_DISTANCE_KM", 3000),
		MinDistanceWarnKm:     getInt64Env("MIN_DISTANCE_WARN_KM", 5),

		MaxDurationHours:         getFloatEnv("MAX_DURATION_HOURS", 48),
		MaxLongHaulDurationHours: getFloatEnv("MAX_LONG_HAUL_DURATION_HOURS", 72),
		WarnDurationHours:        getFloatEnv("WARN_DURATION_HOURS", 36),

		MaxAverageSpeedKmh:      getFloatEnv("MAX_AVERAGE_SPEED_KMH", 120),
		SpeedCheckMinDistanceKm: getInt64Env("SPEED_CHECK_MIN_DISTANCE_KM", 10),

		MinKmpl:           getFloatEnv("MIN_KMPL", 1),
		MaxKmpl:           getFloatEnv("MAX_KMPL", 50),
		WarnLowKmpl:       getFloatEnv("WARN_LOW_KMPL", 5),
		WarnLowKmplEdge:   getFloatEnv("WARN_LOW_KMPL_EDGE", 3),
		WarnHighKmpl:      getFloatEnv("WARN_HIGH_KMPL", 30),
		KmplEpsilon:       getFloatEnv("KMPL_EPSILON", 0.01),
		MaxFuelQuantityL:  getFloatEnv("MAX_FUEL_QUANTITY_L", 500),
		WarnFuelQuantityL: getFloatEnv("WARN_FUEL_QUANTITY_L", 200),

		MaxFuelExpense:       getFloatEnv("MAX_FUEL_EXPENSE", 50000),
		WarnFuelExpense:      getFloatEnv("WARN_FUEL_EXPENSE", 25000),
		MaxDriverExpense:     getFloatEnv("MAX_DRIVER_EXPENSE", 10000),
		WarnDriverExpense:    getFloatEnv("WARN_DRIVER_EXPENSE", 5000),
		MaxTollExpense:       getFloatEnv("MAX_TOLL_EXPENSE", 5000),
		WarnTollExpense:      getFloatEnv("WARN_TOLL_EXPENSE", 2500),
		MaxMiscExpense:       getFloatEnv("MAX_MISC_EXPENSE", 10000),
		WarnMiscExpense:      getFloatEnv("WARN_MISC_EXPENSE", 5000),
		MaxBreakdownExpense:  getFloatEnv("MAX_BREAKDOWN_EXPENSE", 25000),
		WarnBreakdownExpense: getFloatEnv("WARN_BREAKDOWN_EXPENSE", 10000),

		SmallGapKm:    getInt64Env("CONTINUITY_SMALL_GAP_KM", 10),
		ModerateGapKm: getInt64Env("CONTINUITY_MODERATE_GAP_KM", 50),

		CascadeMaxTrips: getIntEnv("CASCADE_MAX_TRIPS", 500),

		VehicleLockTTL: getDurationEnv("VEHICLE_LOCK_TTL", 10*time.Second),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
