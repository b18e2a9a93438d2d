package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Clinic
	ClinicName       string
	ClinicTimezone   string
	ClinicLanguage   string
	BusinessDayStart int
	BusinessDayEnd   int

	// Cal.com calendar provider
	CalAPIKey        string
	CalEventTypeID   string
	CalBaseURL       string
	SlotWindowDays   int
	MaxWindowDays    int
	MaxSlots         int
	SlotFetchTimeout time.Duration
	BookingTimeout   time.Duration

	// Patient store (Supabase REST or direct Postgres)
	SupabaseURL          string
	SupabaseKey          string
	DatabaseURL          string
	PatientLookupTimeout time.Duration

	// Optional Redis cache for patient lookups
	RedisAddr       string
	RedisPassword   string
	RedisTLS        bool
	PatientCacheTTL time.Duration
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8002"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		ClinicName:       getEnv("CLINIC_NAME", "Dentalis Clinic"),
		ClinicTimezone:   getEnv("CLINIC_TIMEZONE", "Europe/Bratislava"),
		ClinicLanguage:   strings.ToLower(strings.TrimSpace(getEnv("CLINIC_LANGUAGE", "sk"))),
		BusinessDayStart: getEnvAsInt("BUSINESS_DAY_START", 8),
		BusinessDayEnd:   getEnvAsInt("BUSINESS_DAY_END", 18),

		CalAPIKey:        getEnv("CAL_API_KEY", ""),
		CalEventTypeID:   getEnv("CAL_EVENT_TYPE_ID", ""),
		CalBaseURL:       getEnv("CAL_BASE_URL", "https://api.cal.com/v1"),
		SlotWindowDays:   getEnvAsInt("SLOT_WINDOW_DAYS", 4),
		MaxWindowDays:    getEnvAsInt("MAX_WINDOW_DAYS", 30),
		MaxSlots:         getEnvAsInt("MAX_SLOTS", 12),
		SlotFetchTimeout: getEnvAsDuration("SLOT_FETCH_TIMEOUT", 5*time.Second),
		BookingTimeout:   getEnvAsDuration("BOOKING_TIMEOUT", 8*time.Second),

		SupabaseURL:          strings.TrimRight(getEnv("SUPABASE_URL", ""), "/"),
		SupabaseKey:          getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		PatientLookupTimeout: getEnvAsDuration("PATIENT_LOOKUP_TIMEOUT", 5*time.Second),

		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisTLS:        getEnvAsBool("REDIS_TLS", false),
		PatientCacheTTL: getEnvAsDuration("PATIENT_CACHE_TTL", 5*time.Minute),
	}
}

// CalendarConfigured reports whether both Cal.com credentials are present.
func (c *Config) CalendarConfigured() bool {
	return strings.TrimSpace(c.CalAPIKey) != "" && strings.TrimSpace(c.CalEventTypeID) != ""
}

// ClinicLocation returns the clinic's time zone, falling back to UTC when the
// configured name cannot be loaded.
func (c *Config) ClinicLocation() *time.Location {
	if c.ClinicTimezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.ClinicTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
