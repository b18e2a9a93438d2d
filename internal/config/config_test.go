package config

import (
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "ENV", "LOG_LEVEL", "CAL_API_KEY", "CAL_EVENT_TYPE_ID", "CAL_BASE_URL",
		"CLINIC_TIMEZONE", "SLOT_WINDOW_DAYS", "MAX_WINDOW_DAYS", "MAX_SLOTS", "SLOT_FETCH_TIMEOUT",
		"BOOKING_TIMEOUT", "SUPABASE_URL", "SUPABASE_SERVICE_ROLE_KEY", "DATABASE_URL",
		"REDIS_ADDR", "REDIS_TLS", "PATIENT_CACHE_TTL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg := Load()
	if cfg.Port != "8002" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.ClinicTimezone != "Europe/Bratislava" {
		t.Fatalf("expected clinic timezone default, got %s", cfg.ClinicTimezone)
	}
	if cfg.CalBaseURL != "https://api.cal.com/v1" {
		t.Fatalf("expected cal.com base url, got %s", cfg.CalBaseURL)
	}
	if cfg.MaxSlots != 12 || cfg.SlotWindowDays != 4 {
		t.Fatalf("expected slot defaults 12/4, got %d/%d", cfg.MaxSlots, cfg.SlotWindowDays)
	}
	if cfg.MaxWindowDays != 30 {
		t.Fatalf("expected max window 30, got %d", cfg.MaxWindowDays)
	}
	if cfg.SlotFetchTimeout != 5*time.Second {
		t.Fatalf("expected 5s fetch timeout, got %s", cfg.SlotFetchTimeout)
	}
	if cfg.BookingTimeout != 8*time.Second {
		t.Fatalf("expected 8s booking timeout, got %s", cfg.BookingTimeout)
	}
	if cfg.CalendarConfigured() {
		t.Fatalf("calendar should not be configured without credentials")
	}
	if cfg.RedisAddr != "" {
		t.Fatalf("expected redis disabled by default, got %s", cfg.RedisAddr)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CAL_API_KEY", "cal_test")
	t.Setenv("CAL_EVENT_TYPE_ID", "42")
	t.Setenv("MAX_SLOTS", "15")
	t.Setenv("SLOT_FETCH_TIMEOUT", "3s")
	t.Setenv("SUPABASE_URL", "https://db.example.supabase.co/")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("PATIENT_CACHE_TTL", "90s")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if !cfg.CalendarConfigured() {
		t.Fatalf("expected calendar configured")
	}
	if cfg.MaxSlots != 15 {
		t.Fatalf("expected max slots override, got %d", cfg.MaxSlots)
	}
	if cfg.SlotFetchTimeout != 3*time.Second {
		t.Fatalf("expected fetch timeout override, got %s", cfg.SlotFetchTimeout)
	}
	if cfg.SupabaseURL != "https://db.example.supabase.co" {
		t.Fatalf("expected trailing slash trimmed, got %s", cfg.SupabaseURL)
	}
	if !cfg.RedisTLS {
		t.Fatalf("expected redis tls override")
	}
	if cfg.PatientCacheTTL != 90*time.Second {
		t.Fatalf("expected cache ttl override, got %s", cfg.PatientCacheTTL)
	}
}

func TestLoadInvalidNumbersFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("MAX_SLOTS", "many")
	t.Setenv("BOOKING_TIMEOUT", "soon")
	cfg := Load()
	if cfg.MaxSlots != 12 {
		t.Fatalf("expected default max slots, got %d", cfg.MaxSlots)
	}
	if cfg.BookingTimeout != 8*time.Second {
		t.Fatalf("expected default booking timeout, got %s", cfg.BookingTimeout)
	}
}

func TestClinicLocation(t *testing.T) {
	cfg := &Config{ClinicTimezone: "Europe/Bratislava"}
	if got := cfg.ClinicLocation().String(); got != "Europe/Bratislava" {
		t.Fatalf("location = %s", got)
	}
	cfg.ClinicTimezone = "Not/AZone"
	if cfg.ClinicLocation() != time.UTC {
		t.Fatalf("expected UTC fallback for invalid zone")
	}
}
