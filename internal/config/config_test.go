package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lacite-app/eventfeed/internal/event"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("EVENTFEED_CONFIG_FILE", "nonexistent.env")
	t.Setenv("EVENTFEED_CALENDAR_ID", "")
	t.Setenv("EVENTFEED_ICS_FEED_URL", "")
	t.Setenv("EVENTFEED_LANGUAGE", "")
	t.Setenv("LANGUAGE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.DefaultLanguage != event.LangEnglish {
		t.Errorf("language = %q", cfg.DefaultLanguage)
	}
	if cfg.FetchTimeout != 10*time.Second {
		t.Errorf("timeout = %v", cfg.FetchTimeout)
	}
	if cfg.RetryAttempts != 3 {
		t.Errorf("attempts = %d", cfg.RetryAttempts)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("log level = %q", cfg.LogLevel)
	}
	if cfg.ICSFeedURL != "" {
		t.Errorf("ics url should stay empty without a calendar id, got %q", cfg.ICSFeedURL)
	}
}

func TestLoad_ExplicitValues(t *testing.T) {
	t.Setenv("EVENTFEED_CONFIG_FILE", "nonexistent.env")
	t.Setenv("EVENTFEED_CALENDAR_ID", "community@group.calendar.google.com")
	t.Setenv("EVENTFEED_API_KEY", "  key-123  ")
	t.Setenv("EVENTFEED_ICS_FEED_URL", "https://example.com/feed.ics")
	t.Setenv("EVENTFEED_LANGUAGE", "fr")
	t.Setenv("EVENTFEED_FETCH_TIMEOUT_SECONDS", "25")
	t.Setenv("EVENTFEED_RETRY_ATTEMPTS", "2")
	t.Setenv("EVENTFEED_LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.CalendarID != "community@group.calendar.google.com" {
		t.Errorf("calendar id = %q", cfg.CalendarID)
	}
	if cfg.APIKey != "key-123" {
		t.Errorf("api key = %q", cfg.APIKey)
	}
	if cfg.ICSFeedURL != "https://example.com/feed.ics" {
		t.Errorf("ics url = %q", cfg.ICSFeedURL)
	}
	if cfg.DefaultLanguage != event.LangFrench {
		t.Errorf("language = %q", cfg.DefaultLanguage)
	}
	if cfg.FetchTimeout != 25*time.Second {
		t.Errorf("timeout = %v", cfg.FetchTimeout)
	}
	if cfg.RetryAttempts != 2 {
		t.Errorf("attempts = %d", cfg.RetryAttempts)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log level = %q", cfg.LogLevel)
	}
}

func TestLoad_EnvFileSeedsEnvironment(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), "feed.env")
	content := "EVENTFEED_CALENDAR_ID=fromfile@example.com\nEVENTFEED_LANGUAGE=fr\n"
	if err := os.WriteFile(envFile, []byte(content), 0o644); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	t.Setenv("EVENTFEED_CONFIG_FILE", envFile)
	// godotenv never overrides variables that are already set, so these must
	// be absent, not merely empty. t.Setenv registers the restore.
	t.Setenv("EVENTFEED_CALENDAR_ID", "")
	t.Setenv("EVENTFEED_LANGUAGE", "")
	_ = os.Unsetenv("EVENTFEED_CALENDAR_ID")
	_ = os.Unsetenv("EVENTFEED_LANGUAGE")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.CalendarID != "fromfile@example.com" {
		t.Errorf("calendar id = %q", cfg.CalendarID)
	}
	if cfg.DefaultLanguage != event.LangFrench {
		t.Errorf("language = %q", cfg.DefaultLanguage)
	}
}

func TestLoad_DerivedICSFeedURL(t *testing.T) {
	t.Setenv("EVENTFEED_CONFIG_FILE", "nonexistent.env")
	t.Setenv("EVENTFEED_CALENDAR_ID", "abc123")
	t.Setenv("EVENTFEED_ICS_FEED_URL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	want := "https://calendar.google.com/calendar/ical/abc123/public/basic.ics"
	if cfg.ICSFeedURL != want {
		t.Errorf("ics url = %q, want %q", cfg.ICSFeedURL, want)
	}
}

func TestLoad_ClampsRetryAttempts(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{name: "too_high", raw: "50", want: 5},
		{name: "zero", raw: "0", want: 1},
		{name: "negative", raw: "-3", want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("EVENTFEED_CONFIG_FILE", "nonexistent.env")
			t.Setenv("EVENTFEED_RETRY_ATTEMPTS", tt.raw)

			cfg, err := Load()
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if cfg.RetryAttempts != tt.want {
				t.Errorf("attempts = %d, want %d", cfg.RetryAttempts, tt.want)
			}
		})
	}
}

func TestLoad_UnknownLanguageFallsBack(t *testing.T) {
	t.Setenv("EVENTFEED_CONFIG_FILE", "nonexistent.env")
	t.Setenv("EVENTFEED_LANGUAGE", "de")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DefaultLanguage != event.LangEnglish {
		t.Errorf("language = %q, want fallback to english", cfg.DefaultLanguage)
	}
}
