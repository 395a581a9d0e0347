package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/lacite-app/eventfeed/internal/event"
)

const (
	minAttempts = 1
	maxAttempts = 5
)

// Runtime holds everything the feed needs at startup. Values come from the
// environment (EVENTFEED_ prefix) optionally seeded by an env file.
type Runtime struct {
	CalendarID string
	APIKey     string
	ICSFeedURL string

	DefaultLanguage event.Language
	FetchTimeout    time.Duration
	RetryAttempts   int
	LogLevel        string
}

func Load() (Runtime, error) {
	envFile := strings.TrimSpace(os.Getenv("EVENTFEED_CONFIG_FILE"))
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err == nil {
		if loadErr := godotenv.Load(envFile); loadErr != nil {
			return Runtime{}, fmt.Errorf("load env file %s: %w", envFile, loadErr)
		}
	}

	v := viper.New()
	v.SetEnvPrefix("EVENTFEED")
	v.AutomaticEnv()

	_ = v.BindEnv("calendar_id", "EVENTFEED_CALENDAR_ID", "CALENDAR_ID")
	_ = v.BindEnv("api_key", "EVENTFEED_API_KEY", "GOOGLE_API_KEY")
	_ = v.BindEnv("ics_feed_url", "EVENTFEED_ICS_FEED_URL", "ICS_FEED_URL")
	_ = v.BindEnv("language", "EVENTFEED_LANGUAGE", "LANGUAGE")
	_ = v.BindEnv("fetch_timeout_seconds", "EVENTFEED_FETCH_TIMEOUT_SECONDS")
	_ = v.BindEnv("retry_attempts", "EVENTFEED_RETRY_ATTEMPTS")
	_ = v.BindEnv("log_level", "EVENTFEED_LOG_LEVEL", "LOG_LEVEL")

	v.SetDefault("language", string(event.LangEnglish))
	v.SetDefault("fetch_timeout_seconds", 10)
	v.SetDefault("retry_attempts", 3)
	v.SetDefault("log_level", "info")

	calendarID := strings.TrimSpace(v.GetString("calendar_id"))

	icsFeedURL := strings.TrimSpace(v.GetString("ics_feed_url"))
	if icsFeedURL == "" && calendarID != "" {
		icsFeedURL = fmt.Sprintf(
			"https://calendar.google.com/calendar/ical/%s/public/basic.ics", calendarID)
	}

	timeoutSeconds := v.GetInt("fetch_timeout_seconds")
	if timeoutSeconds <= 0 {
		timeoutSeconds = 10
	}

	attempts := v.GetInt("retry_attempts")
	if attempts < minAttempts {
		attempts = minAttempts
	}
	if attempts > maxAttempts {
		attempts = maxAttempts
	}

	return Runtime{
		CalendarID:      calendarID,
		APIKey:          strings.TrimSpace(v.GetString("api_key")),
		ICSFeedURL:      icsFeedURL,
		DefaultLanguage: event.ParseLanguage(v.GetString("language"), event.LangEnglish),
		FetchTimeout:    time.Duration(timeoutSeconds) * time.Second,
		RetryAttempts:   attempts,
		LogLevel:        strings.TrimSpace(v.GetString("log_level")),
	}, nil
}
