package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lacite-app/eventfeed/internal/config"
	"github.com/lacite-app/eventfeed/internal/feed"
	"github.com/lacite-app/eventfeed/internal/gcal"
	"github.com/lacite-app/eventfeed/internal/ics"
	"github.com/lacite-app/eventfeed/internal/logging"
)

func main() {
	args := os.Args[1:]
	if len(args) > 0 {
		switch args[0] {
		case "-h", "--help", "help":
			printUsage()
			return
		}
	}

	year, month, err := parseMonthArg(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger := logging.Setup(cfg.LogLevel)

	timeout := cfg.FetchTimeout * time.Duration(cfg.RetryAttempts+1)
	if timeout < 15*time.Second {
		timeout = 15 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var api feed.APIClient
	if cfg.APIKey != "" && cfg.CalendarID != "" {
		client, clientErr := gcal.New(ctx, cfg.CalendarID, cfg.APIKey)
		if clientErr != nil {
			logger.Warn("calendar api client unavailable, ical feed only", "err", clientErr)
		} else {
			api = client
		}
	}

	fetcher := ics.NewFetcher(cfg.ICSFeedURL, cfg.FetchTimeout, cfg.RetryAttempts)
	service := feed.New(api, fetcher, cfg.CalendarID, cfg.DefaultLanguage)

	events := service.Events(ctx, year, month)

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(events); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

// parseMonthArg accepts an optional "YYYY-MM" argument bounding the fetch.
func parseMonthArg(args []string) (year, month int, err error) {
	if len(args) == 0 {
		return 0, 0, nil
	}
	if len(args) > 1 {
		return 0, 0, fmt.Errorf("unexpected argument %q", args[1])
	}

	parts := strings.SplitN(strings.TrimSpace(args[0]), "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid month %q, expected YYYY-MM", args[0])
	}

	year, yearErr := strconv.Atoi(parts[0])
	month, monthErr := strconv.Atoi(parts[1])
	if yearErr != nil || monthErr != nil || year < 1 || month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("invalid month %q, expected YYYY-MM", args[0])
	}
	return year, month, nil
}

func printUsage() {
	fmt.Println("eventfeed [YYYY-MM]")
	fmt.Println("Fetches community calendar events (optionally for one month) and prints them as JSON.")
}
