package event

import (
	"sort"
	"strings"
)

// SortByStart orders events ascending by effective start instant, breaking
// ties on summary then ID so the order is stable across fetches.
func SortByStart(items []CalendarEvent) {
	sort.SliceStable(items, func(i, j int) bool {
		left, right := items[i].StartInstant(), items[j].StartInstant()
		if !left.Equal(right) {
			return left.Before(right)
		}
		if !strings.EqualFold(items[i].Summary, items[j].Summary) {
			return strings.ToLower(items[i].Summary) < strings.ToLower(items[j].Summary)
		}
		return items[i].ID < items[j].ID
	})
}

// DedupeByID drops later records sharing an ID with an earlier one,
// preserving order.
func DedupeByID(items []CalendarEvent) []CalendarEvent {
	if len(items) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(items))
	results := make([]CalendarEvent, 0, len(items))
	for _, item := range items {
		if _, exists := seen[item.ID]; exists {
			continue
		}
		seen[item.ID] = struct{}{}
		results = append(results, item)
	}
	return results
}

// Filter applies a caller-supplied query to an already-fetched result set.
// Category and search matching are case-insensitive substring checks over
// the displayed fields.
func Filter(items []CalendarEvent, opts FilterOptions) []CalendarEvent {
	filtered := make([]CalendarEvent, 0, len(items))
	for _, item := range items {
		if !matchesCategory(item, opts.Category) {
			continue
		}
		if !matchesQuery(item, opts.SearchQuery) {
			continue
		}
		filtered = append(filtered, item)
	}

	switch strings.ToLower(strings.TrimSpace(opts.SortBy)) {
	case "title":
		sort.SliceStable(filtered, func(i, j int) bool {
			return strings.ToLower(filtered[i].Summary) < strings.ToLower(filtered[j].Summary)
		})
	default:
		SortByStart(filtered)
	}

	if strings.EqualFold(strings.TrimSpace(opts.SortOrder), "desc") {
		for i, j := 0, len(filtered)-1; i < j; i, j = i+1, j-1 {
			filtered[i], filtered[j] = filtered[j], filtered[i]
		}
	}
	return filtered
}

func matchesCategory(item CalendarEvent, category string) bool {
	trimmed := strings.TrimSpace(category)
	if trimmed == "" {
		return true
	}
	return containsFold(item.Summary, trimmed) || containsFold(item.Description, trimmed)
}

func matchesQuery(item CalendarEvent, query string) bool {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return true
	}
	if containsFold(item.Summary, trimmed) || containsFold(item.Description, trimmed) {
		return true
	}
	return containsFold(item.Location, trimmed)
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
