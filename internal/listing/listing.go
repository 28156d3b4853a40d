// Package listing holds the in-memory filter and sort contract shared by the
// CSV exporter and dashboard views: free-text search across a few fields,
// equality match on status-like fields, and fixed sort directions (date and
// amount newest/largest first, status ascending).
package listing

import (
	"sort"
	"strings"
)

// Matches reports whether term is a case-insensitive substring of any field.
// An empty term matches everything.
func Matches(term string, fields ...string) bool {
	term = strings.TrimSpace(strings.ToLower(term))
	if term == "" {
		return true
	}
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// EqualsFold is the equality predicate for status/method/type filters.
// An empty or "all" wanted value matches everything.
func EqualsFold(wanted, actual string) bool {
	wanted = strings.TrimSpace(wanted)
	if wanted == "" || strings.EqualFold(wanted, "all") {
		return true
	}
	return strings.EqualFold(wanted, actual)
}

// Filter returns the elements of items satisfying keep, preserving order.
func Filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

// SortBy returns a stably sorted copy of items; the input is not mutated.
func SortBy[T any](items []T, less func(a, b T) bool) []T {
	out := make([]T, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		return less(out[i], out[j])
	})
	return out
}

// DateDesc orders newest first; ties keep input order under SortBy.
func DateDesc[T any](dateOf func(T) int64) func(a, b T) bool {
	return func(a, b T) bool {
		return dateOf(a) > dateOf(b)
	}
}

// AmountDesc orders largest first.
func AmountDesc[T any](amountOf func(T) int64) func(a, b T) bool {
	return func(a, b T) bool {
		return amountOf(a) > amountOf(b)
	}
}

// StatusAsc orders lexicographically ascending.
func StatusAsc[T any](statusOf func(T) string) func(a, b T) bool {
	return func(a, b T) bool {
		return statusOf(a) < statusOf(b)
	}
}
