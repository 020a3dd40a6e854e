// internal/derive/derive.go
package derive

import (
	"slices"
	"strings"
)

// Row is anything the dashboard can list in a table.
type Row interface {
	// SearchFields returns the fields matched against a free-text search term.
	SearchFields() []string
	// StatusValue returns the field compared by the status filter.
	StatusValue() string
	// SortField returns the string form of a sortable field, "" when absent.
	SortField(key string) string
}

const StatusAll = "all"

// Filter keeps the items whose joined searchable fields contain term, case-insensitively.
func Filter[T Row](items []T, term string) []T {
	needle := strings.ToLower(term)
	out := make([]T, 0, len(items))
	for _, item := range items {
		if needle == "" || strings.Contains(searchText(item), needle) {
			out = append(out, item)
		}
	}
	return out
}

// FilterStatus keeps the items whose status equals status exactly.
// An empty status or "all" keeps everything.
func FilterStatus[T Row](items []T, status string) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if status == "" || status == StatusAll || item.StatusValue() == status {
			out = append(out, item)
		}
	}
	return out
}

// Sort returns a stably sorted copy of items ordered by the lower-cased string form
// of the state's key. A zero state keeps the original order.
func Sort[T Row](items []T, state SortState) []T {
	out := slices.Clone(items)
	if out == nil {
		out = []T{}
	}
	if state.Key == "" {
		return out
	}

	slices.SortStableFunc(out, func(a, b T) int {
		c := strings.Compare(
			strings.ToLower(a.SortField(state.Key)),
			strings.ToLower(b.SortField(state.Key)),
		)
		if state.Dir == Desc {
			return -c
		}
		return c
	})
	return out
}

// Apply runs search, status filter and sort in that order.
func Apply[T Row](items []T, q Query) []T {
	view := Filter(items, q.Search)
	view = FilterStatus(view, q.Status)
	return Sort(view, q.SortState())
}

// ToggleSelection adds key to selected, or removes it when already present.
func ToggleSelection(selected []string, key string) []string {
	if i := slices.Index(selected, key); i >= 0 {
		return slices.Delete(slices.Clone(selected), i, i+1)
	}
	return append(slices.Clone(selected), key)
}

// Pick returns the items whose key is in selected, preserving item order.
// An empty selection returns items unchanged.
func Pick[T any](items []T, selected []string, key func(T) string) []T {
	if len(selected) == 0 {
		return items
	}
	out := make([]T, 0, len(selected))
	for _, item := range items {
		if slices.Contains(selected, key(item)) {
			out = append(out, item)
		}
	}
	return out
}

func searchText(r Row) string {
	return strings.ToLower(strings.Join(r.SearchFields(), " "))
}
