package derive

import "strings"

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// SortState is the current table sort. The zero value means unsorted.
type SortState struct {
	Key string    `json:"key,omitempty"`
	Dir Direction `json:"dir,omitempty"`
}

// Toggle flips the direction when key is already the sort key, and otherwise
// switches to key ascending.
func (s SortState) Toggle(key string) SortState {
	if s.Key == key {
		if s.Dir == Desc {
			return SortState{Key: key, Dir: Asc}
		}
		return SortState{Key: key, Dir: Desc}
	}
	return SortState{Key: key, Dir: Asc}
}

// ParseDirection maps user input to a Direction, defaulting to ascending.
func ParseDirection(s string) Direction {
	if strings.EqualFold(s, string(Desc)) {
		return Desc
	}
	return Asc
}

// Query bundles the parameters a table view is derived from.
type Query struct {
	Search  string `form:"search" json:"search,omitempty"`
	Status  string `form:"status" json:"status,omitempty"`
	SortKey string `form:"sort" json:"sort,omitempty"`
	SortDir string `form:"dir" json:"dir,omitempty"`
}

func (q Query) SortState() SortState {
	if q.SortKey == "" {
		return SortState{}
	}
	return SortState{Key: q.SortKey, Dir: ParseDirection(q.SortDir)}
}
