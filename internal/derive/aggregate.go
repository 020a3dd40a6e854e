package derive

import "math"

// Bucket describes one stat segment. A bucket with an empty Match collects every
// item that no other bucket matched.
type Bucket struct {
	Label string
	Match string
	Color string
}

// Segment is one coloured portion of a proportional stat bar.
type Segment struct {
	Label   string `json:"label"`
	Value   int    `json:"value"`
	Percent int    `json:"pct"`
	Color   string `json:"color"`
}

// Aggregate counts items per bucket by StatusValue and converts the counts into
// rounded percentages of the collection size. Rounding drift is not corrected.
func Aggregate[T Row](items []T, buckets []Bucket) []Segment {
	counts := make([]int, len(buckets))
	remainder := -1
	for i, b := range buckets {
		if b.Match == "" && remainder < 0 {
			remainder = i
		}
	}

	for _, item := range items {
		matched := false
		for i, b := range buckets {
			if b.Match != "" && item.StatusValue() == b.Match {
				counts[i]++
				matched = true
				break
			}
		}
		if !matched && remainder >= 0 {
			counts[remainder]++
		}
	}

	segments := make([]Segment, len(buckets))
	for i, b := range buckets {
		segments[i] = Segment{
			Label:   b.Label,
			Value:   counts[i],
			Percent: Percent(counts[i], len(items)),
			Color:   b.Color,
		}
	}
	return segments
}

// Percent returns part/total as an integer percentage, 0 when total is 0.
func Percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) * 100 / float64(total)))
}

// Count returns how many items have the given status.
func Count[T Row](items []T, status string) int {
	n := 0
	for _, item := range items {
		if item.StatusValue() == status {
			n++
		}
	}
	return n
}
