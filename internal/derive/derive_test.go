package derive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	name   string
	city   string
	status string
}

func (i item) SearchFields() []string { return []string{i.name, i.city} }
func (i item) StatusValue() string    { return i.status }
func (i item) SortField(key string) string {
	switch key {
	case "name":
		return i.name
	case "city":
		return i.city
	}
	return ""
}

var fleet = []item{
	{name: "Truck 7", city: "Nairobi", status: "active"},
	{name: "bus 2", city: "Mombasa", status: "maintenance"},
	{name: "Van 3", city: "Kisumu", status: "active"},
	{name: "Car 1", city: "nairobi", status: "inactive"},
}

func names(items []item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.name
	}
	return out
}

func TestFilter(t *testing.T) {
	t.Run("empty term keeps everything", func(t *testing.T) {
		assert.Len(t, Filter(fleet, ""), len(fleet))
	})

	t.Run("matches case-insensitively across fields", func(t *testing.T) {
		assert.Equal(t, []string{"Truck 7", "Car 1"}, names(Filter(fleet, "NAIROBI")))
	})

	t.Run("no match returns an empty slice", func(t *testing.T) {
		got := Filter(fleet, "zzz")
		require.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func TestFilterStatus(t *testing.T) {
	assert.Len(t, FilterStatus(fleet, ""), 4)
	assert.Len(t, FilterStatus(fleet, StatusAll), 4)
	assert.Equal(t, []string{"Truck 7", "Van 3"}, names(FilterStatus(fleet, "active")))
	assert.Empty(t, FilterStatus(fleet, "Active"))
}

func TestSort(t *testing.T) {
	t.Run("ascending ignores case", func(t *testing.T) {
		got := Sort(fleet, SortState{Key: "name", Dir: Asc})
		assert.Equal(t, []string{"bus 2", "Car 1", "Truck 7", "Van 3"}, names(got))
	})

	t.Run("descending", func(t *testing.T) {
		got := Sort(fleet, SortState{Key: "name", Dir: Desc})
		assert.Equal(t, []string{"Van 3", "Truck 7", "Car 1", "bus 2"}, names(got))
	})

	t.Run("stable for equal keys", func(t *testing.T) {
		got := Sort(fleet, SortState{Key: "city", Dir: Asc})
		assert.Equal(t, []string{"Van 3", "bus 2", "Truck 7", "Car 1"}, names(got))
	})

	t.Run("zero state keeps order and copies", func(t *testing.T) {
		got := Sort(fleet, SortState{})
		assert.Equal(t, names(fleet), names(got))
		got[0].name = "changed"
		assert.Equal(t, "Truck 7", fleet[0].name)
	})

	t.Run("nil input gives empty slice", func(t *testing.T) {
		got := Sort[item](nil, SortState{Key: "name"})
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func TestSortStateToggle(t *testing.T) {
	s := SortState{}.Toggle("name")
	assert.Equal(t, SortState{Key: "name", Dir: Asc}, s)

	s = s.Toggle("name")
	assert.Equal(t, SortState{Key: "name", Dir: Desc}, s)

	s = s.Toggle("name")
	assert.Equal(t, Asc, s.Dir)

	s = s.Toggle("city")
	assert.Equal(t, SortState{Key: "city", Dir: Asc}, s)
}

func TestApply(t *testing.T) {
	q := Query{Search: "a", Status: "active", SortKey: "name", SortDir: "desc"}
	assert.Equal(t, []string{"Van 3", "Truck 7"}, names(Apply(fleet, q)))

	assert.Equal(t, Asc, Query{SortKey: "name", SortDir: "sideways"}.SortState().Dir)
	assert.Equal(t, SortState{}, Query{SortDir: "desc"}.SortState())
}

func TestToggleSelection(t *testing.T) {
	t.Run("adds then removes", func(t *testing.T) {
		sel := ToggleSelection(nil, "a")
		assert.Equal(t, []string{"a"}, sel)

		sel = ToggleSelection(sel, "b")
		assert.Equal(t, []string{"a", "b"}, sel)

		sel = ToggleSelection(sel, "a")
		assert.Equal(t, []string{"b"}, sel)
	})

	t.Run("double toggle restores the selection", func(t *testing.T) {
		start := []string{"x", "y"}
		got := ToggleSelection(ToggleSelection(start, "z"), "z")
		assert.Equal(t, start, got)
	})

	t.Run("does not mutate the input", func(t *testing.T) {
		start := []string{"x", "y"}
		ToggleSelection(start, "x")
		assert.Equal(t, []string{"x", "y"}, start)
	})
}

func TestPick(t *testing.T) {
	key := func(i item) string { return i.name }

	assert.Equal(t, fleet, Pick(fleet, nil, key))
	assert.Equal(t, []string{"Truck 7", "Car 1"}, names(Pick(fleet, []string{"Car 1", "Truck 7"}, key)))
	assert.Empty(t, Pick(fleet, []string{"missing"}, key))
}

func TestAggregate(t *testing.T) {
	buckets := []Bucket{
		{Label: "Active", Match: "active", Color: "#0f0"},
		{Label: "Maintenance", Match: "maintenance", Color: "#fa0"},
		{Label: "Other", Color: "#999"},
	}

	got := Aggregate(fleet, buckets)
	require.Len(t, got, 3)
	assert.Equal(t, Segment{Label: "Active", Value: 2, Percent: 50, Color: "#0f0"}, got[0])
	assert.Equal(t, Segment{Label: "Maintenance", Value: 1, Percent: 25, Color: "#fa0"}, got[1])
	assert.Equal(t, Segment{Label: "Other", Value: 1, Percent: 25, Color: "#999"}, got[2])

	t.Run("empty collection has zero percents", func(t *testing.T) {
		for _, s := range Aggregate[item](nil, buckets) {
			assert.Zero(t, s.Value)
			assert.Zero(t, s.Percent)
		}
	})

	t.Run("rounding drift is kept", func(t *testing.T) {
		three := []item{{status: "a"}, {status: "b"}, {status: "c"}}
		segs := Aggregate(three, []Bucket{{Match: "a"}, {Match: "b"}, {Match: "c"}})
		sum := 0
		for _, s := range segs {
			assert.Equal(t, 33, s.Percent)
			sum += s.Percent
		}
		assert.Equal(t, 99, sum)
	})
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0, Percent(3, 0))
	assert.Equal(t, 67, Percent(2, 3))
	assert.Equal(t, 100, Percent(5, 5))
	assert.Equal(t, 3, Count(fleet, "active")+Count(fleet, "inactive"))
}
