package fuel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimate(t *testing.T) {
	tests := []struct {
		name     string
		km       float64
		fuel     Type
		expected Cost
	}{
		{"petrol", 100, Petrol, Cost{CostPerKm: 6, TotalCost: 600}},
		{"diesel", 42, Diesel, Cost{CostPerKm: 5, TotalCost: 210}},
		{"cng rounds to cents", 10.5, CNG, Cost{CostPerKm: 3.04, TotalCost: 31.92}},
		{"zero distance", 0, Petrol, Cost{}},
		{"negative distance", -5, Diesel, Cost{}},
		{"unknown fuel", 100, Type("hydrogen"), Cost{}},
		{"NaN distance", math.NaN(), Diesel, Cost{}},
		{"infinite distance", math.Inf(1), Petrol, Cost{}},
		{"negative infinity", math.Inf(-1), CNG, Cost{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Estimate(tt.km, tt.fuel))
		})
	}
}

func TestParseDistance(t *testing.T) {
	for _, in := range []string{"0", "12.5", "-3", "1e3"} {
		_, err := ParseDistance(in)
		assert.NoError(t, err, in)
	}
	for _, in := range []string{"", "ten", "NaN", "nan", "Inf", "+Inf", "-Inf", "infinity", "1e400"} {
		_, err := ParseDistance(in)
		assert.ErrorIs(t, err, ErrBadDistance, in)
	}
}

func TestTypes(t *testing.T) {
	assert.Equal(t, []Type{Petrol, Diesel, CNG}, Types())
	for _, ft := range Types() {
		assert.True(t, ft.Valid())
		_, ok := RateFor(ft)
		assert.True(t, ok)
	}
	assert.False(t, Type("").Valid())
}
