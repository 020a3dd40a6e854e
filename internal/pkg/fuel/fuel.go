// internal/pkg/fuel/fuel.go
package fuel

import (
	"errors"
	"math"
	"strconv"
)

var ErrBadDistance = errors.New("distance must be a finite number")

type Type string

const (
	Petrol Type = "petrol"
	Diesel Type = "diesel"
	CNG    Type = "cng"
)

// Rate is the price of one unit of fuel and how far a vehicle goes on it.
type Rate struct {
	PricePerUnit float64 `json:"price_per_unit"`
	KmPerUnit    float64 `json:"km_per_unit"`
}

var rates = map[Type]Rate{
	Petrol: {PricePerUnit: 99.00, KmPerUnit: 16.5},
	Diesel: {PricePerUnit: 90.00, KmPerUnit: 18.0},
	CNG:    {PricePerUnit: 76.00, KmPerUnit: 25.0},
}

// Types lists the supported fuel types in display order.
func Types() []Type {
	return []Type{Petrol, Diesel, CNG}
}

// Valid reports whether t has a rate.
func (t Type) Valid() bool {
	_, ok := rates[t]
	return ok
}

// RateFor returns the table entry for t.
func RateFor(t Type) (Rate, bool) {
	r, ok := rates[t]
	return r, ok
}

// Cost is the estimate for one trip.
type Cost struct {
	CostPerKm float64 `json:"cost_per_km"`
	TotalCost float64 `json:"total_cost"`
}

// Finite reports whether v is neither NaN nor infinite.
func Finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ParseDistance reads a distance in km, rejecting NaN and infinities.
func ParseDistance(s string) (float64, error) {
	d, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrBadDistance
	}
	if !Finite(d) {
		return 0, ErrBadDistance
	}
	return d, nil
}

// Estimate prices a trip of distanceKm on fuel t. Unknown fuel types and
// non-positive or non-finite distances cost nothing.
func Estimate(distanceKm float64, t Type) Cost {
	r, ok := rates[t]
	if !ok || !Finite(distanceKm) || distanceKm <= 0 || r.KmPerUnit <= 0 {
		return Cost{}
	}

	perKm := round2(r.PricePerUnit / r.KmPerUnit)
	return Cost{
		CostPerKm: perKm,
		TotalCost: round2(distanceKm * perKm),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
