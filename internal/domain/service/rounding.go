package service

import (
	"math"

	"github.com/shopspring/decimal"
)

const (
	predictionPlaces   = 2
	contributionPlaces = 3
)

// RoundPrediction rounds a score to the two decimals shown to callers.
func RoundPrediction(v float64) float64 { return roundPlaces(v, predictionPlaces) }

// RoundContribution rounds an attribution value to three decimals.
func RoundContribution(v float64) float64 { return roundPlaces(v, contributionPlaces) }

// roundPlaces rounds half away from zero on the decimal representation of v,
// so 2.675 becomes 2.68 rather than the 2.67 binary rounding would give.
// Non-finite inputs are returned unchanged.
func roundPlaces(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
