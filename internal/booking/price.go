package booking

import "math"

// MinorUnits converts a currency total to integer minor units with
// round-half-up. All amount comparisons happen on the integer result.
func MinorUnits(total float64) int64 {
	return int64(math.Floor(total*100 + 0.5))
}
