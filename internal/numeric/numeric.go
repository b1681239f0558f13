// Package numeric holds the summation and rounding helpers shared by the
// risk calculations.
package numeric

import "math"

// Epsilon is the difference between 1 and the next representable float64.
const Epsilon = 0x1p-52

// Sum adds up all values. An empty slice sums to zero.
func Sum(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum
}

// SumBy adds up pick(item, index) for every item.
func SumBy[T any](items []T, pick func(v T, i int) float64) float64 {
	var sum float64
	for i, v := range items {
		sum += pick(v, i)
	}
	return sum
}

// Field turns a plain accessor into a SumBy picker that ignores the index.
func Field[T any](get func(T) float64) func(T, int) float64 {
	return func(v T, _ int) float64 {
		return get(v)
	}
}

// SigmaSum adds up term(i) for i in [from, to].
func SigmaSum(from, to int, term func(i int) float64) float64 {
	var sum float64
	for i := from; i <= to; i++ {
		sum += term(i)
	}
	return sum
}

// Round rounds value half away from zero to the given number of decimal places.
func Round(value float64, precision int) float64 {
	m := math.Pow(10, float64(precision))
	return math.Round(value*m) / m
}

// Ceil rounds value up to the given number of decimal places.
func Ceil(value float64, precision int) float64 {
	m := math.Pow(10, float64(precision))
	return math.Ceil(value*m) / m
}

// Floor rounds value down to the given number of decimal places.
func Floor(value float64, precision int) float64 {
	m := math.Pow(10, float64(precision))
	return math.Floor(value*m) / m
}

// Eq reports whether a and b differ by less than machine epsilon.
// Compare business amounts with Round first.
func Eq(a, b float64) bool {
	return math.Abs(a-b) < Epsilon
}
