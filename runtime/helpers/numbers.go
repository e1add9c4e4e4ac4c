package helpers

import "strconv"

// Numbers is the #numbers helper object: utilities for formatting
// numeric values inside template expressions.
type Numbers struct{}

// FormatDecimal renders the value with a fixed number of decimals.
func (Numbers) FormatDecimal(v float64, decimals int) string {
	if decimals < 0 {
		decimals = 0
	}
	return strconv.FormatFloat(v, 'f', decimals, 64)
}

// FormatPercent renders the fraction as a percentage with a fixed
// number of decimals, e.g. 0.125 with 1 decimal becomes "12.5%".
func (n Numbers) FormatPercent(v float64, decimals int) string {
	return n.FormatDecimal(v*100, decimals) + "%"
}

// Sequence returns the integers from from to to inclusive. An empty
// slice when from is greater than to.
func (Numbers) Sequence(from, to int) []int {
	if from > to {
		return nil
	}
	seq := make([]int, 0, to-from+1)
	for i := from; i <= to; i++ {
		seq = append(seq, i)
	}
	return seq
}
