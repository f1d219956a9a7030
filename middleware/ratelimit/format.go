package ratelimit

import "strconv"

// Header values are formatted with strconv to avoid scientific notation.

func formatInt(v int) string { return strconv.Itoa(v) }

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
