package table

import (
	"math"
	"strconv"
	"strings"
)

// ParseNumber reads numbers that may carry thousands separators, e.g.
// "1,253,689" or "1,253.689". Empty or unparseable input reports false.
func ParseNumber(value string) (float64, bool) {

	s := strings.TrimSpace(value)
	if s == "" {
		return 0, false
	}

	s = strings.ReplaceAll(s, ",", "")

	if !strings.Contains(s, ".") {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, false
		}
		return float64(n), true
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
