package player

import (
	"fmt"
	"math"
)

// FormatTime renders a position in seconds as "m:ss". Anything that
// is not a finite non-negative number renders as "0:00".
func FormatTime(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return "0:00"
	}
	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
