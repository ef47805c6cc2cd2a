// Package bytesize formats byte counts for display to people.
package bytesize

import (
	"math"
	"strconv"
)

const base = 1024

var units = []string{"Bytes", "KB", "MB", "GB", "TB"}

// Format renders bytes using 1024-based units, rounded to at most two
// decimal places with trailing zeros dropped. 20*1024*1024 formats as
// "20 MB". Zero and negative counts format as "0 Bytes".
func Format(bytes int64) string {
	if bytes <= 0 {
		return "0 " + units[0]
	}
	v := float64(bytes)
	i := 0
	for v >= base && i < len(units)-1 {
		v /= base
		i++
	}
	v = math.Round(v*100) / 100
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + units[i]
}
