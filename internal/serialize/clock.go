package serialize

import (
	"os"
	"strconv"
	"time"
)

// Now returns the current time, or the instant named by SOURCE_DATE_EPOCH
// when set, so that relative-time fields in statuslines and JSON output
// are reproducible across invocations (spec.md §6 environment table).
func Now() time.Time {
	v := os.Getenv("SOURCE_DATE_EPOCH")
	if v == "" {
		return time.Now()
	}
	sec, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Now()
	}
	return time.Unix(sec, 0).UTC()
}
