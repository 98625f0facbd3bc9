package timex

import "time"

// ToMillis converts t to Unix milliseconds. The zero time maps to 0.
func ToMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

// FromMillis converts Unix milliseconds to UTC time. 0 maps to the zero time.
func FromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

// Now returns the current UTC time truncated to milliseconds, the precision
// timestamps survive a backup round trip with.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
