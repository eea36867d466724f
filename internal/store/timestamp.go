package store

import "time"

// Timestamp is the stored representation of a point in time. Documents carry
// timestamps in this form; callers convert to time.Time at the edge.
type Timestamp struct {
	Seconds int64
	Nanos   int32
}

// TimestampOf converts a native time to its stored representation.
func TimestampOf(t time.Time) Timestamp {
	return Timestamp{Seconds: t.Unix(), Nanos: int32(t.Nanosecond())}
}

// Time converts back to a native time in UTC.
func (ts Timestamp) Time() time.Time {
	return time.Unix(ts.Seconds, int64(ts.Nanos)).UTC()
}

func (ts Timestamp) before(other Timestamp) bool {
	if ts.Seconds != other.Seconds {
		return ts.Seconds < other.Seconds
	}
	return ts.Nanos < other.Nanos
}

// serverTimestamp marks a field to be filled with the store's own clock at
// write time. Keeps client clock skew out of stored ordering.
type serverTimestamp struct{}

// ServerTimestamp is the sentinel value for server-assigned timestamp fields.
var ServerTimestamp serverTimestamp
