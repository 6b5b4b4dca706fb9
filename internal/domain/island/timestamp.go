package island

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"time"
)

// TimestampLayout is the persisted date form, always UTC with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

var timestampPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3}Z$`)

// Timestamp round-trips through the stored ISO-8601 string form. Only strings that
// match the layout exactly are revived into a time value.
type Timestamp struct {
	time.Time
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC().Truncate(time.Millisecond)}
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(TimestampLayout))
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*t = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	if !timestampPattern.MatchString(s) {
		return fmt.Errorf("timestamp %q does not match %s", s, TimestampLayout)
	}
	parsed, err := time.Parse(TimestampLayout, s)
	if err != nil {
		return fmt.Errorf("parse timestamp: %w", err)
	}
	t.Time = parsed
	return nil
}

// IsRevivable reports whether s would be revived into a date on read.
func IsRevivable(s string) bool {
	return timestampPattern.MatchString(s)
}
