// internal/pkg/isotime/isotime.go
package isotime

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Layout is the zone-less ISO 8601 form the fleet API writes. Parsing also
// accepts a fractional second after the seconds field.
const Layout = "2006-01-02T15:04:05"

const microLayout = "2006-01-02T15:04:05.000000"

// Time is a timestamp as exchanged with the fleet API. Zone-less values are
// read as UTC; RFC 3339 values keep their offset.
type Time struct {
	time.Time
}

func Now() Time {
	return Time{Time: time.Now().UTC()}
}

func Parse(s string) (Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return Time{Time: t}, nil
	}
	t, err := time.ParseInLocation(Layout, s, time.UTC)
	if err != nil {
		return Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return Time{Time: t}, nil
}

// String renders t the way the fleet API does: whole seconds drop the
// fraction, anything else carries six digits.
func (t Time) String() string {
	u := t.UTC()
	if u.Nanosecond()/int(time.Microsecond) == 0 {
		return u.Format(Layout)
	}
	return u.Format(microLayout)
}

func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.String())
}

func (t *Time) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*t = Time{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	if s == "" {
		*t = Time{}
		return nil
	}

	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
