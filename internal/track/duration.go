package track

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// maxSeconds bounds accepted durations so conversions never overflow int.
const maxSeconds = math.MaxInt32

// ParseDuration converts a duration string to whole seconds. It accepts plain
// seconds ("245", "245.6") and clock forms ("4:05", "1:02:03"). Anything else,
// including values above math.MaxInt32 seconds, yields 0, false.
func ParseDuration(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	if !strings.Contains(s, ":") {
		f, err := strconv.ParseFloat(s, 64)
		secs, ok := floatSeconds(f)
		if err != nil || !ok {
			return 0, false
		}
		return secs, true
	}

	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, false
	}
	total := 0
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return 0, false
		}
		// minutes and seconds fields after the leading one are base 60
		if i > 0 && n >= 60 {
			return 0, false
		}
		if n > maxSeconds || total > (maxSeconds-n)/60 {
			return 0, false
		}
		total = total*60 + n
	}
	return total, true
}

// Duration is a JSON duration in whole seconds. It decodes numbers, numeric
// strings and clock strings, so the conversion happens once while the
// response is decoded. Unparseable values decode to 0.
type Duration int

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*d = 0
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		secs, _ := ParseDuration(s)
		*d = Duration(secs)
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		*d = 0
		return nil //nolint:nilerr // odd shapes degrade to zero duration
	}
	secs, _ := floatSeconds(f)
	*d = Duration(secs)
	return nil
}

// floatSeconds truncates f to whole seconds, rejecting negative, non-finite
// and out-of-range values.
func floatSeconds(f float64) (int, bool) {
	if math.IsNaN(f) || f < 0 || f > maxSeconds {
		return 0, false
	}
	return int(f), true
}

// Seconds returns the duration as an int.
func (d Duration) Seconds() int {
	return int(d)
}
