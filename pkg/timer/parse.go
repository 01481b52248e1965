package timer

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// zoneSuffix matches a trailing numeric offset: +05, -0330, +05:30.
var zoneSuffix = regexp.MustCompile(`([+-])(\d{2}):?(\d{2})?$`)

const (
	layoutZoned = "2006-01-02T15:04:05.999999999Z07:00"
	layoutLocal = "2006-01-02T15:04:05.999999999"
)

// ParseStartTime reads a stored start timestamp. It accepts a "T" or space
// between date and time, any number of fractional digits, and a zone of "Z",
// ±hh, ±hhmm or ±hh:mm. A timestamp without a zone is taken as UTC. The
// result is in UTC.
func ParseStartTime(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if len(s) > 10 && s[10] == ' ' {
		s = s[:10] + "T" + s[11:]
	}

	datePart, clock, ok := strings.Cut(s, "T")
	if !ok || datePart == "" {
		return time.Time{}, fmt.Errorf("invalid start time %q: missing time of day", raw)
	}

	switch {
	case strings.HasSuffix(clock, "Z") || strings.HasSuffix(clock, "z"):
		clock = clock[:len(clock)-1] + "Z"
	case zoneSuffix.MatchString(clock):
		clock = zoneSuffix.ReplaceAllStringFunc(clock, normalizeZone)
	default:
		t, err := time.ParseInLocation(layoutLocal, datePart+"T"+clock, time.UTC)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid start time %q: %w", raw, err)
		}
		return t, nil
	}

	t, err := time.Parse(layoutZoned, datePart+"T"+clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid start time %q: %w", raw, err)
	}
	return t.UTC(), nil
}

func normalizeZone(zone string) string {
	m := zoneSuffix.FindStringSubmatch(zone)
	minutes := m[3]
	if minutes == "" {
		minutes = "00"
	}
	return m[1] + m[2] + ":" + minutes
}
