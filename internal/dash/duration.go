package dash

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	secondsPerMinute = 60
	secondsPerHour   = 60 * secondsPerMinute
	secondsPerDay    = 24 * secondsPerHour
	secondsPerWeek   = 7 * secondsPerDay
	secondsPerMonth  = 30 * secondsPerDay
	secondsPerYear   = 365 * secondsPerDay
)

var (
	rNum     = `(\d+(?:[.,]\d+)?)`
	rDateAll = "^P(?:" + rNum + "Y)?(?:" + rNum + "M)?(?:" + rNum + "W)?(?:" + rNum + "D)?"
	rTimeAll = "(?:T(?:" + rNum + "H)?(?:" + rNum + "M)?(?:" + rNum + "S)?)?$"

	isoDurationRegex = regexp.MustCompile(rDateAll + rTimeAll)

	// multipliers for the capture groups of isoDurationRegex, in order.
	durationUnits = [...]float64{
		secondsPerYear,
		secondsPerMonth,
		secondsPerWeek,
		secondsPerDay,
		secondsPerHour,
		secondsPerMinute,
		1,
	}
)

// ErrInvalidDuration is returned for strings that are not ISO 8601 durations.
var ErrInvalidDuration = errors.New("invalid ISO 8601 duration")

// ParseDuration parses an ISO 8601 duration such as "PT0H0M60.000S" or
// "P1DT2H" and returns the length in seconds.
// Months count as 30 days and years as 365 days.
func ParseDuration(s string) (float64, error) {
	parts := isoDurationRegex.FindStringSubmatch(s)
	if parts == nil || s == "P" || s == "PT" || s[len(s)-1] == 'T' {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}

	var total float64
	for i, unit := range durationUnits {
		raw := parts[i+1]
		if raw == "" {
			continue
		}
		// ISO 8601 allows a comma as the decimal sign.
		value, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q: %v", ErrInvalidDuration, s, err)
		}
		total += value * unit
	}
	return total, nil
}
