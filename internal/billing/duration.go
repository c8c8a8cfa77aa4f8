package billing

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Fixed multipliers for the calendar designators. Time-tracking durations are
// spans of elapsed time, so years and months are not calendar-aware.
var durationUnits = []struct {
	group      string
	multiplier time.Duration
}{
	{"years", 365 * 24 * time.Hour},
	{"months", 30 * 24 * time.Hour},
	{"weeks", 7 * 24 * time.Hour},
	{"days", 24 * time.Hour},
	{"hours", time.Hour},
	{"minutes", time.Minute},
	{"seconds", time.Second},
}

const durationNumber = `\d+(?:[.,]\d+)?`

var durationPattern = regexp.MustCompile(`^P` +
	`(?:(?P<years>` + durationNumber + `)Y)?` +
	`(?:(?P<months>` + durationNumber + `)M)?` +
	`(?:(?P<weeks>` + durationNumber + `)W)?` +
	`(?:(?P<days>` + durationNumber + `)D)?` +
	`(?:T` +
	`(?:(?P<hours>` + durationNumber + `)H)?` +
	`(?:(?P<minutes>` + durationNumber + `)M)?` +
	`(?:(?P<seconds>` + durationNumber + `)S)?` +
	`)?$`)

// ParseDuration parses an ISO-8601 duration such as "PT1H30M" or "P1DT2H".
// Components may carry a fraction ("PT0.5H", "PT1,5M"). Negative durations
// and designator-free strings ("P", "PT") are rejected.
func ParseDuration(s string) (time.Duration, error) {
	m := durationPattern.FindStringSubmatch(s)
	if m == nil || s == "P" || strings.HasSuffix(s, "T") {
		return 0, fmt.Errorf("invalid ISO-8601 duration %q", s)
	}

	total := decimal.Zero
	for _, unit := range durationUnits {
		raw := m[durationPattern.SubexpIndex(unit.group)]
		if raw == "" {
			continue
		}
		v, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", "."))
		if err != nil {
			return 0, fmt.Errorf("invalid %s in duration %q: %w", unit.group, s, err)
		}
		total = total.Add(v.Mul(decimal.NewFromInt(int64(unit.multiplier))))
	}
	total = total.Round(0)
	if total.GreaterThan(maxDuration) {
		return 0, fmt.Errorf("duration %q exceeds %s", s, time.Duration(math.MaxInt64))
	}
	return time.Duration(total.IntPart()), nil
}

var maxDuration = decimal.NewFromInt(math.MaxInt64)

// addDuration sums two non-negative durations, reporting false on overflow.
func addDuration(a, b time.Duration) (time.Duration, bool) {
	if b > math.MaxInt64-a {
		return 0, false
	}
	return a + b, true
}

var nanosPerHour = decimal.NewFromInt(int64(time.Hour))

// Hours converts d to fractional hours.
func Hours(d time.Duration) decimal.Decimal {
	return decimal.NewFromInt(int64(d)).Div(nanosPerHour)
}
