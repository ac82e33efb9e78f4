package verify

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateType selects how much of a date a field asks for.
type DateType int

const (
	DateExact   DateType = iota // yyyy-mm-dd
	DateMonthly                 // yyyy-mm
	DateYearly                  // yyyy
)

const (
	minYear = 2022
	maxYear = 2037
)

// Date normalizes a free-text date for the requested granularity. The
// returned string is always the best correction so far; calling Date again
// on an accepted output returns it unchanged.
func Date(input string, dt DateType) (string, error) {
	cleaned := stripExcept(input, "0123456789-")

	wantParts := 3
	switch dt {
	case DateMonthly:
		wantParts = 2
	case DateYearly:
		wantParts = 1
	}

	parts := strings.Split(cleaned, "-")
	if len(parts) != wantParts || hasEmpty(parts) {
		return floorDate(dt), errf(CodeInvalidDate, "date %q is not a valid %s", input, dateShape(dt))
	}

	year := padYear(parts[0])
	yearN, _ := strconv.Atoi(year)
	if yearN < minYear || yearN > maxYear {
		clamped := clampInt(yearN, minYear, maxYear)
		parts[0] = fmt.Sprintf("%04d", clamped)
		return joinDate(parts), errf(CodeYearOutOfRange, "year must be between %d and %d", minYear, maxYear)
	}
	parts[0] = year

	if wantParts >= 2 {
		monthN, _ := strconv.Atoi(parts[1])
		if monthN < 1 || monthN > 12 {
			parts[1] = fmt.Sprintf("%02d", clampInt(monthN, 1, 12))
			return joinDate(parts), errf(CodeMonthOutOfRange, "month must be between 01 and 12")
		}
		parts[1] = fmt.Sprintf("%02d", monthN)
	}

	if wantParts == 3 {
		dayN, _ := strconv.Atoi(parts[2])
		if dayN < 1 || dayN > 31 {
			parts[2] = fmt.Sprintf("%02d", clampInt(dayN, 1, 31))
			return joinDate(parts), errf(CodeDayOutOfRange, "day must be between 01 and 31")
		}
		parts[2] = fmt.Sprintf("%02d", dayN)

		// Calendar existence check catches Feb 30 and friends.
		joined := joinDate(parts)
		if _, err := time.Parse("2006-01-02", joined); err != nil {
			monthN, _ := strconv.Atoi(parts[1])
			last := lastDayOfMonth(yearN, time.Month(monthN))
			parts[2] = fmt.Sprintf("%02d", last)
			return joinDate(parts), errf(CodeNonExistingDate, "day %02d does not exist in %s-%s", dayN, parts[0], parts[1])
		}
	}

	return joinDate(parts), nil
}

// padYear brings a year fragment to exactly four digits: short fragments
// get the missing leading digits from "2022", long ones keep their last
// four digits.
func padYear(y string) string {
	const anchor = "2022"
	if len(y) < 4 {
		return anchor[:4-len(y)] + y
	}
	if len(y) > 4 {
		return y[len(y)-4:]
	}
	return y
}

func floorDate(dt DateType) string {
	switch dt {
	case DateMonthly:
		return fmt.Sprintf("%d-01", minYear)
	case DateYearly:
		return fmt.Sprintf("%d", minYear)
	default:
		return fmt.Sprintf("%d-01-01", minYear)
	}
}

func dateShape(dt DateType) string {
	switch dt {
	case DateMonthly:
		return "yyyy-mm date"
	case DateYearly:
		return "yyyy date"
	default:
		return "yyyy-mm-dd date"
	}
}

func joinDate(parts []string) string {
	return strings.Join(parts, "-")
}

func hasEmpty(parts []string) bool {
	for _, p := range parts {
		if p == "" {
			return true
		}
	}
	return false
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func lastDayOfMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func stripExcept(s, allowed string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(allowed, r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
