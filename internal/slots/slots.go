// Package slots computes bookable start times on a fixed grid.
package slots

import "fmt"

// Available slices the [openTime, closeTime) window into consecutive
// slots of durationMinutes, starting at openTime, and drops every slot
// whose "HH:MM" start appears in bookedStarts. A slot is kept only if it
// ends at or before closeTime.
//
// Times are "HH:MM" (a trailing ":SS" is ignored). Booked starts are
// matched by string equality, so a booking made on a different grid never
// removes a slot. Malformed times or a non-positive duration yield no slots.
func Available(openTime, closeTime string, durationMinutes int, bookedStarts []string) []string {
	if durationMinutes <= 0 {
		return []string{}
	}
	open, ok := parseClock(openTime)
	if !ok {
		return []string{}
	}
	end, ok := parseClock(closeTime)
	if !ok {
		return []string{}
	}

	booked := make(map[string]struct{}, len(bookedStarts))
	for _, b := range bookedStarts {
		booked[b] = struct{}{}
	}

	out := []string{}
	for m := open; m+durationMinutes <= end; m += durationMinutes {
		s := FormatClock(m)
		if _, taken := booked[s]; taken {
			continue
		}
		out = append(out, s)
	}
	return out
}

// FormatClock renders minutes since midnight as "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ParseClock returns minutes since midnight for "HH:MM" or "HH:MM:SS".
func ParseClock(s string) (int, error) {
	m, ok := parseClock(s)
	if !ok {
		return 0, fmt.Errorf("invalid time string: %q", s)
	}
	return m, nil
}

func parseClock(s string) (int, bool) {
	if (len(s) != 5 && len(s) != 8) || s[2] != ':' {
		return 0, false
	}
	if len(s) == 8 {
		if sec, ok := twoDigits(s[6:]); s[5] != ':' || !ok || sec > 59 {
			return 0, false
		}
	}
	h, ok := twoDigits(s[:2])
	if !ok || h > 24 {
		return 0, false
	}
	m, ok := twoDigits(s[3:5])
	if !ok || m > 59 {
		return 0, false
	}
	if h == 24 && m != 0 {
		return 0, false
	}
	return h*60 + m, true
}

// twoDigits parses exactly two ASCII digits; signs and spaces are rejected.
func twoDigits(s string) (int, bool) {
	if len(s) != 2 || s[0] < '0' || s[0] > '9' || s[1] < '0' || s[1] > '9' {
		return 0, false
	}
	return int(s[0]-'0')*10 + int(s[1]-'0'), true
}
