package clinic

import "sort"

// noon in minutes since midnight, the AM/PM boundary.
const noonMinutes = 12 * 60

// FreeSlots subtracts the time-of-day projection of booked appointments from
// a doctor's published slot set and returns what is left, sorted ascending.
// It is a pure function: callers supply the day's appointments themselves.
func FreeSlots(published []TimeOfDay, booked []Appointment) []TimeOfDay {
	taken := make(map[TimeOfDay]struct{}, len(booked))
	for _, a := range booked {
		taken[TimeOfDayFrom(a.StartTime)] = struct{}{}
	}

	free := make([]TimeOfDay, 0, len(published))
	for _, s := range published {
		if _, ok := taken[s]; !ok {
			free = append(free, s)
		}
	}
	sort.Slice(free, func(i, j int) bool { return free[i].Before(free[j]) })
	return free
}

// IsMorning reports whether a slot falls strictly before noon.
func IsMorning(t TimeOfDay) bool {
	return t.Minutes() < noonMinutes
}
