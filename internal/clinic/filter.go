package clinic

import "strings"

// Periods accepted by the time-of-day filter.
const (
	PeriodAM = "AM"
	PeriodPM = "PM"
)

// DoctorFilter holds the optional search criteria for the doctor directory.
// A nil field means "don't care"; all present criteria must match.
type DoctorFilter struct {
	Name      *string // case-insensitive substring of the doctor's name
	Specialty *string // case-insensitive exact match
	Period    *string // PeriodAM or PeriodPM: at least one published slot in that half of the day
}

type doctorPredicate func(*Doctor) bool

// predicates builds the AND-combinator list from whichever criteria are set.
// Adding a filter dimension means appending one more predicate here, not
// another branch per combination.
func (f DoctorFilter) predicates() []doctorPredicate {
	var preds []doctorPredicate

	if f.Name != nil {
		name := strings.ToLower(*f.Name)
		preds = append(preds, func(d *Doctor) bool {
			return strings.Contains(strings.ToLower(d.Name), name)
		})
	}
	if f.Specialty != nil {
		spec := *f.Specialty
		preds = append(preds, func(d *Doctor) bool {
			return strings.EqualFold(d.Specialty, spec)
		})
	}
	if f.Period != nil {
		wantMorning := strings.EqualFold(*f.Period, PeriodAM)
		preds = append(preds, func(d *Doctor) bool {
			for _, slot := range d.AvailableTimes {
				if IsMorning(slot) == wantMorning {
					return true
				}
			}
			return false
		})
	}
	return preds
}

// Matches reports whether the doctor satisfies every present criterion.
// With no criteria set it matches everything.
func (f DoctorFilter) Matches(d *Doctor) bool {
	for _, pred := range f.predicates() {
		if !pred(d) {
			return false
		}
	}
	return true
}

// FilterDoctors applies the filter over a doctor set. An empty result is a
// valid outcome, not an error.
func FilterDoctors(doctors []Doctor, f DoctorFilter) []Doctor {
	if len(f.predicates()) == 0 {
		return doctors
	}

	matched := make([]Doctor, 0, len(doctors))
	for i := range doctors {
		if f.Matches(&doctors[i]) {
			matched = append(matched, doctors[i])
		}
	}
	return matched
}
