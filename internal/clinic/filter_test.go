package clinic

import "testing"

func strPtr(s string) *string { return &s }

func directory() []Doctor {
	return []Doctor{
		{
			Name:           "Alice Smith",
			Specialty:      "Cardiology",
			AvailableTimes: []TimeOfDay{{Hour: 9}, {Hour: 14}},
		},
		{
			Name:           "Bob Smithers",
			Specialty:      "Dermatology",
			AvailableTimes: []TimeOfDay{{Hour: 15}, {Hour: 16}},
		},
		{
			Name:           "Carol Jones",
			Specialty:      "cardiology",
			AvailableTimes: []TimeOfDay{{Hour: 8}},
		},
	}
}

func namesOf(doctors []Doctor) []string {
	names := make([]string, len(doctors))
	for i, d := range doctors {
		names[i] = d.Name
	}
	return names
}

func TestFilterDoctors_NoCriteriaReturnsAll(t *testing.T) {
	got := FilterDoctors(directory(), DoctorFilter{})
	if len(got) != 3 {
		t.Errorf("expected full directory, got %v", namesOf(got))
	}
}

func TestFilterDoctors_NameSubstringCaseInsensitive(t *testing.T) {
	got := FilterDoctors(directory(), DoctorFilter{Name: strPtr("smith")})
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %v", namesOf(got))
	}
}

func TestFilterDoctors_SpecialtyExactCaseInsensitive(t *testing.T) {
	got := FilterDoctors(directory(), DoctorFilter{Specialty: strPtr("CARDIOLOGY")})
	if len(got) != 2 {
		t.Fatalf("expected 2 cardiologists, got %v", namesOf(got))
	}

	// Substrings must not match specialties.
	got = FilterDoctors(directory(), DoctorFilter{Specialty: strPtr("cardio")})
	if len(got) != 0 {
		t.Errorf("substring specialty should not match, got %v", namesOf(got))
	}
}

func TestFilterDoctors_PeriodAnySlot(t *testing.T) {
	am := FilterDoctors(directory(), DoctorFilter{Period: strPtr(PeriodAM)})
	if len(am) != 2 {
		t.Errorf("expected 2 doctors with a morning slot, got %v", namesOf(am))
	}

	pm := FilterDoctors(directory(), DoctorFilter{Period: strPtr(PeriodPM)})
	if len(pm) != 2 {
		t.Errorf("expected 2 doctors with an afternoon slot, got %v", namesOf(pm))
	}
}

func TestFilterDoctors_Composition(t *testing.T) {
	got := FilterDoctors(directory(), DoctorFilter{
		Name:   strPtr("Smith"),
		Period: strPtr(PeriodPM),
	})
	if len(got) != 2 {
		t.Fatalf("expected both Smiths with PM slots, got %v", namesOf(got))
	}

	got = FilterDoctors(directory(), DoctorFilter{
		Name:      strPtr("Smith"),
		Specialty: strPtr("Dermatology"),
		Period:    strPtr(PeriodAM),
	})
	if len(got) != 0 {
		t.Errorf("expected no matches, got %v", namesOf(got))
	}
}

func TestFilterDoctors_EmptyResultIsNotError(t *testing.T) {
	got := FilterDoctors(nil, DoctorFilter{Name: strPtr("nobody")})
	if len(got) != 0 {
		t.Errorf("expected empty result, got %v", namesOf(got))
	}
}

func TestMatches_AgreesWithFilterDoctors(t *testing.T) {
	doctors := directory()
	filter := DoctorFilter{Name: strPtr("Smith"), Period: strPtr(PeriodPM)}

	kept := FilterDoctors(doctors, filter)
	for i := range doctors {
		inKept := false
		for _, k := range kept {
			if k.Name == doctors[i].Name {
				inKept = true
				break
			}
		}
		if got := filter.Matches(&doctors[i]); got != inKept {
			t.Errorf("Matches(%s) = %v, but FilterDoctors kept=%v", doctors[i].Name, got, inKept)
		}
	}

	if !(DoctorFilter{}).Matches(&doctors[0]) {
		t.Error("empty filter should match any doctor")
	}
}
