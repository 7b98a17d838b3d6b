package clinic

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestHasConflict_Boundaries(t *testing.T) {
	base := time.Date(2026, 5, 20, 10, 0, 0, 0, time.UTC)
	existing := []Appointment{{ID: uuid.New(), StartTime: base}}

	cases := []struct {
		name      string
		candidate time.Time
		want      bool
	}{
		{"same start", base, true},
		{"30 minutes later", base.Add(30 * time.Minute), true},
		{"58 minutes later", base.Add(58 * time.Minute), true},
		{"exactly 59 minutes later", base.Add(59 * time.Minute), false},
		{"exactly 60 minutes later", base.Add(60 * time.Minute), false},
		{"30 minutes earlier", base.Add(-30 * time.Minute), true},
		{"exactly 59 minutes earlier", base.Add(-59 * time.Minute), false},
		{"one second inside the window", base.Add(59*time.Minute - time.Second), true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := HasConflict(existing, c.candidate, uuid.Nil); got != c.want {
				t.Errorf("HasConflict(%s) = %v, want %v", c.candidate.Format("15:04:05"), got, c.want)
			}
		})
	}
}

func TestHasConflict_ExcludesSelf(t *testing.T) {
	base := time.Date(2026, 5, 20, 10, 0, 0, 0, time.UTC)
	self := uuid.New()
	existing := []Appointment{{ID: self, StartTime: base}}

	// Moving an appointment within its own window must not conflict with itself.
	if HasConflict(existing, base.Add(15*time.Minute), self) {
		t.Error("appointment conflicted with itself")
	}

	other := uuid.New()
	if !HasConflict(existing, base.Add(15*time.Minute), other) {
		t.Error("excluding an unrelated id should not suppress the conflict")
	}
}

func TestHasConflict_EmptySet(t *testing.T) {
	if HasConflict(nil, time.Now(), uuid.Nil) {
		t.Error("no appointments should mean no conflict")
	}
}
