package clinic

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentStatus tracks whether an appointment is still ahead of the
// patient or already behind them. Cancellation is not a status: a cancelled
// appointment is deleted outright.
type AppointmentStatus int

const (
	StatusUpcoming  AppointmentStatus = 0
	StatusCompleted AppointmentStatus = 1
)

// SlotDuration is how long one appointment occupies a doctor's calendar.
// 59 minutes rather than a full hour, so back-to-back hourly slots never
// touch each other's window.
const SlotDuration = 59 * time.Minute

type Doctor struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	Specialty string      `json:"specialty"`
	Email     string      `json:"email"`
	Phone     string      `json:"phone,omitempty"`
	// AvailableTimes is the published slot set, sorted ascending with no
	// duplicate time-of-day values.
	AvailableTimes []TimeOfDay `json:"available_times"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

type Patient struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Appointment struct {
	ID        uuid.UUID         `json:"id"`
	DoctorID  uuid.UUID         `json:"doctor_id"`
	PatientID uuid.UUID         `json:"patient_id"`
	StartTime time.Time         `json:"start_time"`
	Status    AppointmentStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// End returns the exclusive end of the appointment's occupied window.
func (a Appointment) End() time.Time {
	return a.StartTime.Add(SlotDuration)
}

// AppointmentDetail is an appointment hydrated with the names callers
// actually want to display.
type AppointmentDetail struct {
	Appointment
	DoctorName  string `json:"doctor_name"`
	PatientName string `json:"patient_name"`
}

// Prescription is what a doctor writes against one appointment. At most one
// prescription exists per appointment.
type Prescription struct {
	ID            uuid.UUID `json:"id"`
	AppointmentID uuid.UUID `json:"appointment_id"`
	PatientName   string    `json:"patient_name"`
	Medication    string    `json:"medication"`
	Dosage        string    `json:"dosage"`
	DoctorNotes   string    `json:"doctor_notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
