package clinic

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrDoctorNotFound      = errors.New("doctor not found")
	ErrPatientNotFound     = errors.New("patient not found")
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrDoctorExists        = errors.New("doctor already exists with this email")
	ErrPatientExists       = errors.New("patient already exists with this email")
	ErrNotOwner            = errors.New("caller does not own this appointment")
	ErrTimeConflict        = errors.New("doctor already has an appointment at this time")
	ErrSlotUnavailable     = errors.New("requested slot is not available")

	ErrPrescriptionNotFound = errors.New("no prescription for this appointment")
	ErrPrescriptionExists   = errors.New("appointment already has a prescription")
)

// Repository contains all DB interactions needed by the services.
type Repository interface {
	CreateDoctor(ctx context.Context, d *Doctor) error
	UpdateDoctor(ctx context.Context, d *Doctor) error
	DeleteDoctor(ctx context.Context, id uuid.UUID) error
	GetDoctorByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	GetDoctorByEmail(ctx context.Context, email string) (*Doctor, error)
	ListDoctors(ctx context.Context) ([]Doctor, error)

	CreatePatient(ctx context.Context, p *Patient) error
	GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetPatientByEmail(ctx context.Context, email string) (*Patient, error)

	CreateAppointment(ctx context.Context, a *Appointment) (*Appointment, error)
	GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	UpdateAppointment(ctx context.Context, a *Appointment) error
	DeleteAppointment(ctx context.Context, id uuid.UUID) error
	DeleteAppointmentsByDoctor(ctx context.Context, doctorID uuid.UUID) error

	// For availability and conflict checks. from is inclusive, to exclusive.
	ListDoctorAppointments(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]Appointment, error)

	// Doctor's day view, optionally narrowed by patient name substring.
	ListDoctorSchedule(ctx context.Context, doctorID uuid.UUID, from, to time.Time, patientName string) ([]AppointmentDetail, error)

	// Patient history, optionally narrowed by status and doctor name substring,
	// ordered by start time ascending.
	ListPatientAppointments(ctx context.Context, patientID uuid.UUID, status *AppointmentStatus, doctorName string) ([]AppointmentDetail, error)

	// Marks upcoming appointments starting at or before cutoff as completed,
	// returning how many rows changed.
	CompletePastAppointments(ctx context.Context, cutoff time.Time) (int64, error)

	// At most one prescription per appointment; a second insert for the same
	// appointment yields ErrPrescriptionExists.
	CreatePrescription(ctx context.Context, p *Prescription) error
	GetPrescriptionByAppointment(ctx context.Context, appointmentID uuid.UUID) (*Prescription, error)
}
