package clinic

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PrescriptionService lets the treating doctor write one prescription
// against an appointment and the involved parties read it back.
type PrescriptionService struct {
	repo Repository
	log  zerolog.Logger
}

func NewPrescriptionService(repo Repository, log zerolog.Logger) *PrescriptionService {
	return &PrescriptionService{repo: repo, log: log}
}

// Write saves a prescription for an appointment. Only the appointment's
// doctor, identified by the caller's email, may write one, and an
// appointment holds at most one prescription. The patient name is filled
// from the appointment's owner so the stored record never drifts from the
// booking.
func (s *PrescriptionService) Write(ctx context.Context, callerEmail string, p *Prescription) error {
	appt, err := s.repo.GetAppointmentByID(ctx, p.AppointmentID)
	if err != nil {
		return err
	}

	doctor, err := s.repo.GetDoctorByID(ctx, appt.DoctorID)
	if err != nil {
		return fmt.Errorf("load treating doctor: %w", err)
	}
	if doctor.Email != callerEmail {
		s.log.Warn().
			Str("appointment_id", p.AppointmentID.String()).
			Str("caller", callerEmail).
			Msg("prescription write attempt by non-treating doctor")
		return ErrNotOwner
	}

	patient, err := s.repo.GetPatientByID(ctx, appt.PatientID)
	if err != nil {
		return fmt.Errorf("load patient: %w", err)
	}
	p.PatientName = patient.Name

	if err := s.repo.CreatePrescription(ctx, p); err != nil {
		return err
	}

	s.log.Info().
		Str("prescription_id", p.ID.String()).
		Str("appointment_id", p.AppointmentID.String()).
		Msg("prescription written")
	return nil
}

// ByAppointment returns the appointment's prescription to the treating
// doctor or the owning patient; anyone else gets ErrNotOwner.
func (s *PrescriptionService) ByAppointment(ctx context.Context, callerEmail string, appointmentID uuid.UUID) (*Prescription, error) {
	appt, err := s.repo.GetAppointmentByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	doctor, err := s.repo.GetDoctorByID(ctx, appt.DoctorID)
	if err != nil {
		return nil, fmt.Errorf("load treating doctor: %w", err)
	}
	patient, err := s.repo.GetPatientByID(ctx, appt.PatientID)
	if err != nil {
		return nil, fmt.Errorf("load patient: %w", err)
	}
	if doctor.Email != callerEmail && patient.Email != callerEmail {
		return nil, ErrNotOwner
	}

	return s.repo.GetPrescriptionByAppointment(ctx, appointmentID)
}
