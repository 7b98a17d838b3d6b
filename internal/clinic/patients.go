package clinic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrInvalidCondition is returned for condition values other than
// "past", "future" or empty.
var ErrInvalidCondition = errors.New("condition must be \"past\" or \"future\"")

// PatientService covers patient registration and the patient's own
// appointment history views.
type PatientService struct {
	repo Repository
	log  zerolog.Logger
}

func NewPatientService(repo Repository, log zerolog.Logger) *PatientService {
	return &PatientService{repo: repo, log: log}
}

// CreatePatient registers a new patient. Email is the uniqueness key and
// doubles as the login identity.
func (s *PatientService) CreatePatient(ctx context.Context, p *Patient) error {
	_, err := s.repo.GetPatientByEmail(ctx, p.Email)
	if err == nil {
		return ErrPatientExists
	}
	if !errors.Is(err, ErrPatientNotFound) {
		return fmt.Errorf("check existing patient: %w", err)
	}

	if err := s.repo.CreatePatient(ctx, p); err != nil {
		return err
	}

	s.log.Info().Str("patient_id", p.ID.String()).Msg("patient created")
	return nil
}

func (s *PatientService) GetPatientByEmail(ctx context.Context, email string) (*Patient, error) {
	return s.repo.GetPatientByEmail(ctx, email)
}

// Appointments lists a patient's appointments ordered by start time.
// condition narrows by status: "future" keeps upcoming ones, "past" keeps
// completed ones, empty keeps both. doctorName, when non-empty, is matched
// as a case-insensitive substring of the doctor's name.
func (s *PatientService) Appointments(ctx context.Context, patientID uuid.UUID, condition, doctorName string) ([]AppointmentDetail, error) {
	status, err := statusForCondition(condition)
	if err != nil {
		return nil, err
	}

	appts, err := s.repo.ListPatientAppointments(ctx, patientID, status, doctorName)
	if err != nil {
		return nil, fmt.Errorf("list patient appointments: %w", err)
	}
	return appts, nil
}

func statusForCondition(condition string) (*AppointmentStatus, error) {
	switch strings.ToLower(condition) {
	case "":
		return nil, nil
	case "future":
		st := StatusUpcoming
		return &st, nil
	case "past":
		st := StatusCompleted
		return &st, nil
	default:
		return nil, ErrInvalidCondition
	}
}
