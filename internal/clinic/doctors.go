package clinic

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DoctorService manages the doctor directory: administrative CRUD, the
// availability calculation and the composable search filter.
type DoctorService struct {
	repo Repository
	log  zerolog.Logger
}

func NewDoctorService(repo Repository, log zerolog.Logger) *DoctorService {
	return &DoctorService{repo: repo, log: log}
}

// CreateDoctor registers a new doctor. Email is the uniqueness key.
func (s *DoctorService) CreateDoctor(ctx context.Context, d *Doctor) error {
	_, err := s.repo.GetDoctorByEmail(ctx, d.Email)
	if err == nil {
		return ErrDoctorExists
	}
	if !errors.Is(err, ErrDoctorNotFound) {
		return fmt.Errorf("check existing doctor: %w", err)
	}

	d.AvailableTimes = NormalizeSlots(d.AvailableTimes)
	if err := s.repo.CreateDoctor(ctx, d); err != nil {
		return err
	}

	s.log.Info().Str("doctor_id", d.ID.String()).Str("specialty", d.Specialty).Msg("doctor created")
	return nil
}

func (s *DoctorService) UpdateDoctor(ctx context.Context, d *Doctor) error {
	if _, err := s.repo.GetDoctorByID(ctx, d.ID); err != nil {
		return err
	}

	d.AvailableTimes = NormalizeSlots(d.AvailableTimes)
	if err := s.repo.UpdateDoctor(ctx, d); err != nil {
		return err
	}

	s.log.Info().Str("doctor_id", d.ID.String()).Msg("doctor updated")
	return nil
}

// DeleteDoctor removes a doctor and, first, every appointment booked against
// them. The appointments must go before the doctor does.
func (s *DoctorService) DeleteDoctor(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetDoctorByID(ctx, id); err != nil {
		return err
	}

	if err := s.repo.DeleteAppointmentsByDoctor(ctx, id); err != nil {
		return fmt.Errorf("delete doctor's appointments: %w", err)
	}
	if err := s.repo.DeleteDoctor(ctx, id); err != nil {
		return err
	}

	s.log.Info().Str("doctor_id", id.String()).Msg("doctor deleted with appointments")
	return nil
}

func (s *DoctorService) GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.repo.GetDoctorByID(ctx, id)
}

func (s *DoctorService) GetDoctorByEmail(ctx context.Context, email string) (*Doctor, error) {
	return s.repo.GetDoctorByEmail(ctx, email)
}

// Availability computes the doctor's remaining free slots for one day:
// published slots minus the time-of-day projection of that day's booked
// appointments, ascending. An unknown doctor id yields an empty list, not an
// error, so callers treat "no doctor" and "fully booked" uniformly here and
// check existence separately where it matters.
func (s *DoctorService) Availability(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]TimeOfDay, error) {
	doctor, err := s.repo.GetDoctorByID(ctx, doctorID)
	if err != nil {
		if errors.Is(err, ErrDoctorNotFound) {
			return []TimeOfDay{}, nil
		}
		return nil, fmt.Errorf("load doctor: %w", err)
	}

	from := startOfDay(date)
	to := from.AddDate(0, 0, 1)
	booked, err := s.repo.ListDoctorAppointments(ctx, doctorID, from, to)
	if err != nil {
		return nil, fmt.Errorf("load booked appointments: %w", err)
	}

	return FreeSlots(doctor.AvailableTimes, booked), nil
}

// ValidateSlot checks that a requested start time is one of the doctor's
// currently free slots for that date. Booking handlers call this before
// handing off to AppointmentService.Book.
func (s *DoctorService) ValidateSlot(ctx context.Context, doctorID uuid.UUID, start time.Time) error {
	if _, err := s.repo.GetDoctorByID(ctx, doctorID); err != nil {
		return err
	}

	free, err := s.Availability(ctx, doctorID, start)
	if err != nil {
		return err
	}

	requested := TimeOfDayFrom(start)
	for _, slot := range free {
		if slot == requested {
			return nil
		}
	}
	return ErrSlotUnavailable
}

// Filter returns the doctors matching every present criterion. No criteria
// means the whole directory.
func (s *DoctorService) Filter(ctx context.Context, f DoctorFilter) ([]Doctor, error) {
	doctors, err := s.repo.ListDoctors(ctx)
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	return FilterDoctors(doctors, f), nil
}
