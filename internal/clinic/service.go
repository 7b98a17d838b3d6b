package clinic

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	redisclient "github.com/clinicdesk/clinic-scheduling/internal/redis"
)

// ErrScheduleBusy means another request holds the schedule lock for the same
// doctor and time window right now.
var ErrScheduleBusy = errors.New("doctor's schedule is being updated, please retry")

// AppointmentService owns the appointment lifecycle: booking, updates,
// cancellation and the doctor's day view. It holds no state of its own, so
// concurrent requests are independent. The schedule lock serializes writers
// for one doctor and exact start time, with the store's (doctor_id,
// start_time) uniqueness constraint as the backstop; racing bookings at
// nearby-but-distinct starts are caught by the window check against
// committed rows instead.
type AppointmentService struct {
	repo   Repository
	locker redisclient.Locker
	log    zerolog.Logger
}

func NewAppointmentService(repo Repository, locker redisclient.Locker, log zerolog.Logger) *AppointmentService {
	return &AppointmentService{
		repo:   repo,
		locker: locker,
		log:    log,
	}
}

// conflictWindow returns the range of start times whose windows could
// intersect a candidate starting at start.
func conflictWindow(start time.Time) (time.Time, time.Time) {
	return start.Add(-SlotDuration), start.Add(SlotDuration)
}

// Book persists a new appointment. The HTTP layer has already checked the
// slot against the doctor's published availability; inside the schedule lock
// the window check runs again against committed rows, so two concurrent
// bookings of the same slot cannot both pass. A uniqueness violation from
// the store surfaces as ErrTimeConflict, never as a raw driver error.
func (s *AppointmentService) Book(ctx context.Context, appt *Appointment) (*Appointment, error) {
	if _, err := s.repo.GetPatientByID(ctx, appt.PatientID); err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load patient: %w", err)
	}
	if _, err := s.repo.GetDoctorByID(ctx, appt.DoctorID); err != nil {
		if errors.Is(err, ErrDoctorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load doctor: %w", err)
	}

	var created *Appointment

	err := s.locker.WithScheduleLock(ctx, appt.DoctorID, appt.StartTime, func(lockCtx context.Context) error {
		from, to := conflictWindow(appt.StartTime)
		nearby, err := s.repo.ListDoctorAppointments(lockCtx, appt.DoctorID, from, to)
		if err != nil {
			return fmt.Errorf("check conflicts: %w", err)
		}
		if HasConflict(nearby, appt.StartTime, uuid.Nil) {
			return ErrTimeConflict
		}

		appt.Status = StatusUpcoming
		created, err = s.repo.CreateAppointment(lockCtx, appt)
		if err != nil {
			return err
		}
		return nil
	})

	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrScheduleBusy
		}
		return nil, err
	}

	s.log.Info().
		Str("appointment_id", created.ID.String()).
		Str("doctor_id", created.DoctorID.String()).
		Time("start_time", created.StartTime).
		Msg("appointment booked")

	return created, nil
}

// Update moves an existing appointment to a new doctor, time and status.
// The submitted patient id is untrusted input: it must equal the stored
// owner or the update is refused. Nothing is persisted on any failure path.
func (s *AppointmentService) Update(ctx context.Context, appt *Appointment) (*Appointment, error) {
	existing, err := s.repo.GetAppointmentByID(ctx, appt.ID)
	if err != nil {
		return nil, err
	}

	if existing.PatientID != appt.PatientID {
		s.log.Warn().
			Str("appointment_id", appt.ID.String()).
			Str("patient_id", appt.PatientID.String()).
			Msg("unauthorized appointment update attempt")
		return nil, ErrNotOwner
	}

	if _, err := s.repo.GetDoctorByID(ctx, appt.DoctorID); err != nil {
		if errors.Is(err, ErrDoctorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load doctor: %w", err)
	}

	var updated *Appointment

	err = s.locker.WithScheduleLock(ctx, appt.DoctorID, appt.StartTime, func(lockCtx context.Context) error {
		from, to := conflictWindow(appt.StartTime)
		nearby, err := s.repo.ListDoctorAppointments(lockCtx, appt.DoctorID, from, to)
		if err != nil {
			return fmt.Errorf("check conflicts: %w", err)
		}
		if HasConflict(nearby, appt.StartTime, appt.ID) {
			return ErrTimeConflict
		}

		existing.DoctorID = appt.DoctorID
		existing.StartTime = appt.StartTime
		existing.Status = appt.Status
		if err := s.repo.UpdateAppointment(lockCtx, existing); err != nil {
			return err
		}
		updated = existing
		return nil
	})
	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrScheduleBusy
		}
		return nil, err
	}

	s.log.Info().Str("appointment_id", updated.ID.String()).Msg("appointment updated")
	return updated, nil
}

// Cancel deletes an appointment. Only the owning patient, identified by the
// email resolved from their token, may cancel. Re-cancelling an already
// deleted id yields ErrAppointmentNotFound.
func (s *AppointmentService) Cancel(ctx context.Context, id uuid.UUID, callerEmail string) error {
	appt, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		return err
	}

	owner, err := s.repo.GetPatientByID(ctx, appt.PatientID)
	if err != nil {
		return fmt.Errorf("load owning patient: %w", err)
	}
	if owner.Email != callerEmail {
		s.log.Warn().
			Str("appointment_id", id.String()).
			Str("caller", callerEmail).
			Msg("unauthorized cancellation attempt")
		return ErrNotOwner
	}

	if err := s.repo.DeleteAppointment(ctx, id); err != nil {
		return err
	}

	s.log.Info().Str("appointment_id", id.String()).Msg("appointment cancelled")
	return nil
}

// ScheduleForDoctor returns the calling doctor's appointments for one day,
// optionally narrowed by a case-insensitive substring of the patient name.
// The doctor is resolved from the caller's identity, never from the request,
// so a doctor only ever sees their own schedule.
func (s *AppointmentService) ScheduleForDoctor(ctx context.Context, doctorEmail string, date time.Time, patientName string) ([]AppointmentDetail, error) {
	doctor, err := s.repo.GetDoctorByEmail(ctx, doctorEmail)
	if err != nil {
		return nil, err
	}

	from := startOfDay(date)
	to := from.AddDate(0, 0, 1)

	return s.repo.ListDoctorSchedule(ctx, doctor.ID, from, to, patientName)
}

// CompletePastAppointments flips upcoming appointments whose window has
// fully passed to completed. Called periodically by the status worker.
func (s *AppointmentService) CompletePastAppointments(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-SlotDuration)
	n, err := s.repo.CompletePastAppointments(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("complete past appointments: %w", err)
	}
	if n > 0 {
		s.log.Info().Int64("count", n).Msg("appointments marked completed")
	}
	return n, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
