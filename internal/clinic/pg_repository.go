package clinic

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgUniqueViolation = "23505"

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// Helpers

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	var rawSlots []string

	err := row.Scan(
		&d.ID,
		&d.Name,
		&d.Specialty,
		&d.Email,
		&d.Phone,
		&rawSlots,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDoctorNotFound
		}
		return nil, err
	}

	d.AvailableTimes, err = parseSlotStrings(rawSlots)
	if err != nil {
		return nil, fmt.Errorf("stored slots for doctor %s: %w", d.ID, err)
	}
	return &d, nil
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient

	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Email,
		&p.Phone,
		&p.Address,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}

	return &p, nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment

	err := row.Scan(
		&a.ID,
		&a.DoctorID,
		&a.PatientID,
		&a.StartTime,
		&a.Status,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	return &a, nil
}

func scanAppointmentDetail(row pgx.Row) (*AppointmentDetail, error) {
	var d AppointmentDetail

	err := row.Scan(
		&d.ID,
		&d.DoctorID,
		&d.PatientID,
		&d.StartTime,
		&d.Status,
		&d.CreatedAt,
		&d.UpdatedAt,
		&d.DoctorName,
		&d.PatientName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	return &d, nil
}

// Doctors

func (r *PgRepository) CreateDoctor(ctx context.Context, d *Doctor) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO doctors (id, name, specialty, email, phone, available_times, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
	`, d.ID, d.Name, d.Specialty, d.Email, d.Phone, slotStrings(d.AvailableTimes))
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDoctorExists
		}
		return fmt.Errorf("insert doctor: %w", err)
	}
	return nil
}

func (r *PgRepository) UpdateDoctor(ctx context.Context, d *Doctor) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE doctors
		SET name = $2,
		    specialty = $3,
		    email = $4,
		    phone = $5,
		    available_times = $6,
		    updated_at = now()
		WHERE id = $1
	`, d.ID, d.Name, d.Specialty, d.Email, d.Phone, slotStrings(d.AvailableTimes))
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDoctorExists
		}
		return fmt.Errorf("update doctor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDoctorNotFound
	}
	return nil
}

func (r *PgRepository) DeleteDoctor(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM doctors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete doctor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDoctorNotFound
	}
	return nil
}

func (r *PgRepository) GetDoctorByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, specialty, email, phone, available_times, created_at, updated_at
		FROM doctors
		WHERE id = $1
	`, id)
	return scanDoctor(row)
}

func (r *PgRepository) GetDoctorByEmail(ctx context.Context, email string) (*Doctor, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, specialty, email, phone, available_times, created_at, updated_at
		FROM doctors
		WHERE email = $1
	`, email)
	return scanDoctor(row)
}

func (r *PgRepository) ListDoctors(ctx context.Context) ([]Doctor, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, specialty, email, phone, available_times, created_at, updated_at
		FROM doctors
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// Patients

func (r *PgRepository) CreatePatient(ctx context.Context, p *Patient) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO patients (id, name, email, phone, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
	`, p.ID, p.Name, p.Email, p.Phone, p.Address)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrPatientExists
		}
		return fmt.Errorf("insert patient: %w", err)
	}
	return nil
}

func (r *PgRepository) GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, email, phone, address, created_at, updated_at
		FROM patients
		WHERE id = $1
	`, id)
	return scanPatient(row)
}

func (r *PgRepository) GetPatientByEmail(ctx context.Context, email string) (*Patient, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, email, phone, address, created_at, updated_at
		FROM patients
		WHERE email = $1
	`, email)
	return scanPatient(row)
}

// Appointments

func (r *PgRepository) CreateAppointment(ctx context.Context, a *Appointment) (*Appointment, error) {
	id := a.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO appointments (id, doctor_id, patient_id, start_time, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
		RETURNING id, doctor_id, patient_id, start_time, status, created_at, updated_at
	`, id, a.DoctorID, a.PatientID, a.StartTime, a.Status)

	created, err := scanAppointment(row)
	if err != nil {
		// The (doctor_id, start_time) uniqueness constraint is the store-side
		// backstop against racing bookings.
		if isUniqueViolation(err) {
			return nil, ErrTimeConflict
		}
		return nil, fmt.Errorf("insert appointment: %w", err)
	}
	return created, nil
}

func (r *PgRepository) GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, doctor_id, patient_id, start_time, status, created_at, updated_at
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) UpdateAppointment(ctx context.Context, a *Appointment) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE appointments
		SET doctor_id = $2,
		    patient_id = $3,
		    start_time = $4,
		    status = $5,
		    updated_at = now()
		WHERE id = $1
	`, a.ID, a.DoctorID, a.PatientID, a.StartTime, a.Status)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrTimeConflict
		}
		return fmt.Errorf("update appointment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func (r *PgRepository) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func (r *PgRepository) DeleteAppointmentsByDoctor(ctx context.Context, doctorID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM appointments WHERE doctor_id = $1`, doctorID)
	if err != nil {
		return fmt.Errorf("delete appointments by doctor: %w", err)
	}
	return nil
}

func (r *PgRepository) ListDoctorAppointments(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, doctor_id, patient_id, start_time, status, created_at, updated_at
		FROM appointments
		WHERE doctor_id = $1
		  AND start_time >= $2
		  AND start_time < $3
		ORDER BY start_time
	`, doctorID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) ListDoctorSchedule(ctx context.Context, doctorID uuid.UUID, from, to time.Time, patientName string) ([]AppointmentDetail, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT a.id, a.doctor_id, a.patient_id, a.start_time, a.status, a.created_at, a.updated_at,
		       d.name, p.name
		FROM appointments a
		JOIN doctors d ON d.id = a.doctor_id
		JOIN patients p ON p.id = a.patient_id
		WHERE a.doctor_id = $1
		  AND a.start_time >= $2
		  AND a.start_time < $3
		  AND ($4 = '' OR p.name ILIKE '%' || $4 || '%')
		ORDER BY a.start_time
	`, doctorID, from, to, patientName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectDetails(rows)
}

func (r *PgRepository) ListPatientAppointments(ctx context.Context, patientID uuid.UUID, status *AppointmentStatus, doctorName string) ([]AppointmentDetail, error) {
	var statusArg *int
	if status != nil {
		v := int(*status)
		statusArg = &v
	}

	rows, err := r.pool.Query(ctx, `
		SELECT a.id, a.doctor_id, a.patient_id, a.start_time, a.status, a.created_at, a.updated_at,
		       d.name, p.name
		FROM appointments a
		JOIN doctors d ON d.id = a.doctor_id
		JOIN patients p ON p.id = a.patient_id
		WHERE a.patient_id = $1
		  AND ($2::int IS NULL OR a.status = $2)
		  AND ($3 = '' OR d.name ILIKE '%' || $3 || '%')
		ORDER BY a.start_time
	`, patientID, statusArg, doctorName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectDetails(rows)
}

func collectDetails(rows pgx.Rows) ([]AppointmentDetail, error) {
	var result []AppointmentDetail
	for rows.Next() {
		d, err := scanAppointmentDetail(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// Prescriptions

func scanPrescription(row pgx.Row) (*Prescription, error) {
	var p Prescription

	err := row.Scan(
		&p.ID,
		&p.AppointmentID,
		&p.PatientName,
		&p.Medication,
		&p.Dosage,
		&p.DoctorNotes,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPrescriptionNotFound
		}
		return nil, err
	}

	return &p, nil
}

func (r *PgRepository) CreatePrescription(ctx context.Context, p *Prescription) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO prescriptions (id, appointment_id, patient_name, medication, dosage, doctor_notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
	`, p.ID, p.AppointmentID, p.PatientName, p.Medication, p.Dosage, p.DoctorNotes)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrPrescriptionExists
		}
		return fmt.Errorf("insert prescription: %w", err)
	}
	return nil
}

func (r *PgRepository) GetPrescriptionByAppointment(ctx context.Context, appointmentID uuid.UUID) (*Prescription, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, appointment_id, patient_name, medication, dosage, doctor_notes, created_at, updated_at
		FROM prescriptions
		WHERE appointment_id = $1
	`, appointmentID)
	return scanPrescription(row)
}

func (r *PgRepository) CompletePastAppointments(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE appointments
		SET status = $2,
		    updated_at = now()
		WHERE status = $3
		  AND start_time <= $1
	`, cutoff, StatusCompleted, StatusUpcoming)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
