package clinic

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is an in-memory Repository used by the test suite and for
// running the API without Postgres. It mirrors the PgRepository contract,
// including the (doctor, start time) uniqueness rule.
type MemoryRepository struct {
	mu            sync.RWMutex
	doctors       map[uuid.UUID]*Doctor
	patients      map[uuid.UUID]*Patient
	appointments  map[uuid.UUID]*Appointment
	prescriptions map[uuid.UUID]*Prescription // keyed by appointment id
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		doctors:       make(map[uuid.UUID]*Doctor),
		patients:      make(map[uuid.UUID]*Patient),
		appointments:  make(map[uuid.UUID]*Appointment),
		prescriptions: make(map[uuid.UUID]*Prescription),
	}
}

// Doctors

func (m *MemoryRepository) CreateDoctor(_ context.Context, d *Doctor) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.doctors {
		if existing.Email == d.Email {
			return ErrDoctorExists
		}
	}
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	now := time.Now()
	d.CreatedAt = now
	d.UpdatedAt = now

	cp := *d
	m.doctors[d.ID] = &cp
	return nil
}

func (m *MemoryRepository) UpdateDoctor(_ context.Context, d *Doctor) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.doctors[d.ID]; !ok {
		return ErrDoctorNotFound
	}
	cp := *d
	cp.UpdatedAt = time.Now()
	m.doctors[d.ID] = &cp
	return nil
}

func (m *MemoryRepository) DeleteDoctor(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.doctors[id]; !ok {
		return ErrDoctorNotFound
	}
	delete(m.doctors, id)
	return nil
}

func (m *MemoryRepository) GetDoctorByID(_ context.Context, id uuid.UUID) (*Doctor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.doctors[id]
	if !ok {
		return nil, ErrDoctorNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *MemoryRepository) GetDoctorByEmail(_ context.Context, email string) (*Doctor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, d := range m.doctors {
		if d.Email == email {
			cp := *d
			return &cp, nil
		}
	}
	return nil, ErrDoctorNotFound
}

func (m *MemoryRepository) ListDoctors(_ context.Context) ([]Doctor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Doctor, 0, len(m.doctors))
	for _, d := range m.doctors {
		result = append(result, *d)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// Patients

func (m *MemoryRepository) CreatePatient(_ context.Context, p *Patient) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.patients {
		if existing.Email == p.Email {
			return ErrPatientExists
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	cp := *p
	m.patients[p.ID] = &cp
	return nil
}

func (m *MemoryRepository) GetPatientByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.patients[id]
	if !ok {
		return nil, ErrPatientNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MemoryRepository) GetPatientByEmail(_ context.Context, email string) (*Patient, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, p := range m.patients {
		if p.Email == email {
			cp := *p
			return &cp, nil
		}
	}
	return nil, ErrPatientNotFound
}

// Appointments

func (m *MemoryRepository) CreateAppointment(_ context.Context, a *Appointment) (*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.appointments {
		if existing.DoctorID == a.DoctorID && existing.StartTime.Equal(a.StartTime) {
			return nil, ErrTimeConflict
		}
	}

	cp := *a
	if cp.ID == uuid.Nil {
		cp.ID = uuid.New()
	}
	now := time.Now()
	cp.CreatedAt = now
	cp.UpdatedAt = now

	m.appointments[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *MemoryRepository) GetAppointmentByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *MemoryRepository) UpdateAppointment(_ context.Context, a *Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.appointments[a.ID]; !ok {
		return ErrAppointmentNotFound
	}
	for _, existing := range m.appointments {
		if existing.ID != a.ID && existing.DoctorID == a.DoctorID && existing.StartTime.Equal(a.StartTime) {
			return ErrTimeConflict
		}
	}

	cp := *a
	cp.UpdatedAt = time.Now()
	m.appointments[a.ID] = &cp
	return nil
}

func (m *MemoryRepository) DeleteAppointment(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.appointments[id]; !ok {
		return ErrAppointmentNotFound
	}
	delete(m.appointments, id)
	delete(m.prescriptions, id)
	return nil
}

func (m *MemoryRepository) DeleteAppointmentsByDoctor(_ context.Context, doctorID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, a := range m.appointments {
		if a.DoctorID == doctorID {
			delete(m.appointments, id)
			delete(m.prescriptions, id)
		}
	}
	return nil
}

func (m *MemoryRepository) ListDoctorAppointments(_ context.Context, doctorID uuid.UUID, from, to time.Time) ([]Appointment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []Appointment
	for _, a := range m.appointments {
		if a.DoctorID != doctorID {
			continue
		}
		if a.StartTime.Before(from) || !a.StartTime.Before(to) {
			continue
		}
		result = append(result, *a)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartTime.Before(result[j].StartTime) })
	return result, nil
}

func (m *MemoryRepository) ListDoctorSchedule(ctx context.Context, doctorID uuid.UUID, from, to time.Time, patientName string) ([]AppointmentDetail, error) {
	appts, err := m.ListDoctorAppointments(ctx, doctorID, from, to)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []AppointmentDetail
	for _, a := range appts {
		detail, ok := m.hydrate(a)
		if !ok {
			continue
		}
		if patientName != "" && !strings.Contains(strings.ToLower(detail.PatientName), strings.ToLower(patientName)) {
			continue
		}
		result = append(result, detail)
	}
	return result, nil
}

func (m *MemoryRepository) ListPatientAppointments(_ context.Context, patientID uuid.UUID, status *AppointmentStatus, doctorName string) ([]AppointmentDetail, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []AppointmentDetail
	for _, a := range m.appointments {
		if a.PatientID != patientID {
			continue
		}
		if status != nil && a.Status != *status {
			continue
		}
		detail, ok := m.hydrate(*a)
		if !ok {
			continue
		}
		if doctorName != "" && !strings.Contains(strings.ToLower(detail.DoctorName), strings.ToLower(doctorName)) {
			continue
		}
		result = append(result, detail)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartTime.Before(result[j].StartTime) })
	return result, nil
}

// hydrate attaches doctor and patient names; callers hold the read lock.
func (m *MemoryRepository) hydrate(a Appointment) (AppointmentDetail, bool) {
	d, dok := m.doctors[a.DoctorID]
	p, pok := m.patients[a.PatientID]
	if !dok || !pok {
		return AppointmentDetail{}, false
	}
	return AppointmentDetail{Appointment: a, DoctorName: d.Name, PatientName: p.Name}, true
}

// Prescriptions

func (m *MemoryRepository) CreatePrescription(_ context.Context, p *Prescription) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.prescriptions[p.AppointmentID]; ok {
		return ErrPrescriptionExists
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	cp := *p
	m.prescriptions[p.AppointmentID] = &cp
	return nil
}

func (m *MemoryRepository) GetPrescriptionByAppointment(_ context.Context, appointmentID uuid.UUID) (*Prescription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.prescriptions[appointmentID]
	if !ok {
		return nil, ErrPrescriptionNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MemoryRepository) CompletePastAppointments(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for _, a := range m.appointments {
		if a.Status == StatusUpcoming && !a.StartTime.After(cutoff) {
			a.Status = StatusCompleted
			a.UpdatedAt = time.Now()
			n++
		}
	}
	return n, nil
}
