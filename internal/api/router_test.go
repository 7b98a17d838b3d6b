package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicdesk/clinic-scheduling/internal/clinic"
	"github.com/clinicdesk/clinic-scheduling/internal/token"
)

type passLocker struct{}

func (passLocker) WithScheduleLock(ctx context.Context, _ uuid.UUID, _ time.Time, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type apiTestEnv struct {
	router http.Handler
	repo   *clinic.MemoryRepository
	tokens *token.Manager

	doctor  *clinic.Doctor
	patient *clinic.Patient
}

func newAPITestEnv(t *testing.T) *apiTestEnv {
	t.Helper()

	repo := clinic.NewMemoryRepository()
	log := zerolog.Nop()
	tokens := token.NewManager("test-secret", time.Hour)

	router := NewRouter(RouterConfig{
		Appointments:  clinic.NewAppointmentService(repo, passLocker{}, log),
		Doctors:       clinic.NewDoctorService(repo, log),
		Patients:      clinic.NewPatientService(repo, log),
		Prescriptions: clinic.NewPrescriptionService(repo, log),
		Tokens:        tokens,
		Logger:        log,
		Env:           "test",
		Version:       "test",
	})

	doctor := &clinic.Doctor{
		Name:      "Grace Hopper",
		Specialty: "Cardiology",
		Email:     "g.hopper@clinic.test",
		AvailableTimes: []clinic.TimeOfDay{
			{Hour: 9}, {Hour: 10}, {Hour: 10, Minute: 30}, {Hour: 15},
		},
	}
	if err := repo.CreateDoctor(context.Background(), doctor); err != nil {
		t.Fatalf("seed doctor: %v", err)
	}

	patient := &clinic.Patient{Name: "Ada Lovelace", Email: "ada@example.test"}
	if err := repo.CreatePatient(context.Background(), patient); err != nil {
		t.Fatalf("seed patient: %v", err)
	}

	return &apiTestEnv{
		router:  router,
		repo:    repo,
		tokens:  tokens,
		doctor:  doctor,
		patient: patient,
	}
}

func (e *apiTestEnv) do(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *apiTestEnv) tokenFor(t *testing.T, email string) string {
	t.Helper()
	tok, err := e.tokens.Generate(email)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return tok
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestAuthRequired(t *testing.T) {
	env := newAPITestEnv(t)

	rec := env.do(t, http.MethodPost, "/appointments", "", CreateAppointmentRequest{})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no token: expected 401, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/appointments", "garbage-token", CreateAppointmentRequest{})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad token: expected 401, got %d", rec.Code)
	}
}

func TestBookAppointment(t *testing.T) {
	env := newAPITestEnv(t)
	bearer := env.tokenFor(t, env.patient.Email)
	start := time.Date(2026, 5, 20, 10, 0, 0, 0, time.UTC)

	rec := env.do(t, http.MethodPost, "/appointments", bearer, CreateAppointmentRequest{
		DoctorID:  env.doctor.ID.String(),
		StartTime: start,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	resp := decodeBody[AppointmentResponse](t, rec)
	if resp.PatientID != env.patient.ID {
		t.Error("booking must be attributed to the authenticated patient")
	}
	if resp.Status != int(clinic.StatusUpcoming) {
		t.Errorf("expected upcoming status, got %d", resp.Status)
	}
}

func TestBookAppointment_TakenSlotRejected(t *testing.T) {
	env := newAPITestEnv(t)
	bearer := env.tokenFor(t, env.patient.Email)
	start := time.Date(2026, 5, 20, 10, 0, 0, 0, time.UTC)

	req := CreateAppointmentRequest{DoctorID: env.doctor.ID.String(), StartTime: start}
	if rec := env.do(t, http.MethodPost, "/appointments", bearer, req); rec.Code != http.StatusCreated {
		t.Fatalf("first booking: expected 201, got %d", rec.Code)
	}

	rec := env.do(t, http.MethodPost, "/appointments", bearer, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("second booking: expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestBookAppointment_OverlappingWindowRejected(t *testing.T) {
	env := newAPITestEnv(t)
	bearer := env.tokenFor(t, env.patient.Email)

	// 10:00 is booked; 10:30 is still a published, unbooked slot, so the
	// availability check passes and the conflict window catches it.
	first := CreateAppointmentRequest{
		DoctorID:  env.doctor.ID.String(),
		StartTime: time.Date(2026, 5, 20, 10, 0, 0, 0, time.UTC),
	}
	if rec := env.do(t, http.MethodPost, "/appointments", bearer, first); rec.Code != http.StatusCreated {
		t.Fatalf("first booking: expected 201, got %d", rec.Code)
	}

	rec := env.do(t, http.MethodPost, "/appointments", bearer, CreateAppointmentRequest{
		DoctorID:  env.doctor.ID.String(),
		StartTime: time.Date(2026, 5, 20, 10, 30, 0, 0, time.UTC),
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("overlapping booking: expected 409, got %d: %s", rec.Code, rec.Body.String())
	}

	errResp := decodeBody[ErrorResponse](t, rec)
	if errResp.Error != "time_conflict" {
		t.Errorf("expected time_conflict error code, got %q", errResp.Error)
	}
}

func TestBookAppointment_BadInput(t *testing.T) {
	env := newAPITestEnv(t)
	bearer := env.tokenFor(t, env.patient.Email)

	rec := env.do(t, http.MethodPost, "/appointments", bearer, CreateAppointmentRequest{
		DoctorID:  "not-a-uuid",
		StartTime: time.Now(),
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad doctor id: expected 400, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/appointments", bearer, CreateAppointmentRequest{
		DoctorID: env.doctor.ID.String(),
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("zero start time: expected 400, got %d", rec.Code)
	}
}

func TestCancelAppointment_OwnershipEnforced(t *testing.T) {
	env := newAPITestEnv(t)
	owner := env.tokenFor(t, env.patient.Email)

	stranger := &clinic.Patient{Name: "Mallory", Email: "mallory@example.test"}
	if err := env.repo.CreatePatient(context.Background(), stranger); err != nil {
		t.Fatalf("seed stranger: %v", err)
	}

	rec := env.do(t, http.MethodPost, "/appointments", owner, CreateAppointmentRequest{
		DoctorID:  env.doctor.ID.String(),
		StartTime: time.Date(2026, 5, 20, 9, 0, 0, 0, time.UTC),
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("book: expected 201, got %d", rec.Code)
	}
	appt := decodeBody[AppointmentResponse](t, rec)
	path := fmt.Sprintf("/appointments/%s", appt.ID)

	if rec := env.do(t, http.MethodDelete, path, env.tokenFor(t, stranger.Email), nil); rec.Code != http.StatusForbidden {
		t.Errorf("stranger cancel: expected 403, got %d", rec.Code)
	}

	if rec := env.do(t, http.MethodDelete, path, owner, nil); rec.Code != http.StatusOK {
		t.Errorf("owner cancel: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	if rec := env.do(t, http.MethodDelete, path, owner, nil); rec.Code != http.StatusNotFound {
		t.Errorf("repeat cancel: expected 404, got %d", rec.Code)
	}
}

func TestUpdateAppointment_StatusValidation(t *testing.T) {
	env := newAPITestEnv(t)
	bearer := env.tokenFor(t, env.patient.Email)

	rec := env.do(t, http.MethodPost, "/appointments", bearer, CreateAppointmentRequest{
		DoctorID:  env.doctor.ID.String(),
		StartTime: time.Date(2026, 5, 20, 9, 0, 0, 0, time.UTC),
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("book: expected 201, got %d", rec.Code)
	}
	appt := decodeBody[AppointmentResponse](t, rec)

	bad := 7
	rec = env.do(t, http.MethodPut, "/appointments/"+appt.ID.String(), bearer, UpdateAppointmentRequest{
		DoctorID:  env.doctor.ID.String(),
		StartTime: appt.StartTime,
		Status:    &bad,
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid status: expected 400, got %d", rec.Code)
	}

	moved := time.Date(2026, 5, 20, 15, 0, 0, 0, time.UTC)
	rec = env.do(t, http.MethodPut, "/appointments/"+appt.ID.String(), bearer, UpdateAppointmentRequest{
		DoctorID:  env.doctor.ID.String(),
		StartTime: moved,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("move appointment: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	updated := decodeBody[AppointmentResponse](t, rec)
	if !updated.StartTime.Equal(moved) {
		t.Errorf("expected new start time %s, got %s", moved, updated.StartTime)
	}
}

func TestDoctorAvailabilityEndpoint(t *testing.T) {
	env := newAPITestEnv(t)
	bearer := env.tokenFor(t, env.patient.Email)

	rec := env.do(t, http.MethodPost, "/appointments", bearer, CreateAppointmentRequest{
		DoctorID:  env.doctor.ID.String(),
		StartTime: time.Date(2026, 5, 20, 10, 0, 0, 0, time.UTC),
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("book: expected 201, got %d", rec.Code)
	}

	path := fmt.Sprintf("/doctors/%s/availability?date=2026-05-20", env.doctor.ID)
	rec = env.do(t, http.MethodGet, path, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("availability: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeBody[map[string][]string](t, rec)
	got := body["available_slots"]
	want := []string{"09:00", "10:30", "15:00"}
	if len(got) != len(want) {
		t.Fatalf("expected slots %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("slot %d: expected %s, got %s", i, want[i], got[i])
		}
	}

	if rec := env.do(t, http.MethodGet, "/doctors/"+env.doctor.ID.String()+"/availability", "", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("missing date: expected 400, got %d", rec.Code)
	}
}

func TestDoctorDirectoryFilter(t *testing.T) {
	env := newAPITestEnv(t)

	second := &clinic.Doctor{
		Name:           "John Carter",
		Specialty:      "Dermatology",
		Email:          "j.carter@clinic.test",
		AvailableTimes: []clinic.TimeOfDay{{Hour: 8}},
	}
	if err := env.repo.CreateDoctor(context.Background(), second); err != nil {
		t.Fatalf("seed second doctor: %v", err)
	}

	rec := env.do(t, http.MethodGet, "/doctors?specialty=cardiology", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("filter: expected 200, got %d", rec.Code)
	}
	body := decodeBody[map[string][]clinic.Doctor](t, rec)
	if len(body["doctors"]) != 1 || body["doctors"][0].Email != env.doctor.Email {
		t.Errorf("expected only the cardiologist, got %v", body["doctors"])
	}

	rec = env.do(t, http.MethodGet, "/doctors?time=PM", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("PM filter: expected 200, got %d", rec.Code)
	}
	body = decodeBody[map[string][]clinic.Doctor](t, rec)
	if len(body["doctors"]) != 1 || body["doctors"][0].Email != env.doctor.Email {
		t.Errorf("PM filter should match only the doctor with an afternoon slot, got %v", body["doctors"])
	}

	if rec := env.do(t, http.MethodGet, "/doctors?time=noonish", "", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid period: expected 400, got %d", rec.Code)
	}
}

func TestCreatePatientEndpoint(t *testing.T) {
	env := newAPITestEnv(t)

	req := CreatePatientRequest{Name: "Alan Turing", Email: "alan@example.test"}
	if rec := env.do(t, http.MethodPost, "/patients", "", req); rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if rec := env.do(t, http.MethodPost, "/patients", "", req); rec.Code != http.StatusConflict {
		t.Errorf("duplicate email: expected 409, got %d", rec.Code)
	}

	if rec := env.do(t, http.MethodPost, "/patients", "", CreatePatientRequest{Name: "No Email"}); rec.Code != http.StatusBadRequest {
		t.Errorf("missing email: expected 400, got %d", rec.Code)
	}
}

func TestMyAppointmentsEndpoint(t *testing.T) {
	env := newAPITestEnv(t)
	bearer := env.tokenFor(t, env.patient.Email)

	rec := env.do(t, http.MethodPost, "/appointments", bearer, CreateAppointmentRequest{
		DoctorID:  env.doctor.ID.String(),
		StartTime: time.Date(2026, 5, 20, 9, 0, 0, 0, time.UTC),
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("book: expected 201, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/patients/me/appointments?condition=future", bearer, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody[map[string][]clinic.AppointmentDetail](t, rec)
	if len(body["appointments"]) != 1 {
		t.Fatalf("expected 1 appointment, got %d", len(body["appointments"]))
	}
	if body["appointments"][0].DoctorName != env.doctor.Name {
		t.Errorf("expected hydrated doctor name, got %q", body["appointments"][0].DoctorName)
	}

	if rec := env.do(t, http.MethodGet, "/patients/me/appointments?condition=yesterday", bearer, nil); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid condition: expected 400, got %d", rec.Code)
	}
}

func TestDoctorScheduleEndpoint(t *testing.T) {
	env := newAPITestEnv(t)
	patientTok := env.tokenFor(t, env.patient.Email)

	rec := env.do(t, http.MethodPost, "/appointments", patientTok, CreateAppointmentRequest{
		DoctorID:  env.doctor.ID.String(),
		StartTime: time.Date(2026, 5, 20, 9, 0, 0, 0, time.UTC),
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("book: expected 201, got %d", rec.Code)
	}

	doctorTok := env.tokenFor(t, env.doctor.Email)
	rec = env.do(t, http.MethodGet, "/schedule?date=2026-05-20", doctorTok, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("schedule: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody[map[string][]clinic.AppointmentDetail](t, rec)
	if len(body["appointments"]) != 1 {
		t.Fatalf("expected 1 appointment, got %d", len(body["appointments"]))
	}
	if body["appointments"][0].PatientName != env.patient.Name {
		t.Errorf("expected hydrated patient name, got %q", body["appointments"][0].PatientName)
	}

	rec = env.do(t, http.MethodGet, "/schedule?date=2026-05-20&patient=nobody", doctorTok, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("filtered schedule: expected 200, got %d", rec.Code)
	}
	body = decodeBody[map[string][]clinic.AppointmentDetail](t, rec)
	if len(body["appointments"]) != 0 {
		t.Errorf("expected no matches, got %d", len(body["appointments"]))
	}

	if rec := env.do(t, http.MethodGet, "/schedule", doctorTok, nil); rec.Code != http.StatusBadRequest {
		t.Errorf("missing date: expected 400, got %d", rec.Code)
	}
}

func TestPrescriptionEndpoints(t *testing.T) {
	env := newAPITestEnv(t)
	patientTok := env.tokenFor(t, env.patient.Email)
	doctorTok := env.tokenFor(t, env.doctor.Email)

	rec := env.do(t, http.MethodPost, "/appointments", patientTok, CreateAppointmentRequest{
		DoctorID:  env.doctor.ID.String(),
		StartTime: time.Date(2026, 5, 20, 9, 0, 0, 0, time.UTC),
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("book: expected 201, got %d", rec.Code)
	}
	appt := decodeBody[AppointmentResponse](t, rec)

	write := CreatePrescriptionRequest{
		AppointmentID: appt.ID.String(),
		Medication:    "Amoxicillin",
		Dosage:        "500mg twice daily",
	}

	if rec := env.do(t, http.MethodPost, "/prescriptions", patientTok, write); rec.Code != http.StatusForbidden {
		t.Errorf("patient writing a prescription: expected 403, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/prescriptions", doctorTok, write)
	if rec.Code != http.StatusCreated {
		t.Fatalf("doctor writing a prescription: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	created := decodeBody[clinic.Prescription](t, rec)
	if created.PatientName != env.patient.Name {
		t.Errorf("expected patient name filled from the booking, got %q", created.PatientName)
	}

	if rec := env.do(t, http.MethodPost, "/prescriptions", doctorTok, write); rec.Code != http.StatusConflict {
		t.Errorf("second prescription: expected 409, got %d", rec.Code)
	}

	path := "/appointments/" + appt.ID.String() + "/prescription"
	rec = env.do(t, http.MethodGet, path, patientTok, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("patient reading their prescription: expected 200, got %d", rec.Code)
	}
	fetched := decodeBody[clinic.Prescription](t, rec)
	if fetched.Medication != "Amoxicillin" {
		t.Errorf("expected the written medication back, got %q", fetched.Medication)
	}

	if rec := env.do(t, http.MethodPost, "/prescriptions", doctorTok, CreatePrescriptionRequest{
		AppointmentID: appt.ID.String(),
	}); rec.Code != http.StatusBadRequest {
		t.Errorf("missing medication: expected 400, got %d", rec.Code)
	}
}
