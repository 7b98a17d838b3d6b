package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/clinicdesk/clinic-scheduling/internal/clinic"
	"github.com/clinicdesk/clinic-scheduling/internal/token"
)

type RouterConfig struct {
	Appointments  *clinic.AppointmentService
	Doctors       *clinic.DoctorService
	Patients      *clinic.PatientService
	Prescriptions *clinic.PrescriptionService
	Tokens        *token.Manager
	PgPool        *pgxpool.Pool
	Redis         *redis.Client
	Logger        zerolog.Logger
	Env           string
	Version       string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))

	// Health endpoints
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	// Public directory and registration
	r.Get("/doctors", filterDoctorsHandler(cfg.Doctors))
	r.Get("/doctors/{id}/availability", doctorAvailabilityHandler(cfg.Doctors))
	r.Post("/patients", createPatientHandler(cfg.Patients))

	// Doctor administration
	r.Post("/doctors", createDoctorHandler(cfg.Doctors))
	r.Put("/doctors/{id}", updateDoctorHandler(cfg.Doctors))
	r.Delete("/doctors/{id}", deleteDoctorHandler(cfg.Doctors))

	// Everything touching a caller's own records requires an identity.
	r.Group(func(r chi.Router) {
		r.Use(RequireIdentity(cfg.Tokens))

		r.Post("/appointments", bookAppointmentHandler(cfg.Appointments, cfg.Doctors, cfg.Patients))
		r.Put("/appointments/{id}", updateAppointmentHandler(cfg.Appointments, cfg.Patients))
		r.Delete("/appointments/{id}", cancelAppointmentHandler(cfg.Appointments))

		r.Get("/schedule", doctorScheduleHandler(cfg.Appointments))
		r.Get("/patients/me/appointments", myAppointmentsHandler(cfg.Patients))

		r.Post("/prescriptions", writePrescriptionHandler(cfg.Prescriptions))
		r.Get("/appointments/{id}/prescription", getPrescriptionHandler(cfg.Prescriptions))
	})

	return r
}
