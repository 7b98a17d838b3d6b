package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinic-scheduling/internal/clinic"
)

type CreateAppointmentRequest struct {
	DoctorID  string    `json:"doctor_id"`
	StartTime time.Time `json:"start_time"`
}

type UpdateAppointmentRequest struct {
	DoctorID  string    `json:"doctor_id"`
	StartTime time.Time `json:"start_time"`
	Status    *int      `json:"status,omitempty"`
}

type AppointmentResponse struct {
	ID        uuid.UUID `json:"id"`
	DoctorID  uuid.UUID `json:"doctor_id"`
	PatientID uuid.UUID `json:"patient_id"`
	StartTime time.Time `json:"start_time"`
	Status    int       `json:"status"`
}

func appointmentResponse(a *clinic.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:        a.ID,
		DoctorID:  a.DoctorID,
		PatientID: a.PatientID,
		StartTime: a.StartTime,
		Status:    int(a.Status),
	}
}

type CreateDoctorRequest struct {
	Name           string   `json:"name"`
	Specialty      string   `json:"specialty"`
	Email          string   `json:"email"`
	Phone          string   `json:"phone,omitempty"`
	AvailableTimes []string `json:"available_times"`
}

type CreatePatientRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

type CreatePrescriptionRequest struct {
	AppointmentID string `json:"appointment_id"`
	Medication    string `json:"medication"`
	Dosage        string `json:"dosage,omitempty"`
	DoctorNotes   string `json:"doctor_notes,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
