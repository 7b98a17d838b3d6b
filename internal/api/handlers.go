package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/clinicdesk/clinic-scheduling/internal/clinic"
)

const dateLayout = "2006-01-02"

func bookAppointmentHandler(appointments *clinic.AppointmentService, doctors *clinic.DoctorService, patients *clinic.PatientService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		doctorID, err := uuid.Parse(req.DoctorID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "doctor_id must be a valid UUID")
			return
		}
		if req.StartTime.IsZero() {
			writeError(w, http.StatusBadRequest, "invalid_start_time", "start_time is required")
			return
		}

		// The booking is always made for the authenticated patient, never a
		// client-supplied one.
		patient, err := patients.GetPatientByEmail(r.Context(), CallerEmail(r.Context()))
		if err != nil {
			handleAppointmentError(w, err)
			return
		}

		if err := doctors.ValidateSlot(r.Context(), doctorID, req.StartTime); err != nil {
			handleAppointmentError(w, err)
			return
		}

		appt, err := appointments.Book(r.Context(), &clinic.Appointment{
			DoctorID:  doctorID,
			PatientID: patient.ID,
			StartTime: req.StartTime,
		})
		if err != nil {
			handleAppointmentError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, appointmentResponse(appt))
	}
}

func updateAppointmentHandler(appointments *clinic.AppointmentService, patients *clinic.PatientService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		var req UpdateAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		doctorID, err := uuid.Parse(req.DoctorID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "doctor_id must be a valid UUID")
			return
		}
		if req.StartTime.IsZero() {
			writeError(w, http.StatusBadRequest, "invalid_start_time", "start_time is required")
			return
		}

		status := clinic.StatusUpcoming
		if req.Status != nil {
			if *req.Status != int(clinic.StatusUpcoming) && *req.Status != int(clinic.StatusCompleted) {
				writeError(w, http.StatusBadRequest, "invalid_status", "status must be 0 (upcoming) or 1 (completed)")
				return
			}
			status = clinic.AppointmentStatus(*req.Status)
		}

		patient, err := patients.GetPatientByEmail(r.Context(), CallerEmail(r.Context()))
		if err != nil {
			handleAppointmentError(w, err)
			return
		}

		appt, err := appointments.Update(r.Context(), &clinic.Appointment{
			ID:        id,
			DoctorID:  doctorID,
			PatientID: patient.ID,
			StartTime: req.StartTime,
			Status:    status,
		})
		if err != nil {
			handleAppointmentError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, appointmentResponse(appt))
	}
}

func cancelAppointmentHandler(appointments *clinic.AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		if err := appointments.Cancel(r.Context(), id, CallerEmail(r.Context())); err != nil {
			handleAppointmentError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"message": "appointment cancelled"})
	}
}

// doctorScheduleHandler serves the calling doctor's own day view.
func doctorScheduleHandler(appointments *clinic.AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dateStr := r.URL.Query().Get("date")
		if dateStr == "" {
			writeError(w, http.StatusBadRequest, "missing_date", "date query parameter is required (YYYY-MM-DD)")
			return
		}
		date, err := time.Parse(dateLayout, dateStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "date must be formatted YYYY-MM-DD")
			return
		}

		schedule, err := appointments.ScheduleForDoctor(r.Context(), CallerEmail(r.Context()), date, r.URL.Query().Get("patient"))
		if err != nil {
			handleAppointmentError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"appointments": schedule})
	}
}

func handleAppointmentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, clinic.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, clinic.ErrPatientNotFound):
		writeError(w, http.StatusNotFound, "patient_not_found", err.Error())
	case errors.Is(err, clinic.ErrDoctorNotFound):
		writeError(w, http.StatusBadRequest, "doctor_not_found", err.Error())
	case errors.Is(err, clinic.ErrNotOwner):
		writeError(w, http.StatusForbidden, "not_owner", err.Error())
	case errors.Is(err, clinic.ErrTimeConflict):
		writeError(w, http.StatusConflict, "time_conflict", err.Error())
	case errors.Is(err, clinic.ErrSlotUnavailable):
		writeError(w, http.StatusConflict, "slot_unavailable", err.Error())
	case errors.Is(err, clinic.ErrScheduleBusy):
		writeError(w, http.StatusConflict, "schedule_busy", "the slot is being booked right now, please retry shortly")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
