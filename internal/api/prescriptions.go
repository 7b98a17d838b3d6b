package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/clinicdesk/clinic-scheduling/internal/clinic"
)

func writePrescriptionHandler(prescriptions *clinic.PrescriptionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreatePrescriptionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		appointmentID, err := uuid.Parse(req.AppointmentID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "appointment_id must be a valid UUID")
			return
		}
		if req.Medication == "" {
			writeError(w, http.StatusBadRequest, "missing_fields", "medication is required")
			return
		}

		p := &clinic.Prescription{
			AppointmentID: appointmentID,
			Medication:    req.Medication,
			Dosage:        req.Dosage,
			DoctorNotes:   req.DoctorNotes,
		}
		if err := prescriptions.Write(r.Context(), CallerEmail(r.Context()), p); err != nil {
			handlePrescriptionError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, p)
	}
}

func getPrescriptionHandler(prescriptions *clinic.PrescriptionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appointmentID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		p, err := prescriptions.ByAppointment(r.Context(), CallerEmail(r.Context()), appointmentID)
		if err != nil {
			handlePrescriptionError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, p)
	}
}

func handlePrescriptionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, clinic.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, clinic.ErrPrescriptionNotFound):
		writeError(w, http.StatusNotFound, "prescription_not_found", err.Error())
	case errors.Is(err, clinic.ErrPrescriptionExists):
		writeError(w, http.StatusConflict, "prescription_exists", err.Error())
	case errors.Is(err, clinic.ErrNotOwner):
		writeError(w, http.StatusForbidden, "not_owner", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
