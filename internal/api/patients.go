package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/clinicdesk/clinic-scheduling/internal/clinic"
)

func createPatientHandler(patients *clinic.PatientService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreatePatientRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if req.Name == "" || req.Email == "" {
			writeError(w, http.StatusBadRequest, "missing_fields", "name and email are required")
			return
		}

		patient := &clinic.Patient{
			Name:    req.Name,
			Email:   req.Email,
			Phone:   req.Phone,
			Address: req.Address,
		}
		if err := patients.CreatePatient(r.Context(), patient); err != nil {
			handlePatientError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, patient)
	}
}

// myAppointmentsHandler lists the calling patient's own appointments with
// optional condition (past/future) and doctor-name filters.
func myAppointmentsHandler(patients *clinic.PatientService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patient, err := patients.GetPatientByEmail(r.Context(), CallerEmail(r.Context()))
		if err != nil {
			handlePatientError(w, err)
			return
		}

		q := r.URL.Query()
		appts, err := patients.Appointments(r.Context(), patient.ID, q.Get("condition"), q.Get("doctor"))
		if err != nil {
			handlePatientError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"appointments": appts})
	}
}

func handlePatientError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, clinic.ErrPatientNotFound):
		writeError(w, http.StatusNotFound, "patient_not_found", err.Error())
	case errors.Is(err, clinic.ErrPatientExists):
		writeError(w, http.StatusConflict, "patient_exists", err.Error())
	case errors.Is(err, clinic.ErrInvalidCondition):
		writeError(w, http.StatusBadRequest, "invalid_condition", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
