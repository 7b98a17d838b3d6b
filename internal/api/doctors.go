package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/clinicdesk/clinic-scheduling/internal/clinic"
)

// filterDoctorsHandler serves the doctor directory with optional name,
// specialty and time-of-day criteria. Absent parameters simply don't
// constrain the result; no matches is an empty list, not an error.
func filterDoctorsHandler(doctors *clinic.DoctorService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		var filter clinic.DoctorFilter
		if name := q.Get("name"); name != "" {
			filter.Name = &name
		}
		if spec := q.Get("specialty"); spec != "" {
			filter.Specialty = &spec
		}
		if period := q.Get("time"); period != "" {
			if !strings.EqualFold(period, clinic.PeriodAM) && !strings.EqualFold(period, clinic.PeriodPM) {
				writeError(w, http.StatusBadRequest, "invalid_time", "time must be AM or PM")
				return
			}
			filter.Period = &period
		}

		matched, err := doctors.Filter(r.Context(), filter)
		if err != nil {
			handleDoctorError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"doctors": matched})
	}
}

func doctorAvailabilityHandler(doctors *clinic.DoctorService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "id must be a valid UUID")
			return
		}

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

		slots, err := doctors.Availability(r.Context(), id, date)
		if err != nil {
			handleDoctorError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"available_slots": slots})
	}
}

func createDoctorHandler(doctors *clinic.DoctorService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctor, ok := decodeDoctor(w, r)
		if !ok {
			return
		}

		if err := doctors.CreateDoctor(r.Context(), doctor); err != nil {
			handleDoctorError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, doctor)
	}
}

func updateDoctorHandler(doctors *clinic.DoctorService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "id must be a valid UUID")
			return
		}

		doctor, ok := decodeDoctor(w, r)
		if !ok {
			return
		}
		doctor.ID = id

		if err := doctors.UpdateDoctor(r.Context(), doctor); err != nil {
			handleDoctorError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, doctor)
	}
}

func deleteDoctorHandler(doctors *clinic.DoctorService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "id must be a valid UUID")
			return
		}

		if err := doctors.DeleteDoctor(r.Context(), id); err != nil {
			handleDoctorError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"message": "doctor deleted"})
	}
}

func decodeDoctor(w http.ResponseWriter, r *http.Request) (*clinic.Doctor, bool) {
	var req CreateDoctorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return nil, false
	}
	if req.Name == "" || req.Email == "" {
		writeError(w, http.StatusBadRequest, "missing_fields", "name and email are required")
		return nil, false
	}

	slots := make([]clinic.TimeOfDay, 0, len(req.AvailableTimes))
	for _, s := range req.AvailableTimes {
		t, err := clinic.ParseTimeOfDay(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_slot", err.Error())
			return nil, false
		}
		slots = append(slots, t)
	}

	return &clinic.Doctor{
		Name:           req.Name,
		Specialty:      req.Specialty,
		Email:          req.Email,
		Phone:          req.Phone,
		AvailableTimes: slots,
	}, true
}

func handleDoctorError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, clinic.ErrDoctorNotFound):
		writeError(w, http.StatusNotFound, "doctor_not_found", err.Error())
	case errors.Is(err, clinic.ErrDoctorExists):
		writeError(w, http.StatusConflict, "doctor_exists", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
