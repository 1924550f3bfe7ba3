package mhrs

import (
	"context"
	"errors"

	"github.com/wolfman30/mhrs-agent/internal/browser"
)

// Status is the discriminated result every portal operation reports.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"

	StatusCityNotFound     Status = "city_not_found"
	StatusDistrictNotFound Status = "district_not_found"
	StatusClinicNotFound   Status = "clinic_not_found"
	StatusHospitalNotFound Status = "hospital_not_found"
	StatusDoctorNotFound   Status = "doctor_not_found"
	StatusDateNotFound     Status = "date_not_found"
	StatusTimeNotFound     Status = "time_not_found"
	StatusInvalidInput     Status = "invalid_input"
	StatusTimeout          Status = "timeout"

	StatusNoAvailableAppointment  Status = "no_available_appointment"
	StatusNoDateAvailable         Status = "no_date_available_for_doctor"
	StatusNoAvailableHours        Status = "no_available_hours_on_date"
	StatusMaxAppointmentsExceeded Status = "max_appointments_exceeded"
	StatusBookingFailed           Status = "booking_failed"
	StatusAmbiguousOutcome        Status = "ambiguous_outcome"

	StatusAppointmentNotFound Status = "appointment_not_found"
	StatusAuthFailed          Status = "auth_failed"
	StatusRegistryUnavailable Status = "registry_unavailable"
	StatusMalformedData       Status = "malformed_data"
)

// Outcome is the tagged result of a Service operation. Data is only
// meaningful for the statuses documented on each operation.
type Outcome[T any] struct {
	Status Status `json:"status"`
	Data   T      `json:"data,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// OK reports whether the outcome is a success.
func (o Outcome[T]) OK() bool { return o.Status == StatusSuccess }

func fail[T any](status Status, err error) Outcome[T] {
	o := Outcome[T]{Status: status}
	if err != nil {
		o.Detail = err.Error()
	}
	return o
}

// statusForError maps an error escaping a stage to a status.
func statusForError(err error) Status {
	var ambiguous *AmbiguousOutcomeError
	switch {
	case errors.Is(err, ErrAuth):
		return StatusAuthFailed
	case errors.Is(err, ErrRegistryUnavailable):
		return StatusRegistryUnavailable
	case errors.Is(err, ErrMalformedRow):
		return StatusMalformedData
	case errors.Is(err, ErrInvalidTime), errors.Is(err, ErrInvalidInput):
		return StatusInvalidInput
	case errors.As(err, &ambiguous):
		return StatusAmbiguousOutcome
	case errors.Is(err, browser.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return StatusTimeout
	default:
		return StatusError
	}
}
