package mhrs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/mhrs-agent/internal/browser"
	"github.com/wolfman30/mhrs-agent/pkg/logging"
)

// ServiceConfig holds what the flows need beyond the driver.
type ServiceConfig struct {
	BaseURL     string
	Credentials Credentials
	// WaitTimeout bounds waits for lists and dropdown options.
	WaitTimeout time.Duration
	// RegistryWaitTimeout bounds the wait for the appointment list, which
	// does not render at all for an account without appointments.
	RegistryWaitTimeout time.Duration
}

// Service runs the portal flows end to end. Every call logs in if needed and
// repeats each narrowing step from the landing page; nothing scraped by one
// call is reused by the next. Calls must not run concurrently.
type Service struct {
	session  *Session
	selector *LocationSelector
	resolver *Resolver
	engine   *BookingEngine
	registry *Registry
	modals   *ModalInspector
	tracer   trace.Tracer
	logger   *logging.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithServiceLogger sets the logger used by the service and its components.
func WithServiceLogger(logger *logging.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTracer overrides the OpenTelemetry tracer.
func WithTracer(t trace.Tracer) ServiceOption {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

func NewService(d browser.Driver, cfg ServiceConfig, opts ...ServiceOption) *Service {
	s := &Service{
		tracer: otel.Tracer("mhrs.internal.mhrs"),
		logger: logging.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.session = NewSession(d, cfg.Credentials, cfg.BaseURL, s.logger)
	s.selector = NewLocationSelector(d, cfg.WaitTimeout, s.logger)
	s.resolver = NewResolver(d, cfg.WaitTimeout, s.logger)
	s.engine = NewBookingEngine(d, cfg.WaitTimeout, s.logger)
	s.registry = NewRegistry(s.session, cfg.RegistryWaitTimeout, s.logger)
	s.modals = NewModalInspector(d)
	return s
}

// Session exposes the login state.
func (s *Service) Session() *Session { return s.session }

func (s *Service) start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "mhrs."+name, trace.WithAttributes(attrs...))
}

// end records the outcome on the span and logs non-successful outcomes.
func end[T any](s *Service, span trace.Span, op string, o Outcome[T]) Outcome[T] {
	span.SetAttributes(attribute.String("mhrs.status", string(o.Status)))
	if failedStatus(o.Status) {
		detail := o.Detail
		if detail == "" {
			detail = string(o.Status)
		}
		span.RecordError(errors.New(detail))
		span.SetStatus(codes.Error, detail)
	}
	if !o.OK() {
		s.logger.Info("service: operation did not succeed", "operation", op, "status", o.Status, "detail", o.Detail)
	}
	span.End()
	return o
}

// failedStatus reports statuses caused by a malfunction rather than by what
// the portal offers.
func failedStatus(st Status) bool {
	switch st {
	case StatusError, StatusTimeout, StatusAuthFailed, StatusRegistryUnavailable, StatusMalformedData:
		return true
	}
	return false
}

func locationAttrs(q LocationQuery) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("mhrs.city", q.City),
		attribute.String("mhrs.district", q.District),
		attribute.String("mhrs.clinic", q.Clinic),
		attribute.String("mhrs.hospital", q.Hospital),
	}
}

// search logs in, opens the general search, fills the location form and
// reads the results. A non-success status ends the composite flow.
func (s *Service) search(ctx context.Context, q LocationQuery) ([]DoctorCandidate, Status, error) {
	if err := s.session.EnsureLoggedIn(ctx); err != nil {
		return nil, StatusAuthFailed, err
	}
	if err := s.session.GoHome(ctx); err != nil {
		return nil, statusForError(err), err
	}
	if err := s.selector.OpenGeneralSearch(ctx); err != nil {
		return nil, statusForError(err), err
	}
	status, err := s.selector.Select(ctx, q)
	if status != StatusSuccess {
		if status == StatusError {
			status = statusForError(err)
		}
		return nil, status, err
	}
	doctors, available, err := s.resolver.FindAvailableDoctors(ctx)
	if err != nil {
		return nil, statusForError(err), err
	}
	if !available {
		return nil, StatusNoAvailableAppointment, nil
	}
	return doctors, StatusSuccess, nil
}

// openDoctor runs search and clicks the doctor's row.
func (s *Service) openDoctor(ctx context.Context, q LocationQuery, doctor string) (Status, error) {
	if strings.TrimSpace(doctor) == "" {
		return StatusInvalidInput, fmt.Errorf("%w: empty doctor", ErrInvalidInput)
	}
	if _, status, err := s.search(ctx, q); status != StatusSuccess {
		return status, err
	}
	ok, err := s.resolver.SelectDoctor(ctx, doctor)
	if err != nil {
		return statusForError(err), err
	}
	if !ok {
		return StatusDoctorNotFound, nil
	}
	return StatusSuccess, nil
}

// openDate runs openDoctor and opens the date tab matching date.
func (s *Service) openDate(ctx context.Context, q LocationQuery, doctor, date string) (Status, error) {
	if strings.TrimSpace(date) == "" {
		return StatusInvalidInput, fmt.Errorf("%w: empty date", ErrInvalidInput)
	}
	if status, err := s.openDoctor(ctx, q, doctor); status != StatusSuccess {
		return status, err
	}
	tab, ok, err := s.resolver.SelectDate(ctx, date)
	if err != nil {
		return statusForError(err), err
	}
	if !ok {
		return StatusDateNotFound, nil
	}
	if err := s.resolver.OpenDate(ctx, tab); err != nil {
		return statusForError(err), err
	}
	return StatusSuccess, nil
}

// CheckDoctors lists the doctors offering appointments for q.
func (s *Service) CheckDoctors(ctx context.Context, q LocationQuery) Outcome[[]DoctorCandidate] {
	ctx, span := s.start(ctx, "check_doctor", locationAttrs(q)...)
	doctors, status, err := s.search(ctx, q)
	if status != StatusSuccess {
		return end(s, span, "check_doctor", fail[[]DoctorCandidate](status, err))
	}
	return end(s, span, "check_doctor", Outcome[[]DoctorCandidate]{Status: StatusSuccess, Data: doctors})
}

// CheckDates lists the open dates of the first doctor matching doctor.
func (s *Service) CheckDates(ctx context.Context, q LocationQuery, doctor string) Outcome[[]AvailableDate] {
	ctx, span := s.start(ctx, "check_dates", append(locationAttrs(q), attribute.String("mhrs.doctor", doctor))...)
	if status, err := s.openDoctor(ctx, q, doctor); status != StatusSuccess {
		return end(s, span, "check_dates", fail[[]AvailableDate](status, err))
	}
	dates, err := s.resolver.ListAvailableDates(ctx)
	if err != nil {
		return end(s, span, "check_dates", fail[[]AvailableDate](statusForError(err), err))
	}
	if len(dates) == 0 {
		return end(s, span, "check_dates", fail[[]AvailableDate](StatusNoDateAvailable, nil))
	}
	return end(s, span, "check_dates", Outcome[[]AvailableDate]{Status: StatusSuccess, Data: dates})
}

// CheckHours lists the hour buckets and exact times open on date.
func (s *Service) CheckHours(ctx context.Context, q LocationQuery, doctor, date string) Outcome[[]HourSlot] {
	ctx, span := s.start(ctx, "check_hours", append(locationAttrs(q),
		attribute.String("mhrs.doctor", doctor),
		attribute.String("mhrs.date", date),
	)...)
	if status, err := s.openDate(ctx, q, doctor, date); status != StatusSuccess {
		return end(s, span, "check_hours", fail[[]HourSlot](status, err))
	}
	hours, err := s.resolver.ListAvailableHours(ctx)
	if err != nil {
		return end(s, span, "check_hours", fail[[]HourSlot](statusForError(err), err))
	}
	if len(hours) == 0 {
		return end(s, span, "check_hours", fail[[]HourSlot](StatusNoAvailableHours, nil))
	}
	return end(s, span, "check_hours", Outcome[[]HourSlot]{Status: StatusSuccess, Data: hours})
}

// Book books clock on date with doctor. The attempt is returned for every
// outcome reached after the date opened, so callers can see how far it got.
// StatusAmbiguousOutcome means the registry must be read to learn whether
// the appointment exists.
func (s *Service) Book(ctx context.Context, q LocationQuery, doctor, date, clock string) Outcome[*BookingAttempt] {
	ctx, span := s.start(ctx, "book", append(locationAttrs(q),
		attribute.String("mhrs.doctor", doctor),
		attribute.String("mhrs.date", date),
		attribute.String("mhrs.time", clock),
	)...)
	if _, err := NormalizeTime(clock); err != nil {
		return end(s, span, "book", fail[*BookingAttempt](StatusInvalidInput, err))
	}
	if status, err := s.openDate(ctx, q, doctor, date); status != StatusSuccess {
		return end(s, span, "book", fail[*BookingAttempt](status, err))
	}
	attempt := s.engine.Book(ctx, clock)
	o := Outcome[*BookingAttempt]{Status: attempt.Status, Data: attempt}
	if attempt.Err != nil {
		o.Detail = attempt.Err.Error()
	}
	span.SetAttributes(attribute.String("mhrs.booking_state", string(attempt.State())))
	return end(s, span, "book", o)
}

// Cancel cancels the appointment matching identifier. Data is true when an
// appointment was cancelled; a match that is only reversible does not count.
func (s *Service) Cancel(ctx context.Context, identifier string) Outcome[bool] {
	ctx, span := s.start(ctx, "cancel", attribute.String("mhrs.identifier", identifier))
	return end(s, span, "cancel", s.registryAction(ctx, identifier, s.registry.Cancel))
}

// Revert reverts the appointment matching identifier.
func (s *Service) Revert(ctx context.Context, identifier string) Outcome[bool] {
	ctx, span := s.start(ctx, "revert", attribute.String("mhrs.identifier", identifier))
	return end(s, span, "revert", s.registryAction(ctx, identifier, s.registry.Revert))
}

func (s *Service) registryAction(ctx context.Context, identifier string, action func(context.Context, string) (bool, error)) Outcome[bool] {
	if err := s.session.EnsureLoggedIn(ctx); err != nil {
		return fail[bool](StatusAuthFailed, err)
	}
	done, err := action(ctx, identifier)
	if err != nil {
		return fail[bool](statusForError(err), err)
	}
	if !done {
		return Outcome[bool]{Status: StatusAppointmentNotFound, Data: false}
	}
	return Outcome[bool]{Status: StatusSuccess, Data: true}
}

// ListActive returns the active appointments. StatusRegistryUnavailable
// means the list could not be read, which is not the same as having none.
func (s *Service) ListActive(ctx context.Context) Outcome[[]ActiveAppointment] {
	ctx, span := s.start(ctx, "list_active")
	if err := s.session.EnsureLoggedIn(ctx); err != nil {
		return end(s, span, "list_active", fail[[]ActiveAppointment](StatusAuthFailed, err))
	}
	appts, err := s.registry.ListActive(ctx)
	if err != nil {
		return end(s, span, "list_active", fail[[]ActiveAppointment](statusForError(err), err))
	}
	return end(s, span, "list_active", Outcome[[]ActiveAppointment]{Status: StatusSuccess, Data: appts})
}

// AcceptNotificationModal confirms the open notification prompt. Data is
// false when no prompt was open.
func (s *Service) AcceptNotificationModal(ctx context.Context) Outcome[bool] {
	ctx, span := s.start(ctx, "accept_notification_modal")
	if err := s.session.EnsureLoggedIn(ctx); err != nil {
		return end(s, span, "accept_notification_modal", fail[bool](StatusAuthFailed, err))
	}
	accepted, err := s.modals.AcceptNotification(ctx)
	if err != nil {
		return end(s, span, "accept_notification_modal", fail[bool](statusForError(err), err))
	}
	return end(s, span, "accept_notification_modal", Outcome[bool]{Status: StatusSuccess, Data: accepted})
}

// ModalText describes the pop-up currently on screen.
func (s *Service) ModalText(ctx context.Context) Outcome[ModalInfo] {
	ctx, span := s.start(ctx, "get_modal_text")
	if err := s.session.EnsureLoggedIn(ctx); err != nil {
		return end(s, span, "get_modal_text", fail[ModalInfo](StatusAuthFailed, err))
	}
	info, err := s.modals.Text(ctx)
	if err != nil {
		return end(s, span, "get_modal_text", fail[ModalInfo](statusForError(err), err))
	}
	return end(s, span, "get_modal_text", Outcome[ModalInfo]{Status: StatusSuccess, Data: info})
}
