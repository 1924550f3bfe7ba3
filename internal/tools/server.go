// Package tools exposes the MHRS flows as MCP tools.
package tools

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wolfman30/mhrs-agent/internal/mhrs"
	"github.com/wolfman30/mhrs-agent/internal/observability/metrics"
	"github.com/wolfman30/mhrs-agent/pkg/logging"
)

// ServerName is the MCP implementation name announced to clients.
const ServerName = "mhrs"

// Portal is the set of flows the tools call into. *mhrs.Service satisfies it.
type Portal interface {
	CheckDoctors(ctx context.Context, q mhrs.LocationQuery) mhrs.Outcome[[]mhrs.DoctorCandidate]
	CheckDates(ctx context.Context, q mhrs.LocationQuery, doctor string) mhrs.Outcome[[]mhrs.AvailableDate]
	CheckHours(ctx context.Context, q mhrs.LocationQuery, doctor, date string) mhrs.Outcome[[]mhrs.HourSlot]
	Book(ctx context.Context, q mhrs.LocationQuery, doctor, date, clock string) mhrs.Outcome[*mhrs.BookingAttempt]
	Cancel(ctx context.Context, identifier string) mhrs.Outcome[bool]
	Revert(ctx context.Context, identifier string) mhrs.Outcome[bool]
	ListActive(ctx context.Context) mhrs.Outcome[[]mhrs.ActiveAppointment]
	AcceptNotificationModal(ctx context.Context) mhrs.Outcome[bool]
	ModalText(ctx context.Context) mhrs.Outcome[mhrs.ModalInfo]
}

var _ Portal = (*mhrs.Service)(nil)

// Tools wraps a Portal for MCP tool handlers. The portal drives a single
// browser tab, so calls are serialized.
type Tools struct {
	portal  Portal
	metrics *metrics.ToolMetrics
	logger  *logging.Logger

	mu sync.Mutex
}

// Option configures Tools.
type Option func(*Tools)

// WithMetrics records call counts and durations.
func WithMetrics(m *metrics.ToolMetrics) Option {
	return func(t *Tools) { t.metrics = m }
}

// WithLogger sets the logger used for call records.
func WithLogger(logger *logging.Logger) Option {
	return func(t *Tools) {
		if logger != nil {
			t.logger = logger
		}
	}
}

func New(portal Portal, opts ...Option) *Tools {
	t := &Tools{portal: portal, logger: logging.Default()}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// NewServer builds an MCP server with every tool registered.
func NewServer(t *Tools, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: ServerName, Version: version}, nil)
	Register(server, t)
	return server
}

// Serve runs the server on stdio until ctx is cancelled or the client disconnects.
func Serve(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}

// LocationInput narrows the search to one hospital clinic.
type LocationInput struct {
	City      string `json:"city" jsonschema:"City name as shown in the portal, e.g. İZMİR"`
	District  string `json:"district" jsonschema:"District within the city, e.g. URLA"`
	Specialty string `json:"specialty" jsonschema:"Clinic or specialty name, e.g. CİLDİYE"`
	Hospital  string `json:"hospital" jsonschema:"Hospital name or a distinctive part of it"`
}

func (in LocationInput) query() mhrs.LocationQuery {
	return mhrs.LocationQuery{City: in.City, District: in.District, Clinic: in.Specialty, Hospital: in.Hospital}
}

type DatesInput struct {
	City      string `json:"city" jsonschema:"City name as shown in the portal"`
	District  string `json:"district" jsonschema:"District within the city"`
	Specialty string `json:"specialty" jsonschema:"Clinic or specialty name"`
	Hospital  string `json:"hospital" jsonschema:"Hospital name or a distinctive part of it"`
	Doctor    string `json:"doctor" jsonschema:"Part of the doctor's name, matched case-insensitively"`
}

func (in DatesInput) query() mhrs.LocationQuery {
	return mhrs.LocationQuery{City: in.City, District: in.District, Clinic: in.Specialty, Hospital: in.Hospital}
}

type HoursInput struct {
	City      string `json:"city" jsonschema:"City name as shown in the portal"`
	District  string `json:"district" jsonschema:"District within the city"`
	Specialty string `json:"specialty" jsonschema:"Clinic or specialty name"`
	Hospital  string `json:"hospital" jsonschema:"Hospital name or a distinctive part of it"`
	Doctor    string `json:"doctor" jsonschema:"Part of the doctor's name, matched case-insensitively"`
	Date      string `json:"date" jsonschema:"Date prefix as listed by check_dates, e.g. 30.04.2025"`
}

func (in HoursInput) query() mhrs.LocationQuery {
	return mhrs.LocationQuery{City: in.City, District: in.District, Clinic: in.Specialty, Hospital: in.Hospital}
}

type BookInput struct {
	City      string `json:"city" jsonschema:"City name as shown in the portal"`
	District  string `json:"district" jsonschema:"District within the city"`
	Specialty string `json:"specialty" jsonschema:"Clinic or specialty name"`
	Hospital  string `json:"hospital" jsonschema:"Hospital name or a distinctive part of it"`
	Doctor    string `json:"doctor" jsonschema:"Part of the doctor's name, matched case-insensitively"`
	Date      string `json:"date" jsonschema:"Date prefix as listed by check_dates"`
	Time      string `json:"time" jsonschema:"Slot time as HH:MM, e.g. 15:40"`
}

func (in BookInput) query() mhrs.LocationQuery {
	return mhrs.LocationQuery{City: in.City, District: in.District, Clinic: in.Specialty, Hospital: in.Hospital}
}

type AppointmentInput struct {
	Identifier string `json:"identifier" jsonschema:"Text identifying the appointment row, usually the doctor's name or the date"`
}

type NoInput struct{}

// Register adds all portal tools to server.
func Register(server *mcp.Server, t *Tools) {
	mcp.AddTool(server, &mcp.Tool{
		Name: "check_doctor",
		Description: `Search a hospital clinic and list doctors with open appointments.
Example: check_doctor {city: "İZMİR", district: "URLA", specialty: "CİLDİYE", hospital: "URLA"}`,
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in LocationInput) (*mcp.CallToolResult, mhrs.Outcome[[]mhrs.DoctorCandidate], error) {
		return call(ctx, t, "check_doctor", func(ctx context.Context) mhrs.Outcome[[]mhrs.DoctorCandidate] {
			return t.portal.CheckDoctors(ctx, in.query())
		})
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "check_dates",
		Description: "List the dates a doctor has open slots on. Re-runs the clinic search first.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in DatesInput) (*mcp.CallToolResult, mhrs.Outcome[[]mhrs.AvailableDate], error) {
		return call(ctx, t, "check_dates", func(ctx context.Context) mhrs.Outcome[[]mhrs.AvailableDate] {
			return t.portal.CheckDates(ctx, in.query(), in.Doctor)
		})
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "check_hours",
		Description: "List hour buckets and their slot times for a doctor on a date.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in HoursInput) (*mcp.CallToolResult, mhrs.Outcome[[]mhrs.HourSlot], error) {
		return call(ctx, t, "check_hours", func(ctx context.Context) mhrs.Outcome[[]mhrs.HourSlot] {
			return t.portal.CheckHours(ctx, in.query(), in.Doctor, in.Date)
		})
	})

	mcp.AddTool(server, &mcp.Tool{
		Name: "book",
		Description: `Book a slot. Status is success only when the portal confirms the booking.
Example: book {city: "İZMİR", district: "URLA", specialty: "CİLDİYE", hospital: "URLA", doctor: "eylem", date: "30.04.2025", time: "15:40"}`,
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in BookInput) (*mcp.CallToolResult, mhrs.Outcome[*mhrs.BookingAttempt], error) {
		return call(ctx, t, "book", func(ctx context.Context) mhrs.Outcome[*mhrs.BookingAttempt] {
			return t.portal.Book(ctx, in.query(), in.Doctor, in.Date, in.Time)
		})
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "cancel",
		Description: "Cancel the first active appointment whose row contains identifier. Reversible appointments are skipped.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in AppointmentInput) (*mcp.CallToolResult, mhrs.Outcome[bool], error) {
		return call(ctx, t, "cancel", func(ctx context.Context) mhrs.Outcome[bool] {
			return t.portal.Cancel(ctx, in.Identifier)
		})
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "revert",
		Description: "Undo a reversible appointment whose row contains identifier.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in AppointmentInput) (*mcp.CallToolResult, mhrs.Outcome[bool], error) {
		return call(ctx, t, "revert", func(ctx context.Context) mhrs.Outcome[bool] {
			return t.portal.Revert(ctx, in.Identifier)
		})
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_active",
		Description: "List the account's active appointments.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, mhrs.Outcome[[]mhrs.ActiveAppointment], error) {
		return call(ctx, t, "list_active", t.portal.ListActive)
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "accept_notification_modal",
		Description: "Press the confirm button of an open notification dialog. data is false when no dialog was open.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, mhrs.Outcome[bool], error) {
		return call(ctx, t, "accept_notification_modal", t.portal.AcceptNotificationModal)
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_modal_text_if_present",
		Description: "Read the text of the open dialog, if any, and classify its portal code.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, mhrs.Outcome[mhrs.ModalInfo], error) {
		return call(ctx, t, "get_modal_text_if_present", t.portal.ModalText)
	})
}

// call runs fn under the session lock and records the outcome. Failures are
// reported in the structured status, never as protocol errors.
func call[T any](ctx context.Context, t *Tools, tool string, fn func(context.Context) mhrs.Outcome[T]) (*mcp.CallToolResult, mhrs.Outcome[T], error) {
	callID := uuid.NewString()
	logger := t.logger.With("tool", tool, "call_id", callID)

	t.mu.Lock()
	defer t.mu.Unlock()

	logger.Info("tool call started")
	start := time.Now()
	out := fn(ctx)
	elapsed := time.Since(start)

	t.metrics.ObserveCall(tool, string(out.Status), elapsed)
	logger.Info("tool call finished",
		"status", out.Status,
		"duration_ms", elapsed.Milliseconds(),
	)
	return nil, out, nil
}
