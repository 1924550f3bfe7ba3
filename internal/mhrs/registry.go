package mhrs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wolfman30/mhrs-agent/internal/browser"
	"github.com/wolfman30/mhrs-agent/pkg/logging"
)

// ActiveAppointment is one row of the landing page appointment list.
type ActiveAppointment struct {
	DateTime   string `json:"datetime"`
	Status     string `json:"status"`
	Note       string `json:"note"`
	Hospital   string `json:"hospital"`
	Department string `json:"department"`
	Clinic     string `json:"clinic"`
	Doctor     string `json:"doctor"`
}

const appointmentRowLines = 7

// ParseActiveAppointment maps the seven text lines of a registry row to an
// ActiveAppointment. A shorter row is a *MalformedRowError.
func ParseActiveAppointment(text string) (ActiveAppointment, error) {
	lines := splitLines(text)
	if len(lines) < appointmentRowLines {
		return ActiveAppointment{}, &MalformedRowError{Kind: "appointment", Want: appointmentRowLines, Got: len(lines), Raw: text}
	}
	return ActiveAppointment{
		DateTime:   lines[0],
		Status:     lines[1],
		Note:       lines[2],
		Hospital:   lines[3],
		Department: lines[4],
		Clinic:     lines[5],
		Doctor:     lines[6],
	}, nil
}

// Registry reads and changes the signed-in user's appointments.
type Registry struct {
	session *Session
	driver  browser.Driver
	// wait bounds how long the list may take to appear; an account without
	// appointments never renders it.
	wait   time.Duration
	logger *logging.Logger
}

func NewRegistry(s *Session, wait time.Duration, logger *logging.Logger) *Registry {
	if logger == nil {
		logger = logging.Default()
	}
	return &Registry{session: s, driver: s.driver, wait: wait, logger: logger}
}

// ListActive returns every appointment on the landing page. A list that does
// not render is ErrRegistryUnavailable, never an empty slice.
func (r *Registry) ListActive(ctx context.Context) ([]ActiveAppointment, error) {
	rows, err := r.rows(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ActiveAppointment, 0, len(rows))
	for _, row := range rows {
		text, err := row.Text(ctx)
		if err != nil {
			return nil, fmt.Errorf("mhrs: read appointment row: %w", err)
		}
		appt, err := ParseActiveAppointment(text)
		if err != nil {
			return nil, err
		}
		out = append(out, appt)
	}
	return out, nil
}

// Cancel cancels the first appointment whose text contains identifier.
// Reversible appointments are skipped; they are undone with Revert.
func (r *Registry) Cancel(ctx context.Context, identifier string) (bool, error) {
	row, ok, err := r.find(ctx, identifier, true)
	if err != nil || !ok {
		return false, err
	}
	if err := r.clickIn(ctx, row, SelectorRowCancel); err != nil {
		return false, fmt.Errorf("mhrs: cancel appointment: %w", err)
	}
	// Verify, then acknowledge.
	for i := 0; i < 2; i++ {
		if err := r.driver.Click(ctx, SelectorDialogPrimary); err != nil {
			return false, fmt.Errorf("mhrs: confirm cancellation: %w", err)
		}
	}
	r.logger.Info("registry: appointment cancelled", "identifier", identifier)
	return true, nil
}

// Revert undoes the first appointment whose text contains identifier.
func (r *Registry) Revert(ctx context.Context, identifier string) (bool, error) {
	row, ok, err := r.find(ctx, identifier, false)
	if err != nil || !ok {
		return false, err
	}
	if err := r.clickIn(ctx, row, SelectorRowPrimary); err != nil {
		return false, fmt.Errorf("mhrs: revert appointment: %w", err)
	}
	if err := r.driver.Click(ctx, SelectorModalFirstButton); err != nil {
		return false, fmt.Errorf("mhrs: confirm revert: %w", err)
	}
	r.logger.Info("registry: appointment reverted", "identifier", identifier)
	return true, nil
}

func (r *Registry) rows(ctx context.Context) ([]browser.Element, error) {
	if err := r.session.GoHome(ctx); err != nil {
		return nil, err
	}
	if err := r.driver.WaitInvisible(ctx, SelectorLoading); err != nil {
		return nil, fmt.Errorf("mhrs: wait home page: %w", err)
	}
	rows, err := r.driver.WaitAll(ctx, SelectorListRows, r.wait)
	if errors.Is(err, browser.ErrTimeout) {
		return nil, fmt.Errorf("%w: %v", ErrRegistryUnavailable, err)
	}
	if err != nil {
		return nil, fmt.Errorf("mhrs: list appointments: %w", err)
	}
	return rows, nil
}

func (r *Registry) find(ctx context.Context, identifier string, skipReversible bool) (browser.Element, bool, error) {
	if strings.TrimSpace(identifier) == "" {
		return nil, false, fmt.Errorf("%w: empty identifier", ErrInvalidInput)
	}
	rows, err := r.rows(ctx)
	if err != nil {
		return nil, false, err
	}
	for _, row := range rows {
		text, err := row.Text(ctx)
		if err != nil {
			return nil, false, fmt.Errorf("mhrs: read appointment row: %w", err)
		}
		if !containsLower(text, identifier) {
			continue
		}
		if skipReversible && strings.Contains(text, ReversibleLabel) {
			continue
		}
		return row, true, nil
	}
	return nil, false, nil
}

// clickIn clicks the first descendant of row matching selector.
func (r *Registry) clickIn(ctx context.Context, row browser.Element, selector string) error {
	buttons, err := row.FindAll(ctx, selector)
	if err != nil {
		return err
	}
	if len(buttons) == 0 {
		return fmt.Errorf("%w: %s not in row", browser.ErrNotClickable, selector)
	}
	return r.driver.ClickElement(ctx, buttons[0])
}
