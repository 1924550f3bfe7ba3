package mhrs

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/wolfman30/mhrs-agent/internal/browser"
	"github.com/wolfman30/mhrs-agent/pkg/logging"
)

// BookingState is a step of a single booking attempt.
type BookingState string

const (
	StateIdle          BookingState = "IDLE"
	StateHourSelected  BookingState = "HOUR_SELECTED"
	StateSlotSelected  BookingState = "SLOT_SELECTED"
	StateAcceptClicked BookingState = "ACCEPT_CLICKED"
	StateVerified      BookingState = "VERIFIED"
	StateOutcomeKnown  BookingState = "OUTCOME_KNOWN"
)

// BookingAttempt records how far a booking got and how it ended.
type BookingAttempt struct {
	Time      string         `json:"time"`
	States    []BookingState `json:"states"`
	Status    Status         `json:"status"`
	ModalText string         `json:"modal_text,omitempty"`
	Err       error          `json:"-"`
}

// State returns the last state reached.
func (a *BookingAttempt) State() BookingState {
	return a.States[len(a.States)-1]
}

func (a *BookingAttempt) advance(s BookingState) {
	a.States = append(a.States, s)
}

func (a *BookingAttempt) finish(status Status, err error) *BookingAttempt {
	a.Status = status
	a.Err = err
	return a
}

// BookingEngine books a time on the date currently open in the browser.
type BookingEngine struct {
	driver  browser.Driver
	timeout time.Duration
	logger  *logging.Logger
}

func NewBookingEngine(d browser.Driver, timeout time.Duration, logger *logging.Logger) *BookingEngine {
	if logger == nil {
		logger = logging.Default()
	}
	return &BookingEngine{driver: d, timeout: timeout, logger: logger}
}

// Book selects the hour bucket and exact slot for clock ("15:40"), runs the
// accept/verify dialogs and classifies the dialog the portal answers with.
// A driver failure at any step ends the attempt with StatusError.
func (e *BookingEngine) Book(ctx context.Context, clock string) *BookingAttempt {
	a := &BookingAttempt{Time: clock, States: []BookingState{StateIdle}}

	slot, err := NormalizeTime(clock)
	if err != nil {
		return a.finish(StatusInvalidInput, err)
	}
	hour := ParseMainHour(clock)

	found, err := e.selectMainHour(ctx, hour)
	if err != nil {
		return a.finish(StatusError, fmt.Errorf("mhrs: select hour %s: %w", hour, err))
	}
	if !found {
		e.logger.Info("booking: hour bucket not found", "hour", hour)
		return a.finish(StatusNoAvailableHours, nil)
	}
	a.advance(StateHourSelected)

	found, err = e.selectSubSlot(ctx, slot)
	if err != nil {
		return a.finish(StatusError, fmt.Errorf("mhrs: select slot %s: %w", slot, err))
	}
	if !found {
		e.logger.Info("booking: slot no longer offered", "slot", slot)
		return a.finish(StatusNoAvailableHours, nil)
	}
	a.advance(StateSlotSelected)

	if err := e.driver.Click(ctx, SelectorAcceptButton); err != nil {
		return a.finish(StatusError, fmt.Errorf("mhrs: accept appointment: %w", err))
	}
	a.advance(StateAcceptClicked)

	if err := e.driver.Click(ctx, SelectorVerifyButton); err != nil {
		return a.finish(StatusError, fmt.Errorf("mhrs: verify appointment: %w", err))
	}
	a.advance(StateVerified)

	status, text, err := e.classifyOutcome(ctx)
	a.ModalText = text
	if status == StatusError {
		return a.finish(status, err)
	}
	a.advance(StateOutcomeKnown)
	e.logger.Info("booking: outcome", "slot", slot, "status", status)
	return a.finish(status, err)
}

func (e *BookingEngine) selectMainHour(ctx context.Context, hour string) (bool, error) {
	buckets, err := e.driver.WaitAll(ctx, SelectorHourBuckets, e.timeout)
	if err != nil {
		return false, err
	}
	for _, bucket := range buckets {
		text, err := bucket.Text(ctx)
		if err != nil {
			return false, err
		}
		if !sameHour(splitLines(text)[0], hour) {
			continue
		}
		if err := e.driver.ClickElement(ctx, bucket); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// selectSubSlot clicks the time button of the expanded bucket. A slot taken
// by someone else since the listing simply is not there any more.
func (e *BookingEngine) selectSubSlot(ctx context.Context, slot string) (bool, error) {
	buttons, err := e.driver.FindAll(ctx, SelectorActiveSlots)
	if err != nil {
		return false, err
	}
	for _, b := range buttons {
		text, err := b.Text(ctx)
		if err != nil {
			return false, err
		}
		if !containsLower(text, slot) {
			continue
		}
		return true, e.driver.ClickElement(ctx, b)
	}
	return false, nil
}

// classifyOutcome reads the dialogs shown after verification. The quota code
// is looked for before the success code since that dialog blocks the page.
func (e *BookingEngine) classifyOutcome(ctx context.Context) (Status, string, error) {
	var texts []string
	for _, sel := range []string{SelectorMaxExceeded, SelectorConfirmContent, SelectorModalBody} {
		text, ok, err := textOf(ctx, e.driver, sel)
		if err != nil {
			return StatusError, "", fmt.Errorf("mhrs: read booking modal: %w", err)
		}
		if ok && !slices.Contains(texts, text) {
			texts = append(texts, text)
		}
	}
	if len(texts) == 0 {
		return StatusBookingFailed, "", nil
	}
	text := strings.Join(texts, "\n")

	switch ClassifyModal(text) {
	case ModalMaxExceeded:
		if err := e.driver.Click(ctx, SelectorModalFirstButton); err != nil {
			return StatusError, text, fmt.Errorf("mhrs: dismiss quota modal: %w", err)
		}
		return StatusMaxAppointmentsExceeded, text, nil
	case ModalBooked:
		if err := e.driver.Click(ctx, SelectorModalFirstButton); err != nil {
			return StatusError, text, fmt.Errorf("mhrs: confirm booking modal: %w", err)
		}
		if err := e.driver.WaitInvisible(ctx, SelectorModalWrap); err != nil {
			return StatusError, text, fmt.Errorf("mhrs: wait booking modal: %w", err)
		}
		return StatusSuccess, text, nil
	default:
		e.logger.Warn("booking: unrecognised modal", "text", text)
		return StatusAmbiguousOutcome, text, &AmbiguousOutcomeError{ModalText: text}
	}
}
