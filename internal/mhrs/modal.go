package mhrs

import (
	"context"
	"fmt"
	"strings"

	"github.com/wolfman30/mhrs-agent/internal/browser"
)

// ModalKind classifies a pop-up by the status code embedded in its text.
type ModalKind string

const (
	ModalNoAppointment ModalKind = "no_appointment"
	ModalBooked        ModalKind = "booked"
	ModalMaxExceeded   ModalKind = "max_exceeded"
	ModalUnknown       ModalKind = "unknown"
)

// ClassifyModal maps modal text to a kind. The max-exceeded code wins over
// every other code because that dialog blocks the page until dismissed.
func ClassifyModal(text string) ModalKind {
	switch {
	case strings.Contains(text, CodeMaxExceeded):
		return ModalMaxExceeded
	case strings.Contains(text, CodeBooked):
		return ModalBooked
	case strings.Contains(text, CodeNoAppointment):
		return ModalNoAppointment
	default:
		return ModalUnknown
	}
}

// ModalInfo describes the pop-up currently on screen, if any.
type ModalInfo struct {
	Present bool      `json:"present"`
	Text    string    `json:"text,omitempty"`
	Kind    ModalKind `json:"kind,omitempty"`
}

// ModalInspector reads and dismisses whatever dialog the portal shows.
type ModalInspector struct {
	driver browser.Driver
}

func NewModalInspector(d browser.Driver) *ModalInspector {
	return &ModalInspector{driver: d}
}

// Text returns the text of the first modal body on the page.
func (m *ModalInspector) Text(ctx context.Context) (ModalInfo, error) {
	text, ok, err := textOf(ctx, m.driver, SelectorModalBody)
	if err != nil {
		return ModalInfo{}, fmt.Errorf("mhrs: read modal: %w", err)
	}
	if !ok {
		return ModalInfo{}, nil
	}
	return ModalInfo{Present: true, Text: text, Kind: ClassifyModal(text)}, nil
}

// AcceptNotification confirms the "notify me when a slot opens" prompt the
// portal shows when a search finds nothing. It reports false when no dialog
// is open.
func (m *ModalInspector) AcceptNotification(ctx context.Context) (bool, error) {
	_, ok, err := m.driver.Find(ctx, SelectorModalSecondButton)
	if err != nil {
		return false, fmt.Errorf("mhrs: find notification modal: %w", err)
	}
	if !ok {
		return false, nil
	}
	if err := m.driver.Click(ctx, SelectorModalSecondButton); err != nil {
		return false, fmt.Errorf("mhrs: accept notification modal: %w", err)
	}
	return true, nil
}

// textOf reads the text of the first element matching selector without waiting.
func textOf(ctx context.Context, d browser.Driver, selector string) (string, bool, error) {
	el, ok, err := d.Find(ctx, selector)
	if err != nil || !ok {
		return "", false, err
	}
	text, err := el.Text(ctx)
	if err != nil {
		return "", false, err
	}
	return text, true, nil
}
