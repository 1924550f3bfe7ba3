package mhrs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wolfman30/mhrs-agent/internal/browser"
	"github.com/wolfman30/mhrs-agent/pkg/logging"
)

// DoctorCandidate is one row of the search results.
type DoctorCandidate struct {
	Name         string `json:"doctor"`
	EarliestDate string `json:"earliest_date"`
	DaysLeft     string `json:"days_left"`
	Hospital     string `json:"hospital"`
	Department   string `json:"department"`
	Clinic       string `json:"clinic"`
	// Raw is the whole row text, which doctor selection matches against.
	Raw string `json:"-"`
}

const doctorRowLines = 7

// ParseDoctorRow splits a search result row. Line 1 is a label the portal
// prints between the name and the earliest date and is not kept.
func ParseDoctorRow(text string) (DoctorCandidate, error) {
	lines := splitLines(text)
	if len(lines) < doctorRowLines {
		return DoctorCandidate{}, &MalformedRowError{Kind: "doctor", Want: doctorRowLines, Got: len(lines), Raw: text}
	}
	return DoctorCandidate{
		Name:         lines[0],
		EarliestDate: lines[2],
		DaysLeft:     lines[3],
		Hospital:     lines[4],
		Department:   lines[5],
		Clinic:       lines[6],
		Raw:          text,
	}, nil
}

// AvailableDate is one date tab of a doctor's calendar.
type AvailableDate struct {
	Label string `json:"date"`
}

// HourSlot is an hour bucket with the exact times listed under it.
type HourSlot struct {
	MainHour string   `json:"main_hour"`
	SubHours []string `json:"sub_hours"`
}

// Resolver narrows search results down to a doctor, a date and an hour.
type Resolver struct {
	driver  browser.Driver
	timeout time.Duration
	logger  *logging.Logger
}

func NewResolver(d browser.Driver, timeout time.Duration, logger *logging.Logger) *Resolver {
	if logger == nil {
		logger = logging.Default()
	}
	return &Resolver{driver: d, timeout: timeout, logger: logger}
}

// FindAvailableDoctors scrapes the search results. When the portal answers
// the search with its "no appointment" dialog the dialog is dismissed and
// available is false.
func (r *Resolver) FindAvailableDoctors(ctx context.Context) (doctors []DoctorCandidate, available bool, err error) {
	text, ok, err := textOf(ctx, r.driver, SelectorModalBody)
	if err != nil {
		return nil, false, fmt.Errorf("mhrs: check availability modal: %w", err)
	}
	if ok && ClassifyModal(text) == ModalNoAppointment {
		if err := r.driver.Click(ctx, SelectorModalFirstButton); err != nil {
			return nil, false, fmt.Errorf("mhrs: dismiss availability modal: %w", err)
		}
		r.logger.Info("resolver: no appointment available")
		return nil, false, nil
	}

	rows, err := r.driver.WaitAll(ctx, SelectorListRows, r.timeout)
	if err != nil {
		return nil, false, fmt.Errorf("mhrs: list doctors: %w", err)
	}
	doctors = make([]DoctorCandidate, 0, len(rows))
	for _, row := range rows {
		text, err := row.Text(ctx)
		if err != nil {
			return nil, false, fmt.Errorf("mhrs: read doctor row: %w", err)
		}
		doc, err := ParseDoctorRow(text)
		if err != nil {
			return nil, false, err
		}
		doctors = append(doctors, doc)
	}
	return doctors, true, nil
}

// SelectDoctor clicks the first result row whose text contains name. Any
// displayed attribute can match, not only the doctor's name.
func (r *Resolver) SelectDoctor(ctx context.Context, name string) (bool, error) {
	rows, err := r.driver.WaitAll(ctx, SelectorListRows, r.timeout)
	if err != nil {
		return false, fmt.Errorf("mhrs: select doctor: %w", err)
	}
	row, ok, err := firstMatch(ctx, rows, name)
	if err != nil || !ok {
		return false, err
	}
	if err := r.driver.ClickElement(ctx, row); err != nil {
		return false, fmt.Errorf("mhrs: select doctor: %w", err)
	}
	return true, nil
}

// ListAvailableDates returns the labels of the non-empty date tabs.
func (r *Resolver) ListAvailableDates(ctx context.Context) ([]AvailableDate, error) {
	if err := r.driver.WaitInvisible(ctx, SelectorLoading); err != nil {
		return nil, fmt.Errorf("mhrs: list dates: %w", err)
	}
	tabs, err := r.driver.WaitAll(ctx, SelectorDateTabs, r.timeout)
	if err != nil {
		return nil, fmt.Errorf("mhrs: list dates: %w", err)
	}
	var dates []AvailableDate
	for _, tab := range tabs {
		text, err := tab.Text(ctx)
		if err != nil {
			return nil, fmt.Errorf("mhrs: read date tab: %w", err)
		}
		if label := strings.TrimSpace(text); label != "" {
			dates = append(dates, AvailableDate{Label: label})
		}
	}
	return dates, nil
}

// SelectDate finds the date tab whose label contains query. The label is
// matched as text, so "30.04" or a weekday name both work.
func (r *Resolver) SelectDate(ctx context.Context, query string) (browser.Element, bool, error) {
	tabs, err := r.driver.WaitAll(ctx, SelectorDateTabs, r.timeout)
	if err != nil {
		return nil, false, fmt.Errorf("mhrs: select date: %w", err)
	}
	tab, ok, err := firstMatch(ctx, tabs, query)
	if err != nil {
		return nil, false, fmt.Errorf("mhrs: select date: %w", err)
	}
	return tab, ok, nil
}

// OpenDate clicks a tab returned by SelectDate and waits for its hour grid.
func (r *Resolver) OpenDate(ctx context.Context, tab browser.Element) error {
	if err := r.driver.ClickElement(ctx, tab); err != nil {
		return fmt.Errorf("mhrs: open date: %w", err)
	}
	return nil
}

// ListAvailableHours expands every hour bucket of the open date and reads
// the time buttons under it. Buckets render their buttons only once expanded,
// and buckets without buttons are left out.
func (r *Resolver) ListAvailableHours(ctx context.Context) ([]HourSlot, error) {
	if err := r.driver.WaitInvisible(ctx, SelectorLoading); err != nil {
		return nil, fmt.Errorf("mhrs: list hours: %w", err)
	}
	buckets, err := r.driver.WaitAll(ctx, SelectorHourBuckets, r.timeout)
	if err != nil {
		return nil, fmt.Errorf("mhrs: list hours: %w", err)
	}

	var slots []HourSlot
	for _, bucket := range buckets {
		header, err := bucket.Text(ctx)
		if err != nil {
			return nil, fmt.Errorf("mhrs: read hour bucket: %w", err)
		}
		if err := r.driver.ClickElement(ctx, bucket); err != nil {
			return nil, fmt.Errorf("mhrs: expand hour bucket: %w", err)
		}
		buttons, err := bucket.FindAll(ctx, SelectorSlotButtons)
		if err != nil {
			return nil, fmt.Errorf("mhrs: list sub hours: %w", err)
		}
		var subs []string
		for _, b := range buttons {
			text, err := b.Text(ctx)
			if err != nil {
				return nil, fmt.Errorf("mhrs: read sub hour: %w", err)
			}
			if text = strings.TrimSpace(text); text != "" {
				subs = append(subs, text)
			}
		}
		if len(subs) == 0 {
			continue
		}
		slots = append(slots, HourSlot{MainHour: strings.TrimSpace(splitLines(header)[0]), SubHours: subs})
	}
	return slots, nil
}

// firstMatch returns the first element whose lower-normalized text contains query.
func firstMatch(ctx context.Context, els []browser.Element, query string) (browser.Element, bool, error) {
	for _, el := range els {
		text, err := el.Text(ctx)
		if err != nil {
			return nil, false, err
		}
		if containsLower(text, query) {
			return el, true, nil
		}
	}
	return nil, false, nil
}
