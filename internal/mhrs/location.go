package mhrs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wolfman30/mhrs-agent/internal/browser"
	"github.com/wolfman30/mhrs-agent/pkg/logging"
)

// LocationQuery narrows the general search. Every field is a free-text
// fragment matched against the portal's dropdown options.
type LocationQuery struct {
	City     string `json:"city"`
	District string `json:"district"`
	Clinic   string `json:"clinic"`
	Hospital string `json:"hospital"`
}

// locationStage is one cascading dropdown of the search form.
type locationStage struct {
	name     string
	control  string
	options  string
	notFound Status
	query    func(LocationQuery) string
}

// Order matters: each dropdown is populated by the selection above it.
var locationStages = []locationStage{
	{"city", SelectorCityControl, SelectorCityOptions, StatusCityNotFound, func(q LocationQuery) string { return q.City }},
	{"district", SelectorDistrictControl, SelectorDistrictOptions, StatusDistrictNotFound, func(q LocationQuery) string { return q.District }},
	{"clinic", SelectorClinicControl, SelectorClinicOptions, StatusClinicNotFound, func(q LocationQuery) string { return q.Clinic }},
	{"hospital", SelectorHospitalControl, SelectorHospitalOptions, StatusHospitalNotFound, func(q LocationQuery) string { return q.Hospital }},
}

// LocationSelector drives the city → district → clinic → hospital form.
type LocationSelector struct {
	driver  browser.Driver
	timeout time.Duration
	logger  *logging.Logger
}

func NewLocationSelector(d browser.Driver, timeout time.Duration, logger *logging.Logger) *LocationSelector {
	if logger == nil {
		logger = logging.Default()
	}
	return &LocationSelector{driver: d, timeout: timeout, logger: logger}
}

// OpenGeneralSearch moves from the landing page to the general search form.
func (l *LocationSelector) OpenGeneralSearch(ctx context.Context) error {
	d := l.driver
	for _, step := range []func() error{
		func() error { return d.WaitInvisible(ctx, SelectorLoading) },
		func() error { return d.WaitInvisible(ctx, SelectorModalWrap) },
		func() error { return d.Click(ctx, SelectorPatientCard) },
		func() error { return d.WaitInvisible(ctx, SelectorLoading) },
		func() error { return d.Click(ctx, SelectorGeneralSearch) },
		func() error { return d.WaitInvisible(ctx, SelectorLoading) },
		func() error { return d.WaitInvisible(ctx, SelectorModalWrap) },
	} {
		if err := step(); err != nil {
			return fmt.Errorf("mhrs: open general search: %w", err)
		}
	}
	return nil
}

// Select fills the four dropdowns in order and runs the search. It stops at
// the first stage without a matching option and returns that stage's
// not-found status. A driver failure returns StatusError with the cause.
func (l *LocationSelector) Select(ctx context.Context, q LocationQuery) (Status, error) {
	for _, st := range locationStages {
		if strings.TrimSpace(st.query(q)) == "" {
			return StatusInvalidInput, fmt.Errorf("%w: empty %s", ErrInvalidInput, st.name)
		}
	}

	for _, st := range locationStages {
		found, err := l.selectOption(ctx, st, st.query(q))
		if err != nil {
			l.logger.Warn("selector: stage failed", "stage", st.name, "error", err)
			return StatusError, fmt.Errorf("mhrs: select %s: %w", st.name, err)
		}
		if !found {
			l.logger.Info("selector: no matching option", "stage", st.name, "query", st.query(q))
			return st.notFound, nil
		}
	}

	if err := l.driver.Click(ctx, SelectorSearchButton); err != nil {
		return StatusError, fmt.Errorf("mhrs: run search: %w", err)
	}
	if err := l.driver.WaitInvisible(ctx, SelectorLoading); err != nil {
		return StatusError, fmt.Errorf("mhrs: run search: %w", err)
	}
	return StatusSuccess, nil
}

// selectOption opens the stage's dropdown and clicks the first option whose
// upper-normalized text contains the query.
func (l *LocationSelector) selectOption(ctx context.Context, st locationStage, query string) (bool, error) {
	d := l.driver
	if err := d.WaitInvisible(ctx, SelectorLoading); err != nil {
		return false, err
	}
	if err := d.Click(ctx, st.control); err != nil {
		return false, err
	}
	if err := d.WaitInvisible(ctx, SelectorLoading); err != nil {
		return false, err
	}
	options, err := d.WaitAll(ctx, st.options, l.timeout)
	if err != nil {
		return false, err
	}

	for _, opt := range options {
		text, err := opt.Text(ctx)
		if err != nil {
			return false, err
		}
		if !containsUpper(text, query) {
			continue
		}
		return true, d.ClickElement(ctx, opt)
	}
	return false, nil
}
