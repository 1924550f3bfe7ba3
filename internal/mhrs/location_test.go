package mhrs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/mhrs-agent/internal/browser"
	"github.com/wolfman30/mhrs-agent/pkg/logging"
)

func newTestSelector(p *testPortal) *LocationSelector {
	return NewLocationSelector(p.f, time.Second, logging.Discard())
}

func TestLocationSelector_SelectMatchesCaseInsensitively(t *testing.T) {
	p := newTestPortal()
	l := newTestSelector(p)

	status, err := l.Select(context.Background(), urlaCildiye)
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, status)
	assert.Equal(t, 1, p.f.Count("click", SelectorSearchButton))

	var picked []string
	for _, c := range p.f.Calls() {
		if c.Op == "click_node" {
			picked = append(picked, c.Selector)
		}
	}
	assert.Equal(t, []string{"İZMİR", "URLA", "CİLDİYE (DERMATOLOJİ)", "URLA DEVLET HASTANESİ"}, picked)
}

func TestLocationSelector_StagesRunInOrder(t *testing.T) {
	p := newTestPortal()
	l := newTestSelector(p)

	_, err := l.Select(context.Background(), urlaCildiye)
	require.NoError(t, err)

	var controls []string
	for _, c := range p.f.Calls() {
		if c.Op != "click" {
			continue
		}
		switch c.Selector {
		case SelectorCityControl, SelectorDistrictControl, SelectorClinicControl, SelectorHospitalControl, SelectorSearchButton:
			controls = append(controls, c.Selector)
		}
	}
	assert.Equal(t, []string{
		SelectorCityControl, SelectorDistrictControl, SelectorClinicControl, SelectorHospitalControl, SelectorSearchButton,
	}, controls)
}

func TestLocationSelector_FirstFailingStageShortCircuits(t *testing.T) {
	tests := []struct {
		name      string
		query     LocationQuery
		want      Status
		untouched []string
	}{
		{
			name:      "city",
			query:     LocationQuery{City: "trabzon", District: "urla", Clinic: "cildiye", Hospital: "urla"},
			want:      StatusCityNotFound,
			untouched: []string{SelectorDistrictControl, SelectorDistrictOptions, SelectorClinicControl, SelectorHospitalControl},
		},
		{
			name:      "district",
			query:     LocationQuery{City: "izmir", District: "çeşme", Clinic: "cildiye", Hospital: "urla"},
			want:      StatusDistrictNotFound,
			untouched: []string{SelectorClinicControl, SelectorClinicOptions, SelectorHospitalControl},
		},
		{
			name:      "clinic",
			query:     LocationQuery{City: "izmir", District: "urla", Clinic: "göz", Hospital: "urla"},
			want:      StatusClinicNotFound,
			untouched: []string{SelectorHospitalControl, SelectorHospitalOptions},
		},
		{
			name:      "hospital",
			query:     LocationQuery{City: "izmir", District: "urla", Clinic: "cildiye", Hospital: "ege"},
			want:      StatusHospitalNotFound,
			untouched: []string{SelectorSearchButton},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPortal()
			status, err := newTestSelector(p).Select(context.Background(), tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, status)
			for _, sel := range tt.untouched {
				assert.False(t, p.f.Touched(sel), "%s must not be reached", sel)
			}
		})
	}
}

func TestLocationSelector_EmptyQueryIsInvalid(t *testing.T) {
	p := newTestPortal()
	status, err := newTestSelector(p).Select(context.Background(), LocationQuery{City: "izmir", District: " "})
	assert.Equal(t, StatusInvalidInput, status)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, p.f.Calls())
}

func TestLocationSelector_DriverFailureIsError(t *testing.T) {
	p := newTestPortal()
	p.f.Remove(SelectorCityControl)

	status, err := newTestSelector(p).Select(context.Background(), urlaCildiye)
	assert.Equal(t, StatusError, status)
	assert.ErrorIs(t, err, browser.ErrNotClickable)
	assert.False(t, p.f.Touched(SelectorDistrictControl))
}

func TestLocationSelector_OpenGeneralSearch(t *testing.T) {
	p := newTestPortal()
	require.NoError(t, newTestSelector(p).OpenGeneralSearch(context.Background()))
	assert.Equal(t, 1, p.f.Count("click", SelectorPatientCard))
	assert.Equal(t, 1, p.f.Count("click", SelectorGeneralSearch))

	p.f.Stuck(SelectorModalWrap, true)
	err := newTestSelector(p).OpenGeneralSearch(context.Background())
	assert.ErrorIs(t, err, browser.ErrTimeout)
}
