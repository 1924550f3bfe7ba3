package mhrs

import (
	"time"

	"github.com/wolfman30/mhrs-agent/internal/browser/browsertest"
	"github.com/wolfman30/mhrs-agent/pkg/logging"
)

const testBaseURL = "https://mhrs.test/vatandas/#/"

var testCreds = Credentials{Username: "12345678901", Password: "secret"}

// testPortal scripts a browsertest.Fake into a small copy of the portal:
// login form, general search form with cascading dropdowns, one doctor with
// two dates, and the booking dialogs.
type testPortal struct {
	f *browsertest.Fake

	eylemRow  *browsertest.Node
	slot1540  *browsertest.Node
	okButton  *browsertest.Node
	outcome   func(f *browsertest.Fake)
	noResults bool
}

func newTestPortal() *testPortal {
	p := &testPortal{f: browsertest.New()}
	p.outcome = func(f *browsertest.Fake) {
		f.Set(SelectorConfirmContent, browsertest.NewNode("Randevunuz başarıyla oluşturulmuştur. (RND5036)"))
	}
	p.seedLogin()
	p.seedSearchForm()
	return p
}

func (p *testPortal) seedLogin() {
	f := p.f
	f.Set(SelectorUsername, browsertest.NewNode(""))
	f.Set(SelectorPassword, browsertest.NewNode(""))
	f.Set(SelectorLoginButton, browsertest.NewNode("Giriş Yap"))
	p.okButton = browsertest.NewNode("Tamam")
	f.Set(SelectorModalFirstButton, p.okButton)
}

func (p *testPortal) seedSearchForm() {
	f := p.f
	n := browsertest.NewNode

	f.Set(SelectorPatientCard, n("Hastane Randevusu"))
	f.Set(SelectorGeneralSearch, n("Genel Arama"))

	f.Set(SelectorCityControl, n("İl"))
	f.Set(SelectorCityOptions, n("ANKARA"), n("İZMİR").OnClick(func() {
		f.Set(SelectorDistrictOptions, n("BORNOVA"), n("URLA"))
	}))
	f.Set(SelectorDistrictControl, n("İlçe"))
	f.Set(SelectorClinicControl, n("Klinik"))
	f.Set(SelectorClinicOptions, n("DAHİLİYE"), n("CİLDİYE (DERMATOLOJİ)"))
	f.Set(SelectorHospitalControl, n("Hastane"))
	f.Set(SelectorHospitalOptions, n("URLA DEVLET HASTANESİ"))

	f.OnClick(SelectorSearchButton, func() {
		if p.noResults {
			f.Set(SelectorModalBody, n("Aradığınız kriterlere uygun randevu bulunamadı. (RND4010)"))
			return
		}
		p.seedResults()
	})
}

func (p *testPortal) seedResults() {
	f := p.f
	n := browsertest.NewNode

	p.eylemRow = n(
		"Uzm. Dr. EYLEM YILMAZ",
		"En Erken Randevu",
		"30.04.2025 15:40",
		"3 gün",
		"URLA DEVLET HASTANESİ",
		"CİLDİYE",
		"URLA",
	).OnClick(p.seedDates)
	f.Set(SelectorListRows,
		n("Uzm. Dr. AHMET KAYA", "En Erken Randevu", "02.05.2025 09:00", "5 gün", "URLA DEVLET HASTANESİ", "CİLDİYE", "URLA"),
		p.eylemRow,
	)
}

func (p *testPortal) seedDates() {
	f := p.f
	n := browsertest.NewNode
	f.Set(SelectorDateTabs,
		n("30.04.2025 Çarşamba").OnClick(p.seedHours),
		n(""),
		n("02.05.2025 Cuma"),
	)
}

func (p *testPortal) seedHours() {
	f := p.f
	n := browsertest.NewNode

	slot1520 := n("15:20")
	p.slot1540 = n("15:40").OnClick(func() {
		f.OnClick(SelectorVerifyButton, func() { p.outcome(f) })
	})
	fifteen := n("15:00", "15:20", "15:40").WithChildren(SelectorSlotButtons, slot1520, p.slot1540)
	fifteen.OnClick(func() { f.Set(SelectorActiveSlots, slot1520, p.slot1540) })

	f.Set(SelectorHourBuckets,
		n("09:00", "09:20").WithChildren(SelectorSlotButtons, n("09:20")),
		fifteen,
		n("16:00"),
	)
	f.Set(SelectorAcceptButton, n("Onayla"))
}

func (p *testPortal) service(opts ...ServiceOption) *Service {
	opts = append([]ServiceOption{WithServiceLogger(logging.Discard())}, opts...)
	return NewService(p.f, ServiceConfig{
		BaseURL:             testBaseURL,
		Credentials:         testCreds,
		WaitTimeout:         time.Second,
		RegistryWaitTimeout: time.Second,
	}, opts...)
}

var urlaCildiye = LocationQuery{City: "izmir", District: "urla", Clinic: "cildiye", Hospital: "urla"}
