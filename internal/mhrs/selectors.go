package mhrs

// CSS selectors of the MHRS citizen portal (Ant Design 3 markup).
const (
	SelectorLoading   = ".ant-spin-spinning"
	SelectorModalWrap = ".ant-modal-wrap"
	SelectorModalBody = ".ant-modal-body"

	// Buttons of an Ant confirm dialog, in DOM order.
	SelectorModalFirstButton  = ".ant-modal-confirm-btns > button:nth-child(1)"
	SelectorModalSecondButton = ".ant-modal-confirm-btns > button:nth-child(2)"

	SelectorUsername    = "#LoginForm_username"
	SelectorPassword    = "#LoginForm_password"
	SelectorLoginButton = ".ant-btn.ant-btn-teal.ant-btn-block"

	SelectorPatientCard   = "div.randevu-card-dissiz:nth-child(2) > div:nth-child(1) > div:nth-child(1) > div:nth-child(2)"
	SelectorGeneralSearch = "button.randevu-turu-button:nth-child(1)"
	SelectorSearchButton  = "#randevu-ara-buton"

	SelectorCityControl     = "#il-tree-select"
	SelectorCityOptions     = ".ant-select-tree li"
	SelectorDistrictControl = "#randevuAramaForm_ilce"
	SelectorDistrictOptions = ".ant-select-dropdown-menu li"
	SelectorClinicControl   = "#klinik-tree-select"
	SelectorClinicOptions   = "#rc-tree-select-list_2 > ul:nth-child(2) > li"
	SelectorHospitalControl = "#hastane-tree-select"
	SelectorHospitalOptions = "#rc-tree-select-list_3 > ul:nth-child(2) > li"

	// The same list markup holds search results and the home page registry.
	SelectorList     = ".ant-list-items"
	SelectorListRows = ".ant-list-items li"

	SelectorDateTabs       = "div.ant-tabs-tab"
	SelectorHourBuckets    = "div.ant-collapse-item"
	SelectorSlotButtons    = "button.slot-saat-button"
	SelectorActiveSlots    = "div.ant-collapse-content-active button.slot-saat-button"
	SelectorAcceptButton   = SelectorModalSecondButton
	SelectorVerifyButton   = ".ant-modal-footer > div:nth-child(1) > button:nth-child(2)"
	SelectorMaxExceeded    = "div.ant-modal-body:nth-child(2)"
	SelectorConfirmContent = ".ant-modal-confirm > div:nth-child(2)"

	SelectorRowCancel  = ".ant-btn-danger"
	SelectorRowPrimary = ".ant-btn-primary"
	// Confirmation buttons of the dialog a registry action opens.
	SelectorDialogPrimary = ".ant-modal .ant-btn-primary"
)

// Status codes embedded in modal text.
const (
	CodeNoAppointment = "RND4010"
	CodeBooked        = "RND5036"
	CodeMaxExceeded   = "RND5015"
)

// ReversibleLabel tags registry rows that must be reverted, not cancelled.
const ReversibleLabel = "Geri Alınabilir Randevu"
