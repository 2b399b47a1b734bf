package models

import "maps"

// ExtractedData is the fixed-shape lease record produced by extraction.
// It has no identity of its own; it is owned by exactly one Document.
// Confidence holds an optional per-field score in [0,1] keyed by the JSON
// field name.
type ExtractedData struct {
	Name               string `json:"name"`
	Surname            string `json:"surname"`
	AddressStreet      string `json:"address_street"`
	AddressHouseNumber string `json:"address_house_number"`
	AddressZipCode     string `json:"address_zip_code"`
	AddressCity        string `json:"address_city"`
	WarmRent           int    `json:"warm_rent"`
	ColdRent           int    `json:"cold_rent"`
	RentIncreaseType   string `json:"rent_increase_type"`
	Date               string `json:"date"`
	IsActive           bool   `json:"is_active"`

	Deposit            *int   `json:"deposit,omitempty"`
	ContractTermMonths *int   `json:"contract_term_months,omitempty"`
	NoticePeriodMonths *int   `json:"notice_period_months,omitempty"`
	LandlordEntity     string `json:"landlord_entity,omitempty"`

	Confidence map[string]float64 `json:"confidence,omitempty"`
}

func (e *ExtractedData) Clone() *ExtractedData {
	cp := *e
	if e.Deposit != nil {
		v := *e.Deposit
		cp.Deposit = &v
	}
	if e.ContractTermMonths != nil {
		v := *e.ContractTermMonths
		cp.ContractTermMonths = &v
	}
	if e.NoticePeriodMonths != nil {
		v := *e.NoticePeriodMonths
		cp.NoticePeriodMonths = &v
	}
	if e.Confidence != nil {
		cp.Confidence = maps.Clone(e.Confidence)
	}
	return &cp
}
