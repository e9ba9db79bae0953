package entity

// ResultSuccess is the provider status code reported for a valid quote
const ResultSuccess = 1

// ExchangeRate represents one currency's quote for a given day as reported by the provider.
// Rate fields are kept as text because the provider may format them with thousands separators.
type ExchangeRate struct {
	Result           int    `json:"result"`
	CurrencyUnit     string `json:"cur_unit"`
	TTB              string `json:"ttb"`
	TTS              string `json:"tts"`
	BaseRate         string `json:"deal_bas_r"`
	BankNoteRate     string `json:"bkpr"`
	YearlyFeeRate    string `json:"yy_efee_r"`
	TenDayFeeRate    string `json:"ten_dd_efee_r"`
	KFTCBankNoteRate string `json:"kftc_bkpr"`
	KFTCBaseRate     string `json:"kftc_deal_bas_r"`
	CurrencyName     string `json:"cur_nm"`
}

// Succeeded reports whether the provider flagged the record as a valid quote
func (r ExchangeRate) Succeeded() bool {
	return r.Result == ResultSuccess
}
