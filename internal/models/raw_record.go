package models

// RawRecord is one input row after column mapping and before parsing.
// Payment files map the beneficiary name to Particulars and the transfer
// amount to Debit, and leave Credit empty.
type RawRecord struct {
	Particulars     string `csv:"Particulars"`
	Date            string `csv:"Date"`
	RefNo           string `csv:"Ref No"`
	Credit          string `csv:"Credit"`
	Debit           string `csv:"Debit"`
	CreditAccountNo string `csv:"Credit A/c No"`
}
