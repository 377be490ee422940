package logging

// Standardized field names for structured logging.
const (
	FieldRunID        = "run_id"
	FieldCounterparty = "counterparty"
	FieldOperation    = "operation"
	FieldOutcome      = "outcome"
	FieldAttempt      = "attempt"
	FieldDelay        = "delay_ms"
	FieldSpreadsheet  = "spreadsheet"
	FieldTab          = "tab"
	FieldRow          = "row"
	FieldError        = "error"
	FieldCount        = "count"
	FieldFormat       = "format"
	FieldInputFile    = "input_file"
	FieldOutputFile   = "output_file"
	FieldTable        = "table"
)
