package logging

// Standardized field names for structured logging. Using the same keys across
// all components keeps the run output filterable.
const (
	FieldOrderID   = "order_id"
	FieldPage      = "page"
	FieldAmount    = "amount"
	FieldDate      = "date"
	FieldStatus    = "status"
	FieldCount     = "count"
	FieldRunID     = "run_id"
	FieldFile      = "file_path"
	FieldComponent = "component"
)
