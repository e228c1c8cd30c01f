package log

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldRequestID     = "request_id"
	FieldClientIP      = "client_ip"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldStatusCode    = "status_code"
	FieldDuration      = "duration_ms"
	FieldError         = "error"
	FieldOperation     = "operation"
	FieldRevision      = "revision"
	FieldMonth         = "month"
	FieldCategory      = "category"
	FieldGroup         = "group"
	FieldTransactionID = "transaction_id"
	FieldAmountCents   = "amount_cents"
	FieldPayee         = "payee"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentLedger  = "ledger"
	ComponentNotify  = "notify"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentSheets  = "sheets"
	ComponentBackend = "backend"
	ComponentCLI     = "cli"
)

// Ledger operation names, also used as the LedgerChanged operation.
const (
	OpSetIncome         = "set_income"
	OpUpdateBudgets     = "update_budgets"
	OpAddCategory       = "add_category"
	OpRenameCategory    = "rename_category"
	OpSetBudget         = "set_budget"
	OpRemoveCategory    = "remove_category"
	OpAddTransaction    = "add_transaction"
	OpEditTransaction   = "edit_transaction"
	OpDeleteTransaction = "delete_transaction"
	OpImportNotice      = "import_notification"
	OpReport            = "report"
	OpStartup           = "startup"
	OpShutdown          = "shutdown"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithCategory adds the category name
func (f LogFields) WithCategory(name string) LogFields {
	if name != "" {
		f[FieldCategory] = name
	}
	return f
}

// WithTransaction adds transaction identity and amount
func (f LogFields) WithTransaction(id string, amountCents int64) LogFields {
	f[FieldTransactionID] = id
	f[FieldAmountCents] = amountCents
	return f
}

// WithRevision adds the ledger revision and month
func (f LogFields) WithRevision(revision int64, month string) LogFields {
	f[FieldRevision] = revision
	f[FieldMonth] = month
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
