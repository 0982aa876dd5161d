package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldOperation   = "operation"
	FieldUserID      = "user_id"
	FieldRecordID    = "record_id"
	FieldRecordKind  = "record_kind"
	FieldCategory    = "categoria"
	FieldAmountCents = "amount_cents"
	FieldRemoteJID   = "remotejid"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentUser    = "user"
	ComponentExpense = "expense"
	ComponentIncome  = "income"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentSheets  = "sheets"
)

// Operations defines standard operation names
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
	OpList   = "list"
	OpAppend = "append"
	OpExport = "export"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithRecord adds record-related fields
func (f LogFields) WithRecord(kind string, recordID, userID string, amountCents int64, category string) LogFields {
	f[FieldRecordKind] = kind
	f[FieldRecordID] = recordID
	f[FieldUserID] = userID
	f[FieldAmountCents] = amountCents
	f[FieldCategory] = category
	return f
}

// WithUser adds user-related fields
func (f LogFields) WithUser(userID, remoteJID string) LogFields {
	f[FieldUserID] = userID
	f[FieldRemoteJID] = remoteJID
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
