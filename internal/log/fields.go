package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldSuccess     = "success"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldMemberID    = "member_id"
	FieldMemberCode  = "member_code"
	FieldLoanID      = "loan_id"
	FieldAmountCents = "amount_cents"
	FieldEventKind   = "event_kind"
	FieldSheetsRef   = "sheets_ref"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentLedger   = "ledger"
	ComponentStorage  = "storage"
	ComponentAMQP     = "amqp"
	ComponentWorker   = "worker"
	ComponentExport   = "export"
	ComponentSecurity = "security"
)

// Operations defines standard operation names
const (
	OpRegister = "register"
	OpDeposit  = "deposit"
	OpWithdraw = "withdraw"
	OpIssue    = "issue"
	OpPay      = "pay"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpExport   = "export"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)
