package log

// Common field names for structured logging.
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldUserAgent   = "user_agent"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldOwnerID     = "owner_id"
	FieldUserID      = "user_id"
	FieldUsername    = "username"
	FieldTxnID       = "transaction_id"
	FieldTxnKind     = "kind"
	FieldCategoryID  = "category_id"
	FieldAmountCents = "amount_cents"
	FieldPage        = "page"
	FieldLimit       = "limit"
	FieldVersion     = "version"
	FieldQueue       = "queue"
	FieldExchange    = "exchange"
	FieldLedgerRef   = "ledger_ref"
)

// Standard component names.
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentAuth    = "auth"
	ComponentStorage = "storage"
	ComponentService = "service"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentLedger  = "ledger"
	ComponentCache   = "cache"
)
