package log

// Common field names for structured logging
const (
	FieldComponent    = "component"
	FieldSubcomponent = "subcomponent"
	FieldRequestID    = "request_id"
	FieldClientIP     = "client_ip"
	FieldMethod       = "method"
	FieldPath         = "path"
	FieldStatusCode   = "status_code"
	FieldDuration     = "duration_ms"
	FieldError        = "error"
	FieldOperation    = "operation"
	FieldExpenseID    = "expense_id"
	FieldAmount       = "amount"
	FieldDescription  = "description"
	FieldPlace        = "place"
	FieldDistance     = "distance_m"
	FieldLatitude     = "latitude"
	FieldLongitude    = "longitude"
	FieldNotifier     = "notifier"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentLedger    = "ledger"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentProximity = "proximity"
	ComponentLocation  = "location"
	ComponentNotify    = "notify"
	ComponentCache     = "cache"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpDelete   = "delete"
	OpList     = "list"
	OpEvaluate = "evaluate"
	OpNotify   = "notify"
	OpMigrate  = "migrate"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithExpense(id int64, amount float64, desc string) LogFields {
	f[FieldExpenseID] = id
	f[FieldAmount] = amount
	f[FieldDescription] = desc
	return f
}

func (f LogFields) WithPlace(name string, distance float64) LogFields {
	f[FieldPlace] = name
	f[FieldDistance] = distance
	return f
}

func (f LogFields) WithPosition(lat, lon float64) LogFields {
	f[FieldLatitude] = lat
	f[FieldLongitude] = lon
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
