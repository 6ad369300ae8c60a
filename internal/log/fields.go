package log

const (
	// Request
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldLatency   = "latency_ms"
	FieldClientIP  = "client_ip"

	// Drawing
	FieldSender    = "sender"
	FieldClientID  = "client_id"
	FieldEventType = "event_type"
	FieldSeq       = "seq"
	FieldSize      = "size"

	FieldComponent = "component"
)
