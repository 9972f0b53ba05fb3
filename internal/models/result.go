package models

// Status is the terminal outcome of one pipeline execution. Business
// branches are values, not errors: only Rejected maps to a non-2xx response
// so the sender redelivers nothing that already caused side effects.
type Status string

const (
	// StatusRejected means signature verification failed. No side effects
	// were attempted; the sender should redeliver.
	StatusRejected Status = "rejected"
	// StatusIgnored means the event was authentic but not a type we act on.
	StatusIgnored Status = "ignored"
	// StatusNoEmail means a relevant event carried no extractable buyer email.
	StatusNoEmail Status = "no_email"
	// StatusUnmatched means no lead record exists for the buyer email.
	StatusUnmatched Status = "unmatched"
	// StatusDuplicate means this event id was already handled.
	StatusDuplicate Status = "duplicate"
	// StatusProcessed means render, publish and notify all completed.
	StatusProcessed Status = "processed"
	// StatusError means a failure after authentication. Still acknowledged
	// to the sender; diagnostics go to the logs.
	StatusError Status = "error"
)

// Result is what one pipeline execution hands back to the HTTP layer.
type Result struct {
	Status    Status
	EventType string // set for Ignored, names the skipped type
	Err       error  // set for Rejected and Error
}
