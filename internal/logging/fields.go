package logging

import "log/slog"

// Field names kept consistent across the service.
const (
	FieldService   = "service"
	FieldError     = "error"
	FieldEventID   = "event_id"
	FieldEventType = "event_type"
	FieldEmail     = "email"
	FieldObject    = "object"
	FieldStatus    = "status"
	FieldOutcome   = "outcome"
)

// Service returns a slog attribute for the service name.
func Service(name string) slog.Attr {
	return slog.String(FieldService, name)
}

// Error returns a slog attribute for an error.
func Error(err error) slog.Attr {
	return slog.String(FieldError, err.Error())
}

// EventID returns a slog attribute for the provider event ID.
func EventID(id string) slog.Attr {
	return slog.String(FieldEventID, id)
}

// EventType returns a slog attribute for the provider event type.
func EventType(t string) slog.Attr {
	return slog.String(FieldEventType, t)
}

// Email returns a slog attribute for the buyer email.
func Email(email string) slog.Attr {
	return slog.String(FieldEmail, email)
}

// Object returns a slog attribute for a storage object name.
func Object(name string) slog.Attr {
	return slog.String(FieldObject, name)
}

// Status returns a slog attribute for an HTTP status code.
func Status(code int) slog.Attr {
	return slog.Int(FieldStatus, code)
}

// Outcome returns a slog attribute for a pipeline outcome.
func Outcome(outcome string) slog.Attr {
	return slog.String(FieldOutcome, outcome)
}
