package models

// EventCheckoutCompleted is the only provider event type this service acts on.
const EventCheckoutCompleted = "checkout.session.completed"

// InboundEvent is a notification exactly as it arrived on the wire: the raw
// signed payload plus the value of the signature header. It is consumed once
// by signature verification and discarded.
type InboundEvent struct {
	Payload   []byte
	Signature string
}

// Event is the subset of the provider payload the pipeline reads.
type Event struct {
	ID   string    `json:"id"`
	Type string    `json:"type"`
	Data EventData `json:"data"`
}

// EventData wraps the object embedded in a provider event.
type EventData struct {
	Object Session `json:"object"`
}

// Session is the purchase session carried by a checkout event.
type Session struct {
	ID              string           `json:"id"`
	CustomerEmail   string           `json:"customer_email"`
	CustomerDetails *CustomerDetails `json:"customer_details"`
}

// CustomerDetails holds buyer contact data collected during checkout.
type CustomerDetails struct {
	Email string `json:"email"`
}

// Email returns the buyer email. The provider populates either
// customer_details.email or customer_email depending on checkout mode;
// the first non-empty value wins.
func (s *Session) Email() string {
	if s.CustomerDetails != nil && s.CustomerDetails.Email != "" {
		return s.CustomerDetails.Email
	}
	return s.CustomerEmail
}
