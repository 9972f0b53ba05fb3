package models

import "time"

// Lead is a stored record describing what a buyer is owed. The record store
// owns it; the pipeline holds a read-only copy for one request. When several
// leads share an email the most recently created one is authoritative.
type Lead struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	PetitionerName string    `json:"petitioner_name"`
	VisaType       string    `json:"visa_type"`
	ChecklistText  string    `json:"checklist_text"`
	CreatedAt      time.Time `json:"created_at"`
}

// Category returns the visa type label, falling back to a generic one.
func (l *Lead) Category() string {
	if l.VisaType == "" {
		return "Checklist"
	}
	return l.VisaType
}

// Petitioner returns the display name used in the email greeting.
func (l *Lead) Petitioner() string {
	if l.PetitionerName == "" {
		return "there"
	}
	return l.PetitionerName
}
