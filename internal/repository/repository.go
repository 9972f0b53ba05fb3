package repository

import (
	"context"
	"errors"

	"github.com/immigrai/checklist-delivery/internal/models"
)

// ErrLeadNotFound is returned when no lead record matches the email. It is a
// business outcome, not a failure.
var ErrLeadNotFound = errors.New("lead not found")

// Repository resolves buyer emails to stored lead records.
type Repository interface {
	// LatestLeadByEmail returns the most recently created lead for email,
	// or ErrLeadNotFound.
	LatestLeadByEmail(ctx context.Context, email string) (*models.Lead, error)
	Close()
}
