// Package service drives one webhook event end to end:
//
//	Received -> Authenticated -> Classified -> {Ignored | NoEmail |
//	Unmatched | Duplicate | Processed | Error}
//
// Everything after authentication is caught here and turned into an
// acknowledged Result; nothing below that point may escape to the HTTP
// layer as a failure, because a non-2xx answer makes the sender redeliver
// and the side effects (an email already sent, an artifact already
// published) are not safe to repeat blindly.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/immigrai/checklist-delivery/internal/dedup"
	"github.com/immigrai/checklist-delivery/internal/logging"
	"github.com/immigrai/checklist-delivery/internal/mailer"
	"github.com/immigrai/checklist-delivery/internal/metrics"
	"github.com/immigrai/checklist-delivery/internal/models"
	"github.com/immigrai/checklist-delivery/internal/render"
	"github.com/immigrai/checklist-delivery/internal/repository"
	"github.com/immigrai/checklist-delivery/internal/sanitize"
	"github.com/immigrai/checklist-delivery/internal/signature"
	"github.com/immigrai/checklist-delivery/internal/storage"
)

// LeadStore resolves a buyer email to the authoritative lead record.
type LeadStore interface {
	LatestLeadByEmail(ctx context.Context, email string) (*models.Lead, error)
}

// Renderer turns sanitized checklist text into a transient document.
type Renderer interface {
	Render(text string) (*render.Document, error)
}

// Publisher persists a rendered document and mints a signed retrieval URL.
type Publisher interface {
	Upload(ctx context.Context, object, contentType string, body []byte) error
	SignURL(ctx context.Context, object string, ttl time.Duration) (string, error)
}

// Notifier emails the buyer the signed URL.
type Notifier interface {
	SendChecklist(ctx context.Context, to, petitioner, category, signedURL string) (mailer.Outcome, error)
}

// Pipeline orchestrates lookup, render, publish and notify for one event.
// Each execution is independent; there is no shared mutable state between
// concurrent requests.
type Pipeline struct {
	verifier  *signature.Verifier
	leads     LeadStore
	renderer  Renderer
	publisher Publisher
	notifier  Notifier
	deduper   dedup.Deduper
	signTTL   time.Duration
	logger    *logging.Logger
}

// New wires a Pipeline. deduper may be dedup.NoOp{}; signTTL <= 0 selects
// one hour.
func New(
	verifier *signature.Verifier,
	leads LeadStore,
	renderer Renderer,
	publisher Publisher,
	notifier Notifier,
	deduper dedup.Deduper,
	signTTL time.Duration,
	logger *logging.Logger,
) *Pipeline {
	if deduper == nil {
		deduper = dedup.NoOp{}
	}
	if signTTL <= 0 {
		signTTL = time.Hour
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Pipeline{
		verifier:  verifier,
		leads:     leads,
		renderer:  renderer,
		publisher: publisher,
		notifier:  notifier,
		deduper:   deduper,
		signTTL:   signTTL,
		logger:    logger,
	}
}

// Process runs the state machine for one inbound event and returns its
// terminal Result. Only a signature failure produces a non-acknowledged
// outcome.
func (p *Pipeline) Process(ctx context.Context, in models.InboundEvent) models.Result {
	if err := p.verifier.Verify(in.Payload, in.Signature); err != nil {
		p.logger.WarnContext(ctx, "webhook signature rejected", logging.Error(err))
		return models.Result{Status: models.StatusRejected, Err: err}
	}
	metrics.EventBytesTotal.Add(float64(len(in.Payload)))

	var event models.Event
	if err := json.Unmarshal(in.Payload, &event); err != nil {
		// Authenticated but undecodable. Acknowledged: redelivering the
		// same bytes cannot succeed either.
		p.logger.ErrorContext(ctx, "failed to decode event payload", logging.Error(err))
		return models.Result{Status: models.StatusError, Err: fmt.Errorf("decode event payload: %w", err)}
	}

	log := p.logger.With(logging.EventID(event.ID), logging.EventType(event.Type))
	log.InfoContext(ctx, "webhook event authenticated")

	if event.Type != models.EventCheckoutCompleted {
		return models.Result{Status: models.StatusIgnored, EventType: event.Type}
	}

	email := event.Data.Object.Email()
	if email == "" {
		log.WarnContext(ctx, "no email in purchase session",
			logging.EventID(event.Data.Object.ID))
		return models.Result{Status: models.StatusNoEmail}
	}

	seen, err := p.deduper.Seen(ctx, event.ID)
	if err != nil {
		// Dedup is best-effort; a broken cache must not block delivery.
		log.WarnContext(ctx, "dedup check failed, continuing", logging.Error(err))
	} else if seen {
		log.InfoContext(ctx, "duplicate event delivery skipped")
		return models.Result{Status: models.StatusDuplicate}
	}

	lead, err := p.leads.LatestLeadByEmail(ctx, email)
	if errors.Is(err, repository.ErrLeadNotFound) {
		log.InfoContext(ctx, "no matching lead", logging.Email(email))
		return models.Result{Status: models.StatusUnmatched}
	}
	if err != nil {
		log.ErrorContext(ctx, "lead lookup failed", logging.Error(err))
		return models.Result{Status: models.StatusError, Err: fmt.Errorf("lookup lead: %w", err)}
	}

	if err := p.deliver(ctx, log, email, lead); err != nil {
		log.ErrorContext(ctx, "delivery failed", logging.Error(err))
		return models.Result{Status: models.StatusError, Err: err}
	}
	return models.Result{Status: models.StatusProcessed}
}

// deliver runs the ordered side-effect sequence render -> publish -> notify.
// The rendered document is released exactly once on every exit path.
func (p *Pipeline) deliver(ctx context.Context, log *logging.Logger, email string, lead *models.Lead) error {
	renderStart := time.Now()
	doc, err := p.renderer.Render(sanitize.Sanitize(lead.ChecklistText))
	if err != nil {
		return fmt.Errorf("render document: %w", err)
	}
	defer doc.Cleanup()
	metrics.RenderDuration.Observe(time.Since(renderStart).Seconds())

	body, err := doc.Bytes()
	if err != nil {
		return fmt.Errorf("read rendered document: %w", err)
	}

	object := storage.ObjectName(lead.Category(), time.Now())
	publishStart := time.Now()
	if err := p.publisher.Upload(ctx, object, "application/pdf", body); err != nil {
		return fmt.Errorf("publish artifact: %w", err)
	}
	signedURL, err := p.publisher.SignURL(ctx, object, p.signTTL)
	if err != nil {
		return fmt.Errorf("sign artifact url: %w", err)
	}
	metrics.PublishDuration.Observe(time.Since(publishStart).Seconds())
	log.InfoContext(ctx, "artifact published", logging.Object(object))

	outcome, err := p.notifier.SendChecklist(ctx,
		email,
		sanitize.Narrow(lead.Petitioner()),
		sanitize.Narrow(lead.Category()),
		signedURL,
	)
	if err != nil {
		metrics.NotifyFailures.Inc()
		log.ErrorContext(ctx, "notification failed",
			logging.Status(outcome.StatusCode), logging.Error(err))
		return fmt.Errorf("send notification: %w", err)
	}
	log.InfoContext(ctx, "notification delivered", logging.Status(outcome.StatusCode))
	return nil
}
