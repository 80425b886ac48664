package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"theorie-backend-go/internal/db"
	"theorie-backend-go/internal/models"
	"theorie-backend-go/internal/payment"
	"theorie-backend-go/pkg/mailer"
)

// Custom errors for the BillingService.
var (
	ErrPlanNotFound        = errors.New("unknown plan")
	ErrBundleNotFound      = errors.New("unknown attempt bundle")
	ErrPaymentProvider     = errors.New("payment provider operation failed")
	ErrWebhookMetadata     = errors.New("webhook event is missing required metadata")
	ErrUnknownCheckoutKind = errors.New("unknown checkout kind")
)

// planOffer is one purchasable subscription tier.
type planOffer struct {
	Label    string
	Amount   string
	Currency string
	Validity time.Duration
}

// planCatalog is the purchasable tier table. The tier codes must match the
// exam-limit table in entitlement.go.
var planCatalog = map[string]planOffer{
	"plan_basic":    {Label: "Basis", Amount: "19.95", Currency: "EUR", Validity: 31 * 24 * time.Hour},
	"plan_advanced": {Label: "Gevorderd", Amount: "27.95", Currency: "EUR", Validity: 93 * 24 * time.Hour},
	"plan_premium":  {Label: "Premium", Amount: "34.95", Currency: "EUR", Validity: 186 * 24 * time.Hour},
}

// bundleCatalog maps purchasable attempt-bundle sizes to their price.
var bundleCatalog = map[int]planOffer{
	5:  {Label: "5 examenpogingen", Amount: "9.95", Currency: "EUR"},
	10: {Label: "10 examenpogingen", Amount: "16.95", Currency: "EUR"},
}

// CheckoutCreator is the slice of the provider client the billing service
// needs, extracted for tests.
type CheckoutCreator interface {
	CreateCheckout(ctx context.Context, params payment.CheckoutParams) (*payment.CheckoutSession, error)
}

// billingService implements the BillingService interface.
type billingService struct {
	userRepo      db.UserRepository
	webhookRepo   db.WebhookEventRepository
	provider      CheckoutCreator
	mail          *mailer.Mailer
	webhookSecret string
	redirectURL   string
}

// NewBillingService creates a new BillingService instance. mail may be nil to
// disable confirmation email.
func NewBillingService(
	userRepo db.UserRepository,
	webhookRepo db.WebhookEventRepository,
	provider CheckoutCreator,
	mail *mailer.Mailer,
	webhookSecret string,
	redirectURL string,
) BillingService {
	return &billingService{
		userRepo:      userRepo,
		webhookRepo:   webhookRepo,
		provider:      provider,
		mail:          mail,
		webhookSecret: webhookSecret,
		redirectURL:   redirectURL,
	}
}

// CreateCheckoutSession opens a hosted payment page for a plan or an attempt
// bundle. The metadata attached here comes back on the webhook and is the
// only link between the payment and the user record.
func (s *billingService) CreateCheckoutSession(ctx context.Context, userID string, req models.CreateCheckoutRequest) (string, error) {
	if userID == "" {
		return "", ErrAuthRequired
	}

	var params payment.CheckoutParams
	switch req.Kind {
	case payment.KindPlan:
		offer, ok := planCatalog[req.PlanName]
		if !ok {
			return "", fmt.Errorf("%w: '%s'", ErrPlanNotFound, req.PlanName)
		}
		params = payment.CheckoutParams{
			Amount:      offer.Amount,
			Currency:    offer.Currency,
			Description: "Theoriecursus " + offer.Label,
			RedirectURL: s.redirectURL,
			Metadata: map[string]string{
				"userId": userID,
				"kind":   payment.KindPlan,
				"plan":   req.PlanName,
				"label":  offer.Label,
			},
		}
	case payment.KindBundle:
		offer, ok := bundleCatalog[req.Bundle]
		if !ok {
			return "", fmt.Errorf("%w: %d attempts", ErrBundleNotFound, req.Bundle)
		}
		params = payment.CheckoutParams{
			Amount:      offer.Amount,
			Currency:    offer.Currency,
			Description: offer.Label,
			RedirectURL: s.redirectURL,
			Metadata: map[string]string{
				"userId": userID,
				"kind":   payment.KindBundle,
				"bundle": strconv.Itoa(req.Bundle),
			},
		}
	default:
		return "", fmt.Errorf("%w: '%s'", ErrUnknownCheckoutKind, req.Kind)
	}

	session, err := s.provider.CreateCheckout(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPaymentProvider, err)
	}
	return session.CheckoutURL, nil
}

// HandleWebhook processes one provider delivery. Signature and payload
// failures are rejected without side effects; duplicate event ids are
// acknowledged without reprocessing; failures while applying a valid event
// release the dedupe claim and surface an error so the provider redelivers.
func (s *billingService) HandleWebhook(ctx context.Context, signature string, payload []byte) error {
	if err := payment.VerifySignature(payload, signature, s.webhookSecret, time.Now()); err != nil {
		return err
	}

	event, err := payment.ParseEvent(payload)
	if err != nil {
		return err
	}

	switch event.Type {
	case payment.EventPaymentSucceeded:
		return s.handlePaymentSucceeded(ctx, event)
	case payment.EventPaymentFailed:
		// Nothing to roll back: access is only granted on success.
		log.Printf("Webhook: payment failed (event: %s, payment: %s)", event.ID, event.Data.PaymentID)
		return nil
	default:
		log.Printf("Webhook: ignoring event type '%s' (event: %s)", event.Type, event.ID)
		return nil
	}
}

func (s *billingService) handlePaymentSucceeded(ctx context.Context, event *payment.Event) error {
	userID := event.Data.Metadata["userId"]
	kind := event.Data.Metadata["kind"]
	if userID == "" || kind == "" {
		return fmt.Errorf("%w: userId or kind absent (event: %s)", ErrWebhookMetadata, event.ID)
	}

	claim := &models.WebhookEvent{
		ID:        event.ID,
		Type:      event.Type,
		PaymentID: event.Data.PaymentID,
		UserID:    userID,
	}
	if err := s.webhookRepo.Claim(ctx, claim); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			log.Printf("Webhook: duplicate delivery of event '%s', skipping", event.ID)
			return nil
		}
		return fmt.Errorf("failed to claim webhook event '%s': %w", event.ID, err)
	}

	if err := s.applyPayment(ctx, userID, kind, event); err != nil {
		// Give the provider's retry a chance to land the event.
		if releaseErr := s.webhookRepo.Release(ctx, event.ID); releaseErr != nil {
			log.Printf("Webhook: failed to release claim for event '%s': %v", event.ID, releaseErr)
		}
		return err
	}

	s.sendConfirmation(ctx, userID, event)
	return nil
}

func (s *billingService) applyPayment(ctx context.Context, userID, kind string, event *payment.Event) error {
	switch kind {
	case payment.KindPlan:
		planName := event.Data.Metadata["plan"]
		offer, ok := planCatalog[planName]
		if !ok {
			return fmt.Errorf("%w: plan '%s' (event: %s)", ErrWebhookMetadata, planName, event.ID)
		}
		label := event.Data.Metadata["label"]
		if label == "" {
			label = offer.Label
		}
		now := time.Now().UTC()
		plan := &models.Plan{
			Name:      planName,
			Label:     label,
			StartedAt: now,
			ExpiresAt: now.Add(offer.Validity),
			Amount:    event.Data.Amount,
			Currency:  event.Data.Currency,
			PaymentID: event.Data.PaymentID,
			Metadata:  event.Data.Metadata,
		}
		if err := s.userRepo.SetPlan(ctx, userID, plan); err != nil {
			return fmt.Errorf("failed to set plan for user '%s' (event: %s): %w", userID, event.ID, err)
		}
		return nil

	case payment.KindBundle:
		count, err := strconv.Atoi(event.Data.Metadata["bundle"])
		if err != nil || count <= 0 {
			return fmt.Errorf("%w: bundle '%s' (event: %s)", ErrWebhookMetadata, event.Data.Metadata["bundle"], event.ID)
		}
		if err := s.userRepo.IncrementExamCredits(ctx, userID, count); err != nil {
			return fmt.Errorf("failed to add %d exam credits to user '%s' (event: %s): %w", count, userID, event.ID, err)
		}
		return nil

	default:
		return fmt.Errorf("%w: kind '%s' (event: %s)", ErrWebhookMetadata, kind, event.ID)
	}
}

// sendConfirmation emails a receipt. Best effort only: a mail failure never
// fails the webhook, access was already granted.
func (s *billingService) sendConfirmation(ctx context.Context, userID string, event *payment.Event) {
	if s.mail == nil {
		return
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil || user == nil || user.Email == "" {
		log.Printf("Webhook: skipping confirmation mail for user '%s': %v", userID, err)
		return
	}
	body := fmt.Sprintf("Bedankt voor je aankoop!\n\nBetaling %s (%s %s) is verwerkt.\n",
		event.Data.PaymentID, event.Data.Amount, event.Data.Currency)
	if err := s.mail.Send(user.Email, "Bevestiging van je aankoop", body); err != nil {
		log.Printf("Webhook: failed to send confirmation mail to user '%s': %v", userID, err)
	}
}
