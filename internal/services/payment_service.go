package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskmarket/internal/fees"
	"taskmarket/internal/models"
	"taskmarket/internal/money"
	"taskmarket/internal/payrail"
	"taskmarket/internal/store"
)

type PaymentStore interface {
	CreatePayment(ctx context.Context, p *models.Payment) error
	GetPayment(ctx context.Context, id string) (*models.Payment, error)
	GetPaymentByExternalID(ctx context.Context, externalID string) (*models.Payment, error)
	MarkPaymentProcessing(ctx context.Context, id, externalID string) (*models.Payment, error)
	SettlePayment(ctx context.Context, set store.Settlement) (*models.Payment, bool, error)
	ListPaymentsByStatus(ctx context.Context, status models.PaymentStatus, limit int) ([]*models.Payment, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
}

type PaymentProvider interface {
	InitiateTransfer(ctx context.Context, req payrail.TransferRequest) (*payrail.Transfer, error)
	GetTransfer(ctx context.Context, externalPaymentID string) (*payrail.Transfer, error)
}

type PaymentService struct {
	Store      PaymentStore
	Provider   PaymentProvider
	Fees       fees.Policy
	Notify     Notifier
	MaxRetries int
	// Backoff is the first confirmation-poll delay; it doubles per attempt.
	Backoff time.Duration
}

type CreatePaymentInput struct {
	RecipientID string  `json:"recipient_id"`
	Amount      string  `json:"amount"`
	Currency    string  `json:"currency"`
	PaymentType string  `json:"payment_type"`
	TaskID      *string `json:"task_id"`
}

// Create opens a payer-initiated escrow or bonus payment and kicks off the
// transfer. task_reward payments are never created here; those come from
// review approval.
func (s *PaymentService) Create(ctx context.Context, payer *models.User, in CreatePaymentInput) (*models.Payment, error) {
	ptype := models.PaymentType(in.PaymentType)
	if ptype != models.PaymentEscrow && ptype != models.PaymentBonus {
		return nil, fmt.Errorf("%w: payment_type must be escrow or bonus", models.ErrValidation)
	}
	if !money.IsPositive(in.Amount) {
		return nil, fmt.Errorf("%w: amount must be a positive base-unit amount", models.ErrValidation)
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		return nil, fmt.Errorf("%w: currency is required", models.ErrValidation)
	}
	if in.RecipientID == payer.ID {
		return nil, fmt.Errorf("%w: cannot pay yourself", models.ErrValidation)
	}
	if _, err := s.Store.GetUser(ctx, in.RecipientID); err != nil {
		return nil, err
	}

	payment := &models.Payment{
		ID:          uuid.NewString(),
		TaskID:      in.TaskID,
		PayerID:     payer.ID,
		RecipientID: in.RecipientID,
		Amount:      in.Amount,
		Currency:    currency,
		PaymentType: ptype,
		Status:      models.PaymentPending,
	}
	if err := s.Store.CreatePayment(ctx, payment); err != nil {
		return nil, err
	}
	return s.initiate(ctx, payment)
}

// initiate hands a pending payment to the provider and marks it processing.
// The payment ID is the provider-side idempotency reference, so retrying a
// half-initiated payment cannot double-send funds.
func (s *PaymentService) initiate(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	recipient, err := s.Store.GetUser(ctx, payment.RecipientID)
	if err != nil {
		return nil, err
	}
	if recipient.WalletAddress == nil {
		return nil, fmt.Errorf("%w: recipient has no wallet address on file", models.ErrValidation)
	}

	transfer, err := s.Provider.InitiateTransfer(ctx, payrail.TransferRequest{
		Reference: payment.ID,
		Recipient: *recipient.WalletAddress,
		Amount:    payment.Amount,
		Currency:  payment.Currency,
	})
	if err != nil {
		return nil, fmt.Errorf("transfer initiation failed: %w", err)
	}

	updated, err := s.Store.MarkPaymentProcessing(ctx, payment.ID, transfer.ExternalPaymentID)
	if err != nil {
		return nil, err
	}
	if transfer.Status == payrail.StatusCompleted || transfer.Status == payrail.StatusFailed {
		settled, _, err := s.applyProviderResult(ctx, updated, transfer)
		return settled, err
	}
	return updated, nil
}

// Get returns a payment to its payer, recipient, or an admin.
func (s *PaymentService) Get(ctx context.Context, caller *models.User, id string) (*models.Payment, error) {
	payment, err := s.Store.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment.PayerID != caller.ID && payment.RecipientID != caller.ID && !caller.IsAdmin {
		return nil, models.ErrNotPermitted
	}
	return payment, nil
}

// HandleWebhook applies a provider status event. Replays against a finalized
// payment are a no-op success; the caller has already authenticated the
// payload signature.
func (s *PaymentService) HandleWebhook(ctx context.Context, ev payrail.WebhookEvent) (*models.Payment, bool, error) {
	payment, err := s.Store.GetPaymentByExternalID(ctx, ev.ExternalPaymentID)
	if err != nil {
		return nil, false, err
	}
	if payment.Status.Terminal() {
		return payment, false, nil
	}

	switch ev.Status {
	case payrail.StatusProcessing:
		return payment, false, nil
	case payrail.StatusCompleted, payrail.StatusFailed:
		return s.settle(ctx, payment, store.Settlement{
			ExternalPaymentID: ev.ExternalPaymentID,
			Status:            statusFromProvider(ev.Status),
			TransactionHash:   ev.TransactionHash,
			GasFee:            ev.GasFee,
			PlatformFee:       ev.PlatformFee,
			FailureReason:     ev.FailureReason,
		})
	default:
		return nil, false, fmt.Errorf("%w: unknown webhook status %q", models.ErrValidation, ev.Status)
	}
}

// Confirm polls the provider for the payment's transfer with bounded
// exponential backoff and settles it if the provider reports a terminal state.
// Only the payer or recipient may ask.
func (s *PaymentService) Confirm(ctx context.Context, caller *models.User, id string) (*models.Payment, bool, error) {
	payment, err := s.Store.GetPayment(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if payment.PayerID != caller.ID && payment.RecipientID != caller.ID && !caller.IsAdmin {
		return nil, false, models.ErrNotPermitted
	}
	if payment.Status.Terminal() {
		return nil, false, models.ErrPaymentFinalized
	}

	if payment.ExternalPaymentID == nil {
		if payment, err = s.initiate(ctx, payment); err != nil {
			return nil, false, err
		}
		if payment.Status.Terminal() {
			return payment, true, nil
		}
	}

	backoff := s.Backoff
	if backoff <= 0 {
		backoff = time.Second
	}
	retries := s.MaxRetries
	if retries <= 0 {
		retries = 5
	}

	for attempt := 0; attempt < retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, false, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		transfer, err := s.Provider.GetTransfer(ctx, *payment.ExternalPaymentID)
		if err != nil {
			continue
		}
		if transfer.Status == payrail.StatusCompleted || transfer.Status == payrail.StatusFailed {
			return s.applyProviderResult(ctx, payment, transfer)
		}
	}
	// Still in flight at the provider; the worker will pick it up.
	return payment, false, nil
}

// SettleProcessing is the worker sweep: poll every processing payment once.
func (s *PaymentService) SettleProcessing(ctx context.Context) error {
	payments, err := s.Store.ListPaymentsByStatus(ctx, models.PaymentProcessing, 0)
	if err != nil {
		return err
	}
	for _, payment := range payments {
		if payment.ExternalPaymentID == nil {
			continue
		}
		transfer, err := s.Provider.GetTransfer(ctx, *payment.ExternalPaymentID)
		if err != nil {
			log.Printf("payment %s: provider poll failed: %v", payment.ID, err)
			continue
		}
		if transfer.Status != payrail.StatusCompleted && transfer.Status != payrail.StatusFailed {
			continue
		}
		if _, _, err := s.applyProviderResult(ctx, payment, transfer); err != nil {
			log.Printf("payment %s: settle failed: %v", payment.ID, err)
		}
	}
	return nil
}

// ReleasePending is the worker sweep for payments that never reached the
// provider (created by review approval, or an initiation that crashed midway).
func (s *PaymentService) ReleasePending(ctx context.Context) error {
	payments, err := s.Store.ListPaymentsByStatus(ctx, models.PaymentPending, 0)
	if err != nil {
		return err
	}
	for _, payment := range payments {
		if _, err := s.initiate(ctx, payment); err != nil {
			log.Printf("payment %s: initiation failed: %v", payment.ID, err)
		}
	}
	return nil
}

func (s *PaymentService) applyProviderResult(ctx context.Context, payment *models.Payment, transfer *payrail.Transfer) (*models.Payment, bool, error) {
	return s.settle(ctx, payment, store.Settlement{
		PaymentID:       payment.ID,
		Status:          statusFromProvider(transfer.Status),
		TransactionHash: transfer.TransactionHash,
		GasFee:          transfer.GasFee,
		PlatformFee:     transfer.PlatformFee,
		FailureReason:   transfer.FailureReason,
	})
}

func (s *PaymentService) settle(ctx context.Context, payment *models.Payment, set store.Settlement) (*models.Payment, bool, error) {
	// The provider does not know our fee policy; fill it in when absent.
	if set.Status == models.PaymentCompleted && set.PlatformFee == "" {
		fee, err := s.Fees.PlatformFee(payment.Amount)
		if err != nil {
			return nil, false, err
		}
		set.PlatformFee = fee
	}

	settled, applied, err := s.Store.SettlePayment(ctx, set)
	if err != nil {
		return nil, false, err
	}
	if applied {
		switch settled.Status {
		case models.PaymentCompleted:
			s.Notify.Notify(ctx, settled.RecipientID, "payment_completed",
				"Payment received",
				fmt.Sprintf("You received %s %s", deref(settled.NetAmount), settled.Currency), settled.ID)
		case models.PaymentFailed:
			s.Notify.Notify(ctx, settled.RecipientID, "payment_failed",
				"Payment failed",
				fmt.Sprintf("A payment of %s %s failed", settled.Amount, settled.Currency), settled.ID)
		}
	}
	return settled, applied, nil
}

func statusFromProvider(status string) models.PaymentStatus {
	if status == payrail.StatusFailed {
		return models.PaymentFailed
	}
	return models.PaymentCompleted
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
