package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/jackc/pgx/v5"

	"taskmarket/internal/models"
	"taskmarket/internal/money"
)

const paymentColumns = `
	id, task_id, submission_id, payer_id, recipient_id, amount, currency,
	payment_type, status, external_payment_id, transaction_hash,
	gas_fee, platform_fee, net_amount, failure_reason, completed_at,
	created_at, updated_at`

func scanPayment(row pgx.Row) (*models.Payment, error) {
	var p models.Payment
	var taskID, submissionID, externalID, txHash sql.NullString
	var gasFee, platformFee, netAmount, failureReason sql.NullString
	var completedAt sql.NullTime
	err := row.Scan(
		&p.ID,
		&taskID,
		&submissionID,
		&p.PayerID,
		&p.RecipientID,
		&p.Amount,
		&p.Currency,
		&p.PaymentType,
		&p.Status,
		&externalID,
		&txHash,
		&gasFee,
		&platformFee,
		&netAmount,
		&failureReason,
		&completedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	assign := func(dst **string, v sql.NullString) {
		if v.Valid {
			s := v.String
			*dst = &s
		}
	}
	assign(&p.TaskID, taskID)
	assign(&p.SubmissionID, submissionID)
	assign(&p.ExternalPaymentID, externalID)
	assign(&p.TransactionHash, txHash)
	assign(&p.GasFee, gasFee)
	assign(&p.PlatformFee, platformFee)
	assign(&p.NetAmount, netAmount)
	assign(&p.FailureReason, failureReason)
	if completedAt.Valid {
		p.CompletedAt = &completedAt.Time
	}
	return &p, nil
}

func insertPayment(ctx context.Context, tx pgx.Tx, p *models.Payment) error {
	return tx.QueryRow(ctx, `
		INSERT INTO payments (
			id, task_id, submission_id, payer_id, recipient_id,
			amount, currency, payment_type, status
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING created_at, updated_at
	`,
		p.ID, p.TaskID, p.SubmissionID, p.PayerID, p.RecipientID,
		p.Amount, p.Currency, p.PaymentType, p.Status,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (s *Store) CreatePayment(ctx context.Context, p *models.Payment) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		return insertPayment(ctx, tx, p)
	})
}

func (s *Store) GetPayment(ctx context.Context, id string) (*models.Payment, error) {
	row := s.Pool.QueryRow(ctx, `SELECT`+paymentColumns+` FROM payments WHERE id=$1`, id)
	p, err := scanPayment(row)
	if isNoRows(err) {
		return nil, models.ErrPaymentNotFound
	}
	return p, err
}

func (s *Store) GetPaymentByExternalID(ctx context.Context, externalID string) (*models.Payment, error) {
	row := s.Pool.QueryRow(ctx,
		`SELECT`+paymentColumns+` FROM payments WHERE external_payment_id=$1`, externalID)
	p, err := scanPayment(row)
	if isNoRows(err) {
		return nil, models.ErrPaymentNotFound
	}
	return p, err
}

// MarkPaymentProcessing records the provider handle after transfer initiation.
func (s *Store) MarkPaymentProcessing(ctx context.Context, id, externalID string) (*models.Payment, error) {
	row := s.Pool.QueryRow(ctx, `
		UPDATE payments
		SET status='processing', external_payment_id=$2, updated_at=now()
		WHERE id=$1 AND status='pending'
		RETURNING`+paymentColumns,
		id, externalID)
	p, err := scanPayment(row)
	if isNoRows(err) {
		if _, gerr := s.GetPayment(ctx, id); gerr != nil {
			return nil, gerr
		}
		return nil, models.ErrPaymentFinalized
	}
	return p, err
}

func (s *Store) ListPaymentsByStatus(ctx context.Context, status models.PaymentStatus, limit int) ([]*models.Payment, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT`+paymentColumns+`
		FROM payments
		WHERE status=$1
		ORDER BY created_at
		LIMIT $2
	`, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

type Settlement struct {
	PaymentID         string // either PaymentID or ExternalPaymentID selects the row
	ExternalPaymentID string
	Status            models.PaymentStatus // completed or failed
	TransactionHash   string
	GasFee            string
	PlatformFee       string
	FailureReason     string
	Now               time.Time
}

// SettlePayment drives the terminal payment transition. It is idempotent: a
// payment already in a terminal state returns applied=false and no writes.
// Completion computes net_amount = amount - gas_fee - platform_fee and, for
// task_reward payments, flips the submission's is_paid and credits the
// recipient's total_earned and reputation_score — all in one transaction, so
// the ledger and the submission can never disagree.
func (s *Store) SettlePayment(ctx context.Context, set Settlement) (*models.Payment, bool, error) {
	var payment *models.Payment
	applied := false

	err := s.withTx(ctx, func(tx pgx.Tx) error {
		var row pgx.Row
		if set.ExternalPaymentID != "" {
			row = tx.QueryRow(ctx,
				`SELECT`+paymentColumns+` FROM payments WHERE external_payment_id=$1 FOR UPDATE`,
				set.ExternalPaymentID)
		} else {
			row = tx.QueryRow(ctx,
				`SELECT`+paymentColumns+` FROM payments WHERE id=$1 FOR UPDATE`,
				set.PaymentID)
		}

		var err error
		payment, err = scanPayment(row)
		if isNoRows(err) {
			return models.ErrPaymentNotFound
		}
		if err != nil {
			return err
		}

		if payment.Status.Terminal() {
			return nil // replay: no-op
		}

		switch set.Status {
		case models.PaymentCompleted:
			if err := settleCompleted(ctx, tx, payment, set); err != nil {
				return err
			}
		case models.PaymentFailed:
			if err := settleFailed(ctx, tx, payment, set); err != nil {
				return err
			}
		default:
			return models.ErrBadStatusChange
		}

		applied = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return payment, applied, nil
}

func settleCompleted(ctx context.Context, tx pgx.Tx, payment *models.Payment, set Settlement) error {
	gas := set.GasFee
	if gas == "" {
		gas = "0"
	}
	platform := set.PlatformFee
	if platform == "" {
		platform = "0"
	}
	net, err := money.Net(payment.Amount, gas, platform)
	if err != nil {
		return err
	}

	now := set.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	row := tx.QueryRow(ctx, `
		UPDATE payments
		SET status='completed', transaction_hash=NULLIF($2,''), gas_fee=$3, platform_fee=$4,
		    net_amount=$5, completed_at=$6, updated_at=now()
		WHERE id=$1
		RETURNING`+paymentColumns,
		payment.ID, set.TransactionHash, gas, platform, net, now)
	updated, err := scanPayment(row)
	if err != nil {
		return err
	}
	*payment = *updated

	if payment.PaymentType != models.PaymentTaskReward {
		return nil
	}

	if payment.SubmissionID != nil {
		if _, err := tx.Exec(ctx,
			`UPDATE submissions SET is_paid=true, updated_at=now() WHERE id=$1`,
			*payment.SubmissionID); err != nil {
			return err
		}
	}

	var earned string
	if err := tx.QueryRow(ctx,
		`SELECT total_earned FROM users WHERE id=$1 FOR UPDATE`, payment.RecipientID,
	).Scan(&earned); err != nil {
		return err
	}
	newTotal, err := money.Add(earned, net)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		UPDATE users
		SET total_earned=$2, reputation_score=reputation_score+1, updated_at=now()
		WHERE id=$1
	`, payment.RecipientID, newTotal)
	return err
}

func settleFailed(ctx context.Context, tx pgx.Tx, payment *models.Payment, set Settlement) error {
	row := tx.QueryRow(ctx, `
		UPDATE payments
		SET status='failed', transaction_hash=NULLIF($2,''), failure_reason=NULLIF($3,''), updated_at=now()
		WHERE id=$1
		RETURNING`+paymentColumns,
		payment.ID, set.TransactionHash, set.FailureReason)
	updated, err := scanPayment(row)
	if err != nil {
		return err
	}
	*payment = *updated

	if payment.PaymentType == models.PaymentTaskReward && payment.SubmissionID != nil {
		_, err = tx.Exec(ctx,
			`UPDATE submissions SET is_paid=false, updated_at=now() WHERE id=$1`,
			*payment.SubmissionID)
	}
	return err
}
