package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"taskmarket/internal/models"
)

const submissionColumns = `
	id, task_id, user_id, submitter_nullifier, submission_data, status,
	reviewer_id, quality_score, is_paid, reviewed_at, created_at, updated_at`

func scanSubmission(row pgx.Row) (*models.Submission, error) {
	var sub models.Submission
	var reviewerID sql.NullString
	var qualityScore sql.NullFloat64
	var reviewedAt sql.NullTime
	err := row.Scan(
		&sub.ID,
		&sub.TaskID,
		&sub.UserID,
		&sub.SubmitterNullifier,
		&sub.SubmissionData,
		&sub.Status,
		&reviewerID,
		&qualityScore,
		&sub.IsPaid,
		&reviewedAt,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if reviewerID.Valid {
		sub.ReviewerID = &reviewerID.String
	}
	if qualityScore.Valid {
		sub.QualityScore = &qualityScore.Float64
	}
	if reviewedAt.Valid {
		sub.ReviewedAt = &reviewedAt.Time
	}
	return &sub, nil
}

// CreateSubmission performs the whole intake inside one transaction. The task
// row is locked first, so the max_submissions check cannot race a concurrent
// insert; the two unique indexes on (task_id, user_id) and
// (task_id, submitter_nullifier) are the backstop for duplicate identities.
func (s *Store) CreateSubmission(ctx context.Context, sub *models.Submission, dailyLimit int, now time.Time) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			SELECT`+taskColumns+` FROM tasks WHERE id=$1 FOR UPDATE
		`, sub.TaskID)
		task, err := scanTask(row)
		if isNoRows(err) {
			return models.ErrTaskNotFound
		}
		if err != nil {
			return err
		}

		if task.Status != models.TaskActive {
			return models.ErrTaskNotActive
		}
		if task.Expired(now) {
			return models.ErrTaskExpired
		}
		if task.CreatorID == sub.UserID {
			return models.ErrOwnTask
		}

		var count int
		if err := tx.QueryRow(ctx,
			`SELECT COUNT(*) FROM submissions WHERE task_id=$1`, sub.TaskID,
		).Scan(&count); err != nil {
			return err
		}
		if count >= task.MaxSubmissions {
			return models.ErrTaskFull
		}

		if dailyLimit > 0 {
			var today int
			if err := tx.QueryRow(ctx, `
				SELECT COUNT(*) FROM submissions
				WHERE user_id=$1 AND created_at >= date_trunc('day', $2::timestamptz)
			`, sub.UserID, now).Scan(&today); err != nil {
				return err
			}
			if today >= dailyLimit {
				return models.ErrDailyLimitReached
			}
		}

		if sub.ID == "" {
			sub.ID = uuid.NewString()
		}
		err = tx.QueryRow(ctx, `
			INSERT INTO submissions (id, task_id, user_id, submitter_nullifier, submission_data, status)
			VALUES ($1, $2, $3, $4, $5, 'pending')
			RETURNING created_at, updated_at
		`, sub.ID, sub.TaskID, sub.UserID, sub.SubmitterNullifier, sub.SubmissionData,
		).Scan(&sub.CreatedAt, &sub.UpdatedAt)
		if isUniqueViolation(err) {
			return models.ErrDuplicateSubmission
		}
		if err != nil {
			return err
		}
		sub.Status = models.SubmissionPending
		return nil
	})
}

func (s *Store) GetSubmission(ctx context.Context, id string) (*models.Submission, error) {
	row := s.Pool.QueryRow(ctx, `SELECT`+submissionColumns+` FROM submissions WHERE id=$1`, id)
	sub, err := scanSubmission(row)
	if isNoRows(err) {
		return nil, models.ErrSubmissionNotFound
	}
	return sub, err
}

// ClaimSubmission moves pending -> under_review and records the reviewer.
func (s *Store) ClaimSubmission(ctx context.Context, id, reviewerID string) (*models.Submission, error) {
	row := s.Pool.QueryRow(ctx, `
		UPDATE submissions
		SET status='under_review', reviewer_id=$2, updated_at=now()
		WHERE id=$1 AND status='pending'
		RETURNING`+submissionColumns,
		id, reviewerID)
	sub, err := scanSubmission(row)
	if isNoRows(err) {
		if _, gerr := s.GetSubmission(ctx, id); gerr != nil {
			return nil, gerr
		}
		return nil, models.ErrAlreadyReviewed
	}
	return sub, err
}

type ReviewParams struct {
	SubmissionID string
	ReviewerID   string
	Decision     models.SubmissionStatus
	QualityScore *float64
	Notes        string
	// Reward describes the payment row created when the decision is approved.
	Reward *RewardParams
}

type RewardParams struct {
	TaskID      string
	PayerID     string
	RecipientID string
	Amount      string
	Currency    string
}

// ReviewSubmission applies a terminal review decision. The guarded UPDATE is
// the whole state machine: terminal rows match zero rows and surface as a
// conflict. When the decision is approved, the task_reward payment is created
// in the same transaction, so a reviewed submission can never miss its payment.
func (s *Store) ReviewSubmission(ctx context.Context, p ReviewParams) (*models.Submission, *models.Payment, error) {
	var sub *models.Submission
	var payment *models.Payment

	err := s.withTx(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			UPDATE submissions
			SET status=$2, reviewer_id=$3, quality_score=$4, reviewed_at=now(), updated_at=now()
			WHERE id=$1 AND status IN ('pending','under_review')
			RETURNING`+submissionColumns,
			p.SubmissionID, p.Decision, p.ReviewerID, p.QualityScore)

		var err error
		sub, err = scanSubmission(row)
		if isNoRows(err) {
			var exists bool
			if serr := tx.QueryRow(ctx,
				`SELECT EXISTS (SELECT 1 FROM submissions WHERE id=$1)`, p.SubmissionID,
			).Scan(&exists); serr != nil {
				return serr
			}
			if !exists {
				return models.ErrSubmissionNotFound
			}
			return models.ErrAlreadyReviewed
		}
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO task_reviews (id, submission_id, reviewer_id, decision, quality_score, notes)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, uuid.NewString(), p.SubmissionID, p.ReviewerID, p.Decision, p.QualityScore, p.Notes)
		if err != nil {
			return err
		}

		if p.Decision == models.SubmissionApproved && p.Reward != nil {
			payment = &models.Payment{
				ID:           uuid.NewString(),
				TaskID:       &p.Reward.TaskID,
				SubmissionID: &p.SubmissionID,
				PayerID:      p.Reward.PayerID,
				RecipientID:  p.Reward.RecipientID,
				Amount:       p.Reward.Amount,
				Currency:     p.Reward.Currency,
				PaymentType:  models.PaymentTaskReward,
				Status:       models.PaymentPending,
			}
			return insertPayment(ctx, tx, payment)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return sub, payment, nil
}

// ListSubmissionsForTally returns the submissions that participate in the
// consensus tally: approved and pending only. Rejected rows stay out.
func (s *Store) ListSubmissionsForTally(ctx context.Context, taskID string) ([]*models.Submission, error) {
	return s.listSubmissions(ctx, `
		SELECT`+submissionColumns+`
		FROM submissions
		WHERE task_id=$1 AND status IN ('approved','pending')
		ORDER BY created_at
	`, taskID)
}

func (s *Store) ListSubmissionsByTask(ctx context.Context, taskID string) ([]*models.Submission, error) {
	return s.listSubmissions(ctx, `
		SELECT`+submissionColumns+`
		FROM submissions
		WHERE task_id=$1
		ORDER BY created_at
	`, taskID)
}

func (s *Store) ListSubmissionsByUser(ctx context.Context, userID string, limit int) ([]*models.Submission, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.listSubmissions(ctx, `
		SELECT`+submissionColumns+`
		FROM submissions
		WHERE user_id=$1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
}

func (s *Store) listSubmissions(ctx context.Context, query string, args ...any) ([]*models.Submission, error) {
	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []*models.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}
