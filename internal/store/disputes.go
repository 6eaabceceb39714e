package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"taskmarket/internal/models"
)

const disputeColumns = `
	id, submission_id, raised_by, reason, status, resolved_by, resolution,
	created_at, resolved_at`

func scanDispute(row pgx.Row) (*models.Dispute, error) {
	var d models.Dispute
	var resolvedBy sql.NullString
	var resolvedAt sql.NullTime
	err := row.Scan(
		&d.ID,
		&d.SubmissionID,
		&d.RaisedBy,
		&d.Reason,
		&d.Status,
		&resolvedBy,
		&d.Resolution,
		&d.CreatedAt,
		&resolvedAt,
	)
	if err != nil {
		return nil, err
	}
	if resolvedBy.Valid {
		d.ResolvedBy = &resolvedBy.String
	}
	if resolvedAt.Valid {
		d.ResolvedAt = &resolvedAt.Time
	}
	return &d, nil
}

// CreateDispute lets the submitter contest a rejection. The submission row is
// locked while we check its state so the one-open-dispute rule holds.
func (s *Store) CreateDispute(ctx context.Context, d *models.Dispute) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx,
			`SELECT`+submissionColumns+` FROM submissions WHERE id=$1 FOR UPDATE`,
			d.SubmissionID)
		sub, err := scanSubmission(row)
		if isNoRows(err) {
			return models.ErrSubmissionNotFound
		}
		if err != nil {
			return err
		}
		if sub.UserID != d.RaisedBy {
			return models.ErrNotPermitted
		}
		if sub.Status != models.SubmissionRejected {
			return models.ErrNotDisputable
		}

		var open bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM disputes WHERE submission_id=$1 AND status='open')`,
			d.SubmissionID,
		).Scan(&open); err != nil {
			return err
		}
		if open {
			return models.ErrDisputeExists
		}

		if d.ID == "" {
			d.ID = uuid.NewString()
		}
		d.Status = models.DisputeOpen
		return tx.QueryRow(ctx, `
			INSERT INTO disputes (id, submission_id, raised_by, reason, status)
			VALUES ($1,$2,$3,$4,'open')
			RETURNING created_at
		`, d.ID, d.SubmissionID, d.RaisedBy, d.Reason).Scan(&d.CreatedAt)
	})
}

func (s *Store) GetDispute(ctx context.Context, id string) (*models.Dispute, error) {
	row := s.Pool.QueryRow(ctx, `SELECT`+disputeColumns+` FROM disputes WHERE id=$1`, id)
	d, err := scanDispute(row)
	if isNoRows(err) {
		return nil, models.ErrDisputeNotFound
	}
	return d, err
}

// ResolveDispute closes an open dispute with an admin verdict.
func (s *Store) ResolveDispute(ctx context.Context, id, resolvedBy string, verdict models.DisputeStatus, resolution string) (*models.Dispute, error) {
	row := s.Pool.QueryRow(ctx, `
		UPDATE disputes
		SET status=$2, resolved_by=$3, resolution=$4, resolved_at=now()
		WHERE id=$1 AND status='open'
		RETURNING`+disputeColumns,
		id, verdict, resolvedBy, resolution)
	d, err := scanDispute(row)
	if isNoRows(err) {
		if _, gerr := s.GetDispute(ctx, id); gerr != nil {
			return nil, gerr
		}
		return nil, models.ErrDisputeClosed
	}
	return d, err
}
