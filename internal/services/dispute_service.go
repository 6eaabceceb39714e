package services

import (
	"context"
	"fmt"
	"strings"

	"taskmarket/internal/models"
)

type DisputeStore interface {
	CreateDispute(ctx context.Context, d *models.Dispute) error
	GetDispute(ctx context.Context, id string) (*models.Dispute, error)
	ResolveDispute(ctx context.Context, id, resolvedBy string, verdict models.DisputeStatus, resolution string) (*models.Dispute, error)
}

type DisputeService struct {
	Store  DisputeStore
	Notify Notifier
}

// Open files a dispute against a rejected submission. The store enforces that
// only the submitter may raise it and that one open dispute exists at a time.
func (s *DisputeService) Open(ctx context.Context, caller *models.User, submissionID, reason string) (*models.Dispute, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, fmt.Errorf("%w: reason is required", models.ErrValidation)
	}
	d := &models.Dispute{
		SubmissionID: submissionID,
		RaisedBy:     caller.ID,
		Reason:       strings.TrimSpace(reason),
	}
	if err := s.Store.CreateDispute(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *DisputeService) Get(ctx context.Context, caller *models.User, id string) (*models.Dispute, error) {
	d, err := s.Store.GetDispute(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.RaisedBy != caller.ID && !caller.IsAdmin {
		return nil, models.ErrNotPermitted
	}
	return d, nil
}

// Resolve records the admin verdict. An upheld dispute does not reopen the
// submission's review state; remediation is a fresh payment, decided by the
// admin out of band.
func (s *DisputeService) Resolve(ctx context.Context, caller *models.User, id, verdict, resolution string) (*models.Dispute, error) {
	if !caller.IsAdmin {
		return nil, models.ErrNotPermitted
	}
	var status models.DisputeStatus
	switch verdict {
	case string(models.DisputeUpheld):
		status = models.DisputeUpheld
	case string(models.DisputeOverruled):
		status = models.DisputeOverruled
	default:
		return nil, fmt.Errorf("%w: verdict must be upheld or overruled", models.ErrValidation)
	}

	d, err := s.Store.ResolveDispute(ctx, id, caller.ID, status, resolution)
	if err != nil {
		return nil, err
	}
	s.Notify.Notify(ctx, d.RaisedBy, "dispute_resolved",
		"Dispute resolved", fmt.Sprintf("Your dispute was %s", d.Status), d.ID)
	return d, nil
}
