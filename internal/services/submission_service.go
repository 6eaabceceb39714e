package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"taskmarket/internal/models"
	"taskmarket/internal/store"
	"taskmarket/internal/taskdata"
)

type SubmissionStore interface {
	GetTask(ctx context.Context, id string) (*models.Task, error)
	CreateSubmission(ctx context.Context, sub *models.Submission, dailyLimit int, now time.Time) error
	GetSubmission(ctx context.Context, id string) (*models.Submission, error)
	ClaimSubmission(ctx context.Context, id, reviewerID string) (*models.Submission, error)
	ReviewSubmission(ctx context.Context, p store.ReviewParams) (*models.Submission, *models.Payment, error)
	ListSubmissionsByUser(ctx context.Context, userID string, limit int) ([]*models.Submission, error)
}

type SubmissionService struct {
	Store      SubmissionStore
	Notify     Notifier
	DailyLimit int
}

// Submit validates the payload against the task's type and hands the
// eligibility checks to the store transaction. Both sybil avenues — repeat
// user ID and repeat nullifier — end in ErrDuplicateSubmission there.
func (s *SubmissionService) Submit(ctx context.Context, submitter *models.User, taskID string, raw json.RawMessage) (*models.Submission, error) {
	task, err := s.Store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	normalized, err := taskdata.Validate(task.TaskType, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", models.ErrValidation, err)
	}

	sub := &models.Submission{
		TaskID:             taskID,
		UserID:             submitter.ID,
		SubmitterNullifier: submitter.NullifierHash,
		SubmissionData:     normalized,
	}
	if err := s.Store.CreateSubmission(ctx, sub, s.DailyLimit, time.Now().UTC()); err != nil {
		return nil, err
	}

	s.Notify.Notify(ctx, task.CreatorID, "submission_received",
		"New submission", fmt.Sprintf("Task %q received a new submission", task.Title), sub.ID)
	return sub, nil
}

// Get returns a submission to anyone with a stake in it.
func (s *SubmissionService) Get(ctx context.Context, caller *models.User, id string) (*models.Submission, error) {
	sub, err := s.Store.GetSubmission(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, caller, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *SubmissionService) ListMine(ctx context.Context, caller *models.User, limit int) ([]*models.Submission, error) {
	return s.Store.ListSubmissionsByUser(ctx, caller.ID, limit)
}

// Claim assigns the caller as reviewer, moving the row to under_review.
func (s *SubmissionService) Claim(ctx context.Context, caller *models.User, id string) (*models.Submission, error) {
	sub, err := s.Store.GetSubmission(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.reviewerAuthorize(ctx, caller, sub); err != nil {
		return nil, err
	}
	return s.Store.ClaimSubmission(ctx, id, caller.ID)
}

type ReviewInput struct {
	Decision     string   `json:"decision"`
	QualityScore *float64 `json:"quality_score"`
	Notes        string   `json:"notes"`
}

// Review applies the terminal decision. Approval creates the task_reward
// payment in the same store transaction.
func (s *SubmissionService) Review(ctx context.Context, caller *models.User, id string, in ReviewInput) (*models.Submission, *models.Payment, error) {
	var decision models.SubmissionStatus
	switch in.Decision {
	case string(models.SubmissionApproved):
		decision = models.SubmissionApproved
	case string(models.SubmissionRejected):
		decision = models.SubmissionRejected
	default:
		return nil, nil, fmt.Errorf("%w: decision must be approved or rejected", models.ErrValidation)
	}
	if in.QualityScore != nil && (*in.QualityScore < 0 || *in.QualityScore > 5) {
		return nil, nil, fmt.Errorf("%w: quality_score must be in [0,5]", models.ErrValidation)
	}

	sub, err := s.Store.GetSubmission(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if err := s.reviewerAuthorize(ctx, caller, sub); err != nil {
		return nil, nil, err
	}

	task, err := s.Store.GetTask(ctx, sub.TaskID)
	if err != nil {
		return nil, nil, err
	}

	params := store.ReviewParams{
		SubmissionID: id,
		ReviewerID:   caller.ID,
		Decision:     decision,
		QualityScore: in.QualityScore,
		Notes:        in.Notes,
	}
	if decision == models.SubmissionApproved {
		params.Reward = &store.RewardParams{
			TaskID:      task.ID,
			PayerID:     task.CreatorID,
			RecipientID: sub.UserID,
			Amount:      task.RewardAmount,
			Currency:    task.RewardCurrency,
		}
	}

	reviewed, payment, err := s.Store.ReviewSubmission(ctx, params)
	if err != nil {
		return nil, nil, err
	}

	s.Notify.Notify(ctx, sub.UserID, "submission_"+string(decision),
		"Submission "+string(decision),
		fmt.Sprintf("Your submission to %q was %s", task.Title, decision), reviewed.ID)
	return reviewed, payment, nil
}

// authorize: submitter, task creator, assigned reviewer, or admin.
func (s *SubmissionService) authorize(ctx context.Context, caller *models.User, sub *models.Submission) error {
	if caller.IsAdmin || caller.ID == sub.UserID {
		return nil
	}
	if sub.ReviewerID != nil && *sub.ReviewerID == caller.ID {
		return nil
	}
	task, err := s.Store.GetTask(ctx, sub.TaskID)
	if err != nil {
		return err
	}
	if task.CreatorID == caller.ID {
		return nil
	}
	return models.ErrNotPermitted
}

// reviewerAuthorize: task creator, assigned reviewer, or admin — never the
// submitter reviewing their own work.
func (s *SubmissionService) reviewerAuthorize(ctx context.Context, caller *models.User, sub *models.Submission) error {
	if sub.ReviewerID != nil && *sub.ReviewerID == caller.ID {
		return nil
	}
	if caller.IsAdmin {
		return nil
	}
	task, err := s.Store.GetTask(ctx, sub.TaskID)
	if err != nil {
		return err
	}
	if task.CreatorID == caller.ID {
		return nil
	}
	return models.ErrNotPermitted
}
