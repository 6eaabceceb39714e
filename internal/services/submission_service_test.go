package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskmarket/internal/models"
	"taskmarket/internal/store"
)

type notice struct {
	UserID string
	Kind   string
}

type recordingNotifier struct {
	sent []notice
}

func (n *recordingNotifier) Notify(_ context.Context, userID, kind, _, _, _ string) {
	n.sent = append(n.sent, notice{UserID: userID, Kind: kind})
}

type fakeSubmissionStore struct {
	task       *models.Task
	sub        *models.Submission
	createErr  error
	created    *models.Submission
	reviewed   *store.ReviewParams
	claimedBy  string
	listResult []*models.Submission
}

func (f *fakeSubmissionStore) GetTask(_ context.Context, id string) (*models.Task, error) {
	if f.task == nil || f.task.ID != id {
		return nil, models.ErrTaskNotFound
	}
	return f.task, nil
}

func (f *fakeSubmissionStore) CreateSubmission(_ context.Context, sub *models.Submission, _ int, _ time.Time) error {
	if f.createErr != nil {
		return f.createErr
	}
	sub.ID = "sub-1"
	sub.Status = models.SubmissionPending
	f.created = sub
	return nil
}

func (f *fakeSubmissionStore) GetSubmission(_ context.Context, id string) (*models.Submission, error) {
	if f.sub == nil || f.sub.ID != id {
		return nil, models.ErrSubmissionNotFound
	}
	return f.sub, nil
}

func (f *fakeSubmissionStore) ClaimSubmission(_ context.Context, id, reviewerID string) (*models.Submission, error) {
	f.claimedBy = reviewerID
	f.sub.Status = models.SubmissionUnderReview
	f.sub.ReviewerID = &reviewerID
	return f.sub, nil
}

func (f *fakeSubmissionStore) ReviewSubmission(_ context.Context, p store.ReviewParams) (*models.Submission, *models.Payment, error) {
	f.reviewed = &p
	f.sub.Status = p.Decision
	var payment *models.Payment
	if p.Reward != nil {
		payment = &models.Payment{
			ID:          "pay-1",
			PayerID:     p.Reward.PayerID,
			RecipientID: p.Reward.RecipientID,
			Amount:      p.Reward.Amount,
			Currency:    p.Reward.Currency,
			PaymentType: models.PaymentTaskReward,
			Status:      models.PaymentPending,
		}
	}
	return f.sub, payment, nil
}

func (f *fakeSubmissionStore) ListSubmissionsByUser(context.Context, string, int) ([]*models.Submission, error) {
	return f.listResult, nil
}

func activeTask() *models.Task {
	return &models.Task{
		ID:             "t1",
		CreatorID:      "creator",
		Title:          "Compare responses",
		TaskType:       "pairwise_ab",
		RewardAmount:   "1000000",
		RewardCurrency: "WLD",
		MaxSubmissions: 3,
		Status:         models.TaskActive,
	}
}

func TestSubmitNormalizesPayload(t *testing.T) {
	st := &fakeSubmissionStore{task: activeTask()}
	notifier := &recordingNotifier{}
	svc := &SubmissionService{Store: st, Notify: notifier, DailyLimit: 50}

	submitter := &models.User{ID: "worker", NullifierHash: "0xnull"}
	sub, err := svc.Submit(context.Background(), submitter, "t1", json.RawMessage(`{"chosen_response":"b"}`))
	require.NoError(t, err)

	assert.Equal(t, "worker", sub.UserID)
	assert.Equal(t, "0xnull", sub.SubmitterNullifier)
	assert.JSONEq(t, `{"chosen_response":"B"}`, sub.SubmissionData)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "creator", notifier.sent[0].UserID)
	assert.Equal(t, "submission_received", notifier.sent[0].Kind)
}

func TestSubmitRejectsBadPayload(t *testing.T) {
	st := &fakeSubmissionStore{task: activeTask()}
	svc := &SubmissionService{Store: st, Notify: NopNotifier{}}

	_, err := svc.Submit(context.Background(), &models.User{ID: "worker"}, "t1", json.RawMessage(`{"chosen_response":"C"}`))
	assert.ErrorIs(t, err, models.ErrValidation)
	assert.Nil(t, st.created)
}

func TestSubmitPassesThroughStoreErrors(t *testing.T) {
	st := &fakeSubmissionStore{task: activeTask(), createErr: models.ErrDuplicateSubmission}
	svc := &SubmissionService{Store: st, Notify: NopNotifier{}}

	_, err := svc.Submit(context.Background(), &models.User{ID: "worker"}, "t1", json.RawMessage(`{"chosen_response":"A"}`))
	assert.ErrorIs(t, err, models.ErrDuplicateSubmission)
}

func TestSubmitUnknownTask(t *testing.T) {
	svc := &SubmissionService{Store: &fakeSubmissionStore{}, Notify: NopNotifier{}}
	_, err := svc.Submit(context.Background(), &models.User{ID: "worker"}, "missing", json.RawMessage(`{}`))
	assert.ErrorIs(t, err, models.ErrTaskNotFound)
}

func TestClaimByCreator(t *testing.T) {
	st := &fakeSubmissionStore{
		task: activeTask(),
		sub:  &models.Submission{ID: "sub-1", TaskID: "t1", UserID: "worker", Status: models.SubmissionPending},
	}
	svc := &SubmissionService{Store: st, Notify: NopNotifier{}}

	sub, err := svc.Claim(context.Background(), &models.User{ID: "creator"}, "sub-1")
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionUnderReview, sub.Status)
	assert.Equal(t, "creator", st.claimedBy)
}

func TestClaimByStrangerDenied(t *testing.T) {
	st := &fakeSubmissionStore{
		task: activeTask(),
		sub:  &models.Submission{ID: "sub-1", TaskID: "t1", UserID: "worker", Status: models.SubmissionPending},
	}
	svc := &SubmissionService{Store: st, Notify: NopNotifier{}}

	_, err := svc.Claim(context.Background(), &models.User{ID: "someone-else"}, "sub-1")
	assert.ErrorIs(t, err, models.ErrNotPermitted)
}

func TestReviewApproveCreatesReward(t *testing.T) {
	st := &fakeSubmissionStore{
		task: activeTask(),
		sub:  &models.Submission{ID: "sub-1", TaskID: "t1", UserID: "worker", Status: models.SubmissionPending},
	}
	notifier := &recordingNotifier{}
	svc := &SubmissionService{Store: st, Notify: notifier}

	score := 4.5
	sub, payment, err := svc.Review(context.Background(), &models.User{ID: "creator"}, "sub-1",
		ReviewInput{Decision: "approved", QualityScore: &score})
	require.NoError(t, err)

	assert.Equal(t, models.SubmissionApproved, sub.Status)
	require.NotNil(t, payment)
	assert.Equal(t, models.PaymentTaskReward, payment.PaymentType)
	assert.Equal(t, "1000000", payment.Amount)
	assert.Equal(t, "creator", payment.PayerID)
	assert.Equal(t, "worker", payment.RecipientID)

	require.NotNil(t, st.reviewed)
	require.NotNil(t, st.reviewed.Reward)
	assert.Equal(t, "WLD", st.reviewed.Reward.Currency)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "worker", notifier.sent[0].UserID)
	assert.Equal(t, "submission_approved", notifier.sent[0].Kind)
}

func TestReviewRejectHasNoReward(t *testing.T) {
	st := &fakeSubmissionStore{
		task: activeTask(),
		sub:  &models.Submission{ID: "sub-1", TaskID: "t1", UserID: "worker", Status: models.SubmissionPending},
	}
	svc := &SubmissionService{Store: st, Notify: NopNotifier{}}

	sub, payment, err := svc.Review(context.Background(), &models.User{ID: "creator"}, "sub-1",
		ReviewInput{Decision: "rejected", Notes: "off topic"})
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionRejected, sub.Status)
	assert.Nil(t, payment)
	assert.Nil(t, st.reviewed.Reward)
}

func TestReviewValidation(t *testing.T) {
	st := &fakeSubmissionStore{
		task: activeTask(),
		sub:  &models.Submission{ID: "sub-1", TaskID: "t1", UserID: "worker"},
	}
	svc := &SubmissionService{Store: st, Notify: NopNotifier{}}
	creator := &models.User{ID: "creator"}

	_, _, err := svc.Review(context.Background(), creator, "sub-1", ReviewInput{Decision: "maybe"})
	assert.ErrorIs(t, err, models.ErrValidation)

	bad := 7.0
	_, _, err = svc.Review(context.Background(), creator, "sub-1", ReviewInput{Decision: "approved", QualityScore: &bad})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestReviewBySubmitterDenied(t *testing.T) {
	st := &fakeSubmissionStore{
		task: activeTask(),
		sub:  &models.Submission{ID: "sub-1", TaskID: "t1", UserID: "worker"},
	}
	svc := &SubmissionService{Store: st, Notify: NopNotifier{}}

	_, _, err := svc.Review(context.Background(), &models.User{ID: "worker"}, "sub-1", ReviewInput{Decision: "approved"})
	assert.ErrorIs(t, err, models.ErrNotPermitted)
}

func TestReviewByAdminAllowed(t *testing.T) {
	st := &fakeSubmissionStore{
		task: activeTask(),
		sub:  &models.Submission{ID: "sub-1", TaskID: "t1", UserID: "worker"},
	}
	svc := &SubmissionService{Store: st, Notify: NopNotifier{}}

	_, _, err := svc.Review(context.Background(), &models.User{ID: "mod", IsAdmin: true}, "sub-1", ReviewInput{Decision: "rejected"})
	assert.NoError(t, err)
}
