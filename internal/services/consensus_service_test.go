package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskmarket/internal/models"
)

type fakeConsensusStore struct {
	task *models.Task
	subs []*models.Submission
}

func (f *fakeConsensusStore) GetTask(_ context.Context, id string) (*models.Task, error) {
	if f.task == nil || f.task.ID != id {
		return nil, models.ErrTaskNotFound
	}
	return f.task, nil
}

func (f *fakeConsensusStore) ListSubmissionsForTally(context.Context, string) ([]*models.Submission, error) {
	return f.subs, nil
}

func pairwiseSub(data string) *models.Submission {
	return &models.Submission{SubmissionData: data}
}

func TestTallyMajority(t *testing.T) {
	store := &fakeConsensusStore{
		task: &models.Task{ID: "t1", TaskType: "pairwise_ab", MaxSubmissions: 3},
		subs: []*models.Submission{
			pairwiseSub(`{"chosen_response":"A"}`),
			pairwiseSub(`{"chosen_response":"B"}`),
			pairwiseSub(`{"chosen_response":"B"}`),
		},
	}
	svc := &ConsensusService{Store: store}

	report, err := svc.Tally(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, 3, report.TotalResponses)
	assert.Equal(t, 1, report.ChoiceACount)
	assert.Equal(t, 2, report.ChoiceBCount)
	require.NotNil(t, report.ConsensusChoice)
	assert.Equal(t, "B", *report.ConsensusChoice)
	assert.Equal(t, 66.67, report.AgreementPercentage)
}

func TestTallyTie(t *testing.T) {
	report := TallyPairwise([]*models.Submission{
		pairwiseSub(`{"chosen_response":"A"}`),
		pairwiseSub(`{"chosen_response":"B"}`),
	})
	assert.Nil(t, report.ConsensusChoice)
	assert.Equal(t, 50.0, report.AgreementPercentage)
	assert.Equal(t, 2, report.TotalResponses)
}

func TestTallyEmpty(t *testing.T) {
	report := TallyPairwise(nil)
	assert.Zero(t, report.TotalResponses)
	assert.Nil(t, report.ConsensusChoice)
	assert.Zero(t, report.AgreementPercentage)
	assert.Nil(t, report.Confidence)
}

func TestTallySkipsMalformedRows(t *testing.T) {
	report := TallyPairwise([]*models.Submission{
		pairwiseSub(`{"chosen_response":"A"}`),
		pairwiseSub(`{"chosen_response":"A"}`),
		pairwiseSub(`not json`),
		pairwiseSub(`{"chosen_response":"Q"}`),
	})
	assert.Equal(t, 2, report.TotalResponses)
	assert.Equal(t, 2, report.SkippedEntries)
	require.NotNil(t, report.ConsensusChoice)
	assert.Equal(t, "A", *report.ConsensusChoice)
	assert.Equal(t, 100.0, report.AgreementPercentage)
}

func TestTallyLowerCaseChoicesCount(t *testing.T) {
	report := TallyPairwise([]*models.Submission{
		pairwiseSub(`{"chosen_response":"a"}`),
		pairwiseSub(`{"chosen_response":"A"}`),
	})
	assert.Equal(t, 2, report.ChoiceACount)
	assert.Zero(t, report.SkippedEntries)
}

func TestTallySummaries(t *testing.T) {
	report := TallyPairwise([]*models.Submission{
		pairwiseSub(`{"chosen_response":"A","confidence":0.5,"time_spent_seconds":10}`),
		pairwiseSub(`{"chosen_response":"A","confidence":1,"time_spent_seconds":20}`),
	})
	require.NotNil(t, report.Confidence)
	assert.Equal(t, 0.75, report.Confidence.Average)
	assert.Equal(t, 0.5, report.Confidence.Min)
	assert.Equal(t, 1.0, report.Confidence.Max)
	require.NotNil(t, report.TimeSpentSeconds)
	assert.Equal(t, 15.0, report.TimeSpentSeconds.Average)
}

func TestTallyRejectsOtherTaskTypes(t *testing.T) {
	store := &fakeConsensusStore{
		task: &models.Task{ID: "t1", TaskType: "voice_recording"},
	}
	svc := &ConsensusService{Store: store}

	_, err := svc.Tally(context.Background(), "t1")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestTallyUnknownTask(t *testing.T) {
	svc := &ConsensusService{Store: &fakeConsensusStore{}}
	_, err := svc.Tally(context.Background(), "missing")
	assert.ErrorIs(t, err, models.ErrTaskNotFound)
}
