package services

import (
	"context"
	"fmt"
	"math"

	"taskmarket/internal/models"
	"taskmarket/internal/taskdata"
)

type ConsensusStore interface {
	GetTask(ctx context.Context, id string) (*models.Task, error)
	ListSubmissionsForTally(ctx context.Context, taskID string) ([]*models.Submission, error)
}

type ConsensusService struct {
	Store ConsensusStore
}

type StatSummary struct {
	Average float64 `json:"average"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
}

type ConsensusReport struct {
	TaskID              string       `json:"task_id"`
	TotalResponses      int          `json:"total_responses"`
	ChoiceACount        int          `json:"choice_a_count"`
	ChoiceBCount        int          `json:"choice_b_count"`
	ConsensusChoice     *string      `json:"consensus_choice"`
	AgreementPercentage float64      `json:"agreement_percentage"`
	Confidence          *StatSummary `json:"confidence,omitempty"`
	TimeSpentSeconds    *StatSummary `json:"time_spent_seconds,omitempty"`
	SkippedEntries      int          `json:"skipped_entries"`
}

// Tally reports the pairwise A/B vote for a task. Only approved and pending
// submissions participate; rejected rows are excluded from the electorate.
func (s *ConsensusService) Tally(ctx context.Context, taskID string) (*ConsensusReport, error) {
	task, err := s.Store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.TaskType != taskdata.TypePairwiseAB {
		return nil, fmt.Errorf("%w: consensus is only defined for %s tasks", models.ErrValidation, taskdata.TypePairwiseAB)
	}

	subs, err := s.Store.ListSubmissionsForTally(ctx, taskID)
	if err != nil {
		return nil, err
	}
	report := TallyPairwise(subs)
	report.TaskID = taskID
	return report, nil
}

// TallyPairwise aggregates submissions into the consensus report. Rows whose
// payload does not parse as a pairwise choice are counted as skipped, never as
// an error: one bad row must not take down the aggregate.
func TallyPairwise(subs []*models.Submission) *ConsensusReport {
	report := &ConsensusReport{}
	var confidences, times []float64

	for _, sub := range subs {
		p, ok := taskdata.ParsePairwise(sub.SubmissionData)
		if !ok {
			report.SkippedEntries++
			continue
		}
		switch p.ChosenResponse {
		case "A":
			report.ChoiceACount++
		case "B":
			report.ChoiceBCount++
		}
		if p.Confidence != nil {
			confidences = append(confidences, *p.Confidence)
		}
		if p.TimeSpentSeconds != nil {
			times = append(times, *p.TimeSpentSeconds)
		}
	}

	report.TotalResponses = report.ChoiceACount + report.ChoiceBCount
	if report.TotalResponses > 0 {
		switch {
		case report.ChoiceACount > report.ChoiceBCount:
			choice := "A"
			report.ConsensusChoice = &choice
			report.AgreementPercentage = round2(float64(report.ChoiceACount) / float64(report.TotalResponses) * 100)
		case report.ChoiceBCount > report.ChoiceACount:
			choice := "B"
			report.ConsensusChoice = &choice
			report.AgreementPercentage = round2(float64(report.ChoiceBCount) / float64(report.TotalResponses) * 100)
		default:
			// Tie: no consensus, reported as an even split.
			report.AgreementPercentage = 50
		}
	}

	report.Confidence = summarize(confidences)
	report.TimeSpentSeconds = summarize(times)
	return report
}

func summarize(values []float64) *StatSummary {
	if len(values) == 0 {
		return nil
	}
	sum := 0.0
	min := values[0]
	max := values[0]
	for _, v := range values {
		sum += v
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return &StatSummary{
		Average: round2(sum / float64(len(values))),
		Min:     round2(min),
		Max:     round2(max),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
