// Package taskdata validates submission payloads once at the API boundary.
// Each task type has its own shape; anything persisted has already passed
// through Validate and been re-marshalled in normalized form.
package taskdata

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	TypePairwiseAB     = "pairwise_ab"
	TypeVoiceRecording = "voice_recording"
	TypeDataAnnotation = "data_annotation"
)

func KnownType(taskType string) bool {
	switch taskType {
	case TypePairwiseAB, TypeVoiceRecording, TypeDataAnnotation:
		return true
	}
	return false
}

type PairwiseAB struct {
	ChosenResponse   string   `json:"chosen_response"`
	Confidence       *float64 `json:"confidence,omitempty"`
	TimeSpentSeconds *float64 `json:"time_spent_seconds,omitempty"`
	Reasoning        string   `json:"reasoning,omitempty"`
}

type VoiceRecording struct {
	AudioURL         string   `json:"audio_url"`
	DurationSeconds  float64  `json:"duration_seconds"`
	Transcript       string   `json:"transcript,omitempty"`
	TimeSpentSeconds *float64 `json:"time_spent_seconds,omitempty"`
}

type DataAnnotation struct {
	Labels           map[string]string `json:"labels"`
	TimeSpentSeconds *float64          `json:"time_spent_seconds,omitempty"`
}

// Validate checks raw against the task type's shape and returns the payload in
// normalized form. chosen_response is case-insensitive on input and stored
// upper-case so every consumer sees exactly "A" or "B".
func Validate(taskType string, raw json.RawMessage) (string, error) {
	switch taskType {
	case TypePairwiseAB:
		var p PairwiseAB
		if err := strictUnmarshal(raw, &p); err != nil {
			return "", err
		}
		p.ChosenResponse = strings.ToUpper(strings.TrimSpace(p.ChosenResponse))
		if p.ChosenResponse != "A" && p.ChosenResponse != "B" {
			return "", fmt.Errorf("chosen_response must be \"A\" or \"B\"")
		}
		if p.Confidence != nil && (*p.Confidence < 0 || *p.Confidence > 1) {
			return "", fmt.Errorf("confidence must be in [0,1]")
		}
		if p.TimeSpentSeconds != nil && *p.TimeSpentSeconds <= 0 {
			return "", fmt.Errorf("time_spent_seconds must be positive")
		}
		return remarshal(p)
	case TypeVoiceRecording:
		var v VoiceRecording
		if err := strictUnmarshal(raw, &v); err != nil {
			return "", err
		}
		if strings.TrimSpace(v.AudioURL) == "" {
			return "", fmt.Errorf("audio_url is required")
		}
		if v.DurationSeconds <= 0 {
			return "", fmt.Errorf("duration_seconds must be positive")
		}
		if v.TimeSpentSeconds != nil && *v.TimeSpentSeconds <= 0 {
			return "", fmt.Errorf("time_spent_seconds must be positive")
		}
		return remarshal(v)
	case TypeDataAnnotation:
		var d DataAnnotation
		if err := strictUnmarshal(raw, &d); err != nil {
			return "", err
		}
		if len(d.Labels) == 0 {
			return "", fmt.Errorf("labels must not be empty")
		}
		if d.TimeSpentSeconds != nil && *d.TimeSpentSeconds <= 0 {
			return "", fmt.Errorf("time_spent_seconds must be positive")
		}
		return remarshal(d)
	}
	return "", fmt.Errorf("unknown task type %q", taskType)
}

// ParsePairwise is the lenient read side used by the consensus tally: a
// malformed stored payload yields ok=false instead of an error so one bad row
// cannot fail the whole aggregate.
func ParsePairwise(data string) (PairwiseAB, bool) {
	var p PairwiseAB
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return PairwiseAB{}, false
	}
	p.ChosenResponse = strings.ToUpper(strings.TrimSpace(p.ChosenResponse))
	if p.ChosenResponse != "A" && p.ChosenResponse != "B" {
		return PairwiseAB{}, false
	}
	return p, true
}

func strictUnmarshal(raw json.RawMessage, out any) error {
	if len(raw) == 0 {
		return fmt.Errorf("submission_data is required")
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("submission_data is not valid JSON: %w", err)
	}
	return nil
}

func remarshal(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
