package http

import (
	"encoding/json"
	"time"

	"taskmarket/internal/models"
)

type userView struct {
	ID                string  `json:"id"`
	WorldID           string  `json:"world_id,omitempty"`
	VerificationLevel string  `json:"verification_level"`
	WalletAddress     *string `json:"wallet_address,omitempty"`
	ReputationScore   int64   `json:"reputation_score"`
	TotalEarned       string  `json:"total_earned"`
	IsAdmin           bool    `json:"is_admin,omitempty"`
	CreatedAt         string  `json:"created_at"`
}

func viewUser(u *models.User) userView {
	return userView{
		ID:                u.ID,
		WorldID:           u.WorldID,
		VerificationLevel: string(u.VerificationLevel),
		WalletAddress:     u.WalletAddress,
		ReputationScore:   u.ReputationScore,
		TotalEarned:       u.TotalEarned,
		IsAdmin:           u.IsAdmin,
		CreatedAt:         u.CreatedAt.Format(time.RFC3339),
	}
}

type taskView struct {
	ID             string  `json:"id"`
	CreatorID      string  `json:"creator_id"`
	CategoryID     *string `json:"category_id,omitempty"`
	Title          string  `json:"title"`
	Description    string  `json:"description,omitempty"`
	TaskType       string  `json:"task_type"`
	RewardAmount   string  `json:"reward_amount"`
	RewardCurrency string  `json:"reward_currency"`
	MaxSubmissions int     `json:"max_submissions"`
	Status         string  `json:"status"`
	ExpiresAt      string  `json:"expires_at,omitempty"`
	CreatedAt      string  `json:"created_at"`
}

func viewTask(t *models.Task) taskView {
	v := taskView{
		ID:             t.ID,
		CreatorID:      t.CreatorID,
		CategoryID:     t.CategoryID,
		Title:          t.Title,
		Description:    t.Description,
		TaskType:       t.TaskType,
		RewardAmount:   t.RewardAmount,
		RewardCurrency: t.RewardCurrency,
		MaxSubmissions: t.MaxSubmissions,
		Status:         string(t.Status),
		CreatedAt:      t.CreatedAt.Format(time.RFC3339),
	}
	if t.ExpiresAt != nil {
		v.ExpiresAt = t.ExpiresAt.Format(time.RFC3339)
	}
	return v
}

func viewTasks(tasks []*models.Task) []taskView {
	out := make([]taskView, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, viewTask(t))
	}
	return out
}

type submissionView struct {
	ID             string          `json:"id"`
	TaskID         string          `json:"task_id"`
	UserID         string          `json:"user_id"`
	SubmissionData json.RawMessage `json:"submission_data"`
	Status         string          `json:"status"`
	ReviewerID     *string         `json:"reviewer_id,omitempty"`
	QualityScore   *float64        `json:"quality_score,omitempty"`
	IsPaid         bool            `json:"is_paid"`
	ReviewedAt     string          `json:"reviewed_at,omitempty"`
	CreatedAt      string          `json:"created_at"`
}

func viewSubmission(s *models.Submission) submissionView {
	v := submissionView{
		ID:             s.ID,
		TaskID:         s.TaskID,
		UserID:         s.UserID,
		SubmissionData: json.RawMessage(s.SubmissionData),
		Status:         string(s.Status),
		ReviewerID:     s.ReviewerID,
		QualityScore:   s.QualityScore,
		IsPaid:         s.IsPaid,
		CreatedAt:      s.CreatedAt.Format(time.RFC3339),
	}
	if s.ReviewedAt != nil {
		v.ReviewedAt = s.ReviewedAt.Format(time.RFC3339)
	}
	return v
}

func viewSubmissions(subs []*models.Submission) []submissionView {
	out := make([]submissionView, 0, len(subs))
	for _, s := range subs {
		out = append(out, viewSubmission(s))
	}
	return out
}

type paymentView struct {
	ID                string  `json:"id"`
	TaskID            *string `json:"task_id,omitempty"`
	SubmissionID      *string `json:"submission_id,omitempty"`
	PayerID           string  `json:"payer_id"`
	RecipientID       string  `json:"recipient_id"`
	Amount            string  `json:"amount"`
	Currency          string  `json:"currency"`
	PaymentType       string  `json:"payment_type"`
	Status            string  `json:"status"`
	ExternalPaymentID *string `json:"external_payment_id,omitempty"`
	TransactionHash   *string `json:"transaction_hash,omitempty"`
	GasFee            *string `json:"gas_fee,omitempty"`
	PlatformFee       *string `json:"platform_fee,omitempty"`
	NetAmount         *string `json:"net_amount,omitempty"`
	FailureReason     *string `json:"failure_reason,omitempty"`
	CompletedAt       string  `json:"completed_at,omitempty"`
	CreatedAt         string  `json:"created_at"`
}

func viewPayment(p *models.Payment) paymentView {
	v := paymentView{
		ID:                p.ID,
		TaskID:            p.TaskID,
		SubmissionID:      p.SubmissionID,
		PayerID:           p.PayerID,
		RecipientID:       p.RecipientID,
		Amount:            p.Amount,
		Currency:          p.Currency,
		PaymentType:       string(p.PaymentType),
		Status:            string(p.Status),
		ExternalPaymentID: p.ExternalPaymentID,
		TransactionHash:   p.TransactionHash,
		GasFee:            p.GasFee,
		PlatformFee:       p.PlatformFee,
		NetAmount:         p.NetAmount,
		FailureReason:     p.FailureReason,
		CreatedAt:         p.CreatedAt.Format(time.RFC3339),
	}
	if p.CompletedAt != nil {
		v.CompletedAt = p.CompletedAt.Format(time.RFC3339)
	}
	return v
}

type disputeView struct {
	ID           string  `json:"id"`
	SubmissionID string  `json:"submission_id"`
	RaisedBy     string  `json:"raised_by"`
	Reason       string  `json:"reason"`
	Status       string  `json:"status"`
	ResolvedBy   *string `json:"resolved_by,omitempty"`
	Resolution   string  `json:"resolution,omitempty"`
	CreatedAt    string  `json:"created_at"`
	ResolvedAt   string  `json:"resolved_at,omitempty"`
}

func viewDispute(d *models.Dispute) disputeView {
	v := disputeView{
		ID:           d.ID,
		SubmissionID: d.SubmissionID,
		RaisedBy:     d.RaisedBy,
		Reason:       d.Reason,
		Status:       string(d.Status),
		ResolvedBy:   d.ResolvedBy,
		Resolution:   d.Resolution,
		CreatedAt:    d.CreatedAt.Format(time.RFC3339),
	}
	if d.ResolvedAt != nil {
		v.ResolvedAt = d.ResolvedAt.Format(time.RFC3339)
	}
	return v
}

type notificationView struct {
	ID        string  `json:"id"`
	Kind      string  `json:"kind"`
	Title     string  `json:"title"`
	Body      string  `json:"body"`
	RefID     *string `json:"ref_id,omitempty"`
	IsRead    bool    `json:"is_read"`
	CreatedAt string  `json:"created_at"`
}

func viewNotifications(ns []*models.Notification) []notificationView {
	out := make([]notificationView, 0, len(ns))
	for _, n := range ns {
		out = append(out, notificationView{
			ID:        n.ID,
			Kind:      n.Kind,
			Title:     n.Title,
			Body:      n.Body,
			RefID:     n.RefID,
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt.Format(time.RFC3339),
		})
	}
	return out
}

type categoryView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
}

func viewCategories(cats []*models.TaskCategory) []categoryView {
	out := make([]categoryView, 0, len(cats))
	for _, c := range cats {
		out = append(out, categoryView{ID: c.ID, Name: c.Name, Slug: c.Slug, Description: c.Description})
	}
	return out
}
