package models

import "time"

type VerificationLevel string

const (
	VerificationOrb    VerificationLevel = "orb"
	VerificationDevice VerificationLevel = "device"
)

type User struct {
	ID                string
	WorldID           string
	NullifierHash     string
	VerificationLevel VerificationLevel
	WalletAddress     *string
	ReputationScore   int64
	TotalEarned       string
	IsActive          bool
	IsAdmin           bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type TaskStatus string

const (
	TaskDraft     TaskStatus = "draft"
	TaskActive    TaskStatus = "active"
	TaskPaused    TaskStatus = "paused"
	TaskCompleted TaskStatus = "completed"
	TaskCancelled TaskStatus = "cancelled"
)

type Task struct {
	ID             string
	CreatorID      string
	CategoryID     *string
	Title          string
	Description    string
	TaskType       string
	RewardAmount   string
	RewardCurrency string
	MaxSubmissions int
	Status         TaskStatus
	ExpiresAt      *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Expired reports whether the task's deadline has passed at the given instant.
func (t *Task) Expired(now time.Time) bool {
	return t.ExpiresAt != nil && t.ExpiresAt.Before(now)
}

type SubmissionStatus string

const (
	SubmissionPending     SubmissionStatus = "pending"
	SubmissionUnderReview SubmissionStatus = "under_review"
	SubmissionApproved    SubmissionStatus = "approved"
	SubmissionRejected    SubmissionStatus = "rejected"
)

// Terminal reports whether the status admits no further review transitions.
func (s SubmissionStatus) Terminal() bool {
	return s == SubmissionApproved || s == SubmissionRejected
}

type Submission struct {
	ID                 string
	TaskID             string
	UserID             string
	SubmitterNullifier string
	SubmissionData     string
	Status             SubmissionStatus
	ReviewerID         *string
	QualityScore       *float64
	IsPaid             bool
	ReviewedAt         *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "pending"
	PaymentProcessing PaymentStatus = "processing"
	PaymentCompleted  PaymentStatus = "completed"
	PaymentFailed     PaymentStatus = "failed"
	PaymentCancelled  PaymentStatus = "cancelled"
)

func (s PaymentStatus) Terminal() bool {
	return s == PaymentCompleted || s == PaymentFailed || s == PaymentCancelled
}

type PaymentType string

const (
	PaymentTaskReward PaymentType = "task_reward"
	PaymentEscrow     PaymentType = "escrow"
	PaymentBonus      PaymentType = "bonus"
)

type Payment struct {
	ID                string
	TaskID            *string
	SubmissionID      *string
	PayerID           string
	RecipientID       string
	Amount            string
	Currency          string
	PaymentType       PaymentType
	Status            PaymentStatus
	ExternalPaymentID *string
	TransactionHash   *string
	GasFee            *string
	PlatformFee       *string
	NetAmount         *string
	FailureReason     *string
	CompletedAt       *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

type TaskCategory struct {
	ID          string
	Name        string
	Slug        string
	Description string
}

type TaskReview struct {
	ID           string
	SubmissionID string
	ReviewerID   string
	Decision     SubmissionStatus
	QualityScore *float64
	Notes        string
	CreatedAt    time.Time
}

type DisputeStatus string

const (
	DisputeOpen      DisputeStatus = "open"
	DisputeUpheld    DisputeStatus = "upheld"
	DisputeOverruled DisputeStatus = "overruled"
)

type Dispute struct {
	ID           string
	SubmissionID string
	RaisedBy     string
	Reason       string
	Status       DisputeStatus
	ResolvedBy   *string
	Resolution   string
	CreatedAt    time.Time
	ResolvedAt   *time.Time
}

type Notification struct {
	ID        string
	UserID    string
	Kind      string
	Title     string
	Body      string
	RefID     *string
	IsRead    bool
	CreatedAt time.Time
}
