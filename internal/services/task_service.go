package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskmarket/internal/models"
	"taskmarket/internal/money"
	"taskmarket/internal/store"
	"taskmarket/internal/taskdata"
)

type TaskStore interface {
	CreateTask(ctx context.Context, t *models.Task) error
	GetTask(ctx context.Context, id string) (*models.Task, error)
	ListTasks(ctx context.Context, f store.TaskFilter) ([]*models.Task, error)
	UpdateTask(ctx context.Context, id string, u store.TaskUpdate) (*models.Task, error)
	DeleteTask(ctx context.Context, id string) error
	ListCategories(ctx context.Context) ([]*models.TaskCategory, error)
}

type TaskService struct {
	Store TaskStore
}

// legalTransitions is the task status machine. completed and cancelled are
// terminal.
var legalTransitions = map[models.TaskStatus][]models.TaskStatus{
	models.TaskDraft:  {models.TaskActive, models.TaskCancelled},
	models.TaskActive: {models.TaskPaused, models.TaskCompleted, models.TaskCancelled},
	models.TaskPaused: {models.TaskActive, models.TaskCompleted, models.TaskCancelled},
}

func transitionAllowed(from, to models.TaskStatus) bool {
	for _, next := range legalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type CreateTaskInput struct {
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	CategoryID     *string    `json:"category_id"`
	TaskType       string     `json:"task_type"`
	RewardAmount   string     `json:"reward_amount"`
	RewardCurrency string     `json:"reward_currency"`
	MaxSubmissions int        `json:"max_submissions"`
	Activate       bool       `json:"activate"`
	ExpiresAt      *time.Time `json:"expires_at"`
}

func (s *TaskService) Create(ctx context.Context, creator *models.User, in CreateTaskInput) (*models.Task, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", models.ErrValidation)
	}
	if !taskdata.KnownType(in.TaskType) {
		return nil, fmt.Errorf("%w: unknown task_type %q", models.ErrValidation, in.TaskType)
	}
	if !money.IsPositive(in.RewardAmount) {
		return nil, fmt.Errorf("%w: reward_amount must be a positive base-unit amount", models.ErrValidation)
	}
	currency := strings.ToUpper(strings.TrimSpace(in.RewardCurrency))
	if currency == "" {
		return nil, fmt.Errorf("%w: reward_currency is required", models.ErrValidation)
	}
	if in.MaxSubmissions < 1 {
		return nil, fmt.Errorf("%w: max_submissions must be at least 1", models.ErrValidation)
	}
	if in.ExpiresAt != nil && !in.ExpiresAt.After(time.Now().UTC()) {
		return nil, fmt.Errorf("%w: expires_at must be in the future", models.ErrValidation)
	}

	status := models.TaskDraft
	if in.Activate {
		status = models.TaskActive
	}
	task := &models.Task{
		ID:             uuid.NewString(),
		CreatorID:      creator.ID,
		CategoryID:     in.CategoryID,
		Title:          strings.TrimSpace(in.Title),
		Description:    in.Description,
		TaskType:       in.TaskType,
		RewardAmount:   in.RewardAmount,
		RewardCurrency: currency,
		MaxSubmissions: in.MaxSubmissions,
		Status:         status,
		ExpiresAt:      in.ExpiresAt,
	}
	if err := s.Store.CreateTask(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) Get(ctx context.Context, id string) (*models.Task, error) {
	return s.Store.GetTask(ctx, id)
}

func (s *TaskService) List(ctx context.Context, f store.TaskFilter) ([]*models.Task, error) {
	return s.Store.ListTasks(ctx, f)
}

func (s *TaskService) Categories(ctx context.Context) ([]*models.TaskCategory, error) {
	return s.Store.ListCategories(ctx)
}

type UpdateTaskInput struct {
	Title          *string            `json:"title"`
	Description    *string            `json:"description"`
	RewardAmount   *string            `json:"reward_amount"`
	MaxSubmissions *int               `json:"max_submissions"`
	ExpiresAt      *time.Time         `json:"expires_at"`
	Status         *models.TaskStatus `json:"status"`
}

// Update mutates creator-owned task fields and drives the status machine.
func (s *TaskService) Update(ctx context.Context, caller *models.User, id string, in UpdateTaskInput) (*models.Task, error) {
	task, err := s.Store.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.CreatorID != caller.ID && !caller.IsAdmin {
		return nil, models.ErrNotPermitted
	}

	if in.RewardAmount != nil && !money.IsPositive(*in.RewardAmount) {
		return nil, fmt.Errorf("%w: reward_amount must be a positive base-unit amount", models.ErrValidation)
	}
	if in.MaxSubmissions != nil && *in.MaxSubmissions < 1 {
		return nil, fmt.Errorf("%w: max_submissions must be at least 1", models.ErrValidation)
	}
	if in.Status != nil && !transitionAllowed(task.Status, *in.Status) {
		return nil, models.ErrBadStatusChange
	}

	return s.Store.UpdateTask(ctx, id, store.TaskUpdate{
		Title:          in.Title,
		Description:    in.Description,
		RewardAmount:   in.RewardAmount,
		MaxSubmissions: in.MaxSubmissions,
		ExpiresAt:      in.ExpiresAt,
		Status:         in.Status,
		FromStatus:     task.Status,
	})
}

// Delete removes a submission-free task; anything else must be cancelled
// through Update so existing submissions keep their audit trail.
func (s *TaskService) Delete(ctx context.Context, caller *models.User, id string) error {
	task, err := s.Store.GetTask(ctx, id)
	if err != nil {
		return err
	}
	if task.CreatorID != caller.ID && !caller.IsAdmin {
		return models.ErrNotPermitted
	}
	return s.Store.DeleteTask(ctx, id)
}
