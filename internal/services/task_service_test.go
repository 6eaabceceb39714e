package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskmarket/internal/models"
	"taskmarket/internal/store"
)

type fakeTaskStore struct {
	task    *models.Task
	updated *store.TaskUpdate
	deleted string
}

func (f *fakeTaskStore) CreateTask(_ context.Context, t *models.Task) error {
	f.task = t
	return nil
}

func (f *fakeTaskStore) GetTask(_ context.Context, id string) (*models.Task, error) {
	if f.task == nil || f.task.ID != id {
		return nil, models.ErrTaskNotFound
	}
	return f.task, nil
}

func (f *fakeTaskStore) ListTasks(context.Context, store.TaskFilter) ([]*models.Task, error) {
	return []*models.Task{f.task}, nil
}

func (f *fakeTaskStore) UpdateTask(_ context.Context, _ string, u store.TaskUpdate) (*models.Task, error) {
	f.updated = &u
	if u.Status != nil {
		f.task.Status = *u.Status
	}
	return f.task, nil
}

func (f *fakeTaskStore) DeleteTask(_ context.Context, id string) error {
	f.deleted = id
	return nil
}

func (f *fakeTaskStore) ListCategories(context.Context) ([]*models.TaskCategory, error) {
	return nil, nil
}

func validTaskInput() CreateTaskInput {
	expires := time.Now().Add(24 * time.Hour)
	return CreateTaskInput{
		Title:          "Compare model responses",
		Description:    "Pick the better answer",
		TaskType:       "pairwise_ab",
		RewardAmount:   "1000000",
		RewardCurrency: "wld",
		MaxSubmissions: 3,
		ExpiresAt:      &expires,
	}
}

func TestCreateTaskDefaultsToDraft(t *testing.T) {
	st := &fakeTaskStore{}
	svc := &TaskService{Store: st}

	task, err := svc.Create(context.Background(), &models.User{ID: "creator"}, validTaskInput())
	require.NoError(t, err)
	assert.Equal(t, models.TaskDraft, task.Status)
	assert.Equal(t, "WLD", task.RewardCurrency)
	assert.Equal(t, "creator", task.CreatorID)
	assert.NotEmpty(t, task.ID)
}

func TestCreateTaskActivate(t *testing.T) {
	svc := &TaskService{Store: &fakeTaskStore{}}

	in := validTaskInput()
	in.Activate = true
	task, err := svc.Create(context.Background(), &models.User{ID: "creator"}, in)
	require.NoError(t, err)
	assert.Equal(t, models.TaskActive, task.Status)
}

func TestCreateTaskValidation(t *testing.T) {
	svc := &TaskService{Store: &fakeTaskStore{}}
	creator := &models.User{ID: "creator"}

	cases := []struct {
		name   string
		mutate func(*CreateTaskInput)
	}{
		{"empty title", func(in *CreateTaskInput) { in.Title = "  " }},
		{"unknown type", func(in *CreateTaskInput) { in.TaskType = "essay" }},
		{"zero reward", func(in *CreateTaskInput) { in.RewardAmount = "0" }},
		{"fractional reward", func(in *CreateTaskInput) { in.RewardAmount = "1.5" }},
		{"no currency", func(in *CreateTaskInput) { in.RewardCurrency = "" }},
		{"zero cap", func(in *CreateTaskInput) { in.MaxSubmissions = 0 }},
		{"past deadline", func(in *CreateTaskInput) {
			past := time.Now().Add(-time.Hour)
			in.ExpiresAt = &past
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validTaskInput()
			tc.mutate(&in)
			_, err := svc.Create(context.Background(), creator, in)
			assert.ErrorIs(t, err, models.ErrValidation)
		})
	}
}

func TestUpdateTaskStatusMachine(t *testing.T) {
	cases := []struct {
		from models.TaskStatus
		to   models.TaskStatus
		ok   bool
	}{
		{models.TaskDraft, models.TaskActive, true},
		{models.TaskDraft, models.TaskCancelled, true},
		{models.TaskDraft, models.TaskCompleted, false},
		{models.TaskActive, models.TaskPaused, true},
		{models.TaskPaused, models.TaskActive, true},
		{models.TaskActive, models.TaskCompleted, true},
		{models.TaskCompleted, models.TaskActive, false},
		{models.TaskCancelled, models.TaskActive, false},
	}
	for _, tc := range cases {
		st := &fakeTaskStore{task: &models.Task{ID: "t1", CreatorID: "creator", Status: tc.from}}
		svc := &TaskService{Store: st}

		to := tc.to
		_, err := svc.Update(context.Background(), &models.User{ID: "creator"}, "t1", UpdateTaskInput{Status: &to})
		if tc.ok {
			assert.NoError(t, err, "%s -> %s", tc.from, tc.to)
		} else {
			assert.ErrorIs(t, err, models.ErrBadStatusChange, "%s -> %s", tc.from, tc.to)
		}
	}
}

func TestUpdateTaskCarriesFromStatusGuard(t *testing.T) {
	st := &fakeTaskStore{task: &models.Task{ID: "t1", CreatorID: "creator", Status: models.TaskActive}}
	svc := &TaskService{Store: st}

	paused := models.TaskPaused
	_, err := svc.Update(context.Background(), &models.User{ID: "creator"}, "t1", UpdateTaskInput{Status: &paused})
	require.NoError(t, err)
	require.NotNil(t, st.updated)
	assert.Equal(t, models.TaskActive, st.updated.FromStatus)
}

func TestUpdateTaskAuthz(t *testing.T) {
	st := &fakeTaskStore{task: &models.Task{ID: "t1", CreatorID: "creator", Status: models.TaskDraft}}
	svc := &TaskService{Store: st}

	title := "New title"
	_, err := svc.Update(context.Background(), &models.User{ID: "stranger"}, "t1", UpdateTaskInput{Title: &title})
	assert.ErrorIs(t, err, models.ErrNotPermitted)

	_, err = svc.Update(context.Background(), &models.User{ID: "mod", IsAdmin: true}, "t1", UpdateTaskInput{Title: &title})
	assert.NoError(t, err)
}

func TestDeleteTaskAuthz(t *testing.T) {
	st := &fakeTaskStore{task: &models.Task{ID: "t1", CreatorID: "creator", Status: models.TaskDraft}}
	svc := &TaskService{Store: st}

	err := svc.Delete(context.Background(), &models.User{ID: "stranger"}, "t1")
	assert.ErrorIs(t, err, models.ErrNotPermitted)

	require.NoError(t, svc.Delete(context.Background(), &models.User{ID: "creator"}, "t1"))
	assert.Equal(t, "t1", st.deleted)
}
