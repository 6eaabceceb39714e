package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/jackc/pgx/v5"

	"taskmarket/internal/models"
)

const taskColumns = `
	id, creator_id, category_id, title, description, task_type,
	reward_amount, reward_currency, max_submissions, status, expires_at,
	created_at, updated_at`

func scanTask(row pgx.Row) (*models.Task, error) {
	var t models.Task
	var categoryID sql.NullString
	var expiresAt sql.NullTime
	err := row.Scan(
		&t.ID,
		&t.CreatorID,
		&categoryID,
		&t.Title,
		&t.Description,
		&t.TaskType,
		&t.RewardAmount,
		&t.RewardCurrency,
		&t.MaxSubmissions,
		&t.Status,
		&expiresAt,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if categoryID.Valid {
		t.CategoryID = &categoryID.String
	}
	if expiresAt.Valid {
		t.ExpiresAt = &expiresAt.Time
	}
	return &t, nil
}

func (s *Store) CreateTask(ctx context.Context, t *models.Task) error {
	row := s.Pool.QueryRow(ctx, `
		INSERT INTO tasks (
			id, creator_id, category_id, title, description, task_type,
			reward_amount, reward_currency, max_submissions, status, expires_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING created_at, updated_at
	`,
		t.ID,
		t.CreatorID,
		t.CategoryID,
		t.Title,
		t.Description,
		t.TaskType,
		t.RewardAmount,
		t.RewardCurrency,
		t.MaxSubmissions,
		t.Status,
		t.ExpiresAt,
	)
	return row.Scan(&t.CreatedAt, &t.UpdatedAt)
}

func (s *Store) GetTask(ctx context.Context, id string) (*models.Task, error) {
	row := s.Pool.QueryRow(ctx, `SELECT`+taskColumns+` FROM tasks WHERE id=$1`, id)
	task, err := scanTask(row)
	if isNoRows(err) {
		return nil, models.ErrTaskNotFound
	}
	return task, err
}

type TaskFilter struct {
	Status     models.TaskStatus
	CategoryID string
	TaskType   string
	Limit      int
	Offset     int
}

func (s *Store) ListTasks(ctx context.Context, f TaskFilter) ([]*models.Task, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 50
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT`+taskColumns+`
		FROM tasks
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR category_id::text = $2)
		  AND ($3 = '' OR task_type = $3)
		ORDER BY created_at DESC
		LIMIT $4 OFFSET $5
	`, string(f.Status), f.CategoryID, f.TaskType, f.Limit, f.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

type TaskUpdate struct {
	Title          *string
	Description    *string
	RewardAmount   *string
	MaxSubmissions *int
	ExpiresAt      *time.Time
	Status         *models.TaskStatus
	FromStatus     models.TaskStatus
}

// UpdateTask applies a creator mutation. When a status change is requested the
// UPDATE is guarded on the status the caller saw, so two racing transitions
// cannot both win.
func (s *Store) UpdateTask(ctx context.Context, id string, u TaskUpdate) (*models.Task, error) {
	row := s.Pool.QueryRow(ctx, `
		UPDATE tasks SET
			title = COALESCE($2, title),
			description = COALESCE($3, description),
			reward_amount = COALESCE($4, reward_amount),
			max_submissions = COALESCE($5, max_submissions),
			expires_at = COALESCE($6, expires_at),
			status = COALESCE($7, status),
			updated_at = now()
		WHERE id = $1 AND ($7::text IS NULL OR status = $8)
		RETURNING`+taskColumns,
		id,
		u.Title,
		u.Description,
		u.RewardAmount,
		u.MaxSubmissions,
		u.ExpiresAt,
		u.Status,
		u.FromStatus,
	)
	task, err := scanTask(row)
	if isNoRows(err) {
		return nil, models.ErrBadStatusChange
	}
	return task, err
}

// DeleteTask removes a task only while it has no submissions.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	res, err := s.Pool.Exec(ctx, `
		DELETE FROM tasks
		WHERE id = $1
		  AND NOT EXISTS (SELECT 1 FROM submissions WHERE task_id = $1)
	`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		if _, gerr := s.GetTask(ctx, id); gerr != nil {
			return gerr
		}
		return models.ErrTaskHasSubmissions
	}
	return nil
}

// MarkTasksExpired sweeps active tasks whose deadline has passed.
func (s *Store) MarkTasksExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.Pool.Exec(ctx, `
		UPDATE tasks
		SET status='completed', updated_at=now()
		WHERE status='active' AND expires_at IS NOT NULL AND expires_at < $1
	`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected(), nil
}

func (s *Store) ListCategories(ctx context.Context) ([]*models.TaskCategory, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, name, slug, description FROM task_categories ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cats []*models.TaskCategory
	for rows.Next() {
		var c models.TaskCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description); err != nil {
			return nil, err
		}
		cats = append(cats, &c)
	}
	return cats, rows.Err()
}
