package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskManagement/models"
)

// TaskRepository is the repository for Task entities.
type TaskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// TaskPatch carries a partial task update. Nil fields are left unchanged.
// DueDate must already be validated against models.DueDateFormat by the caller.
type TaskPatch struct {
	Title       *string
	Description *string
	Priority    *int
	DueDate     *string
}

// Empty reports whether the patch carries no fields.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Priority == nil && p.DueDate == nil
}

// Create inserts a new task for its UserID owner.
func (r *TaskRepository) Create(ctx context.Context, t *models.Task) (*models.Task, error) {
	if t == nil {
		return nil, errors.New("task is nil")
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (user_id, title, description, priority, due_date, completed) VALUES (?,?,?,?,?,?)`,
		t.UserID, t.Title, t.Description, t.Priority, t.DueDate, t.Completed)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	created, err := r.GetByID(ctx, id, t.UserID)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, fmt.Errorf("created task not found: id=%d", id)
	}
	return created, nil
}

// GetByID fetches a task by its ID, scoped to the owning user.
func (r *TaskRepository) GetByID(ctx context.Context, id, userID int64) (*models.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, description, priority, due_date, completed FROM tasks WHERE id = ? AND user_id = ?`,
		id, userID)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}

// ListByUserID returns all tasks owned by the user in storage order (id asc).
func (r *TaskRepository) ListByUserID(ctx context.Context, userID int64) ([]models.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, title, description, priority, due_date, completed FROM tasks WHERE user_id = ? ORDER BY id ASC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update applies the patch to the task in one conditional UPDATE so concurrent
// writers serialize on the single-row write. Reports whether the user owns a
// task with this id; an empty patch degrades to an existence check.
func (r *TaskRepository) Update(ctx context.Context, id, userID int64, patch TaskPatch) (bool, error) {
	if patch.Empty() {
		t, err := r.GetByID(ctx, id, userID)
		if err != nil {
			return false, err
		}
		return t != nil, nil
	}

	var set []string
	var args []any
	if patch.Title != nil {
		set = append(set, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Description != nil {
		set = append(set, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.Priority != nil {
		set = append(set, "priority = ?")
		args = append(args, *patch.Priority)
	}
	if patch.DueDate != nil {
		set = append(set, "due_date = ?")
		args = append(args, *patch.DueDate)
	}
	args = append(args, id, userID)

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET `+strings.Join(set, ", ")+` WHERE id = ? AND user_id = ?`, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Delete removes the task permanently, scoped to the owning user.
// Reports whether a row was deleted.
func (r *TaskRepository) Delete(ctx context.Context, id, userID int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// scanner covers *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (*models.Task, error) {
	var t models.Task
	var description, dueDate sql.NullString
	if err := s.Scan(&t.ID, &t.UserID, &t.Title, &description, &t.Priority, &dueDate, &t.Completed); err != nil {
		return nil, err
	}
	if description.Valid {
		v := description.String
		t.Description = &v
	}
	if dueDate.Valid {
		v := dueDate.String
		t.DueDate = &v
	}
	return &t, nil
}
