package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"

	"taskapp/internal/mockapi/store"
)

// TaskRepository implements store.TaskRepository on sqlite.
type TaskRepository struct {
	db *DB
}

func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task store.Task) (store.Task, error) {
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}

	query := r.db.QueryBuilder.Insert("tasks").
		Columns("title", "description", "completed", "user_id", "created_at").
		Values(task.Title, task.Description, task.Completed, nullableID(task.UserID), task.CreatedAt)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return store.Task{}, err
	}
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return store.Task{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return store.Task{}, err
	}
	return r.GetByID(ctx, id)
}

func (r *TaskRepository) GetByID(ctx context.Context, id int64) (store.Task, error) {
	query := r.db.QueryBuilder.
		Select("id", "title", "description", "completed", "user_id", "created_at").
		From("tasks").
		Where(sq.Eq{"id": id})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return store.Task{}, err
	}
	task, err := scanTask(r.db.QueryRowContext(ctx, sqlStr, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return store.Task{}, store.ErrNotFound
	}
	return task, err
}

func (r *TaskRepository) List(ctx context.Context, filter store.TaskFilter) ([]store.Task, error) {
	query := r.db.QueryBuilder.
		Select("id", "title", "description", "completed", "user_id", "created_at").
		From("tasks").
		OrderBy("id ASC")

	if filter.Completed != nil {
		query = query.Where(sq.Eq{"completed": *filter.Completed})
	}
	if filter.UserID != 0 {
		query = query.Where(sq.Eq{"user_id": filter.UserID})
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]store.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (r *TaskRepository) Update(ctx context.Context, id int64, patch store.TaskPatch) (store.Task, error) {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return store.Task{}, err
	}
	updated := patch.Apply(current)

	query := r.db.QueryBuilder.Update("tasks").
		Set("title", updated.Title).
		Set("description", updated.Description).
		Set("completed", updated.Completed).
		Where(sq.Eq{"id": id})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return store.Task{}, err
	}
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return store.Task{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return store.Task{}, err
	}
	if affected == 0 {
		return store.Task{}, store.ErrNotFound
	}
	return updated, nil
}

func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	query := r.db.QueryBuilder.Delete("tasks").Where(sq.Eq{"id": id})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return err
	}
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (store.Task, error) {
	var task store.Task
	var userID sql.NullInt64
	err := row.Scan(&task.ID, &task.Title, &task.Description, &task.Completed, &userID, &task.CreatedAt)
	if err != nil {
		return store.Task{}, err
	}
	if userID.Valid {
		task.UserID = userID.Int64
	}
	return task, nil
}

func nullableID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}
