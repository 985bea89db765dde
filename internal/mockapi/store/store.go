// Package store defines the storage ports the mock task API runs on, with
// in-memory and sqlite implementations in subpackages.
package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("store: not found")

	// ErrEmailTaken is returned when creating a user with an email that is
	// already registered.
	ErrEmailTaken = errors.New("store: email already registered")
)

// Task is the persisted shape of a task record. UserID zero marks a task
// created without authentication.
type Task struct {
	ID          int64
	Title       string
	Description string
	Completed   bool
	UserID      int64
	CreatedAt   time.Time
}

// User is the persisted shape of an account.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// TaskFilter narrows List. Nil Completed matches both states; UserID zero
// matches every owner.
type TaskFilter struct {
	Completed *bool
	UserID    int64
}

// TaskPatch carries the fields an update may change. Nil fields keep the
// stored value.
type TaskPatch struct {
	Title       *string
	Description *string
	Completed   *bool
}

// TaskRepository is the storage port for tasks. Create assigns ID and
// CreatedAt; ids are monotonic and never reused, even after deletes.
type TaskRepository interface {
	Create(ctx context.Context, task Task) (Task, error)
	GetByID(ctx context.Context, id int64) (Task, error)
	List(ctx context.Context, filter TaskFilter) ([]Task, error)
	Update(ctx context.Context, id int64, patch TaskPatch) (Task, error)
	Delete(ctx context.Context, id int64) error
}

// UserRepository is the storage port for accounts.
type UserRepository interface {
	Create(ctx context.Context, user User) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id int64) (User, error)
}

// Store bundles the repositories of one backend.
type Store interface {
	Tasks() TaskRepository
	Users() UserRepository
	Close() error
}

// Apply returns task with the patch applied.
func (p TaskPatch) Apply(task Task) Task {
	if p.Title != nil {
		task.Title = *p.Title
	}
	if p.Description != nil {
		task.Description = *p.Description
	}
	if p.Completed != nil {
		task.Completed = *p.Completed
	}
	return task
}
