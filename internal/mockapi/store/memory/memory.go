// Package memory is the default mock API backend: mutex-guarded maps with
// monotonic id counters. State lives for the life of the process.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"taskapp/internal/mockapi/store"
)

// Store implements store.Store in memory.
type Store struct {
	mu         sync.RWMutex
	tasks      map[int64]store.Task
	users      map[int64]store.User
	nextTaskID int64
	nextUserID int64
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{
		tasks: make(map[int64]store.Task),
		users: make(map[int64]store.User),
	}
}

func (s *Store) Tasks() store.TaskRepository { return &taskRepository{store: s} }
func (s *Store) Users() store.UserRepository { return &userRepository{store: s} }
func (s *Store) Close() error                { return nil }

type taskRepository struct {
	store *Store
}

func (r *taskRepository) Create(_ context.Context, task store.Task) (store.Task, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	// Counters only move forward, so ids are never reused after a delete.
	r.store.nextTaskID++
	task.ID = r.store.nextTaskID
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}
	r.store.tasks[task.ID] = task
	return task, nil
}

func (r *taskRepository) GetByID(_ context.Context, id int64) (store.Task, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	task, ok := r.store.tasks[id]
	if !ok {
		return store.Task{}, store.ErrNotFound
	}
	return task, nil
}

func (r *taskRepository) List(_ context.Context, filter store.TaskFilter) ([]store.Task, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	tasks := make([]store.Task, 0, len(r.store.tasks))
	for _, task := range r.store.tasks {
		if filter.Completed != nil && task.Completed != *filter.Completed {
			continue
		}
		if filter.UserID != 0 && task.UserID != filter.UserID {
			continue
		}
		tasks = append(tasks, task)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks, nil
}

func (r *taskRepository) Update(_ context.Context, id int64, patch store.TaskPatch) (store.Task, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	task, ok := r.store.tasks[id]
	if !ok {
		return store.Task{}, store.ErrNotFound
	}
	task = patch.Apply(task)
	r.store.tasks[id] = task
	return task, nil
}

func (r *taskRepository) Delete(_ context.Context, id int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.tasks[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.store.tasks, id)
	return nil
}

type userRepository struct {
	store *Store
}

func (r *userRepository) Create(_ context.Context, user store.User) (store.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return store.User{}, store.ErrEmailTaken
		}
	}

	r.store.nextUserID++
	user.ID = r.store.nextUserID
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	r.store.users[user.ID] = user
	return user, nil
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (store.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, user := range r.store.users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return store.User{}, store.ErrNotFound
}

func (r *userRepository) GetByID(_ context.Context, id int64) (store.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	user, ok := r.store.users[id]
	if !ok {
		return store.User{}, store.ErrNotFound
	}
	return user, nil
}
