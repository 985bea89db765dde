package taskclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// ListTasks returns the tasks visible to the caller, ordered by id. With
// opts.Completed set, only tasks in that completion state are returned.
// An empty collection yields an empty slice, not an error.
func (c *Client) ListTasks(ctx context.Context, opts *TaskListOptions) ([]Task, error) {
	query := url.Values{}
	if opts != nil && opts.Completed != nil {
		query.Set("completed", strconv.FormatBool(*opts.Completed))
	}

	data, err := c.do(ctx, http.MethodGet, "/tasks", query, nil)
	if err != nil {
		return nil, err
	}
	tasks, err := decodeInto[[]Task](data)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []Task{}
	}
	return tasks, nil
}

// GetTask fetches a single task by id. A missing id yields ErrNotFound.
func (c *Client) GetTask(ctx context.Context, id int64) (*Task, error) {
	data, err := c.do(ctx, http.MethodGet, taskPath(id), nil, nil)
	if err != nil {
		return nil, err
	}
	task, err := decodeInto[Task](data)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// CreateTask creates a task and returns it with the server-assigned id
// and creation timestamp. Rejected input yields a *ValidationError.
func (c *Client) CreateTask(ctx context.Context, in TaskCreate) (*Task, error) {
	data, err := c.do(ctx, http.MethodPost, "/tasks", nil, in)
	if err != nil {
		return nil, err
	}
	task, err := decodeInto[Task](data)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTask applies patch to the task with the given id and returns the
// updated record. Fields left nil in patch keep their stored values; an
// empty patch returns the task unchanged.
func (c *Client) UpdateTask(ctx context.Context, id int64, patch TaskPatch) (*Task, error) {
	data, err := c.do(ctx, http.MethodPut, taskPath(id), nil, patch)
	if err != nil {
		return nil, err
	}
	task, err := decodeInto[Task](data)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// DeleteTask removes the task with the given id. Deleting a task that does
// not exist, including one already deleted, yields ErrNotFound.
func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodDelete, taskPath(id), nil, nil)
	return err
}

func taskPath(id int64) string {
	return fmt.Sprintf("/tasks/%d", id)
}
