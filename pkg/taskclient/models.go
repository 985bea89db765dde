package taskclient

import "time"

// Task is a single record in the remote task collection. The server owns
// ID and CreatedAt; both are ignored on requests.
type Task struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"createdAt"`
	UserID      int64     `json:"userId,omitempty"`
}

// User is the account record returned by Register.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// TaskCreate carries the caller-supplied fields of a new task.
type TaskCreate struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Completed   bool   `json:"completed,omitempty"`
}

// TaskPatch is a partial update. Nil fields are omitted from the request
// body and left unchanged by the server.
type TaskPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

// TaskListOptions narrows ListTasks. A nil options value, or a nil field,
// applies no filter.
type TaskListOptions struct {
	Completed *bool
}

// String returns a pointer to s, for use in TaskPatch literals.
func String(s string) *string { return &s }

// Bool returns a pointer to b, for use in TaskPatch and TaskListOptions literals.
func Bool(b bool) *bool { return &b }

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}
