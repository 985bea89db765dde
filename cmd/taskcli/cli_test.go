package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"taskapp/internal/mockapi"
)

// cliEnv runs the CLI the way a user would, against a mock API server,
// with config and auth state confined to a temp directory.
type cliEnv struct {
	t         *testing.T
	serverURL string
	tokenPath string
}

func newCLIEnv(t *testing.T, opts ...mockapi.Option) *cliEnv {
	t.Helper()
	api := mockapi.New(opts...)
	server := httptest.NewServer(api.Handler())
	t.Cleanup(server.Close)

	return &cliEnv{
		t:         t,
		serverURL: server.URL,
		tokenPath: filepath.Join(t.TempDir(), "auth.json"),
	}
}

func (e *cliEnv) run(args ...string) (string, string, error) {
	e.t.Helper()

	base := []string{
		"--config", filepath.Join(e.t.TempDir(), "missing.toml"),
		"--server", e.serverURL,
		"--token-file", e.tokenPath,
		"--retries", "0",
		"--plain",
	}

	cmd := newRootCommand()
	cmd.SetArgs(append(base, args...))

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func (e *cliEnv) mustRun(args ...string) string {
	e.t.Helper()
	stdout, stderr, err := e.run(args...)
	if err != nil {
		e.t.Fatalf("taskcli %s failed: %v\nstderr: %s", strings.Join(args, " "), err, stderr)
	}
	return stdout
}

func TestTaskLifecycleEndToEnd(t *testing.T) {
	env := newCLIEnv(t)

	out := env.mustRun("add", "Buy", "milk", "-d", "2 liters")
	if !strings.Contains(out, "created task 1") {
		t.Fatalf("unexpected add output: %q", out)
	}
	if !strings.Contains(out, "title:       Buy milk") {
		t.Fatalf("add should echo the created task: %q", out)
	}

	env.mustRun("add", "Water plants", "--completed")

	out = env.mustRun("list")
	if !strings.Contains(out, "Buy milk") || !strings.Contains(out, "Water plants") {
		t.Fatalf("list missing tasks: %q", out)
	}

	out = env.mustRun("list", "--completed")
	if strings.Contains(out, "Buy milk") || !strings.Contains(out, "Water plants") {
		t.Fatalf("completed filter not applied: %q", out)
	}

	out = env.mustRun("list", "--pending")
	if !strings.Contains(out, "Buy milk") || strings.Contains(out, "Water plants") {
		t.Fatalf("pending filter not applied: %q", out)
	}

	out = env.mustRun("done", "1")
	if !strings.Contains(out, "task 1 completed: Buy milk") {
		t.Fatalf("unexpected done output: %q", out)
	}

	out = env.mustRun("show", "1")
	if !strings.Contains(out, "state:       done") {
		t.Fatalf("show should report completion: %q", out)
	}

	out = env.mustRun("done", "1", "--undo")
	if !strings.Contains(out, "task 1 reopened") {
		t.Fatalf("unexpected undo output: %q", out)
	}

	out = env.mustRun("edit", "1", "--title", "Buy oat milk")
	if !strings.Contains(out, "title:       Buy oat milk") {
		t.Fatalf("edit should echo the new title: %q", out)
	}

	out = env.mustRun("show", "1")
	if !strings.Contains(out, "description: 2 liters") {
		t.Fatalf("edit must not clobber the description: %q", out)
	}

	out = env.mustRun("rm", "1")
	if !strings.Contains(out, "deleted task 1") {
		t.Fatalf("unexpected rm output: %q", out)
	}

	_, _, err := env.run("show", "1")
	if err == nil || !strings.Contains(err.Error(), "task not found") {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestEditWithoutFlagsIsRejected(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun("add", "something")

	_, _, err := env.run("edit", "1")
	if err == nil || !strings.Contains(err.Error(), "nothing to change") {
		t.Fatalf("expected guidance about flags, got %v", err)
	}
}

func TestListRejectsConflictingFilters(t *testing.T) {
	env := newCLIEnv(t)

	_, _, err := env.run("list", "--completed", "--pending")
	if err == nil || !strings.Contains(err.Error(), "exclude each other") {
		t.Fatalf("expected filter conflict error, got %v", err)
	}
}

func TestShowRejectsBadID(t *testing.T) {
	env := newCLIEnv(t)

	_, _, err := env.run("show", "abc")
	if err == nil || !strings.Contains(err.Error(), "task id must be a positive number") {
		t.Fatalf("expected id parse error, got %v", err)
	}
}

func TestValidationFailureIsExplained(t *testing.T) {
	env := newCLIEnv(t)

	_, _, err := env.run("add", "", "-d", "description without a title")
	if err == nil || !strings.Contains(err.Error(), "the server rejected the input") {
		t.Fatalf("expected validation message, got %v", err)
	}
	if !strings.Contains(err.Error(), "title") {
		t.Fatalf("expected the offending field to be named, got %v", err)
	}
}

func TestAuthEndToEnd(t *testing.T) {
	env := newCLIEnv(t, mockapi.WithAuthRequired())

	_, _, err := env.run("list")
	if err == nil || !strings.Contains(err.Error(), "not authorized") {
		t.Fatalf("anonymous list should be rejected, got %v", err)
	}

	out := env.mustRun("register", "ana@example.com", "--password", "hunter22")
	if !strings.Contains(out, "registered ana@example.com") {
		t.Fatalf("unexpected register output: %q", out)
	}

	out = env.mustRun("login", "ana@example.com", "--password", "hunter22")
	if !strings.Contains(out, "logged in as ana@example.com") {
		t.Fatalf("unexpected login output: %q", out)
	}
	if _, err := os.Stat(env.tokenPath); err != nil {
		t.Fatalf("token file missing after login: %v", err)
	}

	out = env.mustRun("status")
	if !strings.Contains(out, "session: ana@example.com") {
		t.Fatalf("status should name the session: %q", out)
	}

	out = env.mustRun("add", "authed task")
	if !strings.Contains(out, "created task 1") {
		t.Fatalf("unexpected add output: %q", out)
	}

	out = env.mustRun("logout")
	if !strings.Contains(out, "logged out") {
		t.Fatalf("unexpected logout output: %q", out)
	}
	if _, err := os.Stat(env.tokenPath); !os.IsNotExist(err) {
		t.Fatalf("token file should be gone after logout, stat said: %v", err)
	}

	out = env.mustRun("status")
	if !strings.Contains(out, "session: not logged in") {
		t.Fatalf("status should report the ended session: %q", out)
	}

	_, _, err = env.run("list")
	if err == nil || !strings.Contains(err.Error(), "not authorized") {
		t.Fatalf("list after logout should be rejected, got %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	env := newCLIEnv(t, mockapi.WithAuthRequired())
	env.mustRun("register", "bob@example.com", "--password", "correct-horse")

	_, _, err := env.run("login", "bob@example.com", "--password", "wrong-horse")
	if err == nil || !strings.Contains(err.Error(), "login failed: wrong email or password") {
		t.Fatalf("expected login failure message, got %v", err)
	}
	if _, statErr := os.Stat(env.tokenPath); !os.IsNotExist(statErr) {
		t.Fatalf("failed login must not persist a token, stat said: %v", statErr)
	}
}

func TestRegisterPromptedPasswordsMustMatch(t *testing.T) {
	restore := readPassword
	answers := [][]byte{[]byte("first"), []byte("second")}
	readPassword = func(fd int) ([]byte, error) {
		next := answers[0]
		answers = answers[1:]
		return next, nil
	}
	t.Cleanup(func() { readPassword = restore })

	env := newCLIEnv(t, mockapi.WithAuthRequired())

	_, stderr, err := env.run("register", "carol@example.com")
	if err == nil || !strings.Contains(err.Error(), "passwords do not match") {
		t.Fatalf("expected mismatch error, got %v", err)
	}
	if !strings.Contains(stderr, "Password:") || !strings.Contains(stderr, "Repeat password:") {
		t.Fatalf("expected both prompts on stderr, got %q", stderr)
	}
}

func TestLoginPromptsWhenPasswordOmitted(t *testing.T) {
	restore := readPassword
	readPassword = func(fd int) ([]byte, error) {
		return []byte("hunter22"), nil
	}
	t.Cleanup(func() { readPassword = restore })

	env := newCLIEnv(t, mockapi.WithAuthRequired())
	env.mustRun("register", "dora@example.com", "--password", "hunter22")

	stdout, stderr, err := env.run("login", "dora@example.com")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if !strings.Contains(stderr, "Password:") {
		t.Fatalf("expected password prompt on stderr, got %q", stderr)
	}
	if !strings.Contains(stdout, "logged in as dora@example.com") {
		t.Fatalf("unexpected login output: %q", stdout)
	}
}

func TestStatusWithoutSession(t *testing.T) {
	env := newCLIEnv(t)

	out := env.mustRun("status")
	if !strings.Contains(out, "server:  "+env.serverURL) {
		t.Fatalf("status should name the server: %q", out)
	}
	if !strings.Contains(out, "session: not logged in") {
		t.Fatalf("status should report the missing session: %q", out)
	}
}
