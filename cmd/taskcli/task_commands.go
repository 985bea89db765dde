package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"taskapp/pkg/taskclient"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var completedFlag bool
	var pendingFlag bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if completedFlag && pendingFlag {
				return fmt.Errorf("--completed and --pending exclude each other")
			}

			client, err := ctx.newClient()
			if err != nil {
				return err
			}

			opts := &taskclient.TaskListOptions{}
			if completedFlag {
				opts.Completed = taskclient.Bool(true)
			}
			if pendingFlag {
				opts.Completed = taskclient.Bool(false)
			}

			var tasks []taskclient.Task
			err = ctx.withRetries(cmd.Context(), func(callCtx context.Context) error {
				var listErr error
				tasks, listErr = client.ListTasks(callCtx, opts)
				return listErr
			})
			if err != nil {
				return ctx.decorate(err)
			}

			renderTaskList(cmd.OutOrStdout(), tasks, ctx.outputIsPlain())
			return nil
		},
	}

	cmd.Flags().BoolVar(&completedFlag, "completed", false, "only completed tasks")
	cmd.Flags().BoolVar(&pendingFlag, "pending", false, "only tasks not yet completed")

	return cmd
}

func newAddCommand(ctx *commandContext) *cobra.Command {
	var description string
	var completed bool

	cmd := &cobra.Command{
		Use:   "add TITLE...",
		Short: "Create a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.newClient()
			if err != nil {
				return err
			}

			in := taskclient.TaskCreate{
				Title:       strings.Join(args, " "),
				Description: description,
				Completed:   completed,
			}

			var task *taskclient.Task
			err = ctx.withRetries(cmd.Context(), func(callCtx context.Context) error {
				var createErr error
				task, createErr = client.CreateTask(callCtx, in)
				return createErr
			})
			if err != nil {
				return ctx.decorate(err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created task %d\n", task.ID)
			renderTask(cmd.OutOrStdout(), *task)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "longer free-form text")
	cmd.Flags().BoolVar(&completed, "completed", false, "create the task already completed")

	return cmd
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}

			client, err := ctx.newClient()
			if err != nil {
				return err
			}

			var task *taskclient.Task
			err = ctx.withRetries(cmd.Context(), func(callCtx context.Context) error {
				var getErr error
				task, getErr = client.GetTask(callCtx, id)
				return getErr
			})
			if err != nil {
				return ctx.decorate(err)
			}

			renderTask(cmd.OutOrStdout(), *task)
			return nil
		},
	}
}

func newEditCommand(ctx *commandContext) *cobra.Command {
	var title string
	var description string
	var completed bool

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change fields of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}

			// Only flags the user actually set go into the patch; the
			// server keeps every other field as it was.
			patch := taskclient.TaskPatch{}
			if cmd.Flags().Changed("title") {
				patch.Title = taskclient.String(title)
			}
			if cmd.Flags().Changed("description") {
				patch.Description = taskclient.String(description)
			}
			if cmd.Flags().Changed("completed") {
				patch.Completed = taskclient.Bool(completed)
			}
			if patch.Title == nil && patch.Description == nil && patch.Completed == nil {
				return fmt.Errorf("nothing to change, pass --title, --description or --completed")
			}

			client, err := ctx.newClient()
			if err != nil {
				return err
			}

			var task *taskclient.Task
			err = ctx.withRetries(cmd.Context(), func(callCtx context.Context) error {
				var updateErr error
				task, updateErr = client.UpdateTask(callCtx, id, patch)
				return updateErr
			})
			if err != nil {
				return ctx.decorate(err)
			}

			renderTask(cmd.OutOrStdout(), *task)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "new description")
	cmd.Flags().BoolVar(&completed, "completed", false, "completion state")

	return cmd
}

func newDoneCommand(ctx *commandContext) *cobra.Command {
	var undo bool

	cmd := &cobra.Command{
		Use:   "done ID",
		Short: "Mark a task completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}

			client, err := ctx.newClient()
			if err != nil {
				return err
			}

			patch := taskclient.TaskPatch{Completed: taskclient.Bool(!undo)}

			var task *taskclient.Task
			err = ctx.withRetries(cmd.Context(), func(callCtx context.Context) error {
				var updateErr error
				task, updateErr = client.UpdateTask(callCtx, id, patch)
				return updateErr
			})
			if err != nil {
				return ctx.decorate(err)
			}

			state := "completed"
			if undo {
				state = "reopened"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "task %d %s: %s\n", task.ID, state, task.Title)
			return nil
		},
	}

	cmd.Flags().BoolVar(&undo, "undo", false, "mark the task as not completed instead")

	return cmd
}

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"remove", "delete"},
		Short:   "Delete a task permanently",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}

			client, err := ctx.newClient()
			if err != nil {
				return err
			}

			err = ctx.withRetries(cmd.Context(), func(callCtx context.Context) error {
				return client.DeleteTask(callCtx, id)
			})
			if err != nil {
				return ctx.decorate(err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "deleted task %d\n", id)
			return nil
		},
	}
}

func parseTaskID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("task id must be a positive number, got %q", arg)
	}
	return id, nil
}
