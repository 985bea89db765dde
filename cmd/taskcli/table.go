package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"taskapp/pkg/taskclient"
)

// outputIsPlain decides between a framed table and tab separated lines.
// Pipes and redirects always get the plain form.
func (c *commandContext) outputIsPlain() bool {
	if c.flags.plain {
		return true
	}
	fd := os.Stdout.Fd()
	return !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd)
}

func renderTaskList(w io.Writer, tasks []taskclient.Task, plain bool) {
	if plain {
		for _, task := range tasks {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n",
				task.ID, completionWord(task.Completed), task.Title, task.CreatedAt.Format(time.RFC3339))
		}
		return
	}

	if len(tasks) == 0 {
		fmt.Fprintln(w, "no tasks")
		return
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"ID", "STATE", "TITLE", "CREATED"})
	for _, task := range tasks {
		tw.AppendRow(table.Row{
			task.ID,
			completionWord(task.Completed),
			task.Title,
			task.CreatedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 3, WidthMax: 60},
	})
	fmt.Fprintln(w, tw.Render())
}

func renderTask(w io.Writer, task taskclient.Task) {
	fmt.Fprintf(w, "id:          %d\n", task.ID)
	fmt.Fprintf(w, "title:       %s\n", task.Title)
	if task.Description != "" {
		fmt.Fprintf(w, "description: %s\n", task.Description)
	}
	fmt.Fprintf(w, "state:       %s\n", completionWord(task.Completed))
	fmt.Fprintf(w, "created:     %s\n", task.CreatedAt.Local().Format(time.RFC1123))
	if task.UserID != 0 {
		fmt.Fprintf(w, "owner:       user %s\n", strconv.FormatInt(task.UserID, 10))
	}
}

func completionWord(completed bool) string {
	if completed {
		return "done"
	}
	return "open"
}
