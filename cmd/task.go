/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/nakachan-ing/fieldsync-cli/internal/model"
	"github.com/nakachan-ing/fieldsync-cli/internal/tasksync"
	"github.com/nakachan-ing/fieldsync-cli/internal/util"
	"github.com/spf13/cobra"
)

var taskStatusFilter string
var taskFrom string
var taskTo string
var taskSearchQuery string
var taskPageSize int
var taskCached bool
var taskMeta bool
var taskCopy bool
var taskMessage string
var taskUpdateStatus string
var taskUpdateNotes string

// taskCmd represents the task command
var taskCmd = &cobra.Command{
	Use:     "task",
	Short:   "Work with the tasks assigned to you",
	Aliases: []string{"t"},
}

var listTaskCmd = &cobra.Command{
	Use:     "list",
	Short:   "List your tasks",
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		release, err := a.lock("task list")
		if err != nil {
			return err
		}
		defer release()

		tasks, err := a.loadTasks(cmd.Context(), taskCached)
		if err != nil {
			return err
		}

		filtered, err := selectTasks(tasks, taskStatusFilter, taskSearchQuery, taskFrom, taskTo)
		if err != nil {
			return err
		}

		if len(filtered) == 0 {
			fmt.Println("🔍 No tasks found.")
			return nil
		}

		fmt.Println(strings.Repeat("=", 30))
		fmt.Printf("Tasks: %v tasks shown\n", len(filtered))
		fmt.Println(strings.Repeat("=", 30))

		paginate(os.Stdout, os.Stdin, filtered, taskPageSize)
		return nil
	},
}

// selectTasks applies the status bucket, free-text and created-date filters.
func selectTasks(tasks []model.Task, status, query, from, to string) ([]model.Task, error) {
	filtered := tasks
	if status != "" {
		var err error
		filtered, err = tasksync.FilterByStatus(filtered, status)
		if err != nil {
			return nil, err
		}
	}
	filtered = util.SearchTasks(filtered, query)
	return util.FilterTasksByDate(filtered, from, to), nil
}

// paginate renders pageSize tasks at a time, waiting for Enter between pages.
// A pageSize of -1 shows everything at once.
func paginate(out io.Writer, in io.Reader, tasks []model.Task, pageSize int) {
	if pageSize <= 0 {
		pageSize = len(tasks)
	}
	reader := bufio.NewReader(in)

	for page := 0; ; page++ {
		start := page * pageSize
		if start >= len(tasks) {
			fmt.Fprintln(out, "No more tasks to display.")
			return
		}
		end := start + pageSize
		if end > len(tasks) {
			end = len(tasks)
		}

		renderTaskTable(out, tasks[start:end])

		if end >= len(tasks) {
			return
		}

		fmt.Fprint(out, "\nPress Enter for the next page (q to quit): ")
		input, err := reader.ReadString('\n')
		if strings.TrimSpace(input) == "q" || err != nil {
			return
		}
	}
}

var showTaskCmd = &cobra.Command{
	Use:   "show [taskID]",
	Short: "Show one task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		release, err := a.lock("task show")
		if err != nil {
			return err
		}
		defer release()

		tasks, err := a.loadTasks(cmd.Context(), taskCached)
		if err != nil {
			return err
		}

		task, ok := findTask(tasks, args[0])
		if !ok {
			return fmt.Errorf("❌ Task %s not found", args[0])
		}

		titleStyle := color.New(color.FgCyan, color.Bold).SprintFunc()
		metaStyle := color.New(color.FgHiGreen).SprintFunc()

		fmt.Printf("[%v] %v\n", titleStyle(task.TicketNumber), titleStyle(task.Title))
		fmt.Println(strings.Repeat("-", 50))
		fmt.Printf("ID: %v\n", metaStyle(task.ID))
		fmt.Printf("Status: %v\n", metaStyle(statusLabel(task.Status)))
		fmt.Printf("Priority: %v\n", metaStyle(task.Priority))
		fmt.Printf("Type: %v\n", metaStyle(task.IssueType))
		fmt.Printf("Customer: %v\n", metaStyle(task.CustomerName))
		fmt.Printf("Created at: %v\n", metaStyle(formatTimestamp(task.CreatedAt)))
		fmt.Printf("Updated at: %v\n", metaStyle(formatTimestamp(task.UpdatedAt)))

		markdown := taskMarkdown(task)
		if !taskMeta {
			rendered, err := glamour.Render(markdown, "dark")
			if err != nil {
				log.Printf("⚠️ Failed to render markdown content: %v", err)
			} else {
				fmt.Println(rendered)
			}
		}

		if taskCopy {
			if err := clipboard.WriteAll(markdown); err != nil {
				log.Printf("⚠️ Failed to copy to clipboard: %v", err)
			} else {
				fmt.Println("📋 Copied to clipboard")
			}
		}
		return nil
	},
}

func findTask(tasks []model.Task, idOrTicket string) (model.Task, bool) {
	for _, t := range tasks {
		if t.ID == idOrTicket {
			return t, true
		}
	}
	for _, t := range tasks {
		if strings.EqualFold(t.TicketNumber, idOrTicket) {
			return t, true
		}
	}
	return model.Task{}, false
}

// resolveTaskID fetches the current list so that updates validate against
// fresh data, and maps a ticket number to its task ID.
func resolveTaskID(cmd *cobra.Command, a *app, idOrTicket string) (string, error) {
	if err := a.requireSession(); err != nil {
		return "", err
	}
	tasks, err := a.client.FetchTasks(cmd.Context())
	if err != nil {
		return "", err
	}
	if task, ok := findTask(tasks, idOrTicket); ok {
		return task.ID, nil
	}
	return idOrTicket, nil
}

var statusTaskCmd = &cobra.Command{
	Use:       "status [taskID] [status]",
	Short:     "Change a task's status (pending, in_progress, completed, cancelled)",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"pending", "in_progress", "completed", "cancelled"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return sendTaskUpdate(cmd, args[0], tasksync.FieldStatus, args[1])
	},
}

var noteTaskCmd = &cobra.Command{
	Use:   "note [taskID]",
	Short: "Add a note to a task (opens the editor without -m)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		notes := taskMessage
		if notes == "" {
			config, err := loadConfig()
			if err != nil {
				return err
			}
			notes, err = util.EditText(fmt.Sprintf("Notes for task %s.\nLines starting with # are ignored.", args[0]), *config)
			if err != nil {
				return err
			}
			if notes == "" {
				fmt.Println("⚠️ Empty note, nothing sent.")
				return nil
			}
		}
		return sendTaskUpdate(cmd, args[0], tasksync.FieldNotes, notes)
	},
}

func sendTaskUpdate(cmd *cobra.Command, idOrTicket, field, value string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	release, err := a.lock("task " + field)
	if err != nil {
		return err
	}
	defer release()

	taskID, err := resolveTaskID(cmd, a, idOrTicket)
	if err != nil {
		return err
	}

	before, _ := a.client.Task(taskID)
	err = a.client.UpdateTask(cmd.Context(), taskID, field, value)
	a.recordUpdate(taskID, field, value, err)
	if err != nil {
		return err
	}

	if field == tasksync.FieldStatus {
		fmt.Println(statusChangeMessage(taskID, before.Status, value))
	} else {
		fmt.Printf("✅ Note added to task %s\n", taskID)
	}
	return nil
}

// statusChangeMessage reports the status the portal accepted. The local list
// may still hold the old value when the refresh after the update failed.
func statusChangeMessage(taskID, from, requested string) string {
	to := colorStatus(tasksync.NormalizeStatus(requested))
	if from == "" {
		return fmt.Sprintf("✅ Task %s is now %s", taskID, to)
	}
	return fmt.Sprintf("✅ Task %s: %s → %s", taskID, colorStatus(from), to)
}

var updateTaskCmd = &cobra.Command{
	Use:   "update [taskID]",
	Short: "Add notes and optionally change the status in one go",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		release, err := a.lock("task update")
		if err != nil {
			return err
		}
		defer release()

		taskID, err := resolveTaskID(cmd, a, args[0])
		if err != nil {
			return err
		}

		before, _ := a.client.Task(taskID)
		result, err := a.client.ApplyUpdate(cmd.Context(), taskID, tasksync.UpdateRequest{
			Status: taskUpdateStatus,
			Notes:  taskUpdateNotes,
		})
		if result.StatusChanged {
			a.recordUpdate(taskID, tasksync.FieldStatus, taskUpdateStatus, nil)
		}
		var updateErr *tasksync.UpdateError
		switch {
		case err == nil:
			a.recordUpdate(taskID, tasksync.FieldNotes, taskUpdateNotes, nil)
		case errors.As(err, &updateErr):
			value := taskUpdateNotes
			if updateErr.Field == tasksync.FieldStatus {
				value = taskUpdateStatus
			}
			a.recordUpdate(taskID, updateErr.Field, value, err)
		}
		if err != nil {
			return err
		}

		if result.StatusChanged {
			fmt.Println(statusChangeMessage(taskID, before.Status, taskUpdateStatus))
		}
		fmt.Printf("✅ Notes added to task %s\n", taskID)
		return nil
	},
}

var historyTaskCmd = &cobra.Command{
	Use:   "history [taskID]",
	Short: "Show the updates sent from this device",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		taskID := ""
		if len(args) == 1 {
			taskID = args[0]
		}
		updates, err := a.cache.ListUpdates(taskID)
		if err != nil {
			return err
		}
		if len(updates) == 0 {
			fmt.Println("🔍 No updates recorded.")
			return nil
		}
		renderUpdates(os.Stdout, updates)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(taskCmd)
	taskCmd.AddCommand(listTaskCmd, showTaskCmd, statusTaskCmd, noteTaskCmd, updateTaskCmd, historyTaskCmd)

	listTaskCmd.Flags().StringVarP(&taskStatusFilter, "status", "s", "", "Filter by status bucket (open, progress, completed, cancelled)")
	listTaskCmd.Flags().StringVarP(&taskSearchQuery, "search", "q", "", "Search ticket, title, description and customer")
	listTaskCmd.Flags().StringVar(&taskFrom, "from", "", "Only tasks created on or after this date (yyyy-mm-dd)")
	listTaskCmd.Flags().StringVar(&taskTo, "to", "", "Only tasks created on or before this date (yyyy-mm-dd)")
	listTaskCmd.Flags().IntVar(&taskPageSize, "limit", 20, "Set the number of tasks to display per page (-1 for all)")
	listTaskCmd.Flags().BoolVar(&taskCached, "cached", false, "Read the last synced list instead of the portal")

	showTaskCmd.Flags().BoolVar(&taskMeta, "meta", false, "Show only the metadata")
	showTaskCmd.Flags().BoolVar(&taskCopy, "copy", false, "Copy the task as markdown to the clipboard")
	showTaskCmd.Flags().BoolVar(&taskCached, "cached", false, "Read the last synced list instead of the portal")

	noteTaskCmd.Flags().StringVarP(&taskMessage, "message", "m", "", "Note text")

	updateTaskCmd.Flags().StringVar(&taskUpdateNotes, "notes", "", "Notes describing the work done (required)")
	updateTaskCmd.Flags().StringVar(&taskUpdateStatus, "status", "", "New status (pending, in_progress, completed, cancelled)")
	updateTaskCmd.MarkFlagRequired("notes")
}
