package util

import (
	"strings"
	"time"

	"github.com/nakachan-ing/fieldsync-cli/internal/model"
)

// SearchTasks keeps the tasks whose ticket number, title, description or
// customer name contains query, ignoring case.
func SearchTasks(tasks []model.Task, query string) []model.Task {
	if query == "" {
		return tasks
	}

	query = strings.ToLower(query)
	filtered := []model.Task{}

	for _, task := range tasks {
		for _, field := range []string{task.TicketNumber, task.Title, task.Description, task.CustomerName} {
			if strings.Contains(strings.ToLower(field), query) {
				filtered = append(filtered, task)
				break
			}
		}
	}

	return filtered
}

// FilterTasksByDate keeps the tasks created within [fromDate, toDate].
func FilterTasksByDate(tasks []model.Task, fromDate, toDate string) []model.Task {
	if fromDate == "" && toDate == "" {
		return tasks
	}

	filtered := []model.Task{}
	for _, task := range tasks {
		if IsWithinDateRange(task.CreatedAt, fromDate, toDate) {
			filtered = append(filtered, task)
		}
	}
	return filtered
}

// IsWithinDateRange compares the date part (yyyy-mm-dd) of an opaque
// timestamp with an inclusive range. An empty range matches everything; an
// unparsable timestamp matches nothing once a range is given.
func IsWithinDateRange(dateTime string, fromDate, toDate string) bool {
	if fromDate == "" && toDate == "" {
		return true
	}

	if len(dateTime) < 10 {
		return false
	}
	taskTime, err := time.Parse("2006-01-02", dateTime[:10])
	if err != nil {
		return false
	}

	if fromDate != "" {
		fromTime, err := time.Parse("2006-01-02", fromDate)
		if err == nil && taskTime.Before(fromTime) {
			return false
		}
	}

	if toDate != "" {
		toTime, err := time.Parse("2006-01-02", toDate)
		if err == nil && taskTime.After(toTime) {
			return false
		}
	}

	return true
}
