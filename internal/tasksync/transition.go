package tasksync

import "github.com/nakachan-ing/fieldsync-cli/internal/model"

// ValidateTransition checks a status change against the workflow rules:
// a completed (or resolved) task is locked, and pending is never a
// regression target for a task already in progress or completed. Every
// other change, including to the same status, is allowed.
func ValidateTransition(task model.Task, next string) error {
	current := NormalizeStatus(task.Status)
	next = NormalizeStatus(next)

	if current == string(model.StatusCompleted) || current == "resolved" {
		return &CompletionLockedError{TaskID: task.ID, TicketNumber: task.TicketNumber, Status: task.Status}
	}

	if next == string(model.StatusPending) &&
		(current == string(model.StatusCompleted) || current == string(model.StatusInProgress)) {
		return &InvalidTransitionError{TaskID: task.ID, From: current, To: next}
	}

	return nil
}
