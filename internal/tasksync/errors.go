package tasksync

import (
	"errors"
	"fmt"
)

var (
	// ErrTaskNotFound is returned when an update names a task that is not in the current list.
	ErrTaskNotFound = errors.New("task not found")
	// ErrUnknownField is returned when an update names a field other than status or notes.
	ErrUnknownField = errors.New("unknown update field")
	// ErrUnknownFilter is returned by FilterByStatus for an unrecognised filter type.
	ErrUnknownFilter = errors.New("unknown status filter")
)

// ValidationError reports malformed local input. It is raised before any
// request is sent.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// requestFailure carries either the HTTP status and body returned by the
// portal or the transport/parse error that prevented a response.
type requestFailure struct {
	StatusCode int
	Body       string
	Err        error
}

func (f requestFailure) describe(op string) string {
	if f.Err != nil {
		return fmt.Sprintf("%s failed: %v", op, f.Err)
	}
	return fmt.Sprintf("%s failed: status %d: %s", op, f.StatusCode, f.Body)
}

type LoginError struct{ requestFailure }

func (e *LoginError) Error() string { return e.describe("login") }
func (e *LoginError) Unwrap() error { return e.Err }

type FetchError struct{ requestFailure }

func (e *FetchError) Error() string { return e.describe("fetch tasks") }
func (e *FetchError) Unwrap() error { return e.Err }

type UpdateError struct {
	requestFailure
	TaskID string
	Field  string
}

func (e *UpdateError) Error() string {
	return e.describe(fmt.Sprintf("update %s of task %s", e.Field, e.TaskID))
}
func (e *UpdateError) Unwrap() error { return e.Err }

// CompletionLockedError rejects any status change on a completed task.
type CompletionLockedError struct {
	TaskID       string
	TicketNumber string
	Status       string
}

func (e *CompletionLockedError) Error() string {
	return fmt.Sprintf("task %s has been completed (status %s) and cannot be modified further", e.label(), e.Status)
}

func (e *CompletionLockedError) label() string {
	if e.TicketNumber != "" && e.TicketNumber != defaultTicketNumber {
		return e.TicketNumber
	}
	return e.TaskID
}

// InvalidTransitionError rejects a status change that breaks the workflow
// sequence, e.g. moving an in-progress task back to pending.
type InvalidTransitionError struct {
	TaskID string
	From   string
	To     string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot change task %s status from %s to %s", e.TaskID, e.From, e.To)
}

func newLoginError(status int, body string, err error) *LoginError {
	return &LoginError{requestFailure{StatusCode: status, Body: body, Err: err}}
}

func newFetchError(status int, body string, err error) *FetchError {
	return &FetchError{requestFailure{StatusCode: status, Body: body, Err: err}}
}

func newUpdateError(taskID, field string, status int, body string, err error) *UpdateError {
	return &UpdateError{requestFailure: requestFailure{StatusCode: status, Body: body, Err: err}, TaskID: taskID, Field: field}
}
