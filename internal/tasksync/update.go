package tasksync

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/nakachan-ing/fieldsync-cli/internal/model"
	"github.com/sirupsen/logrus"
)

const (
	FieldStatus = "status"
	FieldNotes  = "notes"
)

// UpdateRequest is a combined update: notes are required, the status is sent
// only when it differs from the task's current status.
type UpdateRequest struct {
	Status string
	Notes  string
}

// UpdateResult reports whether ApplyUpdate changed the status.
type UpdateResult struct {
	StatusChanged bool
}

type updatePayload struct {
	Status        string `json:"status,omitempty"`
	Notes         string `json:"notes,omitempty"`
	Source        string `json:"source"`
	User          string `json:"user"`
	Timestamp     int64  `json:"timestamp"`
	Device        string `json:"device"`
	UpdateType    string `json:"update_type"`
	Description   string `json:"description"`
	CreateHistory bool   `json:"create_history"`
	SyncWeb       bool   `json:"sync_web"`
}

// UpdateTask sends one field update and, on success, re-fetches the task list.
// The local task is never edited in place.
func (c *Client) UpdateTask(ctx context.Context, taskID, field, value string) error {
	field = strings.ToLower(strings.TrimSpace(field))

	switch field {
	case FieldStatus:
		value = NormalizeStatus(value)
		if err := c.checkStatus(taskID, value); err != nil {
			return err
		}
	case FieldNotes:
		value = strings.TrimSpace(value)
		if value == "" {
			return &ValidationError{Field: FieldNotes, Message: "must not be empty"}
		}
	default:
		return &ValidationError{Field: "field", Message: fmt.Sprintf("%q is not status or notes", field), Err: ErrUnknownField}
	}

	if err := c.sendUpdate(ctx, taskID, field, value); err != nil {
		return err
	}
	c.afterUpdate(ctx)
	return nil
}

// ApplyUpdate validates and sends a combined status and notes update, then
// re-fetches once.
func (c *Client) ApplyUpdate(ctx context.Context, taskID string, req UpdateRequest) (UpdateResult, error) {
	var result UpdateResult

	notes := strings.TrimSpace(req.Notes)
	if notes == "" {
		return result, &ValidationError{Field: FieldNotes, Message: "must not be empty"}
	}

	status := NormalizeStatus(req.Status)
	if status != "" {
		task, ok := c.Task(taskID)
		if !ok {
			return result, &ValidationError{Field: "task", Message: fmt.Sprintf("task %s is not in the current list", taskID), Err: ErrTaskNotFound}
		}
		if status == NormalizeStatus(task.Status) {
			status = ""
		} else if err := c.checkStatus(taskID, status); err != nil {
			return result, err
		}
	}

	if status != "" {
		if err := c.sendUpdate(ctx, taskID, FieldStatus, status); err != nil {
			return result, err
		}
		result.StatusChanged = true
	}
	if err := c.sendUpdate(ctx, taskID, FieldNotes, notes); err != nil {
		if result.StatusChanged {
			c.afterUpdate(ctx)
		}
		return result, err
	}
	c.afterUpdate(ctx)
	return result, nil
}

func (c *Client) checkStatus(taskID, status string) error {
	if !model.Status(status).Valid() {
		return &ValidationError{Field: FieldStatus, Message: fmt.Sprintf("%q is not one of pending, in_progress, completed, cancelled", status)}
	}
	task, ok := c.Task(taskID)
	if !ok {
		return &ValidationError{Field: "task", Message: fmt.Sprintf("task %s is not in the current list", taskID), Err: ErrTaskNotFound}
	}
	return ValidateTransition(task, status)
}

func (c *Client) sendUpdate(ctx context.Context, taskID, field, value string) error {
	const op = "tasksync.Client.UpdateTask"
	log := c.log.WithFields(logrus.Fields{"operation": op, "task": taskID, "field": field})

	c.ops.Lock()
	defer c.ops.Unlock()

	payload := updatePayload{
		Source:        c.opts.Source,
		User:          c.Profile().Username,
		Timestamp:     c.timestamp(),
		Device:        c.opts.Device,
		CreateHistory: true,
		SyncWeb:       true,
	}
	switch field {
	case FieldStatus:
		payload.Status = value
		payload.UpdateType = "status_change"
		payload.Description = fmt.Sprintf("Status changed to %s via %s", value, c.opts.Source)
	case FieldNotes:
		payload.Notes = value
		payload.UpdateType = "notes_added"
		payload.Description = fmt.Sprintf("Notes added via %s: %s", c.opts.Source, value)
	}

	method, path := http.MethodPost, "/tasks/"+url.PathEscape(taskID)+"/update"
	if c.opts.UpdateRoute == RouteStatus {
		method, path = http.MethodPut, "/tasks/"+url.PathEscape(taskID)+"/status"
	}

	resp, err := c.send(ctx, method, path, payload)
	if err != nil {
		log.WithError(err).Error("update request failed")
		return newUpdateError(taskID, field, 0, "", err)
	}
	if !resp.ok() {
		log.WithField("status", resp.status).Warn("update rejected")
		return newUpdateError(taskID, field, resp.status, strings.TrimSpace(string(resp.body)), nil)
	}

	log.Info("update accepted")
	return nil
}

// afterUpdate notifies the web portal and re-fetches. Neither failure is
// reported: the update itself has already been accepted.
func (c *Client) afterUpdate(ctx context.Context) {
	c.TriggerWebHistorySync(ctx)
	if _, err := c.FetchTasks(ctx); err != nil {
		c.log.WithField("operation", "tasksync.Client.UpdateTask").WithError(err).
			Warn("refresh after update failed, keeping previous task list")
	}
}
