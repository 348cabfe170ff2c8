package tasksync

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nakachan-ing/fieldsync-cli/internal/model"
)

const (
	defaultTicketNumber = "N/A"
	defaultTitle        = "Task"
	defaultIssueType    = "General"
	defaultPriority     = "normal"
	defaultCustomerName = "Unknown"

	defaultUsername = "Field Engineer"
	defaultRole     = "field_engineer"
	defaultEmail    = "engineer@fieldsync.local"
)

// Pointer fields distinguish a missing (or null) key from an empty string.
type taskPayload struct {
	ID           *string          `json:"id"`
	TicketNumber *string          `json:"ticketNumber"`
	Title        *string          `json:"title"`
	Description  *string          `json:"description"`
	Status       *string          `json:"status"`
	Priority     *string          `json:"priority"`
	IssueType    *string          `json:"issueType"`
	Customer     *customerPayload `json:"customer"`
	CreatedAt    *string          `json:"createdAt"`
	UpdatedAt    *string          `json:"updatedAt"`
}

type customerPayload struct {
	Name    *string `json:"name"`
	City    *string `json:"city"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
}

type profilePayload struct {
	Username *string `json:"username"`
	Role     *string `json:"role"`
	Email    *string `json:"email"`
}

func or(v *string, fallback string) string {
	if v == nil {
		return fallback
	}
	return *v
}

// NormalizeStatus trims and lowercases a wire status.
func NormalizeStatus(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (p taskPayload) toTask() model.Task {
	task := model.Task{
		ID:           or(p.ID, ""),
		TicketNumber: or(p.TicketNumber, defaultTicketNumber),
		Title:        or(p.Title, defaultTitle),
		Description:  or(p.Description, ""),
		Status:       NormalizeStatus(or(p.Status, string(model.StatusPending))),
		Priority:     or(p.Priority, defaultPriority),
		IssueType:    or(p.IssueType, defaultIssueType),
		CustomerName: defaultCustomerName,
		CreatedAt:    or(p.CreatedAt, ""),
		UpdatedAt:    or(p.UpdatedAt, ""),
	}
	if c := p.Customer; c != nil {
		task.CustomerName = or(c.Name, defaultCustomerName)
		task.CustomerCity = or(c.City, "")
		task.CustomerAddress = or(c.Address, "")
		task.CustomerPhone = or(c.Phone, "")
		task.CustomerEmail = or(c.Email, "")
	}
	return task
}

// DecodeTasks parses a JSON array of portal task objects, applying the
// defaults for missing fields and keeping server order.
func DecodeTasks(data []byte) ([]model.Task, error) {
	var payloads []taskPayload
	if err := json.Unmarshal(data, &payloads); err != nil {
		return nil, fmt.Errorf("failed to parse task list: %w", err)
	}

	tasks := make([]model.Task, 0, len(payloads))
	for _, p := range payloads {
		tasks = append(tasks, p.toTask())
	}
	return tasks, nil
}

// DecodeProfile parses the login response body. An empty body yields the
// default profile.
func DecodeProfile(data []byte) (model.UserProfile, error) {
	var p profilePayload
	if len(strings.TrimSpace(string(data))) > 0 {
		if err := json.Unmarshal(data, &p); err != nil {
			return model.UserProfile{}, fmt.Errorf("failed to parse profile: %w", err)
		}
	}
	return model.UserProfile{
		Username: or(p.Username, defaultUsername),
		Role:     or(p.Role, defaultRole),
		Email:    or(p.Email, defaultEmail),
	}, nil
}
