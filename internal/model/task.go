package model

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Statuses lists the canonical statuses in workflow order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted, StatusCancelled}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

type Task struct {
	ID              string `json:"id"`
	TicketNumber    string `json:"ticketNumber"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	Status          string `json:"status"` // lowercased; unrecognised values are kept as-is
	Priority        string `json:"priority"`
	IssueType       string `json:"issueType"`
	CustomerName    string `json:"customerName"`
	CustomerCity    string `json:"customerCity"`
	CustomerAddress string `json:"customerAddress"`
	CustomerPhone   string `json:"customerPhone"`
	CustomerEmail   string `json:"customerEmail"`
	CreatedAt       string `json:"createdAt"`
	UpdatedAt       string `json:"updatedAt"`
}

// TaskUpdate is one entry of the local journal of updates sent to the portal.
type TaskUpdate struct {
	ID        int64  `json:"id"`
	TaskID    string `json:"task_id"`
	Field     string `json:"field"`
	Value     string `json:"value"`
	Succeeded bool   `json:"succeeded"`
	Error     string `json:"error"`
	CreatedAt string `json:"created_at"` // yyyy-mm-dd hh:mm:ss
}
