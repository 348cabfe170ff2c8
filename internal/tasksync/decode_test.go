package tasksync

import (
	"testing"

	"github.com/nakachan-ing/fieldsync-cli/internal/model"
)

func TestDecodeTasks(t *testing.T) {
	data := []byte(`[
		{"id":"1","ticketNumber":"T-100","status":"Pending"},
		{"id":"2","title":null,"status":" IN_PROGRESS ","customer":{"name":"Acme","city":"Nara","phone":null}},
		{"id":"3","status":"On_Hold","createdAt":"2025-01-02T03:04:05Z","updatedAt":"yesterday"},
		{"ticketNumber":"T-4"}
	]`)

	tasks, err := DecodeTasks(data)
	if err != nil {
		t.Fatalf("DecodeTasks failed: %v", err)
	}

	want := []model.Task{
		{ID: "1", TicketNumber: "T-100", Title: "Task", Status: "pending", Priority: "normal", IssueType: "General", CustomerName: "Unknown"},
		{ID: "2", TicketNumber: "N/A", Title: "Task", Status: "in_progress", Priority: "normal", IssueType: "General", CustomerName: "Acme", CustomerCity: "Nara"},
		{ID: "3", TicketNumber: "N/A", Title: "Task", Status: "on_hold", Priority: "normal", IssueType: "General", CustomerName: "Unknown", CreatedAt: "2025-01-02T03:04:05Z", UpdatedAt: "yesterday"},
		{ID: "", TicketNumber: "T-4", Title: "Task", Status: "pending", Priority: "normal", IssueType: "General", CustomerName: "Unknown"},
	}
	if len(tasks) != len(want) {
		t.Fatalf("Expected %d tasks, got %d", len(want), len(tasks))
	}
	for i := range want {
		if tasks[i] != want[i] {
			t.Errorf("task %d:\n got %+v\nwant %+v", i, tasks[i], want[i])
		}
	}
}

func TestDecodeTasksStatusNeverEmpty(t *testing.T) {
	tasks, err := DecodeTasks([]byte(`[{"id":"a"},{"id":"b","status":null},{"id":"c","status":"CANCELLED"}]`))
	if err != nil {
		t.Fatalf("DecodeTasks failed: %v", err)
	}
	for _, task := range tasks {
		if task.Status == "" || task.Status != NormalizeStatus(task.Status) {
			t.Errorf("task %s: status %q is not normalised", task.ID, task.Status)
		}
	}
}

func TestDecodeTasksRejectsNonArray(t *testing.T) {
	if _, err := DecodeTasks([]byte(`{"error":"nope"}`)); err == nil {
		t.Error("Expected error for object payload")
	}
}

func TestDecodeProfile(t *testing.T) {
	tests := []struct {
		name string
		body string
		want model.UserProfile
	}{
		{"empty body", "", model.UserProfile{Username: "Field Engineer", Role: "field_engineer", Email: "engineer@fieldsync.local"}},
		{"partial", `{"username":"aiko"}`, model.UserProfile{Username: "aiko", Role: "field_engineer", Email: "engineer@fieldsync.local"}},
		{"full", `{"username":"aiko","role":"lead","email":"a@x.jp"}`, model.UserProfile{Username: "aiko", Role: "lead", Email: "a@x.jp"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeProfile([]byte(tt.body))
			if err != nil {
				t.Fatalf("DecodeProfile failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}
