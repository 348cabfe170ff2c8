package tasksync

import (
	"errors"
	"testing"

	"github.com/nakachan-ing/fieldsync-cli/internal/model"
)

func TestValidateTransition(t *testing.T) {
	tests := []struct {
		current string
		next    string
		want    string // "", "locked", "invalid"
	}{
		{"completed", "in_progress", "locked"},
		{"Completed", "completed", "locked"},
		{"RESOLVED", "pending", "locked"},
		{"in_progress", "pending", "invalid"},
		{"in_progress", "completed", ""},
		{"in_progress", "cancelled", ""},
		{"pending", "pending", ""},
		{"pending", "in_progress", ""},
		{"cancelled", "pending", ""},
		{"on_hold", "pending", ""},
	}

	for _, tt := range tests {
		t.Run(tt.current+"->"+tt.next, func(t *testing.T) {
			err := ValidateTransition(model.Task{ID: "1", TicketNumber: "T-1", Status: tt.current}, tt.next)

			var locked *CompletionLockedError
			var invalid *InvalidTransitionError
			switch tt.want {
			case "":
				if err != nil {
					t.Errorf("Expected allowed, got %v", err)
				}
			case "locked":
				if !errors.As(err, &locked) {
					t.Errorf("Expected CompletionLockedError, got %v", err)
				}
			case "invalid":
				if !errors.As(err, &invalid) {
					t.Errorf("Expected InvalidTransitionError, got %v", err)
				}
			}
		})
	}
}

func TestCompletionLockedErrorLabel(t *testing.T) {
	withTicket := &CompletionLockedError{TaskID: "9", TicketNumber: "FS-9", Status: "completed"}
	noTicket := &CompletionLockedError{TaskID: "9", TicketNumber: "N/A", Status: "completed"}

	if got := withTicket.Error(); got != "task FS-9 has been completed (status completed) and cannot be modified further" {
		t.Errorf("Unexpected message %q", got)
	}
	if got := noTicket.Error(); got != "task 9 has been completed (status completed) and cannot be modified further" {
		t.Errorf("Unexpected message %q", got)
	}
}
