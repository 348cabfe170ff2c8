package tasksync

import (
	"errors"
	"reflect"
	"testing"

	"github.com/nakachan-ing/fieldsync-cli/internal/model"
)

func tasksWithStatuses(statuses ...string) []model.Task {
	tasks := make([]model.Task, 0, len(statuses))
	for i, s := range statuses {
		tasks = append(tasks, model.Task{ID: string(rune('a' + i)), Status: s})
	}
	return tasks
}

func TestComputeStatusCounts(t *testing.T) {
	tasks := tasksWithStatuses("pending", "Open", "in_progress", "IN PROGRESS", "progress",
		"completed", "Complete", "cancelled", "canceled", "resolved", "on_hold", "")

	got := ComputeStatusCounts(tasks)

	want := StatusCounts{Open: 2, InProgress: 3, Completed: 2, Cancelled: 2, Unrecognized: 3}
	if got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
	if got.Total() != len(tasks) {
		t.Errorf("Expected total %d, got %d", len(tasks), got.Total())
	}
	if again := ComputeStatusCounts(tasks); again != got {
		t.Errorf("Expected idempotent counts, got %+v then %+v", got, again)
	}
}

func TestFilterByStatus(t *testing.T) {
	tasks := tasksWithStatuses("in_progress", "IN PROGRESS", "completed", "pending")
	original := append([]model.Task(nil), tasks...)

	got, err := FilterByStatus(tasks, "progress")
	if err != nil {
		t.Fatalf("FilterByStatus failed: %v", err)
	}

	if gotIDs := ids(got); !reflect.DeepEqual(gotIDs, []string{"a", "b"}) {
		t.Errorf("Expected [a b], got %v", gotIDs)
	}
	if !reflect.DeepEqual(tasks, original) {
		t.Error("Expected input list to be untouched")
	}
}

func TestFilterByStatusNames(t *testing.T) {
	tasks := tasksWithStatuses("open", "pending", "canceled", "complete")

	tests := []struct {
		filter string
		want   []string
	}{
		{"open", []string{"a", "b"}},
		{" OPEN ", []string{"a", "b"}},
		{"cancelled", []string{"c"}},
		{"completed", []string{"d"}},
		{"progress", []string{}},
	}
	for _, tt := range tests {
		got, err := FilterByStatus(tasks, tt.filter)
		if err != nil {
			t.Fatalf("%q: %v", tt.filter, err)
		}
		if gotIDs := ids(got); !reflect.DeepEqual(gotIDs, tt.want) {
			t.Errorf("%q: expected %v, got %v", tt.filter, tt.want, gotIDs)
		}
	}
}

func TestFilterByStatusUnknownFilter(t *testing.T) {
	_, err := FilterByStatus(tasksWithStatuses("pending"), "archived")

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	if !errors.Is(err, ErrUnknownFilter) {
		t.Errorf("Expected ErrUnknownFilter, got %v", err)
	}
}
