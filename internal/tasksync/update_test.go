package tasksync

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"testing"

	"github.com/nakachan-ing/fieldsync-cli/internal/fakeapi"
)

func seedStatuses(srv *fakeapi.Server) {
	srv.SetTasks(testUser, []map[string]any{
		{"id": "p", "ticketNumber": "T-1", "status": "pending"},
		{"id": "ip", "ticketNumber": "T-2", "status": "in_progress"},
		{"id": "done", "ticketNumber": "T-3", "status": "Completed"},
		{"id": "res", "status": "RESOLVED"},
		{"id": "x", "ticketNumber": "T-5", "status": "cancelled"},
	})
}

func TestUpdateStatusCompletionLock(t *testing.T) {
	srv, c := newTestClient(t, RouteUpdate)
	seedStatuses(srv)
	login(t, c)
	fetch(t, c)

	for _, id := range []string{"done", "res"} {
		for _, next := range []string{"pending", "in_progress", "completed", "cancelled"} {
			err := c.UpdateTask(context.Background(), id, FieldStatus, next)

			var lerr *CompletionLockedError
			if !errors.As(err, &lerr) {
				t.Errorf("%s -> %s: expected CompletionLockedError, got %v", id, next, err)
			}
		}
	}
	if n := len(srv.Updates()); n != 0 {
		t.Errorf("Expected no update requests, got %d", n)
	}
}

func TestUpdateStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		next    string
		wantErr any
	}{
		{"in progress to pending", "ip", "pending", &InvalidTransitionError{}},
		{"in progress to completed", "ip", "completed", nil},
		{"pending to in progress", "p", "In_Progress", nil},
		{"pending to pending", "p", "pending", nil},
		{"cancelled to in progress", "x", "in_progress", nil},
		{"not a status", "p", "on_hold", &ValidationError{}},
		{"unknown task", "nope", "completed", &ValidationError{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, c := newTestClient(t, RouteUpdate)
			seedStatuses(srv)
			login(t, c)
			fetch(t, c)

			err := c.UpdateTask(context.Background(), tt.id, FieldStatus, tt.next)

			switch want := tt.wantErr.(type) {
			case nil:
				if err != nil {
					t.Fatalf("Expected success, got %v", err)
				}
				if n := len(srv.Updates()); n != 1 {
					t.Errorf("Expected 1 update request, got %d", n)
				}
			case *InvalidTransitionError:
				if !errors.As(err, &want) {
					t.Errorf("Expected InvalidTransitionError, got %v", err)
				}
			case *ValidationError:
				if !errors.As(err, &want) {
					t.Errorf("Expected ValidationError, got %v", err)
				}
			}
		})
	}
}

func TestUpdateUnknownTaskWrapsSentinel(t *testing.T) {
	_, c := newTestClient(t, RouteUpdate)
	login(t, c)

	err := c.UpdateTask(context.Background(), "missing", FieldStatus, "completed")
	if !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("Expected ErrTaskNotFound, got %v", err)
	}
}

func TestUpdateRefetchesAuthoritativeList(t *testing.T) {
	srv, c := newTestClient(t, RouteUpdate)
	seedStatuses(srv)
	login(t, c)
	fetch(t, c)
	fetchesBefore := srv.Calls(fakeapi.RouteMyTasks)

	if err := c.UpdateTask(context.Background(), "ip", FieldStatus, "completed"); err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}

	if n := srv.Calls(fakeapi.RouteMyTasks); n != fetchesBefore+1 {
		t.Errorf("Expected one refetch, got %d", n-fetchesBefore)
	}
	if got, _ := c.Task("ip"); got.Status != "completed" {
		t.Errorf("Expected refetched status completed, got %q", got.Status)
	}
	if n := srv.Calls(fakeapi.RouteWebRefresh); n != 1 {
		t.Errorf("Expected web history sync, got %d calls", n)
	}
}

func TestUpdateRefetchFailureKeepsPreviousList(t *testing.T) {
	srv, c := newTestClient(t, RouteUpdate)
	seedStatuses(srv)
	login(t, c)
	before := fetch(t, c)

	srv.FailNext(fakeapi.RouteMyTasks, http.StatusBadGateway)
	if err := c.UpdateTask(context.Background(), "ip", FieldStatus, "completed"); err != nil {
		t.Fatalf("Expected update to succeed, got %v", err)
	}

	if got := c.Tasks(); !reflect.DeepEqual(got, before) {
		t.Errorf("Expected previous list to be kept, got %v", got)
	}
}

func TestUpdateFailureLeavesStateUnchanged(t *testing.T) {
	srv, c := newTestClient(t, RouteUpdate)
	seedStatuses(srv)
	login(t, c)
	before := fetch(t, c)
	fetchesBefore := srv.Calls(fakeapi.RouteMyTasks)

	srv.FailNext(fakeapi.RouteUpdate, http.StatusInternalServerError)
	err := c.UpdateTask(context.Background(), "p", FieldStatus, "in_progress")

	var uerr *UpdateError
	if !errors.As(err, &uerr) {
		t.Fatalf("Expected UpdateError, got %v", err)
	}
	if uerr.StatusCode != http.StatusInternalServerError || uerr.TaskID != "p" || uerr.Field != FieldStatus {
		t.Errorf("Unexpected UpdateError %+v", uerr)
	}
	if n := srv.Calls(fakeapi.RouteMyTasks); n != fetchesBefore {
		t.Errorf("Expected no refetch, got %d", n-fetchesBefore)
	}
	if got := c.Tasks(); !reflect.DeepEqual(got, before) {
		t.Errorf("Expected list unchanged")
	}
}

func TestUpdateAdvisoryFailureIsSwallowed(t *testing.T) {
	srv, c := newTestClient(t, RouteUpdate)
	seedStatuses(srv)
	login(t, c)
	fetch(t, c)

	srv.FailNext(fakeapi.RouteWebRefresh, http.StatusInternalServerError)
	if err := c.UpdateTask(context.Background(), "p", FieldNotes, "arrived on site"); err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
}

func TestUpdatePayload(t *testing.T) {
	tests := []struct {
		name       string
		route      string
		field      string
		value      string
		wantMethod string
		wantType   string
		wantDesc   string
	}{
		{"status via update route", RouteUpdate, FieldStatus, " COMPLETED ", http.MethodPost, "status_change", "Status changed to completed via mobile"},
		{"status via status route", RouteStatus, FieldStatus, "completed", http.MethodPut, "status_change", "Status changed to completed via mobile"},
		{"notes", RouteUpdate, FieldNotes, "  replaced fan ", http.MethodPost, "notes_added", "Notes added via mobile: replaced fan"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, c := newTestClient(t, tt.route)
			seedStatuses(srv)
			login(t, c)
			fetch(t, c)

			if err := c.UpdateTask(context.Background(), "ip", tt.field, tt.value); err != nil {
				t.Fatalf("UpdateTask failed: %v", err)
			}

			updates := srv.Updates()
			if len(updates) != 1 {
				t.Fatalf("Expected 1 update, got %d", len(updates))
			}
			u := updates[0]
			if u.Method != tt.wantMethod || u.TaskID != "ip" {
				t.Errorf("Expected %s for task ip, got %s for %s", tt.wantMethod, u.Method, u.TaskID)
			}
			checks := map[string]any{
				"source":         "mobile",
				"user":           testUser,
				"device":         "device-1",
				"update_type":    tt.wantType,
				"description":    tt.wantDesc,
				"create_history": true,
				"sync_web":       true,
				"timestamp":      float64(fixedNow.UnixMilli()),
			}
			for k, want := range checks {
				if got := u.Body[k]; got != want {
					t.Errorf("%s: expected %v, got %v", k, want, got)
				}
			}
			if _, ok := u.Body[tt.field]; !ok {
				t.Errorf("Expected %s key in body", tt.field)
			}
		})
	}
}

func TestUpdateRejectsBadInput(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		value    string
		sentinel error
	}{
		{"blank notes", FieldNotes, "   ", nil},
		{"unknown field", "priority", "high", ErrUnknownField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, c := newTestClient(t, RouteUpdate)
			seedStatuses(srv)
			login(t, c)
			fetch(t, c)

			err := c.UpdateTask(context.Background(), "p", tt.field, tt.value)

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Expected ValidationError, got %v", err)
			}
			if tt.sentinel != nil && !errors.Is(err, tt.sentinel) {
				t.Errorf("Expected %v, got %v", tt.sentinel, err)
			}
			if n := len(srv.Updates()); n != 0 {
				t.Errorf("Expected no request, got %d", n)
			}
		})
	}
}

func TestApplyUpdate(t *testing.T) {
	tests := []struct {
		name        string
		req         UpdateRequest
		wantChanged bool
		wantFields  []string
	}{
		{"notes only", UpdateRequest{Notes: "checked cabling"}, false, []string{"notes"}},
		{"unchanged status is skipped", UpdateRequest{Status: "IN_PROGRESS", Notes: "still working"}, false, []string{"notes"}},
		{"status then notes", UpdateRequest{Status: "completed", Notes: "done"}, true, []string{"status", "notes"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, c := newTestClient(t, RouteUpdate)
			seedStatuses(srv)
			login(t, c)
			fetch(t, c)
			fetchesBefore := srv.Calls(fakeapi.RouteMyTasks)

			result, err := c.ApplyUpdate(context.Background(), "ip", tt.req)
			if err != nil {
				t.Fatalf("ApplyUpdate failed: %v", err)
			}
			if result.StatusChanged != tt.wantChanged {
				t.Errorf("Expected StatusChanged %v, got %v", tt.wantChanged, result.StatusChanged)
			}

			var fields []string
			for _, u := range srv.Updates() {
				if _, ok := u.Body["status"]; ok {
					fields = append(fields, "status")
				}
				if _, ok := u.Body["notes"]; ok {
					fields = append(fields, "notes")
				}
			}
			if !reflect.DeepEqual(fields, tt.wantFields) {
				t.Errorf("Expected %v, got %v", tt.wantFields, fields)
			}
			if n := srv.Calls(fakeapi.RouteMyTasks); n != fetchesBefore+1 {
				t.Errorf("Expected a single refetch, got %d", n-fetchesBefore)
			}
		})
	}
}

func TestApplyUpdateRequiresNotesAndValidStatus(t *testing.T) {
	srv, c := newTestClient(t, RouteUpdate)
	seedStatuses(srv)
	login(t, c)
	fetch(t, c)

	var verr *ValidationError
	if _, err := c.ApplyUpdate(context.Background(), "ip", UpdateRequest{Status: "completed"}); !errors.As(err, &verr) {
		t.Errorf("Expected ValidationError for missing notes, got %v", err)
	}

	var terr *InvalidTransitionError
	if _, err := c.ApplyUpdate(context.Background(), "ip", UpdateRequest{Status: "pending", Notes: "undo"}); !errors.As(err, &terr) {
		t.Errorf("Expected InvalidTransitionError, got %v", err)
	}
	if n := len(srv.Updates()); n != 0 {
		t.Errorf("Expected no requests, got %d", n)
	}
}
