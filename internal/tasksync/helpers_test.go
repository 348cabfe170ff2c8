package tasksync

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nakachan-ing/fieldsync-cli/internal/fakeapi"
	"github.com/nakachan-ing/fieldsync-cli/internal/model"
	"github.com/sirupsen/logrus"
)

const (
	testUser     = "aiko"
	testPassword = "s3cret"
)

var fixedNow = time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

// newTestClient starts a fake portal with one user and returns a client
// pointed at it. Extra options are applied after the defaults.
func newTestClient(t *testing.T, route string, options ...Option) (*fakeapi.Server, *Client) {
	t.Helper()

	srv := fakeapi.New(quietLogger())
	if err := srv.AddUser(testUser, testPassword, "", ""); err != nil {
		t.Fatalf("AddUser failed: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	opts := append([]Option{WithLogger(quietLogger()), WithClock(func() time.Time { return fixedNow })}, options...)
	c := New(Options{
		BaseURL:     ts.URL + "/api/",
		UserAgent:   "FieldSyncCLI/test",
		Device:      "device-1",
		Source:      "mobile",
		UpdateRoute: route,
	}, opts...)
	return srv, c
}

func login(t *testing.T, c *Client) {
	t.Helper()
	if _, err := c.Login(context.Background(), testUser, testPassword); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
}

func fetch(t *testing.T, c *Client) []model.Task {
	t.Helper()
	tasks, err := c.FetchTasks(context.Background())
	if err != nil {
		t.Fatalf("FetchTasks failed: %v", err)
	}
	return tasks
}

func ids(tasks []model.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}
