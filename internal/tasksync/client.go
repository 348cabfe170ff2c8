package tasksync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/nakachan-ing/fieldsync-cli/internal/model"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const (
	RouteUpdate = "update" // POST /tasks/{id}/update
	RouteStatus = "status" // PUT /tasks/{id}/status
)

type Options struct {
	BaseURL     string // e.g. http://portal:4000/api
	UserAgent   string
	Source      string
	Device      string
	UpdateRoute string
	HTTPClient  *http.Client
}

type Option func(*Client)

func WithLogger(log *logrus.Entry) Option {
	return func(c *Client) { c.log = log }
}

// WithTasksListener registers a callback invoked with a copy of the task list
// every time it is replaced (after a fetch or a logout).
func WithTasksListener(fn func([]model.Task)) Option {
	return func(c *Client) { c.listeners = append(c.listeners, fn) }
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// Client owns the session and the task list of one signed-in engineer.
// Network operations are serialised; the state they produce is guarded by mu.
type Client struct {
	opts      Options
	http      *http.Client
	log       *logrus.Entry
	now       func() time.Time
	listeners []func([]model.Task)

	ops     sync.Mutex
	fetches singleflight.Group

	mu      sync.Mutex
	gen     uint64 // bumped on login/logout so stale fetches are discarded
	session model.Session
	tasks   []model.Task
}

func New(opts Options, options ...Option) *Client {
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if opts.UpdateRoute == "" {
		opts.UpdateRoute = RouteUpdate
	}
	if opts.Source == "" {
		opts.Source = "mobile"
	}

	c := &Client{
		opts: opts,
		http: opts.HTTPClient,
		now:  time.Now,
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	for _, o := range options {
		o(c)
	}
	if c.log == nil {
		c.log = logrus.NewEntry(logrus.StandardLogger())
	}
	c.log = c.log.WithField("component", "tasksync")
	return c
}

// RestoreSession installs a previously persisted session without a login.
func (c *Client) RestoreSession(s model.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.session = s
}

func (c *Client) Session() model.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

func (c *Client) Profile() model.UserProfile {
	return c.Session().Profile
}

// Logout forgets the session cookie, the profile and the task list.
func (c *Client) Logout() {
	c.mu.Lock()
	c.gen++
	c.session = model.Session{}
	c.tasks = nil
	c.mu.Unlock()

	c.log.WithField("operation", "tasksync.Client.Logout").Info("session cleared")
	c.notify(nil)
}

// Tasks returns a copy of the current task list.
func (c *Client) Tasks() []model.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneTasks(c.tasks)
}

func (c *Client) Task(id string) (model.Task, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range c.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}

func (c *Client) replaceTasks(gen uint64, tasks []model.Task) bool {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return false
	}
	c.tasks = tasks
	c.mu.Unlock()

	c.notify(tasks)
	return true
}

func (c *Client) notify(tasks []model.Task) {
	for _, fn := range c.listeners {
		fn(cloneTasks(tasks))
	}
}

func cloneTasks(tasks []model.Task) []model.Task {
	out := make([]model.Task, len(tasks))
	copy(out, tasks)
	return out
}

// response is a fully read HTTP response.
type response struct {
	status int
	header http.Header
	body   []byte
}

func (r response) ok() bool { return r.status >= 200 && r.status < 300 }

func (c *Client) send(ctx context.Context, method, path string, payload any) (response, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return response{}, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.opts.BaseURL+path, body)
	if err != nil {
		return response{}, fmt.Errorf("failed to build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.opts.UserAgent != "" {
		req.Header.Set("User-Agent", c.opts.UserAgent)
	}
	if cookie := c.Session().Cookie; cookie != "" {
		req.Header.Set("Cookie", cookie)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return response{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return response{}, fmt.Errorf("failed to read response: %w", err)
	}
	return response{status: resp.StatusCode, header: resp.Header, body: data}, nil
}

func (c *Client) timestamp() int64 {
	return c.now().UnixMilli()
}
