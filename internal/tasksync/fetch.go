package tasksync

import (
	"context"
	"net/http"
	"strings"

	"github.com/nakachan-ing/fieldsync-cli/internal/model"
)

// FetchTasks downloads the engineer's tasks and replaces the task list with
// them in server order. On failure the previous list is kept. Concurrent
// callers share one request.
func (c *Client) FetchTasks(ctx context.Context) ([]model.Task, error) {
	v, err, shared := c.fetches.Do("my-tasks", func() (any, error) {
		c.ops.Lock()
		defer c.ops.Unlock()
		return c.fetchLocked(ctx)
	})
	if shared {
		c.log.WithField("operation", "tasksync.Client.FetchTasks").Debug("joined in-flight fetch")
	}
	if err != nil {
		return nil, err
	}
	return cloneTasks(v.([]model.Task)), nil
}

func (c *Client) fetchLocked(ctx context.Context) ([]model.Task, error) {
	const op = "tasksync.Client.FetchTasks"
	log := c.log.WithField("operation", op)

	c.mu.Lock()
	gen := c.gen
	c.mu.Unlock()

	resp, err := c.send(ctx, http.MethodGet, "/tasks/my-tasks", nil)
	if err != nil {
		log.WithError(err).Error("fetch request failed")
		return nil, newFetchError(0, "", err)
	}
	if !resp.ok() {
		log.WithField("status", resp.status).Warn("fetch rejected")
		return nil, newFetchError(resp.status, strings.TrimSpace(string(resp.body)), nil)
	}

	tasks, err := DecodeTasks(resp.body)
	if err != nil {
		log.WithError(err).Error("failed to decode tasks")
		return nil, newFetchError(resp.status, "", err)
	}

	if !c.replaceTasks(gen, tasks) {
		log.Debug("session changed during fetch, result discarded")
		return c.Tasks(), nil
	}
	log.WithField("count", len(tasks)).Info("task list replaced")
	return tasks, nil
}
