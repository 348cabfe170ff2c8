package tasksync

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/nakachan-ing/fieldsync-cli/internal/model"
)

// TriggerWebHistorySync asks the portal to refresh its web history view.
// It is advisory: failures are logged and dropped.
func (c *Client) TriggerWebHistorySync(ctx context.Context) {
	log := c.log.WithField("operation", "tasksync.Client.TriggerWebHistorySync")

	payload := map[string]any{
		"source":    c.opts.Source,
		"action":    "refresh_web_history",
		"timestamp": c.timestamp(),
	}
	c.ops.Lock()
	resp, err := c.send(ctx, http.MethodPost, "/sync/trigger-web-refresh", payload)
	c.ops.Unlock()
	if err != nil {
		log.WithError(err).Warn("web history sync failed")
		return
	}
	if !resp.ok() {
		log.WithField("status", resp.status).Warn("web history sync rejected")
		return
	}
	log.Debug("web history sync triggered")
}

// RefreshAll fetches the task list and then asks the portal to refresh its
// web history and dashboard. Only the fetch result is reported.
func (c *Client) RefreshAll(ctx context.Context) ([]model.Task, error) {
	tasks, err := c.FetchTasks(ctx)
	if err != nil {
		return nil, err
	}

	log := c.log.WithField("operation", "tasksync.Client.RefreshAll")
	payload := map[string]any{
		"source":              c.opts.Source,
		"user":                c.Profile().Username,
		"timestamp":           c.timestamp(),
		"refresh_web_history": true,
		"refresh_dashboard":   true,
	}
	c.ops.Lock()
	resp, err := c.send(ctx, http.MethodPost, "/sync/refresh-all", payload)
	c.ops.Unlock()
	switch {
	case err != nil:
		log.WithError(err).Warn("refresh-all failed")
	case !resp.ok():
		log.WithField("status", resp.status).Warn("refresh-all rejected")
	}
	return tasks, nil
}

type HealthStatus struct {
	Status     string        `json:"status"`
	Version    string        `json:"version,omitempty"`
	StatusCode int           `json:"-"`
	Latency    time.Duration `json:"-"`
}

// Ping checks that the portal API is reachable.
func (c *Client) Ping(ctx context.Context) (HealthStatus, error) {
	c.ops.Lock()
	defer c.ops.Unlock()

	start := c.now()
	resp, err := c.send(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return HealthStatus{}, newFetchError(0, "", err)
	}
	health := HealthStatus{StatusCode: resp.status, Latency: c.now().Sub(start)}
	if !resp.ok() {
		return health, newFetchError(resp.status, strings.TrimSpace(string(resp.body)), nil)
	}
	if err := json.Unmarshal(resp.body, &health); err != nil || health.Status == "" {
		health.Status = "ok"
	}
	return health, nil
}
