package cmd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/nakachan-ing/fieldsync-cli/internal/model"
	"github.com/nakachan-ing/fieldsync-cli/internal/store"
	"github.com/nakachan-ing/fieldsync-cli/internal/tasksync"
	"github.com/nakachan-ing/fieldsync-cli/internal/util"
	"github.com/sirupsen/logrus"
)

const lockFileName = "fieldsync.lock"

// app bundles what a command needs: config, logger, the local cache and a
// client carrying the persisted session.
type app struct {
	config    model.Config
	log       *logrus.Entry
	logCloser io.Closer
	cache     *store.TaskCache
	client    *tasksync.Client
}

func loadConfig() (*model.Config, error) {
	if cfgFile != "" {
		return store.LoadConfigFile(cfgFile)
	}
	return store.LoadConfig()
}

func newApp() (*app, error) {
	config, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("❌ Error loading config (run `fieldsync init` first): %w", err)
	}

	log, closer, err := util.SetupLogger(config.Log.Env, config.Log.File)
	if err != nil {
		return nil, fmt.Errorf("❌ Failed to open log file: %w", err)
	}

	cache, err := store.OpenTaskCache(store.CachePath(*config))
	if err != nil {
		closer.Close()
		return nil, err
	}

	a := &app{config: *config, log: log, logCloser: closer, cache: cache}

	httpClient := &http.Client{}
	if config.API.TimeoutSeconds > 0 {
		httpClient.Timeout = time.Duration(config.API.TimeoutSeconds) * time.Second
	}

	a.client = tasksync.New(tasksync.Options{
		BaseURL:     config.API.BaseURL,
		UserAgent:   config.API.UserAgent,
		Source:      config.API.Source,
		Device:      a.deviceLabel(),
		UpdateRoute: config.API.UpdateRoute,
		HTTPClient:  httpClient,
	},
		tasksync.WithLogger(log),
		tasksync.WithTasksListener(a.cacheSnapshot),
	)

	session, err := store.LoadSession(*config)
	if err != nil {
		log.WithError(err).Warn("ignoring unreadable session file")
	} else if !session.Empty() {
		a.client.RestoreSession(session)
	}

	return a, nil
}

func (a *app) close() {
	if err := a.cache.Close(); err != nil {
		a.log.WithError(err).Warn("failed to close cache")
	}
	a.logCloser.Close()
}

func (a *app) deviceLabel() string {
	if a.config.Device.ID == "" {
		return a.config.Device.Name
	}
	return a.config.Device.Name + "/" + a.config.Device.ID
}

// cacheSnapshot mirrors every fetched task list into the offline cache.
func (a *app) cacheSnapshot(tasks []model.Task) {
	if err := a.cache.ReplaceTasks(tasks, time.Now()); err != nil {
		a.log.WithField("operation", "cmd.cacheSnapshot").WithError(err).Warn("failed to cache tasks")
	}
}

// lock serialises portal access across fieldsync processes.
func (a *app) lock(command string) (func(), error) {
	release, err := util.AcquireLock(filepath.Join(a.config.DataDir, lockFileName), command)
	if err != nil {
		return nil, fmt.Errorf("❌ %w", err)
	}
	return release, nil
}

func (a *app) requireSession() error {
	if a.client.Session().Empty() {
		return fmt.Errorf("❌ Not logged in. Run `fieldsync login` first")
	}
	return nil
}

// recordUpdate journals an update attempt; journal failures are only logged.
func (a *app) recordUpdate(taskID, field, value string, updateErr error) {
	entry := model.TaskUpdate{
		TaskID:    taskID,
		Field:     field,
		Value:     value,
		Succeeded: updateErr == nil,
		CreatedAt: time.Now().Format("2006-01-02 15:04:05"),
	}
	if updateErr != nil {
		entry.Error = updateErr.Error()
	}
	if _, err := a.cache.RecordUpdate(entry); err != nil {
		a.log.WithField("operation", "cmd.recordUpdate").WithError(err).Warn("failed to journal update")
	}
}

// loadTasks fetches from the portal, or reads the cache when cached is set.
func (a *app) loadTasks(ctx context.Context, cached bool) ([]model.Task, error) {
	if cached {
		return a.cache.LoadTasks()
	}
	if err := a.requireSession(); err != nil {
		return nil, err
	}
	return a.client.FetchTasks(ctx)
}
