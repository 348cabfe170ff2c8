package cmd

import (
	"context"
	"io"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/nakachan-ing/fieldsync-cli/internal/fakeapi"
	"github.com/nakachan-ing/fieldsync-cli/internal/model"
	"github.com/nakachan-ing/fieldsync-cli/internal/store"
	"github.com/sirupsen/logrus"
)

// newTestPortal writes a config pointing at a seeded fake portal and returns
// its path together with the config.
func newTestPortal(t *testing.T) (string, model.Config) {
	t.Helper()
	l := logrus.New()
	l.SetOutput(io.Discard)
	portal := fakeapi.New(logrus.NewEntry(l))
	if err := portal.Seed(); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	ts := httptest.NewServer(portal.Handler())
	t.Cleanup(ts.Close)

	dir := t.TempDir()
	config := model.DefaultConfig()
	config.DataDir = filepath.Join(dir, "data")
	config.API.BaseURL = ts.URL + "/api"
	config.Log.File = filepath.Join(dir, "fieldsync.log")

	path := filepath.Join(dir, "config.yaml")
	if err := store.SaveConfig(config, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	return path, config
}

func TestLoginCommandSavesSession(t *testing.T) {
	path, config := newTestPortal(t)
	t.Cleanup(func() { cfgFile, loginPassword = "", "" })

	rootCmd.SetArgs([]string{"--config", path, "login", fakeapi.SeedUsername, "-p", fakeapi.SeedPassword})
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	session, err := store.LoadSession(config)
	if err != nil {
		t.Fatalf("LoadSession failed: %v", err)
	}
	if session.Cookie == "" || session.Profile.Username != fakeapi.SeedUsername {
		t.Errorf("Expected saved session for %s, got %+v", fakeapi.SeedUsername, session)
	}

	cache, err := store.OpenTaskCache(store.CachePath(config))
	if err != nil {
		t.Fatalf("OpenTaskCache failed: %v", err)
	}
	defer cache.Close()
	tasks, err := cache.LoadTasks()
	if err != nil {
		t.Fatalf("LoadTasks failed: %v", err)
	}
	if len(tasks) != 5 {
		t.Errorf("Expected 5 cached tasks after login, got %d", len(tasks))
	}
}

func TestLoginCommandRejectsWrongPassword(t *testing.T) {
	path, config := newTestPortal(t)
	t.Cleanup(func() { cfgFile, loginPassword = "", "" })

	rootCmd.SetArgs([]string{"--config", path, "login", fakeapi.SeedUsername, "-p", "wrong"})
	err := rootCmd.ExecuteContext(context.Background())
	if err == nil {
		t.Fatal("Expected login error, got nil")
	}
	if got := explain(err); got != "❌ Login failed: invalid username or password" {
		t.Errorf("Unexpected message %q", got)
	}

	session, _ := store.LoadSession(config)
	if !session.Empty() {
		t.Errorf("Expected no saved session, got %+v", session)
	}
}
