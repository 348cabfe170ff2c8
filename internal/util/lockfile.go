package util

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nakachan-ing/fieldsync-cli/internal/model"
	"gopkg.in/yaml.v3"
)

// ErrLocked is returned by AcquireLock while another process holds the lock.
var ErrLocked = errors.New("lock is held by another process")

// AcquireLock creates lockFileName exclusively and returns a func that
// removes it again.
func AcquireLock(lockFileName, command string) (func(), error) {
	t := time.Now()
	id := fmt.Sprintf("%d%02d%02d%02d%02d%02d",
		t.Year(), t.Month(), t.Day(),
		t.Hour(), t.Minute(), t.Second())
	timeStamp := t.UTC().Format(time.RFC3339)

	user := os.Getenv("USER")
	if user == "" {
		user = os.Getenv("USERNAME")
	}
	if user == "" {
		user = "unknown"
	}

	lockFile := model.LockFile{ID: id, User: user, Pid: os.Getpid(), Command: command, TimeStamp: timeStamp}
	info, err := yaml.Marshal(&lockFile)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(lockFileName), 0755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	f, err := os.OpenFile(lockFileName, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if errors.Is(err, os.ErrExist) {
		holder, readErr := ReadLock(lockFileName)
		if readErr != nil {
			return nil, fmt.Errorf("%w (%s)", ErrLocked, lockFileName)
		}
		return nil, fmt.Errorf("%w: %s (pid %d) running %q since %s", ErrLocked, holder.User, holder.Pid, holder.Command, holder.TimeStamp)
	} else if err != nil {
		return nil, fmt.Errorf("failed to create lock file: %w", err)
	}

	if _, err := f.Write(info); err != nil {
		f.Close()
		os.Remove(lockFileName)
		return nil, fmt.Errorf("failed to write lock file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(lockFileName)
		return nil, fmt.Errorf("failed to write lock file: %w", err)
	}

	return func() { os.Remove(lockFileName) }, nil
}

func ReadLock(lockFileName string) (model.LockFile, error) {
	data, err := os.ReadFile(lockFileName)
	if err != nil {
		return model.LockFile{}, err
	}
	var lockFile model.LockFile
	if err := yaml.Unmarshal(data, &lockFile); err != nil {
		return model.LockFile{}, fmt.Errorf("failed to parse lock file: %w", err)
	}
	return lockFile, nil
}
