package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/nakachan-ing/fieldsync-cli/internal/model"
	"gopkg.in/yaml.v3"
)

const sessionFile = "session.yaml"

func SessionPath(config model.Config) string {
	return filepath.Join(config.DataDir, sessionFile)
}

// LoadSession returns the stored session, or an empty one when nobody is
// logged in.
func LoadSession(config model.Config) (model.Session, error) {
	data, err := os.ReadFile(SessionPath(config))
	if os.IsNotExist(err) {
		return model.Session{}, nil
	} else if err != nil {
		return model.Session{}, fmt.Errorf("❌ Failed to read session: %w", err)
	}

	var session model.Session
	if err := yaml.Unmarshal(data, &session); err != nil {
		return model.Session{}, fmt.Errorf("❌ Failed to parse session: %w", err)
	}
	return session, nil
}

// SaveSession persists the session readable by the owner only.
func SaveSession(config model.Config, session model.Session) error {
	if err := os.MkdirAll(config.DataDir, 0700); err != nil {
		return fmt.Errorf("❌ Failed to create data directory: %w", err)
	}
	data, err := yaml.Marshal(session)
	if err != nil {
		return fmt.Errorf("❌ Failed to convert session to YAML: %w", err)
	}
	return writeFileAtomic(SessionPath(config), data, 0600)
}

func ClearSession(config model.Config) error {
	if err := os.Remove(SessionPath(config)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("❌ Failed to remove session: %w", err)
	}
	return nil
}
