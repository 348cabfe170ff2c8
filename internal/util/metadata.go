package util

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

const ManifestName = "manifest.json"

// BackupManifest describes one uploaded task snapshot.
type BackupManifest struct {
	DeviceID   string    `json:"device_id"`
	DeviceName string    `json:"device_name"`
	User       string    `json:"user"`
	TaskCount  int       `json:"task_count"`
	SyncedAt   time.Time `json:"synced_at"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// SaveManifest writes manifest.json locally
func SaveManifest(manifestPath string, manifest BackupManifest) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("❌ Failed to marshal manifest: %w", err)
	}

	if err := os.WriteFile(manifestPath, data, 0644); err != nil {
		return fmt.Errorf("❌ Failed to write manifest: %w", err)
	}
	return nil
}

// LoadManifest returns a zero manifest when the file does not exist.
func LoadManifest(manifestPath string) (BackupManifest, error) {
	var manifest BackupManifest

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		if os.IsNotExist(err) {
			return manifest, nil
		}
		return manifest, fmt.Errorf("❌ Failed to read manifest: %w", err)
	}

	if err := json.Unmarshal(data, &manifest); err != nil {
		return manifest, fmt.Errorf("❌ Failed to parse manifest: %w", err)
	}
	return manifest, nil
}

// IsRemoteNewer reports whether the remote snapshot was synced more than a
// second after the local one.
func IsRemoteNewer(local time.Time, remote BackupManifest) bool {
	if remote.SyncedAt.IsZero() {
		return false
	}
	return remote.SyncedAt.After(local.Add(1 * time.Second))
}
