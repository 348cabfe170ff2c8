package cmd

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/nakachan-ing/fieldsync-cli/internal/model"
	"github.com/nakachan-ing/fieldsync-cli/internal/store"
	"github.com/nakachan-ing/fieldsync-cli/internal/util"
)

const backupTasksName = "tasks.json"

// backup carries what push, pull and status share.
type backup struct {
	config   model.Config
	cache    *store.TaskCache
	objects  util.ObjectStore
	deviceID string
	user     string
}

func (b backup) key(name string) string {
	return util.BackupKey(b.config, b.deviceID, name)
}

func (b backup) localPath(name string) string {
	return filepath.Join(b.config.DataDir, "backup", name)
}

// push uploads the cached snapshot followed by its manifest.
func (b backup) push(ctx context.Context) (util.BackupManifest, error) {
	log.Println("🔄 Preparing task snapshot for upload...")

	tasks, err := b.cache.LoadTasks()
	if err != nil {
		return util.BackupManifest{}, fmt.Errorf("❌ Failed to read cached tasks: %w", err)
	}
	syncedAt, err := b.cache.SyncedAt()
	if err != nil {
		return util.BackupManifest{}, fmt.Errorf("❌ Failed to read sync time: %w", err)
	}
	if syncedAt.IsZero() {
		return util.BackupManifest{}, fmt.Errorf("⚠️ Nothing to back up yet. Run `fieldsync sync` first")
	}

	tasksPath := b.localPath(backupTasksName)
	if err := store.SaveJson(tasksPath, tasks); err != nil {
		return util.BackupManifest{}, err
	}

	manifest := util.BackupManifest{
		DeviceID:   b.config.Device.ID,
		DeviceName: b.config.Device.Name,
		User:       b.user,
		TaskCount:  len(tasks),
		SyncedAt:   syncedAt,
		UploadedAt: time.Now().UTC(),
	}
	manifestPath := b.localPath(util.ManifestName)
	if err := util.SaveManifest(manifestPath, manifest); err != nil {
		return util.BackupManifest{}, err
	}

	if err := util.UploadToS3(ctx, b.objects, b.config.Backup.Bucket, tasksPath, b.key(backupTasksName)); err != nil {
		return util.BackupManifest{}, err
	}
	// The manifest goes last so a reader never sees it ahead of its snapshot.
	if err := util.UploadToS3(ctx, b.objects, b.config.Backup.Bucket, manifestPath, b.key(util.ManifestName)); err != nil {
		return util.BackupManifest{}, err
	}
	return manifest, nil
}

// remoteManifest downloads the manifest, reporting false when none exists.
func (b backup) remoteManifest(ctx context.Context) (util.BackupManifest, bool, error) {
	path := b.localPath("remote-" + util.ManifestName)
	found, err := util.DownloadFromS3(ctx, b.objects, b.config.Backup.Bucket, b.key(util.ManifestName), path)
	if err != nil || !found {
		return util.BackupManifest{}, false, err
	}
	manifest, err := util.LoadManifest(path)
	if err != nil {
		return util.BackupManifest{}, false, err
	}
	return manifest, true, nil
}

// pull restores the snapshot into the cache when it is newer than the local
// one, or unconditionally with force. It reports whether the cache changed.
func (b backup) pull(ctx context.Context, force bool) (bool, error) {
	log.Println("🔄 Downloading manifest from S3...")
	remote, found, err := b.remoteManifest(ctx)
	if err != nil {
		return false, err
	}
	if !found {
		return false, fmt.Errorf("⚠️ No backup found for device %s", b.deviceID)
	}

	localSyncedAt, err := b.cache.SyncedAt()
	if err != nil {
		return false, err
	}
	if !force && !util.IsRemoteNewer(localSyncedAt, remote) {
		log.Println("✅ No changes detected. Everything is up-to-date.")
		return false, nil
	}

	tasksPath := b.localPath("remote-" + backupTasksName)
	found, err = util.DownloadFromS3(ctx, b.objects, b.config.Backup.Bucket, b.key(backupTasksName), tasksPath)
	if err != nil {
		return false, err
	}
	if !found {
		return false, fmt.Errorf("❌ Backup manifest has no %s", backupTasksName)
	}

	var tasks []model.Task
	if err := store.LoadJson(tasksPath, &tasks); err != nil {
		return false, err
	}
	if err := b.cache.ReplaceTasks(tasks, remote.SyncedAt); err != nil {
		return false, fmt.Errorf("❌ Failed to restore cache: %w", err)
	}
	log.Printf("✅ Restored %d tasks synced at %s", len(tasks), remote.SyncedAt.Local().Format("2006-01-02 15:04"))
	return true, nil
}
