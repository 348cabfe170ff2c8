package util

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/nakachan-ing/fieldsync-cli/internal/model"
)

// fakeObjectStore keeps objects in memory, keyed by bucket/key.
type fakeObjectStore struct {
	objects map[string][]byte
}

func (f *fakeObjectStore) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjectStore) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func TestUploadAndDownload(t *testing.T) {
	dir := t.TempDir()
	store := &fakeObjectStore{objects: map[string][]byte{}}
	src := filepath.Join(dir, "tasks.json")
	os.WriteFile(src, []byte(`[{"id":"1"}]`), 0644)

	if err := UploadToS3(context.Background(), store, "bucket", src, "fieldsync/dev-1/tasks.json"); err != nil {
		t.Fatalf("UploadToS3 failed: %v", err)
	}

	dst := filepath.Join(dir, "restore", "tasks.json")
	found, err := DownloadFromS3(context.Background(), store, "bucket", "fieldsync/dev-1/tasks.json", dst)
	if err != nil || !found {
		t.Fatalf("DownloadFromS3 failed: found=%v err=%v", found, err)
	}
	data, _ := os.ReadFile(dst)
	if string(data) != `[{"id":"1"}]` {
		t.Errorf("Unexpected content %s", data)
	}
}

func TestDownloadMissingObject(t *testing.T) {
	store := &fakeObjectStore{objects: map[string][]byte{}}

	found, err := DownloadFromS3(context.Background(), store, "bucket", "missing", filepath.Join(t.TempDir(), "x"))
	if err != nil {
		t.Fatalf("Expected no error for missing object, got %v", err)
	}
	if found {
		t.Error("Expected found=false")
	}
}

func TestBackupKey(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Backup.Prefix = "team-a/"

	if got := BackupKey(cfg, "dev-1", "tasks.json"); got != "team-a/dev-1/tasks.json" {
		t.Errorf("Unexpected key %s", got)
	}
}
