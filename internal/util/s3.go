package util

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/nakachan-ing/fieldsync-cli/internal/model"
)

// ObjectStore is the part of the S3 API the backup commands use.
type ObjectStore interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// BackupKey returns prefix/<device-id>/name.
func BackupKey(cfg model.Config, deviceID, name string) string {
	return path.Join(cfg.Backup.Prefix, deviceID, name)
}

// UploadToS3 uploads a local file to bucket/s3Key.
func UploadToS3(ctx context.Context, client ObjectStore, bucket, filePath string, s3Key string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("❌ Failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(s3Key),
		Body:        file,
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("❌ Failed to upload %s to S3: %w", s3Key, err)
	}

	log.Printf("✅ Uploaded %s to S3", s3Key)
	return nil
}

// DownloadFromS3 saves bucket/s3Key to localPath. It reports false, without
// an error, when the object does not exist.
func DownloadFromS3(ctx context.Context, client ObjectStore, bucket, s3Key string, localPath string) (bool, error) {
	resp, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(s3Key),
	})
	if err != nil {
		if isNotFoundErr(err) {
			log.Printf("⚠️ No %s found on S3", s3Key)
			return false, nil
		}
		return false, fmt.Errorf("❌ Failed to download %s from S3: %w", s3Key, err)
	}
	defer resp.Body.Close()

	localDir := filepath.Dir(localPath)
	if err := os.MkdirAll(localDir, os.ModePerm); err != nil {
		return false, fmt.Errorf("❌ Failed to create directory %s: %w", localDir, err)
	}

	file, err := os.Create(localPath)
	if err != nil {
		return false, fmt.Errorf("❌ Failed to create file %s: %w", localPath, err)
	}
	defer file.Close()

	if _, err := file.ReadFrom(resp.Body); err != nil {
		return false, fmt.Errorf("❌ Failed to write file %s: %w", localPath, err)
	}

	log.Printf("✅ Downloaded %s from S3", s3Key)
	return true, nil
}

func isNotFoundErr(err error) bool {
	var noKey *types.NoSuchKey
	return errors.As(err, &noKey)
}

func NewS3Client(ctx context.Context, cfg model.Config) (*s3.Client, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Backup.AWSRegion)}
	if cfg.Backup.AWSProfile != "" {
		opts = append(opts, config.WithSharedConfigProfile(cfg.Backup.AWSProfile))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config, %v", err)
	}

	return s3.NewFromConfig(awsCfg), nil
}
