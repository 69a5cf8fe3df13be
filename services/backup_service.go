package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API is the slice of the S3 client the backup service uses.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// BackupService keeps named full-store snapshots in S3. Backups are an
// operator tool: they are never consulted by the matching path.
type BackupService struct {
	Store  *Store
	Index  *IndexService
	Client S3API
	Bucket string
	Prefix string // object key prefix, e.g. "backups/"
}

// BackupInfo describes one stored snapshot.
type BackupInfo struct {
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}

func (bs *BackupService) key(name string) string {
	return bs.Prefix + name + ".json"
}

// CreateBackup exports the store and uploads it under the given name.
func (bs *BackupService) CreateBackup(ctx context.Context, name string) error {
	snapshot, err := bs.Store.Export()
	if err != nil {
		return fmt.Errorf("failed to export store: %w", err)
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	_, err = bs.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bs.Bucket),
		Key:         aws.String(bs.key(name)),
		Body:        strings.NewReader(string(data)),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload backup '%s': %w", name, err)
	}
	log.Printf("📦 Backup %s uploaded (%d bytes)", name, len(data))
	return nil
}

// ListBackups returns the stored snapshots, newest first is not guaranteed.
func (bs *BackupService) ListBackups(ctx context.Context) ([]BackupInfo, error) {
	output, err := bs.Client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(bs.Bucket),
		Prefix: aws.String(bs.Prefix),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list backups: %w", err)
	}

	backups := make([]BackupInfo, 0, len(output.Contents))
	for _, obj := range output.Contents {
		name := strings.TrimPrefix(aws.ToString(obj.Key), bs.Prefix)
		name = strings.TrimSuffix(name, ".json")
		info := BackupInfo{Name: name, Size: aws.ToInt64(obj.Size)}
		if obj.LastModified != nil {
			info.CreatedAt = *obj.LastModified
		}
		backups = append(backups, info)
	}
	return backups, nil
}

// RestoreBackup replaces the store contents with a named snapshot and marks
// every collection dirty so the DynamoDB mirror converges to the restored
// state.
func (bs *BackupService) RestoreBackup(ctx context.Context, name string) error {
	output, err := bs.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bs.Bucket),
		Key:    aws.String(bs.key(name)),
	})
	if err != nil {
		return fmt.Errorf("%w: %s", ErrUnknownBackup, name)
	}
	defer output.Body.Close()

	data, err := io.ReadAll(output.Body)
	if err != nil {
		return fmt.Errorf("failed to read backup '%s': %w", name, err)
	}
	var snapshot map[string]string
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return fmt.Errorf("failed to unmarshal backup '%s': %w", name, err)
	}
	if err := bs.Store.Import(snapshot); err != nil {
		return err
	}
	bs.Index.Rebuild()
	log.Printf("📦 Restored store from backup %s", name)
	return nil
}
