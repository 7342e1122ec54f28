package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"manimate/manimate/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectPutter is the part of the MinIO client the archive writes through.
type ObjectPutter interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64,
		opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// ScriptArchive stores generated Manim scripts under sessions/<sessionID>/.
type ScriptArchive struct {
	client ObjectPutter
	bucket string
	now    func() time.Time
}

func NewMinIOClient(ctx context.Context, cfg config.Config) (*minio.Client, error) {
	client, err := minio.New(cfg.MinIOEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIOAccessKey, cfg.MinIOSecretKey, ""),
		Secure: cfg.MinIOUseSSL,
	})
	if err != nil {
		return nil, err
	}

	exists, err := client.BucketExists(ctx, cfg.MinIOBucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.MinIOBucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinIOBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.MinIOBucket, err)
		}
	}
	return client, nil
}

func NewScriptArchive(client ObjectPutter, bucket string) *ScriptArchive {
	return &ScriptArchive{client: client, bucket: bucket, now: time.Now}
}

// ObjectKey is sessions/<sessionID>/<unix-nanos>-<chatname>.py
func (a *ScriptArchive) ObjectKey(sessionID, chatName string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, chatName)
	if name == "" {
		name = "script"
	}
	return path.Join("sessions", sessionID, fmt.Sprintf("%d-%s.py", a.now().UnixNano(), name))
}

func (a *ScriptArchive) PutScript(ctx context.Context, sessionID, chatName, code string) (string, error) {
	key := a.ObjectKey(sessionID, chatName)
	_, err := a.client.PutObject(ctx, a.bucket, key, strings.NewReader(code), int64(len(code)),
		minio.PutObjectOptions{ContentType: "text/x-python"})
	if err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	return key, nil
}
