package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"mysteryforge/internal/progress"
	"mysteryforge/internal/types"
)

// S3Config configures the object-storage archive.
type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// S3Store archives run artifacts and progress events to S3-compatible
// object storage. Keys are time-ordered so the lexicographically last
// object under a kind prefix is the latest append.
type S3Store struct {
	client     *minio.Client
	bucketName string
	region     string
	initOnce   sync.Once
	initErr    error
}

func NewS3Store(cfg S3Config) (*S3Store, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required")
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("s3 access key and secret key are required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}
	return &S3Store{client: client, bucketName: bucket, region: region}, nil
}

func (s *S3Store) ensureBucket(ctx context.Context) error {
	s.initOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucketName)
		if err != nil {
			s.initErr = err
			return
		}
		if exists {
			return
		}
		s.initErr = s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{Region: s.region})
	})
	return s.initErr
}

func (s *S3Store) put(ctx context.Context, key string, content []byte) error {
	if err := s.ensureBucket(ctx); err != nil {
		return fmt.Errorf("ensure bucket: %w", err)
	}
	_, err := s.client.PutObject(ctx, s.bucketName, key, bytes.NewReader(content), int64(len(content)),
		minio.PutObjectOptions{ContentType: "application/json"})
	return err
}

func artifactPrefix(runID string, kind types.Kind) string {
	return strings.TrimSpace(runID) + "/artifacts/" + string(kind) + "/"
}

func (s *S3Store) AppendArtifact(ctx context.Context, runID string, kind types.Kind, artifact any) error {
	if strings.TrimSpace(runID) == "" {
		return fmt.Errorf("run_id is required")
	}
	raw, err := json.Marshal(artifact)
	if err != nil {
		return fmt.Errorf("store: marshal %s artifact: %w", kind, err)
	}
	key := artifactPrefix(runID, kind) + time.Now().UTC().Format("20060102T150405.000000000Z") + ".json"
	return s.put(ctx, key, raw)
}

func (s *S3Store) AppendProgress(ctx context.Context, runID string, ev progress.Event) error {
	if strings.TrimSpace(runID) == "" {
		return fmt.Errorf("run_id is required")
	}
	raw, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("store: marshal progress event: %w", err)
	}
	key := strings.TrimSpace(runID) + "/progress/" + ev.Timestamp.UTC().Format("20060102T150405.000000000Z") + ".json"
	return s.put(ctx, key, raw)
}

func (s *S3Store) LatestArtifact(ctx context.Context, runID string, kind types.Kind) (json.RawMessage, bool, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return nil, false, fmt.Errorf("ensure bucket: %w", err)
	}
	prefix := artifactPrefix(runID, kind)
	keys := make([]string, 0, 4)
	for obj := range s.client.ListObjects(ctx, s.bucketName, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, false, obj.Err
		}
		if obj.Key != "" {
			keys = append(keys, obj.Key)
		}
	}
	if len(keys) == 0 {
		return nil, false, nil
	}
	sort.Strings(keys)

	obj, err := s.client.GetObject(ctx, s.bucketName, keys[len(keys)-1], minio.GetObjectOptions{})
	if err != nil {
		return nil, false, err
	}
	defer obj.Close()
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}
