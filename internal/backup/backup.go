// Package backup exports a full snapshot of the remote collections as a single
// JSON document, either into a local directory or to an S3 bucket.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"flooring-cli/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const (
	EnvS3Region    = "FLOORING_S3_REGION"
	EnvS3Endpoint  = "FLOORING_S3_ENDPOINT"
	EnvS3PathStyle = "FLOORING_S3_PATH_STYLE"

	defaultRegion = "us-east-1"
)

// Document is the exported file.
type Document struct {
	ExportedAt time.Time      `json:"exportedAt"`
	ExportedBy string         `json:"exportedBy,omitempty"`
	Snapshot   model.Snapshot `json:"snapshot"`
}

// Target is where a document goes: Dir for a local export, Bucket/Prefix for S3.
type Target struct {
	Dir    string
	Bucket string
	Prefix string
}

func (t Target) IsS3() bool { return t.Bucket != "" }

// ParseTarget accepts "s3://bucket/prefix" or a local directory path.
func ParseTarget(s string) (Target, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Target{}, errors.New("destination required")
	}
	if !strings.HasPrefix(strings.ToLower(s), "s3://") {
		return Target{Dir: s}, nil
	}
	u, err := url.Parse(s)
	if err != nil {
		return Target{}, fmt.Errorf("invalid destination %q: %w", s, err)
	}
	if u.Host == "" {
		return Target{}, fmt.Errorf("invalid destination %q: bucket required", s)
	}
	return Target{Bucket: u.Host, Prefix: strings.Trim(u.Path, "/")}, nil
}

// S3Options configures the S3 client. Empty keys fall back to the default
// AWS credential chain.
type S3Options struct {
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	PathStyle       bool
}

// S3OptionsFromEnv reads FLOORING_S3_* plus the standard AWS key variables.
func S3OptionsFromEnv() S3Options {
	return S3Options{
		Region:          os.Getenv(EnvS3Region),
		Endpoint:        os.Getenv(EnvS3Endpoint),
		AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
		PathStyle:       strings.EqualFold(os.Getenv(EnvS3PathStyle), "true"),
	}
}

type Exporter struct {
	S3     S3Options
	Logger *slog.Logger
	Now    func() time.Time
}

// FileName is the object or file name for an export taken at t.
func FileName(t time.Time) string {
	return "flooring-snapshot-" + t.UTC().Format("20060102T150405Z") + ".json"
}

// Export writes snap to dest and returns the location written.
func (e Exporter) Export(ctx context.Context, snap model.Snapshot, user, dest string) (string, error) {
	target, err := ParseTarget(dest)
	if err != nil {
		return "", err
	}
	now := time.Now()
	if e.Now != nil {
		now = e.Now()
	}
	b, err := json.MarshalIndent(Document{ExportedAt: now.UTC(), ExportedBy: user, Snapshot: snap}, "", "  ")
	if err != nil {
		return "", err
	}
	b = append(b, '\n')

	name := FileName(now)
	var loc string
	if target.IsS3() {
		loc, err = e.putS3(ctx, target, name, b)
	} else {
		loc, err = writeLocal(target.Dir, name, b)
	}
	if err != nil {
		return "", err
	}
	e.logger().Info("snapshot exported", "location", loc, "bytes", len(b), "reports", len(snap.Reports), "ptps", len(snap.PTPs))
	return loc, nil
}

func (e Exporter) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.New(slog.DiscardHandler)
}

func writeLocal(dir, name string, b []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	p := filepath.Join(dir, name)
	tmp, err := os.CreateTemp(dir, ".snapshot-*")
	if err != nil {
		return "", err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmpName, p); err != nil {
		return "", err
	}
	return p, nil
}

func (e Exporter) putS3(ctx context.Context, t Target, name string, b []byte) (string, error) {
	client, err := newS3Client(ctx, e.S3)
	if err != nil {
		return "", fmt.Errorf("failed to build AWS config: %w", err)
	}
	key := name
	if t.Prefix != "" {
		key = path.Join(t.Prefix, name)
	}
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(t.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(b),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to put object: %w", err)
	}
	return "s3://" + t.Bucket + "/" + key, nil
}

func newS3Client(ctx context.Context, o S3Options) (*s3.Client, error) {
	region := o.Region
	if region == "" {
		region = defaultRegion
	}
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if o.AccessKeyID != "" && o.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(o.AccessKeyID, o.SecretAccessKey, o.SessionToken),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(awsCfg, func(so *s3.Options) {
		so.UsePathStyle = o.PathStyle
		if o.Endpoint != "" {
			so.BaseEndpoint = aws.String(o.Endpoint)
		}
	}), nil
}
