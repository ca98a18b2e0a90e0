// Package archive keeps a copy of every delivered report file in an S3 compatible bucket
package archive

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"reportrelay/internal/platform/config"
	perr "reportrelay/internal/platform/errors"
	"reportrelay/internal/services/reports/domain"
)

// Options configures the bucket archive
type Options struct {
	// Endpoint is host:port or a full url; empty disables archiving
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Prefix    string
	UseSSL    bool
}

// FromConfig reads options using the RELAY_ARCHIVE_ prefix
func FromConfig(cfg config.Conf) Options {
	a := cfg.Prefix("RELAY_ARCHIVE_")
	return Options{
		Endpoint:  a.MayString("ENDPOINT", ""),
		AccessKey: a.MayString("ACCESS_KEY", ""),
		SecretKey: a.MayString("SECRET_KEY", ""),
		Bucket:    a.MayString("BUCKET", "reportrelay"),
		Region:    a.MayString("REGION", ""),
		Prefix:    a.MayString("PREFIX", "delivered"),
		UseSSL:    a.MayBool("USE_SSL", false),
	}
}

// Enabled reports whether an endpoint is configured
func (o Options) Enabled() bool { return strings.TrimSpace(o.Endpoint) != "" }

// objectStore is the part of *minio.Client the archive uses
type objectStore interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// Bucket implements domain.Archive
type Bucket struct {
	store  objectStore
	bucket string
	region string
	prefix string

	mu    sync.Mutex
	ready bool
}

var _ domain.Archive = (*Bucket)(nil)

// New dials nothing; the bucket is checked on first Put
func New(o Options) (*Bucket, error) {
	if !o.Enabled() {
		return nil, perr.InvalidArgf("archive endpoint is required")
	}
	if o.AccessKey == "" || o.SecretKey == "" {
		return nil, perr.Newf(perr.ErrorCodeUnauthorized, "archive credentials are required")
	}

	endpoint, secure := o.Endpoint, o.UseSSL
	if u, err := url.Parse(o.Endpoint); err == nil && u.Host != "" {
		endpoint = u.Host
		secure = secure || u.Scheme == "https"
	}
	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(o.AccessKey, o.SecretKey, ""),
		Secure: secure,
		Region: o.Region,
	})
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "archive client")
	}
	return newBucket(cli, o), nil
}

func newBucket(store objectStore, o Options) *Bucket {
	return &Bucket{
		store:  store,
		bucket: o.Bucket,
		region: o.Region,
		prefix: strings.Trim(o.Prefix, "/"),
	}
}

// Put stores content under key and returns its location
func (b *Bucket) Put(ctx context.Context, key, content string) (string, error) {
	key = strings.TrimLeft(key, "/")
	if key == "" {
		return "", perr.InvalidArgf("archive key is required")
	}
	if b.prefix != "" {
		key = path.Join(b.prefix, key)
	}
	if err := b.ensure(ctx); err != nil {
		return "", err
	}

	_, err := b.store.PutObject(ctx, b.bucket, key, strings.NewReader(content), int64(len(content)),
		minio.PutObjectOptions{ContentType: "text/tab-separated-values; charset=utf-8"})
	if err != nil {
		return "", classify(err, "put "+key)
	}
	return fmt.Sprintf("minio://%s/%s", b.bucket, key), nil
}

// ensure creates the bucket once; a failed check is retried on the next Put
func (b *Bucket) ensure(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ready {
		return nil
	}
	ok, err := b.store.BucketExists(ctx, b.bucket)
	if err != nil {
		return classify(err, "bucket check")
	}
	if !ok {
		if err := b.store.MakeBucket(ctx, b.bucket, minio.MakeBucketOptions{Region: b.region}); err != nil {
			if code := minio.ToErrorResponse(err).Code; code != "BucketAlreadyOwnedByYou" && code != "BucketAlreadyExists" {
				return classify(err, "make bucket")
			}
		}
	}
	b.ready = true
	return nil
}

func classify(err error, what string) error {
	switch minio.ToErrorResponse(err).Code {
	case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
		return perr.Wrapf(err, perr.ErrorCodeUnauthorized, "archive %s", what)
	case "NoSuchBucket":
		return perr.Wrapf(err, perr.ErrorCodeNotFound, "archive %s", what)
	}
	return perr.Wrapf(err, perr.ErrorCodeUnavailable, "archive %s", what)
}
