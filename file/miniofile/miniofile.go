// Copyright 2026 The Unifile Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package miniofile implements the file.Implementation interface for
// S3-compatible object stores (MinIO, Cloudflare R2, Wasabi, and arbitrary
// endpoints speaking the S3 wire protocol) using the MinIO Go client.
//
// Unlike package s3file, which talks to AWS proper and deals with
// region resolution and client failover, this package speaks to a single
// fixed endpoint.
package miniofile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/unifile/unifile/errors"
	"github.com/unifile/unifile/file"
)

// Config describes an S3-compatible endpoint.
type Config struct {
	// Endpoint is the host[:port] of the store, without a URL scheme.
	Endpoint string
	// AccessKey and SecretKey authenticate requests. Empty values produce an
	// anonymous client.
	AccessKey string
	SecretKey string
	// Region is passed to the client verbatim. Most S3-compatible stores
	// accept an empty region.
	Region string
	// Insecure disables TLS. Intended for local MinIO deployments.
	Insecure bool
}

// NewImplementation creates an Implementation serving paths of form
// "scheme://bucket/key" against the configured endpoint.
func NewImplementation(scheme string, cfg Config) (file.Implementation, error) {
	var creds *credentials.Credentials
	if cfg.AccessKey != "" {
		creds = credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, "")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  creds,
		Secure: !cfg.Insecure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errors.E(err, fmt.Sprintf("miniofile.new %s", cfg.Endpoint))
	}
	return &minioImpl{scheme: scheme, client: client}, nil
}

// NewMinio creates an Implementation for scheme "minio".
func NewMinio(cfg Config) (file.Implementation, error) {
	return NewImplementation("minio", cfg)
}

// NewR2 creates an Implementation for Cloudflare R2 under scheme "r2".
func NewR2(accountID, accessKey, secretKey string) (file.Implementation, error) {
	return NewImplementation("r2", Config{
		Endpoint:  R2Endpoint(accountID),
		AccessKey: accessKey,
		SecretKey: secretKey,
		Region:    "auto",
	})
}

// NewWasabi creates an Implementation for Wasabi under scheme "wasabi".
func NewWasabi(region, accessKey, secretKey string) (file.Implementation, error) {
	return NewImplementation("wasabi", Config{
		Endpoint:  WasabiEndpoint(region),
		AccessKey: accessKey,
		SecretKey: secretKey,
		Region:    region,
	})
}

// R2Endpoint returns the R2 S3-compatibility endpoint for an account.
func R2Endpoint(accountID string) string {
	return accountID + ".r2.cloudflarestorage.com"
}

// WasabiEndpoint returns the Wasabi endpoint for a region.
func WasabiEndpoint(region string) string {
	return "s3." + region + ".wasabisys.com"
}

type minioImpl struct {
	scheme string
	client *minio.Client
}

// String implements file.Implementation.
func (impl *minioImpl) String() string { return impl.scheme }

func (impl *minioImpl) parse(path string) (bucket, key string, err error) {
	scheme, suffix, err := file.ParsePath(path)
	if err != nil {
		return "", "", err
	}
	if scheme != "" && scheme != impl.scheme {
		return "", "", errors.E(errors.Invalid, fmt.Sprintf("%s: not a %s:// path", path, impl.scheme))
	}
	parts := strings.SplitN(suffix, "/", 2)
	if len(parts) == 1 {
		return parts[0], "", nil
	}
	return parts[0], parts[1], nil
}

// Open implements file.Implementation.
func (impl *minioImpl) Open(ctx context.Context, path string, opts ...file.Opts) (file.File, error) {
	bucket, key, err := impl.parse(path)
	if err != nil {
		return nil, err
	}
	info, err := impl.statObject(ctx, path, bucket, key)
	if err != nil {
		return nil, err
	}
	return &minioFile{
		impl:   impl,
		name:   path,
		bucket: bucket,
		key:    key,
		mode:   readonly,
		info:   info,
	}, nil
}

// Create implements file.Implementation. Writes are streamed to the store
// through a pipe; the object becomes visible when Close commits the upload.
func (impl *minioImpl) Create(ctx context.Context, path string, opts ...file.Opts) (file.File, error) {
	bucket, key, err := impl.parse(path)
	if err != nil {
		return nil, err
	}
	f := &minioFile{
		impl:   impl,
		name:   path,
		bucket: bucket,
		key:    key,
		mode:   writeonly,
	}
	f.startUpload(ctx)
	return f, nil
}

// Stat implements file.Implementation.
func (impl *minioImpl) Stat(ctx context.Context, path string, opts ...file.Opts) (file.Info, error) {
	bucket, key, err := impl.parse(path)
	if err != nil {
		return nil, err
	}
	return impl.statObject(ctx, path, bucket, key)
}

func (impl *minioImpl) statObject(ctx context.Context, path, bucket, key string) (*minioInfo, error) {
	if key == "" {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("stat %v: path does not name an object", path))
	}
	attrs, err := impl.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return nil, translateError(err, "miniofile.stat", path)
	}
	if attrs.Size == 0 && strings.HasSuffix(key, "/") {
		// Directory marker.
		return nil, errors.E(errors.NotExist, fmt.Sprintf("stat %v: directory marker", path))
	}
	return &minioInfo{
		name:    file.Base(path),
		size:    attrs.Size,
		modTime: attrs.LastModified,
		etag:    attrs.ETag,
	}, nil
}

// Remove implements file.Implementation.
func (impl *minioImpl) Remove(ctx context.Context, path string) error {
	bucket, key, err := impl.parse(path)
	if err != nil {
		return err
	}
	if err := impl.client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return translateError(err, "miniofile.remove", path)
	}
	return nil
}

// Presign implements file.Implementation. Only GET and PUT are supported by
// the underlying client.
func (impl *minioImpl) Presign(ctx context.Context, path, method string, expiry time.Duration) (string, error) {
	bucket, key, err := impl.parse(path)
	if err != nil {
		return "", err
	}
	switch method {
	case "GET":
		u, err := impl.client.PresignedGetObject(ctx, bucket, key, expiry, nil)
		if err != nil {
			return "", translateError(err, "miniofile.presign", path)
		}
		return u.String(), nil
	case "PUT":
		u, err := impl.client.PresignedPutObject(ctx, bucket, key, expiry)
		if err != nil {
			return "", translateError(err, "miniofile.presign", path)
		}
		return u.String(), nil
	default:
		return "", errors.E(errors.NotSupported, fmt.Sprintf("presign %v: unsupported method %s", path, method))
	}
}

// List implements file.Implementation.
func (impl *minioImpl) List(ctx context.Context, dir string, recurse bool) file.Lister {
	bucket, key, err := impl.parse(dir)
	if err != nil {
		return &minioLister{err: err}
	}
	ch := impl.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{
		Prefix:    key,
		Recursive: recurse,
	})
	return &minioLister{
		scheme: impl.scheme,
		bucket: bucket,
		prefix: key,
		ch:     ch,
	}
}

// translateError maps client errors into the errors.Kind taxonomy.
func translateError(err error, args ...interface{}) error {
	resp := minio.ToErrorResponse(err)
	kind := errors.Other
	switch resp.Code {
	case "NoSuchKey", "NoSuchBucket", "NotFound":
		kind = errors.NotExist
	case "AccessDenied":
		kind = errors.NotAllowed
	case "PreconditionFailed":
		kind = errors.Precondition
	case "BucketAlreadyExists", "BucketAlreadyOwnedByYou":
		kind = errors.Exists
	case "SlowDown", "InternalError":
		kind = errors.Unavailable
	}
	return errors.E(append([]interface{}{err, kind}, args...)...)
}
