// Copyright 2026 The Unifile Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package gsfile implements the file.Implementation interface for Google
// Cloud Storage. Paths are of form "gs://bucket/object".
//
// Readers are pinned to the generation observed at Open, so a concurrent
// overwrite of the object surfaces as an errors.Precondition failure rather
// than silently mixing bytes from two versions.
package gsfile

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/unifile/unifile/errors"
	"github.com/unifile/unifile/file"
	"google.golang.org/api/googleapi"
)

// Scheme is the URL scheme served by this package.
const Scheme = "gs"

// NewImplementation creates an Implementation on top of the given client.
func NewImplementation(client *storage.Client) file.Implementation {
	return &gsImpl{client: client}
}

type gsImpl struct {
	client *storage.Client
}

// String implements file.Implementation.
func (impl *gsImpl) String() string { return Scheme }

func parse(path string) (bucket, key string, err error) {
	scheme, suffix, err := file.ParsePath(path)
	if err != nil {
		return "", "", err
	}
	if scheme != "" && scheme != Scheme {
		return "", "", errors.E(errors.Invalid, fmt.Sprintf("%s: not a %s:// path", path, Scheme))
	}
	parts := strings.SplitN(suffix, "/", 2)
	if len(parts) == 1 {
		return parts[0], "", nil
	}
	return parts[0], parts[1], nil
}

// Open implements file.Implementation.
func (impl *gsImpl) Open(ctx context.Context, path string, opts ...file.Opts) (file.File, error) {
	bucket, key, err := parse(path)
	if err != nil {
		return nil, err
	}
	attrs, err := impl.client.Bucket(bucket).Object(key).Attrs(ctx)
	if err != nil {
		return nil, translateError(err, "gsfile.open", path)
	}
	return &gsFile{
		impl:   impl,
		name:   path,
		bucket: bucket,
		key:    key,
		mode:   readonly,
		info:   newInfo(path, attrs),
		gen:    attrs.Generation,
	}, nil
}

// Create implements file.Implementation. The object becomes visible when
// Close commits the resumable upload.
func (impl *gsImpl) Create(ctx context.Context, path string, opts ...file.Opts) (file.File, error) {
	bucket, key, err := parse(path)
	if err != nil {
		return nil, err
	}
	f := &gsFile{
		impl:   impl,
		name:   path,
		bucket: bucket,
		key:    key,
		mode:   writeonly,
	}
	// The writer runs on its own cancelable context so that Discard can
	// abort the upload.
	wctx, cancel := context.WithCancel(ctx)
	f.cancelUpload = cancel
	f.w = impl.client.Bucket(bucket).Object(key).NewWriter(wctx)
	return f, nil
}

// Stat implements file.Implementation.
func (impl *gsImpl) Stat(ctx context.Context, path string, opts ...file.Opts) (file.Info, error) {
	bucket, key, err := parse(path)
	if err != nil {
		return nil, err
	}
	if key == "" {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("stat %v: path does not name an object", path))
	}
	attrs, err := impl.client.Bucket(bucket).Object(key).Attrs(ctx)
	if err != nil {
		return nil, translateError(err, "gsfile.stat", path)
	}
	return newInfo(path, attrs), nil
}

// Remove implements file.Implementation.
func (impl *gsImpl) Remove(ctx context.Context, path string) error {
	bucket, key, err := parse(path)
	if err != nil {
		return err
	}
	if err := impl.client.Bucket(bucket).Object(key).Delete(ctx); err != nil {
		return translateError(err, "gsfile.remove", path)
	}
	return nil
}

// Presign implements file.Implementation. It requires the client to carry
// signing credentials (a service account key).
func (impl *gsImpl) Presign(ctx context.Context, path, method string, expiry time.Duration) (string, error) {
	bucket, key, err := parse(path)
	if err != nil {
		return "", err
	}
	switch method {
	case http.MethodGet, http.MethodPut, http.MethodDelete:
	default:
		return "", errors.E(errors.NotSupported, fmt.Sprintf("presign %v: unsupported method %s", path, method))
	}
	url, err := impl.client.Bucket(bucket).SignedURL(key, &storage.SignedURLOptions{
		Method:  method,
		Expires: time.Now().Add(expiry),
	})
	if err != nil {
		return "", translateError(err, "gsfile.presign", path)
	}
	return url, nil
}

// List implements file.Implementation.
func (impl *gsImpl) List(ctx context.Context, dir string, recurse bool) file.Lister {
	bucket, key, err := parse(dir)
	if err != nil {
		return &gsLister{err: err}
	}
	query := &storage.Query{Prefix: key}
	if !recurse {
		query.Delimiter = "/"
	}
	return &gsLister{
		bucket: bucket,
		prefix: key,
		it:     impl.client.Bucket(bucket).Objects(ctx, query),
	}
}

func newInfo(path string, attrs *storage.ObjectAttrs) *gsInfo {
	return &gsInfo{
		name:    file.Base(path),
		size:    attrs.Size,
		modTime: attrs.Updated,
		etag:    attrs.Etag,
		gen:     attrs.Generation,
	}
}

// gsInfo implements the file.Info interface.
type gsInfo struct {
	name    string
	size    int64
	modTime time.Time
	etag    string
	gen     int64
}

func (i *gsInfo) Name() string       { return i.name }
func (i *gsInfo) Size() int64        { return i.size }
func (i *gsInfo) ModTime() time.Time { return i.modTime }
func (i *gsInfo) ETag() string       { return i.etag }

// Generation returns the GCS generation number of the object.
func (i *gsInfo) Generation() int64 { return i.gen }

// translateError maps client and API errors into the errors.Kind taxonomy.
func translateError(err error, args ...interface{}) error {
	kind := errors.Other
	switch {
	case err == storage.ErrObjectNotExist, err == storage.ErrBucketNotExist:
		kind = errors.NotExist
	default:
		var apiErr *googleapi.Error
		if stderrors.As(err, &apiErr) {
			switch apiErr.Code {
			case http.StatusNotFound:
				kind = errors.NotExist
			case http.StatusForbidden, http.StatusUnauthorized:
				kind = errors.NotAllowed
			case http.StatusPreconditionFailed:
				kind = errors.Precondition
			case http.StatusTooManyRequests, http.StatusServiceUnavailable, http.StatusInternalServerError:
				kind = errors.Unavailable
			}
		}
	}
	return errors.E(append([]interface{}{err, kind}, args...)...)
}
