// Copyright 2026 The Unifile Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package miniofile

import (
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unifile/unifile/errors"
)

func newTestImpl(t *testing.T, scheme string) *minioImpl {
	impl, err := NewImplementation(scheme, Config{
		Endpoint:  "localhost:9000",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
		Insecure:  true,
	})
	require.NoError(t, err)
	return impl.(*minioImpl)
}

func TestEndpoints(t *testing.T) {
	assert.Equal(t, "abc123.r2.cloudflarestorage.com", R2Endpoint("abc123"))
	assert.Equal(t, "s3.us-east-1.wasabisys.com", WasabiEndpoint("us-east-1"))
}

func TestParse(t *testing.T) {
	impl := newTestImpl(t, "minio")
	for _, test := range []struct {
		path        string
		bucket, key string
	}{
		{"minio://bucket/dir/file", "bucket", "dir/file"},
		{"minio://bucket", "bucket", ""},
		{"bucket/dir/file", "bucket", "dir/file"},
	} {
		bucket, key, err := impl.parse(test.path)
		require.NoError(t, err, "path %s", test.path)
		assert.Equal(t, test.bucket, bucket, "path %s", test.path)
		assert.Equal(t, test.key, key, "path %s", test.path)
	}

	_, _, err := impl.parse("s3://bucket/key")
	assert.Regexp(t, "not a minio:// path", err)
}

func TestSchemes(t *testing.T) {
	r2, err := NewR2("abc123", "ak", "sk")
	require.NoError(t, err)
	assert.Equal(t, "r2", r2.String())

	wasabi, err := NewWasabi("eu-central-1", "ak", "sk")
	require.NoError(t, err)
	assert.Equal(t, "wasabi", wasabi.String())

	assert.Equal(t, "minio", newTestImpl(t, "minio").String())
}

func TestTranslateError(t *testing.T) {
	for _, test := range []struct {
		code string
		kind errors.Kind
	}{
		{"NoSuchKey", errors.NotExist},
		{"NoSuchBucket", errors.NotExist},
		{"AccessDenied", errors.NotAllowed},
		{"PreconditionFailed", errors.Precondition},
		{"SlowDown", errors.Unavailable},
	} {
		err := translateError(minio.ErrorResponse{Code: test.code, Message: "test"}, "op", "minio://b/k")
		assert.True(t, errors.Is(test.kind, err), "code %s: err=%v", test.code, err)
	}
}

func TestKeepObj(t *testing.T) {
	l := &minioLister{prefix: "foo/bar"}
	assert.True(t, l.keepObj("foo/bar"))
	assert.True(t, l.keepObj("foo/bar/baz"))
	assert.False(t, l.keepObj("foo/barbaz"))

	l = &minioLister{prefix: ""}
	assert.True(t, l.keepObj("anything"))
}
