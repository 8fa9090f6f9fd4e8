// Copyright 2026 The Unifile Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package gsfile

import (
	"context"
	"io"
	"net/http"
	"testing"

	"cloud.google.com/go/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unifile/unifile/errors"
	"google.golang.org/api/googleapi"
)

func TestParse(t *testing.T) {
	for _, test := range []struct {
		path        string
		bucket, key string
	}{
		{"gs://bucket/dir/file", "bucket", "dir/file"},
		{"gs://bucket", "bucket", ""},
		{"bucket/dir/file", "bucket", "dir/file"},
	} {
		bucket, key, err := parse(test.path)
		require.NoError(t, err, "path %s", test.path)
		assert.Equal(t, test.bucket, bucket, "path %s", test.path)
		assert.Equal(t, test.key, key, "path %s", test.path)
	}

	_, _, err := parse("s3://bucket/key")
	assert.Regexp(t, "not a gs:// path", err)
}

func TestTranslateError(t *testing.T) {
	for _, test := range []struct {
		err  error
		kind errors.Kind
	}{
		{storage.ErrObjectNotExist, errors.NotExist},
		{storage.ErrBucketNotExist, errors.NotExist},
		{&googleapi.Error{Code: http.StatusNotFound}, errors.NotExist},
		{&googleapi.Error{Code: http.StatusForbidden}, errors.NotAllowed},
		{&googleapi.Error{Code: http.StatusPreconditionFailed}, errors.Precondition},
		{&googleapi.Error{Code: http.StatusServiceUnavailable}, errors.Unavailable},
	} {
		err := translateError(test.err, "op", "gs://b/k")
		assert.True(t, errors.Is(test.kind, err), "err=%v", err)
	}
}

func TestKeepObj(t *testing.T) {
	l := &gsLister{prefix: "foo/bar"}
	assert.True(t, l.keepObj("foo/bar"))
	assert.True(t, l.keepObj("foo/bar/baz"))
	assert.False(t, l.keepObj("foo/barbaz"))
}

func TestSeek(t *testing.T) {
	f := &gsFile{
		name: "gs://b/test.txt",
		mode: readonly,
		info: &gsInfo{name: "test.txt", size: 100},
	}
	r := f.Reader(context.Background())

	off, err := r.Seek(10, io.SeekStart)
	require.NoError(t, err)
	assert.EqualValues(t, 10, off)

	off, err = r.Seek(5, io.SeekCurrent)
	require.NoError(t, err)
	assert.EqualValues(t, 15, off)

	off, err = r.Seek(-1, io.SeekEnd)
	require.NoError(t, err)
	assert.EqualValues(t, 99, off)

	_, err = r.Seek(-200, io.SeekEnd)
	assert.Regexp(t, "out-of-bounds", err)

	// A reader positioned at the end reports EOF without a network round
	// trip.
	_, err = r.Seek(100, io.SeekStart)
	require.NoError(t, err)
	var buf [1]byte
	_, err = r.Read(buf[:])
	assert.Equal(t, io.EOF, err)
}
