// Copyright 2026 The Unifile Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package s3file_test

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	awsrequest "github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unifile/unifile/errors"
	"github.com/unifile/unifile/file"
	filetestutil "github.com/unifile/unifile/file/internal/testutil"
	"github.com/unifile/unifile/file/s3file"
	"github.com/unifile/unifile/file/s3file/internal/fakes3"
	"github.com/unifile/unifile/retry"
)

type testProvider struct {
	clients []s3iface.S3API
}

func (p *testProvider) Get(ctx context.Context, op, path string) ([]s3iface.S3API, error) {
	return p.clients, nil
}

func (p *testProvider) NotifyResult(ctx context.Context, op, path string, client s3iface.S3API, err error) {
}

func newClient() *fakes3.Client { return fakes3.NewClient("b") }

func errorClient(err error) s3iface.S3API {
	c := fakes3.NewClient("b")
	c.Err = func(api string, input interface{}) error {
		return err
	}
	return c
}

// writeFile creates a file with the given contents. Path should be of form
// s3://bucket/key.
func writeFile(ctx context.Context, t *testing.T, impl file.Implementation, path, data string) {
	f, err := impl.Create(ctx, path)
	require.NoError(t, err)
	_, err = f.Writer(ctx).Write([]byte(data))
	require.NoError(t, err)
	require.NoError(t, f.Close(ctx))
}

func TestS3(t *testing.T) {
	// The first client always fails; the implementation must fail over to the
	// second.
	provider := &testProvider{clients: []s3iface.S3API{
		errorClient(awserr.New("AccessDenied", "test permission error", nil)),
		newClient(),
	}}
	ctx := context.Background()
	impl := s3file.NewImplementation(provider, s3file.Options{})
	filetestutil.TestAll(ctx, t, impl, "s3://b/dir")
}

func TestS3WithRetries(t *testing.T) {
	oldPolicy := s3file.BackoffPolicy
	s3file.BackoffPolicy = retry.Backoff(0, 0, 1.0)
	defer func() {
		s3file.BackoffPolicy = oldPolicy
	}()

	ctx := context.Background()
	for iter := 0; iter < 20; iter++ {
		r := rand.New(rand.NewSource(int64(iter)))
		client := newClient()
		client.Err = func(api string, input interface{}) error {
			switch r.Intn(6) {
			case 0:
				return awserr.New(awsrequest.ErrCodeSerialization, fmt.Sprintf("test failure %s", api), nil)
			case 1:
				return awserr.New("RequestError", "send request failed", readConnResetError{})
			}
			return nil
		}
		provider := &testProvider{clients: []s3iface.S3API{client}}
		impl := s3file.NewImplementation(provider, s3file.Options{})
		filetestutil.TestAll(ctx, t, impl, "s3://b/dir")
	}
}

func TestListBucketRoot(t *testing.T) {
	provider := &testProvider{clients: []s3iface.S3API{newClient()}}
	ctx := context.Background()
	impl := s3file.NewImplementation(provider, s3file.Options{})
	writeFile(ctx, t, impl, "s3://b/0.txt", "data")

	l := impl.List(ctx, "s3://b", true)
	require.True(t, l.Scan(), "err: %v", l.Err())
	assert.Equal(t, "s3://b/0.txt", l.Path())
	assert.False(t, l.Scan())
	require.NoError(t, l.Err())
}

func TestListPrefixBoundary(t *testing.T) {
	provider := &testProvider{clients: []s3iface.S3API{newClient()}}
	ctx := context.Background()
	impl := s3file.NewImplementation(provider, s3file.Options{})
	writeFile(ctx, t, impl, "s3://b/foo/bar", "a")
	writeFile(ctx, t, impl, "s3://b/foo/bar/child", "b")
	writeFile(ctx, t, impl, "s3://b/foo/barbaz", "c")

	// Listing foo/bar must not pick up foo/barbaz; the prefix boundary is the
	// path separator, not a raw string prefix.
	var got []string
	l := impl.List(ctx, "s3://b/foo/bar", true)
	for l.Scan() {
		got = append(got, l.Path())
	}
	require.NoError(t, l.Err())
	sort.Strings(got)
	assert.Equal(t, []string{"s3://b/foo/bar", "s3://b/foo/bar/child"}, got)
}

type readConnResetError struct{}

func (c readConnResetError) Temporary() bool { return false }
func (c readConnResetError) Error() string   { return "read: connection reset" }

func TestErrors(t *testing.T) {
	provider := &testProvider{clients: []s3iface.S3API{
		errorClient(awserr.New("AccessDenied", "test permission error", nil))}}
	ctx := context.Background()
	impl := s3file.NewImplementation(provider, s3file.Options{})

	_, err := impl.Create(ctx, "s3://b/junk0.txt")
	assert.Regexp(t, "test permission error", err)

	_, err = impl.Stat(ctx, "s3://b/junk0.txt")
	assert.Regexp(t, "test permission error", err)

	l := impl.List(ctx, "s3://b/foo", true)
	assert.False(t, l.Scan())
	assert.Regexp(t, "test permission error", l.Err())
}

func TestTransientErrors(t *testing.T) {
	provider := &testProvider{clients: []s3iface.S3API{
		errorClient(awserr.New("RequestError", "send request failed", readConnResetError{}))}}
	impl := s3file.NewImplementation(provider, s3file.Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := impl.Stat(ctx, "s3://b/junk0.txt")
	assert.Regexp(t, "request cancelled", err)

	ctx, cancel = context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err = impl.Stat(ctx, "s3://b/junk0.txt")
	assert.Regexp(t, "ran out of time while waiting", err)
}

func TestWriteRetryAfterError(t *testing.T) {
	oldPolicy := s3file.BackoffPolicy
	s3file.BackoffPolicy = retry.Backoff(0, 0, 1.0)
	defer func() {
		s3file.BackoffPolicy = oldPolicy
	}()

	client := newClient()
	provider := &testProvider{clients: []s3iface.S3API{client}}
	impl := s3file.NewImplementation(provider, s3file.Options{})
	ctx := context.Background()
	for i := 0; i < 10; i++ {
		r := rand.New(rand.NewSource(0))
		client.Err = func(api string, input interface{}) error {
			if r.Intn(3) == 0 {
				return awserr.New(awsrequest.ErrCodeSerialization, "test failure", nil)
			}
			return nil
		}
		writeFile(ctx, t, impl, "s3://b/0.txt", "data")
	}
}

func TestIgnoreNoSuchUpload(t *testing.T) {
	ctx := context.Background()
	newImpl := func() file.Implementation {
		client := newClient()
		client.Err = func(api string, input interface{}) error {
			if api == "CompleteMultipartUpload" {
				return awserr.New("NoSuchUpload", "test: the specified upload does not exist", nil)
			}
			return nil
		}
		return s3file.NewImplementation(&testProvider{clients: []s3iface.S3API{client}}, s3file.Options{})
	}

	// Without the opt, a NoSuchUpload on completion fails the Close.
	f, err := newImpl().Create(ctx, "s3://b/0.txt")
	require.NoError(t, err)
	_, err = f.Writer(ctx).Write([]byte("data"))
	require.NoError(t, err)
	assert.Regexp(t, "NoSuchUpload", f.Close(ctx))

	// With the opt, the completion error is ignored: at least one part was
	// uploaded, so the upload ID was valid at some point.
	f, err = newImpl().Create(ctx, "s3://b/0.txt", file.Opts{IgnoreNoSuchUpload: true})
	require.NoError(t, err)
	_, err = f.Writer(ctx).Write([]byte("data"))
	require.NoError(t, err)
	assert.NoError(t, f.Close(ctx))
}

func TestRetryWhenNotFound(t *testing.T) {
	oldPolicy := s3file.BackoffPolicy
	s3file.BackoffPolicy = retry.Backoff(10*time.Millisecond, 10*time.Millisecond, 1.0)
	defer func() {
		s3file.BackoffPolicy = oldPolicy
	}()

	provider := &testProvider{clients: []s3iface.S3API{newClient()}}
	impl := s3file.NewImplementation(provider, s3file.Options{})

	ctx := context.Background()
	// By default, there is no retry.
	_, err := impl.Open(ctx, "s3://b/file.txt")
	assert.True(t, errors.Is(errors.NotExist, err), "err=%v", err)

	doneCh := make(chan bool)
	go func() {
		_, err := impl.Open(ctx, "s3://b/file.txt", file.Opts{RetryWhenNotFound: true})
		assert.NoError(t, err)
		doneCh <- true
	}()
	time.Sleep(200 * time.Millisecond)
	select {
	case <-doneCh:
		t.Fatal("open should still be waiting for the file to appear")
	default:
	}
	writeFile(ctx, t, impl, "s3://b/file.txt", "data")
	<-doneCh
}

func TestCancellation(t *testing.T) {
	client := newClient()
	client.SetObject("blocked.txt", []byte("goodbye"))
	block := make(chan struct{})
	client.Err = func(api string, input interface{}) error {
		if api == "GetObject" {
			<-block
		}
		return nil
	}
	defer close(block)

	provider := &testProvider{clients: []s3iface.S3API{client}}
	impl := s3file.NewImplementation(provider, s3file.Options{})

	f, err := impl.Open(context.Background(), "s3://b/blocked.txt")
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	r := f.Reader(ctx)
	_, err = io.ReadAll(r)
	assert.Regexp(t, "request cancelled", err)
	assert.Regexp(t, "request cancelled", f.Close(ctx))
}

func TestWriteLargeFile(t *testing.T) {
	// Reduce the upload chunk size to issue concurrent upload requests.
	oldUploadPartSize := s3file.UploadPartSize
	s3file.UploadPartSize = 128
	defer func() {
		s3file.UploadPartSize = oldUploadPartSize
	}()

	ctx := context.Background()
	provider := &testProvider{clients: []s3iface.S3API{newClient()}}
	impl := s3file.NewImplementation(provider, s3file.Options{})
	path := "s3://b/test.txt"
	f, err := impl.Create(ctx, path)
	require.NoError(t, err)
	r := rand.New(rand.NewSource(0))
	var want []byte
	const iters = 400
	for i := 0; i < iters; i++ {
		n := r.Intn(1024) + 100
		data := make([]byte, n)
		n, err := r.Read(data)
		require.Equal(t, len(data), n)
		require.NoError(t, err)
		n, err = f.Writer(ctx).Write(data)
		require.Equal(t, len(data), n)
		require.NoError(t, err)
		want = append(want, data...)
	}
	require.NoError(t, f.Close(ctx))

	// Read the file back and verify contents.
	f, err = impl.Open(ctx, path)
	require.NoError(t, err)
	got, err := io.ReadAll(f.Reader(ctx))
	require.NoError(t, err)
	assert.Equal(t, want, got)
	require.NoError(t, f.Close(ctx))
}

func TestOverwriteWhileReading(t *testing.T) {
	provider := &testProvider{clients: []s3iface.S3API{newClient()}}
	impl := s3file.NewImplementation(provider, s3file.Options{})
	ctx := context.Background()
	path := "s3://b/test/test.txt"
	writeFile(ctx, t, impl, path, "test0")
	f, err := impl.Open(ctx, path)
	require.NoError(t, err)

	r := f.Reader(ctx)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "test0", string(data))

	_, err = r.Seek(0, io.SeekStart)
	require.NoError(t, err)

	// Overwriting with identical contents keeps the ETag stable, so the
	// reader carries on.
	writeFile(ctx, t, impl, path, "test0")

	data, err = io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "test0", string(data))

	_, err = r.Seek(0, io.SeekStart)
	require.NoError(t, err)
	writeFile(ctx, t, impl, path, "test1")
	_, err = io.ReadAll(r)
	assert.True(t, errors.Is(errors.Precondition, err), "err=%v", err)
}

func TestNotExist(t *testing.T) {
	provider := &testProvider{clients: []s3iface.S3API{newClient()}}
	impl := s3file.NewImplementation(provider, s3file.Options{})
	ctx := context.Background()
	_, err := impl.Open(ctx, "b/notexist")
	assert.True(t, errors.Is(errors.NotExist, err), "err=%v", err)
	_, err = impl.Stat(ctx, "s3://b/notexist")
	assert.True(t, errors.Is(errors.NotExist, err), "err=%v", err)
}

func TestPresign(t *testing.T) {
	// Presigning happens client side, so a real client with static
	// credentials works offline.
	sess := session.Must(session.NewSession(&aws.Config{
		Region:      aws.String("us-west-2"),
		Credentials: credentials.NewStaticCredentials("AKID", "SECRET", ""),
	}))
	provider := &testProvider{clients: []s3iface.S3API{s3.New(sess)}}
	impl := s3file.NewImplementation(provider, s3file.Options{})
	ctx := context.Background()

	for _, method := range []string{"GET", "PUT", "DELETE"} {
		url, err := impl.Presign(ctx, "s3://b/dir/file.txt", method, time.Minute)
		require.NoError(t, err, "method %s", method)
		assert.Contains(t, url, "/dir/file.txt")
		assert.Contains(t, url, "X-Amz-Signature=")
	}

	_, err := impl.Presign(ctx, "s3://b/dir/file.txt", "POST", time.Minute)
	assert.True(t, errors.Is(errors.NotSupported, err), "err=%v", err)
}

func ExampleParseURL() {
	scheme, bucket, key, err := s3file.ParseURL("s3://somebucket/dir/file")
	fmt.Printf("scheme: %s, bucket: %s, key: %s, err: %v\n", scheme, bucket, key, err)
	scheme, bucket, key, err = s3file.ParseURL("s3://somebucket/dir/")
	fmt.Printf("scheme: %s, bucket: %s, key: %s, err: %v\n", scheme, bucket, key, err)
	scheme, bucket, key, err = s3file.ParseURL("s3://somebucket")
	fmt.Printf("scheme: %s, bucket: %s, key: %s, err: %v\n", scheme, bucket, key, err)
	// Output:
	// scheme: s3, bucket: somebucket, key: dir/file, err: <nil>
	// scheme: s3, bucket: somebucket, key: dir/, err: <nil>
	// scheme: s3, bucket: somebucket, key: , err: <nil>
}
