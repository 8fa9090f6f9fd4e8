// Copyright 2026 The Unifile Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package file_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unifile/unifile/file"
)

type errFile struct {
	err error
}

func (f *errFile) String() string { return f.err.Error() }

func (f *errFile) Open(ctx context.Context, path string, opts ...file.Opts) (file.File, error) {
	return nil, f.err
}

func (f *errFile) Create(ctx context.Context, path string, opts ...file.Opts) (file.File, error) {
	return nil, f.err
}

func (f *errFile) List(ctx context.Context, dir string, recursive bool) file.Lister {
	return nil
}

func (f *errFile) Stat(ctx context.Context, path string, opts ...file.Opts) (file.Info, error) {
	return nil, f.err
}

func (f *errFile) Remove(ctx context.Context, path string) error {
	return f.err
}

func (f *errFile) Presign(ctx context.Context, path, method string, expiry time.Duration) (string, error) {
	return "", f.err
}

func (f *errFile) Close(ctx context.Context) error {
	return f.err
}

func TestRegistration(t *testing.T) {
	testImpl := &errFile{errors.New("test")}
	file.RegisterImplementation("foo", func() file.Implementation { return testImpl })
	assert.True(t, file.FindImplementation("") != nil)
	assert.True(t, file.FindImplementation("foo") == testImpl)
	assert.True(t, file.FindImplementation("foo2") == nil)
}

func doReadFile(ctx context.Context, path string) string {
	got, err := file.ReadFile(ctx, path)
	if err != nil {
		return err.Error()
	}
	return string(got)
}

func TestReadWriteFile(t *testing.T) {
	tempDir := t.TempDir()
	ctx := context.Background()
	path := file.Join(tempDir, "test.txt")
	data := "Hello, olleh"
	require.NoError(t, file.WriteFile(ctx, path, []byte(data)))
	assert.Equal(t, data, doReadFile(ctx, path))
}

func TestExists(t *testing.T) {
	tempDir := t.TempDir()
	ctx := context.Background()
	path := file.Join(tempDir, "test.txt")

	ok, err := file.Exists(ctx, path)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, file.WriteFile(ctx, path, []byte("x")))
	ok, err = file.Exists(ctx, path)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRemoveAllNonexistent(t *testing.T) {
	tempDir := t.TempDir()
	ctx := context.Background()
	require.NoError(t, file.RemoveAll(ctx, file.Join(tempDir, "baddir")))
}

func TestRemoveAllRegularFile(t *testing.T) {
	tempDir := t.TempDir()
	ctx := context.Background()

	path := file.Join(tempDir, "test.txt")
	data := "Hello, olleh"
	require.NoError(t, file.WriteFile(ctx, path, []byte(data)))
	assert.Equal(t, data, doReadFile(ctx, path))
	require.NoError(t, file.RemoveAll(ctx, path))
	assert.Regexp(t, "no such file", doReadFile(ctx, path))
}

func TestRemoveAllRecursive(t *testing.T) {
	tempDir := t.TempDir()
	ctx := context.Background()

	dir := file.Join(tempDir, "d")
	data := "Hello, olleh"
	require.NoError(t, file.WriteFile(ctx, file.Join(dir, "file.txt"), []byte(data)))
	require.NoError(t, file.WriteFile(ctx, file.Join(dir, "e/file.txt"), []byte(data)))
	require.NoError(t, file.RemoveAll(ctx, dir))
	assert.Regexp(t, "no such file", doReadFile(ctx, file.Join(dir, "file.txt")))
	assert.Regexp(t, "no such file", doReadFile(ctx, file.Join(dir, "e/file.txt")))
}

func TestCloseAndReport(t *testing.T) {
	closeMsg := "close [seuozr]"
	returnMsg := "return [mntbnb]"

	// No return error, no close error.
	gotErr := func() (err error) {
		f := errFile{}
		defer file.CloseAndReport(context.Background(), &f, &err)
		return nil
	}()
	assert.NoError(t, gotErr)

	// No return error, close error.
	gotErr = func() (err error) {
		f := errFile{errors.New(closeMsg)}
		defer file.CloseAndReport(context.Background(), &f, &err)
		return nil
	}()
	assert.Equal(t, closeMsg, gotErr.Error())

	// Return error, no close error.
	gotErr = func() (err error) {
		f := errFile{}
		defer file.CloseAndReport(context.Background(), &f, &err)
		return errors.New(returnMsg)
	}()
	assert.Equal(t, returnMsg, gotErr.Error())

	// Return error, close error.
	gotErr = func() (err error) {
		f := errFile{errors.New(closeMsg)}
		defer file.CloseAndReport(context.Background(), &f, &err)
		return errors.New(returnMsg)
	}()
	assert.Contains(t, gotErr.Error(), returnMsg)
	assert.Contains(t, gotErr.Error(), closeMsg)
}
