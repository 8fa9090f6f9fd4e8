// Copyright 2026 The Unifile Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package file_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/unifile/unifile/file"
	filetestutil "github.com/unifile/unifile/file/internal/testutil"
)

func TestAll(t *testing.T) {
	tempDir := t.TempDir()
	impl := file.NewLocalImplementation()
	ctx := context.Background()
	filetestutil.TestAll(ctx, t, impl, tempDir)
}

func TestEmptyPath(t *testing.T) {
	_, err := file.Create(context.Background(), "")
	require.Regexp(t, "empty pathname", err)
}

func TestDataDir(t *testing.T) {
	ctx := context.Background()
	tempDir := t.TempDir()
	file.SetDataDir(tempDir)
	t.Cleanup(func() { file.SetDataDir("") })

	require.NoError(t, file.WriteFile(ctx, "sub/rel.txt", []byte("relative contents")))

	// The relative path resolves against the data dir for every operation.
	data, err := file.ReadFile(ctx, filepath.Join(tempDir, "sub/rel.txt"))
	require.NoError(t, err)
	require.Equal(t, "relative contents", string(data))
	info, err := file.Stat(ctx, "sub/rel.txt")
	require.NoError(t, err)
	require.Equal(t, int64(len("relative contents")), info.Size())

	lister := file.List(ctx, "sub", true)
	require.True(t, lister.Scan())
	require.Equal(t, filepath.Join(tempDir, "sub/rel.txt"), lister.Path())
	require.False(t, lister.Scan())
	require.NoError(t, lister.Err())

	// Absolute paths are unaffected.
	abs := filepath.Join(tempDir, "abs.txt")
	require.NoError(t, file.WriteFile(ctx, abs, []byte("x")))
	_, err = file.Stat(ctx, abs)
	require.NoError(t, err)

	require.NoError(t, file.Remove(ctx, "sub/rel.txt"))
	_, err = file.Stat(ctx, filepath.Join(tempDir, "sub/rel.txt"))
	require.Regexp(t, "no such file", err)
}

// Test that Create on a symlink will preserve it.
func TestCreateSymlink(t *testing.T) {
	dir0 := t.TempDir()
	dir1 := t.TempDir()

	newPath := filepath.Join(dir1, "new")
	oldPath := filepath.Join(dir0, "old")
	require.NoError(t, os.Symlink(oldPath, newPath))
	require.NoError(t, os.WriteFile(oldPath, []byte("hoofah"), 0777))

	ctx := context.Background()
	w, err := file.Create(ctx, newPath)
	require.NoError(t, err)
	_, err = w.Writer(ctx).Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, w.Close(ctx))

	data, err := os.ReadFile(newPath)
	require.NoError(t, err)
	require.Equal(t, "hello", string(data))

	// The file should have been created in the symlink dest dir.
	data, err = os.ReadFile(oldPath)
	require.NoError(t, err)
	require.Equal(t, "hello", string(data))
}

func TestCreateDirectory(t *testing.T) {
	tmp := t.TempDir()

	dirPath := file.Join(tmp, "dir")
	require.NoError(t, os.Mkdir(dirPath, 0777))

	ctx := context.Background()
	_, err := file.Create(ctx, dirPath)
	require.EqualError(t, err, fmt.Sprintf("file.Create %s: is a directory", dirPath))
}

// Example_localfile is an example of basic read/write operations on the local
// file system.
func Example_localfile() {
	doWrite := func(ctx context.Context, data []byte, path string) {
		out, err := file.Create(ctx, path)
		if err != nil {
			panic(err)
		}
		if _, err = out.Writer(ctx).Write(data); err != nil {
			panic(err)
		}
		if err := out.Close(ctx); err != nil {
			panic(err)
		}
	}

	doRead := func(ctx context.Context, path string) []byte {
		data, err := file.ReadFile(ctx, path)
		if err != nil {
			panic(err)
		}
		return data
	}

	ctx := context.Background()
	doWrite(ctx, []byte("Blue box jumped over red bat"), "/tmp/foohah.txt")
	fmt.Printf("Got: %s\n", string(doRead(ctx, "/tmp/foohah.txt")))
	// Output:
	// Got: Blue box jumped over red bat
}
