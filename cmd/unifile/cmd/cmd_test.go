// Copyright 2026 The Unifile Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package cmd_test

import (
	"bytes"
	"context"
	"os"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unifile/unifile/cmd/unifile/cmd"
	"github.com/unifile/unifile/file"
)

func readFile(path string) string {
	got, err := file.ReadFile(context.Background(), path)
	if err != nil {
		return err.Error()
	}
	return string(got)
}

func TestLs(t *testing.T) {
	doLs := func(long, recursive bool, args ...string) []string {
		out := bytes.Buffer{}
		assert.NoError(t, cmd.Ls(context.Background(), &out, args, long, recursive))
		s := strings.Split(strings.TrimSpace(out.String()), "\n")
		sort.Strings(s)
		return s
	}

	ctx := context.Background()
	tmpDir := t.TempDir()

	path0 := file.Join(tmpDir, "0.txt")
	path1 := file.Join(tmpDir, "d/1.txt")
	require.NoError(t, file.WriteFile(ctx, path0, []byte("0")))
	require.NoError(t, file.WriteFile(ctx, path1, []byte("1")))
	assert.Equal(t,
		[]string{tmpDir + "/0.txt", tmpDir + "/d/"},
		doLs(false, false, tmpDir))
	assert.Equal(t,
		[]string{tmpDir + "/0.txt", tmpDir + "/d/1.txt"},
		doLs(false, true, tmpDir))

	s := doLs(true, false, tmpDir)
	require.Equal(t, 2, len(s))
	assert.Regexp(t, tmpDir+"/0.txt\t1\t20.*", s[0])
	assert.Equal(t, tmpDir+"/d/", s[1])

	s = doLs(true, true, tmpDir)
	require.Equal(t, 2, len(s))
	assert.Regexp(t, tmpDir+"/0.txt\t1\t20.*", s[0])
	assert.Regexp(t, tmpDir+"/d/1.txt\t1\t20.*", s[1])
}

func TestCat(t *testing.T) {
	ctx := context.Background()
	tmpDir := t.TempDir()
	require.NoError(t, file.WriteFile(ctx, file.Join(tmpDir, "a.txt"), []byte("hello ")))
	require.NoError(t, file.WriteFile(ctx, file.Join(tmpDir, "b.txt"), []byte("world")))

	out := bytes.Buffer{}
	require.NoError(t, cmd.Cat(ctx, &out, []string{file.Join(tmpDir, "*.txt")}))
	assert.Equal(t, "hello world", out.String())
}

func TestPut(t *testing.T) {
	ctx := context.Background()
	path := file.Join(t.TempDir(), "out.txt")
	require.NoError(t, cmd.Put(ctx, strings.NewReader("stored"), path))
	assert.Equal(t, "stored", readFile(path))
}

func TestCp(t *testing.T) {
	ctx := context.Background()

	tmpDir := t.TempDir()
	src0Path := file.Join(tmpDir, "tmp0.txt")
	src1Path := file.Join(tmpDir, "tmp1.txt")
	expected0 := "tmp0"
	expected1 := "tmp1"
	require.NoError(t, file.WriteFile(ctx, src0Path, []byte(expected0)))
	require.NoError(t, file.WriteFile(ctx, src1Path, []byte(expected1)))

	// "cp xxx yyy", where yyy doesn't exist.
	dstPath := file.Join(tmpDir, "d0.txt")
	assert.NoError(t, cmd.Cp(ctx, []string{src0Path, dstPath}, false, false))
	assert.Equal(t, expected0, readFile(dstPath))

	// "cp x0 x1 yyy", where yyy doesn't exist.
	dstPath = file.Join(tmpDir, "d1")
	assert.NoError(t, cmd.Cp(ctx, []string{src0Path, src1Path, dstPath}, false, false))
	assert.Equal(t, expected0, readFile(file.Join(dstPath, "tmp0.txt")))
	assert.Equal(t, expected1, readFile(file.Join(dstPath, "tmp1.txt")))

	// Try "cp xxx yyy/", where yyy doesn't exist. Cp should create file yyy/xxx.
	dstDir := file.Join(tmpDir, "testdir0")
	assert.NoError(t, cmd.Cp(ctx, []string{src0Path, dstDir + "/"}, false, false))
	assert.Equal(t, expected0, readFile(file.Join(dstDir, "tmp0.txt")))

	dstDir = tmpDir + "/d2"
	require.NoError(t, os.Mkdir(dstDir, 0700))
	assert.NoError(t, cmd.Cp(ctx, []string{src0Path, dstDir}, false, false))
	assert.Equal(t, expected0, readFile(file.Join(dstDir, "tmp0.txt")))
}

func TestCpRecursive(t *testing.T) {
	ctx := context.Background()
	tmpDir := t.TempDir()

	srcDir := file.Join(tmpDir, "dir")
	path0 := "/dir/tmp0.txt"
	path1 := "/dir/dir2/tmp1.txt"
	path2 := "/dir/dir2/dir3/tmp2.txt"
	expected0 := "tmp0"
	expected1 := "tmp1"
	expected2 := "tmp2"
	require.NoError(t, file.WriteFile(ctx, srcDir+path0, []byte(expected0)))
	require.NoError(t, file.WriteFile(ctx, srcDir+path1, []byte(expected1)))
	require.NoError(t, file.WriteFile(ctx, srcDir+path2, []byte(expected2)))
	dstDir := file.Join(tmpDir, "dir1")
	require.NoError(t, cmd.Cp(ctx, []string{srcDir, dstDir}, false, true))
	assert.Equal(t, expected0, readFile(dstDir+path0))
	assert.Equal(t, expected1, readFile(dstDir+path1))
	assert.Equal(t, expected2, readFile(dstDir+path2))
}

func TestRm(t *testing.T) {
	ctx := context.Background()
	tmpDir := t.TempDir()
	src0Path := file.Join(tmpDir, "tmp0.txt")
	src1Path := file.Join(tmpDir, "tmp1.txt")
	src2Path := file.Join(tmpDir, "tmp2.txt")
	require.NoError(t, file.WriteFile(ctx, src0Path, []byte("0")))
	require.NoError(t, file.WriteFile(ctx, src1Path, []byte("1")))
	require.NoError(t, file.WriteFile(ctx, src2Path, []byte("2")))

	require.NoError(t, cmd.Rm(ctx, []string{src0Path, src1Path}, false, false))
	assert.Regexp(t, "no such file", readFile(src0Path))
	assert.Regexp(t, "no such file", readFile(src1Path))
	assert.Equal(t, "2", readFile(src2Path))

	require.NoError(t, cmd.Rm(ctx, []string{src2Path}, false, false))
	assert.Regexp(t, "no such file", readFile(src2Path))
}

func TestRmRecursive(t *testing.T) {
	ctx := context.Background()
	tmpDir := t.TempDir()
	src0Path := file.Join(tmpDir, "dir/tmp0.txt")
	src1Path := file.Join(tmpDir, "dir/dir2/tmp1.txt")
	src2Path := file.Join(tmpDir, "dir/dir2/dir3/tmp2.txt")
	require.NoError(t, file.WriteFile(ctx, src0Path, []byte("0")))
	require.NoError(t, file.WriteFile(ctx, src1Path, []byte("1")))
	require.NoError(t, file.WriteFile(ctx, src2Path, []byte("2")))

	require.NoError(t, cmd.Rm(ctx, []string{file.Join(tmpDir, "dir/dir2")}, false, true))
	assert.Equal(t, "0", readFile(src0Path))
	assert.Regexp(t, "no such file", readFile(src1Path))
	assert.Regexp(t, "no such file", readFile(src2Path))
}

func TestInfo(t *testing.T) {
	ctx := context.Background()
	tmpDir := t.TempDir()
	path := file.Join(tmpDir, "a.txt")
	require.NoError(t, file.WriteFile(ctx, path, []byte("abcde")))

	out := bytes.Buffer{}
	require.NoError(t, cmd.Info(ctx, &out, []string{path}))
	assert.Regexp(t, path+"\t5\t20.*\t-", out.String())
}
