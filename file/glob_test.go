// Copyright 2026 The Unifile Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package file_test

import (
	"context"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unifile/unifile/file"
)

func TestParseGlob(t *testing.T) {
	doParse := func(str string) string {
		prefix, hasGlob := file.ParseGlob(str)
		if !hasGlob {
			return "none"
		}
		return prefix
	}
	assert.Equal(t, "none", doParse("s3://a/b/c"))
	assert.Equal(t, "none", doParse("s3://a/b\\*/c"))
	assert.Equal(t, "s3://a/", doParse("s3://a/b*/c"))
	assert.Equal(t, "s3://a/b/", doParse("s3://a/b/*"))
	assert.Equal(t, "s3://a/", doParse("s3://a/b?"))
	assert.Equal(t, "s3://a/", doParse("s3://a/**/b"))
	assert.Equal(t, "", doParse("**"))
}

func TestMatch(t *testing.T) {
	ok, err := file.Match("s3://a/*/c", "s3://a/b/c")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = file.Match("s3://a/*.txt", "s3://a/b/c.txt")
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = file.Match("s3://a/**", "s3://a/b/c.txt")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGlob(t *testing.T) {
	ctx := context.Background()
	tmpDir := t.TempDir()
	src0Path := file.Join(tmpDir, "abc/def/tmp0")
	src1Path := file.Join(tmpDir, "abd/efg/hij/tmp1")
	src2Path := file.Join(tmpDir, "tmp0")
	require.NoError(t, file.WriteFile(ctx, src0Path, []byte("a")))
	require.NoError(t, file.WriteFile(ctx, src1Path, []byte("b")))
	require.NoError(t, file.WriteFile(ctx, src2Path, []byte("c")))

	doExpand := func(str string) string {
		matches := file.Glob(ctx, tmpDir+"/"+str)
		for i := range matches {
			matches[i] = matches[i][len(tmpDir)+1:] // remove the tmpDir part.
		}
		sort.Strings(matches)
		return strings.Join(matches, ",")
	}

	assert.Equal(t, "abc/def/tmp0", doExpand("abc/*/tmp0"))
	assert.Equal(t, "xxx/yyy", doExpand("xxx/yyy"))
	assert.Equal(t, "xxx/*", doExpand("xxx/*"))
	assert.Equal(t, "abc/def/tmp0", doExpand("a*/*/tmp0"))
	assert.Equal(t, "abd/efg/hij/tmp1", doExpand("abd/**/tmp*"))
	assert.Equal(t, "abc/def/tmp0,abd/efg/hij/tmp1", doExpand("a*/**/tmp*"))
	assert.Equal(t, "abc/def/tmp0,abd/efg/hij/tmp1,tmp0", doExpand("**"))
}
