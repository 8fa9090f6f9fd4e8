// Copyright 2026 The Unifile Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package compress

import (
	"bytes"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gzipCompress(t *testing.T, in []byte) []byte {
	buf := bytes.Buffer{}
	w := gzip.NewWriter(&buf)
	_, err := io.Copy(w, bytes.NewReader(in))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func zstdCompress(t *testing.T, in []byte) []byte {
	buf := bytes.Buffer{}
	w, err := zstd.NewWriter(&buf)
	require.NoError(t, err)
	_, err = io.Copy(w, bytes.NewReader(in))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func testReader(t *testing.T, plaintext string, comp func(t *testing.T, in []byte) []byte) {
	compressed := comp(t, []byte(plaintext))
	cr := bytes.NewReader(compressed)
	r, n := NewReader(cr)
	require.True(t, n)
	require.NotNil(t, r)
	got := bytes.Buffer{}
	_, err := io.Copy(&got, r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	assert.Equal(t, plaintext, got.String())
}

// Generate a random ASCII text.
func randomText(buf *strings.Builder, r *rand.Rand, n int) {
	for i := 0; i < n; i++ {
		buf.WriteByte(byte(r.Intn(96) + 32))
	}
}

func TestReaderSmall(t *testing.T) {
	compressor := []func(t *testing.T, in []byte) []byte{
		gzipCompress,
		zstdCompress,
	}
	for ci, c := range compressor {
		t.Run(fmt.Sprint(ci), func(t *testing.T) {
			testReader(t, "", c)
			testReader(t, "hello", c)
		})
		n := 1
		for i := 1; i < 25; i++ {
			t.Run(fmt.Sprint("i=", ci, ",n=", n), func(t *testing.T) {
				r := rand.New(rand.NewSource(int64(i)))
				n = (n + 1) * 3 / 2
				buf := strings.Builder{}
				randomText(&buf, r, n)
				testReader(t, buf.String(), c)
			})
		}
	}
}

func TestReaderUncompressed(t *testing.T) {
	data := make([]byte, 128<<10+1)
	got := bytes.Buffer{}

	runTest := func(t *testing.T, n int) {
		for i := range data[:n] {
			// gzip/bzip2 headers contain at least one char > 128, so the
			// plaintext should never be conflated with a compressed header.
			data[i] = byte(n + i%128)
		}
		cr := bytes.NewReader(data[:n])
		r, compressed := NewReader(cr)
		assert.False(t, compressed)
		got.Reset()
		nRead, err := io.Copy(&got, r)
		require.NoError(t, err)
		assert.Equal(t, n, int(nRead))
		require.NoError(t, r.Close())
		assert.Equal(t, data[:n], got.Bytes())
	}

	dataSize := 1
	for dataSize <= len(data) {
		n := dataSize
		t.Run(fmt.Sprint(n), func(t *testing.T) { runTest(t, n) })
		t.Run(fmt.Sprint(n-1), func(t *testing.T) { runTest(t, n-1) })
		dataSize *= 4
	}
}

func TestPathRoundTrip(t *testing.T) {
	for _, path := range []string{"f.gz", "f.zst", "dir/f.jsonl.gz", "s3://b/f.zst"} {
		t.Run(path, func(t *testing.T) {
			buf := bytes.Buffer{}
			w, ok := NewWriterPath(&buf, path)
			require.True(t, ok)
			_, err := w.Write([]byte("the quick brown fox"))
			require.NoError(t, err)
			require.NoError(t, w.Close())

			r, ok := NewReaderPath(&buf, path)
			require.True(t, ok)
			data, err := io.ReadAll(r)
			require.NoError(t, err)
			require.NoError(t, r.Close())
			assert.Equal(t, "the quick brown fox", string(data))
		})
	}
}

func TestPathPassthrough(t *testing.T) {
	buf := bytes.Buffer{}
	w, ok := NewWriterPath(&buf, "f.txt")
	assert.False(t, ok)
	_, err := w.Write([]byte("plain"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.Equal(t, "plain", buf.String())

	r, ok := NewReaderPath(&buf, "f.txt")
	assert.False(t, ok)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "plain", string(data))
}

func TestBzip2WriterUnsupported(t *testing.T) {
	w, ok := NewWriterPath(io.Discard, "f.bz2")
	require.True(t, ok)
	_, err := w.Write([]byte("x"))
	assert.Regexp(t, "bzip2 writer not supported", err)
}

func TestHeaderDetection(t *testing.T) {
	gz := gzipCompress(t, []byte("hello world"))
	assert.True(t, isGzipHeader(gz))
	assert.False(t, isBzip2Header(gz))

	zs := zstdCompress(t, []byte("hello world"))
	assert.True(t, isZstdHeader(zs))
	assert.False(t, isGzipHeader(zs))

	bz := append([]byte("BZh9"), 0x31, 0x41, 0x59, 0x26, 0x53, 0x59)
	assert.True(t, isBzip2Header(bz))
}
