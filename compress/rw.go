// Copyright 2026 The Unifile Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package compress provides convenience functions for creating compressors
// and uncompressors based on filenames.
package compress

import (
	"bytes"
	"compress/bzip2"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/unifile/unifile/fileio"
)

// errorReadWriter is a ReadCloser and WriteCloser implementation that always
// returns the given error.
type errorReadWriter struct{ err error }

func (r *errorReadWriter) Read(buf []byte) (int, error)  { return 0, r.err }
func (r *errorReadWriter) Write(buf []byte) (int, error) { return 0, r.err }
func (r *errorReadWriter) Close() error                  { return r.err }

// nopWriteCloser adds a no-op Close to a Writer, mirroring io.NopCloser.
type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func isBzip2Header(buf []byte) bool {
	// https://www.forensicswiki.org/wiki/Bzip2
	if len(buf) < 10 {
		return false
	}
	if !(buf[0] == 'B' && buf[1] == 'Z' && buf[2] == 'h' && buf[3] >= '1' && buf[3] <= '9') {
		return false
	}
	if buf[4] == 0x31 && buf[5] == 0x41 &&
		buf[6] == 0x59 && buf[7] == 0x26 &&
		buf[8] == 0x53 && buf[9] == 0x59 { // block magic
		return true
	}
	if buf[4] == 0x17 && buf[5] == 0x72 &&
		buf[6] == 0x45 && buf[7] == 0x38 &&
		buf[8] == 0x50 && buf[9] == 0x90 { // eos magic, happens only for an empty bz2 file.
		return true
	}
	return true
}

func isGzipHeader(buf []byte) bool {
	if len(buf) < 10 {
		return false
	}
	if !(buf[0] == 0x1f && buf[1] == 0x8b) {
		return false
	}
	if !(buf[2] <= 3 || buf[2] == 8) {
		return false
	}
	if (buf[3] & 0xc0) != 0 {
		return false
	}
	if !(buf[9] <= 0xd || buf[9] == 0xff) {
		return false
	}
	return true
}

func isZstdHeader(buf []byte) bool {
	if len(buf) < 4 {
		return false
	}
	return buf[0] == 0x28 && buf[1] == 0xb5 && buf[2] == 0x2f && buf[3] == 0xfd
}

// zstdReadCloser adapts a zstd.Decoder to io.ReadCloser; Decoder.Close has
// no return value.
type zstdReadCloser struct{ d *zstd.Decoder }

func (r zstdReadCloser) Read(buf []byte) (int, error) { return r.d.Read(buf) }
func (r zstdReadCloser) Close() error                 { r.d.Close(); return nil }

// NewReader creates an uncompressing reader by reading the first few bytes of
// the input and finding a magic header for gzip, zstd, or bzip2. If a magic
// header is found, it returns an uncompressing ReadCloser and true. Else, it
// returns io.NopCloser(r) and false.
//
// CAUTION: this function will misbehave when the input is a binary string that
// happens to have the same magic header.  Thus, you should use this function
// only when the input is expected to be ASCII.
func NewReader(r io.Reader) (io.ReadCloser, bool) {
	buf := bytes.Buffer{}
	_, err := io.CopyN(&buf, r, 128)
	var m io.Reader
	switch err {
	case io.EOF:
		m = &buf
	case nil:
		m = io.MultiReader(&buf, r)
	default:
		m = io.MultiReader(&buf, &errorReadWriter{err})
	}
	if isGzipHeader(buf.Bytes()) {
		z, err := gzip.NewReader(m)
		if err != nil {
			return &errorReadWriter{err}, false
		}
		return z, true
	}
	if isZstdHeader(buf.Bytes()) {
		z, err := zstd.NewReader(m)
		if err != nil {
			return &errorReadWriter{err}, false
		}
		return zstdReadCloser{z}, true
	}
	if isBzip2Header(buf.Bytes()) {
		return io.NopCloser(bzip2.NewReader(m)), true
	}
	return io.NopCloser(m), false
}

// NewReaderPath creates a reader that uncompresses data read from the given
// reader.  The compression format is determined by the pathname extensions.
// The following extensions are recognized:
//
//	.gz  => gzip format
//	.zst => zstd format
//	.bz2 => bz2 format
//
// For other extensions, this function returns io.NopCloser(r) and false.
//
// If the caller receives a reader with ok=true, it must close the reader
// after use. For some file formats, Close() is the only place that reports
// file corruption.
func NewReaderPath(r io.Reader, path string) (rc io.ReadCloser, ok bool) {
	switch fileio.DetermineType(path) {
	case fileio.Gzip:
		gz, err := gzip.NewReader(r)
		if err != nil {
			return &errorReadWriter{err}, true
		}
		return gz, true
	case fileio.Zstd:
		z, err := zstd.NewReader(r)
		if err != nil {
			return &errorReadWriter{err}, true
		}
		return zstdReadCloser{z}, true
	case fileio.Bzip2:
		return io.NopCloser(bzip2.NewReader(r)), true
	}
	return io.NopCloser(r), false
}

// NewWriterPath creates a WriteCloser that compresses data.  The compression
// format is determined by the pathname extensions. The following extensions
// are recognized:
//
//	.gz  => gzip format
//	.zst => zstd format
//
// For other extensions, this function returns a pass-through WriteCloser
// with a no-op Close and ok=false. If ok=true, the caller must call Close()
// once after writing all the data.
func NewWriterPath(w io.Writer, path string) (wc io.WriteCloser, ok bool) {
	switch fileio.DetermineType(path) {
	case fileio.Gzip:
		return gzip.NewWriter(w), true
	case fileio.Zstd:
		z, err := zstd.NewWriter(w)
		if err != nil {
			return &errorReadWriter{err}, true
		}
		return z, true
	case fileio.Bzip2:
		return &errorReadWriter{fmt.Errorf("%s: bzip2 writer not supported", path)}, true
	}
	return nopWriteCloser{w}, false
}
