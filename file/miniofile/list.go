// Copyright 2026 The Unifile Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package miniofile

import (
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/unifile/unifile/file"
)

// minioLister implements the file.Lister interface by draining the channel
// produced by ListObjects. Non-recursive listings report common prefixes as
// pseudo-directories, without the trailing separator.
type minioLister struct {
	scheme string
	bucket string
	prefix string
	ch     <-chan minio.ObjectInfo

	object minio.ObjectInfo
	isDir  bool
	err    error
}

// Scan implements Lister.Scan.
func (l *minioLister) Scan() bool {
	for {
		if l.err != nil {
			return false
		}
		obj, ok := <-l.ch
		if !ok {
			return false
		}
		if obj.Err != nil {
			l.err = translateError(obj.Err, "miniofile.list", fmt.Sprintf("%s://%s/%s", l.scheme, l.bucket, l.prefix))
			return false
		}
		if !l.keepObj(obj.Key) {
			continue
		}
		l.isDir = strings.HasSuffix(obj.Key, "/")
		if l.isDir {
			// Directories come back without a trailing separator, matching
			// the local backend.
			obj.Key = obj.Key[:len(obj.Key)-1]
		}
		l.object = obj
		return true
	}
}

// keepObj skips keys whose path component isn't exactly equal to l.prefix.
// With prefix "foo/bar", "foo/bar" and "foo/bar/baz" are kept while
// "foo/barbaz" is not.
func (l *minioLister) keepObj(objPath string) bool {
	ll := len(l.prefix)
	if ll == 0 || len(objPath) <= ll {
		return true
	}
	if l.prefix[ll-1] == '/' {
		ll--
	}
	return objPath[ll] == '/'
}

// Path implements Lister.Path.
func (l *minioLister) Path() string {
	return fmt.Sprintf("%s://%s/%s", l.scheme, l.bucket, l.object.Key)
}

// Info implements Lister.Info. It returns nil for a directory.
func (l *minioLister) Info() file.Info {
	if l.isDir {
		return nil
	}
	return &minioInfo{
		name:    file.Base(l.Path()),
		size:    l.object.Size,
		modTime: l.object.LastModified,
		etag:    l.object.ETag,
	}
}

// IsDir implements Lister.IsDir.
func (l *minioLister) IsDir() bool { return l.isDir }

// Err returns the first error that occurred while scanning.
func (l *minioLister) Err() error { return l.err }
