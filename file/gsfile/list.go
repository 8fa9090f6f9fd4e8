// Copyright 2026 The Unifile Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package gsfile

import (
	"fmt"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/unifile/unifile/file"
	"google.golang.org/api/iterator"
)

// gsLister implements the file.Lister interface by draining an object
// iterator. Non-recursive listings report delimiter prefixes as
// pseudo-directories, without the trailing separator.
type gsLister struct {
	bucket string
	prefix string
	it     *storage.ObjectIterator

	key   string
	attrs *storage.ObjectAttrs
	isDir bool
	err   error
}

// Scan implements Lister.Scan.
func (l *gsLister) Scan() bool {
	for {
		if l.err != nil {
			return false
		}
		attrs, err := l.it.Next()
		if err == iterator.Done {
			return false
		}
		if err != nil {
			l.err = translateError(err, "gsfile.list", fmt.Sprintf("%s://%s/%s", Scheme, l.bucket, l.prefix))
			return false
		}
		key := attrs.Name
		l.isDir = key == ""
		if l.isDir {
			// Delimiter groupings come back in Prefix instead of Name.
			key = strings.TrimSuffix(attrs.Prefix, "/")
		}
		if !l.keepObj(key) {
			continue
		}
		l.key = key
		l.attrs = attrs
		return true
	}
}

// keepObj skips keys whose path component isn't exactly equal to l.prefix.
func (l *gsLister) keepObj(objPath string) bool {
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
func (l *gsLister) Path() string {
	return fmt.Sprintf("%s://%s/%s", Scheme, l.bucket, l.key)
}

// Info implements Lister.Info. It returns nil for a directory.
func (l *gsLister) Info() file.Info {
	if l.isDir {
		return nil
	}
	return newInfo(l.Path(), l.attrs)
}

// IsDir implements Lister.IsDir.
func (l *gsLister) IsDir() bool { return l.isDir }

// Err returns the first error that occurred while scanning.
func (l *gsLister) Err() error { return l.err }
