// Copyright 2026 The Unifile Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package azurefile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"
	"github.com/unifile/unifile/file"
)

// List implements file.Implementation. Recursive listings use the flat
// pager; non-recursive listings use the hierarchy pager, which reports
// blob prefixes as pseudo-directories.
func (impl *azImpl) List(ctx context.Context, dir string, recurse bool) file.Lister {
	cont, key, err := parse(dir)
	if err != nil {
		return &azLister{err: err}
	}
	l := &azLister{
		ctx:       ctx,
		container: cont,
		prefix:    key,
	}
	containerClient := impl.client.ServiceClient().NewContainerClient(cont)
	if recurse {
		l.flat = containerClient.NewListBlobsFlatPager(&container.ListBlobsFlatOptions{Prefix: &key})
	} else {
		l.hier = containerClient.NewListBlobsHierarchyPager("/", &container.ListBlobsHierarchyOptions{Prefix: &key})
	}
	return l
}

type azEntry struct {
	key     string
	isDir   bool
	size    int64
	modTime time.Time
	etag    string
}

// azLister implements the file.Lister interface by draining one of the two
// pagers page by page.
type azLister struct {
	ctx       context.Context
	container string
	prefix    string
	flat      *runtime.Pager[container.ListBlobsFlatResponse]
	hier      *runtime.Pager[container.ListBlobsHierarchyResponse]

	entries []azEntry
	entry   azEntry
	err     error
	done    bool
}

// Scan implements Lister.Scan.
func (l *azLister) Scan() bool {
	for {
		if l.err != nil {
			return false
		}
		if len(l.entries) > 0 {
			l.entry = l.entries[0]
			l.entries = l.entries[1:]
			return true
		}
		if l.done {
			return false
		}
		l.fetchPage()
	}
}

func (l *azLister) fetchPage() {
	if l.flat != nil {
		if !l.flat.More() {
			l.done = true
			return
		}
		resp, err := l.flat.NextPage(l.ctx)
		if err != nil {
			l.err = translateError(err, "azurefile.list", l.dirPath())
			return
		}
		for _, item := range resp.Segment.BlobItems {
			l.addBlob(item.Name, item.Properties)
		}
		return
	}
	if !l.hier.More() {
		l.done = true
		return
	}
	resp, err := l.hier.NextPage(l.ctx)
	if err != nil {
		l.err = translateError(err, "azurefile.list", l.dirPath())
		return
	}
	for _, item := range resp.Segment.BlobItems {
		l.addBlob(item.Name, item.Properties)
	}
	for _, p := range resp.Segment.BlobPrefixes {
		if p.Name == nil {
			continue
		}
		key := strings.TrimSuffix(*p.Name, "/")
		if !l.keepObj(key) {
			continue
		}
		l.entries = append(l.entries, azEntry{key: key, isDir: true})
	}
}

func (l *azLister) addBlob(name *string, props *container.BlobProperties) {
	if name == nil {
		return
	}
	if !l.keepObj(*name) {
		return
	}
	e := azEntry{key: *name}
	if props != nil {
		if props.ContentLength != nil {
			e.size = *props.ContentLength
		}
		if props.LastModified != nil {
			e.modTime = *props.LastModified
		}
		if props.ETag != nil {
			e.etag = string(*props.ETag)
		}
	}
	l.entries = append(l.entries, e)
}

// keepObj skips keys whose path component isn't exactly equal to l.prefix.
func (l *azLister) keepObj(objPath string) bool {
	ll := len(l.prefix)
	if ll == 0 || len(objPath) <= ll {
		return true
	}
	if l.prefix[ll-1] == '/' {
		ll--
	}
	return objPath[ll] == '/'
}

func (l *azLister) dirPath() string {
	return fmt.Sprintf("%s://%s/%s", Scheme, l.container, l.prefix)
}

// Path implements Lister.Path.
func (l *azLister) Path() string {
	return fmt.Sprintf("%s://%s/%s", Scheme, l.container, l.entry.key)
}

// Info implements Lister.Info. It returns nil for a directory.
func (l *azLister) Info() file.Info {
	if l.entry.isDir {
		return nil
	}
	return &azInfo{
		name:    file.Base(l.Path()),
		size:    l.entry.size,
		modTime: l.entry.modTime,
		etag:    l.entry.etag,
	}
}

// IsDir implements Lister.IsDir.
func (l *azLister) IsDir() bool { return l.entry.isDir }

// Err returns the first error that occurred while scanning.
func (l *azLister) Err() error { return l.err }
