// Copyright 2026 The Unifile Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package s3file

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/unifile/unifile/file"
	"github.com/unifile/unifile/log"
	"github.com/unifile/unifile/must"
)

// List implements file.Implementation interface.
func (impl *s3Impl) List(ctx context.Context, dir string, recurse bool) file.Lister {
	scheme, bucket, key, err := ParseURL(dir)
	if err != nil {
		return &s3Lister{ctx: ctx, dir: dir, err: err}
	}
	if bucket == "" {
		if recurse {
			return &s3Lister{ctx: ctx, dir: dir,
				err: fmt.Errorf("list %s: ListBuckets cannot be combined with the recursive option", dir)}
		}
		clients, clientsErr := impl.provider.Get(ctx, "ListAllMyBuckets", dir)
		if clientsErr != nil {
			return &s3Lister{ctx: ctx, dir: dir, err: clientsErr}
		}
		return &s3BucketLister{
			ctx:    ctx,
			scheme: scheme,
			policy: newRetryPolicy(clients, file.Opts{}),
		}
	}
	clients, err := impl.provider.Get(ctx, "ListBucket", dir)
	if err != nil {
		return &s3Lister{ctx: ctx, dir: dir, err: err}
	}
	return &s3Lister{
		ctx:     ctx,
		policy:  newRetryPolicy(clients, file.Opts{}),
		dir:     dir,
		scheme:  scheme,
		bucket:  bucket,
		prefix:  key,
		recurse: recurse,
	}
}

type s3Obj struct {
	obj *s3.Object
	cp  *string // CommonPrefix
}

type s3Lister struct {
	ctx                            context.Context
	policy                         retryPolicy
	dir, scheme, bucket, prefix    string
	object                         s3Obj
	objects                        []s3Obj
	token                          *string
	err                            error
	done                           bool
	recurse                        bool

	// consecutiveEmptyResponses counts how many times S3's
	// ListObjectsV2WithContext returned 0 records (either contents or common
	// prefixes) consecutively. Many empty responses would cause Scan to appear
	// to hang, so we log a warning.
	consecutiveEmptyResponses int
}

// Scan implements Lister.Scan.
func (l *s3Lister) Scan() bool {
	for {
		if l.err != nil {
			return false
		}
		if len(l.objects) > 0 {
			l.object, l.objects = l.objects[0], l.objects[1:]
			return true
		}
		if l.done {
			return false
		}

		var prefix string
		if l.showDirs() && !strings.HasSuffix(l.prefix, pathSeparator) && l.prefix != "" {
			prefix = l.prefix + pathSeparator
		} else {
			prefix = l.prefix
		}

		req := &s3.ListObjectsV2Input{
			Bucket:            aws.String(l.bucket),
			ContinuationToken: l.token,
			Prefix:            aws.String(prefix),
		}
		if l.showDirs() {
			req.Delimiter = aws.String(pathSeparator)
		}
		var ids s3RequestIDs
		res, err := l.policy.client().ListObjectsV2WithContext(l.ctx, req, ids.captureOption())
		if l.policy.shouldRetry(l.ctx, err, l.dir) {
			continue
		}
		if err != nil {
			l.err = annotate(err, ids, &l.policy, fmt.Sprintf("s3file.list s3://%s/%s", l.bucket, l.prefix))
			return false
		}
		l.token = res.NextContinuationToken
		l.done = !aws.BoolValue(res.IsTruncated)

		nRecords := len(res.Contents)
		if l.showDirs() {
			nRecords += len(res.CommonPrefixes)
		}
		if nRecords > 0 {
			l.consecutiveEmptyResponses = 0
		} else {
			l.consecutiveEmptyResponses++
			if n := l.consecutiveEmptyResponses; n > 7 && n&(n-1) == 0 {
				log.Printf("s3file.list.scan: warning: S3 returned an empty response %d consecutive times", n)
			}
		}

		l.objects = make([]s3Obj, 0, nRecords)
		for _, obj := range res.Contents {
			if !l.keepObj(*obj.Key) {
				continue
			}
			l.objects = append(l.objects, s3Obj{obj: obj})
		}
		if l.showDirs() { // add the pseudo Dirs
			for _, cp := range res.CommonPrefixes {
				if !l.keepObj(*cp.Prefix) {
					continue
				}
				// Follow the Linux convention that directories do not come back
				// with a trailing / when read by ListDir.
				pseudoDirName := *cp.Prefix
				if strings.HasSuffix(pseudoDirName, pathSeparator) {
					pseudoDirName = pseudoDirName[:len(pseudoDirName)-1]
				}
				l.objects = append(l.objects, s3Obj{cp: aws.String(pseudoDirName)})
			}
		}
	}
}

// keepObj skips keys whose path component isn't exactly equal to l.prefix.
// For example, if l.prefix == "foo/bar", then we yield "foo/bar" and
// "foo/bar/baz", but not "foo/barbaz".
func (l *s3Lister) keepObj(objPath string) bool {
	ll := len(l.prefix)
	must.Truef(l.prefix == objPath[:ll], "%s, %s", l.prefix, objPath)
	if ll > 0 && len(objPath) > ll {
		if l.prefix[ll-1] == '/' {
			// Treat prefix "foo/bar/" as "foo/bar".
			ll--
		}
		if objPath[ll] != '/' {
			return false
		}
	}
	return true
}

// Path implements Lister.Path.
func (l *s3Lister) Path() string {
	if l.object.obj != nil {
		return fmt.Sprintf("%s://%s/%s", l.scheme, l.bucket, *l.object.obj.Key)
	}
	return fmt.Sprintf("%s://%s/%s", l.scheme, l.bucket, *l.object.cp)
}

// Info implements Lister.Info. It returns nil for a directory.
func (l *s3Lister) Info() file.Info {
	if obj := l.object.obj; obj != nil {
		return &s3Info{
			name:    file.Base(l.Path()),
			size:    *obj.Size,
			modTime: *obj.LastModified,
			etag:    *obj.ETag,
		}
	}
	return nil
}

// IsDir implements Lister.IsDir.
func (l *s3Lister) IsDir() bool {
	return l.object.cp != nil
}

// Err returns the first error that occurred while scanning.
func (l *s3Lister) Err() error {
	return l.err
}

// showDirs controls whether CommonPrefixes are returned during a scan.
func (l *s3Lister) showDirs() bool {
	return !l.recurse
}

type s3BucketLister struct {
	ctx     context.Context
	policy  retryPolicy
	scheme  string
	err     error
	listed  bool
	bucket  string
	buckets []string
}

func (l *s3BucketLister) Scan() bool {
	if !l.listed {
		for {
			var ids s3RequestIDs
			res, err := l.policy.client().ListBucketsWithContext(l.ctx, &s3.ListBucketsInput{},
				ids.captureOption())
			if l.policy.shouldRetry(l.ctx, err, "listbuckets") {
				continue
			}
			if err != nil {
				l.err = annotate(err, ids, &l.policy, "s3file.listbuckets")
				return false
			}
			for _, bucket := range res.Buckets {
				l.buckets = append(l.buckets, *bucket.Name)
			}
			break
		}
		l.listed = true
	}
	if len(l.buckets) == 0 {
		return false
	}
	l.bucket, l.buckets = l.buckets[0], l.buckets[1:]
	return true
}

func (l *s3BucketLister) Path() string {
	return fmt.Sprintf("%s://%s", l.scheme, l.bucket)
}

func (l *s3BucketLister) Info() file.Info { return nil }

func (l *s3BucketLister) IsDir() bool {
	return true
}

// Err returns an error, if any.
func (l *s3BucketLister) Err() error {
	return l.err
}
