// Copyright 2026 The Unifile Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package s3file

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/unifile/unifile/errors"
	"github.com/unifile/unifile/file"
)

// Stat implements file.Implementation interface.
func (impl *s3Impl) Stat(ctx context.Context, path string, opts ...file.Opts) (file.Info, error) {
	resp := runRequest(ctx, func() response {
		clients, err := impl.provider.Get(ctx, "GetObject", path)
		if err != nil {
			return response{err: err}
		}
		policy := newRetryPolicy(clients, mergeFileOpts(opts))
		info, err := stat(ctx, policy, path)
		if err != nil {
			return response{err: err}
		}
		return response{info: info}
	})
	return resp.info, resp.err
}

func stat(ctx context.Context, policy retryPolicy, path string) (*s3Info, error) {
	_, bucket, key, err := ParseURL(path)
	if err != nil {
		return nil, errors.E(errors.Invalid, "could not parse", path, err)
	}
	for {
		var ids s3RequestIDs
		output, err := policy.client().HeadObjectWithContext(ctx,
			&s3.HeadObjectInput{
				Bucket: aws.String(bucket),
				Key:    aws.String(key),
			},
			ids.captureOption(),
		)
		if policy.shouldRetry(ctx, err, path) {
			continue
		}
		if err != nil {
			return nil, annotate(err, ids, &policy, "s3file.stat", path)
		}
		if output.ETag == nil || *output.ETag == "" {
			return nil, errors.E("s3file.stat: empty ETag", path, errors.NotExist, "awsrequestID:", ids.String())
		}
		if output.ContentLength == nil {
			return nil, errors.E("s3file.stat: nil ContentLength", path, errors.NotExist, "awsrequestID:", ids.String())
		}
		if *output.ContentLength == 0 && strings.HasSuffix(path, "/") {
			// Assume this is a directory marker:
			// https://docs.aws.amazon.com/AmazonS3/latest/user-guide/using-folders.html
			return nil, errors.E("s3file.stat: directory marker at path", path, errors.NotExist, "awsrequestID:", ids.String())
		}
		if output.LastModified == nil {
			return nil, errors.E("s3file.stat: nil LastModified", path, errors.NotExist, "awsrequestID:", ids.String())
		}
		return &s3Info{
			name:    filepath.Base(path),
			size:    *output.ContentLength,
			modTime: *output.LastModified,
			etag:    *output.ETag,
		}, nil
	}
}
