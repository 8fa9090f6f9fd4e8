// Copyright 2026 The Unifile Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package fakes3 provides an in-memory implementation of the S3 API calls
// used by package s3file, for use in tests. Objects live in a single fake
// bucket. Methods not implemented here panic through the embedded nil
// s3iface.S3API.
package fakes3

import (
	"bytes"
	"crypto/md5"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

type object struct {
	data    []byte
	modTime time.Time
	etag    string
}

type upload struct {
	key   string
	parts map[int64][]byte
}

// Client is a fake S3 client backed by process memory. It implements the
// subset of s3iface.S3API that s3file exercises.
type Client struct {
	s3iface.S3API

	bucket string

	// Err, if non-nil, is consulted before every API call. A non-nil return
	// value is handed back to the caller in place of performing the
	// operation. Tests use it to inject transient and permission errors.
	Err func(api string, input interface{}) error

	mu      sync.Mutex
	objects map[string]*object
	uploads map[string]*upload
	nextID  int
}

// NewClient returns an empty fake client serving the given bucket.
func NewClient(bucket string) *Client {
	return &Client{
		bucket:  bucket,
		objects: make(map[string]*object),
		uploads: make(map[string]*upload),
	}
}

// SetObject stores an object directly, bypassing the API.
func (c *Client) SetObject(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setLocked(key, data)
}

func (c *Client) setLocked(key string, data []byte) {
	c.objects[key] = &object{
		data:    data,
		modTime: time.Now(),
		etag:    fmt.Sprintf(`"%x"`, md5.Sum(data)),
	}
}

func (c *Client) intercept(api string, input interface{}, bucket *string) error {
	if c.Err != nil {
		if err := c.Err(api, input); err != nil {
			return err
		}
	}
	return c.checkBucket(bucket)
}

func (c *Client) checkBucket(bucket *string) error {
	if aws.StringValue(bucket) != c.bucket {
		return awserr.NewRequestFailure(
			awserr.New(s3.ErrCodeNoSuchBucket, "no such bucket", nil), 404, "")
	}
	return nil
}

func noSuchKey() error {
	return awserr.NewRequestFailure(awserr.New(s3.ErrCodeNoSuchKey, "no such key", nil), 404, "")
}

func (c *Client) HeadObjectWithContext(_ aws.Context, input *s3.HeadObjectInput, _ ...request.Option) (*s3.HeadObjectOutput, error) {
	if err := c.intercept("HeadObject", input, input.Bucket); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	obj, ok := c.objects[aws.StringValue(input.Key)]
	if !ok {
		return nil, awserr.NewRequestFailure(awserr.New("NotFound", "not found", nil), 404, "")
	}
	return &s3.HeadObjectOutput{
		ContentLength: aws.Int64(int64(len(obj.data))),
		ETag:          aws.String(obj.etag),
		LastModified:  aws.Time(obj.modTime),
	}, nil
}

func (c *Client) GetObjectWithContext(_ aws.Context, input *s3.GetObjectInput, _ ...request.Option) (*s3.GetObjectOutput, error) {
	if err := c.intercept("GetObject", input, input.Bucket); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	obj, ok := c.objects[aws.StringValue(input.Key)]
	if !ok {
		return nil, noSuchKey()
	}
	data := obj.data
	if r := aws.StringValue(input.Range); r != "" {
		start, err := parseRange(r, int64(len(data)))
		if err != nil {
			return nil, err
		}
		data = data[start:]
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentLength: aws.Int64(int64(len(data))),
		ETag:          aws.String(obj.etag),
		LastModified:  aws.Time(obj.modTime),
	}, nil
}

// parseRange handles the "bytes=N-" form that s3file issues.
func parseRange(r string, size int64) (int64, error) {
	const prefix = "bytes="
	if !strings.HasPrefix(r, prefix) || !strings.HasSuffix(r, "-") {
		return 0, awserr.New("InvalidRange", fmt.Sprintf("unsupported range %q", r), nil)
	}
	start, err := strconv.ParseInt(r[len(prefix):len(r)-1], 10, 64)
	if err != nil || start < 0 || start > size {
		return 0, awserr.NewRequestFailure(
			awserr.New("InvalidRange", fmt.Sprintf("range %q out of bounds", r), nil), 416, "")
	}
	return start, nil
}

func (c *Client) PutObjectWithContext(_ aws.Context, input *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	if err := c.intercept("PutObject", input, input.Bucket); err != nil {
		return nil, err
	}
	var data []byte
	if input.Body != nil {
		var err error
		if data, err = io.ReadAll(input.Body); err != nil {
			return nil, err
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setLocked(aws.StringValue(input.Key), data)
	return &s3.PutObjectOutput{ETag: aws.String(c.objects[aws.StringValue(input.Key)].etag)}, nil
}

func (c *Client) DeleteObjectWithContext(_ aws.Context, input *s3.DeleteObjectInput, _ ...request.Option) (*s3.DeleteObjectOutput, error) {
	if err := c.intercept("DeleteObject", input, input.Bucket); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	// S3 delete is idempotent; deleting a missing key succeeds.
	delete(c.objects, aws.StringValue(input.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (c *Client) CreateMultipartUploadWithContext(_ aws.Context, input *s3.CreateMultipartUploadInput, _ ...request.Option) (*s3.CreateMultipartUploadOutput, error) {
	if err := c.intercept("CreateMultipartUpload", input, input.Bucket); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	id := fmt.Sprintf("upload%d", c.nextID)
	c.uploads[id] = &upload{
		key:   aws.StringValue(input.Key),
		parts: make(map[int64][]byte),
	}
	return &s3.CreateMultipartUploadOutput{UploadId: aws.String(id)}, nil
}

func noSuchUpload() error {
	return awserr.NewRequestFailure(
		awserr.New(s3.ErrCodeNoSuchUpload, "no such upload", nil), 404, "")
}

func (c *Client) UploadPartWithContext(_ aws.Context, input *s3.UploadPartInput, _ ...request.Option) (*s3.UploadPartOutput, error) {
	if err := c.intercept("UploadPart", input, input.Bucket); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	u, ok := c.uploads[aws.StringValue(input.UploadId)]
	if !ok {
		return nil, noSuchUpload()
	}
	u.parts[aws.Int64Value(input.PartNumber)] = data
	return &s3.UploadPartOutput{
		ETag: aws.String(fmt.Sprintf(`"%x"`, md5.Sum(data))),
	}, nil
}

func (c *Client) CompleteMultipartUploadWithContext(_ aws.Context, input *s3.CompleteMultipartUploadInput, _ ...request.Option) (*s3.CompleteMultipartUploadOutput, error) {
	if err := c.intercept("CompleteMultipartUpload", input, input.Bucket); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	u, ok := c.uploads[aws.StringValue(input.UploadId)]
	if !ok {
		return nil, noSuchUpload()
	}
	var data []byte
	for _, part := range input.MultipartUpload.Parts {
		p, ok := u.parts[aws.Int64Value(part.PartNumber)]
		if !ok {
			return nil, awserr.New("InvalidPart", "part not uploaded", nil)
		}
		data = append(data, p...)
	}
	c.setLocked(u.key, data)
	delete(c.uploads, aws.StringValue(input.UploadId))
	return &s3.CompleteMultipartUploadOutput{
		ETag: aws.String(c.objects[u.key].etag),
	}, nil
}

func (c *Client) AbortMultipartUploadWithContext(_ aws.Context, input *s3.AbortMultipartUploadInput, _ ...request.Option) (*s3.AbortMultipartUploadOutput, error) {
	if err := c.intercept("AbortMultipartUpload", input, input.Bucket); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.uploads[aws.StringValue(input.UploadId)]; !ok {
		return nil, noSuchUpload()
	}
	delete(c.uploads, aws.StringValue(input.UploadId))
	return &s3.AbortMultipartUploadOutput{}, nil
}

func (c *Client) ListObjectsV2WithContext(_ aws.Context, input *s3.ListObjectsV2Input, _ ...request.Option) (*s3.ListObjectsV2Output, error) {
	if err := c.intercept("ListObjectsV2", input, input.Bucket); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	prefix := aws.StringValue(input.Prefix)
	delimiter := aws.StringValue(input.Delimiter)
	maxKeys := int(aws.Int64Value(input.MaxKeys))
	if maxKeys <= 0 {
		maxKeys = 1000
	}
	keys := make([]string, 0, len(c.objects))
	for key := range c.objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	start := aws.StringValue(input.ContinuationToken)

	out := &s3.ListObjectsV2Output{}
	prefixSeen := map[string]bool{}
	n := 0
	for _, key := range keys {
		if key <= start && start != "" {
			continue
		}
		if n == maxKeys {
			out.IsTruncated = aws.Bool(true)
			break
		}
		if delimiter != "" {
			if i := strings.Index(key[len(prefix):], delimiter); i >= 0 {
				cp := key[:len(prefix)+i+len(delimiter)]
				if !prefixSeen[cp] {
					prefixSeen[cp] = true
					out.CommonPrefixes = append(out.CommonPrefixes,
						&s3.CommonPrefix{Prefix: aws.String(cp)})
					n++
					out.NextContinuationToken = aws.String(key)
				}
				continue
			}
		}
		obj := c.objects[key]
		out.Contents = append(out.Contents, &s3.Object{
			Key:          aws.String(key),
			Size:         aws.Int64(int64(len(obj.data))),
			ETag:         aws.String(obj.etag),
			LastModified: aws.Time(obj.modTime),
		})
		n++
		out.NextContinuationToken = aws.String(key)
	}
	if !aws.BoolValue(out.IsTruncated) {
		out.NextContinuationToken = nil
	}
	return out, nil
}

func (c *Client) ListBucketsWithContext(_ aws.Context, input *s3.ListBucketsInput, _ ...request.Option) (*s3.ListBucketsOutput, error) {
	if c.Err != nil {
		if err := c.Err("ListBuckets", input); err != nil {
			return nil, err
		}
	}
	return &s3.ListBucketsOutput{
		Buckets: []*s3.Bucket{{Name: aws.String(c.bucket)}},
	}, nil
}
