// Copyright 2026 The Unifile Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package azurefile implements the file.Implementation interface for Azure
// Blob Storage. Paths are of form "az://container/blob".
//
// Readers carry the ETag observed at Open as an If-Match condition on every
// download, so a concurrent overwrite surfaces as an errors.Precondition
// failure.
package azurefile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/sas"
	"github.com/unifile/unifile/errors"
	"github.com/unifile/unifile/file"
)

// Scheme is the URL scheme served by this package.
const Scheme = "az"

// NewImplementation creates an Implementation on top of the given client.
func NewImplementation(client *azblob.Client) file.Implementation {
	return &azImpl{client: client}
}

// NewFromConnectionString creates an Implementation from an Azure storage
// connection string, typically the value of AZURE_STORAGE_CONNECTION_STRING.
func NewFromConnectionString(connStr string) (file.Implementation, error) {
	client, err := azblob.NewClientFromConnectionString(connStr, nil)
	if err != nil {
		return nil, errors.E(err, "azurefile.new")
	}
	return &azImpl{client: client}, nil
}

type azImpl struct {
	client *azblob.Client
}

// String implements file.Implementation.
func (impl *azImpl) String() string { return Scheme }

func parse(path string) (container, blob string, err error) {
	scheme, suffix, err := file.ParsePath(path)
	if err != nil {
		return "", "", err
	}
	if scheme != "" && scheme != Scheme {
		return "", "", errors.E(errors.Invalid, fmt.Sprintf("%s: not a %s:// path", path, Scheme))
	}
	parts := strings.SplitN(suffix, "/", 2)
	if len(parts) == 1 {
		return parts[0], "", nil
	}
	return parts[0], parts[1], nil
}

// Open implements file.Implementation.
func (impl *azImpl) Open(ctx context.Context, path string, opts ...file.Opts) (file.File, error) {
	container, key, err := parse(path)
	if err != nil {
		return nil, err
	}
	info, etag, err := impl.getProperties(ctx, path, container, key)
	if err != nil {
		return nil, err
	}
	return &azFile{
		impl:      impl,
		name:      path,
		container: container,
		key:       key,
		mode:      readonly,
		info:      info,
		etag:      etag,
	}, nil
}

// Create implements file.Implementation. Writes stream to the service
// through a pipe; the blob becomes visible when Close commits the upload.
func (impl *azImpl) Create(ctx context.Context, path string, opts ...file.Opts) (file.File, error) {
	container, key, err := parse(path)
	if err != nil {
		return nil, err
	}
	f := &azFile{
		impl:      impl,
		name:      path,
		container: container,
		key:       key,
		mode:      writeonly,
	}
	f.startUpload(ctx)
	return f, nil
}

// Stat implements file.Implementation.
func (impl *azImpl) Stat(ctx context.Context, path string, opts ...file.Opts) (file.Info, error) {
	container, key, err := parse(path)
	if err != nil {
		return nil, err
	}
	info, _, err := impl.getProperties(ctx, path, container, key)
	return info, err
}

func (impl *azImpl) getProperties(ctx context.Context, path, container, key string) (*azInfo, string, error) {
	if key == "" {
		return nil, "", errors.E(errors.Invalid, fmt.Sprintf("stat %v: path does not name a blob", path))
	}
	blobClient := impl.client.ServiceClient().NewContainerClient(container).NewBlobClient(key)
	props, err := blobClient.GetProperties(ctx, nil)
	if err != nil {
		return nil, "", translateError(err, "azurefile.stat", path)
	}
	var size int64
	if props.ContentLength != nil {
		size = *props.ContentLength
	}
	var modTime time.Time
	if props.LastModified != nil {
		modTime = *props.LastModified
	}
	etag := ""
	if props.ETag != nil {
		etag = string(*props.ETag)
	}
	return &azInfo{
		name:    file.Base(path),
		size:    size,
		modTime: modTime,
		etag:    etag,
	}, etag, nil
}

// Remove implements file.Implementation.
func (impl *azImpl) Remove(ctx context.Context, path string) error {
	container, key, err := parse(path)
	if err != nil {
		return err
	}
	if _, err := impl.client.DeleteBlob(ctx, container, key, nil); err != nil {
		return translateError(err, "azurefile.remove", path)
	}
	return nil
}

// Presign implements file.Implementation. SAS URLs require the client to
// carry shared-key credentials; other credential types yield NotSupported.
func (impl *azImpl) Presign(ctx context.Context, path, method string, expiry time.Duration) (string, error) {
	container, key, err := parse(path)
	if err != nil {
		return "", err
	}
	perms := sas.BlobPermissions{}
	switch method {
	case "GET":
		perms.Read = true
	case "PUT":
		perms.Create = true
		perms.Write = true
	case "DELETE":
		perms.Delete = true
	default:
		return "", errors.E(errors.NotSupported, fmt.Sprintf("presign %v: unsupported method %s", path, method))
	}
	blobClient := impl.client.ServiceClient().NewContainerClient(container).NewBlobClient(key)
	url, err := blobClient.GetSASURL(perms, time.Now().Add(expiry), nil)
	if err != nil {
		return "", errors.E(errors.NotSupported, err, fmt.Sprintf("presign %v", path))
	}
	return url, nil
}

// azInfo implements the file.Info interface.
type azInfo struct {
	name    string
	size    int64
	modTime time.Time
	etag    string
}

func (i *azInfo) Name() string       { return i.name }
func (i *azInfo) Size() int64        { return i.size }
func (i *azInfo) ModTime() time.Time { return i.modTime }
func (i *azInfo) ETag() string       { return i.etag }

// translateError maps service errors into the errors.Kind taxonomy.
func translateError(err error, args ...interface{}) error {
	kind := errors.Other
	switch {
	case bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound, bloberror.ResourceNotFound):
		kind = errors.NotExist
	case bloberror.HasCode(err, bloberror.AuthorizationFailure, bloberror.AuthorizationPermissionMismatch, bloberror.InsufficientAccountPermissions):
		kind = errors.NotAllowed
	case bloberror.HasCode(err, bloberror.ConditionNotMet):
		kind = errors.Precondition
	case bloberror.HasCode(err, bloberror.ServerBusy, bloberror.InternalError, bloberror.OperationTimedOut):
		kind = errors.Unavailable
	case bloberror.HasCode(err, bloberror.BlobAlreadyExists, bloberror.ContainerAlreadyExists):
		kind = errors.Exists
	}
	return errors.E(append([]interface{}{err, kind}, args...)...)
}
