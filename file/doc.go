// Copyright 2026 The Unifile Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package file provides basic file operations across multiple storage
// types. It is designed for applications that operate uniformly on local
// files and objects held in cloud stores such as S3, Google Cloud Storage
// and Azure Blob Storage.
//
// # Overview
//
// This package is designed with the following goals:
//
// - Support popular storage systems, especially S3-compatible object
// stores and the local file system.
//
// - Define operation semantics that are implementable on all the supported
// systems, yet practical and usable.
//
// - Extensible. Provide leeway to do things like registering new storage
// types or credential plumbing.
//
// This package defines two key interfaces, Implementation and File.
//
// - Implementation provides filesystem operations, such as Open, Remove,
// and List (directory walking).
//
// - File implements operations on a file. It is created by
// Implementation.{Open,Create} calls. File is similar to Go's os.File
// object but provides limited functionality.
//
// # Reading and writing files
//
// The following snippet shows registering an S3 implementation, then
// writing and reading an S3 file.
//
//	import (
//	 "context"
//	 "io"
//
//	 "github.com/unifile/unifile/file"
//	 "github.com/unifile/unifile/file/s3file"  // file.Implementation for S3
//	 "github.com/aws/aws-sdk-go/aws/session"
//	)
//
//	func init() {
//	  file.RegisterImplementation("s3", func() file.Implementation {
//	    return s3file.NewImplementation(
//	      s3file.NewDefaultProvider(session.Options{}), s3file.Options{})
//	  })
//	}
//
//	// Caution: this code ignores all errors.
//	func WriteTest() {
//	  ctx := context.Background()
//	  f, err := file.Create(ctx, "s3://somebucket/tmp/test.txt")
//	  n, err := f.Writer(ctx).Write([]byte("Hello"))
//	  err = f.Close(ctx)
//	}
//
//	func ReadTest() {
//	  ctx := context.Background()
//	  f, err := file.Open(ctx, "s3://somebucket/tmp/test.txt")
//	  data, err := io.ReadAll(f.Reader(ctx))
//	  err = f.Close(ctx)
//	}
//
// To open a file for reading or writing, run file.Open("s3://bucket/key")
// or file.Create("s3://bucket/key"). A File object does not implement an
// io.Reader or io.Writer directly. Instead, you must call File.Reader or
// File.Writer to start reading or writing. These methods are split from
// the File itself so that an application can pass different contexts to
// different I/O operations.
//
// # File-system operations
//
// The file package provides functions similar to those in the standard os
// package. For example, file.Remove("s3://bucket/key") removes a file, and
// file.Stat("s3://bucket/key") provides metadata about the file.
//
// # Pathname utility functions
//
// The file package also provides functions that are similar to those in
// the standard filepath package. Functions file.Base, file.Dir, file.Join
// work just like filepath.{Base,Dir,Join}, except that they handle URL
// pathnames properly. For example, file.Join("s3://foo", "bar") will
// return "s3://foo/bar", whereas filepath.Join("s3://foo", "bar") would
// return "s3:/foo/bar".
//
// # Registering a storage implementation
//
// Function RegisterImplementation associates an implementation to a scheme
// ("s3", "gs", "az", "minio", etc). A local file system implementation is
// automatically available without any explicit registration.
// RegisterImplementation is usually invoked when a process starts up, for
// all the supported storage types; the config package does this from
// environment variables.
//
// # Differences from the os package
//
// The file package is similar to Go's standard os package. The differences
// are the following.
//
// - The file package focuses on providing a file-like API for object
// storage systems, such as S3 or GCS.
//
// - Mutations to a File are restricted to whole-file writes. There is no
// option to overwrite a part of an existing file.
//
// - All the operations take a context parameter.
//
// - file.File does not implement io.Reader nor io.Writer directly. One
// must call File.Reader or File.Writer methods to obtain a reader or
// writer object.
//
// - Directories are simulated in a best-effort manner on implementations
// that do not support directories as first-class entities, such as S3.
// Lister provides IsDir() for the current path. Info() returns nil for
// directories.
//
// # Concurrency
//
// The Implementation and File provide open-close consistency. More
// specifically, this package linearizes fileops, with a fileop defined in
// the following way: fileop is a set of operations, starting from
// Implementation.{Open,Create}, followed by read/write/stat operations on
// the file, followed by File.Close. Operations such as
// Implementation.{Stat,Remove,List} and Lister.Scan form a singleton
// fileop.
package file
