// Copyright 2026 The Unifile Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package fileio classifies file names: it maps filename suffixes to
// file types for the codec and compress packages, and path prefixes to
// the storage API that serves them.
package fileio

import (
	"regexp"
	"strings"
)

// FileType represents the type of a file based on its filename.
type FileType int

const (
	// Other represents a filetype other than the ones supported here.
	Other FileType = iota
	// Gzip file.
	Gzip
	// Bzip2 file.
	Bzip2
	// Zstd format.
	// https://facebook.github.io/zstd/
	Zstd
	// JSON text file.
	JSON
	// JSONLines file: one JSON value per line.
	JSONLines
	// YAML text file.
	YAML
	// CSV file.
	CSV
	// TSV file: CSV with tab delimiters.
	TSV
	// Text is a plain text file.
	Text
	// Gob is a Go gob-encoded binary file.
	Gob
	// Foreign is a format produced by another language's runtime
	// (Python pickle, PyTorch checkpoints, TFRecords). Recognized so
	// that callers get a useful error rather than garbage.
	Foreign
)

var lookup = map[string]FileType{
	".gz":        Gzip,
	".bz2":       Bzip2,
	".zst":       Zstd,
	".json":      JSON,
	".jsonl":     JSONLines,
	".ndjson":    JSONLines,
	".yaml":      YAML,
	".yml":       YAML,
	".csv":       CSV,
	".tsv":       TSV,
	".txt":       Text,
	".text":      Text,
	".gob":       Gob,
	".pkl":       Foreign,
	".pickle":    Foreign,
	".pt":        Foreign,
	".tfrecords": Foreign,
}

// StorageAPI represents the storage API required to access a file.
type StorageAPI int

const (
	// LocalAPI represents a local filesystem accessible via a unix/posix
	// API and hence the io/os packages.
	LocalAPI StorageAPI = iota
	// S3API represents an Amazon S3 or S3-compatible API.
	S3API
	// GSAPI represents the Google Cloud Storage API.
	GSAPI
	// AzureAPI represents the Azure Blob Storage API.
	AzureAPI
)

var apiPrefixes = map[string]StorageAPI{
	"s3://":     S3API,
	"minio://":  S3API,
	"r2://":     S3API,
	"wasabi://": S3API,
	"gs://":     GSAPI,
	"az://":     AzureAPI,
}

// DetermineAPI determines the storage API that stores the file referred
// to by pathname.
func DetermineAPI(pathname string) StorageAPI {
	for prefix, api := range apiPrefixes {
		if strings.HasPrefix(pathname, prefix) {
			return api
		}
	}
	return LocalAPI
}

// DetermineType determines the type of the file given its filename.
func DetermineType(filename string) FileType {
	idx := strings.LastIndexByte(filename, '.')
	if idx < 0 {
		return Other
	}
	suffix := filename[idx:]
	return lookup[suffix]
}

// PayloadType determines the type of the file after stripping a
// trailing compression suffix, so that "events.jsonl.gz" is classified
// as JSONLines.
func PayloadType(filename string) FileType {
	switch DetermineType(filename) {
	case Gzip, Bzip2, Zstd:
		idx := strings.LastIndexByte(filename, '.')
		return DetermineType(filename[:idx])
	default:
		return DetermineType(filename)
	}
}

var canonicalSuffix = map[FileType]string{
	Gzip:      ".gz",
	Bzip2:     ".bz2",
	Zstd:      ".zst",
	JSON:      ".json",
	JSONLines: ".jsonl",
	YAML:      ".yaml",
	CSV:       ".csv",
	TSV:       ".tsv",
	Text:      ".txt",
	Gob:       ".gob",
}

// FileSuffix returns the canonical filename suffix associated with the
// specified FileType.
func FileSuffix(typ FileType) string {
	return canonicalSuffix[typ]
}

// IsCompressed returns true if the filetype is a compression format.
func IsCompressed(ft FileType) bool {
	switch ft {
	case Gzip, Bzip2, Zstd:
		return true
	}
	return false
}

var (
	s3re0 = regexp.MustCompile("^s3://[^/]+.*$")
	s3re1 = regexp.MustCompile("^s3:/*(.*)$")
	s3re2 = regexp.MustCompile("^s:/+(.*)$")
	s3re3 = regexp.MustCompile("^s3/+(.*)$")
)

// SpellCorrectS3 returns true if the path looks like a misspelled S3
// path, along with the corrected s3://<path>. It corrects common
// misspellings such as:
//
//	s3:///<path>
//	s3:<path>
//	s3:/<path>
//	s://<path>
//	s:/<path>
//	s3/<path>
func SpellCorrectS3(s3path string) (StorageAPI, bool, string) {
	if s3path == "s3://" || s3re0.MatchString(s3path) {
		return S3API, false, s3path
	}
	if strings.HasPrefix(s3path, "s3:") {
		fixed := s3re1.FindStringSubmatch(s3path)
		return S3API, true, "s3://" + fixed[1]
	}
	if strings.HasPrefix(s3path, "s:") {
		fixed := s3re2.FindStringSubmatch(s3path)
		return S3API, true, "s3://" + fixed[1]
	}
	if strings.HasPrefix(s3path, "s3/") {
		fixed := s3re3.FindStringSubmatch(s3path)
		return S3API, true, "s3://" + fixed[1]
	}
	return LocalAPI, false, s3path
}
