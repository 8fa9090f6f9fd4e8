// Copyright 2026 The Unifile Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package config

import (
	"context"
	"sync"
	"time"

	"cloud.google.com/go/storage"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/unifile/unifile/errors"
	"github.com/unifile/unifile/file"
	"github.com/unifile/unifile/file/azurefile"
	"github.com/unifile/unifile/file/gsfile"
	"github.com/unifile/unifile/file/miniofile"
	"github.com/unifile/unifile/file/s3file"
	"google.golang.org/api/option"
)

var registerOnce sync.Once

// RegisterImplementations wires the configured backends into the file
// package registry. The s3:// and gs:// schemes are always registered, since
// their SDKs locate credentials on their own; the remaining schemes are
// registered only when the configuration names an endpoint or connection
// string for them.
//
// Registration happens at most once per process; subsequent calls are
// no-ops. Client construction is deferred to the first use of each scheme,
// so a misconfigured backend surfaces as an error on first access, not here.
//
// A non-empty DataDir is applied on every call: relative local paths are
// resolved against it from then on.
func RegisterImplementations(cfg Config) {
	if cfg.DataDir != "" {
		file.SetDataDir(cfg.DataDir)
	}
	registerOnce.Do(func() { registerImplementations(cfg) })
}

func registerImplementations(cfg Config) {
	file.RegisterImplementation(s3file.Scheme, func() file.Implementation {
		opts := session.Options{SharedConfigState: session.SharedConfigEnable}
		if cfg.AWS.Region != "" {
			opts.Config = aws.Config{Region: aws.String(cfg.AWS.Region)}
		}
		if cfg.AWS.Profile != "" {
			opts.Profile = cfg.AWS.Profile
		}
		return s3file.NewImplementation(s3file.NewDefaultProvider(opts), s3file.Options{})
	})
	file.RegisterImplementation(gsfile.Scheme, func() file.Implementation {
		var copts []option.ClientOption
		if cfg.Google.CredentialsFile != "" {
			copts = append(copts, option.WithCredentialsFile(cfg.Google.CredentialsFile))
		}
		client, err := storage.NewClient(context.Background(), copts...)
		if err != nil {
			return errorImpl{gsfile.Scheme, errors.E(err, "gs: creating storage client")}
		}
		return gsfile.NewImplementation(client)
	})
	if cfg.Azure.ConnectionString != "" {
		connStr := cfg.Azure.ConnectionString
		file.RegisterImplementation(azurefile.Scheme, func() file.Implementation {
			impl, err := azurefile.NewFromConnectionString(connStr)
			if err != nil {
				return errorImpl{azurefile.Scheme, errors.E(err, "az: creating blob client")}
			}
			return impl
		})
	}
	if cfg.Minio.Endpoint != "" {
		registerCompat("minio", miniofile.Config(cfg.Minio))
	}
	if cfg.R2.AccountID != "" {
		registerCompat("r2", miniofile.Config{
			Endpoint:  miniofile.R2Endpoint(cfg.R2.AccountID),
			AccessKey: cfg.R2.AccessKey,
			SecretKey: cfg.R2.SecretKey,
		})
	}
	if cfg.Wasabi.Region != "" {
		registerCompat("wasabi", miniofile.Config{
			Endpoint:  miniofile.WasabiEndpoint(cfg.Wasabi.Region),
			AccessKey: cfg.Wasabi.AccessKey,
			SecretKey: cfg.Wasabi.SecretKey,
			Region:    cfg.Wasabi.Region,
		})
	}
	if cfg.S3Compat.Scheme != "" && cfg.S3Compat.Endpoint != "" {
		registerCompat(cfg.S3Compat.Scheme, miniofile.Config{
			Endpoint:  cfg.S3Compat.Endpoint,
			AccessKey: cfg.S3Compat.AccessKey,
			SecretKey: cfg.S3Compat.SecretKey,
			Region:    cfg.S3Compat.Region,
			Insecure:  cfg.S3Compat.Insecure,
		})
	}
}

func registerCompat(scheme string, mcfg miniofile.Config) {
	file.RegisterImplementation(scheme, func() file.Implementation {
		impl, err := miniofile.NewImplementation(scheme, mcfg)
		if err != nil {
			return errorImpl{scheme, errors.E(err, scheme+": creating client")}
		}
		return impl
	})
}

// errorImpl reports a client construction error on every operation.
type errorImpl struct {
	scheme string
	err    error
}

func (e errorImpl) String() string { return e.scheme }

func (e errorImpl) Open(context.Context, string, ...file.Opts) (file.File, error) {
	return nil, e.err
}

func (e errorImpl) Create(context.Context, string, ...file.Opts) (file.File, error) {
	return nil, e.err
}

func (e errorImpl) List(context.Context, string, bool) file.Lister {
	return file.NewErrorLister(e.err)
}

func (e errorImpl) Stat(context.Context, string, ...file.Opts) (file.Info, error) {
	return nil, e.err
}

func (e errorImpl) Remove(context.Context, string) error { return e.err }

func (e errorImpl) Presign(context.Context, string, string, time.Duration) (string, error) {
	return "", e.err
}
