// Copyright 2026 The Unifile Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unifile/unifile/file"
)

// pointConfigAt makes Load read the given config file, or skip file loading
// entirely when the path does not exist.
func pointConfigAt(t *testing.T, path string) {
	t.Setenv("UNIFILE_CONFIG", path)
}

func TestLoadFromEnv(t *testing.T) {
	pointConfigAt(t, filepath.Join(t.TempDir(), "absent.yaml"))
	t.Setenv("AWS_REGION", "eu-west-1")
	t.Setenv("AWS_PROFILE", "ci")
	t.Setenv("MINIO_ENDPOINT", "localhost:9000")
	t.Setenv("MINIO_ACCESS_KEY", "minioadmin")
	t.Setenv("MINIO_SECRET_KEY", "minioadmin")
	t.Setenv("MINIO_INSECURE", "true")
	t.Setenv("R2_ACCOUNT_ID", "abc123")
	t.Setenv("R2_ACCESS_KEY_ID", "rkey")
	t.Setenv("WASABI_REGION", "us-east-1")
	t.Setenv("UNIFILE_DATA_DIR", "/var/data")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "eu-west-1", cfg.AWS.Region)
	assert.Equal(t, "ci", cfg.AWS.Profile)
	assert.Equal(t, "localhost:9000", cfg.Minio.Endpoint)
	assert.Equal(t, "minioadmin", cfg.Minio.AccessKey)
	assert.Equal(t, "minioadmin", cfg.Minio.SecretKey)
	assert.True(t, cfg.Minio.Insecure)
	assert.Equal(t, "abc123", cfg.R2.AccountID)
	assert.Equal(t, "rkey", cfg.R2.AccessKey)
	assert.Equal(t, "us-east-1", cfg.Wasabi.Region)
	assert.Equal(t, "/var/data", cfg.DataDir)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unifile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
dataDir: /data
wasabi:
  region: ap-northeast-1
  accessKey: WAK
  secretKey: WSK
s3compat:
  scheme: ceph
  endpoint: ceph.example.com:7480
  insecure: true
`), 0o600))
	pointConfigAt(t, path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/data", cfg.DataDir)
	assert.Equal(t, "ap-northeast-1", cfg.Wasabi.Region)
	assert.Equal(t, "WAK", cfg.Wasabi.AccessKey)
	assert.Equal(t, "WSK", cfg.Wasabi.SecretKey)
	assert.Equal(t, "ceph", cfg.S3Compat.Scheme)
	assert.Equal(t, "ceph.example.com:7480", cfg.S3Compat.Endpoint)
	assert.True(t, cfg.S3Compat.Insecure)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unifile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
wasabi:
  region: us-east-1
`), 0o600))
	pointConfigAt(t, path)
	t.Setenv("WASABI_REGION", "eu-central-2")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "eu-central-2", cfg.Wasabi.Region)
}

func TestLoadBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unifile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\n:::bad"), 0o600))
	pointConfigAt(t, path)

	_, err := Load()
	require.Error(t, err)
}

func TestRegisterImplementations(t *testing.T) {
	dataDir := t.TempDir()
	pointConfigAt(t, filepath.Join(t.TempDir(), "absent.yaml"))
	t.Setenv("MINIO_ENDPOINT", "localhost:9000")
	t.Setenv("MINIO_ACCESS_KEY", "minioadmin")
	t.Setenv("MINIO_SECRET_KEY", "minioadmin")
	t.Setenv("UNIFILE_DATA_DIR", dataDir)
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, dataDir, cfg.DataDir)

	RegisterImplementations(cfg)
	t.Cleanup(func() { file.SetDataDir("") })
	// Registration is once per process, so a second call must not panic on
	// duplicate schemes.
	RegisterImplementations(cfg)

	require.NotNil(t, file.FindImplementation("s3"))
	require.NotNil(t, file.FindImplementation("minio"))
	assert.Nil(t, file.FindImplementation("wasabi"))

	// Relative local paths now resolve against the data dir.
	ctx := context.Background()
	require.NoError(t, file.WriteFile(ctx, "nested/cfg.txt", []byte("via data dir")))
	data, err := file.ReadFile(ctx, filepath.Join(dataDir, "nested/cfg.txt"))
	require.NoError(t, err)
	assert.Equal(t, "via data dir", string(data))
}
