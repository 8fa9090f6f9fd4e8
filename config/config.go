// Copyright 2026 The Unifile Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package config loads provider settings from the environment and an
// optional YAML config file, and registers the configured backends with the
// file package registry.
//
// Settings are read from the conventional provider environment variables
// (AWS_*, GOOGLE_APPLICATION_CREDENTIALS, AZURE_STORAGE_CONNECTION_STRING,
// MINIO_*, R2_*, WASABI_*, S3_COMPAT_*) plus UNIFILE_* for unifile's own
// knobs. A config file named by $UNIFILE_CONFIG, or ~/.unifile.yaml if
// present, provides the same keys in YAML form; environment variables win.
package config

import (
	"os"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Config carries the settings for every supported backend.
type Config struct {
	// DataDir is the default directory for relative local paths. Empty
	// means the process working directory.
	DataDir string `mapstructure:"dataDir" yaml:"dataDir"`

	AWS      AWS      `mapstructure:"aws" yaml:"aws"`
	Google   Google   `mapstructure:"google" yaml:"google"`
	Azure    Azure    `mapstructure:"azure" yaml:"azure"`
	Minio    Endpoint `mapstructure:"minio" yaml:"minio"`
	R2       R2       `mapstructure:"r2" yaml:"r2"`
	Wasabi   Wasabi   `mapstructure:"wasabi" yaml:"wasabi"`
	S3Compat Compat   `mapstructure:"s3compat" yaml:"s3compat"`
}

// AWS configures the s3:// backend.
type AWS struct {
	Region  string `mapstructure:"region" yaml:"region"`
	Profile string `mapstructure:"profile" yaml:"profile"`
}

// Google configures the gs:// backend.
type Google struct {
	CredentialsFile string `mapstructure:"credentials" yaml:"credentials"`
}

// Azure configures the az:// backend.
type Azure struct {
	ConnectionString string `mapstructure:"connectionString" yaml:"connectionString"`
}

// Endpoint configures an S3-compatible endpoint such as minio://.
type Endpoint struct {
	Endpoint  string `mapstructure:"endpoint" yaml:"endpoint"`
	AccessKey string `mapstructure:"accessKey" yaml:"accessKey"`
	SecretKey string `mapstructure:"secretKey" yaml:"secretKey"`
	Region    string `mapstructure:"region" yaml:"region"`
	Insecure  bool   `mapstructure:"insecure" yaml:"insecure"`
}

// R2 configures the r2:// backend.
type R2 struct {
	AccountID string `mapstructure:"accountId" yaml:"accountId"`
	AccessKey string `mapstructure:"accessKey" yaml:"accessKey"`
	SecretKey string `mapstructure:"secretKey" yaml:"secretKey"`
}

// Wasabi configures the wasabi:// backend.
type Wasabi struct {
	Region    string `mapstructure:"region" yaml:"region"`
	AccessKey string `mapstructure:"accessKey" yaml:"accessKey"`
	SecretKey string `mapstructure:"secretKey" yaml:"secretKey"`
}

// Compat configures an arbitrary S3-compatible endpoint under a caller
// chosen scheme.
type Compat struct {
	Scheme    string `mapstructure:"scheme" yaml:"scheme"`
	Endpoint  string `mapstructure:"endpoint" yaml:"endpoint"`
	AccessKey string `mapstructure:"accessKey" yaml:"accessKey"`
	SecretKey string `mapstructure:"secretKey" yaml:"secretKey"`
	Region    string `mapstructure:"region" yaml:"region"`
	Insecure  bool   `mapstructure:"insecure" yaml:"insecure"`
}

// envBindings maps config keys to the environment variables that populate
// them.
var envBindings = map[string]string{
	"dataDir":                "UNIFILE_DATA_DIR",
	"aws.region":             "AWS_REGION",
	"aws.profile":            "AWS_PROFILE",
	"google.credentials":     "GOOGLE_APPLICATION_CREDENTIALS",
	"azure.connectionString": "AZURE_STORAGE_CONNECTION_STRING",
	"minio.endpoint":         "MINIO_ENDPOINT",
	"minio.accessKey":        "MINIO_ACCESS_KEY",
	"minio.secretKey":        "MINIO_SECRET_KEY",
	"minio.region":           "MINIO_REGION",
	"minio.insecure":         "MINIO_INSECURE",
	"r2.accountId":           "R2_ACCOUNT_ID",
	"r2.accessKey":           "R2_ACCESS_KEY_ID",
	"r2.secretKey":           "R2_SECRET_ACCESS_KEY",
	"wasabi.region":          "WASABI_REGION",
	"wasabi.accessKey":       "WASABI_ACCESS_KEY_ID",
	"wasabi.secretKey":       "WASABI_SECRET_ACCESS_KEY",
	"s3compat.scheme":        "S3_COMPAT_SCHEME",
	"s3compat.endpoint":      "S3_COMPAT_ENDPOINT",
	"s3compat.accessKey":     "S3_COMPAT_ACCESS_KEY",
	"s3compat.secretKey":     "S3_COMPAT_SECRET_KEY",
	"s3compat.region":        "S3_COMPAT_REGION",
	"s3compat.insecure":      "S3_COMPAT_INSECURE",
}

// Load reads the configuration from the environment and, if present, the
// YAML config file.
func Load() (Config, error) {
	return load(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	if path := os.Getenv("UNIFILE_CONFIG"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(".unifile")
		v.SetConfigType("yaml")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}
	return v
}

func load(v *viper.Viper) (Config, error) {
	var cfg Config
	for key, env := range envBindings {
		// A default makes the key visible to Unmarshal even when the
		// value arrives only through the environment.
		if key == "minio.insecure" || key == "s3compat.insecure" {
			v.SetDefault(key, false)
		} else {
			v.SetDefault(key, "")
		}
		if err := v.BindEnv(key, env); err != nil {
			return cfg, err
		}
	}
	if err := v.ReadInConfig(); err != nil {
		switch err.(type) {
		case viper.ConfigFileNotFoundError:
			// The config file is optional.
		default:
			if !os.IsNotExist(err) {
				return cfg, err
			}
		}
	}
	// Environment values arrive as strings, so bools like MINIO_INSECURE
	// need the weakly typed decoder.
	err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.WeaklyTypedInput = true
	})
	return cfg, err
}
