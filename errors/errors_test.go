// Copyright 2026 The Unifile Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package errors_test

import (
	"bytes"
	"context"
	"encoding/gob"
	goerrors "errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unifile/unifile/errors"
)

func TestKinds(t *testing.T) {
	err := errors.E(errors.NotExist, "opening file")
	assert.True(t, errors.Is(errors.NotExist, err))
	assert.False(t, errors.Is(errors.NotAllowed, err))
	assert.Equal(t, "opening file: resource does not exist", err.Error())
}

func TestChaining(t *testing.T) {
	base := errors.E(errors.NotExist, "stat s3://bucket/key")
	wrapped := errors.E(base, "readfile")
	// The outer error inherits the inner kind.
	assert.True(t, errors.Is(errors.NotExist, wrapped))
	assert.Contains(t, wrapped.Error(), "readfile")
	assert.Contains(t, wrapped.Error(), "stat s3://bucket/key")
}

func TestClassifyUnderlying(t *testing.T) {
	_, err := os.Open("/nonexistent/zzz")
	require.Error(t, err)
	assert.True(t, errors.Is(errors.NotExist, errors.E(err)))

	assert.True(t, errors.Is(errors.Canceled, errors.E(context.Canceled)))
}

type timeoutErr struct{}

func (timeoutErr) Error() string { return "deadline" }
func (timeoutErr) Timeout() bool { return true }

type tempErr struct{}

func (tempErr) Error() string   { return "flaky" }
func (tempErr) Temporary() bool { return true }

func TestClassifyInterfaces(t *testing.T) {
	assert.True(t, errors.Is(errors.Timeout, errors.E(timeoutErr{})))
	assert.True(t, errors.IsTemporary(errors.E(tempErr{})))
	assert.False(t, errors.IsTemporary(errors.E(errors.Fatal, "bad")))
}

func TestSeverity(t *testing.T) {
	err := errors.Recover(errors.E(errors.Temporary, errors.Unavailable, "throttled"))
	assert.True(t, err.Temporary())
	assert.True(t, errors.Is(errors.Unavailable, err))
}

func TestMatch(t *testing.T) {
	err := errors.E(errors.NotExist, "stat", goerrors.New("no such key"))
	assert.True(t, errors.Match(errors.E(errors.NotExist, "stat"), err))
	assert.False(t, errors.Match(errors.E(errors.NotAllowed, "stat"), err))
}

func TestVisit(t *testing.T) {
	inner := goerrors.New("inner")
	err := errors.E(errors.E(inner, "mid"), "outer")
	var seen []error
	errors.Visit(err, func(e error) { seen = append(seen, e) })
	require.Len(t, seen, 3)
	assert.Equal(t, inner, seen[2])
}

func TestGobRoundTrip(t *testing.T) {
	orig := errors.E(errors.NotExist, errors.Fatal, "stat gs://b/k", goerrors.New("not found")).(*errors.Error)
	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(orig))
	var got errors.Error
	require.NoError(t, gob.NewDecoder(&buf).Decode(&got))
	assert.Equal(t, orig.Kind, got.Kind)
	assert.Equal(t, orig.Severity, got.Severity)
	assert.Equal(t, orig.Error(), got.Error())
	assert.True(t, errors.Match(orig, &got))
}
