// Copyright 2026 The Unifile Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package must_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/unifile/unifile/must"
)

func TestTrue(t *testing.T) {
	assert.NotPanics(t, func() { must.True(true, "ok") })
	assert.Panics(t, func() { must.True(false, "failed") })
	assert.Panics(t, func() { must.Truef(false, "failed: %d", 42) })
}

func TestNil(t *testing.T) {
	assert.NotPanics(t, func() { must.Nil(nil) })
	assert.Panics(t, func() { must.Nil("non-nil") })
}
