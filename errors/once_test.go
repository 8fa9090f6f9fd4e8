// Copyright 2026 The Unifile Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package errors_test

import (
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/unifile/unifile/errors"
)

func TestOnce(t *testing.T) {
	e := errors.Once{}
	assert.NoError(t, e.Err())

	e.Set(errors.New("first"))
	assert.EqualError(t, e.Err(), "first")

	e.Set(errors.New("second"))
	assert.EqualError(t, e.Err(), "first")
}

func TestOnceIgnored(t *testing.T) {
	e := errors.Once{Ignored: []error{io.EOF}}
	e.Set(io.EOF)
	assert.NoError(t, e.Err())
	e.Set(errors.New("real"))
	assert.EqualError(t, e.Err(), "real")
}

func TestOnceConcurrent(t *testing.T) {
	e := errors.Once{}
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e.Set(fmt.Errorf("error %d", i))
		}(i)
	}
	wg.Wait()
	assert.Error(t, e.Err())
	// Whatever error won, it stays won.
	first := e.Err()
	e.Set(errors.New("late"))
	assert.Equal(t, first, e.Err())
}
