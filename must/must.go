// Copyright 2026 The Unifile Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package must provides a handful of assertions for conditions that
// indicate programmer error. Failed assertions panic through the log
// package so that custom outputters see them.
package must

import (
	"fmt"

	"github.com/unifile/unifile/log"
)

// True panics if the provided condition is false. Extra arguments are
// formatted in the manner of fmt.Sprint and included in the panic
// message.
func True(cond bool, v ...interface{}) {
	if cond {
		return
	}
	if len(v) == 0 {
		log.Panic("must: assertion failed")
		return
	}
	log.Panic(v...)
}

// Truef panics if the provided condition is false, formatting its
// message in the manner of fmt.Sprintf.
func Truef(cond bool, format string, v ...interface{}) {
	True(cond, fmt.Sprintf(format, v...))
}

// Nil panics if the provided value is not nil.
func Nil(v interface{}, args ...interface{}) {
	if v == nil {
		return
	}
	if len(args) == 0 {
		log.Panicf("must: unexpected non-nil value %v", v)
		return
	}
	log.Panicf("%s: %v", fmt.Sprint(args...), v)
}
