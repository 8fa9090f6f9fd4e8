// Copyright 2026 The Unifile Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package codec

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/unifile/unifile/errors"
)

// sliceDecoder appends JSON-decoded elements to the slice that v points to.
type sliceDecoder struct {
	slice reflect.Value
	elem  reflect.Type
}

// newSliceDecoder returns nil unless v is a non-nil pointer to a slice.
func newSliceDecoder(v interface{}) *sliceDecoder {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Slice {
		return nil
	}
	return &sliceDecoder{slice: rv.Elem(), elem: rv.Elem().Type().Elem()}
}

func (d *sliceDecoder) append(line []byte) error {
	ev := reflect.New(d.elem)
	if err := json.Unmarshal(line, ev.Interface()); err != nil {
		return err
	}
	d.slice.Set(reflect.Append(d.slice, ev.Elem()))
	return nil
}

// sliceElems returns the elements of v, which must be a slice or a pointer
// to one.
func sliceElems(v interface{}) ([]interface{}, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Slice {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("codec: jsonl encode source must be a slice, got %T", v))
	}
	elems := make([]interface{}, rv.Len())
	for i := range elems {
		elems[i] = rv.Index(i).Interface()
	}
	return elems, nil
}
