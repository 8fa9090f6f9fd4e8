// Copyright 2026 The Unifile Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package codec reads and writes Go values in the serialization format
// implied by a path's filename suffix. A trailing compression suffix
// (.gz, .zst) is handled transparently, so "events.jsonl.gz" decodes as
// gzip-compressed JSON-Lines.
//
// Supported payload formats:
//
//	.json          JSON, any value
//	.jsonl .ndjson JSON-Lines, slice values (one element per line)
//	.yaml .yml     YAML, any value
//	.csv .tsv      [][]string records
//	.txt .text     string or []byte
//	.gob           gob, any value
//
// Foreign formats (.pkl, .pt, .tfrecords) are recognized but yield
// errors.NotSupported.
package codec

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"io"

	"github.com/unifile/unifile/compress"
	"github.com/unifile/unifile/errors"
	"github.com/unifile/unifile/file"
	"github.com/unifile/unifile/fileio"
	"gopkg.in/yaml.v3"
)

// ReadFile opens path through the file facade, uncompresses it if the name
// asks for it, and decodes the payload into v. v must be a non-nil pointer
// of a type appropriate for the format.
func ReadFile(ctx context.Context, path string, v interface{}) (err error) {
	f, err := file.Open(ctx, path)
	if err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, f, &err)
	r, compressed := compress.NewReaderPath(f.Reader(ctx), path)
	if compressed {
		defer func() {
			if err2 := r.Close(); err2 != nil && err == nil {
				err = err2
			}
		}()
	}
	return Decode(r, fileio.PayloadType(path), v)
}

// WriteFile encodes v in the format implied by path, compresses it if the
// name asks for it, and writes it through the file facade. The file becomes
// visible atomically on success; on error the partial write is discarded.
func WriteFile(ctx context.Context, path string, v interface{}) (err error) {
	f, err := file.Create(ctx, path)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			f.Discard(ctx)
			return
		}
		err = f.Close(ctx)
	}()
	w, compressed := compress.NewWriterPath(f.Writer(ctx), path)
	if err = Encode(w, fileio.PayloadType(path), v); err != nil {
		return errors.E(err, "codec.write", path)
	}
	if compressed {
		if err = w.Close(); err != nil {
			return errors.E(err, "codec.write", path)
		}
	}
	return nil
}

// Decode decodes a value of the given payload type from r into v.
func Decode(r io.Reader, typ fileio.FileType, v interface{}) error {
	switch typ {
	case fileio.JSON:
		return json.NewDecoder(r).Decode(v)
	case fileio.JSONLines:
		return decodeJSONLines(r, v)
	case fileio.YAML:
		return yaml.NewDecoder(r).Decode(v)
	case fileio.CSV:
		return decodeCSV(r, ',', v)
	case fileio.TSV:
		return decodeCSV(r, '\t', v)
	case fileio.Text:
		return decodeText(r, v)
	case fileio.Gob:
		return gob.NewDecoder(r).Decode(v)
	case fileio.Foreign:
		return errors.E(errors.NotSupported, "codec: foreign serialization format")
	}
	return errors.E(errors.NotSupported, fmt.Sprintf("codec: no decoder for file type %v", typ))
}

// Encode encodes v into w in the given payload type.
func Encode(w io.Writer, typ fileio.FileType, v interface{}) error {
	switch typ {
	case fileio.JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case fileio.JSONLines:
		return encodeJSONLines(w, v)
	case fileio.YAML:
		enc := yaml.NewEncoder(w)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case fileio.CSV:
		return encodeCSV(w, ',', v)
	case fileio.TSV:
		return encodeCSV(w, '\t', v)
	case fileio.Text:
		return encodeText(w, v)
	case fileio.Gob:
		return gob.NewEncoder(w).Encode(v)
	case fileio.Foreign:
		return errors.E(errors.NotSupported, "codec: foreign serialization format")
	}
	return errors.E(errors.NotSupported, fmt.Sprintf("codec: no encoder for file type %v", typ))
}

func decodeCSV(r io.Reader, delim rune, v interface{}) error {
	records, ok := v.(*[][]string)
	if !ok {
		return errors.E(errors.Invalid, fmt.Sprintf("codec: csv decode target must be *[][]string, got %T", v))
	}
	cr := csv.NewReader(r)
	cr.Comma = delim
	recs, err := cr.ReadAll()
	if err != nil {
		return err
	}
	*records = recs
	return nil
}

func encodeCSV(w io.Writer, delim rune, v interface{}) error {
	records, ok := v.([][]string)
	if !ok {
		return errors.E(errors.Invalid, fmt.Sprintf("codec: csv encode source must be [][]string, got %T", v))
	}
	cw := csv.NewWriter(w)
	cw.Comma = delim
	if err := cw.WriteAll(records); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

func decodeText(r io.Reader, v interface{}) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	switch p := v.(type) {
	case *string:
		*p = string(data)
	case *[]byte:
		*p = data
	default:
		return errors.E(errors.Invalid, fmt.Sprintf("codec: text decode target must be *string or *[]byte, got %T", v))
	}
	return nil
}

func encodeText(w io.Writer, v interface{}) error {
	var data []byte
	switch p := v.(type) {
	case string:
		data = []byte(p)
	case []byte:
		data = p
	default:
		return errors.E(errors.Invalid, fmt.Sprintf("codec: text encode source must be string or []byte, got %T", v))
	}
	_, err := w.Write(data)
	return err
}

// maxLineBytes bounds a single JSON-Lines record.
const maxLineBytes = 16 << 20

func decodeJSONLines(r io.Reader, v interface{}) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64<<10), maxLineBytes)
	dec := newSliceDecoder(v)
	if dec == nil {
		return errors.E(errors.Invalid, fmt.Sprintf("codec: jsonl decode target must be a pointer to a slice, got %T", v))
	}
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Bytes()
		if len(text) == 0 {
			continue
		}
		if err := dec.append(text); err != nil {
			return errors.E(err, fmt.Sprintf("codec: jsonl line %d", line))
		}
	}
	return scanner.Err()
}

func encodeJSONLines(w io.Writer, v interface{}) error {
	elems, err := sliceElems(v)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for _, elem := range elems {
		// Encode appends a newline after each value.
		if err := enc.Encode(elem); err != nil {
			return err
		}
	}
	return bw.Flush()
}
