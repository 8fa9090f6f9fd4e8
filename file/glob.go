// Copyright 2026 The Unifile Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package file

import (
	"context"
	"strings"

	"github.com/gobwas/glob"
	"github.com/gobwas/glob/syntax"
	"github.com/gobwas/glob/syntax/ast"
)

// ParseGlob parses a string that potentially contains glob metacharacters,
// and returns (nonglobprefix, hasglob). If the string does not contain any
// glob metacharacter, this function returns (str, false). Else, it returns
// the prefix of path elements up to the element containing a glob character.
//
// For example, ParseGlob("foo/bar/baz*/*.txt") returns ("foo/bar/", true).
func ParseGlob(str string) (string, bool) {
	node, err := syntax.Parse(str)
	if err != nil {
		panic(err)
	}
	if node.Kind != ast.KindPattern || len(node.Children) == 0 {
		panic(node)
	}
	if node.Children[0].Kind != ast.KindText {
		return "", true
	}
	if len(node.Children) == 1 {
		return str, false
	}
	nonGlobPrefix := node.Children[0].Value.(ast.Text).Text
	if i := strings.LastIndexByte(nonGlobPrefix, '/'); i > 0 {
		nonGlobPrefix = nonGlobPrefix[:i+1]
	}
	return nonGlobPrefix, true
}

// Match reports whether path matches the given glob pattern, as defined in
// github.com/gobwas/glob.
func Match(pattern, path string) (bool, error) {
	m, err := glob.Compile(pattern)
	if err != nil {
		return false, err
	}
	return m.Match(path), nil
}

// Glob expands the given glob string against the registered backends. If the
// string does not contain a glob metacharacter, or on any error, it returns
// {str}. Patterns follow github.com/gobwas/glob syntax; "**" crosses
// directory boundaries.
func Glob(ctx context.Context, str string) []string {
	nonGlobPrefix, hasGlob := ParseGlob(str)
	if !hasGlob {
		return []string{str}
	}
	m, err := glob.Compile(str)
	if err != nil {
		return []string{str}
	}

	globSuffix := str[len(nonGlobPrefix):]
	if strings.HasSuffix(globSuffix, "/") {
		globSuffix = globSuffix[:len(globSuffix)-1]
	}
	recursive := len(strings.Split(globSuffix, "/")) > 1 || strings.Contains(globSuffix, "**")

	lister := List(ctx, nonGlobPrefix, recursive)
	matches := []string{}
	for lister.Scan() {
		if m.Match(lister.Path()) {
			matches = append(matches, lister.Path())
		}
	}
	if err := lister.Err(); err != nil {
		return []string{str}
	}
	if len(matches) == 0 {
		return []string{str}
	}
	return matches
}

// GlobAll calls Glob on each pattern and unions the results, preserving
// argument order.
func GlobAll(ctx context.Context, patterns []string) []string {
	matches := []string{}
	for _, pattern := range patterns {
		matches = append(matches, Glob(ctx, pattern)...)
	}
	return matches
}
