// Copyright 2016 - 2025 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package recalc

import (
	"fmt"
	"strings"
)

// ErrMalformedKey defines the error message on decoding a string that is not
// a canonical cell key, or on addressing a cell with invalid coordinates.
type ErrMalformedKey struct {
	Key string
}

func (err ErrMalformedKey) Error() string {
	return fmt.Sprintf("malformed cell key %q", err.Key)
}

// ErrDependencyParse defines the error message on failing to extract the
// references of a formula. The cell is left without outgoing edges.
type ErrDependencyParse struct {
	Key     Key
	Formula string
	Err     error
}

func (err *ErrDependencyParse) Error() string {
	return fmt.Sprintf("cannot extract dependencies of %s from formula %q: %v", err.Key.CellName(), err.Formula, err.Err)
}

func (err *ErrDependencyParse) Unwrap() error { return err.Err }

// ErrCycleDetected describes a circular reference found while ordering cells
// for recomputation. Path starts and ends with the same key.
type ErrCycleDetected struct {
	Path []Key
}

func (err *ErrCycleDetected) Error() string {
	names := make([]string, len(err.Path))
	for i, key := range err.Path {
		names[i] = key.CellName()
	}
	return "circular reference: " + strings.Join(names, " -> ")
}

func cycleError(stack []Key, from int, closing Key) *ErrCycleDetected {
	path := make([]Key, 0, len(stack)-from+1)
	path = append(path, stack[from:]...)
	return &ErrCycleDetected{Path: append(path, closing)}
}
