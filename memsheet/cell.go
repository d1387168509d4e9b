// Copyright 2016 - 2025 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package memsheet

import "strings"

// ErrorValue is the computed value of a formula whose evaluation failed or
// that reads itself while being evaluated.
const ErrorValue = "#VALUE!"

// cachedValue is one lazily filled cache slot. The zero value is unset.
type cachedValue struct {
	value string
	set   bool
}

// Stats counts what the recalculation core did to a cell.
type Stats struct {
	Invalidations int
	Computations  int
}

// Cell is a stored cell. Its computed, display and formatted-result values
// are cached independently and filled on first read.
type Cell struct {
	sheet    *Sheet
	row, col int
	raw      string

	computed  cachedValue
	display   cachedValue
	formatted cachedValue
	err       error
	computing bool
	stats     Stats
}

// IsFormula reports whether the raw text is a formula.
func (c *Cell) IsFormula() bool {
	return len(c.raw) > 1 && c.raw[0] == '='
}

// Formula returns the raw formula text including "=", or "" for a value
// cell.
func (c *Cell) Formula() string {
	if !c.IsFormula() {
		return ""
	}
	return c.raw
}

// Raw returns the text the cell was last set to.
func (c *Cell) Raw() string { return c.raw }

// Invalidate clears the three cached values.
func (c *Cell) Invalidate() {
	c.computed = cachedValue{}
	c.display = cachedValue{}
	c.formatted = cachedValue{}
	c.err = nil
	c.stats.Invalidations++
}

// EnsureComputed fills the computed value if it is unset.
func (c *Cell) EnsureComputed() {
	if c.computed.set {
		return
	}
	if !c.IsFormula() {
		c.computed = cachedValue{value: c.raw, set: true}
		return
	}
	if c.computing {
		// Read by its own evaluation: a circular reference.
		c.computed = cachedValue{value: ErrorValue, set: true}
		return
	}
	c.computing = true
	defer func() { c.computing = false }()
	c.stats.Computations++

	evaluate := c.sheet.wb.Evaluator
	if evaluate == nil {
		c.computed = cachedValue{value: c.raw, set: true}
		return
	}
	value, err := evaluate(c.sheet.wb, c.sheet.name, c.row, c.col, c.raw)
	if err != nil {
		c.err = err
		value = ErrorValue
	}
	c.computed = cachedValue{value: value, set: true}
}

// Value returns the computed value, evaluating the formula if needed.
func (c *Cell) Value() string {
	c.EnsureComputed()
	return c.computed.value
}

// Err returns the error of the last evaluation, if any.
func (c *Cell) Err() error {
	c.EnsureComputed()
	return c.err
}

// DisplayValue returns the value as shown in the grid: error values upper
// cased, everything else as computed.
func (c *Cell) DisplayValue() string {
	if !c.display.set {
		value := c.Value()
		if strings.HasPrefix(value, "#") {
			value = strings.ToUpper(value)
		}
		c.display = cachedValue{value: value, set: true}
	}
	return c.display.value
}

// FormattedValue returns the value used in formula results of other cells,
// with surrounding whitespace removed.
func (c *Cell) FormattedValue() string {
	if !c.formatted.set {
		c.formatted = cachedValue{value: strings.TrimSpace(c.Value()), set: true}
	}
	return c.formatted.value
}

// Cached reports whether the computed value is currently filled.
func (c *Cell) Cached() bool { return c.computed.set }

// Stats returns the invalidation and computation counters of the cell.
func (c *Cell) Stats() Stats { return c.stats }
