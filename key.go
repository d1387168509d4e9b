// Copyright 2016 - 2025 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package recalc

import (
	"sort"
	"strconv"
	"strings"
)

const (
	// MaxRows is the largest one-based row number a reference may address.
	MaxRows = 1048576
	// MaxColumns is the largest one-based column number (XFD).
	MaxColumns = 16384
)

// Key identifies one cell across all sheets of a workbook. The canonical
// encoding is "<sheet>!R<row>C<col>" with zero-based row and column.
type Key string

// NewKey encodes a sheet name and zero-based coordinates into a Key. The
// result of a malformed triple (empty sheet, negative row or column) fails
// Valid.
func NewKey(sheet string, row, col int) Key {
	var sb strings.Builder
	sb.Grow(len(sheet) + 24)
	sb.WriteString(sheet)
	sb.WriteString("!R")
	sb.WriteString(strconv.Itoa(row))
	sb.WriteByte('C')
	sb.WriteString(strconv.Itoa(col))
	return Key(sb.String())
}

// ParseKey decodes a canonical cell key into its sheet name and zero-based
// coordinates. It returns ErrMalformedKey when s is not a canonical key.
func ParseKey(s string) (sheet string, row, col int, err error) {
	bang := strings.LastIndex(s, "!R")
	if bang <= 0 {
		return "", 0, 0, ErrMalformedKey{Key: s}
	}
	coords := s[bang+2:]
	c := strings.IndexByte(coords, 'C')
	if c < 0 {
		return "", 0, 0, ErrMalformedKey{Key: s}
	}
	if row, err = parseIndex(coords[:c]); err != nil {
		return "", 0, 0, ErrMalformedKey{Key: s}
	}
	if col, err = parseIndex(coords[c+1:]); err != nil {
		return "", 0, 0, ErrMalformedKey{Key: s}
	}
	return s[:bang], row, col, nil
}

// parseIndex accepts only the digits NewKey would have written: no sign, no
// leading zeros.
func parseIndex(s string) (int, error) {
	if s == "" || (len(s) > 1 && s[0] == '0') {
		return 0, strconv.ErrSyntax
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.Atoi(s)
}

// ValidateCoordinates reports whether the triple can be encoded as a
// well-formed key.
func ValidateCoordinates(sheet string, row, col int) error {
	if sheet == "" || row < 0 || col < 0 {
		return ErrMalformedKey{Key: string(NewKey(sheet, row, col))}
	}
	return nil
}

// Valid reports whether k is in canonical form.
func (k Key) Valid() bool {
	_, _, _, err := ParseKey(string(k))
	return err == nil
}

// Sheet returns the sheet part of the key, or "" for a malformed key.
func (k Key) Sheet() string {
	sheet, _, _, err := ParseKey(string(k))
	if err != nil {
		return ""
	}
	return sheet
}

// Coordinates returns the sheet name and zero-based row and column.
func (k Key) Coordinates() (string, int, int, error) {
	return ParseKey(string(k))
}

// CellName returns the A1-style name of the cell, for example "Sheet1!B1".
// Malformed keys are returned unchanged.
func (k Key) CellName() string {
	sheet, row, col, err := ParseKey(string(k))
	if err != nil {
		return string(k)
	}
	return sheet + "!" + ColumnNumberToName(col+1) + strconv.Itoa(row+1)
}

// ColumnNumberToName converts a one-based column number to its letters, for
// example 1 to "A" and 28 to "AB". Non-positive numbers yield "".
func ColumnNumberToName(num int) string {
	if num <= 0 {
		return ""
	}
	var buf [8]byte
	i := len(buf)
	for num > 0 {
		num--
		i--
		buf[i] = byte('A' + num%26)
		num /= 26
	}
	return string(buf[i:])
}

// ColumnNameToNumber converts column letters (case-insensitive) to a
// one-based column number.
func ColumnNameToNumber(name string) (int, bool) {
	if name == "" || len(name) > 3 {
		return 0, false
	}
	num := 0
	for i := 0; i < len(name); i++ {
		ch := name[i]
		switch {
		case ch >= 'A' && ch <= 'Z':
			num = num*26 + int(ch-'A') + 1
		case ch >= 'a' && ch <= 'z':
			num = num*26 + int(ch-'a') + 1
		default:
			return 0, false
		}
	}
	if num > MaxColumns {
		return 0, false
	}
	return num, true
}

// CellNameToCoordinates splits an A1-style reference such as "$B$3" into
// one-based column and row numbers.
func CellNameToCoordinates(cell string) (col, row int, ok bool) {
	cell = strings.ReplaceAll(cell, "$", "")
	split := 0
	for split < len(cell) && ((cell[split] >= 'A' && cell[split] <= 'Z') || (cell[split] >= 'a' && cell[split] <= 'z')) {
		split++
	}
	if split == 0 || split == len(cell) {
		return 0, 0, false
	}
	if col, ok = ColumnNameToNumber(cell[:split]); !ok {
		return 0, 0, false
	}
	digits := cell[split:]
	if digits[0] == '0' {
		return 0, 0, false
	}
	row, err := strconv.Atoi(digits)
	if err != nil || row < 1 || row > MaxRows {
		return 0, 0, false
	}
	return col, row, true
}

func sortKeys(keys []Key) []Key {
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
