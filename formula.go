// Copyright 2016 - 2025 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package recalc

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/efp"
)

// DefaultMaxRangeCells bounds how many cells one range reference may expand
// to.
const DefaultMaxRangeCells = 65536

var (
	errUnbalanced   = errors.New("unbalanced parentheses")
	errUnknownToken = errors.New("unrecognised token")
)

// volatileFunctions lists the functions whose result may change without any
// input changing.
var volatileFunctions = map[string]bool{
	"CELL":        true,
	"INDIRECT":    true,
	"INFO":        true,
	"NOW":         true,
	"OFFSET":      true,
	"RAND":        true,
	"RANDARRAY":   true,
	"RANDBETWEEN": true,
	"TODAY":       true,
}

// ExcelFormula is the Formula collaborator for Excel syntax, built on the
// efp tokenizer. The zero value uses DefaultMaxRangeCells.
type ExcelFormula struct {
	MaxRangeCells int
}

// Tokenize splits formula text into efp tokens. The leading "=" is optional.
func (ef ExcelFormula) Tokenize(text string) ([]efp.Token, error) {
	ps := efp.ExcelParser()
	tokens := ps.Parse(text)
	depth := 0
	for _, token := range tokens {
		if token.TType == efp.TokenTypeUnknown {
			return nil, fmt.Errorf("%w %q", errUnknownToken, token.TValue)
		}
		if token.TType != efp.TokenTypeFunction && token.TType != efp.TokenTypeSubexpression {
			continue
		}
		switch token.TSubType {
		case efp.TokenSubTypeStart:
			depth++
		case efp.TokenSubTypeStop:
			if depth--; depth < 0 {
				return nil, errUnbalanced
			}
		}
	}
	if depth != 0 {
		return nil, errUnbalanced
	}
	return tokens, nil
}

// ParseDeps returns every cell referenced by the range operands of tokens.
// Ranges expand to their cells. Whole-column and whole-row ranges span the
// full sheet and fall under MaxRangeCells like any other range, so with the
// default limit they are reported as errors instead of losing edges. Defined
// names are skipped.
func (ef ExcelFormula) ParseDeps(tokens []efp.Token) ([]Reference, error) {
	limit := ef.MaxRangeCells
	if limit <= 0 {
		limit = DefaultMaxRangeCells
	}
	var refs []Reference
	for _, token := range tokens {
		if token.TType != efp.TokenTypeOperand || token.TSubType != efp.TokenSubTypeRange {
			continue
		}
		operand, err := parseOperand(token.TValue)
		if err != nil {
			return nil, err
		}
		if operand.kind != operandCells {
			continue
		}
		count := (operand.toRow - operand.fromRow + 1) * (operand.toCol - operand.fromCol + 1)
		if count > limit {
			return nil, fmt.Errorf("range %s spans %d cells, more than %d", token.TValue, count, limit)
		}
		for row := operand.fromRow; row <= operand.toRow; row++ {
			for col := operand.fromCol; col <= operand.toCol; col++ {
				refs = append(refs, Reference{Row: row, Col: col, Sheet: operand.sheet, Resolved: true})
			}
		}
	}
	return refs, nil
}

// IsVolatile reports whether tokens call a volatile function.
func (ef ExcelFormula) IsVolatile(tokens []efp.Token) bool {
	for _, token := range tokens {
		if token.TType != efp.TokenTypeFunction || token.TSubType != efp.TokenSubTypeStart {
			continue
		}
		if volatileFunctions[functionName(token.TValue)] {
			return true
		}
	}
	return false
}

func functionName(value string) string {
	name := strings.ToUpper(strings.TrimSuffix(value, "("))
	name = strings.TrimPrefix(name, "_XLFN.")
	return strings.TrimPrefix(name, "_XLWS.")
}

type operandKind uint8

const (
	operandCells operandKind = iota
	operandName
)

// rangeOperand is a parsed range token with zero-based inclusive bounds.
type rangeOperand struct {
	kind             operandKind
	sheet            string
	fromRow, fromCol int
	toRow, toCol     int
}

// parseOperand parses tokens such as "A1", "$B$2:C9", "Sheet2!A1",
// "'Q1 data'!A1:A9", "Sheet4!$D:$D" and defined names.
func parseOperand(value string) (rangeOperand, error) {
	sheet, rest, err := splitSheet(value)
	if err != nil {
		return rangeOperand{}, err
	}
	parts := strings.Split(rest, ":")
	if len(parts) > 2 {
		return rangeOperand{}, fmt.Errorf("unsupported reference %q", value)
	}
	if len(parts) == 2 && strings.Contains(parts[1], "!") {
		endSheet, end, err := splitSheet(parts[1])
		if err != nil {
			return rangeOperand{}, err
		}
		if endSheet != sheet {
			return rangeOperand{}, fmt.Errorf("3-D reference %q is not supported", value)
		}
		parts[1] = end
	}
	op := rangeOperand{sheet: sheet}
	if len(parts) == 1 {
		col, row, ok := CellNameToCoordinates(parts[0])
		if !ok {
			if looksLikeCell(parts[0]) {
				return rangeOperand{}, fmt.Errorf("reference %q is out of bounds", value)
			}
			op.kind = operandName
			return op, nil
		}
		op.fromRow, op.fromCol = row-1, col-1
		op.toRow, op.toCol = op.fromRow, op.fromCol
		return op, nil
	}
	start, end := strings.ReplaceAll(parts[0], "$", ""), strings.ReplaceAll(parts[1], "$", "")
	fromCol, fromRow, ok1 := CellNameToCoordinates(start)
	toCol, toRow, ok2 := CellNameToCoordinates(end)
	if !ok1 || !ok2 {
		var ok bool
		if fromCol, fromRow, toCol, toRow, ok = wholeLines(start, end); !ok {
			return rangeOperand{}, fmt.Errorf("invalid range %q", value)
		}
	}
	if fromRow > toRow {
		fromRow, toRow = toRow, fromRow
	}
	if fromCol > toCol {
		fromCol, toCol = toCol, fromCol
	}
	op.fromRow, op.fromCol, op.toRow, op.toCol = fromRow-1, fromCol-1, toRow-1, toCol-1
	return op, nil
}

// wholeLines resolves the one-based bounds of "D:F" and "2:4" ranges.
func wholeLines(start, end string) (fromCol, fromRow, toCol, toRow int, ok bool) {
	if from, ok1 := ColumnNameToNumber(start); ok1 {
		if to, ok2 := ColumnNameToNumber(end); ok2 {
			return from, 1, to, MaxRows, true
		}
	}
	if !isDigits(start) || !isDigits(end) {
		return 0, 0, 0, 0, false
	}
	from, err1 := strconv.Atoi(start)
	to, err2 := strconv.Atoi(end)
	if err1 != nil || err2 != nil || from < 1 || to < 1 || from > MaxRows || to > MaxRows {
		return 0, 0, 0, 0, false
	}
	return 1, from, MaxColumns, to, true
}

// splitSheet separates an optional sheet qualifier from a reference. efp
// hands qualifiers over without their quotes, so a sheet name may itself
// contain "!": the qualifier ends at the last "!" before the range colon.
// Sheet names cannot contain ":". Raw text with a quoted qualifier such as
// 'It''s'!A1 is unquoted too.
func splitSheet(ref string) (sheet, rest string, err error) {
	head := ref
	if colon := strings.Index(ref, ":"); colon >= 0 {
		head = ref[:colon]
	}
	bang := strings.LastIndex(head, "!")
	if bang < 0 {
		return "", ref, nil
	}
	sheet, rest = ref[:bang], ref[bang+1:]
	if strings.HasPrefix(sheet, "'") {
		if len(sheet) < 2 || !strings.HasSuffix(sheet, "'") {
			return "", "", fmt.Errorf("invalid sheet qualifier in %q", ref)
		}
		sheet = strings.ReplaceAll(sheet[1:len(sheet)-1], "''", "'")
	}
	return sheet, rest, nil
}

func looksLikeCell(s string) bool {
	s = strings.ReplaceAll(s, "$", "")
	i := 0
	for i < len(s) && ((s[i] >= 'A' && s[i] <= 'Z') || (s[i] >= 'a' && s[i] <= 'z')) {
		i++
	}
	return i > 0 && i < len(s) && isDigits(s[i:])
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
