// Copyright 2016 - 2025 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package recalc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseRefs(t *testing.T, ef ExcelFormula, text string) ([]Reference, error) {
	t.Helper()
	tokens, err := ef.Tokenize(text)
	if err != nil {
		return nil, err
	}
	return ef.ParseDeps(tokens)
}

func TestExcelFormulaParseDeps(t *testing.T) {
	refs, err := parseRefs(t, ExcelFormula{}, "=SUM(Sheet2!$A$1:Sheet2!$A$3)+SUM($B$1:$B$2)+Sheet3!C5")
	require.NoError(t, err)
	assert.Equal(t, []Reference{
		{Row: 0, Col: 0, Sheet: "Sheet2", Resolved: true},
		{Row: 1, Col: 0, Sheet: "Sheet2", Resolved: true},
		{Row: 2, Col: 0, Sheet: "Sheet2", Resolved: true},
		{Row: 0, Col: 1, Resolved: true},
		{Row: 1, Col: 1, Resolved: true},
		{Row: 4, Col: 2, Sheet: "Sheet3", Resolved: true},
	}, refs)

	t.Run("leading equals sign is optional", func(t *testing.T) {
		refs, err := parseRefs(t, ExcelFormula{}, "A1+1")
		require.NoError(t, err)
		assert.Equal(t, []Reference{{Row: 0, Col: 0, Resolved: true}}, refs)
	})

	t.Run("reversed range", func(t *testing.T) {
		refs, err := parseRefs(t, ExcelFormula{}, "=SUM(B2:A1)")
		require.NoError(t, err)
		assert.Len(t, refs, 4)
		assert.Equal(t, Reference{Row: 0, Col: 0, Resolved: true}, refs[0])
	})

	t.Run("quoted sheet name", func(t *testing.T) {
		refs, err := parseRefs(t, ExcelFormula{}, "='Q1 data'!B2*2")
		require.NoError(t, err)
		assert.Equal(t, []Reference{{Row: 1, Col: 1, Sheet: "Q1 data", Resolved: true}}, refs)
	})

	t.Run("sheet name containing an exclamation mark", func(t *testing.T) {
		refs, err := parseRefs(t, ExcelFormula{}, "='a!b'!A1+SUM('a!b'!B1:B2)")
		require.NoError(t, err)
		assert.Equal(t, []Reference{
			{Row: 0, Col: 0, Sheet: "a!b", Resolved: true},
			{Row: 0, Col: 1, Sheet: "a!b", Resolved: true},
			{Row: 1, Col: 1, Sheet: "a!b", Resolved: true},
		}, refs)
	})

	t.Run("defined names are skipped", func(t *testing.T) {
		refs, err := parseRefs(t, ExcelFormula{}, "=TaxRate*2")
		require.NoError(t, err)
		assert.Empty(t, refs)
	})

	t.Run("whole rows and columns span the sheet", func(t *testing.T) {
		refs, err := parseRefs(t, ExcelFormula{}, "=SUM(Sheet4!2:2)")
		require.NoError(t, err)
		require.Len(t, refs, MaxColumns)
		assert.Equal(t, Reference{Row: 1, Col: 0, Sheet: "Sheet4", Resolved: true}, refs[0])
		assert.Equal(t, Reference{Row: 1, Col: MaxColumns - 1, Sheet: "Sheet4", Resolved: true}, refs[MaxColumns-1])

		refs, err = parseRefs(t, ExcelFormula{MaxRangeCells: MaxRows}, "=SUM($D:$D)")
		require.NoError(t, err)
		require.Len(t, refs, MaxRows)
		assert.Equal(t, Reference{Row: MaxRows - 1, Col: 3, Resolved: true}, refs[MaxRows-1])
	})

	t.Run("literals carry no references", func(t *testing.T) {
		refs, err := parseRefs(t, ExcelFormula{}, `=1+2&"A1"`)
		require.NoError(t, err)
		assert.Empty(t, refs)
	})
}

func TestExcelFormulaParseDepsErrors(t *testing.T) {
	_, err := parseRefs(t, ExcelFormula{}, "=A0+1")
	assert.Error(t, err)

	_, err = parseRefs(t, ExcelFormula{}, "=XFE1+1")
	assert.Error(t, err)

	_, err = parseRefs(t, ExcelFormula{}, "=SUM(Sheet1!A1:Sheet2!A3)")
	assert.Error(t, err)
	_, err = parseOperand("Sheet1!A1:Sheet2!A3")
	assert.EqualError(t, err, `3-D reference "Sheet1!A1:Sheet2!A3" is not supported`)

	_, err = parseRefs(t, ExcelFormula{}, "=SUM(A1:A70000)")
	assert.EqualError(t, err, "range A1:A70000 spans 70000 cells, more than 65536")

	_, err = parseRefs(t, ExcelFormula{}, "=SUM(Sheet4!$D:$D)")
	assert.EqualError(t, err, "range Sheet4!$D:$D spans 1048576 cells, more than 65536")
	_, err = parseRefs(t, ExcelFormula{}, "=SUM(1:5)")
	assert.Error(t, err)

	_, err = parseRefs(t, ExcelFormula{MaxRangeCells: 10}, "=SUM(A1:A11)")
	assert.Error(t, err)
	refs, err := parseRefs(t, ExcelFormula{MaxRangeCells: 10}, "=SUM(A1:A10)")
	assert.NoError(t, err)
	assert.Len(t, refs, 10)
}

func TestExcelFormulaIsVolatile(t *testing.T) {
	ef := ExcelFormula{}
	for text, volatile := range map[string]bool{
		"=NOW()":                    true,
		"=IF(A1>0,RAND(),0)":        true,
		"=today()+1":                true,
		"=_xlfn.RANDARRAY(2)":       true,
		"=OFFSET(A1,1,0)":           true,
		"=A1+1":                     false,
		"=SUM(A1:A3)":               false,
		`=CONCATENATE("NOW()", A1)`: false,
	} {
		tokens, err := ef.Tokenize(text)
		require.NoError(t, err, text)
		assert.Equal(t, volatile, ef.IsVolatile(tokens), text)
	}
}

func TestParseOperand(t *testing.T) {
	op, err := parseOperand("'It''s'!$C$3")
	require.NoError(t, err)
	assert.Equal(t, rangeOperand{kind: operandCells, sheet: "It's", fromRow: 2, fromCol: 2, toRow: 2, toCol: 2}, op)

	op, err = parseOperand("Sheet4!$D:$F")
	require.NoError(t, err)
	assert.Equal(t, rangeOperand{kind: operandCells, sheet: "Sheet4", fromRow: 0, fromCol: 3, toRow: MaxRows - 1, toCol: 5}, op)

	op, err = parseOperand("3:2")
	require.NoError(t, err)
	assert.Equal(t, rangeOperand{kind: operandCells, fromRow: 1, fromCol: 0, toRow: 2, toCol: MaxColumns - 1}, op)

	op, err = parseOperand("a!b!A1:a!b!C2")
	require.NoError(t, err)
	assert.Equal(t, rangeOperand{kind: operandCells, sheet: "a!b", fromRow: 0, fromCol: 0, toRow: 1, toCol: 2}, op)

	op, err = parseOperand("'a!b'!B2")
	require.NoError(t, err)
	assert.Equal(t, "a!b", op.sheet)

	op, err = parseOperand("Revenue")
	require.NoError(t, err)
	assert.Equal(t, operandName, op.kind)

	_, err = parseOperand("'unterminated!A1")
	assert.Error(t, err)
	_, err = parseOperand("A1:B2:C3")
	assert.Error(t, err)
}

func TestFunctionName(t *testing.T) {
	assert.Equal(t, "NOW", functionName("now("))
	assert.Equal(t, "RANDARRAY", functionName("_xlfn.RANDARRAY("))
	assert.Equal(t, "CELL", functionName("_XLWS.CELL"))
}
