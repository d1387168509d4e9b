package recalc

import (
	"io"
	"log/slog"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/efp"
)

// fakeWorkbook records the order in which the coordinator invalidates and
// recomputes cells.
type fakeWorkbook struct {
	sheets      map[string]*fakeSheet
	names       []string
	invalidated []Key
	computed    []Key
}

type fakeSheet struct {
	name  string
	cells map[CellRef]*fakeCell
	inits int
}

type fakeCell struct {
	wb     *fakeWorkbook
	key    Key
	text   string
	cached bool
}

func (c *fakeCell) IsFormula() bool { return strings.HasPrefix(c.text, "=") }
func (c *fakeCell) Formula() string { return c.text }

func (c *fakeCell) Invalidate() {
	c.cached = false
	c.wb.invalidated = append(c.wb.invalidated, c.key)
}

func (c *fakeCell) EnsureComputed() {
	if c.cached {
		return
	}
	c.cached = true
	c.wb.computed = append(c.wb.computed, c.key)
}

func newFakeWorkbook(names ...string) *fakeWorkbook {
	wb := &fakeWorkbook{sheets: make(map[string]*fakeSheet)}
	for _, name := range names {
		wb.sheets[name] = &fakeSheet{name: name, cells: make(map[CellRef]*fakeCell)}
		wb.names = append(wb.names, name)
	}
	return wb
}

// set stores text in an A1-named cell; "" deletes it.
func (wb *fakeWorkbook) set(t *testing.T, sheet, cell, text string) {
	t.Helper()
	col, row, ok := CellNameToCoordinates(cell)
	require.True(t, ok, cell)
	s := wb.sheets[sheet]
	require.NotNil(t, s, sheet)
	ref := CellRef{Row: row - 1, Col: col - 1}
	if text == "" {
		delete(s.cells, ref)
		return
	}
	s.cells[ref] = &fakeCell{wb: wb, key: NewKey(sheet, ref.Row, ref.Col), text: text, cached: true}
}

func (wb *fakeWorkbook) reset() {
	wb.invalidated = nil
	wb.computed = nil
}

func (wb *fakeWorkbook) Cell(sheet string, row, col int) (Cell, bool) {
	s, ok := wb.sheets[sheet]
	if !ok {
		return nil, false
	}
	cell, ok := s.cells[CellRef{Row: row, Col: col}]
	if !ok {
		return nil, false
	}
	return cell, true
}

func (wb *fakeWorkbook) Sheet(name string) (Sheet, bool) {
	s, ok := wb.sheets[name]
	if !ok {
		return nil, false
	}
	return s, true
}

func (wb *fakeWorkbook) Sheets() []string { return wb.names }

func (s *fakeSheet) Name() string { return s.name }

func (s *fakeSheet) Init() error {
	s.inits++
	return nil
}

func (s *fakeSheet) FormulaCells() []CellRef {
	var refs []CellRef
	for ref, cell := range s.cells {
		if cell.IsFormula() {
			refs = append(refs, ref)
		}
	}
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].Row != refs[j].Row {
			return refs[i].Row < refs[j].Row
		}
		return refs[i].Col < refs[j].Col
	})
	return refs
}

// unresolvedFormula hides the sheet qualifiers ExcelFormula found, leaving
// the coordinator to match references against the tokens. It does not
// detect volatile functions.
type unresolvedFormula struct{}

func (unresolvedFormula) Tokenize(text string) ([]efp.Token, error) {
	return ExcelFormula{}.Tokenize(text)
}

func (unresolvedFormula) ParseDeps(tokens []efp.Token) ([]Reference, error) {
	refs, err := ExcelFormula{}.ParseDeps(tokens)
	for i := range refs {
		refs[i].Sheet, refs[i].Resolved = "", false
	}
	return refs, err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestCoordinator(wb Workbook, opts ...Options) *Coordinator {
	options := Options{}
	if len(opts) > 0 {
		options = opts[len(opts)-1]
	}
	if options.Logger == nil {
		options.Logger = discardLogger()
	}
	return NewCoordinator(wb, options)
}

// k converts "Sheet!A1" to a key.
func k(t *testing.T, ref string) Key {
	t.Helper()
	bang := strings.LastIndex(ref, "!")
	require.Positive(t, bang, ref)
	col, row, ok := CellNameToCoordinates(ref[bang+1:])
	require.True(t, ok, ref)
	return NewKey(ref[:bang], row-1, col-1)
}

func keys(t *testing.T, refs ...string) []Key {
	t.Helper()
	out := make([]Key, len(refs))
	for i, ref := range refs {
		out[i] = k(t, ref)
	}
	return out
}
