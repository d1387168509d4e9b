// Copyright 2016 - 2025 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package recalc

import (
	"container/list"

	"github.com/xuri/efp"
)

// parsedFormula is the cached outcome of tokenizing and parsing one formula
// text.
type parsedFormula struct {
	tokens   []efp.Token
	refs     []Reference
	volatile bool
	err      error
}

// formulaCache is an LRU cache of parse results keyed by formula text. When
// full, the least recently used entry is evicted. A capacity below one
// disables caching.
type formulaCache struct {
	capacity int
	entries  map[string]*list.Element
	lruList  *list.List
}

type formulaCacheEntry struct {
	text   string
	parsed *parsedFormula
}

func newFormulaCache(capacity int) *formulaCache {
	return &formulaCache{
		capacity: capacity,
		entries:  make(map[string]*list.Element),
		lruList:  list.New(),
	}
}

// Load returns the cached parse of text and marks it most recently used.
func (c *formulaCache) Load(text string) (*parsedFormula, bool) {
	if elem, ok := c.entries[text]; ok {
		c.lruList.MoveToFront(elem)
		return elem.Value.(*formulaCacheEntry).parsed, true
	}
	return nil, false
}

// Store adds or replaces the parse of text. It returns true when an entry was
// evicted to make room.
func (c *formulaCache) Store(text string, parsed *parsedFormula) bool {
	if c.capacity < 1 {
		return false
	}
	if elem, ok := c.entries[text]; ok {
		c.lruList.MoveToFront(elem)
		elem.Value.(*formulaCacheEntry).parsed = parsed
		return false
	}
	evicted := false
	if c.lruList.Len() >= c.capacity {
		if oldest := c.lruList.Back(); oldest != nil {
			c.lruList.Remove(oldest)
			delete(c.entries, oldest.Value.(*formulaCacheEntry).text)
			evicted = true
		}
	}
	c.entries[text] = c.lruList.PushFront(&formulaCacheEntry{text: text, parsed: parsed})
	return evicted
}

// Clear removes all entries.
func (c *formulaCache) Clear() {
	c.entries = make(map[string]*list.Element)
	c.lruList = list.New()
}

// Len returns the number of cached formulas.
func (c *formulaCache) Len() int {
	return c.lruList.Len()
}
