/*
 * Copyright 2025 Google LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */
package dump

import (
	"sort"
	"strings"
)

// ColumnDefinition describes one column as declared in a CREATE TABLE block.
type ColumnDefinition struct {
	Table     string // Table the column belongs to
	Name      string // Column name, unique per table
	DataType  string // Raw declared type, including size/params/modifiers
	IsNumeric bool   // Derived from the leading type keyword
}

// TableSchema holds the ordered column definitions of one table.
// Column order is declaration order and is also the positional order
// used by INSERT statements that carry no explicit column list.
type TableSchema struct {
	Table   string
	Columns []ColumnDefinition
}

// NonNumericColumns returns the positions and names of the columns whose
// declared type did not classify as numeric.
func (ts *TableSchema) NonNumericColumns() []TrackedColumn {
	var tracked []TrackedColumn
	for i, col := range ts.Columns {
		if !col.IsNumeric {
			tracked = append(tracked, TrackedColumn{Position: i, Name: col.Name})
		}
	}
	return tracked
}

// TrackedColumn identifies a column by its position in the declared order.
type TrackedColumn struct {
	Position int
	Name     string
}

// UniqueValueSet accumulates distinct raw strings for one column up to a cap.
// Empty strings and the literal NULL (any case) are never stored. Once the
// cap is reached no further insertion happens.
type UniqueValueSet struct {
	values map[string]struct{}
	cap    int
}

// NewUniqueValueSet returns an empty set bounded to capValues members.
func NewUniqueValueSet(capValues int) *UniqueValueSet {
	return &UniqueValueSet{
		values: make(map[string]struct{}),
		cap:    capValues,
	}
}

// Add inserts value into the set. It reports whether the value was stored.
// NULL markers, empty strings, duplicates and at-cap sets all return false.
func (s *UniqueValueSet) Add(value string) bool {
	if value == "" || strings.EqualFold(value, "NULL") {
		return false
	}
	if _, exists := s.values[value]; exists {
		return false
	}
	if len(s.values) >= s.cap {
		return false
	}
	s.values[value] = struct{}{}
	return true
}

// AtCap reports whether the set reached its capacity.
func (s *UniqueValueSet) AtCap() bool {
	return len(s.values) >= s.cap
}

// Len returns the number of stored values.
func (s *UniqueValueSet) Len() int {
	return len(s.values)
}

// SortedValues returns the stored values in lexicographic order.
func (s *UniqueValueSet) SortedValues() []string {
	out := make([]string, 0, len(s.values))
	for v := range s.values {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
