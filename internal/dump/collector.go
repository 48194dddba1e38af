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
	"bufio"
	"fmt"
	"io"
	"log"
	"strings"
)

// DefaultValueCap is the per-column bound on distinct sampled values.
const DefaultValueCap = 150

// ValueCollector samples distinct values for tracked non-numeric columns
// out of the INSERT statements of a dump. One collector instance owns all
// per-table/per-column accumulation; nothing is shared process-wide.
type ValueCollector struct {
	tracked  map[string][]TrackedColumn
	valueCap int
	values   map[string]map[string]*UniqueValueSet
}

// NewValueCollector builds a collector for the given table -> tracked
// column map. A non-positive cap falls back to DefaultValueCap.
func NewValueCollector(tracked map[string][]TrackedColumn, valueCap int) *ValueCollector {
	if valueCap <= 0 {
		valueCap = DefaultValueCap
	}
	return &ValueCollector{
		tracked:  tracked,
		valueCap: valueCap,
		values:   make(map[string]map[string]*UniqueValueSet),
	}
}

// Collect performs a single sequential pass over the dump, accumulating
// distinct values across all INSERT statements of each tracked table.
// Per-statement failures are swallowed; only read errors surface.
func (c *ValueCollector) Collect(r io.Reader) error {
	reader := bufio.NewReader(r)
	for {
		line, readErr := reader.ReadString('\n')
		if len(line) > 0 {
			if table, ok := parseInsertTable(line); ok {
				if _, interested := c.tracked[table]; interested {
					statement, stmtErr := readStatement(reader, line)
					if stmtErr != nil && stmtErr != io.EOF {
						return fmt.Errorf("failed to read dump: %w", stmtErr)
					}
					c.consumeInsert(table, statement)
					if stmtErr == io.EOF {
						break
					}
					continue
				}
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return fmt.Errorf("failed to read dump: %w", readErr)
		}
	}
	return nil
}

// Values returns the accumulated table -> column -> value sets.
func (c *ValueCollector) Values() map[string]map[string]*UniqueValueSet {
	return c.values
}

// consumeInsert tokenizes the VALUES segment of one INSERT statement and
// folds every produced row into the tracked column sets.
func (c *ValueCollector) consumeInsert(table string, statement string) {
	offset := indexCaseInsensitive(statement, "VALUES")
	if offset == -1 {
		log.Printf("WARN: Table[%s] INSERT statement without VALUES segment skipped.", table)
		return
	}
	segment := cutAtTerminator(statement[offset+len("VALUES"):])

	columns := c.tracked[table]
	for _, row := range TokenizeValueTuples(segment) {
		for _, col := range columns {
			if col.Position >= len(row) {
				continue
			}
			value := row[col.Position]
			if value == "" || strings.EqualFold(value, "NULL") {
				continue
			}
			set := c.columnSet(table, col.Name)
			if set.AtCap() {
				continue
			}
			set.Add(value)
		}
	}
}

// columnSet lazily creates the value set for (table, column).
func (c *ValueCollector) columnSet(table, column string) *UniqueValueSet {
	byColumn, ok := c.values[table]
	if !ok {
		byColumn = make(map[string]*UniqueValueSet)
		c.values[table] = byColumn
	}
	set, ok := byColumn[column]
	if !ok {
		set = NewUniqueValueSet(c.valueCap)
		byColumn[column] = set
	}
	return set
}

// cutAtTerminator truncates the segment at the first statement terminator
// found outside a quoted span, so a second statement or trailing comment
// sharing the terminating line never reaches the tokenizer as extra rows.
func cutAtTerminator(segment string) string {
	inQuote := false
	for i := 0; i < len(segment); i++ {
		switch segment[i] {
		case '\\':
			if inQuote {
				i++
			}
		case '\'':
			inQuote = !inQuote
		case ';':
			if !inQuote {
				return segment[:i]
			}
		}
	}
	return segment
}

// readStatement buffers physical lines starting at first until one of them
// contains the statement terminator. The per-line terminator check is a
// known limitation: a literal spanning a line break that itself contains a
// semicolon can truncate the statement early.
func readStatement(reader *bufio.Reader, first string) (string, error) {
	var statement strings.Builder
	statement.WriteString(first)
	if strings.Contains(first, ";") {
		return statement.String(), nil
	}
	for {
		line, err := reader.ReadString('\n')
		statement.WriteString(line)
		if err != nil {
			return statement.String(), err
		}
		if strings.Contains(line, ";") {
			return statement.String(), nil
		}
	}
}

// parseInsertTable reports whether the line starts an INSERT statement and
// returns the target table name.
func parseInsertTable(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	upper := strings.ToUpper(trimmed)
	if !strings.HasPrefix(upper, "INSERT INTO") {
		return "", false
	}

	rest := strings.TrimSpace(trimmed[len("INSERT INTO"):])
	if name, ok := unquoteIdentifier(rest); ok {
		return name, true
	}
	if idx := strings.IndexAny(rest, " \t("); idx != -1 {
		rest = rest[:idx]
	}
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return "", false
	}
	return rest, true
}

func indexCaseInsensitive(s, substr string) int {
	return strings.Index(strings.ToUpper(s), strings.ToUpper(substr))
}
