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

// constraintKeywords start lines inside a CREATE TABLE block that look like
// column definitions but are not columns and must be skipped.
var constraintKeywords = []string{
	"PRIMARY",
	"UNIQUE",
	"KEY",
	"CONSTRAINT",
	"INDEX",
	"FOREIGN",
	"FULLTEXT",
	"SPATIAL",
	"CHECK",
}

// ScanSchema reads the dump line by line and extracts the ordered column
// definitions of every target table. The scan is a single sequential pass;
// memory is bounded by the longest physical line, never the file size.
//
// A target table that never appears is simply absent from the result and
// reported with a warning. A block that never closes is kept best-effort
// with whatever columns were seen before end of stream.
func ScanSchema(r io.Reader, targets map[string]bool) (map[string]*TableSchema, error) {
	schemas := make(map[string]*TableSchema)

	var current *TableSchema

	reader := bufio.NewReader(r)
	for {
		line, readErr := reader.ReadString('\n')
		if len(line) > 0 {
			if current == nil {
				if table, inline, ok := parseCreateTable(line); ok && targets[table] {
					current = &TableSchema{Table: table}
					if closed := consumeInlineColumns(current, inline); closed {
						schemas[current.Table] = current
						current = nil
					}
				}
			} else {
				if isBlockClose(line) {
					schemas[current.Table] = current
					current = nil
				} else if name, dataType, ok := parseColumnSegment(strings.TrimSuffix(strings.TrimSpace(line), ",")); ok {
					appendColumn(current, name, dataType)
				}
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return schemas, fmt.Errorf("failed to read dump: %w", readErr)
		}
	}

	// Truncated trailing block: keep what we have.
	if current != nil {
		log.Printf("WARN: Table[%s] CREATE TABLE block never closed; keeping %d column(s) best-effort.", current.Table, len(current.Columns))
		schemas[current.Table] = current
	}

	for table := range targets {
		if _, found := schemas[table]; !found {
			log.Printf("WARN: Target table %q not found in dump schema.", table)
		}
	}

	return schemas, nil
}

func appendColumn(ts *TableSchema, name, dataType string) {
	ts.Columns = append(ts.Columns, ColumnDefinition{
		Table:     ts.Table,
		Name:      name,
		DataType:  dataType,
		IsNumeric: IsNumericType(dataType),
	})
}

// consumeInlineColumns handles column definitions that sit on the opening
// line itself, as in a single-line CREATE TABLE statement. It reports
// whether the block already closed on that line.
func consumeInlineColumns(ts *TableSchema, inline string) bool {
	if inline == "" {
		return false
	}
	inner, closed := innerBlock(inline)
	for _, segment := range splitTopLevelCommas(inner) {
		if name, dataType, ok := parseColumnSegment(segment); ok {
			appendColumn(ts, name, dataType)
		}
	}
	return closed
}

// parseCreateTable reports whether the line opens a table-definition block.
// It returns the table name and whatever follows the opening parenthesis on
// the same line. Both `quoted` and bare names are accepted.
func parseCreateTable(line string) (name string, inline string, ok bool) {
	trimmed := strings.TrimSpace(line)
	upper := strings.ToUpper(trimmed)
	if !strings.HasPrefix(upper, "CREATE TABLE") {
		return "", "", false
	}

	rest := strings.TrimSpace(trimmed[len("CREATE TABLE"):])
	if restUpper := strings.ToUpper(rest); strings.HasPrefix(restUpper, "IF NOT EXISTS") {
		rest = strings.TrimSpace(rest[len("IF NOT EXISTS"):])
	}

	if quoted, qok := unquoteIdentifier(rest); qok {
		name = quoted
		rest = rest[len(quoted)+2:]
	} else {
		idx := strings.IndexAny(rest, " \t(")
		if idx == -1 {
			name = rest
			rest = ""
		} else {
			name = rest[:idx]
			rest = rest[idx:]
		}
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", false
	}

	if parenIdx := strings.Index(rest, "("); parenIdx != -1 {
		inline = rest[parenIdx+1:]
	}
	return name, inline, true
}

// innerBlock returns the content of the column-definition list up to the
// parenthesis that closes the block, tracking nesting depth and quoted
// spans so sizes like decimal(10,2) and enum('a','b') do not end it early.
// closed reports whether the closing parenthesis was found.
func innerBlock(s string) (inner string, closed bool) {
	depth := 1
	inQuote := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\'':
			inQuote = !inQuote
		case '(':
			if !inQuote {
				depth++
			}
		case ')':
			if !inQuote {
				depth--
				if depth == 0 {
					return s[:i], true
				}
			}
		}
	}
	return s, false
}

// splitTopLevelCommas splits a column-definition list on the commas that
// separate definitions, leaving commas inside parentheses or quoted spans
// alone.
func splitTopLevelCommas(s string) []string {
	var result []string
	var current strings.Builder
	depth := 0
	inQuote := false

	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '\'':
			inQuote = !inQuote
			current.WriteByte(ch)
		case '(':
			if !inQuote {
				depth++
			}
			current.WriteByte(ch)
		case ')':
			if !inQuote {
				depth--
			}
			current.WriteByte(ch)
		case ',':
			if depth == 0 && !inQuote {
				result = append(result, current.String())
				current.Reset()
			} else {
				current.WriteByte(ch)
			}
		default:
			current.WriteByte(ch)
		}
	}
	if current.Len() > 0 {
		result = append(result, current.String())
	}
	return result
}

// parseColumnSegment extracts (name, raw declared type) from one column
// definition. Only quoted identifiers start columns in a dump; segments led
// by key/constraint keywords are rejected.
func parseColumnSegment(segment string) (string, string, bool) {
	trimmed := strings.TrimSpace(segment)
	if trimmed == "" {
		return "", "", false
	}

	firstToken := trimmed
	if idx := strings.IndexAny(firstToken, " \t("); idx != -1 {
		firstToken = firstToken[:idx]
	}
	upperToken := strings.ToUpper(firstToken)
	for _, kw := range constraintKeywords {
		if upperToken == kw {
			return "", "", false
		}
	}

	name, ok := unquoteIdentifier(trimmed)
	if !ok {
		return "", "", false
	}

	// The declared type keeps the full raw fragment: size, params and
	// modifiers. Only the leading keyword drives classification elsewhere.
	rest := strings.TrimSpace(trimmed[len(name)+2:])
	if rest == "" {
		return "", "", false
	}
	return name, rest, true
}

// unquoteIdentifier returns the identifier at the start of s when it is
// wrapped in backquotes or double quotes.
func unquoteIdentifier(s string) (string, bool) {
	if len(s) < 2 {
		return "", false
	}
	quote := s[0]
	if quote != '`' && quote != '"' {
		return "", false
	}
	end := strings.IndexByte(s[1:], quote)
	if end == -1 {
		return "", false
	}
	return s[1 : end+1], true
}

// isBlockClose reports whether the line terminates a CREATE TABLE block:
// the closing parenthesis with its engine/charset clause, or a bare
// statement terminator. The ENGINE clause only counts in that closing
// position; a column default containing the same text must not end the
// block early.
func isBlockClose(line string) bool {
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, ")") {
		return true
	}
	return trimmed == ";"
}
