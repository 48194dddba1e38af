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

import "strings"

// tupleState is the tokenizer position relative to row and quote boundaries.
type tupleState int

const (
	outsideRow tupleState = iota
	inRowUnquoted
	inRowQuoted
	inRowQuotedEscaped
)

// TokenizeValueTuples splits the text following a VALUES keyword into rows of
// raw literal strings. Quotes are stripped, backslash escapes are resolved
// and the bare token NULL is preserved verbatim for the caller to detect.
//
// Commas and parentheses inside a quoted span are never treated as
// delimiters, and an escaped quote never terminates a span. A quoted span
// followed by more characters keeps accumulating into the same value, so
// mixed quoted/unquoted runs concatenate correctly.
//
// The tokenizer never fails: on unbalanced input it returns whatever rows it
// managed to close. Single pass, O(len(segment)).
func TokenizeValueTuples(segment string) [][]string {
	var (
		rows    [][]string
		current []string
		buf     strings.Builder
		state   = outsideRow
	)

	for i := 0; i < len(segment); i++ {
		ch := segment[i]

		switch state {
		case outsideRow:
			if ch == '(' {
				current = nil
				buf.Reset()
				state = inRowUnquoted
			}

		case inRowUnquoted:
			switch ch {
			case '\'':
				state = inRowQuoted
			case ',':
				current = append(current, buf.String())
				buf.Reset()
			case ')':
				if buf.Len() > 0 {
					current = append(current, buf.String())
					buf.Reset()
				}
				rows = append(rows, current)
				current = nil
				state = outsideRow
			case ' ', '\t', '\r', '\n':
				// Whitespace between unquoted tokens carries no meaning.
			default:
				buf.WriteByte(ch)
			}

		case inRowQuoted:
			switch ch {
			case '\\':
				state = inRowQuotedEscaped
			case '\'':
				state = inRowUnquoted
			default:
				buf.WriteByte(ch)
			}

		case inRowQuotedEscaped:
			buf.WriteByte(ch)
			state = inRowQuoted
		}
	}

	return rows
}
