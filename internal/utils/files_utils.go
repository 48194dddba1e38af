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
package utils

import (
	"fmt"
	"sort"
	"strings"
)

// ParseTablesFlag parses the comma-separated --tables flag into a set of
// table names. An empty flag yields an empty set (meaning "all tables" for
// live sources; dump extraction requires at least one name).
func ParseTablesFlag(tablesFlag string) (map[string]bool, error) {
	tables := make(map[string]bool)
	if tablesFlag == "" {
		return tables, nil
	}

	for _, part := range strings.Split(tablesFlag, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			return nil, fmt.Errorf("empty table name in --tables value: %q", tablesFlag)
		}
		tables[name] = true
	}
	return tables, nil
}

// SortedTableNames returns the set's table names in lexical order, for
// stable logging and output.
func SortedTableNames(tables map[string]bool) []string {
	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
