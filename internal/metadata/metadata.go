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
package metadata

// ColumnMetadata is the output record for one column.
type ColumnMetadata struct {
	DataType     string   `json:"data_type"`
	IsNumeric    bool     `json:"is_numeric"`
	UniqueValues []string `json:"unique_values,omitempty"`
}

// TableMetadata is the per-table artifact consumed downstream as prompt
// context. Columns maps column name to its record.
type TableMetadata struct {
	Schema  string                    `json:"schema"`
	Table   string                    `json:"table"`
	Columns map[string]ColumnMetadata `json:"columns"`
}
