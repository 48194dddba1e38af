package metadata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/GoogleCloudPlatform/db-dump-context/internal/dump"
)

// Build assembles the output record for one table from its schema and the
// sampled value sets. Value lists appear only for non-numeric columns whose
// sets are non-empty; they are sorted here, at output time.
func Build(schemaLabel string, ts *dump.TableSchema, values map[string]*dump.UniqueValueSet) *TableMetadata {
	record := &TableMetadata{
		Schema:  schemaLabel,
		Table:   ts.Table,
		Columns: make(map[string]ColumnMetadata, len(ts.Columns)),
	}
	for _, col := range ts.Columns {
		colMeta := ColumnMetadata{
			DataType:  col.DataType,
			IsNumeric: col.IsNumeric,
		}
		if !col.IsNumeric {
			if set := values[col.Name]; set != nil && set.Len() > 0 {
				colMeta.UniqueValues = set.SortedValues()
			}
		}
		record.Columns[col.Name] = colMeta
	}
	return record
}

// BuildAll assembles records for every scanned table, ordered by table name
// so repeated runs over the same dump produce identical output.
func BuildAll(schemaLabel string, schemas map[string]*dump.TableSchema, values map[string]map[string]*dump.UniqueValueSet) []*TableMetadata {
	tables := make([]string, 0, len(schemas))
	for table := range schemas {
		tables = append(tables, table)
	}
	sort.Strings(tables)

	records := make([]*TableMetadata, 0, len(tables))
	for _, table := range tables {
		records = append(records, Build(schemaLabel, schemas[table], values[table]))
	}
	return records
}

// WriteFiles emits one JSON artifact per table into outDir, named
// <table>_metadata.json.
func WriteFiles(records []*TableMetadata, outDir string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %q: %w", outDir, err)
	}
	for _, record := range records {
		data, err := json.MarshalIndent(record, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal metadata for table %s: %w", record.Table, err)
		}
		path := filepath.Join(outDir, fmt.Sprintf("%s_metadata.json", record.Table))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("failed to write metadata file %q: %w", path, err)
		}
		log.Printf("INFO: Table[%s] metadata written to %s", record.Table, path)
	}
	return nil
}

// FormatAsText renders the records for terminal output.
func FormatAsText(records []*TableMetadata) string {
	if len(records) == 0 {
		return "No table metadata collected.\n"
	}
	var buffer bytes.Buffer
	for _, record := range records {
		buffer.WriteString(fmt.Sprintf("--- Table: %s (schema: %s) ---\n", record.Table, record.Schema))

		names := make([]string, 0, len(record.Columns))
		for name := range record.Columns {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			col := record.Columns[name]
			buffer.WriteString(fmt.Sprintf("  Column: %s\n", name))
			buffer.WriteString(fmt.Sprintf("  Type: %s (numeric: %v)\n", col.DataType, col.IsNumeric))
			if len(col.UniqueValues) > 0 {
				buffer.WriteString(fmt.Sprintf("  Values (%d): %s\n", len(col.UniqueValues), strings.Join(col.UniqueValues, ", ")))
			}
		}
		buffer.WriteString("\n")
	}
	return buffer.String()
}
