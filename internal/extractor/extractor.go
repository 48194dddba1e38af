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
package extractor

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/GoogleCloudPlatform/db-dump-context/internal/database"
	"github.com/GoogleCloudPlatform/db-dump-context/internal/dump"
	"github.com/GoogleCloudPlatform/db-dump-context/internal/genai"
	"github.com/GoogleCloudPlatform/db-dump-context/internal/metadata"
)

// Service runs the metadata-extraction pipeline against either a dump file
// or a live database and assembles the per-table output records.
type Service struct {
	dbAdapter database.DBAdapter
	llmClient genai.LLMClient
	retryOpts RetryOptions
}

// Config carries the pipeline knobs shared by both sources.
type Config struct {
	SchemaLabel string
	ValueCap    int
}

// NewService builds a Service. dbAdapter may be nil for dump-only use and
// llm may be nil to skip the PII screen.
func NewService(db database.DBAdapter, llm genai.LLMClient) *Service {
	return &Service{
		dbAdapter: db,
		llmClient: llm,
		retryOpts: DefaultRetryOptions,
	}
}

// ExtractFromDump performs the two sequential passes over the dump file:
// schema extraction first, then distinct-value collection restricted to the
// non-numeric columns the schema pass discovered. Peak memory stays bounded
// by per-statement buffers and the capped per-column sets.
func (s *Service) ExtractFromDump(ctx context.Context, dumpPath string, targets map[string]bool, cfg Config) ([]*metadata.TableMetadata, error) {
	startTime := time.Now()
	log.Printf("INFO: Starting dump metadata extraction for %d target table(s)...", len(targets))

	schemaReader, err := dump.Open(dumpPath)
	if err != nil {
		return nil, err
	}
	schemas, err := dump.ScanSchema(schemaReader, targets)
	schemaReader.Close()
	if err != nil {
		return nil, fmt.Errorf("schema pass failed: %w", err)
	}
	if len(schemas) == 0 {
		log.Println("INFO: No target table found in dump; nothing to extract.")
		return []*metadata.TableMetadata{}, nil
	}

	tracked := make(map[string][]dump.TrackedColumn)
	for table, ts := range schemas {
		if cols := ts.NonNumericColumns(); len(cols) > 0 {
			tracked[table] = cols
		}
	}

	collector := dump.NewValueCollector(tracked, cfg.ValueCap)
	if len(tracked) > 0 {
		valueReader, err := dump.Open(dumpPath)
		if err != nil {
			return nil, err
		}
		err = collector.Collect(valueReader)
		valueReader.Close()
		if err != nil {
			return nil, fmt.Errorf("value pass failed: %w", err)
		}
	}

	records := metadata.BuildAll(cfg.SchemaLabel, schemas, collector.Values())
	s.screenRecords(ctx, records)

	log.Printf("INFO: Dump extraction completed in %s. Produced %d record(s).", time.Since(startTime), len(records))
	return records, nil
}

// ExtractFromLive collects the same metadata from a live database, one
// goroutine per table, feeding the identical output contract as the dump
// passes.
func (s *Service) ExtractFromLive(ctx context.Context, targets map[string]bool, cfg Config) ([]*metadata.TableMetadata, error) {
	if s.dbAdapter == nil {
		return nil, fmt.Errorf("live extraction requested but no database adapter configured")
	}

	startTime := time.Now()
	log.Println("INFO: Starting live metadata extraction...")

	tables, err := s.dbAdapter.ListTables()
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	filteredTables := filterTables(tables, targets)
	if len(filteredTables) == 0 {
		log.Println("INFO: No tables match the provided targets (--tables).")
		return []*metadata.TableMetadata{}, nil
	}

	valueCap := cfg.ValueCap
	if valueCap <= 0 {
		valueCap = dump.DefaultValueCap
	}

	var records []*metadata.TableMetadata
	var wg sync.WaitGroup
	var recMu sync.Mutex
	errorChannel := make(chan error, len(filteredTables))

	log.Printf("INFO: Processing %d filtered table(s)...", len(filteredTables))

	for _, tableName := range filteredTables {
		wg.Add(1)
		go func(table string) {
			defer wg.Done()
			tableLogPrefix := fmt.Sprintf("Table[%s]", table)

			columnInfos, listColErr := s.dbAdapter.ListColumns(table)
			if listColErr != nil {
				log.Printf("ERROR: %s Failed to list columns: %v", tableLogPrefix, listColErr)
				errorChannel <- fmt.Errorf("%s list columns: %w", tableLogPrefix, listColErr)
				return
			}

			ts := &dump.TableSchema{Table: table}
			for _, ci := range columnInfos {
				ts.Columns = append(ts.Columns, dump.ColumnDefinition{
					Table:     table,
					Name:      ci.Name,
					DataType:  ci.DataType,
					IsNumeric: dump.IsNumericType(ci.DataType),
				})
			}

			values := make(map[string]*dump.UniqueValueSet)
			for _, col := range ts.NonNumericColumns() {
				colName := col.Name
				sampled, sampleErr := withRetry(ctx, s.retryOpts, func(ctx context.Context) ([]string, error) {
					vals, qErr := s.dbAdapter.SampleColumnValues(ctx, table, colName, valueCap)
					if qErr != nil {
						return nil, &ErrQueryExecution{Msg: fmt.Sprintf("sampling %s.%s", table, colName), Err: qErr}
					}
					return vals, nil
				})
				if sampleErr != nil {
					log.Printf("WARN: %s Failed to sample values for column %s: %v. Leaving column unsampled.", tableLogPrefix, colName, sampleErr)
					continue
				}
				set := dump.NewUniqueValueSet(valueCap)
				for _, v := range sampled {
					set.Add(v)
				}
				values[colName] = set
			}

			record := metadata.Build(cfg.SchemaLabel, ts, values)
			recMu.Lock()
			records = append(records, record)
			recMu.Unlock()
		}(tableName)
	}

	wg.Wait()
	close(errorChannel)

	var allErrors []error
	for err := range errorChannel {
		allErrors = append(allErrors, err)
	}
	if len(allErrors) > 0 {
		return nil, fmt.Errorf("encountered %d error(s) during live extraction: %v", len(allErrors), allErrors)
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Table < records[j].Table })
	s.screenRecords(ctx, records)

	log.Printf("INFO: Live extraction completed in %s. Produced %d record(s).", time.Since(startTime), len(records))
	return records, nil
}

// screenRecords runs the optional PII screen over every sampled value list,
// replacing likely-PII samples with synthetic stand-ins. Screen failures
// degrade to the original values.
func (s *Service) screenRecords(ctx context.Context, records []*metadata.TableMetadata) {
	if s.llmClient == nil {
		return
	}
	for _, record := range records {
		for name, col := range record.Columns {
			if len(col.UniqueValues) == 0 {
				continue
			}
			screened, wasSynthesized, err := s.llmClient.ScreenSampleValues(ctx, record.Table, name, col.DataType, col.UniqueValues)
			if err != nil {
				log.Printf("WARN: Column[%s.%s] PII screen failed: %v. Keeping original samples.", record.Table, name, err)
				continue
			}
			if wasSynthesized {
				log.Printf("INFO: Column[%s.%s] samples replaced with synthetic values (PII detected/suspected).", record.Table, name)
				sort.Strings(screened)
				col.UniqueValues = screened
				record.Columns[name] = col
			}
		}
	}
}

func filterTables(allTables []string, targets map[string]bool) []string {
	if len(targets) == 0 {
		return allTables
	}
	filtered := make([]string, 0, len(targets))
	for _, table := range allTables {
		if targets[table] {
			filtered = append(filtered, table)
		}
	}
	sort.Strings(filtered)
	return filtered
}
