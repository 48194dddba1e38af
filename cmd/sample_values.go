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
package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/GoogleCloudPlatform/db-dump-context/internal/extractor"
	"github.com/GoogleCloudPlatform/db-dump-context/internal/utils"
	"github.com/spf13/cobra"
)

var sampleValuesCmd = &cobra.Command{
	Use:   "sample-values",
	Short: "Print the distinct values sampled from a dump",
	Long: `Runs both dump passes for the target tables and prints each non-numeric
column's capped distinct-value sample, without writing JSON files.`,
	Example: `./db_dump_context sample-values --dump ./crimes.sql --tables incidents --cap 25`,
	RunE:    runSampleValues,
}

func runSampleValues(cmd *cobra.Command, args []string) error {
	if appCfg.DumpPath == "" {
		return fmt.Errorf("--dump is required")
	}
	targets, err := utils.ParseTablesFlag(tablesFlag)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		return fmt.Errorf("--tables is required")
	}

	svc := extractor.NewService(nil, nil)
	records, err := svc.ExtractFromDump(cmd.Context(), appCfg.DumpPath, targets, extractor.Config{
		SchemaLabel: appCfg.SchemaLabel,
		ValueCap:    appCfg.ValueCap,
	})
	if err != nil {
		return fmt.Errorf("dump extraction failed: %w", err)
	}

	for _, record := range records {
		fmt.Printf("Table: %s\n", record.Table)
		names := make([]string, 0, len(record.Columns))
		for name := range record.Columns {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			col := record.Columns[name]
			if len(col.UniqueValues) == 0 {
				continue
			}
			fmt.Printf("  %s (%s): %s\n", name, col.DataType, strings.Join(col.UniqueValues, ", "))
		}
	}
	return nil
}
