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

	"github.com/GoogleCloudPlatform/db-dump-context/internal/dump"
	"github.com/GoogleCloudPlatform/db-dump-context/internal/metadata"
	"github.com/GoogleCloudPlatform/db-dump-context/internal/utils"
	"github.com/spf13/cobra"
)

var showSchemaCmd = &cobra.Command{
	Use:   "show-schema",
	Short: "Show the declared schema of target tables in a dump",
	Long: `Runs only the schema pass over the dump file and prints each target
table's columns, declared types, and numeric classification.`,
	Example: `./db_dump_context show-schema --dump ./crimes.sql --tables incidents,officers`,
	RunE:    runShowSchema,
}

func runShowSchema(cmd *cobra.Command, args []string) error {
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

	reader, err := dump.Open(appCfg.DumpPath)
	if err != nil {
		return err
	}
	defer reader.Close()

	schemas, err := dump.ScanSchema(reader, targets)
	if err != nil {
		return fmt.Errorf("schema pass failed: %w", err)
	}

	records := metadata.BuildAll(appCfg.SchemaLabel, schemas, nil)
	fmt.Print(metadata.FormatAsText(records))
	return nil
}
