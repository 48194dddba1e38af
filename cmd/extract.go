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
	"log"

	"github.com/GoogleCloudPlatform/db-dump-context/internal/extractor"
	"github.com/GoogleCloudPlatform/db-dump-context/internal/metadata"
	"github.com/GoogleCloudPlatform/db-dump-context/internal/utils"
	"github.com/spf13/cobra"
)

var extractSource string

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract per-table metadata records",
	Long: `Extracts column types and capped distinct-value samples for the target
tables and writes one <table>_metadata.json record per table.`,
	Example: `./db_dump_context extract --dump ./crimes.sql --tables incidents,officers --out-dir ./context
./db_dump_context extract --source live --dialect mysql --host 127.0.0.1 --port 3306 --username user --password pass --database crimes --tables incidents`,
	RunE: runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	targets, err := utils.ParseTablesFlag(tablesFlag)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	llmClient := setupLLMClient(ctx)
	if llmClient != nil {
		defer llmClient.Close()
	}

	var records []*metadata.TableMetadata
	pipelineCfg := extractor.Config{SchemaLabel: appCfg.SchemaLabel, ValueCap: appCfg.ValueCap}

	switch extractSource {
	case "dump":
		if appCfg.DumpPath == "" {
			return fmt.Errorf("--dump is required for the dump source")
		}
		if len(targets) == 0 {
			return fmt.Errorf("--tables is required for dump extraction")
		}
		svc := extractor.NewService(nil, llmClient)
		records, err = svc.ExtractFromDump(ctx, appCfg.DumpPath, targets, pipelineCfg)
		if err != nil {
			return fmt.Errorf("dump extraction failed: %w", err)
		}

	case "live":
		if err := validateDialect(appCfg.Database.Dialect); err != nil {
			return err
		}
		db, dbErr := setupDatabase()
		if dbErr != nil {
			return dbErr
		}
		defer db.Close()

		svc := extractor.NewService(db, llmClient)
		records, err = svc.ExtractFromLive(ctx, targets, pipelineCfg)
		if err != nil {
			return fmt.Errorf("live extraction failed: %w", err)
		}

	default:
		return fmt.Errorf("unsupported source: %s (only dump and live are supported)", extractSource)
	}

	if len(records) == 0 {
		log.Println("WARN: No metadata records produced; nothing written.")
		return nil
	}

	if err := metadata.WriteFiles(records, appCfg.OutputDir); err != nil {
		return fmt.Errorf("failed to write metadata files: %w", err)
	}
	fmt.Printf("Metadata for %d table(s) written to: %s\n", len(records), appCfg.OutputDir)

	log.Println("INFO: Extract operation completed")
	return nil
}

func init() {
	extractCmd.Flags().StringVar(&extractSource, "source", "dump", "Metadata source: 'dump' (SQL dump file) or 'live' (database connection)")
}
