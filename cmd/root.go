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
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/GoogleCloudPlatform/db-dump-context/internal/config"
	"github.com/GoogleCloudPlatform/db-dump-context/internal/database"
	_ "github.com/GoogleCloudPlatform/db-dump-context/internal/database/mysql"
	_ "github.com/GoogleCloudPlatform/db-dump-context/internal/database/postgres"
	_ "github.com/GoogleCloudPlatform/db-dump-context/internal/database/sqlserver"
	"github.com/GoogleCloudPlatform/db-dump-context/internal/genai"
	"github.com/spf13/cobra"
)

var (
	// Pipeline flags
	dumpPath    string
	tablesFlag  string
	schemaLabel string
	outputDir   string
	valueCap    int

	geminiAPIKey string

	// Database connection flags (live source)
	dialect                        string
	host                           string
	port                           int
	username                       string
	password                       string
	dbName                         string
	cloudSQLInstanceConnectionName string
	cloudSQLUsePrivateIP           bool

	appCfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "db_dump_context",
	Short: "A tool to extract prompt-ready metadata from SQL dumps",
	Long: `db_dump_context scans large textual SQL dumps (or a live database) and
produces per-table JSON records with column types and capped samples of
distinct observed values, suitable as grounding context for LLM prompts.`,
	PersistentPreRunE: initFlagsAndConfig,
}

// initFlagsAndConfig merges command flags over the environment-derived
// configuration.
func initFlagsAndConfig(cmd *cobra.Command, args []string) error {
	cfg := config.GetConfig()
	dbCfg := cfg.Database

	if cmd != nil {
		if dialect != "" {
			dbCfg.Dialect = dialect
		}
		if host != "" {
			dbCfg.Host = host
		}
		if port != 0 {
			dbCfg.Port = port
		}
		dbCfg.User = username
		dbCfg.Password = password
		dbCfg.DBName = dbName
		dbCfg.CloudSQLInstanceConnectionName = cloudSQLInstanceConnectionName
		dbCfg.UsePrivateIP = cloudSQLUsePrivateIP
	}
	cfg.Database = dbCfg

	if dumpPath != "" {
		cfg.DumpPath = dumpPath
	}
	if schemaLabel != "" {
		cfg.SchemaLabel = schemaLabel
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	if valueCap > 0 {
		cfg.ValueCap = valueCap
	}

	if geminiAPIKey == "" {
		geminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	cfg.GeminiAPIKey = geminiAPIKey

	database.SetConfig(&dbCfg)
	config.SetConfig(cfg)
	appCfg = cfg

	return nil
}

func validateDialect(dialect string) error {
	supportedDialects := []string{"postgres", "cloudsqlpostgres", "mysql", "cloudsqlmysql", "sqlserver", "cloudsqlsqlserver"}
	isValidDialect := false
	for _, supportedDialect := range supportedDialects {
		if dialect == supportedDialect {
			isValidDialect = true
			break
		}
	}
	if !isValidDialect {
		return fmt.Errorf("unsupported dialect: %s (only %s are supported)", dialect, strings.Join(supportedDialects, ", "))
	}
	return nil
}

func setupDatabase() (*database.DB, error) {
	dbConfig := database.GetConfig()
	if dbConfig == nil {
		return nil, fmt.Errorf("database config is not initialized")
	}
	db, err := database.New(*dbConfig)
	if err != nil {
		log.Println("ERROR: Failed to connect to database:", err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// setupLLMClient builds the optional PII-screen client. A missing API key
// disables the screen; an invalid key is reported but does not abort the
// pipeline.
func setupLLMClient(ctx context.Context) genai.LLMClient {
	if appCfg == nil || appCfg.GeminiAPIKey == "" {
		return nil
	}
	client, err := genai.NewClient(ctx, genai.Config{APIKey: appCfg.GeminiAPIKey})
	if err != nil {
		log.Printf("WARN: Could not create Gemini client, skipping PII screen: %v", err)
		return nil
	}
	if err := client.IsAPIKeyValid(ctx); err != nil {
		log.Printf("WARN: Gemini API key validation failed, skipping PII screen: %v", err)
		client.Close()
		return nil
	}
	return client
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Pipeline flags
	rootCmd.PersistentFlags().StringVar(&dumpPath, "dump", "", "Path to the SQL dump file (for the dump source)")
	rootCmd.PersistentFlags().StringVar(&tablesFlag, "tables", "", "Comma-separated target table names - MANDATORY for dump extraction")
	rootCmd.PersistentFlags().StringVar(&schemaLabel, "schema-label", "", "Schema label stamped into every output record (default \"public\")")
	rootCmd.PersistentFlags().StringVar(&outputDir, "out-dir", "", "Directory for <table>_metadata.json output files (default \".\")")
	rootCmd.PersistentFlags().IntVar(&valueCap, "cap", 0, "Per-column cap on distinct sampled values (default 150)")

	// Database connection flags (live source)
	rootCmd.PersistentFlags().StringVar(&dialect, "dialect", "", fmt.Sprintf("Database dialect (%s) - MANDATORY for the live source", strings.Join([]string{"postgres", "mysql", "sqlserver", "cloudsqlpostgres", "cloudsqlmysql", "cloudsqlsqlserver"}, ", ")))
	rootCmd.PersistentFlags().StringVar(&host, "host", "", "Database host")
	rootCmd.PersistentFlags().IntVar(&port, "port", 0, "Database port")
	rootCmd.PersistentFlags().StringVar(&username, "username", "", "Database username")
	rootCmd.PersistentFlags().StringVar(&password, "password", "", "Database password")
	rootCmd.PersistentFlags().StringVar(&dbName, "database", "", "Database name")
	rootCmd.PersistentFlags().StringVar(&cloudSQLInstanceConnectionName, "cloudsql-instance-connection-name", "", "Cloud SQL instance connection name (for Cloud SQL dialects)")
	rootCmd.PersistentFlags().BoolVar(&cloudSQLUsePrivateIP, "cloudsql-use-private-ip", false, "Use private IP for Cloud SQL connection (Cloud SQL)")

	// Gemini API Key flag
	rootCmd.PersistentFlags().StringVar(&geminiAPIKey, "gemini-api-key", "", "Gemini API key for the optional PII screen (can also be set via GEMINI_API_KEY environment variable)")

	// Add subcommands
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(showSchemaCmd)
	rootCmd.AddCommand(sampleValuesCmd)
}
