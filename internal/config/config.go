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
package config

import "github.com/spf13/viper"

// Config holds all configuration for the application
type Config struct {
	Database     DatabaseConfig
	DumpPath     string
	SchemaLabel  string
	OutputDir    string
	ValueCap     int
	GeminiAPIKey string
}

// DatabaseConfig holds connection configuration for the live value source.
type DatabaseConfig struct {
	Dialect                        string
	Host                           string
	Port                           int
	User                           string
	Password                       string
	DBName                         string
	SSLMode                        string
	CloudSQLInstanceConnectionName string
	UsePrivateIP                   bool
}

var globalConfig *Config

// GetConfig returns a default configuration. Values can be overridden by
// DB_DUMP_CONTEXT_* environment variables; flags in root.go take final
// precedence.
func GetConfig() *Config {
	v := viper.New()
	v.SetEnvPrefix("DB_DUMP_CONTEXT")
	v.AutomaticEnv()

	v.SetDefault("schema_label", "public")
	v.SetDefault("output_dir", ".")
	v.SetDefault("value_cap", 150)
	v.SetDefault("db_dialect", "mysql")
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", 3306)
	v.SetDefault("db_sslmode", "disable")

	return &Config{
		Database: DatabaseConfig{
			Dialect: v.GetString("db_dialect"),
			Host:    v.GetString("db_host"),
			Port:    v.GetInt("db_port"),
			SSLMode: v.GetString("db_sslmode"),
		},
		SchemaLabel:  v.GetString("schema_label"),
		OutputDir:    v.GetString("output_dir"),
		ValueCap:     v.GetInt("value_cap"),
		GeminiAPIKey: v.GetString("gemini_api_key"),
	}
}

// SetConfig sets the global configuration.
func SetConfig(cfg *Config) {
	globalConfig = cfg
}
