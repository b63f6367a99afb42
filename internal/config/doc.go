// Package config provides configuration management for fincleaner.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file
//	3. Default values (lowest priority)
//
// A .env file can seed the environment before loading; see LoadEnvFile.
//
// # Environment Variables
//
// All environment variables follow the pattern FINCLEANER_<SECTION>_<FIELD>:
//
//	FINCLEANER_CLEANER_INPUT_PATH=forecast.csv
//	FINCLEANER_CLEANER_OUTPUT_PATH=updated_nulls.csv
//	FINCLEANER_CLEANER_NA_TOKENS=NA,n/a,-
//	FINCLEANER_SERVER_PORT=8080
//	FINCLEANER_LOGGING_LEVEL=debug
//
// # Usage
//
//	if err := config.LoadEnvFile(""); err != nil {
//	    return err
//	}
//	cfg, err := config.Load("")
//	if err != nil {
//	    return err
//	}
package config
