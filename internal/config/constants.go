package config

import "time"

// Application constants
const (
	AppName    = "fincleaner"
	AppVersion = "1.0.0"

	// EnvPrefix namespaces every environment variable, e.g. FINCLEANER_CLEANER_OUTPUT_PATH.
	EnvPrefix = "FINCLEANER"

	// Cleaner defaults
	DefaultInputPath  = "dummy_filter_format.csv"
	DefaultOutputPath = "updated_nulls.csv"
	DefaultDelimiter  = ","

	// DefaultSaveDir holds files written through POST /api/save
	DefaultSaveDir = "exports"

	// Report defaults
	DefaultFilterColumn = "category"
	DefaultFilterValue  = "1"
	DefaultGroupColumn  = "group"
	DefaultGroupBy      = "job_code"
	DefaultEntityColumn = "Company"

	// Rate Limiting
	DefaultRateLimit = 100 // requests per second
	DefaultBurstSize = 50

	// Network Timeouts
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultRequestTimeout  = 60 * time.Second
)

// DefaultExcludeColumns are the identifier columns dropped before computing
// per-period distributions.
var DefaultExcludeColumns = []string{"group", "category", "job_code"}
