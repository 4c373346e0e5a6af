// Package constants provides shared constants for the anticrisis view model.
package constants

// Domain is the file name prefix used for every export download.
const Domain = "anticrisis"

// Output format constants
const (
	// OutputFormatTable is the human-readable output format
	OutputFormatTable = "table"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the structured JSON output format
	OutputFormatJSON = "json"
)

// Export encoding constants
const (
	// CSVFieldDelimiter separates cells within a CSV row
	CSVFieldDelimiter = ";"

	// CSVRowDelimiter separates CSV rows
	CSVRowDelimiter = "\n"

	// ByteOrderMark prefixes CSV documents so spreadsheets detect UTF-8
	ByteOrderMark = "\uFEFF"

	// JSONIndent is the indentation used by the JSON export
	JSONIndent = "  "

	// FallbackExportLabel replaces an empty period label in JSON file names
	FallbackExportLabel = "export"
)

// Content types for export downloads
const (
	ContentTypeCSV  = "text/csv;charset=utf-8"
	ContentTypeJSON = "application/json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// EnvPrefix is the prefix for environment overrides (ANTICRISIS_BACKEND_BASEURL, ...)
	EnvPrefix = "anticrisis"
)

// Backend defaults
const (
	// DefaultBackendURL is the API root of a locally running backend
	DefaultBackendURL = "http://localhost:8000/api"

	// DefaultBackendTimeoutSeconds bounds a single backend request
	DefaultBackendTimeoutSeconds = 15
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":8080"

	// DefaultShutdownTimeoutSeconds is the grace period for in-flight requests
	DefaultShutdownTimeoutSeconds = 10
)

// Locale constants
const (
	LocaleEnglish = "en"
	LocaleRussian = "ru"

	// DefaultLocale is used when no locale is configured
	DefaultLocale = LocaleEnglish
)

// PercentageMultiplier is used for percentage conversions
const PercentageMultiplier = 100.0
