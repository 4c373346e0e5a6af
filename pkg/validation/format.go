// Package validation provides common validation utilities.
package validation

import (
	"fmt"
	"strings"

	"github.com/iwvelando/anticrisis-view/pkg/constants"
)

// OutputFormats lists the supported output formats.
var OutputFormats = []string{constants.OutputFormatTable, constants.OutputFormatCSV, constants.OutputFormatJSON}

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	return oneOf("output format", format, OutputFormats)
}

// ValidateLogLevel checks the logging level.
func ValidateLogLevel(level string) error {
	return oneOf("log level", level, []string{"debug", "info", "warn", "error"})
}

// ValidateLogFormat checks the logging encoder name.
func ValidateLogFormat(format string) error {
	return oneOf("log format", format, []string{"json", "console"})
}

// ValidateID checks that an organization or period id is positive.
func ValidateID(field string, id int64) error {
	if id <= 0 {
		return fmt.Errorf("expected %s to be a positive integer, got %d", field, id)
	}
	return nil
}

func oneOf(field, value string, allowed []string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("expected %s of %s, got %q", field, strings.Join(allowed, ", "), value)
}
